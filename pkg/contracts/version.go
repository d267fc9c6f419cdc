// Package contracts holds the types shared between the census binaries and
// anything that consumes their outputs.
package contracts

import (
	"fmt"
	"runtime"
)

const (
	// Version is the current version of the application
	Version = "0.3.0"

	// OutputFormatVersion changes whenever the layout of the exported
	// tables or the run store schema changes
	OutputFormatVersion = "v1"
)

// Set during build using ldflags
var (
	BuildTime = "unknown"
	GitCommit = "unknown"
)

// VersionInfo contains detailed version information
type VersionInfo struct {
	Version      string `json:"version"`
	OutputFormat string `json:"output_format"`
	BuildTime    string `json:"build_time"`
	GitCommit    string `json:"git_commit"`
	GoVersion    string `json:"go_version"`
	Platform     string `json:"platform"`
}

// GetVersionInfo returns detailed version information
func GetVersionInfo() VersionInfo {
	return VersionInfo{
		Version:      Version,
		OutputFormat: OutputFormatVersion,
		BuildTime:    BuildTime,
		GitCommit:    GitCommit,
		GoVersion:    runtime.Version(),
		Platform:     runtime.GOOS + "/" + runtime.GOARCH,
	}
}

// GetFullVersionString returns the version line printed by --version
func GetFullVersionString() string {
	info := GetVersionInfo()
	return fmt.Sprintf("%s (output %s, built %s, commit %s, %s %s)",
		info.Version, info.OutputFormat, info.BuildTime, info.GitCommit, info.GoVersion, info.Platform)
}
