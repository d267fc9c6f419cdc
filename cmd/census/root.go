package main

import (
	"io"

	"github.com/spf13/cobra"

	"github.com/Francelinojr/teste-gener/internal/config"
	"github.com/Francelinojr/teste-gener/pkg/contracts"
)

// cliFlags are the configuration overrides accepted by every command. A
// flag only overrides the configuration when it is set explicitly.
type cliFlags struct {
	configPath string
	dataDir    string
	csvDirs    []string
	outputDir  string
	database   string
	years      string
	regions    []string
	codes      []string
	names      []string
	clusters   int
	chunkSize  int
	top        int
	parallel   int
	logLevel   string
	port       int
}

// NewRootCommand builds the census command tree
func NewRootCommand(stdout, stderr io.Writer) *cobra.Command {
	f := &cliFlags{}
	rc := &cobra.Command{
		Use:   "census",
		Short: "Gender disparity tables from the higher-education census",
		Long: `census reads the yearly higher-education census extracts, in either the
unified course format or the older per-modality layout, and builds gender
disparity tables for the STEM area groups by year, region, institution type,
area and municipality.

Configuration comes from defaults, an optional YAML file, CENSUS_* environment
variables and finally the flags below.
`,
		Version:       contracts.GetFullVersionString(),
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	pf := rc.PersistentFlags()
	pf.StringVarP(&f.configPath, "config", "c", "", "configuration file (default config.yaml or $CENSUS_CONFIG)")
	pf.StringVar(&f.dataDir, "data-dir", "", "directory holding the census microdata")
	pf.StringSliceVar(&f.csvDirs, "csv-dir", nil, "directories searched for unified course files (repeatable)")
	pf.StringVarP(&f.outputDir, "output", "o", "", "output directory")
	pf.StringVar(&f.database, "database", "", "SQLite file receiving each run")
	pf.StringVar(&f.years, "years", "", `year selection such as "2015-2020" or "2012,2014-2016"`)
	pf.StringSliceVar(&f.regions, "regions", nil, "regions of interest")
	pf.StringSliceVar(&f.codes, "codes", nil, "area group codes to keep (05, 06, 07)")
	pf.StringSliceVar(&f.names, "names", nil, "area group names to keep, e.g. Engenharia")
	pf.IntVar(&f.clusters, "clusters", 0, "number of clusters recorded with the outputs")
	pf.IntVar(&f.chunkSize, "chunk-size", 0, "rows per batch when reading course files, 0 reads whole files")
	pf.IntVar(&f.top, "top", 0, "length of the municipality rankings")
	pf.IntVar(&f.parallel, "parallel", 0, "years loaded concurrently")
	pf.StringVar(&f.logLevel, "log-level", "", "debug, info, warn or error")

	rc.AddCommand(newRunCommand(f, stdout))
	rc.AddCommand(newServeCommand(f, stdout))
	rc.AddCommand(newManifestCommand(f, stdout))
	rc.AddCommand(newYearsCommand(f, stdout))

	rc.SetOut(stdout)
	rc.SetErr(stderr)
	return rc
}

// loadConfig reads the configuration and applies the flags that were set
func loadConfig(cmd *cobra.Command, f *cliFlags) (*config.Config, error) {
	var (
		cfg *config.Config
		err error
	)
	if f.configPath != "" {
		cfg, err = config.LoadFile(f.configPath)
	} else {
		cfg, err = config.Load()
	}
	if err != nil {
		return nil, err
	}

	flags := cmd.Flags()
	changed := func(name string) bool {
		fl := flags.Lookup(name)
		return fl != nil && fl.Changed
	}
	f.apply(cfg, changed)
	cfg.Normalize()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (f *cliFlags) apply(cfg *config.Config, changed func(string) bool) {
	if changed("data-dir") {
		cfg.Paths.DataDir = f.dataDir
		// CSV directories derived from the old data directory no longer apply
		if !changed("csv-dir") {
			cfg.Paths.CSVDirs = nil
		}
	}
	if changed("csv-dir") {
		cfg.Paths.CSVDirs = f.csvDirs
	}
	if changed("output") {
		cfg.Paths.OutputDir = f.outputDir
	}
	if changed("database") {
		cfg.Paths.Database = f.database
	}
	if changed("years") {
		cfg.Pipeline.Years = f.years
	}
	if changed("regions") {
		cfg.Pipeline.Regions = f.regions
	}
	if changed("codes") {
		cfg.Pipeline.SubjectCodes = f.codes
	}
	if changed("names") {
		cfg.Pipeline.SubjectNames = f.names
	}
	if changed("clusters") {
		cfg.Pipeline.Clusters = f.clusters
	}
	if changed("chunk-size") {
		cfg.Pipeline.ChunkSize = f.chunkSize
	}
	if changed("top") {
		cfg.Pipeline.TopMunicipalities = f.top
	}
	if changed("parallel") {
		cfg.Pipeline.ParallelYears = f.parallel
	}
	if changed("log-level") {
		cfg.Logging.Level = f.logLevel
	}
	if changed("port") {
		cfg.Server.Port = f.port
	}
}
