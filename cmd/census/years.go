package main

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/Francelinojr/teste-gener/internal/files"
	"github.com/Francelinojr/teste-gener/internal/infrastructure"
)

func newYearsCommand(f *cliFlags, stdout io.Writer) *cobra.Command {
	var asJSON bool
	cmd := &cobra.Command{
		Use:   "years",
		Short: "List the years found on disk and their formats",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(cmd, f)
			if err != nil {
				return err
			}
			logger, err := infrastructure.InitializeLogger(cfg.Logging)
			if err != nil {
				return err
			}
			resolver := files.NewResolver(cfg.Paths.DataDir, cfg.Paths.CSVDirs, logger)
			if err := resolver.Scan(cmd.Context()); err != nil {
				return err
			}
			inventory := resolver.Inventory()

			if asJSON {
				enc := json.NewEncoder(stdout)
				enc.SetIndent("", "  ")
				return enc.Encode(inventory)
			}

			tw := tabwriter.NewWriter(stdout, 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "YEAR\tFORMATS\tLEGACY FILES\tINSTITUTION FILES")
			for _, yf := range inventory {
				formats := make([]string, len(yf.Formats))
				for i, s := range yf.Formats {
					formats[i] = string(s)
				}
				fmt.Fprintf(tw, "%d\t%s\t%d\t%d\n", yf.Year, strings.Join(formats, ","), len(yf.Legacy), len(yf.Institutions))
			}
			return tw.Flush()
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "print the inventory as JSON")
	return cmd
}
