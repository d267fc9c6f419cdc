package main

import (
	"encoding/json"
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/Francelinojr/teste-gener/internal/files"
)

func newManifestCommand(f *cliFlags, stdout io.Writer) *cobra.Command {
	var asJSON bool
	cmd := &cobra.Command{
		Use:   "manifest",
		Short: "Check the MD5 listings of each year against the files on disk",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(cmd, f)
			if err != nil {
				return err
			}
			rows, err := files.ScanManifests(cmd.Context(), cfg.Paths.DataDir)
			if err != nil {
				return err
			}
			if asJSON {
				enc := json.NewEncoder(stdout)
				enc.SetIndent("", "  ")
				return enc.Encode(rows)
			}

			tw := tabwriter.NewWriter(stdout, 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "YEAR\tEXPECTED\tPRESENT\tMISSING\tMANIFEST")
			for _, r := range rows {
				fmt.Fprintf(tw, "%d\t%d\t%d\t%d\t%s\n", r.Year, r.Expected, r.Present, r.Missing, r.Path)
			}
			if err := tw.Flush(); err != nil {
				return err
			}
			for _, r := range rows {
				for _, name := range r.MissingFiles {
					fmt.Fprintf(stdout, "%d missing %s\n", r.Year, name)
				}
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "print the report as JSON")
	return cmd
}
