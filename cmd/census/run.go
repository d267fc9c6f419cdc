package main

import (
	"context"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/Francelinojr/teste-gener/internal/app"
)

func newRunCommand(f *cliFlags, stdout io.Writer) *cobra.Command {
	return &cobra.Command{
		Use:   "run",
		Short: "Load the selected years, build the tables and export them",
		Long: `
Runs the pipeline once and writes every table as semicolon-separated CSV, all
tables as one XLSX workbook, applied_filters<suffix>.json and the run report
to the output directory. When a database is configured the run is stored too.
`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(cmd, f)
			if err != nil {
				return err
			}
			application, err := app.NewApplication(cfg)
			if err != nil {
				return err
			}
			defer application.Close(context.Background())

			out, err := application.RunPipeline(cmd.Context())
			if err != nil {
				return err
			}
			printOutcome(stdout, out)
			return nil
		},
	}
}

func printOutcome(w io.Writer, out *app.Outcome) {
	res := out.Result
	fmt.Fprintf(w, "run %s\n", res.RunID)
	fmt.Fprintf(w, "  %s\n", out.Filters.Title)
	fmt.Fprintf(w, "  years requested: %v, loaded: %v (reference %d)\n", res.Years, res.LoadedYears, res.ReferenceYear)
	for _, yr := range res.YearResults {
		fmt.Fprintf(w, "  %d: %s, %d records\n", yr.Year, yr.Source, len(yr.Records))
	}
	fmt.Fprintf(w, "  records: %d, in target: %d\n", len(res.Records), len(res.Target))
	for _, n := range out.UnresolvedNames {
		fmt.Fprintf(w, "  warning: area name %q matched no group\n", n)
	}
	if out.Export != nil {
		fmt.Fprintln(w, "  files:")
		for _, name := range out.Export.Files {
			fmt.Fprintf(w, "    %s\n", name)
		}
	}
}
