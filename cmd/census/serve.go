package main

import (
	"context"
	"io"

	"github.com/spf13/cobra"

	"github.com/Francelinojr/teste-gener/internal/app"
)

func newServeCommand(f *cliFlags, stdout io.Writer) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the pipeline, then serve the results over HTTP",
		Long: `
Runs the pipeline exactly like "run", then serves the finished run through a
read-only JSON API until interrupted.
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
			return application.Serve(cmd.Context())
		},
	}
	cmd.Flags().IntVarP(&f.port, "port", "p", 0, "HTTP port")
	return cmd
}
