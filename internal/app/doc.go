// Package app wires the census pipeline together: configuration, logging,
// telemetry, file resolution, the pipeline runner, the exporter, the
// optional run store and the read-only HTTP API.
//
// # Initialization Flow
//
//	1. The caller loads and validates configuration
//	2. NewApplication initializes logging and OpenTelemetry
//	3. Scan discovers which years have data
//	4. RunPipeline loads, classifies and aggregates, then exports and stores
//	5. Serve exposes the finished run until the context is cancelled
//
// # Usage
//
//	application, err := app.NewApplication(cfg)
//	if err != nil {
//	    return err
//	}
//	defer application.Close(context.Background())
//	outcome, err := application.RunPipeline(ctx)
//
// # Error Handling
//
// Initialization errors are returned to the caller. The app never calls
// os.Exit; the command decides the exit status, including the non-zero
// status for a run that loaded no data.
package app
