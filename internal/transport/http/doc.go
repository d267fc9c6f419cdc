// Package http serves a finished pipeline run over a read-only JSON API.
//
// Handlers never run the pipeline themselves: they read the *pipeline.Result
// handed to them through a ResultProvider, so every request sees a complete
// run.
//
// Routes:
//
//	GET /healthz                 liveness and the current run id
//	GET /metrics                 Prometheus exposition
//	GET /api/v1/years            per-year source and provenance
//	GET /api/v1/tables           names and sizes of the aggregated tables
//	GET /api/v1/tables/{name}    one table as columns and rows
//	GET /api/v1/records          canonical records, filtered by year, region and target
//	GET /api/v1/runs             stored runs, when a store is configured
//
// Errors are RFC 7807 problem documents rendered with chi/render.
package http
