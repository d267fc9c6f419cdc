// Package exporter writes run outputs to the output directory.
//
// This package contains three main components:
//
// CSVWriter: semicolon-separated CSV with a UTF-8 BOM so spreadsheet tools
// open accented names correctly.
//
// Workbook: every table of a run as one sheet of a single XLSX file.
//
// Filters: the applied_filters<suffix>.json description of a run. The same
// suffix is appended to every file of the run so outputs of differently
// filtered runs can live side by side.
//
// Example usage:
//
//	exp := exporter.New(files.NewManager(cfg.Paths.OutputDir, logger), logger)
//	summary, err := exp.Export(ctx, result, filters)
package exporter
