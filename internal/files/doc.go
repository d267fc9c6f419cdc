// Package files locates census extracts on disk and manages the output
// directory.
//
// This package contains three main components:
//
// Resolver: walks the data directories once and answers which modern
// extract, legacy graduation files, legacy institution file and institution
// metadata candidates exist for each year.
//
// Manifest scan: reads the MD5 listings shipped with each year's microdata
// and reports which of the CSV files they name are present.
//
// Manager: creates the output tree and writes files atomically.
//
// Example usage:
//
//	r := files.NewResolver(cfg.Paths.DataDir, cfg.Paths.CSVDirs, logger)
//	if err := r.Scan(ctx); err != nil {
//	    return err
//	}
//	for _, year := range r.Years() {
//	    path, ok := r.ModernFile(year)
//	    ...
//	}
package files
