// Package dataprocessing turns raw census extracts into canonical enrollment
// records.
//
// # Architecture
//
// The package is organized into four layers:
//
// 1. Reader: decodes latin1 extracts, sniffs the delimiter and streams rows
// in batches (Frame)
// 2. Mappers: project a batch onto domain.EnrollmentRecord, probing the
// alias tables in columns.go and recording the columns used (Provenance)
// 3. Joins: institution geography backfill and the legacy
// administrative-category join
// 4. Dispatcher: the per-year state machine that tries the modern extract,
// falls back to the legacy files and collapses the result to the canonical
// grain
//
// # Usage
//
//	d := dataprocessing.NewDispatcher(resolver, dataprocessing.DispatcherConfig{
//	    ChunkSize: 50000,
//	    Regions:   []domain.Region{domain.RegionNordeste},
//	}, logger)
//	res, err := d.LoadYear(ctx, 2019)
//	if err != nil {
//	    return err // only cancellation
//	}
//	fmt.Println(res.Source, len(res.Records))
//
// # Error Handling
//
// Unreadable, unparseable and empty sources are not errors. They show up in
// YearResult.Attempts and the year falls through to the next source.
package dataprocessing
