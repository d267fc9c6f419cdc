package dataprocessing

import "github.com/Francelinojr/teste-gener/pkg/contracts/domain"

// Accumulator collapses records onto the canonical grain. Records sharing a
// grain have their counts summed with missing-aware addition; each grain
// keeps the position where it first appeared, so output order depends only
// on input order and never on batch boundaries.
type Accumulator struct {
	index   map[domain.GrainKey]int
	records []domain.EnrollmentRecord
}

// NewAccumulator creates an empty accumulator
func NewAccumulator() *Accumulator {
	return &Accumulator{index: make(map[domain.GrainKey]int)}
}

// Add merges recs into the running aggregate
func (a *Accumulator) Add(recs ...domain.EnrollmentRecord) {
	for _, r := range recs {
		key := r.Grain()
		if i, ok := a.index[key]; ok {
			a.records[i] = a.records[i].Merge(r)
			continue
		}
		a.index[key] = len(a.records)
		a.records = append(a.records, r)
	}
}

// Len returns the number of distinct grains seen
func (a *Accumulator) Len() int {
	return len(a.records)
}

// Records returns the collapsed records
func (a *Accumulator) Records() []domain.EnrollmentRecord {
	return a.records
}

// Collapse folds recs onto the canonical grain in one pass
func Collapse(recs []domain.EnrollmentRecord) []domain.EnrollmentRecord {
	acc := NewAccumulator()
	acc.Add(recs...)
	return acc.Records()
}
