package dataprocessing

import (
	"strings"

	"github.com/Francelinojr/teste-gener/internal/geography"
)

// Frame is one batch of raw rows read from a census extract. Cells are kept
// as the strings found in the file; typing happens in the mappers.
type Frame struct {
	Header []string
	Rows   [][]string

	index map[string]int
}

// NewFrame builds a frame over header and rows. Rows may be shorter than
// the header; absent trailing cells read as "".
func NewFrame(header []string, rows [][]string) *Frame {
	idx := make(map[string]int, len(header))
	for i, h := range header {
		if _, dup := idx[h]; !dup {
			idx[h] = i
		}
	}
	return &Frame{Header: header, Rows: rows, index: idx}
}

// Len returns the number of rows
func (f *Frame) Len() int {
	return len(f.Rows)
}

// Lookup returns the actual header for the first of names present,
// compared case-insensitively, or "" if none is.
func (f *Frame) Lookup(names ...string) string {
	return geography.Lookup(f.Header, names...)
}

// Index returns the position of an exact header, or -1
func (f *Frame) Index(col string) int {
	if col == "" {
		return -1
	}
	if i, ok := f.index[col]; ok {
		return i
	}
	return -1
}

// Cell returns the trimmed cell at row i, column position col
func (f *Frame) Cell(i, col int) string {
	if col < 0 || i < 0 || i >= len(f.Rows) || col >= len(f.Rows[i]) {
		return ""
	}
	return strings.TrimSpace(f.Rows[i][col])
}

// Value returns the trimmed cell at row i for an exact header
func (f *Frame) Value(i int, col string) string {
	return f.Cell(i, f.Index(col))
}

// Getter binds Value to a row, in the shape geography.Plan.Resolve expects
func (f *Frame) Getter(i int) func(string) string {
	return func(col string) string {
		return f.Value(i, col)
	}
}
