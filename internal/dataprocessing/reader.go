package dataprocessing

import (
	"bufio"
	"bytes"
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"

	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/transform"

	apperrors "github.com/Francelinojr/teste-gener/internal/errors"
)

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// ReadOptions controls how a census extract is decoded and batched
type ReadOptions struct {
	// Delimiters are candidate separators in preference order. The first one
	// found in the header line wins; with none found the first is used.
	Delimiters []rune
	// ChunkSize is the number of data rows per batch. Zero or less reads the
	// whole file as one batch.
	ChunkSize int
	// Encoding of the file. Defaults to ISO-8859-1, the encoding the census
	// agency publishes in. Files starting with a UTF-8 BOM are read as UTF-8.
	Encoding encoding.Encoding
}

// Modern extracts and institution metadata are semicolon-separated
var modernReadOptions = ReadOptions{Delimiters: []rune{';'}}

// Legacy extracts are pipe-separated, with some years using semicolons
var legacyReadOptions = ReadOptions{Delimiters: []rune{'|', ';'}}

// BatchFunc receives each batch in file order
type BatchFunc func(*Frame) error

// ReadBatches streams path through fn in batches of opts.ChunkSize rows.
// A header-only file yields one empty frame so callers still see the
// columns. Reading stops at the first error from fn or when ctx is done.
func ReadBatches(ctx context.Context, path string, opts ReadOptions, fn BatchFunc) error {
	f, err := os.Open(path)
	if err != nil {
		return apperrors.NewSourceUnavailableError(path, err)
	}
	defer f.Close()

	return readBatches(ctx, f, opts, fn)
}

// ReadFrame reads the whole file into a single frame
func ReadFrame(ctx context.Context, path string, opts ReadOptions) (*Frame, error) {
	opts.ChunkSize = 0
	var out *Frame
	err := ReadBatches(ctx, path, opts, func(fr *Frame) error {
		out = fr
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

func readBatches(ctx context.Context, r io.Reader, opts ReadOptions, fn BatchFunc) error {
	br, err := decodingReader(r, opts.Encoding)
	if err != nil {
		return err
	}

	head, _ := br.Peek(br.Size())
	if i := bytes.IndexByte(head, '\n'); i >= 0 {
		head = head[:i]
	}
	delims := opts.Delimiters
	if len(delims) == 0 {
		delims = []rune{';'}
	}

	cr := csv.NewReader(br)
	cr.Comma = SniffDelimiter(string(head), delims)
	cr.LazyQuotes = true
	cr.FieldsPerRecord = -1

	header, err := cr.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return apperrors.NewParsingError("empty file", err)
		}
		return apperrors.NewParsingError("read header", err)
	}
	header = append([]string(nil), header...)

	size := opts.ChunkSize
	var batch [][]string
	emitted := false
	flush := func() error {
		emitted = true
		fr := NewFrame(header, batch)
		batch = nil
		return fn(fr)
	}

	for {
		if err := ctx.Err(); err != nil {
			return err
		}
		rec, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return apperrors.NewParsingError("read row", err)
		}
		batch = append(batch, rec)
		if size > 0 && len(batch) >= size {
			if err := flush(); err != nil {
				return err
			}
		}
	}

	if len(batch) > 0 || !emitted {
		return flush()
	}
	return nil
}

func decodingReader(r io.Reader, enc encoding.Encoding) (*bufio.Reader, error) {
	raw := bufio.NewReaderSize(r, 64*1024)
	prefix, err := raw.Peek(len(utf8BOM))
	if err != nil && !errors.Is(err, io.EOF) && !errors.Is(err, bufio.ErrBufferFull) {
		return nil, apperrors.NewParsingError("peek encoding", err)
	}
	if bytes.Equal(prefix, utf8BOM) {
		if _, err := raw.Discard(len(utf8BOM)); err != nil {
			return nil, fmt.Errorf("skip bom: %w", err)
		}
		return bufio.NewReaderSize(raw, 64*1024), nil
	}
	if enc == nil {
		enc = charmap.ISO8859_1
	}
	return bufio.NewReaderSize(transform.NewReader(raw, enc.NewDecoder()), 64*1024), nil
}

// SniffDelimiter picks the first candidate that occurs in the header line
func SniffDelimiter(headerLine string, candidates []rune) rune {
	for _, c := range candidates {
		for _, r := range headerLine {
			if r == c {
				return c
			}
		}
	}
	if len(candidates) == 0 {
		return ';'
	}
	return candidates[0]
}
