// Copyright 2018 GRAIL, Inc.  All rights reserved.
// Use of this source code is governed by the Apache-2.0
// license that can be found in the LICENSE file.

package bed

import (
	"bufio"
	"bytes"
	"context"
	"fmt"
	"io"
	"strconv"

	"github.com/grailbio/base/errors"
	"github.com/grailbio/base/file"
	"github.com/grailbio/base/fileio"
	"github.com/grailbio/base/log"
	gunsafe "github.com/grailbio/base/unsafe"
	"github.com/grailbio/granges/interval"
	"github.com/grailbio/granges/ranges"
	"github.com/klauspost/compress/gzip"
	pkgerrors "github.com/pkg/errors"
)

// Opts controls BED parsing.
type Opts struct {
	// OneBased indicates that start coordinates in the file are 1-based
	// (closed), so 1 is subtracted from them.  End coordinates are the same in
	// both conventions.
	OneBased bool
	// Region, if set, drops every well-formed record which does not overlap
	// it.  Malformed records are kept so that ranges.Collect rejects them.
	Region *interval.Region
	// LabelByName sets Record.Label to the name column, so that rows are
	// only compared with rows of the same name.
	LabelByName bool
}

// maxColumns is the number of BED columns the reader looks at: chrom, start,
// end, name, score, strand.
const maxColumns = 6

// getTokens identifies up to the first len(tokens) tokens from curLine,
// returning the number of tokens saved.  Any (group of) characters <= ' ' is
// treated as a delimiter.
func getTokens(tokens [][]byte, curLine []byte) int {
	posEnd := 0
	lineLen := len(curLine)
	for tokenIdx := range tokens {
		pos := posEnd
		for ; pos != lineLen; pos++ {
			if curLine[pos] > ' ' {
				break
			}
		}
		if pos == lineLen {
			return tokenIdx
		}
		posEnd = pos
		for ; posEnd != lineLen; posEnd++ {
			if curLine[posEnd] <= ' ' {
				break
			}
		}
		tokens[tokenIdx] = curLine[pos:posEnd]
	}
	return len(tokens)
}

// isHeader returns true for lines carrying no interval: comments, and UCSC
// track and browser lines.
func isHeader(token []byte) bool {
	return token[0] == '#' || bytes.Equal(token, []byte("track")) || bytes.Equal(token, []byte("browser"))
}

// Reader reads a BED stream.  It implements ranges.Source.
//
// Only the first three columns are required.  Column 6, when present, holds
// the strand; the name and score columns are ignored.  Blank, comment, track
// and browser lines are skipped.  Coordinates are passed through as-is (after
// the OneBased adjustment); ranges.Collect rejects invalid intervals.
type Reader struct {
	scanner *bufio.Scanner
	opts    Opts
	tokens  [maxColumns][]byte
	// names interns sequence names, so that records on the same sequence
	// share one string.
	names   map[string]string
	labels  map[string]string
	lineIdx int
	rec     ranges.Record
	err     error
}

// NewReader returns a Reader for r.
func NewReader(r io.Reader, opts Opts) *Reader {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 64*1024), 16*1024*1024)
	return &Reader{
		scanner: scanner,
		opts:    opts,
		names:   make(map[string]string),
		labels:  make(map[string]string),
	}
}

func (r *Reader) parseCoord(token []byte, what string) (int64, bool) {
	v, err := strconv.ParseInt(gunsafe.BytesToString(token), 10, 64)
	if err != nil {
		r.err = errors.E(errors.Invalid, err, fmt.Sprintf("bed: line %d: bad %s coordinate %q", r.lineIdx, what, token))
		return 0, false
	}
	return v, true
}

// Scan reads the next record.  It returns false at the end of the input or
// on a malformed line; Err distinguishes the two.
func (r *Reader) Scan() bool {
	if r.err != nil {
		return false
	}
	for r.scanner.Scan() {
		r.lineIdx++
		curLine := r.scanner.Bytes()
		nToken := getTokens(r.tokens[:], curLine)
		if nToken == 0 || isHeader(r.tokens[0]) {
			continue
		}
		if nToken < 3 {
			r.err = errors.E(errors.Invalid, fmt.Sprintf("bed: line %d has fewer than 3 columns", r.lineIdx))
			return false
		}
		start, ok := r.parseCoord(r.tokens[1], "start")
		if !ok {
			return false
		}
		end, ok := r.parseCoord(r.tokens[2], "end")
		if !ok {
			return false
		}
		if r.opts.OneBased {
			start--
		}
		seq, found := r.names[gunsafe.BytesToString(r.tokens[0])]
		if !found {
			// Must copy: the token refers to scanner memory.
			seq = string(r.tokens[0])
			r.names[seq] = seq
		}
		if reg := r.opts.Region; reg != nil && start >= 0 && start < end {
			iv := interval.Interval{Start: interval.PosType(start), End: interval.PosType(end)}
			if seq != reg.Seq || !iv.Overlaps(reg.Interval) {
				continue
			}
		}
		r.rec = ranges.Record{Seq: seq, Start: start, End: end}
		if nToken == maxColumns {
			r.rec.Strand = string(r.tokens[5])
		}
		if r.opts.LabelByName && nToken >= 4 {
			r.rec.Label = r.label(r.tokens[3])
		}
		return true
	}
	if err := r.scanner.Err(); err != nil {
		r.err = errors.E(err, fmt.Sprintf("bed: reading line %d", r.lineIdx+1))
	}
	return false
}

// label interns a name-column value.
func (r *Reader) label(token []byte) string {
	if l, ok := r.labels[gunsafe.BytesToString(token)]; ok {
		return l
	}
	l := string(token)
	r.labels[l] = l
	return l
}

// Record returns the current record.
func (r *Reader) Record() ranges.Record {
	return r.rec
}

// Err returns the error that stopped Scan, if any.
func (r *Reader) Err() error {
	return r.err
}

// FileReader is a Reader over a local or remote file.  Paths ending in .gz
// are decompressed.
type FileReader struct {
	*Reader
	f  file.File
	gz *gzip.Reader
}

// Open opens a BED file.
func Open(ctx context.Context, path string, opts Opts) (*FileReader, error) {
	f, err := file.Open(ctx, path)
	if err != nil {
		return nil, errors.E(err, path)
	}
	fr := &FileReader{f: f}
	in := io.Reader(f.Reader(ctx))
	switch fileio.DetermineType(path) {
	case fileio.Gzip:
		if fr.gz, err = gzip.NewReader(in); err != nil {
			_ = f.Close(ctx)
			return nil, errors.E(err, path)
		}
		in = fr.gz
	}
	fr.Reader = NewReader(in, opts)
	return fr, nil
}

// Close closes the underlying file.
func (fr *FileReader) Close(ctx context.Context) error {
	if fr.gz != nil {
		if err := fr.gz.Close(); err != nil {
			_ = fr.f.Close(ctx)
			return errors.E(err, fr.f.Name())
		}
	}
	return fr.f.Close(ctx)
}

// Load reads and validates a whole BED file.
func Load(ctx context.Context, path string, opts Opts) (c *ranges.Collection, err error) {
	fr, err := Open(ctx, path, opts)
	if err != nil {
		return nil, err
	}
	defer func() {
		if cerr := fr.Close(ctx); cerr != nil && err == nil {
			err = cerr
		}
	}()
	if c, err = ranges.Collect(fr); err != nil {
		return nil, errors.E(err, path)
	}
	log.Printf("%s: loaded %d interval(s) on %d sequence(s)", path, c.Len(), len(c.SeqNames()))
	return c, nil
}

// ReadLimits reads a genome file: one "name length" line per sequence, as
// used by bedtools.  Extra columns are ignored.
func ReadLimits(ctx context.Context, path string) (limits map[string]int64, err error) {
	f, err := file.Open(ctx, path)
	if err != nil {
		return nil, errors.E(err, path)
	}
	defer file.CloseAndReport(ctx, f, &err)
	limits = make(map[string]int64)
	scanner := bufio.NewScanner(f.Reader(ctx))
	var tokens [2][]byte
	lineIdx := 0
	for scanner.Scan() {
		lineIdx++
		nToken := getTokens(tokens[:], scanner.Bytes())
		if nToken == 0 || tokens[0][0] == '#' {
			continue
		}
		if nToken < 2 {
			return nil, errors.E(errors.Invalid, fmt.Sprintf("%s: line %d has fewer than 2 columns", path, lineIdx))
		}
		length, perr := strconv.ParseInt(gunsafe.BytesToString(tokens[1]), 10, 64)
		if perr != nil || length < 0 {
			return nil, errors.E(errors.Invalid, fmt.Sprintf("%s: line %d: bad sequence length %q", path, lineIdx, tokens[1]))
		}
		limits[string(tokens[0])] = length
	}
	if err = scanner.Err(); err != nil {
		return nil, pkgerrors.Wrapf(err, "couldn't read genome file %s", path)
	}
	return limits, nil
}
