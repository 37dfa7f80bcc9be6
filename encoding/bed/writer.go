// Copyright 2018 GRAIL, Inc.  All rights reserved.
// Use of this source code is governed by the Apache-2.0
// license that can be found in the LICENSE file.

package bed

import (
	"io"
	"strconv"
	"strings"

	"github.com/grailbio/base/tsv"
	"github.com/grailbio/granges/interval"
	"github.com/grailbio/granges/ranges"
)

// Writer emits operation results as tab-separated BED-like lines.
// Coordinates are always 0-based, half-open.
type Writer struct {
	w *tsv.Writer
	// a and b are the operands of the operation, used to print the rows that
	// matches refer to.
	a, b *ranges.Collection
	ids  strings.Builder
}

// NewWriter returns a Writer for results of an operation on a (and b, for
// two-collection operations; it may be nil otherwise).
func NewWriter(w io.Writer, a, b *ranges.Collection) *Writer {
	return &Writer{w: tsv.NewWriter(w), a: a, b: b}
}

func (w *Writer) writeRow(c *ranges.Collection, id interval.RowID) {
	if c == nil || id == interval.NoRow {
		w.w.WriteString(".")
		w.w.WriteInt64(-1)
		w.w.WriteInt64(-1)
		w.w.WriteString(".")
		return
	}
	rec := c.Record(id)
	w.w.WriteString(rec.Seq)
	w.w.WriteInt64(rec.Start)
	w.w.WriteInt64(rec.End)
	w.w.WriteString(rec.Strand)
}

// WriteResult writes a BED6 line: sequence, start, end, the comma-separated
// contributing row ids (or "." if none), their count, and strand.
func (w *Writer) WriteResult(r ranges.Result) error {
	w.w.WriteString(r.Seq)
	w.w.WriteInt64(int64(r.Start))
	w.w.WriteInt64(int64(r.End))
	ids := r.RowIDs()
	if len(ids) == 0 {
		w.w.WriteString(".")
	} else {
		w.ids.Reset()
		for i, id := range ids {
			if i > 0 {
				w.ids.WriteByte(',')
			}
			w.ids.WriteString(strconv.FormatUint(uint64(id), 10))
		}
		w.w.WriteString(w.ids.String())
	}
	w.w.WriteInt64(int64(len(ids)))
	w.w.WriteString(r.Strand.String())
	return w.w.EndLine()
}

// WriteMatch writes the A row, the B row (". -1 -1 ." when unmatched), the
// number of overlapping positions and the signed distance.
func (w *Writer) WriteMatch(m ranges.Match) error {
	w.writeRow(w.a, m.A)
	w.writeRow(w.b, m.B)
	w.w.WriteInt64(int64(m.Overlap.Len()))
	w.w.WriteInt64(m.Distance)
	return w.w.EndLine()
}

// WriteCoverage writes the A row followed by the number of overlapping B
// rows, the covered positions, the row length and the covered fraction.
func (w *Writer) WriteCoverage(c ranges.RowCoverage) error {
	w.writeRow(w.a, c.A)
	w.w.WriteInt64(int64(c.Count))
	w.w.WriteInt64(int64(c.Covered))
	w.w.WriteInt64(int64(w.a.Row(c.A).Len()))
	w.w.WriteString(strconv.FormatFloat(c.Fraction, 'f', 7, 64))
	return w.w.EndLine()
}

// WriteCluster writes an A row followed by the id of its cluster.
func (w *Writer) WriteCluster(id interval.RowID, cluster int) error {
	w.writeRow(w.a, id)
	w.w.WriteInt64(int64(cluster))
	return w.w.EndLine()
}

// Flush flushes buffered output.
func (w *Writer) Flush() error {
	return w.w.Flush()
}

// WriteResults drains it into w, and returns the number of lines written.
func (w *Writer) WriteResults(it *ranges.IntervalIterator) (n int, err error) {
	for it.Scan() {
		if err = w.WriteResult(it.Result()); err != nil {
			return
		}
		n++
	}
	return n, it.Err()
}

// WriteMatches drains it into w.
func (w *Writer) WriteMatches(it *ranges.MatchIterator) (n int, err error) {
	for it.Scan() {
		if err = w.WriteMatch(it.Match()); err != nil {
			return
		}
		n++
	}
	return n, it.Err()
}

// WriteCoverages drains it into w.
func (w *Writer) WriteCoverages(it *ranges.CoverageIterator) (n int, err error) {
	for it.Scan() {
		if err = w.WriteCoverage(it.Coverage()); err != nil {
			return
		}
		n++
	}
	return n, it.Err()
}
