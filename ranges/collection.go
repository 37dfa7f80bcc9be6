// Copyright 2018 GRAIL, Inc.  All rights reserved.
// Use of this source code is governed by the Apache-2.0
// license that can be found in the LICENSE file.

package ranges

import (
	"fmt"

	"github.com/grailbio/granges/interval"
)

// Collection is a validated, immutable set of rows.  Row i has RowID i, its
// position in the source; every result refers back to rows by that ID.
type Collection struct {
	// names holds each distinct sequence name once.
	names []string
	// seqIdx[i] is the index in names of row i's sequence.
	seqIdx []uint32
	// labels[i] is row i's Record.Label.  Nil if every label is empty.
	labels []string
	rows   []interval.Row
}

// Collect reads src to the end and validates every record.  The first
// malformed record fails the whole call with a *ValidationError.
func Collect(src Source) (*Collection, error) {
	c := &Collection{}
	nameIdx := make(map[string]uint32)
	for src.Scan() {
		rec := src.Record()
		rowIdx := len(c.rows)
		strand, err := validateRecord(rowIdx, rec)
		if err != nil {
			return nil, err
		}
		idx, ok := nameIdx[rec.Seq]
		if !ok {
			idx = uint32(len(c.names))
			c.names = append(c.names, rec.Seq)
			nameIdx[rec.Seq] = idx
		}
		c.seqIdx = append(c.seqIdx, idx)
		if rec.Label != "" && c.labels == nil {
			c.labels = make([]string, rowIdx, rowIdx+1)
		}
		if c.labels != nil {
			c.labels = append(c.labels, rec.Label)
		}
		c.rows = append(c.rows, interval.Row{
			Interval: interval.Interval{Start: interval.PosType(rec.Start), End: interval.PosType(rec.End)},
			ID:       interval.RowID(rowIdx),
			Strand:   strand,
		})
	}
	if err := src.Err(); err != nil {
		return nil, err
	}
	return c, nil
}

// NewCollection is shorthand for Collect(NewSliceSource(recs)).
func NewCollection(recs []Record) (*Collection, error) {
	return Collect(NewSliceSource(recs))
}

func validateRecord(rowIdx int, rec Record) (interval.Strand, error) {
	invalid := func(format string, args ...interface{}) error {
		return &ValidationError{Row: rowIdx, Record: rec, Reason: fmt.Sprintf(format, args...)}
	}
	if interval.RowID(rowIdx) >= interval.NoRow {
		return interval.Unstranded, invalid("too many rows (limit %d)", interval.NoRow)
	}
	if rec.Seq == "" {
		return interval.Unstranded, invalid("empty sequence name")
	}
	if rec.Start < 0 {
		return interval.Unstranded, invalid("negative start coordinate")
	}
	if rec.End <= rec.Start {
		if rec.End == rec.Start {
			return interval.Unstranded, invalid("zero-length interval")
		}
		return interval.Unstranded, invalid("start after end")
	}
	strand, ok := interval.ParseStrand(rec.Strand)
	if !ok {
		return interval.Unstranded, invalid("unknown strand symbol %q", rec.Strand)
	}
	return strand, nil
}

// Len returns the number of rows.
func (c *Collection) Len() int {
	return len(c.rows)
}

// Row returns the row with the given ID.
func (c *Collection) Row(id interval.RowID) interval.Row {
	return c.rows[id]
}

// Rows returns every row in input order.  The slice must not be modified.
func (c *Collection) Rows() []interval.Row {
	return c.rows
}

// Seq returns the sequence name of a row.
func (c *Collection) Seq(id interval.RowID) string {
	return c.names[c.seqIdx[id]]
}

// Label returns the label of a row.
func (c *Collection) Label(id interval.RowID) string {
	if c.labels == nil {
		return ""
	}
	return c.labels[id]
}

// Key returns the group key of a row.
func (c *Collection) Key(id interval.RowID, stranded bool) interval.GroupKey {
	return interval.NewGroupKey(c.Seq(id), c.rows[id].Strand, stranded).WithLabel(c.Label(id))
}

// Record reconstructs the input record of a row.  Strand symbols are
// normalized, so an empty input strand comes back as ".".
func (c *Collection) Record(id interval.RowID) Record {
	r := c.rows[id]
	return Record{
		Seq:    c.Seq(id),
		Start:  int64(r.Start),
		End:    int64(r.End),
		Strand: r.Strand.String(),
		Label:  c.Label(id),
	}
}

// SeqNames returns the distinct sequence names in order of first
// appearance.
func (c *Collection) SeqNames() []string {
	return c.names
}
