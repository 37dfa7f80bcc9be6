// Copyright 2018 GRAIL, Inc.  All rights reserved.
// Use of this source code is governed by the Apache-2.0
// license that can be found in the LICENSE file.

package ranges

// Record is one input row as provided by an ingestion source.  Coordinates
// are 0-based, half-open.  Strand is a BED strand symbol ("+", "-", "." or
// empty).
type Record struct {
	Seq    string
	Start  int64
	End    int64
	Strand string
	// Label optionally splits rows into finer groups: rows are only compared
	// with rows carrying the same label.  Empty for most inputs.
	Label string
}

// Source is the ingestion boundary: anything that can iterate over records.
// Usage:
//
//	for src.Scan() {
//		rec := src.Record()
//		...
//	}
//	if err := src.Err(); err != nil { ... }
type Source interface {
	// Scan advances to the next record, returning false at the end of the
	// input or on error.
	Scan() bool
	// Record returns the current record.
	Record() Record
	// Err returns the error, if any, that stopped Scan.
	Err() error
}

// SliceSource is a Source over an in-memory slice.
type SliceSource struct {
	recs []Record
	next int
}

// NewSliceSource returns a Source yielding recs in order.
func NewSliceSource(recs []Record) *SliceSource {
	return &SliceSource{recs: recs}
}

// Scan implements Source.
func (s *SliceSource) Scan() bool {
	if s.next >= len(s.recs) {
		return false
	}
	s.next++
	return true
}

// Record implements Source.
func (s *SliceSource) Record() Record {
	return s.recs[s.next-1]
}

// Err implements Source.  It always returns nil.
func (s *SliceSource) Err() error {
	return nil
}
