// Copyright 2018 GRAIL, Inc.  All rights reserved.
// Use of this source code is governed by the Apache-2.0
// license that can be found in the LICENSE file.

package ranges

import (
	"context"

	"github.com/RoaringBitmap/roaring/v2"
	"github.com/grailbio/granges/interval"
)

// Match pairs a row of the first collection (A) with a row of the second
// (B).  B is interval.NoRow for an unmatched A row.
type Match struct {
	A interval.RowID
	B interval.RowID
	// Overlap is the geometric intersection of the two rows.  It is the zero
	// Interval when they don't overlap (unmatched rows, slack and nearest
	// matches).
	Overlap interval.Interval
	// Distance is the signed distance from A to B: 0 if they overlap,
	// negative if B is upstream.  See interval.Neighbor.  For Nearest,
	// book-ended rows and rows one position apart both report distance 1,
	// though the book-ended row ranks closer.  For Overlap and Join it is
	// the plain gap, so book-ended pairs joined through slack report 0.
	Distance int64
}

// Matched returns false for an outer-join placeholder.
func (m Match) Matched() bool {
	return m.B != interval.NoRow
}

// Result is an interval produced by an operation, such as a subtraction
// remainder, a window or a cluster.
type Result struct {
	Seq string
	interval.Interval
	Strand interval.Strand
	// Label is the label of the group the result belongs to.
	Label string
	// Row is the A row the result derives from, or NoRow for results
	// spanning several rows.
	Row interval.RowID
	// Partner is the B row of an intersection, NoRow otherwise.
	Partner interval.RowID
	// Members holds the rows of a cluster.  Nil for per-row results.
	Members *roaring.Bitmap
}

// RowIDs returns the rows contributing to the result, in increasing order.
func (r Result) RowIDs() []interval.RowID {
	if r.Members != nil {
		ids := make([]interval.RowID, 0, r.Members.GetCardinality())
		it := r.Members.Iterator()
		for it.HasNext() {
			ids = append(ids, interval.RowID(it.Next()))
		}
		return ids
	}
	if r.Row != interval.NoRow {
		return []interval.RowID{r.Row}
	}
	return nil
}

// RowCoverage describes how much of an A row the B collection covers.
type RowCoverage struct {
	A interval.RowID
	// Count is the number of B rows overlapping A.
	Count int
	// Covered is the number of A's positions inside at least one B row.
	Covered interval.PosType
	// Fraction is Covered / A's length.
	Fraction float64
}

// fillFunc appends the next batch of items to dst.  ok is false once the
// input is exhausted.
type fillFunc[T any] func(dst []T) (items []T, ok bool, err error)

// cursor is the single-pass engine behind the exported iterators.  It pulls
// one batch at a time (the output of one A row, or of one group) so that
// the full result is never materialized.
type cursor[T any] struct {
	fill fillFunc[T]
	buf  []T
	pos  int
	cur  T
	err  error
	done bool
}

func (c *cursor[T]) scan() bool {
	for c.pos >= len(c.buf) {
		if c.done {
			return false
		}
		items, ok, err := c.fill(c.buf[:0])
		if err != nil {
			c.err = err
		}
		if !ok || err != nil {
			c.done = true
			c.buf = nil
			return false
		}
		c.buf, c.pos = items, 0
	}
	c.cur = c.buf[c.pos]
	c.pos++
	return true
}

// rowFill visits the rows of a in input order and calls produce on each.
// ctx is checked whenever the walk enters a new group.
func rowFill[T any](ctx context.Context, a *Collection, stranded bool,
	produce func(r interval.Row, key interval.GroupKey, dst []T) []T) fillFunc[T] {
	var (
		next    int
		lastKey interval.GroupKey
		started bool
	)
	return func(dst []T) ([]T, bool, error) {
		if next >= a.Len() {
			return dst, false, nil
		}
		r := a.rows[next]
		key := a.Key(r.ID, stranded)
		if !started || key != lastKey {
			if err := ctx.Err(); err != nil {
				return dst, false, err
			}
			started, lastKey = true, key
		}
		next++
		return produce(r, key, dst), true, nil
	}
}

// partsFill yields precomputed per-group batches, checking ctx before each.
func partsFill[T any](ctx context.Context, parts [][]T) fillFunc[T] {
	next := 0
	return func(dst []T) ([]T, bool, error) {
		if next >= len(parts) {
			return dst, false, nil
		}
		if err := ctx.Err(); err != nil {
			return dst, false, err
		}
		next++
		return parts[next-1], true, nil
	}
}

// MatchIterator yields Matches.  It is single-pass and not restartable.
// Usage:
//
//	for it.Scan() {
//		m := it.Match()
//		...
//	}
//	if err := it.Err(); err != nil { ... }
type MatchIterator struct {
	c cursor[Match]
}

// Scan advances to the next match.
func (it *MatchIterator) Scan() bool { return it.c.scan() }

// Match returns the current match.
func (it *MatchIterator) Match() Match { return it.c.cur }

// Err returns the error that stopped Scan, such as a canceled context.
func (it *MatchIterator) Err() error { return it.c.err }

// IntervalIterator yields Results.  It is single-pass and not restartable.
type IntervalIterator struct {
	c cursor[Result]
}

// Scan advances to the next result.
func (it *IntervalIterator) Scan() bool { return it.c.scan() }

// Result returns the current result.
func (it *IntervalIterator) Result() Result { return it.c.cur }

// Err returns the error that stopped Scan.
func (it *IntervalIterator) Err() error { return it.c.err }

// CoverageIterator yields one RowCoverage per A row, in input order.
type CoverageIterator struct {
	c cursor[RowCoverage]
}

// Scan advances to the next row.
func (it *CoverageIterator) Scan() bool { return it.c.scan() }

// Coverage returns the current row's coverage.
func (it *CoverageIterator) Coverage() RowCoverage { return it.c.cur }

// Err returns the error that stopped Scan.
func (it *CoverageIterator) Err() error { return it.c.err }

// CollectMatches drains it.
func CollectMatches(it *MatchIterator) ([]Match, error) {
	var out []Match
	for it.Scan() {
		out = append(out, it.Match())
	}
	return out, it.Err()
}

// CollectResults drains it.
func CollectResults(it *IntervalIterator) ([]Result, error) {
	var out []Result
	for it.Scan() {
		out = append(out, it.Result())
	}
	return out, it.Err()
}

// CollectCoverage drains it.
func CollectCoverage(it *CoverageIterator) ([]RowCoverage, error) {
	var out []RowCoverage
	for it.Scan() {
		out = append(out, it.Coverage())
	}
	return out, it.Err()
}

// appendPieces appends one per-row Result for each piece of row r of a.
func appendPieces(a *Collection, r interval.Row, pieces []interval.Interval, dst []Result) []Result {
	seq, label := a.Seq(r.ID), a.Label(r.ID)
	for _, p := range pieces {
		dst = append(dst, Result{
			Seq:      seq,
			Interval: p,
			Strand:   r.Strand,
			Label:    label,
			Row:      r.ID,
			Partner:  interval.NoRow,
		})
	}
	return dst
}
