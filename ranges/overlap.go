// Copyright 2018 GRAIL, Inc.  All rights reserved.
// Use of this source code is governed by the Apache-2.0
// license that can be found in the LICENSE file.

package ranges

import (
	"context"
	"fmt"

	"github.com/grailbio/base/log"
	"github.com/grailbio/granges/interval"
)

// pairing holds the per-group search structures over B, keyed by the A
// group whose rows query them.
type pairing struct {
	a        *Collection
	b        *Collection
	opts     Opts
	stranded bool
	indexes  map[interval.GroupKey]*interval.Index
	union    interval.Union
}

// pairFlags selects which structures newPairing builds.
type pairFlags int

const (
	withIndex pairFlags = 1 << iota
	withUnion
)

// newPairing validates opts, partitions both collections, and builds an
// index and/or a merged union for every B group that some A group is
// compared against.  Groups are processed in parallel.
func newPairing(ctx context.Context, op string, a, b *Collection, opts Opts, flags pairFlags) (*pairing, error) {
	if err := opts.Validate(); err != nil {
		return nil, err
	}
	stranded := opts.stranded()
	groupsA := Partition(a, stranded)
	groupsB := Partition(b, stranded)
	keys := groupsA.Keys()
	stores := make([]*interval.Store, len(keys))
	for i, key := range keys {
		stores[i] = groupsB.Get(opts.partner(key))
		if stores[i] == nil && opts.Strict {
			return nil, &GroupMismatchError{Key: key}
		}
	}
	indexes := make([]*interval.Index, len(keys))
	endpoints := make([][]interval.PosType, len(keys))
	err := forEachGroup(ctx, opts.Parallelism, len(keys), func(i int) error {
		s := stores[i]
		if s == nil {
			return nil
		}
		if flags&withIndex != 0 {
			indexes[i] = interval.NewIndex(s)
		}
		if flags&withUnion != 0 {
			s.Sort()
			endpoints[i] = interval.MergeEndpoints(s.Rows(), 0, nil)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	p := &pairing{
		a:        a,
		b:        b,
		opts:     opts,
		stranded: stranded,
		indexes:  make(map[interval.GroupKey]*interval.Index, len(keys)),
		union:    interval.NewUnion(),
	}
	paired := 0
	for i, key := range keys {
		if stores[i] == nil {
			continue
		}
		paired++
		if indexes[i] != nil {
			p.indexes[key] = indexes[i]
		}
		if endpoints[i] != nil {
			p.union.Set(key, endpoints[i])
		}
	}
	log.Debug.Printf("ranges: %s: %d rows in %d groups vs %d rows in %d groups, %d groups paired",
		op, a.Len(), len(keys), b.Len(), groupsB.Len(), paired)
	return p, nil
}

func overlapOf(a, b interval.Interval) interval.Interval {
	iv := a.Intersect(b)
	if iv.Empty() {
		return interval.Interval{}
	}
	return iv
}

func signedGap(a, b interval.Interval) int64 {
	gap, side := a.Gap(b)
	return int64(gap) * int64(side)
}

// matches appends the matches of A row r to dst, B rows in coordinate
// order.
func (p *pairing) matches(r interval.Row, key interval.GroupKey, how How, keepUnmatched bool, dst []Match) []Match {
	n := len(dst)
	if x := p.indexes[key]; x != nil {
		slack := interval.PosType(p.opts.Slack)
		x.Overlapping(r.Expand(slack), func(b interval.Row) bool {
			if how == Containment && !b.Expand(slack).Contains(r.Interval) {
				return true
			}
			dst = append(dst, Match{
				A:        r.ID,
				B:        b.ID,
				Overlap:  overlapOf(r.Interval, b.Interval),
				Distance: signedGap(r.Interval, b.Interval),
			})
			return how != First
		})
	}
	if len(dst) == n && keepUnmatched {
		dst = append(dst, Match{A: r.ID, B: interval.NoRow})
	}
	return dst
}

func (p *pairing) matchIterator(ctx context.Context, how How, keepUnmatched bool) *MatchIterator {
	return &MatchIterator{c: cursor[Match]{
		fill: rowFill(ctx, p.a, p.stranded, func(r interval.Row, key interval.GroupKey, dst []Match) []Match {
			return p.matches(r, key, how, keepUnmatched, dst)
		}),
	}}
}

// Overlap reports, for each row of a in input order, the rows of b it
// overlaps, in b-coordinate order.  opts.How selects all matches, only the
// leftmost one, or only rows of b containing the row of a.  opts.Slack
// widens b's rows on both sides.  With opts.KeepUnmatched, an a row without
// matches yields one Match whose B is interval.NoRow.
func Overlap(ctx context.Context, a, b *Collection, opts Opts) (*MatchIterator, error) {
	p, err := newPairing(ctx, "overlap", a, b, opts, withIndex)
	if err != nil {
		return nil, err
	}
	return p.matchIterator(ctx, opts.How, opts.KeepUnmatched), nil
}

// Join is Overlap with every match reported, regardless of opts.How.  Each
// Match carries the geometric overlap of the pair and, for pairs joined
// through opts.Slack, their signed distance.  KeepUnmatched makes it a left
// outer join.
func Join(ctx context.Context, a, b *Collection, opts Opts) (*MatchIterator, error) {
	opts.How = All
	p, err := newPairing(ctx, "join", a, b, opts, withIndex)
	if err != nil {
		return nil, err
	}
	return p.matchIterator(ctx, All, opts.KeepUnmatched), nil
}

// Intersect reports the geometric intersection of every overlapping pair,
// for each row of a in input order.  Slack and KeepUnmatched do not apply.
func Intersect(ctx context.Context, a, b *Collection, opts Opts) (*IntervalIterator, error) {
	opts.Slack = 0
	opts.KeepUnmatched = false
	p, err := newPairing(ctx, "intersect", a, b, opts, withIndex)
	if err != nil {
		return nil, err
	}
	var buf []Match
	return &IntervalIterator{c: cursor[Result]{
		fill: rowFill(ctx, a, p.stranded, func(r interval.Row, key interval.GroupKey, dst []Result) []Result {
			buf = p.matches(r, key, opts.How, false, buf[:0])
			seq, label := a.Seq(r.ID), a.Label(r.ID)
			for _, m := range buf {
				if m.Overlap.Empty() {
					panic(fmt.Sprintf("internal error: Intersect: empty intersection of rows %d %v and %d %v",
						m.A, r.Interval, m.B, b.Row(m.B).Interval))
				}
				dst = append(dst, Result{
					Seq:      seq,
					Interval: m.Overlap,
					Strand:   r.Strand,
					Label:    label,
					Row:      m.A,
					Partner:  m.B,
				})
			}
			return dst
		}),
	}}, nil
}
