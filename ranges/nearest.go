// Copyright 2018 GRAIL, Inc.  All rights reserved.
// Use of this source code is governed by the Apache-2.0
// license that can be found in the LICENSE file.

package ranges

import (
	"context"

	"github.com/grailbio/granges/interval"
)

// Nearest reports, for each row of a in input order, its opts.K closest rows
// in b, closest first (see interval.Index.Nearest for distances and tie
// breaking).
//
// opts.Direction and the sign of Match.Distance are relative to the strand
// of the a row: for a Minus-strand row, upstream means higher coordinates.
// Rows farther than opts.MaxDistance (if >= 0) are dropped; an a row left
// without neighbors yields a Match with B == interval.NoRow if
// opts.KeepUnmatched is set.
func Nearest(ctx context.Context, a, b *Collection, opts Opts) (*MatchIterator, error) {
	p, err := newPairing(ctx, "nearest", a, b, opts, withIndex)
	if err != nil {
		return nil, err
	}
	var buf []interval.Neighbor
	return &MatchIterator{c: cursor[Match]{
		fill: rowFill(ctx, a, p.stranded, func(r interval.Row, key interval.GroupKey, dst []Match) []Match {
			buf = buf[:0]
			if x := p.indexes[key]; x != nil {
				nopts := interval.NearestOpts{
					K:               opts.K,
					Direction:       opts.Direction,
					MaxDistance:     opts.MaxDistance,
					ExcludeOverlaps: opts.ExcludeOverlaps,
				}
				if r.Strand == interval.Minus {
					nopts.Direction = nopts.Direction.Flip()
				}
				buf = x.Nearest(r.Interval, nopts, buf)
			}
			for _, n := range buf {
				d := n.Distance
				if r.Strand == interval.Minus {
					d = -d
				}
				dst = append(dst, Match{
					A:        r.ID,
					B:        n.Row.ID,
					Overlap:  overlapOf(r.Interval, n.Row.Interval),
					Distance: d,
				})
			}
			if len(buf) == 0 && opts.KeepUnmatched {
				dst = append(dst, Match{A: r.ID, B: interval.NoRow})
			}
			return dst
		}),
	}}, nil
}
