// Copyright 2018 GRAIL, Inc.  All rights reserved.
// Use of this source code is governed by the Apache-2.0
// license that can be found in the LICENSE file.

package ranges

import (
	"context"

	"github.com/grailbio/granges/interval"
)

// Subtract removes from each row of a every position covered by a row of b.
// A row may come out whole, split into several pieces (left to right), or
// not at all.  b is merged into a disjoint union first, so overlapping b rows
// are not subtracted twice.
func Subtract(ctx context.Context, a, b *Collection, opts Opts) (*IntervalIterator, error) {
	p, err := newPairing(ctx, "subtract", a, b, opts, withUnion)
	if err != nil {
		return nil, err
	}
	var pieces []interval.Interval
	return &IntervalIterator{c: cursor[Result]{
		fill: rowFill(ctx, a, p.stranded, func(r interval.Row, key interval.GroupKey, dst []Result) []Result {
			pieces = pieces[:0]
			if p.union.Intersects(key, r.Interval) {
				pieces = interval.SubtractEndpoints(p.union.Endpoints(key), r.Interval, pieces)
			} else {
				pieces = append(pieces, r.Interval)
			}
			return appendPieces(a, r, pieces, dst)
		}),
	}}, nil
}

// Coverage reports, for each row of a in input order, how many rows of b
// overlap it and how many of its positions they cover.
func Coverage(ctx context.Context, a, b *Collection, opts Opts) (*CoverageIterator, error) {
	opts.Slack = 0
	p, err := newPairing(ctx, "coverage", a, b, opts, withIndex|withUnion)
	if err != nil {
		return nil, err
	}
	return &CoverageIterator{c: cursor[RowCoverage]{
		fill: rowFill(ctx, a, p.stranded, func(r interval.Row, key interval.GroupKey, dst []RowCoverage) []RowCoverage {
			cov := RowCoverage{A: r.ID}
			if p.union.Intersects(key, r.Interval) {
				x := p.indexes[key]
				cov.Count = x.Count(r.Interval)
				cov.Covered = interval.CoveredLen(p.union.Endpoints(key), r.Interval)
				cov.Fraction = float64(cov.Covered) / float64(r.Len())
			}
			return append(dst, cov)
		}),
	}}, nil
}
