// Copyright 2018 GRAIL, Inc.  All rights reserved.
// Use of this source code is governed by the Apache-2.0
// license that can be found in the LICENSE file.

package ranges

import (
	"context"

	"github.com/grailbio/granges/interval"
)

// Window splits each row of a, in input order, into windows of the given
// width starting every step positions from the row start.  Windows are
// clipped to the row end, so the last ones may be shorter.  With step >
// width, the positions between windows are skipped.
func Window(ctx context.Context, a *Collection, width, step int64) (*IntervalIterator, error) {
	if width <= 0 {
		return nil, configErrorf("window width must be > 0, got %d", width)
	}
	if step <= 0 {
		return nil, configErrorf("window step must be > 0, got %d", step)
	}
	w, st := interval.PosType(width), interval.PosType(step)
	var pieces []interval.Interval
	return &IntervalIterator{c: cursor[Result]{
		fill: rowFill(ctx, a, false, func(r interval.Row, _ interval.GroupKey, dst []Result) []Result {
			pieces = pieces[:0]
			for s := r.Start; ; s += st {
				e := r.End
				if r.End-s > w {
					e = s + w
				}
				pieces = append(pieces, interval.Interval{Start: s, End: e})
				if r.End-s <= st {
					break
				}
			}
			return appendPieces(a, r, pieces, dst)
		}),
	}}, nil
}

// Tile reports, for each row of a in input order, every genome-aligned tile
// [k*width, (k+1)*width) the row overlaps.  Tiles are not clipped to the
// row, only to PosTypeMax.
func Tile(ctx context.Context, a *Collection, width int64) (*IntervalIterator, error) {
	if width <= 0 {
		return nil, configErrorf("tile width must be > 0, got %d", width)
	}
	w := interval.PosType(width)
	var pieces []interval.Interval
	return &IntervalIterator{c: cursor[Result]{
		fill: rowFill(ctx, a, false, func(r interval.Row, _ interval.GroupKey, dst []Result) []Result {
			pieces = pieces[:0]
			for t := r.Start / w * w; ; t += w {
				// The last tile is cut at PosTypeMax rather than wrap.
				e := interval.PosType(interval.PosTypeMax)
				if interval.PosTypeMax-t > w {
					e = t + w
				}
				pieces = append(pieces, interval.Interval{Start: t, End: e})
				if r.End-t <= w {
					break
				}
			}
			return appendPieces(a, r, pieces, dst)
		}),
	}}, nil
}
