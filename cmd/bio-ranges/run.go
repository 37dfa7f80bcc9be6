// Copyright 2018 GRAIL, Inc.  All rights reserved.
// Use of this source code is governed by the Apache-2.0
// license that can be found in the LICENSE file.

package main

import (
	"context"
	"fmt"
	"io"

	"github.com/grailbio/base/errors"
	"github.com/grailbio/base/file"
	"github.com/grailbio/base/log"
	"github.com/grailbio/granges/encoding/bed"
	"github.com/grailbio/granges/interval"
	"github.com/grailbio/granges/ranges"
	"golang.org/x/sync/errgroup"
)

// invocation is everything a subcommand needs besides its input paths.
type invocation struct {
	cfg config
	// width and step parameterize window and tile.
	width, step int64
	// genomePath is the sequence-length file used by complement.
	genomePath string
}

// loadAll loads the BED inputs concurrently.
func loadAll(ctx context.Context, paths []string, opts bed.Opts) ([]*ranges.Collection, error) {
	colls := make([]*ranges.Collection, len(paths))
	g, gctx := errgroup.WithContext(ctx)
	for i, path := range paths {
		i, path := i, path
		g.Go(func() error {
			c, err := bed.Load(gctx, path, opts)
			colls[i] = c
			return err
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return colls, nil
}

// run executes operation op on the inputs at paths and writes the result to
// out.
func (inv *invocation) run(ctx context.Context, op string, paths []string, out io.Writer) error {
	opts, bedOpts, err := inv.cfg.options()
	if err != nil {
		return err
	}
	var limits map[string]int64
	if inv.genomePath != "" {
		if limits, err = bed.ReadLimits(ctx, inv.genomePath); err != nil {
			return err
		}
	}
	colls, err := loadAll(ctx, paths, bedOpts)
	if err != nil {
		return err
	}
	a := colls[0]
	var b *ranges.Collection
	if len(colls) > 1 {
		b = colls[1]
	}
	w := bed.NewWriter(out, a, b)

	var n int
	switch op {
	case "overlap", "join", "nearest":
		var it *ranges.MatchIterator
		switch op {
		case "overlap":
			it, err = ranges.Overlap(ctx, a, b, opts)
		case "join":
			it, err = ranges.Join(ctx, a, b, opts)
		default:
			it, err = ranges.Nearest(ctx, a, b, opts)
		}
		if err == nil {
			n, err = w.WriteMatches(it)
		}
	case "intersect", "subtract", "merge", "complement", "window", "tile":
		var it *ranges.IntervalIterator
		switch op {
		case "intersect":
			it, err = ranges.Intersect(ctx, a, b, opts)
		case "subtract":
			it, err = ranges.Subtract(ctx, a, b, opts)
		case "merge":
			it, err = ranges.Merge(ctx, a, opts)
		case "complement":
			it, err = ranges.Complement(ctx, a, opts, limits)
		case "window":
			it, err = ranges.Window(ctx, a, inv.width, inv.step)
		default:
			it, err = ranges.Tile(ctx, a, inv.width)
		}
		if err == nil {
			n, err = w.WriteResults(it)
		}
	case "coverage":
		var it *ranges.CoverageIterator
		if it, err = ranges.Coverage(ctx, a, b, opts); err == nil {
			n, err = w.WriteCoverages(it)
		}
	case "cluster":
		var cl *ranges.Clustering
		if cl, err = ranges.Cluster(ctx, a, opts); err == nil {
			for id := 0; id < a.Len() && err == nil; id++ {
				err = w.WriteCluster(interval.RowID(id), cl.ClusterOf(interval.RowID(id)))
				n++
			}
		}
	default:
		log.Panicf("unknown operation %q", op)
	}
	if err != nil {
		return errors.E(err, fmt.Sprintf("bio-ranges %s", op))
	}
	if err = w.Flush(); err != nil {
		return err
	}
	log.Printf("bio-ranges %s: wrote %d line(s)", op, n)
	return nil
}

// runToPath is run with the output sent to path, or to stdout if path is
// empty.
func (inv *invocation) runToPath(ctx context.Context, op string, paths []string, path string, stdout io.Writer) (err error) {
	if path == "" {
		return inv.run(ctx, op, paths, stdout)
	}
	out, err := file.Create(ctx, path)
	if err != nil {
		return errors.E(err, path)
	}
	defer file.CloseAndReport(ctx, out, &err)
	return inv.run(ctx, op, paths, out.Writer(ctx))
}
