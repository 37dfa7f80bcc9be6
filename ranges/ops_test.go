// Copyright 2018 GRAIL, Inc.  All rights reserved.
// Use of this source code is governed by the Apache-2.0
// license that can be found in the LICENSE file.

package ranges

import (
	"context"
	"errors"
	"fmt"
	"math"
	"testing"

	"github.com/grailbio/granges/interval"
	"github.com/grailbio/testutil/expect"
	"github.com/stretchr/testify/require"
)

func overlap(t *testing.T, a, b *Collection, opts Opts) []Match {
	it, err := Overlap(context.Background(), a, b, opts)
	require.NoError(t, err)
	ms, err := CollectMatches(it)
	require.NoError(t, err)
	return ms
}

func results(t *testing.T, it *IntervalIterator, err error) []Result {
	require.NoError(t, err)
	rs, err := CollectResults(it)
	require.NoError(t, err)
	return rs
}

func pairs(ms []Match) [][2]interval.RowID {
	out := make([][2]interval.RowID, len(ms))
	for i, m := range ms {
		out[i] = [2]interval.RowID{m.A, m.B}
	}
	return out
}

func spans(rs []Result) []string {
	out := make([]string, len(rs))
	for i, r := range rs {
		out[i] = fmt.Sprintf("%s%v", r.Seq, r.Interval)
	}
	return out
}

func TestBasicScenario(t *testing.T) {
	ctx := context.Background()
	a := mustCollect(t, Record{"chr1", 100, 200, "+", ""})
	b := mustCollect(t, Record{"chr1", 150, 250, "+", ""})
	opts := DefaultOpts
	opts.Strandedness = Same

	ms := overlap(t, a, b, opts)
	expect.EQ(t, ms, []Match{{A: 0, B: 0, Overlap: interval.Interval{Start: 150, End: 200}}})

	it, err := Intersect(ctx, a, b, opts)
	rs := results(t, it, err)
	require.Equal(t, 1, len(rs))
	expect.EQ(t, rs[0], Result{
		Seq:      "chr1",
		Interval: interval.Interval{Start: 150, End: 200},
		Strand:   interval.Plus,
		Row:      0,
		Partner:  0,
	})
	expect.EQ(t, rs[0].RowIDs(), []interval.RowID{0})

	it, err = Subtract(ctx, a, b, opts)
	rs = results(t, it, err)
	expect.EQ(t, spans(rs), []string{"chr1[100,150)"})
	expect.EQ(t, rs[0].Strand, interval.Plus)
}

func TestNearestScenario(t *testing.T) {
	ctx := context.Background()
	a := mustCollect(t, Record{"chr1", 10, 20, "", ""})
	b := mustCollect(t, Record{"chr1", 30, 40, "", ""})

	it, err := Nearest(ctx, a, b, DefaultOpts)
	require.NoError(t, err)
	ms, err := CollectMatches(it)
	require.NoError(t, err)
	expect.EQ(t, ms, []Match{{A: 0, B: 0, Distance: 10}})

	opts := DefaultOpts
	opts.MaxDistance = 5
	it, err = Nearest(ctx, a, b, opts)
	require.NoError(t, err)
	ms, err = CollectMatches(it)
	require.NoError(t, err)
	expect.EQ(t, len(ms), 0)

	opts.KeepUnmatched = true
	it, err = Nearest(ctx, a, b, opts)
	require.NoError(t, err)
	ms, err = CollectMatches(it)
	require.NoError(t, err)
	expect.EQ(t, ms, []Match{{A: 0, B: interval.NoRow}})
	expect.False(t, ms[0].Matched())
}

func TestNearestStrandRelative(t *testing.T) {
	ctx := context.Background()
	a := mustCollect(t,
		Record{"chr1", 100, 110, "+", ""},
		Record{"chr1", 100, 110, "-", ""},
	)
	b := mustCollect(t,
		Record{"chr1", 50, 60, "", ""},
		Record{"chr1", 130, 140, "", ""},
	)
	opts := DefaultOpts
	opts.Direction = interval.Upstream
	it, err := Nearest(ctx, a, b, opts)
	require.NoError(t, err)
	ms, err := CollectMatches(it)
	require.NoError(t, err)
	// Upstream of a Minus-strand row lies at higher coordinates.
	expect.EQ(t, ms, []Match{
		{A: 0, B: 0, Distance: -40},
		{A: 1, B: 1, Distance: -20},
	})

	opts.Direction = interval.Either
	opts.K = 2
	it, err = Nearest(ctx, a, b, opts)
	require.NoError(t, err)
	ms, err = CollectMatches(it)
	require.NoError(t, err)
	expect.EQ(t, ms, []Match{
		{A: 0, B: 1, Distance: 20},
		{A: 0, B: 0, Distance: -40},
		{A: 1, B: 1, Distance: -20},
		{A: 1, B: 0, Distance: 40},
	})
}

func TestEmptyPartnerGroup(t *testing.T) {
	a := mustCollect(t,
		Record{"chr1", 0, 10, "", ""},
		Record{"chr2", 0, 10, "", ""},
		Record{"chr1", 20, 30, "", ""},
	)
	b := mustCollect(t, Record{"chr2", 5, 15, "", ""})
	expect.EQ(t, pairs(overlap(t, a, b, DefaultOpts)), [][2]interval.RowID{{1, 0}})

	opts := DefaultOpts
	opts.KeepUnmatched = true
	expect.EQ(t, pairs(overlap(t, a, b, opts)), [][2]interval.RowID{
		{0, interval.NoRow},
		{1, 0},
		{2, interval.NoRow},
	})

	opts.Strict = true
	_, err := Overlap(context.Background(), a, b, opts)
	var gerr *GroupMismatchError
	require.True(t, errors.As(err, &gerr))
	expect.EQ(t, gerr.Key, interval.GroupKey{Seq: "chr1"})
}

func TestOverlapByLabel(t *testing.T) {
	rec := func(start, end int64, label string) Record {
		return Record{Seq: "chr1", Start: start, End: end, Label: label}
	}
	a := mustCollect(t, rec(1, 3, "a"), rec(1, 3, "b"), rec(4, 5, "a"), rec(2, 4, "d"))
	b := mustCollect(t, rec(0, 1, "a"), rec(2, 20, "d"))
	expect.EQ(t, a.Label(3), "d")
	expect.EQ(t, pairs(overlap(t, a, b, DefaultOpts)), [][2]interval.RowID{{3, 1}})

	unlabeled := mustCollect(t, rec(1, 3, ""), rec(1, 3, ""), rec(4, 5, ""), rec(2, 4, ""))
	expect.EQ(t, unlabeled.Label(3), "")
	expect.EQ(t, pairs(overlap(t, unlabeled, b, DefaultOpts)), [][2]interval.RowID{})
	b = mustCollect(t, rec(0, 1, ""), rec(2, 20, ""))
	expect.EQ(t, pairs(overlap(t, unlabeled, b, DefaultOpts)), [][2]interval.RowID{{0, 1}, {1, 1}, {2, 1}, {3, 1}})
	b = mustCollect(t, rec(0, 1, "a"), rec(2, 20, "d"))

	it, err := Merge(context.Background(), a, DefaultOpts)
	rs := results(t, it, err)
	expect.EQ(t, spans(rs), []string{"chr1[1,3)", "chr1[4,5)", "chr1[1,3)", "chr1[2,4)"})
	var labels []string
	for _, r := range rs {
		labels = append(labels, r.Label)
	}
	expect.EQ(t, labels, []string{"a", "a", "b", "d"})

	opts := DefaultOpts
	opts.Strict = true
	_, err = Overlap(context.Background(), a, b, opts)
	var gerr *GroupMismatchError
	require.True(t, errors.As(err, &gerr))
	expect.EQ(t, gerr.Key, interval.GroupKey{Seq: "chr1", Label: "b"})
}

func TestOverlapStrandedness(t *testing.T) {
	a := mustCollect(t,
		Record{"chr1", 0, 10, "+", ""},
		Record{"chr1", 0, 10, "", ""},
	)
	b := mustCollect(t,
		Record{"chr1", 5, 15, "-", ""},
		Record{"chr1", 5, 15, "+", ""},
		Record{"chr1", 5, 15, ".", ""},
	)
	opts := DefaultOpts
	expect.EQ(t, pairs(overlap(t, a, b, opts)), [][2]interval.RowID{
		{0, 0}, {0, 1}, {0, 2}, {1, 0}, {1, 1}, {1, 2},
	})
	opts.Strandedness = Same
	expect.EQ(t, pairs(overlap(t, a, b, opts)), [][2]interval.RowID{{0, 1}, {1, 2}})
	opts.Strandedness = Opposite
	expect.EQ(t, pairs(overlap(t, a, b, opts)), [][2]interval.RowID{{0, 0}, {1, 2}})
}

func TestOverlapHow(t *testing.T) {
	a := mustCollect(t,
		Record{"chr1", 0, 100, "", ""},
		Record{"chr1", 10, 20, "", ""},
	)
	b := mustCollect(t,
		Record{"chr1", 50, 60, "", ""},
		Record{"chr1", 10, 20, "", ""},
		Record{"chr1", 0, 30, "", ""},
		Record{"chr1", 5, 20, "", ""},
		Record{"chr1", 15, 25, "", ""},
	)
	opts := DefaultOpts
	expect.EQ(t, pairs(overlap(t, a, b, opts)), [][2]interval.RowID{
		{0, 2}, {0, 3}, {0, 1}, {0, 4}, {0, 0},
		{1, 2}, {1, 3}, {1, 1}, {1, 4},
	})
	opts.How = First
	expect.EQ(t, pairs(overlap(t, a, b, opts)), [][2]interval.RowID{{0, 2}, {1, 2}})
	opts.How = Containment
	expect.EQ(t, pairs(overlap(t, a, b, opts)), [][2]interval.RowID{{1, 2}, {1, 3}, {1, 1}})

	opts.KeepUnmatched = true
	_, err := Overlap(context.Background(), a, b, opts)
	var cerr *ConfigurationError
	expect.True(t, errors.As(err, &cerr))
}

func TestOverlapSlack(t *testing.T) {
	a := mustCollect(t, Record{"chr1", 0, 10, "", ""})
	b := mustCollect(t, Record{"chr1", 12, 20, "", ""})
	opts := DefaultOpts
	opts.Slack = 2
	expect.EQ(t, len(overlap(t, a, b, opts)), 0)
	opts.Slack = 3
	expect.EQ(t, overlap(t, a, b, opts), []Match{{A: 0, B: 0, Distance: 2}})

	it, err := Join(context.Background(), a, b, opts)
	require.NoError(t, err)
	ms, err := CollectMatches(it)
	require.NoError(t, err)
	expect.EQ(t, ms, []Match{{A: 0, B: 0, Distance: 2}})
	expect.True(t, ms[0].Overlap.Empty())
}

func TestJoinIgnoresHow(t *testing.T) {
	a := mustCollect(t, Record{"chr1", 0, 10, "", ""}, Record{"chr1", 50, 60, "", ""})
	b := mustCollect(t, Record{"chr1", 5, 20, "", ""}, Record{"chr1", 2, 4, "", ""})
	opts := DefaultOpts
	opts.How = First
	opts.KeepUnmatched = true
	it, err := Join(context.Background(), a, b, opts)
	require.NoError(t, err)
	ms, err := CollectMatches(it)
	require.NoError(t, err)
	expect.EQ(t, ms, []Match{
		{A: 0, B: 1, Overlap: interval.Interval{Start: 2, End: 4}},
		{A: 0, B: 0, Overlap: interval.Interval{Start: 5, End: 10}},
		{A: 1, B: interval.NoRow},
	})
}

func TestSubtract(t *testing.T) {
	a := mustCollect(t,
		Record{"chr1", 0, 100, "+", ""},
		Record{"chr2", 0, 10, "-", ""},
		Record{"chr1", 40, 45, "+", ""},
	)
	b := mustCollect(t,
		Record{"chr1", 10, 20, "", ""},
		Record{"chr1", 15, 30, "", ""},
		Record{"chr1", 50, 60, "", ""},
		Record{"chr1", 95, 120, "", ""},
	)
	it, err := Subtract(context.Background(), a, b, DefaultOpts)
	rs := results(t, it, err)
	expect.EQ(t, spans(rs), []string{
		"chr1[0,10)", "chr1[30,50)", "chr1[60,95)",
		"chr2[0,10)",
		"chr1[40,45)",
	})
	for i, want := range []interval.RowID{0, 0, 0, 1, 2} {
		expect.EQ(t, rs[i].Row, want)
		expect.EQ(t, rs[i].Partner, interval.NoRow)
	}
	expect.EQ(t, rs[3].Strand, interval.Minus)

	b = mustCollect(t, Record{"chr2", 0, 20, "", ""})
	it, err = Subtract(context.Background(), a, b, DefaultOpts)
	rs = results(t, it, err)
	expect.EQ(t, spans(rs), []string{"chr1[0,100)", "chr1[40,45)"})
}

func TestCoverage(t *testing.T) {
	a := mustCollect(t,
		Record{"chr1", 0, 10, "", ""},
		Record{"chr2", 0, 10, "", ""},
	)
	b := mustCollect(t,
		Record{"chr1", 2, 4, "", ""},
		Record{"chr1", 3, 6, "", ""},
		Record{"chr1", 8, 12, "", ""},
	)
	it, err := Coverage(context.Background(), a, b, DefaultOpts)
	require.NoError(t, err)
	covs, err := CollectCoverage(it)
	require.NoError(t, err)
	expect.EQ(t, covs, []RowCoverage{
		{A: 0, Count: 3, Covered: 6, Fraction: 0.6},
		{A: 1},
	})
}

func TestCluster(t *testing.T) {
	ctx := context.Background()
	a := mustCollect(t,
		Record{"chr1", 10, 20, "", ""},
		Record{"chr1", 20, 30, "", ""},
		Record{"chr1", 35, 40, "", ""},
		Record{"chr2", 0, 5, "", ""},
		Record{"chr1", 5, 8, "", ""},
	)
	cl, err := Cluster(ctx, a, DefaultOpts)
	require.NoError(t, err)
	expect.EQ(t, cl.Len(), 4)
	clusters := cl.Clusters()
	expect.EQ(t, spans(clusters), []string{"chr1[5,8)", "chr1[10,30)", "chr1[35,40)", "chr2[0,5)"})
	expect.EQ(t, clusters[1].RowIDs(), []interval.RowID{0, 1})
	expect.EQ(t, clusters[1].Row, interval.NoRow)
	for id, want := range []int{1, 1, 2, 3, 0} {
		expect.EQ(t, cl.ClusterOf(interval.RowID(id)), want, "row %d", id)
	}

	opts := DefaultOpts
	opts.Slack = 5
	it, err := Merge(ctx, a, opts)
	rs := results(t, it, err)
	expect.EQ(t, spans(rs), []string{"chr1[5,40)", "chr2[0,5)"})
	expect.EQ(t, rs[0].RowIDs(), []interval.RowID{0, 1, 2, 4})
	expect.EQ(t, rs[1].RowIDs(), []interval.RowID{3})
}

func TestClusterStranded(t *testing.T) {
	a := mustCollect(t,
		Record{"chr1", 0, 10, "+", ""},
		Record{"chr1", 5, 15, "-", ""},
		Record{"chr1", 12, 20, "+", ""},
	)
	opts := DefaultOpts
	opts.Strandedness = Same
	opts.Slack = 2
	it, err := Merge(context.Background(), a, opts)
	rs := results(t, it, err)
	expect.EQ(t, spans(rs), []string{"chr1[0,20)", "chr1[5,15)"})
	expect.EQ(t, rs[0].Strand, interval.Plus)
	expect.EQ(t, rs[1].Strand, interval.Minus)
}

func TestComplement(t *testing.T) {
	a := mustCollect(t,
		Record{"chr1", 10, 20, "", ""},
		Record{"chr2", 5, 10, "", ""},
		Record{"chr1", 15, 30, "", ""},
		Record{"chr1", 40, 50, "", ""},
	)
	limits := map[string]int64{"chr1": 60, "chr3": 5}
	it, err := Complement(context.Background(), a, DefaultOpts, limits)
	rs := results(t, it, err)
	expect.EQ(t, spans(rs), []string{
		"chr1[0,10)", "chr1[30,40)", "chr1[50,60)",
		"chr2[0,5)",
		"chr3[0,5)",
	})
	expect.EQ(t, len(rs[0].RowIDs()), 0)

	opts := DefaultOpts
	opts.Slack = 10
	it, err = Complement(context.Background(), a, opts, nil)
	rs = results(t, it, err)
	expect.EQ(t, spans(rs), []string{"chr1[0,10)", "chr2[0,5)"})
}

func TestWindowAndTile(t *testing.T) {
	ctx := context.Background()
	a := mustCollect(t, Record{"chr1", 0, 25, "-", ""}, Record{"chr2", 5, 25, "", ""})

	it, err := Window(ctx, a, 10, 10)
	rs := results(t, it, err)
	expect.EQ(t, spans(rs), []string{
		"chr1[0,10)", "chr1[10,20)", "chr1[20,25)",
		"chr2[5,15)", "chr2[15,25)",
	})
	expect.EQ(t, rs[0].Strand, interval.Minus)
	expect.EQ(t, rs[3].Row, interval.RowID(1))

	it, err = Window(ctx, a, 10, 15)
	rs = results(t, it, err)
	expect.EQ(t, spans(rs), []string{"chr1[0,10)", "chr1[15,25)", "chr2[5,15)", "chr2[20,25)"})

	it, err = Tile(ctx, a, 10)
	rs = results(t, it, err)
	expect.EQ(t, spans(rs), []string{
		"chr1[0,10)", "chr1[10,20)", "chr1[20,30)",
		"chr2[0,10)", "chr2[10,20)", "chr2[20,30)",
	})

	var cerr *ConfigurationError
	_, err = Window(ctx, a, 0, 1)
	expect.True(t, errors.As(err, &cerr))
	_, err = Window(ctx, a, 1, 0)
	expect.True(t, errors.As(err, &cerr))
	_, err = Tile(ctx, a, -3)
	expect.True(t, errors.As(err, &cerr))
}

func TestWindowAndTileNearPosTypeMax(t *testing.T) {
	ctx := context.Background()
	const maxPos = interval.PosType(math.MaxInt64)
	a := mustCollect(t, Record{"chr1", math.MaxInt64 - 5, math.MaxInt64, "+", ""})
	ivs := func(rs []Result) []interval.Interval {
		var out []interval.Interval
		for _, r := range rs {
			out = append(out, r.Interval)
		}
		return out
	}

	it, err := Window(ctx, a, 10, 10)
	expect.EQ(t, ivs(results(t, it, err)), []interval.Interval{{Start: maxPos - 5, End: maxPos}})
	it, err = Window(ctx, a, 10, 3)
	expect.EQ(t, ivs(results(t, it, err)), []interval.Interval{{Start: maxPos - 5, End: maxPos}, {Start: maxPos - 2, End: maxPos}})
	it, err = Tile(ctx, a, 10)
	expect.EQ(t, ivs(results(t, it, err)), []interval.Interval{{Start: maxPos - 7, End: maxPos}})
	it, err = Tile(ctx, a, 4)
	expect.EQ(t, ivs(results(t, it, err)), []interval.Interval{{Start: maxPos - 7, End: maxPos - 3}, {Start: maxPos - 3, End: maxPos}})
}

func TestCancellation(t *testing.T) {
	a := mustCollect(t, Record{"chr1", 0, 10, "", ""}, Record{"chr2", 0, 10, "", ""})
	b := mustCollect(t, Record{"chr1", 5, 15, "", ""})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := Overlap(ctx, a, b, DefaultOpts)
	expect.True(t, errors.Is(err, context.Canceled))
	_, err = Cluster(ctx, a, DefaultOpts)
	expect.True(t, errors.Is(err, context.Canceled))

	// Cancelling mid-iteration stops at the next group.
	ctx, cancel = context.WithCancel(context.Background())
	it, err := Overlap(ctx, a, b, DefaultOpts)
	require.NoError(t, err)
	require.True(t, it.Scan())
	expect.EQ(t, it.Match().A, interval.RowID(0))
	cancel()
	expect.False(t, it.Scan())
	expect.True(t, errors.Is(it.Err(), context.Canceled))
	expect.False(t, it.Scan())
}
