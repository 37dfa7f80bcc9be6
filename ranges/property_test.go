// Copyright 2018 GRAIL, Inc.  All rights reserved.
// Use of this source code is governed by the Apache-2.0
// license that can be found in the LICENSE file.

package ranges

import (
	"context"
	"math/rand"
	"sort"
	"testing"

	"github.com/grailbio/granges/interval"
	"github.com/grailbio/testutil/expect"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testSeqs = []string{"chr1", "chr2", "chrX"}
var testStrands = []string{"+", "-", "."}

func randomCollection(t *testing.T, r *rand.Rand, n int, maxLen int64) *Collection {
	recs := make([]Record, n)
	for i := range recs {
		start := r.Int63n(1000)
		recs[i] = Record{
			Seq:    testSeqs[r.Intn(len(testSeqs))],
			Start:  start,
			End:    start + 1 + r.Int63n(maxLen),
			Strand: testStrands[r.Intn(len(testStrands))],
		}
	}
	return mustCollect(t, recs...)
}

func sortedPairs(ps [][2]interval.RowID) [][2]interval.RowID {
	sort.Slice(ps, func(i, j int) bool {
		if ps[i][0] != ps[j][0] {
			return ps[i][0] < ps[j][0]
		}
		return ps[i][1] < ps[j][1]
	})
	return ps
}

// collectRecords turns results back into a collection.
func collectRecords(t *testing.T, rs []Result) *Collection {
	recs := make([]Record, len(rs))
	for i, r := range rs {
		recs[i] = Record{Seq: r.Seq, Start: int64(r.Start), End: int64(r.End), Strand: r.Strand.String()}
	}
	return mustCollect(t, recs...)
}

func TestOverlapSymmetric(t *testing.T) {
	r := rand.New(rand.NewSource(0))
	for _, strandedness := range []Strandedness{Ignore, Same, Opposite} {
		a := randomCollection(t, r, 300, 50)
		b := randomCollection(t, r, 200, 80)
		opts := DefaultOpts
		opts.Strandedness = strandedness
		opts.Parallelism = 2
		ab := pairs(overlap(t, a, b, opts))
		ba := pairs(overlap(t, b, a, opts))
		for i := range ba {
			ba[i][0], ba[i][1] = ba[i][1], ba[i][0]
		}
		expect.EQ(t, sortedPairs(ab), sortedPairs(ba), "strandedness %v", strandedness)
		assert.NotEmpty(t, ab)

		// Brute force.
		var want [][2]interval.RowID
		for _, ra := range a.Rows() {
			for _, rb := range b.Rows() {
				if a.Seq(ra.ID) != b.Seq(rb.ID) || !ra.Overlaps(rb.Interval) {
					continue
				}
				switch strandedness {
				case Same:
					if ra.Strand != rb.Strand {
						continue
					}
				case Opposite:
					if ra.Strand.Opposite() != rb.Strand {
						continue
					}
				}
				want = append(want, [2]interval.RowID{ra.ID, rb.ID})
			}
		}
		expect.EQ(t, sortedPairs(ab), want)
	}
}

func TestOverlapOrder(t *testing.T) {
	r := rand.New(rand.NewSource(1))
	a := randomCollection(t, r, 200, 50)
	b := randomCollection(t, r, 200, 50)
	ms := overlap(t, a, b, DefaultOpts)
	for i := 1; i < len(ms); i++ {
		prev, cur := ms[i-1], ms[i]
		require.True(t, prev.A <= cur.A)
		if prev.A == cur.A {
			pb, cb := b.Row(prev.B), b.Row(cur.B)
			require.True(t, pb.Start <= cb.Start, "match %d: %v then %v", i, pb, cb)
		}
	}
}

func TestIntersectSubset(t *testing.T) {
	r := rand.New(rand.NewSource(2))
	a := randomCollection(t, r, 300, 60)
	b := randomCollection(t, r, 300, 60)
	it, err := Intersect(context.Background(), a, b, DefaultOpts)
	rs := results(t, it, err)
	ms := overlap(t, a, b, DefaultOpts)
	require.Equal(t, len(ms), len(rs))
	for i, res := range rs {
		ra, rb := a.Row(res.Row), b.Row(res.Partner)
		expect.EQ(t, res.Row, ms[i].A)
		expect.EQ(t, res.Partner, ms[i].B)
		expect.False(t, res.Empty())
		expect.True(t, ra.Contains(res.Interval), "%v not in %v", res.Interval, ra)
		expect.True(t, rb.Contains(res.Interval), "%v not in %v", res.Interval, rb)
	}
}

func TestClusterProperties(t *testing.T) {
	r := rand.New(rand.NewSource(3))
	a := randomCollection(t, r, 400, 30)
	ctx := context.Background()
	for _, slack := range []int64{0, 4} {
		opts := DefaultOpts
		opts.Slack = slack
		cl, err := Cluster(ctx, a, opts)
		require.NoError(t, err)
		clusters := cl.Clusters()

		// Disjoint and sorted within each sequence, with gaps > slack.
		for i := 1; i < len(clusters); i++ {
			prev, cur := clusters[i-1], clusters[i]
			if prev.Seq == cur.Seq {
				expect.True(t, cur.Start > prev.End+interval.PosType(slack), "%v then %v", prev, cur)
			}
		}

		// Every row lies inside its cluster, and clusters have no other
		// members.
		total := uint64(0)
		for _, row := range a.Rows() {
			c := clusters[cl.ClusterOf(row.ID)]
			expect.EQ(t, c.Seq, a.Seq(row.ID))
			expect.True(t, c.Contains(row.Interval))
			expect.True(t, c.Members.Contains(uint32(row.ID)))
		}
		for _, c := range clusters {
			total += c.Members.GetCardinality()
		}
		expect.EQ(t, total, uint64(a.Len()))

		// Coverage-preserving when no gaps are bridged.
		if slack == 0 {
			for _, seq := range testSeqs {
				for pos := interval.PosType(0); pos < 1100; pos++ {
					p := interval.Interval{Start: pos, End: pos + 1}
					inRows, inClusters := false, false
					for _, row := range a.Rows() {
						if a.Seq(row.ID) == seq && row.Overlaps(p) {
							inRows = true
							break
						}
					}
					for _, c := range clusters {
						if c.Seq == seq && c.Overlaps(p) {
							inClusters = true
							break
						}
					}
					require.Equal(t, inRows, inClusters, "%s:%d", seq, pos)
				}
			}
		}

		// Idempotence.
		again, err := Cluster(ctx, collectRecords(t, clusters), opts)
		require.NoError(t, err)
		expect.EQ(t, spans(again.Clusters()), spans(clusters))
	}
}

func TestSubtractComplete(t *testing.T) {
	r := rand.New(rand.NewSource(4))
	ctx := context.Background()
	for _, strandedness := range []Strandedness{Ignore, Same} {
		a := randomCollection(t, r, 300, 100)
		b := randomCollection(t, r, 100, 40)
		opts := DefaultOpts
		opts.Strandedness = strandedness
		it, err := Subtract(ctx, a, b, opts)
		rs := results(t, it, err)
		require.NotEmpty(t, rs)
		rest := collectRecords(t, rs)
		expect.EQ(t, len(overlap(t, rest, b, opts)), 0)

		// The pieces of each row, plus the bases B covers, add up to the row.
		it2, err := Coverage(ctx, a, b, opts)
		require.NoError(t, err)
		covs, err := CollectCoverage(it2)
		require.NoError(t, err)
		remaining := make([]interval.PosType, a.Len())
		for _, res := range rs {
			remaining[res.Row] += res.Len()
		}
		for _, cov := range covs {
			expect.EQ(t, remaining[cov.A]+cov.Covered, a.Row(cov.A).Len(), "row %d", cov.A)
		}
	}
}

func TestNearestZeroIffOverlap(t *testing.T) {
	r := rand.New(rand.NewSource(5))
	a := randomCollection(t, r, 300, 20)
	b := randomCollection(t, r, 100, 20)
	opts := DefaultOpts
	opts.K = 3
	it, err := Nearest(context.Background(), a, b, opts)
	require.NoError(t, err)
	ms, err := CollectMatches(it)
	require.NoError(t, err)
	require.NotEmpty(t, ms)
	for _, m := range ms {
		ra, rb := a.Row(m.A), b.Row(m.B)
		expect.EQ(t, m.Distance == 0, ra.Overlaps(rb.Interval), "%v vs %v: %d", ra, rb, m.Distance)
		expect.EQ(t, m.Distance == 0, !m.Overlap.Empty())
	}
}
