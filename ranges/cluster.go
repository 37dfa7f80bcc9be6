// Copyright 2018 GRAIL, Inc.  All rights reserved.
// Use of this source code is governed by the Apache-2.0
// license that can be found in the LICENSE file.

package ranges

import (
	"context"
	"sort"

	"github.com/RoaringBitmap/roaring/v2"
	"github.com/grailbio/base/log"
	"github.com/grailbio/granges/interval"
)

// Clustering is the result of Cluster.
type Clustering struct {
	// groups[g] holds the clusters of the g'th group, by coordinate.  Cluster
	// ids are assigned in this order.
	groups [][]Result
	// assign[id] is the cluster of row id.
	assign []int
	n      int
}

type membership struct {
	row     interval.RowID
	cluster int
}

// Cluster merges the rows of each group whose start is at most opts.Slack
// past the running end of the rows before it; touching rows are always
// merged.  The clusters are disjoint and sorted within each group, and
// record their member rows.  Groups are split by strand unless
// opts.Strandedness is Ignore.
func Cluster(ctx context.Context, a *Collection, opts Opts) (*Clustering, error) {
	if err := opts.Validate(); err != nil {
		return nil, err
	}
	groups := Partition(a, opts.stranded())
	stores := groups.Stores()
	cl := &Clustering{groups: make([][]Result, len(stores))}
	members := make([][]membership, len(stores))
	err := forEachGroup(ctx, opts.Parallelism, len(stores), func(i int) error {
		cl.groups[i], members[i] = clusterGroup(stores[i], interval.PosType(opts.Slack))
		return nil
	})
	if err != nil {
		return nil, err
	}
	for i := range stores {
		for j := range members[i] {
			members[i][j].cluster += cl.n
		}
		cl.n += len(cl.groups[i])
	}
	merged := MergeGroups(members, func(m membership) interval.RowID { return m.row })
	cl.assign = make([]int, len(merged))
	for i, m := range merged {
		if m.row != interval.RowID(i) {
			log.Panicf("internal error: Cluster: row %d assigned at position %d", m.row, i)
		}
		cl.assign[i] = m.cluster
	}
	log.Debug.Printf("ranges: cluster: %d rows in %d groups, %d clusters", a.Len(), len(stores), cl.n)
	return cl, nil
}

// clusterGroup sweeps one store.  Cluster numbers in the returned memberships
// are local to the group.
func clusterGroup(s *interval.Store, slack interval.PosType) ([]Result, []membership) {
	s.Sort()
	rows := s.Rows()
	var (
		clusters []Result
		members  = make([]membership, 0, len(rows))
		cur      Result
	)
	for i, r := range rows {
		if i > 0 && r.Start <= cur.End+slack {
			if r.End > cur.End {
				cur.End = r.End
			}
		} else {
			if i > 0 {
				clusters = append(clusters, cur)
			}
			cur = Result{
				Seq:      s.Key.Seq,
				Interval: r.Interval,
				Strand:   s.Key.Strand,
				Label:    s.Key.Label,
				Row:      interval.NoRow,
				Partner:  interval.NoRow,
				Members:  roaring.New(),
			}
		}
		cur.Members.Add(uint32(r.ID))
		members = append(members, membership{row: r.ID, cluster: len(clusters)})
	}
	if len(rows) > 0 {
		clusters = append(clusters, cur)
	}
	return clusters, members
}

// Len returns the number of clusters.
func (cl *Clustering) Len() int {
	return cl.n
}

// Clusters returns every cluster ordered by group key, then coordinate.
// Cluster i of the result has id i.
func (cl *Clustering) Clusters() []Result {
	out := make([]Result, 0, cl.n)
	for _, g := range cl.groups {
		out = append(out, g...)
	}
	return out
}

// ClusterOf returns the cluster id of a row.
func (cl *Clustering) ClusterOf(id interval.RowID) int {
	return cl.assign[id]
}

// Iterator yields the clusters in Clusters() order.  ctx is checked before
// each group.
func (cl *Clustering) Iterator(ctx context.Context) *IntervalIterator {
	return &IntervalIterator{c: cursor[Result]{fill: partsFill(ctx, cl.groups)}}
}

// Merge yields the clusters of a (see Cluster) ordered by group key, then
// coordinate.
func Merge(ctx context.Context, a *Collection, opts Opts) (*IntervalIterator, error) {
	cl, err := Cluster(ctx, a, opts)
	if err != nil {
		return nil, err
	}
	return cl.Iterator(ctx), nil
}

// Complement yields the gaps between the merged rows of each group, ordered
// by group key, then coordinate.  A group's gaps span [0, limits[seq]) when
// the sequence has a limit, otherwise [0, end of its last row).  Sequences
// that only appear in limits are reported as one gap spanning the whole
// sequence, unless the groups are stranded.  Rows are merged with
// opts.Slack.
func Complement(ctx context.Context, a *Collection, opts Opts, limits map[string]int64) (*IntervalIterator, error) {
	if err := opts.Validate(); err != nil {
		return nil, err
	}
	stranded := opts.stranded()
	groups := Partition(a, stranded)
	stores := groups.Stores()
	endpoints := make([][]interval.PosType, len(stores))
	err := forEachGroup(ctx, opts.Parallelism, len(stores), func(i int) error {
		stores[i].Sort()
		endpoints[i] = interval.MergeEndpoints(stores[i].Rows(), interval.PosType(opts.Slack), nil)
		return nil
	})
	if err != nil {
		return nil, err
	}
	u := interval.NewUnion()
	keys := make([]interval.GroupKey, 0, len(stores)+len(limits))
	seqs := make(map[string]bool, len(stores))
	for i, s := range stores {
		u.Set(s.Key, endpoints[i])
		keys = append(keys, s.Key)
		seqs[s.Key.Seq] = true
	}
	posLimits := make(map[string]interval.PosType, len(limits))
	for seq, limit := range limits {
		posLimits[seq] = interval.PosType(limit)
		key := interval.NewGroupKey(seq, interval.Unstranded, false)
		if !stranded && !seqs[seq] {
			u.Set(key, nil)
			keys = append(keys, key)
		}
	}
	sort.Slice(keys, func(i, j int) bool { return keys[i].Compare(keys[j]) < 0 })
	inv := u.Invert(posLimits)
	parts := make([][]Result, 0, len(keys))
	for _, key := range keys {
		gaps := inv.Endpoints(key)
		part := make([]Result, 0, len(gaps)/2)
		for i := 0; i < len(gaps); i += 2 {
			part = append(part, Result{
				Seq:      key.Seq,
				Interval: interval.Interval{Start: gaps[i], End: gaps[i+1]},
				Strand:   key.Strand,
				Label:    key.Label,
				Row:      interval.NoRow,
				Partner:  interval.NoRow,
			})
		}
		parts = append(parts, part)
	}
	log.Debug.Printf("ranges: complement: %d rows in %d groups, %d limits", a.Len(), len(stores), len(limits))
	return &IntervalIterator{c: cursor[Result]{fill: partsFill(ctx, parts)}}, nil
}
