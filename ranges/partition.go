// Copyright 2018 GRAIL, Inc.  All rights reserved.
// Use of this source code is governed by the Apache-2.0
// license that can be found in the LICENSE file.

package ranges

import (
	"sort"

	"github.com/biogo/store/llrb"
	"github.com/grailbio/granges/interval"
)

// groupEntry orders stores by group key in the llrb tree.
type groupEntry struct {
	key   interval.GroupKey
	store *interval.Store
}

// Compare compares two groupEntry objects for use in llrb.
func (e groupEntry) Compare(c llrb.Comparable) int {
	return e.key.Compare(c.(groupEntry).key)
}

// Groups is a collection split into per-group stores.
type Groups struct {
	byKey map[interval.GroupKey]*interval.Store
	// sorted holds the same stores as byKey, ordered by key.
	sorted llrb.Tree
}

// Partition splits c into one store per group.  Rows are grouped by
// sequence and label, and also by strand if stranded is set.  Within a store, rows
// keep their input order until the store is sorted.
func Partition(c *Collection, stranded bool) *Groups {
	g := &Groups{byKey: make(map[interval.GroupKey]*interval.Store)}
	var (
		cur       *interval.Store
		curSeq    = ^uint32(0)
		curStrand interval.Strand
		curLabel  string
	)
	for i, r := range c.rows {
		strand := r.Strand
		if !stranded {
			strand = interval.Unstranded
		}
		label := c.Label(r.ID)
		if cur == nil || c.seqIdx[i] != curSeq || strand != curStrand || label != curLabel {
			key := interval.NewGroupKey(c.names[c.seqIdx[i]], strand, stranded).WithLabel(label)
			cur = g.byKey[key]
			if cur == nil {
				cur = interval.NewStore(key)
				g.byKey[key] = cur
				g.sorted.Insert(groupEntry{key: key, store: cur})
			}
			curSeq, curStrand, curLabel = c.seqIdx[i], strand, label
		}
		cur.Add(r)
	}
	return g
}

// Len returns the number of groups.
func (g *Groups) Len() int {
	return len(g.byKey)
}

// Get returns the store of a group, or nil if the group is absent.
func (g *Groups) Get(key interval.GroupKey) *interval.Store {
	return g.byKey[key]
}

// Keys returns the group keys in sorted order.
func (g *Groups) Keys() []interval.GroupKey {
	keys := make([]interval.GroupKey, 0, g.Len())
	g.sorted.Do(func(c llrb.Comparable) bool {
		keys = append(keys, c.(groupEntry).key)
		return false
	})
	return keys
}

// Stores returns the stores ordered by group key.
func (g *Groups) Stores() []*interval.Store {
	stores := make([]*interval.Store, 0, g.Len())
	g.sorted.Do(func(c llrb.Comparable) bool {
		stores = append(stores, c.(groupEntry).store)
		return false
	})
	return stores
}

// MergeGroups concatenates per-group results and restores input order, using
// id to recover each item's row.  Items derived from the same row keep their
// relative order.
func MergeGroups[T any](parts [][]T, id func(T) interval.RowID) []T {
	n := 0
	for _, p := range parts {
		n += len(p)
	}
	out := make([]T, 0, n)
	for _, p := range parts {
		out = append(out, p...)
	}
	sort.SliceStable(out, func(i, j int) bool { return id(out[i]) < id(out[j]) })
	return out
}
