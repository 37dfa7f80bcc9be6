// Copyright 2018 GRAIL, Inc.  All rights reserved.
// Use of this source code is governed by the Apache-2.0
// license that can be found in the LICENSE file.

// Package ranges implements set operations over collections of genomic
// intervals: overlap, join, intersect, subtract, cluster/merge, nearest,
// window/tile, complement and coverage.
//
// A query proceeds in three stages.  The input collections are partitioned
// into per-group interval.Stores (a group is a sequence name, plus a strand
// when the operation is strand-aware).  Each group's Store is then indexed
// independently, in parallel, with no shared state.  Finally results are
// assembled through single-pass iterators; A-centric operations walk the
// first collection in input order, so output order never depends on how
// the index reordered rows.
//
// Input rows are validated once, by Collect, before any index is built; the
// engine itself never drops rows.
package ranges
