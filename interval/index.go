package interval

import (
	"sort"
)

// Index is a read-only search structure over one group's rows.
//
// Rows are sorted by (Start, End, ID), and maxEnd[i] holds the largest End
// among rows[0..i].  Since maxEnd is nondecreasing, an overlap query for
// [qStart, qEnd) only has to look at rows in [lo, hi), where lo is the first
// row with maxEnd > qStart and hi is the first row with Start >= qEnd; both
// are found by binary search.  Every row outside that range is either
// entirely to the left of the query or starts after it.
//
// Nearest-neighbor queries additionally use byEnd, a permutation of the rows
// sorted by (End, Start, ID), to walk leftwards from the query.
type Index struct {
	key    GroupKey
	rows   []Row
	maxEnd []PosType
	byEnd  []uint32
	ends   []PosType
}

// NewIndex sorts the store and builds an index over it.  The store must not
// be modified while the index is in use.
func NewIndex(s *Store) *Index {
	s.Sort()
	rows := s.Rows()
	x := &Index{
		key:    s.Key,
		rows:   rows,
		maxEnd: make([]PosType, len(rows)),
		byEnd:  make([]uint32, len(rows)),
		ends:   make([]PosType, len(rows)),
	}
	var running PosType = -1
	for i, r := range rows {
		if r.End > running {
			running = r.End
		}
		x.maxEnd[i] = running
		x.byEnd[i] = uint32(i)
	}
	sort.Slice(x.byEnd, func(i, j int) bool {
		a, b := rows[x.byEnd[i]], rows[x.byEnd[j]]
		if a.End != b.End {
			return a.End < b.End
		}
		if a.Start != b.Start {
			return a.Start < b.Start
		}
		return a.ID < b.ID
	})
	for i, ri := range x.byEnd {
		x.ends[i] = rows[ri].End
	}
	return x
}

// Key returns the group key of the indexed store.
func (x *Index) Key() GroupKey {
	return x.key
}

// Len returns the number of indexed rows.
func (x *Index) Len() int {
	return len(x.rows)
}

// Rows returns the indexed rows in (Start, End, ID) order.
func (x *Index) Rows() []Row {
	return x.rows
}

// span returns the half-open range of row indices that may overlap q.
func (x *Index) span(q Interval) (lo, hi int) {
	n := len(x.rows)
	hi = sort.Search(n, func(i int) bool { return x.rows[i].Start >= q.End })
	lo = sort.Search(hi, func(i int) bool { return x.maxEnd[i] > q.Start })
	return
}

// Overlapping calls fn on every row overlapping q, in (Start, End, ID)
// order.  Iteration stops early if fn returns false.
func (x *Index) Overlapping(q Interval, fn func(r Row) bool) {
	if q.Empty() {
		return
	}
	lo, hi := x.span(q)
	for i := lo; i < hi; i++ {
		r := x.rows[i]
		if r.End <= q.Start {
			continue
		}
		if !fn(r) {
			return
		}
	}
}

// Query appends every row overlapping q to dst, in (Start, End, ID) order.
func (x *Index) Query(q Interval, dst []Row) []Row {
	x.Overlapping(q, func(r Row) bool {
		dst = append(dst, r)
		return true
	})
	return dst
}

// Count returns the number of rows overlapping q.
func (x *Index) Count(q Interval) int {
	n := 0
	x.Overlapping(q, func(Row) bool {
		n++
		return true
	})
	return n
}
