package interval

import "sort"

// Store holds the rows of one group.  Rows are kept in insertion order until
// Sort is called (NewIndex does this), after which they are ordered by
// (Start, End, ID).  Row IDs are never changed, so results can always be
// mapped back to the caller's collection.
type Store struct {
	Key    GroupKey
	rows   []Row
	sorted bool
}

// NewStore returns an empty store for the given group.
func NewStore(key GroupKey) *Store {
	return &Store{Key: key, sorted: true}
}

// Add appends a row.  Rows sharing a group key must be added in input order.
func (s *Store) Add(r Row) {
	if s.sorted && len(s.rows) > 0 && lessRow(r, s.rows[len(s.rows)-1]) {
		s.sorted = false
	}
	s.rows = append(s.rows, r)
}

// Len returns the number of rows.
func (s *Store) Len() int {
	return len(s.rows)
}

// Rows returns the rows in their current order.  The slice is owned by the
// store.
func (s *Store) Rows() []Row {
	return s.rows
}

// Sort orders the rows by (Start, End, ID).
func (s *Store) Sort() {
	if s.sorted {
		return
	}
	sort.Slice(s.rows, func(i, j int) bool { return lessRow(s.rows[i], s.rows[j]) })
	s.sorted = true
}

func lessRow(a, b Row) bool {
	if a.Start != b.Start {
		return a.Start < b.Start
	}
	if a.End != b.End {
		return a.End < b.End
	}
	return a.ID < b.ID
}
