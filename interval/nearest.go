package interval

import "sort"

// Direction restricts a nearest-neighbor search.  Upstream and Downstream
// are relative to the forward strand: Upstream rows lie at lower coordinates
// than the query.
type Direction uint8

const (
	// Either searches both sides of the query.
	Either Direction = iota
	// Upstream searches rows ending at or before the query start.
	Upstream
	// Downstream searches rows starting at or after the query end.
	Downstream
)

func (d Direction) String() string {
	switch d {
	case Upstream:
		return "upstream"
	case Downstream:
		return "downstream"
	}
	return "either"
}

// Flip swaps Upstream and Downstream.
func (d Direction) Flip() Direction {
	switch d {
	case Upstream:
		return Downstream
	case Downstream:
		return Upstream
	}
	return Either
}

// NearestOpts configures Index.Nearest.
type NearestOpts struct {
	// K is the number of neighbors to report.  Values below 1 mean 1.
	K int
	// Direction restricts the search to one side of the query.  Overlapping
	// rows are reported in every direction unless ExcludeOverlaps is set.
	Direction Direction
	// MaxDistance drops neighbors whose |Distance| exceeds it.  Negative
	// means unlimited.
	MaxDistance int64
	// ExcludeOverlaps ignores rows overlapping the query.
	ExcludeOverlaps bool
}

// Neighbor is a row returned by Index.Nearest.
//
// Distance is 0 iff the row overlaps the query.  Otherwise its magnitude is
// the number of positions between the two intervals, except that book-ended
// rows (no positions in between) are reported at distance 1, and its sign is
// negative for rows at lower coordinates.
type Neighbor struct {
	Row      Row
	Distance int64
}

type candidate struct {
	Neighbor
	// rank is 0 for overlapping rows and gap+1 otherwise, so that book-ended
	// rows still sort ahead of rows one position away.
	rank PosType
}

func gapDistance(rank PosType) int64 {
	if rank <= 2 {
		return 1
	}
	return int64(rank - 1)
}

// Nearest appends the opts.K rows closest to q to dst, closest first.  Rows at
// the same distance are ordered by length, then by ID; when more than K rows
// tie for the last place, the shortest (then lowest-ID) ones win.  A row
// identical to q is returned as its own neighbor.
func (x *Index) Nearest(q Interval, opts NearestOpts, dst []Neighbor) []Neighbor {
	k := opts.K
	if k < 1 {
		k = 1
	}
	var cands []candidate
	if !opts.ExcludeOverlaps {
		x.Overlapping(q, func(r Row) bool {
			cands = append(cands, candidate{Neighbor{Row: r}, 0})
			return true
		})
	}

	n := len(x.rows)
	down := n
	if opts.Direction != Upstream {
		down = sort.Search(n, func(i int) bool { return x.rows[i].Start >= q.End })
	}
	up := -1
	if opts.Direction != Downstream {
		up = sort.Search(n, func(j int) bool { return x.ends[j] > q.Start }) - 1
	}
	// Both cursors produce candidates in nondecreasing rank order, so a
	// two-way merge keeps cands sorted by rank.
	for {
		downRank, upRank := PosType(PosTypeMax), PosType(PosTypeMax)
		if down < n {
			downRank = x.rows[down].Start - q.End + 1
		}
		if up >= 0 {
			upRank = q.Start - x.ends[up] + 1
		}
		rank := downRank
		if upRank < rank {
			rank = upRank
		}
		if rank == PosTypeMax {
			break
		}
		if opts.MaxDistance >= 0 && gapDistance(rank) > opts.MaxDistance {
			break
		}
		if len(cands) >= k && rank > cands[k-1].rank {
			break
		}
		if downRank <= upRank {
			cands = append(cands, candidate{Neighbor{x.rows[down], gapDistance(rank)}, rank})
			down++
		} else {
			cands = append(cands, candidate{Neighbor{x.rows[x.byEnd[up]], -gapDistance(rank)}, rank})
			up--
		}
	}
	sort.SliceStable(cands, func(i, j int) bool {
		a, b := cands[i], cands[j]
		if a.rank != b.rank {
			return a.rank < b.rank
		}
		if la, lb := a.Row.Len(), b.Row.Len(); la != lb {
			return la < lb
		}
		return a.Row.ID < b.Row.ID
	})
	if len(cands) > k {
		cands = cands[:k]
	}
	for _, c := range cands {
		dst = append(dst, c.Neighbor)
	}
	return dst
}
