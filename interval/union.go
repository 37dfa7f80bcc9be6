package interval

import (
	"fmt"
)

// MergeEndpoints computes the interval-union of rows, which must be sorted
// by Start, and returns it as a flat endpoint sequence: the start of merged
// interval #k is in element [2k] and its end in element [2k+1].  Intervals
// separated by at most slack positions are merged; touching intervals are
// always merged.  It panics on unsorted input.
func MergeEndpoints(rows []Row, slack PosType, dst []PosType) []PosType {
	if len(rows) == 0 {
		return dst
	}
	prevStart, prevEnd := rows[0].Start, rows[0].End
	for _, r := range rows[1:] {
		if r.Start < prevStart {
			panic(fmt.Sprintf("internal error: MergeEndpoints: unsorted input (%v after start %d)", r.Interval, prevStart))
		}
		if r.Start > prevEnd+slack {
			dst = append(dst, prevStart, prevEnd)
			prevStart, prevEnd = r.Start, r.End
			continue
		}
		if r.End > prevEnd {
			prevEnd = r.End
		}
	}
	return append(dst, prevStart, prevEnd)
}

// InvertEndpoints returns the complement of an interval-union within
// [start, limit).
func InvertEndpoints(endpoints []PosType, start, limit PosType) []PosType {
	var out []PosType
	pos := start
	ei := NewEndpointIndex(start, endpoints)
	if ei.Contained() {
		pos = endpoints[ei]
		ei++
	}
	for ; pos < limit; ei += 2 {
		if ei.Finished(endpoints) || endpoints[ei] >= limit {
			out = append(out, pos, limit)
			break
		}
		if endpoints[ei] > pos {
			out = append(out, pos, endpoints[ei])
		}
		pos = endpoints[ei+1]
	}
	return out
}

// SubtractEndpoints appends the parts of iv not covered by the
// interval-union to dst, left to right.
func SubtractEndpoints(endpoints []PosType, iv Interval, dst []Interval) []Interval {
	gaps := InvertEndpoints(endpoints, iv.Start, iv.End)
	for i := 0; i < len(gaps); i += 2 {
		dst = append(dst, Interval{gaps[i], gaps[i+1]})
	}
	return dst
}

// CoveredLen returns the number of positions of iv inside the
// interval-union.
func CoveredLen(endpoints []PosType, iv Interval) PosType {
	if iv.Empty() {
		return 0
	}
	var covered PosType
	us := newUnionScannerAt(endpoints, iv.Start)
	var start, end PosType
	for us.Scan(&start, &end, iv.End) {
		covered += end - start
	}
	return covered
}

// Union is a collection of disjoint interval-sets, one per group, each
// stored as a flat endpoint sequence (see MergeEndpoints).
type Union struct {
	groups map[GroupKey][]PosType
}

// NewUnion returns an empty Union.
func NewUnion() Union {
	return Union{groups: make(map[GroupKey][]PosType)}
}

// Set installs the endpoints of one group.
func (u *Union) Set(key GroupKey, endpoints []PosType) {
	u.groups[key] = endpoints
}

// Endpoints returns the endpoints of a group, or nil if the group is absent.
func (u *Union) Endpoints(key GroupKey) []PosType {
	return u.groups[key]
}

// Len returns the number of groups.
func (u *Union) Len() int {
	return len(u.groups)
}

// Intersects checks whether iv shares any position with the group's
// interval-set.
func (u *Union) Intersects(key GroupKey, iv Interval) bool {
	endpoints := u.groups[key]
	if endpoints == nil || iv.Empty() {
		return false
	}
	idx := NewEndpointIndex(iv.Start, endpoints)
	if idx.Contained() {
		return true
	}
	return !idx.Finished(endpoints) && iv.End > endpoints[idx]
}

// Invert returns the complement of the union.  Each group's complement
// starts at position 0 and ends at limits[key.Seq] when present, otherwise at
// the group's last covered position.
func (u *Union) Invert(limits map[string]PosType) Union {
	inv := NewUnion()
	for key, endpoints := range u.groups {
		limit, ok := limits[key.Seq]
		if !ok {
			if len(endpoints) == 0 {
				continue
			}
			limit = endpoints[len(endpoints)-1]
		}
		inv.groups[key] = InvertEndpoints(endpoints, 0, limit)
	}
	return inv
}
