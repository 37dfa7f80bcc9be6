package interval

import (
	"math"
	"sort"
)

// An interval-union is stored as a sorted []PosType of endpoints: merged
// interval #k is [endpoints[2k], endpoints[2k+1]).  The intervals
//
//	[5, 15) [7, 17) [20, 25)
//
// are thus stored as {5, 17, 20, 25}.  A position p lies inside the union iff
// the number of endpoints <= p is odd.

// PosType is the type used to represent interval coordinates.  Sequencing
// coordinates fit in 32 bits, but assembled or concatenated references don't,
// so the engine works in 64 bits throughout.
type PosType int64

// PosTypeMax is the maximum value that can be represented by a PosType.
const PosTypeMax = math.MaxInt64

// SearchPosTypes is sort.SearchInts for PosType: the smallest index i with
// a[i] >= x, or len(a).
func SearchPosTypes(a []PosType, x PosType) EndpointIndex {
	return EndpointIndex(sort.Search(len(a), func(i int) bool { return a[i] >= x }))
}

// EndpointIndex is a position in an endpoint slice, normally
// SearchPosTypes(endpoints, pos+1) for some coordinate pos: the number of
// endpoints <= pos.
type EndpointIndex int

// NewEndpointIndex returns SearchPosTypes(endpoints, pos+1).
func NewEndpointIndex(pos PosType, endpoints []PosType) EndpointIndex {
	return SearchPosTypes(endpoints, pos+1)
}

// Contained reports whether the position lies inside a merged interval.
func (ei EndpointIndex) Contained() bool {
	return ei&1 != 0
}

// Finished reports whether the position is past the last merged interval.
func (ei EndpointIndex) Finished(endpoints []PosType) bool {
	return int(ei) >= len(endpoints)
}

// Begin returns the index of the start of the merged interval containing the
// position, or of the next one if the position lies in a gap.
func (ei EndpointIndex) Begin() EndpointIndex {
	return ei &^ 1
}

// UnionScanner iterates over the merged intervals of an endpoint slice,
// optionally clipped to successive limits.
//
// Invariant: pos is either inside a merged interval whose end is
// endpoints[endpointIdx], or PosTypeMax.
type UnionScanner struct {
	endpoints   []PosType
	pos         PosType
	endpointIdx EndpointIndex
}

// newUnionScannerAt returns a UnionScanner positioned at the first covered
// position >= pos.
func newUnionScannerAt(endpoints []PosType, pos PosType) UnionScanner {
	us := UnionScanner{endpoints: endpoints, pos: PosTypeMax}
	begin := NewEndpointIndex(pos, endpoints).Begin()
	if !begin.Finished(endpoints) {
		us.pos = endpoints[begin]
		if us.pos < pos {
			us.pos = pos
		}
		us.endpointIdx = begin + 1
	}
	return us
}

// Scan stores in [*start, *end) the next covered run ending at or before
// limit, and returns false once the next covered position is >= limit.  A
// run crossing limit is split; the next Scan with a larger limit resumes at
// limit.
//
//	for us.Scan(&start, &end, limit) {
//		covered += end - start
//	}
func (us *UnionScanner) Scan(start *PosType, end *PosType, limit PosType) bool {
	if us.pos >= limit {
		return false
	}
	*start = us.pos
	runEnd := us.endpoints[us.endpointIdx]
	if runEnd > limit {
		us.pos = limit
		*end = limit
		return true
	}
	*end = runEnd
	if next := us.endpointIdx + 1; next.Finished(us.endpoints) {
		us.pos = PosTypeMax
	} else {
		us.pos = us.endpoints[next]
		us.endpointIdx = next + 1
	}
	return true
}
