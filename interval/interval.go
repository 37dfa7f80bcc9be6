package interval

import (
	"fmt"
	"math"
	"strings"
)

// RowID identifies a row by its position in the caller's input collection.
type RowID uint32

// NoRow is the RowID used for "no counterpart" in outer-join output.  It is
// also the exclusive upper bound on the number of rows in a collection.
const NoRow = RowID(math.MaxUint32)

// Strand is the orientation of a row.
type Strand uint8

const (
	// Unstranded rows have no orientation ('.' in BED).
	Unstranded Strand = iota
	// Plus is the forward strand.
	Plus
	// Minus is the reverse strand.
	Minus
)

// ParseStrand converts a strand symbol to a Strand.  "", "." and "*" all mean
// Unstranded.  ok is false for any other unrecognized symbol.
func ParseStrand(s string) (strand Strand, ok bool) {
	switch s {
	case "+":
		return Plus, true
	case "-":
		return Minus, true
	case "", ".", "*":
		return Unstranded, true
	}
	return Unstranded, false
}

// String returns the BED symbol for the strand.
func (s Strand) String() string {
	switch s {
	case Plus:
		return "+"
	case Minus:
		return "-"
	}
	return "."
}

// Opposite returns the other strand.  Unstranded is its own opposite.
func (s Strand) Opposite() Strand {
	switch s {
	case Plus:
		return Minus
	case Minus:
		return Plus
	}
	return Unstranded
}

// Interval is a half-open [Start, End) range of positions.
type Interval struct {
	Start PosType
	End   PosType
}

// Len returns the number of positions covered by the interval.
func (iv Interval) Len() PosType {
	return iv.End - iv.Start
}

// Empty returns true iff the interval covers no positions.
func (iv Interval) Empty() bool {
	return iv.End <= iv.Start
}

// Overlaps returns true iff iv and o share at least one position.
func (iv Interval) Overlaps(o Interval) bool {
	return iv.Start < o.End && o.Start < iv.End
}

// Contains returns true iff every position of o is in iv.
func (iv Interval) Contains(o Interval) bool {
	return iv.Start <= o.Start && o.End <= iv.End
}

// Intersect returns the geometric intersection of iv and o.  The result is
// Empty() when they don't overlap.
func (iv Interval) Intersect(o Interval) Interval {
	r := iv
	if o.Start > r.Start {
		r.Start = o.Start
	}
	if o.End < r.End {
		r.End = o.End
	}
	return r
}

// Expand returns iv widened by n positions on both sides.  The start is
// clamped at zero.
func (iv Interval) Expand(n PosType) Interval {
	r := Interval{iv.Start - n, iv.End + n}
	if r.Start < 0 {
		r.Start = 0
	}
	return r
}

// Gap returns the number of positions strictly between iv and o, and the
// side o is on: -1 if o lies at lower coordinates, +1 if higher, 0 if they
// overlap.
func (iv Interval) Gap(o Interval) (gap PosType, side int) {
	switch {
	case o.End <= iv.Start:
		return iv.Start - o.End, -1
	case o.Start >= iv.End:
		return o.Start - iv.End, 1
	}
	return 0, 0
}

func (iv Interval) String() string {
	return fmt.Sprintf("[%d,%d)", iv.Start, iv.End)
}

// Row is an interval with its row identifier and strand.
type Row struct {
	Interval
	ID     RowID
	Strand Strand
}

// GroupKey identifies the group a row belongs to.  When Stranded is false,
// Strand is always Unstranded and rows of every strand share the group.
// Label is a caller-supplied refinement of the group, usually empty.
type GroupKey struct {
	Seq      string
	Label    string
	Strand   Strand
	Stranded bool
}

// NewGroupKey returns the key for a row on sequence seq with the given
// strand.
func NewGroupKey(seq string, strand Strand, stranded bool) GroupKey {
	if !stranded {
		strand = Unstranded
	}
	return GroupKey{Seq: seq, Strand: strand, Stranded: stranded}
}

// WithLabel returns k with its label replaced.
func (k GroupKey) WithLabel(label string) GroupKey {
	k.Label = label
	return k
}

// Opposite returns the key of the opposite-strand group on the same
// sequence and label.
func (k GroupKey) Opposite() GroupKey {
	if !k.Stranded {
		return k
	}
	k.Strand = k.Strand.Opposite()
	return k
}

// Compare returns (negative, 0, positive) if k is (before, equal to, after)
// o.  Keys are ordered by sequence name, then label, then strand.
func (k GroupKey) Compare(o GroupKey) int {
	if c := strings.Compare(k.Seq, o.Seq); c != 0 {
		return c
	}
	if c := strings.Compare(k.Label, o.Label); c != 0 {
		return c
	}
	if k.Stranded != o.Stranded {
		if !k.Stranded {
			return -1
		}
		return 1
	}
	return int(k.Strand) - int(o.Strand)
}

func (k GroupKey) String() string {
	s := k.Seq
	if k.Label != "" {
		s += "/" + k.Label
	}
	if k.Stranded {
		s += ":" + k.Strand.String()
	}
	return s
}
