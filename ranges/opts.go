// Copyright 2018 GRAIL, Inc.  All rights reserved.
// Use of this source code is governed by the Apache-2.0
// license that can be found in the LICENSE file.

package ranges

import (
	"github.com/grailbio/granges/interval"
)

// Strandedness controls how strand takes part in grouping.
type Strandedness uint8

const (
	// Ignore compares rows regardless of strand.
	Ignore Strandedness = iota
	// Same only compares rows on the same strand.
	Same
	// Opposite only compares rows on opposite strands.  Unstranded rows are
	// compared with unstranded rows.
	Opposite
)

var strandednessNames = []string{"ignore", "same", "opposite"}

func (s Strandedness) String() string {
	if int(s) < len(strandednessNames) {
		return strandednessNames[s]
	}
	return "invalid"
}

// ParseStrandedness parses "ignore", "same" or "opposite".
func ParseStrandedness(s string) (Strandedness, error) {
	for i, name := range strandednessNames {
		if s == name {
			return Strandedness(i), nil
		}
	}
	return Ignore, configErrorf("unknown strandedness %q", s)
}

// How selects which matches Overlap reports for each row of the first
// collection.
type How uint8

const (
	// All reports every overlapping row.
	All How = iota
	// First reports only the leftmost overlapping row.
	First
	// Containment reports every row that contains the query row.
	Containment
)

var howNames = []string{"all", "first", "containment"}

func (h How) String() string {
	if int(h) < len(howNames) {
		return howNames[h]
	}
	return "invalid"
}

// ParseHow parses "all", "first" or "containment".
func ParseHow(s string) (How, error) {
	for i, name := range howNames {
		if s == name {
			return How(i), nil
		}
	}
	return All, configErrorf("unknown overlap mode %q", s)
}

// ParseDirection parses "either", "upstream" or "downstream".
func ParseDirection(s string) (interval.Direction, error) {
	for _, d := range []interval.Direction{interval.Either, interval.Upstream, interval.Downstream} {
		if s == d.String() {
			return d, nil
		}
	}
	return interval.Either, configErrorf("unknown direction %q", s)
}

// Opts configures an operation.  Each operation only reads the fields that
// apply to it.
type Opts struct {
	// Strandedness controls grouping by strand.  For single-collection
	// operations, Same and Opposite both mean "per strand".
	Strandedness Strandedness
	// Slack is the largest gap between two intervals that Cluster and Merge
	// still join.  Touching intervals are always joined.  Overlap and Join
	// widen the second collection's intervals by Slack on each side.
	Slack int64
	// MaxDistance is the Nearest cutoff.  Negative means unlimited.
	MaxDistance int64
	// KeepUnmatched makes Overlap, Join and Nearest report first-collection
	// rows without a match, paired with interval.NoRow.
	KeepUnmatched bool
	// How selects the multiplicity of Overlap.
	How How
	// K is the number of neighbors Nearest reports per row.  0 means 1.
	K int
	// Direction restricts Nearest to one side, relative to the strand of the
	// query row.
	Direction interval.Direction
	// ExcludeOverlaps makes Nearest skip overlapping rows.
	ExcludeOverlaps bool
	// Strict turns a first-collection group without a counterpart into a
	// *GroupMismatchError.
	Strict bool
	// Parallelism bounds the number of groups processed at once.  0 means
	// runtime.NumCPU().
	Parallelism int
}

// DefaultOpts are the default options.
var DefaultOpts = Opts{
	MaxDistance: -1,
	K:           1,
}

// Validate checks the options for out-of-range values and conflicts.
func (o *Opts) Validate() error {
	if o.Strandedness > Opposite {
		return configErrorf("invalid strandedness %d", o.Strandedness)
	}
	if o.How > Containment {
		return configErrorf("invalid overlap mode %d", o.How)
	}
	if o.Direction > interval.Downstream {
		return configErrorf("invalid direction %d", o.Direction)
	}
	if o.Slack < 0 {
		return configErrorf("slack must be >= 0, got %d", o.Slack)
	}
	if o.K < 0 {
		return configErrorf("k must be >= 0, got %d", o.K)
	}
	if o.Parallelism < 0 {
		return configErrorf("parallelism must be >= 0, got %d", o.Parallelism)
	}
	if o.How == Containment && o.KeepUnmatched {
		return configErrorf("containment overlap cannot keep unmatched rows")
	}
	return nil
}

func (o *Opts) stranded() bool {
	return o.Strandedness != Ignore
}

// partner returns the key of the second-collection group that rows in the
// first collection's group key are compared against.
func (o *Opts) partner(key interval.GroupKey) interval.GroupKey {
	if o.Strandedness == Opposite {
		return key.Opposite()
	}
	return key
}
