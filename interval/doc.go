// Package interval implements the per-group building blocks of the range
// engine: half-open intervals, strand-aware group keys, the Store holding one
// group's rows, and the Index answering overlap and nearest-neighbor queries
// over a Store.
//
// It also contains interval-union support (Union, EndpointIndex,
// UnionScanner), where overlapping intervals are merged rather than tracked
// separately; the set-operation engine uses it for subtraction, complement
// and coverage.
//
// Every coordinate is a 0-based PosType; intervals are [Start, End).
package interval
