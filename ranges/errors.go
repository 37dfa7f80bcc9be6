// Copyright 2018 GRAIL, Inc.  All rights reserved.
// Use of this source code is governed by the Apache-2.0
// license that can be found in the LICENSE file.

package ranges

import (
	"fmt"

	"github.com/grailbio/granges/interval"
)

// ValidationError reports a malformed input row.  It is returned by Collect;
// a collection containing a malformed row is rejected as a whole.
type ValidationError struct {
	// Row is the 0-based position of the row in the source.
	Row    int
	Record Record
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("ranges: invalid row %d (%q %d %d %q): %s",
		e.Row, e.Record.Seq, e.Record.Start, e.Record.End, e.Record.Strand, e.Reason)
}

// GroupMismatchError reports a group of the first collection with no
// counterpart in the second.  It is only returned when Opts.Strict is set;
// otherwise such groups just produce no matches.
type GroupMismatchError struct {
	Key interval.GroupKey
}

func (e *GroupMismatchError) Error() string {
	return fmt.Sprintf("ranges: group %v has no counterpart in the other collection", e.Key)
}

// ConfigurationError reports invalid or mutually exclusive options.
type ConfigurationError struct {
	Reason string
}

func (e *ConfigurationError) Error() string {
	return "ranges: invalid configuration: " + e.Reason
}

func configErrorf(format string, args ...interface{}) error {
	return &ConfigurationError{Reason: fmt.Sprintf(format, args...)}
}
