// Copyright 2018 GRAIL, Inc.  All rights reserved.
// Use of this source code is governed by the Apache-2.0
// license that can be found in the LICENSE file.

package ranges

import (
	"context"
	"runtime"

	"github.com/grailbio/base/traverse"
)

// forEachGroup runs fn(i) for i in [0, n) on at most parallelism workers,
// each handling a contiguous run of groups.
// Each invocation owns slot i of whatever output the caller preallocated, so
// no locking is needed.  A canceled ctx keeps groups that have not started
// from running, and is reported as ctx.Err().
func forEachGroup(ctx context.Context, parallelism, n int, fn func(i int) error) error {
	if parallelism <= 0 {
		parallelism = runtime.NumCPU()
	}
	if parallelism > n {
		parallelism = n
	}
	if n == 0 {
		return ctx.Err()
	}
	err := traverse.Each(parallelism, func(jobIdx int) error {
		startIdx := (jobIdx * n) / parallelism
		endIdx := ((jobIdx + 1) * n) / parallelism
		for i := startIdx; i < endIdx; i++ {
			if err := ctx.Err(); err != nil {
				return err
			}
			if err := fn(i); err != nil {
				return err
			}
		}
		return nil
	})
	if ctxErr := ctx.Err(); ctxErr != nil {
		return ctxErr
	}
	return err
}
