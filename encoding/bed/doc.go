// Copyright 2018 GRAIL, Inc.  All rights reserved.
// Use of this source code is governed by the Apache-2.0
// license that can be found in the LICENSE file.

// Package bed reads BED interval files into the range engine and writes
// operation results back out as tab-separated text.
package bed
