// Copyright 2024-2026 The line-profiler Authors. All rights reserved.
// Use of this source code is governed by the Business Source License
// included in the LICENSE file of this repository.

//go:build !linux && !darwin && !windows

package timer

import "time"

var start = time.Now()

// Now returns nanoseconds since process start, read from the Go
// runtime's monotonic clock.
func Now() int64 {
	return int64(time.Since(start))
}

// Unit returns the tick duration in seconds: one nanosecond.
func Unit() float64 {
	return 1e-9
}
