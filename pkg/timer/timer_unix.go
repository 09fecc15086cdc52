// Copyright 2024-2026 The line-profiler Authors. All rights reserved.
// Use of this source code is governed by the Business Source License
// included in the LICENSE file of this repository.

//go:build linux || darwin

package timer

import "golang.org/x/sys/unix"

// Now returns the monotonic clock reading in nanoseconds.
func Now() int64 {
	var ts unix.Timespec
	if err := unix.ClockGettime(unix.CLOCK_MONOTONIC, &ts); err != nil {
		panic("timer: clock_gettime(CLOCK_MONOTONIC): " + err.Error())
	}
	return unix.TimespecToNsec(ts)
}

// Unit returns the tick duration in seconds: one nanosecond.
func Unit() float64 {
	return 1e-9
}
