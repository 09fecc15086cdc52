// Copyright 2024-2026 The line-profiler Authors. All rights reserved.
// Use of this source code is governed by the Business Source License
// included in the LICENSE file of this repository.

// Package timer provides the high-resolution monotonic clock the
// profiler timestamps events with. Now returns raw platform ticks and
// Unit the seconds-per-tick scale, so elapsed wall time between two
// readings a and b is Elapsed(a, b).
//
// The platform clock is selected at build time (see the _unix, _windows
// and fallback files). Profiling cannot proceed without a clock, so a
// platform clock failure is fatal to the process.
package timer

// Elapsed converts two tick readings into elapsed seconds.
func Elapsed(start, end int64) float64 {
	return float64(end-start) * Unit()
}
