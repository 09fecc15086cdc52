// Copyright 2024-2026 The line-profiler Authors. All rights reserved.
// Use of this source code is governed by the Business Source License
// included in the LICENSE file of this repository.

//go:build windows

package timer

import (
	"unsafe"

	"golang.org/x/sys/windows"
)

var (
	modkernel32                   = windows.NewLazySystemDLL("kernel32.dll")
	procQueryPerformanceCounter   = modkernel32.NewProc("QueryPerformanceCounter")
	procQueryPerformanceFrequency = modkernel32.NewProc("QueryPerformanceFrequency")
)

// Now returns the performance counter reading in counter ticks.
func Now() int64 {
	var counter int64
	r1, _, err := procQueryPerformanceCounter.Call(uintptr(unsafe.Pointer(&counter)))
	if r1 == 0 {
		panic("timer: QueryPerformanceCounter: " + err.Error())
	}
	return counter
}

// Unit returns the tick duration in seconds, derived from the counter
// frequency. If the frequency query fails the unit falls back to
// microseconds.
func Unit() float64 {
	var freq int64
	r1, _, _ := procQueryPerformanceFrequency.Call(uintptr(unsafe.Pointer(&freq)))
	if r1 == 0 || freq == 0 {
		return 1e-6
	}
	return 1.0 / float64(freq)
}
