// Copyright 2024-2026 The line-profiler Authors. All rights reserved.
// Use of this source code is governed by the Business Source License
// included in the LICENSE file of this repository.

package timer

import (
	"testing"
	"time"
)

func TestNowIsNondecreasing(t *testing.T) {
	prev := Now()
	for i := 0; i < 1000; i++ {
		cur := Now()
		if cur < prev {
			t.Fatalf("clock went backwards: %d then %d", prev, cur)
		}
		prev = cur
	}
}

func TestUnitIsSane(t *testing.T) {
	u := Unit()
	if u <= 0 || u > 1 {
		t.Fatalf("Unit() = %g, want a positive sub-second scale", u)
	}
}

func TestElapsedMeasuresSleep(t *testing.T) {
	const nap = 10 * time.Millisecond

	start := Now()
	time.Sleep(nap)
	end := Now()

	got := Elapsed(start, end)
	if got < nap.Seconds()/2 {
		t.Fatalf("Elapsed = %gs across a %v sleep", got, nap)
	}
	if got > 10*nap.Seconds()+1 {
		t.Fatalf("Elapsed = %gs across a %v sleep; unit scale looks wrong", got, nap)
	}
}
