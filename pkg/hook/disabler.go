// Copyright 2024-2026 The line-profiler Authors. All rights reserved.
// Use of this source code is governed by the Business Source License
// included in the LICENSE file of this repository.

package hook

import (
	"fmt"

	"github.com/pyutils/line-profiler/pkg/runtime"
)

// stepFilter forwards every event except step events to the hook it
// wraps. It holds one reference to the inner hook for its lifetime.
type stepFilter struct {
	runtime.RefCount
	inner runtime.LocalHook
}

func (f *stepFilter) HandleEvent(frame runtime.Frame, event runtime.EventKind, arg any) error {
	if event.IsStep() {
		return nil
	}
	return f.inner.HandleEvent(frame, event, arg)
}

// DisableStepEvents is the standard Disabler: it wraps existing in a
// filter that swallows line and opcode events before they reach it,
// while every other event kind passes through unchanged.
func DisableStepEvents(existing runtime.LocalHook) (runtime.LocalHook, error) {
	if existing == nil {
		return nil, fmt.Errorf("disable step events: no hook to wrap")
	}
	existing.IncRef()
	return &stepFilter{inner: existing}, nil
}
