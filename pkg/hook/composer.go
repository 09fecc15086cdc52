// Copyright 2024-2026 The line-profiler Authors. All rights reserved.
// Use of this source code is governed by the Business Source License
// included in the LICENSE file of this repository.

package hook

import (
	"fmt"

	"github.com/pyutils/line-profiler/pkg/runtime"
)

// Wrapper is a frame-local hook that can compose itself with another.
// Composition semantics, including ordering, are the implementor's
// responsibility; the composer only guarantees the existing hook is not
// silently discarded.
type Wrapper interface {
	runtime.LocalHook

	// WrapLocalHook returns a hook combining existing with the
	// receiver's own logic. existing is never nil.
	WrapLocalHook(existing runtime.LocalHook) (runtime.LocalHook, error)
}

// AttachLocalHook installs m as frame's local hook, composing with any
// hook already present so independent observers can coexist on one
// frame. Attaching a manager that is already the frame's local hook is
// a no-op, which makes the operation idempotent.
func AttachLocalHook(m Wrapper, frame runtime.Frame) error {
	existing := frame.LocalHook()
	if existing == runtime.LocalHook(m) {
		return nil
	}
	if existing == nil {
		if err := frame.SetLocalHook(m); err != nil {
			return fmt.Errorf("%w: install local hook: %v", ErrComposition, err)
		}
		return nil
	}

	composed, err := m.WrapLocalHook(existing)
	if err != nil {
		return fmt.Errorf("%w: wrap local hook: %v", ErrComposition, err)
	}
	if err := frame.SetLocalHook(composed); err != nil {
		return fmt.Errorf("%w: install composed hook: %v", ErrComposition, err)
	}
	return nil
}
