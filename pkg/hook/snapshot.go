// Copyright 2024-2026 The line-profiler Authors. All rights reserved.
// Use of this source code is governed by the Business Source License
// included in the LICENSE file of this repository.

// Package hook implements the trace-hook interception and chaining
// protocol: capturing a thread's global hook into an ownership-bearing
// Snapshot, invoking the captured hook transparently through a Guard,
// and composing frame-local hooks so independent observers coexist.
//
// The package is intentionally free of logging and host specifics; it
// speaks only the contracts in pkg/runtime.
package hook

import (
	"github.com/pyutils/line-profiler/pkg/runtime"
)

// Snapshot is a captured observation of a thread's global hook slot.
// A non-empty snapshot holds exactly one strong reference to its
// context. The lifecycle discipline is strict: exactly one Populate,
// followed by exactly one of Nullify or Restore, before the snapshot
// may be reused or discarded. Discarding a populated snapshot without
// nullifying or restoring it leaks the held reference.
type Snapshot struct {
	fn  runtime.HookFunc
	ctx runtime.Object
}

// NewSnapshot returns an empty snapshot.
func NewSnapshot() *Snapshot {
	return &Snapshot{}
}

// Populate copies t's current global hook pair into s, acquiring a
// strong reference on the context if one is installed. Callers must
// only populate a snapshot known to be empty; populating twice without
// an intervening Nullify or Restore leaks the first reference.
func (s *Snapshot) Populate(t runtime.Thread) {
	s.fn, s.ctx = t.GlobalHook()
	if s.ctx != nil {
		s.ctx.IncRef()
	}
}

// Empty reports whether s holds no usable hook. A snapshot with only
// one of its two fields set is inconsistent and treated as empty.
func (s *Snapshot) Empty() bool {
	return s == nil || s.fn == nil || s.ctx == nil
}

// Nullify releases the held context reference, if any, and clears both
// fields. Nullifying an empty snapshot is a no-op; Nullify never fails.
func (s *Snapshot) Nullify() {
	if s == nil {
		return
	}
	if s.ctx != nil {
		s.ctx.DecRef()
	}
	s.fn, s.ctx = nil, nil
}

// Restore installs s's hook pair into t's global slot, then settles the
// held reference and clears s. The slot acquires its own reference
// during the install, so ownership of keeping the context alive has
// transferred to the slot by the time Restore returns. Restoring an
// empty snapshot leaves the slot untouched but still clears the
// snapshot. A snapshot must never be restored twice without an
// intervening Populate.
func (s *Snapshot) Restore(t runtime.Thread) {
	if s == nil {
		return
	}
	if s.Empty() {
		s.fn, s.ctx = nil, nil
		return
	}
	t.SetGlobalHook(s.fn, s.ctx)
	s.ctx.DecRef()
	s.fn, s.ctx = nil, nil
}
