// Copyright 2024-2026 The line-profiler Authors. All rights reserved.
// Use of this source code is governed by the Business Source License
// included in the LICENSE file of this repository.

// Package runtime defines the contracts the profiler core expects from
// the host managed runtime: the per-thread global hook slot, per-frame
// local hooks, the reference-counting primitive for runtime-owned
// objects, and the optional monitoring-restart capability.
//
// Nothing here talks to a real interpreter. The profiler core is written
// against these interfaces so it can be driven by any host, including
// the in-memory reference runtime in pkg/runtime/fake.
package runtime

import "sync/atomic"

// EventKind identifies an execution event delivered by the host runtime
// to an installed hook.
type EventKind int

// Execution event kinds, in the host runtime's dispatch order.
const (
	EventCall EventKind = iota
	EventException
	EventLine
	EventReturn
	EventOpcode
)

// String returns the conventional lowercase event name.
func (k EventKind) String() string {
	switch k {
	case EventCall:
		return "call"
	case EventException:
		return "exception"
	case EventLine:
		return "line"
	case EventReturn:
		return "return"
	case EventOpcode:
		return "opcode"
	default:
		return "unknown"
	}
}

// IsStep reports whether k is a fine-grained step event (delivered once
// per source line or per opcode) rather than a frame-boundary event.
// Step events are the ones a nested tool may opt out of per frame.
func (k EventKind) IsStep() bool {
	return k == EventLine || k == EventOpcode
}

// Object is a reference-counted value owned by the host runtime.
// Holding an Object across a call boundary requires acquiring a
// reference with IncRef and releasing it with exactly one DecRef.
type Object interface {
	IncRef()
	DecRef()
}

// HookFunc is the signature of a global execution-event hook. The host
// runtime invokes the installed pair as fn(ctx, frame, event, arg) for
// every event on the thread. A non-nil error is the hook "raising";
// the runtime's convention is that a hook which errors out is left with
// no active hook.
type HookFunc func(ctx Object, frame Frame, event EventKind, arg any) error

// LocalHook observes events for a single frame. Local hooks are
// runtime-owned objects: frames hold a counted reference to theirs.
type LocalHook interface {
	Object

	// HandleEvent is invoked by the runtime for each event delivered to
	// the frame while the hook is installed.
	HandleEvent(frame Frame, event EventKind, arg any) error
}

// Thread exposes one execution thread's global hook slot. Each thread
// owns its own slot; the profiler only ever touches the slot of the
// thread it is currently running on, so no synchronization is implied.
type Thread interface {
	// GlobalHook returns the currently installed hook pair. Both values
	// are nil when no hook is installed. Reading does not touch
	// reference counts; a caller that wants to hold the pair past the
	// next slot write must capture it through a hook.Snapshot.
	GlobalHook() (HookFunc, Object)

	// SetGlobalHook installs a new hook pair. The slot acquires a
	// reference on the new context and releases the one it held on the
	// old, so a bare GlobalHook read followed by a later reinstall is
	// a use-after-release hazard. hook.Snapshot exists to make the
	// save/restore round trip safe.
	SetGlobalHook(fn HookFunc, ctx Object)
}

// Frame is one call frame of the host runtime. A frame belongs to
// exactly one logical call on exactly one thread for its lifetime.
type Frame interface {
	// LocalHook returns the frame's local hook, or nil if unset.
	LocalHook() LocalHook

	// SetLocalHook replaces the frame's local hook, acquiring a
	// reference on the new hook and releasing the old one, per the
	// runtime's normal attribute-setting semantics. Passing nil unsets.
	SetLocalHook(h LocalHook) error

	// StepEventsEnabled reports whether the runtime delivers
	// fine-grained step events (line/opcode) for this frame.
	StepEventsEnabled() bool

	// SetStepEventsEnabled toggles step-event delivery for this frame.
	SetStepEventsEnabled(enabled bool)
}

// Monitored is an optional capability of host runtimes that maintain a
// monitoring-restart counter: a process-wide, monotonically
// nondecreasing integer that increases whenever the runtime resets its
// internal event-dispatch tables. Hosts lacking the counter simply do
// not implement this interface; see epoch.Reader.
type Monitored interface {
	MonitoringRestartVersion() uint64
}

// RefCount is an embeddable Object implementation. The zero value has a
// balance of zero acquires; Refs reports the net balance, which lets
// tests verify acquire/release discipline against a baseline.
type RefCount struct {
	n atomic.Int64
}

// IncRef acquires one reference.
func (r *RefCount) IncRef() { r.n.Add(1) }

// DecRef releases one reference.
func (r *RefCount) DecRef() { r.n.Add(-1) }

// Refs returns the net number of outstanding acquires.
func (r *RefCount) Refs() int64 { return r.n.Load() }
