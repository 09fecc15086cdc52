// Copyright 2024-2026 The line-profiler Authors. All rights reserved.
// Use of this source code is governed by the Business Source License
// included in the LICENSE file of this repository.

package hook

import (
	"errors"
	"fmt"

	"github.com/pyutils/line-profiler/pkg/runtime"
)

// ErrComposition reports that producing or installing a wrapped
// frame-local hook failed. By the time it is returned the global hook
// slot has already been restored, so the slot is never left corrupted.
var ErrComposition = errors.New("local hook composition failed")

// Status is the non-error outcome of Guard.Invoke.
type Status int

const (
	// StatusNotInstalled means the snapshot was empty: there is no
	// wrapped hook to chain to, nothing ran, and nothing was touched.
	// This is an expected outcome, not an error.
	StatusNotInstalled Status = iota

	// StatusInvoked means the wrapped hook was called. Any error it
	// returned is passed through alongside this status.
	StatusInvoked
)

// String returns a short name for the status.
func (s Status) String() string {
	switch s {
	case StatusNotInstalled:
		return "not-installed"
	case StatusInvoked:
		return "invoked"
	default:
		return "unknown"
	}
}

// Disabler produces a variant of a frame-local hook that no longer
// receives step events but still receives every other event kind.
// Guard.Invoke applies it when the wrapped hook opts a frame out of
// step events that the profiler still needs.
type Disabler func(existing runtime.LocalHook) (runtime.LocalHook, error)

// Guard invokes a wrapped hook on behalf of an event while keeping the
// interposition invisible: whatever the wrapped hook does to the global
// slot during its call, the slot holds the same value after Invoke
// returns that it held before.
type Guard struct {
	thread runtime.Thread
}

// NewGuard returns a guard bound to t's global hook slot.
func NewGuard(t runtime.Thread) *Guard {
	return &Guard{thread: t}
}

// Invoke calls the hook captured in snap for an event on frame, as if
// the profiler were not interposed.
//
// The protocol, in order: remember the frame's step-events flag, save
// the current global slot, call the wrapped hook, detect whether it
// unset itself (propagating that into snap), reinstall the saved slot,
// and finally undo any step-event opt-out the hook applied to the
// frame, replacing the frame's local hook with a disable-wrapped
// variant so the opt-out still takes effect for the hook itself.
//
// The wrapped hook call is opaque: it may error, replace or clear the
// global hook, alter the frame's local hook or step flag, and
// recursively trigger events that reenter Invoke on the same thread.
// Reentrancy is safe because each call scopes its saved/after snapshots
// to its own stack frame and only the single slot is shared.
//
// An error from the wrapped hook is returned unchanged, after the slot
// has been restored. A failure to disable step events is returned
// wrapped in ErrComposition; when both occur the errors are joined.
func (g *Guard) Invoke(
	disable Disabler,
	snap *Snapshot,
	frame runtime.Frame,
	event runtime.EventKind,
	arg any,
) (Status, error) {
	if snap.Empty() {
		return StatusNotInstalled, nil
	}

	before := frame.StepEventsEnabled()

	var saved Snapshot
	saved.Populate(g.thread)

	callErr := snap.fn(snap.ctx, frame, event, arg)

	// If the hook unset itself during the call, mirror the runtime
	// convention: the outer snapshot is cleared for good too.
	var after Snapshot
	after.Populate(g.thread)
	if after.Empty() {
		snap.Nullify()
	}
	after.Nullify()

	saved.Restore(g.thread)

	compErr := g.undoStepOptOut(disable, frame, before)

	switch {
	case callErr != nil && compErr != nil:
		return StatusInvoked, errors.Join(callErr, compErr)
	case compErr != nil:
		return StatusInvoked, compErr
	default:
		return StatusInvoked, callErr
	}
}

// undoStepOptOut re-enables step events on the frame if the wrapped
// hook turned them off, and swaps the frame's local hook for a
// disable-wrapped variant so the original hook stops seeing step
// events without the profiler losing them.
func (g *Guard) undoStepOptOut(disable Disabler, frame runtime.Frame, before bool) error {
	if frame.StepEventsEnabled() || !before {
		return nil
	}
	frame.SetStepEventsEnabled(before)

	local := frame.LocalHook()
	if local == nil {
		return nil
	}
	if disable == nil {
		return fmt.Errorf("%w: no disabler capability provided", ErrComposition)
	}
	filtered, err := disable(local)
	if err != nil {
		return fmt.Errorf("%w: disable step events: %v", ErrComposition, err)
	}
	if err := frame.SetLocalHook(filtered); err != nil {
		return fmt.Errorf("%w: install filtered hook: %v", ErrComposition, err)
	}
	return nil
}
