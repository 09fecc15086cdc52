// Copyright 2024-2026 The line-profiler Authors. All rights reserved.
// Use of this source code is governed by the Business Source License
// included in the LICENSE file of this repository.

// Package fake is an in-memory reference implementation of the host
// runtime contracts in pkg/runtime. It exists so the hook interception
// core can be exercised end to end without a real interpreter: threads
// with a global hook slot, frames with local hooks and a step-events
// flag, reference-counted contexts, and a bumpable monitoring-restart
// counter.
//
// The fake is deliberately unsynchronized. Per the runtime model, a
// thread's slot is only ever touched from that thread, and event
// dispatch is synchronous.
package fake

import (
	"github.com/pyutils/line-profiler/pkg/runtime"
)

// Context is a reference-counted runtime object. Tests use its Refs
// balance to verify the snapshot acquire/release discipline.
type Context struct {
	runtime.RefCount
	Name string
}

// NewContext returns a named context with a zero reference balance.
func NewContext(name string) *Context {
	return &Context{Name: name}
}

// Runtime holds process-wide fake state: the monitoring-restart
// counter and the threads it has spawned.
type Runtime struct {
	restartVersion uint64
	threads        []*Thread
}

// NewRuntime creates an empty fake runtime.
func NewRuntime() *Runtime {
	return &Runtime{}
}

// NewThread spawns a thread with an empty global hook slot.
func (r *Runtime) NewThread() *Thread {
	t := &Thread{rt: r}
	r.threads = append(r.threads, t)
	return t
}

// MonitoringRestartVersion implements runtime.Monitored.
func (r *Runtime) MonitoringRestartVersion() uint64 {
	return r.restartVersion
}

// BumpRestartVersion simulates the runtime resetting its event-dispatch
// tables, which increments the restart counter.
func (r *Runtime) BumpRestartVersion() {
	r.restartVersion++
}

// Thread implements runtime.Thread with a single global hook slot.
type Thread struct {
	rt  *Runtime
	fn  runtime.HookFunc
	ctx runtime.Object
}

// GlobalHook returns the installed hook pair without touching counts.
func (t *Thread) GlobalHook() (runtime.HookFunc, runtime.Object) {
	return t.fn, t.ctx
}

// SetGlobalHook installs a hook pair, acquiring a reference on the new
// context and releasing the slot's reference on the old one.
func (t *Thread) SetGlobalHook(fn runtime.HookFunc, ctx runtime.Object) {
	if ctx != nil {
		ctx.IncRef()
	}
	if t.ctx != nil {
		t.ctx.DecRef()
	}
	t.fn = fn
	t.ctx = ctx
}

// NewFrame creates a frame on this thread with step events enabled,
// which is the runtime's default for freshly entered calls.
func (t *Thread) NewFrame() *Frame {
	return &Frame{thread: t, stepEnabled: true}
}

// Emit delivers one execution event to the thread's installed global
// hook, exactly as the host runtime's dispatch loop would. Emitting on
// a thread with an empty slot is a no-op.
func (t *Thread) Emit(f *Frame, event runtime.EventKind, arg any) error {
	if t.fn == nil || t.ctx == nil {
		return nil
	}
	return t.fn(t.ctx, f, event, arg)
}

// Frame implements runtime.Frame.
type Frame struct {
	thread      *Thread
	local       runtime.LocalHook
	stepEnabled bool

	failSetLocal error
}

// LocalHook returns the frame's local hook, or nil.
func (f *Frame) LocalHook() runtime.LocalHook {
	return f.local
}

// SetLocalHook replaces the local hook, acquiring a reference on the
// new hook and releasing the old one.
func (f *Frame) SetLocalHook(h runtime.LocalHook) error {
	if f.failSetLocal != nil {
		err := f.failSetLocal
		f.failSetLocal = nil
		return err
	}
	if h != nil {
		h.IncRef()
	}
	if f.local != nil {
		f.local.DecRef()
	}
	f.local = h
	return nil
}

// StepEventsEnabled reports the frame's step-events flag.
func (f *Frame) StepEventsEnabled() bool {
	return f.stepEnabled
}

// SetStepEventsEnabled toggles the frame's step-events flag.
func (f *Frame) SetStepEventsEnabled(enabled bool) {
	f.stepEnabled = enabled
}

// FailNextSetLocalHook arms the frame so its next SetLocalHook call
// fails with err. Used to test composition failure paths.
func (f *Frame) FailNextSetLocalHook(err error) {
	f.failSetLocal = err
}

// RecordingHook is a LocalHook that records the events it receives and
// optionally fails every invocation with Err.
type RecordingHook struct {
	runtime.RefCount
	Name   string
	Events []runtime.EventKind
	Err    error
}

// HandleEvent appends the event kind and returns Err.
func (h *RecordingHook) HandleEvent(_ runtime.Frame, event runtime.EventKind, _ any) error {
	h.Events = append(h.Events, event)
	return h.Err
}
