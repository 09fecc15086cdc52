// Copyright 2024-2026 The line-profiler Authors. All rights reserved.
// Use of this source code is governed by the Business Source License
// included in the LICENSE file of this repository.

// Package observer turns the hook interception core into a running
// observer: it installs itself into a thread's global hook slot while
// capturing whatever hook was there, forwards every event to that hook
// through the guard protocol so the interposition stays invisible, and
// delivers events to the profiler's callbacks.
package observer

import (
	"errors"
	"fmt"
	"sync/atomic"

	"go.uber.org/zap"

	"github.com/pyutils/line-profiler/pkg/config"
	"github.com/pyutils/line-profiler/pkg/epoch"
	"github.com/pyutils/line-profiler/pkg/hook"
	"github.com/pyutils/line-profiler/pkg/runtime"
)

// ErrInstalled reports an Install on an observer that is already the
// thread's active hook.
var ErrInstalled = errors.New("observer already installed")

// Callbacks receive the events the observer captures. Nil entries are
// skipped. Callbacks run synchronously on the runtime's dispatch path
// and must not block.
type Callbacks struct {
	OnCall      func(frame runtime.Frame, arg any)
	OnLine      func(frame runtime.Frame)
	OnReturn    func(frame runtime.Frame, arg any)
	OnException func(frame runtime.Frame, arg any)
	OnOpcode    func(frame runtime.Frame)
}

// Observer owns one thread's interposition: the snapshot of the hook it
// displaced, the guard that chains to it, and the frames it has
// attached to. An Observer is itself a runtime object so it can sit in
// the global slot's context field and in frames' local hook slots.
//
// Config is stored as an atomic pointer, safe for a config watcher to
// swap while events are being dispatched on the runtime thread.
type Observer struct {
	runtime.RefCount

	cfg    atomic.Pointer[config.Config]
	logger *zap.Logger

	thread runtime.Thread
	guard  *hook.Guard
	prev   *hook.Snapshot

	callbacks Callbacks

	epochs    epoch.Reader
	lastEpoch uint64
	attached  map[runtime.Frame]struct{}

	installed bool
}

// New creates an observer for thread. host is the value the runtime's
// optional capabilities (such as the monitoring-restart counter) are
// probed on; passing the thread itself is fine when no richer host
// handle exists.
func New(thread runtime.Thread, host any, cfg *config.Config, cbs Callbacks, logger *zap.Logger) *Observer {
	o := &Observer{
		logger:    logger,
		thread:    thread,
		guard:     hook.NewGuard(thread),
		prev:      hook.NewSnapshot(),
		callbacks: cbs,
		epochs:    epoch.NewReader(host),
		attached:  make(map[runtime.Frame]struct{}),
	}
	o.cfg.Store(cfg)
	o.lastEpoch = o.epochs.Current()
	return o
}

// SetConfig swaps the observer's configuration. Intended as the
// onChange target of a config.Watcher.
func (o *Observer) SetConfig(cfg *config.Config) {
	o.cfg.Store(cfg)
	o.logger.Info("observer config updated")
}

// Installed reports whether the observer currently occupies the
// thread's global hook slot.
func (o *Observer) Installed() bool {
	return o.installed
}

// Install captures the thread's current global hook into the observer's
// snapshot and installs the observer in its place. The displaced hook
// keeps receiving every event through the guard protocol until the
// observer is uninstalled, at which point it is reinstated.
func (o *Observer) Install() error {
	if o.installed {
		return ErrInstalled
	}
	o.prev.Populate(o.thread)
	o.thread.SetGlobalHook(globalTrace, o)
	o.installed = true

	o.logger.Info("observer installed", zap.Bool("chained", !o.prev.Empty()))
	return nil
}

// Uninstall reinstates the displaced hook, or clears the slot if there
// was none (or it unset itself while chained). Idempotent.
func (o *Observer) Uninstall() {
	if !o.installed {
		return
	}
	if o.prev.Empty() {
		o.prev.Nullify()
		o.thread.SetGlobalHook(nil, nil)
	} else {
		o.prev.Restore(o.thread)
	}
	o.installed = false
	o.logger.Info("observer uninstalled")
}

// globalTrace is the HookFunc the observer installs. The runtime hands
// back the observer as the hook context.
func globalTrace(ctx runtime.Object, frame runtime.Frame, event runtime.EventKind, arg any) error {
	o, ok := ctx.(*Observer)
	if !ok {
		return fmt.Errorf("observer: unexpected hook context type %T", ctx)
	}
	return o.dispatch(frame, event, arg)
}

func (o *Observer) dispatch(frame runtime.Frame, event runtime.EventKind, arg any) error {
	cfg := o.cfg.Load()

	// Chain to the displaced hook first, so its view of event order is
	// the same as if the observer were not interposed.
	if cfg.Chaining.Enabled {
		status, err := o.guard.Invoke(hook.DisableStepEvents, o.prev, frame, event, arg)
		if err != nil {
			// The wrapped hook failing is not the observer failing.
			// Keep observing; the slot is already restored.
			o.logger.Warn("wrapped hook failed",
				zap.Stringer("event", event),
				zap.Stringer("status", status),
				zap.Error(err),
			)
		}
	}

	o.refreshEpoch()
	o.deliver(frame, event, arg)
	return nil
}

// refreshEpoch drops cached frame attachments when the runtime reports
// that its dispatch tables were reset. A host without the counter
// always reports 0 and never invalidates.
func (o *Observer) refreshEpoch() {
	v := o.epochs.Current()
	if v == o.lastEpoch {
		return
	}
	o.lastEpoch = v
	clear(o.attached)
	o.logger.Debug("monitoring tables restarted; cleared frame attachments", zap.Uint64("epoch", v))
}

func (o *Observer) deliver(frame runtime.Frame, event runtime.EventKind, arg any) {
	cfg := o.cfg.Load()
	switch event {
	case runtime.EventCall:
		if cfg.Events.Call && o.callbacks.OnCall != nil {
			o.callbacks.OnCall(frame, arg)
		}
	case runtime.EventLine:
		if cfg.Events.Line && o.callbacks.OnLine != nil {
			o.callbacks.OnLine(frame)
		}
	case runtime.EventReturn:
		if cfg.Events.Return && o.callbacks.OnReturn != nil {
			o.callbacks.OnReturn(frame, arg)
		}
	case runtime.EventException:
		if cfg.Events.Exception && o.callbacks.OnException != nil {
			o.callbacks.OnException(frame, arg)
		}
	case runtime.EventOpcode:
		if cfg.Events.Opcode && o.callbacks.OnOpcode != nil {
			o.callbacks.OnOpcode(frame)
		}
	}
}

// AttachFrame installs the observer as frame's local hook, composing
// with any hook already present. Attachments are cached per frame and
// the cache is invalidated when the monitoring-restart counter moves.
func (o *Observer) AttachFrame(frame runtime.Frame) error {
	o.refreshEpoch()
	if _, ok := o.attached[frame]; ok {
		return nil
	}
	if err := hook.AttachLocalHook(o, frame); err != nil {
		return fmt.Errorf("attach frame: %w", err)
	}
	o.attached[frame] = struct{}{}
	return nil
}

// HandleEvent lets the observer serve as a frame-local hook: locally
// delivered events go to the same callbacks as global ones.
func (o *Observer) HandleEvent(frame runtime.Frame, event runtime.EventKind, arg any) error {
	o.deliver(frame, event, arg)
	return nil
}

// WrapLocalHook implements hook.Wrapper. The composed hook runs the
// existing hook first and the observer second, and fails fast on the
// existing hook's error so its self-disabling conventions keep working.
func (o *Observer) WrapLocalHook(existing runtime.LocalHook) (runtime.LocalHook, error) {
	if existing == nil {
		return nil, fmt.Errorf("wrap local hook: no hook to wrap")
	}
	existing.IncRef()
	o.IncRef()
	return &chainHook{first: existing, second: o}, nil
}

// chainHook runs two local hooks in order, holding a reference to each.
type chainHook struct {
	runtime.RefCount
	first  runtime.LocalHook
	second runtime.LocalHook
}

func (c *chainHook) HandleEvent(frame runtime.Frame, event runtime.EventKind, arg any) error {
	if err := c.first.HandleEvent(frame, event, arg); err != nil {
		return err
	}
	return c.second.HandleEvent(frame, event, arg)
}
