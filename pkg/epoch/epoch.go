// Copyright 2024-2026 The line-profiler Authors. All rights reserved.
// Use of this source code is governed by the Business Source License
// included in the LICENSE file of this repository.

// Package epoch reads the host runtime's monitoring-restart counter,
// used elsewhere to invalidate cached dispatch state. Older hosts do
// not expose the counter; reading those yields a constant 0, which
// callers must treat as "no invalidation signal available", never as a
// reason to discard caches.
package epoch

import "github.com/pyutils/line-profiler/pkg/runtime"

// Reader polls a host's monitoring-restart counter. The zero value
// reads a host with no counter.
type Reader struct {
	host any
}

// NewReader returns a reader for host. The counter is read through the
// optional runtime.Monitored capability; hosts that do not implement it
// are handled by the sentinel in Current.
func NewReader(host any) Reader {
	return Reader{host: host}
}

// Current returns the host's restart counter, or 0 when the host does
// not expose one. Reading never fails and has no side effects.
func (r Reader) Current() uint64 {
	if m, ok := r.host.(runtime.Monitored); ok {
		return m.MonitoringRestartVersion()
	}
	return 0
}
