// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

// Package workers provides the scheduling primitives of the client sync
// engine: a resettable debouncer collapsing edit bursts into one sync, and a
// fixed-interval runner for the periodic background sync.
package workers

import (
	"context"
	"sync"
	"time"
)

// Debouncer invokes fn once the configured quiet period has elapsed since
// the last Trigger call. Triggers during the wait reset the timer, so a
// burst of edits produces a single invocation.
type Debouncer struct {
	delay time.Duration
	fn    func()

	mu      sync.Mutex
	timer   *time.Timer
	stopped bool
}

func NewDebouncer(delay time.Duration, fn func()) *Debouncer {
	return &Debouncer{
		delay: delay,
		fn:    fn,
	}
}

// Trigger arms (or re-arms) the debounce timer.
func (d *Debouncer) Trigger() {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.stopped {
		return
	}

	if d.timer != nil {
		d.timer.Stop()
	}
	d.timer = time.AfterFunc(d.delay, d.fn)
}

// Stop cancels any pending invocation. The debouncer cannot be re-armed
// afterwards.
func (d *Debouncer) Stop() {
	d.mu.Lock()
	defer d.mu.Unlock()

	d.stopped = true
	if d.timer != nil {
		d.timer.Stop()
		d.timer = nil
	}
}

// RunEvery invokes fn at the given interval until ctx is cancelled. The
// first invocation happens one interval after the call, not immediately.
func RunEvery(ctx context.Context, interval time.Duration, fn func()) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			fn()
		}
	}
}
