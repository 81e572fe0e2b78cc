package service

import (
	"context"

	"github.com/MKhiriev/go-note-keeper/internal/workers"
)

// startBackground wires the two sync triggers: a debouncer collapsing edit
// bursts into one cycle, and a fixed-interval tick catching up on changes
// made elsewhere.
func (e *syncEngine) startBackground() {
	ctx, cancel := context.WithCancel(context.Background())
	e.cancelBG = cancel

	e.debouncer = workers.NewDebouncer(e.cfg.DebounceDelay, func() {
		if err := e.Sync(context.Background()); err != nil {
			e.logger.Err(err).Str("func", "*syncEngine.startBackground").Msg("debounced sync failed")
		}
	})

	go workers.RunEvery(ctx, e.cfg.SyncInterval, func() {
		if err := e.Sync(context.Background()); err != nil {
			e.logger.Err(err).Str("func", "*syncEngine.startBackground").Msg("periodic sync failed")
		}
	})
}

// scheduleSync arms the debounced sync after a local edit.
func (e *syncEngine) scheduleSync() {
	if e.debouncer != nil {
		e.debouncer.Trigger()
	}
}
