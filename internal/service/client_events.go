// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package service

import "sync"

// EngineStatus is the externally visible state of the sync engine.
type EngineStatus string

const (
	StatusIdle    EngineStatus = "idle"
	StatusSyncing EngineStatus = "syncing"
	StatusError   EngineStatus = "error"
	StatusOffline EngineStatus = "offline"
)

// EventType labels the notifications the engine emits to the UI layer.
type EventType string

const (
	// EventStatusChanged carries the new EngineStatus.
	EventStatusChanged EventType = "status-change"

	// EventBlocksUpdated signals that the local block collection changed.
	EventBlocksUpdated EventType = "blocks-updated"

	// EventTomorrowTasksUpdated signals a change in the tomorrow queue.
	EventTomorrowTasksUpdated EventType = "tomorrow-tasks-updated"

	// EventSettingsUpdated signals a settings change.
	EventSettingsUpdated EventType = "settings-updated"

	// EventConflictDetected carries a models.ConflictReport.
	EventConflictDetected EventType = "conflict-detected"

	// EventError carries the error that interrupted a sync.
	EventError EventType = "error"
)

// Event is one engine notification.
type Event struct {
	Type    EventType
	Payload any
}

// eventEmitter delivers events to subscribers synchronously, in subscription
// order, so a status-change is always observed before the data events that
// follow it.
type eventEmitter struct {
	mu     sync.Mutex
	nextID int
	order  []int
	subs   map[int]func(Event)
}

func newEventEmitter() *eventEmitter {
	return &eventEmitter{subs: make(map[int]func(Event))}
}

// subscribe registers fn and returns its removal function.
func (e *eventEmitter) subscribe(fn func(Event)) func() {
	e.mu.Lock()
	defer e.mu.Unlock()

	id := e.nextID
	e.nextID++
	e.order = append(e.order, id)
	e.subs[id] = fn

	return func() {
		e.mu.Lock()
		defer e.mu.Unlock()
		delete(e.subs, id)
	}
}

func (e *eventEmitter) emit(event Event) {
	e.mu.Lock()
	handlers := make([]func(Event), 0, len(e.subs))
	for _, id := range e.order {
		if fn, ok := e.subs[id]; ok {
			handlers = append(handlers, fn)
		}
	}
	e.mu.Unlock()

	for _, fn := range handlers {
		fn(event)
	}
}
