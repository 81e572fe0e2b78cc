// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

// Package tui implements the terminal client on top of the sync engine.
// Engine events are forwarded into the bubbletea loop so the screen reacts
// to background syncs the same way it reacts to key presses.
package tui

import (
	"context"

	"github.com/MKhiriev/go-note-keeper/internal/logger"
	"github.com/MKhiriev/go-note-keeper/internal/service"
	tea "github.com/charmbracelet/bubbletea"
)

type TUI struct {
	engine service.SyncEngine
	logger *logger.Logger
}

func New(services *service.ClientServices, log *logger.Logger) (*TUI, error) {
	return &TUI{engine: services.SyncEngine, logger: log}, nil
}

// Run starts the interactive loop and blocks until the user quits. The
// returned logout flag tells the caller to drop the session and restart.
func (t *TUI) Run(ctx context.Context) (logout bool, err error) {
	model := newAppModel(ctx, t.engine)
	program := tea.NewProgram(model, tea.WithAltScreen())

	unsubscribe := t.engine.Subscribe(func(event service.Event) {
		program.Send(engineEventMsg{event: event})
	})
	defer unsubscribe()

	finalModel, runErr := program.Run()
	if runErr != nil {
		return false, runErr
	}

	result, ok := finalModel.(appModel)
	if !ok {
		return false, tea.ErrProgramKilled
	}
	if result.err != nil {
		return false, result.err
	}

	return result.logout, nil
}
