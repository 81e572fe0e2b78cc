package tui

import (
	"github.com/MKhiriev/go-note-keeper/internal/service"
	"github.com/MKhiriev/go-note-keeper/models"
)

type signInDoneMsg struct {
	user models.User
	err  error
}

type blocksLoadedMsg struct {
	blocks []models.LocalBlock
	err    error
}

type tasksLoadedMsg struct {
	tasks []models.LocalTask
	err   error
}

type settingsLoadedMsg struct {
	settings models.LocalSettings
	err      error
}

type savedMsg struct {
	err error
}

type syncDoneMsg struct {
	err error
}

type copiedMsg struct{}

type clearStatusMsg struct{}

// engineEventMsg wraps an engine notification forwarded into the bubbletea
// loop via Program.Send.
type engineEventMsg struct {
	event service.Event
}
