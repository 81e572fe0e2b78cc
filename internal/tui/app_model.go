// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package tui

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/MKhiriev/go-note-keeper/internal/service"
	"github.com/MKhiriev/go-note-keeper/models"
	"github.com/atotto/clipboard"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
)

var ErrUserQuit = errors.New("user quit")

type screen int

const (
	screenWelcome screen = iota
	screenNotes
	screenTomorrow
	screenSettings
)

type appModel struct {
	ctx    context.Context
	engine service.SyncEngine

	currentScreen screen

	tokenInput textinput.Model
	input      textinput.Model
	entering   bool

	blocks   []models.LocalBlock
	blockIdx int
	tasks    []models.LocalTask
	taskIdx  int
	settings models.LocalSettings

	engineStatus service.EngineStatus
	statusLine   string
	conflictNote string

	showConfirm   bool
	pendingDelete string
	showError     bool
	errMessage    string

	err    error
	logout bool
}

func newAppModel(ctx context.Context, engine service.SyncEngine) appModel {
	tokenInput := textinput.New()
	tokenInput.Placeholder = "paste Google ID token"
	tokenInput.Focus()

	input := textinput.New()
	input.Placeholder = "type a note, enter to add"

	m := appModel{
		ctx:          ctx,
		engine:       engine,
		tokenInput:   tokenInput,
		input:        input,
		engineStatus: engine.Status(),
	}

	if _, signedIn := engine.SignedInUser(); signedIn {
		m.currentScreen = screenNotes
	} else {
		m.currentScreen = screenWelcome
	}

	return m
}

func (m appModel) Init() tea.Cmd {
	return tea.Batch(m.cmdLoadBlocks(), m.cmdLoadTasks(), m.cmdLoadSettings())
}

func (m appModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case engineEventMsg:
		return m.handleEngineEvent(msg.event)

	case signInDoneMsg:
		if msg.err != nil {
			m.showErrorf(msg.err.Error())
			return m, nil
		}
		m.currentScreen = screenNotes
		return m, tea.Batch(m.cmdLoadBlocks(), m.cmdLoadTasks(), m.cmdLoadSettings())

	case blocksLoadedMsg:
		if msg.err != nil {
			m.showErrorf(msg.err.Error())
			return m, nil
		}
		m.blocks = msg.blocks
		m.blockIdx = clampIndex(m.blockIdx, len(m.blocks))
		return m, nil

	case tasksLoadedMsg:
		if msg.err != nil {
			m.showErrorf(msg.err.Error())
			return m, nil
		}
		m.tasks = msg.tasks
		m.taskIdx = clampIndex(m.taskIdx, len(m.tasks))
		return m, nil

	case settingsLoadedMsg:
		if msg.err != nil {
			m.showErrorf(msg.err.Error())
			return m, nil
		}
		m.settings = msg.settings
		return m, nil

	case savedMsg:
		if msg.err != nil {
			m.showErrorf(msg.err.Error())
		}
		return m, nil

	case syncDoneMsg:
		if msg.err != nil {
			m.statusLine = "server unreachable, will retry later"
			return m, cmdClearStatus()
		}
		return m, nil

	case copiedMsg:
		m.statusLine = "copied"
		return m, cmdClearStatus()

	case clearStatusMsg:
		m.statusLine = ""
		return m, nil

	case tea.KeyMsg:
		return m.handleKey(msg)

	case tea.WindowSizeMsg:
		return m, nil
	}

	return m.updateInputs(msg)
}

func (m appModel) handleEngineEvent(event service.Event) (tea.Model, tea.Cmd) {
	switch event.Type {
	case service.EventStatusChanged:
		if status, ok := event.Payload.(service.EngineStatus); ok {
			m.engineStatus = status
		}
		return m, nil
	case service.EventBlocksUpdated:
		return m, m.cmdLoadBlocks()
	case service.EventTomorrowTasksUpdated:
		return m, m.cmdLoadTasks()
	case service.EventSettingsUpdated:
		return m, m.cmdLoadSettings()
	case service.EventConflictDetected:
		if report, ok := event.Payload.(models.ConflictReport); ok {
			m.conflictNote = fmt.Sprintf("conflict on %s %s, both copies kept", report.Type, report.ID)
		}
		return m, nil
	case service.EventError:
		if err, ok := event.Payload.(error); ok {
			m.statusLine = err.Error()
			return m, cmdClearStatus()
		}
	}
	return m, nil
}

func (m appModel) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if m.showError {
		if key.Matches(msg, keys.enter) || key.Matches(msg, keys.esc) {
			m.showError = false
			m.errMessage = ""
		}
		return m, nil
	}
	if m.showConfirm {
		switch {
		case key.Matches(msg, keys.yes):
			m.showConfirm = false
			id := m.pendingDelete
			m.pendingDelete = ""
			if m.currentScreen == screenTomorrow {
				return m, m.cmdDeleteTask(id)
			}
			return m, m.cmdDeleteBlock(id)
		case key.Matches(msg, keys.no), key.Matches(msg, keys.esc):
			m.showConfirm = false
			m.pendingDelete = ""
		}
		return m, nil
	}

	switch m.currentScreen {
	case screenWelcome:
		return m.updateWelcome(msg)
	case screenNotes:
		return m.updateNotes(msg)
	case screenTomorrow:
		return m.updateTomorrow(msg)
	case screenSettings:
		return m.updateSettings(msg)
	}

	return m, nil
}

func (m appModel) updateWelcome(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, keys.quit) && m.tokenInput.Value() == "":
		m.err = ErrUserQuit
		return m, tea.Quit
	case key.Matches(msg, keys.esc):
		// work locally without an account
		m.currentScreen = screenNotes
		return m, nil
	case key.Matches(msg, keys.enter):
		token := strings.TrimSpace(m.tokenInput.Value())
		if token == "" {
			m.showErrorf("ID token is required, or esc to stay offline")
			return m, nil
		}
		return m, m.cmdSignIn(token)
	}

	var cmd tea.Cmd
	m.tokenInput, cmd = m.tokenInput.Update(msg)
	return m, cmd
}

func (m appModel) updateNotes(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if m.entering {
		switch {
		case key.Matches(msg, keys.esc):
			m.entering = false
			m.input.Blur()
			m.input.SetValue("")
			return m, nil
		case key.Matches(msg, keys.enter):
			text := m.input.Value()
			m.input.SetValue("")
			if strings.TrimSpace(text) == "" {
				return m, nil
			}
			return m, m.cmdSaveBlock(text)
		}
		var cmd tea.Cmd
		m.input, cmd = m.input.Update(msg)
		return m, cmd
	}

	switch {
	case key.Matches(msg, keys.up):
		if m.blockIdx > 0 {
			m.blockIdx--
		}
	case key.Matches(msg, keys.down):
		if m.blockIdx < len(m.blocks)-1 {
			m.blockIdx++
		}
	case key.Matches(msg, keys.newItem):
		m.entering = true
		m.input.Placeholder = "type a note, enter to add"
		return m, m.input.Focus()
	case key.Matches(msg, keys.delete):
		if block, ok := m.currentBlock(); ok {
			m.showConfirm = true
			m.pendingDelete = block.ID
		}
	case key.Matches(msg, keys.copy):
		if block, ok := m.currentBlock(); ok {
			return m, cmdCopyToClipboard(block.Text)
		}
	case key.Matches(msg, keys.sync):
		return m, m.cmdSync()
	case key.Matches(msg, keys.tab):
		m.currentScreen = screenTomorrow
	case key.Matches(msg, keys.theme):
		m.currentScreen = screenSettings
	case key.Matches(msg, keys.logout):
		m.logout = true
		return m, tea.Quit
	case key.Matches(msg, keys.quit):
		return m, tea.Quit
	}

	return m, nil
}

func (m appModel) updateTomorrow(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if m.entering {
		switch {
		case key.Matches(msg, keys.esc):
			m.entering = false
			m.input.Blur()
			m.input.SetValue("")
			return m, nil
		case key.Matches(msg, keys.enter):
			text := m.input.Value()
			m.input.SetValue("")
			if strings.TrimSpace(text) == "" {
				return m, nil
			}
			return m, m.cmdSaveTask(text)
		}
		var cmd tea.Cmd
		m.input, cmd = m.input.Update(msg)
		return m, cmd
	}

	switch {
	case key.Matches(msg, keys.up):
		if m.taskIdx > 0 {
			m.taskIdx--
		}
	case key.Matches(msg, keys.down):
		if m.taskIdx < len(m.tasks)-1 {
			m.taskIdx++
		}
	case key.Matches(msg, keys.newItem):
		m.entering = true
		m.input.Placeholder = "task for tomorrow, enter to add"
		return m, m.input.Focus()
	case key.Matches(msg, keys.delete):
		if task, ok := m.currentTask(); ok {
			m.showConfirm = true
			m.pendingDelete = task.ID
		}
	case key.Matches(msg, keys.sync):
		return m, m.cmdSync()
	case key.Matches(msg, keys.tab), key.Matches(msg, keys.esc):
		m.currentScreen = screenNotes
	case key.Matches(msg, keys.quit):
		return m, tea.Quit
	}

	return m, nil
}

func (m appModel) updateSettings(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, keys.esc), key.Matches(msg, keys.tab):
		m.currentScreen = screenNotes
	case key.Matches(msg, keys.theme):
		return m, m.cmdSaveSettings(nextTheme(m.settings.Theme), m.settings.DayCutHour)
	case key.Matches(msg, keys.up):
		if m.settings.DayCutHour < 23 {
			return m, m.cmdSaveSettings(m.settings.Theme, m.settings.DayCutHour+1)
		}
	case key.Matches(msg, keys.down):
		if m.settings.DayCutHour > 0 {
			return m, m.cmdSaveSettings(m.settings.Theme, m.settings.DayCutHour-1)
		}
	case key.Matches(msg, keys.quit):
		return m, tea.Quit
	}

	return m, nil
}

func (m appModel) updateInputs(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd
	var cmd tea.Cmd

	m.tokenInput, cmd = m.tokenInput.Update(msg)
	cmds = append(cmds, cmd)
	m.input, cmd = m.input.Update(msg)
	cmds = append(cmds, cmd)

	return m, tea.Batch(cmds...)
}

func (m appModel) View() string {
	var body string
	switch m.currentScreen {
	case screenWelcome:
		body = m.viewWelcome()
	case screenNotes:
		body = m.viewNotes()
	case screenTomorrow:
		body = m.viewTomorrow()
	case screenSettings:
		body = m.viewSettings()
	}

	body += "\n\n" + m.viewFooter()

	if m.showConfirm {
		body += "\n\n" + overlayBoxStyle.Render("Delete? (y/n)")
	}
	if m.showError {
		body += "\n\n" + overlayBoxStyle.Render(m.errMessage)
	}

	return appStyle.Render(body)
}

func (m appModel) viewWelcome() string {
	var b strings.Builder
	b.WriteString(titleStyle.Render("note-keeper") + "\n\n")
	b.WriteString("Sign in with Google to sync across devices.\n\n")
	b.WriteString(m.tokenInput.View() + "\n\n")
	b.WriteString(helpStyle.Render("enter: sign in  esc: stay offline  q: quit"))
	return b.String()
}

func (m appModel) viewNotes() string {
	var b strings.Builder
	b.WriteString(titleStyle.Render("Today") + "\n\n")

	if len(m.blocks) == 0 {
		b.WriteString(helpStyle.Render("no notes yet, press n to add one") + "\n")
	}
	for i, block := range m.blocks {
		line := block.Text
		if block.SyncStatus == models.SyncStatusPending {
			line = pendingStyle.Render(line + " •")
		}
		if i == m.blockIdx {
			line = selectedStyle.Render("> ") + line
		} else {
			line = "  " + line
		}
		b.WriteString(line + "\n")
	}

	if m.entering {
		b.WriteString("\n" + m.input.View())
	}

	b.WriteString("\n" + helpStyle.Render("n: new  d: delete  c: copy  s: sync  tab: tomorrow  t: settings  l: sign out  q: quit"))
	return b.String()
}

func (m appModel) viewTomorrow() string {
	var b strings.Builder
	b.WriteString(titleStyle.Render("Tomorrow") + "\n\n")

	if len(m.tasks) == 0 {
		b.WriteString(helpStyle.Render("nothing queued for tomorrow") + "\n")
	}
	for i, task := range m.tasks {
		line := task.Text
		if task.Time != nil {
			line = *task.Time + " " + line
		}
		if task.SyncStatus == models.SyncStatusPending {
			line = pendingStyle.Render(line + " •")
		}
		if i == m.taskIdx {
			line = selectedStyle.Render("> ") + line
		} else {
			line = "  " + line
		}
		b.WriteString(line + "\n")
	}

	if m.entering {
		b.WriteString("\n" + m.input.View())
	}

	b.WriteString("\n" + helpStyle.Render("n: new  d: delete  s: sync  tab: back  q: quit"))
	return b.String()
}

func (m appModel) viewSettings() string {
	var b strings.Builder
	b.WriteString(titleStyle.Render("Settings") + "\n\n")
	b.WriteString(fmt.Sprintf("Theme:        %s\n", m.settings.Theme))
	b.WriteString(fmt.Sprintf("Day cut hour: %02d:00\n", m.settings.DayCutHour))
	b.WriteString("\n" + helpStyle.Render("t: cycle theme  up/down: day cut hour  esc: back"))
	return b.String()
}

func (m appModel) viewFooter() string {
	parts := []string{string(m.engineStatus)}
	if user, ok := m.engine.SignedInUser(); ok {
		parts = append(parts, user.Email)
	} else {
		parts = append(parts, "offline account")
	}
	if m.conflictNote != "" {
		parts = append(parts, m.conflictNote)
	}
	if m.statusLine != "" {
		parts = append(parts, m.statusLine)
	}
	return statusStyle.Render(strings.Join(parts, "  |  "))
}

func (m *appModel) showErrorf(message string) {
	m.showError = true
	m.errMessage = message
}

func (m appModel) currentBlock() (models.LocalBlock, bool) {
	if m.blockIdx < 0 || m.blockIdx >= len(m.blocks) {
		return models.LocalBlock{}, false
	}
	return m.blocks[m.blockIdx], true
}

func (m appModel) currentTask() (models.LocalTask, bool) {
	if m.taskIdx < 0 || m.taskIdx >= len(m.tasks) {
		return models.LocalTask{}, false
	}
	return m.tasks[m.taskIdx], true
}

func (m appModel) cmdSignIn(idToken string) tea.Cmd {
	ctx := m.ctx
	engine := m.engine
	return func() tea.Msg {
		user, err := engine.SignIn(ctx, idToken)
		return signInDoneMsg{user: user, err: err}
	}
}

func (m appModel) cmdLoadBlocks() tea.Cmd {
	ctx := m.ctx
	engine := m.engine
	return func() tea.Msg {
		blocks, err := engine.GetBlocks(ctx)
		return blocksLoadedMsg{blocks: blocks, err: err}
	}
}

func (m appModel) cmdLoadTasks() tea.Cmd {
	ctx := m.ctx
	engine := m.engine
	return func() tea.Msg {
		tasks, err := engine.GetTomorrowTasks(ctx)
		return tasksLoadedMsg{tasks: tasks, err: err}
	}
}

func (m appModel) cmdLoadSettings() tea.Cmd {
	ctx := m.ctx
	engine := m.engine
	return func() tea.Msg {
		settings, err := engine.GetSettings(ctx)
		return settingsLoadedMsg{settings: settings, err: err}
	}
}

func (m appModel) cmdSaveBlock(text string) tea.Cmd {
	ctx := m.ctx
	engine := m.engine
	position := int64(len(m.blocks))
	return func() tea.Msg {
		_, err := engine.SaveBlock(ctx, models.BlockChange{Text: &text, Position: &position})
		return savedMsg{err: err}
	}
}

func (m appModel) cmdSaveTask(text string) tea.Cmd {
	ctx := m.ctx
	engine := m.engine
	position := int64(len(m.tasks))
	return func() tea.Msg {
		_, err := engine.SaveTomorrowTask(ctx, models.TaskChange{Text: &text, Position: &position})
		return savedMsg{err: err}
	}
}

func (m appModel) cmdDeleteBlock(id string) tea.Cmd {
	ctx := m.ctx
	engine := m.engine
	return func() tea.Msg {
		return savedMsg{err: engine.DeleteBlock(ctx, id)}
	}
}

func (m appModel) cmdDeleteTask(id string) tea.Cmd {
	ctx := m.ctx
	engine := m.engine
	return func() tea.Msg {
		return savedMsg{err: engine.DeleteTomorrowTask(ctx, id)}
	}
}

func (m appModel) cmdSaveSettings(theme string, dayCutHour int) tea.Cmd {
	ctx := m.ctx
	engine := m.engine
	return func() tea.Msg {
		_, err := engine.SaveSettings(ctx, theme, dayCutHour)
		return savedMsg{err: err}
	}
}

func (m appModel) cmdSync() tea.Cmd {
	ctx := m.ctx
	engine := m.engine
	return func() tea.Msg {
		return syncDoneMsg{err: engine.Sync(ctx)}
	}
}

func cmdCopyToClipboard(text string) tea.Cmd {
	return func() tea.Msg {
		if err := clipboard.WriteAll(text); err != nil {
			return savedMsg{err: fmt.Errorf("copy to clipboard: %w", err)}
		}
		return copiedMsg{}
	}
}

func cmdClearStatus() tea.Cmd {
	return tea.Tick(3*time.Second, func(time.Time) tea.Msg {
		return clearStatusMsg{}
	})
}

func clampIndex(idx, length int) int {
	if idx >= length {
		idx = length - 1
	}
	if idx < 0 {
		idx = 0
	}
	return idx
}

func nextTheme(theme string) string {
	switch theme {
	case models.ThemeSystem:
		return models.ThemeLight
	case models.ThemeLight:
		return models.ThemeDark
	default:
		return models.ThemeSystem
	}
}
