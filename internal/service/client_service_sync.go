// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/MKhiriev/go-note-keeper/internal/adapter"
	"github.com/MKhiriev/go-note-keeper/internal/config"
	"github.com/MKhiriev/go-note-keeper/internal/logger"
	"github.com/MKhiriev/go-note-keeper/internal/store"
	"github.com/MKhiriev/go-note-keeper/internal/utils"
	"github.com/MKhiriev/go-note-keeper/internal/workers"
	"github.com/MKhiriev/go-note-keeper/models"
)

// Keys of the engine state entries in the local kv table.
const (
	kvAuthToken = "auth-token"
	kvClientID  = "client-id"
	kvSyncState = "sync-state"
	kvUser      = "user"
)

// ErrNotSignedIn is returned by operations that need a session.
var ErrNotSignedIn = errors.New("not signed in")

type syncEngine struct {
	storage store.LocalStorage
	server  adapter.ServerAdapter
	ids     *utils.UUIDGenerator
	cfg     config.ClientWorkers
	logger  *logger.Logger
	emitter *eventEmitter

	mu       sync.Mutex
	status   EngineStatus
	online   bool
	user     *models.User
	clientID string

	// syncGate serializes sync cycles. Sync coalesces when it is held;
	// SignIn and FullSync wait for it so the replica replacement never
	// interleaves with a running cycle.
	syncGate sync.Mutex

	debouncer *workers.Debouncer
	cancelBG  context.CancelFunc
}

func NewSyncEngine(storage store.LocalStorage, server adapter.ServerAdapter, cfg config.ClientWorkers, log *logger.Logger) SyncEngine {
	log.Debug().Msg("SyncEngine created")
	return &syncEngine{
		storage: storage,
		server:  server,
		ids:     utils.NewUUIDGenerator(),
		cfg:     cfg,
		logger:  log,
		emitter: newEventEmitter(),
		status:  StatusIdle,
		online:  true,
	}
}

// Initialize implements [SyncEngine]. A stored session is checked against
// the server before use: a rejected token is cleared so the UI starts signed
// out, a confirmed one refreshes the cached user and triggers one sync so
// the replica is fresh at startup.
func (e *syncEngine) Initialize(ctx context.Context) error {
	clientID, err := e.storage.GetValue(ctx, kvClientID)
	if errors.Is(err, store.ErrKeyNotFound) {
		clientID = e.ids.Generate()
		if err = e.storage.SetValue(ctx, kvClientID, clientID); err != nil {
			return fmt.Errorf("persist client id: %w", err)
		}
	} else if err != nil {
		return fmt.Errorf("load client id: %w", err)
	}

	token, err := e.storage.GetValue(ctx, kvAuthToken)
	if err != nil && !errors.Is(err, store.ErrKeyNotFound) {
		return fmt.Errorf("load auth token: %w", err)
	}
	e.server.SetToken(token)

	var user *models.User
	if raw, userErr := e.storage.GetValue(ctx, kvUser); userErr == nil {
		var u models.User
		if json.Unmarshal([]byte(raw), &u) == nil {
			user = &u
		}
	}

	verified := false
	if token != "" {
		me, meErr := e.server.Me(ctx)
		switch {
		case meErr == nil:
			user = &me
			if raw, marshalErr := json.Marshal(me); marshalErr == nil {
				if err = e.storage.SetValue(ctx, kvUser, string(raw)); err != nil {
					return fmt.Errorf("persist user: %w", err)
				}
			}
			verified = true
		case errors.Is(meErr, adapter.ErrUnauthorized):
			// revoked or expired session; start signed out
			e.server.SetToken("")
			user = nil
			for _, key := range []string{kvAuthToken, kvUser} {
				if delErr := e.storage.DeleteValue(ctx, key); delErr != nil {
					return fmt.Errorf("clear %s: %w", key, delErr)
				}
			}
		default:
			// server unreachable; keep the cached session until a sync settles it
			e.logger.Warn().Err(meErr).Str("func", "*syncEngine.Initialize").Msg("session check failed, keeping cached session")
		}
	}

	e.mu.Lock()
	e.clientID = clientID
	e.user = user
	e.mu.Unlock()

	e.startBackground()

	if verified {
		if syncErr := e.Sync(ctx); syncErr != nil {
			e.logger.Err(syncErr).Str("func", "*syncEngine.Initialize").Msg("startup sync failed")
		}
	}

	e.logger.Info().Str("func", "*syncEngine.Initialize").Str("client_id", clientID).Msg("engine initialized")
	return nil
}

// SignedInUser implements [SyncEngine].
func (e *syncEngine) SignedInUser() (models.User, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.user == nil {
		return models.User{}, false
	}
	return *e.user, true
}

// Status implements [SyncEngine].
func (e *syncEngine) Status() EngineStatus {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.status
}

// Subscribe implements [SyncEngine].
func (e *syncEngine) Subscribe(fn func(Event)) func() {
	return e.emitter.subscribe(fn)
}

// SetOnline implements [SyncEngine].
func (e *syncEngine) SetOnline(online bool) {
	e.mu.Lock()
	e.online = online
	e.mu.Unlock()

	if online {
		e.setStatus(StatusIdle)
		e.scheduleSync()
	} else {
		e.setStatus(StatusOffline)
	}
}

// Close implements [SyncEngine].
func (e *syncEngine) Close() error {
	if e.cancelBG != nil {
		e.cancelBG()
	}
	if e.debouncer != nil {
		e.debouncer.Stop()
	}
	return nil
}

// SignIn implements [SyncEngine]. Changes made while signed out are pushed
// before the full sync so they survive the replica replacement.
func (e *syncEngine) SignIn(ctx context.Context, idToken string) (models.User, error) {
	session, err := e.server.SignInGoogle(ctx, models.SignInRequest{IDToken: idToken})
	if err != nil {
		return models.User{}, err
	}

	if err = e.storage.SetValue(ctx, kvAuthToken, session.Token); err != nil {
		return models.User{}, fmt.Errorf("persist auth token: %w", err)
	}
	if raw, marshalErr := json.Marshal(session.User); marshalErr == nil {
		if err = e.storage.SetValue(ctx, kvUser, string(raw)); err != nil {
			return models.User{}, fmt.Errorf("persist user: %w", err)
		}
	}

	e.mu.Lock()
	user := session.User
	e.user = &user
	e.mu.Unlock()

	// hold the sync gate across push and replacement so a background cycle
	// cannot run against the replica while it is being swapped
	e.syncGate.Lock()
	defer e.syncGate.Unlock()

	if _, err = e.pushPending(ctx); err != nil {
		e.logger.Err(err).Str("func", "*syncEngine.SignIn").Msg("pushing pending changes failed")
		return session.User, err
	}
	if err = e.replaceReplica(ctx); err != nil {
		return session.User, err
	}

	return session.User, nil
}

// SignOut implements [SyncEngine]. Local data stays on disk.
func (e *syncEngine) SignOut(ctx context.Context) error {
	e.server.SetToken("")

	for _, key := range []string{kvAuthToken, kvUser, kvSyncState} {
		if err := e.storage.DeleteValue(ctx, key); err != nil {
			return fmt.Errorf("clear %s: %w", key, err)
		}
	}

	e.mu.Lock()
	e.user = nil
	e.mu.Unlock()

	e.setStatus(StatusIdle)
	return nil
}

// SaveBlock implements [SyncEngine].
func (e *syncEngine) SaveBlock(ctx context.Context, change models.BlockChange) (models.LocalBlock, error) {
	now := time.Now().UTC()

	var block models.LocalBlock
	if change.ID == "" {
		change.ID = e.ids.Generate()
	}

	existing, err := e.storage.GetBlock(ctx, change.ID)
	switch {
	case errors.Is(err, store.ErrRecordNotFound):
		block = models.LocalBlock{
			Block: models.Block{
				ID:        change.ID,
				CreatedAt: now,
				Version:   1,
			},
		}
	case err != nil:
		return models.LocalBlock{}, err
	default:
		block = existing
		block.Version++
	}

	if change.Text != nil {
		block.Text = *change.Text
	}
	if change.CreatedAt != nil {
		block.CreatedAt = change.CreatedAt.UTC()
	}
	if change.Position != nil {
		block.Position = *change.Position
	}
	if change.CalendarEventID != nil {
		block.CalendarEventID = change.CalendarEventID
	}

	block.UpdatedAt = now
	block.ClientID = e.currentClientID()
	block.SyncStatus = models.SyncStatusPending

	if err = e.storage.UpsertBlock(ctx, block); err != nil {
		return models.LocalBlock{}, err
	}

	e.emitter.emit(Event{Type: EventBlocksUpdated})
	e.scheduleSync()
	return block, nil
}

// DeleteBlock implements [SyncEngine]. Deletion is a tombstone so it
// propagates to the user's other devices.
func (e *syncEngine) DeleteBlock(ctx context.Context, id string) error {
	block, err := e.storage.GetBlock(ctx, id)
	if err != nil {
		return err
	}
	if block.Deleted() {
		return nil
	}

	now := time.Now().UTC()
	block.DeletedAt = &now
	block.UpdatedAt = now
	block.Version++
	block.ClientID = e.currentClientID()
	block.SyncStatus = models.SyncStatusPending

	if err = e.storage.UpsertBlock(ctx, block); err != nil {
		return err
	}

	e.emitter.emit(Event{Type: EventBlocksUpdated})
	e.scheduleSync()
	return nil
}

// GetBlocks implements [SyncEngine].
func (e *syncEngine) GetBlocks(ctx context.Context) ([]models.LocalBlock, error) {
	return e.storage.GetBlocks(ctx)
}

// SaveTomorrowTask implements [SyncEngine].
func (e *syncEngine) SaveTomorrowTask(ctx context.Context, change models.TaskChange) (models.LocalTask, error) {
	now := time.Now().UTC()

	var task models.LocalTask
	if change.ID == "" {
		change.ID = e.ids.Generate()
	}

	existing, err := e.storage.GetTask(ctx, change.ID)
	switch {
	case errors.Is(err, store.ErrRecordNotFound):
		task = models.LocalTask{
			TomorrowTask: models.TomorrowTask{
				ID:      change.ID,
				Version: 1,
			},
		}
	case err != nil:
		return models.LocalTask{}, err
	default:
		task = existing
		task.Version++
	}

	if change.Text != nil {
		task.Text = *change.Text
	}
	if change.Time != nil {
		task.Time = change.Time
	}
	if change.Position != nil {
		task.Position = *change.Position
	}

	task.UpdatedAt = now
	task.ClientID = e.currentClientID()
	task.SyncStatus = models.SyncStatusPending

	if err = e.storage.UpsertTask(ctx, task); err != nil {
		return models.LocalTask{}, err
	}

	e.emitter.emit(Event{Type: EventTomorrowTasksUpdated})
	e.scheduleSync()
	return task, nil
}

// DeleteTomorrowTask implements [SyncEngine].
func (e *syncEngine) DeleteTomorrowTask(ctx context.Context, id string) error {
	task, err := e.storage.GetTask(ctx, id)
	if err != nil {
		return err
	}
	if task.Deleted() {
		return nil
	}

	now := time.Now().UTC()
	task.DeletedAt = &now
	task.UpdatedAt = now
	task.Version++
	task.ClientID = e.currentClientID()
	task.SyncStatus = models.SyncStatusPending

	if err = e.storage.UpsertTask(ctx, task); err != nil {
		return err
	}

	e.emitter.emit(Event{Type: EventTomorrowTasksUpdated})
	e.scheduleSync()
	return nil
}

// GetTomorrowTasks implements [SyncEngine].
func (e *syncEngine) GetTomorrowTasks(ctx context.Context) ([]models.LocalTask, error) {
	return e.storage.GetTasks(ctx)
}

// SaveSettings implements [SyncEngine].
func (e *syncEngine) SaveSettings(ctx context.Context, theme string, dayCutHour int) (models.LocalSettings, error) {
	if !models.ValidTheme(theme) {
		return models.LocalSettings{}, fmt.Errorf("%w: unknown theme %q", ErrInvalidDataProvided, theme)
	}
	if dayCutHour < 0 || dayCutHour > 23 {
		return models.LocalSettings{}, fmt.Errorf("%w: dayCutHour must be between 0 and 23", ErrInvalidDataProvided)
	}

	settings := models.LocalSettings{
		Settings: models.Settings{
			Theme:      theme,
			DayCutHour: dayCutHour,
			UpdatedAt:  time.Now().UTC(),
		},
		SyncStatus: models.SyncStatusPending,
	}

	if err := e.storage.UpsertSettings(ctx, settings); err != nil {
		return models.LocalSettings{}, err
	}

	e.emitter.emit(Event{Type: EventSettingsUpdated})
	e.scheduleSync()
	return settings, nil
}

// GetSettings implements [SyncEngine]. Before any save or pull the defaults
// are returned.
func (e *syncEngine) GetSettings(ctx context.Context) (models.LocalSettings, error) {
	settings, err := e.storage.GetSettings(ctx)
	if errors.Is(err, store.ErrSettingsNotFound) {
		return models.LocalSettings{
			Settings: models.Settings{
				Theme:      models.ThemeSystem,
				DayCutHour: 4,
			},
			SyncStatus: models.SyncStatusSynced,
		}, nil
	}

	return settings, err
}

// ImportPlainText implements [SyncEngine]. Each non-blank line becomes one
// new pending block; the whole batch shares a createdAt and is ordered by
// position.
func (e *syncEngine) ImportPlainText(ctx context.Context, text string) ([]models.LocalBlock, error) {
	now := time.Now().UTC()
	clientID := e.currentClientID()

	created := []models.LocalBlock{}
	position := int64(0)
	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimRight(line, "\r")
		if strings.TrimSpace(line) == "" {
			continue
		}

		block := models.LocalBlock{
			Block: models.Block{
				ID:        e.ids.Generate(),
				Text:      line,
				CreatedAt: now,
				Position:  position,
				Version:   1,
				UpdatedAt: now,
				ClientID:  clientID,
			},
			SyncStatus: models.SyncStatusPending,
		}
		if err := e.storage.UpsertBlock(ctx, block); err != nil {
			return created, err
		}

		created = append(created, block)
		position++
	}

	if len(created) > 0 {
		e.emitter.emit(Event{Type: EventBlocksUpdated})
		e.scheduleSync()
	}

	return created, nil
}

// ResolveConflict implements [SyncEngine]. The data merge already happened
// server-side via the keep-both rule and reached the replica through pull;
// this only records which copy the user kept.
func (e *syncEngine) ResolveConflict(ctx context.Context, conflictID, resolution string) error {
	if !models.ValidResolution(resolution) {
		return fmt.Errorf("%w: unknown resolution %q", ErrInvalidDataProvided, resolution)
	}
	if e.server.Token() == "" {
		return ErrNotSignedIn
	}

	return e.server.ResolveConflict(ctx, models.ResolveConflictRequest{
		ConflictID: conflictID,
		Resolution: resolution,
	})
}

// Sync implements [SyncEngine]. Push happens before pull so the server can
// report conflicts against the freshest state. Concurrent calls coalesce.
func (e *syncEngine) Sync(ctx context.Context) error {
	e.mu.Lock()
	ready := e.online && e.server.Token() != ""
	e.mu.Unlock()
	if !ready {
		return nil
	}

	if !e.syncGate.TryLock() {
		// a cycle is already running; its pull covers this request
		return nil
	}
	defer e.syncGate.Unlock()

	e.setStatus(StatusSyncing)

	changes, err := e.pushPending(ctx)
	if err != nil {
		return e.failSync(err)
	}

	pulled, err := e.pullChanges(ctx)
	if err != nil {
		e.emitData(changes)
		return e.failSync(err)
	}

	changes.merge(pulled)
	e.emitData(changes)
	e.setStatus(StatusIdle)
	return nil
}

// FullSync implements [SyncEngine].
func (e *syncEngine) FullSync(ctx context.Context) error {
	if e.server.Token() == "" {
		return ErrNotSignedIn
	}

	e.syncGate.Lock()
	defer e.syncGate.Unlock()

	return e.replaceReplica(ctx)
}

// replaceReplica downloads the complete server state and swaps the local
// tables for it. Callers must hold the sync gate.
func (e *syncEngine) replaceReplica(ctx context.Context) error {
	e.setStatus(StatusSyncing)

	resp, err := e.server.Full(ctx)
	if err != nil {
		return e.failSync(err)
	}

	blocks := make([]models.LocalBlock, 0, len(resp.Blocks))
	for _, b := range resp.Blocks {
		blocks = append(blocks, models.LocalBlock{
			Block:         b,
			SyncStatus:    models.SyncStatusSynced,
			ServerVersion: b.Version,
		})
	}
	if err = e.storage.ReplaceBlocks(ctx, blocks); err != nil {
		return e.failSync(err)
	}

	tasks := make([]models.LocalTask, 0, len(resp.TomorrowTasks))
	for _, t := range resp.TomorrowTasks {
		tasks = append(tasks, models.LocalTask{
			TomorrowTask:  t,
			SyncStatus:    models.SyncStatusSynced,
			ServerVersion: t.Version,
		})
	}
	if err = e.storage.ReplaceTasks(ctx, tasks); err != nil {
		return e.failSync(err)
	}

	if resp.Settings != nil {
		err = e.storage.UpsertSettings(ctx, models.LocalSettings{
			Settings:   *resp.Settings,
			SyncStatus: models.SyncStatusSynced,
		})
		if err != nil {
			return e.failSync(err)
		}
	}

	if err = e.saveSyncState(ctx, models.SyncState{LastSyncedAt: &resp.SyncedAt}); err != nil {
		return e.failSync(err)
	}

	e.emitData(changedSet{blocks: true, tasks: true, settings: resp.Settings != nil})
	e.setStatus(StatusIdle)
	return nil
}

// changedSet accumulates which collections changed during a sync cycle so
// the matching events can be emitted between the two status changes.
type changedSet struct {
	blocks    bool
	tasks     bool
	settings  bool
	conflicts []models.ConflictReport
}

func (c *changedSet) merge(other changedSet) {
	c.blocks = c.blocks || other.blocks
	c.tasks = c.tasks || other.tasks
	c.settings = c.settings || other.settings
	c.conflicts = append(c.conflicts, other.conflicts...)
}

// pushPending uploads all pending records in one batch. A record is marked
// synced only if its version is still the one that was pushed, so an edit
// made while the request was in flight stays pending.
func (e *syncEngine) pushPending(ctx context.Context) (changedSet, error) {
	var cs changedSet

	pendingBlocks, err := e.storage.GetPendingBlocks(ctx)
	if err != nil {
		return cs, err
	}
	pendingTasks, err := e.storage.GetPendingTasks(ctx)
	if err != nil {
		return cs, err
	}

	var pendingSettings *models.Settings
	settings, err := e.storage.GetSettings(ctx)
	if err != nil && !errors.Is(err, store.ErrSettingsNotFound) {
		return cs, err
	}
	if err == nil && settings.SyncStatus == models.SyncStatusPending {
		pendingSettings = &settings.Settings
	}

	if len(pendingBlocks) == 0 && len(pendingTasks) == 0 && pendingSettings == nil {
		return cs, nil
	}

	req := models.PushRequest{
		ClientID: e.currentClientID(),
		Settings: pendingSettings,
	}
	blockVersions := make(map[string]int64, len(pendingBlocks))
	for _, b := range pendingBlocks {
		blockVersions[b.ID] = b.Version
		req.Blocks = append(req.Blocks, b.Block)
	}
	taskVersions := make(map[string]int64, len(pendingTasks))
	for _, t := range pendingTasks {
		taskVersions[t.ID] = t.Version
		req.TomorrowTasks = append(req.TomorrowTasks, t.TomorrowTask)
	}

	resp, err := e.server.Push(ctx, req)
	if err != nil {
		return cs, err
	}

	for _, id := range resp.Applied.Blocks {
		block, getErr := e.storage.GetBlock(ctx, id)
		if getErr != nil || block.Version != blockVersions[id] {
			continue
		}
		block.SyncStatus = models.SyncStatusSynced
		block.ServerVersion = block.Version + 1
		if err = e.storage.UpsertBlock(ctx, block); err != nil {
			return cs, err
		}
		cs.blocks = true
	}

	for _, id := range resp.Applied.TomorrowTasks {
		task, getErr := e.storage.GetTask(ctx, id)
		if getErr != nil || task.Version != taskVersions[id] {
			continue
		}
		task.SyncStatus = models.SyncStatusSynced
		task.ServerVersion = task.Version + 1
		if err = e.storage.UpsertTask(ctx, task); err != nil {
			return cs, err
		}
		cs.tasks = true
	}

	if resp.Applied.Settings && pendingSettings != nil {
		settings.SyncStatus = models.SyncStatusSynced
		if err = e.storage.UpsertSettings(ctx, settings); err != nil {
			return cs, err
		}
		cs.settings = true
	}

	for _, conflict := range resp.Conflicts {
		cs.conflicts = append(cs.conflicts, conflict)
		if markErr := e.markConflict(ctx, conflict); markErr != nil {
			e.logger.Err(markErr).Str("func", "*syncEngine.pushPending").Msg("marking conflict failed")
		}
	}

	return cs, nil
}

// markConflict flags the local record so the next pull overwrites it with
// the server's winner; the rejected content survives server-side as the
// keep-both copy.
func (e *syncEngine) markConflict(ctx context.Context, conflict models.ConflictReport) error {
	switch conflict.Type {
	case models.RecordTypeBlock:
		block, err := e.storage.GetBlock(ctx, conflict.ID)
		if err != nil {
			return err
		}
		block.SyncStatus = models.SyncStatusConflict
		block.ServerVersion = conflict.ServerVersion
		return e.storage.UpsertBlock(ctx, block)

	case models.RecordTypeTomorrowTask:
		task, err := e.storage.GetTask(ctx, conflict.ID)
		if err != nil {
			return err
		}
		task.SyncStatus = models.SyncStatusConflict
		task.ServerVersion = conflict.ServerVersion
		return e.storage.UpsertTask(ctx, task)
	}

	return nil
}

// pullChanges downloads the delta since the last cursor and merges it into
// the replica. Pending local records always win locally; their fate is
// decided by the server on the next push. Records flagged conflict adopt the
// server's winner.
func (e *syncEngine) pullChanges(ctx context.Context) (changedSet, error) {
	var cs changedSet

	state, err := e.loadSyncState(ctx)
	if err != nil {
		return cs, err
	}

	resp, err := e.server.Pull(ctx, state.LastSyncedAt)
	if err != nil {
		return cs, err
	}

	for _, incoming := range resp.Blocks {
		changed, mergeErr := e.mergeBlock(ctx, incoming)
		if mergeErr != nil {
			return cs, mergeErr
		}
		cs.blocks = cs.blocks || changed
	}

	for _, incoming := range resp.TomorrowTasks {
		changed, mergeErr := e.mergeTask(ctx, incoming)
		if mergeErr != nil {
			return cs, mergeErr
		}
		cs.tasks = cs.tasks || changed
	}

	if resp.Settings != nil {
		changed, mergeErr := e.mergeSettings(ctx, *resp.Settings)
		if mergeErr != nil {
			return cs, mergeErr
		}
		cs.settings = changed
	}

	cs.conflicts = append(cs.conflicts, resp.Conflicts...)

	if err = e.saveSyncState(ctx, models.SyncState{LastSyncedAt: &resp.SyncedAt}); err != nil {
		return cs, err
	}

	return cs, nil
}

func (e *syncEngine) mergeBlock(ctx context.Context, incoming models.Block) (bool, error) {
	local, err := e.storage.GetBlock(ctx, incoming.ID)
	if errors.Is(err, store.ErrRecordNotFound) {
		return true, e.storage.UpsertBlock(ctx, models.LocalBlock{
			Block:         incoming,
			SyncStatus:    models.SyncStatusSynced,
			ServerVersion: incoming.Version,
		})
	}
	if err != nil {
		return false, err
	}

	if local.SyncStatus == models.SyncStatusPending {
		// unsent local change wins locally; only the observed server version
		// is recorded. Conflict flagging happens from the push response (see
		// markConflict), never here: a pull can echo the record's own
		// just-accepted write, and flagging against that would strand the
		// edit, since flagged records are excluded from the next push.
		if incoming.Version > local.ServerVersion {
			local.ServerVersion = incoming.Version
			return false, e.storage.UpsertBlock(ctx, local)
		}
		return false, nil
	}

	if incoming.Version >= local.Version {
		return true, e.storage.UpsertBlock(ctx, models.LocalBlock{
			Block:         incoming,
			SyncStatus:    models.SyncStatusSynced,
			ServerVersion: incoming.Version,
		})
	}

	return false, nil
}

func (e *syncEngine) mergeTask(ctx context.Context, incoming models.TomorrowTask) (bool, error) {
	local, err := e.storage.GetTask(ctx, incoming.ID)
	if errors.Is(err, store.ErrRecordNotFound) {
		return true, e.storage.UpsertTask(ctx, models.LocalTask{
			TomorrowTask:  incoming,
			SyncStatus:    models.SyncStatusSynced,
			ServerVersion: incoming.Version,
		})
	}
	if err != nil {
		return false, err
	}

	if local.SyncStatus == models.SyncStatusPending {
		if incoming.Version > local.ServerVersion {
			local.ServerVersion = incoming.Version
			return false, e.storage.UpsertTask(ctx, local)
		}
		return false, nil
	}

	if incoming.Version >= local.Version {
		return true, e.storage.UpsertTask(ctx, models.LocalTask{
			TomorrowTask:  incoming,
			SyncStatus:    models.SyncStatusSynced,
			ServerVersion: incoming.Version,
		})
	}

	return false, nil
}

func (e *syncEngine) mergeSettings(ctx context.Context, incoming models.Settings) (bool, error) {
	local, err := e.storage.GetSettings(ctx)
	if err != nil && !errors.Is(err, store.ErrSettingsNotFound) {
		return false, err
	}

	// last write wins by updatedAt; an unsent local edit that is newer keeps
	// priority until the next push
	if err == nil && local.SyncStatus == models.SyncStatusPending && !incoming.UpdatedAt.After(local.UpdatedAt) {
		return false, nil
	}
	if err == nil && !incoming.UpdatedAt.After(local.UpdatedAt) && local.SyncStatus == models.SyncStatusSynced {
		return false, nil
	}

	return true, e.storage.UpsertSettings(ctx, models.LocalSettings{
		Settings:   incoming,
		SyncStatus: models.SyncStatusSynced,
	})
}

func (e *syncEngine) emitData(cs changedSet) {
	if cs.blocks {
		e.emitter.emit(Event{Type: EventBlocksUpdated})
	}
	if cs.tasks {
		e.emitter.emit(Event{Type: EventTomorrowTasksUpdated})
	}
	if cs.settings {
		e.emitter.emit(Event{Type: EventSettingsUpdated})
	}
	for _, conflict := range cs.conflicts {
		e.emitter.emit(Event{Type: EventConflictDetected, Payload: conflict})
	}
}

// failSync maps a sync error to the matching engine status. Losing the
// server is the normal offline condition, not an error; an expired session
// clears the stored token so the UI can prompt for sign-in.
func (e *syncEngine) failSync(err error) error {
	switch {
	case errors.Is(err, adapter.ErrServerUnavailable):
		e.setStatus(StatusOffline)
	case errors.Is(err, adapter.ErrUnauthorized):
		e.server.SetToken("")
		if delErr := e.storage.DeleteValue(context.Background(), kvAuthToken); delErr != nil {
			e.logger.Err(delErr).Str("func", "*syncEngine.failSync").Msg("clearing stored token failed")
		}
		e.mu.Lock()
		e.user = nil
		e.mu.Unlock()
		e.emitter.emit(Event{Type: EventError, Payload: err})
		e.setStatus(StatusError)
	default:
		e.emitter.emit(Event{Type: EventError, Payload: err})
		e.setStatus(StatusError)
	}

	return err
}

func (e *syncEngine) setStatus(status EngineStatus) {
	e.mu.Lock()
	if e.status == status {
		e.mu.Unlock()
		return
	}
	e.status = status
	e.mu.Unlock()

	e.emitter.emit(Event{Type: EventStatusChanged, Payload: status})
}

func (e *syncEngine) currentClientID() string {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.clientID
}

func (e *syncEngine) loadSyncState(ctx context.Context) (models.SyncState, error) {
	raw, err := e.storage.GetValue(ctx, kvSyncState)
	if errors.Is(err, store.ErrKeyNotFound) {
		return models.SyncState{}, nil
	}
	if err != nil {
		return models.SyncState{}, err
	}

	var state models.SyncState
	if err = json.Unmarshal([]byte(raw), &state); err != nil {
		// corrupted cursor falls back to a full delta
		e.logger.Warn().Str("func", "*syncEngine.loadSyncState").Msg("unreadable sync state, resetting cursor")
		return models.SyncState{}, nil
	}

	return state, nil
}

func (e *syncEngine) saveSyncState(ctx context.Context, state models.SyncState) error {
	raw, err := json.Marshal(state)
	if err != nil {
		return fmt.Errorf("marshal sync state: %w", err)
	}
	return e.storage.SetValue(ctx, kvSyncState, string(raw))
}
