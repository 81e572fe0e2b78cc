package service

import (
	"context"
	"sort"
	"sync"
	"testing"
	"time"

	"github.com/MKhiriev/go-note-keeper/internal/adapter"
	"github.com/MKhiriev/go-note-keeper/internal/config"
	"github.com/MKhiriev/go-note-keeper/internal/logger"
	"github.com/MKhiriev/go-note-keeper/internal/mock"
	"github.com/MKhiriev/go-note-keeper/internal/store"
	"github.com/MKhiriev/go-note-keeper/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	gomock "go.uber.org/mock/gomock"
)

// fakeLocalStorage is an in-memory replica. A stateful fake is used instead
// of gomock here because the engine reads back what it writes within a
// single sync cycle.
type fakeLocalStorage struct {
	mu       sync.Mutex
	blocks   map[string]models.LocalBlock
	tasks    map[string]models.LocalTask
	settings *models.LocalSettings
	kv       map[string]string
}

func newFakeLocalStorage() *fakeLocalStorage {
	return &fakeLocalStorage{
		blocks: make(map[string]models.LocalBlock),
		tasks:  make(map[string]models.LocalTask),
		kv:     make(map[string]string),
	}
}

func (f *fakeLocalStorage) GetBlocks(context.Context) ([]models.LocalBlock, error) {
	return f.listBlocks(func(b models.LocalBlock) bool { return !b.Deleted() }), nil
}

func (f *fakeLocalStorage) GetAllBlocks(context.Context) ([]models.LocalBlock, error) {
	return f.listBlocks(func(models.LocalBlock) bool { return true }), nil
}

func (f *fakeLocalStorage) GetPendingBlocks(context.Context) ([]models.LocalBlock, error) {
	return f.listBlocks(func(b models.LocalBlock) bool { return b.SyncStatus == models.SyncStatusPending }), nil
}

func (f *fakeLocalStorage) listBlocks(keep func(models.LocalBlock) bool) []models.LocalBlock {
	f.mu.Lock()
	defer f.mu.Unlock()

	out := []models.LocalBlock{}
	for _, b := range f.blocks {
		if keep(b) {
			out = append(out, b)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.Before(out[j].CreatedAt)
		}
		return out[i].Position < out[j].Position
	})
	return out
}

func (f *fakeLocalStorage) GetBlock(_ context.Context, id string) (models.LocalBlock, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	block, ok := f.blocks[id]
	if !ok {
		return models.LocalBlock{}, store.ErrRecordNotFound
	}
	return block, nil
}

func (f *fakeLocalStorage) UpsertBlock(_ context.Context, block models.LocalBlock) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.blocks[block.ID] = block
	return nil
}

func (f *fakeLocalStorage) ReplaceBlocks(_ context.Context, blocks []models.LocalBlock) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.blocks = make(map[string]models.LocalBlock, len(blocks))
	for _, b := range blocks {
		f.blocks[b.ID] = b
	}
	return nil
}

func (f *fakeLocalStorage) GetTasks(context.Context) ([]models.LocalTask, error) {
	return f.listTasks(func(t models.LocalTask) bool { return !t.Deleted() }), nil
}

func (f *fakeLocalStorage) GetAllTasks(context.Context) ([]models.LocalTask, error) {
	return f.listTasks(func(models.LocalTask) bool { return true }), nil
}

func (f *fakeLocalStorage) GetPendingTasks(context.Context) ([]models.LocalTask, error) {
	return f.listTasks(func(t models.LocalTask) bool { return t.SyncStatus == models.SyncStatusPending }), nil
}

func (f *fakeLocalStorage) listTasks(keep func(models.LocalTask) bool) []models.LocalTask {
	f.mu.Lock()
	defer f.mu.Unlock()

	out := []models.LocalTask{}
	for _, t := range f.tasks {
		if keep(t) {
			out = append(out, t)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Position < out[j].Position })
	return out
}

func (f *fakeLocalStorage) GetTask(_ context.Context, id string) (models.LocalTask, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	task, ok := f.tasks[id]
	if !ok {
		return models.LocalTask{}, store.ErrRecordNotFound
	}
	return task, nil
}

func (f *fakeLocalStorage) UpsertTask(_ context.Context, task models.LocalTask) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.tasks[task.ID] = task
	return nil
}

func (f *fakeLocalStorage) ReplaceTasks(_ context.Context, tasks []models.LocalTask) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.tasks = make(map[string]models.LocalTask, len(tasks))
	for _, t := range tasks {
		f.tasks[t.ID] = t
	}
	return nil
}

func (f *fakeLocalStorage) GetSettings(context.Context) (models.LocalSettings, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.settings == nil {
		return models.LocalSettings{}, store.ErrSettingsNotFound
	}
	return *f.settings, nil
}

func (f *fakeLocalStorage) UpsertSettings(_ context.Context, settings models.LocalSettings) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.settings = &settings
	return nil
}

func (f *fakeLocalStorage) GetValue(_ context.Context, key string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	value, ok := f.kv[key]
	if !ok {
		return "", store.ErrKeyNotFound
	}
	return value, nil
}

func (f *fakeLocalStorage) SetValue(_ context.Context, key, value string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.kv[key] = value
	return nil
}

func (f *fakeLocalStorage) DeleteValue(_ context.Context, key string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.kv, key)
	return nil
}

// Scheduling intervals long enough that the background workers never fire
// during a test.
var testWorkersCfg = config.ClientWorkers{
	SyncInterval:  time.Hour,
	DebounceDelay: time.Hour,
}

func newTestEngine(t *testing.T) (SyncEngine, *fakeLocalStorage, *mock.MockServerAdapter) {
	t.Helper()

	ctrl := gomock.NewController(t)
	server := mock.NewMockServerAdapter(ctrl)
	storage := newFakeLocalStorage()
	storage.kv[kvAuthToken] = "test-token"

	server.EXPECT().SetToken(gomock.Any()).AnyTimes()
	server.EXPECT().Token().Return("test-token").AnyTimes()
	// the startup session check finds the server unreachable, so Initialize
	// keeps the stored token and runs no startup sync; each test then sets
	// its own Push/Pull expectations
	server.EXPECT().Me(gomock.Any()).Return(models.User{}, adapter.ErrServerUnavailable).AnyTimes()

	engine := NewSyncEngine(storage, server, testWorkersCfg, logger.Nop())
	require.NoError(t, engine.Initialize(context.Background()))
	t.Cleanup(func() { engine.Close() })

	return engine, storage, server
}

func collectEvents(engine SyncEngine) *[]Event {
	events := &[]Event{}
	engine.Subscribe(func(e Event) { *events = append(*events, e) })
	return events
}

func eventTypes(events []Event) []EventType {
	types := make([]EventType, 0, len(events))
	for _, e := range events {
		types = append(types, e.Type)
	}
	return types
}

func TestEngine_Initialize_VerifiesSessionAndSyncs(t *testing.T) {
	ctrl := gomock.NewController(t)
	server := mock.NewMockServerAdapter(ctrl)
	storage := newFakeLocalStorage()
	storage.kv[kvAuthToken] = "stored-token"

	me := models.User{UserID: 7, Email: "ann@example.com", Name: "Ann"}
	server.EXPECT().SetToken("stored-token")
	server.EXPECT().Token().Return("stored-token").AnyTimes()
	server.EXPECT().Me(gomock.Any()).Return(me, nil)
	server.EXPECT().Pull(gomock.Any(), gomock.Nil()).
		Return(models.PullResponse{SyncedAt: time.Now().UTC()}, nil)

	engine := NewSyncEngine(storage, server, testWorkersCfg, logger.Nop())
	require.NoError(t, engine.Initialize(context.Background()))
	t.Cleanup(func() { engine.Close() })

	user, signedIn := engine.SignedInUser()
	require.True(t, signedIn)
	assert.Equal(t, me, user, "the verified account replaces the cached one")
	assert.Contains(t, storage.kv, kvUser)
	assert.Contains(t, storage.kv, kvSyncState, "the startup sync ran and saved its cursor")
}

func TestEngine_Initialize_RevokedTokenClearsSession(t *testing.T) {
	ctrl := gomock.NewController(t)
	server := mock.NewMockServerAdapter(ctrl)
	storage := newFakeLocalStorage()
	storage.kv[kvAuthToken] = "revoked-token"
	storage.kv[kvUser] = `{"userId":7,"email":"ann@example.com"}`

	gomock.InOrder(
		server.EXPECT().SetToken("revoked-token"),
		server.EXPECT().Me(gomock.Any()).Return(models.User{}, adapter.ErrUnauthorized),
		server.EXPECT().SetToken(""),
	)

	engine := NewSyncEngine(storage, server, testWorkersCfg, logger.Nop())
	require.NoError(t, engine.Initialize(context.Background()))
	t.Cleanup(func() { engine.Close() })

	_, signedIn := engine.SignedInUser()
	assert.False(t, signedIn, "a revoked session must not show its cached user")
	assert.NotContains(t, storage.kv, kvAuthToken)
	assert.NotContains(t, storage.kv, kvUser)
}

func TestEngine_Initialize_UnreachableServerKeepsCachedSession(t *testing.T) {
	ctrl := gomock.NewController(t)
	server := mock.NewMockServerAdapter(ctrl)
	storage := newFakeLocalStorage()
	storage.kv[kvAuthToken] = "cached-token"
	storage.kv[kvUser] = `{"userId":7,"email":"ann@example.com"}`

	server.EXPECT().SetToken("cached-token")
	server.EXPECT().Me(gomock.Any()).Return(models.User{}, adapter.ErrServerUnavailable)

	engine := NewSyncEngine(storage, server, testWorkersCfg, logger.Nop())
	require.NoError(t, engine.Initialize(context.Background()))
	t.Cleanup(func() { engine.Close() })

	user, signedIn := engine.SignedInUser()
	require.True(t, signedIn, "an offline start keeps the cached session")
	assert.Equal(t, int64(7), user.UserID)
	assert.Contains(t, storage.kv, kvAuthToken)
}

func TestEngine_SaveBlock(t *testing.T) {
	engine, storage, _ := newTestEngine(t)
	ctx := context.Background()

	text := "first note"
	block, err := engine.SaveBlock(ctx, models.BlockChange{Text: &text})
	require.NoError(t, err)

	assert.NotEmpty(t, block.ID)
	assert.Equal(t, "first note", block.Text)
	assert.Equal(t, int64(1), block.Version)
	assert.Equal(t, models.SyncStatusPending, block.SyncStatus)
	assert.NotEmpty(t, block.ClientID)

	// editing bumps the version and stays pending
	edited := "first note, edited"
	block, err = engine.SaveBlock(ctx, models.BlockChange{ID: block.ID, Text: &edited})
	require.NoError(t, err)
	assert.Equal(t, int64(2), block.Version)
	assert.Equal(t, "first note, edited", block.Text)

	stored, err := storage.GetBlock(ctx, block.ID)
	require.NoError(t, err)
	assert.Equal(t, block, stored)
}

func TestEngine_DeleteBlock_Tombstones(t *testing.T) {
	engine, storage, _ := newTestEngine(t)
	ctx := context.Background()

	text := "soon gone"
	block, err := engine.SaveBlock(ctx, models.BlockChange{Text: &text})
	require.NoError(t, err)

	require.NoError(t, engine.DeleteBlock(ctx, block.ID))

	visible, err := engine.GetBlocks(ctx)
	require.NoError(t, err)
	assert.Empty(t, visible, "tombstoned blocks are hidden from reads")

	stored, err := storage.GetBlock(ctx, block.ID)
	require.NoError(t, err)
	assert.NotNil(t, stored.DeletedAt)
	assert.Equal(t, int64(2), stored.Version)
	assert.Equal(t, models.SyncStatusPending, stored.SyncStatus, "the tombstone still has to reach the server")
}

func TestEngine_Sync_MarksPushedRecordsSynced(t *testing.T) {
	engine, storage, server := newTestEngine(t)
	ctx := context.Background()

	text := "note"
	block, err := engine.SaveBlock(ctx, models.BlockChange{Text: &text})
	require.NoError(t, err)

	events := collectEvents(engine)

	server.EXPECT().Push(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, req models.PushRequest) (models.PushResponse, error) {
			require.Len(t, req.Blocks, 1)
			assert.Equal(t, block.ID, req.Blocks[0].ID)
			assert.NotEmpty(t, req.ClientID)
			return models.PushResponse{
				Success:   true,
				Applied:   models.Applied{Blocks: []string{block.ID}, TomorrowTasks: []string{}},
				Conflicts: []models.ConflictReport{},
			}, nil
		})
	server.EXPECT().Pull(gomock.Any(), gomock.Nil()).
		Return(models.PullResponse{SyncedAt: time.Now().UTC()}, nil)

	require.NoError(t, engine.Sync(ctx))

	stored, err := storage.GetBlock(ctx, block.ID)
	require.NoError(t, err)
	assert.Equal(t, models.SyncStatusSynced, stored.SyncStatus)
	assert.Equal(t, int64(2), stored.ServerVersion, "server bumps the version on acceptance")

	assert.Equal(t,
		[]EventType{EventStatusChanged, EventBlocksUpdated, EventStatusChanged},
		eventTypes(*events),
		"status change, then data, then status change")
	assert.Equal(t, StatusSyncing, (*events)[0].Payload)
	assert.Equal(t, StatusIdle, (*events)[2].Payload)
}

func TestEngine_Sync_SecondCallUsesCursor(t *testing.T) {
	engine, _, server := newTestEngine(t)
	ctx := context.Background()

	syncedAt := time.Now().UTC().Truncate(time.Millisecond)

	server.EXPECT().Pull(gomock.Any(), gomock.Nil()).
		Return(models.PullResponse{SyncedAt: syncedAt}, nil)
	require.NoError(t, engine.Sync(ctx))

	server.EXPECT().Pull(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, since *time.Time) (models.PullResponse, error) {
			require.NotNil(t, since)
			assert.True(t, since.Equal(syncedAt))
			return models.PullResponse{SyncedAt: time.Now().UTC()}, nil
		})
	require.NoError(t, engine.Sync(ctx))
}

func TestEngine_Sync_EditDuringPushStaysPending(t *testing.T) {
	engine, storage, server := newTestEngine(t)
	ctx := context.Background()

	text := "v1"
	block, err := engine.SaveBlock(ctx, models.BlockChange{Text: &text})
	require.NoError(t, err)

	server.EXPECT().Push(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, req models.PushRequest) (models.PushResponse, error) {
			// user keeps typing while the request is in flight
			edited := "v2"
			_, saveErr := engine.SaveBlock(ctx, models.BlockChange{ID: block.ID, Text: &edited})
			require.NoError(t, saveErr)
			return models.PushResponse{
				Success:   true,
				Applied:   models.Applied{Blocks: []string{block.ID}, TomorrowTasks: []string{}},
				Conflicts: []models.ConflictReport{},
			}, nil
		})
	server.EXPECT().Pull(gomock.Any(), gomock.Any()).
		Return(models.PullResponse{SyncedAt: time.Now().UTC()}, nil)

	require.NoError(t, engine.Sync(ctx))

	stored, err := storage.GetBlock(ctx, block.ID)
	require.NoError(t, err)
	assert.Equal(t, models.SyncStatusPending, stored.SyncStatus, "the newer edit must not be marked synced")
	assert.Equal(t, "v2", stored.Text)
}

func TestEngine_Sync_ConflictAdoptsServerWinner(t *testing.T) {
	engine, storage, server := newTestEngine(t)
	ctx := context.Background()

	text := "mine"
	block, err := engine.SaveBlock(ctx, models.BlockChange{Text: &text})
	require.NoError(t, err)

	events := collectEvents(engine)

	now := time.Now().UTC()
	copyID := block.ID + "-conflict-1"
	winner := models.Block{
		ID: block.ID, Text: "theirs", CreatedAt: block.CreatedAt,
		Position: 0, Version: 3, UpdatedAt: now, ClientID: "other-client",
	}
	keptCopy := models.Block{
		ID: copyID, Text: "[Conflict] mine", CreatedAt: block.CreatedAt,
		Position: 1, Version: 1, UpdatedAt: now, ClientID: block.ClientID,
	}

	server.EXPECT().Push(gomock.Any(), gomock.Any()).
		Return(models.PushResponse{
			Success: true,
			Applied: models.Applied{Blocks: []string{}, TomorrowTasks: []string{}},
			Conflicts: []models.ConflictReport{{
				Type: models.RecordTypeBlock, ID: block.ID,
				LocalVersion: block.Version, ServerVersion: 3,
			}},
		}, nil)
	server.EXPECT().Pull(gomock.Any(), gomock.Any()).
		Return(models.PullResponse{
			Blocks:   []models.Block{winner, keptCopy},
			SyncedAt: now,
		}, nil)

	require.NoError(t, engine.Sync(ctx))

	stored, err := storage.GetBlock(ctx, block.ID)
	require.NoError(t, err)
	assert.Equal(t, "theirs", stored.Text, "conflicted record adopts the server winner")
	assert.Equal(t, models.SyncStatusSynced, stored.SyncStatus)

	kept, err := storage.GetBlock(ctx, copyID)
	require.NoError(t, err)
	assert.Equal(t, "[Conflict] mine", kept.Text, "the rejected write survives as the keep-both copy")

	types := eventTypes(*events)
	assert.Contains(t, types, EventConflictDetected)
	assert.Equal(t, EventStatusChanged, types[0])
	assert.Equal(t, EventStatusChanged, types[len(types)-1])
}

func TestEngine_Pull_PendingLocalWins(t *testing.T) {
	engine, storage, server := newTestEngine(t)
	ctx := context.Background()

	text := "unsent local edit"
	block, err := engine.SaveBlock(ctx, models.BlockChange{Text: &text})
	require.NoError(t, err)

	incoming := models.Block{
		ID: block.ID, Text: "older server copy", CreatedAt: block.CreatedAt,
		Version: 1, UpdatedAt: time.Now().UTC(),
	}

	server.EXPECT().Push(gomock.Any(), gomock.Any()).
		Return(models.PushResponse{
			Success: true,
			Applied: models.Applied{
				Blocks: []string{}, TomorrowTasks: []string{},
			},
			Conflicts: []models.ConflictReport{},
		}, nil)
	server.EXPECT().Pull(gomock.Any(), gomock.Any()).
		Return(models.PullResponse{Blocks: []models.Block{incoming}, SyncedAt: time.Now().UTC()}, nil)

	require.NoError(t, engine.Sync(ctx))

	stored, err := storage.GetBlock(ctx, block.ID)
	require.NoError(t, err)
	assert.Equal(t, "unsent local edit", stored.Text)
	assert.Equal(t, models.SyncStatusPending, stored.SyncStatus)
}

func TestEngine_Settings_LastWriteWins(t *testing.T) {
	engine, storage, server := newTestEngine(t)
	ctx := context.Background()

	_, err := engine.SaveSettings(ctx, models.ThemeDark, 5)
	require.NoError(t, err)

	older := models.Settings{Theme: models.ThemeLight, DayCutHour: 4, UpdatedAt: time.Now().Add(-time.Hour).UTC()}

	server.EXPECT().Push(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, req models.PushRequest) (models.PushResponse, error) {
			require.NotNil(t, req.Settings)
			assert.Equal(t, models.ThemeDark, req.Settings.Theme)
			return models.PushResponse{
				Success:   true,
				Applied:   models.Applied{Blocks: []string{}, TomorrowTasks: []string{}, Settings: true},
				Conflicts: []models.ConflictReport{},
			}, nil
		})
	server.EXPECT().Pull(gomock.Any(), gomock.Any()).
		Return(models.PullResponse{Settings: &older, SyncedAt: time.Now().UTC()}, nil)

	require.NoError(t, engine.Sync(ctx))

	settings, err := storage.GetSettings(ctx)
	require.NoError(t, err)
	assert.Equal(t, models.ThemeDark, settings.Theme, "an older server copy never overwrites a newer local write")
	assert.Equal(t, models.SyncStatusSynced, settings.SyncStatus)
}

func TestEngine_Sync_Offline(t *testing.T) {
	engine, _, _ := newTestEngine(t)

	engine.SetOnline(false)
	assert.Equal(t, StatusOffline, engine.Status())

	// no Push/Pull expectations: any network call would fail the test
	require.NoError(t, engine.Sync(context.Background()))
}

func TestEngine_Sync_UnauthorizedClearsSession(t *testing.T) {
	engine, storage, server := newTestEngine(t)
	ctx := context.Background()

	text := "note"
	_, err := engine.SaveBlock(ctx, models.BlockChange{Text: &text})
	require.NoError(t, err)

	events := collectEvents(engine)

	server.EXPECT().Push(gomock.Any(), gomock.Any()).
		Return(models.PushResponse{}, adapter.ErrUnauthorized)

	err = engine.Sync(ctx)
	assert.ErrorIs(t, err, adapter.ErrUnauthorized)
	assert.Equal(t, StatusError, engine.Status())

	_, err = storage.GetValue(ctx, kvAuthToken)
	assert.ErrorIs(t, err, store.ErrKeyNotFound, "stored token is dropped on 401")

	assert.Contains(t, eventTypes(*events), EventError)
}

func TestEngine_Sync_ServerUnavailableGoesOffline(t *testing.T) {
	engine, storage, server := newTestEngine(t)
	ctx := context.Background()

	text := "note"
	block, err := engine.SaveBlock(ctx, models.BlockChange{Text: &text})
	require.NoError(t, err)

	server.EXPECT().Push(gomock.Any(), gomock.Any()).
		Return(models.PushResponse{}, adapter.ErrServerUnavailable)

	err = engine.Sync(ctx)
	assert.ErrorIs(t, err, adapter.ErrServerUnavailable)
	assert.Equal(t, StatusOffline, engine.Status())

	stored, err := storage.GetBlock(ctx, block.ID)
	require.NoError(t, err)
	assert.Equal(t, models.SyncStatusPending, stored.SyncStatus, "nothing is lost while the server is down")
}

func TestEngine_FullSync_ReplacesReplica(t *testing.T) {
	engine, storage, server := newTestEngine(t)
	ctx := context.Background()

	storage.blocks["stale"] = models.LocalBlock{
		Block:      models.Block{ID: "stale", Text: "left over", CreatedAt: time.Now()},
		SyncStatus: models.SyncStatusSynced,
	}

	now := time.Now().UTC()
	server.EXPECT().Full(gomock.Any()).
		Return(models.PullResponse{
			Blocks:        []models.Block{{ID: "b1", Text: "server", CreatedAt: now, Version: 2, UpdatedAt: now}},
			TomorrowTasks: []models.TomorrowTask{{ID: "t1", Text: "task", Version: 1, UpdatedAt: now}},
			Settings:      &models.Settings{Theme: models.ThemeDark, DayCutHour: 6, UpdatedAt: now},
			SyncedAt:      now,
		}, nil)

	require.NoError(t, engine.FullSync(ctx))

	_, err := storage.GetBlock(ctx, "stale")
	assert.ErrorIs(t, err, store.ErrRecordNotFound)

	block, err := storage.GetBlock(ctx, "b1")
	require.NoError(t, err)
	assert.Equal(t, models.SyncStatusSynced, block.SyncStatus)
	assert.Equal(t, int64(2), block.ServerVersion)

	settings, err := storage.GetSettings(ctx)
	require.NoError(t, err)
	assert.Equal(t, models.ThemeDark, settings.Theme)
}

func TestEngine_FullSync_HoldsSyncGate(t *testing.T) {
	engine, _, server := newTestEngine(t)
	ctx := context.Background()

	// no Push/Pull expectations: a sync sneaking in during the replacement
	// would hit the controller
	server.EXPECT().Full(gomock.Any()).
		DoAndReturn(func(context.Context) (models.PullResponse, error) {
			require.NoError(t, engine.Sync(ctx), "a tick firing mid-replacement coalesces")
			return models.PullResponse{SyncedAt: time.Now().UTC()}, nil
		})

	require.NoError(t, engine.FullSync(ctx))
}

func TestEngine_SignIn_SerializesWithSync(t *testing.T) {
	engine, storage, server := newTestEngine(t)
	ctx := context.Background()

	// an edit made while signed out must survive the replica replacement
	text := "offline note"
	block, err := engine.SaveBlock(ctx, models.BlockChange{Text: &text})
	require.NoError(t, err)

	session := models.AuthSession{Token: "fresh-token", User: models.User{UserID: 3}}
	server.EXPECT().SignInGoogle(gomock.Any(), models.SignInRequest{IDToken: "id-token"}).
		Return(session, nil)
	server.EXPECT().Push(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, req models.PushRequest) (models.PushResponse, error) {
			require.Len(t, req.Blocks, 1)
			assert.Equal(t, block.ID, req.Blocks[0].ID)
			return models.PushResponse{
				Success:   true,
				Applied:   models.Applied{Blocks: []string{block.ID}, TomorrowTasks: []string{}},
				Conflicts: []models.ConflictReport{},
			}, nil
		})
	server.EXPECT().Full(gomock.Any()).
		DoAndReturn(func(context.Context) (models.PullResponse, error) {
			// only the one Push above is expected: a second cycle starting
			// here would fail the controller
			require.NoError(t, engine.Sync(ctx))
			return models.PullResponse{
				Blocks: []models.Block{{
					ID: block.ID, Text: "offline note", CreatedAt: block.CreatedAt,
					Version: 2, UpdatedAt: time.Now().UTC(), ClientID: block.ClientID,
				}},
				SyncedAt: time.Now().UTC(),
			}, nil
		})

	user, err := engine.SignIn(ctx, "id-token")
	require.NoError(t, err)
	assert.Equal(t, int64(3), user.UserID)

	stored, err := storage.GetBlock(ctx, block.ID)
	require.NoError(t, err)
	assert.Equal(t, "offline note", stored.Text)
	assert.Equal(t, models.SyncStatusSynced, stored.SyncStatus)
}

func TestEngine_SignOut_KeepsLocalData(t *testing.T) {
	engine, storage, _ := newTestEngine(t)
	ctx := context.Background()

	text := "kept after sign out"
	block, err := engine.SaveBlock(ctx, models.BlockChange{Text: &text})
	require.NoError(t, err)

	require.NoError(t, engine.SignOut(ctx))

	_, signedIn := engine.SignedInUser()
	assert.False(t, signedIn)

	stored, err := storage.GetBlock(ctx, block.ID)
	require.NoError(t, err)
	assert.Equal(t, "kept after sign out", stored.Text)
}

func TestEngine_ImportPlainText(t *testing.T) {
	engine, _, _ := newTestEngine(t)
	ctx := context.Background()

	created, err := engine.ImportPlainText(ctx, "first\nsecond\n\n  \nthird\r\n")
	require.NoError(t, err)

	require.Len(t, created, 3)
	assert.Equal(t, "first", created[0].Text)
	assert.Equal(t, int64(0), created[0].Position)
	assert.Equal(t, "third", created[2].Text)
	assert.Equal(t, int64(2), created[2].Position)
	for _, block := range created {
		assert.Equal(t, models.SyncStatusPending, block.SyncStatus)
		assert.Equal(t, int64(1), block.Version)
	}
}

func TestEngine_GetSettings_Defaults(t *testing.T) {
	engine, _, _ := newTestEngine(t)

	settings, err := engine.GetSettings(context.Background())
	require.NoError(t, err)
	assert.Equal(t, models.ThemeSystem, settings.Theme)
	assert.Equal(t, 4, settings.DayCutHour)
}

func TestEngine_ResolveConflict_Validation(t *testing.T) {
	engine, _, server := newTestEngine(t)
	ctx := context.Background()

	err := engine.ResolveConflict(ctx, "b1-conflict-1", "merged")
	assert.ErrorIs(t, err, ErrInvalidDataProvided)

	server.EXPECT().ResolveConflict(gomock.Any(), models.ResolveConflictRequest{
		ConflictID: "b1-conflict-1",
		Resolution: models.ResolutionKeptBoth,
	}).Return(nil)

	assert.NoError(t, engine.ResolveConflict(ctx, "b1-conflict-1", models.ResolutionKeptBoth))
}
