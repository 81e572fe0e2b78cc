// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	sq "github.com/Masterminds/squirrel"

	"github.com/MKhiriev/go-note-keeper/internal/logger"
	"github.com/MKhiriev/go-note-keeper/models"
)

// pushOutcome classifies one incoming record against the stored row.
type pushOutcome int

const (
	outcomeInsert pushOutcome = iota
	outcomeUpdate
	outcomeConflict
	outcomeSkip
)

// recordMeta is the slice of a stored row the push gate needs.
type recordMeta struct {
	UserID   int64
	Version  int64
	ClientID string
	Deleted  bool
}

// isWriteConflict implements the conflict rule: the server already holds a
// version greater than or equal to the one the client thought it was
// updating, and that version came from a different replica.
func isWriteConflict(existingVersion, incomingVersion int64, existingClientID, incomingClientID string) bool {
	return existingVersion >= incomingVersion && existingClientID != incomingClientID
}

// decide classifies an incoming record. existing is nil when no row with
// that id exists yet. A tombstoned row is never resurrected: a live write
// against it is treated as a conflict so the data survives as a keep-both
// copy.
func decide(existing *recordMeta, userID, incomingVersion int64, incomingClientID string, incomingDeleted bool) pushOutcome {
	if existing == nil {
		return outcomeInsert
	}
	if existing.UserID != userID {
		return outcomeSkip
	}
	if isWriteConflict(existing.Version, incomingVersion, existing.ClientID, incomingClientID) {
		return outcomeConflict
	}
	if existing.Deleted && !incomingDeleted {
		return outcomeConflict
	}

	return outcomeUpdate
}

// conflictCopyID derives the id of the appended keep-both copy.
func conflictCopyID(recordID string, now time.Time) string {
	return fmt.Sprintf("%s-conflict-%d", recordID, now.UnixMilli())
}

type syncRepository struct {
	db     *sql.DB
	logger *logger.Logger
}

func NewSyncRepository(db *sql.DB, logger *logger.Logger) SyncRepository {
	logger.Debug().Msg("SyncRepository created")
	return &syncRepository{
		db:     db,
		logger: logger,
	}
}

// ApplyPush implements [SyncRepository]. The whole batch of blocks, tasks
// and settings runs in one transaction so a partial push never leaves the
// store in a torn state.
func (r *syncRepository) ApplyPush(ctx context.Context, userID int64, req models.PushRequest) (models.PushResponse, error) {
	resp := models.PushResponse{
		Applied: models.Applied{
			Blocks:        []string{},
			TomorrowTasks: []string{},
		},
		Conflicts: []models.ConflictReport{},
	}

	now := time.Now().UTC()

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		r.logger.Err(err).Str("func", "*syncRepository.ApplyPush").Msg("begin transaction failed")
		return resp, fmt.Errorf("%w: %w", ErrBeginningTransaction, err)
	}
	defer tx.Rollback()

	for i := range req.Blocks {
		if err = r.applyBlock(ctx, tx, userID, req.ClientID, req.Blocks[i], now, &resp); err != nil {
			return models.PushResponse{}, err
		}
	}

	for i := range req.TomorrowTasks {
		if err = r.applyTask(ctx, tx, userID, req.ClientID, req.TomorrowTasks[i], now, &resp); err != nil {
			return models.PushResponse{}, err
		}
	}

	if req.Settings != nil {
		s := req.Settings
		if _, err = tx.ExecContext(ctx, upsertSettings, userID, s.Theme, s.DayCutHour, s.UpdatedAt.UTC()); err != nil {
			r.logger.Err(err).Str("func", "*syncRepository.ApplyPush").Msg("settings upsert failed")
			return models.PushResponse{}, fmt.Errorf("%w: settings upsert: %w", ErrExecutingStatement, err)
		}
		resp.Applied.Settings = true
	}

	if commitErr := tx.Commit(); commitErr != nil {
		r.logger.Err(commitErr).Str("func", "*syncRepository.ApplyPush").Msg("commit failed")
		return models.PushResponse{}, fmt.Errorf("%w: %w", ErrCommitingTransaction, commitErr)
	}

	resp.Success = true
	return resp, nil
}

func (r *syncRepository) applyBlock(ctx context.Context, tx *sql.Tx, userID int64, batchClientID string, b models.Block, now time.Time, resp *models.PushResponse) error {
	if b.ClientID == "" {
		b.ClientID = batchClientID
	}

	existing, err := getMetaTx(ctx, tx, getBlockMeta, b.ID)
	if err != nil {
		return fmt.Errorf("get block meta %s: %w", b.ID, err)
	}

	switch decide(existing, userID, b.Version, b.ClientID, b.Deleted()) {
	case outcomeSkip:
		// cross-user id collision: never touched, never reported

	case outcomeInsert:
		_, err = tx.ExecContext(ctx, insertBlock,
			b.ID, userID, b.Text, b.CreatedAt.UTC(), b.CalendarEventID,
			b.Position, b.Version+1, now, nullableTime(b.DeletedAt), b.ClientID)
		if err != nil {
			return fmt.Errorf("%w: insert block %s: %w", ErrExecutingStatement, b.ID, err)
		}
		resp.Applied.Blocks = append(resp.Applied.Blocks, b.ID)

	case outcomeUpdate:
		_, err = tx.ExecContext(ctx, updateBlock,
			b.Text, b.CalendarEventID, b.Position, b.Version+1, now,
			nullableTime(b.DeletedAt), b.ClientID, b.ID, userID)
		if err != nil {
			return fmt.Errorf("%w: update block %s: %w", ErrExecutingStatement, b.ID, err)
		}
		resp.Applied.Blocks = append(resp.Applied.Blocks, b.ID)

	case outcomeConflict:
		copyID := conflictCopyID(b.ID, now)
		_, err = tx.ExecContext(ctx, insertBlock,
			copyID, userID, "[Conflict] "+b.Text, b.CreatedAt.UTC(), b.CalendarEventID,
			b.Position+1, 1, now, nil, b.ClientID)
		if err != nil {
			return fmt.Errorf("%w: insert conflict copy %s: %w", ErrExecutingStatement, copyID, err)
		}
		_, err = tx.ExecContext(ctx, insertConflict,
			copyID, userID, models.RecordTypeBlock, b.ID, b.Version, existing.Version, now)
		if err != nil {
			return fmt.Errorf("%w: insert conflict row %s: %w", ErrExecutingStatement, copyID, err)
		}
		resp.Conflicts = append(resp.Conflicts, models.ConflictReport{
			Type:          models.RecordTypeBlock,
			ID:            b.ID,
			LocalVersion:  b.Version,
			ServerVersion: existing.Version,
		})
	}

	return nil
}

func (r *syncRepository) applyTask(ctx context.Context, tx *sql.Tx, userID int64, batchClientID string, t models.TomorrowTask, now time.Time, resp *models.PushResponse) error {
	if t.ClientID == "" {
		t.ClientID = batchClientID
	}

	existing, err := getMetaTx(ctx, tx, getTaskMeta, t.ID)
	if err != nil {
		return fmt.Errorf("get task meta %s: %w", t.ID, err)
	}

	switch decide(existing, userID, t.Version, t.ClientID, t.Deleted()) {
	case outcomeSkip:

	case outcomeInsert:
		_, err = tx.ExecContext(ctx, insertTask,
			t.ID, userID, t.Text, t.Time, t.Position, t.Version+1, now,
			nullableTime(t.DeletedAt), t.ClientID)
		if err != nil {
			return fmt.Errorf("%w: insert task %s: %w", ErrExecutingStatement, t.ID, err)
		}
		resp.Applied.TomorrowTasks = append(resp.Applied.TomorrowTasks, t.ID)

	case outcomeUpdate:
		_, err = tx.ExecContext(ctx, updateTask,
			t.Text, t.Time, t.Position, t.Version+1, now,
			nullableTime(t.DeletedAt), t.ClientID, t.ID, userID)
		if err != nil {
			return fmt.Errorf("%w: update task %s: %w", ErrExecutingStatement, t.ID, err)
		}
		resp.Applied.TomorrowTasks = append(resp.Applied.TomorrowTasks, t.ID)

	case outcomeConflict:
		copyID := conflictCopyID(t.ID, now)
		_, err = tx.ExecContext(ctx, insertTask,
			copyID, userID, "[Conflict] "+t.Text, t.Time, t.Position+1, 1, now, nil, t.ClientID)
		if err != nil {
			return fmt.Errorf("%w: insert conflict copy %s: %w", ErrExecutingStatement, copyID, err)
		}
		_, err = tx.ExecContext(ctx, insertConflict,
			copyID, userID, models.RecordTypeTomorrowTask, t.ID, t.Version, existing.Version, now)
		if err != nil {
			return fmt.Errorf("%w: insert conflict row %s: %w", ErrExecutingStatement, copyID, err)
		}
		resp.Conflicts = append(resp.Conflicts, models.ConflictReport{
			Type:          models.RecordTypeTomorrowTask,
			ID:            t.ID,
			LocalVersion:  t.Version,
			ServerVersion: existing.Version,
		})
	}

	return nil
}

// getMetaTx fetches the gate metadata of a stored row by id regardless of
// owner. Returns nil when no row exists.
func getMetaTx(ctx context.Context, tx *sql.Tx, query, id string) (*recordMeta, error) {
	var meta recordMeta
	var deletedAt sql.NullTime

	err := tx.QueryRowContext(ctx, query, id).Scan(&meta.UserID, &meta.Version, &meta.ClientID, &deletedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrScanningRow, err)
	}

	meta.Deleted = deletedAt.Valid
	return &meta, nil
}

// PullSince implements [SyncRepository].
func (r *syncRepository) PullSince(ctx context.Context, userID int64, since *time.Time) (models.PullResponse, error) {
	return r.pull(ctx, userID, since, false)
}

// PullAll implements [SyncRepository].
func (r *syncRepository) PullAll(ctx context.Context, userID int64) (models.PullResponse, error) {
	return r.pull(ctx, userID, nil, true)
}

func (r *syncRepository) pull(ctx context.Context, userID int64, since *time.Time, liveOnly bool) (models.PullResponse, error) {
	resp := models.PullResponse{
		Blocks:        []models.Block{},
		TomorrowTasks: []models.TomorrowTask{},
		Conflicts:     []models.ConflictReport{},
		SyncedAt:      time.Now().UTC(),
	}

	blocks, err := r.pullBlocks(ctx, userID, since, liveOnly)
	if err != nil {
		return models.PullResponse{}, err
	}
	resp.Blocks = blocks

	tasks, err := r.pullTasks(ctx, userID, since, liveOnly)
	if err != nil {
		return models.PullResponse{}, err
	}
	resp.TomorrowTasks = tasks

	settings, err := r.pullSettings(ctx, userID, since)
	if err != nil {
		return models.PullResponse{}, err
	}
	resp.Settings = settings

	return resp, nil
}

func (r *syncRepository) pullBlocks(ctx context.Context, userID int64, since *time.Time, liveOnly bool) ([]models.Block, error) {
	qb := sq.Select("id", "text", "created_at", "calendar_event_id", "position",
		"version", "updated_at", "deleted_at", "client_id").
		From("blocks").
		Where(sq.Eq{"user_id": userID}).
		OrderBy("created_at ASC", "position ASC").
		PlaceholderFormat(sq.Dollar)
	if since != nil {
		qb = qb.Where(sq.Gt{"updated_at": since.UTC()})
	}
	if liveOnly {
		qb = qb.Where(sq.Eq{"deleted_at": nil})
	}

	query, args, err := qb.ToSql()
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrBuildingSQLQuery, err)
	}

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrExecutingQuery, err)
	}
	defer rows.Close()

	blocks := []models.Block{}
	for rows.Next() {
		var b models.Block
		var calendarEventID sql.NullString
		var deletedAt sql.NullTime
		var clientID sql.NullString

		err = rows.Scan(&b.ID, &b.Text, &b.CreatedAt, &calendarEventID,
			&b.Position, &b.Version, &b.UpdatedAt, &deletedAt, &clientID)
		if err != nil {
			return nil, fmt.Errorf("%w: %w", ErrScanningRows, err)
		}

		b.UserID = userID
		if calendarEventID.Valid {
			b.CalendarEventID = &calendarEventID.String
		}
		if deletedAt.Valid {
			t := deletedAt.Time.UTC()
			b.DeletedAt = &t
		}
		b.ClientID = clientID.String

		blocks = append(blocks, b)
	}

	return blocks, rows.Err()
}

func (r *syncRepository) pullTasks(ctx context.Context, userID int64, since *time.Time, liveOnly bool) ([]models.TomorrowTask, error) {
	qb := sq.Select("id", "text", "time_of_day", "position", "version",
		"updated_at", "deleted_at", "client_id").
		From("tomorrow_tasks").
		Where(sq.Eq{"user_id": userID}).
		OrderBy("position ASC").
		PlaceholderFormat(sq.Dollar)
	if since != nil {
		qb = qb.Where(sq.Gt{"updated_at": since.UTC()})
	}
	if liveOnly {
		qb = qb.Where(sq.Eq{"deleted_at": nil})
	}

	query, args, err := qb.ToSql()
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrBuildingSQLQuery, err)
	}

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrExecutingQuery, err)
	}
	defer rows.Close()

	tasks := []models.TomorrowTask{}
	for rows.Next() {
		var t models.TomorrowTask
		var timeOfDay sql.NullString
		var deletedAt sql.NullTime
		var clientID sql.NullString

		err = rows.Scan(&t.ID, &t.Text, &timeOfDay, &t.Position, &t.Version,
			&t.UpdatedAt, &deletedAt, &clientID)
		if err != nil {
			return nil, fmt.Errorf("%w: %w", ErrScanningRows, err)
		}

		t.UserID = userID
		if timeOfDay.Valid {
			t.Time = &timeOfDay.String
		}
		if deletedAt.Valid {
			ts := deletedAt.Time.UTC()
			t.DeletedAt = &ts
		}
		t.ClientID = clientID.String

		tasks = append(tasks, t)
	}

	return tasks, rows.Err()
}

func (r *syncRepository) pullSettings(ctx context.Context, userID int64, since *time.Time) (*models.Settings, error) {
	qb := sq.Select("theme", "day_cut_hour", "updated_at").
		From("settings").
		Where(sq.Eq{"user_id": userID}).
		PlaceholderFormat(sq.Dollar)
	if since != nil {
		qb = qb.Where(sq.Gt{"updated_at": since.UTC()})
	}

	query, args, err := qb.ToSql()
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrBuildingSQLQuery, err)
	}

	var s models.Settings
	err = r.db.QueryRowContext(ctx, query, args...).Scan(&s.Theme, &s.DayCutHour, &s.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrScanningRow, err)
	}

	s.UserID = userID
	return &s, nil
}

// ResolveConflict implements [SyncRepository].
func (r *syncRepository) ResolveConflict(ctx context.Context, userID int64, conflictID, resolution string) error {
	res, err := r.db.ExecContext(ctx, resolveConflict, resolution, time.Now().UTC(), conflictID, userID)
	if err != nil {
		return fmt.Errorf("%w: resolve conflict %s: %w", ErrExecutingStatement, conflictID, err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("resolve conflict rows affected: %w", err)
	}
	if affected == 0 {
		return ErrConflictNotFound
	}

	return nil
}

func nullableTime(t *time.Time) any {
	if t == nil {
		return nil
	}
	return t.UTC()
}
