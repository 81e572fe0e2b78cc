package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/MKhiriev/go-note-keeper/internal/logger"
	"github.com/MKhiriev/go-note-keeper/models"
)

type localStorage struct {
	db     *sql.DB
	logger *logger.Logger
}

func NewLocalStorage(db *sql.DB, logger *logger.Logger) LocalStorage {
	logger.Debug().Msg("LocalStorage created")
	return &localStorage{
		db:     db,
		logger: logger,
	}
}

func (s *localStorage) GetBlocks(ctx context.Context) ([]models.LocalBlock, error) {
	return s.queryBlocks(ctx, selectLocalBlocks)
}

func (s *localStorage) GetAllBlocks(ctx context.Context) ([]models.LocalBlock, error) {
	return s.queryBlocks(ctx, selectAllLocalBlocks)
}

func (s *localStorage) GetPendingBlocks(ctx context.Context) ([]models.LocalBlock, error) {
	return s.queryBlocks(ctx, selectPendingBlocks)
}

func (s *localStorage) GetBlock(ctx context.Context, id string) (models.LocalBlock, error) {
	row := s.db.QueryRowContext(ctx, selectLocalBlock, id)

	block, err := scanLocalBlock(row.Scan)
	if errors.Is(err, sql.ErrNoRows) {
		return models.LocalBlock{}, ErrRecordNotFound
	}
	if err != nil {
		s.logger.Err(err).Str("func", "*localStorage.GetBlock").Msg("error: scanning error")
		return models.LocalBlock{}, fmt.Errorf("%w: %w", ErrScanningRow, err)
	}

	return block, nil
}

func (s *localStorage) UpsertBlock(ctx context.Context, block models.LocalBlock) error {
	_, err := s.db.ExecContext(ctx, upsertLocalBlock,
		block.ID, block.Text, block.CreatedAt.UTC(), block.CalendarEventID,
		block.Position, block.Version, block.UpdatedAt.UTC(),
		nullableTime(block.DeletedAt), block.ClientID,
		string(block.SyncStatus), block.ServerVersion)
	if err != nil {
		s.logger.Err(err).Str("func", "*localStorage.UpsertBlock").Msg("error: executing statement")
		return fmt.Errorf("%w: upsert block %s: %w", ErrExecutingStatement, block.ID, err)
	}

	return nil
}

// ReplaceBlocks implements [LocalStorage]. Delete and reinsert run in one
// transaction so a failed full sync cannot empty the replica.
func (s *localStorage) ReplaceBlocks(ctx context.Context, blocks []models.LocalBlock) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrBeginningTransaction, err)
	}
	defer tx.Rollback()

	if _, err = tx.ExecContext(ctx, deleteAllLocalBlocks); err != nil {
		return fmt.Errorf("%w: clear blocks: %w", ErrExecutingStatement, err)
	}

	for _, block := range blocks {
		_, err = tx.ExecContext(ctx, upsertLocalBlock,
			block.ID, block.Text, block.CreatedAt.UTC(), block.CalendarEventID,
			block.Position, block.Version, block.UpdatedAt.UTC(),
			nullableTime(block.DeletedAt), block.ClientID,
			string(block.SyncStatus), block.ServerVersion)
		if err != nil {
			return fmt.Errorf("%w: insert block %s: %w", ErrExecutingStatement, block.ID, err)
		}
	}

	if err = tx.Commit(); err != nil {
		return fmt.Errorf("%w: %w", ErrCommitingTransaction, err)
	}

	return nil
}

func (s *localStorage) GetTasks(ctx context.Context) ([]models.LocalTask, error) {
	return s.queryTasks(ctx, selectLocalTasks)
}

func (s *localStorage) GetAllTasks(ctx context.Context) ([]models.LocalTask, error) {
	return s.queryTasks(ctx, selectAllLocalTasks)
}

func (s *localStorage) GetPendingTasks(ctx context.Context) ([]models.LocalTask, error) {
	return s.queryTasks(ctx, selectPendingTasks)
}

func (s *localStorage) GetTask(ctx context.Context, id string) (models.LocalTask, error) {
	row := s.db.QueryRowContext(ctx, selectLocalTask, id)

	task, err := scanLocalTask(row.Scan)
	if errors.Is(err, sql.ErrNoRows) {
		return models.LocalTask{}, ErrRecordNotFound
	}
	if err != nil {
		s.logger.Err(err).Str("func", "*localStorage.GetTask").Msg("error: scanning error")
		return models.LocalTask{}, fmt.Errorf("%w: %w", ErrScanningRow, err)
	}

	return task, nil
}

func (s *localStorage) UpsertTask(ctx context.Context, task models.LocalTask) error {
	_, err := s.db.ExecContext(ctx, upsertLocalTask,
		task.ID, task.Text, task.Time, task.Position, task.Version,
		task.UpdatedAt.UTC(), nullableTime(task.DeletedAt), task.ClientID,
		string(task.SyncStatus), task.ServerVersion)
	if err != nil {
		s.logger.Err(err).Str("func", "*localStorage.UpsertTask").Msg("error: executing statement")
		return fmt.Errorf("%w: upsert task %s: %w", ErrExecutingStatement, task.ID, err)
	}

	return nil
}

func (s *localStorage) ReplaceTasks(ctx context.Context, tasks []models.LocalTask) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrBeginningTransaction, err)
	}
	defer tx.Rollback()

	if _, err = tx.ExecContext(ctx, deleteAllLocalTasks); err != nil {
		return fmt.Errorf("%w: clear tasks: %w", ErrExecutingStatement, err)
	}

	for _, task := range tasks {
		_, err = tx.ExecContext(ctx, upsertLocalTask,
			task.ID, task.Text, task.Time, task.Position, task.Version,
			task.UpdatedAt.UTC(), nullableTime(task.DeletedAt), task.ClientID,
			string(task.SyncStatus), task.ServerVersion)
		if err != nil {
			return fmt.Errorf("%w: insert task %s: %w", ErrExecutingStatement, task.ID, err)
		}
	}

	if err = tx.Commit(); err != nil {
		return fmt.Errorf("%w: %w", ErrCommitingTransaction, err)
	}

	return nil
}

func (s *localStorage) GetSettings(ctx context.Context) (models.LocalSettings, error) {
	var settings models.LocalSettings
	var status string

	row := s.db.QueryRowContext(ctx, selectLocalSettings)
	err := row.Scan(&settings.Theme, &settings.DayCutHour, &settings.UpdatedAt, &status)
	if errors.Is(err, sql.ErrNoRows) {
		return models.LocalSettings{}, ErrSettingsNotFound
	}
	if err != nil {
		s.logger.Err(err).Str("func", "*localStorage.GetSettings").Msg("error: scanning error")
		return models.LocalSettings{}, fmt.Errorf("%w: %w", ErrScanningRow, err)
	}

	settings.SyncStatus = models.SyncStatus(status)
	return settings, nil
}

func (s *localStorage) UpsertSettings(ctx context.Context, settings models.LocalSettings) error {
	_, err := s.db.ExecContext(ctx, upsertLocalSettings,
		settings.Theme, settings.DayCutHour, settings.UpdatedAt.UTC(),
		string(settings.SyncStatus))
	if err != nil {
		s.logger.Err(err).Str("func", "*localStorage.UpsertSettings").Msg("error: executing statement")
		return fmt.Errorf("%w: upsert settings: %w", ErrExecutingStatement, err)
	}

	return nil
}

func (s *localStorage) GetValue(ctx context.Context, key string) (string, error) {
	var value string

	err := s.db.QueryRowContext(ctx, selectKVValue, key).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return "", ErrKeyNotFound
	}
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrScanningRow, err)
	}

	return value, nil
}

func (s *localStorage) SetValue(ctx context.Context, key, value string) error {
	if _, err := s.db.ExecContext(ctx, upsertKVValue, key, value); err != nil {
		return fmt.Errorf("%w: set %q: %w", ErrExecutingStatement, key, err)
	}
	return nil
}

func (s *localStorage) DeleteValue(ctx context.Context, key string) error {
	if _, err := s.db.ExecContext(ctx, deleteKVValue, key); err != nil {
		return fmt.Errorf("%w: delete %q: %w", ErrExecutingStatement, key, err)
	}
	return nil
}

func (s *localStorage) queryBlocks(ctx context.Context, query string) ([]models.LocalBlock, error) {
	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrExecutingQuery, err)
	}
	defer rows.Close()

	blocks := []models.LocalBlock{}
	for rows.Next() {
		block, scanErr := scanLocalBlock(rows.Scan)
		if scanErr != nil {
			s.logger.Err(scanErr).Str("func", "*localStorage.queryBlocks").Msg("error: scanning error")
			return nil, fmt.Errorf("%w: %w", ErrScanningRows, scanErr)
		}
		blocks = append(blocks, block)
	}

	return blocks, rows.Err()
}

func (s *localStorage) queryTasks(ctx context.Context, query string) ([]models.LocalTask, error) {
	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrExecutingQuery, err)
	}
	defer rows.Close()

	tasks := []models.LocalTask{}
	for rows.Next() {
		task, scanErr := scanLocalTask(rows.Scan)
		if scanErr != nil {
			s.logger.Err(scanErr).Str("func", "*localStorage.queryTasks").Msg("error: scanning error")
			return nil, fmt.Errorf("%w: %w", ErrScanningRows, scanErr)
		}
		tasks = append(tasks, task)
	}

	return tasks, rows.Err()
}

func scanLocalBlock(scan func(...any) error) (models.LocalBlock, error) {
	var block models.LocalBlock
	var calendarEventID sql.NullString
	var deletedAt sql.NullTime
	var status string

	err := scan(&block.ID, &block.Text, &block.CreatedAt, &calendarEventID,
		&block.Position, &block.Version, &block.UpdatedAt, &deletedAt,
		&block.ClientID, &status, &block.ServerVersion)
	if err != nil {
		return models.LocalBlock{}, err
	}

	if calendarEventID.Valid {
		block.CalendarEventID = &calendarEventID.String
	}
	if deletedAt.Valid {
		t := deletedAt.Time.UTC()
		block.DeletedAt = &t
	}
	block.SyncStatus = models.SyncStatus(status)

	return block, nil
}

func scanLocalTask(scan func(...any) error) (models.LocalTask, error) {
	var task models.LocalTask
	var timeOfDay sql.NullString
	var deletedAt sql.NullTime
	var status string

	err := scan(&task.ID, &task.Text, &timeOfDay, &task.Position,
		&task.Version, &task.UpdatedAt, &deletedAt, &task.ClientID,
		&status, &task.ServerVersion)
	if err != nil {
		return models.LocalTask{}, err
	}

	if timeOfDay.Valid {
		task.Time = &timeOfDay.String
	}
	if deletedAt.Valid {
		t := deletedAt.Time.UTC()
		task.DeletedAt = &t
	}
	task.SyncStatus = models.SyncStatus(status)

	return task, nil
}
