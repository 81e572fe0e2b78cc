// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package service

import (
	"context"
	"fmt"
	"time"

	"github.com/MKhiriev/go-note-keeper/internal/logger"
	"github.com/MKhiriev/go-note-keeper/internal/store"
	"github.com/MKhiriev/go-note-keeper/models"
)

type syncService struct {
	repo   store.SyncRepository
	logger *logger.Logger
}

func NewSyncService(repo store.SyncRepository, logger *logger.Logger) SyncService {
	logger.Debug().Msg("SyncService created")
	return &syncService{
		repo:   repo,
		logger: logger,
	}
}

// Push implements [SyncService]. Validation happens here so the repository
// only ever sees well-formed batches.
func (s *syncService) Push(ctx context.Context, userID int64, req models.PushRequest) (models.PushResponse, error) {
	if err := validatePush(req); err != nil {
		return models.PushResponse{}, err
	}

	resp, err := s.repo.ApplyPush(ctx, userID, req)
	if err != nil {
		s.logger.Err(err).Str("func", "*syncService.Push").Int64("user_id", userID).Msg("push failed")
		return models.PushResponse{}, err
	}

	s.logger.Debug().Str("func", "*syncService.Push").
		Int64("user_id", userID).
		Int("blocks", len(resp.Applied.Blocks)).
		Int("tasks", len(resp.Applied.TomorrowTasks)).
		Int("conflicts", len(resp.Conflicts)).
		Msg("push applied")

	return resp, nil
}

// Pull implements [SyncService].
func (s *syncService) Pull(ctx context.Context, userID int64, since *time.Time) (models.PullResponse, error) {
	return s.repo.PullSince(ctx, userID, since)
}

// Full implements [SyncService].
func (s *syncService) Full(ctx context.Context, userID int64) (models.PullResponse, error) {
	return s.repo.PullAll(ctx, userID)
}

// ResolveConflict implements [SyncService].
func (s *syncService) ResolveConflict(ctx context.Context, userID int64, req models.ResolveConflictRequest) error {
	if req.ConflictID == "" {
		return fmt.Errorf("%w: conflictId is required", ErrInvalidDataProvided)
	}
	if !models.ValidResolution(req.Resolution) {
		return fmt.Errorf("%w: unknown resolution %q", ErrInvalidDataProvided, req.Resolution)
	}

	return s.repo.ResolveConflict(ctx, userID, req.ConflictID, req.Resolution)
}

func validatePush(req models.PushRequest) error {
	if req.ClientID == "" {
		return fmt.Errorf("%w: clientId is required", ErrInvalidDataProvided)
	}

	for i := range req.Blocks {
		b := &req.Blocks[i]
		if b.ID == "" {
			return fmt.Errorf("%w: block id is required", ErrInvalidDataProvided)
		}
		if b.Version < 0 {
			return fmt.Errorf("%w: block %s has negative version", ErrInvalidDataProvided, b.ID)
		}
	}

	for i := range req.TomorrowTasks {
		t := &req.TomorrowTasks[i]
		if t.ID == "" {
			return fmt.Errorf("%w: task id is required", ErrInvalidDataProvided)
		}
		if t.Version < 0 {
			return fmt.Errorf("%w: task %s has negative version", ErrInvalidDataProvided, t.ID)
		}
	}

	if req.Settings != nil {
		if !models.ValidTheme(req.Settings.Theme) {
			return fmt.Errorf("%w: unknown theme %q", ErrInvalidDataProvided, req.Settings.Theme)
		}
		if req.Settings.DayCutHour < 0 || req.Settings.DayCutHour > 23 {
			return fmt.Errorf("%w: dayCutHour must be between 0 and 23", ErrInvalidDataProvided)
		}
	}

	return nil
}
