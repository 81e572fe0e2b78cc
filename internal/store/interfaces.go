package store

import (
	"context"
	"time"

	"github.com/MKhiriev/go-note-keeper/models"
)

//go:generate mockgen -source=interfaces.go -destination=../mock/store_mock.go -package=mock

// UserRepository persists registered accounts keyed by the OAuth provider
// subject.
type UserRepository interface {
	UpsertByProvider(ctx context.Context, identity models.GoogleIdentity) (models.User, error)
	FindByID(ctx context.Context, userID int64) (models.User, error)
}

// SyncRepository is the authoritative store behind the sync endpoints. All
// reads and writes are partitioned by user id; ApplyPush runs the whole
// batch in a single transaction.
type SyncRepository interface {
	// ApplyPush applies a batched client upload: per record it either
	// inserts, updates with a server version bump, silently skips records
	// owned by another user, or (on a write-write conflict) appends a
	// keep-both copy and records a conflict row.
	ApplyPush(ctx context.Context, userID int64, req models.PushRequest) (models.PushResponse, error)

	// PullSince returns all records with updatedAt strictly greater than
	// since (everything when since is nil), tombstones included.
	PullSince(ctx context.Context, userID int64, since *time.Time) (models.PullResponse, error)

	// PullAll returns the user's live records only (no tombstones).
	PullAll(ctx context.Context, userID int64) (models.PullResponse, error)

	// ResolveConflict marks a persisted conflict row as resolved.
	ResolveConflict(ctx context.Context, userID int64, conflictID, resolution string) error
}
