package models

import "time"

// TomorrowTask is an item in the user's next-day queue. It carries the same
// sync metadata envelope as [Block]; the day-boundary rollover into blocks is
// performed by the UI collaborator, not by the sync core.
type TomorrowTask struct {
	ID string `json:"id"`

	// UserID is the owning user. Server-side only, never serialized.
	UserID int64 `json:"-"`

	Text string `json:"text"`

	// Time is an optional "HH:MM" string attached to the task.
	Time *string `json:"time,omitempty"`

	Position  int64      `json:"position"`
	Version   int64      `json:"version"`
	UpdatedAt time.Time  `json:"updatedAt"`
	DeletedAt *time.Time `json:"deletedAt,omitempty"`
	ClientID  string     `json:"clientId,omitempty"`
}

// Deleted reports whether the task is a tombstone.
func (t TomorrowTask) Deleted() bool { return t.DeletedAt != nil }

// TaskChange is a partial tomorrow-task mutation accepted by the client
// engine. Nil fields keep their current value on an existing record.
type TaskChange struct {
	ID       string
	Text     *string
	Time     *string
	Position *int64
}
