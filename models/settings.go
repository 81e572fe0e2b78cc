package models

import "time"

// Theme values accepted in [Settings].
const (
	ThemeSystem = "system"
	ThemeLight  = "light"
	ThemeDark   = "dark"
)

// Settings holds the user's scalar preferences. There is a single row per
// user and no version counter: the row with the latest UpdatedAt wins.
type Settings struct {
	// UserID is the owning user. Server-side only, never serialized.
	UserID int64 `json:"-"`

	// Theme is one of "system", "light" or "dark".
	Theme string `json:"theme"`

	// DayCutHour is the hour [0,23] at which the UI starts a new day.
	DayCutHour int `json:"dayCutHour"`

	UpdatedAt time.Time `json:"updatedAt"`
}

// ValidTheme reports whether theme is one of the accepted values.
func ValidTheme(theme string) bool {
	return theme == ThemeSystem || theme == ThemeLight || theme == ThemeDark
}
