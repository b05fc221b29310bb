package models

import "time"

// FavoriteItem is one slot assignment in a user's favorites.
// Slot ranges over [0, 9]; removal is a delete, not slot -1.
type FavoriteItem struct {
	UserID    string    `json:"user_id"`
	GID       int64     `json:"gid"`
	Token     string    `json:"token"`
	Slot      int       `json:"slot"`
	Note      string    `json:"note,omitempty"`
	UpdatedAt time.Time `json:"updated_at"`
}
