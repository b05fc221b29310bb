package sync

import "time"

// GalleryEvent is broadcast to every connected sync client whenever a
// user's favorites or read progress change. Slot is a pointer because
// slot 0 is a valid value and must survive serialization.
type GalleryEvent struct {
	Type   string    `json:"type"` // "favorite.update", "favorite.delete", "progress.update"
	UserID string    `json:"user_id"`
	GID    int64     `json:"gid"`
	Token  string    `json:"token"`
	Slot   *int      `json:"slot,omitempty"`
	Page   int       `json:"page,omitempty"`
	At     time.Time `json:"at"`
}
