package models

import "time"

// ReadProgress is one entry in a user's page read history for a gallery.
type ReadProgress struct {
	UserID string    `json:"user_id"`
	GID    int64     `json:"gid"`
	Token  string    `json:"token"`
	Page   int       `json:"page"`
	At     time.Time `json:"at"`
}
