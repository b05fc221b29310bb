package models

import "time"

// Comment is a user comment on a gallery, optionally carrying a rating
// in [0.5, 5.0] with 0.5 steps. Rating is nil when the user only wrote text.
type Comment struct {
	ID        int64     `json:"id"`
	UserID    string    `json:"user_id"`
	GID       int64     `json:"gid"`
	Token     string    `json:"token"`
	Rating    *float64  `json:"rating,omitempty"`
	Text      string    `json:"text,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}
