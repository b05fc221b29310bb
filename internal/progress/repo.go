package progress

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"galleryhub/pkg/models"
)

type Repo struct {
	DB *sql.DB
}

func NewRepo(db *sql.DB) *Repo {
	return &Repo{DB: db}
}

func (r *Repo) Add(ctx context.Context, entry models.ReadProgress) error {
	if entry.At.IsZero() {
		entry.At = time.Now().UTC()
	}

	_, err := r.DB.ExecContext(ctx, `
		INSERT INTO user_read_history (user_id, gid, token, page, at)
		VALUES (?, ?, ?, ?, ?)
	`, entry.UserID, entry.GID, entry.Token, entry.Page, entry.At)
	if err != nil {
		return fmt.Errorf("insert read history: %w", err)
	}
	return nil
}

func (r *Repo) List(ctx context.Context, userID string, gid int64, token string, limit, offset int) ([]models.ReadProgress, int, error) {
	if limit <= 0 || limit > 100 {
		limit = 50
	}
	if offset < 0 {
		offset = 0
	}

	var total int
	if err := r.DB.QueryRowContext(ctx, `
		SELECT COUNT(*) FROM user_read_history
		WHERE user_id = ? AND gid = ? AND token = ?
	`, userID, gid, token).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count read history: %w", err)
	}

	rows, err := r.DB.QueryContext(ctx, `
		SELECT user_id, gid, token, page, at
		FROM user_read_history
		WHERE user_id = ? AND gid = ? AND token = ?
		ORDER BY at DESC
		LIMIT ? OFFSET ?
	`, userID, gid, token, limit, offset)
	if err != nil {
		return nil, 0, fmt.Errorf("list read history: %w", err)
	}
	defer rows.Close()

	out := make([]models.ReadProgress, 0, limit)
	for rows.Next() {
		var entry models.ReadProgress
		var at time.Time

		if err := rows.Scan(&entry.UserID, &entry.GID, &entry.Token, &entry.Page, &at); err != nil {
			return nil, 0, fmt.Errorf("scan read history: %w", err)
		}
		entry.At = at
		out = append(out, entry)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("rows read history: %w", err)
	}

	return out, total, nil
}

// Latest returns the most recent page entry for one gallery, nil when
// the user has no history for it.
func (r *Repo) Latest(ctx context.Context, userID string, gid int64, token string) (*models.ReadProgress, error) {
	row := r.DB.QueryRowContext(ctx, `
		SELECT user_id, gid, token, page, at
		FROM user_read_history
		WHERE user_id = ? AND gid = ? AND token = ?
		ORDER BY at DESC
		LIMIT 1
	`, userID, gid, token)

	var entry models.ReadProgress
	var at time.Time
	if err := row.Scan(&entry.UserID, &entry.GID, &entry.Token, &entry.Page, &at); err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("latest read history: %w", err)
	}
	entry.At = at
	return &entry, nil
}
