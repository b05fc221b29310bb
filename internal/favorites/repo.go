package favorites

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

// Upsert inserts or updates a user's favorite slot assignment.
func (r *Repo) Upsert(ctx context.Context, item models.FavoriteItem) error {
	_, err := r.DB.ExecContext(ctx, `
		INSERT INTO user_favorites (user_id, gid, token, slot, note, updated_at)
		VALUES (?, ?, ?, ?, ?, CURRENT_TIMESTAMP)
		ON CONFLICT(user_id, gid, token) DO UPDATE SET
			slot = excluded.slot,
			note = excluded.note,
			updated_at = CURRENT_TIMESTAMP
	`, item.UserID, item.GID, item.Token, item.Slot, item.Note)
	if err != nil {
		return fmt.Errorf("upsert favorite: %w", err)
	}
	return nil
}

func (r *Repo) Delete(ctx context.Context, userID string, gid int64, token string) (bool, error) {
	res, err := r.DB.ExecContext(ctx, `
		DELETE FROM user_favorites
		WHERE user_id = ? AND gid = ? AND token = ?
	`, userID, gid, token)
	if err != nil {
		return false, fmt.Errorf("delete favorite: %w", err)
	}
	n, _ := res.RowsAffected()
	return n > 0, nil
}

// List returns favorites for a user, newest first. slot < 0 means no
// slot filter.
func (r *Repo) List(ctx context.Context, userID string, slot, limit, offset int) ([]models.FavoriteItem, int, error) {
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	if offset < 0 {
		offset = 0
	}

	var total int
	var countErr error
	if slot < 0 {
		countErr = r.DB.QueryRowContext(ctx, `
			SELECT COUNT(*) FROM user_favorites WHERE user_id = ?
		`, userID).Scan(&total)
	} else {
		countErr = r.DB.QueryRowContext(ctx, `
			SELECT COUNT(*) FROM user_favorites WHERE user_id = ? AND slot = ?
		`, userID, slot).Scan(&total)
	}
	if countErr != nil {
		return nil, 0, fmt.Errorf("count favorites: %w", countErr)
	}

	var rows *sql.Rows
	var err error

	if slot < 0 {
		rows, err = r.DB.QueryContext(ctx, `
			SELECT user_id, gid, token, slot, COALESCE(note, ''), updated_at
			FROM user_favorites
			WHERE user_id = ?
			ORDER BY updated_at DESC
			LIMIT ? OFFSET ?
		`, userID, limit, offset)
	} else {
		rows, err = r.DB.QueryContext(ctx, `
			SELECT user_id, gid, token, slot, COALESCE(note, ''), updated_at
			FROM user_favorites
			WHERE user_id = ? AND slot = ?
			ORDER BY updated_at DESC
			LIMIT ? OFFSET ?
		`, userID, slot, limit, offset)
	}

	if err != nil {
		return nil, 0, fmt.Errorf("list favorites: %w", err)
	}
	defer rows.Close()

	out := make([]models.FavoriteItem, 0, limit)
	for rows.Next() {
		var it models.FavoriteItem
		var updated time.Time

		if err := rows.Scan(&it.UserID, &it.GID, &it.Token, &it.Slot, &it.Note, &updated); err != nil {
			return nil, 0, fmt.Errorf("scan favorite row: %w", err)
		}
		it.UpdatedAt = updated
		out = append(out, it)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("rows err: %w", err)
	}

	return out, total, nil
}

func (r *Repo) Get(ctx context.Context, userID string, gid int64, token string) (*models.FavoriteItem, error) {
	row := r.DB.QueryRowContext(ctx, `
		SELECT user_id, gid, token, slot, COALESCE(note, ''), updated_at
		FROM user_favorites
		WHERE user_id = ? AND gid = ? AND token = ?
	`, userID, gid, token)

	var it models.FavoriteItem
	var updated time.Time
	if err := row.Scan(&it.UserID, &it.GID, &it.Token, &it.Slot, &it.Note, &updated); err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("get favorite: %w", err)
	}
	it.UpdatedAt = updated
	return &it, nil
}
