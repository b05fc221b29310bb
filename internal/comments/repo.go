package comments

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

// Create inserts a comment. rating is nil for text-only comments.
func (r *Repo) Create(ctx context.Context, userID string, gid int64, token string, rating *float64, text string) (*models.Comment, error) {
	var ratingVal any
	if rating != nil {
		ratingVal = *rating
	}

	res, err := r.DB.ExecContext(ctx, `
		INSERT INTO gallery_comments (user_id, gid, token, rating, text)
		VALUES (?, ?, ?, ?, ?)
	`, userID, gid, token, ratingVal, text)
	if err != nil {
		return nil, fmt.Errorf("insert comment: %w", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("last insert id: %w", err)
	}

	return r.GetByID(ctx, id)
}

func (r *Repo) GetByID(ctx context.Context, id int64) (*models.Comment, error) {
	row := r.DB.QueryRowContext(ctx, `
		SELECT id, user_id, gid, token, rating, text, timestamp
		FROM gallery_comments
		WHERE id = ?
	`, id)

	comment, err := scanComment(row.Scan)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("scan comment: %w", err)
	}
	return comment, nil
}

func (r *Repo) ListByGallery(ctx context.Context, gid int64, token string, limit, offset int) ([]models.Comment, error) {
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	if offset < 0 {
		offset = 0
	}

	rows, err := r.DB.QueryContext(ctx, `
		SELECT id, user_id, gid, token, rating, text, timestamp
		FROM gallery_comments
		WHERE gid = ? AND token = ?
		ORDER BY timestamp DESC
		LIMIT ? OFFSET ?
	`, gid, token, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("list comments: %w", err)
	}
	defer rows.Close()

	out := make([]models.Comment, 0, limit)
	for rows.Next() {
		comment, err := scanComment(rows.Scan)
		if err != nil {
			return nil, fmt.Errorf("scan comment row: %w", err)
		}
		out = append(out, *comment)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows err: %w", err)
	}
	return out, nil
}

func (r *Repo) Delete(ctx context.Context, id int64, userID string) (bool, error) {
	res, err := r.DB.ExecContext(ctx, `
		DELETE FROM gallery_comments
		WHERE id = ? AND user_id = ?
	`, id, userID)
	if err != nil {
		return false, fmt.Errorf("delete comment: %w", err)
	}
	rows, _ := res.RowsAffected()
	return rows > 0, nil
}

// MeanRating returns the average of all rated comments for a gallery,
// false when none carry a rating.
func (r *Repo) MeanRating(ctx context.Context, gid int64, token string) (float64, bool, error) {
	var mean sql.NullFloat64
	err := r.DB.QueryRowContext(ctx, `
		SELECT AVG(rating) FROM gallery_comments
		WHERE gid = ? AND token = ? AND rating IS NOT NULL
	`, gid, token).Scan(&mean)
	if err != nil {
		return 0, false, fmt.Errorf("mean rating: %w", err)
	}
	return mean.Float64, mean.Valid, nil
}

func scanComment(scan func(...any) error) (*models.Comment, error) {
	var comment models.Comment
	var rating sql.NullFloat64
	var text sql.NullString
	var ts time.Time

	if err := scan(&comment.ID, &comment.UserID, &comment.GID, &comment.Token, &rating, &text, &ts); err != nil {
		return nil, err
	}
	if rating.Valid {
		v := rating.Float64
		comment.Rating = &v
	}
	comment.Text = text.String
	comment.Timestamp = ts
	return &comment, nil
}
