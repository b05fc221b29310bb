package gallery

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"

	"galleryhub/pkg/models"
)

type Repo struct {
	DB *sql.DB
}

type ListQuery struct {
	Q         string // keyword search in titles/uploader
	Category  models.Category
	Language  models.Language
	MinRating float64 // 0 = no filter
	Invalid   bool    // include expunged galleries
	Limit     int
	Offset    int
}

func NewRepo(db *sql.DB) *Repo {
	return &Repo{DB: db}
}

const galleryColumns = `
	gid, token, title, title_jpn, cover, cover_url, cover_ratio,
	category, posted, uploader, rating, language, favorite_slot,
	invalid, archiver_key, pages, size, torrent_count, tags
`

func (r *Repo) Get(ctx context.Context, gid int64, token string) (*models.GalleryDB, error) {
	row := r.DB.QueryRowContext(ctx, `
		SELECT `+galleryColumns+`
		FROM galleries
		WHERE gid = ? AND token = ?
	`, gid, token)

	g, err := scanGallery(row)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("scan get: %w", err)
	}
	view := models.GalleryView(g)
	return &view, nil
}

func (r *Repo) Count(ctx context.Context, q ListQuery) (int, error) {
	sqlStr, args := buildListSQL(q, true)
	row := r.DB.QueryRowContext(ctx, sqlStr, args...)
	var total int
	if err := row.Scan(&total); err != nil {
		return 0, fmt.Errorf("count scan: %w", err)
	}
	return total, nil
}

func (r *Repo) List(ctx context.Context, q ListQuery) ([]models.GalleryDB, error) {
	sqlStr, args := buildListSQL(q, false)

	rows, err := r.DB.QueryContext(ctx, sqlStr, args...)
	if err != nil {
		return nil, fmt.Errorf("list query: %w", err)
	}
	defer rows.Close()

	out := make([]models.GalleryDB, 0, q.Limit)
	for rows.Next() {
		g, err := scanGallery(rows)
		if err != nil {
			return nil, fmt.Errorf("list scan: %w", err)
		}
		out = append(out, models.GalleryView(g))
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows err: %w", err)
	}
	return out, nil
}

type scannable interface {
	Scan(dest ...any) error
}

// scanGallery restores a stored row to the canonical record, sentinels
// included (NULL REAL columns come back as NaN).
func scanGallery(row scannable) (*models.GalleryInfo, error) {
	var (
		gid                              int64
		token                            string
		title, titleJpn, cover, coverURL sql.NullString
		coverRatio, rating               sql.NullFloat64
		category, language               int
		posted                           int64
		uploader, archiverKey            sql.NullString
		favoriteSlot                     int
		invalid                          bool
		pages                            int
		size                             int64
		torrentCount                     int
		tagsJSON                         string
	)

	if err := row.Scan(
		&gid, &token, &title, &titleJpn, &cover, &coverURL, &coverRatio,
		&category, &posted, &uploader, &rating, &language, &favoriteSlot,
		&invalid, &archiverKey, &pages, &size, &torrentCount, &tagsJSON,
	); err != nil {
		return nil, err
	}

	g := models.NewGalleryInfo(gid, token)
	g.Title = title.String
	g.TitleJpn = titleJpn.String
	g.Cover = cover.String
	g.CoverURL = coverURL.String
	if coverRatio.Valid {
		g.CoverRatio = coverRatio.Float64
	}
	g.Category = models.Category(category)
	g.Posted = posted
	g.Uploader = uploader.String
	if rating.Valid {
		g.Rating = rating.Float64
	}
	g.Language = models.Language(language)
	g.FavoriteSlot = favoriteSlot
	g.Invalid = invalid
	g.ArchiverKey = archiverKey.String
	g.Pages = pages
	g.Size = size
	g.TorrentCount = torrentCount

	_ = json.Unmarshal([]byte(tagsJSON), &g.Tags)
	return g, nil
}

// buildListSQL builds either COUNT(*) or the SELECT list.
func buildListSQL(q ListQuery, countOnly bool) (string, []any) {
	baseSelect := `SELECT ` + galleryColumns + ` FROM galleries`
	if countOnly {
		baseSelect = `SELECT COUNT(*) FROM galleries`
	}

	var where []string
	var args []any

	if strings.TrimSpace(q.Q) != "" {
		where = append(where, "(LOWER(title) LIKE ? OR LOWER(title_jpn) LIKE ? OR LOWER(uploader) LIKE ?)")
		kw := "%" + strings.ToLower(strings.TrimSpace(q.Q)) + "%"
		args = append(args, kw, kw, kw)
	}

	if q.Category != models.CategoryUnknown {
		where = append(where, "category = ?")
		args = append(args, int(q.Category))
	}

	if q.Language != models.LangUnknown {
		where = append(where, "language = ?")
		args = append(args, int(q.Language))
	}

	if q.MinRating > 0 {
		where = append(where, "rating >= ?")
		args = append(args, q.MinRating)
	}

	if !q.Invalid {
		where = append(where, "invalid = 0")
	}

	sqlStr := baseSelect
	if len(where) > 0 {
		sqlStr += " WHERE " + strings.Join(where, " AND ")
	}

	if !countOnly {
		sqlStr += " ORDER BY posted DESC, gid DESC"
		sqlStr += " LIMIT ? OFFSET ?"
		limit := q.Limit
		if limit <= 0 || limit > 100 {
			limit = 20
		}
		offset := q.Offset
		if offset < 0 {
			offset = 0
		}
		args = append(args, limit, offset)
	}

	return sqlStr, args
}
