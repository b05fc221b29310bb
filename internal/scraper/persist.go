package scraper

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"math"

	"galleryhub/internal/reconcile"
	"galleryhub/pkg/models"
)

// SaveToDatabase upserts reconciled galleries into the `galleries` table.
// Before writing, any already-stored row for the same (gid, token) is loaded
// and the new record is merged into it, so a partial scrape can only add to
// what the database knows, never erase it.
//
// NaN floats are stored as NULL and restored as NaN on load; integer
// sentinels (-1, 0) are stored as-is, so a round trip reproduces the record
// exactly.
func SaveToDatabase(ctx context.Context, db *sql.DB, galleries []*models.GalleryInfo) error {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO galleries (
			gid, token, title, title_jpn, cover, cover_url, cover_ratio,
			category, posted, uploader, rating, language, favorite_slot,
			invalid, archiver_key, pages, size, torrent_count, tags
		)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(gid, token) DO UPDATE SET
		  title = excluded.title,
		  title_jpn = excluded.title_jpn,
		  cover = excluded.cover,
		  cover_url = excluded.cover_url,
		  cover_ratio = excluded.cover_ratio,
		  category = excluded.category,
		  posted = excluded.posted,
		  uploader = excluded.uploader,
		  rating = excluded.rating,
		  language = excluded.language,
		  favorite_slot = excluded.favorite_slot,
		  invalid = excluded.invalid,
		  archiver_key = excluded.archiver_key,
		  pages = excluded.pages,
		  size = excluded.size,
		  torrent_count = excluded.torrent_count,
		  tags = excluded.tags
	`)
	if err != nil {
		return fmt.Errorf("prepare stmt: %w", err)
	}
	defer stmt.Close()

	for _, g := range galleries {
		if g == nil {
			continue
		}

		stored, err := loadGallery(ctx, tx, g.GID, g.Token)
		if err != nil {
			return fmt.Errorf("load existing %d/%s: %w", g.GID, g.Token, err)
		}

		merged := g
		if stored != nil {
			merged = stored
			if err := reconcile.Merge(merged, g); err != nil {
				return fmt.Errorf("merge %d/%s: %w", g.GID, g.Token, err)
			}
		}

		tagsJSON, err := json.Marshal(merged.Tags)
		if err != nil {
			return fmt.Errorf("marshal tags for %d/%s: %w", g.GID, g.Token, err)
		}

		if _, err := stmt.ExecContext(
			ctx,
			merged.GID,
			merged.Token,
			merged.Title,
			merged.TitleJpn,
			merged.Cover,
			merged.CoverURL,
			nullableFloat(merged.CoverRatio),
			int(merged.Category),
			merged.Posted,
			merged.Uploader,
			nullableFloat(merged.Rating),
			int(merged.Language),
			merged.FavoriteSlot,
			merged.Invalid,
			merged.ArchiverKey,
			merged.Pages,
			merged.Size,
			merged.TorrentCount,
			string(tagsJSON),
		); err != nil {
			return fmt.Errorf("exec upsert for %d/%s: %w", g.GID, g.Token, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit tx: %w", err)
	}
	return nil
}

// loadGallery reads one stored record back into its canonical in-memory
// form, sentinels included.
func loadGallery(ctx context.Context, tx *sql.Tx, gid int64, token string) (*models.GalleryInfo, error) {
	row := tx.QueryRowContext(ctx, `
		SELECT title, title_jpn, cover, cover_url, cover_ratio, category,
		       posted, uploader, rating, language, favorite_slot, invalid,
		       archiver_key, pages, size, torrent_count, tags
		FROM galleries
		WHERE gid = ? AND token = ?
	`, gid, token)

	g := models.NewGalleryInfo(gid, token)
	var (
		title, titleJpn, cover, coverURL sql.NullString
		coverRatio, rating               sql.NullFloat64
		category, language               int
		uploader, archiverKey            sql.NullString
		tagsJSON                         string
	)

	if err := row.Scan(
		&title, &titleJpn, &cover, &coverURL, &coverRatio, &category,
		&g.Posted, &uploader, &rating, &language, &g.FavoriteSlot, &g.Invalid,
		&archiverKey, &g.Pages, &g.Size, &g.TorrentCount, &tagsJSON,
	); err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("scan gallery: %w", err)
	}

	g.Title = title.String
	g.TitleJpn = titleJpn.String
	g.Cover = cover.String
	g.CoverURL = coverURL.String
	if coverRatio.Valid {
		g.CoverRatio = coverRatio.Float64
	}
	g.Category = models.Category(category)
	g.Uploader = uploader.String
	if rating.Valid {
		g.Rating = rating.Float64
	}
	g.Language = models.Language(language)
	g.ArchiverKey = archiverKey.String

	if err := json.Unmarshal([]byte(tagsJSON), &g.Tags); err != nil {
		return nil, fmt.Errorf("unmarshal tags: %w", err)
	}
	return g, nil
}

func nullableFloat(v float64) any {
	if math.IsNaN(v) {
		return nil
	}
	return v
}
