package main

import (
	"context"
	"database/sql"
	"encoding/csv"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"galleryhub/internal/scraper"
	"galleryhub/pkg/database"
	"galleryhub/pkg/models"
)

func main() {
	var (
		galleriesIn = flag.String("galleries", "data/galleries.csv", "input CSV path for galleries")
		favoritesIn = flag.String("favorites", "data/favorites.csv", "input CSV path for user favorites")
	)
	flag.Parse()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	db := database.MustOpen(database.DefaultConfig())
	defer db.Close()

	if err := database.Migrate(db); err != nil {
		log.Fatalf("db migrate failed: %v", err)
	}

	if err := importGalleries(ctx, db, *galleriesIn); err != nil {
		log.Fatalf("import galleries failed: %v", err)
	}
	if err := importFavorites(ctx, db, *favoritesIn); err != nil {
		log.Fatalf("import favorites failed: %v", err)
	}

	log.Printf("✅ imported galleries from %s and favorites from %s", *galleriesIn, *favoritesIn)
}

// importGalleries parses rows into records and hands them to the shared
// persistence path, so partial CSV rows merge into existing records
// instead of clobbering them.
func importGalleries(ctx context.Context, db *sql.DB, path string) error {
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.FieldsPerRecord = -1

	header, err := readHeader(r)
	if err != nil {
		return err
	}

	var galleries []*models.GalleryInfo
	for {
		row, err := r.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return err
		}
		if len(row) == 0 {
			continue
		}

		gid, err := strconv.ParseInt(valueAt(header, row, "gid"), 10, 64)
		token := valueAt(header, row, "token")
		if err != nil || gid <= 0 || !models.ValidToken(token) {
			continue
		}

		g := models.NewGalleryInfo(gid, token)
		g.Title = valueAt(header, row, "title")
		g.TitleJpn = valueAt(header, row, "title_jpn")
		g.Cover = valueAt(header, row, "cover")
		g.CoverURL = valueAt(header, row, "cover_url")
		if ratio, err := strconv.ParseFloat(valueAt(header, row, "cover_ratio"), 64); err == nil {
			g.CoverRatio = ratio
		}
		g.Category = models.ParseCategory(valueAt(header, row, "category"))
		if posted, err := strconv.ParseInt(valueAt(header, row, "posted"), 10, 64); err == nil {
			g.Posted = posted
		}
		g.Uploader = valueAt(header, row, "uploader")
		if rating, err := strconv.ParseFloat(valueAt(header, row, "rating"), 64); err == nil {
			g.Rating = rating
		}
		g.Language = models.ParseLanguage(valueAt(header, row, "language"))
		if slot, err := strconv.Atoi(valueAt(header, row, "favorite_slot")); err == nil {
			g.FavoriteSlot = slot
		}
		g.Invalid = valueAt(header, row, "invalid") == "true"
		g.ArchiverKey = valueAt(header, row, "archiver_key")
		if pages, err := strconv.Atoi(valueAt(header, row, "pages")); err == nil {
			g.Pages = pages
		}
		if size, err := strconv.ParseInt(valueAt(header, row, "size"), 10, 64); err == nil {
			g.Size = size
		}
		if torrents, err := strconv.Atoi(valueAt(header, row, "torrent_count")); err == nil {
			g.TorrentCount = torrents
		}
		if tagsJSON := valueAt(header, row, "tags"); tagsJSON != "" {
			if err := json.Unmarshal([]byte(tagsJSON), &g.Tags); err != nil {
				return fmt.Errorf("parse tags for %d/%s: %w", gid, token, err)
			}
		}

		galleries = append(galleries, g)
	}

	return scraper.SaveToDatabase(ctx, db, galleries)
}

func importFavorites(ctx context.Context, db *sql.DB, path string) error {
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.FieldsPerRecord = -1

	header, err := readHeader(r)
	if err != nil {
		return err
	}

	stmt, err := db.PrepareContext(ctx, `
		INSERT INTO user_favorites (user_id, gid, token, slot, note, updated_at)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT(user_id, gid, token) DO UPDATE SET
			slot = excluded.slot,
			note = excluded.note,
			updated_at = excluded.updated_at
	`)
	if err != nil {
		return err
	}
	defer stmt.Close()

	for {
		row, err := r.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return err
		}
		if len(row) == 0 {
			continue
		}

		userID := valueAt(header, row, "user_id")
		gid, gidErr := strconv.ParseInt(valueAt(header, row, "gid"), 10, 64)
		token := valueAt(header, row, "token")
		if userID == "" || gidErr != nil || gid <= 0 || !models.ValidToken(token) {
			continue
		}

		slot, err := strconv.Atoi(valueAt(header, row, "slot"))
		if err != nil || slot < 0 || slot > 9 {
			return fmt.Errorf("invalid slot for %s/%d: %q", userID, gid, valueAt(header, row, "slot"))
		}

		updatedAt, err := parseTime(valueAt(header, row, "updated_at"))
		if err != nil {
			return fmt.Errorf("parse updated_at for %s/%d: %w", userID, gid, err)
		}
		if !updatedAt.Valid {
			updatedAt = sql.NullTime{Time: time.Now().UTC(), Valid: true}
		}

		if _, err := stmt.ExecContext(
			ctx,
			userID,
			gid,
			token,
			slot,
			nullString(valueAt(header, row, "note")),
			updatedAt,
		); err != nil {
			return err
		}
	}

	return nil
}

func readHeader(r *csv.Reader) (map[string]int, error) {
	row, err := r.Read()
	if err != nil {
		return nil, err
	}
	header := make(map[string]int, len(row))
	for idx, name := range row {
		header[strings.TrimSpace(strings.ToLower(name))] = idx
	}
	return header, nil
}

func valueAt(header map[string]int, row []string, key string) string {
	idx, ok := header[key]
	if !ok || idx >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[idx])
}

func parseTime(raw string) (sql.NullTime, error) {
	if raw == "" {
		return sql.NullTime{}, nil
	}
	t, err := time.Parse(time.RFC3339, raw)
	if err != nil {
		return sql.NullTime{}, err
	}
	return sql.NullTime{Time: t, Valid: true}, nil
}

func nullString(raw string) sql.NullString {
	if raw == "" {
		return sql.NullString{}
	}
	return sql.NullString{String: raw, Valid: true}
}
