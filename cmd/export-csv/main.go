package main

import (
	"context"
	"database/sql"
	"encoding/csv"
	"flag"
	"log"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"galleryhub/pkg/database"
	"galleryhub/pkg/models"
)

func main() {
	var (
		galleriesOut = flag.String("galleries", "data/galleries.csv", "output CSV path for galleries")
		favoritesOut = flag.String("favorites", "data/favorites.csv", "output CSV path for user favorites")
	)
	flag.Parse()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	db := database.MustOpen(database.DefaultConfig())
	defer db.Close()

	if err := database.Migrate(db); err != nil {
		log.Fatalf("db migrate failed: %v", err)
	}

	if err := exportGalleries(ctx, db, *galleriesOut); err != nil {
		log.Fatalf("export galleries failed: %v", err)
	}
	if err := exportFavorites(ctx, db, *favoritesOut); err != nil {
		log.Fatalf("export favorites failed: %v", err)
	}

	log.Printf("✅ exported galleries to %s and favorites to %s", *galleriesOut, *favoritesOut)
}

func exportGalleries(ctx context.Context, db *sql.DB, outPath string) error {
	if err := os.MkdirAll(filepath.Dir(outPath), 0o755); err != nil {
		return err
	}

	f, err := os.Create(outPath)
	if err != nil {
		return err
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if err := w.Write([]string{
		"gid", "token", "title", "title_jpn", "cover", "cover_url", "cover_ratio",
		"category", "posted", "uploader", "rating", "language", "favorite_slot",
		"invalid", "archiver_key", "pages", "size", "torrent_count", "tags",
	}); err != nil {
		return err
	}

	rows, err := db.QueryContext(ctx, `
		SELECT gid, token, COALESCE(title, ''), COALESCE(title_jpn, ''),
		       COALESCE(cover, ''), COALESCE(cover_url, ''), cover_ratio,
		       category, posted, COALESCE(uploader, ''), rating, language,
		       favorite_slot, invalid, COALESCE(archiver_key, ''), pages, size,
		       torrent_count, tags
		FROM galleries
		ORDER BY gid
	`)
	if err != nil {
		return err
	}
	defer rows.Close()

	for rows.Next() {
		var (
			gid          int64
			token        string
			title        string
			titleJpn     string
			cover        string
			coverURL     string
			coverRatio   sql.NullFloat64
			category     int
			posted       int64
			uploader     string
			rating       sql.NullFloat64
			language     int
			favoriteSlot int
			invalid      bool
			archiverKey  string
			pages        int
			size         int64
			torrentCount int
			tagsJSON     string
		)

		if err := rows.Scan(&gid, &token, &title, &titleJpn, &cover, &coverURL,
			&coverRatio, &category, &posted, &uploader, &rating, &language,
			&favoriteSlot, &invalid, &archiverKey, &pages, &size,
			&torrentCount, &tagsJSON); err != nil {
			return err
		}

		if err := w.Write([]string{
			strconv.FormatInt(gid, 10),
			token,
			title,
			titleJpn,
			cover,
			coverURL,
			floatOrEmpty(coverRatio),
			models.Category(category).String(),
			positiveOrEmpty(posted),
			uploader,
			floatOrEmpty(rating),
			models.Language(language).String(),
			sentinelOrValue(int64(favoriteSlot), -1),
			strconv.FormatBool(invalid),
			archiverKey,
			sentinelOrValue(int64(pages), -1),
			sentinelOrValue(size, -1),
			positiveOrEmpty(int64(torrentCount)),
			tagsJSON,
		}); err != nil {
			return err
		}
	}
	if err := rows.Err(); err != nil {
		return err
	}

	w.Flush()
	return w.Error()
}

func exportFavorites(ctx context.Context, db *sql.DB, outPath string) error {
	if err := os.MkdirAll(filepath.Dir(outPath), 0o755); err != nil {
		return err
	}

	f, err := os.Create(outPath)
	if err != nil {
		return err
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if err := w.Write([]string{"user_id", "gid", "token", "slot", "note", "updated_at"}); err != nil {
		return err
	}

	rows, err := db.QueryContext(ctx, `
		SELECT user_id, gid, token, slot, COALESCE(note, ''), updated_at
		FROM user_favorites
		ORDER BY updated_at DESC
	`)
	if err != nil {
		return err
	}
	defer rows.Close()

	for rows.Next() {
		var (
			userID    string
			gid       int64
			token     string
			slot      int
			note      string
			updatedAt time.Time
		)

		if err := rows.Scan(&userID, &gid, &token, &slot, &note, &updatedAt); err != nil {
			return err
		}

		if err := w.Write([]string{
			userID,
			strconv.FormatInt(gid, 10),
			token,
			strconv.Itoa(slot),
			note,
			updatedAt.Format(time.RFC3339),
		}); err != nil {
			return err
		}
	}
	if err := rows.Err(); err != nil {
		return err
	}

	w.Flush()
	return w.Error()
}

// floatOrEmpty hides NULL columns, which stand for unknown values.
func floatOrEmpty(v sql.NullFloat64) string {
	if !v.Valid {
		return ""
	}
	return strconv.FormatFloat(v.Float64, 'f', -1, 64)
}

func positiveOrEmpty(n int64) string {
	if n <= 0 {
		return ""
	}
	return strconv.FormatInt(n, 10)
}

// sentinelOrValue hides the given sentinel so a re-import leaves the
// field untouched.
func sentinelOrValue(n, sentinel int64) string {
	if n == sentinel {
		return ""
	}
	return strconv.FormatInt(n, 10)
}
