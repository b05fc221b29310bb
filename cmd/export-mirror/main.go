package main

import (
	"context"
	"database/sql"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"galleryhub/internal/scraper"
	"galleryhub/pkg/database"
	"galleryhub/pkg/models"
)

func main() {
	var (
		outPath = flag.String("out", "data/mirror.json", "output JSON path")
		limit   = flag.Int("limit", 200, "how many galleries to export")
	)
	flag.Parse()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	db := database.MustOpen(database.DefaultConfig())
	defer db.Close()

	if err := database.Migrate(db); err != nil {
		log.Fatalf("db migrate failed: %v", err)
	}

	rows, err := db.QueryContext(ctx, `
		SELECT gid, token, COALESCE(title, ''), COALESCE(title_jpn, ''),
		       COALESCE(cover, ''), COALESCE(cover_url, ''), category, posted,
		       COALESCE(uploader, ''), rating, language, invalid,
		       COALESCE(archiver_key, ''), pages, size, torrent_count, tags
		FROM galleries
		ORDER BY gid
		LIMIT ?
	`, *limit)
	if err != nil {
		log.Fatalf("query failed: %v", err)
	}
	defer rows.Close()

	var out []scraper.MirrorGallery
	for rows.Next() {
		var (
			gid          int64
			token        string
			title        string
			titleJpn     string
			cover        string
			coverURL     string
			category     int
			posted       int64
			uploader     string
			rating       sql.NullFloat64
			language     int
			invalid      bool
			archiverKey  string
			pages        int
			size         int64
			torrentCount int
			tagsJSON     string
		)

		if err := rows.Scan(&gid, &token, &title, &titleJpn, &cover, &coverURL,
			&category, &posted, &uploader, &rating, &language, &invalid,
			&archiverKey, &pages, &size, &torrentCount, &tagsJSON); err != nil {
			log.Fatalf("scan failed: %v", err)
		}

		var tags models.TagMap
		_ = json.Unmarshal([]byte(tagsJSON), &tags)

		out = append(out, scraper.MirrorGallery{
			GID:          strconv.FormatInt(gid, 10),
			Token:        token,
			Title:        title,
			TitleJpn:     titleJpn,
			Cover:        cover,
			Thumb:        coverURL,
			Category:     models.Category(category).String(),
			Posted:       itoaOrEmpty(posted),
			Uploader:     uploader,
			Rating:       floatOrEmpty(rating),
			Language:     models.Language(language).String(),
			Expunged:     invalid,
			ArchiverKey:  archiverKey,
			FileCount:    itoaOrEmpty(int64(pages)),
			FileSize:     maxInt64(size, 0),
			TorrentCount: itoaOrEmpty(int64(torrentCount)),
			Tags:         flattenTags(tags),
		})
	}
	if err := rows.Err(); err != nil {
		log.Fatalf("rows error: %v", err)
	}

	if err := os.MkdirAll(filepath.Dir(*outPath), 0o755); err != nil {
		log.Fatalf("mkdir failed: %v", err)
	}

	b, err := json.MarshalIndent(out, "", "  ")
	if err != nil {
		log.Fatalf("marshal failed: %v", err)
	}

	if err := os.WriteFile(*outPath, b, 0o644); err != nil {
		log.Fatalf("write failed: %v", err)
	}

	log.Printf("✅ exported %d galleries to %s", len(out), *outPath)
}

// flattenTags turns the ordered tag map back into "namespace:tag" strings,
// the flat shape the mirror feed uses.
func flattenTags(m models.TagMap) []string {
	flat := []string{}
	for _, group := range m.Groups() {
		for _, tag := range group.Tags {
			flat = append(flat, fmt.Sprintf("%s:%s", group.Namespace, tag))
		}
	}
	return flat
}

// itoaOrEmpty renders positive numbers and hides sentinels, matching how
// the mirror feed leaves unknown numeric fields blank.
func itoaOrEmpty(n int64) string {
	if n <= 0 {
		return ""
	}
	return strconv.FormatInt(n, 10)
}

func floatOrEmpty(v sql.NullFloat64) string {
	if !v.Valid || v.Float64 <= 0 {
		return ""
	}
	return strconv.FormatFloat(v.Float64, 'f', -1, 64)
}

func maxInt64(a, b int64) int64 {
	if a > b {
		return a
	}
	return b
}
