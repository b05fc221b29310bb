package scraper

import (
	"context"
	"database/sql"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"galleryhub/pkg/database"
	"galleryhub/pkg/models"
)

func openTestDB(t *testing.T) *sql.DB {
	t.Helper()
	cfg := database.Config{Path: filepath.Join(t.TempDir(), "test.db")}
	db, err := database.Open(cfg)
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	require.NoError(t, database.Migrate(db))
	return db
}

func TestSaveToDatabaseRoundTripsSentinels(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()

	g := models.NewGalleryInfo(1, "c219d2cf41")
	g.Title = "Round Trip"
	g.Rating = 4.5
	g.Tags.Set("artist", []string{"x"})
	// CoverRatio stays NaN, Pages stays -1, TorrentCount stays 0

	require.NoError(t, SaveToDatabase(ctx, db, []*models.GalleryInfo{g}))

	tx, err := db.BeginTx(ctx, nil)
	require.NoError(t, err)
	defer tx.Rollback()

	stored, err := loadGallery(ctx, tx, 1, "c219d2cf41")
	require.NoError(t, err)
	require.NotNil(t, stored)

	assert.Equal(t, "Round Trip", stored.Title)
	assert.Equal(t, 4.5, stored.Rating)
	assert.False(t, stored.HasCoverRatio(), "NaN survives as NaN")
	assert.Equal(t, -1, stored.Pages)
	assert.Equal(t, int64(-1), stored.Size)
	assert.Equal(t, 0, stored.TorrentCount)
	assert.Equal(t, -1, stored.FavoriteSlot)
	assert.True(t, stored.Tags.Equal(g.Tags))
}

func TestSaveToDatabaseMergesIntoStoredRow(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()

	first := models.NewGalleryInfo(1, "c219d2cf41")
	first.Title = "Known Title"
	first.Pages = 24
	require.NoError(t, SaveToDatabase(ctx, db, []*models.GalleryInfo{first}))

	// a later partial scrape that knows nothing about title or pages
	second := models.NewGalleryInfo(1, "c219d2cf41")
	second.Language = models.LangEnglish
	second.Invalid = true
	require.NoError(t, SaveToDatabase(ctx, db, []*models.GalleryInfo{second}))

	tx, err := db.BeginTx(ctx, nil)
	require.NoError(t, err)
	defer tx.Rollback()

	stored, err := loadGallery(ctx, tx, 1, "c219d2cf41")
	require.NoError(t, err)
	require.NotNil(t, stored)

	assert.Equal(t, "Known Title", stored.Title, "stored fields are never erased")
	assert.Equal(t, 24, stored.Pages)
	assert.Equal(t, models.LangEnglish, stored.Language)
	assert.True(t, stored.Invalid)
}

func TestSaveToDatabaseInvalidStaysSet(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()

	g := models.NewGalleryInfo(1, "c219d2cf41")
	g.Invalid = true
	require.NoError(t, SaveToDatabase(ctx, db, []*models.GalleryInfo{g}))

	clean := models.NewGalleryInfo(1, "c219d2cf41")
	clean.Invalid = false
	require.NoError(t, SaveToDatabase(ctx, db, []*models.GalleryInfo{clean}))

	tx, err := db.BeginTx(ctx, nil)
	require.NoError(t, err)
	defer tx.Rollback()

	stored, err := loadGallery(ctx, tx, 1, "c219d2cf41")
	require.NoError(t, err)
	require.NotNil(t, stored)
	assert.True(t, stored.Invalid)
}
