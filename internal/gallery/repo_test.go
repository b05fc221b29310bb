package gallery

import (
	"context"
	"database/sql"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"galleryhub/internal/scraper"
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

func seed(t *testing.T, db *sql.DB, galleries ...*models.GalleryInfo) {
	t.Helper()
	require.NoError(t, scraper.SaveToDatabase(context.Background(), db, galleries))
}

func TestGetReturnsAPIView(t *testing.T) {
	db := openTestDB(t)
	repo := NewRepo(db)

	g := models.NewGalleryInfo(1, "c219d2cf41")
	g.Title = "A Gallery"
	g.Category = models.CategoryManga
	g.Rating = 4.5
	g.Tags.Set("artist", []string{"x"})
	seed(t, db, g)

	got, err := repo.Get(context.Background(), 1, "c219d2cf41")
	require.NoError(t, err)
	require.NotNil(t, got)

	assert.Equal(t, "A Gallery", got.Title)
	assert.Equal(t, "manga", got.Category)
	if assert.NotNil(t, got.Rating) {
		assert.Equal(t, 4.5, *got.Rating)
	}
	// unknowns are omitted from the view, not surfaced as sentinels
	assert.Nil(t, got.Pages)
	assert.Nil(t, got.CoverRatio)
	assert.Equal(t, "", got.Language)
	assert.Equal(t, []string{"x"}, got.Tags.Get("artist"))
}

func TestGetMissingReturnsNil(t *testing.T) {
	repo := NewRepo(openTestDB(t))

	got, err := repo.Get(context.Background(), 999, "c219d2cf41")
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestListFilters(t *testing.T) {
	db := openTestDB(t)
	repo := NewRepo(db)

	manga := models.NewGalleryInfo(1, "c219d2cf41")
	manga.Title = "Manga Item"
	manga.Category = models.CategoryManga
	manga.Language = models.LangEnglish
	manga.Rating = 4.0
	manga.Posted = 100

	doujin := models.NewGalleryInfo(2, "aaaaaaaaaa")
	doujin.Title = "Doujin Item"
	doujin.Category = models.CategoryDoujinshi
	doujin.Language = models.LangJapanese
	doujin.Rating = 2.5
	doujin.Posted = 200

	gone := models.NewGalleryInfo(3, "bbbbbbbbbb")
	gone.Title = "Gone Item"
	gone.Invalid = true
	gone.Posted = 300

	seed(t, db, manga, doujin, gone)

	// default: expunged rows are hidden
	items, err := repo.List(context.Background(), ListQuery{})
	require.NoError(t, err)
	require.Len(t, items, 2)
	assert.Equal(t, int64(2), items[0].GID, "newest posted first")

	// include them on request
	total, err := repo.Count(context.Background(), ListQuery{Invalid: true})
	require.NoError(t, err)
	assert.Equal(t, 3, total)

	items, err = repo.List(context.Background(), ListQuery{Category: models.CategoryManga})
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, "Manga Item", items[0].Title)

	items, err = repo.List(context.Background(), ListQuery{Language: models.LangJapanese})
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, "Doujin Item", items[0].Title)

	items, err = repo.List(context.Background(), ListQuery{MinRating: 3.0})
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, "Manga Item", items[0].Title)

	items, err = repo.List(context.Background(), ListQuery{Q: "doujin"})
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, int64(2), items[0].GID)
}

func TestListPaginationClamps(t *testing.T) {
	db := openTestDB(t)
	repo := NewRepo(db)

	g := models.NewGalleryInfo(1, "c219d2cf41")
	g.Title = "Only"
	seed(t, db, g)

	items, err := repo.List(context.Background(), ListQuery{Limit: -5, Offset: -10})
	require.NoError(t, err)
	assert.Len(t, items, 1)
}
