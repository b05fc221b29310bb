package favorites

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

func seedUser(t *testing.T, db *sql.DB, id string) {
	t.Helper()
	_, err := db.Exec(`
		INSERT INTO users (id, username, email, password_hash)
		VALUES (?, ?, ?, 'x')
	`, id, "user-"+id, id+"@example.com")
	require.NoError(t, err)
}

func TestUpsertThenGet(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()
	repo := NewRepo(db)
	seedUser(t, db, "u1")

	item := models.FavoriteItem{UserID: "u1", GID: 42, Token: "c219d2cf41", Slot: 3, Note: "keep"}
	require.NoError(t, repo.Upsert(ctx, item))

	got, err := repo.Get(ctx, "u1", 42, "c219d2cf41")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, 3, got.Slot)
	assert.Equal(t, "keep", got.Note)
	assert.False(t, got.UpdatedAt.IsZero())
}

func TestUpsertReplacesSlot(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()
	repo := NewRepo(db)
	seedUser(t, db, "u1")

	require.NoError(t, repo.Upsert(ctx, models.FavoriteItem{UserID: "u1", GID: 42, Token: "c219d2cf41", Slot: 3}))
	require.NoError(t, repo.Upsert(ctx, models.FavoriteItem{UserID: "u1", GID: 42, Token: "c219d2cf41", Slot: 0}))

	got, err := repo.Get(ctx, "u1", 42, "c219d2cf41")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, 0, got.Slot)

	_, total, err := repo.List(ctx, "u1", -1, 20, 0)
	require.NoError(t, err)
	assert.Equal(t, 1, total)
}

func TestListFiltersBySlot(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()
	repo := NewRepo(db)
	seedUser(t, db, "u1")

	require.NoError(t, repo.Upsert(ctx, models.FavoriteItem{UserID: "u1", GID: 1, Token: "aaaaaaaaaa", Slot: 0}))
	require.NoError(t, repo.Upsert(ctx, models.FavoriteItem{UserID: "u1", GID: 2, Token: "bbbbbbbbbb", Slot: 5}))
	require.NoError(t, repo.Upsert(ctx, models.FavoriteItem{UserID: "u1", GID: 3, Token: "cccccccccc", Slot: 5}))

	items, total, err := repo.List(ctx, "u1", 5, 20, 0)
	require.NoError(t, err)
	assert.Equal(t, 2, total)
	assert.Len(t, items, 2)
	for _, it := range items {
		assert.Equal(t, 5, it.Slot)
	}
}

func TestDeleteReportsMissing(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()
	repo := NewRepo(db)
	seedUser(t, db, "u1")

	require.NoError(t, repo.Upsert(ctx, models.FavoriteItem{UserID: "u1", GID: 1, Token: "aaaaaaaaaa", Slot: 0}))

	deleted, err := repo.Delete(ctx, "u1", 1, "aaaaaaaaaa")
	require.NoError(t, err)
	assert.True(t, deleted)

	deleted, err = repo.Delete(ctx, "u1", 1, "aaaaaaaaaa")
	require.NoError(t, err)
	assert.False(t, deleted)

	got, err := repo.Get(ctx, "u1", 1, "aaaaaaaaaa")
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestUsersDoNotSeeEachOthersFavorites(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()
	repo := NewRepo(db)
	seedUser(t, db, "u1")
	seedUser(t, db, "u2")

	require.NoError(t, repo.Upsert(ctx, models.FavoriteItem{UserID: "u1", GID: 1, Token: "aaaaaaaaaa", Slot: 0}))

	_, total, err := repo.List(ctx, "u2", -1, 20, 0)
	require.NoError(t, err)
	assert.Equal(t, 0, total)
}
