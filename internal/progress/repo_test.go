package progress

import (
	"context"
	"database/sql"
	"path/filepath"
	"testing"
	"time"

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

	_, err = db.Exec(`
		INSERT INTO users (id, username, email, password_hash)
		VALUES ('u1', 'reader', 'reader@example.com', 'x')
	`)
	require.NoError(t, err)
	return db
}

func TestHistoryIsAppendOnly(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()
	repo := NewRepo(db)

	base := time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)
	for i, page := range []int{3, 7, 12} {
		entry := models.ReadProgress{
			UserID: "u1", GID: 42, Token: "c219d2cf41",
			Page: page, At: base.Add(time.Duration(i) * time.Minute),
		}
		require.NoError(t, repo.Add(ctx, entry))
	}

	items, total, err := repo.List(ctx, "u1", 42, "c219d2cf41", 50, 0)
	require.NoError(t, err)
	assert.Equal(t, 3, total)
	require.Len(t, items, 3)
	// newest first
	assert.Equal(t, 12, items[0].Page)
	assert.Equal(t, 3, items[2].Page)
}

func TestLatestReturnsNewestEntry(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()
	repo := NewRepo(db)

	got, err := repo.Latest(ctx, "u1", 42, "c219d2cf41")
	require.NoError(t, err)
	assert.Nil(t, got)

	base := time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)
	require.NoError(t, repo.Add(ctx, models.ReadProgress{UserID: "u1", GID: 42, Token: "c219d2cf41", Page: 3, At: base}))
	require.NoError(t, repo.Add(ctx, models.ReadProgress{UserID: "u1", GID: 42, Token: "c219d2cf41", Page: 9, At: base.Add(time.Hour)}))

	got, err = repo.Latest(ctx, "u1", 42, "c219d2cf41")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, 9, got.Page)
}

func TestHistoryScopedToIdentity(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()
	repo := NewRepo(db)

	require.NoError(t, repo.Add(ctx, models.ReadProgress{UserID: "u1", GID: 1, Token: "aaaaaaaaaa", Page: 1}))
	require.NoError(t, repo.Add(ctx, models.ReadProgress{UserID: "u1", GID: 1, Token: "bbbbbbbbbb", Page: 2}))

	// same gid, different token: distinct histories
	_, total, err := repo.List(ctx, "u1", 1, "aaaaaaaaaa", 50, 0)
	require.NoError(t, err)
	assert.Equal(t, 1, total)
}
