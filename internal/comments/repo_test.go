package comments

import (
	"context"
	"database/sql"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"galleryhub/pkg/database"
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
		VALUES ('u1', 'critic', 'critic@example.com', 'x')
	`)
	require.NoError(t, err)
	return db
}

func TestCreateReturnsStoredRow(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()
	repo := NewRepo(db)

	rating := 4.5
	comment, err := repo.Create(ctx, "u1", 42, "c219d2cf41", &rating, "great scans")
	require.NoError(t, err)
	require.NotNil(t, comment)
	assert.NotZero(t, comment.ID)
	require.NotNil(t, comment.Rating)
	assert.Equal(t, 4.5, *comment.Rating)
	assert.Equal(t, "great scans", comment.Text)
	assert.False(t, comment.Timestamp.IsZero())
}

func TestTextOnlyCommentHasNilRating(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()
	repo := NewRepo(db)

	comment, err := repo.Create(ctx, "u1", 42, "c219d2cf41", nil, "no rating from me")
	require.NoError(t, err)
	require.NotNil(t, comment)
	assert.Nil(t, comment.Rating)
}

func TestMeanRatingIgnoresTextOnly(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()
	repo := NewRepo(db)

	_, hasMean, err := repo.MeanRating(ctx, 42, "c219d2cf41")
	require.NoError(t, err)
	assert.False(t, hasMean)

	r1, r2 := 3.0, 5.0
	_, err = repo.Create(ctx, "u1", 42, "c219d2cf41", &r1, "")
	require.NoError(t, err)
	_, err = repo.Create(ctx, "u1", 42, "c219d2cf41", &r2, "")
	require.NoError(t, err)
	_, err = repo.Create(ctx, "u1", 42, "c219d2cf41", nil, "text only")
	require.NoError(t, err)

	mean, hasMean, err := repo.MeanRating(ctx, 42, "c219d2cf41")
	require.NoError(t, err)
	assert.True(t, hasMean)
	assert.InDelta(t, 4.0, mean, 1e-9)
}

func TestDeleteOnlyByOwner(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()
	repo := NewRepo(db)

	comment, err := repo.Create(ctx, "u1", 42, "c219d2cf41", nil, "mine")
	require.NoError(t, err)

	deleted, err := repo.Delete(ctx, comment.ID, "someone-else")
	require.NoError(t, err)
	assert.False(t, deleted)

	deleted, err = repo.Delete(ctx, comment.ID, "u1")
	require.NoError(t, err)
	assert.True(t, deleted)
}
