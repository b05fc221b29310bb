package scraper

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"galleryhub/pkg/models"
)

type stubSource struct {
	name      string
	galleries []*models.GalleryInfo
	err       error
}

func (s *stubSource) Name() string { return s.name }

func (s *stubSource) FetchAll(ctx context.Context) ([]*models.GalleryInfo, error) {
	return s.galleries, s.err
}

func TestFetchAndMergeGroupsByIdentity(t *testing.T) {
	listRec := models.NewGalleryInfo(1, "c219d2cf41")
	listRec.Title = "From List"
	listRec.Rating = 4.0

	mirrorRec := models.NewGalleryInfo(1, "c219d2cf41")
	mirrorRec.Language = models.LangJapanese
	mirrorRec.Tags.Set("artist", []string{"x"})

	other := models.NewGalleryInfo(2, "aaaaaaaaaa")
	other.Title = "Other"

	agg := NewAggregator(
		&stubSource{name: "list", galleries: []*models.GalleryInfo{listRec, other}},
		&stubSource{name: "mirror", galleries: []*models.GalleryInfo{mirrorRec}},
	)

	result, err := agg.FetchAndMerge(context.Background())
	require.NoError(t, err)
	require.Len(t, result, 2)

	// sorted by gid
	merged := result[0]
	assert.Equal(t, int64(1), merged.GID)
	assert.Equal(t, "From List", merged.Title)
	assert.Equal(t, 4.0, merged.Rating)
	assert.Equal(t, models.LangJapanese, merged.Language)
	assert.Equal(t, []string{"x"}, merged.Tags.Get("artist"))
}

func TestFetchAndMergeLaterSourceWins(t *testing.T) {
	first := models.NewGalleryInfo(1, "c219d2cf41")
	first.Title = "stale"
	first.Pages = 20

	second := models.NewGalleryInfo(1, "c219d2cf41")
	second.Title = "fresh"

	agg := NewAggregator(
		&stubSource{name: "a", galleries: []*models.GalleryInfo{first}},
		&stubSource{name: "b", galleries: []*models.GalleryInfo{second}},
	)

	result, err := agg.FetchAndMerge(context.Background())
	require.NoError(t, err)
	require.Len(t, result, 1)

	assert.Equal(t, "fresh", result[0].Title)
	assert.Equal(t, 20, result[0].Pages, "field unknown to the later source survives")
}

func TestFetchAndMergeSurvivesBrokenSource(t *testing.T) {
	ok := models.NewGalleryInfo(1, "c219d2cf41")
	ok.Title = "kept"

	agg := NewAggregator(
		&stubSource{name: "broken", err: errors.New("boom")},
		&stubSource{name: "ok", galleries: []*models.GalleryInfo{ok}},
	)

	result, err := agg.FetchAndMerge(context.Background())
	require.NoError(t, err)
	require.Len(t, result, 1)
	assert.Equal(t, "kept", result[0].Title)
}

func TestFetchAndMergeSkipsBadTokens(t *testing.T) {
	bad := models.NewGalleryInfo(1, "NOT-A-TOKEN")
	agg := NewAggregator(&stubSource{name: "a", galleries: []*models.GalleryInfo{bad, nil}})

	result, err := agg.FetchAndMerge(context.Background())
	require.NoError(t, err)
	assert.Empty(t, result)
}

func TestFetchAndMergeDoesNotAliasSourceRecords(t *testing.T) {
	src := models.NewGalleryInfo(1, "c219d2cf41")
	src.Tags.Set("artist", []string{"x"})

	agg := NewAggregator(&stubSource{name: "a", galleries: []*models.GalleryInfo{src}})

	result, err := agg.FetchAndMerge(context.Background())
	require.NoError(t, err)
	require.Len(t, result, 1)

	result[0].Tags.Add("artist", "mutated")
	assert.Equal(t, []string{"x"}, src.Tags.Get("artist"))
}

func TestSourceMirrorFetchAll(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/galleries", r.URL.Path)
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`[
			{
				"gid": "1034509",
				"token": "c219d2cf41",
				"title": "Example Gallery",
				"category": "Manga",
				"posted": "1485650000",
				"rating": "4.50",
				"language": "Japanese",
				"expunged": true,
				"filecount": "24",
				"filesize": 2333088,
				"torrentcount": "2",
				"tags": ["artist:x", "parody:y", "loose"]
			},
			{"gid": "bad", "token": "c219d2cf41"},
			{"gid": "7", "token": "WRONG"}
		]`))
	}))
	defer srv.Close()

	src := NewSourceMirror(srv.URL)
	got, err := src.FetchAll(context.Background())
	require.NoError(t, err)
	require.Len(t, got, 1)

	g := got[0]
	assert.Equal(t, int64(1034509), g.GID)
	assert.Equal(t, "c219d2cf41", g.Token)
	assert.Equal(t, "Example Gallery", g.Title)
	assert.Equal(t, models.CategoryManga, g.Category)
	assert.Equal(t, int64(1485650000), g.Posted)
	assert.Equal(t, 4.5, g.Rating)
	assert.Equal(t, models.LangJapanese, g.Language)
	assert.True(t, g.Invalid)
	assert.Equal(t, 24, g.Pages)
	assert.Equal(t, int64(2333088), g.Size)
	assert.Equal(t, 2, g.TorrentCount)
	assert.Equal(t, []string{"x"}, g.Tags.Get("artist"))
	assert.Equal(t, []string{"loose"}, g.Tags.Get("misc"))
	assert.False(t, g.HasTitleJpn())
	assert.False(t, g.HasCoverRatio())
}

func TestSourceListFetchAllPaginates(t *testing.T) {
	pages := []string{
		`{"galleries": [
			{"gid": 1, "token": "c219d2cf41", "title": "One", "rating": 4.5, "pages": 20},
			{"gid": 2, "token": "aaaaaaaaaa", "title": "Two", "thumb_ratio": 0.7}
		], "total": 3}`,
		`{"galleries": [
			{"gid": 3, "token": "bbbbbbbbbb", "title_jpn": "三"}
		], "total": 3}`,
		`{"galleries": [], "total": 3}`,
	}
	call := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/galleries", r.URL.Path)
		w.Header().Set("Content-Type", "application/json")
		body := pages[len(pages)-1]
		if call < len(pages) {
			body = pages[call]
		}
		call++
		_, _ = w.Write([]byte(body))
	}))
	defer srv.Close()

	src := NewSourceList(srv.URL)
	got, err := src.FetchAll(context.Background())
	require.NoError(t, err)
	require.Len(t, got, 3)

	assert.Equal(t, "One", got[0].Title)
	assert.Equal(t, 4.5, got[0].Rating)
	assert.Equal(t, 20, got[0].Pages)
	assert.False(t, got[0].HasCoverRatio(), "absent ratio stays unknown")

	assert.Equal(t, 0.7, got[1].CoverRatio)
	assert.False(t, got[1].HasRating(), "absent rating stays NaN, not zero")
	assert.False(t, got[1].HasPages())

	assert.Equal(t, "三", got[2].TitleJpn)
	assert.False(t, got[2].HasTitle())
}

func TestParseFlatTagsOrder(t *testing.T) {
	m := parseFlatTags([]string{"parody:p", "artist:a1", "artist:a2", "", " misc-only "})
	assert.Equal(t, []string{"parody", "artist", "misc"}, m.Namespaces())
	assert.Equal(t, []string{"a1", "a2"}, m.Get("artist"))
	assert.Equal(t, []string{"misc-only"}, m.Get("misc"))
}
