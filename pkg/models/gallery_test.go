package models

import (
	"encoding/json"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewGalleryInfoDefaults(t *testing.T) {
	g := NewGalleryInfo(42, "c219d2cf41")

	assert.Equal(t, int64(42), g.GID)
	assert.Equal(t, "c219d2cf41", g.Token)

	assert.False(t, g.HasTitle())
	assert.False(t, g.HasTitleJpn())
	assert.False(t, g.HasCover())
	assert.False(t, g.HasCoverURL())
	assert.False(t, g.HasCoverRatio())
	assert.False(t, g.HasCategory())
	assert.False(t, g.HasPosted())
	assert.False(t, g.HasUploader())
	assert.False(t, g.HasRating())
	assert.False(t, g.HasLanguage())
	assert.False(t, g.HasFavoriteSlot())
	assert.False(t, g.HasArchiverKey())
	assert.False(t, g.HasPages())
	assert.False(t, g.HasSize())
	assert.False(t, g.HasTorrents())
	assert.False(t, g.Invalid)
	assert.True(t, g.Tags.IsEmpty())

	assert.True(t, math.IsNaN(g.CoverRatio))
	assert.True(t, math.IsNaN(g.Rating))
	assert.Equal(t, -1, g.FavoriteSlot)
	assert.Equal(t, -1, g.Pages)
	assert.Equal(t, int64(-1), g.Size)
	assert.Equal(t, 0, g.TorrentCount)
}

func TestEmptyTagsMarshalAsArray(t *testing.T) {
	g := NewGalleryInfo(42, "c219d2cf41")

	b, err := json.Marshal(g)
	require.NoError(t, err)
	assert.Contains(t, string(b), `"tags":[]`)
}

func TestSameEntity(t *testing.T) {
	g := NewGalleryInfo(1, "c219d2cf41")

	assert.True(t, g.SameEntity(NewGalleryInfo(1, "c219d2cf41")))
	assert.False(t, g.SameEntity(NewGalleryInfo(2, "c219d2cf41")))
	assert.False(t, g.SameEntity(NewGalleryInfo(1, "aaaaaaaaaa")))
	assert.False(t, g.SameEntity(NewGalleryInfo(1, "C219D2CF41")), "token match is case-sensitive")
	assert.False(t, g.SameEntity(nil))
}

func TestValidToken(t *testing.T) {
	assert.True(t, ValidToken("c219d2cf41"))
	assert.False(t, ValidToken("C219D2CF41"))
	assert.False(t, ValidToken("c219d2cf4"))
	assert.False(t, ValidToken("c219d2cf411"))
	assert.False(t, ValidToken(""))
	assert.False(t, ValidToken("c219d2cg41"))
}

func TestCloneIsDeep(t *testing.T) {
	g := NewGalleryInfo(1, "c219d2cf41")
	g.Tags.Set("artist", []string{"x"})

	dup := g.Clone()
	dup.Tags.Add("artist", "y")
	dup.Title = "changed"

	assert.Equal(t, []string{"x"}, g.Tags.Get("artist"))
	assert.Equal(t, "", g.Title)
}

func TestGalleryViewOmitsUnknowns(t *testing.T) {
	g := NewGalleryInfo(1, "c219d2cf41")
	g.Title = "t"
	g.Rating = 4.5
	g.Pages = 20

	v := GalleryView(g)

	assert.Nil(t, v.CoverRatio)
	assert.Nil(t, v.FavoriteSlot)
	assert.Nil(t, v.Size)
	assert.Equal(t, "", v.Category)
	assert.Equal(t, "", v.Language)
	if assert.NotNil(t, v.Rating) {
		assert.Equal(t, 4.5, *v.Rating)
	}
	if assert.NotNil(t, v.Pages) {
		assert.Equal(t, 20, *v.Pages)
	}
}

func TestParseCategoryRoundTrip(t *testing.T) {
	for _, c := range []Category{
		CategoryDoujinshi, CategoryManga, CategoryArtistCG, CategoryGameCG,
		CategoryImageSet, CategoryCosplay, CategoryNonH, CategoryWestern,
		CategoryMisc, CategoryPrivate,
	} {
		assert.Equal(t, c, ParseCategory(c.String()))
	}
	assert.Equal(t, CategoryUnknown, ParseCategory(""))
	assert.Equal(t, CategoryUnknown, ParseCategory("nonsense"))
	assert.Equal(t, CategoryNonH, ParseCategory("Non-H"))
}

func TestParseLanguage(t *testing.T) {
	assert.Equal(t, LangJapanese, ParseLanguage("Japanese"))
	assert.Equal(t, LangEnglish, ParseLanguage("en"))
	assert.Equal(t, LangUnknown, ParseLanguage(""))
	assert.Equal(t, LangOther, ParseLanguage("klingon"))
}
