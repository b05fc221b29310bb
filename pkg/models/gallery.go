package models

import (
	"math"
	"regexp"
)

var tokenPattern = regexp.MustCompile(`^[0-9a-f]{10}$`)

// ValidToken reports whether s looks like a gallery token.
// Tokens are lowercase hex, exactly 10 characters.
func ValidToken(s string) bool {
	return tokenPattern.MatchString(s)
}

// GalleryInfo is the canonical, internal form of one gallery as currently known.
//
// No single source can observe every field: the list API, the mirror and CSV
// imports each fill a different subset and leave the rest at the field's
// "unknown" value. internal/reconcile combines partial records into a more
// complete one.
//
// Unknown markers per field:
//   - strings: ""
//   - CoverRatio, Rating: NaN
//   - Category, Language: CategoryUnknown / LangUnknown
//   - Posted: 0
//   - FavoriteSlot, Pages, Size: -1
//   - TorrentCount: 0 (a real count of zero is indistinguishable, by design)
//   - Tags: empty
type GalleryInfo struct {
	// GID and Token together identify the gallery across all sources.
	// Set at construction, never changed by a merge.
	GID   int64  `json:"gid"`
	Token string `json:"token"`

	// Title may be empty when only the Japanese title is known.
	// At least one of Title / TitleJpn must be known at the application level.
	Title    string `json:"title,omitempty"`
	TitleJpn string `json:"title_jpn,omitempty"`

	// Cover is the fingerprint of the first image,
	// "[sha1]-[size]-[width]-[height]-[format]". Opaque to this package.
	Cover    string `json:"cover,omitempty"`
	CoverURL string `json:"cover_url,omitempty"`
	// CoverRatio is cover width / cover height.
	CoverRatio float64 `json:"-"`

	Category Category `json:"category,omitempty"`
	// Posted is the upload time as a unix timestamp.
	Posted   int64  `json:"posted,omitempty"`
	Uploader string `json:"uploader,omitempty"`
	// Rating ranges over [0.5, 5.0].
	Rating   float64  `json:"-"`
	Language Language `json:"language,omitempty"`

	// FavoriteSlot ranges over [-1, 9]; -1 means not favorited.
	FavoriteSlot int `json:"favorite_slot,omitempty"`

	// Invalid marks a gallery that was expunged, deleted or replaced.
	// Monotonic: once true it never reverts.
	Invalid bool `json:"invalid,omitempty"`

	ArchiverKey string `json:"archiver_key,omitempty"`

	Pages int   `json:"pages,omitempty"`
	Size  int64 `json:"size,omitempty"`

	TorrentCount int `json:"torrent_count,omitempty"`

	Tags TagMap `json:"tags"`
}

// NewGalleryInfo returns a record with the given identity and every other
// field at its unknown value.
func NewGalleryInfo(gid int64, token string) *GalleryInfo {
	return &GalleryInfo{
		GID:          gid,
		Token:        token,
		CoverRatio:   math.NaN(),
		Rating:       math.NaN(),
		FavoriteSlot: -1,
		Pages:        -1,
		Size:         -1,
	}
}

// SameEntity reports whether g and other describe the same gallery.
// Only (GID, Token) participate in identity; tokens match case-sensitively.
func (g *GalleryInfo) SameEntity(other *GalleryInfo) bool {
	return other != nil && g.GID == other.GID && g.Token == other.Token
}

func (g *GalleryInfo) HasTitle() bool        { return g.Title != "" }
func (g *GalleryInfo) HasTitleJpn() bool     { return g.TitleJpn != "" }
func (g *GalleryInfo) HasCover() bool        { return g.Cover != "" }
func (g *GalleryInfo) HasCoverURL() bool     { return g.CoverURL != "" }
func (g *GalleryInfo) HasCoverRatio() bool   { return !math.IsNaN(g.CoverRatio) }
func (g *GalleryInfo) HasCategory() bool     { return g.Category != CategoryUnknown }
func (g *GalleryInfo) HasPosted() bool       { return g.Posted != 0 }
func (g *GalleryInfo) HasUploader() bool     { return g.Uploader != "" }
func (g *GalleryInfo) HasRating() bool       { return !math.IsNaN(g.Rating) }
func (g *GalleryInfo) HasLanguage() bool     { return g.Language != LangUnknown }
func (g *GalleryInfo) HasFavoriteSlot() bool { return g.FavoriteSlot != -1 }
func (g *GalleryInfo) HasArchiverKey() bool  { return g.ArchiverKey != "" }
func (g *GalleryInfo) HasPages() bool        { return g.Pages != -1 }
func (g *GalleryInfo) HasSize() bool         { return g.Size != -1 }

// HasTorrents reports a nonzero torrent count. Zero doubles as the unknown
// marker for this field.
func (g *GalleryInfo) HasTorrents() bool { return g.TorrentCount != 0 }

// Clone returns a deep copy; the copy's tag map shares nothing with g's.
func (g *GalleryInfo) Clone() *GalleryInfo {
	if g == nil {
		return nil
	}
	out := *g
	out.Tags = g.Tags.Clone()
	return &out
}
