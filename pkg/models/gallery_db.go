package models

// GalleryDB is the stored/API view of a gallery row. Fields whose unknown
// marker cannot travel through JSON (NaN floats) or would be misread as real
// data (-1 counts) are pointers and simply omitted when unknown.
type GalleryDB struct {
	GID          int64    `json:"gid"`
	Token        string   `json:"token"`
	Title        string   `json:"title,omitempty"`
	TitleJpn     string   `json:"title_jpn,omitempty"`
	Cover        string   `json:"cover,omitempty"`
	CoverURL     string   `json:"cover_url,omitempty"`
	CoverRatio   *float64 `json:"cover_ratio,omitempty"`
	Category     string   `json:"category,omitempty"`
	Posted       int64    `json:"posted,omitempty"`
	Uploader     string   `json:"uploader,omitempty"`
	Rating       *float64 `json:"rating,omitempty"`
	Language     string   `json:"language,omitempty"`
	FavoriteSlot *int     `json:"favorite_slot,omitempty"`
	Invalid      bool     `json:"invalid,omitempty"`
	ArchiverKey  string   `json:"archiver_key,omitempty"`
	Pages        *int     `json:"pages,omitempty"`
	Size         *int64   `json:"size,omitempty"`
	TorrentCount int      `json:"torrent_count,omitempty"`
	Tags         TagMap   `json:"tags"`
}

// GalleryView converts the canonical record into its API view.
func GalleryView(g *GalleryInfo) GalleryDB {
	out := GalleryDB{
		GID:          g.GID,
		Token:        g.Token,
		Title:        g.Title,
		TitleJpn:     g.TitleJpn,
		Cover:        g.Cover,
		CoverURL:     g.CoverURL,
		Category:     g.Category.String(),
		Posted:       g.Posted,
		Uploader:     g.Uploader,
		Language:     g.Language.String(),
		Invalid:      g.Invalid,
		ArchiverKey:  g.ArchiverKey,
		TorrentCount: g.TorrentCount,
		Tags:         g.Tags.Clone(),
	}
	if g.HasCoverRatio() {
		v := g.CoverRatio
		out.CoverRatio = &v
	}
	if g.HasRating() {
		v := g.Rating
		out.Rating = &v
	}
	if g.HasFavoriteSlot() {
		v := g.FavoriteSlot
		out.FavoriteSlot = &v
	}
	if g.HasPages() {
		v := g.Pages
		out.Pages = &v
	}
	if g.HasSize() {
		v := g.Size
		out.Size = &v
	}
	return out
}
