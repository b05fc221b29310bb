package scraper

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"galleryhub/pkg/models"
)

// SourceMirror reads a metadata mirror with a different JSON shape: numbers
// arrive as strings and tags as a flat "namespace:tag" list. The mirror
// knows metadata the list API does not (cover fingerprint, tags, language,
// size, torrent count, archiver key, expunged flag).
type SourceMirror struct {
	BaseURL string
	Client  *http.Client
}

// NewSourceMirror creates a new SourceMirror.
func NewSourceMirror(baseURL string) *SourceMirror {
	return &SourceMirror{
		BaseURL: baseURL,
		Client: &http.Client{
			Timeout: 10 * time.Second,
		},
	}
}

func (s *SourceMirror) Name() string {
	return "mirror"
}

// MirrorGallery is one entry of the mirror's GET /galleries response.
// cmd/export-mirror writes this same shape.
type MirrorGallery struct {
	GID          string   `json:"gid"`
	Token        string   `json:"token"`
	Title        string   `json:"title"`
	TitleJpn     string   `json:"title_jpn"`
	Cover        string   `json:"cover"`
	Thumb        string   `json:"thumb"`
	Category     string   `json:"category"`
	Posted       string   `json:"posted"`
	Uploader     string   `json:"uploader"`
	Rating       string   `json:"rating"`
	Language     string   `json:"language"`
	Expunged     bool     `json:"expunged"`
	ArchiverKey  string   `json:"archiver_key"`
	FileCount    string   `json:"filecount"`
	FileSize     int64    `json:"filesize"`
	TorrentCount string   `json:"torrentcount"`
	Tags         []string `json:"tags"`
}

func (s *SourceMirror) FetchAll(ctx context.Context) ([]*models.GalleryInfo, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.BaseURL+"/galleries", nil)
	if err != nil {
		return nil, fmt.Errorf("mirror: build request: %w", err)
	}

	resp, err := s.Client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("mirror: do request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("mirror: status %d: %s", resp.StatusCode, string(body))
	}

	var raw []MirrorGallery
	if err := json.NewDecoder(resp.Body).Decode(&raw); err != nil {
		return nil, fmt.Errorf("mirror: decode json: %w", err)
	}

	result := make([]*models.GalleryInfo, 0, len(raw))
	for _, r := range raw {
		gid, err := strconv.ParseInt(strings.TrimSpace(r.GID), 10, 64)
		if err != nil || gid == 0 || !models.ValidToken(r.Token) {
			continue
		}

		g := models.NewGalleryInfo(gid, r.Token)
		g.Title = r.Title
		g.TitleJpn = r.TitleJpn
		g.Cover = r.Cover
		g.CoverURL = r.Thumb
		g.Category = models.ParseCategory(r.Category)
		g.Posted = parseInt64OrZero(r.Posted)
		g.Uploader = r.Uploader
		if rating, err := strconv.ParseFloat(strings.TrimSpace(r.Rating), 64); err == nil && rating > 0 {
			g.Rating = rating
		}
		g.Language = models.ParseLanguage(r.Language)
		g.Invalid = r.Expunged
		g.ArchiverKey = r.ArchiverKey
		if pages := parseIntOrZero(r.FileCount); pages > 0 {
			g.Pages = pages
		}
		if r.FileSize > 0 {
			g.Size = r.FileSize
		}
		g.TorrentCount = parseIntOrZero(r.TorrentCount)
		g.Tags = parseFlatTags(r.Tags)

		result = append(result, g)
	}
	return result, nil
}

// parseFlatTags turns ["artist:x", "parody:y", "loose"] into an ordered tag
// map. Tags without a namespace go under "misc".
func parseFlatTags(flat []string) models.TagMap {
	var m models.TagMap
	for _, raw := range flat {
		raw = strings.TrimSpace(raw)
		if raw == "" {
			continue
		}
		namespace, tag, found := strings.Cut(raw, ":")
		if !found || namespace == "" {
			m.Add("misc", raw)
			continue
		}
		m.Add(namespace, tag)
	}
	return m
}

func parseIntOrZero(s string) int {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0
	}
	return n
}

func parseInt64OrZero(s string) int64 {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0
	}
	n, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return 0
	}
	return n
}
