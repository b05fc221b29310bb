package scraper

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"galleryhub/pkg/models"
)

// SourceList fetches the paginated gallery list API. The list endpoint only
// exposes what a list page shows: titles, cover URL and ratio, category,
// posted time, uploader, rating and page count. Tags, language, size and
// torrent info are not available here.
type SourceList struct {
	BaseURL string
	Client  *http.Client
	Limit   int // items per request
	Max     int // maximum items to fetch total (safety)
}

func NewSourceList(baseURL string) *SourceList {
	return &SourceList{
		BaseURL: baseURL,
		Client:  &http.Client{Timeout: 12 * time.Second},
		Limit:   50,
		Max:     200,
	}
}

func (s *SourceList) Name() string { return "list-api" }

type listResponse struct {
	Galleries []struct {
		GID        int64    `json:"gid"`
		Token      string   `json:"token"`
		Title      string   `json:"title"`
		TitleJpn   string   `json:"title_jpn"`
		Thumb      string   `json:"thumb"`
		ThumbRatio *float64 `json:"thumb_ratio"`
		Category   string   `json:"category"`
		Posted     int64    `json:"posted"`
		Uploader   string   `json:"uploader"`
		Rating     *float64 `json:"rating"`
		Pages      *int     `json:"pages"`
	} `json:"galleries"`
	Total  int `json:"total"`
	Limit  int `json:"limit"`
	Offset int `json:"offset"`
}

func (s *SourceList) FetchAll(ctx context.Context) ([]*models.GalleryInfo, error) {
	var all []*models.GalleryInfo

	offset := 0
	fetched := 0

	for fetched < s.Max {
		u, err := url.Parse(s.BaseURL + "/api/galleries")
		if err != nil {
			return nil, fmt.Errorf("list-api: base url: %w", err)
		}
		q := u.Query()
		q.Set("limit", fmt.Sprintf("%d", s.Limit))
		q.Set("offset", fmt.Sprintf("%d", offset))
		u.RawQuery = q.Encode()

		req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
		if err != nil {
			return nil, fmt.Errorf("list-api: build request: %w", err)
		}

		resp, err := s.Client.Do(req)
		if err != nil {
			return nil, fmt.Errorf("list-api: request: %w", err)
		}

		body, _ := io.ReadAll(resp.Body)
		resp.Body.Close()

		if resp.StatusCode != http.StatusOK {
			return nil, fmt.Errorf("list-api: status %d: %s", resp.StatusCode, string(body))
		}

		var page listResponse
		if err := json.Unmarshal(body, &page); err != nil {
			return nil, fmt.Errorf("list-api: decode: %w", err)
		}

		if len(page.Galleries) == 0 {
			break
		}

		for _, item := range page.Galleries {
			if item.GID == 0 || !models.ValidToken(item.Token) {
				continue
			}

			g := models.NewGalleryInfo(item.GID, item.Token)
			g.Title = item.Title
			g.TitleJpn = item.TitleJpn
			g.CoverURL = item.Thumb
			if item.ThumbRatio != nil {
				g.CoverRatio = *item.ThumbRatio
			}
			g.Category = models.ParseCategory(item.Category)
			g.Posted = item.Posted
			g.Uploader = item.Uploader
			if item.Rating != nil {
				g.Rating = *item.Rating
			}
			if item.Pages != nil {
				g.Pages = *item.Pages
			}

			all = append(all, g)
			fetched++
			if fetched >= s.Max {
				break
			}
		}

		offset += s.Limit
	}

	return all, nil
}
