package scraper

import (
	"context"
	"fmt"
	"log"
	"sort"

	"galleryhub/internal/reconcile"
	"galleryhub/pkg/models"
)

// Source is implemented by each external data source (list API, local mirror).
// Each source fetches its own format and maps it into partial GalleryInfo
// records; fields a source cannot observe stay at their unknown value.
type Source interface {
	Name() string
	FetchAll(ctx context.Context) ([]*models.GalleryInfo, error)
}

// Aggregator coordinates calls to multiple sources and reconciles their
// partial records into a single canonical set, keyed by gallery identity.
type Aggregator struct {
	Sources    []Source
	Reconciler *reconcile.Reconciler
}

// NewAggregator creates a new Aggregator with the given sources.
func NewAggregator(sources ...Source) *Aggregator {
	return &Aggregator{
		Sources:    sources,
		Reconciler: reconcile.New(),
	}
}

// FetchAndMerge fetches all galleries from all sources and folds records
// sharing a (gid, token) identity into one via the reconciler. Later sources
// win on conflicting known fields; known fields are never lost.
func (a *Aggregator) FetchAndMerge(ctx context.Context) ([]*models.GalleryInfo, error) {
	byKey := make(map[string]*models.GalleryInfo)

	for _, src := range a.Sources {
		log.Printf("[scraper] fetching from %s", src.Name())
		galleries, err := src.FetchAll(ctx)
		if err != nil {
			log.Printf("[scraper] source %s error: %v", src.Name(), err)
			// keep going: one broken source should not kill all scraping
			continue
		}

		for _, g := range galleries {
			if g == nil || !models.ValidToken(g.Token) {
				continue
			}
			key := identityKey(g)

			if existing, ok := byKey[key]; ok {
				if err := a.Reconciler.Merge(existing, g); err != nil {
					log.Printf("[scraper] merge %s from %s: %v", key, src.Name(), err)
				}
			} else {
				byKey[key] = g.Clone()
			}
		}
	}

	result := make([]*models.GalleryInfo, 0, len(byKey))
	for _, g := range byKey {
		result = append(result, g)
	}
	sort.Slice(result, func(i, j int) bool { return result[i].GID < result[j].GID })
	return result, nil
}

// identityKey groups records that describe the same gallery. Unlike fuzzy
// title matching, the (gid, token) pair is authoritative across all sources.
func identityKey(g *models.GalleryInfo) string {
	return fmt.Sprintf("%d/%s", g.GID, g.Token)
}
