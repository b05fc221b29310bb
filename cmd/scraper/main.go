package main

import (
	"context"
	"flag"
	"log"
	"time"

	"galleryhub/internal/notify"
	"galleryhub/internal/scraper"
	"galleryhub/pkg/database"
	"galleryhub/pkg/models"
)

func main() {
	var (
		listURL    = flag.String("list-url", "https://api.e-hentai.org", "base URL of the list API source")
		mirrorURL  = flag.String("mirror-url", "http://localhost:9000", "base URL of the local mirror source")
		notifyAddr = flag.String("notify-addr", "127.0.0.1:7071", "UDP notify server to publish updates to (empty disables)")
	)
	flag.Parse()

	ctx, cancel := context.WithTimeout(context.Background(), 60*time.Second)
	defer cancel()

	db := database.MustOpen(database.DefaultConfig())
	defer db.Close()

	// Ensure schema exists
	if err := database.Migrate(db); err != nil {
		log.Fatalf("db migrate failed: %v", err)
	}

	// List API source (live, partial records)
	srcList := scraper.NewSourceList(*listURL)

	// Local mirror source (demo-safe, richer records)
	srcMirror := scraper.NewSourceMirror(*mirrorURL)

	agg := scraper.NewAggregator(srcList, srcMirror)

	galleries, err := agg.FetchAndMerge(ctx)
	if err != nil {
		log.Fatalf("scrape failed: %v", err)
	}

	log.Printf("merged galleries: %d", len(galleries))

	if err := scraper.SaveToDatabase(ctx, db, galleries); err != nil {
		log.Fatalf("save failed: %v", err)
	}

	log.Printf("✅ database populated at %s", database.DefaultConfig().Path)

	if *notifyAddr != "" {
		log.Printf("publishing %d update notifications to %s", publishUpdates(*notifyAddr, galleries), *notifyAddr)
	}
}

// publishUpdates tells the notify server about every merged record so it
// can fan gallery_update datagrams out to subscribed clients. Failures are
// logged and skipped; the scrape itself already succeeded.
func publishUpdates(addr string, galleries []*models.GalleryInfo) int {
	published := 0
	for _, g := range galleries {
		pages := 0
		if g.HasPages() {
			pages = g.Pages
		}
		if err := notify.Publish(addr, g.GID, g.Token, pages); err != nil {
			log.Printf("notify %d/%s failed: %v", g.GID, g.Token, err)
			continue
		}
		published++
	}
	return published
}
