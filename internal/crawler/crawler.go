// Package crawler walks one worker's partition of the category tree,
// extracting part numbers and distributor rows into the shared accumulator.
package crawler

import (
	"context"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	log "github.com/sirupsen/logrus"

	"github.com/snaidu20/Supply-chain-Predicive-system/internal/config"
	"github.com/snaidu20/Supply-chain-Predicive-system/internal/extract"
	"github.com/snaidu20/Supply-chain-Predicive-system/internal/normalize"
	"github.com/snaidu20/Supply-chain-Predicive-system/internal/store"
)

const subcategorySelector = "a[href*='/parametric/']"

// Renderer is the narrow rendering-engine surface the traversal consumes.
type Renderer interface {
	Render(ctx context.Context, url string, settle time.Duration) (*extract.Snapshot, error)
}

// Crawler traverses a category tree depth-first. It owns its visited set;
// only the accumulator is shared with other workers.
type Crawler struct {
	renderer Renderer
	acc      *store.Accumulator
	cfg      config.ScraperConfig
	visited  map[string]bool
}

func New(renderer Renderer, acc *store.Accumulator, cfg config.ScraperConfig) *Crawler {
	return &Crawler{
		renderer: renderer,
		acc:      acc,
		cfg:      cfg,
		visited:  make(map[string]bool),
	}
}

type target struct {
	url  string
	path string
}

// Crawl walks the category tree rooted at startURL. An explicit work stack
// bounds stack depth on deep or cyclic catalogs; the visited set guarantees
// each address is processed at most once per run. Failures anywhere are
// branch-local: they never abort sibling or ancestor traversal.
func (c *Crawler) Crawl(ctx context.Context, startURL, categoryPath string) {
	stack := []target{{url: startURL, path: categoryPath}}

	for len(stack) > 0 {
		if ctx.Err() != nil {
			return
		}

		t := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		key := normalizeAddress(t.url)
		if c.visited[key] || c.acc.Full() {
			continue
		}
		c.visited[key] = true

		log.Infof("scraping [%d] %s", len(c.visited), t.path)

		snap, err := c.renderer.Render(ctx, t.url, c.categorySettle())
		if err != nil {
			log.Warnf("error in %s: %v", t.path, err)
			continue
		}

		c.processMPNs(ctx, snap, t.path)

		// Depth-first: push subcategories of the original category page.
		for _, sub := range c.subcategories(snap, t.path) {
			if !c.visited[normalizeAddress(sub.url)] {
				stack = append(stack, sub)
			}
		}
	}
}

// processMPNs extracts validated part numbers from a category page and
// harvests each one's results page into the accumulator.
func (c *Crawler) processMPNs(ctx context.Context, snap *extract.Snapshot, categoryPath string) {
	mpns := extract.ExtractMPNs(snap)
	log.Infof("processing %d MPNs in %s", len(mpns), categoryPath)

	for i, mpn := range mpns {
		if ctx.Err() != nil {
			return
		}

		log.Infof("[%d/%d] %s", i+1, len(mpns), mpn)

		resultsSnap, err := c.renderer.Render(ctx, c.cfg.SearchURL(mpn), c.searchSettle())
		if err != nil {
			log.Warnf("%s: %v", mpn, err)
			continue
		}

		if extract.NoManufacturers(resultsSnap) {
			log.Infof("%s: no manufacturers, skipping", mpn)
			continue
		}

		records := extract.ExtractRows(resultsSnap, mpn, categoryPath)
		added := c.acc.Add(records)
		log.Infof("%s: added %d rows", mpn, added)
	}
}

// subcategories enumerates subcategory links on a category page, extending
// the category path with each link's cleaned name.
func (c *Crawler) subcategories(snap *extract.Snapshot, parentPath string) []target {
	var subs []target

	snap.Doc().Find(subcategorySelector).Each(func(_ int, a *goquery.Selection) {
		href, ok := a.Attr("href")
		text := strings.TrimSpace(a.Text())
		if !ok || !strings.Contains(href, "/parametric/") || len(text) <= 2 {
			return
		}

		subs = append(subs, target{
			url:  absoluteURL(c.cfg.BaseURL, snap.URL, href),
			path: parentPath + "/" + normalize.CleanCategory(text),
		})
	})

	return subs
}

func (c *Crawler) categorySettle() time.Duration {
	return time.Duration(c.cfg.CategorySettle) * time.Second
}

func (c *Crawler) searchSettle() time.Duration {
	return time.Duration(c.cfg.SearchSettle) * time.Second
}

// normalizeAddress keys the visited set: trailing slashes and surrounding
// whitespace do not make a new location.
func normalizeAddress(url string) string {
	return strings.TrimSuffix(strings.TrimSpace(url), "/")
}

func absoluteURL(baseURL, pageURL, href string) string {
	if strings.HasPrefix(href, "http://") || strings.HasPrefix(href, "https://") {
		return href
	}
	if strings.HasPrefix(href, "/") {
		return baseURL + href
	}
	return pageURL + "/" + href
}
