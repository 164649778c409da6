// Package service coordinates a run: category discovery, partitioning the
// categories across workers, periodic persistence, and the final drain.
package service

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/PuerkitoBio/goquery"
	log "github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"github.com/snaidu20/Supply-chain-Predicive-system/internal/browser"
	"github.com/snaidu20/Supply-chain-Predicive-system/internal/config"
	"github.com/snaidu20/Supply-chain-Predicive-system/internal/crawler"
	"github.com/snaidu20/Supply-chain-Predicive-system/internal/domain"
	"github.com/snaidu20/Supply-chain-Predicive-system/internal/extract"
	"github.com/snaidu20/Supply-chain-Predicive-system/internal/normalize"
	"github.com/snaidu20/Supply-chain-Predicive-system/internal/proxy"
	"github.com/snaidu20/Supply-chain-Predicive-system/internal/state"
	"github.com/snaidu20/Supply-chain-Predicive-system/internal/store"
)

// categorySelectors are tried in order during discovery; the rendered
// category index exposes its links inconsistently across layout variants.
var categorySelectors = []string{
	"a[href*='/parametric/']",
	"[href*='/parametric/']",
	".category a",
	".cat-link",
	".parametric-category a",
	"[data-category] a",
	"nav a[href*='/parametric/']",
}

// discoveryArtifacts are link names that are navigation chrome, not real
// categories.
var discoveryArtifacts = []string{"search", "page", "sub"}

type Service struct {
	cfg      *config.Config
	acc      *store.Accumulator
	primary  store.Sink
	mirrors  []store.Sink
	proxies  *proxy.Supplier
	progress state.Manager

	// saveMu serializes drains: the autosave ticker and the final drain
	// must never flush the same unsaved tail twice.
	saveMu sync.Mutex
}

func New(
	cfg *config.Config,
	acc *store.Accumulator,
	primary store.Sink,
	mirrors []store.Sink,
	proxies *proxy.Supplier,
	progress state.Manager,
) *Service {
	return &Service{
		cfg:      cfg,
		acc:      acc,
		primary:  primary,
		mirrors:  mirrors,
		proxies:  proxies,
		progress: progress,
	}
}

// Run executes one full scrape: discovery, partitioned traversal across a
// fixed worker count, autosave in the background, and a final forced drain.
func (s *Service) Run(ctx context.Context) error {
	categories, err := s.discoverCategories(ctx)
	if err != nil {
		return fmt.Errorf("category discovery failed: %w", err)
	}
	if len(categories) == 0 {
		return fmt.Errorf("no categories found")
	}

	partitions := Partition(categories, s.cfg.Scraper.Workers)
	sizes := make([]int, len(partitions))
	for i, p := range partitions {
		sizes[i] = len(p)
	}
	log.Infof("workload divided (%d workers): %v categories", len(partitions), sizes)

	autosaveDone := make(chan struct{})
	autosaveExited := make(chan struct{})
	go func() {
		defer close(autosaveExited)
		s.autosaveLoop(ctx, autosaveDone)
	}()

	g := new(errgroup.Group)
	for i, part := range partitions {
		workerID, categories := i+1, part
		g.Go(func() error {
			// A worker's failure is its own: log it, release the
			// session, and let siblings run on.
			s.runWorker(ctx, workerID, categories)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		log.Errorf("worker group error: %v", err)
	}

	close(autosaveDone)
	<-autosaveExited

	if err := s.drain(ctx); err != nil {
		return fmt.Errorf("final save failed: %w", err)
	}
	log.Infof("complete - total records: %d", s.acc.Len())
	return nil
}

// discoverCategories renders the parametric index and collects the
// top-level category links.
func (s *Service) discoverCategories(ctx context.Context) ([]domain.Category, error) {
	session, err := browser.NewSession(s.cfg.Browser, s.proxies.Get())
	if err != nil {
		return nil, err
	}
	defer session.Close()

	settle := time.Duration(s.cfg.Scraper.DiscoverySettle) * time.Second
	snap, err := session.Render(ctx, s.cfg.Scraper.ParametricURL(), settle)
	if err != nil {
		return nil, err
	}

	categories := CollectCategories(snap)
	for i, cat := range categories {
		if strings.HasPrefix(cat.URL, "/") {
			categories[i].URL = s.cfg.Scraper.BaseURL + cat.URL
		}
	}
	log.Infof("discovered %d main categories", len(categories))
	return categories, nil
}

// CollectCategories extracts deduplicated top-level categories from the
// rendered index page.
func CollectCategories(snap *extract.Snapshot) []domain.Category {
	seen := make(map[string]bool)
	var categories []domain.Category

	for _, selector := range categorySelectors {
		snap.Doc().Find(selector).Each(func(_ int, a *goquery.Selection) {
			href, ok := a.Attr("href")
			text := strings.TrimSpace(a.Text())
			if !ok || !strings.Contains(href, "/parametric/") || len(text) <= 1 {
				return
			}

			name := normalize.CleanCategory(text)
			if len(name) <= 1 || seen[name] {
				return
			}
			low := strings.ToLower(name)
			for _, artifact := range discoveryArtifacts {
				if strings.Contains(low, artifact) {
					return
				}
			}

			seen[name] = true
			categories = append(categories, domain.Category{Name: name, URL: href})
			log.Infof("category found: %s", name)
		})
	}

	return categories
}

// Partition splits categories into up to n contiguous chunks, one per
// worker; the last chunk takes the remainder. There is no rebalancing once
// partitioned.
func Partition(categories []domain.Category, n int) [][]domain.Category {
	if len(categories) == 0 {
		return nil
	}
	if n < 1 {
		n = 1
	}
	if n > len(categories) {
		n = len(categories)
	}

	per := len(categories) / n
	parts := make([][]domain.Category, 0, n)
	for i := range n {
		start := i * per
		end := start + per
		if i == n-1 {
			end = len(categories)
		}
		parts = append(parts, categories[start:end])
	}
	return parts
}

// runWorker traverses one partition with a dedicated browser session.
func (s *Service) runWorker(ctx context.Context, id int, categories []domain.Category) {
	log.Infof("worker #%d started - %d categories", id, len(categories))

	session, err := browser.NewSession(s.cfg.Browser, s.proxies.Get())
	if err != nil {
		log.Errorf("worker #%d failed to start a session: %v", id, err)
		return
	}
	defer session.Close()
	defer log.Infof("worker #%d completed", id)

	c := crawler.New(session, s.acc, s.cfg.Scraper)
	for i, cat := range categories {
		if ctx.Err() != nil {
			return
		}

		done, err := s.progress.IsCategoryDone(ctx, cat.Name)
		if err != nil {
			log.Warnf("worker #%d progress check for %s: %v", id, cat.Name, err)
		}
		if done {
			log.Infof("worker #%d skipping completed category %s", id, cat.Name)
			continue
		}

		log.Infof("[w%d-%d/%d] %s", id, i+1, len(categories), cat.Name)
		c.Crawl(ctx, cat.URL, cat.Name)

		if err := s.progress.MarkCategoryDone(ctx, cat.Name); err != nil {
			log.Warnf("worker #%d failed to mark %s done: %v", id, cat.Name, err)
		}
		log.Infof("worker #%d: %d total records", id, s.acc.Len())
	}
}

// autosaveLoop drains the accumulator on a fixed interval until the run
// finishes.
func (s *Service) autosaveLoop(ctx context.Context, done <-chan struct{}) {
	interval := time.Duration(s.cfg.Output.AutosaveInterval) * time.Second
	if interval <= 0 {
		interval = time.Minute
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-done:
			return
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := s.drain(ctx); err != nil {
				log.Errorf("autosave failed: %v", err)
			}
		}
	}
}

// drain persists all not-yet-persisted records. The watermark only advances
// after the primary sink succeeds, so a failed write is retried on the next
// drain; mirror sinks are best-effort.
func (s *Service) drain(ctx context.Context) error {
	s.saveMu.Lock()
	defer s.saveMu.Unlock()

	records := s.acc.Unsaved()
	if len(records) == 0 {
		return nil
	}

	stamp := time.Now().Format("2006-01-02 15:04")
	for _, r := range records {
		r.ScrapeTime = stamp
	}

	if err := s.primary.Save(ctx, records); err != nil {
		return err
	}
	s.acc.MarkPersisted(len(records))

	for _, m := range s.mirrors {
		if err := m.Save(ctx, records); err != nil {
			log.Warnf("mirror sink save failed: %v", err)
		}
	}

	log.Infof("saved %d new records - total: %d", len(records), s.acc.Len())
	return nil
}
