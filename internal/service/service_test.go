package service

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/snaidu20/Supply-chain-Predicive-system/internal/config"
	"github.com/snaidu20/Supply-chain-Predicive-system/internal/domain"
	"github.com/snaidu20/Supply-chain-Predicive-system/internal/extract"
	"github.com/snaidu20/Supply-chain-Predicive-system/internal/proxy"
	"github.com/snaidu20/Supply-chain-Predicive-system/internal/state"
	"github.com/snaidu20/Supply-chain-Predicive-system/internal/store"
)

func cats(names ...string) []domain.Category {
	out := make([]domain.Category, len(names))
	for i, n := range names {
		out[i] = domain.Category{Name: n, URL: "https://site.test/parametric/" + n}
	}
	return out
}

func TestPartitionCoversAllDisjointly(t *testing.T) {
	t.Parallel()

	categories := cats("a", "b", "c", "d", "e", "f", "g")
	parts := Partition(categories, 3)

	if len(parts) != 3 {
		t.Fatalf("got %d partitions, want 3", len(parts))
	}

	seen := make(map[string]int)
	total := 0
	for _, p := range parts {
		total += len(p)
		for _, c := range p {
			seen[c.Name]++
		}
	}
	if total != len(categories) {
		t.Errorf("partitions hold %d categories, want %d", total, len(categories))
	}
	for name, n := range seen {
		if n != 1 {
			t.Errorf("category %s appears %d times, want 1", name, n)
		}
	}
}

func TestPartitionMoreWorkersThanCategories(t *testing.T) {
	t.Parallel()

	parts := Partition(cats("a", "b"), 6)
	if len(parts) != 2 {
		t.Errorf("got %d partitions, want one per category", len(parts))
	}
}

func TestPartitionEmpty(t *testing.T) {
	t.Parallel()

	if parts := Partition(nil, 6); len(parts) != 0 {
		t.Errorf("got %d partitions for no categories, want 0", len(parts))
	}
}

func TestCollectCategories(t *testing.T) {
	t.Parallel()

	html := `<html><body>
		<a href="/parametric/connectors">Connectors 1,234</a>
		<a href="/parametric/connectors">Connectors</a>
		<a href="/parametric/search-tools">Advanced Search</a>
		<a href="/parametric/page2">Page 2</a>
		<a href="/about">About</a>
		<nav><a href="/parametric/capacitors">Capacitors</a></nav>
	</body></html>`
	snap, err := extract.NewSnapshot("https://site.test/parametric", "Parametric", html)
	if err != nil {
		t.Fatalf("NewSnapshot: %v", err)
	}

	got := CollectCategories(snap)
	names := make(map[string]bool)
	for _, c := range got {
		names[c.Name] = true
	}

	if !names["Connectors"] || !names["Capacitors"] {
		t.Errorf("expected Connectors and Capacitors, got %v", got)
	}
	if len(got) != 2 {
		t.Errorf("got %d categories, want 2 (dedup and artifact filtering): %v", len(got), got)
	}
}

type failingSink struct{ calls int }

func (f *failingSink) Save(context.Context, []*domain.Record) error {
	f.calls++
	return errors.New("disk full")
}

type countingSink struct {
	calls   int
	records int
}

func (c *countingSink) Save(_ context.Context, records []*domain.Record) error {
	c.calls++
	c.records += len(records)
	return nil
}

func testService(acc *store.Accumulator, primary store.Sink, mirrors ...store.Sink) *Service {
	cfg := &config.Config{}
	cfg.Output.AutosaveInterval = 300
	return New(cfg, acc, primary, mirrors, &proxy.Supplier{}, state.NewNoopManager())
}

func TestDrainMarksOnlyOnPrimarySuccess(t *testing.T) {
	t.Parallel()

	acc := store.NewAccumulator(100)
	acc.Add([]*domain.Record{{MPN: "A1B2C3D4", SupplierName: "Digi-Key"}})

	primary := &failingSink{}
	s := testService(acc, primary)

	if err := s.drain(context.Background()); err == nil {
		t.Fatal("expected drain error from failing primary sink")
	}
	if got := acc.Unsaved(); len(got) != 1 {
		t.Errorf("failed drain must keep %d unsaved records, got %d", 1, len(got))
	}
}

func TestDrainRetriesAfterFailure(t *testing.T) {
	t.Parallel()

	acc := store.NewAccumulator(100)
	acc.Add([]*domain.Record{{MPN: "A1B2C3D4", SupplierName: "Digi-Key"}})

	sink := &countingSink{}
	s := testService(acc, sink)

	if err := s.drain(context.Background()); err != nil {
		t.Fatalf("drain: %v", err)
	}
	if sink.records != 1 {
		t.Errorf("sink saw %d records, want 1", sink.records)
	}

	// Second drain with nothing new must be a no-op.
	if err := s.drain(context.Background()); err != nil {
		t.Fatalf("second drain: %v", err)
	}
	if sink.calls != 1 {
		t.Errorf("sink called %d times, want 1 (no-op on unchanged set)", sink.calls)
	}
}

func TestDrainStampsScrapeTime(t *testing.T) {
	t.Parallel()

	acc := store.NewAccumulator(100)
	acc.Add([]*domain.Record{{MPN: "A1B2C3D4", SupplierName: "Digi-Key"}})

	sink := &countingSink{}
	s := testService(acc, sink)
	if err := s.drain(context.Background()); err != nil {
		t.Fatalf("drain: %v", err)
	}

	// The drained record was stamped in place.
	acc.Add([]*domain.Record{{MPN: "E5F6G7H8", SupplierName: "Mouser"}})
	for _, r := range acc.Unsaved() {
		if r.ScrapeTime != "" {
			t.Errorf("new record has a persistence timestamp before drain: %q", r.ScrapeTime)
		}
	}
}

// slowSink counts how often each part number is persisted, holding every
// save long enough for a second drain to pile up behind it.
type slowSink struct {
	mu    sync.Mutex
	delay time.Duration
	seen  map[string]int
}

func (s *slowSink) Save(_ context.Context, records []*domain.Record) error {
	time.Sleep(s.delay)
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, r := range records {
		s.seen[r.MPN]++
	}
	return nil
}

func TestConcurrentDrainsFlushEachRecordOnce(t *testing.T) {
	t.Parallel()

	acc := store.NewAccumulator(100)
	acc.Add([]*domain.Record{{MPN: "A1B2C3D4", SupplierName: "Digi-Key"}})

	sink := &slowSink{delay: 100 * time.Millisecond, seen: make(map[string]int)}
	s := testService(acc, sink)

	var wg sync.WaitGroup
	wg.Add(2)
	go func() {
		defer wg.Done()
		if err := s.drain(context.Background()); err != nil {
			t.Errorf("drain: %v", err)
		}
	}()

	// Let the first drain take the save lock, then append a record and
	// race a second drain against it.
	time.Sleep(20 * time.Millisecond)
	acc.Add([]*domain.Record{{MPN: "E5F6G7H8", SupplierName: "Mouser"}})
	go func() {
		defer wg.Done()
		if err := s.drain(context.Background()); err != nil {
			t.Errorf("drain: %v", err)
		}
	}()
	wg.Wait()

	for mpn, n := range sink.seen {
		if n != 1 {
			t.Errorf("%s persisted %d times, want exactly once", mpn, n)
		}
	}
	if sink.seen["E5F6G7H8"] != 1 {
		t.Error("record appended during a running drain was never persisted")
	}
	if left := acc.Unsaved(); len(left) != 0 {
		t.Errorf("%d records still unsaved after both drains", len(left))
	}
}

func TestAutosaveLoopToleratesZeroInterval(t *testing.T) {
	t.Parallel()

	s := testService(store.NewAccumulator(10), &countingSink{})
	s.cfg.Output.AutosaveInterval = 0

	done := make(chan struct{})
	exited := make(chan struct{})
	go func() {
		defer close(exited)
		s.autosaveLoop(context.Background(), done)
	}()
	close(done)

	select {
	case <-exited:
	case <-time.After(time.Second):
		t.Fatal("autosave loop did not stop")
	}
}

func TestDrainMirrorFailureDoesNotBlock(t *testing.T) {
	t.Parallel()

	acc := store.NewAccumulator(100)
	acc.Add([]*domain.Record{{MPN: "A1B2C3D4", SupplierName: "Digi-Key"}})

	primary := &countingSink{}
	mirror := &failingSink{}
	s := testService(acc, primary, mirror)

	if err := s.drain(context.Background()); err != nil {
		t.Fatalf("drain must tolerate mirror failure: %v", err)
	}
	if got := acc.Unsaved(); len(got) != 0 {
		t.Errorf("records must be marked persisted after primary success, %d left", len(got))
	}
	if mirror.calls != 1 {
		t.Errorf("mirror called %d times, want 1", mirror.calls)
	}
}
