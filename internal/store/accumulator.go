// Package store holds the shared record accumulator and its durable sinks.
package store

import (
	"sync"

	log "github.com/sirupsen/logrus"

	"github.com/snaidu20/Supply-chain-Predicive-system/internal/domain"
)

// Accumulator is the single shared, mutex-guarded record collection all
// workers append to. Records are append-only; the persister drains the
// not-yet-persisted tail and marks it after a successful write, so a failed
// write is retried on the next drain.
type Accumulator struct {
	mu        sync.Mutex
	records   []*domain.Record
	persisted int
	capacity  int
}

// NewAccumulator creates an accumulator with a hard record cap. The cap is a
// safety valve against unbounded runs; Full is checked by the traversal
// before visiting new locations.
func NewAccumulator(capacity int) *Accumulator {
	return &Accumulator{capacity: capacity}
}

// Add appends records that satisfy the admission invariant (non-empty MPN
// and supplier name) and returns how many were admitted.
func (a *Accumulator) Add(records []*domain.Record) int {
	a.mu.Lock()
	defer a.mu.Unlock()

	added := 0
	for _, r := range records {
		if !r.Valid() {
			log.Debugf("dropping record without mandatory fields: MPN=%q supplier=%q", r.MPN, r.SupplierName)
			continue
		}
		a.records = append(a.records, r)
		added++
	}
	return added
}

// Len returns the total number of admitted records.
func (a *Accumulator) Len() int {
	a.mu.Lock()
	defer a.mu.Unlock()
	return len(a.records)
}

// Full reports whether the hard record cap has been reached.
func (a *Accumulator) Full() bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	return len(a.records) >= a.capacity
}

// Unsaved returns a copy of the not-yet-persisted tail.
func (a *Accumulator) Unsaved() []*domain.Record {
	a.mu.Lock()
	defer a.mu.Unlock()

	tail := a.records[a.persisted:]
	out := make([]*domain.Record, len(tail))
	copy(out, tail)
	return out
}

// MarkPersisted advances the persisted watermark by n records after a
// successful drain.
func (a *Accumulator) MarkPersisted(n int) {
	a.mu.Lock()
	defer a.mu.Unlock()

	a.persisted += n
	if a.persisted > len(a.records) {
		a.persisted = len(a.records)
	}
}
