package store

import (
	"sync"
	"testing"

	"github.com/snaidu20/Supply-chain-Predicive-system/internal/domain"
)

func rec(mpn, supplier string) *domain.Record {
	return &domain.Record{MPN: mpn, SupplierName: supplier}
}

func TestAccumulatorAdmissionInvariant(t *testing.T) {
	t.Parallel()

	acc := NewAccumulator(100)
	added := acc.Add([]*domain.Record{
		rec("LM358N-X9", "Digi-Key"),
		rec("", "Digi-Key"),
		rec("LM358N-X9", ""),
		rec("NE555P77", "Mouser"),
	})

	if added != 2 {
		t.Errorf("Add admitted %d records, want 2", added)
	}
	if acc.Len() != 2 {
		t.Errorf("Len = %d, want 2", acc.Len())
	}
	for _, r := range acc.Unsaved() {
		if !r.Valid() {
			t.Errorf("accumulator holds invalid record: MPN=%q supplier=%q", r.MPN, r.SupplierName)
		}
	}
}

func TestAccumulatorFull(t *testing.T) {
	t.Parallel()

	acc := NewAccumulator(2)
	if acc.Full() {
		t.Error("empty accumulator must not be full")
	}
	acc.Add([]*domain.Record{rec("A1B2C3D4", "Digi-Key"), rec("E5F6G7H8", "Mouser")})
	if !acc.Full() {
		t.Error("accumulator at cap must report full")
	}
}

func TestAccumulatorDrainWatermark(t *testing.T) {
	t.Parallel()

	acc := NewAccumulator(100)
	acc.Add([]*domain.Record{rec("A1B2C3D4", "Digi-Key"), rec("E5F6G7H8", "Mouser")})

	first := acc.Unsaved()
	if len(first) != 2 {
		t.Fatalf("Unsaved = %d records, want 2", len(first))
	}
	acc.MarkPersisted(len(first))

	if got := acc.Unsaved(); len(got) != 0 {
		t.Errorf("Unsaved after mark = %d records, want 0", len(got))
	}

	acc.Add([]*domain.Record{rec("I9J0K1L2", "Arrow")})
	second := acc.Unsaved()
	if len(second) != 1 || second[0].MPN != "I9J0K1L2" {
		t.Errorf("Unsaved after new append = %v, want only the new record", second)
	}
}

func TestAccumulatorConcurrentAppends(t *testing.T) {
	t.Parallel()

	acc := NewAccumulator(1 << 20)
	var wg sync.WaitGroup
	for range 8 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for range 100 {
				acc.Add([]*domain.Record{rec("A1B2C3D4", "Digi-Key")})
			}
		}()
	}
	wg.Wait()

	if acc.Len() != 800 {
		t.Errorf("Len = %d after concurrent appends, want 800", acc.Len())
	}
}
