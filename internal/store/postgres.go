package store

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/snaidu20/Supply-chain-Predicive-system/internal/domain"
)

// PostgresSink mirrors drained records into Postgres alongside the CSV file.
// The table is append-only; the CSV remains the durable source of truth.
type PostgresSink struct {
	db *pgxpool.Pool
}

func NewPostgresSink(db *pgxpool.Pool) *PostgresSink {
	return &PostgresSink{db: db}
}

func (s *PostgresSink) Save(ctx context.Context, records []*domain.Record) error {
	if len(records) == 0 {
		return nil
	}

	query := `
	INSERT INTO supply_records (
		mpn, price_qty, unit_price, mfg_name, supplier_name,
		mfg_lead_time, on_hand_stock, stock_per_price_break,
		packaging_type, date_code, coo, moq, currency,
		main_category, distributor_block, disti_part_number, region,
		scrape_time
	) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18)`

	batch := &pgx.Batch{}
	for _, r := range records {
		batch.Queue(query,
			r.MPN, r.PriceQty, r.UnitPrice, r.MFGName, r.SupplierName,
			r.MFGLeadTime, r.OnHandStock, r.StockPerBreak,
			r.PackagingType, r.DateCode, r.COO, r.MOQ, r.Currency,
			r.MainCategory, r.DistributorBlock, r.DistiPartNumber, r.Region,
			r.ScrapeTime,
		)
	}

	br := s.db.SendBatch(ctx, batch)
	defer br.Close()

	for range records {
		if _, err := br.Exec(); err != nil {
			return fmt.Errorf("failed to insert supply record: %w", err)
		}
	}
	return nil
}
