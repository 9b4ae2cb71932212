package database

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/salesops/giftware-scraper/internal/models"
)

// StoredRecord is one archived extraction result.
type StoredRecord struct {
	RunID        string    `db:"run_id"`
	ItemNumber   string    `db:"item_number"`
	ProductName  string    `db:"product_name"`
	UnitPrice    string    `db:"unit_price"`
	CaseQuantity string    `db:"case_quantity"`
	URL          string    `db:"url"`
	Status       string    `db:"status"`
	StatusReason string    `db:"status_reason"`
	ScrapedAt    time.Time `db:"scraped_at"`
}

// SaveRun archives every record of a finished run in one transaction.
// Re-archiving a run overwrites its previous rows.
func (db *DB) SaveRun(ctx context.Context, runID string, records []models.ProductRecord) error {
	return db.WithTx(ctx, func(tx pgx.Tx) error {
		query := `
			INSERT INTO scrape_records
				(run_id, item_number, product_name, unit_price, case_quantity, url, status, status_reason)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
			ON CONFLICT (run_id, item_number) DO UPDATE SET
				product_name  = EXCLUDED.product_name,
				unit_price    = EXCLUDED.unit_price,
				case_quantity = EXCLUDED.case_quantity,
				url           = EXCLUDED.url,
				status        = EXCLUDED.status,
				status_reason = EXCLUDED.status_reason,
				scraped_at    = CURRENT_TIMESTAMP`

		for _, r := range records {
			_, err := tx.Exec(ctx, query,
				runID, r.ItemNumber, r.ProductName, r.UnitPrice,
				r.CaseQuantity, r.URL, string(r.Status), r.StatusReason,
			)
			if err != nil {
				return fmt.Errorf("failed to insert record %s: %w", r.ItemNumber, err)
			}
		}
		return nil
	})
}

// RecordsByRun returns a run's archived records in archive order.
func (db *DB) RecordsByRun(ctx context.Context, runID string) ([]*StoredRecord, error) {
	query := `
		SELECT run_id, item_number, product_name, unit_price, case_quantity,
			   url, status, status_reason, scraped_at
		FROM scrape_records
		WHERE run_id = $1
		ORDER BY id ASC`

	rows, err := db.pool.Query(ctx, query, runID)
	if err != nil {
		return nil, fmt.Errorf("failed to query records: %w", err)
	}
	defer rows.Close()

	var records []*StoredRecord
	for rows.Next() {
		r := &StoredRecord{}
		err := rows.Scan(
			&r.RunID, &r.ItemNumber, &r.ProductName, &r.UnitPrice,
			&r.CaseQuantity, &r.URL, &r.Status, &r.StatusReason, &r.ScrapedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan record: %w", err)
		}
		records = append(records, r)
	}

	return records, rows.Err()
}

// CountByStatus aggregates archived record counts per terminal status.
func (db *DB) CountByStatus(ctx context.Context, runID string) (map[string]int, error) {
	query := `
		SELECT status, COUNT(*) AS count
		FROM scrape_records
		WHERE run_id = $1
		GROUP BY status`

	rows, err := db.pool.Query(ctx, query, runID)
	if err != nil {
		return nil, fmt.Errorf("failed to count records: %w", err)
	}
	defer rows.Close()

	counts := make(map[string]int)
	for rows.Next() {
		var status string
		var count int
		if err := rows.Scan(&status, &count); err != nil {
			return nil, fmt.Errorf("failed to scan count: %w", err)
		}
		counts[status] = count
	}

	return counts, rows.Err()
}
