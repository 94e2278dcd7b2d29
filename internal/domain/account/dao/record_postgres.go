package dao

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/vadim/infra-metric/internal/domain/account/entity"
)

// RecordPostgres reads the account records written by the sync job
type RecordPostgres struct {
	pool   *pgxpool.Pool
	logger *slog.Logger
}

// NewRecordPostgres creates a new account record repository
func NewRecordPostgres(pool *pgxpool.Pool, logger *slog.Logger) *RecordPostgres {
	return &RecordPostgres{pool: pool, logger: logger}
}

// ListRecords returns every stored record in store order. Rows whose data is
// not a JSON object are skipped and logged.
func (r *RecordPostgres) ListRecords(ctx context.Context) ([]entity.RawAccount, error) {
	query := `SELECT data FROM account_records ORDER BY position`

	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("listing account records: %w", err)
	}
	defer rows.Close()

	var blobs [][]byte
	for rows.Next() {
		var data []byte
		if err := rows.Scan(&data); err != nil {
			return nil, fmt.Errorf("scanning account record: %w", err)
		}
		blobs = append(blobs, data)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating account records: %w", err)
	}

	records, skipped := entity.DecodeRawAccounts(blobs)
	if len(skipped) > 0 {
		r.logger.Warn("skipped malformed account records",
			"skipped", len(skipped),
			"total", len(blobs),
			"first_position", skipped[0],
		)
	}

	return records, nil
}
