package dao

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
)

// TargetPostgres stores daily sending targets per client workspace
type TargetPostgres struct {
	pool *pgxpool.Pool
}

// NewTargetPostgres creates a new sending target repository
func NewTargetPostgres(pool *pgxpool.Pool) *TargetPostgres {
	return &TargetPostgres{pool: pool}
}

// DailyTargets returns the daily sending target keyed by workspace name
func (r *TargetPostgres) DailyTargets(ctx context.Context) (map[string]int64, error) {
	query := `
		SELECT workspace_name, COALESCE(daily_sending_target, 0)
		FROM workspace_targets
	`

	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("listing sending targets: %w", err)
	}
	defer rows.Close()

	targets := make(map[string]int64)
	for rows.Next() {
		var name string
		var target int64
		if err := rows.Scan(&name, &target); err != nil {
			return nil, fmt.Errorf("scanning sending target: %w", err)
		}
		targets[name] = target
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating sending targets: %w", err)
	}

	return targets, nil
}

// SetDailyTarget upserts the daily sending target for a workspace
func (r *TargetPostgres) SetDailyTarget(ctx context.Context, workspace string, target int64) error {
	query := `
		INSERT INTO workspace_targets (workspace_name, daily_sending_target)
		VALUES ($1, $2)
		ON CONFLICT (workspace_name) DO UPDATE SET
			daily_sending_target = EXCLUDED.daily_sending_target
	`

	if _, err := r.pool.Exec(ctx, query, workspace, target); err != nil {
		return fmt.Errorf("setting sending target: %w", err)
	}
	return nil
}
