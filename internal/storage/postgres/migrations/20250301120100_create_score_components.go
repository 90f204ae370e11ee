package migrations

import (
	"context"
	"fmt"

	"github.com/uptrace/bun"
)

func init() {
	Migrations.MustRegister(func(ctx context.Context, db *bun.DB) error {
		_, err := db.ExecContext(ctx, `
			CREATE TABLE IF NOT EXISTS score_components (
				player_id UUID PRIMARY KEY REFERENCES players(id) ON DELETE CASCADE,
				total_money_earned DOUBLE PRECISION NOT NULL DEFAULT 0,
				reputation DOUBLE PRECISION NOT NULL DEFAULT 0,
				skill_levels_sum INTEGER NOT NULL DEFAULT 0,
				consultants_count INTEGER NOT NULL DEFAULT 0,
				ai_tool_tiers_sum INTEGER NOT NULL DEFAULT 0,
				manual_tasks_completed INTEGER NOT NULL DEFAULT 0,
				updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
			);
		`)
		if err != nil {
			return fmt.Errorf("failed to create score_components table: %w", err)
		}
		return nil
	}, func(ctx context.Context, db *bun.DB) error {
		_, err := db.ExecContext(ctx, `DROP TABLE IF EXISTS score_components;`)
		if err != nil {
			return fmt.Errorf("failed to drop score_components table: %w", err)
		}
		return nil
	})
}
