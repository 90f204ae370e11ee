package migrations

import (
	"context"
	"fmt"

	"github.com/uptrace/bun"
)

func init() {
	Migrations.MustRegister(func(ctx context.Context, db *bun.DB) error {
		_, err := db.ExecContext(ctx, `
			CREATE TABLE IF NOT EXISTS cloud_saves (
				player_id UUID PRIMARY KEY REFERENCES players(id) ON DELETE CASCADE,
				save_data BYTEA NOT NULL,
				version INTEGER NOT NULL DEFAULT 0,
				updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
			);
		`)
		if err != nil {
			return fmt.Errorf("failed to create cloud_saves table: %w", err)
		}
		return nil
	}, func(ctx context.Context, db *bun.DB) error {
		_, err := db.ExecContext(ctx, `DROP TABLE IF EXISTS cloud_saves;`)
		if err != nil {
			return fmt.Errorf("failed to drop cloud_saves table: %w", err)
		}
		return nil
	})
}
