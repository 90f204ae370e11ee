package migrations

import (
	"context"
	"fmt"

	"github.com/uptrace/bun"
)

func init() {
	Migrations.MustRegister(func(ctx context.Context, db *bun.DB) error {
		_, err := db.ExecContext(ctx, `
			CREATE TABLE IF NOT EXISTS players (
				id UUID PRIMARY KEY,
				display_name TEXT NOT NULL,
				passphrase TEXT NOT NULL,
				username TEXT,
				password_hash TEXT,
				show_on_leaderboard BOOLEAN NOT NULL DEFAULT TRUE,
				created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
				updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
				CONSTRAINT players_passphrase_unique UNIQUE (passphrase),
				CONSTRAINT players_username_unique UNIQUE (username),
				CONSTRAINT players_credentials_paired CHECK ((username IS NULL) = (password_hash IS NULL))
			);
		`)
		if err != nil {
			return fmt.Errorf("failed to create players table: %w", err)
		}
		return nil
	}, func(ctx context.Context, db *bun.DB) error {
		_, err := db.ExecContext(ctx, `DROP TABLE IF EXISTS players;`)
		if err != nil {
			return fmt.Errorf("failed to drop players table: %w", err)
		}
		return nil
	})
}
