// Package migrations holds the Postgres schema migrations, applied in
// file-name order by bun/migrate.
package migrations

import "github.com/uptrace/bun/migrate"

// Migrations is the registry every migration file adds itself to
var Migrations = migrate.NewMigrations()

func init() {
	// Migration names are derived from the registering file name
	if err := Migrations.DiscoverCaller(); err != nil {
		panic(err)
	}
}
