// Package migrations embeds the goose SQL files for the SQL-backed selection
// stores (Postgres and SQLite).
package migrations

import "embed"

// FS holds every *.sql migration. repo.Migrate runs it through a goose
// provider, so no migration files are needed on disk at runtime.
//
//go:embed *.sql
var FS embed.FS
