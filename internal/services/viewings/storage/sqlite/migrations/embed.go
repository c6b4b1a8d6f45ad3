package migrations

import "embed"

// FS contains embedded SQLite migrations for viewing availability storage.
//
//go:embed *.sql
var FS embed.FS
