package migrations

import "embed"

// FS contains embedded SQLite migrations for chat history storage.
//
//go:embed *.sql
var FS embed.FS
