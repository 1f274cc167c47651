package migrations

import "embed"

// FS contains embedded SQLite migrations for face storage.
//
//go:embed *.sql
var FS embed.FS
