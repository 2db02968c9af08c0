// Package migrations provides the embedded SQL migration files for the SQLite store.
package migrations

import "embed"

//go:embed *.sql
var FS embed.FS
