// Package migrations contains embedded SQL migrations for PostgreSQL.
package migrations

import "embed"

//go:embed *.sql
var FS embed.FS
