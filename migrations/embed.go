// Package migrations embeds the SQL schema migrations so the binaries can run
// them without a migrations directory on disk.
package migrations

import "embed"

// FS holds every *.sql migration of this directory
//
//go:embed *.sql
var FS embed.FS
