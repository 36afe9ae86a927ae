// Package migrations holds the versioned schema of the object store.
// Files are named NNN_name.up.sql and NNN_name.down.sql.
package migrations

import "embed"

//go:embed *.sql
var FS embed.FS
