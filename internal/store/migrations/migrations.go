// Package migrations embeds the schema files for the SQL slot stores.
package migrations

import "embed"

// FS holds sqlite/*.sql and postgres/*.sql, applied in filename order.
//
//go:embed sqlite/*.sql postgres/*.sql
var FS embed.FS
