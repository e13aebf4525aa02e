// Package migrations embeds the goose schema migrations for each supported
// database driver. Each driver has its own directory inside FS.
package migrations

import "embed"

//go:embed sqlite/*.sql postgres/*.sql
var FS embed.FS

const (
	SQLiteDir   = "sqlite"
	PostgresDir = "postgres"
)
