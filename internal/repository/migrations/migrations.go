// Package migrations embeds the schema migrations applied at startup.
// Each supported database dialect has its own directory because sqlite and
// mysql disagree on autoincrement and column type syntax.
package migrations

import "embed"

//go:embed sqlite/*.sql mysql/*.sql
var Migrations embed.FS
