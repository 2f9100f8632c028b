// Package migrations embeds the forward-only SQL migration files that
// are applied at startup.
package migrations

import "embed"

//go:embed *.sql
var Files embed.FS
