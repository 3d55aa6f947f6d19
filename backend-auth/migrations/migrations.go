// Package migrations embeds the auth_db schema.
package migrations

import "embed"

//go:embed *.sql
var FS embed.FS
