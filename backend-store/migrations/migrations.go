// Package migrations embeds the store_db schema.
package migrations

import "embed"

//go:embed *.sql
var FS embed.FS
