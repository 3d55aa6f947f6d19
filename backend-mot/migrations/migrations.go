// Package migrations embeds the mot_db schema.
package migrations

import "embed"

//go:embed *.sql
var FS embed.FS
