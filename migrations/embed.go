// Package migrations embeds the card profile schema for the SQL store and tests.
package migrations

import "embed"

//go:embed *.sql
var FS embed.FS
