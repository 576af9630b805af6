// Package migrations embeds the goose migrations for the PostgreSQL
// accounts storage.
package migrations

import "embed"

//go:embed *.sql
var Migrations embed.FS
