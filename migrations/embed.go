// Package migrations carries the goose SQL migrations inside the binaries.
package migrations

import "embed"

//go:embed *.sql
var FS embed.FS
