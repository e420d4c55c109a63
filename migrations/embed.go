// Package migrations embeds the goose SQL migrations so the migrate binary
// does not depend on the working directory.
package migrations

import "embed"

// FS holds every *.sql migration at the package root
//
//go:embed *.sql
var FS embed.FS
