// Package migrations embeds the SQL schema files.
package migrations

import "embed"

// FS holds the numbered *.sql files, applied in lexical order. New schema
// changes go in a new file; applied files are never edited.
//
//go:embed *.sql
var FS embed.FS
