package rtic

import (
	"io"

	"zgo.at/rtic/internal/entry"
	"zgo.at/rtic/internal/outtree"
	"zgo.at/rtic/internal/parser"
	"zgo.at/rtic/internal/resolve"
)

// Compile reads terminfo source from r, resolves use= inheritance across the
// whole database, and writes the compiled entries (plus alias symlinks)
// under outDir as a two-level directory tree.
//
// diag receives every non-fatal diagnostic produced while parsing, resolving
// and writing (orphaned continuation lines, duplicate entries, unresolved
// use= links, oversized capability tables, unwritable output paths); a nil
// diag drops them all. Compile only returns an error for a problem with
// outDir itself — everything else is reported through diag and skipped.
func Compile(r io.Reader, outDir string, diag entry.Diag) error {
	db := parser.Parse(r, diag)
	resolve.Resolve(db, diag)
	return outtree.Build(db, outDir, diag)
}
