package parser

import (
	"bufio"
	"io"
	"strings"

	"zgo.at/rtic/internal/entry"
)

// Parse reads a terminfo source stream line by line (1-based line numbering
// for diagnostics) and returns the populated Database. Diagnostics for
// orphaned continuation lines and duplicate entries are reported through d,
// which may be nil.
func Parse(r io.Reader, d Diag) *entry.Database {
	db := entry.NewDatabase()

	var current *entry.Entry
	scan := bufio.NewScanner(r)
	scan.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	line := 0
	for scan.Scan() {
		line++
		text := scan.Text()

		if len(text) == 0 || text[0] == '#' {
			continue
		}

		if isSpace(text[0]) {
			if current == nil {
				report(d, "line %d: orphaned line ignored.", line)
				continue
			}
			parseLine(current, strings.TrimSpace(text), d)
			continue
		}

		current = startEntry(db, text, line, d)
	}

	return db
}

func isSpace(b byte) bool {
	return b == ' ' || b == '\t' || b == '\v' || b == '\f' || b == '\r'
}

// startEntry handles a header line: it registers the primary name and its
// aliases (including the trailing long-name field, per the Open Question
// decision in SPEC_FULL.md/DESIGN.md), and returns the new current entry —
// or nil if the name is a duplicate.
func startEntry(db *entry.Database, text string, line int, d Diag) *entry.Entry {
	pos := strings.IndexByte(text, '|')
	if pos == -1 {
		pos = len(text) - 1
	}
	name := text[:pos]

	if _, exists := db.Entries[name]; exists {
		report(d, "line %d: duplicate terminfo entry ignored:%s", line, name)
		return nil
	}

	names := text
	if strings.HasSuffix(names, ",") {
		names = names[:len(names)-1]
	}
	e := entry.NewEntry(name, names)
	db.Entries[name] = e

	// Every field after the primary name becomes an alias, including the
	// final (long name) field — see the Open Question decision in
	// DESIGN.md: the format does not require the long name to be treated
	// specially, so it gets a symlink too.
	fields := strings.Split(names, "|")
	for _, alias := range fields[1:] {
		db.Aliases[alias] = name
	}

	return e
}
