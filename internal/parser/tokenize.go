// Package parser implements the terminfo source language front end: C3
// splits and classifies the capability tokens on one continuation line, and
// C4 (collect.go) drives the per-line state machine that builds the
// Database from a whole source stream.
package parser

import (
	"fmt"
	"strconv"
	"strings"

	"zgo.at/rtic/internal/capdb"
	"zgo.at/rtic/internal/entry"
	"zgo.at/rtic/internal/strdecode"
)

// Diag is an alias for entry.Diag, kept so the rest of this package can
// refer to it unqualified.
type Diag = entry.Diag

func report(d Diag, format string, args ...any) {
	if d != nil {
		d(fmt.Sprintf(format, args...))
	}
}

// splitCaps splits a continuation line into capability tokens at commas
// that are not escaped. A comma is escaped iff the count of '^'/'\\'
// characters since the last non-^/\\ character is odd — equivalently, an
// "escaped" bit toggles on every '^' or '\\' and clears on anything else.
// Tokens beginning with '.' (commented out) are dropped; the rest are
// trimmed of surrounding whitespace.
func splitCaps(line string) []string {
	var (
		caps    []string
		escaped bool
		off     int
	)
	for i := 0; i < len(line); i++ {
		switch line[i] {
		case '^', '\\':
			escaped = !escaped
		case ',':
			if !escaped {
				tok := strings.TrimSpace(line[off:i])
				if tok != "" && tok[0] != '.' {
					caps = append(caps, tok)
				}
				off = i + 1
			}
			escaped = false
		default:
			escaped = false
		}
	}
	return caps
}

// parseLine tokenizes line and dispatches each token into e.
func parseLine(e *entry.Entry, line string, d Diag) {
	for _, tok := range splitCaps(line) {
		i := strings.IndexAny(tok, "#=@")
		if i == -1 {
			addFlag(e, tok)
			continue
		}
		switch tok[i] {
		case '#':
			addNumber(e, tok, i+1)
		case '=':
			addString(e, tok, i+1, d)
		case '@':
			addDisable(e, tok, i)
		}
	}
}

func addFlag(e *entry.Entry, name string) {
	if i, ok := capdb.LookupBool(name); ok {
		e.AddCap(name, entry.Cap{Kind: entry.Flag, Index: i, Data: []byte{1}})
		return
	}
	e.AddCap(name, entry.Cap{Kind: entry.Flag, Index: entry.Extended, Data: []byte{1}})
}

func addNumber(e *entry.Entry, tok string, valueOff int) {
	name := tok[:valueOff-1]
	n := atoi(tok[valueOff:])
	data := []byte{byte(n), byte(n >> 8)}
	if i, ok := capdb.LookupNumber(name); ok {
		e.AddCap(name, entry.Cap{Kind: entry.Number, Index: i, Data: data})
		return
	}
	e.AddCap(name, entry.Cap{Kind: entry.Number, Index: entry.Extended, Data: data})
}

func addString(e *entry.Entry, tok string, valueOff int, d Diag) {
	name := tok[:valueOff-1]
	if name == "use" {
		e.Uses = append(e.Uses, tok[valueOff:])
		return
	}

	w := strdecode.Warner(func(m string) { report(d, "%s", m) })
	if i, ok := capdb.LookupString(name); ok {
		data := strdecode.Decode(tok[valueOff:], w)
		e.AddCap(name, entry.Cap{Kind: entry.String, Index: i, Data: data})
		return
	}
	data := strdecode.Decode(tok[valueOff:], w)
	e.AddCap(name, entry.Cap{Kind: entry.String, Index: entry.Extended, Data: data})
}

// addDisable handles the `cap@` form. It looks across all three
// dictionaries in order (boolean, numeric, string); the first match
// determines the kind. An unmatched name is a disabled extended flag, per
// rtic.cpp's addDisable fallthrough.
func addDisable(e *entry.Entry, tok string, atOff int) {
	name := tok[:atOff]

	if i, ok := capdb.LookupBool(name); ok {
		e.AddCap(name, entry.Cap{Kind: entry.Flag, Index: i, Disabled: true, Data: []byte{0}})
		return
	}
	if i, ok := capdb.LookupNumber(name); ok {
		e.AddCap(name, entry.Cap{Kind: entry.Number, Index: i, Disabled: true})
		return
	}
	if i, ok := capdb.LookupString(name); ok {
		e.AddCap(name, entry.Cap{Kind: entry.String, Index: i, Disabled: true})
		return
	}
	e.AddCap(name, entry.Cap{Kind: entry.Flag, Index: entry.Extended, Disabled: true, Data: []byte{0}})
}

// atoi reproduces C's atoi: optional leading sign, then decimal digits,
// stopping at the first non-digit without error (matching rtic.cpp's
// parseNumber, which is a thin wrapper around atoi).
func atoi(s string) int16 {
	i := 0
	neg := false
	if i < len(s) && (s[i] == '+' || s[i] == '-') {
		neg = s[i] == '-'
		i++
	}
	start := i
	for i < len(s) && s[i] >= '0' && s[i] <= '9' {
		i++
	}
	if start == i {
		return 0
	}
	n, err := strconv.ParseInt(s[start:i], 10, 64)
	if err != nil {
		return 0
	}
	if neg {
		n = -n
	}
	return int16(n)
}
