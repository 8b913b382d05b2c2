// Package resolve implements C5: transitive merging of capabilities across
// an entry's use= chain, resolving through the alias table where needed.
//
// Cycle detection is intentionally not implemented — see SPEC_FULL.md's
// REDESIGN FLAGS section. A cyclic use= graph recurses indefinitely, exactly
// as in the original; the recommended topological-sort-with-cycle-detection
// redesign (marked-node DFS: unvisited/on-stack/done) is documented here as
// a known follow-up rather than built, so as to not silently add behavior
// beyond what spec.md's Non-goals already scope out.
package resolve

import (
	"fmt"

	"zgo.at/rtic/internal/entry"
)

// Resolve walks every entry in db and merges in capabilities reachable
// through its use= chain. Diagnostics for unresolved use= targets are
// reported through d, which may be nil.
func Resolve(db *entry.Database, d entry.Diag) {
	for _, e := range db.Entries {
		resolveInto(db, e, e, d)
	}
}

// resolveInto recursively resolves e's uses, merging each ancestor into
// target post-order (deepest ancestors first), then merges e itself into
// target. Because merge only fills in capabilities target lacks, the
// closer/earlier binding always wins regardless of merge order.
func resolveInto(db *entry.Database, e, target *entry.Entry, d entry.Diag) {
	for _, name := range e.Uses {
		child, ok := db.Resolve(name)
		if !ok {
			report(d, "Entry '%s': unresolved link to '%s' ignored.", target.Name, name)
			continue
		}
		resolveInto(db, child, e, d)
	}
	merge(e, target)
}

// merge copies every capability from src into dst that dst doesn't already
// define. dst's own definitions always win.
func merge(src, dst *entry.Entry) {
	if src == dst {
		return
	}
	for name, c := range src.Caps {
		if _, exists := dst.Caps[name]; !exists {
			dst.Caps[name] = c
		}
	}
}

func report(d entry.Diag, format string, args ...any) {
	if d != nil {
		d(fmt.Sprintf(format, args...))
	}
}
