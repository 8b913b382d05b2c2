package resolve

import (
	"testing"

	"zgo.at/rtic/internal/entry"
)

func newDB() *entry.Database {
	return entry.NewDatabase()
}

func add(db *entry.Database, name string, caps map[string]entry.Cap, uses ...string) *entry.Entry {
	e := entry.NewEntry(name, name)
	e.Caps = caps
	e.Uses = uses
	db.Entries[name] = e
	return e
}

func TestResolveOwnCapWins(t *testing.T) {
	db := newDB()
	add(db, "base", map[string]entry.Cap{"cols": {Kind: entry.Number, Data: []byte{80, 0}}})
	child := add(db, "child", map[string]entry.Cap{"cols": {Kind: entry.Number, Data: []byte{100, 0}}}, "base")

	Resolve(db, nil)

	if got := child.Caps["cols"].Data[0]; got != 100 {
		t.Errorf("child's own cap was overwritten: got %d, want 100", got)
	}
}

func TestResolveMergesMissingCap(t *testing.T) {
	db := newDB()
	add(db, "base", map[string]entry.Cap{"bel": {Kind: entry.String, Data: []byte{0x07, 0}}})
	child := add(db, "child", map[string]entry.Cap{}, "base")

	Resolve(db, nil)

	if _, ok := child.Caps["bel"]; !ok {
		t.Fatal("expected bel to be merged in from base")
	}
}

func TestResolveTransitive(t *testing.T) {
	db := newDB()
	add(db, "grandparent", map[string]entry.Cap{"am": {Kind: entry.Flag, Data: []byte{1}}})
	add(db, "parent", map[string]entry.Cap{}, "grandparent")
	child := add(db, "child", map[string]entry.Cap{}, "parent")

	Resolve(db, nil)

	if _, ok := child.Caps["am"]; !ok {
		t.Fatal("expected am to be merged in transitively")
	}
}

func TestResolveThroughAlias(t *testing.T) {
	db := newDB()
	add(db, "base", map[string]entry.Cap{"am": {Kind: entry.Flag, Data: []byte{1}}})
	db.Aliases["base-alias"] = "base"
	child := add(db, "child", map[string]entry.Cap{}, "base-alias")

	Resolve(db, nil)

	if _, ok := child.Caps["am"]; !ok {
		t.Fatal("expected am to be merged in through the alias")
	}
}

func TestResolveUnresolvedLinkWarns(t *testing.T) {
	db := newDB()
	add(db, "child", map[string]entry.Cap{}, "nonexistent")

	var msgs []string
	Resolve(db, func(m string) { msgs = append(msgs, m) })

	if len(msgs) != 1 {
		t.Fatalf("expected one warning, got %v", msgs)
	}
}

func TestResolveFirstUseWinsOverLater(t *testing.T) {
	db := newDB()
	add(db, "first", map[string]entry.Cap{"cols": {Kind: entry.Number, Data: []byte{80, 0}}})
	add(db, "second", map[string]entry.Cap{"cols": {Kind: entry.Number, Data: []byte{132, 0}}})
	child := add(db, "child", map[string]entry.Cap{}, "first", "second")

	Resolve(db, nil)

	if got := child.Caps["cols"].Data[0]; got != 80 {
		t.Errorf("got %d, want 80 (first use= listed should win)", got)
	}
}
