// Package outtree implements C8: laying the compiled entries out on disk as
// a two-level directory tree keyed by first letter, with alias symlinks.
//
// Grounded in rtic.cpp's mkdirIfNeeded/updateDB: entries (and separately,
// aliases) are visited in name-sorted order, mirroring the std::map
// iteration order the original relies on.
package outtree

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"time"

	"zgo.at/rtic/internal/binformat"
	"zgo.at/rtic/internal/entry"
)

// dirMode matches rtic.cpp's S_IRWXU|S_IRWXG|S_IROTH|S_IXOTH.
const dirMode = 0o775

// Build writes every entry in db under outDir/<firstletter>/<name>, and
// every alias as a symlink to its target's file. Per-entry and per-alias
// failures are reported through d and skipped rather than aborting the
// whole run.
func Build(db *entry.Database, outDir string, d entry.Diag) error {
	if err := mkdirIfNeeded(outDir); err != nil {
		return err
	}

	for _, name := range sortedKeys(db.Entries) {
		dir := filepath.Join(outDir, name[:1])
		if err := mkdirIfNeeded(dir); err != nil {
			report(d, "%s", err)
			continue
		}

		data, err := binformat.Write(db.Entries[name])
		if err != nil {
			report(d, "entry %q: %s", name, err)
			continue
		}

		path := filepath.Join(dir, name)
		if err := os.WriteFile(path, data, 0o644); err != nil {
			report(d, "cannot write %s: %s", path, err)
		}
	}

	for _, alias := range sortedAliasKeys(db.Aliases) {
		primary := db.Aliases[alias]

		dir := filepath.Join(outDir, alias[:1])
		if err := mkdirIfNeeded(dir); err != nil {
			report(d, "%s", err)
			continue
		}

		link := primary
		if alias[0] != primary[0] {
			link = filepath.Join("..", primary[:1], primary)
		}

		path := filepath.Join(dir, alias)
		if err := os.Symlink(link, path); err != nil && !errors.Is(err, os.ErrExist) {
			report(d, "Cannot create alias %s for %s. %s", alias, primary, err)
		}
	}

	return nil
}

// mkdirIfNeeded creates dir if absent, errors if it exists and isn't a
// directory, and otherwise touches its mtime so the build system sees it as
// updated — the same contract as rtic.cpp's mkdirIfNeeded.
func mkdirIfNeeded(dir string) error {
	fi, err := os.Stat(dir)
	if err != nil {
		if !os.IsNotExist(err) {
			return fmt.Errorf("%s: %w", dir, err)
		}
		if err := os.Mkdir(dir, dirMode); err != nil {
			return fmt.Errorf("%s cannot be created: %w", dir, err)
		}
		return nil
	}

	if !fi.IsDir() {
		return fmt.Errorf("%s already exists and is not directory", dir)
	}

	now := time.Now()
	return os.Chtimes(dir, now, now)
}

func sortedKeys(m map[string]*entry.Entry) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func sortedAliasKeys(m map[string]string) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func report(d entry.Diag, format string, args ...any) {
	if d != nil {
		d(fmt.Sprintf(format, args...))
	}
}
