// Command rtic compiles terminfo source into the legacy ncurses binary
// format and lays the result out as a two-level directory tree.
package main

import (
	"fmt"
	"os"

	"zgo.at/rtic"
	"zgo.at/rtic/internal/entry"
)

var usage = rtic.Usage(rtic.UsageTrim|rtic.UsageHeaders|rtic.UsageFlags, `
Usage:
    rtic [options..] input output

Description:
    rtic reads terminfo source from input (use "-" for stdin) and writes
    compiled entries under output, one file per entry in a directory named
    after its first letter, with alias symlinks alongside.

Options:
    input
        Path to a terminfo source file, or "-" to read from stdin.

    output
        Directory to write the compiled database to; created if missing.

    -q, -quiet
        Don't print the "reading from stdin..." notice.

Exit code:
    0 on success, nonzero on a usage error or if the input cannot be opened.
`)

func main() {
	f := rtic.NewFlags(os.Args)
	var quiet = f.Bool(false, "q", "quiet")

	err := f.Parse(rtic.Positional(2, 2))
	if err != nil {
		fmt.Fprintln(rtic.Stderr, usage)
		rtic.Errorf(err)
		rtic.Exit(-1)
		return
	}

	in, out := f.Args[0], f.Args[1]

	fp, err := rtic.InputOrFile(in, quiet.Bool())
	rtic.F(err)
	defer fp.Close()

	diag := entry.Diag(func(msg string) {
		rtic.Errorf("%s", msg)
	})

	err = rtic.Compile(fp, out, diag)
	rtic.F(err)
}
