// Package readback decodes a compiled terminfo binary back into its
// capability values. It exists to verify internal/binformat's output round
// trips correctly; it is not a decompiler and makes no attempt to render
// terminfo source.
//
// The decode walk is adapted from terminfo_read.go's newTerminfo, which
// reads the same header and uses the same strOffset/tableOffset arithmetic
// to pull string capabilities out of a raw terminfo file — generalized here
// to use internal/capdb's full dictionaries (by index) instead of the small
// fixed capsMap/keysMap the original reader needed for key handling.
package readback

import (
	"encoding/binary"
	"fmt"
	"strings"

	"zgo.at/rtic/internal/capdb"
)

const magic = 0o432

// Decoded holds every capability value recovered from a compiled entry.
type Decoded struct {
	Names []string // primary name, aliases, long name, in header order

	Bools   map[string]bool
	Numbers map[string]int16
	Strings map[string][]byte

	ExtBools   map[string]bool
	ExtNumbers map[string]int16
	ExtStrings map[string][]byte
}

// Read decodes a compiled entry file's contents.
func Read(data []byte) (*Decoded, error) {
	if len(data) < 12 {
		return nil, fmt.Errorf("readback: truncated header (%d bytes)", len(data))
	}

	var header [6]int16
	for i := range header {
		header[i] = int16(binary.LittleEndian.Uint16(data[i*2:]))
	}
	if header[0] != magic {
		return nil, fmt.Errorf("readback: bad magic %#o", uint16(header[0]))
	}

	off := 12
	namesLen := int(header[1])
	if namesLen < 1 || off+namesLen > len(data) {
		return nil, fmt.Errorf("readback: names section out of range")
	}
	names := data[off : off+namesLen-1] // drop the trailing NUL
	off += namesLen

	flagsLen := int(header[2])
	flags := data[off : off+flagsLen]
	off += flagsLen
	off = wordAlign(off)

	numbersLen := int(header[3])
	numbers := data[off : off+numbersLen*2]
	off += numbersLen * 2

	offsetsLen := int(header[4])
	offsets := data[off : off+offsetsLen*2]
	off += offsetsLen * 2

	tabLen := int(header[5])
	table := data[off : off+tabLen]
	off += tabLen

	d := &Decoded{
		Names:   strings.Split(string(names), "|"),
		Bools:   map[string]bool{},
		Numbers: map[string]int16{},
		Strings: map[string][]byte{},
	}

	for i, b := range flags {
		if b != 0 && i < len(capdb.BoolNames) {
			d.Bools[capdb.BoolNames[i]] = true
		}
	}
	for i := 0; i < numbersLen && i < len(capdb.NumberNames); i++ {
		v := int16(binary.LittleEndian.Uint16(numbers[i*2:]))
		if v != -1 {
			d.Numbers[capdb.NumberNames[i]] = v
		}
	}
	for i := 0; i < offsetsLen && i < len(capdb.StringNames); i++ {
		o := int16(binary.LittleEndian.Uint16(offsets[i*2:]))
		if o == -1 {
			continue
		}
		s, err := readNulString(table, int(o))
		if err != nil {
			return nil, fmt.Errorf("readback: string %q: %w", capdb.StringNames[i], err)
		}
		d.Strings[capdb.StringNames[i]] = s
	}

	off = wordAlign(off)
	if off >= len(data) {
		return d, nil
	}

	ext, err := readExtended(data[off:])
	if err != nil {
		return nil, err
	}
	d.ExtBools, d.ExtNumbers, d.ExtStrings = ext.bools, ext.numbers, ext.strings

	return d, nil
}

type extended struct {
	bools   map[string]bool
	numbers map[string]int16
	strings map[string][]byte
}

// readExtended decodes the extended-capabilities section, grouped in
// flags/numbers/strings order exactly as internal/binformat writes it.
func readExtended(data []byte) (extended, error) {
	var out extended
	out.bools = map[string]bool{}
	out.numbers = map[string]int16{}
	out.strings = map[string][]byte{}

	if len(data) < 10 {
		return out, fmt.Errorf("readback: truncated extended header")
	}
	var exHeader [5]int16
	for i := range exHeader {
		exHeader[i] = int16(binary.LittleEndian.Uint16(data[i*2:]))
	}
	off := 10

	nFlags := int(exHeader[0])
	nNumbers := int(exHeader[1])
	nStrings := int(exHeader[2])

	flags := data[off : off+nFlags]
	off += nFlags
	off = wordAlign(off)

	numbers := data[off : off+nNumbers*2]
	off += nNumbers * 2

	offsets := data[off : off+nStrings*2]
	off += nStrings * 2

	total := nFlags + nNumbers + nStrings
	nameOffsets := data[off : off+total*2]
	off += total * 2

	combined := data[off:]

	stringsLen := 0
	stringVals := make([][]byte, nStrings)
	for i := 0; i < nStrings; i++ {
		o := int(int16(binary.LittleEndian.Uint16(offsets[i*2:])))
		s, err := readNulString(combined, o)
		if err != nil {
			return out, fmt.Errorf("readback: extended string %d: %w", i, err)
		}
		stringVals[i] = s
		if end := o + len(s) + 1; end > stringsLen {
			stringsLen = end
		}
	}

	namesBlob := combined[stringsLen:]
	for i := 0; i < total; i++ {
		o := int(int16(binary.LittleEndian.Uint16(nameOffsets[i*2:])))
		name, err := readNulString(namesBlob, o)
		if err != nil {
			return out, fmt.Errorf("readback: extended name %d: %w", i, err)
		}

		switch {
		case i < nFlags:
			out.bools[string(name)] = flags[i] != 0
		case i < nFlags+nNumbers:
			out.numbers[string(name)] = int16(binary.LittleEndian.Uint16(numbers[(i-nFlags)*2:]))
		default:
			out.strings[string(name)] = stringVals[i-nFlags-nNumbers]
		}
	}

	return out, nil
}

func readNulString(data []byte, off int) ([]byte, error) {
	if off < 0 || off > len(data) {
		return nil, fmt.Errorf("offset %d out of range", off)
	}
	end := off
	for end < len(data) && data[end] != 0 {
		end++
	}
	if end >= len(data) {
		return nil, fmt.Errorf("unterminated string at offset %d", off)
	}
	return data[off:end], nil
}

func wordAlign(off int) int {
	if off%2 != 0 {
		return off + 1
	}
	return off
}
