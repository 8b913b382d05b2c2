// Package binformat implements C6 and C7: encoding a single entry.Entry as
// the legacy ncurses-compatible compiled terminfo binary (standard section
// plus, when present, the extended-capabilities section).
//
// The layout is grounded directly in rtic.cpp's updateDB/updateExtendedCaps:
// a fixed six-int16 header, the NUL-joined names string, a flags byte array,
// word-alignment padding, a numbers array, a string-offset array and the
// string table itself — all little-endian, all sized to the highest
// capability index actually used rather than to the full dictionary.
package binformat

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"math"
	"sort"

	"zgo.at/rtic/internal/capdb"
	"zgo.at/rtic/internal/entry"
)

// magic is the legacy (non-wide) terminfo magic number, octal 0432 in the
// original source.
const magic = 0o432

const (
	hdrFlags = iota + 2 // header fields after magic and names length
	hdrNumbers
	hdrOffsets
	hdrTabSize
	hdrSize
)

const (
	exFlags = iota
	exNumbers
	exStrings
	exStrCount
	exTabSize
	exHdrSize
)

const notSet = -1 // unset number/offset sentinel: 0xFFFF once written

// Write encodes e and returns the compiled binary image.
func Write(e *entry.Entry) ([]byte, error) {
	header := [hdrSize]int16{magic, int16(len(e.Names) + 1)}

	flags := make([]byte, len(capdb.BoolNames))
	numbers := fill16(len(capdb.NumberNames), notSet)
	strs := map[int][]byte{}

	for name, c := range e.Caps {
		if c.Index < 0 || c.Disabled {
			continue
		}
		switch c.Kind {
		case entry.Flag:
			if err := growInt16(&header[hdrFlags], c.Index+1); err != nil {
				return nil, fmt.Errorf("capability %q: %w", name, err)
			}
			flags[c.Index] = c.Data[0]
		case entry.Number:
			if err := growInt16(&header[hdrNumbers], c.Index+1); err != nil {
				return nil, fmt.Errorf("capability %q: %w", name, err)
			}
			numbers[c.Index*2] = c.Data[0]
			numbers[c.Index*2+1] = c.Data[1]
		case entry.String:
			strs[c.Index] = c.Data
		}
	}

	offsets := fill16(len(capdb.StringNames), notSet)
	var table []byte
	for _, i := range sortedKeys(strs) {
		data := strs[i]
		off := len(table)
		if err := growInt16(&header[hdrOffsets], i+1); err != nil {
			return nil, fmt.Errorf("string table offset: %w", err)
		}
		if off+len(data) > math.MaxInt16 {
			return nil, fmt.Errorf("string table overflows 16-bit offsets at capability index %d", i)
		}
		header[hdrTabSize] = int16(off + len(data))
		binary.LittleEndian.PutUint16(offsets[i*2:], uint16(off))
		table = append(table, data...)
	}

	buf := new(bytes.Buffer)
	if err := binary.Write(buf, binary.LittleEndian, header[:]); err != nil {
		return nil, err
	}
	buf.WriteString(e.Names)
	buf.WriteByte(0)
	buf.Write(flags[:header[hdrFlags]])
	padToWord(buf)
	buf.Write(numbers[:header[hdrNumbers]*2])
	buf.Write(offsets[:header[hdrOffsets]*2])
	buf.Write(table[:header[hdrTabSize]])

	if err := writeExtended(buf, e); err != nil {
		return nil, err
	}

	return buf.Bytes(), nil
}

// writeExtended appends the extended-capabilities section, grouped by kind
// (flags, then numbers, then strings) and within each kind in the order
// entry.Caps is iterated here — name order, since capability names are
// visited sorted below, matching rtic.cpp's use of an ordered map.
func writeExtended(buf *bytes.Buffer, e *entry.Entry) error {
	var exHeader [exHdrSize]int16
	var flags, numbers, offsets, nameOffsets []byte
	var strs, names []byte

	capNames := sortedExtendedNames(e)
	for _, kind := range []entry.Kind{entry.Flag, entry.Number, entry.String} {
		for _, name := range capNames {
			c := e.Caps[name]
			if c.Index != entry.Extended || c.Disabled || c.Kind != kind {
				continue
			}
			switch kind {
			case entry.Flag:
				exHeader[exFlags]++
				flags = append(flags, 1)
			case entry.Number:
				exHeader[exNumbers]++
				numbers = append(numbers, c.Data[0], c.Data[1])
			case entry.String:
				exHeader[exStrings]++
				off := len(strs)
				offsets = append(offsets, byte(off), byte(off>>8))
				strs = append(strs, c.Data...)
			}

			off := len(names)
			nameOffsets = append(nameOffsets, byte(off), byte(off>>8))
			names = append(names, name...)
			names = append(names, 0)
		}
	}

	exHeader[exStrCount] = exHeader[exFlags] + exHeader[exNumbers] + exHeader[exStrings]*2
	exHeader[exTabSize] = int16(len(strs) + len(names))
	if exHeader[exTabSize] == 0 {
		return nil
	}

	padToWord(buf)
	if err := binary.Write(buf, binary.LittleEndian, exHeader[:]); err != nil {
		return err
	}
	buf.Write(flags)
	padToWord(buf)
	buf.Write(numbers)
	buf.Write(offsets)
	buf.Write(nameOffsets)
	buf.Write(strs)
	buf.Write(names)
	return nil
}

// sortedExtendedNames returns e's capability names in ascending order, so
// the output is deterministic regardless of Go's randomized map iteration.
func sortedExtendedNames(e *entry.Entry) []string {
	names := make([]string, 0, len(e.Caps))
	for name := range e.Caps {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func sortedKeys(m map[int][]byte) []int {
	keys := make([]int, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Ints(keys)
	return keys
}

func fill16(n int, v int16) []byte {
	b := make([]byte, n*2)
	for i := 0; i < n; i++ {
		binary.LittleEndian.PutUint16(b[i*2:], uint16(v))
	}
	return b
}

func padToWord(buf *bytes.Buffer) {
	if buf.Len()%2 != 0 {
		buf.WriteByte(0)
	}
}

// growInt16 raises *field to v if v is larger, erroring instead of silently
// truncating when v would overflow a signed 16-bit header field. See the
// signed-short-overflow REDESIGN FLAG decision in SPEC_FULL.md.
func growInt16(field *int16, v int) error {
	if v > math.MaxInt16 {
		return fmt.Errorf("index %d exceeds the 16-bit header field range", v)
	}
	if int16(v) > *field {
		*field = int16(v)
	}
	return nil
}
