package binformat

import (
	"bytes"
	"encoding/binary"
	"testing"

	"zgo.at/rtic/internal/entry"
	"zgo.at/rtic/internal/readback"
)

func header(t *testing.T, data []byte) [hdrSize]int16 {
	t.Helper()
	var h [hdrSize]int16
	for i := range h {
		h[i] = int16(binary.LittleEndian.Uint16(data[i*2:]))
	}
	return h
}

func TestWriteHeaderFields(t *testing.T) {
	e := entry.NewEntry("a", "a")
	e.AddCap("am", entry.Cap{Kind: entry.Flag, Index: 1, Data: []byte{1}})
	e.AddCap("cols", entry.Cap{Kind: entry.Number, Index: 0, Data: []byte{80, 0}})
	e.AddCap("bel", entry.Cap{Kind: entry.String, Index: 1, Data: []byte{0x07, 0}})

	data, err := Write(e)
	if err != nil {
		t.Fatal(err)
	}

	h := header(t, data)
	if h[0] != magic {
		t.Errorf("magic = %#o, want %#o", h[0], magic)
	}
	if h[1] != int16(len("a")+1) {
		t.Errorf("names length = %d, want 2", h[1])
	}
	if h[hdrFlags] != 2 {
		t.Errorf("flags section size = %d, want 2 (am is index 1)", h[hdrFlags])
	}
	if h[hdrNumbers] != 1 {
		t.Errorf("numbers section size = %d, want 1 (cols is index 0)", h[hdrNumbers])
	}
	if h[hdrOffsets] != 2 {
		t.Errorf("offsets section size = %d, want 2 (bel is index 1)", h[hdrOffsets])
	}
	if h[hdrTabSize] != 2 {
		t.Errorf("string table size = %d, want 2", h[hdrTabSize])
	}

	names := data[hdrSize*2:]
	if string(names[:2]) != "a\x00" {
		t.Errorf("names section = %q, want \"a\\x00\"", names[:2])
	}

	flagsStart := hdrSize*2 + 2
	flags := data[flagsStart : flagsStart+int(h[hdrFlags])]
	if flags[0] != 0 || flags[1] != 1 {
		t.Errorf("flags = %v, want [0 1]", flags)
	}
}

func TestWriteUnsetNumberIsSentinel(t *testing.T) {
	e := entry.NewEntry("a", "a")
	e.AddCap("it", entry.Cap{Kind: entry.Number, Index: 1, Data: []byte{8, 0}})
	// Index 0 (cols) is left unset; numbers section must still reserve it
	// and fill it with the -1 sentinel.

	data, err := Write(e)
	if err != nil {
		t.Fatal(err)
	}
	h := header(t, data)

	namesLen := int(h[1])
	flagsLen := int(h[hdrFlags])
	off := hdrSize*2 + namesLen + flagsLen
	if off%2 != 0 {
		off++
	}
	cols := int16(binary.LittleEndian.Uint16(data[off:]))
	if cols != -1 {
		t.Errorf("unset cols = %d, want -1", cols)
	}
}

func TestWriteDisabledCapabilityOmitted(t *testing.T) {
	e := entry.NewEntry("a", "a")
	e.AddCap("am", entry.Cap{Kind: entry.Flag, Index: 1, Disabled: true, Data: []byte{0}})

	data, err := Write(e)
	if err != nil {
		t.Fatal(err)
	}
	h := header(t, data)
	if h[hdrFlags] != 0 {
		t.Errorf("flags section size = %d, want 0 (disabled cap contributes nothing)", h[hdrFlags])
	}
}

func TestWriteExtendedCapabilitySection(t *testing.T) {
	e := entry.NewEntry("a", "a")
	e.AddCap("XY", entry.Cap{Kind: entry.Flag, Index: entry.Extended, Data: []byte{1}})

	data, err := Write(e)
	if err != nil {
		t.Fatal(err)
	}

	// Locate where the extended section must start: right after the
	// standard section, word-aligned.
	h := header(t, data)
	namesLen := int(h[1])
	flagsLen := int(h[hdrFlags])
	numbersLen := int(h[hdrNumbers]) * 2
	offsetsLen := int(h[hdrOffsets]) * 2
	tabLen := int(h[hdrTabSize])

	off := hdrSize*2 + namesLen
	if (off+flagsLen)%2 != 0 {
		flagsLen++
	}
	off += flagsLen + numbersLen + offsetsLen + tabLen
	if off%2 != 0 {
		off++
	}

	if off >= len(data) {
		t.Fatalf("no extended section found, output is %d bytes, expected section at %d", len(data), off)
	}

	var exHeader [exHdrSize]int16
	for i := range exHeader {
		exHeader[i] = int16(binary.LittleEndian.Uint16(data[off+i*2:]))
	}
	if exHeader[exFlags] != 1 {
		t.Errorf("extended flag count = %d, want 1", exHeader[exFlags])
	}
}

func TestWriteNoExtendedSectionWhenEmpty(t *testing.T) {
	e := entry.NewEntry("a", "a")
	e.AddCap("am", entry.Cap{Kind: entry.Flag, Index: 1, Data: []byte{1}})

	data, err := Write(e)
	if err != nil {
		t.Fatal(err)
	}
	h := header(t, data)
	namesLen := int(h[1])
	flagsLen := int(h[hdrFlags])
	off := hdrSize*2 + namesLen
	if (off+flagsLen)%2 != 0 {
		flagsLen++
	}
	off += flagsLen + int(h[hdrNumbers])*2 + int(h[hdrOffsets])*2 + int(h[hdrTabSize])
	if off%2 != 0 {
		off++
	}
	if off != len(data) {
		t.Errorf("expected no extended section, but %d trailing bytes remain", len(data)-off)
	}
}

func TestWriteRoundTripsThroughReadback(t *testing.T) {
	e := entry.NewEntry("a", "a|test entry")
	e.AddCap("am", entry.Cap{Kind: entry.Flag, Index: 1, Data: []byte{1}})
	e.AddCap("cols", entry.Cap{Kind: entry.Number, Index: 0, Data: []byte{80, 0}})
	e.AddCap("bel", entry.Cap{Kind: entry.String, Index: 1, Data: []byte{0x07, 0}})
	e.AddCap("XY", entry.Cap{Kind: entry.Flag, Index: entry.Extended, Data: []byte{1}})

	data, err := Write(e)
	if err != nil {
		t.Fatal(err)
	}

	got, err := readback.Read(data)
	if err != nil {
		t.Fatal(err)
	}

	if want := []string{"a", "test entry"}; !equalStrings(got.Names, want) {
		t.Errorf("names = %v, want %v", got.Names, want)
	}
	if !got.Bools["am"] {
		t.Error("am not set")
	}
	if got.Numbers["cols"] != 80 {
		t.Errorf("cols = %d, want 80", got.Numbers["cols"])
	}
	if !bytes.Equal(got.Strings["bel"], []byte{0x07}) {
		t.Errorf("bel = %v, want [7]", got.Strings["bel"])
	}
	if !got.ExtBools["XY"] {
		t.Error("extended flag XY not set")
	}
}

func equalStrings(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func TestWriteOversizedIndexErrors(t *testing.T) {
	e := entry.NewEntry("a", "a")
	e.AddCap("huge", entry.Cap{Kind: entry.Number, Index: 1 << 20, Data: []byte{1, 0}})

	if _, err := Write(e); err == nil {
		t.Error("expected an error for an out-of-range header field")
	}
}
