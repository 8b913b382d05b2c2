package strdecode

import (
	"bytes"
	"testing"
)

func TestDecode(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want []byte
	}{
		{"escape-E", `\E`, []byte{0x1B, 0x00}},
		{"control-M", `^M`, []byte{0x0D, 0x00}},
		{"octal-200", `\200`, []byte{0x80, 0x00}},
		{"octal-000-zero-sub", `\000`, []byte{0x80, 0x00}},
		{"plain", `[%p1%dH`, []byte("[%p1%dH\x00")},
		{"numeric-literal-rewrite", `\%{65}%dX`, []byte("%'A'%dX\x00")},
		{"control-non-range-restores-caret", `^z`, []byte{'^', 'z', 0x00}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Decode(tt.in, nil)
			if !bytes.Equal(got, tt.want) {
				t.Errorf("Decode(%q) = %#v, want %#v", tt.in, got, tt.want)
			}
		})
	}
}

func TestDecodeUnknownEscapeWarns(t *testing.T) {
	var msgs []string
	got := Decode(`\q`, func(m string) { msgs = append(msgs, m) })
	if !bytes.Equal(got, []byte{'q', 0x00}) {
		t.Errorf("got %#v", got)
	}
	if len(msgs) != 1 {
		t.Fatalf("expected one warning, got %v", msgs)
	}
}

func TestDecodeTrailingOctal(t *testing.T) {
	// Octal accumulation pending at end of input must still flush.
	got := Decode(`\12`, nil)
	if !bytes.Equal(got, []byte{0o12, 0x00}) {
		t.Errorf("got %#v", got)
	}
}
