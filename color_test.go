package rtic_test

import (
	"fmt"
	"os"
	"testing"

	"zgo.at/rtic"
)

func ExampleColor() {
	rtic.Stdout = os.Stdout
	rtic.Colorln("You're looking rather red", rtic.Red) // Apply a color.
	rtic.Colorln("A bold move", rtic.Bold)              // Or an attribute.
	rtic.Colorln("Tomato", rtic.Red.Bg())               // Transform to background color.

	rtic.Colorln("Wow, such beautiful text", // Can be combined.
		rtic.Bold|rtic.Underline|rtic.Red|rtic.Green.Bg())

	rtic.Colorln("Contrast ratios is for suckers", // 256 color
		rtic.Color256(56)|rtic.Color256(99).Bg())

	rtic.Colorln("REAL men use TRUE color!", // True color
		rtic.ColorHex("#678")|rtic.ColorHex("#abc").Bg())

	fmt.Println(rtic.Red|rtic.Bold, "red!") // Set colors "directly"
	fmt.Println("and bold!", rtic.Reset)
	fmt.Printf("%sc%so%sl%so%sr%s\n", rtic.Red, rtic.Magenta, rtic.Cyan, rtic.Blue, rtic.Yellow, rtic.Reset)

	// Output:
	// [31mYou're looking rather red[0m
	// [1mA bold move[0m
	// [41mTomato[0m
	// [1;4;31;42mWow, such beautiful text[0m
	// [38;5;56;48;5;99mContrast ratios is for suckers[0m
	// [38;2;102;119;136;48;2;170;187;204mREAL men use TRUE color![0m
	// [1;31m red!
	// and bold! [0m
	// [31mc[35mo[36ml[34mo[33mr[0m
}

func TestColor(t *testing.T) {
	tests := []struct {
		in   rtic.Color
		want string
	}{
		// Basic terminal attributes
		{rtic.Bold, "\x1b[1m"},
		{rtic.Underline, "\x1b[4m"},
		{rtic.Bold | rtic.Underline, "\x1b[1;4m"},

		// Color boundaries (first and last).
		{rtic.Black | rtic.Black.Bg(), "\x1b[30;40m"},
		{rtic.BrightWhite | rtic.BrightWhite.Bg(), "\x1b[97;107m"},

		{rtic.Color256(0) | rtic.Color256(0).Bg(), "\x1b[38;5;0;48;5;0m"},
		{rtic.Color256(255) | rtic.Color256(255).Bg(), "\x1b[38;5;255;48;5;255m"},
		{rtic.ColorHex("#678") | rtic.ColorHex("#abc").Bg(), "\x1b[38;2;102;119;136;48;2;170;187;204m"},
		{rtic.ColorHex("#678") | rtic.ColorHex("#abc").Bg(), "\x1b[38;2;102;119;136;48;2;170;187;204m"},

		// Various combinations.
		{rtic.Red, "\x1b[31m"},
		{rtic.Bold | rtic.Red, "\x1b[1;31m"},
		{rtic.Red | rtic.Underline, "\x1b[4;31m"},
		{rtic.Green.Bg(), "\x1b[42m"},
		{rtic.Green.Bg() | rtic.Bold, "\x1b[1;42m"},
		{rtic.BrightGreen.Bg() | rtic.Red, "\x1b[31;102m"},
		{rtic.Color256(99) | rtic.Red.Bg() | rtic.Bold | rtic.Underline, "\x1b[1;4;38;5;99;41m"},

		{rtic.Bold | rtic.Faint | rtic.Italic | rtic.Underline | rtic.BlinkSlow | rtic.BlinkRapid | rtic.ReverseVideo | rtic.Concealed | rtic.CrossedOut,
			"\x1b[1;2;3;4;5;6;7;8;9m"},

		{rtic.Bold.Bg(), "\x1b[1m"},                 // Doesn't make much sense, but should work nonetheless.
		{rtic.Color(rtic.Red.Bg().Bg()), "\x1b[41m"}, // Double .Bg() does nothing
	}

	for _, tt := range tests {
		t.Run("", func(t *testing.T) {
			rtic.WantColor = false
			t.Run("WantColor=false", func(t *testing.T) {
				got := tt.in.String()
				if got != "" {
					t.Errorf("Colorf WantColor not respected? got: %q", got)
				}
				got = rtic.Colorf("Hello", tt.in)
				if got != "Hello" {
					t.Errorf("Colorf WantColor not respected? got: %q", got)
				}
			})

			rtic.WantColor = true
			t.Run("String", func(t *testing.T) {
				got := tt.in.String()
				if got != tt.want {
					t.Errorf("Color.String()\ngot:  %q → %[1]s\nwant: %q → %[2]s", got, tt.want)
				}
			})

			t.Run("Colorf", func(t *testing.T) {
				got := rtic.Colorf("Hello", tt.in)
				if got != tt.want+"Hello\x1b[0m" {
					t.Errorf("Colorf()\ngot:  %q → %[1]s\nwant: %q → %[2]s", got, tt.want)
				}
			})

			t.Run("DeColor", func(t *testing.T) {
				got := rtic.Colorf("Hello", tt.in)
				de := rtic.DeColor(got)
				if de != "Hello" {
					t.Errorf("DeColor: %q", de)
				}
			})
		})
	}

	t.Run("Reset", func(t *testing.T) {
		c := rtic.Reset

		rtic.WantColor = false
		got := c.String()
		if got != "" {
			t.Errorf("Color.String()\ngot:  %q\nwant: %q", got, "")
		}

		rtic.WantColor = true
		got = c.String()
		if got != "\x1b[0m" {
			t.Errorf("Color.String()\ngot:  %q\nwant: %q", got, "\x1b[0m")
		}

		got = rtic.Colorf("Hello", c)
		if got != "Hello" {
			t.Errorf("Color.String()\ngot:  %q\nwant: %q", got, "Hello")
		}
	})

	t.Run("errors", func(t *testing.T) {
		tests := []rtic.Color{
			//rtic.Color256(-1),
			//rtic.Color256(256),
			rtic.ColorHex("chucknorris"),
			rtic.ColorHex("#12"),
			rtic.ColorHex("#1234"),
			rtic.ColorHex("#12345"),
			rtic.ColorHex("#1234567"),
			rtic.ColorHex("#12345678"),
			rtic.ColorHex("#123456789"),
			rtic.ColorHex("#1234567890"),
		}

		rtic.WantColor = true
		for _, tt := range tests {
			t.Run("String()", func(t *testing.T) {
				got := tt.String()
				if got != "" {
					t.Errorf("%q", got)
				}
			})
			t.Run("Colorf()", func(t *testing.T) {
				got := rtic.Colorf("Hello", tt)
				want := "(rtic.Color ERROR invalid hex color)Hello"
				if got != want {
					t.Errorf("\ngot:  %q\nwant: %q", got, want)
				}
			})
		}
	})
}

func BenchmarkColor(b *testing.B) {
	c := rtic.Green | rtic.Red.Bg() | rtic.Bold | rtic.Underline
	var s string

	b.ReportAllocs()
	for n := 0; n < b.N; n++ {
		s = rtic.Colorf("Hello", c)
	}
	_ = s
}
