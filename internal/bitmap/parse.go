package bitmap

import (
	"strings"
	"unicode/utf8"
)

// Parse builds a bitmap from its text form.
//
// Lines are separated by '\n'. The rune count of the first line fixes the
// width, and every other line must match it. The empty string yields a 0x0
// bitmap. No partial bitmap is returned on error.
func Parse(text string) (*Bitmap, error) {
	if text == "" {
		return New(0, 0), nil
	}

	lines := strings.Split(text, "\n")
	width := utf8.RuneCountInString(lines[0])
	b := New(width, len(lines))

	for y, line := range lines {
		if n := utf8.RuneCountInString(line); n != width {
			return nil, &ParseError{Kind: ShapeMismatch, Line: y + 1, Want: width, Got: n}
		}
		x := 0
		for _, r := range line {
			switch r {
			case SymbolOn:
				b.cells[b.index(x, y)] = true
			case SymbolOff:
			default:
				return nil, &ParseError{Kind: InvalidSymbol, Line: y + 1, Column: x + 1, Symbol: r}
			}
			x++
		}
	}

	return b, nil
}

// MustParse is like Parse but panics on error.
func MustParse(text string) *Bitmap {
	b, err := Parse(text)
	if err != nil {
		panic(err)
	}
	return b
}
