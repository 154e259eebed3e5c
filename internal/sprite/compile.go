// Package sprite compiles human-readable glyph grids into pixel sprites.
package sprite

import (
	"errors"
	"fmt"
	"strings"
	"unicode"

	"github.com/mattn/go-runewidth"
)

// ErrMalformedPalette reports sprite metadata that can never compile.
var ErrMalformedPalette = errors.New("malformed palette")

// AspectError is returned when the sanitized grid does not hold exactly
// width*height cells.
type AspectError struct {
	Expected int
	Actual   int
}

func (e *AspectError) Error() string {
	return fmt.Sprintf(
		"declared aspect ratio does not match grid size: expected %d cells, got %d (palette may be missing an entry)",
		e.Expected, e.Actual,
	)
}

// Metadata describes how to read a glyph grid.
type Metadata struct {
	ColorMap    map[rune]Color
	Transparent rune // marks skip cells; need not be in ColorMap
	Width       int
	Height      int
	Tag         string
}

// Sprite is a compiled, immutable pixel template in local space.
// Pixels are row-major with one entry per grid cell.
type Sprite struct {
	Pixels []Pixel
	Width  int
	Height int
	Center Point
	Tag    string
}

// Sanitize drops every rune that is neither a palette key nor the
// transparent marker. Layout whitespace disappears here.
func Sanitize(source string, md Metadata) []rune {
	out := make([]rune, 0, len(source))
	for _, r := range source {
		if md.Transparent != 0 && r == md.Transparent {
			out = append(out, r)
			continue
		}
		if _, ok := md.ColorMap[r]; ok {
			out = append(out, r)
		}
	}
	return out
}

// Compile turns a glyph grid into a Sprite. Identical inputs always give
// identical sprites.
func Compile(source string, md Metadata) (*Sprite, error) {
	if err := validateMetadata(md); err != nil {
		return nil, err
	}

	cells := Sanitize(source, md)
	expected := md.Width * md.Height
	if len(cells) != expected {
		return nil, &AspectError{Expected: expected, Actual: len(cells)}
	}

	s := &Sprite{
		Pixels: make([]Pixel, 0, expected),
		Width:  md.Width,
		Height: md.Height,
		Center: Point{X: md.Width / 2, Y: md.Height / 2},
		Tag:    md.Tag,
	}

	x, y := 0, 0
	for _, r := range cells {
		px := Pixel{X: x, Y: y}
		if r != md.Transparent {
			px.Color = md.ColorMap[r]
			px.Rendered = true
		}
		s.Pixels = append(s.Pixels, px)

		x++
		if x == md.Width {
			x = 0
			y++
		}
	}
	return s, nil
}

func validateMetadata(md Metadata) error {
	if md.Width <= 0 || md.Height <= 0 {
		return fmt.Errorf("%w: dimensions %dx%d", ErrMalformedPalette, md.Width, md.Height)
	}
	if len(md.ColorMap) == 0 && md.Transparent == 0 {
		return fmt.Errorf("%w: no palette entries", ErrMalformedPalette)
	}
	if md.Transparent != 0 && !usableGlyph(md.Transparent) {
		return fmt.Errorf("%w: transparent marker %q is not a visible glyph", ErrMalformedPalette, md.Transparent)
	}
	for r := range md.ColorMap {
		if !usableGlyph(r) {
			return fmt.Errorf("%w: key %q is not a visible glyph", ErrMalformedPalette, r)
		}
	}
	return nil
}

// usableGlyph rejects runes the sanitizer must be able to strip as layout
// (whitespace) and runes that occupy no terminal cell.
func usableGlyph(r rune) bool {
	return !unicode.IsSpace(r) && runewidth.RuneWidth(r) > 0
}

// String renders the sprite back into a glyph grid, one row per line,
// using '#' for rendered cells and '.' for transparent ones.
func (s *Sprite) String() string {
	if s.Width <= 0 {
		return ""
	}
	var sb strings.Builder
	sb.Grow(len(s.Pixels) + s.Height)
	for i, p := range s.Pixels {
		if p.Rendered {
			sb.WriteByte('#')
		} else {
			sb.WriteByte('.')
		}
		if (i+1)%s.Width == 0 {
			sb.WriteByte('\n')
		}
	}
	return sb.String()
}

// At returns the local pixel at (x, y).
func (s *Sprite) At(x, y int) (Pixel, bool) {
	if x < 0 || x >= s.Width || y < 0 || y >= s.Height {
		return Pixel{}, false
	}
	return s.Pixels[y*s.Width+x], true
}
