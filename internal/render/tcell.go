package render

import (
	"github.com/gdamore/tcell/v2"
	"github.com/mattn/go-runewidth"

	"glyphstack/internal/sprite"
)

// TcellDisplay adapts a tcell.Screen to Display.
type TcellDisplay struct {
	screen tcell.Screen
	glyph  []rune
	scale  int
}

// NewTcellDisplay wraps an initialized screen. An empty glyph uses DefaultGlyph.
func NewTcellDisplay(screen tcell.Screen, glyph string) *TcellDisplay {
	if glyph == "" {
		glyph = DefaultGlyph
	}
	return &TcellDisplay{
		screen: screen,
		glyph:  []rune(glyph),
		scale:  GlyphScale(glyph),
	}
}

// Scale returns the horizontal columns per pixel.
func (d *TcellDisplay) Scale() int { return d.scale }

func (d *TcellDisplay) Clear() error {
	d.screen.Clear()
	return nil
}

func (d *TcellDisplay) DrawCell(x, y int, c sprite.Color) error {
	style := tcell.StyleDefault.Foreground(tcell.NewRGBColor(int32(c.R), int32(c.G), int32(c.B)))
	col := x * d.scale
	for _, r := range d.glyph {
		d.screen.SetContent(col, y, r, nil, style)
		col += runewidth.RuneWidth(r)
	}
	return nil
}

func (d *TcellDisplay) Flush() error {
	d.screen.Show()
	return nil
}

// Underlying exposes the wrapped screen for event polling.
func (d *TcellDisplay) Underlying() tcell.Screen {
	return d.screen
}
