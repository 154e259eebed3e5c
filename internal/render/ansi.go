package render

import (
	"fmt"
	"io"
	"strings"

	"github.com/mattn/go-runewidth"
	"github.com/muesli/termenv"

	"glyphstack/internal/sprite"
)

const (
	ESC   = "\x1b"
	CSI   = ESC + "["
	Reset = CSI + "0m"

	// DefaultGlyph is drawn for every pixel. Two columns per pixel makes
	// cells look roughly square since terminal chars are ~2:1.
	DefaultGlyph = "██"
)

// MoveTo positions the cursor at row, col (1-based).
func MoveTo(row, col int) string {
	return fmt.Sprintf("%s%d;%dH", CSI, row, col)
}

// ClearScreen clears the entire screen and homes the cursor.
func ClearScreen() string {
	return CSI + "2J" + CSI + "H"
}

// HideCursor hides the terminal cursor.
func HideCursor() string {
	return CSI + "?25l"
}

// ShowCursor shows the terminal cursor.
func ShowCursor() string {
	return CSI + "?25h"
}

// EnableAltScreen switches to the alternate screen buffer.
func EnableAltScreen() string {
	return CSI + "?1049h"
}

// DisableAltScreen switches back from the alternate screen buffer.
func DisableAltScreen() string {
	return CSI + "?1049l"
}

// GlyphScale is how many terminal columns one pixel drawn with glyph occupies.
func GlyphScale(glyph string) int {
	if w := runewidth.StringWidth(glyph); w > 0 {
		return w
	}
	return 1
}

// ANSIDisplay draws pixels as colored glyphs on any writer speaking ANSI,
// such as os.Stdout or an SSH session. A frame is buffered until Flush.
type ANSIDisplay struct {
	w       io.Writer
	profile termenv.Profile
	glyph   string
	scale   int
	sb      strings.Builder
}

// ANSIOption configures an ANSIDisplay.
type ANSIOption func(*ANSIDisplay)

// WithProfile sets the color profile colors are downsampled to.
func WithProfile(p termenv.Profile) ANSIOption {
	return func(d *ANSIDisplay) { d.profile = p }
}

// WithGlyph sets the string drawn for each pixel.
func WithGlyph(glyph string) ANSIOption {
	return func(d *ANSIDisplay) {
		if glyph != "" {
			d.glyph = glyph
		}
	}
}

// NewANSIDisplay creates a display writing to w. Colors default to 24-bit.
func NewANSIDisplay(w io.Writer, opts ...ANSIOption) *ANSIDisplay {
	d := &ANSIDisplay{
		w:       w,
		profile: termenv.TrueColor,
		glyph:   DefaultGlyph,
	}
	for _, opt := range opts {
		opt(d)
	}
	d.scale = GlyphScale(d.glyph)
	d.sb.Grow(16384)
	return d
}

// Scale returns the horizontal columns per pixel.
func (d *ANSIDisplay) Scale() int { return d.scale }

// Setup enters the alternate screen and hides the cursor.
func (d *ANSIDisplay) Setup() error {
	_, err := io.WriteString(d.w, EnableAltScreen()+HideCursor()+ClearScreen())
	return err
}

// Teardown restores the cursor and the main screen.
func (d *ANSIDisplay) Teardown() error {
	_, err := io.WriteString(d.w, Reset+ShowCursor()+DisableAltScreen())
	return err
}

// Clear queues a full-screen clear.
func (d *ANSIDisplay) Clear() error {
	d.sb.WriteString(ClearScreen())
	return nil
}

// DrawCell queues one pixel at grid position (x, y).
func (d *ANSIDisplay) DrawCell(x, y int, c sprite.Color) error {
	if x < 0 || y < 0 {
		return fmt.Errorf("draw cell (%d,%d): negative position", x, y)
	}
	d.sb.WriteString(MoveTo(y+1, x*d.scale+1))
	if seq := d.profile.Color(c.Hex()).Sequence(false); seq != "" {
		d.sb.WriteString(CSI)
		d.sb.WriteString(seq)
		d.sb.WriteByte('m')
	}
	d.sb.WriteString(d.glyph)
	return nil
}

// Flush writes the queued frame in one call.
func (d *ANSIDisplay) Flush() error {
	if d.sb.Len() == 0 {
		return nil
	}
	d.sb.WriteString(Reset)
	_, err := io.WriteString(d.w, d.sb.String())
	d.sb.Reset()
	if err != nil {
		return fmt.Errorf("flush frame: %w", err)
	}
	return nil
}
