package stack

import (
	"fmt"

	"glyphstack/internal/logging"
	"glyphstack/internal/sprite"
)

// FrameBuffer is a dense row-major grid of pixels sized to the display.
// Cells keep their grid position for life; only colors change.
type FrameBuffer struct {
	cells      []sprite.Pixel
	background sprite.Color
	width      int
	height     int
}

// NewFrameBuffer allocates a width x height buffer filled with bg.
// A cell count other than width*height is a bug and panics.
func NewFrameBuffer(width, height int, bg sprite.Color) *FrameBuffer {
	fb := &FrameBuffer{
		cells:      make([]sprite.Pixel, 0, width*height),
		background: bg,
		width:      width,
		height:     height,
	}
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			fb.cells = append(fb.cells, sprite.P(x, y, bg))
		}
	}

	if len(fb.cells) != width*height {
		panic(fmt.Sprintf("framebuffer: expected %d cells, allocated %d", width*height, len(fb.cells)))
	}
	return fb
}

// Width returns the buffer width in cells.
func (fb *FrameBuffer) Width() int { return fb.width }

// Height returns the buffer height in cells.
func (fb *FrameBuffer) Height() int { return fb.height }

// Background returns the reset color.
func (fb *FrameBuffer) Background() sprite.Color { return fb.background }

// Cells exposes the row-major cell slice. Callers must not resize it.
func (fb *FrameBuffer) Cells() []sprite.Pixel { return fb.cells }

// inBounds returns true if (x, y) is on the grid
func (fb *FrameBuffer) inBounds(x, y int) bool {
	return x >= 0 && x < fb.width && y >= 0 && y < fb.height
}

// At returns the cell at (x, y).
func (fb *FrameBuffer) At(x, y int) (sprite.Pixel, bool) {
	if !fb.inBounds(x, y) {
		return sprite.Pixel{}, false
	}
	return fb.cells[fb.width*y+x], true
}

// Place translates a sprite into world space with its top-left corner at
// (wx, wy). Pixels that land off the grid are dropped.
func (fb *FrameBuffer) Place(s *sprite.Sprite, wx, wy int) []sprite.Pixel {
	pixels := make([]sprite.Pixel, 0, len(s.Pixels))
	for _, p := range s.Pixels {
		x := p.X + wx
		y := p.Y + wy
		if !fb.inBounds(x, y) {
			continue
		}
		pixels = append(pixels, sprite.Pixel{
			X:        x,
			Y:        y,
			Color:    p.Color,
			Rendered: p.Rendered,
		})
	}
	return pixels
}

// Blit overwrites cell colors with every rendered pixel of every group.
// Later pixels win. Transparent pixels are skipped; out-of-range pixels
// are logged and skipped.
func (fb *FrameBuffer) Blit(groups [][]sprite.Pixel) {
	for _, group := range groups {
		for _, p := range group {
			if !p.Rendered {
				continue
			}
			if !fb.inBounds(p.X, p.Y) {
				logging.Logger().Warn("framebuffer does not contain pixel, ignoring",
					"x", p.X, "y", p.Y, "width", fb.width, "height", fb.height)
				continue
			}
			fb.cells[fb.width*p.Y+p.X].Color = p.Color
		}
	}
}

// Reset paints every cell back to the background color.
func (fb *FrameBuffer) Reset() {
	for i := range fb.cells {
		fb.cells[i].Color = fb.background
	}
}
