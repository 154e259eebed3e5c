// Package render drives frames from a Layerstack to a display surface.
package render

import "glyphstack/internal/sprite"

// Display is the surface a Renderer pushes frames to. Coordinates are
// grid cells; any scaling to terminal columns is the display's business.
type Display interface {
	// Clear blanks the whole surface before a frame is drawn.
	Clear() error
	// DrawCell draws one pixel.
	DrawCell(x, y int, c sprite.Color) error
	// Flush makes the frame visible.
	Flush() error
}
