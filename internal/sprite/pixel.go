package sprite

// Pixel is a single colored cell. Coordinates are signed so a pixel can
// sit off-buffer while it is being placed, before clipping.
type Pixel struct {
	X, Y     int
	Color    Color
	Rendered bool // false = transparent, never drawn or blitted
}

// Point is an integer cell position.
type Point struct {
	X, Y int
}

// P is a shorthand to create a rendered pixel.
func P(x, y int, c Color) Pixel {
	return Pixel{X: x, Y: y, Color: c, Rendered: true}
}

// TransparentPixel returns a skip cell at the given position.
func TransparentPixel(x, y int) Pixel {
	return Pixel{X: x, Y: y}
}
