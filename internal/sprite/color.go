package sprite

import (
	"fmt"
	"strings"

	"github.com/lucasb-eyer/go-colorful"
)

// Color is a 24-bit RGB cell color.
type Color struct {
	R, G, B uint8
}

// Basic terminal palette, matching the common VGA values.
var (
	Black         = Color{0, 0, 0}
	Red           = Color{170, 0, 0}
	Green         = Color{0, 170, 0}
	Yellow        = Color{170, 170, 0}
	Blue          = Color{0, 0, 170}
	Magenta       = Color{170, 0, 170}
	Cyan          = Color{0, 170, 170}
	White         = Color{170, 170, 170}
	Gray          = Color{85, 85, 85}
	BrightRed     = Color{255, 85, 85}
	BrightGreen   = Color{85, 255, 85}
	BrightYellow  = Color{255, 255, 85}
	BrightBlue    = Color{85, 85, 255}
	BrightMagenta = Color{255, 85, 255}
	BrightCyan    = Color{85, 255, 255}
	BrightWhite   = Color{255, 255, 255}
)

// colorNames maps config color names to palette entries.
var colorNames = map[string]Color{
	"black":          Black,
	"red":            Red,
	"green":          Green,
	"yellow":         Yellow,
	"blue":           Blue,
	"magenta":        Magenta,
	"cyan":           Cyan,
	"white":          White,
	"gray":           Gray,
	"grey":           Gray,
	"bright_red":     BrightRed,
	"bright_green":   BrightGreen,
	"bright_yellow":  BrightYellow,
	"bright_blue":    BrightBlue,
	"bright_magenta": BrightMagenta,
	"bright_cyan":    BrightCyan,
	"bright_white":   BrightWhite,
}

// ParseColor resolves a color name ("magenta", "bright_cyan") or a
// "#rrggbb" hex string.
func ParseColor(s string) (Color, error) {
	name := strings.ToLower(strings.TrimSpace(s))
	if c, ok := colorNames[name]; ok {
		return c, nil
	}
	if strings.HasPrefix(name, "#") {
		cf, err := colorful.Hex(name)
		if err != nil {
			return Color{}, fmt.Errorf("parse color %q: %w", s, err)
		}
		return FromColorful(cf), nil
	}
	return Color{}, fmt.Errorf("unknown color %q", s)
}

// FromColorful converts a go-colorful color, clamping to the RGB gamut.
func FromColorful(c colorful.Color) Color {
	r, g, b := c.Clamped().RGB255()
	return Color{R: r, G: g, B: b}
}

// Colorful returns the color as a go-colorful value.
func (c Color) Colorful() colorful.Color {
	return colorful.Color{
		R: float64(c.R) / 255,
		G: float64(c.G) / 255,
		B: float64(c.B) / 255,
	}
}

// Hex returns the "#rrggbb" form.
func (c Color) Hex() string {
	return fmt.Sprintf("#%02x%02x%02x", c.R, c.G, c.B)
}

// String returns the palette name when there is one, otherwise the hex form.
func (c Color) String() string {
	for _, name := range []string{
		"black", "red", "green", "yellow", "blue", "magenta", "cyan", "white", "gray",
		"bright_red", "bright_green", "bright_yellow", "bright_blue",
		"bright_magenta", "bright_cyan", "bright_white",
	} {
		if colorNames[name] == c {
			return name
		}
	}
	return c.Hex()
}
