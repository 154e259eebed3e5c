package assets

import (
	"errors"
	"fmt"
	"image"
	"image/color"
	"image/png"
	"io"
	"os"
	"strings"

	"github.com/lucasb-eyer/go-colorful"
	"golang.org/x/image/draw"

	"glyphstack/internal/sprite"
)

const (
	// ImportTransparent marks transparent cells in imported grids.
	ImportTransparent = "."

	// colorTolerance merges colors closer than this in CIE L*a*b* space.
	colorTolerance = 0.01
)

// importGlyphs are handed out to palette entries in order of first use.
var importGlyphs = []rune("ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz0123456789@%&*+=?")

// ErrTooManyColors is returned when an image needs more palette entries
// than there are glyphs to name them.
var ErrTooManyColors = errors.New("too many colors")

// LoadPNG imports a PNG file as a sprite definition. See ImportImage.
func LoadPNG(path, name string, width, height int) (*Definition, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()
	return ImportPNG(f, name, width, height)
}

// ImportPNG decodes a PNG and imports it. See ImportImage.
func ImportPNG(r io.Reader, name string, width, height int) (*Definition, error) {
	img, err := png.Decode(r)
	if err != nil {
		return nil, fmt.Errorf("decode png: %w", err)
	}
	return ImportImage(img, name, width, height)
}

// ImportImage converts an image into a glyph grid and palette. Width and
// height of zero keep the image size; otherwise the image is scaled with
// nearest-neighbour sampling. Alpha below 50% or magenta (#FF00FF) pixels
// become transparent.
func ImportImage(img image.Image, name string, width, height int) (*Definition, error) {
	bounds := img.Bounds()
	if width <= 0 || height <= 0 {
		width, height = bounds.Dx(), bounds.Dy()
	}
	if width <= 0 || height <= 0 {
		return nil, fmt.Errorf("import %s: empty image", name)
	}

	if bounds.Dx() != width || bounds.Dy() != height {
		dst := image.NewNRGBA(image.Rect(0, 0, width, height))
		draw.NearestNeighbor.Scale(dst, dst.Bounds(), img, bounds, draw.Src, nil)
		img = dst
		bounds = dst.Bounds()
	}

	def := &Definition{
		Name:        name,
		Width:       width,
		Height:      height,
		Transparent: ImportTransparent,
		Palette:     make(map[string]string),
	}

	type entry struct {
		glyph rune
		color colorful.Color
	}
	var palette []entry

	var grid strings.Builder
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			px := color.NRGBAModel.Convert(img.At(bounds.Min.X+x, bounds.Min.Y+y)).(color.NRGBA)
			if px.A < 0x80 || (px.R == 0xFF && px.G == 0x00 && px.B == 0xFF) {
				grid.WriteString(ImportTransparent)
				continue
			}

			c := sprite.Color{R: px.R, G: px.G, B: px.B}
			cf := c.Colorful()
			glyph := rune(0)
			for _, e := range palette {
				if e.color.DistanceLab(cf) < colorTolerance {
					glyph = e.glyph
					break
				}
			}
			if glyph == 0 {
				if len(palette) == len(importGlyphs) {
					return nil, fmt.Errorf("import %s: %w (limit %d)", name, ErrTooManyColors, len(importGlyphs))
				}
				glyph = importGlyphs[len(palette)]
				palette = append(palette, entry{glyph: glyph, color: cf})
				def.Palette[string(glyph)] = c.String()
			}
			grid.WriteRune(glyph)
		}
		grid.WriteByte('\n')
	}

	def.Grid = grid.String()
	return def, nil
}
