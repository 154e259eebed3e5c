package assets

import (
	"bytes"
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"glyphstack/internal/sprite"
)

// testImage is a 4x2 image: red, red, transparent, magenta / blue, red, blue, almost-red.
func testImage() *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, 4, 2))
	img.Set(0, 0, color.NRGBA{255, 0, 0, 255})
	img.Set(1, 0, color.NRGBA{255, 0, 0, 255})
	img.Set(2, 0, color.NRGBA{0, 255, 0, 10})
	img.Set(3, 0, color.NRGBA{255, 0, 255, 255})
	img.Set(0, 1, color.NRGBA{0, 0, 255, 255})
	img.Set(1, 1, color.NRGBA{255, 0, 0, 255})
	img.Set(2, 1, color.NRGBA{0, 0, 255, 255})
	img.Set(3, 1, color.NRGBA{254, 0, 0, 255})
	return img
}

func TestImportImage(t *testing.T) {
	def, err := ImportImage(testImage(), "flag", 0, 0)
	require.NoError(t, err)

	assert.Equal(t, 4, def.Width)
	assert.Equal(t, 2, def.Height)
	assert.Equal(t, "AA..\nBABA\n", def.Grid)
	assert.Equal(t, map[string]string{"A": "#ff0000", "B": "#0000ff"}, def.Palette)

	s, err := def.Compile()
	require.NoError(t, err)
	assert.Equal(t, sprite.Color{R: 255}, s.Pixels[0].Color)
	assert.False(t, s.Pixels[2].Rendered)
	assert.False(t, s.Pixels[3].Rendered)
	assert.Equal(t, sprite.Color{B: 255}, s.Pixels[4].Color)
}

func TestImportPNGScaled(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, testImage()))

	def, err := ImportPNG(&buf, "small", 2, 1)
	require.NoError(t, err)
	assert.Equal(t, 2, def.Width)
	assert.Equal(t, 1, def.Height)

	s, err := def.Compile()
	require.NoError(t, err)
	assert.Len(t, s.Pixels, 2)
}

func TestLoadPNG(t *testing.T) {
	path := filepath.Join(t.TempDir(), "flag.png")
	f, err := os.Create(path)
	require.NoError(t, err)
	require.NoError(t, png.Encode(f, testImage()))
	require.NoError(t, f.Close())

	def, err := LoadPNG(path, "flag", 0, 0)
	require.NoError(t, err)
	assert.Equal(t, "flag", def.Name)

	_, err = LoadPNG(filepath.Join(t.TempDir(), "none.png"), "x", 0, 0)
	assert.Error(t, err)
}

func TestImportPNGNotPNG(t *testing.T) {
	_, err := ImportPNG(bytes.NewReader([]byte("GIF89a")), "x", 0, 0)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "decode png")
}

func TestImportTooManyColors(t *testing.T) {
	img := image.NewNRGBA(image.Rect(0, 0, 16, 16))
	for y := 0; y < 16; y++ {
		for x := 0; x < 16; x++ {
			img.Set(x, y, color.NRGBA{uint8(x * 16), uint8(y * 16), 128, 255})
		}
	}
	_, err := ImportImage(img, "ramp", 0, 0)
	assert.ErrorIs(t, err, ErrTooManyColors)
}

func TestImportEmptyImage(t *testing.T) {
	_, err := ImportImage(image.NewNRGBA(image.Rect(0, 0, 0, 0)), "none", 0, 0)
	assert.Error(t, err)
}

func TestImportKeepsStraightColor(t *testing.T) {
	img := image.NewNRGBA(image.Rect(0, 0, 3, 1))
	img.Set(0, 0, color.NRGBA{255, 0, 0, 200})
	img.Set(1, 0, color.NRGBA{0, 0, 255, 0x80})
	img.Set(2, 0, color.NRGBA{0, 255, 0, 0x7f})

	def, err := ImportImage(img, "glass", 0, 0)
	require.NoError(t, err)
	assert.Equal(t, "AB.\n", def.Grid)
	assert.Equal(t, map[string]string{"A": "#ff0000", "B": "#0000ff"}, def.Palette)
}
