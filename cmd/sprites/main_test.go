package main

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/muesli/termenv"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"glyphstack/internal/assets"
	"glyphstack/internal/sprite"
)

func smiley(t *testing.T) *sprite.Sprite {
	t.Helper()
	sprites, err := assets.DefaultSheet().Compile()
	require.NoError(t, err)
	return sprites["smiley"]
}

func TestColorStats(t *testing.T) {
	counts, transparent := colorStats(smiley(t))
	assert.Equal(t, 0, transparent)
	require.Len(t, counts, 2)
	assert.Equal(t, sprite.Black, counts[0].color)
	assert.Equal(t, 15, counts[0].count)
	assert.Equal(t, sprite.Magenta, counts[1].color)
	assert.Equal(t, 10, counts[1].count)
}

func TestWritePreviewAscii(t *testing.T) {
	s, err := sprite.Compile("ab", sprite.Metadata{
		ColorMap:    map[rune]sprite.Color{'a': sprite.Red},
		Transparent: 'b',
		Width:       2,
		Height:      1,
	})
	require.NoError(t, err)

	var buf bytes.Buffer
	writePreview(&buf, s, termenv.Ascii)
	assert.Equal(t, "██  \n", buf.String())
}

func TestCompileOne(t *testing.T) {
	path := filepath.Join(t.TempDir(), "demo.toml")
	f, err := os.Create(path)
	require.NoError(t, err)
	require.NoError(t, assets.EncodeTOML(f, assets.DefaultSheet()))
	require.NoError(t, f.Close())

	s, err := compileOne(path, "seven")
	require.NoError(t, err)
	assert.Equal(t, 5, s.Width)

	_, err = compileOne(path, "missing")
	assert.Error(t, err)

	assert.Equal(t, 0, runValidate(path))
}
