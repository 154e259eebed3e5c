// Package assets loads sprite sheets: glyph grids, palettes, layers and
// actors described in TOML or JSON files.
package assets

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/BurntSushi/toml"

	"glyphstack/internal/sprite"
)

// RendererConfig sizes the framebuffer and paces frames.
type RendererConfig struct {
	Width      int    `toml:"width" json:"width"`
	Height     int    `toml:"height" json:"height"`
	Background string `toml:"background" json:"background"`
	FrameMS    int    `toml:"frame_ms,omitempty" json:"frame_ms,omitempty"`
	Glyph      string `toml:"glyph,omitempty" json:"glyph,omitempty"`
}

// LayerDef declares a layer to add at startup.
type LayerDef struct {
	ID      uint16 `toml:"id" json:"id"`
	Pos     int    `toml:"pos" json:"pos"`
	Visible *bool  `toml:"visible,omitempty" json:"visible,omitempty"` // nil = visible
}

// IsVisible reports the declared visibility, defaulting to true.
func (l LayerDef) IsVisible() bool {
	return l.Visible == nil || *l.Visible
}

// Definition is the on-disk form of one sprite.
type Definition struct {
	Name        string            `toml:"name" json:"name"`
	Width       int               `toml:"width" json:"width"`
	Height      int               `toml:"height" json:"height"`
	Transparent string            `toml:"transparent,omitempty" json:"transparent,omitempty"`
	Tag         string            `toml:"tag,omitempty" json:"tag,omitempty"`
	Grid        string            `toml:"grid" json:"grid"`
	Palette     map[string]string `toml:"palette" json:"palette"`
}

// ActorDef places a sprite on a layer and moves it every frame.
type ActorDef struct {
	Sprite string `toml:"sprite" json:"sprite"`
	Layer  uint16 `toml:"layer" json:"layer"`
	X      int    `toml:"x" json:"x"`
	Y      int    `toml:"y" json:"y"`
	DX     int    `toml:"dx,omitempty" json:"dx,omitempty"`
	DY     int    `toml:"dy,omitempty" json:"dy,omitempty"`
}

// Sheet is a complete scene description.
type Sheet struct {
	Name     string         `toml:"name,omitempty" json:"name,omitempty"`
	Renderer RendererConfig `toml:"renderer" json:"renderer"`
	Layers   []LayerDef     `toml:"layer,omitempty" json:"layers,omitempty"`
	Sprites  []Definition   `toml:"sprite,omitempty" json:"sprites,omitempty"`
	Actors   []ActorDef     `toml:"actor,omitempty" json:"actors,omitempty"`
}

// singleRune returns the only rune of s.
func singleRune(s string) (rune, bool) {
	if utf8.RuneCountInString(s) != 1 {
		return 0, false
	}
	r, _ := utf8.DecodeRuneInString(s)
	return r, true
}

// Metadata resolves the palette into compiler metadata.
func (d Definition) Metadata() (sprite.Metadata, error) {
	md := sprite.Metadata{
		ColorMap: make(map[rune]sprite.Color, len(d.Palette)),
		Width:    d.Width,
		Height:   d.Height,
		Tag:      d.Tag,
	}
	if d.Transparent != "" {
		r, ok := singleRune(d.Transparent)
		if !ok {
			return md, fmt.Errorf("%w: transparent marker %q must be one character", sprite.ErrMalformedPalette, d.Transparent)
		}
		md.Transparent = r
	}
	for key, name := range d.Palette {
		r, ok := singleRune(key)
		if !ok {
			return md, fmt.Errorf("%w: key %q must be one character", sprite.ErrMalformedPalette, key)
		}
		c, err := sprite.ParseColor(name)
		if err != nil {
			return md, fmt.Errorf("palette key %q: %w", key, err)
		}
		md.ColorMap[r] = c
	}
	return md, nil
}

// Compile builds the sprite.
func (d Definition) Compile() (*sprite.Sprite, error) {
	md, err := d.Metadata()
	if err != nil {
		return nil, err
	}
	return sprite.Compile(d.Grid, md)
}

// BackgroundColor parses the renderer background.
func (s *Sheet) BackgroundColor() (sprite.Color, error) {
	return sprite.ParseColor(s.Renderer.Background)
}

// FrameInterval returns the configured pacing, or zero when unset.
func (s *Sheet) FrameInterval() time.Duration {
	return time.Duration(s.Renderer.FrameMS) * time.Millisecond
}

// Compile compiles every sprite, keyed by name.
func (s *Sheet) Compile() (map[string]*sprite.Sprite, error) {
	out := make(map[string]*sprite.Sprite, len(s.Sprites))
	for _, d := range s.Sprites {
		if _, exists := out[d.Name]; exists {
			return nil, fmt.Errorf("duplicate sprite name %q", d.Name)
		}
		sp, err := d.Compile()
		if err != nil {
			return nil, fmt.Errorf("sprite %q: %w", d.Name, err)
		}
		out[d.Name] = sp
	}
	return out, nil
}

// Validate checks the sheet is usable: renderer settings, unique layers,
// compilable sprites and actors that point at known sprites and layers.
func (s *Sheet) Validate() error {
	_, err := s.Prepare()
	return err
}

// Prepare validates the sheet and returns its sprites, compiled once.
func (s *Sheet) Prepare() (map[string]*sprite.Sprite, error) {
	if s.Renderer.Width <= 0 || s.Renderer.Height <= 0 {
		return nil, fmt.Errorf("renderer size %dx%d must be positive", s.Renderer.Width, s.Renderer.Height)
	}
	if s.Renderer.FrameMS < 0 {
		return nil, fmt.Errorf("frame_ms %d must not be negative", s.Renderer.FrameMS)
	}
	if _, err := s.BackgroundColor(); err != nil {
		return nil, fmt.Errorf("renderer background: %w", err)
	}

	layers := make(map[uint16]bool, len(s.Layers))
	for _, l := range s.Layers {
		if layers[l.ID] {
			return nil, fmt.Errorf("duplicate layer id %d", l.ID)
		}
		layers[l.ID] = true
	}

	sprites, err := s.Compile()
	if err != nil {
		return nil, err
	}
	for i, a := range s.Actors {
		if _, ok := sprites[a.Sprite]; !ok {
			return nil, fmt.Errorf("actor %d references unknown sprite %q", i, a.Sprite)
		}
		if !layers[a.Layer] {
			return nil, fmt.Errorf("actor %d references unknown layer %d", i, a.Layer)
		}
	}
	return sprites, nil
}

// DecodeTOML reads a sheet in TOML. Unknown keys are an error.
func DecodeTOML(r io.Reader) (*Sheet, error) {
	var sh Sheet
	md, err := toml.NewDecoder(r).Decode(&sh)
	if err != nil {
		return nil, fmt.Errorf("parse sheet TOML: %w", err)
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, len(undecoded))
		for i, k := range undecoded {
			keys[i] = k.String()
		}
		return nil, fmt.Errorf("parse sheet TOML: unknown keys %s", strings.Join(keys, ", "))
	}
	return &sh, nil
}

// DecodeJSON reads a sheet in JSON. Unknown fields are an error.
func DecodeJSON(r io.Reader) (*Sheet, error) {
	var sh Sheet
	dec := json.NewDecoder(r)
	dec.DisallowUnknownFields()
	if err := dec.Decode(&sh); err != nil {
		return nil, fmt.Errorf("parse sheet JSON: %w", err)
	}
	return &sh, nil
}

// EncodeTOML writes a sheet in TOML.
func EncodeTOML(w io.Writer, sh *Sheet) error {
	var buf bytes.Buffer
	if err := toml.NewEncoder(&buf).Encode(sh); err != nil {
		return fmt.Errorf("encode sheet: %w", err)
	}
	_, err := w.Write(buf.Bytes())
	return err
}

// LoadSheet reads a .toml or .json sheet file. A sheet without a name
// takes the file name.
func LoadSheet(path string) (*Sheet, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open sheet: %w", err)
	}
	defer f.Close()

	var sh *Sheet
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".toml":
		sh, err = DecodeTOML(f)
	case ".json":
		sh, err = DecodeJSON(f)
	default:
		return nil, fmt.Errorf("sheet %s: unsupported extension %q", path, ext)
	}
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}

	if sh.Name == "" {
		sh.Name = strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	}
	return sh, nil
}

// LoadSheets loads every .toml and .json sheet in dir, indexed by name.
func LoadSheets(dir string) (map[string]*Sheet, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("read sheets directory: %w", err)
	}

	sheets := make(map[string]*Sheet)
	for _, entry := range entries {
		ext := strings.ToLower(filepath.Ext(entry.Name()))
		if entry.IsDir() || (ext != ".toml" && ext != ".json") {
			continue
		}
		sh, err := LoadSheet(filepath.Join(dir, entry.Name()))
		if err != nil {
			return nil, err
		}
		if _, exists := sheets[sh.Name]; exists {
			return nil, fmt.Errorf("duplicate sheet name %q in %s", sh.Name, entry.Name())
		}
		sheets[sh.Name] = sh
	}
	return sheets, nil
}

// SheetNames returns the sorted keys of a sheet set.
func SheetNames(sheets map[string]*Sheet) []string {
	names := make([]string, 0, len(sheets))
	for name := range sheets {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
