package assets

// DefaultSheet returns the built-in demo: a smiley drifting down-right on
// the background layer and a second sprite drifting down-left above it,
// on a 50x50 white buffer at 25 fps.
func DefaultSheet() *Sheet {
	return &Sheet{
		Name: "default",
		Renderer: RendererConfig{
			Width:      50,
			Height:     50,
			Background: "white",
			FrameMS:    40,
			Glyph:      "██",
		},
		Layers: []LayerDef{
			{ID: 0, Pos: 0},
			{ID: 1, Pos: 1},
		},
		Sprites: []Definition{
			{
				Name:        "smiley",
				Width:       5,
				Height:      5,
				Transparent: "T",
				Grid: `
					░░▓▓░
					▓░░░▓
					░░░▓▓
					▓░░░▓
					░░▓▓░
				`,
				Palette: map[string]string{"░": "black", "▓": "magenta"},
			},
			{
				Name:        "seven",
				Width:       5,
				Height:      4,
				Transparent: "T",
				Grid: `
					░▓▓▓░
					░░░▓░
					░░░▓░
					░░░▓░
				`,
				Palette: map[string]string{"░": "green", "▓": "blue"},
			},
		},
		Actors: []ActorDef{
			{Sprite: "smiley", Layer: 0, X: 1, Y: 1, DX: 1, DY: 1},
			{Sprite: "seven", Layer: 1, X: 30, Y: 1, DX: -1, DY: 1},
		},
	}
}
