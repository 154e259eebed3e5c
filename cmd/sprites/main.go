package main

import (
	"fmt"
	"io"
	"os"
	"sort"
	"strconv"
	"strings"

	"github.com/muesli/termenv"

	"glyphstack/internal/assets"
	"glyphstack/internal/sprite"
)

func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	cmd := os.Args[1]
	args := os.Args[2:]

	switch cmd {
	case "validate":
		if len(args) != 1 {
			fmt.Fprintln(os.Stderr, "Usage: sprites validate <sheet-file|sheets-dir>")
			os.Exit(1)
		}
		os.Exit(runValidate(args[0]))
	case "preview":
		if len(args) != 2 {
			fmt.Fprintln(os.Stderr, "Usage: sprites preview <sheet-file> <sprite>")
			os.Exit(1)
		}
		os.Exit(runPreview(args[0], args[1]))
	case "stats":
		if len(args) != 1 {
			fmt.Fprintln(os.Stderr, "Usage: sprites stats <sheet-file>")
			os.Exit(1)
		}
		os.Exit(runStats(args[0]))
	case "import":
		if len(args) != 2 && len(args) != 4 {
			fmt.Fprintln(os.Stderr, "Usage: sprites import <png-file> <name> [width height]")
			os.Exit(1)
		}
		os.Exit(runImport(args))
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n", cmd)
		printUsage()
		os.Exit(1)
	}
}

func printUsage() {
	fmt.Fprintln(os.Stderr, `Usage: sprites <command> <args>

Commands:
  validate <sheet-file|sheets-dir>        Compile every sprite and check layers and actors
  preview  <sheet-file> <sprite>          Draw a sprite in the terminal's colors
  stats    <sheet-file>                   Show per-sprite color distribution
  import   <png-file> <name> [w h]        Convert a PNG into a TOML sheet on stdout`)
}

// --- validate ---

func loadSheets(path string) (map[string]*assets.Sheet, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, err
	}
	if info.IsDir() {
		return assets.LoadSheets(path)
	}
	sh, err := assets.LoadSheet(path)
	if err != nil {
		return nil, err
	}
	return map[string]*assets.Sheet{sh.Name: sh}, nil
}

func runValidate(path string) int {
	sheets, err := loadSheets(path)
	if err != nil {
		fmt.Fprintf(os.Stderr, "FAIL: %v\n", err)
		return 1
	}

	errors := 0
	for _, name := range assets.SheetNames(sheets) {
		sh := sheets[name]
		fmt.Printf("Validating %q...\n", name)
		sprites, err := sh.Prepare()
		if err != nil {
			fmt.Printf("  ERROR: %v\n", err)
			errors++
			continue
		}
		fmt.Printf("  OK (%dx%d, %d sprites, %d layers, %d actors)\n",
			sh.Renderer.Width, sh.Renderer.Height, len(sprites), len(sh.Layers), len(sh.Actors))
	}

	if errors > 0 {
		fmt.Printf("\n%d error(s) found\n", errors)
		return 1
	}
	fmt.Printf("\nAll %d sheets valid\n", len(sheets))
	return 0
}

// --- preview ---

func compileOne(path, name string) (*sprite.Sprite, error) {
	sh, err := assets.LoadSheet(path)
	if err != nil {
		return nil, err
	}
	for _, d := range sh.Sprites {
		if d.Name == name {
			return d.Compile()
		}
	}
	return nil, fmt.Errorf("sheet %s has no sprite %q", sh.Name, name)
}

func runPreview(path, name string) int {
	s, err := compileOne(path, name)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 1
	}
	fmt.Printf("%s (%dx%d, tag %q)\n", name, s.Width, s.Height, s.Tag)
	writePreview(os.Stdout, s, termenv.EnvColorProfile())
	return 0
}

// writePreview draws each pixel as two block characters; transparent
// pixels are blank.
func writePreview(w io.Writer, s *sprite.Sprite, profile termenv.Profile) {
	var sb strings.Builder
	for y := 0; y < s.Height; y++ {
		for x := 0; x < s.Width; x++ {
			p, _ := s.At(x, y)
			if !p.Rendered {
				sb.WriteString("  ")
				continue
			}
			sb.WriteString(profile.String("██").Foreground(profile.Color(p.Color.Hex())).String())
		}
		sb.WriteByte('\n')
	}
	io.WriteString(w, sb.String())
}

// --- stats ---

type colorCount struct {
	color sprite.Color
	count int
}

// colorStats counts rendered pixels per color, most frequent first, and
// returns the number of transparent pixels.
func colorStats(s *sprite.Sprite) ([]colorCount, int) {
	counts := make(map[sprite.Color]int)
	transparent := 0
	for _, p := range s.Pixels {
		if !p.Rendered {
			transparent++
			continue
		}
		counts[p.Color]++
	}
	sorted := make([]colorCount, 0, len(counts))
	for c, n := range counts {
		sorted = append(sorted, colorCount{c, n})
	}
	sort.Slice(sorted, func(i, j int) bool {
		if sorted[i].count != sorted[j].count {
			return sorted[i].count > sorted[j].count
		}
		return sorted[i].color.Hex() < sorted[j].color.Hex()
	})
	return sorted, transparent
}

func runStats(path string) int {
	sh, err := assets.LoadSheet(path)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 1
	}
	sprites, err := sh.Compile()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 1
	}

	for _, d := range sh.Sprites {
		s := sprites[d.Name]
		total := len(s.Pixels)
		fmt.Printf("%s (%dx%d = %d pixels)\n", d.Name, s.Width, s.Height, total)
		counts, transparent := colorStats(s)
		for _, e := range counts {
			pct := float64(e.count) / float64(total) * 100
			bar := strings.Repeat("█", int(pct/2))
			fmt.Printf("  %-10s %4d (%5.1f%%) %s\n", e.color, e.count, pct, bar)
		}
		fmt.Printf("  %-10s %4d\n\n", "clear", transparent)
	}
	return 0
}

// --- import ---

func runImport(args []string) int {
	width, height := 0, 0
	if len(args) == 4 {
		var err1, err2 error
		width, err1 = strconv.Atoi(args[2])
		height, err2 = strconv.Atoi(args[3])
		if err1 != nil || err2 != nil || width <= 0 || height <= 0 {
			fmt.Fprintln(os.Stderr, "Error: width and height must be positive integers")
			return 1
		}
	}

	def, err := assets.LoadPNG(args[0], args[1], width, height)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 1
	}

	sh := &assets.Sheet{
		Name: def.Name,
		Renderer: assets.RendererConfig{
			Width:      def.Width,
			Height:     def.Height,
			Background: "black",
		},
		Layers:  []assets.LayerDef{{ID: 0, Pos: 0}},
		Sprites: []assets.Definition{*def},
	}
	if err := assets.EncodeTOML(os.Stdout, sh); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 1
	}
	return 0
}
