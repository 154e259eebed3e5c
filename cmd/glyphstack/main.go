package main

import (
	"context"
	"flag"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/gdamore/tcell/v2"
	"github.com/muesli/termenv"
	"golang.org/x/term"

	"glyphstack/internal/assets"
	"glyphstack/internal/logging"
	"glyphstack/internal/render"
	"glyphstack/internal/scene"
	"glyphstack/internal/sprite"
	"glyphstack/internal/stack"
)

// scaledDisplay is a Display that reports its glyph width.
type scaledDisplay interface {
	render.Display
	Scale() int
}

func main() {
	log.SetFlags(log.Ltime | log.Lshortfile)

	sheetPath := flag.String("sheet", "", "sprite sheet to play (.toml or .json); built-in demo when empty")
	displayName := flag.String("display", "ansi", "output backend: ansi or tcell")
	frames := flag.Int("frames", 0, "frames to render; 0 runs until interrupted")
	verbose := flag.Bool("v", false, "log compositor diagnostics to stderr")
	flag.Parse()

	if *verbose {
		logging.SetLogger(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelDebug})))
	}

	sheet := assets.DefaultSheet()
	if *sheetPath != "" {
		sh, err := assets.LoadSheet(*sheetPath)
		if err != nil {
			log.Fatalf("Failed to load sheet: %v", err)
		}
		sheet = sh
	}
	sprites, err := sheet.Prepare()
	if err != nil {
		log.Fatalf("Invalid sheet %s: %v", sheet.Name, err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	switch *displayName {
	case "ansi":
		err = runANSI(ctx, sheet, sprites, *frames)
	case "tcell":
		err = runTcell(ctx, stop, sheet, sprites, *frames)
	default:
		log.Fatalf("Unknown display %q (want ansi or tcell)", *displayName)
	}
	if err != nil {
		log.Fatalf("Render error: %v", err)
	}
}

func runANSI(ctx context.Context, sheet *assets.Sheet, sprites map[string]*sprite.Sprite, frames int) error {
	display := render.NewANSIDisplay(os.Stdout,
		render.WithGlyph(sheet.Renderer.Glyph),
		render.WithProfile(termenv.EnvColorProfile()))

	cols, rows := sheet.Renderer.Width*display.Scale(), sheet.Renderer.Height
	if term.IsTerminal(int(os.Stdout.Fd())) {
		if c, r, err := term.GetSize(int(os.Stdout.Fd())); err == nil {
			cols, rows = c, r
		}
	}

	if err := display.Setup(); err != nil {
		return err
	}
	defer display.Teardown()
	return play(ctx, display, sheet, sprites, cols, rows, frames)
}

func runTcell(ctx context.Context, cancel context.CancelFunc, sheet *assets.Sheet, sprites map[string]*sprite.Sprite, frames int) error {
	screen, err := tcell.NewScreen()
	if err != nil {
		return err
	}
	if err := screen.Init(); err != nil {
		return err
	}
	defer screen.Fini()

	// Event loop
	go func() {
		for {
			ev := screen.PollEvent()
			if ev == nil {
				return
			}
			if key, ok := ev.(*tcell.EventKey); ok {
				if key.Key() == tcell.KeyEsc || key.Key() == tcell.KeyCtrlC || key.Rune() == 'q' {
					cancel()
					return
				}
			}
		}
	}()

	cols, rows := screen.Size()
	return play(ctx, render.NewTcellDisplay(screen, sheet.Renderer.Glyph), sheet, sprites, cols, rows, frames)
}

// play fits the sheet into a cols x rows terminal and runs its scene until
// ctx ends or the frame count is reached.
func play(ctx context.Context, display scaledDisplay, sheet *assets.Sheet, sprites map[string]*sprite.Sprite, cols, rows, frames int) error {
	fitted := *sheet
	fitted.Renderer.Width, fitted.Renderer.Height = scene.Fit(
		sheet.Renderer.Width, sheet.Renderer.Height, cols, rows, display.Scale())
	if fitted.Renderer.Width <= 0 || fitted.Renderer.Height <= 0 {
		log.Printf("Terminal %dx%d is too small", cols, rows)
		return nil
	}

	bg, err := sheet.BackgroundColor()
	if err != nil {
		return err
	}
	sc, err := scene.New(&fitted, sprites)
	if err != nil {
		return err
	}
	renderer := render.NewRenderer(display, fitted.Renderer.Width, fitted.Renderer.Height, bg)
	if sheet.Renderer.FrameMS > 0 {
		renderer.SetFrameRate(sheet.Renderer.FrameMS)
	}
	if err := sc.Setup(renderer.Layers()); err != nil {
		return err
	}

	return renderer.Run(frames, func(ls *stack.Layerstack, frame int) error {
		if ctx.Err() != nil {
			return render.ErrStop
		}
		return sc.Frame(ls, frame)
	})
}
