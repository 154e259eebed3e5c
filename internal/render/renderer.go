package render

import (
	"errors"
	"fmt"
	"time"

	"glyphstack/internal/logging"
	"glyphstack/internal/sprite"
	"glyphstack/internal/stack"
)

// DefaultFrameInterval paces frames at 25 Hz.
const DefaultFrameInterval = 40 * time.Millisecond

// ErrStop may be returned by a FrameFunc to end Run without an error.
var ErrStop = errors.New("stop rendering")

// FrameFunc submits one frame's sprites and pixels to the layers.
type FrameFunc func(layers *stack.Layerstack, frame int) error

// Renderer owns one Layerstack and pushes it to a Display once per Update.
// It is not safe for concurrent use.
type Renderer struct {
	layers   *stack.Layerstack
	display  Display
	interval time.Duration
	sleep    func(time.Duration)
	frames   int
}

// Option configures a Renderer.
type Option func(*Renderer)

// WithSleep replaces the end-of-frame sleep.
func WithSleep(fn func(time.Duration)) Option {
	return func(r *Renderer) { r.sleep = fn }
}

// NewRenderer creates a renderer with a width x height framebuffer.
func NewRenderer(d Display, width, height int, bg sprite.Color, opts ...Option) *Renderer {
	r := &Renderer{
		layers:   stack.NewLayerstack(width, height, bg),
		display:  d,
		interval: DefaultFrameInterval,
		sleep:    time.Sleep,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Layers returns the stack callers submit to.
func (r *Renderer) Layers() *stack.Layerstack { return r.layers }

// Frames returns how many frames have been displayed.
func (r *Renderer) Frames() int { return r.frames }

// FrameInterval returns the pause after each frame.
func (r *Renderer) FrameInterval() time.Duration { return r.interval }

// SetFrameRate sets the frame interval in milliseconds. It applies from
// the next Update.
func (r *Renderer) SetFrameRate(ms int) {
	if ms < 0 {
		ms = 0
	}
	r.interval = time.Duration(ms) * time.Millisecond
}

// Update displays one frame: rebuild the sequence if needed, clear the
// display, rasterize, push rendered cells, wipe staged state and sleep.
// Display errors are returned after the wipe so the next frame starts clean.
func (r *Renderer) Update() error {
	if r.layers.SequenceDirty() {
		r.layers.RebuildSequence()
	}

	err := r.display.Clear()
	r.layers.Rasterize()
	if err == nil {
		err = r.push()
	}
	if err == nil {
		err = r.display.Flush()
	}

	r.layers.WipeBuffers()
	r.frames++
	r.sleep(r.interval)

	if err != nil {
		return fmt.Errorf("frame %d: %w", r.frames, err)
	}
	return nil
}

func (r *Renderer) push() error {
	for _, p := range r.layers.FrameBuffer().Cells() {
		if !p.Rendered {
			continue
		}
		if err := r.display.DrawCell(p.X, p.Y, p.Color); err != nil {
			return err
		}
	}
	return nil
}

// Run calls fn then Update for the given number of frames, or forever
// when frames <= 0. It stops at the first error; ErrStop from fn ends the
// loop cleanly.
func (r *Renderer) Run(frames int, fn FrameFunc) error {
	for i := 0; frames <= 0 || i < frames; i++ {
		if fn != nil {
			if err := fn(r.layers, i); err != nil {
				if errors.Is(err, ErrStop) {
					logging.Logger().Debug("render loop stopped", "frame", i)
					return nil
				}
				return fmt.Errorf("submit frame %d: %w", i, err)
			}
		}
		if err := r.Update(); err != nil {
			return err
		}
	}
	return nil
}
