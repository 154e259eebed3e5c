// Package scene drives sprites declared in a sheet, resubmitting them to
// their layers every frame.
package scene

import (
	"fmt"

	"glyphstack/internal/assets"
	"glyphstack/internal/sprite"
	"glyphstack/internal/stack"
)

// Actor is a sprite moving at a constant velocity on one layer.
type Actor struct {
	Name   string
	Sprite *sprite.Sprite
	Layer  stack.LayerID
	X, Y   int
	DX, DY int
}

// Scene holds the actors and layers of one sheet.
type Scene struct {
	layers []assets.LayerDef
	actors []*Actor
	width  int
	height int
}

// New builds a scene from a validated sheet and its compiled sprites.
func New(sh *assets.Sheet, sprites map[string]*sprite.Sprite) (*Scene, error) {
	sc := &Scene{
		layers: sh.Layers,
		width:  sh.Renderer.Width,
		height: sh.Renderer.Height,
	}
	for i, a := range sh.Actors {
		sp, ok := sprites[a.Sprite]
		if !ok {
			return nil, fmt.Errorf("actor %d: unknown sprite %q", i, a.Sprite)
		}
		sc.actors = append(sc.actors, &Actor{
			Name:   a.Sprite,
			Sprite: sp,
			Layer:  stack.LayerID(a.Layer),
			X:      a.X,
			Y:      a.Y,
			DX:     a.DX,
			DY:     a.DY,
		})
	}
	return sc, nil
}

// Actors returns the scene's actors in declaration order.
func (sc *Scene) Actors() []*Actor { return sc.actors }

// Setup adds the sheet's layers to a stack.
func (sc *Scene) Setup(ls *stack.Layerstack) error {
	for _, l := range sc.layers {
		id := stack.LayerID(l.ID)
		if err := ls.Add(id, l.Pos); err != nil {
			return err
		}
		if err := ls.SetVisibility(id, l.IsVisible()); err != nil {
			return err
		}
	}
	return nil
}

// Frame submits every actor at its current position, then advances it.
// It matches render.FrameFunc.
func (sc *Scene) Frame(ls *stack.Layerstack, _ int) error {
	for _, a := range sc.actors {
		if err := ls.WriteSprite(a.X, a.Y, a.Sprite, a.Layer); err != nil {
			return fmt.Errorf("actor %s: %w", a.Name, err)
		}
		a.X, a.DX = step(a.X, a.DX, a.Sprite.Width, sc.width)
		a.Y, a.DY = step(a.Y, a.DY, a.Sprite.Height, sc.height)
	}
	return nil
}

// Fit shrinks a width x height buffer to a terminal of cols x rows, where
// each pixel takes scale columns.
func Fit(width, height, cols, rows, scale int) (int, int) {
	if scale < 1 {
		scale = 1
	}
	return min(width, cols/scale), min(height, rows)
}

// step advances one axis, keeping the sprite's top-left corner within
// [lo, hi], the positions that keep it on screen (or, for a sprite larger
// than the buffer, keep the buffer covered). Sprites that fit bounce off
// the edges; sprites that do not stop at the nearest edge.
func step(pos, vel, size, limit int) (int, int) {
	lo, hi := min(0, limit-size), max(0, limit-size)
	next := pos + vel
	switch {
	case next >= lo && next <= hi:
		return next, vel
	case size >= limit:
		return min(max(next, lo), hi), 0
	case next < lo:
		vel = abs(vel)
	default:
		vel = -abs(vel)
	}
	return pos + vel, vel
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
