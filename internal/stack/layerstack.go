// Package stack composites depth-ordered layers into a framebuffer.
package stack

import (
	"errors"
	"fmt"

	"glyphstack/internal/logging"
	"glyphstack/internal/sprite"
)

var (
	// ErrLayerExists is returned by Add for an id already in the stack.
	ErrLayerExists = errors.New("layer already exists")
	// ErrLayerNotFound is returned when an id was never added or was removed.
	ErrLayerNotFound = errors.New("layer does not exist")
)

// Layerstack owns the layers and the framebuffer they are rasterized into.
//
// order is the z-order, back to front; each layer's stackPos equals its
// index in order, so positions are always exactly 0..n-1.
// sequence is the render order snapshot used by Rasterize and is rebuilt
// from order whenever dirty is set.
type Layerstack struct {
	layers   map[LayerID]*Layer
	order    []LayerID
	sequence []LayerID
	dirty    bool
	fb       *FrameBuffer
}

// NewLayerstack creates an empty stack over a width x height framebuffer.
func NewLayerstack(width, height int, bg sprite.Color) *Layerstack {
	return &Layerstack{
		layers: make(map[LayerID]*Layer),
		fb:     NewFrameBuffer(width, height, bg),
	}
}

// FrameBuffer returns the stack's framebuffer.
func (ls *Layerstack) FrameBuffer() *FrameBuffer { return ls.fb }

// Len returns the number of layers.
func (ls *Layerstack) Len() int { return len(ls.layers) }

// SequenceDirty reports whether the render sequence needs a rebuild.
func (ls *Layerstack) SequenceDirty() bool { return ls.dirty }

// Sequence returns a copy of the current render sequence, back to front.
// It reflects the last RebuildSequence.
func (ls *Layerstack) Sequence() []LayerID {
	out := make([]LayerID, len(ls.sequence))
	copy(out, ls.sequence)
	return out
}

func (ls *Layerstack) lookup(id LayerID) (*Layer, error) {
	l, ok := ls.layers[id]
	if !ok {
		return nil, fmt.Errorf("layer %d: %w", id, ErrLayerNotFound)
	}
	return l, nil
}

// mustLayer is for ids taken from the sequence, which only ever holds
// live layers. A miss means the bookkeeping is corrupt.
func (ls *Layerstack) mustLayer(id LayerID) *Layer {
	l, ok := ls.layers[id]
	if !ok {
		panic(fmt.Sprintf("layerstack: layer %d in render sequence but not in stack", id))
	}
	return l
}

// StackPos returns the z-order rank of a layer; 0 is drawn first.
func (ls *Layerstack) StackPos(id LayerID) (int, bool) {
	l, ok := ls.layers[id]
	if !ok {
		return 0, false
	}
	return l.stackPos, true
}

// Visible reports whether a layer takes part in rasterization.
func (ls *Layerstack) Visible(id LayerID) (visible, ok bool) {
	l, ok := ls.layers[id]
	if !ok {
		return false, false
	}
	return l.visible, true
}

// Groups returns a copy of the pixel groups staged on a layer this frame.
func (ls *Layerstack) Groups(id LayerID) ([][]sprite.Pixel, bool) {
	l, ok := ls.layers[id]
	if !ok {
		return nil, false
	}
	out := make([][]sprite.Pixel, len(l.groups))
	copy(out, l.groups)
	return out, true
}

func (ls *Layerstack) clampPos(pos int) int {
	if pos < 0 {
		return 0
	}
	if pos > len(ls.order) {
		return len(ls.order)
	}
	return pos
}

// renumber restores stackPos == index after order changed
func (ls *Layerstack) renumber() {
	for i, id := range ls.order {
		ls.layers[id].stackPos = i
	}
	ls.dirty = true
}

// Add inserts a new empty visible layer at pos. Layers at or above pos
// move up one. A pos past the top appends.
func (ls *Layerstack) Add(id LayerID, pos int) error {
	if _, exists := ls.layers[id]; exists {
		logging.Logger().Warn("layer already exists, ignoring add", "layer", id, "pos", pos)
		return fmt.Errorf("layer %d: %w", id, ErrLayerExists)
	}

	pos = ls.clampPos(pos)
	ls.layers[id] = newLayer(pos)
	ls.order = append(ls.order, 0)
	copy(ls.order[pos+1:], ls.order[pos:])
	ls.order[pos] = id
	ls.renumber()

	logging.Logger().Debug("layer added", "layer", id, "pos", pos, "layers", len(ls.order))
	return nil
}

// Move changes a layer's rank to newPos, closing its old slot. The other
// layers keep their relative order.
func (ls *Layerstack) Move(id LayerID, newPos int) error {
	l, err := ls.lookup(id)
	if err != nil {
		return err
	}

	oldPos := l.stackPos
	ls.order = append(ls.order[:oldPos], ls.order[oldPos+1:]...)
	newPos = ls.clampPos(newPos)
	ls.order = append(ls.order, 0)
	copy(ls.order[newPos+1:], ls.order[newPos:])
	ls.order[newPos] = id
	ls.renumber()

	logging.Logger().Debug("layer moved", "layer", id, "from", oldPos, "to", newPos)
	return nil
}

// Remove deletes a layer; layers above it move down one.
func (ls *Layerstack) Remove(id LayerID) error {
	l, err := ls.lookup(id)
	if err != nil {
		return err
	}

	pos := l.stackPos
	ls.order = append(ls.order[:pos], ls.order[pos+1:]...)
	delete(ls.layers, id)
	ls.renumber()

	logging.Logger().Debug("layer removed", "layer", id, "pos", pos)
	return nil
}

// SetVisibility includes or excludes a layer from rasterization. The
// render sequence is unaffected.
func (ls *Layerstack) SetVisibility(id LayerID, visible bool) error {
	l, err := ls.lookup(id)
	if err != nil {
		return err
	}
	l.visible = visible
	return nil
}

// RebuildSequence refreshes the render sequence from layer ranks.
func (ls *Layerstack) RebuildSequence() {
	ls.sequence = ls.sequence[:0]
	for pos := 0; pos < len(ls.order); pos++ {
		id := ls.order[pos]
		if ls.mustLayer(id).stackPos != pos {
			panic(fmt.Sprintf("layerstack: layer %d ranked %d at position %d", id, ls.layers[id].stackPos, pos))
		}
		ls.sequence = append(ls.sequence, id)
	}
	ls.dirty = false

	logging.Logger().Debug("render sequence rebuilt", "sequence", ls.sequence)
}

// WriteSprite stages a sprite on a layer with its top-left corner at
// (x, y). Nothing touches the framebuffer until Rasterize.
func (ls *Layerstack) WriteSprite(x, y int, s *sprite.Sprite, id LayerID) error {
	l, err := ls.lookup(id)
	if err != nil {
		return err
	}
	l.push(ls.fb.Place(s, x, y))
	return nil
}

// DirectWrite stages a single rendered pixel on a layer.
func (ls *Layerstack) DirectWrite(x, y int, c sprite.Color, id LayerID) error {
	l, err := ls.lookup(id)
	if err != nil {
		return err
	}
	l.push([]sprite.Pixel{sprite.P(x, y, c)})
	return nil
}

// Rasterize paints visible layers into the framebuffer back to front.
// Cells a higher layer never wrote keep whatever lies beneath.
func (ls *Layerstack) Rasterize() {
	if ls.dirty {
		ls.RebuildSequence()
	}
	for _, id := range ls.sequence {
		l := ls.mustLayer(id)
		if !l.visible {
			continue
		}
		ls.fb.Blit(l.groups)
	}
}

// WipeBuffers resets the framebuffer and drops every staged group, ready
// for the next frame's submissions.
func (ls *Layerstack) WipeBuffers() {
	ls.fb.Reset()
	for _, l := range ls.layers {
		l.clear()
	}
}
