package stack

import "glyphstack/internal/sprite"

// LayerID identifies a layer in a Layerstack.
type LayerID uint16

// Layer collects world-space pixel groups staged for the current frame.
// Groups are painted in submission order and cleared after every frame.
type Layer struct {
	groups   [][]sprite.Pixel
	stackPos int
	visible  bool
}

func newLayer(pos int) *Layer {
	return &Layer{stackPos: pos, visible: true}
}

// push stages one placed group
func (l *Layer) push(group []sprite.Pixel) {
	l.groups = append(l.groups, group)
}

// clear drops staged groups, keeping the backing array for the next frame
func (l *Layer) clear() {
	for i := range l.groups {
		l.groups[i] = nil
	}
	l.groups = l.groups[:0]
}
