package render

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"glyphstack/internal/sprite"
	"glyphstack/internal/stack"
)

type drawCall struct {
	x, y int
	c    sprite.Color
}

// recordDisplay keeps the calls of the last frame.
type recordDisplay struct {
	log      []string
	draws    []drawCall
	clears   int
	flushes  int
	drawErr  error
	flushErr error
}

func (d *recordDisplay) Clear() error {
	d.clears++
	d.draws = d.draws[:0]
	d.log = append(d.log, "clear")
	return nil
}

func (d *recordDisplay) DrawCell(x, y int, c sprite.Color) error {
	if d.drawErr != nil {
		return d.drawErr
	}
	d.draws = append(d.draws, drawCall{x, y, c})
	return nil
}

func (d *recordDisplay) Flush() error {
	d.flushes++
	d.log = append(d.log, "flush")
	return d.flushErr
}

func (d *recordDisplay) at(x, y int) (sprite.Color, bool) {
	for _, dc := range d.draws {
		if dc.x == x && dc.y == y {
			return dc.c, true
		}
	}
	return sprite.Color{}, false
}

func newTestRenderer(d Display, w, h int) (*Renderer, *[]time.Duration) {
	var slept []time.Duration
	r := NewRenderer(d, w, h, sprite.White, WithSleep(func(dur time.Duration) {
		slept = append(slept, dur)
	}))
	return r, &slept
}

func TestNewRendererDefaults(t *testing.T) {
	r := NewRenderer(&recordDisplay{}, 3, 2, sprite.Black)
	assert.Equal(t, 40*time.Millisecond, r.FrameInterval())
	assert.Equal(t, 3, r.Layers().FrameBuffer().Width())
	assert.Equal(t, 2, r.Layers().FrameBuffer().Height())
	assert.Equal(t, sprite.Black, r.Layers().FrameBuffer().Background())
}

func TestUpdatePushesEveryCell(t *testing.T) {
	d := &recordDisplay{}
	r, slept := newTestRenderer(d, 4, 3)
	ls := r.Layers()
	require.NoError(t, ls.Add(0, 0))
	require.NoError(t, ls.DirectWrite(1, 2, sprite.Red, 0))

	require.NoError(t, r.Update())

	assert.Equal(t, []string{"clear", "flush"}, d.log)
	assert.Len(t, d.draws, 12)
	c, ok := d.at(1, 2)
	require.True(t, ok)
	assert.Equal(t, sprite.Red, c)
	c, _ = d.at(0, 0)
	assert.Equal(t, sprite.White, c)

	assert.Equal(t, []time.Duration{40 * time.Millisecond}, *slept)
	assert.Equal(t, 1, r.Frames())
	assert.False(t, ls.SequenceDirty())

	groups, _ := ls.Groups(0)
	assert.Empty(t, groups, "staged writes wiped after the frame")
	fbc, _ := ls.FrameBuffer().At(1, 2)
	assert.Equal(t, sprite.White, fbc.Color)
}

func TestUpdateIsImmediateMode(t *testing.T) {
	d := &recordDisplay{}
	r, _ := newTestRenderer(d, 2, 2)
	require.NoError(t, r.Layers().Add(0, 0))
	require.NoError(t, r.Layers().DirectWrite(0, 0, sprite.Blue, 0))
	require.NoError(t, r.Update())

	require.NoError(t, r.Update())
	c, _ := d.at(0, 0)
	assert.Equal(t, sprite.White, c, "not resubmitted, so gone")
}

func TestSetFrameRate(t *testing.T) {
	r, slept := newTestRenderer(&recordDisplay{}, 1, 1)
	require.NoError(t, r.Update())
	r.SetFrameRate(100)
	require.NoError(t, r.Update())
	r.SetFrameRate(-5)
	require.NoError(t, r.Update())

	assert.Equal(t, []time.Duration{40 * time.Millisecond, 100 * time.Millisecond, 0}, *slept)
}

func TestUpdateDisplayError(t *testing.T) {
	boom := errors.New("broken pipe")
	d := &recordDisplay{drawErr: boom}
	r, slept := newTestRenderer(d, 2, 2)
	require.NoError(t, r.Layers().Add(0, 0))
	require.NoError(t, r.Layers().DirectWrite(0, 0, sprite.Red, 0))

	err := r.Update()
	assert.ErrorIs(t, err, boom)
	assert.Equal(t, 0, d.flushes)
	assert.Len(t, *slept, 1)

	groups, _ := r.Layers().Groups(0)
	assert.Empty(t, groups, "wiped even when the display failed")
}

func TestUpdateFlushError(t *testing.T) {
	boom := errors.New("closed")
	r, _ := newTestRenderer(&recordDisplay{flushErr: boom}, 1, 1)
	assert.ErrorIs(t, r.Update(), boom)
}

func TestRun(t *testing.T) {
	d := &recordDisplay{}
	r, slept := newTestRenderer(d, 5, 1)
	require.NoError(t, r.Layers().Add(0, 0))

	var seen []int
	err := r.Run(3, func(ls *stack.Layerstack, frame int) error {
		seen = append(seen, frame)
		return ls.DirectWrite(frame, 0, sprite.Green, 0)
	})
	require.NoError(t, err)

	assert.Equal(t, []int{0, 1, 2}, seen)
	assert.Equal(t, 3, r.Frames())
	assert.Len(t, *slept, 3)
	c, _ := d.at(2, 0)
	assert.Equal(t, sprite.Green, c)
	c, _ = d.at(1, 0)
	assert.Equal(t, sprite.White, c)
}

func TestRunStop(t *testing.T) {
	r, _ := newTestRenderer(&recordDisplay{}, 1, 1)
	err := r.Run(0, func(_ *stack.Layerstack, frame int) error {
		if frame == 5 {
			return ErrStop
		}
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, 5, r.Frames())
}

func TestRunSubmitError(t *testing.T) {
	r, _ := newTestRenderer(&recordDisplay{}, 1, 1)
	err := r.Run(10, func(ls *stack.Layerstack, _ int) error {
		return ls.DirectWrite(0, 0, sprite.Red, 42)
	})
	assert.ErrorIs(t, err, stack.ErrLayerNotFound)
	assert.Equal(t, 0, r.Frames())
}

func TestRunNilFrameFunc(t *testing.T) {
	d := &recordDisplay{}
	r, _ := newTestRenderer(d, 1, 1)
	require.NoError(t, r.Run(2, nil))
	assert.Equal(t, 2, d.flushes)
}
