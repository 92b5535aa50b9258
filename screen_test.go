package main

import (
	"strings"
	"testing"

	"github.com/retroenv/retrogolib/assert"

	"github.com/dmnk/c8/chip8"
)

func TestFrameBufferApply(t *testing.T) {
	var f frameBuffer

	f.apply(chip8.Change{X: 0, Y: 0, Rows: []byte{0xff}})
	assert.Equal(t, uint64(0xff)<<56, f[0])

	// Right-edge windows carry their surviving pixels in the high bits.
	f.apply(chip8.Change{X: 60, Y: 1, Rows: []byte{0xf0}})
	assert.Equal(t, uint64(0x0f), f[1])

	// A later window at the same spot replaces the old pixels.
	f.apply(chip8.Change{X: 0, Y: 0, Rows: []byte{0x3c}})
	assert.Equal(t, uint64(0x3c)<<56, f[0])

	f.apply(chip8.Change{Clear: true})
	assert.Equal(t, frameBuffer{}, f)
}

// The frame buffer folded together from the change feed must equal the
// core buffer, whatever mix of overlaps and clipped draws produced it.
func TestFrameBufferFollowsDisplay(t *testing.T) {
	d := &chip8.Display{}
	sub := d.Subscribe()
	var f frameBuffer

	sprites := []chip8.Sprite{
		{X: 0, Y: 0, Rows: []byte{0xff, 0x81}},
		{X: 60, Y: 0, Rows: []byte{0xff}},     // clipped at the right edge
		{X: 4, Y: 0, Rows: []byte{0x3c}},      // overlaps the first sprite
		{X: 30, Y: 30, Rows: []byte{1, 2, 3}}, // clipped at the bottom
	}
	for _, s := range sprites {
		d.Draw(s)
		f.apply(<-sub.C())
	}
	d.Clear()
	f.apply(<-sub.C())
	d.Draw(chip8.Sprite{X: 7, Y: 12, Rows: []byte{0xaa, 0x55}})
	f.apply(<-sub.C())

	assert.Equal(t, frameBuffer(d.Rows()), f)
}

func TestHalfBlock(t *testing.T) {
	assert.Equal(t, '█', halfBlock(true, true))
	assert.Equal(t, '▀', halfBlock(true, false))
	assert.Equal(t, '▄', halfBlock(false, true))
	assert.Equal(t, ' ', halfBlock(false, false))
}

func TestRenderFrame(t *testing.T) {
	var f frameBuffer
	f.apply(chip8.Change{X: 0, Y: 0, Rows: []byte{0x80}})
	f.apply(chip8.Change{X: 0, Y: 1, Rows: []byte{0xc0}})

	lines := strings.Split(renderFrame(&f), "\n")
	assert.Equal(t, chip8.DisplayHeight/2, len(lines))
	assert.True(t, strings.HasPrefix(lines[0], "█▄ "))
	for _, line := range lines {
		assert.Equal(t, chip8.DisplayWidth, len([]rune(line)))
	}
}
