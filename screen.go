package main

import (
	"strings"

	"github.com/dmnk/c8/chip8"
)

// frameBuffer mirrors the machine's display locally, folded together
// from the change feed, so a frontend can redraw in full after a
// resize or a machine swap. Same layout as the core buffer: one uint64
// per row, bit 63 holding column 0.
type frameBuffer [chip8.DisplayHeight]uint64

func (f *frameBuffer) apply(ev chip8.Change) {
	if ev.Clear {
		*f = frameBuffer{}
		return
	}
	for i, w := range ev.Rows {
		y := int(ev.Y) + i
		var bits, mask uint64
		if ev.X <= chip8.DisplayWidth-8 {
			shift := chip8.DisplayWidth - 8 - ev.X
			bits = uint64(w) << shift
			mask = 0xff << shift
		} else {
			shift := ev.X - (chip8.DisplayWidth - 8)
			bits = uint64(w) >> shift
			mask = 0xff >> shift
		}
		f[y] = f[y]&^mask | bits
	}
}

func (f *frameBuffer) pixel(x, y int) bool {
	return f[y]&(1<<(chip8.DisplayWidth-1-x)) != 0
}

// halfBlock picks the character for a cell covering two vertically
// adjacent pixels, so a 64x32 display fits a standard terminal.
func halfBlock(top, bottom bool) rune {
	switch {
	case top && bottom:
		return '█'
	case top:
		return '▀'
	case bottom:
		return '▄'
	}
	return ' '
}

// renderFrame draws the whole buffer as half-block text, 64x16
// characters. The debugger's screen pane shows this directly.
func renderFrame(f *frameBuffer) string {
	var b strings.Builder
	b.Grow((chip8.DisplayWidth*3 + 1) * chip8.DisplayHeight / 2)
	for y := 0; y < chip8.DisplayHeight; y += 2 {
		if y > 0 {
			b.WriteByte('\n')
		}
		for x := 0; x < chip8.DisplayWidth; x++ {
			b.WriteRune(halfBlock(f.pixel(x, y), f.pixel(x, y+1)))
		}
	}
	return b.String()
}
