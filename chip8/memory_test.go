package chip8

import (
	"bytes"
	"testing"
)

func TestWord(t *testing.T) {
	var m Memory
	m[0x200], m[0x201] = 0x12, 0x34
	if g := m.Word(0x200); g != 0x1234 {
		t.Errorf("Word(0200) = %.4x, want 1234", g)
	}
	// Fetches wrap at the end of the 4 KB space.
	m[0xfff], m[0] = 0xab, 0xcd
	if g := m.Word(0xfff); g != 0xabcd {
		t.Errorf("Word(0fff) = %.4x, want abcd", g)
	}
	if g := m.Word(0x1fff); g != 0xabcd {
		t.Errorf("Word(1fff) = %.4x, want abcd", g)
	}
}

func TestFont(t *testing.T) {
	if g := len(font); g != 80 {
		t.Fatalf("font is %d bytes, want 80", g)
	}
	if g, w := font[0:5], []byte{0xf0, 0x90, 0x90, 0x90, 0xf0}; !bytes.Equal(g, w) {
		t.Errorf("glyph 0 is %x, want %x", g, w)
	}
	if g, w := font[75:80], []byte{0xf0, 0x80, 0xf0, 0x80, 0x80}; !bytes.Equal(g, w) {
		t.Errorf("glyph F is %x, want %x", g, w)
	}
}
