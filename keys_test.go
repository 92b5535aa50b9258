package main

import (
	"fmt"
	"testing"

	"github.com/retroenv/retrogolib/assert"
)

func TestKeypadRune(t *testing.T) {
	for _, c := range []struct {
		r   rune
		key byte
		ok  bool
	}{
		{'1', 0x1, true},
		{'4', 0xc, true},
		{'q', 0x4, true},
		{'x', 0x0, true},
		{'v', 0xf, true},
		{'Q', 0x4, true},
		{'V', 0xf, true},
		{'p', 0, false},
		{' ', 0, false},
	} {
		t.Run(fmt.Sprintf("%q", c.r), func(t *testing.T) {
			k, ok := keypadRune(c.r)
			assert.Equal(t, c.ok, ok)
			if c.ok {
				assert.Equal(t, c.key, k)
			}
		})
	}
}

func TestKeypadLayoutComplete(t *testing.T) {
	runes := map[byte]bool{}
	for _, k := range keypadRunes {
		runes[k] = true
	}
	codes := map[byte]bool{}
	for _, k := range keypadCodes {
		codes[k] = true
	}

	var missing []byte
	for k := byte(0); k < 16; k++ {
		if !runes[k] {
			missing = append(missing, k)
		}
	}
	assert.Empty(t, missing)

	missing = nil
	for k := byte(0); k < 16; k++ {
		if !codes[k] {
			missing = append(missing, k)
		}
	}
	assert.Empty(t, missing)
}
