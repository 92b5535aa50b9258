package main

import (
	"os"

	"github.com/pkg/errors"

	"github.com/dmnk/c8/chip8"
)

// readROM loads a CHIP-8 program image as a fixed buffer of
// chip8.ProgramSize bytes, truncating a longer file and zero-filling
// after a shorter one.
func readROM(name string) ([]byte, error) {
	b, err := os.ReadFile(name)
	if err != nil {
		return nil, errors.Wrapf(err, "reading rom")
	}
	rom := make([]byte, chip8.ProgramSize)
	copy(rom, b)
	return rom, nil
}
