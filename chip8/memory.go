package chip8

// Memory layout.
const (
	MemorySize   = 0x1000 // 4096 addressable bytes
	FontAddr     = 0x050  // built-in glyph table
	ProgramStart = 0x200  // program load address and initial PC

	// ProgramSize is the fixed size of a program image: everything
	// from ProgramStart to the end of memory. Loaders hand the core a
	// buffer of exactly this size, truncating longer files and
	// zero-filling shorter ones.
	ProgramSize = MemorySize - ProgramStart
)

// Memory is the CHIP-8 address space.
type Memory [MemorySize]byte

// Word returns the big-endian 16-bit word at addr. Addresses wrap at
// the 4 KB boundary, so reading is total over all uint16 addresses.
func (m *Memory) Word(addr uint16) uint16 {
	return uint16(m[addr&0xfff])<<8 | uint16(m[(addr+1)&0xfff])
}

// font is the built-in hexadecimal glyph set: 16 glyphs of 5 rows
// each, the high nibble of each byte holding the 4-pixel row.
var font = [80]byte{
	0xF0, 0x90, 0x90, 0x90, 0xF0, // 0
	0x20, 0x60, 0x20, 0x20, 0x70, // 1
	0xF0, 0x10, 0xF0, 0x80, 0xF0, // 2
	0xF0, 0x10, 0xF0, 0x10, 0xF0, // 3
	0x90, 0x90, 0xF0, 0x10, 0x10, // 4
	0xF0, 0x80, 0xF0, 0x10, 0xF0, // 5
	0xF0, 0x80, 0xF0, 0x90, 0xF0, // 6
	0xF0, 0x10, 0x20, 0x40, 0x40, // 7
	0xF0, 0x90, 0xF0, 0x90, 0xF0, // 8
	0xF0, 0x90, 0xF0, 0x10, 0xF0, // 9
	0xF0, 0x90, 0xF0, 0x90, 0x90, // A
	0xE0, 0x90, 0xE0, 0x90, 0xE0, // B
	0xF0, 0x80, 0x80, 0x80, 0xF0, // C
	0xE0, 0x90, 0x90, 0x90, 0xE0, // D
	0xF0, 0x80, 0xF0, 0x80, 0xF0, // E
	0xF0, 0x80, 0xF0, 0x80, 0x80, // F
}
