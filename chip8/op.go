package chip8

import "fmt"

// Instruction is a decoded CHIP-8 instruction. The concrete type
// identifies the opcode form and carries exactly the operands that form
// uses. Values are produced by Decode and consumed by the Machine and
// by anything that wants a disassembly via String.
type Instruction interface {
	fmt.Stringer
	instruction()
}

// The instruction forms of the standard opcode table. X and Y are
// register indices; B is a byte literal; Addr is a 12-bit address;
// N is a nibble literal.
type (
	// Sys is the machine-code call 0NNN. It is never executed.
	Sys struct{ Addr uint16 }
	// Cls (00E0) clears the display.
	Cls struct{}
	// Ret (00EE) returns from a subroutine.
	Ret struct{}
	// Jp (1NNN) jumps to Addr.
	Jp struct{ Addr uint16 }
	// Call (2NNN) calls the subroutine at Addr.
	Call struct{ Addr uint16 }
	// SeByte (3XNN) skips the next instruction if VX == B.
	SeByte struct {
		X byte
		B byte
	}
	// SneByte (4XNN) skips the next instruction if VX != B.
	SneByte struct {
		X byte
		B byte
	}
	// SeReg (5XY0) skips the next instruction if VX == VY.
	SeReg struct{ X, Y byte }
	// LdByte (6XNN) sets VX to B.
	LdByte struct {
		X byte
		B byte
	}
	// AddByte (7XNN) adds B to VX, wrapping, without touching VF.
	AddByte struct {
		X byte
		B byte
	}
	// LdReg (8XY0) copies VY into VX.
	LdReg struct{ X, Y byte }
	// Or (8XY1) sets VX to VX | VY.
	Or struct{ X, Y byte }
	// And (8XY2) sets VX to VX & VY.
	And struct{ X, Y byte }
	// Xor (8XY3) sets VX to VX ^ VY.
	Xor struct{ X, Y byte }
	// AddReg (8XY4) adds VY to VX; VF becomes 1 if the sum overflows.
	AddReg struct{ X, Y byte }
	// Sub (8XY5) sets VX to VX - VY; VF becomes 1 if VX >= VY.
	Sub struct{ X, Y byte }
	// Shr (8XY6) shifts VX right by one; VF captures the old low bit.
	// Y is part of the encoded form but the shift uses VX alone.
	Shr struct{ X, Y byte }
	// Subn (8XY7) sets VX to VY - VX; VF becomes 1 if VY >= VX.
	Subn struct{ X, Y byte }
	// Shl (8XYE) shifts VX left by one; VF captures the old high bit.
	// Y is part of the encoded form but the shift uses VX alone.
	Shl struct{ X, Y byte }
	// SneReg (9XY0) skips the next instruction if VX != VY.
	SneReg struct{ X, Y byte }
	// LdI (ANNN) sets the address pointer to Addr.
	LdI struct{ Addr uint16 }
	// JpV0 (BNNN) jumps to Addr + V0.
	JpV0 struct{ Addr uint16 }
	// Rnd (CXNN) sets VX to a uniformly random byte ANDed with Mask.
	Rnd struct {
		X    byte
		Mask byte
	}
	// Drw (DXYN) draws the N-row sprite at the address pointer to
	// (VX, VY); VF reports a collision.
	Drw struct{ X, Y, N byte }
	// Skp (EX9E) skips the next instruction if key VX is pressed.
	Skp struct{ X byte }
	// Sknp (EXA1) skips the next instruction if key VX is not pressed.
	Sknp struct{ X byte }
	// GetDelay (FX07) reads the delay timer into VX.
	GetDelay struct{ X byte }
	// WaitKey (FX0A) blocks until a key is pressed, storing it in VX.
	WaitKey struct{ X byte }
	// SetDelay (FX15) sets the delay timer to VX.
	SetDelay struct{ X byte }
	// SetSound (FX18) sets the sound timer to VX.
	SetSound struct{ X byte }
	// AddI (FX1E) adds VX to the address pointer.
	AddI struct{ X byte }
	// Font (FX29) points the address pointer at the glyph for VX.
	Font struct{ X byte }
	// Bcd (FX33) writes the decimal digits of VX at the address pointer.
	Bcd struct{ X byte }
	// Store (FX55) copies V0..=VX to memory at the address pointer.
	Store struct{ X byte }
	// Load (FX65) copies memory at the address pointer into V0..=VX.
	Load struct{ X byte }
	// Halt is the sentinel for a word matching no known form.
	// Executing it halts the machine.
	Halt struct{ Word uint16 }
)

func (Sys) instruction()      {}
func (Cls) instruction()      {}
func (Ret) instruction()      {}
func (Jp) instruction()       {}
func (Call) instruction()     {}
func (SeByte) instruction()   {}
func (SneByte) instruction()  {}
func (SeReg) instruction()    {}
func (LdByte) instruction()   {}
func (AddByte) instruction()  {}
func (LdReg) instruction()    {}
func (Or) instruction()       {}
func (And) instruction()      {}
func (Xor) instruction()      {}
func (AddReg) instruction()   {}
func (Sub) instruction()      {}
func (Shr) instruction()      {}
func (Subn) instruction()     {}
func (Shl) instruction()      {}
func (SneReg) instruction()   {}
func (LdI) instruction()      {}
func (JpV0) instruction()     {}
func (Rnd) instruction()      {}
func (Drw) instruction()      {}
func (Skp) instruction()      {}
func (Sknp) instruction()     {}
func (GetDelay) instruction() {}
func (WaitKey) instruction()  {}
func (SetDelay) instruction() {}
func (SetSound) instruction() {}
func (AddI) instruction()     {}
func (Font) instruction()     {}
func (Bcd) instruction()      {}
func (Store) instruction()    {}
func (Load) instruction()     {}
func (Halt) instruction()     {}

// Decode maps a 16-bit instruction word to its Instruction form.
// It is total: a word matching no known form decodes to Halt, never to
// an error. Families 0x0, 0x5, 0x8, 0x9, 0xE, and 0xF dispatch on
// their trailing nibbles.
func Decode(word uint16) Instruction {
	var (
		addr = word & 0x0fff
		x    = byte(word >> 8 & 0xf)
		y    = byte(word >> 4 & 0xf)
		n    = byte(word & 0xf)
		b    = byte(word)
	)
	switch word >> 12 {
	case 0x0:
		switch word {
		case 0x00e0:
			return Cls{}
		case 0x00ee:
			return Ret{}
		default:
			return Sys{Addr: addr}
		}
	case 0x1:
		return Jp{Addr: addr}
	case 0x2:
		return Call{Addr: addr}
	case 0x3:
		return SeByte{X: x, B: b}
	case 0x4:
		return SneByte{X: x, B: b}
	case 0x5:
		if n == 0 {
			return SeReg{X: x, Y: y}
		}
	case 0x6:
		return LdByte{X: x, B: b}
	case 0x7:
		return AddByte{X: x, B: b}
	case 0x8:
		switch n {
		case 0x0:
			return LdReg{X: x, Y: y}
		case 0x1:
			return Or{X: x, Y: y}
		case 0x2:
			return And{X: x, Y: y}
		case 0x3:
			return Xor{X: x, Y: y}
		case 0x4:
			return AddReg{X: x, Y: y}
		case 0x5:
			return Sub{X: x, Y: y}
		case 0x6:
			return Shr{X: x, Y: y}
		case 0x7:
			return Subn{X: x, Y: y}
		case 0xe:
			return Shl{X: x, Y: y}
		}
	case 0x9:
		if n == 0 {
			return SneReg{X: x, Y: y}
		}
	case 0xa:
		return LdI{Addr: addr}
	case 0xb:
		return JpV0{Addr: addr}
	case 0xc:
		return Rnd{X: x, Mask: b}
	case 0xd:
		return Drw{X: x, Y: y, N: n}
	case 0xe:
		switch b {
		case 0x9e:
			return Skp{X: x}
		case 0xa1:
			return Sknp{X: x}
		}
	case 0xf:
		switch b {
		case 0x07:
			return GetDelay{X: x}
		case 0x0a:
			return WaitKey{X: x}
		case 0x15:
			return SetDelay{X: x}
		case 0x18:
			return SetSound{X: x}
		case 0x1e:
			return AddI{X: x}
		case 0x29:
			return Font{X: x}
		case 0x33:
			return Bcd{X: x}
		case 0x55:
			return Store{X: x}
		case 0x65:
			return Load{X: x}
		}
	}
	return Halt{Word: word}
}

func (i Sys) String() string      { return fmt.Sprintf("SYS $%03X", i.Addr) }
func (Cls) String() string        { return "CLS" }
func (Ret) String() string        { return "RET" }
func (i Jp) String() string       { return fmt.Sprintf("JP $%03X", i.Addr) }
func (i Call) String() string     { return fmt.Sprintf("CALL $%03X", i.Addr) }
func (i SeByte) String() string   { return fmt.Sprintf("SE V%X, $%02X", i.X, i.B) }
func (i SneByte) String() string  { return fmt.Sprintf("SNE V%X, $%02X", i.X, i.B) }
func (i SeReg) String() string    { return fmt.Sprintf("SE V%X, V%X", i.X, i.Y) }
func (i LdByte) String() string   { return fmt.Sprintf("LD V%X, $%02X", i.X, i.B) }
func (i AddByte) String() string  { return fmt.Sprintf("ADD V%X, $%02X", i.X, i.B) }
func (i LdReg) String() string    { return fmt.Sprintf("LD V%X, V%X", i.X, i.Y) }
func (i Or) String() string       { return fmt.Sprintf("OR V%X, V%X", i.X, i.Y) }
func (i And) String() string      { return fmt.Sprintf("AND V%X, V%X", i.X, i.Y) }
func (i Xor) String() string      { return fmt.Sprintf("XOR V%X, V%X", i.X, i.Y) }
func (i AddReg) String() string   { return fmt.Sprintf("ADD V%X, V%X", i.X, i.Y) }
func (i Sub) String() string      { return fmt.Sprintf("SUB V%X, V%X", i.X, i.Y) }
func (i Shr) String() string      { return fmt.Sprintf("SHR V%X", i.X) }
func (i Subn) String() string     { return fmt.Sprintf("SUBN V%X, V%X", i.X, i.Y) }
func (i Shl) String() string      { return fmt.Sprintf("SHL V%X", i.X) }
func (i SneReg) String() string   { return fmt.Sprintf("SNE V%X, V%X", i.X, i.Y) }
func (i LdI) String() string      { return fmt.Sprintf("LD I, $%03X", i.Addr) }
func (i JpV0) String() string     { return fmt.Sprintf("JP V0, $%03X", i.Addr) }
func (i Rnd) String() string      { return fmt.Sprintf("RND V%X, $%02X", i.X, i.Mask) }
func (i Drw) String() string      { return fmt.Sprintf("DRW V%X, V%X, $%X", i.X, i.Y, i.N) }
func (i Skp) String() string      { return fmt.Sprintf("SKP V%X", i.X) }
func (i Sknp) String() string     { return fmt.Sprintf("SKNP V%X", i.X) }
func (i GetDelay) String() string { return fmt.Sprintf("LD V%X, DT", i.X) }
func (i WaitKey) String() string  { return fmt.Sprintf("LD V%X, K", i.X) }
func (i SetDelay) String() string { return fmt.Sprintf("LD DT, V%X", i.X) }
func (i SetSound) String() string { return fmt.Sprintf("LD ST, V%X", i.X) }
func (i AddI) String() string     { return fmt.Sprintf("ADD I, V%X", i.X) }
func (i Font) String() string     { return fmt.Sprintf("LD F, V%X", i.X) }
func (i Bcd) String() string      { return fmt.Sprintf("LD B, V%X", i.X) }
func (i Store) String() string    { return fmt.Sprintf("LD [I], V%X", i.X) }
func (i Load) String() string     { return fmt.Sprintf("LD V%X, [I]", i.X) }
func (i Halt) String() string     { return fmt.Sprintf("??? $%04X", i.Word) }
