// Package chip8 provides an implementation of a CHIP-8 interpreter,
// called Machine, that can be used to execute CHIP-8 ROMs.
package chip8

import (
	"errors"
	"fmt"
	"math/rand"
	"sync/atomic"
	"time"
)

// Machine is an implementation of the CHIP-8 interpreter. The exported
// state fields are free to read between steps (debuggers do) but must
// not be mutated while the machine is running.
type Machine struct {
	Mem   Memory
	V     [16]byte // registers; V[0xF] is the flag register
	I     uint16   // address pointer
	PC    uint16
	Stack Stack

	Display  *Display
	Keyboard *Keyboard
	Timer    *Timer

	rand    *rand.Rand
	trace   TraceFunc
	stopped atomic.Bool
}

// TraceFunc receives the address, raw word, and decoded form of each
// instruction just before it executes.
type TraceFunc func(addr, word uint16, in Instruction)

// NewMachine returns a Machine loaded with the built-in font at
// FontAddr and the given program image at ProgramStart. At most
// ProgramSize bytes of rom are used; loaders conventionally pass a
// buffer of exactly that size (see the package-level constants).
// trace may be nil to disable tracing.
func NewMachine(rom []byte, trace TraceFunc) *Machine {
	if trace == nil {
		trace = func(uint16, uint16, Instruction) {}
	}
	m := &Machine{
		PC:       ProgramStart,
		Display:  &Display{},
		Keyboard: newKeyboard(),
		Timer:    &Timer{},
		rand:     rand.New(rand.NewSource(time.Now().UnixNano())),
		trace:    trace,
	}
	copy(m.Mem[FontAddr:], font[:])
	copy(m.Mem[ProgramStart:], rom)
	return m
}

// ErrStopped is returned by Step and Run after Halt has been called.
// It marks an external stop, not a machine fault.
var ErrStopped = errors.New("stopped")

// Halt stops a running machine: Run returns ErrStopped once the
// current step completes. Halt is safe to call from any goroutine. It
// does not interrupt a step blocked in wait-for-key; wake the machine
// by sending it a key if it might be waiting.
func (m *Machine) Halt() {
	m.stopped.Store(true)
}

// Run starts the 60 Hz clock and executes instructions until a fault
// or an external Halt. It returns ErrStopped after Halt and a
// HaltError otherwise; it never returns nil.
func (m *Machine) Run() error {
	m.Timer.Start()
	for {
		if err := m.Step(); err != nil {
			return err
		}
	}
}

// Step executes one instruction: one keyboard poll, fetch, decode,
// execute. The program counter advances by 2 before execution,
// whatever the outcome. Step may block in wait-for-key; it returns a
// non-nil error only when the machine must stop.
func (m *Machine) Step() (err error) {
	if m.stopped.Load() {
		return ErrStopped
	}

	var (
		addr = m.PC
		word = m.Mem.Word(addr)
	)
	defer func() {
		if e := recover(); e != nil {
			if code, ok := e.(HaltCode); ok {
				err = HaltError{HaltCode: code, Word: word, Addr: addr}
			} else {
				panic(e)
			}
		}
	}()

	m.Keyboard.poll()
	m.PC += 2

	in := Decode(word)
	m.trace(addr, word, in)
	m.exec(in)
	return nil
}

func (m *Machine) exec(in Instruction) {
	switch in := in.(type) {
	case Sys:
		// Machine-code routines are not supported: traced, skipped.
	case Cls:
		m.Display.Clear()
	case Ret:
		m.PC = m.Stack.pop()
	case Jp:
		m.PC = in.Addr
	case Call:
		m.Stack.push(m.PC)
		m.PC = in.Addr
	case SeByte:
		if m.V[in.X] == in.B {
			m.PC += 2
		}
	case SneByte:
		if m.V[in.X] != in.B {
			m.PC += 2
		}
	case SeReg:
		if m.V[in.X] == m.V[in.Y] {
			m.PC += 2
		}
	case LdByte:
		m.V[in.X] = in.B
	case AddByte:
		m.V[in.X] += in.B
	case LdReg:
		m.V[in.X] = m.V[in.Y]
	case Or:
		m.V[in.X] |= m.V[in.Y]
	case And:
		m.V[in.X] &= m.V[in.Y]
	case Xor:
		m.V[in.X] ^= m.V[in.Y]
	case AddReg:
		sum := uint16(m.V[in.X]) + uint16(m.V[in.Y])
		m.V[0xF] = byte(sum >> 8)
		m.V[in.X] = byte(sum)
	case Sub:
		vx, vy := m.V[in.X], m.V[in.Y]
		m.V[0xF] = flag(vx >= vy)
		m.V[in.X] = vx - vy
	case Shr:
		v := m.V[in.X]
		m.V[0xF] = v & 1
		m.V[in.X] = v >> 1
	case Subn:
		vx, vy := m.V[in.X], m.V[in.Y]
		m.V[0xF] = flag(vy >= vx)
		m.V[in.X] = vy - vx
	case Shl:
		v := m.V[in.X]
		m.V[0xF] = v >> 7
		m.V[in.X] = v << 1
	case SneReg:
		if m.V[in.X] != m.V[in.Y] {
			m.PC += 2
		}
	case LdI:
		m.I = in.Addr
	case JpV0:
		m.PC = in.Addr + uint16(m.V[0])
	case Rnd:
		m.V[in.X] = byte(m.rand.Intn(256)) & in.Mask
	case Drw:
		m.V[0xF] = flag(m.Display.Draw(Sprite{
			X:    m.V[in.X],
			Y:    m.V[in.Y],
			Rows: m.memRange(uint16(in.N)),
		}))
	case Skp:
		if m.Keyboard.Pressed(m.V[in.X]) {
			m.PC += 2
		}
	case Sknp:
		if !m.Keyboard.Pressed(m.V[in.X]) {
			m.PC += 2
		}
	case GetDelay:
		m.V[in.X] = m.Timer.Delay()
	case WaitKey:
		m.V[in.X] = m.Keyboard.wait()
	case SetDelay:
		m.Timer.SetDelay(m.V[in.X])
	case SetSound:
		m.Timer.SetSound(m.V[in.X])
	case AddI:
		m.I += uint16(m.V[in.X])
	case Font:
		m.I = FontAddr + uint16(m.V[in.X])*5
	case Bcd:
		mem := m.memRange(3)
		v := m.V[in.X]
		mem[0], mem[1], mem[2] = v/100, v/10%10, v%10
	case Store:
		copy(m.memRange(uint16(in.X)+1), m.V[:in.X+1])
	case Load:
		copy(m.V[:in.X+1], m.memRange(uint16(in.X)+1))
	case Halt:
		panic(BadOpcode)
	default:
		panic(fmt.Errorf("internal error: %T not implemented", in))
	}
}

// memRange returns the n bytes at the address pointer, halting the
// machine if the range extends past the end of memory.
func (m *Machine) memRange(n uint16) []byte {
	if int(m.I)+int(n) > len(m.Mem) {
		panic(MemoryRange)
	}
	return m.Mem[m.I : m.I+n]
}

func flag(b bool) byte {
	if b {
		return 1
	}
	return 0
}

// HaltError is returned by Step or Run when the machine halts on a
// fault rather than an external stop.
type HaltError struct {
	HaltCode
	Word uint16 // the fetched instruction word
	Addr uint16 // the address it was fetched from
}

func (e HaltError) Error() string {
	return fmt.Sprintf("%s executing %.4x at %.4x", e.HaltCode, e.Word, e.Addr)
}

// HaltCode signifies the kind of fault that halted execution.
type HaltCode byte

const (
	BadOpcode      HaltCode = 0x00 // word matches no known form
	StackOverflow  HaltCode = 0x01
	StackUnderflow HaltCode = 0x02
	MemoryRange    HaltCode = 0x03 // address pointer op past end of memory
	InputClosed    HaltCode = 0x04 // key event queue closed by producer
)

func (c HaltCode) String() string {
	if s, ok := map[HaltCode]string{
		BadOpcode:      "bad opcode",
		StackOverflow:  "stack overflow",
		StackUnderflow: "stack underflow",
		MemoryRange:    "memory out of range",
		InputClosed:    "input closed",
	}[c]; ok {
		return s
	}
	return fmt.Sprintf("unknown (%.2x)", byte(c))
}
