package main

import (
	"testing"
	"time"

	"github.com/retroenv/retrogolib/assert"

	"github.com/dmnk/c8/chip8"
)

// program assembles instruction words into a big-endian ROM image.
func program(words ...uint16) []byte {
	b := make([]byte, 0, len(words)*2)
	for _, w := range words {
		b = append(b, byte(w>>8), byte(w))
	}
	return b
}

type stateRec struct {
	kind StateKind
	pc   uint16
	v1   byte
	v2   byte
	m    *chip8.Machine
}

// collectStates returns a StateFunc that snapshots every notification
// except the periodic QuietState refreshes, which arrive at
// unpredictable times.
func collectStates() (StateFunc, <-chan stateRec) {
	ch := make(chan stateRec, 128)
	return func(m *chip8.Machine, k StateKind) {
		if k == QuietState {
			return
		}
		select {
		case ch <- stateRec{kind: k, pc: m.PC, v1: m.V[1], v2: m.V[2], m: m}:
		default:
		}
	}, ch
}

func nextState(t *testing.T, ch <-chan stateRec) stateRec {
	t.Helper()
	select {
	case s := <-ch:
		return s
	case <-time.After(5 * time.Second):
		t.Fatal("timed out waiting for a state notification")
		return stateRec{}
	}
}

func waitCode(t *testing.T, done <-chan int) int {
	t.Helper()
	select {
	case code := <-done:
		return code
	case <-time.After(5 * time.Second):
		t.Fatal("timed out waiting for the runner to stop")
		return -1
	}
}

func TestRunnerFault(t *testing.T) {
	state, _ := collectStates()
	r := NewRunner(false, false, state)

	code := r.Run(program(0xffff))

	assert.Equal(t, 1, code)
	want := chip8.HaltError{HaltCode: chip8.BadOpcode, Word: 0xffff, Addr: 0x200}
	assert.Equal(t, want, r.Err())
}

func TestRunnerExternalStop(t *testing.T) {
	state, states := collectStates()
	r := NewRunner(false, false, state)

	done := make(chan int, 1)
	go func() { done <- r.Run(program(0x1200)) }() // JP $200: spin forever

	s := nextState(t, states)
	assert.Equal(t, ClearState, s.kind)

	r.Debug("exit", 0)
	assert.Equal(t, 0, waitCode(t, done))
	assert.Equal(t, chip8.ErrStopped, r.Err())
}

func TestRunnerPauseAndStep(t *testing.T) {
	state, states := collectStates()
	r := NewRunner(false, false, state)
	r.Debug("pause", 0)

	done := make(chan int, 1)
	go func() { done <- r.Run(program(0x6101, 0x6202, 0xffff)) }()

	s := nextState(t, states)
	assert.Equal(t, ClearState, s.kind)

	// Paused before the first instruction.
	s = nextState(t, states)
	assert.Equal(t, PauseState, s.kind)
	assert.Equal(t, uint16(0x200), s.pc)

	r.Debug("s", 0)
	s = nextState(t, states)
	assert.Equal(t, DebugState, s.kind)
	assert.Equal(t, uint16(0x202), s.pc)
	assert.Equal(t, byte(1), s.v1)

	r.Debug("step", 0)
	s = nextState(t, states)
	assert.Equal(t, DebugState, s.kind)
	assert.Equal(t, uint16(0x204), s.pc)
	assert.Equal(t, byte(2), s.v2)

	// Continuing runs into the halt word.
	r.Debug("c", 0)
	assert.Equal(t, 1, waitCode(t, done))
}

func TestRunnerBreakpoint(t *testing.T) {
	state, states := collectStates()
	r := NewRunner(false, false, state)
	r.Debug("b", 0x204)

	done := make(chan int, 1)
	go func() { done <- r.Run(program(0x6101, 0x6202, 0x1204)) }()

	s := nextState(t, states)
	assert.Equal(t, ClearState, s.kind)

	s = nextState(t, states)
	assert.Equal(t, BreakState, s.kind)
	assert.Equal(t, uint16(0x204), s.pc)
	assert.Equal(t, byte(1), s.v1)
	assert.Equal(t, byte(2), s.v2)

	r.Debug("exit", 0)
	assert.Equal(t, 0, waitCode(t, done))
}

func TestRunnerKeyCommand(t *testing.T) {
	state, states := collectStates()
	r := NewRunner(false, false, state)

	done := make(chan int, 1)
	go func() { done <- r.Run(program(0xf10a, 0xffff)) }() // LD V1, K

	s := nextState(t, states)
	assert.Equal(t, ClearState, s.kind)

	r.Debug("k", 0xb)
	assert.Equal(t, 1, waitCode(t, done))
	assert.Equal(t, byte(0xb), s.m.V[1])
}

func TestRunnerSwap(t *testing.T) {
	state, states := collectStates()
	r := NewRunner(false, true, state)

	done := make(chan int, 1)
	go func() { done <- r.Run(program(0x1200)) }()

	first := nextState(t, states)
	assert.Equal(t, ClearState, first.kind)

	r.Swap(program(0x6107, 0x1202))
	second := nextState(t, states)
	assert.Equal(t, ClearState, second.kind)
	assert.True(t, first.m != second.m)

	r.Debug("exit", 0)
	assert.Equal(t, 0, waitCode(t, done))
}

func TestRunnerDevModeSurvivesFault(t *testing.T) {
	state, states := collectStates()
	r := NewRunner(false, true, state)

	done := make(chan int, 1)
	go func() { done <- r.Run(program(0xffff)) }()

	s := nextState(t, states)
	assert.Equal(t, ClearState, s.kind)
	s = nextState(t, states)
	assert.Equal(t, HaltState, s.kind)

	// The runner stays up so a reload can recover from the fault.
	r.Swap(program(0x1200))
	s = nextState(t, states)
	assert.Equal(t, ClearState, s.kind)

	r.Debug("exit", 0)
	assert.Equal(t, 0, waitCode(t, done))
}
