package main

import (
	"sync"
	"sync/atomic"
	"time"

	"github.com/dmnk/c8/chip8"
)

// StateKind tells a StateFunc what prompted the notification.
type StateKind int

const (
	// QuietState is a periodic refresh while the machine runs.
	QuietState StateKind = iota
	// ClearState reports that a fresh machine was brought up.
	ClearState
	// DebugState reports a completed single step.
	DebugState
	// PauseState reports that execution is paused.
	PauseState
	// BreakState reports that the breakpoint was hit.
	BreakState
	// HaltState reports that the machine halted with a fault.
	HaltState
)

// StateFunc receives state notifications from a Runner. It is always
// called with the machine at an instruction boundary, so reading its
// registers and memory is safe for the duration of the call. It must
// not call back into the Runner.
type StateFunc func(m *chip8.Machine, k StateKind)

// frontend is a user interface attached to a machine: it consumes the
// display's change feed and produces keypad events.
type frontend interface {
	// Attach points the frontend at a new machine. It is called before
	// Run and again after every swap.
	Attach(m *chip8.Machine)
	// Run drives the interface until the user quits or exit is closed.
	Run(exit <-chan bool) error
}

// Runner executes a machine and coordinates it with a frontend, the
// developer mode swapper, and the debugger.
type Runner struct {
	// Hz throttles execution to that many instructions per second when
	// positive. Zero runs unthrottled.
	Hz int
	// Trace, when non-nil, is installed in every machine the runner
	// creates.
	Trace chip8.TraceFunc
	// Logf, when non-nil, receives runner status messages.
	Logf func(format string, args ...any)

	gui   bool
	dev   bool
	state StateFunc

	reset     chan []byte
	resetDone chan bool
	quit      chan bool
	cont      chan string
	pause     atomic.Bool
	brk       atomic.Int32

	mu  sync.Mutex
	m   *chip8.Machine
	rom []byte

	err error
}

func NewRunner(enableGUI, devMode bool, state StateFunc) *Runner {
	r := &Runner{
		gui:       enableGUI,
		dev:       devMode,
		state:     state,
		reset:     make(chan []byte),
		resetDone: make(chan bool),
		quit:      make(chan bool, 1),
		cont:      make(chan string, 1),
	}
	r.brk.Store(-1)
	return r
}

// Run executes the machine loaded with rom until it halts or the user
// quits, driving the frontend in the foreground. It returns the
// process exit code: 0 after a clean stop, 1 after a machine fault,
// and 2 when the frontend failed.
func (r *Runner) Run(rom []byte) int {
	m := chip8.NewMachine(rom, r.Trace)
	r.setMachine(m, rom)

	var ui frontend
	switch {
	case r.gui:
		ui = newGUI(r.logf)
	case r.state == nil:
		ui = newTerminal()
	}
	if ui != nil {
		ui.Attach(m)
	}
	r.notify(m, ClearState)

	exit := make(chan bool)
	go func() {
		execErr := make(chan error, 1)
		running := true
		go func(m *chip8.Machine) { execErr <- r.exec(m) }(m)
		for {
			select {
			case rom := <-r.reset:
				if running {
					r.interrupt(m)
					<-execErr
				}
				m = chip8.NewMachine(rom, r.Trace)
				r.setMachine(m, rom)
				r.err = nil
				if ui != nil {
					ui.Attach(m)
				}
				r.notify(m, ClearState)
				running = true
				go func(m *chip8.Machine) { execErr <- r.exec(m) }(m)
				r.resetDone <- true

			case err := <-execErr:
				r.err = err
				if r.dev {
					// Stay up for the next swap.
					if err != nil && err != chip8.ErrStopped {
						r.logf("machine: %v", err)
						r.notify(m, HaltState)
					}
					running = false
				} else {
					close(exit)
					return
				}

			case <-r.quit:
				if running {
					r.interrupt(m)
					r.err = <-execErr
				}
				close(exit)
				return
			}
		}
	}()

	if ui != nil {
		if err := ui.Run(exit); err != nil {
			r.logf("ui: %v", err)
			return 2
		}
		// The user closed the interface; stop the machine.
		r.Debug("exit", 0)
	}
	<-exit

	if r.err != nil && r.err != chip8.ErrStopped {
		return 1
	}
	return 0
}

// Err returns the error that ended the last Run: a chip8.HaltError
// after a machine fault, chip8.ErrStopped after an external stop, or
// nil. Only valid after Run has returned.
func (r *Runner) Err() error {
	return r.err
}

// Swap halts the current machine and brings up a fresh one loaded
// with rom, keeping the frontend attached. It returns once the new
// machine is running. Only valid in dev mode.
func (r *Runner) Swap(rom []byte) {
	if !r.dev {
		panic("Swap called while not running in dev mode")
	}
	r.reset <- rom
	<-r.resetDone
}

// Debug processes a debugger command. Commands that take an address
// receive it in addr; the rest ignore it. Setting a breakpoint at 0
// clears it.
func (r *Runner) Debug(cmd string, addr uint16) {
	switch cmd {
	case "p", "pause":
		r.pause.Store(true)
	case "c", "cont", "continue":
		r.pause.Store(false)
		r.nudge("c")
	case "s", "step":
		r.pause.Store(true)
		r.nudge("s")
	case "b", "break":
		if addr == 0 {
			r.brk.Store(-1)
		} else {
			r.brk.Store(int32(addr))
		}
	case "k", "key":
		if m := r.machine(); m != nil {
			select {
			case m.Keyboard.Keys() <- byte(addr):
			default:
			}
		}
	case "reset":
		if rom := r.lastROM(); rom != nil {
			r.Swap(rom)
		}
	case "exit":
		select {
		case r.quit <- true:
		default:
		}
	}
}

// exec runs the machine until it halts, parking at instruction
// boundaries while paused and throttling to Hz when set.
func (r *Runner) exec(m *chip8.Machine) error {
	m.Timer.Start()
	var tick *time.Ticker
	if r.Hz > 0 {
		tick = time.NewTicker(time.Second / time.Duration(r.Hz))
		defer tick.Stop()
	}
	var refreshed time.Time
	for {
		if b := r.brk.Load(); b >= 0 && uint16(b) == m.PC && r.pause.CompareAndSwap(false, true) {
			r.notify(m, BreakState)
		} else if r.pause.Load() {
			r.notify(m, PauseState)
		}
		for r.pause.Load() {
			if <-r.cont == "s" {
				if err := m.Step(); err != nil {
					return err
				}
				r.notify(m, DebugState)
			}
		}
		if err := m.Step(); err != nil {
			return err
		}
		if r.state != nil && time.Since(refreshed) > 100*time.Millisecond {
			refreshed = time.Now()
			r.notify(m, QuietState)
		}
		if tick != nil {
			<-tick.C
		}
	}
}

// interrupt forces a machine out of Step so its exec goroutine can
// observe Halt: it unparks a paused exec loop and wakes a pending
// wait-for-key.
func (r *Runner) interrupt(m *chip8.Machine) {
	m.Halt()
	r.pause.Store(false)
	r.nudge("c")
	select {
	case m.Keyboard.Keys() <- 0:
	default:
	}
}

func (r *Runner) nudge(cmd string) {
	select {
	case r.cont <- cmd:
	default:
	}
}

func (r *Runner) notify(m *chip8.Machine, k StateKind) {
	if r.state != nil {
		r.state(m, k)
	}
}

func (r *Runner) logf(format string, args ...any) {
	if r.Logf != nil {
		r.Logf(format, args...)
	}
}

func (r *Runner) setMachine(m *chip8.Machine, rom []byte) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.m = m
	r.rom = rom
}

func (r *Runner) machine() *chip8.Machine {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.m
}

func (r *Runner) lastROM() []byte {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.rom
}
