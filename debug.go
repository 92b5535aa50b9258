package main

import (
	"fmt"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/gdamore/tcell/v2"
	"github.com/rivo/tview"

	"github.com/dmnk/c8/chip8"
)

// debugger is the interactive debug view: the display rendered as
// half-block text, a watch pane, a log pane, a state bar, and a
// command line. Commands:
//
//	p               pause execution
//	c               continue execution
//	s               execute one instruction
//	b [addr]        set the breakpoint; no address clears it
//	w [addr]        watch a memory byte; no address clears the watches
//	k key           press a keypad key (0-f)
//	reset           restart the loaded program
//	exit            stop the machine and quit
//
// Addresses and keys are hexadecimal.
type debugger struct {
	run *Runner

	screen *tview.TextView
	log    *tview.TextView
	watch  *tview.TextView
	state  *tview.TextView
	input  *tview.InputField
	cols   *tview.Flex
	rows   *tview.Flex
	app    *tview.Application

	mu      sync.Mutex
	brk     uint16 // 0 means cleared
	watches []uint16
	detach  chan bool
	pending *paneUpdate

	nudge chan bool
}

// paneUpdate is a rendered state notification. The exec goroutine
// must never block on the UI, so StateFunc renders one of these and
// leaves it in a mailbox for the dispatch goroutine to apply.
type paneUpdate struct {
	kind  StateKind
	state string
	watch string
}

func newDebugView() *debugger {
	d := &debugger{
		screen: tview.NewTextView().
			SetWrap(false),
		log: tview.NewTextView().
			SetMaxLines(1000),
		watch: tview.NewTextView().
			SetWrap(false).
			SetTextAlign(tview.AlignRight),
		state: tview.NewTextView().
			SetWrap(false),
		input: tview.NewInputField(),
		cols:  tview.NewFlex(),
		rows: tview.NewFlex().
			SetDirection(tview.FlexRow),
		app:   tview.NewApplication(),
		nudge: make(chan bool, 1),
	}
	d.log.SetChangedFunc(func() { d.app.Draw() })
	d.watch.SetBackgroundColor(tcell.ColorDarkBlue)
	d.state.SetBackgroundColor(tcell.ColorDarkGrey)
	d.cols.
		AddItem(d.screen, chip8.DisplayWidth+1, 0, false).
		AddItem(d.watch, 0, 1, false).
		AddItem(d.log, 0, 2, false)
	d.rows.
		AddItem(d.cols, 0, 1, false).
		AddItem(d.state, 3, 0, false).
		AddItem(d.input, 1, 0, true)
	d.app.SetRoot(d.rows, true)
	go d.dispatch()

	d.input.SetDoneFunc(func(key tcell.Key) {
		if key != tcell.KeyEnter {
			return
		}
		cmd := d.input.GetText()
		if cmd == "" {
			return
		}
		d.input.SetText("")
		if cmd, arg, ok := strings.Cut(cmd, " "); ok {
			switch cmd {
			case "b", "break":
				addr, err := strconv.ParseUint(arg, 16, 12)
				if err != nil {
					d.logf("invalid addr %q", arg)
					return
				}
				d.run.Debug("b", uint16(addr))
				d.mu.Lock()
				d.brk = uint16(addr)
				d.mu.Unlock()
				d.logf("set break %.4x", addr)
				return
			case "w", "watch":
				addr, err := strconv.ParseUint(arg, 16, 12)
				if err != nil {
					d.logf("invalid addr %q", arg)
					return
				}
				d.mu.Lock()
				d.watches = append(d.watches, uint16(addr))
				d.mu.Unlock()
				d.logf("watching %.4x", addr)
				return
			case "k", "key":
				k, err := strconv.ParseUint(arg, 16, 4)
				if err != nil {
					d.logf("invalid key %q", arg)
					return
				}
				d.run.Debug("k", uint16(k))
				return
			}
		}
		d.run.Debug(cmd, 0)
		switch cmd {
		case "b", "break":
			d.mu.Lock()
			d.brk = 0
			d.mu.Unlock()
			d.logf("cleared break")
		case "w", "watch":
			d.mu.Lock()
			d.watches = nil
			d.mu.Unlock()
			d.logf("cleared watches")
		}
	})
	return d
}

func (d *debugger) Run() error { return d.app.Run() }

func (d *debugger) Stop() { d.app.Stop() }

func (d *debugger) logf(format string, args ...any) {
	fmt.Fprintf(d.log, format+"\n", args...)
}

// StateFunc is the Runner's state notification hook. It runs on the
// exec goroutine, so the machine is quiescent and safe to read here,
// and everything the panes need is rendered to strings before the
// mailbox hand-off.
func (d *debugger) StateFunc(m *chip8.Machine, k StateKind) {
	if k == ClearState {
		d.attach(m)
	}
	u := &paneUpdate{kind: k, watch: d.watchContent(m)}
	if k != ClearState && k != QuietState {
		u.state = stateMsg(m, k)
	}
	d.mu.Lock()
	d.pending = u
	d.mu.Unlock()
	select {
	case d.nudge <- true:
	default:
	}
}

func (d *debugger) dispatch() {
	for range d.nudge {
		d.mu.Lock()
		u := d.pending
		d.pending = nil
		d.mu.Unlock()
		if u == nil {
			continue
		}
		d.app.QueueUpdateDraw(func() {
			switch u.kind {
			case DebugState, ClearState:
				d.state.SetTextColor(tcell.ColorBlack)
				d.state.SetBackgroundColor(tcell.ColorDarkGrey)
			case BreakState:
				d.state.SetTextColor(tcell.ColorYellow)
				d.state.SetBackgroundColor(tcell.ColorDarkBlue)
			case PauseState:
				d.state.SetTextColor(tcell.ColorWhite)
				d.state.SetBackgroundColor(tcell.ColorDarkBlue)
			case HaltState:
				d.state.SetTextColor(tcell.ColorWhite)
				d.state.SetBackgroundColor(tcell.ColorDarkRed)
			}
			d.watch.SetText(u.watch)
			if u.kind != QuietState {
				d.state.SetText(u.state)
			}
		})
	}
}

// attach points the screen pane at a machine's display. The pane
// polls full snapshots rather than following the change feed so a
// busy program can never outrun it.
func (d *debugger) attach(m *chip8.Machine) {
	d.mu.Lock()
	if d.detach != nil {
		close(d.detach)
	}
	detach := make(chan bool)
	d.detach = detach
	d.mu.Unlock()

	go func() {
		t := time.NewTicker(time.Second / 30)
		defer t.Stop()
		var last string
		for {
			select {
			case <-detach:
				return
			case <-t.C:
				f := frameBuffer(m.Display.Rows())
				s := renderFrame(&f)
				if s == last {
					continue
				}
				last = s
				d.app.QueueUpdateDraw(func() { d.screen.SetText(s) })
			}
		}
	}()
}

func stateMsg(m *chip8.Machine, k StateKind) string {
	kind := "       "
	switch k {
	case BreakState:
		kind = "[break]"
	case DebugState:
		kind = "[step ]"
	case PauseState:
		kind = "[pause]"
	case HaltState:
		kind = "[HALT!]"
	}
	return fmt.Sprintf("%.4x %- 14s %s\nV: % x  I: %.4x  DT: %.2x  ST: %.2x\nstack: %v\n",
		m.PC, chip8.Decode(m.Mem.Word(m.PC)), kind,
		m.V, m.I, m.Timer.Delay(), m.Timer.Sound(), m.Stack)
}

func (d *debugger) watchContent(m *chip8.Machine) string {
	d.mu.Lock()
	defer d.mu.Unlock()
	var b strings.Builder
	if d.brk > 0 {
		fmt.Fprintf(&b, "[%.4x] brk!\n", d.brk)
	}
	for _, addr := range d.watches {
		if b.Len() > 0 {
			b.WriteByte('\n')
		}
		fmt.Fprintf(&b, "[%.4x] %.2x", addr, m.Mem[addr])
	}
	return b.String()
}
