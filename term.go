package main

import (
	"sync"
	"time"

	"github.com/gdamore/tcell/v2"
	"github.com/pkg/errors"

	"github.com/dmnk/c8/chip8"
)

// terminal renders the display in the controlling terminal, two
// pixels per cell using half-block characters, and feeds typed keys
// to the keypad. Esc or Ctrl-C quits.
type terminal struct {
	mu  sync.Mutex
	m   *chip8.Machine
	sub *chip8.Subscription

	attached chan bool
	resized  chan bool
}

func newTerminal() *terminal {
	return &terminal{
		attached: make(chan bool, 1),
		resized:  make(chan bool, 1),
	}
}

func (t *terminal) Attach(m *chip8.Machine) {
	t.mu.Lock()
	if t.sub != nil {
		t.sub.Cancel()
	}
	t.m = m
	t.sub = m.Display.Subscribe()
	t.mu.Unlock()
	select {
	case t.attached <- true:
	default:
	}
}

func (t *terminal) snapshot() (*chip8.Machine, *chip8.Subscription) {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.m, t.sub
}

func (t *terminal) Run(exit <-chan bool) error {
	s, err := tcell.NewScreen()
	if err != nil {
		return errors.Wrapf(err, "creating screen")
	}
	if err := s.Init(); err != nil {
		return errors.Wrapf(err, "initialising screen")
	}
	defer s.Fini()
	s.HideCursor()

	quit := make(chan bool)
	defer close(quit)
	go t.render(s, quit)
	go t.beep(s, quit)
	go func() {
		// Wake PollEvent when the machine is done.
		select {
		case <-exit:
			s.PostEvent(tcell.NewEventInterrupt(nil))
		case <-quit:
		}
	}()

	for {
		switch ev := s.PollEvent().(type) {
		case *tcell.EventKey:
			switch ev.Key() {
			case tcell.KeyEscape, tcell.KeyCtrlC:
				return nil
			case tcell.KeyRune:
				k, ok := keypadRune(ev.Rune())
				if !ok {
					break
				}
				if m, _ := t.snapshot(); m != nil {
					select {
					case m.Keyboard.Keys() <- k:
					default:
					}
				}
			}
		case *tcell.EventResize:
			select {
			case t.resized <- true:
			default:
			}
		case *tcell.EventInterrupt:
			return nil
		}
	}
}

// render owns all drawing. It keeps a local copy of the frame buffer
// fed by the display subscription, seeding it from a snapshot each
// time the machine changes so a swap mid-picture comes out right.
func (t *terminal) render(s tcell.Screen, quit <-chan bool) {
	for {
		m, sub := t.snapshot()
		if sub == nil {
			select {
			case <-t.attached:
				continue
			case <-quit:
				return
			}
		}
		frame := frameBuffer(m.Display.Rows())
		t.draw(s, &frame)
		for {
			select {
			case <-quit:
				return
			case <-t.attached:
			case <-t.resized:
				s.Sync()
				t.draw(s, &frame)
				continue
			case ev, ok := <-sub.C():
				if !ok {
					// Dropped for falling behind; resubscribe.
					if cm, cur := t.snapshot(); cur == sub && cm != nil {
						t.Attach(cm)
					}
					select {
					case <-t.attached:
					case <-quit:
						return
					}
					break
				}
				frame.apply(ev)
				t.draw(s, &frame)
				continue
			}
			break
		}
	}
}

// beep rings the terminal bell when the sound timer starts running.
func (t *terminal) beep(s tcell.Screen, quit <-chan bool) {
	tick := time.NewTicker(time.Second / chip8.TickRate)
	defer tick.Stop()
	var was bool
	for {
		select {
		case <-quit:
			return
		case <-tick.C:
			m, _ := t.snapshot()
			is := m != nil && m.Timer.Beeping()
			if is && !was {
				s.Beep()
			}
			was = is
		}
	}
}

func (t *terminal) draw(s tcell.Screen, f *frameBuffer) {
	const (
		cols = chip8.DisplayWidth
		rows = chip8.DisplayHeight / 2
	)
	st := tcell.StyleDefault
	s.SetContent(0, 0, '┌', nil, st)
	s.SetContent(cols+1, 0, '┐', nil, st)
	s.SetContent(0, rows+1, '└', nil, st)
	s.SetContent(cols+1, rows+1, '┘', nil, st)
	for x := 1; x <= cols; x++ {
		s.SetContent(x, 0, '─', nil, st)
		s.SetContent(x, rows+1, '─', nil, st)
	}
	for y := 1; y <= rows; y++ {
		s.SetContent(0, y, '│', nil, st)
		s.SetContent(cols+1, y, '│', nil, st)
		for x := 0; x < cols; x++ {
			r := halfBlock(f.pixel(x, 2*(y-1)), f.pixel(x, 2*y-1))
			s.SetContent(x+1, y, r, nil, st)
		}
	}
	s.Show()
}
