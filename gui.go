package main

import (
	"image"
	"image/color"
	"sync"
	"time"

	"golang.org/x/exp/shiny/driver"
	"golang.org/x/exp/shiny/screen"
	"golang.org/x/image/draw"
	"golang.org/x/mobile/event/key"
	"golang.org/x/mobile/event/lifecycle"
	"golang.org/x/mobile/event/paint"
	"golang.org/x/mobile/event/size"

	"github.com/dmnk/c8/chip8"
)

// guiScale is the pixel size of the texture the display is rendered
// into before it is stretched to the window.
const guiScale = 8

var (
	pixelOn  = color.RGBA{R: 0xff, G: 0xff, B: 0xff, A: 0xff}
	pixelOff = color.RGBA{A: 0xff}
)

type gui struct {
	logf func(format string, args ...any)

	mu  sync.Mutex
	m   *chip8.Machine
	sub *chip8.Subscription

	size image.Point
	src  *image.RGBA
	buf  screen.Buffer
	tex  screen.Texture
}

func newGUI(logf func(format string, args ...any)) *gui {
	return &gui{
		logf: logf,
		size: image.Point{
			X: chip8.DisplayWidth * guiScale,
			Y: chip8.DisplayHeight * guiScale,
		},
	}
}

func (g *gui) Attach(m *chip8.Machine) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.sub != nil {
		g.sub.Cancel()
	}
	g.m = m
	g.sub = m.Display.Subscribe()
}

func (g *gui) snapshot() (*chip8.Machine, *chip8.Subscription) {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.m, g.sub
}

func (g *gui) Run(exit <-chan bool) error {
	var runErr error
	driver.Main(func(s screen.Screen) {
		w, err := s.NewWindow(&screen.NewWindowOptions{
			Title:  "c8",
			Width:  g.size.X,
			Height: g.size.Y,
		})
		if err != nil {
			runErr = err
			return
		}
		defer w.Release()
		defer g.release()

		type update struct{}
		go func() {
			t := time.NewTicker(time.Second / chip8.TickRate)
			defer t.Stop()
			for {
				select {
				case <-t.C:
					w.Send(update{})
				case <-exit:
					// One more so NextEvent observes the exit.
					w.Send(update{})
					return
				}
			}
		}()

		var (
			sz    size.Event
			cur   *chip8.Subscription
			curM  *chip8.Machine
			frame frameBuffer
			dirty bool
			beep  bool
		)
		for {
			e := w.NextEvent()

			select {
			case <-exit:
				return
			default:
			}

			switch e := e.(type) {
			case size.Event:
				sz = e
				if sz.WidthPx+sz.HeightPx == 0 {
					return
				}
				dirty = true

			case lifecycle.Event:
				if e.To == lifecycle.StageDead {
					return
				}

			case key.Event:
				if e.Code == key.CodeEscape {
					return
				}
				if e.Direction == key.DirRelease {
					break
				}
				k, ok := keypadCodes[e.Code]
				if !ok {
					break
				}
				if curM != nil {
					select {
					case curM.Keyboard.Keys() <- k:
					default:
					}
				}

			case update:
				m, sub := g.snapshot()
				if sub != cur {
					cur, curM = sub, m
					frame = frameBuffer(m.Display.Rows())
					dirty = true
				}
			drain:
				for cur != nil {
					select {
					case ev, ok := <-cur.C():
						if !ok {
							// Fell behind the display; resync.
							if _, now := g.snapshot(); now == cur {
								g.Attach(curM)
							}
							cur = nil
							break drain
						}
						frame.apply(ev)
						dirty = true
					default:
						break drain
					}
				}
				if b := curM != nil && curM.Timer.Beeping(); b != beep {
					beep = b
					dirty = true
				}
				if dirty && sz.WidthPx > 0 && sz.HeightPx > 0 {
					if err := g.redraw(s, w, sz, &frame, beep); err != nil {
						runErr = err
						return
					}
					dirty = false
				}

			case paint.Event:

			case error:
				g.logf("gui: %v", e)
			}
		}
	})
	return runErr
}

// redraw paints the frame into the window: monochrome pixels scaled
// up with a hard nearest-neighbour filter so they stay crisp, the
// palette inverted while the buzzer sounds.
func (g *gui) redraw(s screen.Screen, w screen.Window, sz size.Event, f *frameBuffer, beep bool) error {
	if g.tex == nil {
		var err error
		if g.buf, err = s.NewBuffer(g.size); err != nil {
			return err
		}
		if g.tex, err = s.NewTexture(g.size); err != nil {
			return err
		}
		g.src = image.NewRGBA(image.Rectangle{
			Max: image.Point{X: chip8.DisplayWidth, Y: chip8.DisplayHeight},
		})
	}
	on, off := pixelOn, pixelOff
	if beep {
		on, off = off, on
	}
	for y := 0; y < chip8.DisplayHeight; y++ {
		for x := 0; x < chip8.DisplayWidth; x++ {
			if f.pixel(x, y) {
				g.src.SetRGBA(x, y, on)
			} else {
				g.src.SetRGBA(x, y, off)
			}
		}
	}
	draw.NearestNeighbor.Scale(g.buf.RGBA(), g.buf.Bounds(), g.src, g.src.Bounds(), draw.Src, nil)
	g.tex.Upload(image.Point{}, g.buf, g.buf.Bounds())
	w.Scale(sz.Bounds(), g.tex, g.tex.Bounds(), draw.Src, nil)
	w.Publish()
	return nil
}

func (g *gui) release() {
	if g.tex != nil {
		g.tex.Release()
	}
	if g.buf != nil {
		g.buf.Release()
	}
}
