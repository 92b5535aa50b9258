package chip8

import "sync"

// Display dimensions in pixels.
const (
	DisplayWidth  = 64
	DisplayHeight = 32
)

// Sprite is a bitmap to draw at an origin. Each row is 8 pixels wide,
// bit 7 leftmost; height is len(Rows), 1 to 15.
type Sprite struct {
	X, Y byte
	Rows []byte
}

// Change describes one mutation of the display. A Change with Clear
// set reports that the whole buffer was zeroed and carries no rows.
// Otherwise Rows holds the post-draw 8-pixel windows of the touched
// rows: Rows[i] is the window of buffer row Y+i whose leftmost pixel
// is column X. Rows may be shorter than the sprite that caused it if
// the draw was clipped at the bottom edge, and empty if it was
// clipped entirely.
type Change struct {
	X, Y  byte
	Rows  []byte
	Clear bool
}

// Display is the monochrome frame buffer: 32 rows of 64 pixels, one
// bit per pixel, bit 63 of each row holding column 0. Nothing in the
// core reads the buffer back; renderers consume the Change feed.
//
// Draw and Clear must be called from a single goroutine (the
// interpreter's); Subscribe and Rows are safe from any goroutine.
type Display struct {
	mu   sync.Mutex
	rows [DisplayHeight]uint64
	subs []*Subscription
}

// subBacklog is the per-subscriber channel depth. A subscriber that
// falls this far behind is dropped.
const subBacklog = 256

// Subscription is one subscriber's view of the display's Change feed.
type Subscription struct {
	c    chan Change
	done chan struct{}
	once sync.Once
}

// C returns the feed of changes, in the order they were produced.
// The channel is closed once the subscription is cancelled or dropped.
func (s *Subscription) C() <-chan Change { return s.c }

// Cancel marks the subscription dead. The display removes it at the
// next broadcast; Cancel never blocks and may be called repeatedly.
func (s *Subscription) Cancel() {
	s.once.Do(func() { close(s.done) })
}

// Subscribe registers a new subscriber. Every subscriber receives
// every subsequent notification; a subscriber that cancels, or whose
// backlog fills because it stopped draining, is dropped at the next
// broadcast and its channel closed.
func (d *Display) Subscribe() *Subscription {
	s := &Subscription{
		c:    make(chan Change, subBacklog),
		done: make(chan struct{}),
	}
	d.mu.Lock()
	d.subs = append(d.subs, s)
	d.mu.Unlock()
	return s
}

// broadcast delivers ev to every live subscriber. Called with mu held.
func (d *Display) broadcast(ev Change) {
	live := d.subs[:0]
	for _, s := range d.subs {
		select {
		case <-s.done:
			close(s.c)
			continue
		default:
		}
		select {
		case s.c <- ev:
			live = append(live, s)
		default:
			close(s.c)
		}
	}
	for i := len(live); i < len(d.subs); i++ {
		d.subs[i] = nil
	}
	d.subs = live
}

// Draw XORs the sprite onto the buffer and reports whether any lit
// pixel was erased (a collision). Rows past the bottom edge and
// pixels past the right edge are clipped, never wrapped. The touched
// rows are broadcast to subscribers as one Change.
func (d *Display) Draw(s Sprite) bool {
	d.mu.Lock()
	defer d.mu.Unlock()

	var (
		collision bool
		changed   = make([]byte, 0, len(s.Rows))
	)
	for i, row := range s.Rows {
		y := int(s.Y) + i
		if y >= DisplayHeight {
			break
		}
		var mask uint64
		if s.X <= DisplayWidth-8 {
			mask = uint64(row) << (DisplayWidth - 8 - s.X)
		} else {
			mask = uint64(row) >> (s.X - (DisplayWidth - 8))
		}
		if d.rows[y]&mask != 0 {
			collision = true
		}
		d.rows[y] ^= mask
		changed = append(changed, d.window(y, s.X))
	}
	d.broadcast(Change{X: s.X, Y: s.Y, Rows: changed})
	return collision
}

// window reads the 8-pixel window of buffer row y whose leftmost
// pixel is column x, clipped like Draw positions sprite rows.
func (d *Display) window(y int, x byte) byte {
	if x <= DisplayWidth-8 {
		return byte(d.rows[y] >> (DisplayWidth - 8 - x))
	}
	return byte(d.rows[y] << (x - (DisplayWidth - 8)))
}

// Clear zeroes the buffer and broadcasts a clear notification.
func (d *Display) Clear() {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.rows = [DisplayHeight]uint64{}
	d.broadcast(Change{Clear: true})
}

// Rows returns a snapshot of the raw buffer. Debuggers and tests use
// this; renderers should consume the Change feed instead.
func (d *Display) Rows() [DisplayHeight]uint64 {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.rows
}
