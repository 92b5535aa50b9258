package chip8

import (
	"sync"
	"time"
)

// TickRate is the timer frequency in ticks per second.
const TickRate = 60

// Timer holds the delay and sound countdown registers and the beep
// flag the sound register drives. The interpreter goroutine and the
// clock goroutine both touch all three fields, so a single mutex
// guards them; every critical section is short and none nest.
type Timer struct {
	mu    sync.Mutex
	delay byte
	sound byte
	beep  bool

	once sync.Once
}

// Start spawns the 60 Hz clock goroutine. The clock runs for the
// remaining lifetime of the process; there is no way to stop it.
// Repeated calls start only one clock.
func (t *Timer) Start() {
	t.once.Do(func() {
		go func() {
			tick := time.NewTicker(time.Second / TickRate)
			for range tick.C {
				t.Tick()
			}
		}()
	})
}

// Tick applies one clock period: the delay register counts down to a
// floor of zero; the sound register counts down and holds the beep
// flag up while it is draining.
func (t *Timer) Tick() {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.delay > 0 {
		t.delay--
	}
	if t.sound > 0 {
		t.sound--
		t.beep = true
	} else {
		t.beep = false
	}
}

// Delay returns the delay register.
func (t *Timer) Delay() byte {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.delay
}

// SetDelay sets the delay register.
func (t *Timer) SetDelay(v byte) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.delay = v
}

// Sound returns the sound register.
func (t *Timer) Sound() byte {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.sound
}

// SetSound sets the sound register.
func (t *Timer) SetSound(v byte) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.sound = v
}

// Beeping reports whether the sound register was draining at the last
// tick. External audio drivers poll this.
func (t *Timer) Beeping() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.beep
}
