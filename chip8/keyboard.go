package chip8

// NoKey is the "no key pressed" sentinel held by the Keyboard when
// the event queue is empty. Valid key codes are 0 through 0xF.
const NoKey byte = 0x10

// keyBacklog is the depth of the key event queue. Input producers
// should use non-blocking sends; a full queue means the interpreter
// has stalled and dropping keystrokes is the right call.
const keyBacklog = 64

// Keyboard bridges asynchronous host input to the interpreter. Key
// codes arrive on the queue from an external producer goroutine; the
// interpreter consumes at most one per step via poll, or blocks in
// wait. The Keyboard itself reads no device.
type Keyboard struct {
	pressed byte
	events  chan byte
}

func newKeyboard() *Keyboard {
	return &Keyboard{
		pressed: NoKey,
		events:  make(chan byte, keyBacklog),
	}
}

// Keys is the write side of the key queue, accepting codes 0–15.
// Producers must run on their own goroutine: the interpreter blocks
// in wait-for-key, and a producer sharing its goroutine would
// deadlock the machine. Closing the queue halts the machine.
func (k *Keyboard) Keys() chan<- byte { return k.events }

// Key returns the currently pressed key, or NoKey.
func (k *Keyboard) Key() byte { return k.pressed }

// Pressed reports whether key is the currently pressed key.
func (k *Keyboard) Pressed(key byte) bool { return k.pressed == key }

// poll replaces the current key with the next queued event, or with
// NoKey when none is pending. It never blocks and consumes at most
// one event per call.
func (k *Keyboard) poll() {
	select {
	case key, ok := <-k.events:
		if !ok {
			panic(InputClosed)
		}
		k.pressed = key
	default:
		k.pressed = NoKey
	}
}

// wait returns the pressed key, blocking until an event arrives if no
// key is currently pressed.
func (k *Keyboard) wait() byte {
	if k.pressed < NoKey {
		return k.pressed
	}
	key, ok := <-k.events
	if !ok {
		panic(InputClosed)
	}
	k.pressed = key
	return key
}
