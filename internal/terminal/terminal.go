// Package terminal implements a text mode frontend using termbox. Each
// Chip-8 pixel is drawn as two terminal cells to keep the aspect ratio.
package terminal

import (
	"errors"
	"fmt"
	"os"

	"github.com/inrick/chip8vm/chip8"
	"github.com/inrick/chip8vm/internal/keymap"
	"github.com/nsf/termbox-go"
	"golang.org/x/term"
)

// DefaultHoldFrames is how long a key counts as pressed after a key press
// event. Terminals report no key releases.
const DefaultHoldFrames = 6

var ErrNoTTY = errors.New("terminal frontend requires an interactive terminal")

type Terminal struct {
	events chan termbox.Event
	held   heldKeys
	closed bool

	poll      func() termbox.Event
	interrupt func()
	done      chan struct{} // closed by stop, unblocks the event send
	stopped   chan struct{} // closed when readEvents returns
}

func New(holdFrames int) (*Terminal, error) {
	if !term.IsTerminal(int(os.Stdout.Fd())) || !term.IsTerminal(int(os.Stdin.Fd())) {
		return nil, ErrNoTTY
	}
	if err := termbox.Init(); err != nil {
		return nil, fmt.Errorf("initializing termbox: %w", err)
	}
	termbox.SetInputMode(termbox.InputEsc)

	return newTerminal(holdFrames, termbox.PollEvent, termbox.Interrupt), nil
}

func newTerminal(holdFrames int, poll func() termbox.Event, interrupt func()) *Terminal {
	t := &Terminal{
		events:    make(chan termbox.Event, 64),
		held:      heldKeys{hold: holdFrames},
		poll:      poll,
		interrupt: interrupt,
		done:      make(chan struct{}),
		stopped:   make(chan struct{}),
	}
	go t.readEvents()
	return t
}

// readEvents forwards events until poll returns the interrupt event. After
// stop, events are dropped so the loop always gets back to poll.
func (t *Terminal) readEvents() {
	defer close(t.stopped)
	for {
		ev := t.poll()
		if ev.Type == termbox.EventInterrupt {
			close(t.events)
			return
		}
		select {
		case t.events <- ev:
		case <-t.done:
		}
	}
}

// stop interrupts the event reader and waits for it to return.
func (t *Terminal) stop() {
	close(t.done)
	t.interrupt()
	<-t.stopped
}

func (t *Terminal) Poll() {
	t.held.tick()
	for {
		select {
		case ev, ok := <-t.events:
			if !ok {
				t.closed = true
				return
			}
			t.handle(ev)
		default:
			return
		}
	}
}

func (t *Terminal) handle(ev termbox.Event) {
	switch ev.Type {
	case termbox.EventKey:
		if ev.Key == termbox.KeyEsc || ev.Key == termbox.KeyCtrlC {
			t.closed = true
			return
		}
		if key, ok := keymap.Lookup(ev.Ch); ok {
			t.held.press(key)
		}
	case termbox.EventError:
		t.closed = true
	}
}

func (t *Terminal) Keys() [chip8.KeyCount]bool {
	return t.held.state()
}

func (t *Terminal) ShouldClose() bool {
	return t.closed
}

func (t *Terminal) Render(d *chip8.Display) error {
	if err := termbox.Clear(termbox.ColorDefault, termbox.ColorDefault); err != nil {
		return err
	}
	d.Each(func(x, y int) {
		termbox.SetCell(2*x, y, ' ', termbox.ColorDefault, termbox.ColorWhite)
		termbox.SetCell(2*x+1, y, ' ', termbox.ColorDefault, termbox.ColorWhite)
	})
	return termbox.Flush()
}

func (t *Terminal) Close() error {
	t.stop()
	termbox.Close()
	return nil
}

// heldKeys turns key press events into a pressed state lasting a number
// of frames.
type heldKeys struct {
	hold   int
	frames [chip8.KeyCount]int
}

func (h *heldKeys) press(key uint8) {
	h.frames[key] = h.hold
}

func (h *heldKeys) tick() {
	for i := range h.frames {
		if h.frames[i] > 0 {
			h.frames[i]--
		}
	}
}

func (h *heldKeys) state() [chip8.KeyCount]bool {
	var keys [chip8.KeyCount]bool
	for i, n := range h.frames {
		keys[i] = n > 0
	}
	return keys
}
