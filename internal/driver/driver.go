// Package driver runs the interpreter loop: it feeds the keypad, executes
// instructions at the configured clock rate, decays the timers at 60 Hz and
// hands finished frames to a frontend.
package driver

import (
	"context"
	"fmt"
	"time"

	"github.com/inrick/chip8vm/chip8"
	"github.com/retroenv/retrogolib/log"
)

// FrameRate is the rate of timer decay and display refresh.
const FrameRate = 60

// Frontend presents the display and provides keypad input.
type Frontend interface {
	// Poll processes pending input events.
	Poll()
	// Keys returns the current state of the 16 keypad keys.
	Keys() [chip8.KeyCount]bool
	Render(d *chip8.Display) error
	ShouldClose() bool
}

// Beeper drives the buzzer.
type Beeper interface {
	SetAudible(on bool)
}

// NopBeeper discards the buzzer state.
type NopBeeper struct{}

func (NopBeeper) SetAudible(bool) {}

type Runner struct {
	vm       *chip8.VM
	frontend Frontend
	beeper   Beeper
	logger   *log.Logger

	clockHz int
	budget  int // cycles owed to the clock, in 1/FrameRate units
	sound   chip8.SoundState
}

func New(vm *chip8.VM, frontend Frontend, beeper Beeper, logger *log.Logger, clockHz int) *Runner {
	if beeper == nil {
		beeper = NopBeeper{}
	}
	return &Runner{
		vm:       vm,
		frontend: frontend,
		beeper:   beeper,
		logger:   logger,
		clockHz:  clockHz,
	}
}

// cycles returns the number of instructions to run in the next frame. The
// remainder of clockHz/FrameRate is carried so the average rate is exact.
func (r *Runner) cycles() int {
	r.budget += r.clockHz
	n := r.budget / FrameRate
	r.budget %= FrameRate
	return n
}

// RunFrame emulates one 60 Hz frame: input, instructions, one timer tick
// and, if the display changed, a render.
func (r *Runner) RunFrame() error {
	r.frontend.Poll()
	r.vm.Keypad().Load(r.frontend.Keys())

	for n := r.cycles(); n > 0; n-- {
		if err := r.vm.Step(); err != nil {
			if chip8.IsFatal(err) {
				return fmt.Errorf("running frame: %w", err)
			}
			r.logger.Warn("Skipping instruction", log.Err(err))
		}
	}

	sound := r.vm.TickTimers()
	if sound != r.sound {
		r.sound = sound
		r.beeper.SetAudible(sound == chip8.Audible)
	}

	d := r.vm.Display()
	if !d.Dirty() {
		return nil
	}
	if err := r.frontend.Render(d); err != nil {
		return fmt.Errorf("rendering frame: %w", err)
	}
	d.ClearDirty()
	return nil
}

// Run emulates frames at FrameRate until the frontend asks to close, the
// context is cancelled or the interpreter fails.
func (r *Runner) Run(ctx context.Context) error {
	ticker := time.NewTicker(time.Second / FrameRate)
	defer ticker.Stop()
	defer r.beeper.SetAudible(false)

	r.logger.Info("Running", log.Int("clock_hz", r.clockHz))
	for !r.frontend.ShouldClose() {
		if err := r.RunFrame(); err != nil {
			return err
		}
		select {
		case <-ctx.Done():
			r.logger.Info("Stopped", log.String("reason", ctx.Err().Error()))
			return nil
		case <-ticker.C:
		}
	}
	r.logger.Info("Frontend closed")
	return nil
}
