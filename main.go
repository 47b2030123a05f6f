// Command chip8vm runs a Chip-8 ROM in a window or a terminal.
package main

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"os"
	"os/signal"
	"runtime"
	"syscall"
	"time"

	"github.com/inrick/chip8vm/chip8"
	"github.com/inrick/chip8vm/internal/audio"
	"github.com/inrick/chip8vm/internal/config"
	"github.com/inrick/chip8vm/internal/driver"
	"github.com/inrick/chip8vm/internal/terminal"
	"github.com/inrick/chip8vm/internal/window"
	"github.com/retroenv/retrogolib/log"
)

type frontend interface {
	driver.Frontend
	Close() error
}

func init() {
	// GLFW must be called from the main thread.
	runtime.LockOSThread()
}

func main() {
	opts, err := config.Parse(os.Args[1:])
	if err != nil {
		var usageErr *config.UsageError
		if errors.As(err, &usageErr) {
			usageErr.ShowUsage(os.Stderr)
		} else {
			fmt.Fprintln(os.Stderr, err)
		}
		os.Exit(1)
	}

	logger := config.CreateLogger(opts.Debug, opts.Quiet)
	if err := run(logger, opts); err != nil {
		logger.Error("Emulation failed", log.Err(err))
		os.Exit(1)
	}
}

func run(logger *log.Logger, opts config.Options) error {
	rom, err := config.ReadROM(opts.ROM)
	if err != nil {
		return err
	}

	seed := opts.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	vmOpts := []chip8.Option{chip8.WithRand(rand.New(rand.NewSource(seed)))}
	if opts.Debug {
		vmOpts = append(vmOpts, chip8.WithLogger(logger))
	}
	vm := chip8.New(vmOpts...)
	if err := vm.Load(rom); err != nil {
		return fmt.Errorf("loading ROM: %w", err)
	}
	logger.Info("ROM loaded", log.String("file", opts.ROM), log.Int("size", len(rom)))

	fe, err := newFrontend(opts)
	if err != nil {
		return err
	}
	defer fe.Close()

	beeper := newBeeper(logger, opts.Mute)
	if c, ok := beeper.(interface{ Close() error }); ok {
		defer c.Close()
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	return driver.New(vm, fe, beeper, logger, opts.ClockHz).Run(ctx)
}

func newFrontend(opts config.Options) (frontend, error) {
	switch opts.Frontend {
	case config.FrontendTerminal:
		return terminal.New(terminal.DefaultHoldFrames)
	default:
		return window.New("Chip-8", opts.Scale)
	}
}

// newBeeper falls back to a silent buzzer when no audio device is usable.
func newBeeper(logger *log.Logger, mute bool) driver.Beeper {
	if mute {
		return driver.NopBeeper{}
	}
	b, err := audio.New()
	if err != nil {
		logger.Warn("Audio disabled", log.Err(err))
		return driver.NopBeeper{}
	}
	return b
}
