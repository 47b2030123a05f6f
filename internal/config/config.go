// Package config handles command line options and logger setup.
package config

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"os"

	"github.com/inrick/chip8vm/chip8"
	"github.com/retroenv/retrogolib/log"
)

const (
	FrontendWindow   = "window"
	FrontendTerminal = "terminal"

	DefaultClockHz = 700
	minClockHz     = 60
	maxClockHz     = 5000
)

// Options holds the settings of one emulator run.
type Options struct {
	ROM      string
	ClockHz  int
	Scale    int
	Frontend string
	Seed     int64
	Mute     bool
	Debug    bool
	Quiet    bool
}

// UsageError represents an error that should show usage information.
type UsageError struct {
	flags *flag.FlagSet
	msg   string
}

func (e *UsageError) Error() string {
	return e.msg
}

func (e *UsageError) ShowUsage(w io.Writer) {
	fmt.Fprintf(w, "usage: chip8vm [options] <rom file>\n\n")
	e.flags.SetOutput(w)
	e.flags.PrintDefaults()
}

// Parse reads options from args, which excludes the program name.
func Parse(args []string) (Options, error) {
	flags := flag.NewFlagSet("chip8vm", flag.ContinueOnError)
	flags.SetOutput(io.Discard)
	var opts Options
	flags.IntVar(&opts.ClockHz, "hz", DefaultClockHz, "instructions executed per second")
	flags.IntVar(&opts.Scale, "scale", 15, "window pixels per Chip-8 pixel")
	flags.StringVar(&opts.Frontend, "frontend", FrontendWindow, "display frontend (window/terminal)")
	flags.Int64Var(&opts.Seed, "seed", 0, "random number seed, 0 uses the current time")
	flags.BoolVar(&opts.Mute, "mute", false, "disable the buzzer")
	flags.BoolVar(&opts.Debug, "debug", false, "trace every executed instruction")
	flags.BoolVar(&opts.Quiet, "q", false, "only log errors")

	if err := flags.Parse(args); err != nil {
		return opts, &UsageError{flags: flags, msg: err.Error()}
	}
	if flags.NArg() != 1 {
		return opts, &UsageError{flags: flags, msg: "expected exactly one rom file"}
	}
	opts.ROM = flags.Arg(0)

	if err := opts.validate(); err != nil {
		return opts, err
	}
	return opts, nil
}

func (o Options) validate() error {
	if o.ClockHz < minClockHz || o.ClockHz > maxClockHz {
		return fmt.Errorf("clock rate %d Hz out of range %d-%d", o.ClockHz, minClockHz, maxClockHz)
	}
	if o.Scale < 1 {
		return fmt.Errorf("invalid scale %d", o.Scale)
	}
	switch o.Frontend {
	case FrontendWindow, FrontendTerminal:
	default:
		return fmt.Errorf("unsupported frontend: %s. Valid options: %s, %s",
			o.Frontend, FrontendWindow, FrontendTerminal)
	}
	if o.Debug && o.Quiet {
		return errors.New("-debug and -q are mutually exclusive")
	}
	return nil
}

// CreateLogger creates a logger with appropriate settings.
func CreateLogger(debug, quiet bool) *log.Logger {
	cfg := log.DefaultConfig()
	if debug {
		cfg.Level = log.DebugLevel
	} else if quiet {
		cfg.Level = log.ErrorLevel
	}
	return log.NewWithConfig(cfg)
}

// ReadROM reads a raw ROM image and checks that it fits into memory.
func ReadROM(path string) ([]byte, error) {
	rom, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading ROM file: %w", err)
	}
	if len(rom) == 0 {
		return nil, fmt.Errorf("ROM file %s is empty", path)
	}
	if len(rom) > chip8.MaxROMSize {
		return nil, fmt.Errorf("%w: %s has %d bytes", chip8.ErrROMTooLarge, path, len(rom))
	}
	return rom, nil
}
