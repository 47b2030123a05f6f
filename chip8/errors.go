package chip8

import (
	"errors"
	"fmt"
)

var (
	ErrROMTooLarge    = errors.New("ROM too large")
	ErrStackOverflow  = errors.New("stack overflow")
	ErrStackUnderflow = errors.New("stack underflow")
	// ErrHalted wraps the fatal error that stopped the VM. It is returned by
	// every Step after the failure until Reset is called.
	ErrHalted = errors.New("vm halted")
)

// UnknownOpcodeError reports an instruction word that matches no known
// pattern. It is recoverable: pc has already been advanced past the word.
type UnknownOpcodeError struct {
	Opcode  uint16
	Address uint16
}

func (e *UnknownOpcodeError) Error() string {
	return fmt.Sprintf("unknown opcode 0x%04x at 0x%03x", e.Opcode, e.Address)
}

// OutOfBoundsError reports an index outside of memory, the keypad or the
// font glyph table.
type OutOfBoundsError struct {
	Region  string
	Address int
}

func (e *OutOfBoundsError) Error() string {
	return fmt.Sprintf("%s access out of bounds: 0x%x", e.Region, e.Address)
}

// ExecError reports the instruction that stopped the VM. Err is the cause,
// a stack sentinel or an *OutOfBoundsError.
type ExecError struct {
	Address uint16
	Opcode  uint16
	Err     error
}

func (e *ExecError) Error() string {
	return fmt.Sprintf("instruction 0x%04x at 0x%03x: %v", e.Opcode, e.Address, e.Err)
}

func (e *ExecError) Unwrap() error { return e.Err }

// IsFatal reports whether err must stop execution. Unknown opcodes are the
// only recoverable errors returned by Step.
func IsFatal(err error) bool {
	if err == nil {
		return false
	}
	var unknown *UnknownOpcodeError
	return !errors.As(err, &unknown)
}
