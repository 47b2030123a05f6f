// Package chip8 implements a Chip-8 interpreter.
// Follows description in Cowgod's Chip-8 Technical Reference v1.0 [1] and
// How to write an emulator [2].
//
// The interpreter only owns memory, registers, the call stack and the two
// timers. The display surface and the keypad latch are separate values the
// host reads and writes, and the host decides how often Step and TickTimers
// are called.
//
//	[1] http://devernay.free.fr/hacks/chip8/C8TECH10.HTM
//	[2] http://www.multigesture.net/articles/how-to-write-an-emulator-chip-8-interpreter/
package chip8

import (
	"errors"
	"fmt"
	"math/rand"
	"time"

	"github.com/retroenv/retrogolib/arch/cpu/chip8"
	"github.com/retroenv/retrogolib/log"
)

const (
	MemorySize   = 0x1000
	ProgramStart = 0x200
	MaxROMSize   = MemorySize - ProgramStart
	StackSize    = 0x10

	fontGlyphSize = 5
)

// fontset holds the glyphs of the hexadecimal digits, 5 rows each. They are
// taken from the power on memory image of the retrogolib Chip-8 CPU.
var fontset = func() (font [0x10 * fontGlyphSize]uint8) {
	copy(font[:], chip8.New().Memory[:])
	return font
}()

// SoundState is the buzzer state reported by TickTimers.
type SoundState uint8

const (
	Silent SoundState = iota
	Audible
)

func (s SoundState) String() string {
	if s == Audible {
		return "audible"
	}
	return "silent"
}

// VM is the interpreter state. It is not safe for concurrent use: Step and
// TickTimers must be called serially by a single driving loop.
type VM struct {
	mem    [MemorySize]uint8
	v      [0x10]uint8
	stack  [StackSize]uint16
	i, pc  uint16
	sp     uint8
	dt, st uint8 // Delay timer & sound timer

	display *Display
	keypad  *Keypad
	rand    *rand.Rand
	logger  *log.Logger

	halt error
}

type Option func(*VM)

// WithRand sets the random source used by RND.
func WithRand(r *rand.Rand) Option {
	return func(vm *VM) { vm.rand = r }
}

// WithLogger enables a debug level trace of every executed instruction.
func WithLogger(logger *log.Logger) Option {
	return func(vm *VM) { vm.logger = logger }
}

// WithDisplay makes the VM draw into a display owned by the caller.
func WithDisplay(d *Display) Option {
	return func(vm *VM) { vm.display = d }
}

// WithKeypad makes the VM read a keypad latch owned by the caller.
func WithKeypad(k *Keypad) Option {
	return func(vm *VM) { vm.keypad = k }
}

func New(opts ...Option) *VM {
	vm := new(VM)
	for _, opt := range opts {
		opt(vm)
	}
	if vm.display == nil {
		vm.display = NewDisplay()
	}
	if vm.keypad == nil {
		vm.keypad = NewKeypad()
	}
	if vm.rand == nil {
		vm.rand = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	vm.Reset()
	return vm
}

// Reset restores the power on state: memory holds only the font, all
// registers and timers are zero, the display is blank and pc points at the
// program start. A halted VM runs again after Reset.
func (vm *VM) Reset() {
	vm.mem = [MemorySize]uint8{}
	copy(vm.mem[:], fontset[:])
	vm.v = [0x10]uint8{}
	vm.stack = [StackSize]uint16{}
	vm.i, vm.pc, vm.sp = 0, ProgramStart, 0
	vm.dt, vm.st = 0, 0
	vm.halt = nil
	vm.display.Clear()
	vm.keypad.Load([KeyCount]bool{})
}

// Load copies a raw ROM image into memory at the program start address.
func (vm *VM) Load(rom []byte) error {
	if len(rom) > MaxROMSize {
		return fmt.Errorf("%w: %d bytes, at most %d fit", ErrROMTooLarge, len(rom), MaxROMSize)
	}
	copy(vm.mem[ProgramStart:], rom)
	return nil
}

func (vm *VM) Display() *Display { return vm.display }

func (vm *VM) Keypad() *Keypad { return vm.keypad }

func (vm *VM) SetKey(key uint8, pressed bool) error {
	return vm.keypad.Set(key, pressed)
}

// SetKeys marks exactly the given keys as pressed.
func (vm *VM) SetKeys(pressed ...uint8) error {
	return vm.keypad.SetAll(pressed...)
}

func (vm *VM) PC() uint16           { return vm.pc }
func (vm *VM) I() uint16            { return vm.i }
func (vm *VM) SP() uint8            { return vm.sp }
func (vm *VM) V(x uint8) uint8      { return vm.v[x&0xf] }
func (vm *VM) DelayTimer() uint8    { return vm.dt }
func (vm *VM) SoundTimer() uint8    { return vm.st }
func (vm *VM) Halted() error        { return vm.halt }
func (vm *VM) Stack() []uint16      { return append([]uint16(nil), vm.stack[:vm.sp]...) }
func (vm *VM) Registers() [16]uint8 { return vm.v }

func (vm *VM) Memory(addr uint16) (uint8, error) {
	b, err := vm.span(addr, 1)
	if err != nil {
		return 0, err
	}
	return b[0], nil
}

// TickTimers decrements the delay and sound timers by one, stopping at
// zero. It must be called at 60 Hz regardless of the instruction rate. The
// result is Audible when the sound timer was running before the decrement.
func (vm *VM) TickTimers() SoundState {
	if vm.dt > 0 {
		vm.dt--
	}
	if vm.st == 0 {
		return Silent
	}
	vm.st--
	return Audible
}

// span returns n bytes of memory starting at addr.
func (vm *VM) span(addr uint16, n int) ([]uint8, error) {
	end := int(addr) + n
	if end > MemorySize {
		return nil, &OutOfBoundsError{Region: "memory", Address: end - 1}
	}
	return vm.mem[addr:end], nil
}

func (vm *VM) fetch() (opcode, error) {
	b, err := vm.span(vm.pc, 2)
	if err != nil {
		return 0, err
	}
	return opcode(b[0])<<8 | opcode(b[1]), nil
}

func (vm *VM) skip(cond bool) {
	if cond {
		vm.pc += 2
	}
}

func flag(b bool) uint8 {
	if b {
		return 1
	}
	return 0
}

// Step emulates one Chip-8 cycle: fetch, advance pc, decode and execute.
// An *UnknownOpcodeError leaves the VM running; any other error halts it.
func (vm *VM) Step() error {
	if vm.halt != nil {
		return fmt.Errorf("%w: %w", ErrHalted, vm.halt)
	}
	addr := vm.pc
	op, err := vm.fetch()
	if err != nil {
		vm.halt = &ExecError{Address: addr, Err: err}
		return vm.halt
	}
	vm.pc += 2
	if vm.logger != nil {
		vm.logger.Debug("exec",
			log.String("pc", fmt.Sprintf("0x%03X", addr)),
			log.String("op", fmt.Sprintf("%04X", uint16(op))),
			log.String("asm", Disassemble(uint16(op))))
	}
	if err := vm.exec(op); err != nil {
		var unknown *UnknownOpcodeError
		if errors.As(err, &unknown) {
			unknown.Address = addr
			return err
		}
		vm.halt = &ExecError{Address: addr, Opcode: uint16(op), Err: err}
		return vm.halt
	}
	return nil
}

// exec runs a decoded instruction. pc already points past it. Comments
// describing opcodes are copied from Cowgod's reference [1].
func (vm *VM) exec(op opcode) error {
	x, y := op.x(), op.y()
	switch op & 0xf000 {
	case 0x0000:
		// The group is decoded on the low byte.
		switch op.kk() {
		case 0xe0:
			// 00E0 - CLS -- Clear the display.
			vm.display.Clear()
		case 0xee:
			// 00EE - RET -- Return from a subroutine.
			if vm.sp == 0 {
				return ErrStackUnderflow
			}
			vm.sp--
			vm.pc = vm.stack[vm.sp]
		default:
			// 0nnn - SYS addr -- Jump to a machine code routine at nnn.
			// Ignored by modern interpreters.
			goto Unknown
		}
	case 0x1000:
		// 1nnn - JP addr -- Jump to location nnn.
		vm.pc = op.nnn()
	case 0x2000:
		// 2nnn - CALL addr -- Call subroutine at nnn.
		if int(vm.sp) >= StackSize {
			return ErrStackOverflow
		}
		vm.stack[vm.sp] = vm.pc
		vm.sp++
		vm.pc = op.nnn()
	case 0x3000:
		// 3xkk - SE Vx, byte -- Skip next instruction if Vx = kk.
		vm.skip(vm.v[x] == op.kk())
	case 0x4000:
		// 4xkk - SNE Vx, byte -- Skip next instruction if Vx != kk.
		vm.skip(vm.v[x] != op.kk())
	case 0x5000:
		// 5xy0 - SE Vx, Vy -- Skip next instruction if Vx = Vy.
		vm.skip(vm.v[x] == vm.v[y])
	case 0x6000:
		// 6xkk - LD Vx, byte -- Set Vx = kk.
		vm.v[x] = op.kk()
	case 0x7000:
		// 7xkk - ADD Vx, byte -- Set Vx = Vx + kk.
		vm.v[x] += op.kk()
	case 0x8000:
		// 8xyN x and y identify data registers, N the operation. Flag
		// results are written to VF last so they win when x is 0xf.
		vx, vy := vm.v[x], vm.v[y]
		switch op.n() {
		case 0x0:
			// 8xy0 - LD Vx, Vy -- Set Vx = Vy.
			vm.v[x] = vy
		case 0x1:
			// 8xy1 - OR Vx, Vy -- Set Vx = Vx OR Vy.
			vm.v[x] = vx | vy
		case 0x2:
			// 8xy2 - AND Vx, Vy -- Set Vx = Vx AND Vy.
			vm.v[x] = vx & vy
		case 0x3:
			// 8xy3 - XOR Vx, Vy -- Set Vx = Vx XOR Vy.
			vm.v[x] = vx ^ vy
		case 0x4:
			// 8xy4 - ADD Vx, Vy -- Set Vx = Vx + Vy, set VF = carry.
			sum := uint16(vx) + uint16(vy)
			vm.v[x] = uint8(sum)
			vm.v[0xf] = uint8(sum >> 8)
		case 0x5:
			// 8xy5 - SUB Vx, Vy -- Set Vx = Vx - Vy, set VF = NOT borrow.
			vm.v[x] = vx - vy
			vm.v[0xf] = flag(vx >= vy)
		case 0x6:
			// 8xy6 - SHR Vx {, Vy} -- Set Vx = Vx SHR 1.
			vm.v[x] = vx >> 1
			vm.v[0xf] = vx & 0x1
		case 0x7:
			// 8xy7 - SUBN Vx, Vy -- Set Vx = Vy - Vx, set VF = NOT borrow.
			vm.v[x] = vy - vx
			vm.v[0xf] = flag(vy >= vx)
		case 0xe:
			// 8xyE - SHL Vx {, Vy} -- Set Vx = Vx SHL 1.
			vm.v[x] = vx << 1
			vm.v[0xf] = vx >> 7
		default:
			goto Unknown
		}
	case 0x9000:
		// 9xy0 - SNE Vx, Vy -- Skip next instruction if Vx != Vy.
		vm.skip(vm.v[x] != vm.v[y])
	case 0xa000:
		// Annn - LD I, addr -- Set I = nnn.
		vm.i = op.nnn()
	case 0xb000:
		// Bnnn - JP V0, addr -- Jump to location nnn + V0.
		vm.pc = op.nnn() + uint16(vm.v[0])
	case 0xc000:
		// Cxkk - RND Vx, byte -- Set Vx = random byte AND kk.
		vm.v[x] = uint8(vm.rand.Intn(0x100)) & op.kk()
	case 0xd000:
		// Dxyn - DRW Vx, Vy, nibble -- Display n-byte sprite starting at memory
		// location I at (Vx, Vy), set VF = collision.
		sprite, err := vm.span(vm.i, int(op.n()))
		if err != nil {
			return err
		}
		collision := vm.display.Blit(sprite, vm.v[x], vm.v[y])
		vm.v[0xf] = flag(collision)
	case 0xe000:
		var want bool
		switch op.kk() {
		case 0x9e:
			// Ex9E - SKP Vx -- Skip next instruction if key with the value of Vx is
			// pressed.
			want = true
		case 0xa1:
			// ExA1 - SKNP Vx -- Skip next instruction if key with the value of Vx is
			// not pressed.
			want = false
		default:
			goto Unknown
		}
		pressed, err := vm.keypad.Pressed(vm.v[x])
		if err != nil {
			return err
		}
		vm.skip(pressed == want)
	case 0xf000:
		return vm.execMisc(op)
	default:
		goto Unknown
	}
	return nil
Unknown:
	return &UnknownOpcodeError{Opcode: uint16(op)}
}

// execMisc runs the Fx.. group: timers, keypad wait and the I register.
func (vm *VM) execMisc(op opcode) error {
	x := op.x()
	switch op.kk() {
	case 0x07:
		// Fx07 - LD Vx, DT -- Set Vx = delay timer value.
		vm.v[x] = vm.dt
	case 0x0a:
		// Fx0A - LD Vx, K -- Wait for a key press, store the value of the key in
		// Vx. Rewinding pc re-executes this instruction on the next Step, so
		// the host keeps its clock and timers running while waiting.
		key, ok := vm.keypad.First()
		if !ok {
			vm.pc -= 2
			return nil
		}
		vm.v[x] = key
	case 0x15:
		// Fx15 - LD DT, Vx -- Set delay timer = Vx.
		vm.dt = vm.v[x]
	case 0x18:
		// Fx18 - LD ST, Vx -- Set sound timer = Vx.
		vm.st = vm.v[x]
	case 0x1e:
		// Fx1E - ADD I, Vx -- Set I = I + Vx.
		vm.i += uint16(vm.v[x])
	case 0x29:
		// Fx29 - LD F, Vx -- Set I = location of sprite for digit Vx.
		if vm.v[x] > 0xf {
			return &OutOfBoundsError{Region: "font", Address: int(vm.v[x]) * fontGlyphSize}
		}
		vm.i = uint16(vm.v[x]) * fontGlyphSize
	case 0x33:
		// Fx33 - LD B, Vx -- Store BCD representation of Vx in memory locations
		// I, I+1, and I+2.
		dst, err := vm.span(vm.i, 3)
		if err != nil {
			return err
		}
		dst[0] = vm.v[x] / 100
		dst[1] = (vm.v[x] % 100) / 10
		dst[2] = vm.v[x] % 10
	case 0x55:
		// Fx55 - LD [I], Vx -- Store registers V0 through Vx in memory starting
		// at location I.
		dst, err := vm.span(vm.i, int(x)+1)
		if err != nil {
			return err
		}
		copy(dst, vm.v[:x+1])
	case 0x65:
		// Fx65 - LD Vx, [I] -- Read registers V0 through Vx from memory starting
		// at location I.
		src, err := vm.span(vm.i, int(x)+1)
		if err != nil {
			return err
		}
		copy(vm.v[:x+1], src)
	default:
		return &UnknownOpcodeError{Opcode: uint16(op)}
	}
	return nil
}
