package driver

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/inrick/chip8vm/chip8"
	"github.com/retroenv/retrogolib/assert"
	"github.com/retroenv/retrogolib/log"
)

type fakeFrontend struct {
	keys       [chip8.KeyCount]bool
	polls      int
	renders    int
	closeAfter int
	renderErr  error
}

func (f *fakeFrontend) Poll()                      { f.polls++ }
func (f *fakeFrontend) Keys() [chip8.KeyCount]bool { return f.keys }
func (f *fakeFrontend) ShouldClose() bool          { return f.closeAfter > 0 && f.polls >= f.closeAfter }

func (f *fakeFrontend) Render(*chip8.Display) error {
	f.renders++
	return f.renderErr
}

type fakeBeeper struct {
	states []bool
}

func (b *fakeBeeper) SetAudible(on bool) { b.states = append(b.states, on) }

func newVM(t *testing.T, program ...byte) *chip8.VM {
	t.Helper()
	vm := chip8.New()
	assert.NoError(t, vm.Load(program))
	return vm
}

func TestCyclesCarryRemainder(t *testing.T) {
	r := New(chip8.New(), &fakeFrontend{}, nil, log.NewTestLogger(t), 700)
	total := 0
	for i := 0; i < FrameRate; i++ {
		n := r.cycles()
		assert.True(t, n == 11 || n == 12)
		total += n
	}
	assert.Equal(t, 700, total)
}

func TestRunFrameTicksTimersOncePerFrame(t *testing.T) {
	// LD V0, $05; LD DT, V0; LD ST, V0; JP $206
	vm := newVM(t, 0x60, 0x05, 0xf0, 0x15, 0xf0, 0x18, 0x12, 0x06)
	beeper := &fakeBeeper{}
	r := New(vm, &fakeFrontend{}, beeper, log.NewTestLogger(t), 600)

	assert.NoError(t, r.RunFrame())
	// Ten instructions ran but the timers only decayed once.
	assert.Equal(t, uint8(4), vm.DelayTimer())
	assert.Equal(t, uint8(4), vm.SoundTimer())
	assert.Equal(t, []bool{true}, beeper.states)

	for i := 0; i < 4; i++ {
		assert.NoError(t, r.RunFrame())
	}
	assert.Equal(t, uint8(0), vm.SoundTimer())
	assert.NoError(t, r.RunFrame())
	assert.Equal(t, []bool{true, false}, beeper.states)
}

func TestRunFrameFeedsKeys(t *testing.T) {
	// LD V3, K; JP $202
	vm := newVM(t, 0xf3, 0x0a, 0x12, 0x02)
	fe := &fakeFrontend{}
	r := New(vm, fe, nil, log.NewTestLogger(t), 60)

	assert.NoError(t, r.RunFrame())
	assert.Equal(t, uint16(0x200), vm.PC())

	fe.keys[0xb] = true
	assert.NoError(t, r.RunFrame())
	assert.Equal(t, uint8(0xb), vm.V(3))
	assert.Equal(t, uint16(0x202), vm.PC())
	assert.Equal(t, 2, fe.polls)
}

func TestRunFrameRendersOnlyWhenDirty(t *testing.T) {
	// CLS; JP $202
	vm := newVM(t, 0x00, 0xe0, 0x12, 0x02)
	fe := &fakeFrontend{}
	r := New(vm, fe, nil, log.NewTestLogger(t), 120)

	assert.NoError(t, r.RunFrame())
	assert.Equal(t, 1, fe.renders)
	assert.NoError(t, r.RunFrame())
	assert.Equal(t, 1, fe.renders)
}

func TestRunFrameRenderError(t *testing.T) {
	vm := newVM(t, 0x00, 0xe0)
	errBroken := errors.New("broken")
	fe := &fakeFrontend{renderErr: errBroken}
	r := New(vm, fe, nil, log.NewTestLogger(t), 60)
	assert.True(t, errors.Is(r.RunFrame(), errBroken))
}

func TestRunFrameSkipsUnknownOpcode(t *testing.T) {
	// DW $8128; LD V1, $07; JP $204
	vm := newVM(t, 0x81, 0x28, 0x61, 0x07, 0x12, 0x04)
	r := New(vm, &fakeFrontend{}, nil, log.NewTestLogger(t), 180)
	assert.NoError(t, r.RunFrame())
	assert.Equal(t, uint8(7), vm.V(1))
}

func TestRunFrameStopsOnFatalError(t *testing.T) {
	// RET with an empty stack
	vm := newVM(t, 0x00, 0xee)
	r := New(vm, &fakeFrontend{}, nil, log.NewTestLogger(t), 60)
	err := r.RunFrame()
	assert.True(t, errors.Is(err, chip8.ErrStackUnderflow))
	assert.True(t, errors.Is(r.RunFrame(), chip8.ErrHalted))
}

func TestRunFrameReportsFaultAddress(t *testing.T) {
	// CALL $204; DW 0; RET. The second RET underflows with pc already at $206.
	vm := newVM(t, 0x22, 0x04, 0x00, 0x00, 0x00, 0xee)
	r := New(vm, &fakeFrontend{}, nil, log.NewTestLogger(t), 600)
	err := r.RunFrame()
	var execErr *chip8.ExecError
	assert.True(t, errors.As(err, &execErr))
	assert.Equal(t, uint16(0x204), execErr.Address)
	assert.Equal(t, uint16(0x206), vm.PC())
	assert.Contains(t, err.Error(), "at 0x204")
}

func TestRunUntilFrontendCloses(t *testing.T) {
	vm := newVM(t, 0x12, 0x00)
	fe := &fakeFrontend{closeAfter: 3}
	beeper := &fakeBeeper{}
	r := New(vm, fe, beeper, log.NewTestLogger(t), 60)
	assert.NoError(t, r.Run(context.Background()))
	assert.Equal(t, 3, fe.polls)
	assert.Equal(t, []bool{false}, beeper.states)
}

func TestRunUntilCancelled(t *testing.T) {
	vm := newVM(t, 0x12, 0x00)
	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()
	r := New(vm, &fakeFrontend{}, nil, log.NewTestLogger(t), 60)
	assert.NoError(t, r.Run(ctx))
}
