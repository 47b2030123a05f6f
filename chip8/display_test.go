package chip8

import (
	"errors"
	"testing"

	"github.com/retroenv/retrogolib/assert"
)

func TestDisplayBlit(t *testing.T) {
	d := NewDisplay()
	assert.False(t, d.Dirty())

	assert.False(t, d.Blit([]byte{0x81}, 0, 0))
	assert.True(t, d.Dirty())
	assert.True(t, d.Pixel(0, 0))
	assert.True(t, d.Pixel(7, 0))
	assert.False(t, d.Pixel(1, 0))

	// Overlapping a single lit pixel is a collision.
	assert.True(t, d.Blit([]byte{0x01}, 0, 0))
	assert.False(t, d.Pixel(7, 0))
	assert.True(t, d.Pixel(0, 0))

	d.ClearDirty()
	d.Clear()
	assert.True(t, d.Dirty())
	assert.False(t, d.Pixel(0, 0))
}

func TestDisplayPixelWraps(t *testing.T) {
	d := NewDisplay()
	d.Blit([]byte{0x80}, 63, 31)
	assert.True(t, d.Pixel(-1, -1))
	assert.True(t, d.Pixel(63+DisplayWidth, 31+DisplayHeight))
}

func TestDisplayBlitLargeCoordinates(t *testing.T) {
	d := NewDisplay()
	d.Blit([]byte{0x80}, 200, 100)
	assert.True(t, d.Pixel(200%DisplayWidth, 100%DisplayHeight))
}

func TestKeypad(t *testing.T) {
	k := NewKeypad()
	_, ok := k.First()
	assert.False(t, ok)

	assert.NoError(t, k.Set(0xc, true))
	assert.NoError(t, k.Set(0x3, true))
	key, ok := k.First()
	assert.True(t, ok)
	assert.Equal(t, uint8(0x3), key)

	assert.NoError(t, k.SetAll(0xf))
	pressed, err := k.Pressed(0x3)
	assert.NoError(t, err)
	assert.False(t, pressed)
	pressed, err = k.Pressed(0xf)
	assert.NoError(t, err)
	assert.True(t, pressed)

	var oob *OutOfBoundsError
	assert.True(t, errors.As(k.Set(0x10, true), &oob))
	assert.True(t, errors.As(k.SetAll(1, 0x20), &oob))
	assert.Equal(t, 0x20, oob.Address)
	_, err = k.Pressed(0x10)
	assert.Error(t, err)
}
