package audio

import (
	"encoding/binary"
	"testing"

	"github.com/retroenv/retrogolib/assert"
)

func samples(p []byte) []int16 {
	out := make([]int16, len(p)/2)
	for i := range out {
		out[i] = int16(binary.LittleEndian.Uint16(p[2*i:]))
	}
	return out
}

func TestSquareWaveSilent(t *testing.T) {
	w := squareWave{period: 4}
	p := make([]byte, 16)
	for i := range p {
		p[i] = 0xaa
	}
	assert.Equal(t, 16, w.fill(p, false))
	assert.Equal(t, make([]int16, 8), samples(p))
}

func TestSquareWaveTone(t *testing.T) {
	w := squareWave{period: 4}
	p := make([]byte, 16)
	assert.Equal(t, 16, w.fill(p, true))
	a := int16(amplitude)
	assert.Equal(t, []int16{a, a, -a, -a, a, a, -a, -a}, samples(p))
}

func TestSquareWaveOddBuffer(t *testing.T) {
	w := squareWave{period: 4}
	assert.Equal(t, 4, w.fill(make([]byte, 5), true))
	assert.Equal(t, 2, w.phase)
}
