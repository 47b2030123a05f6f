// Package audio plays the Chip-8 buzzer as a square wave through oto.
package audio

import (
	"fmt"
	"sync/atomic"

	"github.com/ebitengine/oto/v3"
)

const (
	SampleRate = 44100
	ToneHz     = 440
	amplitude  = 0x1800
)

// Beeper outputs a tone while the buzzer is audible. The oto player reads
// samples on its own goroutine, SetAudible may be called from any other.
type Beeper struct {
	ctx     *oto.Context
	player  *oto.Player
	audible atomic.Bool
	wave    squareWave
}

func New() (*Beeper, error) {
	ctx, ready, err := oto.NewContext(&oto.NewContextOptions{
		SampleRate:   SampleRate,
		ChannelCount: 1,
		Format:       oto.FormatSignedInt16LE,
	})
	if err != nil {
		return nil, fmt.Errorf("creating audio context: %w", err)
	}
	<-ready

	b := &Beeper{
		ctx:  ctx,
		wave: squareWave{period: SampleRate / ToneHz},
	}
	b.player = ctx.NewPlayer(b)
	b.player.Play()
	return b, nil
}

func (b *Beeper) SetAudible(on bool) {
	b.audible.Store(on)
}

// Read implements io.Reader for the oto player.
func (b *Beeper) Read(p []byte) (int, error) {
	return b.wave.fill(p, b.audible.Load()), nil
}

func (b *Beeper) Close() error {
	return b.player.Close()
}

// squareWave generates signed 16 bit little endian mono samples.
type squareWave struct {
	period int
	phase  int
}

// fill writes whole samples into p and returns the number of bytes
// written. Silence is written while on is false, the phase keeps running so
// the tone does not click when it restarts.
func (w *squareWave) fill(p []byte, on bool) int {
	n := len(p) &^ 1
	for i := 0; i < n; i += 2 {
		var s int16
		if on {
			s = amplitude
			if w.phase >= w.period/2 {
				s = -amplitude
			}
		}
		p[i] = byte(uint16(s))
		p[i+1] = byte(uint16(s) >> 8)
		w.phase = (w.phase + 1) % w.period
	}
	return n
}
