package window

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/inrick/chip8vm/chip8"
	"github.com/retroenv/retrogolib/assert"
)

func TestFillVerticesToDraw(t *testing.T) {
	d := chip8.NewDisplay()
	vertex := make([]uint32, chip8.DisplayWidth*chip8.DisplayHeight*6)
	assert.Equal(t, 0, fillVerticesToDraw(d, vertex))

	d.Blit([]byte{0x40}, 0, 2) // lights (1, 2)
	n := fillVerticesToDraw(d, vertex)
	assert.Equal(t, 6, n)
	h := uint32(chip8.DisplayHeight + 1)
	want := []uint32{h + 2, h + 3, 2*h + 2, h + 3, 2*h + 2, 2*h + 3}
	if diff := cmp.Diff(want, vertex[:n]); diff != "" {
		t.Errorf("indices: (-want, +got)\n%s", diff)
	}
}

func TestFillVerticesFullDisplay(t *testing.T) {
	d := chip8.NewDisplay()
	row := []byte{0xff, 0xff, 0xff, 0xff, 0xff, 0xff, 0xff, 0xff,
		0xff, 0xff, 0xff, 0xff, 0xff, 0xff, 0xff, 0xff}
	for x := 0; x < chip8.DisplayWidth; x += 8 {
		d.Blit(row, uint8(x), 0)
		d.Blit(row, uint8(x), 16)
	}
	vertex := make([]uint32, chip8.DisplayWidth*chip8.DisplayHeight*6)
	assert.Equal(t, len(vertex), fillVerticesToDraw(d, vertex))
}

func TestGridVertices(t *testing.T) {
	buf := gridVertices()
	assert.Equal(t, (chip8.DisplayWidth+1)*(chip8.DisplayHeight+1)*2, len(buf))
	assert.Equal(t, float32(-1), buf[0])
	assert.Equal(t, float32(1), buf[1])
	last := len(buf) - 2
	assert.Equal(t, float32(1), buf[last])
	assert.Equal(t, float32(-1), buf[last+1])
}
