package chip8

const (
	DisplayWidth  = 64
	DisplayHeight = 32
)

// Display is the monochrome pixel grid the interpreter draws into. Pixels
// are stored column major, Gfx[x][y], which matches the vertex layout used
// by the window frontend.
type Display struct {
	gfx   [DisplayWidth][DisplayHeight]bool
	dirty bool
}

func NewDisplay() *Display {
	return new(Display)
}

func (d *Display) Clear() {
	d.gfx = [DisplayWidth][DisplayHeight]bool{}
	d.dirty = true
}

// Pixel reports whether the pixel at (x, y) is lit. Coordinates wrap.
func (d *Display) Pixel(x, y int) bool {
	return d.gfx[wrap(x, DisplayWidth)][wrap(y, DisplayHeight)]
}

// Blit XORs an 8 pixel wide sprite onto the display with its top left
// corner at (x, y). Each byte of sprite is one row, most significant bit
// leftmost. Rows and columns wrap around the edges independently. The
// return value reports whether any lit pixel was turned off.
func (d *Display) Blit(sprite []byte, x, y uint8) (collision bool) {
	for row, bits := range sprite {
		for col := 0; col < 8; col++ {
			if bits&(0x80>>col) == 0 {
				continue
			}
			i := (int(x) + col) % DisplayWidth
			j := (int(y) + row) % DisplayHeight
			if d.gfx[i][j] {
				collision = true
			}
			d.gfx[i][j] = !d.gfx[i][j]
		}
	}
	d.dirty = true
	return collision
}

// Each calls fn for every lit pixel.
func (d *Display) Each(fn func(x, y int)) {
	for x := range d.gfx {
		for y := range d.gfx[x] {
			if d.gfx[x][y] {
				fn(x, y)
			}
		}
	}
}

// Dirty reports whether the display changed since the last ClearDirty.
func (d *Display) Dirty() bool { return d.dirty }

func (d *Display) ClearDirty() { d.dirty = false }

func wrap(v, n int) int {
	v %= n
	if v < 0 {
		v += n
	}
	return v
}
