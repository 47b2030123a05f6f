package chip8

const KeyCount = 0x10

// Keypad is the 16 key input latch. The host writes it between steps, the
// interpreter only reads it.
type Keypad struct {
	keys [KeyCount]bool
}

func NewKeypad() *Keypad {
	return new(Keypad)
}

func (k *Keypad) Set(key uint8, pressed bool) error {
	if key >= KeyCount {
		return &OutOfBoundsError{Region: "keypad", Address: int(key)}
	}
	k.keys[key] = pressed
	return nil
}

// SetAll replaces the whole latch: the given keys are pressed, every other
// key is released.
func (k *Keypad) SetAll(pressed ...uint8) error {
	var keys [KeyCount]bool
	for _, key := range pressed {
		if key >= KeyCount {
			return &OutOfBoundsError{Region: "keypad", Address: int(key)}
		}
		keys[key] = true
	}
	k.keys = keys
	return nil
}

// Load copies a full latch snapshot, as produced by a frontend poll.
func (k *Keypad) Load(keys [KeyCount]bool) {
	k.keys = keys
}

func (k *Keypad) Pressed(key uint8) (bool, error) {
	if key >= KeyCount {
		return false, &OutOfBoundsError{Region: "keypad", Address: int(key)}
	}
	return k.keys[key], nil
}

// First returns the lowest indexed pressed key.
func (k *Keypad) First() (uint8, bool) {
	for i := uint8(0); i < KeyCount; i++ {
		if k.keys[i] {
			return i, true
		}
	}
	return 0, false
}
