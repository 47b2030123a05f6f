// Package window implements an OpenGL frontend using GLFW. GLFW calls must
// be made from the main OS thread.
package window

import (
	"fmt"

	"github.com/go-gl/gl/v4.1-core/gl"
	"github.com/go-gl/glfw/v3.2/glfw"
	"github.com/inrick/chip8vm/chip8"
	"github.com/inrick/chip8vm/internal/keymap"
)

type Window struct {
	window *glfw.Window
	vertex []uint32
	keys   [chip8.KeyCount]bool
}

// New opens a window showing the display at the given scale.
func New(title string, scale int) (*Window, error) {
	if err := glfw.Init(); err != nil {
		return nil, fmt.Errorf("initializing GLFW: %w", err)
	}

	glfw.WindowHint(glfw.ContextVersionMajor, 4)
	glfw.WindowHint(glfw.ContextVersionMinor, 1)
	glfw.WindowHint(glfw.OpenGLProfile, glfw.OpenGLCoreProfile)
	glfw.WindowHint(glfw.OpenGLForwardCompatible, glfw.True)

	width := chip8.DisplayWidth * scale
	height := chip8.DisplayHeight * scale
	window, err := glfw.CreateWindow(width, height, title, nil, nil)
	if err != nil {
		glfw.Terminate()
		return nil, fmt.Errorf("creating window: %w", err)
	}
	window.MakeContextCurrent()

	vertex, err := glSetup()
	if err != nil {
		glfw.Terminate()
		return nil, fmt.Errorf("setting up OpenGL: %w", err)
	}

	w := &Window{window: window, vertex: vertex}
	window.SetKeyCallback(w.keyHandler)
	window.SetSizeCallback(resizeHandler)
	gl.ClearColor(.1, .1, .1, 0)
	return w, nil
}

func resizeHandler(w *glfw.Window, width, height int) {
	gl.Viewport(0, 0, int32(width), int32(height))
}

// keyHandler keeps the keypad latch in sync with press and release events.
// glfw key codes of letters and digits equal their upper case ASCII values.
func (w *Window) keyHandler(window *glfw.Window, key glfw.Key, scancode int,
	action glfw.Action, mods glfw.ModifierKey) {
	if key == glfw.KeyEscape && action == glfw.Press {
		window.SetShouldClose(true)
		return
	}
	k, ok := keymap.Lookup(rune(key))
	if !ok {
		return
	}
	switch action {
	case glfw.Press:
		w.keys[k] = true
	case glfw.Release:
		w.keys[k] = false
	}
}

func (w *Window) Poll() {
	glfw.PollEvents()
}

func (w *Window) Keys() [chip8.KeyCount]bool {
	return w.keys
}

func (w *Window) ShouldClose() bool {
	return w.window.ShouldClose()
}

func (w *Window) Render(d *chip8.Display) error {
	gl.Clear(gl.COLOR_BUFFER_BIT)
	n := fillVerticesToDraw(d, w.vertex)
	if n > 0 {
		gl.BufferSubData(gl.ELEMENT_ARRAY_BUFFER, 0, n*4, gl.Ptr(w.vertex))
		gl.DrawElements(gl.TRIANGLES, int32(n), gl.UNSIGNED_INT, gl.PtrOffset(0))
	}
	if err := gl.GetError(); err != gl.NO_ERROR {
		return fmt.Errorf("GL error: 0x%x", err)
	}
	w.window.SwapBuffers()
	return nil
}

func (w *Window) Close() error {
	w.window.Destroy()
	glfw.Terminate()
	return nil
}
