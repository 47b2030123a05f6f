package window

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-gl/gl/v4.1-core/gl"
	"github.com/inrick/chip8vm/chip8"
)

var (
	vertexShaderGlsl = `
	  #version 410 core
	  in vec2 pos;
	  void main() {
	   gl_Position = vec4(pos, 0.0, 1.0);
	  }`
	fragmentShaderGlsl = `
	  #version 410 core
	  out vec4 color;
	  void main() {
	    color = vec4(0.85, 0.85, 0.85, 1.0);
	  }`
)

// gridVertices returns the coordinates of the quad corners.
//
// See the display pictured below. The vertices are numbered starting
// from the top left and going down, proceeding right after the last row is
// reached. The vertex at position (x,y) is numbered 33*x+y:
//   - (0,0) is vertex 0
//   - (0,1) is vertex 1
//   - (1,0) is vertex 33
//   - etc.
//
// The numbering is chosen to match the column major layout of
// chip8.Display.
//
//	     x  0 1     ...      64
//	     --->
//	 y |
//	   |  +---------------------+
//	 0 v  | . . . . . . . . . . |
//	 1    | . . . . . . . . . . |
//	...   | . . . . . . . . . . |
//	32    | . . . . . . . . . . |
//	      +---------------------+
func gridVertices() []float32 {
	w, h := chip8.DisplayWidth+1, chip8.DisplayHeight+1
	buf := make([]float32, w*h*2) // 2 coordinates for each vertex
	for x := 0; x < w; x++ {
		for y := 0; y < h; y++ {
			i := 2 * (x*h + y)
			buf[i] = -1 + float32(x)/float32(chip8.DisplayWidth/2)
			buf[i+1] = 1 - float32(y)/float32(chip8.DisplayHeight/2)
		}
	}
	return buf
}

// fillVerticesToDraw writes two triangles per lit pixel into vertex and
// returns the number of indices written.
func fillVerticesToDraw(d *chip8.Display, vertex []uint32) int {
	h := chip8.DisplayHeight + 1
	n := 0
	d.Each(func(x, y int) {
		// Corners of quad
		q1 := uint32(x*h + y)
		q2 := uint32(x*h + y + 1)
		q3 := uint32((x+1)*h + y)
		q4 := uint32((x+1)*h + y + 1)
		vertex[n+0] = q1
		vertex[n+1] = q2
		vertex[n+2] = q3
		vertex[n+3] = q2
		vertex[n+4] = q3
		vertex[n+5] = q4
		n += 6
	})
	return n
}

func checkShaderError(shader uint32) error {
	var status int32
	gl.GetShaderiv(shader, gl.COMPILE_STATUS, &status)
	if status == gl.FALSE {
		var length int32
		gl.GetShaderiv(shader, gl.INFO_LOG_LENGTH, &length)
		log := strings.Repeat("\x00", 1+int(length))
		gl.GetShaderInfoLog(shader, length, nil, gl.Str(log))
		return errors.New(log)
	}
	return nil
}

func compileShader(kind uint32, source string) (uint32, error) {
	shader := gl.CreateShader(kind)
	csource, free := gl.Strs(source)
	defer free()
	gl.ShaderSource(shader, 1, csource, nil)
	gl.CompileShader(shader)
	return shader, checkShaderError(shader)
}

func glSetup() (vertex []uint32, err error) {
	if err := gl.Init(); err != nil {
		return nil, err
	}

	var vao, vbo, ebo uint32
	gl.GenVertexArrays(1, &vao)
	gl.BindVertexArray(vao)

	buf := gridVertices()
	gl.GenBuffers(1, &vbo)
	gl.BindBuffer(gl.ARRAY_BUFFER, vbo)
	gl.BufferData(gl.ARRAY_BUFFER, len(buf)*4, gl.Ptr(buf), gl.STATIC_DRAW)

	// 6 indices for each of the 64*32 pixel quads
	vertex = make([]uint32, chip8.DisplayWidth*chip8.DisplayHeight*6)

	gl.GenBuffers(1, &ebo)
	gl.BindBuffer(gl.ELEMENT_ARRAY_BUFFER, ebo)
	gl.BufferData(
		gl.ELEMENT_ARRAY_BUFFER, len(vertex)*4, gl.Ptr(vertex), gl.DYNAMIC_DRAW)

	vertexShader, err := compileShader(gl.VERTEX_SHADER, vertexShaderGlsl+"\x00")
	if err != nil {
		return nil, fmt.Errorf("vertex shader error: %w", err)
	}
	fragmentShader, err := compileShader(gl.FRAGMENT_SHADER, fragmentShaderGlsl+"\x00")
	if err != nil {
		return nil, fmt.Errorf("fragment shader error: %w", err)
	}

	program := gl.CreateProgram()
	gl.AttachShader(program, vertexShader)
	gl.AttachShader(program, fragmentShader)
	gl.BindFragDataLocation(program, 0, gl.Str("color\x00"))
	gl.LinkProgram(program)
	gl.UseProgram(program)

	var status int32
	gl.GetProgramiv(program, gl.LINK_STATUS, &status)
	if status == gl.FALSE {
		var length int32
		gl.GetProgramiv(program, gl.INFO_LOG_LENGTH, &length)
		log := strings.Repeat("\x00", 1+int(length))
		gl.GetProgramInfoLog(program, length, nil, gl.Str(log))
		return nil, fmt.Errorf("program link error: %s", log)
	}

	gl.EnableVertexAttribArray(0)
	gl.BindBuffer(gl.ARRAY_BUFFER, vbo)
	gl.VertexAttribPointer(0, 2, gl.FLOAT, false, 0, gl.PtrOffset(0))

	gl.BindBuffer(gl.ELEMENT_ARRAY_BUFFER, ebo)

	if err := gl.GetError(); err != gl.NO_ERROR {
		return nil, fmt.Errorf("GL error: 0x%x", err)
	}
	return vertex, nil
}
