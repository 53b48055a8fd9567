package fountain

import (
	"fmt"

	"github.com/go-gl/gl/v4.1-core/gl"
	"github.com/go-gl/mathgl/mgl32"
)

const pointSize = 4.0

var vertexShaderSrc = `#version 410 core
layout (location = 0) in vec3 aPos;
layout (location = 1) in vec4 aCol;
uniform mat4 uVP;
out vec4 vCol;
void main() {
    gl_Position = uVP * vec4(aPos, 1.0);
    gl_PointSize = float(` + fmt.Sprint(pointSize) + `);
    vCol = aCol;
}
` + "\x00"

var fragmentShaderSrc = `#version 410 core
in vec4 vCol;
out vec4 fragColor;
void main() {
    fragColor = vCol;
}
` + "\x00"

// pointsGpu is the lazily created GL state for the particle cloud.
// Creation happens on the first render call, when the shared window's
// context is current on the main thread.
type pointsGpu struct {
	program  uint32
	vao      uint32
	vboPos   uint32
	vboCol   uint32
	capacity int
	vpLoc    int32

	posData []float32
	colData []float32
}

// PointsRendererModule draws the particle pool as GL_POINTS with
// per-frame buffer uploads.
type PointsRendererModule struct{}

func (m PointsRendererModule) Install(app *App, cmd *Commands) {
	cmd.AddResources(&pointsGpu{})
	app.UseSystem(System(pointsRenderSystem).InStage(Render))
}

func pointsRenderSystem(gpu *pointsGpu, ws *WindowState, f *Fountain, state *SceneState) {
	if gpu.program == 0 {
		initPointsGpu(gpu)
	}
	gpu.ensureCapacity(len(f.Instances))

	gl.ClearColor(0, 0, 0, 0)
	gl.Clear(gl.COLOR_BUFFER_BIT | gl.DEPTH_BUFFER_BIT)

	if len(f.Instances) == 0 {
		return
	}

	width, height := ws.WindowWidth, ws.WindowHeight
	if height == 0 {
		height = 1
	}
	proj := mgl32.Perspective(mgl32.DegToRad(45.0), float32(width)/float32(height), 0.1, 100.0)
	view := mgl32.HomogRotate3DY(-state.Yaw).Mul4(
		mgl32.Translate3D(state.Position.X(), state.Position.Y(), state.Position.Z()))
	vp := proj.Mul4(view)

	gpu.posData = gpu.posData[:0]
	gpu.colData = gpu.colData[:0]
	for _, inst := range f.Instances {
		gpu.posData = append(gpu.posData, inst.Pos[0], inst.Pos[1], inst.Pos[2])
		gpu.colData = append(gpu.colData, inst.Color[0], inst.Color[1], inst.Color[2], inst.Color[3])
	}

	gl.UseProgram(gpu.program)
	gl.UniformMatrix4fv(gpu.vpLoc, 1, false, &vp[0])

	gl.BindBuffer(gl.ARRAY_BUFFER, gpu.vboPos)
	gl.BufferSubData(gl.ARRAY_BUFFER, 0, len(gpu.posData)*4, gl.Ptr(gpu.posData))
	gl.BindBuffer(gl.ARRAY_BUFFER, gpu.vboCol)
	gl.BufferSubData(gl.ARRAY_BUFFER, 0, len(gpu.colData)*4, gl.Ptr(gpu.colData))

	gl.BindVertexArray(gpu.vao)
	gl.DrawArrays(gl.POINTS, 0, int32(len(f.Instances)))
	gl.BindVertexArray(0)
}

func initPointsGpu(gpu *pointsGpu) {
	gl.Enable(gl.DEPTH_TEST)
	gl.Enable(gl.BLEND)
	gl.BlendFunc(gl.SRC_ALPHA, gl.ONE_MINUS_SRC_ALPHA)
	gl.Enable(gl.PROGRAM_POINT_SIZE)

	program, err := newProgram(vertexShaderSrc, fragmentShaderSrc)
	if err != nil {
		panic(err)
	}
	gpu.program = program
	gpu.vpLoc = gl.GetUniformLocation(program, gl.Str("uVP\x00"))

	gl.GenVertexArrays(1, &gpu.vao)
	gl.BindVertexArray(gpu.vao)

	gl.GenBuffers(1, &gpu.vboPos)
	gl.BindBuffer(gl.ARRAY_BUFFER, gpu.vboPos)
	gl.EnableVertexAttribArray(0)
	gl.VertexAttribPointer(0, 3, gl.FLOAT, false, 0, gl.PtrOffset(0))

	gl.GenBuffers(1, &gpu.vboCol)
	gl.BindBuffer(gl.ARRAY_BUFFER, gpu.vboCol)
	gl.EnableVertexAttribArray(1)
	gl.VertexAttribPointer(1, 4, gl.FLOAT, false, 0, gl.PtrOffset(0))

	gl.BindVertexArray(0)
}

// ensureCapacity grows the GPU buffers to hold at least n particles.
func (gpu *pointsGpu) ensureCapacity(n int) {
	if n <= gpu.capacity {
		return
	}
	capacity := gpu.capacity * 2
	if capacity < 1024 {
		capacity = 1024
	}
	for capacity < n {
		capacity *= 2
	}
	gpu.capacity = capacity

	gl.BindBuffer(gl.ARRAY_BUFFER, gpu.vboPos)
	gl.BufferData(gl.ARRAY_BUFFER, capacity*3*4, nil, gl.DYNAMIC_DRAW)
	gl.BindBuffer(gl.ARRAY_BUFFER, gpu.vboCol)
	gl.BufferData(gl.ARRAY_BUFFER, capacity*4*4, nil, gl.DYNAMIC_DRAW)
}

func compileShader(src string, shaderType uint32) (uint32, error) {
	shader := gl.CreateShader(shaderType)
	csources, free := gl.Strs(src)
	gl.ShaderSource(shader, 1, csources, nil)
	free()
	gl.CompileShader(shader)

	var status int32
	gl.GetShaderiv(shader, gl.COMPILE_STATUS, &status)
	if status == gl.FALSE {
		var logLength int32
		gl.GetShaderiv(shader, gl.INFO_LOG_LENGTH, &logLength)
		logBuf := make([]byte, logLength+1)
		gl.GetShaderInfoLog(shader, logLength, nil, &logBuf[0])
		return 0, fmt.Errorf("failed to compile shader: %s", string(logBuf))
	}
	return shader, nil
}

func newProgram(vertSrc, fragSrc string) (uint32, error) {
	vert, err := compileShader(vertSrc, gl.VERTEX_SHADER)
	if err != nil {
		return 0, err
	}
	frag, err := compileShader(fragSrc, gl.FRAGMENT_SHADER)
	if err != nil {
		return 0, err
	}
	program := gl.CreateProgram()
	gl.AttachShader(program, vert)
	gl.AttachShader(program, frag)
	gl.LinkProgram(program)

	var status int32
	gl.GetProgramiv(program, gl.LINK_STATUS, &status)
	if status == gl.FALSE {
		var logLength int32
		gl.GetProgramiv(program, gl.INFO_LOG_LENGTH, &logLength)
		logBuf := make([]byte, logLength+1)
		gl.GetProgramInfoLog(program, logLength, nil, &logBuf[0])
		return 0, fmt.Errorf("failed to link program: %s", string(logBuf))
	}
	gl.DeleteShader(vert)
	gl.DeleteShader(frag)
	return program, nil
}
