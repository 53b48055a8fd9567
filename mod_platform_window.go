package fountain

import (
	"runtime"

	"github.com/go-gl/gl/v4.1-core/gl"
	"github.com/go-gl/glfw/v3.3/glfw"
)

// WindowState is the single shared window plus its GL context.
type WindowState struct {
	windowGlfw *glfw.Window

	WindowWidth  int
	WindowHeight int
	windowTitle  string
}

func createWindowState(windowWidth int, windowHeight int, windowTitle string) *WindowState {
	runtime.LockOSThread()
	if err := glfw.Init(); err != nil {
		panic(err)
	}

	glfw.WindowHint(glfw.ContextVersionMajor, 4)
	glfw.WindowHint(glfw.ContextVersionMinor, 1)
	glfw.WindowHint(glfw.OpenGLProfile, glfw.OpenGLCoreProfile)
	glfw.WindowHint(glfw.OpenGLForwardCompatible, glfw.True)
	glfw.WindowHint(glfw.Resizable, glfw.True)

	win, err := glfw.CreateWindow(windowWidth, windowHeight, windowTitle, nil, nil)
	if err != nil {
		panic(err)
	}
	win.MakeContextCurrent()
	if err := gl.Init(); err != nil {
		panic(err)
	}

	return &WindowState{
		windowGlfw:   win,
		WindowWidth:  windowWidth,
		WindowHeight: windowHeight,
		windowTitle:  windowTitle,
	}
}

// PlatformWindowModule provides the shared WindowState resource.
type PlatformWindowModule struct {
	Width  int
	Height int
	Title  string
}

func NewPlatformWindow(width, height int, title string) *PlatformWindowModule {
	if width <= 0 {
		width = 800
	}
	if height <= 0 {
		height = 600
	}
	if title == "" {
		title = "Fountain"
	}
	return &PlatformWindowModule{
		Width:  width,
		Height: height,
		Title:  title,
	}
}

func (m PlatformWindowModule) Install(app *App, cmd *Commands) {
	ws := createWindowState(m.Width, m.Height, m.Title)
	cmd.AddResources(ws)
	app.UseSystem(System(windowPresentSystem).InStage(Finale))
}

// windowPresentSystem flips the frame and reacts to the close button.
// In a cluster only the master may initiate shutdown; a replica window
// closing is a fatal condition the master will observe on its next
// barrier anyway.
func windowPresentSystem(s *WindowState, sync *Sync, cmd *Commands) {
	s.windowGlfw.SwapBuffers()
	if s.windowGlfw.ShouldClose() && sync.Authoritative() {
		cmd.Quit()
	}
	s.WindowWidth, s.WindowHeight = s.windowGlfw.GetSize()
}
