package fountain

import (
	"github.com/go-gl/glfw/v3.3/glfw"
)

const (
	KeyA int = iota
	KeyB
	KeyC
	KeyD
	KeyE
	KeyF
	KeyG
	KeyH
	KeyI
	KeyJ
	KeyK
	KeyL
	KeyM
	KeyN
	KeyO
	KeyP
	KeyQ
	KeyR
	KeyS
	KeyT
	KeyU
	KeyV
	KeyW
	KeyX
	KeyY
	KeyZ
	KeySpace
	KeyEnter
	KeyEscape
	keyCount
)

var keyToGlfw = map[int]glfw.Key{
	KeyA:      glfw.KeyA,
	KeyB:      glfw.KeyB,
	KeyC:      glfw.KeyC,
	KeyD:      glfw.KeyD,
	KeyE:      glfw.KeyE,
	KeyF:      glfw.KeyF,
	KeyG:      glfw.KeyG,
	KeyH:      glfw.KeyH,
	KeyI:      glfw.KeyI,
	KeyJ:      glfw.KeyJ,
	KeyK:      glfw.KeyK,
	KeyL:      glfw.KeyL,
	KeyM:      glfw.KeyM,
	KeyN:      glfw.KeyN,
	KeyO:      glfw.KeyO,
	KeyP:      glfw.KeyP,
	KeyQ:      glfw.KeyQ,
	KeyR:      glfw.KeyR,
	KeyS:      glfw.KeyS,
	KeyT:      glfw.KeyT,
	KeyU:      glfw.KeyU,
	KeyV:      glfw.KeyV,
	KeyW:      glfw.KeyW,
	KeyX:      glfw.KeyX,
	KeyY:      glfw.KeyY,
	KeyZ:      glfw.KeyZ,
	KeySpace:  glfw.KeySpace,
	KeyEnter:  glfw.KeyEnter,
	KeyEscape: glfw.KeyEscape,
}

// Input holds the polled keyboard state for the current frame.
type Input struct {
	Pressed      [keyCount]bool
	JustPressed  [keyCount]bool
	JustReleased [keyCount]bool
}

type InputModule struct{}

func (mod InputModule) Install(app *App, cmd *Commands) {
	cmd.AddResources(&Input{})
	app.UseSystem(System(inputSystem).InStage(PreUpdate))
}

func inputSystem(s *WindowState, input *Input) {
	glfw.PollEvents()

	for key, glfwKey := range keyToGlfw {
		action := s.windowGlfw.GetKey(glfwKey)

		input.JustPressed[key] = false
		input.JustReleased[key] = false

		if glfw.Press == action {
			if !input.Pressed[key] {
				input.JustPressed[key] = true
			}
			input.Pressed[key] = true
		} else if glfw.Release == action {
			if input.Pressed[key] {
				input.JustReleased[key] = true
			}
			input.Pressed[key] = false
		}
	}
}
