package fountain

import (
	"math"
)

const (
	piConstant        = float32(math.Pi)
	rotationPerSecond = piConstant / 2 // rad/s
	yawStep           = rotationPerSecond / 20
)

// WalkCameraModule maps the keyboard onto the shared viewer state:
// w/s step along the current yaw, a/d turn, Space resets the scene,
// Escape quits. Only the authoritative process reads its keyboard;
// replicas get the resulting position through the snapshot.
type WalkCameraModule struct{}

func (m WalkCameraModule) Install(app *App, cmd *Commands) {
	app.UseSystem(System(walkCameraSystem).InStage(PreUpdate))
}

func walkCameraSystem(sync *Sync, input *Input, state *SceneState, cmd *Commands) {
	if !sync.Authoritative() {
		return
	}

	if input.JustPressed[KeyEscape] {
		cmd.Quit()
	}

	forwardX := float32(math.Sin(float64(state.Yaw)))
	forwardZ := float32(math.Cos(float64(state.Yaw)))

	if input.JustPressed[KeyW] {
		state.Position[0] += forwardX
		state.Position[2] += forwardZ
	}
	if input.JustPressed[KeyS] {
		state.Position[0] -= forwardX
		state.Position[2] -= forwardZ
	}
	if input.JustPressed[KeyA] {
		state.Yaw += yawStep
	}
	if input.JustPressed[KeyD] {
		state.Yaw -= yawStep
	}

	state.Reset(input.JustPressed[KeySpace])
}
