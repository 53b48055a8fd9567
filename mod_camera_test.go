package fountain

import (
	"math"
	"testing"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/assert"
)

func TestWalkCamera_StepsAlongYaw(t *testing.T) {
	app := NewAppBuilder().Build()
	sync := testSync()
	state := &SceneState{}

	input := &Input{}
	input.JustPressed[KeyW] = true
	walkCameraSystem(sync, input, state, app.Commands())

	// yaw 0 faces +z
	assert.InDelta(t, 0.0, state.Position.X(), 1e-6)
	assert.InDelta(t, 1.0, state.Position.Z(), 1e-6)

	input = &Input{}
	input.JustPressed[KeyS] = true
	state.Yaw = piConstant / 2
	walkCameraSystem(sync, input, state, app.Commands())

	wantX := -float32(math.Sin(float64(piConstant / 2)))
	assert.InDelta(t, float64(wantX), float64(state.Position.X()), 1e-6)
}

func TestWalkCamera_RotatesYaw(t *testing.T) {
	app := NewAppBuilder().Build()
	sync := testSync()
	state := &SceneState{}

	input := &Input{}
	input.JustPressed[KeyA] = true
	walkCameraSystem(sync, input, state, app.Commands())
	assert.Equal(t, yawStep, state.Yaw)

	input = &Input{}
	input.JustPressed[KeyD] = true
	walkCameraSystem(sync, input, state, app.Commands())
	assert.Equal(t, float32(0), state.Yaw)
}

func TestWalkCamera_SpaceResets(t *testing.T) {
	app := NewAppBuilder().Build()
	sync := testSync()
	state := &SceneState{Position: mgl32.Vec3{9, 9, 9}, Yaw: 2}

	input := &Input{}
	input.JustPressed[KeySpace] = true
	walkCameraSystem(sync, input, state, app.Commands())

	assert.True(t, state.ResetScene)
	assert.Equal(t, mgl32.Vec3{0, 0, -5}, state.Position)
	assert.Equal(t, float32(0), state.Yaw)
}

func TestWalkCamera_EscapeQuits(t *testing.T) {
	app := NewAppBuilder().Build()
	sync := testSync()

	input := &Input{}
	input.JustPressed[KeyEscape] = true
	walkCameraSystem(sync, input, &SceneState{}, app.Commands())

	assert.True(t, app.quitRequested)
}

func TestWalkCamera_ReplicaIgnoresInput(t *testing.T) {
	app := NewAppBuilder().Build()
	sync := &Sync{dist: &replicaDistributor{}, log: NewNopLogger()}
	state := &SceneState{ResetScene: true}

	input := &Input{}
	input.JustPressed[KeyW] = true
	input.JustPressed[KeyEscape] = true
	walkCameraSystem(sync, input, state, app.Commands())

	assert.Equal(t, mgl32.Vec3{}, state.Position)
	assert.True(t, state.ResetScene, "replica must not drop a broadcast reset flag")
	assert.False(t, app.quitRequested)
}
