package fountain

import (
	"testing"
	"time"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testSync() *Sync {
	return &Sync{dist: NewLocalDistributor(), log: NewNopLogger()}
}

func TestComposeState_SpawnCountIsFloor(t *testing.T) {
	sync := testSync()
	params := DefaultFountainParams()
	state := &SceneState{}

	cases := []struct {
		dt   time.Duration
		want uint32
	}{
		{500 * time.Millisecond, 200}, // 400/s * 0.5s
		{250 * time.Millisecond, 100},
		{time.Second, 400},
		{time.Millisecond, 0}, // 0.4 floors to 0
		{0, 0},
		{-time.Second, 0}, // negative dt clamps to no-op
	}

	for _, c := range cases {
		clock := &Clock{Dt: c.dt}
		composeStateSystem(sync, clock, state, &params)
		assert.Equal(t, c.want, state.SpawnCount, "dt=%v", c.dt)
	}
}

func TestComposeState_ReplicaDoesNotTouchState(t *testing.T) {
	sync := &Sync{dist: &replicaDistributor{}, log: NewNopLogger()}
	params := DefaultFountainParams()
	state := &SceneState{TimeDelta: 0.125, SpawnCount: 7}

	composeStateSystem(sync, &Clock{Dt: time.Second}, state, &params)

	assert.Equal(t, float32(0.125), state.TimeDelta)
	assert.Equal(t, uint32(7), state.SpawnCount)
}

func TestSceneState_Reset(t *testing.T) {
	state := &SceneState{
		Position: mgl32.Vec3{3, 1, 4},
		Yaw:      1.5,
	}

	state.Reset(true)

	assert.True(t, state.ResetScene)
	assert.Equal(t, mgl32.Vec3{0, 0, -5}, state.Position)
	assert.Equal(t, float32(0), state.Yaw)

	// dropping the flag keeps the viewer where it is
	state.Position = mgl32.Vec3{1, 0, 0}
	state.Reset(false)
	assert.False(t, state.ResetScene)
	assert.Equal(t, mgl32.Vec3{1, 0, 0}, state.Position)
}

func TestFountainSystem_SpawnsAndDropsResetFlag(t *testing.T) {
	params := DefaultFountainParams()
	f := &Fountain{Pool: NewParticlePool(64), Rng: newTestRng()}
	state := &SceneState{SpawnCount: 5, TimeDelta: 0.25}

	fountainSystem(f, &params, state)

	assert.Equal(t, 5, f.Pool.Alive())
	assert.False(t, state.ResetScene)
}

func TestFountainSystem_ResetClearsPool(t *testing.T) {
	params := DefaultFountainParams()
	f := &Fountain{Pool: NewParticlePool(64), Rng: newTestRng()}

	fountainSystem(f, &params, &SceneState{SpawnCount: 10, TimeDelta: 0.25})
	require.Equal(t, 10, f.Pool.Alive())

	state := &SceneState{ResetScene: true, SpawnCount: 2, TimeDelta: 0.25}
	fountainSystem(f, &params, state)

	// cleared, then this frame's spawns still happen
	assert.Equal(t, 2, f.Pool.Alive())
	assert.False(t, state.ResetScene)
}

func TestFountainSystem_RespectsMaxParticles(t *testing.T) {
	params := DefaultFountainParams()
	params.MaxParticles = 8
	f := &Fountain{Pool: NewParticlePool(8), Rng: newTestRng()}

	fountainSystem(f, &params, &SceneState{SpawnCount: 100, TimeDelta: 0.25})

	assert.Equal(t, 8, f.Pool.Alive())
}

// Steady state: one particle per frame at a dyadic frame delta keeps
// the arithmetic exact, and with a 10 second lifetime nothing dies
// inside the horizon.
func TestFountain_EndToEndSteadySpawn(t *testing.T) {
	const frames = 400
	dt := time.Second / 256

	params := DefaultFountainParams()
	params.ParticlesPerSecond = 256

	app := NewAppBuilder().
		UseModule(
			SyncModule{},
			FountainModule{Params: params},
		).
		Build()
	app.Commands().AddResources(&Clock{Dt: dt})

	for i := 0; i < frames; i++ {
		app.RunFrame()
	}

	f := resourceFromApp[Fountain](t, app)
	assert.Equal(t, frames, f.Pool.Alive())
}

func TestFountainCollectSystem_PacksLiveParticles(t *testing.T) {
	f := &Fountain{Pool: NewParticlePool(16), Rng: newTestRng()}
	f.Pool.Spawn(3, DefaultSpawnParams(), f.Rng)

	fountainCollectSystem(f)

	assert.Len(t, f.Instances, 3)
}
