package fountain

import (
	"math/rand"
	"reflect"
)

// FountainParams tunes the emitter. ParticlesPerSecond times the frame
// delta, floored, gives the spawn count the authoritative process puts
// into the snapshot.
type FountainParams struct {
	ParticlesPerSecond float64
	Spawn              SpawnParams
	MaxParticles       int
}

func DefaultFountainParams() FountainParams {
	return FountainParams{
		ParticlesPerSecond: 400,
		Spawn:              DefaultSpawnParams(),
		MaxParticles:       100000,
	}
}

// Fountain owns the particle pool and the seeded RNG. Every process in
// a cluster runs the same spawns from the same seed, so the pools stay
// identical without ever shipping particle data.
type Fountain struct {
	Pool      *ParticlePool
	Rng       *rand.Rand
	Instances []ParticleInstance
}

type FountainModule struct {
	Params FountainParams
}

func (m FountainModule) Install(app *App, cmd *Commands) {
	params := m.Params
	if params.ParticlesPerSecond == 0 {
		params = DefaultFountainParams()
	}

	seed := clusterSeed(app)
	cmd.AddResources(
		&params,
		&Fountain{
			Pool: NewParticlePool(params.MaxParticles),
			Rng:  rand.New(rand.NewSource(seed)),
		},
	)

	app.UseSystem(System(fountainSystem).InStage(Update))
	app.UseSystem(System(fountainCollectSystem).InStage(PreRender))
}

// clusterSeed picks the RNG seed from the Sync resource when the
// cluster layer is installed, falling back to a local seed.
func clusterSeed(app *App) int64 {
	t := reflect.TypeOf((*Sync)(nil)).Elem()
	if r, ok := app.resources[t]; ok {
		return r.(*Sync).dist.Seed()
	}
	return NewLocalDistributor().Seed()
}

// fountainSystem applies one snapshot to the pool: handle a pending
// reset, spawn this frame's particles, integrate, drop the dead ones.
func fountainSystem(f *Fountain, params *FountainParams, state *SceneState) {
	if state.ResetScene {
		f.Pool.Clear()
	}

	count := int(state.SpawnCount)
	if max := params.MaxParticles - f.Pool.Alive(); count > max {
		count = max
	}
	f.Pool.Spawn(count, params.Spawn, f.Rng)

	f.Pool.Integrate(state.TimeDelta)
	f.Pool.Cull()

	state.Reset(false)
}

func fountainCollectSystem(f *Fountain) {
	f.Instances = f.Pool.Collect(f.Instances)
}
