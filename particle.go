package fountain

import (
	"math/rand"

	"github.com/go-gl/mathgl/mgl32"
)

// Default tuning for the fountain. Drag and gravity act per second,
// lifetime is in seconds.
const (
	DefaultLife       float32 = 10.0
	SlowdownPerSecond float32 = 0.2
)

var gravity = mgl32.Vec3{0, -1, 0}

// Endpoint colors for the velocity gradient. Fast upward particles are
// hot, falling ones are cold.
var (
	ColorCold = mgl32.Vec4{0.0, 0.73, 1.0, 1.0}
	ColorHot  = mgl32.Vec4{0.8, 0.0, 0.0, 1.0}
)

// SpawnParams shapes the random distribution of new particles.
// Positions are sampled uniformly in [0,1)^3. Directions are sampled
// uniformly in [-1,1) per axis, with the vertical component remapped to
// y*BiasScale+BiasOffset to push particles upward. The 2,2 defaults are
// a tuning constant, not a physical model.
type SpawnParams struct {
	BiasScale  float32
	BiasOffset float32
}

func DefaultSpawnParams() SpawnParams {
	return SpawnParams{BiasScale: 2.0, BiasOffset: 2.0}
}

func lerp(a, b, t float32) float32 { return a + (b-a)*t }

// ParticleColor interpolates between the cold and hot endpoints keyed
// by vertical velocity: -2 maps to cold, 0 to the midpoint, +2 to hot.
// Values outside that range clamp to the endpoints.
func ParticleColor(verticalVelocity float32) mgl32.Vec4 {
	t := verticalVelocity/4.0 + 0.5
	if t < 0 {
		t = 0
	}
	if t > 1 {
		t = 1
	}
	return mgl32.Vec4{
		lerp(ColorCold[0], ColorHot[0], t),
		lerp(ColorCold[1], ColorHot[1], t),
		lerp(ColorCold[2], ColorHot[2], t),
		lerp(ColorCold[3], ColorHot[3], t),
	}
}

// ParticlePool is a SoA store for the live particles of one fountain.
// Dead particles are removed with swap-remove, so iteration order is
// not stable across frames.
type ParticlePool struct {
	pos  []mgl32.Vec3
	vel  []mgl32.Vec3
	life []float32
}

func NewParticlePool(capacity int) *ParticlePool {
	if capacity <= 0 {
		capacity = 1024
	}
	return &ParticlePool{
		pos:  make([]mgl32.Vec3, 0, capacity),
		vel:  make([]mgl32.Vec3, 0, capacity),
		life: make([]float32, 0, capacity),
	}
}

func (p *ParticlePool) Alive() int {
	return len(p.pos)
}

func (p *ParticlePool) Clear() {
	p.pos = p.pos[:0]
	p.vel = p.vel[:0]
	p.life = p.life[:0]
}

// Spawn appends count fresh particles drawn from rng. The draw order is
// position x,y,z then direction x,y,z per particle, which keeps
// identically seeded pools in lockstep across processes.
func (p *ParticlePool) Spawn(count int, params SpawnParams, rng *rand.Rand) {
	for i := 0; i < count; i++ {
		pos := mgl32.Vec3{rng.Float32(), rng.Float32(), rng.Float32()}

		uniform := func() float32 { return rng.Float32()*2 - 1 }
		vel := mgl32.Vec3{
			uniform(),
			uniform()*params.BiasScale + params.BiasOffset,
			uniform(),
		}

		p.pos = append(p.pos, pos)
		p.vel = append(p.vel, vel)
		p.life = append(p.life, DefaultLife)
	}
}

// Integrate advances every particle by dt seconds: Euler position step,
// linear drag plus constant gravity on the velocity, lifetime countdown.
// A non-positive dt is a no-op.
func (p *ParticlePool) Integrate(dt float32) {
	if dt <= 0 {
		return
	}
	drag := 1.0 - dt*SlowdownPerSecond
	grav := gravity.Mul(dt)
	for i := range p.pos {
		p.pos[i] = p.pos[i].Add(p.vel[i].Mul(dt))
		p.vel[i] = p.vel[i].Mul(drag).Add(grav)
		p.life[i] -= dt
	}
}

func (p *ParticlePool) Dead(i int) bool {
	return p.life[i] <= 0
}

// Cull swap-removes every dead particle.
func (p *ParticlePool) Cull() {
	i := 0
	for i < len(p.pos) {
		if p.life[i] <= 0 {
			p.killAt(i)
			continue
		}
		i++
	}
}

func (p *ParticlePool) killAt(i int) {
	last := len(p.pos) - 1
	p.pos[i] = p.pos[last]
	p.vel[i] = p.vel[last]
	p.life[i] = p.life[last]
	p.pos = p.pos[:last]
	p.vel = p.vel[:last]
	p.life = p.life[:last]
}

// ParticleInstance is the packed per-particle data handed to renderers.
type ParticleInstance struct {
	Pos   [3]float32
	Color [4]float32
}

// Collect packs the live particles into render instances, reusing dst.
func (p *ParticlePool) Collect(dst []ParticleInstance) []ParticleInstance {
	dst = dst[:0]
	for i := range p.pos {
		c := ParticleColor(p.vel[i].Y())
		dst = append(dst, ParticleInstance{
			Pos:   [3]float32{p.pos[i].X(), p.pos[i].Y(), p.pos[i].Z()},
			Color: [4]float32{c[0], c[1], c[2], c[3]},
		})
	}
	return dst
}
