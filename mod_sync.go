package fountain

import (
	"errors"
	"math"
	"time"
)

// Distributor is the strategy behind the per-frame state exchange.
// Exactly one process in a run is authoritative; it writes the
// SceneState and the others receive it. The local implementation is a
// pass-through for single-process runs.
type Distributor interface {
	// Authoritative reports whether this process computes the state.
	Authoritative() bool
	// Seed is the cluster-wide RNG seed, identical in every process.
	Seed() int64
	// SyncFrame publishes the snapshot (authoritative) or overwrites
	// it with the received one (replica). Returns the frame number the
	// snapshot belongs to.
	SyncFrame(seq uint32, state *SceneState) (uint32, error)
	// Barrier completes frame seq across the whole cluster.
	Barrier(seq uint32) error
	Close() error
}

// NewDistributor builds the distributor matching the configured role.
func NewDistributor(cfg ClusterConfig, log Logger) (Distributor, error) {
	switch cfg.Role {
	case RoleMaster:
		transport, err := ListenMaster(cfg, log)
		if err != nil {
			return nil, err
		}
		seed := time.Now().UnixNano()
		if err := transport.SendSeed(seed); err != nil {
			transport.Close()
			return nil, err
		}
		return &masterDistributor{transport: transport, seed: seed}, nil
	case RoleReplica:
		transport, err := DialReplica(cfg, log)
		if err != nil {
			return nil, err
		}
		return &replicaDistributor{transport: transport}, nil
	default:
		return NewLocalDistributor(), nil
	}
}

// LocalDistributor runs the demo in a single process: no broadcast, no
// barrier, the local state is already authoritative.
type LocalDistributor struct {
	seed int64
}

func NewLocalDistributor() *LocalDistributor {
	return &LocalDistributor{seed: time.Now().UnixNano()}
}

func (d *LocalDistributor) Authoritative() bool { return true }
func (d *LocalDistributor) Seed() int64         { return d.seed }

func (d *LocalDistributor) SyncFrame(seq uint32, state *SceneState) (uint32, error) {
	return seq, nil
}

func (d *LocalDistributor) Barrier(seq uint32) error { return nil }
func (d *LocalDistributor) Close() error             { return nil }

type masterDistributor struct {
	transport *MasterTransport
	seed      int64
}

func (d *masterDistributor) Authoritative() bool { return true }
func (d *masterDistributor) Seed() int64         { return d.seed }

func (d *masterDistributor) SyncFrame(seq uint32, state *SceneState) (uint32, error) {
	return seq, d.transport.PublishState(seq, state)
}

func (d *masterDistributor) Barrier(seq uint32) error {
	return d.transport.Barrier(seq)
}

func (d *masterDistributor) Close() error {
	// Best effort: let replicas leave their blocking read before the
	// connections drop.
	d.transport.Quit()
	return d.transport.Close()
}

type replicaDistributor struct {
	transport *ReplicaTransport
}

func (d *replicaDistributor) Authoritative() bool { return false }
func (d *replicaDistributor) Seed() int64         { return d.transport.Seed() }

func (d *replicaDistributor) SyncFrame(seq uint32, state *SceneState) (uint32, error) {
	return d.transport.AwaitState(state)
}

func (d *replicaDistributor) Barrier(seq uint32) error {
	return d.transport.Ack(seq)
}

func (d *replicaDistributor) Close() error {
	return d.transport.Close()
}

// Sync is the resource tying the distributor into the frame loop.
type Sync struct {
	dist     Distributor
	log      Logger
	Frame    uint32
	quitting bool
}

func (s *Sync) Authoritative() bool {
	return s.dist.Authoritative()
}

// SyncModule installs the SceneState snapshot and the systems moving it
// through the cluster. Without an explicit Distributor it falls back to
// single-process mode.
type SyncModule struct {
	Distributor Distributor
}

func (m SyncModule) Install(app *App, cmd *Commands) {
	dist := m.Distributor
	if dist == nil {
		dist = NewLocalDistributor()
	}

	state := &SceneState{Position: DefaultPosition}
	cmd.AddResources(
		state,
		&Sync{dist: dist, log: app.Logger()},
	)

	app.UseSystem(System(composeStateSystem).InStage(PreUpdate))
	app.UseSystem(System(syncFrameSystem).InStage(PreUpdate))
	app.UseSystem(System(syncBarrierSystem).InStage(Finale))
}

// composeStateSystem fills in the frame's timing fields on the
// authoritative process. Replicas take both from the snapshot.
func composeStateSystem(sync *Sync, clock *Clock, state *SceneState, params *FountainParams) {
	if !sync.Authoritative() {
		return
	}
	dt := clock.Dt.Seconds()
	if dt < 0 {
		dt = 0
	}
	state.TimeDelta = float32(dt)
	state.SpawnCount = uint32(math.Floor(float64(params.ParticlesPerSecond) * dt))
}

// syncFrameSystem is the broadcast point: after it returns, every
// process holds the same snapshot for the current frame.
func syncFrameSystem(sync *Sync, state *SceneState, cmd *Commands) {
	if sync.quitting {
		return
	}
	seq, err := sync.dist.SyncFrame(sync.Frame, state)
	if err != nil {
		sync.quitting = true
		cmd.Quit()
		if !errors.Is(err, ErrQuit) {
			sync.log.Errorf("state sync failed: %v", err)
		}
		return
	}
	sync.Frame = seq
}

// syncBarrierSystem closes the frame: replicas ack, the master waits
// for all acks. No process starts frame N+1 before the barrier.
func syncBarrierSystem(sync *Sync, cmd *Commands) {
	if sync.quitting {
		return
	}
	if err := sync.dist.Barrier(sync.Frame); err != nil {
		sync.quitting = true
		cmd.Quit()
		sync.log.Errorf("frame barrier failed: %v", err)
		return
	}
	sync.Frame++
}
