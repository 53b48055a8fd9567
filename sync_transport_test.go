package fountain

import (
	"net"
	"testing"
	"time"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// handshakePipe wires a master and a replica transport over an
// in-memory pipe, running the hello/seed handshake.
func handshakePipe(t *testing.T, seed int64) (*MasterTransport, *ReplicaTransport) {
	t.Helper()
	server, client := net.Pipe()

	type result struct {
		rt  *ReplicaTransport
		err error
	}
	ch := make(chan result, 1)
	go func() {
		rt, err := newReplicaTransport(client)
		ch <- result{rt, err}
	}()

	peer, err := acceptPeer(server)
	require.NoError(t, err)
	master := &MasterTransport{peers: []masterPeer{peer}}
	require.NoError(t, master.SendSeed(seed))

	res := <-ch
	require.NoError(t, res.err)

	t.Cleanup(func() {
		server.Close()
		client.Close()
	})
	return master, res.rt
}

func TestTransport_HandshakeSharesSeed(t *testing.T) {
	master, replica := handshakePipe(t, 42)

	assert.Equal(t, 1, master.PeerCount())
	assert.Equal(t, int64(42), replica.Seed())
}

func TestTransport_FrameFlow(t *testing.T) {
	master, replica := handshakePipe(t, 1)

	state := &SceneState{
		Position:   mgl32.Vec3{0, 0, -5},
		Yaw:        0.5,
		TimeDelta:  0.25,
		SpawnCount: 100,
	}

	errCh := make(chan error, 3)
	go func() {
		errCh <- master.PublishState(7, state)
		errCh <- master.Barrier(7)
		errCh <- master.Quit()
	}()

	var got SceneState
	seq, err := replica.AwaitState(&got)
	require.NoError(t, err)
	assert.Equal(t, uint32(7), seq)
	assert.Equal(t, *state, got)

	require.NoError(t, replica.Ack(7))

	_, err = replica.AwaitState(&got)
	assert.ErrorIs(t, err, ErrQuit)

	for i := 0; i < 3; i++ {
		require.NoError(t, <-errCh)
	}
}

func TestTransport_BarrierRejectsWrongFrame(t *testing.T) {
	master, replica := handshakePipe(t, 1)

	errCh := make(chan error, 1)
	go func() {
		errCh <- replica.Ack(5)
	}()

	err := master.Barrier(6)
	assert.Error(t, err)
	require.NoError(t, <-errCh)
}

func TestTransport_ListenAndDial(t *testing.T) {
	cfg := DefaultClusterConfig()
	cfg.Address = "127.0.0.1:47391"
	cfg.Replicas = 1
	cfg.ConnectTimeout = 2 * time.Second

	type masterResult struct {
		mt  *MasterTransport
		err error
	}
	ch := make(chan masterResult, 1)
	go func() {
		mt, err := ListenMaster(cfg, NewNopLogger())
		if err == nil {
			err = mt.SendSeed(99)
		}
		ch <- masterResult{mt, err}
	}()

	var replica *ReplicaTransport
	var err error
	for i := 0; i < 50; i++ {
		replica, err = DialReplica(cfg, NewNopLogger())
		if err == nil {
			break
		}
		time.Sleep(20 * time.Millisecond)
	}
	require.NoError(t, err)
	defer replica.Close()

	res := <-ch
	require.NoError(t, res.err)
	defer res.mt.Close()

	assert.Equal(t, int64(99), replica.Seed())
	assert.Equal(t, 1, res.mt.PeerCount())
}
