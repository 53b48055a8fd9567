package fountain

import (
	"encoding/binary"
	"errors"
	"fmt"
	"net"
	"time"

	"github.com/google/uuid"
)

// Role defines which side of the cluster a process is on.
type Role uint8

const (
	RoleLocal   Role = iota // single process, no cluster
	RoleMaster              // computes state, broadcasts snapshots
	RoleReplica             // consumes snapshots
)

func (r Role) String() string {
	switch r {
	case RoleMaster:
		return "master"
	case RoleReplica:
		return "replica"
	default:
		return "local"
	}
}

// ErrQuit is returned by a replica read when the master has broadcast
// a shutdown frame.
var ErrQuit = errors.New("quit requested by master")

// ClusterConfig holds the fixed cluster topology. The topology never
// changes at runtime: the master waits for exactly Replicas peers
// before the first frame, and any transport failure afterwards is
// fatal.
type ClusterConfig struct {
	Role           Role
	Address        string
	Replicas       int
	ConnectTimeout time.Duration
}

func DefaultClusterConfig() ClusterConfig {
	return ClusterConfig{
		Role:           RoleLocal,
		Address:        ":7373",
		Replicas:       1,
		ConnectTimeout: 10 * time.Second,
	}
}

type masterPeer struct {
	id   uuid.UUID
	conn net.Conn
}

// MasterTransport fans identical frames out to every replica and
// gathers their barrier acks. All calls happen on the simulation
// goroutine; there is no in-process locking to take.
type MasterTransport struct {
	listener net.Listener
	peers    []masterPeer
}

// ListenMaster binds the cluster address and blocks until the expected
// number of replicas have connected and introduced themselves.
func ListenMaster(cfg ClusterConfig, log Logger) (*MasterTransport, error) {
	ln, err := net.Listen("tcp", cfg.Address)
	if err != nil {
		return nil, fmt.Errorf("cluster listen on %s: %w", cfg.Address, err)
	}

	t := &MasterTransport{listener: ln}
	for len(t.peers) < cfg.Replicas {
		conn, err := ln.Accept()
		if err != nil {
			t.Close()
			return nil, fmt.Errorf("cluster accept: %w", err)
		}
		peer, err := acceptPeer(conn)
		if err != nil {
			conn.Close()
			t.Close()
			return nil, err
		}
		log.Infof("replica %s connected (%d/%d)", peer.id, len(t.peers)+1, cfg.Replicas)
		t.peers = append(t.peers, peer)
	}
	return t, nil
}

func acceptPeer(conn net.Conn) (masterPeer, error) {
	msg, err := Decode(conn)
	if err != nil {
		return masterPeer{}, fmt.Errorf("read hello: %w", err)
	}
	if msg.Type != MsgHello {
		return masterPeer{}, fmt.Errorf("expected hello, got message type 0x%02x", msg.Type)
	}
	id, err := uuid.FromBytes(msg.Payload)
	if err != nil {
		return masterPeer{}, fmt.Errorf("malformed peer id: %w", err)
	}
	return masterPeer{id: id, conn: conn}, nil
}

// newMasterTransport wraps pre-established connections. Used by tests
// to drive the frame protocol over in-memory pipes.
func newMasterTransport(conns ...net.Conn) *MasterTransport {
	t := &MasterTransport{}
	for _, c := range conns {
		t.peers = append(t.peers, masterPeer{conn: c})
	}
	return t
}

// SendSeed shares the master's RNG seed so every process spawns an
// identical particle stream.
func (t *MasterTransport) SendSeed(seed int64) error {
	payload := make([]byte, 8)
	binary.BigEndian.PutUint64(payload, uint64(seed))
	return t.broadcast(NewMessage(MsgSeed, payload))
}

// PublishState broadcasts one frame's snapshot to every replica.
func (t *MasterTransport) PublishState(seq uint32, state *SceneState) error {
	payload, err := state.MarshalBinary()
	if err != nil {
		return err
	}
	msg := NewMessage(MsgState, payload)
	msg.Seq = seq
	return t.broadcast(msg)
}

// Barrier blocks until every replica has acknowledged frame seq. No
// replica starts reading frame seq+1 before its ack, so completing the
// barrier means the whole cluster has consumed the frame.
func (t *MasterTransport) Barrier(seq uint32) error {
	for _, peer := range t.peers {
		msg, err := Decode(peer.conn)
		if err != nil {
			return fmt.Errorf("barrier read from %s: %w", peer.id, err)
		}
		if msg.Type != MsgAck {
			return fmt.Errorf("barrier: expected ack from %s, got type 0x%02x", peer.id, msg.Type)
		}
		if msg.Seq != seq {
			return fmt.Errorf("barrier: replica %s acked frame %d, want %d", peer.id, msg.Seq, seq)
		}
	}
	return nil
}

// Quit tells every replica to shut down.
func (t *MasterTransport) Quit() error {
	return t.broadcast(NewMessage(MsgQuit, nil))
}

func (t *MasterTransport) broadcast(msg *Message) error {
	for _, peer := range t.peers {
		if err := msg.Encode(peer.conn); err != nil {
			return fmt.Errorf("send to %s: %w", peer.id, err)
		}
	}
	return nil
}

func (t *MasterTransport) PeerCount() int {
	return len(t.peers)
}

func (t *MasterTransport) Close() error {
	for _, peer := range t.peers {
		peer.conn.Close()
	}
	if t.listener != nil {
		return t.listener.Close()
	}
	return nil
}

// ReplicaTransport is the consuming end: a blocking read per frame,
// followed by an ack.
type ReplicaTransport struct {
	id   uuid.UUID
	conn net.Conn
	seed int64
}

// DialReplica connects to the master, introduces itself and receives
// the shared RNG seed.
func DialReplica(cfg ClusterConfig, log Logger) (*ReplicaTransport, error) {
	conn, err := net.DialTimeout("tcp", cfg.Address, cfg.ConnectTimeout)
	if err != nil {
		return nil, fmt.Errorf("cluster dial %s: %w", cfg.Address, err)
	}
	t, err := newReplicaTransport(conn)
	if err != nil {
		conn.Close()
		return nil, err
	}
	log.Infof("connected to master at %s as %s", cfg.Address, t.id)
	return t, nil
}

func newReplicaTransport(conn net.Conn) (*ReplicaTransport, error) {
	t := &ReplicaTransport{id: uuid.New(), conn: conn}

	hello := NewMessage(MsgHello, t.id[:])
	if err := hello.Encode(conn); err != nil {
		return nil, fmt.Errorf("send hello: %w", err)
	}

	msg, err := Decode(conn)
	if err != nil {
		return nil, fmt.Errorf("read seed: %w", err)
	}
	if msg.Type != MsgSeed || len(msg.Payload) != 8 {
		return nil, fmt.Errorf("expected seed, got message type 0x%02x", msg.Type)
	}
	t.seed = int64(binary.BigEndian.Uint64(msg.Payload))
	return t, nil
}

func (t *ReplicaTransport) Seed() int64 {
	return t.seed
}

// AwaitState blocks until the next snapshot arrives and decodes it in
// place. Returns ErrQuit when the master announces shutdown.
func (t *ReplicaTransport) AwaitState(state *SceneState) (uint32, error) {
	msg, err := Decode(t.conn)
	if err != nil {
		return 0, fmt.Errorf("await state: %w", err)
	}
	switch msg.Type {
	case MsgState:
		if err := state.UnmarshalBinary(msg.Payload); err != nil {
			return 0, err
		}
		return msg.Seq, nil
	case MsgQuit:
		return 0, ErrQuit
	default:
		return 0, fmt.Errorf("await state: unexpected message type 0x%02x", msg.Type)
	}
}

// Ack releases the master's barrier for frame seq.
func (t *ReplicaTransport) Ack(seq uint32) error {
	msg := NewMessage(MsgAck, nil)
	msg.Seq = seq
	return msg.Encode(t.conn)
}

func (t *ReplicaTransport) Close() error {
	return t.conn.Close()
}
