package fountain

import (
	"encoding/binary"
	"fmt"
	"math"

	"github.com/go-gl/mathgl/mgl32"
)

// DefaultPosition is where reset puts the viewer.
var DefaultPosition = mgl32.Vec3{0, 0, -5}

// SceneState is the authoritative per-frame snapshot. In cluster mode
// exactly one process writes it and broadcasts it; every other process
// only ever sees complete decoded snapshots.
type SceneState struct {
	Position   mgl32.Vec3
	Yaw        float32 // radians around Y
	TimeDelta  float32 // seconds
	SpawnCount uint32  // particles to create this frame
	ResetScene bool
}

// Reset sets the reset flag and, when raising it, re-centers the viewer.
func (s *SceneState) Reset(flag bool) {
	s.ResetScene = flag
	if flag {
		s.Position = DefaultPosition
		s.Yaw = 0
	}
}

// Wire layout of an encoded SceneState, big-endian:
//
//	offset  size  field
//	0       4     Position.X  float32
//	4       4     Position.Y  float32
//	8       4     Position.Z  float32
//	12      4     Yaw         float32
//	16      4     TimeDelta   float32
//	20      4     SpawnCount  uint32
//	24      1     Flags       bit 0 = reset
const SceneStateSize = 25

const stateFlagReset = 0x01

func putFloat32(b []byte, v float32) {
	binary.BigEndian.PutUint32(b, math.Float32bits(v))
}

func getFloat32(b []byte) float32 {
	return math.Float32frombits(binary.BigEndian.Uint32(b))
}

// MarshalBinary encodes the snapshot into its fixed wire layout.
func (s *SceneState) MarshalBinary() ([]byte, error) {
	buf := make([]byte, SceneStateSize)
	putFloat32(buf[0:4], s.Position.X())
	putFloat32(buf[4:8], s.Position.Y())
	putFloat32(buf[8:12], s.Position.Z())
	putFloat32(buf[12:16], s.Yaw)
	putFloat32(buf[16:20], s.TimeDelta)
	binary.BigEndian.PutUint32(buf[20:24], s.SpawnCount)
	if s.ResetScene {
		buf[24] |= stateFlagReset
	}
	return buf, nil
}

// UnmarshalBinary decodes a snapshot, rejecting short or oversized
// records so a torn frame can never be half-applied.
func (s *SceneState) UnmarshalBinary(data []byte) error {
	if len(data) != SceneStateSize {
		return fmt.Errorf("scene state: expected %d bytes, got %d", SceneStateSize, len(data))
	}
	s.Position = mgl32.Vec3{
		getFloat32(data[0:4]),
		getFloat32(data[4:8]),
		getFloat32(data[8:12]),
	}
	s.Yaw = getFloat32(data[12:16])
	s.TimeDelta = getFloat32(data[16:20])
	s.SpawnCount = binary.BigEndian.Uint32(data[20:24])
	s.ResetScene = data[24]&stateFlagReset != 0
	return nil
}
