package fountain

import (
	"encoding/binary"
	"errors"
	"io"
)

// MessageType identifies the semantic meaning of a cluster message.
type MessageType uint8

const (
	// Handshake, exchanged once per connection
	MsgHello MessageType = 0x01 // replica -> master, payload: peer id
	MsgSeed  MessageType = 0x02 // master -> replica, payload: RNG seed

	// Per-frame traffic
	MsgState MessageType = 0x10 // master -> replicas, payload: SceneState
	MsgAck   MessageType = 0x11 // replica -> master, barrier acknowledgment

	// Shutdown
	MsgQuit MessageType = 0x20 // master -> replicas, no payload
)

// Every message on the wire starts with a fixed 8-byte header:
// [Type:1][Flags:1][Seq:4][Len:2], big-endian.
const headerSize = 8

const flagNone uint8 = 0x00

// Message is one framed cluster message. Seq carries the frame number
// for MsgState and echoes it back for MsgAck.
type Message struct {
	Type    MessageType
	Flags   uint8
	Seq     uint32
	Payload []byte
}

// Encode writes the framed message to w.
func (m *Message) Encode(w io.Writer) error {
	payloadLen := len(m.Payload)
	if payloadLen > 65535 {
		return errors.New("payload exceeds maximum size")
	}

	header := make([]byte, headerSize)
	header[0] = byte(m.Type)
	header[1] = m.Flags
	binary.BigEndian.PutUint32(header[2:6], m.Seq)
	binary.BigEndian.PutUint16(header[6:8], uint16(payloadLen))

	if _, err := w.Write(header); err != nil {
		return err
	}
	if payloadLen > 0 {
		if _, err := w.Write(m.Payload); err != nil {
			return err
		}
	}
	return nil
}

// Decode blocks until a full message has been read from r.
func Decode(r io.Reader) (*Message, error) {
	header := make([]byte, headerSize)
	if _, err := io.ReadFull(r, header); err != nil {
		return nil, err
	}

	payloadLen := binary.BigEndian.Uint16(header[6:8])

	m := &Message{
		Type:  MessageType(header[0]),
		Flags: header[1],
		Seq:   binary.BigEndian.Uint32(header[2:6]),
	}
	if payloadLen > 0 {
		m.Payload = make([]byte, payloadLen)
		if _, err := io.ReadFull(r, m.Payload); err != nil {
			return nil, err
		}
	}
	return m, nil
}

func NewMessage(t MessageType, payload []byte) *Message {
	return &Message{
		Type:    t,
		Flags:   flagNone,
		Payload: payload,
	}
}
