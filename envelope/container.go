package envelope

import (
	"bytes"
	"fmt"

	"github.com/cvsouth/mtproto-go/tl"
)

// Manually-shaped TL entities not drawn from a generated schema
// (SPEC_FULL.md feature 2), matching the public MTProto layer's wire
// IDs for msg_container and msgs_ack.
const (
	idMessageContainer tl.ConstructorID = 0x73f1f8dc
	idMsgsAck          tl.ConstructorID = 0x62d6b459
)

// ContainedMessage is one entry of a MessageContainer: an inner
// message with its own id, sequence number, and length-prefixed boxed
// body (spec §3 MessageContainer).
type ContainedMessage struct {
	MsgID int64
	SeqNo int32
	Body  []byte
}

// MessageContainer batches several inner messages into a single
// content message so the server can acknowledge a connection-saving
// ack alongside real traffic (spec §3 MessageContainer, §4.4 Ack
// batching).
type MessageContainer struct {
	Messages []ContainedMessage
}

// MarshalTL serializes the container as
// msg_container#73f1f8dc messages:vector<%Message> = MessageContainer;
func (c *MessageContainer) MarshalTL() ([]byte, error) {
	var buf bytes.Buffer
	w := tl.NewWriter(&buf)
	if err := w.WriteConstructorID(idMessageContainer); err != nil {
		return nil, err
	}
	encode := func(w *tl.Writer, m ContainedMessage) error {
		if err := w.WriteInt64(m.MsgID); err != nil {
			return err
		}
		if err := w.WriteInt32(m.SeqNo); err != nil {
			return err
		}
		if err := w.WriteUint32(uint32(len(m.Body))); err != nil {
			return err
		}
		_, err := w.Write(m.Body)
		return err
	}
	if err := tl.WriteBareVector(w, c.Messages, encode); err != nil {
		return nil, fmt.Errorf("envelope: marshal message container: %w", err)
	}
	return buf.Bytes(), nil
}

// UnmarshalMessageContainer decodes a msg_container frame, verifying
// its constructor id.
func UnmarshalMessageContainer(data []byte) (*MessageContainer, error) {
	r := tl.NewReader(bytes.NewReader(data))
	id, err := r.ReadConstructorID()
	if err != nil {
		return nil, err
	}
	if id != idMessageContainer {
		return nil, &tl.InvalidTypeError{Expected: []tl.ConstructorID{idMessageContainer}, Got: id}
	}
	decode := func(r *tl.Reader) (ContainedMessage, error) {
		var m ContainedMessage
		var err error
		if m.MsgID, err = r.ReadInt64(); err != nil {
			return m, err
		}
		if m.SeqNo, err = r.ReadInt32(); err != nil {
			return m, err
		}
		bodyLen, err := r.ReadUint32()
		if err != nil {
			return m, err
		}
		m.Body = make([]byte, bodyLen)
		if err := r.ReadFullInto(m.Body); err != nil {
			return m, err
		}
		return m, nil
	}
	messages, err := tl.ReadBareVector(r, decode)
	if err != nil {
		return nil, fmt.Errorf("envelope: unmarshal message container: %w", err)
	}
	return &MessageContainer{Messages: messages}, nil
}

// MsgsAck is the acknowledgement-only entity batched alongside real
// traffic by ack batching (spec §4.4):
// msgs_ack#62d6b459 msg_ids:vector<long> = MsgsAck;
type MsgsAck struct {
	MsgIDs []int64
}

func (a *MsgsAck) MarshalTL() ([]byte, error) {
	var buf bytes.Buffer
	w := tl.NewWriter(&buf)
	if err := w.WriteConstructorID(idMsgsAck); err != nil {
		return nil, err
	}
	encode := func(w *tl.Writer, id int64) error { return w.WriteInt64(id) }
	if err := tl.WriteBareVector(w, a.MsgIDs, encode); err != nil {
		return nil, fmt.Errorf("envelope: marshal msgs_ack: %w", err)
	}
	return buf.Bytes(), nil
}

func UnmarshalMsgsAck(data []byte) (*MsgsAck, error) {
	r := tl.NewReader(bytes.NewReader(data))
	id, err := r.ReadConstructorID()
	if err != nil {
		return nil, err
	}
	if id != idMsgsAck {
		return nil, &tl.InvalidTypeError{Expected: []tl.ConstructorID{idMsgsAck}, Got: id}
	}
	decode := func(r *tl.Reader) (int64, error) { return r.ReadInt64() }
	ids, err := tl.ReadBareVector(r, decode)
	if err != nil {
		return nil, fmt.Errorf("envelope: unmarshal msgs_ack: %w", err)
	}
	return &MsgsAck{MsgIDs: ids}, nil
}
