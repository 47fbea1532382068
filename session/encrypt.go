package session

import (
	"fmt"

	"github.com/cvsouth/mtproto-go/envelope"
)

// CreateEncryptedMessage builds the DecryptedData for an outgoing
// content message with the given body. If acks are pending, it wraps
// a MsgsAck draining to_ack and body into a MessageContainer instead,
// generating the ack's (non-content) message_id before the body's
// (content) message_id so the container's contents keep strictly
// increasing ids, then uses the body's larger id as the container's
// own outer message_id so the caller can still correlate server
// replies with the original body (spec §4.4 Ack batching, mirroring
// the original source's create_encrypted_message_with_acks, which
// generates the ack message first and takes
// msg_container.messages[1].msg_id as the container's own id).
func (s *Session) CreateEncryptedMessage(body []byte) (*envelope.DecryptedData, error) {
	s.mu.Lock()
	if s.authKey == nil {
		s.mu.Unlock()
		return nil, ErrNoAuthKey
	}
	pendingAcks := s.drainAckLocked()

	var innerMsgID int64
	var innerSeqNo int32
	if len(pendingAcks) > 0 {
		innerMsgID = s.nextMessageIDLocked()
		innerSeqNo = s.nextSeqNoLocked(false)
	}
	msgID := s.nextMessageIDLocked()
	seqNo := s.nextSeqNoLocked(true)
	s.mu.Unlock()

	salt, err := s.LatestServerSalt()
	if err != nil {
		return nil, fmt.Errorf("session: create encrypted message: %w", err)
	}

	payload := body

	if len(pendingAcks) > 0 {
		ack := &envelope.MsgsAck{MsgIDs: pendingAcks}
		ackBody, err := ack.MarshalTL()
		if err != nil {
			return nil, fmt.Errorf("session: marshal pending acks: %w", err)
		}
		container := &envelope.MessageContainer{Messages: []envelope.ContainedMessage{
			{MsgID: innerMsgID, SeqNo: innerSeqNo, Body: ackBody},
			{MsgID: msgID, SeqNo: seqNo, Body: body},
		}}
		payload, err = container.MarshalTL()
		if err != nil {
			return nil, fmt.Errorf("session: marshal message container: %w", err)
		}
	}

	return &envelope.DecryptedData{
		Salt:      salt,
		SessionID: s.sessionID,
		MessageID: msgID,
		SeqNo:     seqNo,
		Body:      payload,
	}, nil
}
