// Package envelope implements the plaintext and encrypted Message wire
// formats, message-key derivation, and container framing (spec §3
// Message<T>, §4.4 Envelope assembly, §6 Wire formats).
package envelope

import (
	"encoding/binary"
	"fmt"
)

// EncodePlain serializes a plaintext message: auth_key_id=0 (8 bytes),
// message_id (8 bytes), body_length (4 bytes), then body (spec §6).
func EncodePlain(msgID int64, body []byte) []byte {
	out := make([]byte, 20+len(body))
	// auth_key_id is zero for plaintext messages; the first 8 bytes are
	// left as the zero value.
	binary.LittleEndian.PutUint64(out[8:16], uint64(msgID))
	binary.LittleEndian.PutUint32(out[16:20], uint32(len(body)))
	copy(out[20:], body)
	return out
}

// DecodePlain parses a plaintext message frame produced by EncodePlain.
func DecodePlain(frame []byte) (msgID int64, body []byte, err error) {
	if len(frame) < 20 {
		return 0, nil, fmt.Errorf("envelope: plaintext frame too short (%d bytes)", len(frame))
	}
	authKeyID := int64(binary.LittleEndian.Uint64(frame[0:8]))
	if authKeyID != 0 {
		return 0, nil, fmt.Errorf("envelope: plaintext frame has non-zero auth_key_id %d", authKeyID)
	}
	msgID = int64(binary.LittleEndian.Uint64(frame[8:16]))
	bodyLen := binary.LittleEndian.Uint32(frame[16:20])
	if int(bodyLen) != len(frame)-20 {
		return 0, nil, fmt.Errorf("envelope: declared body length %d does not match frame (%d bytes available)", bodyLen, len(frame)-20)
	}
	body = make([]byte, bodyLen)
	copy(body, frame[20:])
	return msgID, body, nil
}
