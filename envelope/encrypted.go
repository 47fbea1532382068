package envelope

import (
	"bytes"
	"crypto/rand"
	"errors"
	"fmt"

	"github.com/cvsouth/mtproto-go/authkey"
	"github.com/cvsouth/mtproto-go/mtcrypto"
	"github.com/cvsouth/mtproto-go/tl"
)

// ErrWrongFingerprint is returned by Decrypt when the frame's
// auth_key_id does not match the session's auth key (spec §4.2
// Message decryption, §7).
var ErrWrongFingerprint = errors.New("envelope: auth_key_id does not match auth key fingerprint")

// ErrAuthenticationFailure is returned by VerifyMessageKey when the
// recomputed message key does not match the one carried on the wire
// (spec §4.2, §7).
var ErrAuthenticationFailure = errors.New("envelope: message key does not authenticate plaintext")

// DecryptedData is the body that gets AES-IGE encrypted inside an
// encrypted Message (spec §3 Message<T>, §4.4 Envelope assembly).
type DecryptedData struct {
	Salt      int64
	SessionID int64
	MessageID int64
	SeqNo     int32
	Body      []byte
}

// MarshalTL serializes the fields in wire order: salt, session_id,
// msg_id, seq_no, body_length, body (spec §4.4).
func (d *DecryptedData) MarshalTL() ([]byte, error) {
	var buf bytes.Buffer
	w := tl.NewWriter(&buf)
	if err := w.WriteInt64(d.Salt); err != nil {
		return nil, err
	}
	if err := w.WriteInt64(d.SessionID); err != nil {
		return nil, err
	}
	if err := w.WriteInt64(d.MessageID); err != nil {
		return nil, err
	}
	if err := w.WriteInt32(d.SeqNo); err != nil {
		return nil, err
	}
	if err := w.WriteUint32(uint32(len(d.Body))); err != nil {
		return nil, err
	}
	if _, err := w.Write(d.Body); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// UnmarshalDecryptedData parses the layout MarshalTL produces out of an
// already AES-IGE-decrypted plaintext buffer. Trailing zero padding
// (added to round up to a multiple of 16 bytes) is tolerated and
// ignored.
func UnmarshalDecryptedData(plaintext []byte) (*DecryptedData, error) {
	r := tl.NewReader(bytes.NewReader(plaintext))
	d := &DecryptedData{}
	var err error
	if d.Salt, err = r.ReadInt64(); err != nil {
		return nil, fmt.Errorf("envelope: read salt: %w", err)
	}
	if d.SessionID, err = r.ReadInt64(); err != nil {
		return nil, fmt.Errorf("envelope: read session_id: %w", err)
	}
	if d.MessageID, err = r.ReadInt64(); err != nil {
		return nil, fmt.Errorf("envelope: read message_id: %w", err)
	}
	if d.SeqNo, err = r.ReadInt32(); err != nil {
		return nil, fmt.Errorf("envelope: read seq_no: %w", err)
	}
	bodyLen, err := r.ReadUint32()
	if err != nil {
		return nil, fmt.Errorf("envelope: read body_length: %w", err)
	}
	if int(bodyLen) > len(plaintext) {
		return nil, fmt.Errorf("envelope: declared body length %d exceeds available plaintext", bodyLen)
	}
	d.Body = make([]byte, bodyLen)
	if err := r.ReadFullInto(d.Body); err != nil {
		return nil, fmt.Errorf("envelope: read body: %w", err)
	}
	return d, nil
}

// Encrypt computes the message key from decrypted (SHA1(decrypted)[4:20]),
// derives AES parameters, zero-pads decrypted to a multiple of 16 bytes,
// and encrypts it with AES-IGE, returning the frame's three fields
// (spec §4.2 Message encryption).
func Encrypt(key *authkey.AuthKey, decrypted []byte) (authKeyID int64, msgKey [16]byte, ciphertext []byte, err error) {
	hash := mtcrypto.SHA1Bytes(decrypted)
	copy(msgKey[:], hash[4:20])

	aesKey, aesIV := mtcrypto.DeriveMessageAESParams(key, msgKey, false)

	padded := decrypted
	if rem := len(padded) % 16; rem != 0 {
		padded = make([]byte, len(decrypted)+16-rem)
		copy(padded, decrypted)
	}

	ciphertext, err = mtcrypto.IGEEncrypt(aesKey[:], aesIV, padded)
	if err != nil {
		return 0, msgKey, nil, fmt.Errorf("envelope: encrypt: %w", err)
	}
	return key.Fingerprint(), msgKey, ciphertext, nil
}

// Decrypt validates authKeyID against key's fingerprint, derives AES
// parameters for the decrypt direction, and runs AES-IGE decrypt,
// returning the padded plaintext. Callers must additionally check the
// result with VerifyMessageKey and the session_id, per spec §4.2
// Message decryption.
func Decrypt(key *authkey.AuthKey, authKeyID int64, msgKey [16]byte, ciphertext []byte) ([]byte, error) {
	if authKeyID != key.Fingerprint() {
		return nil, ErrWrongFingerprint
	}
	aesKey, aesIV := mtcrypto.DeriveMessageAESParams(key, msgKey, true)
	plaintext, err := mtcrypto.IGEDecrypt(aesKey[:], aesIV, ciphertext)
	if err != nil {
		return nil, fmt.Errorf("envelope: decrypt: %w", err)
	}
	return plaintext, nil
}

// VerifyMessageKey recomputes SHA1(plaintext)[4:20] and compares it
// against the msg_key carried on the wire, the authentication check
// spec §4.2 leaves to the caller after Decrypt.
func VerifyMessageKey(plaintext []byte, msgKey [16]byte) error {
	hash := mtcrypto.SHA1Bytes(plaintext)
	var want [16]byte
	copy(want[:], hash[4:20])
	if want != msgKey {
		return ErrAuthenticationFailure
	}
	return nil
}

// RandomSessionID draws a fresh random 64-bit session id for a new
// Session (spec §3: session_id is random at creation).
func RandomSessionID() (int64, error) {
	var buf [8]byte
	if _, err := rand.Read(buf[:]); err != nil {
		return 0, fmt.Errorf("envelope: generate session id: %w", err)
	}
	var v int64
	for i := 0; i < 8; i++ {
		v |= int64(buf[i]) << (8 * i)
	}
	return v, nil
}
