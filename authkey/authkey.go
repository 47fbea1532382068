// Package authkey implements the AuthKey value type: the 256-byte secret
// shared between client and server after key exchange, along with the
// derived fingerprint and aux hash used to identify and bind it (spec §3).
package authkey

import (
	"crypto/sha1"
	"encoding/binary"
	"errors"
	"fmt"
)

const keyLen = 256

// ErrAuthKeyTooLong is returned by New when the raw key exceeds keyLen
// bytes.
var ErrAuthKeyTooLong = errors.New("authkey: key longer than 256 bytes")

// AuthKey is an immutable, right-aligned 256-byte secret. Fingerprint
// and AuxHash are derived once at construction and cached, matching the
// value's immutability contract (spec §3, §9 Key lifecycle).
type AuthKey struct {
	key         [keyLen]byte
	fingerprint int64
	auxHash     int64
}

// New right-aligns raw into a 256-byte key, zero-padding on the left if
// it is shorter. It rejects inputs longer than 256 bytes.
func New(raw []byte) (*AuthKey, error) {
	if len(raw) > keyLen {
		return nil, fmt.Errorf("%w: got %d bytes", ErrAuthKeyTooLong, len(raw))
	}
	k := &AuthKey{}
	copy(k.key[keyLen-len(raw):], raw)

	digest := sha1.Sum(k.key[:])
	k.auxHash = int64(binary.LittleEndian.Uint64(digest[0:8]))
	k.fingerprint = int64(binary.LittleEndian.Uint64(digest[12:20]))
	return k, nil
}

// Bytes returns the 256-byte key. The returned slice aliases the key's
// internal storage; callers must not mutate it.
func (k *AuthKey) Bytes() []byte {
	return k.key[:]
}

// Fingerprint is the low-order 8 bytes of SHA1(key)[12:20], used as the
// auth_key_id on the wire (spec §3, §4.2).
func (k *AuthKey) Fingerprint() int64 {
	return k.fingerprint
}

// AuxHash is the first 8 bytes of SHA1(key), used as input to
// NewNonceHash during key exchange (spec §3, feature 1 in SPEC_FULL.md).
func (k *AuthKey) AuxHash() int64 {
	return k.auxHash
}

// NewNonceHash computes auth_key.new_nonce_hash(n, new_nonce): SHA1 of
// new_nonce followed by a one-byte selector and the key's aux hash,
// truncated to the low 128 bits (spec §4.3 transition 4, SPEC_FULL.md
// feature 1).
func (k *AuthKey) NewNonceHash(n byte, newNonce [32]byte) [16]byte {
	var buf [41]byte
	copy(buf[0:32], newNonce[:])
	buf[32] = n
	binary.LittleEndian.PutUint64(buf[33:41], uint64(k.auxHash))

	digest := sha1.Sum(buf[:])
	var out [16]byte
	copy(out[:], digest[4:20])
	return out
}
