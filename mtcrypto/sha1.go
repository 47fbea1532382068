// Package mtcrypto implements the cryptographic primitives the MTProto
// handshake and message envelope are built from: SHA-1 helpers, AES-IGE,
// RSA utilities, PQ factorization, and the DH/AES-parameter derivations
// (spec §4.2).
package mtcrypto

import (
	"crypto/rand"
	"crypto/sha1"
	"fmt"
)

// PaddingMode selects how SHA1AndOrPad extends its input after the
// optional SHA-1 prefix is prepended.
type PaddingMode int

const (
	// Total255 zero-pads to exactly 255 bytes, failing if the input is
	// already longer.
	Total255 PaddingMode = iota
	// Mod16 zero-pads up to the next multiple of 16 bytes.
	Mod16
	// Total255Random pads to 255 bytes with cryptographic random bytes.
	Total255Random
)

// SHA1Bytes concatenates parts and returns their SHA-1 digest.
func SHA1Bytes(parts ...[]byte) [20]byte {
	h := sha1.New()
	for _, p := range parts {
		h.Write(p)
	}
	var out [20]byte
	copy(out[:], h.Sum(nil))
	return out
}

// SHA1AndOrPad optionally prepends SHA1(input) to input, then pads the
// result per mode (spec §4.2 SHA-1 helpers).
func SHA1AndOrPad(input []byte, prependSHA1 bool, mode PaddingMode) ([]byte, error) {
	out := input
	if prependSHA1 {
		digest := SHA1Bytes(input)
		out = make([]byte, 0, len(digest)+len(input))
		out = append(out, digest[:]...)
		out = append(out, input...)
	}

	switch mode {
	case Total255:
		if len(out) > 255 {
			return nil, fmt.Errorf("mtcrypto: input of %d bytes exceeds Total255 padding", len(out))
		}
		padded := make([]byte, 255)
		copy(padded, out)
		return padded, nil

	case Mod16:
		rem := len(out) % 16
		if rem == 0 {
			return out, nil
		}
		padded := make([]byte, len(out)+16-rem)
		copy(padded, out)
		return padded, nil

	case Total255Random:
		if len(out) > 255 {
			return nil, fmt.Errorf("mtcrypto: input of %d bytes exceeds Total255Random padding", len(out))
		}
		padded := make([]byte, 255)
		copy(padded, out)
		if _, err := rand.Read(padded[len(out):]); err != nil {
			return nil, fmt.Errorf("mtcrypto: random padding: %w", err)
		}
		return padded, nil

	default:
		return nil, fmt.Errorf("mtcrypto: unknown padding mode %d", mode)
	}
}
