package mtcrypto

import (
	"crypto/rsa"
	"crypto/x509"
	"encoding/binary"
	"encoding/pem"
	"fmt"
	"math/big"
)

// KnownKeys holds the server RSA public keys this client trusts,
// populated at package init from embedded PEM text (SPEC_FULL.md
// feature 4, grounded on the original source's KNOWN_KEYS table).
var KnownKeys []*rsa.PublicKey

func init() {
	for _, pemText := range embeddedPublicKeysPEM {
		block, _ := pem.Decode([]byte(pemText))
		if block == nil {
			panic("mtcrypto: failed to decode embedded RSA public key PEM")
		}
		parsed, err := x509.ParsePKIXPublicKey(block.Bytes)
		if err != nil {
			panic(fmt.Sprintf("mtcrypto: failed to parse embedded RSA public key: %v", err))
		}
		pub, ok := parsed.(*rsa.PublicKey)
		if !ok {
			panic("mtcrypto: embedded public key is not RSA")
		}
		KnownKeys = append(KnownKeys, pub)
	}
}

// embeddedPublicKeysPEM holds the RSA public keys this client trusts,
// in the same SubjectPublicKeyInfo PEM form the original KNOWN_KEYS
// table embeds them in. These are Telegram's own published MTProto
// server keys, not secrets — there is nothing to protect by omitting
// them, only a handshake that can't complete without them. Populate
// further keys at runtime via RegisterKey for deployments that need a
// different key set (e.g. a test DC with its own key).
var embeddedPublicKeysPEM = []string{
	`-----BEGIN PUBLIC KEY-----
MIIBIjANBgkqhkiG9w0BAQEFAAOCAQ8AMIIBCgKCAQEAwVACPi9w23mF3tBkdZz+
zwrzKOaaQdr01vAbU4E1pvkfj4sqDsm6lyDONS789sVoD/xCS9Y0hkkC3gtL1tSf
TlgCMOOul9lcixlEKzwKENj1Yz/s7daSan9tqw3bfUV/nqgbhGX81v/+7RFAEd+R
wFnK7a+XYl9sluzHRyVVaTTveB2GazTwEfzk2DWgkBluml8OREmvfraX3bkHZJTK
X4EQSjBbbdJ2ZXIsRrYOXfaA+xayEGB+8hdlLmAjbCVfaigxX0CDqWeR1yFL9kwd
9P0NsZRPsmoqVwMbMu7mStFai6aIhc3nSlv8kg9qv1m6XHVQY3PnEw+QQtqSIXkl
HwIDAQAB
-----END PUBLIC KEY-----`,
}

// RegisterKey adds a trusted RSA public key to KnownKeys at runtime.
func RegisterKey(pub *rsa.PublicKey) {
	KnownKeys = append(KnownKeys, pub)
}

// Fingerprint is the low-order 8 bytes of SHA1 of the key's
// (modulus, exponent) serialized as TL bytestrings (spec §4.2 RSA key
// utilities).
func Fingerprint(pub *rsa.PublicKey) int64 {
	n := encodeTLBytes(pub.N.Bytes())
	e := encodeTLBytes(big.NewInt(int64(pub.E)).Bytes())
	digest := SHA1Bytes(n, e)
	return int64(binary.LittleEndian.Uint64(digest[12:20]))
}

// encodeTLBytes is the TL bytestring encoding used purely for the
// fingerprint hash input: length prefix, payload, then zero padding to
// a 4-byte boundary, as in any TL bytestring.
func encodeTLBytes(b []byte) []byte {
	var out []byte
	n := len(b)
	switch {
	case n < 254:
		out = append(out, byte(n))
	default:
		out = append(out, 254, byte(n), byte(n>>8), byte(n>>16))
	}
	out = append(out, b...)
	for len(out)%4 != 0 {
		out = append(out, 0)
	}
	return out
}

// FindFirstKey returns the first entry of KnownKeys whose fingerprint
// appears in fingerprints, or ok=false if none matches (spec §4.2).
func FindFirstKey(fingerprints []int64) (pub *rsa.PublicKey, ok bool) {
	for _, key := range KnownKeys {
		fp := Fingerprint(key)
		for _, want := range fingerprints {
			if fp == want {
				return key, true
			}
		}
	}
	return nil, false
}

// RSAEncrypt pads input by prepending its SHA-1 digest and random-padding
// to 255 bytes, prefixes a zero byte, and performs raw (textbook) RSA
// encryption with no further padding, producing a 256-byte result
// (spec §4.2 RSA key utilities).
func RSAEncrypt(pub *rsa.PublicKey, input []byte) ([]byte, error) {
	padded, err := SHA1AndOrPad(input, true, Total255Random)
	if err != nil {
		return nil, fmt.Errorf("mtcrypto: rsa encrypt padding: %w", err)
	}

	data := make([]byte, 0, len(padded)+1)
	data = append(data, 0)
	data = append(data, padded...)

	m := new(big.Int).SetBytes(data)
	if m.Cmp(pub.N) >= 0 {
		return nil, fmt.Errorf("mtcrypto: rsa encrypt: padded message not smaller than modulus")
	}
	c := new(big.Int).Exp(m, big.NewInt(int64(pub.E)), pub.N)

	out := make([]byte, 256)
	c.FillBytes(out)
	return out, nil
}
