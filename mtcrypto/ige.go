package mtcrypto

import (
	"crypto/aes"
	"fmt"
)

const blockSize = 16

// IGEEncrypt encrypts plaintext under AES-256 in IGE (Infinite Garble
// Extension) mode. iv must be exactly 32 bytes (iv1 ‖ iv2); plaintext
// must be a multiple of 16 bytes (spec §4.2 AES-IGE).
func IGEEncrypt(key []byte, iv [32]byte, plaintext []byte) ([]byte, error) {
	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, fmt.Errorf("mtcrypto: aes cipher: %w", err)
	}
	if len(plaintext)%blockSize != 0 {
		return nil, fmt.Errorf("mtcrypto: plaintext length %d is not a multiple of %d", len(plaintext), blockSize)
	}

	var iv1, iv2 [blockSize]byte
	copy(iv1[:], iv[0:16])
	copy(iv2[:], iv[16:32])

	ciphertext := make([]byte, len(plaintext))
	var tmp [blockSize]byte
	for off := 0; off < len(plaintext); off += blockSize {
		p := plaintext[off : off+blockSize]
		for i := 0; i < blockSize; i++ {
			tmp[i] = p[i] ^ iv1[i]
		}
		block.Encrypt(tmp[:], tmp[:])
		for i := 0; i < blockSize; i++ {
			tmp[i] ^= iv2[i]
		}
		copy(ciphertext[off:off+blockSize], tmp[:])
		copy(iv1[:], tmp[:])
		copy(iv2[:], p)
	}
	return ciphertext, nil
}

// IGEDecrypt reverses IGEEncrypt.
func IGEDecrypt(key []byte, iv [32]byte, ciphertext []byte) ([]byte, error) {
	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, fmt.Errorf("mtcrypto: aes cipher: %w", err)
	}
	if len(ciphertext)%blockSize != 0 {
		return nil, fmt.Errorf("mtcrypto: ciphertext length %d is not a multiple of %d", len(ciphertext), blockSize)
	}

	var iv1, iv2 [blockSize]byte
	copy(iv1[:], iv[0:16])
	copy(iv2[:], iv[16:32])

	plaintext := make([]byte, len(ciphertext))
	var tmp [blockSize]byte
	for off := 0; off < len(ciphertext); off += blockSize {
		c := ciphertext[off : off+blockSize]
		for i := 0; i < blockSize; i++ {
			tmp[i] = c[i] ^ iv2[i]
		}
		block.Decrypt(tmp[:], tmp[:])
		for i := 0; i < blockSize; i++ {
			tmp[i] ^= iv1[i]
		}
		copy(plaintext[off:off+blockSize], tmp[:])
		copy(iv1[:], c)
		copy(iv2[:], tmp[:])
	}
	return plaintext, nil
}
