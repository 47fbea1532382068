package mtcrypto

import (
	"bytes"
	"crypto/rand"
	"testing"

	"github.com/cvsouth/mtproto-go/authkey"
)

func TestDecomposePQKnownVector(t *testing.T) {
	p, q, err := DecomposePQ(0x17ED48941A08F981)
	if err != nil {
		t.Fatalf("DecomposePQ: %v", err)
	}
	if p != 0x494C553B || q != 0x53911073 {
		t.Fatalf("got (%#x, %#x), want (0x494C553B, 0x53911073)", p, q)
	}
	if p >= q {
		t.Fatalf("expected p < q, got p=%#x q=%#x", p, q)
	}
}

func TestIGERoundTrip(t *testing.T) {
	for i := 0; i < 32; i++ {
		key := make([]byte, 32)
		if _, err := rand.Read(key); err != nil {
			t.Fatal(err)
		}
		var iv [32]byte
		if _, err := rand.Read(iv[:]); err != nil {
			t.Fatal(err)
		}
		plaintext := make([]byte, 2048)
		if _, err := rand.Read(plaintext); err != nil {
			t.Fatal(err)
		}

		ciphertext, err := IGEEncrypt(key, iv, plaintext)
		if err != nil {
			t.Fatalf("IGEEncrypt: %v", err)
		}
		if bytes.Equal(ciphertext, plaintext) {
			t.Fatal("ciphertext equals plaintext")
		}
		decoded, err := IGEDecrypt(key, iv, ciphertext)
		if err != nil {
			t.Fatalf("IGEDecrypt: %v", err)
		}
		if !bytes.Equal(decoded, plaintext) {
			t.Fatalf("round trip %d did not reproduce plaintext", i)
		}
	}
}

func TestIGERejectsUnalignedInput(t *testing.T) {
	key := make([]byte, 32)
	var iv [32]byte
	if _, err := IGEEncrypt(key, iv, make([]byte, 17)); err == nil {
		t.Fatal("expected error for non-block-aligned plaintext")
	}
}

func TestSHA1AndOrPadModes(t *testing.T) {
	input := []byte("hello mtproto")

	padded255, err := SHA1AndOrPad(input, true, Total255)
	if err != nil {
		t.Fatalf("Total255: %v", err)
	}
	if len(padded255) != 255 {
		t.Fatalf("Total255 length = %d, want 255", len(padded255))
	}
	digest := SHA1Bytes(input)
	if !bytes.Equal(padded255[:20], digest[:]) {
		t.Fatal("Total255 did not prepend SHA1(input)")
	}

	paddedMod16, err := SHA1AndOrPad(input, false, Mod16)
	if err != nil {
		t.Fatalf("Mod16: %v", err)
	}
	if len(paddedMod16)%16 != 0 {
		t.Fatalf("Mod16 length %d is not a multiple of 16", len(paddedMod16))
	}

	paddedRandom, err := SHA1AndOrPad(input, true, Total255Random)
	if err != nil {
		t.Fatalf("Total255Random: %v", err)
	}
	if len(paddedRandom) != 255 {
		t.Fatalf("Total255Random length = %d, want 255", len(paddedRandom))
	}
}

func TestDeriveMessageAESParamsDiffersByDirection(t *testing.T) {
	raw := make([]byte, 256)
	for i := range raw {
		raw[i] = byte(i)
	}
	key, err := authkey.New(raw)
	if err != nil {
		t.Fatal(err)
	}
	var msgKey [16]byte
	for i := range msgKey {
		msgKey[i] = byte(i * 5)
	}

	encKey, encIV := DeriveMessageAESParams(key, msgKey, false)
	decKey, decIV := DeriveMessageAESParams(key, msgKey, true)
	if encKey == decKey && encIV == decIV {
		t.Fatal("encrypt and decrypt directions produced identical AES parameters")
	}

	encKey2, encIV2 := DeriveMessageAESParams(key, msgKey, false)
	if encKey != encKey2 || encIV != encIV2 {
		t.Fatal("derivation is not deterministic")
	}
}
