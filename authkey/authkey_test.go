package authkey

import "testing"

func TestNewRightAligns(t *testing.T) {
	raw := make([]byte, 10)
	for i := range raw {
		raw[i] = byte(i + 1)
	}
	k, err := New(raw)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	b := k.Bytes()
	for i := 0; i < keyLen-10; i++ {
		if b[i] != 0 {
			t.Fatalf("expected leading zero at %d, got %d", i, b[i])
		}
	}
	for i := 0; i < 10; i++ {
		if b[keyLen-10+i] != raw[i] {
			t.Fatalf("byte %d: got %d, want %d", i, b[keyLen-10+i], raw[i])
		}
	}
}

func TestNewFullLengthKeepsAllBytes(t *testing.T) {
	raw := make([]byte, keyLen)
	for i := range raw {
		raw[i] = byte(i)
	}
	k, err := New(raw)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if string(k.Bytes()) != string(raw) {
		t.Fatal("full-length key was not preserved exactly")
	}
}

func TestNewRejectsOverlong(t *testing.T) {
	raw := make([]byte, keyLen+1)
	if _, err := New(raw); err == nil {
		t.Fatal("expected ErrAuthKeyTooLong")
	}
}

func TestFingerprintDeterministic(t *testing.T) {
	raw := make([]byte, keyLen)
	for i := range raw {
		raw[i] = byte(i * 7)
	}
	k1, _ := New(raw)
	k2, _ := New(raw)
	if k1.Fingerprint() != k2.Fingerprint() {
		t.Fatal("fingerprint not deterministic")
	}
	if k1.AuxHash() != k2.AuxHash() {
		t.Fatal("aux hash not deterministic")
	}
}

func TestNewNonceHashDeterministic(t *testing.T) {
	raw := make([]byte, keyLen)
	for i := range raw {
		raw[i] = byte(i * 3)
	}
	k, _ := New(raw)
	var nonce [32]byte
	for i := range nonce {
		nonce[i] = byte(i)
	}
	h1 := k.NewNonceHash(1, nonce)
	h2 := k.NewNonceHash(1, nonce)
	if h1 != h2 {
		t.Fatal("new nonce hash not deterministic")
	}
	h3 := k.NewNonceHash(2, nonce)
	if h1 == h3 {
		t.Fatal("different selectors produced the same hash")
	}
}
