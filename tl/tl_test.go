package tl

import (
	"bytes"
	"testing"
)

func TestBoolWireBytes(t *testing.T) {
	var buf bytes.Buffer
	w := NewWriter(&buf)
	if err := w.WriteBool(true); err != nil {
		t.Fatalf("WriteBool(true): %v", err)
	}
	wantTrue := []byte{0xb5, 0x75, 0x72, 0x99}
	if !bytes.Equal(buf.Bytes(), wantTrue) {
		t.Fatalf("WriteBool(true) = % x, want % x", buf.Bytes(), wantTrue)
	}

	buf.Reset()
	if err := w.WriteBool(false); err != nil {
		t.Fatalf("WriteBool(false): %v", err)
	}
	wantFalse := []byte{0x37, 0x97, 0x79, 0xbc}
	if !bytes.Equal(buf.Bytes(), wantFalse) {
		t.Fatalf("WriteBool(false) = % x, want % x", buf.Bytes(), wantFalse)
	}
}

func TestBoolRoundTrip(t *testing.T) {
	for _, v := range []bool{true, false} {
		var buf bytes.Buffer
		w := NewWriter(&buf)
		if err := w.WriteBool(v); err != nil {
			t.Fatalf("WriteBool(%v): %v", v, err)
		}
		got, err := NewReader(&buf).ReadBool()
		if err != nil {
			t.Fatalf("ReadBool: %v", err)
		}
		if got != v {
			t.Fatalf("round trip = %v, want %v", got, v)
		}
	}
}

func TestBytestringBoundaries(t *testing.T) {
	for _, n := range []int{0, 1, 253, 254, 255, 300, 1 << 16} {
		payload := bytes.Repeat([]byte{0xab}, n)
		var buf bytes.Buffer
		w := NewWriter(&buf)
		if err := w.WriteBytes(payload); err != nil {
			t.Fatalf("WriteBytes(len %d): %v", n, err)
		}
		if buf.Len()%4 != 0 {
			t.Fatalf("encoded length %d for payload len %d is not 4-byte aligned", buf.Len(), n)
		}
		got, err := NewReader(&buf).ReadBytes()
		if err != nil {
			t.Fatalf("ReadBytes(len %d): %v", n, err)
		}
		if !bytes.Equal(got, payload) {
			t.Fatalf("round trip len %d: got %d bytes, want %d", n, len(got), len(payload))
		}
	}
}

func TestVectorRoundTrip(t *testing.T) {
	encodeI32 := func(w *Writer, v int32) error { return w.WriteInt32(v) }
	decodeI32 := func(r *Reader) (int32, error) { return r.ReadInt32() }

	for _, n := range []int{0, 1, 2, 1 << 16} {
		items := make([]int32, n)
		for i := range items {
			items[i] = int32(i)
		}
		var buf bytes.Buffer
		w := NewWriter(&buf)
		if err := WriteBoxedVector(w, items, encodeI32); err != nil {
			t.Fatalf("WriteBoxedVector(len %d): %v", n, err)
		}
		got, err := ReadBoxedVector(NewReader(&buf), decodeI32)
		if err != nil {
			t.Fatalf("ReadBoxedVector(len %d): %v", n, err)
		}
		if len(got) != len(items) {
			t.Fatalf("round trip len %d: got %d elements", n, len(got))
		}
		for i := range items {
			if got[i] != items[i] {
				t.Fatalf("element %d: got %d, want %d", i, got[i], items[i])
			}
		}
	}
}

func TestVectorRejectsWrongConstructor(t *testing.T) {
	var buf bytes.Buffer
	w := NewWriter(&buf)
	_ = w.WriteConstructorID(idBoolTrue)
	_, err := ReadBoxedVector(NewReader(&buf), func(r *Reader) (int32, error) { return r.ReadInt32() })
	if err == nil {
		t.Fatal("expected error decoding bool id as vector")
	}
}

func TestAlignmentOfMixedWrites(t *testing.T) {
	var buf bytes.Buffer
	w := NewWriter(&buf)
	if err := w.WriteBytes([]byte{1, 2, 3}); err != nil {
		t.Fatal(err)
	}
	if err := w.WriteInt32(42); err != nil {
		t.Fatal(err)
	}
	r := NewReader(&buf)
	gotBytes, err := r.ReadBytes()
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.Equal(gotBytes, []byte{1, 2, 3}) {
		t.Fatalf("got %v", gotBytes)
	}
	gotInt, err := r.ReadInt32()
	if err != nil {
		t.Fatal(err)
	}
	if gotInt != 42 {
		t.Fatalf("got %d, want 42", gotInt)
	}
}

func TestRegistryUnknownType(t *testing.T) {
	reg := NewRegistry()
	var buf bytes.Buffer
	w := NewWriter(&buf)
	_ = w.WriteConstructorID(ConstructorID(0xdeadbeef))
	_, err := reg.Decode(NewReader(&buf))
	if err == nil {
		t.Fatal("expected ErrUnknownType")
	}
}

func TestRegistryRegisterTwicePanics(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Fatal("expected panic registering duplicate constructor id")
		}
	}()
	reg := NewRegistry()
	ctor := func(r *Reader) (Object, error) { return nil, nil }
	reg.Register(ConstructorID(1), ctor)
	reg.Register(ConstructorID(1), ctor)
}
