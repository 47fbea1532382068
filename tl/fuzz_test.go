package tl

import (
	"bytes"
	"testing"
)

// FuzzReadBytes feeds arbitrary bytes at a bytestring decode: malformed
// length prefixes and truncated payloads must return an error, never
// panic or read past the buffer.
func FuzzReadBytes(f *testing.F) {
	f.Add([]byte{0x00})
	f.Add([]byte{0x03, 1, 2, 3})
	f.Add([]byte{254, 0, 0, 0})
	f.Add([]byte{254, 0xff, 0xff, 0xff})
	f.Add([]byte{})

	f.Fuzz(func(t *testing.T, data []byte) {
		_, _ = NewReader(bytes.NewReader(data)).ReadBytes()
	})
}

// FuzzReadString mirrors FuzzReadBytes through the string decode path.
func FuzzReadString(f *testing.F) {
	f.Add([]byte{0x05, 'h', 'e', 'l', 'l', 'o', 0, 0, 0})
	f.Add([]byte{})

	f.Fuzz(func(t *testing.T, data []byte) {
		_, _ = NewReader(bytes.NewReader(data)).ReadString()
	})
}

// FuzzReadBool feeds arbitrary constructor ids at the boxed bool
// decode, which must reject anything other than the two known ids.
func FuzzReadBool(f *testing.F) {
	f.Add([]byte{0xb5, 0x75, 0x72, 0x99})
	f.Add([]byte{0x37, 0x97, 0x79, 0xbc})
	f.Add([]byte{0, 0, 0, 0})
	f.Add([]byte{})

	f.Fuzz(func(t *testing.T, data []byte) {
		_, _ = NewReader(bytes.NewReader(data)).ReadBool()
	})
}

// FuzzBytesRoundTrip checks that anything WriteBytes can encode,
// ReadBytes decodes back unchanged, across arbitrary payloads.
func FuzzBytesRoundTrip(f *testing.F) {
	f.Add([]byte{})
	f.Add([]byte{1})
	f.Add(bytes.Repeat([]byte{0xab}, 253))
	f.Add(bytes.Repeat([]byte{0xcd}, 254))
	f.Add(bytes.Repeat([]byte{0xef}, 1<<16))

	f.Fuzz(func(t *testing.T, payload []byte) {
		var buf bytes.Buffer
		w := NewWriter(&buf)
		if err := w.WriteBytes(payload); err != nil {
			t.Fatalf("WriteBytes: %v", err)
		}
		got, err := NewReader(&buf).ReadBytes()
		if err != nil {
			t.Fatalf("ReadBytes: %v", err)
		}
		if !bytes.Equal(got, payload) && !(len(got) == 0 && len(payload) == 0) {
			t.Fatalf("round trip mismatch: got %d bytes, want %d", len(got), len(payload))
		}
	})
}

// FuzzReadBoxedVector feeds arbitrary bytes at the boxed-vector decode,
// which must reject a wrong constructor id or a truncated element
// stream without panicking.
func FuzzReadBoxedVector(f *testing.F) {
	f.Add([]byte{0x15, 0xc4, 0xb5, 0x1c, 0, 0, 0, 0})
	f.Add([]byte{})
	f.Add([]byte{1, 2, 3, 4})

	decodeI32 := func(r *Reader) (int32, error) { return r.ReadInt32() }
	f.Fuzz(func(t *testing.T, data []byte) {
		_, _ = ReadBoxedVector(NewReader(bytes.NewReader(data)), decodeI32)
	})
}
