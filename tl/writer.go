package tl

import (
	"encoding/binary"
	"fmt"
	"io"
	"math"
)

// Writer writes TL-encoded values to a byte stream, tracking the byte
// position so bytestrings can be padded out to a 4-byte boundary
// (spec §4.1).
type Writer struct {
	w   io.Writer
	pos int
}

func NewWriter(w io.Writer) *Writer {
	return &Writer{w: w}
}

func (w *Writer) Write(buf []byte) (int, error) {
	n, err := w.w.Write(buf)
	w.pos += n
	return n, err
}

// Align emits zero bytes until the write position is a multiple of n.
func (w *Writer) Align(n int) error {
	rem := w.pos % n
	if rem == 0 {
		return nil
	}
	_, err := w.Write(make([]byte, n-rem))
	return err
}

func (w *Writer) WriteUint32(v uint32) error {
	var buf [4]byte
	binary.LittleEndian.PutUint32(buf[:], v)
	_, err := w.Write(buf[:])
	return err
}

func (w *Writer) WriteInt32(v int32) error {
	return w.WriteUint32(uint32(v))
}

func (w *Writer) WriteUint64(v uint64) error {
	var buf [8]byte
	binary.LittleEndian.PutUint64(buf[:], v)
	_, err := w.Write(buf[:])
	return err
}

func (w *Writer) WriteInt64(v int64) error {
	return w.WriteUint64(uint64(v))
}

func (w *Writer) WriteFloat64(v float64) error {
	return w.WriteUint64(math.Float64bits(v))
}

func (w *Writer) WriteInt128(v [16]byte) error {
	_, err := w.Write(v[:])
	return err
}

func (w *Writer) WriteInt256(v [32]byte) error {
	_, err := w.Write(v[:])
	return err
}

func (w *Writer) WriteConstructorID(id ConstructorID) error {
	return w.WriteUint32(uint32(id))
}

// WriteBytes encodes a length-prefixed, 4-byte-aligned bytestring
// (spec §4.1 Bytestrings).
func (w *Writer) WriteBytes(b []byte) error {
	n := len(b)
	switch {
	case n < 254:
		if err := w.writeRaw([]byte{byte(n)}); err != nil {
			return fmt.Errorf("tl: write bytestring length: %w", err)
		}
	case n < 1<<24:
		hdr := []byte{254, byte(n), byte(n >> 8), byte(n >> 16)}
		if err := w.writeRaw(hdr); err != nil {
			return fmt.Errorf("tl: write bytestring extended length: %w", err)
		}
	default:
		return fmt.Errorf("tl: bytestring too long: %d bytes", n)
	}
	if n > 0 {
		if err := w.writeRaw(b); err != nil {
			return fmt.Errorf("tl: write bytestring payload: %w", err)
		}
	}
	if err := w.Align(4); err != nil {
		return fmt.Errorf("tl: write bytestring padding: %w", err)
	}
	return nil
}

func (w *Writer) writeRaw(b []byte) error {
	_, err := w.Write(b)
	return err
}

func (w *Writer) WriteString(s string) error {
	return w.WriteBytes([]byte(s))
}

// WriteBool encodes the boxed bool encoding (spec §4.1).
func (w *Writer) WriteBool(v bool) error {
	if v {
		return w.WriteConstructorID(idBoolTrue)
	}
	return w.WriteConstructorID(idBoolFalse)
}

// WriteTrue encodes the boxed unit type `true` (spec §4.1).
func (w *Writer) WriteTrue() error {
	return w.WriteConstructorID(idTrueType)
}

// WriteNull encodes the boxed Null type (spec §4.1).
func (w *Writer) WriteNull() error {
	return w.WriteConstructorID(idNullType)
}
