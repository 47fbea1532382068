package tl

import (
	"encoding/binary"
	"fmt"
	"io"
	"math"
)

// Reader reads TL-encoded values from a byte stream, tracking the byte
// position so bytestrings can be aligned to a 4-byte boundary (spec §4.1).
type Reader struct {
	r   io.Reader
	pos int
}

func NewReader(r io.Reader) *Reader {
	return &Reader{r: r}
}

// Read implements io.Reader so a Reader can itself be wrapped (e.g. by
// sha1 hashing or another Reader for nested polymorphic decoding).
func (r *Reader) Read(buf []byte) (int, error) {
	n, err := r.r.Read(buf)
	r.pos += n
	return n, err
}

func (r *Reader) readFull(buf []byte) error {
	_, err := io.ReadFull(r, buf)
	return err
}

// ReadFullInto reads exactly len(buf) bytes into buf, for callers that
// already know a field's length (e.g. a body whose length was read as
// a preceding field rather than a TL bytestring prefix).
func (r *Reader) ReadFullInto(buf []byte) error {
	return r.readFull(buf)
}

// Align skips zero-padding bytes until the read position is a multiple
// of n.
func (r *Reader) Align(n int) error {
	rem := r.pos % n
	if rem == 0 {
		return nil
	}
	pad := make([]byte, n-rem)
	return r.readFull(pad)
}

func (r *Reader) ReadUint32() (uint32, error) {
	var buf [4]byte
	if err := r.readFull(buf[:]); err != nil {
		return 0, fmt.Errorf("tl: read uint32: %w", err)
	}
	return binary.LittleEndian.Uint32(buf[:]), nil
}

func (r *Reader) ReadInt32() (int32, error) {
	v, err := r.ReadUint32()
	return int32(v), err
}

func (r *Reader) ReadUint64() (uint64, error) {
	var buf [8]byte
	if err := r.readFull(buf[:]); err != nil {
		return 0, fmt.Errorf("tl: read uint64: %w", err)
	}
	return binary.LittleEndian.Uint64(buf[:]), nil
}

func (r *Reader) ReadInt64() (int64, error) {
	v, err := r.ReadUint64()
	return int64(v), err
}

func (r *Reader) ReadFloat64() (float64, error) {
	v, err := r.ReadUint64()
	if err != nil {
		return 0, err
	}
	return math.Float64frombits(v), nil
}

// ReadInt128 returns the 16 wire bytes verbatim (little-endian), the
// representation spec §3 calls for nonces and message keys.
func (r *Reader) ReadInt128() ([16]byte, error) {
	var buf [16]byte
	if err := r.readFull(buf[:]); err != nil {
		return buf, fmt.Errorf("tl: read int128: %w", err)
	}
	return buf, nil
}

func (r *Reader) ReadInt256() ([32]byte, error) {
	var buf [32]byte
	if err := r.readFull(buf[:]); err != nil {
		return buf, fmt.Errorf("tl: read int256: %w", err)
	}
	return buf, nil
}

// ReadConstructorID reads a bare u32 constructor tag without consulting
// any registry (spec §4.1 Polymorphic values).
func (r *Reader) ReadConstructorID() (ConstructorID, error) {
	v, err := r.ReadUint32()
	return ConstructorID(v), err
}

// ReadBytes decodes a length-prefixed, 4-byte-aligned bytestring
// (spec §4.1 Bytestrings).
func (r *Reader) ReadBytes() ([]byte, error) {
	var lenByte [1]byte
	if err := r.readFull(lenByte[:]); err != nil {
		return nil, fmt.Errorf("tl: read bytestring length: %w", err)
	}

	var n int
	if lenByte[0] < 254 {
		n = int(lenByte[0])
	} else {
		var rest [3]byte
		if err := r.readFull(rest[:]); err != nil {
			return nil, fmt.Errorf("tl: read bytestring extended length: %w", err)
		}
		n = int(rest[0]) | int(rest[1])<<8 | int(rest[2])<<16
	}

	buf := make([]byte, n)
	if n > 0 {
		if err := r.readFull(buf); err != nil {
			return nil, fmt.Errorf("tl: read bytestring payload: %w", err)
		}
	}
	if err := r.Align(4); err != nil {
		return nil, fmt.Errorf("tl: read bytestring padding: %w", err)
	}
	return buf, nil
}

func (r *Reader) ReadString() (string, error) {
	b, err := r.ReadBytes()
	if err != nil {
		return "", err
	}
	return string(b), nil
}

// ReadBool decodes the boxed bool encoding (spec §4.1).
func (r *Reader) ReadBool() (bool, error) {
	id, err := r.ReadConstructorID()
	if err != nil {
		return false, err
	}
	switch id {
	case idBoolTrue:
		return true, nil
	case idBoolFalse:
		return false, nil
	default:
		return false, &InvalidTypeError{Expected: []ConstructorID{idBoolTrue, idBoolFalse}, Got: id}
	}
}

// ReadTrue decodes the boxed unit type `true` (spec §4.1).
func (r *Reader) ReadTrue() error {
	id, err := r.ReadConstructorID()
	if err != nil {
		return err
	}
	if id != idTrueType {
		return &InvalidTypeError{Expected: []ConstructorID{idTrueType}, Got: id}
	}
	return nil
}

// ReadNull decodes the boxed Null type (spec §4.1).
func (r *Reader) ReadNull() error {
	id, err := r.ReadConstructorID()
	if err != nil {
		return err
	}
	if id != idNullType {
		return &InvalidTypeError{Expected: []ConstructorID{idNullType}, Got: id}
	}
	return nil
}
