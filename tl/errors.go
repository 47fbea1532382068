package tl

import (
	"errors"
	"fmt"
)

// Sentinel errors surfaced by the codec (spec §7).
var (
	ErrUnknownType           = errors.New("tl: unknown constructor id")
	ErrBoxedAsBare           = errors.New("tl: boxed value read as bare")
	ErrPrimitiveAsPolymorphic = errors.New("tl: primitive read as polymorphic")
	ErrNoField               = errors.New("tl: missing field")
	ErrIntegerCast           = errors.New("tl: integer does not fit target width")
)

// InvalidTypeError reports a boxed constructor that was not among the
// caller's expected set.
type InvalidTypeError struct {
	Expected []ConstructorID
	Got      ConstructorID
}

func (e *InvalidTypeError) Error() string {
	return fmt.Sprintf("tl: constructor %#08x not in expected set %v", uint32(e.Got), e.Expected)
}

// ErrorCode is a short (4-byte) server response carrying a negative
// RPC error code (spec §6).
type ErrorCode int32

func (e ErrorCode) Error() string {
	return fmt.Sprintf("tl: server error code %d", int32(e))
}
