package keycode

import (
	"errors"
	"fmt"

	"github.com/oduya/paygo/internal/protocol"
)

// ErrNotRenderable is returned for message types that have no direct
// rendered form, such as nested accessory-link bodies.
var ErrNotRenderable = errors.New("keycode: message type is not rendered directly")

// EncodingOverflowError reports a payload whose integer value does not fit
// the registry's digit allotment for its type. The registry sizes digit
// counts so this cannot happen for any payload it admits; seeing it means a
// caller bypassed the registry.
type EncodingOverflowError struct {
	Type   protocol.MessageType
	Bits   int
	Digits int
	Base   int
}

func (e *EncodingOverflowError) Error() string {
	return fmt.Sprintf("keycode: %s payload of %d bits does not fit %d base-%d digits",
		e.Type, e.Bits, e.Digits, e.Base)
}

// IsEncodingOverflowError reports whether err is an EncodingOverflowError.
func IsEncodingOverflowError(err error) bool {
	var e *EncodingOverflowError
	return errors.As(err, &e)
}

// MalformedKeycodeError reports a token that cannot be parsed at all: wrong
// frame, wrong length, or characters outside the family alphabet.
type MalformedKeycodeError struct {
	Reason string
}

func (e *MalformedKeycodeError) Error() string {
	return "keycode: malformed token: " + e.Reason
}

// ChecksumError reports a parseable token whose check digits do not match
// the payload, typically a mistyped or corrupted entry.
type ChecksumError struct {
	// Index is the zero-based ordinal of the first failing check digit.
	Index int
}

func (e *ChecksumError) Error() string {
	return fmt.Sprintf("keycode: check digit %d does not match payload", e.Index)
}

// IsChecksumError reports whether err is a ChecksumError.
func IsChecksumError(err error) bool {
	var e *ChecksumError
	return errors.As(err, &e)
}
