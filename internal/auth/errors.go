package auth

import (
	"errors"
	"fmt"

	"github.com/oduya/paygo/internal/protocol"
)

// ErrIdentifierExhausted is returned when an ambiguous identifier sits at
// the very top of the 32-bit space, where advancing would wrap back to an
// already-issued identifier. The device must be re-keyed or its state wiped
// before more keycodes can be issued.
var ErrIdentifierExhausted = errors.New("auth: identifier space exhausted, no replacement identifier available")

// IdCollisionError reports that an identifier produced a digest colliding
// with a bit pattern reserved for a different message interpretation. The
// caller should retry with NextID; the engine never substitutes an
// identifier on its own, since callers own identifier bookkeeping. A retry
// is expected to succeed with high probability but is not guaranteed, so
// callers bound the number of attempts (see message.EncodeWithRetry).
type IdCollisionError struct {
	MessageType protocol.MessageType
	ID          uint32
	NextID      uint32
}

// Error implements the error interface.
func (e *IdCollisionError) Error() string {
	return fmt.Sprintf("%s: identifier %d yields an ambiguous keycode, retry with %d",
		e.MessageType, e.ID, e.NextID)
}

// AsIdCollisionError unwraps err into an *IdCollisionError, or nil.
func AsIdCollisionError(err error) *IdCollisionError {
	var ice *IdCollisionError
	if errors.As(err, &ice) {
		return ice
	}
	return nil
}

// IsIdCollisionError reports whether err is (or wraps) an IdCollisionError.
func IsIdCollisionError(err error) bool {
	return AsIdCollisionError(err) != nil
}
