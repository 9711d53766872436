package message

import (
	"bytes"

	"github.com/oduya/paygo/internal/auth"
	"github.com/oduya/paygo/internal/keycode"
	"github.com/oduya/paygo/internal/logging"
	"github.com/oduya/paygo/internal/protocol"
)

// DefaultCollisionRetries is how many replacement identifiers EncodeWithRetry
// tries by default. Each retry collides with probability 3/64, so three
// retries fail roughly once per ninety thousand issued messages.
const DefaultCollisionRetries = 3

// FactoryKey authenticates factory commands. Well known, accepted by every
// unit.
var FactoryKey = bytes.Repeat([]byte{0x00}, auth.KeyLen)

// TestKey authenticates device-test commands. Well known, accepted by every
// unit.
var TestKey = bytes.Repeat([]byte{0xFF}, auth.KeyLen)

// Message is a fully specified command, ready to encode. Constructors in
// this package populate it; callers normally never fill it by hand.
type Message struct {
	Type protocol.MessageType
	// ID is the full 32-bit message identifier. The wire carries only its
	// low bits; receivers re-expand it. Zero for factory, test, and
	// passthrough messages.
	ID     uint32
	Values map[string]uint64
}

// Encode runs the full pipeline and returns the keypad token for m. The
// secret key is used for this call only and never retained. Identifier
// ambiguity surfaces as auth.IdCollisionError with a suggested replacement.
func Encode(m Message, key []byte) (string, error) {
	body, err := protocol.EncodeBody(m.Type, m.ID, m.Values)
	if err != nil {
		return "", err
	}
	p, err := auth.Authenticate(m.Type, m.ID, body, key)
	if err != nil {
		return "", err
	}
	return keycode.Format(p)
}

// EncodeWithRetry encodes m, advancing to the suggested replacement
// identifier up to maxRetries times when the ambiguity check rejects one.
// A negative maxRetries means DefaultCollisionRetries. It returns the token
// and the identifier actually used, which the caller must record as
// consumed.
func EncodeWithRetry(m Message, key []byte, maxRetries int) (string, uint32, error) {
	if maxRetries < 0 {
		maxRetries = DefaultCollisionRetries
	}
	var err error
	for attempt := 0; ; attempt++ {
		var code string
		code, err = Encode(m, key)
		if err == nil {
			return code, m.ID, nil
		}
		ce := auth.AsIdCollisionError(err)
		if ce == nil || attempt == maxRetries {
			return "", m.ID, err
		}
		logging.LogCollisionRetry(m.Type.String(), m.ID, ce.NextID, attempt+1)
		m.ID = ce.NextID
	}
}
