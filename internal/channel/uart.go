package channel

import (
	"github.com/oduya/paygo/internal/auth"
	"github.com/oduya/paygo/internal/message"
)

// DeriveSecurityPayload derives the 48-bit UART security payload from the
// device secret key: each half of the 16-byte key is hashed under the
// all-zero development key and the top 24 bits of the two hashes are
// concatenated. The payload provisions the wired-link security key without
// ever carrying the secret key itself.
func DeriveSecurityPayload(secret []byte) (uint64, error) {
	if len(secret) < auth.KeyLen {
		return 0, auth.ErrKeyTooShort
	}
	secret = secret[:auth.KeyLen]
	devKey := make([]byte, auth.KeyLen)
	hi, err := auth.TruncatedDigest(devKey, secret[:auth.KeyLen/2], 24)
	if err != nil {
		return 0, err
	}
	lo, err := auth.TruncatedDigest(devKey, secret[auth.KeyLen/2:], 24)
	if err != nil {
		return 0, err
	}
	return hi<<24 | lo, nil
}

// SecurityKeyMessage wraps the derived UART security payload in its
// full-keypad passthrough host (application id 0).
func SecurityKeyMessage(secret []byte) (message.Message, error) {
	payload, err := DeriveSecurityPayload(secret)
	if err != nil {
		return message.Message{}, err
	}
	return message.FullPassthrough(AppIDUARTSecurity, payload), nil
}
