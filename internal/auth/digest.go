package auth

import (
	"encoding/binary"
	"errors"
	"fmt"
	"math"

	"github.com/dchest/siphash"

	"github.com/oduya/paygo/internal/bitstring"
	"github.com/oduya/paygo/internal/protocol"
)

// KeyLen is the secret key length consumed by the digest. Longer keys are
// accepted and truncated to their first KeyLen bytes, matching device
// firmware behavior.
const KeyLen = 16

// ErrKeyTooShort is returned when the supplied secret key is shorter than
// KeyLen bytes. The key itself never appears in any error.
var ErrKeyTooShort = errors.New("auth: secret key shorter than 16 bytes")

// AuthenticatedPayload is a message body bound to its truncated digest,
// ready for rendering.
type AuthenticatedPayload struct {
	Type protocol.MessageType
	// Bits is the body followed by the truncated digest, MSB first.
	Bits bitstring.Bits
	// Digest is the truncated digest value (zero width for unauthenticated
	// passthrough payloads).
	Digest uint64
}

// Authenticate binds id and body under the device secret key and returns the
// payload to render. For message types whose digest bits double as a subtype
// discriminator it performs the mandatory ambiguity check first and returns
// IdCollisionError when the identifier must be retried; no payload is ever
// produced for an ambiguous combination.
func Authenticate(t protocol.MessageType, id uint32, body bitstring.Bits, key []byte) (AuthenticatedPayload, error) {
	def := protocol.Lookup(t)
	if body.Len() != def.BodyBits() {
		return AuthenticatedPayload{}, fmt.Errorf("auth: %s body is %d bits, registry declares %d",
			def.Name, body.Len(), def.BodyBits())
	}

	if def.DigestBits == 0 {
		// Unauthenticated passthrough: the payload is the bare body.
		return AuthenticatedPayload{Type: t, Bits: body}, nil
	}
	if len(key) < KeyLen {
		return AuthenticatedPayload{}, ErrKeyTooShort
	}

	data := make([]byte, 4, 4+len(body.Bytes()))
	binary.LittleEndian.PutUint32(data, id)
	data = append(data, body.Bytes()...)
	digest := truncate(sipHash(key, data), def.DigestBits)

	if err := checkAmbiguity(def, id, body, digest); err != nil {
		return AuthenticatedPayload{}, err
	}

	var b bitstring.Builder
	b.AppendBits(body)
	b.AppendUint(digest, def.DigestBits)
	return AuthenticatedPayload{Type: t, Bits: b.Bits(), Digest: digest}, nil
}

// checkAmbiguity applies the registry collision table: the deterministic
// legacy-test guard and the reserved discriminator patterns.
func checkAmbiguity(def protocol.Definition, id uint32, body bitstring.Bits, digest uint64) error {
	c := def.Collision
	if c == nil {
		return nil
	}

	if c.LegacyTestGuard && id&0x3F == 63 {
		if increment, ok := bodyField(def, body, "increment"); ok && increment == 0 {
			return collisionOrExhausted(def.Type, id)
		}
	}

	if c.DiscriminatorBits > 0 {
		disc := uint8(digest & (1<<uint(c.DiscriminatorBits) - 1))
		if c.ReservedContains(disc) {
			return collisionOrExhausted(def.Type, id)
		}
	}
	return nil
}

// collisionOrExhausted builds the retry suggestion for an ambiguous
// identifier. At the top of the 32-bit space id+1 would wrap back to an
// already-issued identifier, so no replacement is suggested.
func collisionOrExhausted(t protocol.MessageType, id uint32) error {
	if id == math.MaxUint32 {
		return ErrIdentifierExhausted
	}
	return &IdCollisionError{MessageType: t, ID: id, NextID: id + 1}
}

// bodyField extracts a named field's value back out of a packed body using
// the registry layout.
func bodyField(def protocol.Definition, body bitstring.Bits, name string) (uint64, bool) {
	offset := def.OpcodeBits + def.IDBits
	for _, f := range def.Fields {
		if f.Name == name {
			s, err := body.Slice(offset, offset+f.Bits)
			if err != nil {
				return 0, false
			}
			v, err := s.Uint64()
			if err != nil {
				return 0, false
			}
			return v, true
		}
		offset += f.Bits
	}
	return 0, false
}

// TruncatedDigest computes a SipHash-2-4 digest over data under the first 16
// bytes of key, truncated to its `bits` most significant bits. Used by the
// channel sub-protocol for nested command authentication fields.
func TruncatedDigest(key, data []byte, bits int) (uint64, error) {
	if len(key) < KeyLen {
		return 0, ErrKeyTooShort
	}
	if bits < 1 || bits > 64 {
		return 0, fmt.Errorf("auth: invalid digest width %d", bits)
	}
	return truncate(sipHash(key, data), bits), nil
}

func sipHash(key, data []byte) uint64 {
	k0 := binary.LittleEndian.Uint64(key[0:8])
	k1 := binary.LittleEndian.Uint64(key[8:16])
	return siphash.Hash(k0, k1, data)
}

func truncate(h uint64, bits int) uint64 {
	return h >> uint(64-bits)
}
