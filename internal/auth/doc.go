// Package auth computes the truncated keyed digests that authenticate
// keycode messages, and enforces the discriminator ambiguity check.
//
// # Digest
//
// The digest is SipHash-2-4 under the first 16 bytes of the per-device
// secret key, over the full 32-bit message identifier (little-endian)
// followed by the packed body bytes. Only the most significant bits survive
// truncation; the width (20 bits for the full family, 12 for small) comes
// from the protocol registry. The scheme deliberately trades digest length
// for keycode brevity - security rests on per-device key secrecy and the
// bounded identifier window, not on digest width.
//
// # Ambiguity Check
//
// Some small-family messages share a wire format and are told apart by the
// low-order bits of the digest (see protocol.CollisionSpec). When a computed
// digest lands on a bit pattern reserved for a different interpretation, the
// rendered keycode would be accepted by the device as the wrong command, so
// Authenticate refuses to produce a payload and returns IdCollisionError
// carrying the next candidate identifier. The check runs on every call; it
// is not optional.
//
// Secret keys are consumed by value, never retained, and never reproduced in
// log output or error text.
package auth
