// Package protocol defines the keycode protocol registry and field encoder.
//
// This package is the single source of truth for the wire layout of every
// keycode message: opcode values, bit widths, field schemas, digest widths,
// rendered digit counts, and the collision tables for message families that
// reuse digest bits as a subtype discriminator. The encoding engine never
// hardcodes a layout; adding a message type is a registry edit.
//
// # Message Families
//
// Three families exist, all packed MSB-first:
//   - Full: devices with a 0-9 keypad. Messages carry a 4-bit opcode, an
//     8-bit transmitted identifier, a type-specific body, and a 20-bit
//     truncated digest.
//   - Small: devices with a 5-button keypad. Every message is 28 bits:
//     2-bit opcode, 6-bit transmitted identifier, 8-bit body, 12-bit digest
//     (passthrough messages instead carry 26 opaque bits, unauthenticated).
//   - Channel: nested accessory-link commands. These are never rendered
//     directly; their fixed 48-bit bodies ride inside a host passthrough
//     message (see the channel package).
//
// # Usage
//
//	def := protocol.Lookup(protocol.FullAddCredit)
//	body, err := protocol.EncodeBody(protocol.FullAddCredit, 44, map[string]uint64{
//	    "hours": 720,
//	})
//
// # Validation
//
// EncodeBody rejects out-of-domain values with FieldRangeError and wrong
// field sets with SchemaMismatchError before any bits are emitted; a
// silently truncated field would corrupt device state, so there is no
// best-effort path.
//
// # Thread Safety
//
// The registry is immutable after package initialization and all functions
// are pure; everything here is safe for concurrent use.
package protocol
