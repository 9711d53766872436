// Package message offers the caller-facing command constructors and the
// end-to-end encode pipeline: pack the body, authenticate it under the
// device secret key, and render the keypad token.
//
// Constructors express business intent (days of credit, unlock, wipe,
// factory test) and translate it to registry field values; all wire-level
// validation stays in the protocol and auth packages, so a constructor can
// only fail on inputs with no wire representation, such as an out-of-range
// day count.
//
// Credit messages are one-shot per identifier. The identifier is chosen by
// the caller and advanced by one per issued message; Encode surfaces
// auth.IdCollisionError when an identifier must be skipped, and
// EncodeWithRetry advances through the suggested identifiers up to a
// configurable bound.
//
// Factory and device-test commands authenticate under well-known keys
// (FactoryKey, TestKey) so any unit accepts them; they grant only short
// test credit or diagnostics.
package message
