// Package keycode renders authenticated payloads as keypad-entry tokens and
// verifies tokens rendered earlier.
//
// Rendering is a pure transformation in three steps:
//
//  1. Radix conversion. The packed body+digest bit string is treated as one
//     unsigned integer and converted to a fixed number of digits in the
//     family's keypad base (10 for the full keypad, 5 for the reduced one).
//     The digit count comes from the registry and is sized so every legal
//     payload fits; a value that does not fit yields EncodingOverflowError
//     and no output.
//
//  2. Check digits. A running checksum over the payload digits, using a
//     totally anti-symmetric quasigroup of the matching order, yields one
//     check digit after every fifth payload digit. The final check digit
//     always covers the entire payload and closes the sequence, so a token
//     never ends on an unprotected digit. Any single-digit substitution and
//     any transposition of adjacent payload digits is detected.
//
//  3. Framing. Full-keypad tokens are wrapped as "*DDD DDD ...#" in groups
//     of three digits. Reduced-keypad tokens are an unbroken run of the keys
//     '1' through '5' (digit value v renders as key v+1); their fixed length
//     is the only framing the decoder needs.
//
// Verify is the exact inverse: it strips the frame, re-derives every check
// digit, and recovers the body+digest bits, so callers can confirm a token
// before handing it to a customer.
package keycode
