// Package channel builds accessory-link origin commands: instructions from
// the back office to a controller device about the accessories linked to it
// (unlink, unlock, challenge-based linking).
//
// An origin command is a self-contained 48-bit body: a 4-bit opcode, a
// 20-bit argument, and a 24-bit authenticator computed with the controller's
// symmetric key over the controller's command count, the opcode, and the
// argument. The command count is a monotonic per-controller counter owned by
// the caller; reusing a count replays the command.
//
// The body is never typed on its own. It rides opaque inside a host
// passthrough message: the full-keypad passthrough with application id 1, or
// for the combined set-credit+wipe-flag command a 26-bit small-keypad
// passthrough. The host keycode layer forwards the payload without
// interpreting it, so the authenticator here is the only integrity check the
// command gets.
//
// The package also derives the UART security payload (application id 0), a
// 48-bit value derived from the device secret key that provisions the
// wired-link security key.
package channel
