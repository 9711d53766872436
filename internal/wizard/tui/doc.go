// Package tui implements the interactive keycode wizard.
//
// The wizard walks an operator through issuing a keycode without having to
// remember command-line flags: pick a device from the registry, pick an
// operation, fill in its fields, supply the device key, and read the token
// off the result screen.
//
// # Screen flow
//
//	Device ──> Command ──> Fields ──> Key ──> Result
//	  ^           ^                             │
//	  └───────────┴─────────────────────────────┘
//
// The AppModel in app.go coordinates transitions between screens; each screen
// is its own Bubble Tea model in its own file. Every screen renders through
// RenderApplicationContainer so the header, footer, and outer border stay
// consistent across the flow.
//
// Operations that authenticate against a well-known key (factory and test
// codes) skip the key screen entirely. The key screen itself accepts either
// 32 hex characters or a path to a key file; the raw key material is held
// only for the duration of the encode call and the input field echoes
// asterisks, never the key.
//
// Issued identifiers are recorded back into the device registry on success so
// the next invocation starts from a fresh id.
package tui
