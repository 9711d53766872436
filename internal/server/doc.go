// Package server implements the keycode issuing service.
//
// The service is a back-office tool: agents hand it an operation and a device
// key and get back a rendered token that an operator reads to the customer
// over the phone or SMS. Two surfaces share one request schema:
//
//   - POST /v1/keycodes issues a single keycode per request.
//   - GET /v1/stream upgrades to a WebSocket for batch issuing; each JSON
//     message on the socket is one issue request, answered in order.
//
// Every token is re-verified (checksum and framing) before it leaves the
// server, so a malformed code can never reach an operator.
//
// # Key handling
//
// Device secret keys arrive in the request body as hex, are decoded into a
// scratch buffer, and are zeroed as soon as the encode call returns. Keys are
// never logged and never echoed into error responses.
//
// # TLS
//
// The server runs plain HTTP by default, loads a certificate pair from files
// when configured with one, or generates an in-memory self-signed certificate
// when asked to. Generated certificates are never written to disk.
package server
