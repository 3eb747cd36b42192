// Package protocol defines the wire vocabulary of the CSP end-to-end layer.
//
// It holds the closed set of E2E message type codes, the fixed-size value
// types that appear inside message bodies (identities, message IDs, group
// IDs, blob references), a byte cursor used by the body decoders, and the
// framing of a decrypted message container.
//
// # Message Container
//
// After the transport has decrypted an incoming message, the plaintext is a
// container of the form:
//
//	type (1 byte) || body || padding
//
// The padding is PKCS#7-like: N bytes of value N with 1 <= N <= 255. Senders
// pad every container to at least MinPaddedLength bytes.
//
// # Byte Order
//
// All multi-byte integers inside bodies are little-endian. Identities are 8
// ASCII characters; message IDs are little-endian u64 values displayed as the
// hex of their wire bytes.
//
// # Message Types
//
// Type codes are grouped by purpose:
//
//	0x01-0x1a  1:1 conversation messages and contact profile pictures
//	0x41-0x54  group conversation and group control messages
//	0x60-0x64  1:1 call signalling
//	0x80-0x94  receipts, reactions, typing, edits and deletions
//	0xa0-0xfe  forward security envelope, empty and web session control
//
// Decoding bodies and resolving per-type delivery properties lives in the
// message package.
package protocol
