package protocol

import (
	"encoding/binary"
	"encoding/hex"
	"errors"
	"fmt"
)

// Wire lengths
const (
	IdentityLength      = 8
	MessageIDLength     = 8
	GroupIDLength       = 8
	PollIDLength        = 8
	BlobIDLength        = 16
	EncryptionKeyLength = 32
	NonceLength         = 24
)

var ErrInvalidIdentity = errors.New("invalid identity")

// Identity is an 8 character Threema-style ID, e.g. "ECHOECHO" or "*SUPPORT".
type Identity [IdentityLength]byte

// MessageID is the 8 byte message identifier chosen by the sender. On the wire
// it is a little-endian u64.
type MessageID uint64

// GroupID identifies a group together with its creator's identity.
type GroupID [GroupIDLength]byte

// PollID identifies a poll together with its creator's identity.
type PollID [PollIDLength]byte

// BlobID references an encrypted blob on the blob server.
type BlobID [BlobIDLength]byte

// EncryptionKey is a symmetric blob encryption key.
type EncryptionKey [EncryptionKeyLength]byte

// Nonce is a NaCl box nonce.
type Nonce [NonceLength]byte

// ParseIdentity parses and validates an identity string.
func ParseIdentity(s string) (Identity, error) {
	var id Identity
	if len(s) != IdentityLength {
		return id, fmt.Errorf("%w: length %d", ErrInvalidIdentity, len(s))
	}
	copy(id[:], s)
	if !id.IsValid() {
		return Identity{}, fmt.Errorf("%w: %q", ErrInvalidIdentity, s)
	}
	return id, nil
}

// IdentityFromBytes validates raw identity bytes as read off the wire.
func IdentityFromBytes(b []byte) (Identity, error) {
	var id Identity
	if len(b) != IdentityLength {
		return id, fmt.Errorf("%w: length %d", ErrInvalidIdentity, len(b))
	}
	copy(id[:], b)
	if !id.IsValid() {
		return Identity{}, fmt.Errorf("%w: %x", ErrInvalidIdentity, b)
	}
	return id, nil
}

// IsValid checks the identity alphabet: upper-case ASCII letters and digits,
// with '*' allowed as the first character (gateway IDs).
func (id Identity) IsValid() bool {
	for i, c := range id {
		switch {
		case c >= 'A' && c <= 'Z', c >= '0' && c <= '9':
		case c == '*' && i == 0:
		default:
			return false
		}
	}
	return true
}

func (id Identity) String() string {
	return string(id[:])
}

func (id Identity) MarshalText() ([]byte, error) {
	return []byte(id.String()), nil
}

// MessageIDFromBytes reads a little-endian message ID.
func MessageIDFromBytes(b []byte) MessageID {
	return MessageID(binary.LittleEndian.Uint64(b))
}

// Bytes returns the wire representation of the message ID.
func (m MessageID) Bytes() []byte {
	buf := make([]byte, MessageIDLength)
	binary.LittleEndian.PutUint64(buf, uint64(m))
	return buf
}

// String formats the ID as hex of its wire bytes, which is how clients
// display it.
func (m MessageID) String() string {
	return hex.EncodeToString(m.Bytes())
}

func (m MessageID) MarshalText() ([]byte, error) {
	return []byte(m.String()), nil
}

// ParseMessageID parses the hex display form produced by String.
func ParseMessageID(s string) (MessageID, error) {
	var b [MessageIDLength]byte
	if err := decodeHexInto(b[:], s); err != nil {
		return 0, fmt.Errorf("invalid message id: %w", err)
	}
	return MessageIDFromBytes(b[:]), nil
}

func (g GroupID) String() string { return hex.EncodeToString(g[:]) }

func (g GroupID) MarshalText() ([]byte, error) { return []byte(g.String()), nil }

func (p PollID) String() string { return hex.EncodeToString(p[:]) }

func (p PollID) MarshalText() ([]byte, error) { return []byte(p.String()), nil }

func (b BlobID) String() string { return hex.EncodeToString(b[:]) }

func (b BlobID) MarshalText() ([]byte, error) { return []byte(b.String()), nil }

// ParseBlobID parses a hex encoded blob ID.
func ParseBlobID(s string) (BlobID, error) {
	var id BlobID
	if err := decodeHexInto(id[:], s); err != nil {
		return id, fmt.Errorf("invalid blob id: %w", err)
	}
	return id, nil
}

// MarshalText deliberately redacts the key material.
func (k EncryptionKey) MarshalText() ([]byte, error) {
	return []byte("<redacted>"), nil
}

// ParseEncryptionKey parses a hex encoded encryption key.
func ParseEncryptionKey(s string) (EncryptionKey, error) {
	var key EncryptionKey
	if err := decodeHexInto(key[:], s); err != nil {
		return key, fmt.Errorf("invalid encryption key: %w", err)
	}
	return key, nil
}

func (n Nonce) MarshalText() ([]byte, error) {
	return []byte(hex.EncodeToString(n[:])), nil
}

func decodeHexInto(dst []byte, s string) error {
	if hex.DecodedLen(len(s)) != len(dst) {
		return fmt.Errorf("expected %d hex characters, got %d", hex.EncodedLen(len(dst)), len(s))
	}
	_, err := hex.Decode(dst, []byte(s))
	return err
}
