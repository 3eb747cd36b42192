package crypto

import (
	"encoding/hex"
	"fmt"

	"golang.org/x/crypto/blake2b"
)

// Hash returns the BLAKE2b-256 digest of data.
func Hash(data []byte) []byte {
	sum := blake2b.Sum256(data)
	return sum[:]
}

// HashString returns the hex BLAKE2b-256 digest of data. The inspection API
// publishes it over the serialised policy table so clients can tell whether
// two deployments resolve properties the same way.
func HashString(data []byte) string {
	return hex.EncodeToString(Hash(data))
}

// FingerprintSize is the length of a message fingerprint in bytes.
const FingerprintSize = 16

// Fingerprinter derives short identifiers for message payloads so that logs
// and API responses can refer to a message without including its content.
type Fingerprinter struct {
	key []byte
}

// NewFingerprinter creates a fingerprinter. With a non-empty key (at most 64
// bytes) fingerprints cannot be reproduced by someone who only has the log.
func NewFingerprinter(key []byte) (*Fingerprinter, error) {
	if len(key) > blake2b.Size {
		return nil, fmt.Errorf("fingerprint key too long: %d bytes, max %d", len(key), blake2b.Size)
	}
	return &Fingerprinter{key: append([]byte(nil), key...)}, nil
}

// Fingerprint returns the hex BLAKE2b-128 of type || payload.
func (f *Fingerprinter) Fingerprint(msgType uint8, payload []byte) string {
	hash, err := blake2b.New(FingerprintSize, f.key)
	if err != nil {
		// Size and key length are validated up front
		panic(err)
	}

	hash.Write([]byte{msgType})
	hash.Write(payload)
	return hex.EncodeToString(hash.Sum(nil))
}
