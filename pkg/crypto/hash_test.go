package crypto

import (
	"bytes"
	"encoding/hex"
	"testing"
)

func TestHash(t *testing.T) {
	tests := []struct {
		name     string
		input    []byte
		expected string // BLAKE2b-256 in hex
	}{
		{
			name:     "empty input",
			input:    []byte{},
			expected: "0e5751c026e543b2e8ab2eb06099daa1d1e5df47778f7787faab45cdf12fe3a8",
		},
		{
			name:  "policy table",
			input: []byte(`[{"messageType":"Text","push":true}]`),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			hash := Hash(tt.input)
			if len(hash) != 32 {
				t.Errorf("Hash() length = %d, want 32", len(hash))
			}

			got := HashString(tt.input)
			if got != hex.EncodeToString(hash) {
				t.Errorf("HashString() = %s, want hex of Hash()", got)
			}
			if tt.expected != "" && got != tt.expected {
				t.Errorf("HashString() = %s, want %s", got, tt.expected)
			}
		})
	}

	if HashString([]byte("a")) == HashString([]byte("b")) {
		t.Error("distinct inputs share a digest")
	}
}

func TestFingerprint(t *testing.T) {
	f, err := NewFingerprinter(nil)
	if err != nil {
		t.Fatalf("NewFingerprinter() error = %v", err)
	}

	fp := f.Fingerprint(0x01, []byte("hello"))
	if len(fp) != FingerprintSize*2 {
		t.Errorf("Fingerprint() length = %d, want %d", len(fp), FingerprintSize*2)
	}
	if fp != f.Fingerprint(0x01, []byte("hello")) {
		t.Error("Fingerprint() not consistent between calls")
	}
	if fp == f.Fingerprint(0x41, []byte("hello")) {
		t.Error("Fingerprint() ignores the message type")
	}

	keyed, err := NewFingerprinter([]byte("deployment secret"))
	if err != nil {
		t.Fatalf("NewFingerprinter() error = %v", err)
	}
	if keyed.Fingerprint(0x01, []byte("hello")) == fp {
		t.Error("keyed fingerprint equals unkeyed fingerprint")
	}
}

func TestFingerprinterKeyCopied(t *testing.T) {
	key := []byte("secret")
	f, _ := NewFingerprinter(key)
	before := f.Fingerprint(0x01, nil)

	key[0] = 'X'
	if f.Fingerprint(0x01, nil) != before {
		t.Error("Fingerprinter aliases the caller's key")
	}
}

func TestNewFingerprinterKeyTooLong(t *testing.T) {
	if _, err := NewFingerprinter(bytes.Repeat([]byte{1}, 65)); err == nil {
		t.Error("NewFingerprinter() should reject keys over 64 bytes")
	}
}
