package protocol

import (
	"bytes"
	"errors"
	"testing"
)

func TestSliceReader(t *testing.T) {
	data := []byte{
		0x7f,
		0x34, 0x12,
		0x78, 0x56, 0x34, 0x12,
		0x08, 0x07, 0x06, 0x05, 0x04, 0x03, 0x02, 0x01,
		'r', 'e', 's', 't',
	}
	r := NewSliceReader(data)

	u8, err := r.ReadU8()
	if err != nil || u8 != 0x7f {
		t.Fatalf("ReadU8() = %x, %v", u8, err)
	}
	u16, err := r.ReadU16LE()
	if err != nil || u16 != 0x1234 {
		t.Fatalf("ReadU16LE() = %x, %v", u16, err)
	}
	u32, err := r.ReadU32LE()
	if err != nil || u32 != 0x12345678 {
		t.Fatalf("ReadU32LE() = %x, %v", u32, err)
	}
	u64, err := r.ReadU64LE()
	if err != nil || u64 != 0x0102030405060708 {
		t.Fatalf("ReadU64LE() = %x, %v", u64, err)
	}

	if r.Remaining() != 4 {
		t.Errorf("Remaining() = %d, want 4", r.Remaining())
	}
	if err := r.ExpectEnd(); !errors.Is(err, ErrTrailingBytes) {
		t.Errorf("ExpectEnd() = %v, want ErrTrailingBytes", err)
	}

	if rest := r.ReadRemaining(); !bytes.Equal(rest, []byte("rest")) {
		t.Errorf("ReadRemaining() = %q", rest)
	}
	if err := r.ExpectEnd(); err != nil {
		t.Errorf("ExpectEnd() after ReadRemaining = %v", err)
	}
	if rest := r.ReadRemaining(); len(rest) != 0 {
		t.Errorf("second ReadRemaining() = %q, want empty", rest)
	}
}

func TestSliceReaderShortRead(t *testing.T) {
	r := NewSliceReader([]byte{1, 2, 3})

	if _, err := r.ReadU32LE(); !errors.Is(err, ErrUnexpectedEOF) {
		t.Fatalf("ReadU32LE() error = %v, want ErrUnexpectedEOF", err)
	}
	// A failed read consumes nothing
	if r.Remaining() != 3 {
		t.Errorf("Remaining() = %d after failed read, want 3", r.Remaining())
	}
	if _, err := r.ReadFixed(-1); err == nil {
		t.Error("ReadFixed(-1) should fail")
	}
}

func TestReadIdentity(t *testing.T) {
	tests := []struct {
		name    string
		data    []byte
		want    string
		wantErr error
	}{
		{"regular", []byte("ECHOECHO"), "ECHOECHO", nil},
		{"gateway", []byte("*SUPPORT"), "*SUPPORT", nil},
		{"lower case", []byte("echoecho"), "", ErrInvalidIdentity},
		{"star not first", []byte("ECHO*CHO"), "", ErrInvalidIdentity},
		{"short", []byte("ECHO"), "", ErrUnexpectedEOF},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			id, err := ReadIdentity(NewSliceReader(tt.data))
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("ReadIdentity() error = %v, want %v", err, tt.wantErr)
			}
			if tt.wantErr == nil && id.String() != tt.want {
				t.Errorf("ReadIdentity() = %q, want %q", id, tt.want)
			}
		})
	}
}
