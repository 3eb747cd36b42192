package protocol

import (
	"encoding/binary"
	"errors"
	"fmt"
)

var (
	ErrUnexpectedEOF = errors.New("unexpected end of data")
	ErrTrailingBytes = errors.New("unexpected trailing bytes")
)

// ByteReader is a forward-only cursor over a message body. Returned slices
// alias the underlying buffer; callers copy what they keep.
type ByteReader interface {
	// ReadRemaining consumes and returns all unread bytes.
	ReadRemaining() []byte
	// ReadFixed consumes exactly n bytes.
	ReadFixed(n int) ([]byte, error)
	ReadU8() (uint8, error)
	ReadU16LE() (uint16, error)
	ReadU32LE() (uint32, error)
	ReadU64LE() (uint64, error)
	// Remaining returns the number of unread bytes.
	Remaining() int
	// ExpectEnd fails if any bytes are left unread.
	ExpectEnd() error
}

// SliceReader implements ByteReader over a byte slice.
type SliceReader struct {
	buf    []byte
	offset int
}

// NewSliceReader creates a reader positioned at the start of buf.
func NewSliceReader(buf []byte) *SliceReader {
	return &SliceReader{buf: buf}
}

func (r *SliceReader) ReadRemaining() []byte {
	rest := r.buf[r.offset:]
	r.offset = len(r.buf)
	return rest
}

func (r *SliceReader) ReadFixed(n int) ([]byte, error) {
	if n < 0 {
		return nil, fmt.Errorf("negative read length %d", n)
	}
	if r.Remaining() < n {
		return nil, fmt.Errorf("%w: need %d bytes at offset %d, have %d", ErrUnexpectedEOF, n, r.offset, r.Remaining())
	}
	out := r.buf[r.offset : r.offset+n]
	r.offset += n
	return out, nil
}

func (r *SliceReader) ReadU8() (uint8, error) {
	b, err := r.ReadFixed(1)
	if err != nil {
		return 0, err
	}
	return b[0], nil
}

func (r *SliceReader) ReadU16LE() (uint16, error) {
	b, err := r.ReadFixed(2)
	if err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint16(b), nil
}

func (r *SliceReader) ReadU32LE() (uint32, error) {
	b, err := r.ReadFixed(4)
	if err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint32(b), nil
}

func (r *SliceReader) ReadU64LE() (uint64, error) {
	b, err := r.ReadFixed(8)
	if err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint64(b), nil
}

func (r *SliceReader) Remaining() int {
	return len(r.buf) - r.offset
}

func (r *SliceReader) ExpectEnd() error {
	if n := r.Remaining(); n > 0 {
		return fmt.Errorf("%w: %d bytes at offset %d", ErrTrailingBytes, n, r.offset)
	}
	return nil
}

// ReadInto fills dst completely. Useful for fixed-size array fields.
func ReadInto(r ByteReader, dst []byte) error {
	b, err := r.ReadFixed(len(dst))
	if err != nil {
		return err
	}
	copy(dst, b)
	return nil
}

// ReadIdentity reads and validates an 8 byte identity.
func ReadIdentity(r ByteReader) (Identity, error) {
	b, err := r.ReadFixed(IdentityLength)
	if err != nil {
		return Identity{}, err
	}
	return IdentityFromBytes(b)
}

// ReadMessageID reads a little-endian message ID.
func ReadMessageID(r ByteReader) (MessageID, error) {
	v, err := r.ReadU64LE()
	return MessageID(v), err
}
