package message

import (
	"errors"
	"fmt"

	"github.com/ZentaChain/zentalk-csp/pkg/protocol"
)

// Decode error kinds. Every error returned by Decode is a *DecodeError that
// unwraps to exactly one of these.
var (
	ErrInvalidString   = errors.New("invalid UTF-8")
	ErrUnexpectedEOF   = protocol.ErrUnexpectedEOF
	ErrTrailingBytes   = protocol.ErrTrailingBytes
	ErrInvalidIdentity = protocol.ErrInvalidIdentity
	ErrInvalidValue    = errors.New("invalid field value")
	ErrInvalidLocation = errors.New("invalid location")
	ErrInvalidJSON     = errors.New("invalid JSON")
	ErrInvalidProtobuf = errors.New("invalid protobuf")
	ErrUnsupportedType = errors.New("unsupported message type")
	ErrUnknownType     = errors.New("unknown message type")
)

// DecodeError reports a body that could not be decoded. The message should be
// discarded; the session it arrived on is unaffected.
type DecodeError struct {
	Type protocol.MessageType
	Err  error
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("decode %s (0x%02x): %v", e.Type, uint8(e.Type), e.Err)
}

func (e *DecodeError) Unwrap() error {
	return e.Err
}

// InvalidStringError carries the position of the first byte that is not part
// of a valid UTF-8 sequence.
type InvalidStringError struct {
	Offset int
}

func (e *InvalidStringError) Error() string {
	return fmt.Sprintf("invalid UTF-8 at offset %d", e.Offset)
}

func (e *InvalidStringError) Is(target error) bool {
	return target == ErrInvalidString
}

// Code returns a stable short identifier for the error kind, or "" if err is
// not a decode error.
func Code(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrInvalidString):
		return "invalid_string"
	case errors.Is(err, ErrUnexpectedEOF):
		return "unexpected_eof"
	case errors.Is(err, ErrTrailingBytes):
		return "trailing_bytes"
	case errors.Is(err, ErrInvalidIdentity):
		return "invalid_identity"
	case errors.Is(err, ErrInvalidValue):
		return "invalid_value"
	case errors.Is(err, ErrInvalidLocation):
		return "invalid_location"
	case errors.Is(err, ErrInvalidJSON):
		return "invalid_json"
	case errors.Is(err, ErrInvalidProtobuf):
		return "invalid_protobuf"
	case errors.Is(err, ErrUnsupportedType):
		return "unsupported_type"
	case errors.Is(err, ErrUnknownType):
		return "unknown_type"
	default:
		return ""
	}
}
