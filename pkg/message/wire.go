package message

import (
	"fmt"
	"unicode/utf8"

	"google.golang.org/protobuf/encoding/protowire"

	"github.com/ZentaChain/zentalk-csp/pkg/protocol"
)

// decodeString validates b as UTF-8 and returns an owned copy.
func decodeString(b []byte) (string, error) {
	for offset := 0; offset < len(b); {
		r, size := utf8.DecodeRune(b[offset:])
		if r == utf8.RuneError && size <= 1 {
			return "", &InvalidStringError{Offset: offset}
		}
		offset += size
	}
	return string(b), nil
}

func readBlob(r protocol.ByteReader) (protocol.BlobID, uint32, error) {
	var id protocol.BlobID
	if err := protocol.ReadInto(r, id[:]); err != nil {
		return id, 0, err
	}
	size, err := r.ReadU32LE()
	return id, size, err
}

func readKey(r protocol.ByteReader) (protocol.EncryptionKey, error) {
	var key protocol.EncryptionKey
	err := protocol.ReadInto(r, key[:])
	return key, err
}

// protoField is a single decoded protobuf field value.
type protoField struct {
	typ   protowire.Type
	value uint64
	bytes []byte
}

// protoMessage holds the last occurrence of every field in a protobuf
// message, plus the order in which field numbers were last seen so that
// oneof members can be resolved.
type protoMessage struct {
	fields map[protowire.Number]protoField
	order  []protowire.Number
}

// parseProtobuf decodes the top level of a protobuf message without a schema.
// Groups are rejected; unknown fields are kept but never read.
func parseProtobuf(b []byte) (*protoMessage, error) {
	msg := &protoMessage{fields: make(map[protowire.Number]protoField)}

	for len(b) > 0 {
		num, typ, n := protowire.ConsumeTag(b)
		if n < 0 {
			return nil, fmt.Errorf("%w: %v", ErrInvalidProtobuf, protowire.ParseError(n))
		}
		b = b[n:]

		field := protoField{typ: typ}
		switch typ {
		case protowire.VarintType:
			field.value, n = protowire.ConsumeVarint(b)
		case protowire.Fixed32Type:
			var v uint32
			v, n = protowire.ConsumeFixed32(b)
			field.value = uint64(v)
		case protowire.Fixed64Type:
			field.value, n = protowire.ConsumeFixed64(b)
		case protowire.BytesType:
			field.bytes, n = protowire.ConsumeBytes(b)
		default:
			return nil, fmt.Errorf("%w: unsupported wire type %d for field %d", ErrInvalidProtobuf, typ, num)
		}
		if n < 0 {
			return nil, fmt.Errorf("%w: field %d: %v", ErrInvalidProtobuf, num, protowire.ParseError(n))
		}
		b = b[n:]

		if _, seen := msg.fields[num]; seen {
			msg.removeFromOrder(num)
		}
		msg.fields[num] = field
		msg.order = append(msg.order, num)
	}

	return msg, nil
}

func (m *protoMessage) removeFromOrder(num protowire.Number) {
	for i, n := range m.order {
		if n == num {
			m.order = append(m.order[:i], m.order[i+1:]...)
			return
		}
	}
}

func (m *protoMessage) field(num protowire.Number, typ protowire.Type) (protoField, bool, error) {
	f, ok := m.fields[num]
	if !ok {
		return f, false, nil
	}
	if f.typ != typ {
		return f, false, fmt.Errorf("%w: field %d has wire type %d, want %d", ErrInvalidProtobuf, num, f.typ, typ)
	}
	return f, true, nil
}

func (m *protoMessage) fixed64(num protowire.Number) (uint64, bool, error) {
	f, ok, err := m.field(num, protowire.Fixed64Type)
	return f.value, ok, err
}

func (m *protoMessage) uint32(num protowire.Number) (uint32, bool, error) {
	f, ok, err := m.field(num, protowire.VarintType)
	if err != nil || !ok {
		return 0, ok, err
	}
	if f.value > 0xffffffff {
		return 0, false, fmt.Errorf("%w: field %d overflows uint32", ErrInvalidProtobuf, num)
	}
	return uint32(f.value), true, nil
}

func (m *protoMessage) bytes(num protowire.Number) ([]byte, bool, error) {
	f, ok, err := m.field(num, protowire.BytesType)
	return f.bytes, ok, err
}

func (m *protoMessage) string(num protowire.Number) (string, bool, error) {
	b, ok, err := m.bytes(num)
	if err != nil || !ok {
		return "", ok, err
	}
	s, err := decodeString(b)
	if err != nil {
		return "", false, err
	}
	return s, true, nil
}

// lastOf returns whichever of the given field numbers was seen last, which
// is the active member of a oneof.
func (m *protoMessage) lastOf(nums ...protowire.Number) (protowire.Number, bool) {
	for i := len(m.order) - 1; i >= 0; i-- {
		for _, n := range nums {
			if m.order[i] == n {
				return n, true
			}
		}
	}
	return 0, false
}
