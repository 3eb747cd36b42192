package message

import (
	"time"

	"github.com/ZentaChain/zentalk-csp/pkg/protocol"
)

// IncomingMessage is a decrypted and decoded message together with its
// envelope metadata. It is built once after decoding and not modified
// afterwards. Body is required: Type and Properties panic on a message
// without one.
type IncomingMessage struct {
	SenderIdentity protocol.Identity
	ID             protocol.MessageID
	// CreatedAt is the sender's claimed creation time in milliseconds since
	// the Unix epoch. It is not verified.
	CreatedAt uint64
	Body      Body
}

// DecodeIncoming decodes payload and wraps the result with the envelope
// metadata. The body variant always matches msgType on success.
func DecodeIncoming(sender protocol.Identity, id protocol.MessageID, createdAt uint64,
	msgType protocol.MessageType, payload []byte) (IncomingMessage, error) {
	b, err := Decode(msgType, payload)
	if err != nil {
		return IncomingMessage{}, err
	}
	return IncomingMessage{
		SenderIdentity: sender,
		ID:             id,
		CreatedAt:      createdAt,
		Body:           b,
	}, nil
}

// Type returns the message type of the body.
func (m IncomingMessage) Type() protocol.MessageType {
	if m.Body == nil {
		panic("message: IncomingMessage without a body")
	}
	return m.Body.Type()
}

// Properties resolves the protocol properties of the body's message type.
func (m IncomingMessage) Properties() Properties {
	return PropertiesOf(m.Body)
}

func (m IncomingMessage) CreatedAtTime() time.Time {
	return time.UnixMilli(int64(m.CreatedAt)).UTC()
}
