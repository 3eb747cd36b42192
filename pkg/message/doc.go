// Package message decodes the bodies of incoming end-to-end encrypted CSP
// messages and resolves the per-type protocol properties that delivery,
// reflection and receipt handling rely on.
//
// Decoding starts from the decrypted container, or from the type and body
// once the container has been unpadded:
//
//	body, err := message.Decode(protocol.MsgTypeText, payload)
//	if err != nil {
//		var de *message.DecodeError
//		errors.As(err, &de) // de.Type, errors.Is(err, message.ErrInvalidString) ...
//	}
//	props := message.PropertiesOf(body)
//
// Every defined message type has exactly one decoder and exactly one
// Properties row. Group join messages and forward security envelopes are
// recognised but rejected with ErrUnsupportedType.
package message
