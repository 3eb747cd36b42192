package message

import (
	"fmt"

	"github.com/ZentaChain/zentalk-csp/pkg/protocol"
)

// decodeFunc decodes one body variant from the reader. It may leave bytes
// unread; Decode rejects them.
type decodeFunc func(r protocol.ByteReader) (Body, error)

// noContent decodes variants that define no body bytes at all.
func noContent(b Body) decodeFunc {
	return func(protocol.ByteReader) (Body, error) { return b, nil }
}

// unsupported marks types that reach this layer but are decoded elsewhere
// (or not yet at all). They yield ErrUnsupportedType instead of a body.
func unsupported(reason string) decodeFunc {
	return func(protocol.ByteReader) (Body, error) {
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedType, reason)
	}
}

var decoders = map[protocol.MessageType]decodeFunc{
	protocol.MsgTypeText:                         decodeText,
	protocol.MsgTypeDeprecatedImage:              decodeDeprecatedImage,
	protocol.MsgTypeLocation:                     decodeLocationMessage,
	protocol.MsgTypeDeprecatedVideo:              decodeDeprecatedVideo,
	protocol.MsgTypeDeprecatedAudio:              decodeDeprecatedAudio,
	protocol.MsgTypePollSetup:                    decodePollSetupMessage,
	protocol.MsgTypePollVote:                     decodePollVoteMessage,
	protocol.MsgTypeFile:                         decodeFile,
	protocol.MsgTypeContactSetProfilePicture:     decodeContactSetProfilePicture,
	protocol.MsgTypeContactDeleteProfilePicture:  noContent(ContactDeleteProfilePicture{}),
	protocol.MsgTypeContactRequestProfilePicture: noContent(ContactRequestProfilePicture{}),
	protocol.MsgTypeGroupText:                    decodeGroupText,
	protocol.MsgTypeGroupLocation:                decodeGroupLocation,
	protocol.MsgTypeGroupImage:                   decodeGroupImage,
	protocol.MsgTypeGroupVideo:                   decodeGroupVideo,
	protocol.MsgTypeGroupAudio:                   decodeGroupAudio,
	protocol.MsgTypeGroupFile:                    decodeGroupFile,
	protocol.MsgTypeGroupSetup:                   decodeGroupSetup,
	protocol.MsgTypeGroupName:                    decodeGroupName,
	protocol.MsgTypeGroupLeave:                   decodeGroupLeave,
	protocol.MsgTypeGroupJoinRequest:             unsupported("group join requests are not handled by this client"),
	protocol.MsgTypeGroupJoinResponse:            unsupported("group join responses are not handled by this client"),
	protocol.MsgTypeGroupCallStart:               decodeGroupCallStart,
	protocol.MsgTypeGroupSetProfilePicture:       decodeGroupSetProfilePicture,
	protocol.MsgTypeGroupSyncRequest:             decodeGroupSyncRequest,
	protocol.MsgTypeGroupPollSetup:               decodeGroupPollSetup,
	protocol.MsgTypeGroupPollVote:                decodeGroupPollVote,
	protocol.MsgTypeGroupDeleteProfilePicture:    decodeGroupDeleteProfilePicture,
	protocol.MsgTypeCallOffer:                    decodeCallOffer,
	protocol.MsgTypeCallAnswer:                   decodeCallAnswer,
	protocol.MsgTypeCallICECandidate:             decodeCallICECandidates,
	protocol.MsgTypeCallHangup:                   decodeCallHangup,
	protocol.MsgTypeCallRinging:                  decodeCallRinging,
	protocol.MsgTypeDeliveryReceipt:              decodeDeliveryReceipt,
	protocol.MsgTypeGroupDeliveryReceipt:         decodeGroupDeliveryReceipt,
	protocol.MsgTypeReaction:                     decodeReaction,
	protocol.MsgTypeGroupReaction:                decodeGroupReaction,
	protocol.MsgTypeTypingIndicator:              decodeTypingIndicator,
	protocol.MsgTypeEditMessage:                  decodeEditMessage,
	protocol.MsgTypeDeleteMessage:                decodeDeleteMessage,
	protocol.MsgTypeGroupEditMessage:             decodeGroupEditMessage,
	protocol.MsgTypeGroupDeleteMessage:           decodeGroupDeleteMessage,
	protocol.MsgTypeForwardSecurityEnvelope:      unsupported("forward security envelopes are unwrapped before body decoding"),
	protocol.MsgTypeEmpty:                        decodeEmpty,
	protocol.MsgTypeWebSessionResume:             decodeWebSessionResume,
}

// Decode decodes the body of a message of the given type. payload is the
// message body with the container type byte and padding already removed.
//
// Decode never panics on malformed input. Every failure is a *DecodeError.
// The returned body never aliases payload.
func Decode(msgType protocol.MessageType, payload []byte) (Body, error) {
	decode, ok := decoders[msgType]
	if !ok {
		return nil, &DecodeError{Type: msgType, Err: ErrUnknownType}
	}

	r := protocol.NewSliceReader(payload)
	b, err := decode(r)
	if err != nil {
		return nil, &DecodeError{Type: msgType, Err: err}
	}
	if err := r.ExpectEnd(); err != nil {
		return nil, &DecodeError{Type: msgType, Err: err}
	}
	return b, nil
}

// DecodeContainer parses a decrypted, padded message container and decodes
// its body.
func DecodeContainer(container []byte) (Body, error) {
	msgType, payload, err := protocol.ParseContainer(container)
	if err != nil {
		return nil, err
	}
	return Decode(msgType, payload)
}

// IsSupported reports whether Decode can produce a body for msgType.
func IsSupported(msgType protocol.MessageType) bool {
	_, ok := decoders[msgType]
	return ok && !unsupportedTypes[msgType]
}

var unsupportedTypes = map[protocol.MessageType]bool{
	protocol.MsgTypeGroupJoinRequest:        true,
	protocol.MsgTypeGroupJoinResponse:       true,
	protocol.MsgTypeForwardSecurityEnvelope: true,
}
