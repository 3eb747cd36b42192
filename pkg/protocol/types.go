package protocol

import (
	"fmt"
	"strconv"
	"strings"
)

// MessageType is the CSP E2E message type tag carried in the first byte of a
// decrypted message container. Codes are fixed by the protocol and must not
// be renumbered.
type MessageType uint8

// Message types
const (
	// Conversation (1:1)
	MsgTypeText                         MessageType = 0x01
	MsgTypeDeprecatedImage              MessageType = 0x02
	MsgTypeLocation                     MessageType = 0x10
	MsgTypeDeprecatedVideo              MessageType = 0x13
	MsgTypeDeprecatedAudio              MessageType = 0x14
	MsgTypePollSetup                    MessageType = 0x15
	MsgTypePollVote                     MessageType = 0x16
	MsgTypeFile                         MessageType = 0x17
	MsgTypeContactSetProfilePicture     MessageType = 0x18
	MsgTypeContactDeleteProfilePicture  MessageType = 0x19
	MsgTypeContactRequestProfilePicture MessageType = 0x1a

	// Group conversation
	MsgTypeGroupText     MessageType = 0x41
	MsgTypeGroupLocation MessageType = 0x42
	MsgTypeGroupImage    MessageType = 0x43
	MsgTypeGroupVideo    MessageType = 0x44
	MsgTypeGroupAudio    MessageType = 0x45
	MsgTypeGroupFile     MessageType = 0x46

	// Group control
	MsgTypeGroupSetup                MessageType = 0x4a
	MsgTypeGroupName                 MessageType = 0x4b
	MsgTypeGroupLeave                MessageType = 0x4c
	MsgTypeGroupJoinRequest          MessageType = 0x4d
	MsgTypeGroupJoinResponse         MessageType = 0x4e
	MsgTypeGroupCallStart            MessageType = 0x4f
	MsgTypeGroupSetProfilePicture    MessageType = 0x50
	MsgTypeGroupSyncRequest          MessageType = 0x51
	MsgTypeGroupPollSetup            MessageType = 0x52
	MsgTypeGroupPollVote             MessageType = 0x53
	MsgTypeGroupDeleteProfilePicture MessageType = 0x54

	// 1:1 calls
	MsgTypeCallOffer        MessageType = 0x60
	MsgTypeCallAnswer       MessageType = 0x61
	MsgTypeCallICECandidate MessageType = 0x62
	MsgTypeCallHangup       MessageType = 0x63
	MsgTypeCallRinging      MessageType = 0x64

	// Status updates
	MsgTypeDeliveryReceipt      MessageType = 0x80
	MsgTypeGroupDeliveryReceipt MessageType = 0x81
	MsgTypeReaction             MessageType = 0x82
	MsgTypeGroupReaction        MessageType = 0x83
	MsgTypeTypingIndicator      MessageType = 0x90
	MsgTypeEditMessage          MessageType = 0x91
	MsgTypeDeleteMessage        MessageType = 0x92
	MsgTypeGroupEditMessage     MessageType = 0x93
	MsgTypeGroupDeleteMessage   MessageType = 0x94

	// Forward security and control
	MsgTypeForwardSecurityEnvelope MessageType = 0xa0
	MsgTypeEmpty                   MessageType = 0xfc
	MsgTypeWebSessionResume        MessageType = 0xfe
)

var messageTypeNames = map[MessageType]string{
	MsgTypeText:                         "Text",
	MsgTypeDeprecatedImage:              "DeprecatedImage",
	MsgTypeLocation:                     "Location",
	MsgTypeDeprecatedVideo:              "DeprecatedVideo",
	MsgTypeDeprecatedAudio:              "DeprecatedAudio",
	MsgTypePollSetup:                    "PollSetup",
	MsgTypePollVote:                     "PollVote",
	MsgTypeFile:                         "File",
	MsgTypeContactSetProfilePicture:     "ContactSetProfilePicture",
	MsgTypeContactDeleteProfilePicture:  "ContactDeleteProfilePicture",
	MsgTypeContactRequestProfilePicture: "ContactRequestProfilePicture",
	MsgTypeGroupText:                    "GroupText",
	MsgTypeGroupLocation:                "GroupLocation",
	MsgTypeGroupImage:                   "GroupImage",
	MsgTypeGroupVideo:                   "GroupVideo",
	MsgTypeGroupAudio:                   "GroupAudio",
	MsgTypeGroupFile:                    "GroupFile",
	MsgTypeGroupSetup:                   "GroupSetup",
	MsgTypeGroupName:                    "GroupName",
	MsgTypeGroupLeave:                   "GroupLeave",
	MsgTypeGroupJoinRequest:             "GroupJoinRequest",
	MsgTypeGroupJoinResponse:            "GroupJoinResponse",
	MsgTypeGroupCallStart:               "GroupCallStart",
	MsgTypeGroupSetProfilePicture:       "GroupSetProfilePicture",
	MsgTypeGroupSyncRequest:             "GroupSyncRequest",
	MsgTypeGroupPollSetup:               "GroupPollSetup",
	MsgTypeGroupPollVote:                "GroupPollVote",
	MsgTypeGroupDeleteProfilePicture:    "GroupDeleteProfilePicture",
	MsgTypeCallOffer:                    "CallOffer",
	MsgTypeCallAnswer:                   "CallAnswer",
	MsgTypeCallICECandidate:             "CallICECandidate",
	MsgTypeCallHangup:                   "CallHangup",
	MsgTypeCallRinging:                  "CallRinging",
	MsgTypeDeliveryReceipt:              "DeliveryReceipt",
	MsgTypeGroupDeliveryReceipt:         "GroupDeliveryReceipt",
	MsgTypeReaction:                     "Reaction",
	MsgTypeGroupReaction:                "GroupReaction",
	MsgTypeTypingIndicator:              "TypingIndicator",
	MsgTypeEditMessage:                  "EditMessage",
	MsgTypeDeleteMessage:                "DeleteMessage",
	MsgTypeGroupEditMessage:             "GroupEditMessage",
	MsgTypeGroupDeleteMessage:           "GroupDeleteMessage",
	MsgTypeForwardSecurityEnvelope:      "ForwardSecurityEnvelope",
	MsgTypeEmpty:                        "Empty",
	MsgTypeWebSessionResume:             "WebSessionResume",
}

// allMessageTypes is sorted by wire code.
var allMessageTypes = func() []MessageType {
	types := make([]MessageType, 0, len(messageTypeNames))
	for code := 0; code <= 0xff; code++ {
		if _, ok := messageTypeNames[MessageType(code)]; ok {
			types = append(types, MessageType(code))
		}
	}
	return types
}()

// AllMessageTypes returns every defined message type, ordered by wire code.
// The returned slice is a copy.
func AllMessageTypes() []MessageType {
	out := make([]MessageType, len(allMessageTypes))
	copy(out, allMessageTypes)
	return out
}

// String returns the stable name of the message type, or its hex code if the
// type is not defined.
func (t MessageType) String() string {
	if name, ok := messageTypeNames[t]; ok {
		return name
	}
	return fmt.Sprintf("MessageType(0x%02x)", uint8(t))
}

func (t MessageType) MarshalText() ([]byte, error) {
	return []byte(t.String()), nil
}

// IsValid reports whether t is part of the closed message type set.
func (t MessageType) IsValid() bool {
	_, ok := messageTypeNames[t]
	return ok
}

// IsGroup reports whether t is addressed to a group. Group messages carry a
// group container ahead of their inner body.
func (t MessageType) IsGroup() bool {
	switch t {
	case MsgTypeGroupText, MsgTypeGroupLocation, MsgTypeGroupImage,
		MsgTypeGroupVideo, MsgTypeGroupAudio, MsgTypeGroupFile,
		MsgTypeGroupSetup, MsgTypeGroupName, MsgTypeGroupLeave,
		MsgTypeGroupJoinRequest, MsgTypeGroupJoinResponse,
		MsgTypeGroupCallStart, MsgTypeGroupSetProfilePicture,
		MsgTypeGroupSyncRequest, MsgTypeGroupPollSetup, MsgTypeGroupPollVote,
		MsgTypeGroupDeleteProfilePicture, MsgTypeGroupDeliveryReceipt,
		MsgTypeGroupReaction, MsgTypeGroupEditMessage, MsgTypeGroupDeleteMessage:
		return true
	default:
		return false
	}
}

// ParseMessageType resolves a message type from its name (case-insensitive)
// or from its wire code written as hex ("0x01") or decimal ("1").
func ParseMessageType(s string) (MessageType, error) {
	s = strings.TrimSpace(s)
	for _, t := range allMessageTypes {
		if strings.EqualFold(messageTypeNames[t], s) {
			return t, nil
		}
	}

	code, err := strconv.ParseUint(s, 0, 8)
	if err != nil {
		return 0, fmt.Errorf("unknown message type %q", s)
	}
	t := MessageType(code)
	if !t.IsValid() {
		return 0, fmt.Errorf("unknown message type code 0x%02x", code)
	}
	return t, nil
}
