package message

import (
	"fmt"

	"github.com/ZentaChain/zentalk-csp/pkg/protocol"
)

// Lifetime describes how long the chat server queues a message.
type Lifetime uint8

const (
	// LifetimeIndefinite keeps the message until the receiver fetches it.
	LifetimeIndefinite Lifetime = iota
	// LifetimeBrief keeps the message for a short time (usually 30s) and then
	// drops it silently.
	LifetimeBrief
	// LifetimeEphemeral delivers only to a receiver that is online right now.
	// Such messages are neither queued nor acknowledged by the server.
	LifetimeEphemeral
)

func (l Lifetime) String() string {
	switch l {
	case LifetimeIndefinite:
		return "indefinite"
	case LifetimeBrief:
		return "brief"
	case LifetimeEphemeral:
		return "ephemeral"
	default:
		return fmt.Sprintf("Lifetime(%d)", uint8(l))
	}
}

func (l Lifetime) MarshalText() ([]byte, error) {
	return []byte(l.String()), nil
}

// CSP message flags
const (
	FlagSendPush                = 0x01
	FlagNoServerQueuing         = 0x02
	FlagNoServerAck             = 0x04
	FlagGroupMessage            = 0x10
	FlagShortLivedServerQueuing = 0x20
	FlagNoDeliveryReceipts      = 0x80
)

// Properties is the protocol behaviour attached to a message type. Values are
// per type, never per message.
type Properties struct {
	MessageType protocol.MessageType `json:"messageType"`

	// Push notifies the receiver.
	Push bool `json:"push"`
	// Lifetime of the message on the chat server.
	Lifetime Lifetime `json:"lifetime"`
	// UserProfileDistribution attaches the sender's profile (nickname,
	// picture) when sending.
	UserProfileDistribution bool `json:"userProfileDistribution"`
	// ExemptFromBlocking processes the message even if the sender is blocked.
	ExemptFromBlocking bool `json:"exemptFromBlocking"`
	// ContactCreation creates a direct contact for an unknown sender.
	ContactCreation bool `json:"contactCreation"`
	// ReplayProtection stores the nonce to refuse reprocessing.
	ReplayProtection bool `json:"replayProtection"`
	// ReflectIncoming reflects a received message to the other linked devices.
	ReflectIncoming bool `json:"reflectIncoming"`
	// ReflectOutgoing reflects a sent message to the other linked devices.
	ReflectOutgoing bool `json:"reflectOutgoing"`
	// ReflectSentUpdate reflects the server acknowledgement of a sent message.
	ReflectSentUpdate bool `json:"reflectSentUpdate"`
	// DeliveryReceipts sends an automatic "received" receipt on reception.
	DeliveryReceipts bool `json:"deliveryReceipts"`
}

// QueuedOnServer reports whether the server stores the message at all for an
// offline receiver.
func (p Properties) QueuedOnServer() bool {
	return p.Lifetime != LifetimeEphemeral
}

// AcknowledgedByServer reports whether the server acknowledges the message
// to the sender.
func (p Properties) AcknowledgedByServer() bool {
	return p.Lifetime != LifetimeEphemeral
}

// Flags returns the CSP message flags a sender sets for this type.
func (p Properties) Flags() uint8 {
	var flags uint8
	if p.Push {
		flags |= FlagSendPush
	}
	switch p.Lifetime {
	case LifetimeEphemeral:
		flags |= FlagNoServerQueuing | FlagNoServerAck
	case LifetimeBrief:
		flags |= FlagShortLivedServerQueuing
	}
	if p.MessageType.IsGroup() {
		flags |= FlagGroupMessage
	}
	if !p.DeliveryReceipts {
		flags |= FlagNoDeliveryReceipts
	}
	return flags
}

// Base rows. Each table entry starts from one of these and sets its type.
var (
	// User content in a 1:1 conversation.
	conversationContent = Properties{
		Push:                    true,
		Lifetime:                LifetimeIndefinite,
		UserProfileDistribution: true,
		ExemptFromBlocking:      false,
		ContactCreation:         true,
		ReplayProtection:        true,
		ReflectIncoming:         true,
		ReflectOutgoing:         true,
		ReflectSentUpdate:       true,
		DeliveryReceipts:        true,
	}

	// User content in a group conversation. Groups never create contacts and
	// never send delivery receipts.
	groupContent = Properties{
		Push:                    true,
		Lifetime:                LifetimeIndefinite,
		UserProfileDistribution: true,
		ExemptFromBlocking:      false,
		ContactCreation:         false,
		ReplayProtection:        true,
		ReflectIncoming:         true,
		ReflectOutgoing:         true,
		ReflectSentUpdate:       true,
		DeliveryReceipts:        false,
	}

	// Updates to existing messages (votes, reactions, edits, deletions,
	// receipts).
	messageUpdate = Properties{
		Push:                    true,
		Lifetime:                LifetimeIndefinite,
		UserProfileDistribution: true,
		ExemptFromBlocking:      false,
		ContactCreation:         false,
		ReplayProtection:        true,
		ReflectIncoming:         true,
		ReflectOutgoing:         true,
		ReflectSentUpdate:       false,
		DeliveryReceipts:        false,
	}

	// Group state changes. These must be processed even for blocked senders
	// so that the group state stays consistent.
	groupControl = Properties{
		Push:                    true,
		Lifetime:                LifetimeIndefinite,
		UserProfileDistribution: false,
		ExemptFromBlocking:      true,
		ContactCreation:         false,
		ReplayProtection:        true,
		ReflectIncoming:         true,
		ReflectOutgoing:         true,
		ReflectSentUpdate:       false,
		DeliveryReceipts:        false,
	}

	// Protocol control messages that are meaningful to a single device only.
	sessionControl = Properties{
		Push:                    false,
		Lifetime:                LifetimeIndefinite,
		UserProfileDistribution: false,
		ExemptFromBlocking:      true,
		ContactCreation:         false,
		ReplayProtection:        true,
		ReflectIncoming:         false,
		ReflectOutgoing:         false,
		ReflectSentUpdate:       false,
		DeliveryReceipts:        false,
	}

	// Call signalling. Stale signalling is useless, so it is queued briefly.
	callSignalling = Properties{
		Push:                    true,
		Lifetime:                LifetimeBrief,
		UserProfileDistribution: false,
		ExemptFromBlocking:      false,
		ContactCreation:         false,
		ReplayProtection:        true,
		ReflectIncoming:         false,
		ReflectOutgoing:         false,
		ReflectSentUpdate:       false,
		DeliveryReceipts:        false,
	}
)

func row(base Properties, edits ...func(*Properties)) Properties {
	for _, edit := range edits {
		edit(&base)
	}
	return base
}

var properties = map[protocol.MessageType]Properties{
	protocol.MsgTypeText:            conversationContent,
	protocol.MsgTypeDeprecatedImage: conversationContent,
	protocol.MsgTypeLocation:        conversationContent,
	protocol.MsgTypeDeprecatedVideo: conversationContent,
	protocol.MsgTypeDeprecatedAudio: conversationContent,
	protocol.MsgTypePollSetup:       conversationContent,
	protocol.MsgTypePollVote: row(messageUpdate, func(p *Properties) {
		p.ContactCreation = true
	}),
	protocol.MsgTypeFile: conversationContent,

	protocol.MsgTypeContactSetProfilePicture: row(sessionControl, func(p *Properties) {
		p.ExemptFromBlocking = false
		p.ReflectIncoming = true
	}),
	protocol.MsgTypeContactDeleteProfilePicture: row(sessionControl, func(p *Properties) {
		p.ExemptFromBlocking = false
		p.ReflectIncoming = true
	}),
	protocol.MsgTypeContactRequestProfilePicture: row(sessionControl, func(p *Properties) {
		p.ExemptFromBlocking = false
	}),

	protocol.MsgTypeGroupText:     groupContent,
	protocol.MsgTypeGroupLocation: groupContent,
	protocol.MsgTypeGroupImage:    groupContent,
	protocol.MsgTypeGroupVideo:    groupContent,
	protocol.MsgTypeGroupAudio:    groupContent,
	protocol.MsgTypeGroupFile:     groupContent,

	protocol.MsgTypeGroupSetup:                groupControl,
	protocol.MsgTypeGroupName:                 groupControl,
	protocol.MsgTypeGroupLeave:                groupControl,
	protocol.MsgTypeGroupSetProfilePicture:    groupControl,
	protocol.MsgTypeGroupDeleteProfilePicture: groupControl,
	protocol.MsgTypeGroupSyncRequest:          sessionControl,
	protocol.MsgTypeGroupJoinRequest: row(sessionControl, func(p *Properties) {
		p.Push = true
		p.ExemptFromBlocking = false
	}),
	protocol.MsgTypeGroupJoinResponse: row(sessionControl, func(p *Properties) {
		p.Push = true
		p.ExemptFromBlocking = false
	}),
	protocol.MsgTypeGroupCallStart: messageUpdate,
	protocol.MsgTypeGroupPollSetup: groupContent,
	protocol.MsgTypeGroupPollVote:  messageUpdate,

	protocol.MsgTypeCallOffer: row(callSignalling, func(p *Properties) {
		p.UserProfileDistribution = true
		p.ContactCreation = true
		p.ReflectIncoming = true
		p.ReflectOutgoing = true
	}),
	protocol.MsgTypeCallAnswer: row(callSignalling, func(p *Properties) {
		p.UserProfileDistribution = true
		p.ReflectIncoming = true
		p.ReflectOutgoing = true
	}),
	protocol.MsgTypeCallICECandidate: callSignalling,
	protocol.MsgTypeCallHangup: row(callSignalling, func(p *Properties) {
		p.Lifetime = LifetimeIndefinite
		p.ReflectIncoming = true
		p.ReflectOutgoing = true
	}),
	protocol.MsgTypeCallRinging: callSignalling,

	protocol.MsgTypeDeliveryReceipt: row(messageUpdate, func(p *Properties) {
		p.Push = false
		p.UserProfileDistribution = false
	}),
	protocol.MsgTypeGroupDeliveryReceipt: row(messageUpdate, func(p *Properties) {
		p.Push = false
		p.UserProfileDistribution = false
	}),
	protocol.MsgTypeReaction:           messageUpdate,
	protocol.MsgTypeGroupReaction:      messageUpdate,
	protocol.MsgTypeEditMessage:        messageUpdate,
	protocol.MsgTypeDeleteMessage:      messageUpdate,
	protocol.MsgTypeGroupEditMessage:   messageUpdate,
	protocol.MsgTypeGroupDeleteMessage: messageUpdate,

	protocol.MsgTypeTypingIndicator: {
		Push:                    false,
		Lifetime:                LifetimeEphemeral,
		UserProfileDistribution: false,
		ExemptFromBlocking:      false,
		ContactCreation:         false,
		ReplayProtection:        false,
		ReflectIncoming:         false,
		ReflectOutgoing:         false,
		ReflectSentUpdate:       false,
		DeliveryReceipts:        false,
	},

	protocol.MsgTypeForwardSecurityEnvelope: sessionControl,
	protocol.MsgTypeEmpty:                   sessionControl,
	protocol.MsgTypeWebSessionResume: row(sessionControl, func(p *Properties) {
		p.Lifetime = LifetimeEphemeral
	}),
}

func init() {
	for t, p := range properties {
		p.MessageType = t
		properties[t] = p
	}

	// A type without a row or a decoder is a build defect; refuse to start.
	for _, t := range protocol.AllMessageTypes() {
		if _, ok := properties[t]; !ok {
			panic(fmt.Sprintf("message: no properties for %s", t))
		}
		if _, ok := decoders[t]; !ok {
			panic(fmt.Sprintf("message: no decoder for %s", t))
		}
	}
	if len(properties) != len(protocol.AllMessageTypes()) || len(decoders) != len(protocol.AllMessageTypes()) {
		panic("message: properties or decoders cover undefined message types")
	}
}

// Lookup returns the properties of a message type. ok is false only for codes
// outside the defined message type set.
func Lookup(msgType protocol.MessageType) (p Properties, ok bool) {
	p, ok = properties[msgType]
	return p, ok
}

// PropertiesOf returns the properties of a decoded body. It cannot fail: a
// Body only exists for defined message types. A nil body is a programming
// error and panics.
func PropertiesOf(b Body) Properties {
	if b == nil {
		panic("message: PropertiesOf called with a nil body")
	}
	return properties[b.Type()]
}
