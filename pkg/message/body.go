package message

import (
	"github.com/ZentaChain/zentalk-csp/pkg/protocol"
)

// Body is a decoded message body. The set of implementations is closed: one
// per message type, each reporting the type it was decoded from.
type Body interface {
	// Type returns the message type this body was decoded from.
	Type() protocol.MessageType
	isBody()
}

// body is embedded by every variant to seal the Body interface.
type body struct{}

func (body) isBody() {}

// GroupMemberContainer prefixes bodies sent by any group member.
type GroupMemberContainer struct {
	CreatorIdentity protocol.Identity `json:"creatorIdentity"`
	GroupID         protocol.GroupID  `json:"groupId"`
}

// GroupCreatorContainer prefixes bodies only the group creator may send. The
// creator is the sender of the message.
type GroupCreatorContainer struct {
	GroupID protocol.GroupID `json:"groupId"`
}

func decodeGroupMember(r protocol.ByteReader) (GroupMemberContainer, error) {
	var g GroupMemberContainer
	creator, err := protocol.ReadIdentity(r)
	if err != nil {
		return g, err
	}
	g.CreatorIdentity = creator
	err = protocol.ReadInto(r, g.GroupID[:])
	return g, err
}

func decodeGroupCreator(r protocol.ByteReader) (GroupCreatorContainer, error) {
	var g GroupCreatorContainer
	err := protocol.ReadInto(r, g.GroupID[:])
	return g, err
}

// ===== TEXT =====

// TextMessage is a plain text message.
type TextMessage struct {
	body
	Text string `json:"text"`
}

func (TextMessage) Type() protocol.MessageType { return protocol.MsgTypeText }

func decodeText(r protocol.ByteReader) (Body, error) {
	text, err := decodeString(r.ReadRemaining())
	if err != nil {
		return nil, err
	}
	return TextMessage{Text: text}, nil
}

// GroupTextMessage is a text message sent to a group.
type GroupTextMessage struct {
	body
	Group GroupMemberContainer `json:"group"`
	Text  string               `json:"text"`
}

func (GroupTextMessage) Type() protocol.MessageType { return protocol.MsgTypeGroupText }

func decodeGroupText(r protocol.ByteReader) (Body, error) {
	group, err := decodeGroupMember(r)
	if err != nil {
		return nil, err
	}
	text, err := decodeString(r.ReadRemaining())
	if err != nil {
		return nil, err
	}
	return GroupTextMessage{Group: group, Text: text}, nil
}

// ===== CONTROL =====

// WebSessionResume is a control message from a web client asking for its
// session to be resumed. The payload is opaque at this layer.
type WebSessionResume struct {
	body
	Data []byte `json:"data"`
}

func (WebSessionResume) Type() protocol.MessageType { return protocol.MsgTypeWebSessionResume }

func decodeWebSessionResume(r protocol.ByteReader) (Body, error) {
	rest := r.ReadRemaining()
	data := make([]byte, len(rest))
	copy(data, rest)
	return WebSessionResume{Data: data}, nil
}

// EmptyMessage carries no content. It is used to announce forward security
// versions and to keep sessions alive.
type EmptyMessage struct {
	body
}

func (EmptyMessage) Type() protocol.MessageType { return protocol.MsgTypeEmpty }

func decodeEmpty(protocol.ByteReader) (Body, error) {
	return EmptyMessage{}, nil
}
