package message

import (
	"fmt"

	"github.com/ZentaChain/zentalk-csp/pkg/protocol"
)

// ReceiptStatus is the state a delivery receipt reports.
type ReceiptStatus uint8

const (
	ReceiptReceived     ReceiptStatus = 0x01
	ReceiptRead         ReceiptStatus = 0x02
	ReceiptAcknowledged ReceiptStatus = 0x03
	ReceiptDeclined     ReceiptStatus = 0x04
)

func (s ReceiptStatus) String() string {
	switch s {
	case ReceiptReceived:
		return "received"
	case ReceiptRead:
		return "read"
	case ReceiptAcknowledged:
		return "acknowledged"
	case ReceiptDeclined:
		return "declined"
	default:
		return fmt.Sprintf("ReceiptStatus(0x%02x)", uint8(s))
	}
}

func (s ReceiptStatus) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// Receipt is the payload shared by 1:1 and group delivery receipts.
type Receipt struct {
	Status     ReceiptStatus        `json:"status"`
	MessageIDs []protocol.MessageID `json:"messageIds"`
}

func decodeReceipt(r protocol.ByteReader) (Receipt, error) {
	var rc Receipt
	status, err := r.ReadU8()
	if err != nil {
		return rc, err
	}
	rc.Status = ReceiptStatus(status)
	if rc.Status < ReceiptReceived || rc.Status > ReceiptDeclined {
		return rc, fmt.Errorf("%w: receipt status 0x%02x", ErrInvalidValue, status)
	}

	if r.Remaining() == 0 {
		return rc, fmt.Errorf("%w: receipt without message ids", ErrUnexpectedEOF)
	}
	if r.Remaining()%protocol.MessageIDLength != 0 {
		return rc, fmt.Errorf("%w: %d bytes of message ids is not a multiple of %d",
			ErrUnexpectedEOF, r.Remaining(), protocol.MessageIDLength)
	}

	rc.MessageIDs = make([]protocol.MessageID, 0, r.Remaining()/protocol.MessageIDLength)
	for r.Remaining() > 0 {
		id, err := protocol.ReadMessageID(r)
		if err != nil {
			return rc, err
		}
		rc.MessageIDs = append(rc.MessageIDs, id)
	}
	return rc, nil
}

// DeliveryReceipt reports the status of one or more 1:1 messages.
type DeliveryReceipt struct {
	body
	Receipt
}

func (DeliveryReceipt) Type() protocol.MessageType { return protocol.MsgTypeDeliveryReceipt }

func decodeDeliveryReceipt(r protocol.ByteReader) (Body, error) {
	rc, err := decodeReceipt(r)
	if err != nil {
		return nil, err
	}
	return DeliveryReceipt{Receipt: rc}, nil
}

// GroupDeliveryReceipt reacts to group messages with a status. Only
// acknowledged and declined are sent by current clients.
type GroupDeliveryReceipt struct {
	body
	Group GroupMemberContainer `json:"group"`
	Receipt
}

func (GroupDeliveryReceipt) Type() protocol.MessageType { return protocol.MsgTypeGroupDeliveryReceipt }

func decodeGroupDeliveryReceipt(r protocol.ByteReader) (Body, error) {
	group, err := decodeGroupMember(r)
	if err != nil {
		return nil, err
	}
	rc, err := decodeReceipt(r)
	if err != nil {
		return nil, err
	}
	return GroupDeliveryReceipt{Group: group, Receipt: rc}, nil
}

// ===== TYPING INDICATOR =====

// TypingIndicator tells the receiver whether the sender is typing.
type TypingIndicator struct {
	body
	Typing bool `json:"typing"`
}

func (TypingIndicator) Type() protocol.MessageType { return protocol.MsgTypeTypingIndicator }

func decodeTypingIndicator(r protocol.ByteReader) (Body, error) {
	v, err := r.ReadU8()
	if err != nil {
		return nil, err
	}
	if v > 1 {
		return nil, fmt.Errorf("%w: typing flag 0x%02x", ErrInvalidValue, v)
	}
	return TypingIndicator{Typing: v == 1}, nil
}

// ===== REACTION =====

// ReactionAction distinguishes applying from withdrawing a reaction.
type ReactionAction uint8

const (
	ReactionApply    ReactionAction = 0
	ReactionWithdraw ReactionAction = 1
)

func (a ReactionAction) String() string {
	if a == ReactionWithdraw {
		return "withdraw"
	}
	return "apply"
}

func (a ReactionAction) MarshalText() ([]byte, error) {
	return []byte(a.String()), nil
}

// ReactionData is the payload shared by 1:1 and group reactions.
type ReactionData struct {
	MessageID protocol.MessageID `json:"messageId"`
	Action    ReactionAction     `json:"action"`
	Emoji     string             `json:"emoji"`
}

// Protobuf fields: 1 message_id (fixed64), oneof { 2 apply (bytes), 3 withdraw (bytes) }.
func decodeReactionData(r protocol.ByteReader) (ReactionData, error) {
	var d ReactionData
	pb, err := parseProtobuf(r.ReadRemaining())
	if err != nil {
		return d, err
	}

	id, ok, err := pb.fixed64(1)
	if err != nil {
		return d, err
	}
	if !ok {
		return d, fmt.Errorf("%w: reaction without message id", ErrInvalidProtobuf)
	}
	d.MessageID = protocol.MessageID(id)

	field, ok := pb.lastOf(2, 3)
	if !ok {
		return d, fmt.Errorf("%w: reaction without action", ErrInvalidProtobuf)
	}
	if field == 3 {
		d.Action = ReactionWithdraw
	}
	if d.Emoji, _, err = pb.string(field); err != nil {
		return d, err
	}
	if d.Emoji == "" {
		return d, fmt.Errorf("%w: empty emoji sequence", ErrInvalidValue)
	}
	return d, nil
}

// Reaction applies or withdraws an emoji reaction on a 1:1 message.
type Reaction struct {
	body
	ReactionData
}

func (Reaction) Type() protocol.MessageType { return protocol.MsgTypeReaction }

func decodeReaction(r protocol.ByteReader) (Body, error) {
	d, err := decodeReactionData(r)
	if err != nil {
		return nil, err
	}
	return Reaction{ReactionData: d}, nil
}

type GroupReaction struct {
	body
	Group GroupMemberContainer `json:"group"`
	ReactionData
}

func (GroupReaction) Type() protocol.MessageType { return protocol.MsgTypeGroupReaction }

func decodeGroupReaction(r protocol.ByteReader) (Body, error) {
	group, err := decodeGroupMember(r)
	if err != nil {
		return nil, err
	}
	d, err := decodeReactionData(r)
	if err != nil {
		return nil, err
	}
	return GroupReaction{Group: group, ReactionData: d}, nil
}

// ===== EDIT / DELETE =====

// EditData replaces the text (or caption) of an earlier message.
type EditData struct {
	MessageID protocol.MessageID `json:"messageId"`
	Text      string             `json:"text"`
}

// Protobuf fields: 1 message_id (fixed64), 2 text (string).
func decodeEditData(r protocol.ByteReader) (EditData, error) {
	var d EditData
	pb, err := parseProtobuf(r.ReadRemaining())
	if err != nil {
		return d, err
	}
	id, ok, err := pb.fixed64(1)
	if err != nil {
		return d, err
	}
	if !ok {
		return d, fmt.Errorf("%w: edit without message id", ErrInvalidProtobuf)
	}
	d.MessageID = protocol.MessageID(id)
	if d.Text, _, err = pb.string(2); err != nil {
		return d, err
	}
	return d, nil
}

// Protobuf fields: 1 message_id (fixed64).
func decodeDeleteData(r protocol.ByteReader) (protocol.MessageID, error) {
	pb, err := parseProtobuf(r.ReadRemaining())
	if err != nil {
		return 0, err
	}
	id, ok, err := pb.fixed64(1)
	if err != nil {
		return 0, err
	}
	if !ok {
		return 0, fmt.Errorf("%w: delete without message id", ErrInvalidProtobuf)
	}
	return protocol.MessageID(id), nil
}

// EditMessage edits a message the sender sent earlier.
type EditMessage struct {
	body
	EditData
}

func (EditMessage) Type() protocol.MessageType { return protocol.MsgTypeEditMessage }

func decodeEditMessage(r protocol.ByteReader) (Body, error) {
	d, err := decodeEditData(r)
	if err != nil {
		return nil, err
	}
	return EditMessage{EditData: d}, nil
}

type GroupEditMessage struct {
	body
	Group GroupMemberContainer `json:"group"`
	EditData
}

func (GroupEditMessage) Type() protocol.MessageType { return protocol.MsgTypeGroupEditMessage }

func decodeGroupEditMessage(r protocol.ByteReader) (Body, error) {
	group, err := decodeGroupMember(r)
	if err != nil {
		return nil, err
	}
	d, err := decodeEditData(r)
	if err != nil {
		return nil, err
	}
	return GroupEditMessage{Group: group, EditData: d}, nil
}

// DeleteMessage deletes a message the sender sent earlier.
type DeleteMessage struct {
	body
	MessageID protocol.MessageID `json:"messageId"`
}

func (DeleteMessage) Type() protocol.MessageType { return protocol.MsgTypeDeleteMessage }

func decodeDeleteMessage(r protocol.ByteReader) (Body, error) {
	id, err := decodeDeleteData(r)
	if err != nil {
		return nil, err
	}
	return DeleteMessage{MessageID: id}, nil
}

type GroupDeleteMessage struct {
	body
	Group     GroupMemberContainer `json:"group"`
	MessageID protocol.MessageID   `json:"messageId"`
}

func (GroupDeleteMessage) Type() protocol.MessageType { return protocol.MsgTypeGroupDeleteMessage }

func decodeGroupDeleteMessage(r protocol.ByteReader) (Body, error) {
	group, err := decodeGroupMember(r)
	if err != nil {
		return nil, err
	}
	id, err := decodeDeleteData(r)
	if err != nil {
		return nil, err
	}
	return GroupDeleteMessage{Group: group, MessageID: id}, nil
}
