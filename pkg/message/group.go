package message

import (
	"fmt"

	"github.com/ZentaChain/zentalk-csp/pkg/protocol"
)

// ===== GROUP SETUP =====

// GroupSetup announces the member list of a group. An empty member list
// dissolves the group for the receiver.
type GroupSetup struct {
	body
	Group   GroupCreatorContainer `json:"group"`
	Members []protocol.Identity   `json:"members"`
}

func (GroupSetup) Type() protocol.MessageType { return protocol.MsgTypeGroupSetup }

func decodeGroupSetup(r protocol.ByteReader) (Body, error) {
	group, err := decodeGroupCreator(r)
	if err != nil {
		return nil, err
	}
	if r.Remaining()%protocol.IdentityLength != 0 {
		return nil, fmt.Errorf("%w: member list of %d bytes is not a multiple of %d",
			ErrUnexpectedEOF, r.Remaining(), protocol.IdentityLength)
	}

	members := make([]protocol.Identity, 0, r.Remaining()/protocol.IdentityLength)
	for r.Remaining() > 0 {
		member, err := protocol.ReadIdentity(r)
		if err != nil {
			return nil, err
		}
		members = append(members, member)
	}
	return GroupSetup{Group: group, Members: members}, nil
}

// ===== GROUP NAME =====

// GroupName renames a group.
type GroupName struct {
	body
	Group GroupCreatorContainer `json:"group"`
	Name  string                `json:"name"`
}

func (GroupName) Type() protocol.MessageType { return protocol.MsgTypeGroupName }

func decodeGroupName(r protocol.ByteReader) (Body, error) {
	group, err := decodeGroupCreator(r)
	if err != nil {
		return nil, err
	}
	name, err := decodeString(r.ReadRemaining())
	if err != nil {
		return nil, err
	}
	return GroupName{Group: group, Name: name}, nil
}

// ===== GROUP LEAVE / SYNC REQUEST =====

// GroupLeave tells the other members that the sender left the group.
type GroupLeave struct {
	body
	Group GroupMemberContainer `json:"group"`
}

func (GroupLeave) Type() protocol.MessageType { return protocol.MsgTypeGroupLeave }

func decodeGroupLeave(r protocol.ByteReader) (Body, error) {
	group, err := decodeGroupMember(r)
	if err != nil {
		return nil, err
	}
	return GroupLeave{Group: group}, nil
}

// GroupSyncRequest asks the group creator to resend the group state.
type GroupSyncRequest struct {
	body
	Group GroupMemberContainer `json:"group"`
}

func (GroupSyncRequest) Type() protocol.MessageType { return protocol.MsgTypeGroupSyncRequest }

func decodeGroupSyncRequest(r protocol.ByteReader) (Body, error) {
	group, err := decodeGroupMember(r)
	if err != nil {
		return nil, err
	}
	return GroupSyncRequest{Group: group}, nil
}

// ===== GROUP CALL START =====

const gckLength = 32

// GroupCallStart announces a group call hosted on an SFU.
type GroupCallStart struct {
	body
	Group           GroupMemberContainer   `json:"group"`
	ProtocolVersion uint32                 `json:"protocolVersion"`
	GCK             protocol.EncryptionKey `json:"gck"`
	SFUBaseURL      string                 `json:"sfuBaseUrl"`
}

func (GroupCallStart) Type() protocol.MessageType { return protocol.MsgTypeGroupCallStart }

// Protobuf fields: 1 protocol_version (uint32), 2 gck (bytes), 3 sfu_base_url (string).
func decodeGroupCallStart(r protocol.ByteReader) (Body, error) {
	group, err := decodeGroupMember(r)
	if err != nil {
		return nil, err
	}

	pb, err := parseProtobuf(r.ReadRemaining())
	if err != nil {
		return nil, err
	}
	m := GroupCallStart{Group: group}

	if m.ProtocolVersion, _, err = pb.uint32(1); err != nil {
		return nil, err
	}
	gck, _, err := pb.bytes(2)
	if err != nil {
		return nil, err
	}
	if len(gck) != gckLength {
		return nil, fmt.Errorf("%w: gck of %d bytes", ErrInvalidValue, len(gck))
	}
	copy(m.GCK[:], gck)

	if m.SFUBaseURL, _, err = pb.string(3); err != nil {
		return nil, err
	}
	if m.SFUBaseURL == "" {
		return nil, fmt.Errorf("%w: missing SFU base URL", ErrInvalidValue)
	}
	return m, nil
}
