package message

import (
	"encoding/json"
	"fmt"

	"github.com/ZentaChain/zentalk-csp/pkg/protocol"
)

// PollChoice is one selectable answer of a poll.
type PollChoice struct {
	ID          int    `json:"i"`
	Description string `json:"d"`
	Order       int    `json:"o"`
	Results     []int  `json:"r,omitempty"`
}

// PollData is the JSON document carried by a poll setup message.
type PollData struct {
	Description  string       `json:"d"`
	State        int          `json:"s"`
	Assessment   int          `json:"a"`
	Visibility   int          `json:"t"`
	ChoiceType   int          `json:"o"`
	Choices      []PollChoice `json:"c"`
	Participants []string     `json:"p,omitempty"`
}

// Poll state, assessment and result visibility codes.
const (
	PollStateOpen   = 0
	PollStateClosed = 1

	PollAssessmentSingleChoice   = 0
	PollAssessmentMultipleChoice = 1

	PollVisibilityShowIntermediate = 0
	PollVisibilityShowOnClose      = 1
)

func (p *PollData) validate() error {
	switch {
	case p.State != PollStateOpen && p.State != PollStateClosed:
		return fmt.Errorf("%w: poll state %d", ErrInvalidValue, p.State)
	case p.Assessment != PollAssessmentSingleChoice && p.Assessment != PollAssessmentMultipleChoice:
		return fmt.Errorf("%w: poll assessment %d", ErrInvalidValue, p.Assessment)
	case p.Visibility != PollVisibilityShowIntermediate && p.Visibility != PollVisibilityShowOnClose:
		return fmt.Errorf("%w: poll visibility %d", ErrInvalidValue, p.Visibility)
	case len(p.Choices) == 0:
		return fmt.Errorf("%w: poll without choices", ErrInvalidValue)
	}
	for _, identity := range p.Participants {
		if _, err := protocol.ParseIdentity(identity); err != nil {
			return err
		}
	}
	return nil
}

// PollVote is a single choice selection.
type PollVote struct {
	ChoiceID int  `json:"choiceId"`
	Selected bool `json:"selected"`
}

// PollSetup is the payload shared by the 1:1 and group poll setup messages.
type PollSetup struct {
	PollID protocol.PollID `json:"pollId"`
	Poll   PollData        `json:"poll"`
}

func decodePollSetup(r protocol.ByteReader) (PollSetup, error) {
	var setup PollSetup
	if err := protocol.ReadInto(r, setup.PollID[:]); err != nil {
		return setup, err
	}

	raw := r.ReadRemaining()
	if _, err := decodeString(raw); err != nil {
		return setup, err
	}
	if err := json.Unmarshal(raw, &setup.Poll); err != nil {
		return setup, fmt.Errorf("%w: %v", ErrInvalidJSON, err)
	}
	if err := setup.Poll.validate(); err != nil {
		return setup, err
	}
	return setup, nil
}

// PollVotes is the payload shared by the 1:1 and group poll vote messages.
type PollVotes struct {
	PollCreator protocol.Identity `json:"pollCreator"`
	PollID      protocol.PollID   `json:"pollId"`
	Votes       []PollVote        `json:"votes"`
}

func decodePollVotes(r protocol.ByteReader) (PollVotes, error) {
	var v PollVotes
	var err error
	if v.PollCreator, err = protocol.ReadIdentity(r); err != nil {
		return v, err
	}
	if err := protocol.ReadInto(r, v.PollID[:]); err != nil {
		return v, err
	}

	raw := r.ReadRemaining()
	if _, err := decodeString(raw); err != nil {
		return v, err
	}

	// [[choiceId, 0|1], ...]
	var pairs [][]int
	if err := json.Unmarshal(raw, &pairs); err != nil {
		return v, fmt.Errorf("%w: %v", ErrInvalidJSON, err)
	}
	v.Votes = make([]PollVote, 0, len(pairs))
	for _, pair := range pairs {
		if len(pair) != 2 || (pair[1] != 0 && pair[1] != 1) {
			return v, fmt.Errorf("%w: malformed vote %v", ErrInvalidValue, pair)
		}
		v.Votes = append(v.Votes, PollVote{ChoiceID: pair[0], Selected: pair[1] == 1})
	}
	return v, nil
}

// PollSetupMessage creates or updates a poll in a 1:1 conversation.
type PollSetupMessage struct {
	body
	PollSetup
}

func (PollSetupMessage) Type() protocol.MessageType { return protocol.MsgTypePollSetup }

func decodePollSetupMessage(r protocol.ByteReader) (Body, error) {
	setup, err := decodePollSetup(r)
	if err != nil {
		return nil, err
	}
	return PollSetupMessage{PollSetup: setup}, nil
}

// PollVoteMessage casts votes on a 1:1 poll.
type PollVoteMessage struct {
	body
	PollVotes
}

func (PollVoteMessage) Type() protocol.MessageType { return protocol.MsgTypePollVote }

func decodePollVoteMessage(r protocol.ByteReader) (Body, error) {
	votes, err := decodePollVotes(r)
	if err != nil {
		return nil, err
	}
	return PollVoteMessage{PollVotes: votes}, nil
}

type GroupPollSetupMessage struct {
	body
	Group GroupMemberContainer `json:"group"`
	PollSetup
}

func (GroupPollSetupMessage) Type() protocol.MessageType { return protocol.MsgTypeGroupPollSetup }

func decodeGroupPollSetup(r protocol.ByteReader) (Body, error) {
	group, err := decodeGroupMember(r)
	if err != nil {
		return nil, err
	}
	setup, err := decodePollSetup(r)
	if err != nil {
		return nil, err
	}
	return GroupPollSetupMessage{Group: group, PollSetup: setup}, nil
}

type GroupPollVoteMessage struct {
	body
	Group GroupMemberContainer `json:"group"`
	PollVotes
}

func (GroupPollVoteMessage) Type() protocol.MessageType { return protocol.MsgTypeGroupPollVote }

func decodeGroupPollVote(r protocol.ByteReader) (Body, error) {
	group, err := decodeGroupMember(r)
	if err != nil {
		return nil, err
	}
	votes, err := decodePollVotes(r)
	if err != nil {
		return nil, err
	}
	return GroupPollVoteMessage{Group: group, PollVotes: votes}, nil
}
