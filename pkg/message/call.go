package message

import (
	"encoding/json"
	"fmt"

	"github.com/ZentaChain/zentalk-csp/pkg/protocol"
)

// SessionDescription is a WebRTC SDP offer or answer.
type SessionDescription struct {
	SDPType string `json:"sdpType"`
	SDP     string `json:"sdp"`
}

// ICECandidate is a single trickled ICE candidate.
type ICECandidate struct {
	Candidate     string  `json:"candidate"`
	SDPMid        *string `json:"sdpMid,omitempty"`
	SDPMLineIndex *int    `json:"sdpMLineIndex,omitempty"`
	UFrag         *string `json:"ufrag,omitempty"`
}

// CallAnswerAction is the callee's response to an offer.
type CallAnswerAction uint8

const (
	CallAnswerReject CallAnswerAction = 0
	CallAnswerAccept CallAnswerAction = 1
)

// Reject reasons carried by a rejecting call answer.
const (
	CallRejectUnknown  = 0
	CallRejectBusy     = 1
	CallRejectTimeout  = 2
	CallRejectRejected = 3
	CallRejectDisabled = 4
	CallRejectOffHours = 5
)

func decodeCallJSON(r protocol.ByteReader, v any) error {
	raw := r.ReadRemaining()
	if _, err := decodeString(raw); err != nil {
		return err
	}
	if err := json.Unmarshal(raw, v); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidJSON, err)
	}
	return nil
}

func validateSDP(sd *SessionDescription, want string) error {
	if sd == nil {
		return fmt.Errorf("%w: missing %s", ErrInvalidValue, want)
	}
	if sd.SDPType != want {
		return fmt.Errorf("%w: sdp type %q, want %q", ErrInvalidValue, sd.SDPType, want)
	}
	return nil
}

// ===== OFFER =====

// CallOffer starts a 1:1 call.
type CallOffer struct {
	body
	CallID   uint32             `json:"callId"`
	Offer    SessionDescription `json:"offer"`
	Features json.RawMessage    `json:"features,omitempty"`
}

func (CallOffer) Type() protocol.MessageType { return protocol.MsgTypeCallOffer }

func decodeCallOffer(r protocol.ByteReader) (Body, error) {
	var wire struct {
		CallID   uint32              `json:"callId"`
		Offer    *SessionDescription `json:"offer"`
		Features json.RawMessage     `json:"features"`
	}
	if err := decodeCallJSON(r, &wire); err != nil {
		return nil, err
	}
	if err := validateSDP(wire.Offer, "offer"); err != nil {
		return nil, err
	}
	return CallOffer{CallID: wire.CallID, Offer: *wire.Offer, Features: wire.Features}, nil
}

// ===== ANSWER =====

// CallAnswer accepts or rejects a call offer. Answer is set only when
// accepting, RejectReason only when rejecting.
type CallAnswer struct {
	body
	CallID       uint32              `json:"callId"`
	Action       CallAnswerAction    `json:"action"`
	Answer       *SessionDescription `json:"answer,omitempty"`
	RejectReason *int                `json:"rejectReason,omitempty"`
	Features     json.RawMessage     `json:"features,omitempty"`
}

func (CallAnswer) Type() protocol.MessageType { return protocol.MsgTypeCallAnswer }

func decodeCallAnswer(r protocol.ByteReader) (Body, error) {
	var wire struct {
		CallID       uint32              `json:"callId"`
		Action       *int                `json:"action"`
		Answer       *SessionDescription `json:"answer"`
		RejectReason *int                `json:"rejectReason"`
		Features     json.RawMessage     `json:"features"`
	}
	if err := decodeCallJSON(r, &wire); err != nil {
		return nil, err
	}
	if wire.Action == nil {
		return nil, fmt.Errorf("%w: call answer without action", ErrInvalidValue)
	}

	m := CallAnswer{CallID: wire.CallID, Features: wire.Features}
	switch *wire.Action {
	case int(CallAnswerAccept):
		if err := validateSDP(wire.Answer, "answer"); err != nil {
			return nil, err
		}
		m.Action = CallAnswerAccept
		m.Answer = wire.Answer
	case int(CallAnswerReject):
		m.Action = CallAnswerReject
		reason := CallRejectUnknown
		if wire.RejectReason != nil {
			reason = *wire.RejectReason
		}
		if reason < CallRejectUnknown || reason > CallRejectOffHours {
			return nil, fmt.Errorf("%w: reject reason %d", ErrInvalidValue, reason)
		}
		m.RejectReason = &reason
	default:
		return nil, fmt.Errorf("%w: call answer action %d", ErrInvalidValue, *wire.Action)
	}
	return m, nil
}

// ===== ICE CANDIDATES =====

// CallICECandidates trickles ICE candidates for a running call setup.
type CallICECandidates struct {
	body
	CallID     uint32         `json:"callId"`
	Removed    bool           `json:"removed"`
	Candidates []ICECandidate `json:"candidates"`
}

func (CallICECandidates) Type() protocol.MessageType { return protocol.MsgTypeCallICECandidate }

func decodeCallICECandidates(r protocol.ByteReader) (Body, error) {
	var wire struct {
		CallID     uint32         `json:"callId"`
		Removed    bool           `json:"removed"`
		Candidates []ICECandidate `json:"candidates"`
	}
	if err := decodeCallJSON(r, &wire); err != nil {
		return nil, err
	}
	if len(wire.Candidates) == 0 {
		return nil, fmt.Errorf("%w: no ICE candidates", ErrInvalidValue)
	}
	return CallICECandidates{CallID: wire.CallID, Removed: wire.Removed, Candidates: wire.Candidates}, nil
}

// ===== HANGUP / RINGING =====

// CallHangup ends a call or withdraws an unanswered offer.
type CallHangup struct {
	body
	CallID uint32 `json:"callId"`
}

func (CallHangup) Type() protocol.MessageType { return protocol.MsgTypeCallHangup }

func decodeCallHangup(r protocol.ByteReader) (Body, error) {
	var wire struct {
		CallID uint32 `json:"callId"`
	}
	if err := decodeCallJSON(r, &wire); err != nil {
		return nil, err
	}
	return CallHangup{CallID: wire.CallID}, nil
}

type CallRinging struct {
	body
	CallID uint32 `json:"callId"`
}

func (CallRinging) Type() protocol.MessageType { return protocol.MsgTypeCallRinging }

func decodeCallRinging(r protocol.ByteReader) (Body, error) {
	var wire struct {
		CallID uint32 `json:"callId"`
	}
	if err := decodeCallJSON(r, &wire); err != nil {
		return nil, err
	}
	return CallRinging{CallID: wire.CallID}, nil
}
