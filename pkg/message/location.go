package message

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/ZentaChain/zentalk-csp/pkg/protocol"
)

// Location is a shared geographic position.
//
// Wire format (UTF-8):
//
//	<latitude>,<longitude>[,<accuracy>]
//	[<name>]
//	[<address>]
//
// With two lines the second one is the address. Literal "\n" sequences in the
// address stand for line breaks.
type Location struct {
	Latitude  float64  `json:"latitude"`
	Longitude float64  `json:"longitude"`
	Accuracy  *float64 `json:"accuracy,omitempty"`
	Name      string   `json:"name,omitempty"`
	Address   string   `json:"address,omitempty"`
}

func decodeLocation(r protocol.ByteReader) (Location, error) {
	var loc Location

	text, err := decodeString(r.ReadRemaining())
	if err != nil {
		return loc, err
	}

	lines := strings.Split(text, "\n")
	coords := strings.Split(lines[0], ",")
	if len(coords) < 2 || len(coords) > 3 {
		return loc, fmt.Errorf("%w: expected 2 or 3 coordinates, got %d", ErrInvalidLocation, len(coords))
	}

	if loc.Latitude, err = parseCoordinate(coords[0], 90); err != nil {
		return loc, fmt.Errorf("%w: latitude: %v", ErrInvalidLocation, err)
	}
	if loc.Longitude, err = parseCoordinate(coords[1], 180); err != nil {
		return loc, fmt.Errorf("%w: longitude: %v", ErrInvalidLocation, err)
	}
	if len(coords) == 3 {
		accuracy, err := parseCoordinate(coords[2], math.MaxFloat64)
		if err != nil || accuracy < 0 {
			return loc, fmt.Errorf("%w: accuracy %q", ErrInvalidLocation, coords[2])
		}
		loc.Accuracy = &accuracy
	}

	switch {
	case len(lines) == 2:
		loc.Address = unescapeAddress(lines[1])
	case len(lines) >= 3:
		loc.Name = lines[1]
		loc.Address = unescapeAddress(lines[2])
	}

	return loc, nil
}

func parseCoordinate(s string, limit float64) (float64, error) {
	v, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil {
		return 0, err
	}
	if math.IsNaN(v) || math.IsInf(v, 0) || v < -limit || v > limit {
		return 0, fmt.Errorf("%v out of range", v)
	}
	return v, nil
}

func unescapeAddress(s string) string {
	return strings.ReplaceAll(s, `\n`, "\n")
}

// LocationMessage shares a location in a 1:1 conversation.
type LocationMessage struct {
	body
	Location
}

func (LocationMessage) Type() protocol.MessageType { return protocol.MsgTypeLocation }

func decodeLocationMessage(r protocol.ByteReader) (Body, error) {
	loc, err := decodeLocation(r)
	if err != nil {
		return nil, err
	}
	return LocationMessage{Location: loc}, nil
}

// GroupLocationMessage shares a location with a group.
type GroupLocationMessage struct {
	body
	Group GroupMemberContainer `json:"group"`
	Location
}

func (GroupLocationMessage) Type() protocol.MessageType { return protocol.MsgTypeGroupLocation }

func decodeGroupLocation(r protocol.ByteReader) (Body, error) {
	group, err := decodeGroupMember(r)
	if err != nil {
		return nil, err
	}
	loc, err := decodeLocation(r)
	if err != nil {
		return nil, err
	}
	return GroupLocationMessage{Group: group, Location: loc}, nil
}
