package api

import (
	"encoding/base64"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/ZentaChain/zentalk-csp/pkg/message"
	"github.com/ZentaChain/zentalk-csp/pkg/protocol"
)

// TypeInfo describes one message type and its policy row
type TypeInfo struct {
	Code       string             `json:"code"`
	Name       string             `json:"name"`
	Group      bool               `json:"group"`
	Supported  bool               `json:"supported"`
	Flags      string             `json:"flags"`
	Properties message.Properties `json:"properties"`
}

// TypesResponse is returned by GET /api/v1/types
type TypesResponse struct {
	Count int        `json:"count"`
	Types []TypeInfo `json:"types"`
}

// DecodeRequest is the body of POST /api/v1/messages/decode. Either Container
// (a decrypted, padded container) or Type and Payload must be set. Sender,
// MessageID and CreatedAt optionally describe the envelope.
type DecodeRequest struct {
	Type      string `json:"type,omitempty" binding:"required_without=Container,excluded_with=Container"`
	Payload   string `json:"payload,omitempty" binding:"omitempty,base64,excluded_with=Container"` // base64
	Container string `json:"container,omitempty" binding:"omitempty,base64"`                      // base64
	Sender    string `json:"sender,omitempty" binding:"required_with=MessageID CreatedAt,omitempty,len=8"`
	MessageID string `json:"messageId,omitempty" binding:"omitempty,len=16,hexadecimal"` // hex of the wire bytes
	CreatedAt uint64 `json:"createdAt,omitempty"`                                        // ms since epoch
}

// EnvelopeInfo echoes the envelope metadata of a decoded message
type EnvelopeInfo struct {
	Sender    protocol.Identity  `json:"sender"`
	MessageID protocol.MessageID `json:"messageId"`
	CreatedAt time.Time          `json:"createdAt"`
}

// DecodeResponse is returned by a successful decode
type DecodeResponse struct {
	Code        string             `json:"code"`
	Type        string             `json:"type"`
	Body        message.Body       `json:"body"`
	Properties  message.Properties `json:"properties"`
	Flags       string             `json:"flags"`
	Fingerprint string             `json:"fingerprint"`
	Envelope    *EnvelopeInfo      `json:"envelope,omitempty"`
}

// HealthResponse is returned by GET /health
type HealthResponse struct {
	Status       string `json:"status"`
	MessageTypes int    `json:"messageTypes"`
	PolicyDigest string `json:"policyDigest"` // BLAKE2b-256 of the policy table
	Uptime       string `json:"uptime"`
}

func newTypeInfo(msgType protocol.MessageType) TypeInfo {
	props, _ := message.Lookup(msgType)
	return TypeInfo{
		Code:       fmt.Sprintf("0x%02x", uint8(msgType)),
		Name:       msgType.String(),
		Group:      msgType.IsGroup(),
		Supported:  message.IsSupported(msgType),
		Flags:      fmt.Sprintf("0x%02x", props.Flags()),
		Properties: props,
	}
}

// handleListTypes handles GET /api/v1/types
func (s *Server) handleListTypes(c *gin.Context) {
	all := protocol.AllMessageTypes()
	types := make([]TypeInfo, 0, len(all))
	for _, msgType := range all {
		types = append(types, newTypeInfo(msgType))
	}

	c.JSON(http.StatusOK, TypesResponse{Count: len(types), Types: types})
}

// handleGetType handles GET /api/v1/types/:type
func (s *Server) handleGetType(c *gin.Context) {
	msgType, err := protocol.ParseMessageType(c.Param("type"))
	if err != nil {
		c.JSON(http.StatusNotFound, ErrorResponse{
			Error:   "Unknown message type",
			Message: err.Error(),
			Code:    "unknown_type",
		})
		return
	}

	c.JSON(http.StatusOK, newTypeInfo(msgType))
}

// handleDecode handles POST /api/v1/messages/decode
func (s *Server) handleDecode(c *gin.Context) {
	var req DecodeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		if isBodyTooLarge(err) {
			c.JSON(http.StatusRequestEntityTooLarge, ErrorResponse{
				Error: "Request body too large",
				Code:  "body_too_large",
			})
			return
		}
		badRequest(c, "Invalid request body", err)
		return
	}

	msgType, payload, err := s.resolvePayload(&req)
	if err != nil {
		switch {
		case errors.Is(err, protocol.ErrInvalidContainer), errors.Is(err, protocol.ErrInvalidPadding):
			c.JSON(http.StatusUnprocessableEntity, ErrorResponse{
				Error:   "Invalid container",
				Message: err.Error(),
				Code:    containerErrorCode(err),
			})
		default:
			badRequest(c, "Invalid request", err)
		}
		return
	}

	fingerprint := s.fingerprints.Fingerprint(uint8(msgType), payload)
	c.Set(ctxFingerprint, fingerprint)

	envelope, err := parseEnvelope(&req)
	if err != nil {
		badRequest(c, "Invalid envelope", err)
		return
	}

	var body message.Body
	if envelope != nil {
		var incoming message.IncomingMessage
		incoming, err = message.DecodeIncoming(envelope.Sender, envelope.MessageID, req.CreatedAt, msgType, payload)
		body = incoming.Body
		envelope.CreatedAt = incoming.CreatedAtTime()
	} else {
		body, err = message.Decode(msgType, payload)
	}
	if err != nil {
		c.JSON(http.StatusUnprocessableEntity, ErrorResponse{
			Error:   "Decode failed",
			Message: err.Error(),
			Code:    message.Code(err),
		})
		return
	}

	props := message.PropertiesOf(body)
	c.JSON(http.StatusOK, DecodeResponse{
		Code:        fmt.Sprintf("0x%02x", uint8(msgType)),
		Type:        msgType.String(),
		Body:        body,
		Properties:  props,
		Flags:       fmt.Sprintf("0x%02x", props.Flags()),
		Fingerprint: fingerprint,
		Envelope:    envelope,
	})
}

// handleHealth handles GET /health
func (s *Server) handleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, HealthResponse{
		Status:       "healthy",
		MessageTypes: len(protocol.AllMessageTypes()),
		PolicyDigest: s.policyDigest,
		Uptime:       time.Since(s.startedAt).Round(time.Second).String(),
	})
}

// resolvePayload extracts the message type and unpadded body from a bound
// request. Field presence and base64 syntax are checked by the binding tags.
func (s *Server) resolvePayload(req *DecodeRequest) (protocol.MessageType, []byte, error) {
	if req.Container != "" {
		raw, err := base64.StdEncoding.DecodeString(req.Container)
		if err != nil {
			return 0, nil, fmt.Errorf("container is not valid base64: %w", err)
		}
		return protocol.ParseContainer(raw)
	}

	msgType, err := parseTypeCode(req.Type)
	if err != nil {
		return 0, nil, err
	}
	payload, err := base64.StdEncoding.DecodeString(req.Payload)
	if err != nil {
		return 0, nil, fmt.Errorf("payload is not valid base64: %w", err)
	}
	return msgType, payload, nil
}

// parseTypeCode accepts a type name or any 8-bit code. Codes outside the
// defined set are passed on so the decoder can report them.
func parseTypeCode(s string) (protocol.MessageType, error) {
	if msgType, err := protocol.ParseMessageType(s); err == nil {
		return msgType, nil
	}
	code, err := strconv.ParseUint(s, 0, 8)
	if err != nil {
		return 0, fmt.Errorf("unknown message type %q", s)
	}
	return protocol.MessageType(code), nil
}

func parseEnvelope(req *DecodeRequest) (*EnvelopeInfo, error) {
	if req.Sender == "" {
		return nil, nil
	}

	sender, err := protocol.ParseIdentity(req.Sender)
	if err != nil {
		return nil, err
	}
	var id protocol.MessageID
	if req.MessageID != "" {
		if id, err = protocol.ParseMessageID(req.MessageID); err != nil {
			return nil, err
		}
	}
	return &EnvelopeInfo{Sender: sender, MessageID: id}, nil
}

func containerErrorCode(err error) string {
	if errors.Is(err, protocol.ErrInvalidPadding) {
		return "invalid_padding"
	}
	return "invalid_container"
}

func badRequest(c *gin.Context, msg string, err error) {
	c.JSON(http.StatusBadRequest, ErrorResponse{
		Error:   msg,
		Message: err.Error(),
		Code:    "bad_request",
	})
}
