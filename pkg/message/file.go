package message

import (
	"encoding/json"
	"fmt"

	"github.com/ZentaChain/zentalk-csp/pkg/protocol"
)

// RenderingType tells the receiver how to present a file message.
type RenderingType uint8

const (
	RenderingFile    RenderingType = 0
	RenderingMedia   RenderingType = 1
	RenderingSticker RenderingType = 2
)

func (t RenderingType) String() string {
	switch t {
	case RenderingFile:
		return "file"
	case RenderingMedia:
		return "media"
	case RenderingSticker:
		return "sticker"
	default:
		return fmt.Sprintf("RenderingType(%d)", uint8(t))
	}
}

func (t RenderingType) MarshalText() ([]byte, error) {
	return []byte(t.String()), nil
}

const defaultFileMediaType = "application/octet-stream"

// FileData describes a file stored on the blob server.
type FileData struct {
	BlobID             protocol.BlobID        `json:"blobId"`
	ThumbnailBlobID    *protocol.BlobID       `json:"thumbnailBlobId,omitempty"`
	Key                protocol.EncryptionKey `json:"key"`
	MediaType          string                 `json:"mediaType"`
	ThumbnailMediaType string                 `json:"thumbnailMediaType,omitempty"`
	FileName           string                 `json:"fileName,omitempty"`
	Size               uint64                 `json:"size"`
	Caption            string                 `json:"caption,omitempty"`
	Rendering          RenderingType          `json:"rendering"`
	CorrelationID      string                 `json:"correlationId,omitempty"`
	Metadata           json.RawMessage        `json:"metadata,omitempty"`
}

// fileJSON is the wire representation of a file message.
type fileJSON struct {
	BlobID             *string         `json:"b"`
	ThumbnailBlobID    *string         `json:"t"`
	Key                *string         `json:"k"`
	MediaType          string          `json:"m"`
	ThumbnailMediaType string          `json:"p"`
	FileName           string          `json:"n"`
	Size               uint64          `json:"s"`
	Caption            string          `json:"d"`
	Rendering          *int            `json:"j"`
	DeprecatedRender   *int            `json:"i"`
	CorrelationID      string          `json:"c"`
	Metadata           json.RawMessage `json:"x"`
}

func decodeFileData(r protocol.ByteReader) (FileData, error) {
	var data FileData

	raw := r.ReadRemaining()
	if _, err := decodeString(raw); err != nil {
		return data, err
	}

	var wire fileJSON
	if err := json.Unmarshal(raw, &wire); err != nil {
		return data, fmt.Errorf("%w: %v", ErrInvalidJSON, err)
	}

	if wire.BlobID == nil || wire.Key == nil {
		return data, fmt.Errorf("%w: file message requires blob id and key", ErrInvalidJSON)
	}
	blobID, err := protocol.ParseBlobID(*wire.BlobID)
	if err != nil {
		return data, fmt.Errorf("%w: %v", ErrInvalidJSON, err)
	}
	key, err := protocol.ParseEncryptionKey(*wire.Key)
	if err != nil {
		return data, fmt.Errorf("%w: %v", ErrInvalidJSON, err)
	}
	if wire.ThumbnailBlobID != nil {
		thumb, err := protocol.ParseBlobID(*wire.ThumbnailBlobID)
		if err != nil {
			return data, fmt.Errorf("%w: thumbnail: %v", ErrInvalidJSON, err)
		}
		data.ThumbnailBlobID = &thumb
	}

	rendering, err := fileRendering(wire.Rendering, wire.DeprecatedRender)
	if err != nil {
		return data, err
	}

	data.BlobID = blobID
	data.Key = key
	data.MediaType = wire.MediaType
	if data.MediaType == "" {
		data.MediaType = defaultFileMediaType
	}
	data.ThumbnailMediaType = wire.ThumbnailMediaType
	data.FileName = wire.FileName
	data.Size = wire.Size
	data.Caption = wire.Caption
	data.Rendering = rendering
	data.CorrelationID = wire.CorrelationID
	if len(wire.Metadata) > 0 && string(wire.Metadata) != "null" {
		data.Metadata = append(json.RawMessage(nil), wire.Metadata...)
	}

	return data, nil
}

// fileRendering prefers the current rendering field and falls back to the
// deprecated media flag sent by older clients.
func fileRendering(current, deprecated *int) (RenderingType, error) {
	if current != nil {
		if *current < 0 || *current > int(RenderingSticker) {
			return 0, fmt.Errorf("%w: rendering type %d", ErrInvalidValue, *current)
		}
		return RenderingType(*current), nil
	}
	if deprecated != nil && *deprecated == 1 {
		return RenderingMedia, nil
	}
	return RenderingFile, nil
}

// FileMessage shares a file, or media rendered from a file, in a 1:1
// conversation.
type FileMessage struct {
	body
	File FileData `json:"file"`
}

func (FileMessage) Type() protocol.MessageType { return protocol.MsgTypeFile }

func decodeFile(r protocol.ByteReader) (Body, error) {
	file, err := decodeFileData(r)
	if err != nil {
		return nil, err
	}
	return FileMessage{File: file}, nil
}

// GroupFileMessage shares a file with a group.
type GroupFileMessage struct {
	body
	Group GroupMemberContainer `json:"group"`
	File  FileData             `json:"file"`
}

func (GroupFileMessage) Type() protocol.MessageType { return protocol.MsgTypeGroupFile }

func decodeGroupFile(r protocol.ByteReader) (Body, error) {
	group, err := decodeGroupMember(r)
	if err != nil {
		return nil, err
	}
	file, err := decodeFileData(r)
	if err != nil {
		return nil, err
	}
	return GroupFileMessage{Group: group, File: file}, nil
}
