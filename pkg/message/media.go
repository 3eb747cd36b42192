package message

import (
	"github.com/ZentaChain/zentalk-csp/pkg/protocol"
)

// BlobReference points at an encrypted blob and the key to decrypt it.
type BlobReference struct {
	BlobID protocol.BlobID        `json:"blobId"`
	Size   uint32                 `json:"size"`
	Key    protocol.EncryptionKey `json:"key"`
}

func decodeBlobReference(r protocol.ByteReader) (BlobReference, error) {
	var ref BlobReference
	id, size, err := readBlob(r)
	if err != nil {
		return ref, err
	}
	ref.BlobID, ref.Size = id, size
	ref.Key, err = readKey(r)
	return ref, err
}

// VideoData is the legacy video layout shared by the 1:1 and group variants.
type VideoData struct {
	DurationSeconds uint16                 `json:"durationSeconds"`
	VideoBlobID     protocol.BlobID        `json:"videoBlobId"`
	VideoSize       uint32                 `json:"videoSize"`
	ThumbnailBlobID protocol.BlobID        `json:"thumbnailBlobId"`
	ThumbnailSize   uint32                 `json:"thumbnailSize"`
	Key             protocol.EncryptionKey `json:"key"`
}

func decodeVideoData(r protocol.ByteReader) (VideoData, error) {
	var v VideoData
	var err error
	if v.DurationSeconds, err = r.ReadU16LE(); err != nil {
		return v, err
	}
	if v.VideoBlobID, v.VideoSize, err = readBlob(r); err != nil {
		return v, err
	}
	if v.ThumbnailBlobID, v.ThumbnailSize, err = readBlob(r); err != nil {
		return v, err
	}
	v.Key, err = readKey(r)
	return v, err
}

// AudioData is the legacy audio layout shared by the 1:1 and group variants.
type AudioData struct {
	DurationSeconds uint16        `json:"durationSeconds"`
	Blob            BlobReference `json:"blob"`
}

func decodeAudioData(r protocol.ByteReader) (AudioData, error) {
	var a AudioData
	var err error
	if a.DurationSeconds, err = r.ReadU16LE(); err != nil {
		return a, err
	}
	a.Blob, err = decodeBlobReference(r)
	return a, err
}

// ===== IMAGE =====

// DeprecatedImageMessage is the legacy image message. The blob is encrypted
// with the conversation's shared secret using Nonce.
type DeprecatedImageMessage struct {
	body
	BlobID protocol.BlobID `json:"blobId"`
	Size   uint32          `json:"size"`
	Nonce  protocol.Nonce  `json:"nonce"`
}

func (DeprecatedImageMessage) Type() protocol.MessageType { return protocol.MsgTypeDeprecatedImage }

func decodeDeprecatedImage(r protocol.ByteReader) (Body, error) {
	id, size, err := readBlob(r)
	if err != nil {
		return nil, err
	}
	m := DeprecatedImageMessage{BlobID: id, Size: size}
	if err := protocol.ReadInto(r, m.Nonce[:]); err != nil {
		return nil, err
	}
	return m, nil
}

// GroupImageMessage is the legacy group image message.
type GroupImageMessage struct {
	body
	Group GroupMemberContainer `json:"group"`
	Blob  BlobReference        `json:"blob"`
}

func (GroupImageMessage) Type() protocol.MessageType { return protocol.MsgTypeGroupImage }

func decodeGroupImage(r protocol.ByteReader) (Body, error) {
	group, err := decodeGroupMember(r)
	if err != nil {
		return nil, err
	}
	blob, err := decodeBlobReference(r)
	if err != nil {
		return nil, err
	}
	return GroupImageMessage{Group: group, Blob: blob}, nil
}

// ===== VIDEO =====

// DeprecatedVideoMessage is the legacy video message, superseded by file
// messages.
type DeprecatedVideoMessage struct {
	body
	VideoData
}

func (DeprecatedVideoMessage) Type() protocol.MessageType { return protocol.MsgTypeDeprecatedVideo }

func decodeDeprecatedVideo(r protocol.ByteReader) (Body, error) {
	v, err := decodeVideoData(r)
	if err != nil {
		return nil, err
	}
	return DeprecatedVideoMessage{VideoData: v}, nil
}

// GroupVideoMessage is the legacy group video message.
type GroupVideoMessage struct {
	body
	Group GroupMemberContainer `json:"group"`
	VideoData
}

func (GroupVideoMessage) Type() protocol.MessageType { return protocol.MsgTypeGroupVideo }

func decodeGroupVideo(r protocol.ByteReader) (Body, error) {
	group, err := decodeGroupMember(r)
	if err != nil {
		return nil, err
	}
	v, err := decodeVideoData(r)
	if err != nil {
		return nil, err
	}
	return GroupVideoMessage{Group: group, VideoData: v}, nil
}

// ===== AUDIO =====

// DeprecatedAudioMessage is the legacy voice message, superseded by file
// messages.
type DeprecatedAudioMessage struct {
	body
	AudioData
}

func (DeprecatedAudioMessage) Type() protocol.MessageType { return protocol.MsgTypeDeprecatedAudio }

func decodeDeprecatedAudio(r protocol.ByteReader) (Body, error) {
	a, err := decodeAudioData(r)
	if err != nil {
		return nil, err
	}
	return DeprecatedAudioMessage{AudioData: a}, nil
}

// GroupAudioMessage is the legacy group voice message.
type GroupAudioMessage struct {
	body
	Group GroupMemberContainer `json:"group"`
	AudioData
}

func (GroupAudioMessage) Type() protocol.MessageType { return protocol.MsgTypeGroupAudio }

func decodeGroupAudio(r protocol.ByteReader) (Body, error) {
	group, err := decodeGroupMember(r)
	if err != nil {
		return nil, err
	}
	a, err := decodeAudioData(r)
	if err != nil {
		return nil, err
	}
	return GroupAudioMessage{Group: group, AudioData: a}, nil
}

// ===== PROFILE PICTURES =====

// ContactSetProfilePicture distributes the sender's profile picture.
type ContactSetProfilePicture struct {
	body
	Blob BlobReference `json:"blob"`
}

func (ContactSetProfilePicture) Type() protocol.MessageType {
	return protocol.MsgTypeContactSetProfilePicture
}

func decodeContactSetProfilePicture(r protocol.ByteReader) (Body, error) {
	blob, err := decodeBlobReference(r)
	if err != nil {
		return nil, err
	}
	return ContactSetProfilePicture{Blob: blob}, nil
}

// ContactDeleteProfilePicture tells the receiver to drop the sender's
// profile picture.
type ContactDeleteProfilePicture struct {
	body
}

func (ContactDeleteProfilePicture) Type() protocol.MessageType {
	return protocol.MsgTypeContactDeleteProfilePicture
}

// ContactRequestProfilePicture asks the receiver to send its profile picture
// again.
type ContactRequestProfilePicture struct {
	body
}

func (ContactRequestProfilePicture) Type() protocol.MessageType {
	return protocol.MsgTypeContactRequestProfilePicture
}

// GroupSetProfilePicture distributes the group picture. Only the creator
// sends it.
type GroupSetProfilePicture struct {
	body
	Group GroupCreatorContainer `json:"group"`
	Blob  BlobReference         `json:"blob"`
}

func (GroupSetProfilePicture) Type() protocol.MessageType {
	return protocol.MsgTypeGroupSetProfilePicture
}

func decodeGroupSetProfilePicture(r protocol.ByteReader) (Body, error) {
	group, err := decodeGroupCreator(r)
	if err != nil {
		return nil, err
	}
	blob, err := decodeBlobReference(r)
	if err != nil {
		return nil, err
	}
	return GroupSetProfilePicture{Group: group, Blob: blob}, nil
}

// GroupDeleteProfilePicture removes the group picture.
type GroupDeleteProfilePicture struct {
	body
	Group GroupCreatorContainer `json:"group"`
}

func (GroupDeleteProfilePicture) Type() protocol.MessageType {
	return protocol.MsgTypeGroupDeleteProfilePicture
}

func decodeGroupDeleteProfilePicture(r protocol.ByteReader) (Body, error) {
	group, err := decodeGroupCreator(r)
	if err != nil {
		return nil, err
	}
	return GroupDeleteProfilePicture{Group: group}, nil
}
