package protocol

import (
	"crypto/rand"
	"errors"
	"fmt"
)

// MinPaddedLength is the minimum size of a padded container, so that short
// control messages are indistinguishable from short text messages.
const MinPaddedLength = 32

var (
	ErrInvalidContainer = errors.New("invalid message container")
	ErrInvalidPadding   = errors.New("invalid padding")
)

// ParseContainer splits a decrypted message container into its type tag and
// body. The container layout is:
//
//	type (1 byte) || body || padding (N bytes, each of value N, 1 <= N <= 255)
//
// The returned body aliases data.
func ParseContainer(data []byte) (MessageType, []byte, error) {
	if len(data) < 2 {
		return 0, nil, fmt.Errorf("%w: %d bytes", ErrInvalidContainer, len(data))
	}

	paddingLen := int(data[len(data)-1])
	body, err := removePadding(data[1:], paddingLen)
	if err != nil {
		return 0, nil, err
	}

	return MessageType(data[0]), body, nil
}

// EncodeContainer builds a padded container for the given type and body. The
// padding length is random, raised where necessary to reach MinPaddedLength.
func EncodeContainer(msgType MessageType, body []byte) ([]byte, error) {
	var randomByte [1]byte
	if _, err := rand.Read(randomByte[:]); err != nil {
		return nil, err
	}

	paddingLen := int(randomByte[0])
	if paddingLen == 0 {
		paddingLen = 1
	}
	if 1+len(body)+paddingLen < MinPaddedLength {
		paddingLen = MinPaddedLength - 1 - len(body)
	}

	return EncodeContainerWithPadding(msgType, body, paddingLen)
}

// EncodeContainerWithPadding is EncodeContainer with a caller-chosen padding
// length.
func EncodeContainerWithPadding(msgType MessageType, body []byte, paddingLen int) ([]byte, error) {
	if paddingLen < 1 || paddingLen > 255 {
		return nil, fmt.Errorf("%w: length %d out of range", ErrInvalidPadding, paddingLen)
	}

	buf := make([]byte, 1+len(body)+paddingLen)
	buf[0] = byte(msgType)
	copy(buf[1:], body)
	for i := 1 + len(body); i < len(buf); i++ {
		buf[i] = byte(paddingLen)
	}

	return buf, nil
}

func removePadding(padded []byte, paddingLen int) ([]byte, error) {
	if paddingLen == 0 || paddingLen > len(padded) {
		return nil, fmt.Errorf("%w: length %d for %d bytes", ErrInvalidPadding, paddingLen, len(padded))
	}
	return padded[:len(padded)-paddingLen], nil
}
