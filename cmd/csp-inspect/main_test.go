package main

import (
	"bytes"
	"encoding/hex"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ZentaChain/zentalk-csp/pkg/message"
	"github.com/ZentaChain/zentalk-csp/pkg/protocol"
)

func TestDecodeOnce(t *testing.T) {
	container, err := protocol.EncodeContainer(protocol.MsgTypeText, []byte("hi"))
	require.NoError(t, err)

	tests := []struct {
		name       string
		container  string
		typeName   string
		payload    string
		wantType   string
		wantBody   map[string]any
		wantErrIs  error
		wantAnyErr bool
	}{
		{name: "container", container: hex.EncodeToString(container), wantType: "Text", wantBody: map[string]any{"text": "hi"}},
		{name: "body", typeName: "Text", payload: hex.EncodeToString([]byte("yo")), wantType: "Text", wantBody: map[string]any{"text": "yo"}},
		{name: "empty body", typeName: "Empty", wantType: "Empty", wantBody: map[string]any{}},
		{name: "contact delete profile picture", typeName: "0x19", wantType: "ContactDeleteProfilePicture", wantBody: map[string]any{}},
		{name: "missing content", typeName: "TypingIndicator", wantErrIs: message.ErrUnexpectedEOF},
		{name: "unknown type", typeName: "Nope", wantAnyErr: true},
		{name: "bad hex", typeName: "Text", payload: "zz", wantAnyErr: true},
		{name: "container with type", container: hex.EncodeToString(container), typeName: "Text", wantAnyErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var out bytes.Buffer
			err := decodeOnce(&out, tt.container, tt.typeName, tt.payload)
			if tt.wantErrIs != nil || tt.wantAnyErr {
				require.Error(t, err)
				if tt.wantErrIs != nil {
					assert.ErrorIs(t, err, tt.wantErrIs)
				}
				assert.Empty(t, out.String())
				return
			}
			require.NoError(t, err)

			var got map[string]any
			require.NoError(t, json.Unmarshal(out.Bytes(), &got))
			assert.Equal(t, tt.wantType, got["type"])
			assert.Equal(t, tt.wantBody, got["body"])
		})
	}
}
