package message

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ZentaChain/zentalk-csp/pkg/protocol"
)

func TestBodyJSON(t *testing.T) {
	tests := []struct {
		name string
		body Body
		want string
	}{
		{
			name: "group text",
			body: GroupTextMessage{Group: testGroup, Text: "hi"},
			want: `{"group":{"creatorIdentity":"ECHOECHO","groupId":"0102030405060708"},"text":"hi"}`,
		},
		{
			name: "delivery receipt",
			body: DeliveryReceipt{Receipt: Receipt{Status: ReceiptRead, MessageIDs: []protocol.MessageID{1}}},
			want: `{"status":"read","messageIds":["0100000000000000"]}`,
		},
		{
			name: "group delete",
			body: GroupDeleteMessage{Group: testGroup, MessageID: 2},
			want: `{"group":{"creatorIdentity":"ECHOECHO","groupId":"0102030405060708"},"messageId":"0200000000000000"}`,
		},
		{
			name: "call hangup",
			body: CallHangup{CallID: 5},
			want: `{"callId":5}`,
		},
		{
			name: "location without optional fields",
			body: LocationMessage{Location: Location{Latitude: 1.5, Longitude: -2}},
			want: `{"latitude":1.5,"longitude":-2}`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := json.Marshal(tt.body)
			require.NoError(t, err)
			assert.JSONEq(t, tt.want, string(got))
		})
	}
}
