package message

import (
	"bytes"
	"encoding/binary"
	"errors"
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/protobuf/encoding/protowire"

	"github.com/ZentaChain/zentalk-csp/pkg/protocol"
)

var (
	testCreator = mustIdentity("ECHOECHO")
	testMember  = mustIdentity("*SUPPORT")
	testGroupID = protocol.GroupID{1, 2, 3, 4, 5, 6, 7, 8}
	testGroup   = GroupMemberContainer{CreatorIdentity: testCreator, GroupID: testGroupID}
)

func mustIdentity(s string) protocol.Identity {
	id, err := protocol.ParseIdentity(s)
	if err != nil {
		panic(err)
	}
	return id
}

func concat(parts ...[]byte) []byte {
	return bytes.Join(parts, nil)
}

func groupMemberBytes() []byte {
	return concat(testCreator[:], testGroupID[:])
}

func u16(v uint16) []byte { return binary.LittleEndian.AppendUint16(nil, v) }
func u32(v uint32) []byte { return binary.LittleEndian.AppendUint32(nil, v) }
func u64(v uint64) []byte { return binary.LittleEndian.AppendUint64(nil, v) }

func repeat(b byte, n int) []byte { return bytes.Repeat([]byte{b}, n) }

func pbFixed64(b []byte, num protowire.Number, v uint64) []byte {
	b = protowire.AppendTag(b, num, protowire.Fixed64Type)
	return protowire.AppendFixed64(b, v)
}

func pbBytes(b []byte, num protowire.Number, v []byte) []byte {
	b = protowire.AppendTag(b, num, protowire.BytesType)
	return protowire.AppendBytes(b, v)
}

func pbVarint(b []byte, num protowire.Number, v uint64) []byte {
	b = protowire.AppendTag(b, num, protowire.VarintType)
	return protowire.AppendVarint(b, v)
}

const (
	testBlobHex = "000102030405060708090a0b0c0d0e0f"
	testKeyHex  = "1111111111111111111111111111111111111111111111111111111111111111"
)

func TestDecodeBodies(t *testing.T) {
	blobID := protocol.BlobID{0, 1, 2, 3, 4, 5, 6, 7, 8, 9, 10, 11, 12, 13, 14, 15}
	var key protocol.EncryptionKey
	copy(key[:], repeat(0x11, 32))
	accuracy := 10.0
	sdpMid, sdpMLineIndex, ufrag := "0", 0, "abcd"
	busy, unknownReason := CallRejectBusy, CallRejectUnknown

	tests := []struct {
		name    string
		msgType protocol.MessageType
		payload []byte
		want    Body
	}{
		{
			name:    "text",
			msgType: protocol.MsgTypeText,
			payload: []byte("Hello, World!"),
			want:    TextMessage{Text: "Hello, World!"},
		},
		{
			name:    "empty text",
			msgType: protocol.MsgTypeText,
			payload: nil,
			want:    TextMessage{Text: ""},
		},
		{
			name:    "multi-byte text",
			msgType: protocol.MsgTypeText,
			payload: []byte("Grüezi 👋"),
			want:    TextMessage{Text: "Grüezi 👋"},
		},
		{
			name:    "group text",
			msgType: protocol.MsgTypeGroupText,
			payload: concat(groupMemberBytes(), []byte("hi all")),
			want:    GroupTextMessage{Group: testGroup, Text: "hi all"},
		},
		{
			name:    "web session resume",
			msgType: protocol.MsgTypeWebSessionResume,
			payload: []byte{0x00, 0xff, 0x10},
			want:    WebSessionResume{Data: []byte{0x00, 0xff, 0x10}},
		},
		{
			name:    "empty",
			msgType: protocol.MsgTypeEmpty,
			payload: nil,
			want:    EmptyMessage{},
		},
		{
			name:    "location with name and address",
			msgType: protocol.MsgTypeLocation,
			payload: []byte("47.3779,8.5403,10\nZürich HB\nBahnhofplatz\\n8001 Zürich"),
			want: LocationMessage{Location: Location{
				Latitude:  47.3779,
				Longitude: 8.5403,
				Accuracy:  &accuracy,
				Name:      "Zürich HB",
				Address:   "Bahnhofplatz\n8001 Zürich",
			}},
		},
		{
			name:    "location with address only",
			msgType: protocol.MsgTypeLocation,
			payload: []byte("-33.8568,151.2153\nSydney"),
			want: LocationMessage{Location: Location{
				Latitude:  -33.8568,
				Longitude: 151.2153,
				Address:   "Sydney",
			}},
		},
		{
			name:    "group location",
			msgType: protocol.MsgTypeGroupLocation,
			payload: concat(groupMemberBytes(), []byte("0,0")),
			want:    GroupLocationMessage{Group: testGroup},
		},
		{
			name:    "deprecated image",
			msgType: protocol.MsgTypeDeprecatedImage,
			payload: concat(blobID[:], u32(2048), repeat(0xaa, 24)),
			want: DeprecatedImageMessage{
				BlobID: blobID,
				Size:   2048,
				Nonce:  protocol.Nonce(repeat(0xaa, 24)),
			},
		},
		{
			name:    "group image",
			msgType: protocol.MsgTypeGroupImage,
			payload: concat(groupMemberBytes(), blobID[:], u32(99), key[:]),
			want: GroupImageMessage{
				Group: testGroup,
				Blob:  BlobReference{BlobID: blobID, Size: 99, Key: key},
			},
		},
		{
			name:    "deprecated video",
			msgType: protocol.MsgTypeDeprecatedVideo,
			payload: concat(u16(42), blobID[:], u32(1000), blobID[:], u32(10), key[:]),
			want: DeprecatedVideoMessage{VideoData: VideoData{
				DurationSeconds: 42,
				VideoBlobID:     blobID,
				VideoSize:       1000,
				ThumbnailBlobID: blobID,
				ThumbnailSize:   10,
				Key:             key,
			}},
		},
		{
			name:    "deprecated audio",
			msgType: protocol.MsgTypeDeprecatedAudio,
			payload: concat(u16(7), blobID[:], u32(500), key[:]),
			want: DeprecatedAudioMessage{AudioData: AudioData{
				DurationSeconds: 7,
				Blob:            BlobReference{BlobID: blobID, Size: 500, Key: key},
			}},
		},
		{
			name:    "file",
			msgType: protocol.MsgTypeFile,
			payload: []byte(`{"b":"` + testBlobHex + `","k":"` + testKeyHex + `","m":"image/jpeg","n":"cat.jpg","s":1234,"j":1,"d":"a cat"}`),
			want: FileMessage{File: FileData{
				BlobID:    blobID,
				Key:       key,
				MediaType: "image/jpeg",
				FileName:  "cat.jpg",
				Size:      1234,
				Caption:   "a cat",
				Rendering: RenderingMedia,
			}},
		},
		{
			name:    "file with defaults and deprecated rendering flag",
			msgType: protocol.MsgTypeFile,
			payload: []byte(`{"b":"` + testBlobHex + `","k":"` + testKeyHex + `","i":1}`),
			want: FileMessage{File: FileData{
				BlobID:    blobID,
				Key:       key,
				MediaType: "application/octet-stream",
				Rendering: RenderingMedia,
			}},
		},
		{
			name:    "contact set profile picture",
			msgType: protocol.MsgTypeContactSetProfilePicture,
			payload: concat(blobID[:], u32(77), key[:]),
			want:    ContactSetProfilePicture{Blob: BlobReference{BlobID: blobID, Size: 77, Key: key}},
		},
		{
			name:    "contact delete profile picture",
			msgType: protocol.MsgTypeContactDeleteProfilePicture,
			want:    ContactDeleteProfilePicture{},
		},
		{
			name:    "contact request profile picture",
			msgType: protocol.MsgTypeContactRequestProfilePicture,
			want:    ContactRequestProfilePicture{},
		},
		{
			name:    "group setup",
			msgType: protocol.MsgTypeGroupSetup,
			payload: concat(testGroupID[:], []byte("ECHOECHO*SUPPORT")),
			want: GroupSetup{
				Group:   GroupCreatorContainer{GroupID: testGroupID},
				Members: []protocol.Identity{testCreator, testMember},
			},
		},
		{
			name:    "group setup dissolving the group",
			msgType: protocol.MsgTypeGroupSetup,
			payload: testGroupID[:],
			want: GroupSetup{
				Group:   GroupCreatorContainer{GroupID: testGroupID},
				Members: []protocol.Identity{},
			},
		},
		{
			name:    "group name",
			msgType: protocol.MsgTypeGroupName,
			payload: concat(testGroupID[:], []byte("Climbing")),
			want:    GroupName{Group: GroupCreatorContainer{GroupID: testGroupID}, Name: "Climbing"},
		},
		{
			name:    "group leave",
			msgType: protocol.MsgTypeGroupLeave,
			payload: groupMemberBytes(),
			want:    GroupLeave{Group: testGroup},
		},
		{
			name:    "group sync request",
			msgType: protocol.MsgTypeGroupSyncRequest,
			payload: groupMemberBytes(),
			want:    GroupSyncRequest{Group: testGroup},
		},
		{
			name:    "group delete profile picture",
			msgType: protocol.MsgTypeGroupDeleteProfilePicture,
			payload: testGroupID[:],
			want:    GroupDeleteProfilePicture{Group: GroupCreatorContainer{GroupID: testGroupID}},
		},
		{
			name:    "group call start",
			msgType: protocol.MsgTypeGroupCallStart,
			payload: concat(groupMemberBytes(),
				pbBytes(pbBytes(pbVarint(nil, 1, 1), 2, key[:]), 3, []byte("https://sfu.example.com"))),
			want: GroupCallStart{
				Group:           testGroup,
				ProtocolVersion: 1,
				GCK:             key,
				SFUBaseURL:      "https://sfu.example.com",
			},
		},
		{
			name:    "poll setup",
			msgType: protocol.MsgTypePollSetup,
			payload: concat(repeat(0x05, 8), []byte(`{"d":"Lunch?","s":0,"a":0,"t":0,"o":0,"c":[{"i":0,"d":"Pizza","o":0},{"i":1,"d":"Sushi","o":1}]}`)),
			want: PollSetupMessage{PollSetup: PollSetup{
				PollID: protocol.PollID(repeat(0x05, 8)),
				Poll: PollData{
					Description: "Lunch?",
					Choices: []PollChoice{
						{ID: 0, Description: "Pizza", Order: 0},
						{ID: 1, Description: "Sushi", Order: 1},
					},
				},
			}},
		},
		{
			name:    "poll vote",
			msgType: protocol.MsgTypePollVote,
			payload: concat(testCreator[:], repeat(0x05, 8), []byte(`[[0,1],[1,0]]`)),
			want: PollVoteMessage{PollVotes: PollVotes{
				PollCreator: testCreator,
				PollID:      protocol.PollID(repeat(0x05, 8)),
				Votes:       []PollVote{{ChoiceID: 0, Selected: true}, {ChoiceID: 1, Selected: false}},
			}},
		},
		{
			name:    "call offer",
			msgType: protocol.MsgTypeCallOffer,
			payload: []byte(`{"callId":7,"offer":{"sdpType":"offer","sdp":"v=0"}}`),
			want:    CallOffer{CallID: 7, Offer: SessionDescription{SDPType: "offer", SDP: "v=0"}},
		},
		{
			name:    "call answer accept",
			msgType: protocol.MsgTypeCallAnswer,
			payload: []byte(`{"callId":7,"action":1,"answer":{"sdpType":"answer","sdp":"v=0"}}`),
			want: CallAnswer{
				CallID: 7,
				Action: CallAnswerAccept,
				Answer: &SessionDescription{SDPType: "answer", SDP: "v=0"},
			},
		},
		{
			name:    "call hangup",
			msgType: protocol.MsgTypeCallHangup,
			payload: []byte(`{"callId":7}`),
			want:    CallHangup{CallID: 7},
		},
		{
			name:    "call ringing",
			msgType: protocol.MsgTypeCallRinging,
			payload: []byte(`{"callId":7}`),
			want:    CallRinging{CallID: 7},
		},
		{
			name:    "delivery receipt",
			msgType: protocol.MsgTypeDeliveryReceipt,
			payload: concat([]byte{0x02}, u64(0x0102030405060708), u64(42)),
			want: DeliveryReceipt{Receipt: Receipt{
				Status:     ReceiptRead,
				MessageIDs: []protocol.MessageID{0x0102030405060708, 42},
			}},
		},
		{
			name:    "group delivery receipt",
			msgType: protocol.MsgTypeGroupDeliveryReceipt,
			payload: concat(groupMemberBytes(), []byte{0x03}, u64(1)),
			want: GroupDeliveryReceipt{Group: testGroup, Receipt: Receipt{
				Status:     ReceiptAcknowledged,
				MessageIDs: []protocol.MessageID{1},
			}},
		},
		{
			name:    "typing started",
			msgType: protocol.MsgTypeTypingIndicator,
			payload: []byte{0x01},
			want:    TypingIndicator{Typing: true},
		},
		{
			name:    "typing stopped",
			msgType: protocol.MsgTypeTypingIndicator,
			payload: []byte{0x00},
			want:    TypingIndicator{Typing: false},
		},
		{
			name:    "reaction apply",
			msgType: protocol.MsgTypeReaction,
			payload: pbBytes(pbFixed64(nil, 1, 99), 2, []byte("👍")),
			want:    Reaction{ReactionData: ReactionData{MessageID: 99, Action: ReactionApply, Emoji: "👍"}},
		},
		{
			name:    "group reaction withdraw",
			msgType: protocol.MsgTypeGroupReaction,
			payload: concat(groupMemberBytes(), pbBytes(pbFixed64(nil, 1, 99), 3, []byte("👍"))),
			want: GroupReaction{Group: testGroup, ReactionData: ReactionData{
				MessageID: 99, Action: ReactionWithdraw, Emoji: "👍",
			}},
		},
		{
			name:    "reaction oneof last member wins",
			msgType: protocol.MsgTypeReaction,
			payload: pbBytes(pbBytes(pbFixed64(nil, 1, 5), 3, []byte("❤")), 2, []byte("🎉")),
			want:    Reaction{ReactionData: ReactionData{MessageID: 5, Action: ReactionApply, Emoji: "🎉"}},
		},
		{
			name:    "edit",
			msgType: protocol.MsgTypeEditMessage,
			payload: pbBytes(pbFixed64(nil, 1, 12), 2, []byte("fixed typo")),
			want:    EditMessage{EditData: EditData{MessageID: 12, Text: "fixed typo"}},
		},
		{
			name:    "group edit",
			msgType: protocol.MsgTypeGroupEditMessage,
			payload: concat(groupMemberBytes(), pbBytes(pbFixed64(nil, 1, 12), 2, []byte("x"))),
			want:    GroupEditMessage{Group: testGroup, EditData: EditData{MessageID: 12, Text: "x"}},
		},
		{
			name:    "delete",
			msgType: protocol.MsgTypeDeleteMessage,
			payload: pbFixed64(nil, 1, 12),
			want:    DeleteMessage{MessageID: 12},
		},
		{
			name:    "group delete",
			msgType: protocol.MsgTypeGroupDeleteMessage,
			payload: concat(groupMemberBytes(), pbFixed64(nil, 1, 12)),
			want:    GroupDeleteMessage{Group: testGroup, MessageID: 12},
		},
		{
			name:    "group video",
			msgType: protocol.MsgTypeGroupVideo,
			payload: concat(groupMemberBytes(), u16(3), blobID[:], u32(4000), blobID[:], u32(40), key[:]),
			want: GroupVideoMessage{Group: testGroup, VideoData: VideoData{
				DurationSeconds: 3,
				VideoBlobID:     blobID,
				VideoSize:       4000,
				ThumbnailBlobID: blobID,
				ThumbnailSize:   40,
				Key:             key,
			}},
		},
		{
			name:    "group audio",
			msgType: protocol.MsgTypeGroupAudio,
			payload: concat(groupMemberBytes(), u16(65), blobID[:], u32(800), key[:]),
			want: GroupAudioMessage{Group: testGroup, AudioData: AudioData{
				DurationSeconds: 65,
				Blob:            BlobReference{BlobID: blobID, Size: 800, Key: key},
			}},
		},
		{
			name:    "group file",
			msgType: protocol.MsgTypeGroupFile,
			payload: concat(groupMemberBytes(),
				[]byte(`{"b":"`+testBlobHex+`","t":"`+testBlobHex+`","k":"`+testKeyHex+`","m":"application/pdf","p":"image/jpeg","n":"plan.pdf","s":9,"j":0}`)),
			want: GroupFileMessage{Group: testGroup, File: FileData{
				BlobID:             blobID,
				ThumbnailBlobID:    &blobID,
				Key:                key,
				MediaType:          "application/pdf",
				ThumbnailMediaType: "image/jpeg",
				FileName:           "plan.pdf",
				Size:               9,
				Rendering:          RenderingFile,
			}},
		},
		{
			name:    "group set profile picture",
			msgType: protocol.MsgTypeGroupSetProfilePicture,
			payload: concat(testGroupID[:], blobID[:], u32(512), key[:]),
			want: GroupSetProfilePicture{
				Group: GroupCreatorContainer{GroupID: testGroupID},
				Blob:  BlobReference{BlobID: blobID, Size: 512, Key: key},
			},
		},
		{
			name:    "group poll setup",
			msgType: protocol.MsgTypeGroupPollSetup,
			payload: concat(groupMemberBytes(), repeat(0x06, 8),
				[]byte(`{"d":"When?","s":1,"a":1,"t":1,"o":0,"c":[{"i":3,"d":"Monday","o":0,"r":[1,0]}],"p":["ECHOECHO","*SUPPORT"]}`)),
			want: GroupPollSetupMessage{Group: testGroup, PollSetup: PollSetup{
				PollID: protocol.PollID(repeat(0x06, 8)),
				Poll: PollData{
					Description:  "When?",
					State:        PollStateClosed,
					Assessment:   PollAssessmentMultipleChoice,
					Visibility:   PollVisibilityShowOnClose,
					Choices:      []PollChoice{{ID: 3, Description: "Monday", Order: 0, Results: []int{1, 0}}},
					Participants: []string{"ECHOECHO", "*SUPPORT"},
				},
			}},
		},
		{
			name:    "group poll vote",
			msgType: protocol.MsgTypeGroupPollVote,
			payload: concat(groupMemberBytes(), testMember[:], repeat(0x06, 8), []byte(`[[3,1]]`)),
			want: GroupPollVoteMessage{Group: testGroup, PollVotes: PollVotes{
				PollCreator: testMember,
				PollID:      protocol.PollID(repeat(0x06, 8)),
				Votes:       []PollVote{{ChoiceID: 3, Selected: true}},
			}},
		},
		{
			name:    "call ice candidates",
			msgType: protocol.MsgTypeCallICECandidate,
			payload: []byte(`{"callId":7,"candidates":[{"candidate":"candidate:1 1 udp 1 10.0.0.1 5000 typ host","sdpMid":"0","sdpMLineIndex":0,"ufrag":"abcd"}]}`),
			want: CallICECandidates{CallID: 7, Candidates: []ICECandidate{{
				Candidate:     "candidate:1 1 udp 1 10.0.0.1 5000 typ host",
				SDPMid:        &sdpMid,
				SDPMLineIndex: &sdpMLineIndex,
				UFrag:         &ufrag,
			}}},
		},
		{
			name:    "call answer reject",
			msgType: protocol.MsgTypeCallAnswer,
			payload: []byte(`{"callId":7,"action":0,"rejectReason":1}`),
			want:    CallAnswer{CallID: 7, Action: CallAnswerReject, RejectReason: &busy},
		},
		{
			name:    "call answer reject without reason",
			msgType: protocol.MsgTypeCallAnswer,
			payload: []byte(`{"callId":7,"action":0}`),
			want:    CallAnswer{CallID: 7, Action: CallAnswerReject, RejectReason: &unknownReason},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Decode(tt.msgType, tt.payload)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
			assert.Equal(t, tt.msgType, got.Type(), "body variant must match the decoded type")
		})
	}
}

func TestDecodeErrors(t *testing.T) {
	tests := []struct {
		name    string
		msgType protocol.MessageType
		payload []byte
		wantErr error
	}{
		{"text with lone continuation byte", protocol.MsgTypeText, []byte{0x80}, ErrInvalidString},
		{"text with invalid tail", protocol.MsgTypeText, []byte("ab\xff"), ErrInvalidString},
		{"text with truncated sequence", protocol.MsgTypeText, []byte{0xc3}, ErrInvalidString},
		{"text with surrogate half", protocol.MsgTypeText, []byte{0xed, 0xa0, 0x80}, ErrInvalidString},
		{"group text too short", protocol.MsgTypeGroupText, repeat('A', 15), ErrUnexpectedEOF},
		{"group text lower case creator", protocol.MsgTypeGroupText, concat([]byte("echoecho"), testGroupID[:]), ErrInvalidIdentity},
		{"empty with content", protocol.MsgTypeEmpty, []byte{0x00}, ErrTrailingBytes},
		{"contact delete picture with content", protocol.MsgTypeContactDeleteProfilePicture, []byte{0x01}, ErrTrailingBytes},
		{"group leave with trailing bytes", protocol.MsgTypeGroupLeave, concat(groupMemberBytes(), []byte{0}), ErrTrailingBytes},
		{"typing without flag", protocol.MsgTypeTypingIndicator, nil, ErrUnexpectedEOF},
		{"typing flag out of range", protocol.MsgTypeTypingIndicator, []byte{0x02}, ErrInvalidValue},
		{"typing trailing bytes", protocol.MsgTypeTypingIndicator, []byte{0x01, 0x00}, ErrTrailingBytes},
		{"receipt unknown status", protocol.MsgTypeDeliveryReceipt, concat([]byte{0x00}, u64(1)), ErrInvalidValue},
		{"receipt without ids", protocol.MsgTypeDeliveryReceipt, []byte{0x01}, ErrUnexpectedEOF},
		{"receipt partial id", protocol.MsgTypeDeliveryReceipt, concat([]byte{0x01}, u64(1), []byte{1, 2, 3}), ErrUnexpectedEOF},
		{"group setup partial member", protocol.MsgTypeGroupSetup, concat(testGroupID[:], []byte("ECHO")), ErrUnexpectedEOF},
		{"group setup invalid member", protocol.MsgTypeGroupSetup, concat(testGroupID[:], []byte("ECHO ECH")), ErrInvalidIdentity},
		{"deprecated image truncated nonce", protocol.MsgTypeDeprecatedImage, repeat(0, 16+4+23), ErrUnexpectedEOF},
		{"group image truncated key", protocol.MsgTypeGroupImage, concat(groupMemberBytes(), repeat(0, 16+4+31)), ErrUnexpectedEOF},
		{"location single coordinate", protocol.MsgTypeLocation, []byte("47.3"), ErrInvalidLocation},
		{"location latitude out of range", protocol.MsgTypeLocation, []byte("91,0"), ErrInvalidLocation},
		{"location longitude not a number", protocol.MsgTypeLocation, []byte("0,east"), ErrInvalidLocation},
		{"location negative accuracy", protocol.MsgTypeLocation, []byte("0,0,-1"), ErrInvalidLocation},
		{"location NaN", protocol.MsgTypeLocation, []byte("NaN,0"), ErrInvalidLocation},
		{"file not json", protocol.MsgTypeFile, []byte("{"), ErrInvalidJSON},
		{"file missing key", protocol.MsgTypeFile, []byte(`{"b":"` + testBlobHex + `"}`), ErrInvalidJSON},
		{"file short blob id", protocol.MsgTypeFile, []byte(`{"b":"00","k":"` + testKeyHex + `"}`), ErrInvalidJSON},
		{"file rendering out of range", protocol.MsgTypeFile, []byte(`{"b":"` + testBlobHex + `","k":"` + testKeyHex + `","j":3}`), ErrInvalidValue},
		{"file invalid utf-8", protocol.MsgTypeFile, []byte("{\"n\":\"\xff\"}"), ErrInvalidString},
		{"poll setup without choices", protocol.MsgTypePollSetup, concat(repeat(0, 8), []byte(`{"d":"?","c":[]}`)), ErrInvalidValue},
		{"poll setup bad state", protocol.MsgTypePollSetup, concat(repeat(0, 8), []byte(`{"d":"?","s":2,"c":[{"i":0,"d":"a","o":0}]}`)), ErrInvalidValue},
		{"poll setup bad participant", protocol.MsgTypePollSetup, concat(repeat(0, 8), []byte(`{"d":"?","c":[{"i":0,"d":"a","o":0}],"p":["nope"]}`)), ErrInvalidIdentity},
		{"poll vote malformed pair", protocol.MsgTypePollVote, concat(testCreator[:], repeat(0, 8), []byte(`[[0,2]]`)), ErrInvalidValue},
		{"call offer wrong sdp type", protocol.MsgTypeCallOffer, []byte(`{"callId":1,"offer":{"sdpType":"answer","sdp":""}}`), ErrInvalidValue},
		{"call offer without sdp", protocol.MsgTypeCallOffer, []byte(`{"callId":1}`), ErrInvalidValue},
		{"call answer negative action", protocol.MsgTypeCallAnswer, []byte(`{"callId":1,"action":-255}`), ErrInvalidValue},
		{"call answer without action", protocol.MsgTypeCallAnswer, []byte(`{"callId":1}`), ErrInvalidValue},
		{"call answer unknown reject reason", protocol.MsgTypeCallAnswer, []byte(`{"callId":1,"action":0,"rejectReason":9}`), ErrInvalidValue},
		{"call ice without candidates", protocol.MsgTypeCallICECandidate, []byte(`{"callId":1,"candidates":[]}`), ErrInvalidValue},
		{"call hangup negative call id", protocol.MsgTypeCallHangup, []byte(`{"callId":-1}`), ErrInvalidJSON},
		{"reaction truncated tag", protocol.MsgTypeReaction, []byte{0x09}, ErrInvalidProtobuf},
		{"reaction without message id", protocol.MsgTypeReaction, pbBytes(nil, 2, []byte("👍")), ErrInvalidProtobuf},
		{"reaction without action", protocol.MsgTypeReaction, pbFixed64(nil, 1, 1), ErrInvalidProtobuf},
		{"reaction empty emoji", protocol.MsgTypeReaction, pbBytes(pbFixed64(nil, 1, 1), 2, nil), ErrInvalidValue},
		{"reaction message id as varint", protocol.MsgTypeReaction, pbBytes(pbVarint(nil, 1, 1), 2, []byte("👍")), ErrInvalidProtobuf},
		{"edit invalid utf-8", protocol.MsgTypeEditMessage, pbBytes(pbFixed64(nil, 1, 1), 2, []byte{0xff}), ErrInvalidString},
		{"delete without message id", protocol.MsgTypeDeleteMessage, nil, ErrInvalidProtobuf},
		{"group call start short gck", protocol.MsgTypeGroupCallStart, concat(groupMemberBytes(), pbBytes(pbBytes(nil, 2, repeat(1, 16)), 3, []byte("u"))), ErrInvalidValue},
		{"group call start without sfu", protocol.MsgTypeGroupCallStart, concat(groupMemberBytes(), pbBytes(nil, 2, repeat(1, 32))), ErrInvalidValue},
		{"group join request", protocol.MsgTypeGroupJoinRequest, nil, ErrUnsupportedType},
		{"group join response", protocol.MsgTypeGroupJoinResponse, nil, ErrUnsupportedType},
		{"forward security envelope", protocol.MsgTypeForwardSecurityEnvelope, []byte{1, 2, 3}, ErrUnsupportedType},
		{"undefined type", protocol.MessageType(0x03), []byte("x"), ErrUnknownType},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Decode(tt.msgType, tt.payload)
			require.Error(t, err)
			assert.Nil(t, got)
			assert.ErrorIs(t, err, tt.wantErr)

			var decodeErr *DecodeError
			require.True(t, errors.As(err, &decodeErr), "error must be a *DecodeError")
			assert.Equal(t, tt.msgType, decodeErr.Type)
			assert.NotEmpty(t, Code(err))
		})
	}
}

func TestInvalidStringOffset(t *testing.T) {
	tests := []struct {
		name    string
		payload []byte
		offset  int
	}{
		{"first byte", []byte{0x80}, 0},
		{"after ascii", []byte("ab\xff"), 2},
		{"after multi-byte rune", []byte("é\xc3"), 2},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Decode(protocol.MsgTypeText, tt.payload)
			var strErr *InvalidStringError
			require.True(t, errors.As(err, &strErr))
			assert.Equal(t, tt.offset, strErr.Offset)
			assert.Equal(t, "invalid_string", Code(err))
		})
	}
}

func TestDecodeDoesNotAliasPayload(t *testing.T) {
	payload := []byte{1, 2, 3}
	got, err := Decode(protocol.MsgTypeWebSessionResume, payload)
	require.NoError(t, err)

	payload[0] = 0xff
	assert.Equal(t, []byte{1, 2, 3}, got.(WebSessionResume).Data)
}

func TestDecodeContainer(t *testing.T) {
	container, err := protocol.EncodeContainer(protocol.MsgTypeText, []byte("padded"))
	require.NoError(t, err)

	got, err := DecodeContainer(container)
	require.NoError(t, err)
	assert.Equal(t, TextMessage{Text: "padded"}, got)

	_, err = DecodeContainer([]byte{byte(protocol.MsgTypeText), 'a', 0x00})
	assert.ErrorIs(t, err, protocol.ErrInvalidPadding)
}

func TestEveryTypeHasDecoder(t *testing.T) {
	for _, msgType := range protocol.AllMessageTypes() {
		_, ok := decoders[msgType]
		assert.True(t, ok, "no decoder for %s", msgType)
	}
	assert.False(t, IsSupported(protocol.MsgTypeForwardSecurityEnvelope))
	assert.False(t, IsSupported(protocol.MessageType(0x00)))
	assert.True(t, IsSupported(protocol.MsgTypeText))
}

func TestDecodeErrorMessage(t *testing.T) {
	_, err := Decode(protocol.MsgTypeText, []byte{0x80})
	assert.EqualError(t, err, "decode Text (0x01): invalid UTF-8 at offset 0")
}

func FuzzDecode(f *testing.F) {
	f.Add(byte(protocol.MsgTypeText), []byte("hello"))
	f.Add(byte(protocol.MsgTypeGroupText), concat(groupMemberBytes(), []byte("hi")))
	f.Add(byte(protocol.MsgTypeLocation), []byte("1,2,3\na\nb"))
	f.Add(byte(protocol.MsgTypeFile), []byte(`{"b":"`+testBlobHex+`","k":"`+testKeyHex+`"}`))
	f.Add(byte(protocol.MsgTypeReaction), pbBytes(pbFixed64(nil, 1, 1), 2, []byte("x")))
	f.Add(byte(protocol.MsgTypeDeliveryReceipt), concat([]byte{1}, u64(1)))
	f.Add(byte(protocol.MsgTypePollVote), concat(testCreator[:], repeat(0, 8), []byte(`[[0,1]]`)))
	f.Add(byte(0xff), []byte{})

	f.Fuzz(func(t *testing.T, typ byte, payload []byte) {
		resume, err := Decode(protocol.MsgTypeWebSessionResume, payload)
		if err != nil {
			t.Fatalf("web session resume rejected %x: %v", payload, err)
		}
		if !bytes.Equal(resume.(WebSessionResume).Data, payload) {
			t.Fatalf("web session resume data = %x, want %x", resume.(WebSessionResume).Data, payload)
		}

		text, err := Decode(protocol.MsgTypeText, payload)
		if utf8.Valid(payload) {
			if err != nil {
				t.Fatalf("valid UTF-8 %q rejected: %v", payload, err)
			}
			if got := text.(TextMessage).Text; got != string(payload) {
				t.Fatalf("text = %q, want %q", got, payload)
			}
		} else if !errors.Is(err, ErrInvalidString) {
			t.Fatalf("invalid UTF-8 %x: err = %v, want ErrInvalidString", payload, err)
		}

		msgType := protocol.MessageType(typ)
		got, err := Decode(msgType, payload)
		if err != nil {
			var decodeErr *DecodeError
			if !errors.As(err, &decodeErr) {
				t.Fatalf("untyped error %T: %v", err, err)
			}
			if Code(err) == "" {
				t.Fatalf("error without code: %v", err)
			}
			return
		}
		if got.Type() != msgType {
			t.Fatalf("decoded %s as %s", msgType, got.Type())
		}
	})
}
