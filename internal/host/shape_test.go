package host

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/rcliao/vcwatch/internal/model"
)

func TestParseVoiceEvent(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want []model.VoiceTransition
	}{
		{
			name: "array",
			raw:  `[{"userId":"A","channelId":"C1"},{"user_id":"B","channel_id":null}]`,
			want: []model.VoiceTransition{
				{IdentityID: "A", ChannelID: "C1", HasChannel: true},
				{IdentityID: "B"},
			},
		},
		{
			name: "voiceStates",
			raw:  `{"type":"VOICE_STATE_UPDATES","voiceStates":[{"userId":"A","channelId":"C2"}]}`,
			want: []model.VoiceTransition{{IdentityID: "A", ChannelID: "C2", HasChannel: true}},
		},
		{
			name: "voice_state",
			raw:  `{"voice_state":{"user_id":"A","channel_id":"C1"}}`,
			want: []model.VoiceTransition{{IdentityID: "A", ChannelID: "C1", HasChannel: true}},
		},
		{
			name: "voiceState",
			raw:  `{"voiceState":{"userId":"A"}}`,
			want: []model.VoiceTransition{{IdentityID: "A"}},
		},
		{
			name: "bare entry",
			raw:  `{"user_id":"A","channel_id":"C1"}`,
			want: []model.VoiceTransition{{IdentityID: "A", ChannelID: "C1", HasChannel: true}},
		},
		{
			name: "empty channel means absent",
			raw:  `{"userId":"A","channelId":""}`,
			want: []model.VoiceTransition{{IdentityID: "A"}},
		},
		{
			name: "entries without identity dropped",
			raw:  `[{"channelId":"C1"},"junk",{"userId":"B","channelId":"C1"}]`,
			want: []model.VoiceTransition{{IdentityID: "B", ChannelID: "C1", HasChannel: true}},
		},
		{name: "unrecognized object", raw: `{"foo":"bar"}`},
		{name: "empty array", raw: `[]`},
		{name: "scalar", raw: `42`},
		{name: "invalid json", raw: `{"userId":`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ParseVoiceEvent([]byte(tt.raw)))
		})
	}
}
