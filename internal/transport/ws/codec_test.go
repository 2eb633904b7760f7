package ws

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mcoot/racesync/internal/model"
)

func TestEncodeCommand(t *testing.T) {
	tests := []struct {
		name     string
		cmd      model.Command
		expected string
	}{
		{
			name:     "room message",
			cmd:      model.RoomMessageCommand{Room: model.RaceRoom(4), Message: "hi all"},
			expected: `roomMessage {"room":"_race_4","message":"hi all"}`,
		},
		{
			name:     "private message",
			cmd:      model.PrivateMessageCommand{Name: "Alice", Message: "yo"},
			expected: `privateMessage {"name":"Alice","message":"yo"}`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			frame, err := EncodeCommand(tt.cmd)
			require.NoError(t, err)
			assert.Equal(t, tt.expected, string(frame))
		})
	}
}

func TestDecodeFrame(t *testing.T) {
	tests := []struct {
		name        string
		frame       string
		wantName    string
		wantPayload string
		wantErr     bool
	}{
		{name: "with payload", frame: `raceStart {"id":3,"secondsToWait":10}`, wantName: "raceStart", wantPayload: `{"id":3,"secondsToWait":10}`},
		{name: "no payload", frame: "achievement", wantName: "achievement"},
		{name: "trailing space", frame: "achievement ", wantName: "achievement"},
		{name: "payload with spaces", frame: `roomMessage {"message": "a b c"}`, wantName: "roomMessage", wantPayload: `{"message": "a b c"}`},
		{name: "empty", frame: "   ", wantErr: true},
		{name: "bad json", frame: "raceList [1,", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			name, payload, err := DecodeFrame([]byte(tt.frame))
			if tt.wantErr {
				assert.ErrorIs(t, err, model.ErrMalformedEvent)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantName, name)
			assert.Equal(t, tt.wantPayload, string(payload))
		})
	}
}
