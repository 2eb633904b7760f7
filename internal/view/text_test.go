package view

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mcoot/racesync/internal/model"
)

func TestTextChatLine(t *testing.T) {
	const ts = int64(1700000000)
	stamp := time.Unix(ts, 0).Format("15:04")

	tests := []struct {
		name string
		line ChatLine
		want string
	}{
		{
			name: "user message",
			line: ChatLine{Room: model.LobbyRoom(), Name: "Alice", Message: "hi", Datetime: ts},
			want: "[" + stamp + "] [lobby] <Alice> hi",
		},
		{
			name: "server notice has no sender",
			line: ChatLine{Room: model.RaceRoom(7), Name: ServerName, Message: "Bob has joined the race.", Datetime: ts},
			want: "[" + stamp + "] [_race_7] Bob has joined the race.",
		},
		{
			name: "private message",
			line: ChatLine{Room: model.LobbyRoom(), Name: "Bob", Message: "psst", Datetime: ts, PM: PMFrom},
			want: "[" + stamp + "] [lobby] [PM from Bob] psst",
		},
		{
			name: "discord relay",
			line: ChatLine{Room: model.LobbyRoom(), Name: "Carol", Message: "gg", Datetime: ts, Discord: true},
			want: "[" + stamp + "] [lobby] [Discord] <Carol> gg",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			NewText(&buf, "text").ChatLine(tt.line)
			assert.Equal(t, tt.want, strings.TrimSpace(buf.String()))
		})
	}
}

func TestTextSkipsTransitionScreen(t *testing.T) {
	var buf bytes.Buffer
	r := NewText(&buf, "text")

	r.ScreenChanged(model.ScreenTransition)
	r.ScreenChanged(model.ScreenLobby)

	assert.Equal(t, "== lobby ==\n", buf.String())
}

func TestTextCountdown(t *testing.T) {
	var buf bytes.Buffer
	r := NewText(&buf, "text")

	r.Countdown(3, 1)
	r.Countdown(3, 0)

	assert.Equal(t, "race #3 starts in 1\nrace #3: Go!\n", buf.String())
}

func TestTextJSONFormat(t *testing.T) {
	var buf bytes.Buffer
	r := NewText(&buf, "json")

	r.Warning("That user is not currently online.")
	r.ChatLine(ChatLine{Room: model.RaceRoom(12), Name: "Alice", Message: "hi"})

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 2)

	var warning map[string]any
	require.NoError(t, json.Unmarshal([]byte(lines[0]), &warning))
	assert.Equal(t, "warning", warning["type"])
	assert.Equal(t, "That user is not currently online.", warning["message"])

	var chat struct {
		Type string   `json:"type"`
		Line ChatLine `json:"line"`
	}
	require.NoError(t, json.Unmarshal([]byte(lines[1]), &chat))
	assert.Equal(t, "chat", chat.Type)
	assert.Equal(t, model.RaceRoom(12), chat.Line.Room)
	assert.Equal(t, "hi", chat.Line.Message)
}

func TestRecorderCallsTo(t *testing.T) {
	r := NewRecorder()

	r.Warning("one")
	r.Sound("race-completed")
	r.Warning("two")

	assert.Equal(t, []string{"one", "two"}, r.Messages("Warning"))
	assert.Len(t, r.CallsTo("Sound"), 1)

	r.Reset()
	assert.Empty(t, r.Calls())
}
