package chat

import (
	"log/slog"
	"regexp"
	"strings"

	"github.com/mcoot/racesync/internal/model"
	"github.com/mcoot/racesync/internal/services/gate"
	"github.com/mcoot/racesync/internal/view"
)

// Rooms is the part of the room store the drawer needs
type Rooms interface {
	NextChatLine(id model.RoomID) (int, bool)
}

var discordEmote = regexp.MustCompile(`^<a?:(\w+):\d+>$`)

// Drawer hands chat lines to the renderer once the screen is settled
type Drawer struct {
	state    *model.SessionState
	rooms    Rooms
	gate     *gate.Gate
	renderer view.Renderer
	logger   *slog.Logger
}

// New creates a Drawer
func New(state *model.SessionState, rooms Rooms, g *gate.Gate, renderer view.Renderer, logger *slog.Logger) *Drawer {
	return &Drawer{
		state:    state,
		rooms:    rooms,
		gate:     g,
		renderer: renderer,
		logger:   logger.With(slog.String("component", "chat")),
	}
}

// Draw shows a line in a room
func (d *Drawer) Draw(line view.ChatLine) {
	d.gate.Run("chat", func() {
		d.draw(line)
	})
}

// Server shows a server notice in a room
func (d *Drawer) Server(room model.RoomID, message string) {
	d.Draw(view.ChatLine{Room: room, Name: view.ServerName, Message: message})
}

// Broadcast shows a server notice in the lobby and in the current race
func (d *Drawer) Broadcast(message string) {
	d.Server(model.LobbyRoom(), message)
	if d.state.InRace() {
		d.Server(model.RaceRoom(d.state.CurrentRaceID), message)
	}
}

// PrivateMessage shows a PM in whichever room is on screen. A received PM
// becomes the target of /r straight away.
func (d *Drawer) PrivateMessage(direction view.PMDirection, name, message string) {
	if direction == view.PMFrom {
		d.state.LastPM = name
	}
	d.gate.Run("pm", func() {
		var room model.RoomID
		switch d.state.Screen {
		case model.ScreenLobby:
			room = model.LobbyRoom()
		case model.ScreenRace:
			room = model.RaceRoom(d.state.CurrentRaceID)
		default:
			d.logger.Debug("no chat on screen for private message",
				slog.String("screen", string(d.state.Screen)))
			return
		}
		d.draw(view.ChatLine{Room: room, Name: name, Message: message, PM: direction})
	})
}

// Clear empties a room's chat, ahead of its history being redrawn
func (d *Drawer) Clear(room model.RoomID) {
	d.gate.Run("clear", func() {
		d.renderer.ClearChat(room)
	})
}

func (d *Drawer) draw(line view.ChatLine) {
	if line.Room.IsRace() && line.Room.RaceID != d.state.CurrentRaceID {
		return
	}
	n, ok := d.rooms.NextChatLine(line.Room)
	if !ok {
		d.logger.Debug("chat for unknown room dropped", slog.String("room", line.Room.String()))
		return
	}
	line.Line = n
	d.renderer.ChatLine(line)
}

// ConvertDiscordEmotes replaces Discord custom emote tags such as
// <:Kappa:1234> with the bare emote name
func ConvertDiscordEmotes(message string) string {
	words := strings.Split(message, " ")
	for i, word := range words {
		if m := discordEmote.FindStringSubmatch(word); m != nil {
			words[i] = m[1]
		}
	}
	return strings.Join(words, " ")
}
