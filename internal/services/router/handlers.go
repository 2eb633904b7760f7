package router

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"

	"github.com/mcoot/racesync/internal/model"
	"github.com/mcoot/racesync/internal/services/chat"
	"github.com/mcoot/racesync/internal/services/gate"
	"github.com/mcoot/racesync/internal/services/race"
	"github.com/mcoot/racesync/internal/services/room"
	"github.com/mcoot/racesync/internal/services/screen"
	"github.com/mcoot/racesync/internal/view"
)

// Messages shown for connection problems
const (
	MsgDisconnected   = "Disconnected from the server. Either your Internet is having problems or the server went down!"
	MsgConnectFailed  = "Failed to connect to the WebSocket server. The server might be down!"
	MsgSocketError    = "Encountered a WebSocket error. The server might be down!"
	MsgWrongPassword  = "That is not the correct password."
	testAccountPrefix = "TestAccount"
)

// Sounds played by the renderer
const (
	SoundRaceCreated   = "race-created"
	SoundRaceCompleted = "race-completed"
)

// Sender delivers commands to the server
type Sender interface {
	Send(cmd model.Command) error
}

// Dependencies are the components the handlers drive
type Dependencies struct {
	State    *model.SessionState
	Rooms    *room.Store
	Races    *race.Store
	Chat     *chat.Drawer
	Nav      *screen.Navigator
	Gate     *gate.Gate
	Renderer view.Renderer
	Sender   Sender
	Logger   *slog.Logger
}

// Handlers applies server events. State changes happen as soon as an event
// arrives; anything that touches the screen goes through the gate.
type Handlers struct {
	state    *model.SessionState
	rooms    *room.Store
	races    *race.Store
	chat     *chat.Drawer
	nav      *screen.Navigator
	gate     *gate.Gate
	renderer view.Renderer
	sender   Sender
	logger   *slog.Logger
}

// NewHandlers creates the event handlers
func NewHandlers(deps Dependencies) *Handlers {
	return &Handlers{
		state:    deps.State,
		rooms:    deps.Rooms,
		races:    deps.Races,
		chat:     deps.Chat,
		nav:      deps.Nav,
		gate:     deps.Gate,
		renderer: deps.Renderer,
		sender:   deps.Sender,
		logger:   deps.Logger.With(slog.String("component", "handlers")),
	}
}

// Register wires every event into r
func (h *Handlers) Register(r *Router) {
	r.Handle(model.EventOpen, On(h.open))
	r.Handle(model.EventClose, On(h.close))
	r.Handle(model.EventSocketError, On(h.socketError))

	r.Handle(model.EventSettings, On(h.settings))
	r.Handle(model.EventError, On(h.serverError))
	r.Handle(model.EventWarning, On(h.warning))

	r.Handle(model.EventRoomList, On(h.roomList))
	r.Handle(model.EventRoomHistory, On(h.roomHistory))
	r.Handle(model.EventRoomJoined, On(h.roomJoined))
	r.Handle(model.EventRoomLeft, On(h.roomLeft))
	r.Handle(model.EventRoomUpdate, On(h.roomUpdate))
	r.Handle(model.EventRoomMessage, On(h.roomMessage))
	r.Handle(model.EventPrivateMessage, On(h.privateMessage))
	r.Handle(model.EventDiscordMessage, On(h.discordMessage))
	r.Handle(model.EventAdminMessage, On(h.adminMessage))

	r.Handle(model.EventRaceList, On(h.raceList))
	r.Handle(model.EventRacerList, On(h.racerList))
	r.Handle(model.EventRaceCreated, On(h.raceCreated))
	r.Handle(model.EventRaceJoined, On(h.raceJoined))
	r.Handle(model.EventRaceLeft, On(h.raceLeft))
	r.Handle(model.EventRaceSetStatus, On(h.raceSetStatus))
	r.Handle(model.EventRacerSetStatus, On(h.racerSetStatus))
	r.Handle(model.EventRaceStart, On(h.raceStart))
	r.Handle(model.EventRacerSetFloor, On(h.racerSetFloor))
	r.Handle(model.EventRacerSetPlaceMid, On(h.racerSetPlaceMid))
	r.Handle(model.EventRacerAddItem, On(h.racerAddItem))
	r.Handle(model.EventRacerSetStartingItem, On(h.racerSetStartingItem))
	r.Handle(model.EventRacerCharacter, On(h.racerCharacter))

	// Achievements are not shown by this client
	r.Handle(model.EventAchievement, func(context.Context, json.RawMessage) error { return nil })
}

// Connection

func (h *Handlers) open(_ context.Context, _ struct{}) error {
	h.logger.Info("connection established")
	if err := h.sender.Send(model.RoomJoinCommand{Room: model.LobbyRoom()}); err != nil {
		return err
	}

	if h.state.DevMode {
		h.nav.Show(model.ScreenLobby)
		return nil
	}

	switch h.state.Screen {
	case model.ScreenTitleAjax, model.ScreenRegisterAjax:
		h.nav.Show(model.ScreenLobby)
	case model.ScreenError:
		// Already showing why we can't continue
	default:
		h.nav.ShowError(fmt.Sprintf("Can't transition to the lobby from screen: %s", h.state.Screen))
	}
	return nil
}

func (h *Handlers) close(_ context.Context, _ struct{}) error {
	h.logger.Info("connection closed")
	if h.state.Screen != model.ScreenError {
		h.nav.ShowError(MsgDisconnected)
	}
	return nil
}

func (h *Handlers) socketError(_ context.Context, p model.MessagePayload) error {
	h.logger.Warn("connection error", slog.String("error", p.Message))
	switch h.state.Screen {
	case model.ScreenTitleAjax, model.ScreenRegisterAjax:
		h.nav.ShowError(MsgConnectFailed)
	default:
		h.nav.ShowError(MsgSocketError)
	}
	return nil
}

// Misc

func (h *Handlers) settings(_ context.Context, p model.SettingsPayload) error {
	h.state.UserID = p.UserID
	h.state.Username = p.Username
	h.logger.Info("logged in", slog.String("username", p.Username), slog.Int("userID", p.UserID))
	return nil
}

func (h *Handlers) serverError(_ context.Context, p model.MessagePayload) error {
	return &model.ServerError{Message: p.Message}
}

func (h *Handlers) warning(_ context.Context, p model.MessagePayload) error {
	if p.Message == MsgWrongPassword {
		h.nav.Set(model.ScreenLobby)
	}
	h.renderer.Warning(p.Message)
	return nil
}

// Rooms

func (h *Handlers) roomList(_ context.Context, p model.RoomListPayload) error {
	r := h.rooms.SetRoom(p.Room, p.Users)
	names := r.UserNames()
	h.gate.Run(model.EventRoomList, func() {
		h.renderer.UsersChanged(p.Room, names)
	})
	return nil
}

func (h *Handlers) roomHistory(_ context.Context, p model.RoomHistoryPayload) error {
	h.chat.Clear(p.Room)
	for _, msg := range p.History {
		h.chat.Draw(view.ChatLine{
			Room:     p.Room,
			Name:     msg.Name,
			Message:  msg.Message,
			Datetime: msg.Datetime,
		})
	}
	return nil
}

func (h *Handlers) usersChanged(r *model.Room) {
	if !r.ID.IsLobby() {
		return
	}
	names := r.UserNames()
	h.gate.Run("users", func() {
		h.renderer.UsersChanged(r.ID, names)
	})
}

func (h *Handlers) roomJoined(_ context.Context, p model.RoomUserPayload) error {
	r, err := h.rooms.UserJoined(p.Room, p.User)
	if err != nil {
		return err
	}
	h.usersChanged(r)

	switch {
	case p.Room.IsRace():
		h.chat.Server(p.Room, p.User.Name+" has joined the race.")
	case !strings.HasPrefix(p.User.Name, testAccountPrefix):
		h.chat.Broadcast(p.User.Name + " has connected.")
	}
	return nil
}

func (h *Handlers) roomLeft(_ context.Context, p model.RoomLeftPayload) error {
	r, err := h.rooms.UserLeft(p.Room, p.Name)
	if err != nil {
		return err
	}
	h.usersChanged(r)

	switch {
	case p.Room.IsRace():
		h.chat.Server(p.Room, p.Name+" has left the race.")
	case !strings.HasPrefix(p.Name, testAccountPrefix):
		h.chat.Broadcast(p.Name + " has disconnected.")
	}
	return nil
}

func (h *Handlers) roomUpdate(_ context.Context, p model.RoomUserPayload) error {
	r, err := h.rooms.UserUpdated(p.Room, p.User)
	if err != nil {
		return err
	}
	h.usersChanged(r)
	return nil
}

func (h *Handlers) roomMessage(_ context.Context, p model.RoomMessagePayload) error {
	h.chat.Draw(view.ChatLine{Room: p.Room, Name: p.Name, Message: p.Message})
	return nil
}

func (h *Handlers) privateMessage(_ context.Context, p model.DirectMessagePayload) error {
	h.chat.PrivateMessage(view.PMFrom, p.Name, p.Message)
	return nil
}

func (h *Handlers) discordMessage(_ context.Context, p model.DirectMessagePayload) error {
	h.chat.Draw(view.ChatLine{
		Room:    model.LobbyRoom(),
		Name:    p.Name,
		Message: chat.ConvertDiscordEmotes(p.Message),
		Discord: true,
	})
	return nil
}

func (h *Handlers) adminMessage(_ context.Context, p model.MessagePayload) error {
	h.chat.Broadcast(p.Message)
	return nil
}

// Races

func (h *Handlers) raceList(_ context.Context, races []*model.Race) error {
	mine, ok := h.races.SetRaceList(races)
	h.gate.Run(model.EventRaceList, func() {
		for _, r := range races {
			h.renderer.RaceUpdated(r)
		}
	})
	if ok {
		h.logger.Info("rejoining race", slog.Int("race", int(mine)))
		// Leave room for the fade into the lobby plus some lag
		h.nav.ShowAfter(3*gate.FadeTime, model.ScreenRace)
	}
	return nil
}

func (h *Handlers) racerList(_ context.Context, p model.RacerListPayload) error {
	r, err := h.races.SetRacerList(p.ID, p.Racers)
	if err != nil {
		return err
	}
	h.gate.Run(model.EventRacerList, func() {
		h.renderer.RaceUpdated(r)
	})
	return nil
}

func (h *Handlers) raceCreated(_ context.Context, r *model.Race) error {
	if r == nil {
		return fmt.Errorf("%w: empty race", model.ErrMalformedEvent)
	}
	h.races.Create(r)

	h.gate.Run(model.EventRaceCreated, func() {
		h.renderer.RaceUpdated(r)

		if !h.state.IsMe(r.Captain) && !r.Ruleset.Solo {
			h.chat.Broadcast(r.Captain + " has started a new race.")
		}

		playSound := false
		switch h.state.Screen {
		case model.ScreenLobby:
			playSound = true
		case model.ScreenRace:
			_, ok := h.races.Current()
			playSound = !ok
		}
		if r.Ruleset.Solo || r.IsPasswordProtected {
			playSound = false
		}
		if playSound {
			h.renderer.Sound(SoundRaceCreated)
		}
	})
	return nil
}

func (h *Handlers) raceJoined(_ context.Context, p model.RaceMemberPayload) error {
	result := h.races.Join(p.ID, p.Name)
	if result == nil {
		return nil
	}

	h.gate.Run(model.EventRaceJoined, func() {
		h.renderer.RaceUpdated(result.Race)
		if result.Racer != nil {
			h.renderer.RacerUpdated(p.ID, result.Racer)
		}
	})
	if result.Self {
		h.nav.Show(model.ScreenRace)
	}
	return nil
}

func (h *Handlers) raceLeft(_ context.Context, p model.RaceMemberPayload) error {
	result, err := h.races.Leave(p.ID, p.Name)
	if err != nil {
		return err
	}

	h.gate.Run(model.EventRaceLeft, func() {
		if result.Deleted {
			h.renderer.RaceRemoved(p.ID)
			return
		}
		h.renderer.RaceUpdated(result.Race)
	})
	if result.Self {
		h.nav.Show(model.ScreenLobby)
	}
	return nil
}

func (h *Handlers) raceSetStatus(_ context.Context, p model.RaceSetStatusPayload) error {
	change, err := h.races.SetStatus(p.ID, p.Status)
	if err != nil || change == nil {
		return err
	}

	r := change.Race
	h.gate.Run(model.EventRaceSetStatus, func() {
		if change.Current && r.Status == model.RaceStatusFinished {
			h.renderer.RaceFinished(r)
			if !r.Ruleset.Solo {
				h.renderer.Sound(SoundRaceCompleted)
			}
		}
		if change.Removed {
			h.renderer.RaceRemoved(r.ID)
			return
		}
		h.renderer.RaceUpdated(r)
	})
	return nil
}

func (h *Handlers) raceStart(_ context.Context, p model.RaceStartPayload) error {
	return h.races.Start(p.ID, p.SecondsToWait)
}

func (h *Handlers) racerUpdated(event string, id model.RaceID, racer *model.Racer) {
	if racer == nil {
		return
	}
	h.gate.Run(event, func() {
		h.renderer.RacerUpdated(id, racer)
	})
}

func (h *Handlers) racerSetStatus(_ context.Context, p model.RacerSetStatusPayload) error {
	h.racerUpdated(model.EventRacerSetStatus, p.ID, h.races.SetRacerStatus(p))
	return nil
}

func (h *Handlers) racerSetFloor(_ context.Context, p model.RacerSetFloorPayload) error {
	h.racerUpdated(model.EventRacerSetFloor, p.ID, h.races.SetFloor(p))
	return nil
}

func (h *Handlers) racerSetPlaceMid(_ context.Context, p model.RacerSetPlaceMidPayload) error {
	h.racerUpdated(model.EventRacerSetPlaceMid, p.ID, h.races.SetPlaceMid(p))
	return nil
}

func (h *Handlers) racerAddItem(_ context.Context, p model.RacerItemPayload) error {
	h.racerUpdated(model.EventRacerAddItem, p.ID, h.races.AddItem(p))
	return nil
}

func (h *Handlers) racerSetStartingItem(_ context.Context, p model.RacerItemPayload) error {
	h.racerUpdated(model.EventRacerSetStartingItem, p.ID, h.races.SetStartingItem(p))
	return nil
}

func (h *Handlers) racerCharacter(_ context.Context, p model.RacerCharacterPayload) error {
	h.racerUpdated(model.EventRacerCharacter, p.ID, h.races.SetCharacter(p))
	return nil
}
