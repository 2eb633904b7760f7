package chat

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/suite"

	"github.com/mcoot/racesync/internal/dependencies/mocks"
	"github.com/mcoot/racesync/internal/model"
	"github.com/mcoot/racesync/internal/services/gate"
	"github.com/mcoot/racesync/internal/services/room"
	"github.com/mcoot/racesync/internal/testutil"
	"github.com/mcoot/racesync/internal/view"
)

type DrawerSuite struct {
	suite.Suite
	state     *model.SessionState
	scheduler *mocks.MockScheduler
	rooms     *room.Store
	renderer  *view.Recorder
	drawer    *Drawer
}

func TestDrawerSuite(t *testing.T) {
	suite.Run(t, new(DrawerSuite))
}

func (s *DrawerSuite) SetupTest() {
	logger := testutil.NopLogger()
	s.state = model.NewSessionState(false)
	s.state.Screen = model.ScreenLobby
	s.scheduler = mocks.NewMockScheduler(mocks.NewMockClock(mocks.Epoch))
	s.rooms = room.New(logger)
	s.rooms.SetRoom(model.LobbyRoom(), nil)
	s.renderer = view.NewRecorder()
	s.drawer = New(s.state, s.rooms, gate.New(s.state, s.scheduler, logger), s.renderer, logger)
}

func (s *DrawerSuite) TestDrawNumbersLines() {
	s.drawer.Draw(view.ChatLine{Room: model.LobbyRoom(), Name: "Alice", Message: "hi"})
	s.drawer.Draw(view.ChatLine{Room: model.LobbyRoom(), Name: "Bob", Message: "yo"})

	lines := s.renderer.Lines()
	s.Require().Len(lines, 2)
	s.Equal(1, lines[0].Line)
	s.Equal(2, lines[1].Line)
}

func (s *DrawerSuite) TestDropsOtherRaces() {
	s.rooms.SetRoom(model.RaceRoom(3), nil)
	s.rooms.SetRoom(model.RaceRoom(4), nil)
	s.state.CurrentRaceID = 4

	s.drawer.Draw(view.ChatLine{Room: model.RaceRoom(3), Name: "Alice", Message: "hi"})
	s.drawer.Draw(view.ChatLine{Room: model.RaceRoom(4), Name: "Alice", Message: "hi"})

	lines := s.renderer.Lines()
	s.Require().Len(lines, 1)
	s.Equal(model.RaceRoom(4), lines[0].Room)
}

func (s *DrawerSuite) TestDropsUnknownRoom() {
	s.state.CurrentRaceID = 8

	s.drawer.Draw(view.ChatLine{Room: model.RaceRoom(8), Name: "Alice", Message: "hi"})

	s.Empty(s.renderer.Lines())
}

func (s *DrawerSuite) TestDeferredDuringTransition() {
	s.state.Screen = model.ScreenTransition

	s.drawer.Server(model.LobbyRoom(), "Alice has connected.")
	s.Empty(s.renderer.Lines())

	s.state.Screen = model.ScreenLobby
	s.scheduler.Advance(gate.FadeTime + gate.Leeway)

	lines := s.renderer.Lines()
	s.Require().Len(lines, 1)
	s.Equal(view.ServerName, lines[0].Name)
}

func (s *DrawerSuite) TestBroadcastReachesCurrentRace() {
	s.rooms.SetRoom(model.RaceRoom(2), nil)
	s.state.CurrentRaceID = 2

	s.drawer.Broadcast("Server restarting soon")

	lines := s.renderer.Lines()
	s.Require().Len(lines, 2)
	s.Equal(model.LobbyRoom(), lines[0].Room)
	s.Equal(model.RaceRoom(2), lines[1].Room)
}

func (s *DrawerSuite) TestPrivateMessageFollowsScreen() {
	s.rooms.SetRoom(model.RaceRoom(2), nil)
	s.state.CurrentRaceID = 2

	s.drawer.PrivateMessage(view.PMFrom, "Alice", "psst")
	s.state.Screen = model.ScreenRace
	s.drawer.PrivateMessage(view.PMTo, "Alice", "what")

	lines := s.renderer.Lines()
	s.Require().Len(lines, 2)
	s.Equal(model.LobbyRoom(), lines[0].Room)
	s.Equal(view.PMFrom, lines[0].PM)
	s.Equal(model.RaceRoom(2), lines[1].Room)
	s.Equal(view.PMTo, lines[1].PM)
	s.Equal("Alice", s.state.LastPM)
}

func (s *DrawerSuite) TestReceivedPMSetsReplyTargetBeforeDrawing() {
	s.state.Screen = model.ScreenTransition

	s.drawer.PrivateMessage(view.PMFrom, "Alice", "psst")

	s.Equal("Alice", s.state.LastPM)
	s.Empty(s.renderer.Lines())
}

func (s *DrawerSuite) TestPrivateMessageOffChatScreen() {
	s.state.Screen = model.ScreenError

	s.drawer.PrivateMessage(view.PMFrom, "Alice", "psst")

	s.Empty(s.renderer.Lines())
}

func (s *DrawerSuite) TestClear() {
	s.drawer.Clear(model.LobbyRoom())
	s.Len(s.renderer.CallsTo("ClearChat"), 1)
}

func TestConvertDiscordEmotes(t *testing.T) {
	assert.Equal(t, "gg Kappa wp", ConvertDiscordEmotes("gg <:Kappa:123456> wp"))
	assert.Equal(t, "PogChamp", ConvertDiscordEmotes("<a:PogChamp:42>"))
	assert.Equal(t, "<:broken> text", ConvertDiscordEmotes("<:broken> text"))
}
