package command

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/suite"

	"github.com/mcoot/racesync/internal/model"
	"github.com/mcoot/racesync/internal/services/room"
	"github.com/mcoot/racesync/internal/testutil"
)

type ParserSuite struct {
	suite.Suite
	state  *model.SessionState
	rooms  *room.Store
	parser *Parser
	lobby  model.RoomID
}

func TestParserSuite(t *testing.T) {
	suite.Run(t, new(ParserSuite))
}

func (s *ParserSuite) SetupTest() {
	logger := testutil.NopLogger()
	s.state = model.NewSessionState(false)
	s.state.Username = "Zamiel"
	s.rooms = room.New(logger)
	s.lobby = model.LobbyRoom()
	s.rooms.SetRoom(s.lobby, []model.User{{Name: "Alice"}, {Name: "Zamiel"}})
	s.parser = NewParser(s.state, s.rooms, logger)
}

func (s *ParserSuite) requireHint(err error, hint string) {
	s.T().Helper()
	s.Require().Error(err)
	var ve *ValidationError
	s.Require().ErrorAs(err, &ve)
	s.Equal(hint, ve.Hint)
}

func (s *ParserSuite) history() []string {
	r, _ := s.rooms.Get(s.lobby)
	return r.TypedHistory
}

// Plain chat

func (s *ParserSuite) TestPlainChat() {
	cmd, err := s.parser.Parse("  hello everyone  ", s.lobby)
	s.Require().NoError(err)
	s.Equal(model.RoomMessageCommand{Room: s.lobby, Message: "hello everyone"}, cmd)
	s.Equal([]string{"hello everyone"}, s.history())
}

func (s *ParserSuite) TestEmptyInput() {
	_, err := s.parser.Parse("   ", s.lobby)
	s.ErrorIs(err, ErrEmptyInput)
	s.Empty(s.history())
}

func (s *ParserSuite) TestTruncatesTo150Characters() {
	long := strings.Repeat("a", 200)

	cmd, err := s.parser.Parse(long, s.lobby)
	s.Require().NoError(err)

	msg := cmd.(model.RoomMessageCommand).Message
	s.Len(msg, MaxMessageLength)
	s.Equal(msg, s.history()[0])
}

func (s *ParserSuite) TestTruncationCountsCharactersNotBytes() {
	long := strings.Repeat("é", 160)

	cmd, err := s.parser.Parse(long, s.lobby)
	s.Require().NoError(err)

	msg := cmd.(model.RoomMessageCommand).Message
	s.Equal(MaxMessageLength, len([]rune(msg)))
}

func (s *ParserSuite) TestChatInRaceRoomIsScopedToOrigin() {
	raceRoom := model.RaceRoom(4)
	s.rooms.SetRoom(raceRoom, nil)

	cmd, err := s.parser.Parse("gl hf", raceRoom)
	s.Require().NoError(err)
	s.Equal(model.RoomMessageCommand{Room: raceRoom, Message: "gl hf"}, cmd)

	r, _ := s.rooms.Get(raceRoom)
	s.Equal([]string{"gl hf"}, r.TypedHistory)
	s.Empty(s.history())
}

// Private messages

func (s *ParserSuite) TestPrivateMessageToOnlineUser() {
	cmd, err := s.parser.Parse("/pm Alice hello there", s.lobby)
	s.Require().NoError(err)
	s.Equal(model.PrivateMessageCommand{Name: "Alice", Message: "hello there"}, cmd)
}

func (s *ParserSuite) TestPrivateMessageToOfflineUser() {
	s.rooms.SetRoom(s.lobby, []model.User{{Name: "Zamiel"}})

	cmd, err := s.parser.Parse("/pm Alice hello there", s.lobby)
	s.Nil(cmd)
	s.requireHint(err, HintNotOnline)
	s.Empty(s.history())
}

func (s *ParserSuite) TestPrivateMessageResolvesCanonicalCasing() {
	cmd, err := s.parser.Parse("/msg aLiCe hi", s.lobby)
	s.Require().NoError(err)
	s.Equal("Alice", cmd.(model.PrivateMessageCommand).Name)
}

func (s *ParserSuite) TestPrivateMessageAliases() {
	for _, alias := range []string{"p", "pm", "m", "msg", "w", "whisper", "t", "tell"} {
		cmd, err := s.parser.Parse("/"+alias+" alice yo", s.lobby)
		s.Require().NoError(err, alias)
		s.Equal(model.PrivateMessageCommand{Name: "Alice", Message: "yo"}, cmd, alias)
	}
}

func (s *ParserSuite) TestPrivateMessageBodyIsNotTruncated() {
	body := strings.Repeat("b", 160)

	cmd, err := s.parser.Parse("/pm Alice "+body, s.lobby)
	s.Require().NoError(err)
	s.Equal(model.PrivateMessageCommand{Name: "Alice", Message: body}, cmd)

	// The recall history still holds at most MaxMessageLength characters
	s.Require().Len(s.history(), 1)
	s.Len(s.history()[0], MaxMessageLength)
}

func (s *ParserSuite) TestPrivateMessageMissingBody() {
	_, err := s.parser.Parse("/pm Alice", s.lobby)
	s.requireHint(err, HintPrivateMessage)
}

func (s *ParserSuite) TestReplyWithoutPriorPM() {
	_, err := s.parser.Parse("/r thanks", s.lobby)
	s.requireHint(err, HintNoPMs)
}

func (s *ParserSuite) TestReplyToLastPM() {
	s.state.LastPM = "Alice"

	cmd, err := s.parser.Parse("/r thanks a lot", s.lobby)
	s.Require().NoError(err)
	s.Equal(model.PrivateMessageCommand{Name: "Alice", Message: "thanks a lot"}, cmd)

	_, err = s.parser.Parse("/r", s.lobby)
	s.requireHint(err, HintReply)
}

// Admin commands

func (s *ParserSuite) TestNotice() {
	cmd, err := s.parser.Parse("/notice Hey guys!", s.lobby)
	s.Require().NoError(err)
	s.Equal(model.AdminMessageCommand{Message: "Hey guys!"}, cmd)

	_, err = s.parser.Parse("/notice", s.lobby)
	s.requireHint(err, HintNotice)
}

func (s *ParserSuite) TestBan() {
	cmd, err := s.parser.Parse("/ban Krakenos being too Polish", s.lobby)
	s.Require().NoError(err)
	s.Equal(model.AdminBanCommand{Name: "Krakenos", Comment: "being too Polish"}, cmd)

	_, err = s.parser.Parse("/ban Krakenos", s.lobby)
	s.requireHint(err, HintBan)
}

func (s *ParserSuite) TestUnban() {
	cmd, err := s.parser.Parse("/unban Krakenos", s.lobby)
	s.Require().NoError(err)
	s.Equal(model.AdminUnbanCommand{Name: "Krakenos"}, cmd)

	_, err = s.parser.Parse("/unban", s.lobby)
	s.requireHint(err, HintUnban)
}

func (s *ParserSuite) TestShutdownVariants() {
	cmd, err := s.parser.Parse("/shutdown", s.lobby)
	s.Require().NoError(err)
	s.Equal(model.AdminShutdownCommand{Comment: "restart"}, cmd)

	cmd, err = s.parser.Parse("/shutdown2", s.lobby)
	s.Require().NoError(err)
	s.Equal(model.AdminShutdownCommand{}, cmd)

	cmd, err = s.parser.Parse("/unshutdown", s.lobby)
	s.Require().NoError(err)
	s.Equal(model.AdminUnshutdownCommand{}, cmd)
}

func (s *ParserSuite) TestRestartAndDebug() {
	cmd, err := s.parser.Parse("/restart", s.lobby)
	s.Require().NoError(err)
	s.True(model.IsLocal(cmd))

	cmd, err = s.parser.Parse("/debug2", s.lobby)
	s.Require().NoError(err)
	s.Equal(model.DebugCommand{}, cmd)
}

// Race commands

func (s *ParserSuite) TestFloorRequiresRace() {
	_, err := s.parser.Parse("/floor 3 1", s.lobby)
	s.requireHint(err, HintNotInRace)
}

func (s *ParserSuite) TestFloor() {
	s.state.CurrentRaceID = 12

	cmd, err := s.parser.Parse("/floor 3 1", s.lobby)
	s.Require().NoError(err)
	s.Equal(model.RaceFloorCommand{ID: 12, FloorNum: 3, StageType: 1}, cmd)

	_, err = s.parser.Parse("/floor three", s.lobby)
	s.requireHint(err, HintFloor)
}

func (s *ParserSuite) TestCheckpoint() {
	s.state.CurrentRaceID = 12

	cmd, err := s.parser.Parse("/checkpoint", s.lobby)
	s.Require().NoError(err)
	s.Equal(model.RaceItemCommand{ID: 12, ItemID: model.CheckpointItemID}, cmd)

	cmd, err = s.parser.Parse("/checkpoint2", s.lobby)
	s.Require().NoError(err)
	s.Equal(model.RaceItemCommand{ID: 12, ItemID: model.CheckpointItemID}, cmd)
}

func (s *ParserSuite) TestDevOnlyCommands() {
	s.state.CurrentRaceID = 12

	_, err := s.parser.Parse("/finish", s.lobby)
	s.requireHint(err, HintDevOnly)

	s.state.DevMode = true

	cmd, err := s.parser.Parse("/finish", s.lobby)
	s.Require().NoError(err)
	s.Equal(model.RaceFinishCommand{ID: 12}, cmd)

	cmd, err = s.parser.Parse("/ready", s.lobby)
	s.Require().NoError(err)
	s.Equal(model.RaceReadyCommand{ID: 12}, cmd)
}

func (s *ParserSuite) TestUnknownCommand() {
	for _, input := range []string{"/dance", "/ping", "/restartnow", "/"} {
		_, err := s.parser.Parse(input, s.lobby)
		s.requireHint(err, HintUnknown)
	}
	s.Empty(s.history())
}

func (s *ParserSuite) TestHistoryOnlyRecordsAcceptedInput() {
	_, _ = s.parser.Parse("/pm Nobody hi", s.lobby)
	_, _ = s.parser.Parse("hi", s.lobby)
	_, _ = s.parser.Parse("/ban", s.lobby)

	s.Equal([]string{"hi"}, s.history())
}

func (s *ParserSuite) TestParseWithUnknownOriginStillParses() {
	cmd, err := s.parser.Parse("hi", model.RaceRoom(99))
	s.Require().NoError(err)
	s.Equal(model.RoomMessageCommand{Room: model.RaceRoom(99), Message: "hi"}, cmd)
}
