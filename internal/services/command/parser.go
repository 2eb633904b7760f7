package command

import (
	"log/slog"
	"regexp"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/mcoot/racesync/internal/model"
)

// MaxMessageLength is the longest input sent to the server, in characters
const MaxMessageLength = 150

var (
	pmPattern      = regexp.MustCompile(`^/(p|pm|m|msg|w|whisper|t|tell)\b`)
	pmArgs         = regexp.MustCompile(`^/\w+ (.+?) (.+)`)
	noticePattern  = regexp.MustCompile(`^/notice\b`)
	noticeArgs     = regexp.MustCompile(`^/\w+ (.+)`)
	banPattern     = regexp.MustCompile(`^/ban\b`)
	banArgs        = regexp.MustCompile(`^/ban (.+?) (.+)`)
	unbanPattern   = regexp.MustCompile(`^/unban\b`)
	unbanArgs      = regexp.MustCompile(`^/unban (.+)`)
	replyPattern   = regexp.MustCompile(`^/r\b`)
	replyArgs      = regexp.MustCompile(`^/r (.+)`)
	floorPattern   = regexp.MustCompile(`^/floor\b`)
	floorArgs      = regexp.MustCompile(`^/floor (\d+) (\d+)`)
	checkpointPatt = regexp.MustCompile(`^/checkpoint`)
)

// Rooms is the room lookup the parser needs
type Rooms interface {
	FindUser(id model.RoomID, name string) (string, bool)
	RecordTyped(id model.RoomID, text string) error
}

// Parser turns chat input into outbound commands
type Parser struct {
	state  *model.SessionState
	rooms  Rooms
	logger *slog.Logger
}

// NewParser creates a Parser
func NewParser(state *model.SessionState, rooms Rooms, logger *slog.Logger) *Parser {
	return &Parser{
		state:  state,
		rooms:  rooms,
		logger: logger.With(slog.String("component", "command")),
	}
}

// Parse interprets input typed into the origin room. On success the input is
// added to that room's recall history.
func (p *Parser) Parse(input string, origin model.RoomID) (model.Command, error) {
	text := strings.TrimSpace(input)
	if text == "" {
		return nil, ErrEmptyInput
	}

	// Command arguments are taken from the full text; only chat is cut
	cmd, err := p.parse(text, origin)
	if err != nil {
		return nil, err
	}

	if err := p.rooms.RecordTyped(origin, Truncate(text)); err != nil {
		p.logger.Debug("input not recorded", slog.String("error", err.Error()))
	}
	return cmd, nil
}

// Truncate cuts text down to MaxMessageLength characters
func Truncate(text string) string {
	if utf8.RuneCountInString(text) <= MaxMessageLength {
		return text
	}
	runes := []rune(text)
	return string(runes[:MaxMessageLength])
}

func (p *Parser) parse(text string, origin model.RoomID) (model.Command, error) {
	if !strings.HasPrefix(text, "/") {
		return model.RoomMessageCommand{Room: origin, Message: Truncate(text)}, nil
	}

	switch {
	case pmPattern.MatchString(text):
		return p.parsePrivateMessage(text)

	case noticePattern.MatchString(text):
		m := noticeArgs.FindStringSubmatch(text)
		if m == nil {
			return nil, invalid(HintNotice)
		}
		return model.AdminMessageCommand{Message: m[1]}, nil

	case banPattern.MatchString(text):
		m := banArgs.FindStringSubmatch(text)
		if m == nil {
			return nil, invalid(HintBan)
		}
		return model.AdminBanCommand{Name: m[1], Comment: m[2]}, nil

	case unbanPattern.MatchString(text):
		m := unbanArgs.FindStringSubmatch(text)
		if m == nil {
			return nil, invalid(HintUnban)
		}
		return model.AdminUnbanCommand{Name: m[1]}, nil

	case replyPattern.MatchString(text):
		if p.state.LastPM == "" {
			return nil, invalid(HintNoPMs)
		}
		m := replyArgs.FindStringSubmatch(text)
		if m == nil {
			return nil, invalid(HintReply)
		}
		return model.PrivateMessageCommand{Name: p.state.LastPM, Message: m[1]}, nil

	case floorPattern.MatchString(text):
		return p.parseFloor(text)

	case checkpointPatt.MatchString(text):
		if !p.state.InRace() {
			return nil, invalid(HintNotInRace)
		}
		return model.RaceItemCommand{ID: p.state.CurrentRaceID, ItemID: model.CheckpointItemID}, nil
	}

	return p.parseBare(text)
}

func (p *Parser) parsePrivateMessage(text string) (model.Command, error) {
	m := pmArgs.FindStringSubmatch(text)
	if m == nil {
		return nil, invalid(HintPrivateMessage)
	}
	recipient, ok := p.rooms.FindUser(model.LobbyRoom(), m[1])
	if !ok {
		return nil, invalid(HintNotOnline)
	}
	return model.PrivateMessageCommand{Name: recipient, Message: m[2]}, nil
}

func (p *Parser) parseFloor(text string) (model.Command, error) {
	m := floorArgs.FindStringSubmatch(text)
	if m == nil {
		return nil, invalid(HintFloor)
	}
	if !p.state.InRace() {
		return nil, invalid(HintNotInRace)
	}
	floorNum, err := strconv.Atoi(m[1])
	if err != nil {
		return nil, invalid(HintFloor)
	}
	stageType, err := strconv.Atoi(m[2])
	if err != nil {
		return nil, invalid(HintFloor)
	}
	return model.RaceFloorCommand{
		ID:        p.state.CurrentRaceID,
		FloorNum:  floorNum,
		StageType: stageType,
	}, nil
}

func (p *Parser) parseBare(text string) (model.Command, error) {
	switch text {
	case "/debug2":
		return model.DebugCommand{}, nil
	case "/restart":
		return model.RestartCommand{}, nil
	case "/finish", "/ready":
		if !p.state.DevMode {
			return nil, invalid(HintDevOnly)
		}
		if !p.state.InRace() {
			return nil, invalid(HintNotInRace)
		}
		if text == "/finish" {
			return model.RaceFinishCommand{ID: p.state.CurrentRaceID}, nil
		}
		return model.RaceReadyCommand{ID: p.state.CurrentRaceID}, nil
	case "/shutdown":
		return model.AdminShutdownCommand{Comment: "restart"}, nil
	case "/shutdown2":
		return model.AdminShutdownCommand{}, nil
	case "/unshutdown":
		return model.AdminUnshutdownCommand{}, nil
	}
	return nil, invalid(HintUnknown)
}
