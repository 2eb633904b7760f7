package view

import "github.com/mcoot/racesync/internal/model"

// ServerName is the sender used for server notices in chat
const ServerName = "!server"

// PMDirection marks a chat line as a private message
type PMDirection string

const (
	PMNone PMDirection = ""
	PMTo   PMDirection = "to"
	PMFrom PMDirection = "from"
)

// ChatLine is one rendered line of chat
type ChatLine struct {
	Room     model.RoomID `json:"room"`
	Line     int          `json:"line"`
	Name     string       `json:"name"`
	Message  string       `json:"message"`
	Datetime int64        `json:"datetime,omitempty"` // seconds since epoch, zero for live lines
	PM       PMDirection  `json:"pm,omitempty"`
	Discord  bool         `json:"discord,omitempty"`
}

// Renderer is the presentation side of the client. Every method is invoked
// from the session goroutine.
type Renderer interface {
	ChatLine(line ChatLine)
	ClearChat(room model.RoomID)
	ScreenChanged(screen model.Screen)
	UsersChanged(room model.RoomID, names []string)
	RaceUpdated(race *model.Race)
	RaceRemoved(id model.RaceID)
	RacerUpdated(id model.RaceID, racer *model.Racer)
	RaceFinished(race *model.Race)
	Countdown(id model.RaceID, n int)
	Warning(message string)
	Error(message string)
	Sound(name string)
}

// Nop discards everything
type Nop struct{}

var _ Renderer = Nop{}

func (Nop) ChatLine(ChatLine)                       {}
func (Nop) ClearChat(model.RoomID)                  {}
func (Nop) ScreenChanged(model.Screen)              {}
func (Nop) UsersChanged(model.RoomID, []string)     {}
func (Nop) RaceUpdated(*model.Race)                 {}
func (Nop) RaceRemoved(model.RaceID)                {}
func (Nop) RacerUpdated(model.RaceID, *model.Racer) {}
func (Nop) RaceFinished(*model.Race)                {}
func (Nop) Countdown(model.RaceID, int)             {}
func (Nop) Warning(string)                          {}
func (Nop) Error(string)                            {}
func (Nop) Sound(string)                            {}
