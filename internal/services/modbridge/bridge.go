//go:generate mockgen -package=mocks -destination=mocks/mock_channel.go github.com/mcoot/racesync/internal/services/modbridge Channel

package modbridge

import (
	"fmt"
	"log/slog"
	"strings"

	"github.com/mcoot/racesync/internal/model"
)

// Fields understood by the companion mod
const (
	FieldStatus                   = "status"
	FieldMyStatus                 = "myStatus"
	FieldNumReady                 = "numReady"
	FieldNumEntrants              = "numEntrants"
	FieldPlace                    = "place"
	FieldPlaceMid                 = "placeMid"
	FieldMillisecondsBehindLeader = "millisecondsBehindLeader"
	FieldMessage                  = "message"
)

// VerbPing is the keepalive sent by the mod. It needs no answer.
const VerbPing = "ping"

// Channel is the line-oriented link to the mod. Send must not block; it
// reports false when the line could not be queued.
type Channel interface {
	Send(line string) bool
}

// Bridge translates race state changes into "set <field> <value>" lines
type Bridge struct {
	channel Channel
	logger  *slog.Logger
}

// New creates a Bridge. A nil channel drops everything.
func New(channel Channel, logger *slog.Logger) *Bridge {
	return &Bridge{
		channel: channel,
		logger:  logger.With(slog.String("component", "modbridge")),
	}
}

func (b *Bridge) set(field string, value any) {
	line := fmt.Sprintf("set %s %v", field, value)
	if b.channel == nil || !b.channel.Send(line) {
		b.logger.Debug("mod line dropped", slog.String("line", line))
	}
}

func (b *Bridge) SetStatus(status model.RaceStatus) { b.set(FieldStatus, status) }

func (b *Bridge) SetMyStatus(status model.RacerStatus) { b.set(FieldMyStatus, status) }

func (b *Bridge) SetNumReady(n int) { b.set(FieldNumReady, n) }

func (b *Bridge) SetNumEntrants(n int) { b.set(FieldNumEntrants, n) }

func (b *Bridge) SetPlace(place int) { b.set(FieldPlace, place) }

func (b *Bridge) SetPlaceMid(place int) { b.set(FieldPlaceMid, place) }

func (b *Bridge) SetMillisecondsBehindLeader(ms int64) {
	b.set(FieldMillisecondsBehindLeader, ms)
}

// SetMessage shows a message in game. "[NEWLINE]" breaks the line.
func (b *Bridge) SetMessage(message string) { b.set(FieldMessage, message) }

// SendExtraValues sends the counters and the local racer's position
func (b *Bridge) SendExtraValues(race *model.Race, me string) {
	b.SetNumReady(race.NumReady())
	b.SetNumEntrants(len(race.RacerList))
	racer := race.FindRacer(me)
	if racer == nil {
		return
	}
	b.SetPlace(racer.Place)
	b.SetPlaceMid(racer.PlaceMid)
	b.SetMillisecondsBehindLeader(racer.MillisecondsBehindLeader)
}

// SendRaceValues sends everything the mod knows about a race, for a mod that
// connected late
func (b *Bridge) SendRaceValues(race *model.Race, me string) {
	b.SetStatus(race.Status)
	if racer := race.FindRacer(me); racer != nil {
		b.SetMyStatus(racer.Status)
	}
	b.SendExtraValues(race, me)
}

// ParseLine splits an inbound line into its verb and the remainder
func ParseLine(line string) (verb, rest string) {
	line = strings.TrimRight(line, "\r\n")
	verb, rest, _ = strings.Cut(line, " ")
	return verb, rest
}

// LeaderMessage is shown to the leader when the runner-up reaches their floor
func LeaderMessage(name string, msBehind int64) string {
	seconds := msBehind / 1000
	suffix := "s"
	if seconds == 1 {
		suffix = ""
	}
	return fmt.Sprintf("%s arrived on this floor.[NEWLINE](Ahead by: %d second%s)", name, seconds, suffix)
}
