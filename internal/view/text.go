package view

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"sync"
	"time"

	"github.com/mcoot/racesync/internal/model"
)

// Text renders to a terminal, either as readable lines or as JSON lines
type Text struct {
	mu     sync.Mutex
	w      io.Writer
	format string
}

var _ Renderer = (*Text)(nil)

// NewText creates a Text renderer. format is "text" or "json".
func NewText(w io.Writer, format string) *Text {
	return &Text{w: w, format: format}
}

func (t *Text) emit(kind string, data map[string]any, text string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.format == "json" {
		data["type"] = kind
		b, err := json.Marshal(data)
		if err != nil {
			return
		}
		_, _ = fmt.Fprintln(t.w, string(b))
		return
	}
	_, _ = fmt.Fprintln(t.w, text)
}

func (t *Text) ChatLine(line ChatLine) {
	ts := time.Now()
	if line.Datetime != 0 {
		ts = time.Unix(line.Datetime, 0)
	}

	var b strings.Builder
	fmt.Fprintf(&b, "[%s] [%s] ", ts.Format("15:04"), line.Room)
	if line.Discord {
		b.WriteString("[Discord] ")
	}
	switch {
	case line.PM != PMNone:
		fmt.Fprintf(&b, "[PM %s %s] ", line.PM, line.Name)
	case line.Name != ServerName:
		fmt.Fprintf(&b, "<%s> ", line.Name)
	}
	b.WriteString(line.Message)

	t.emit("chat", map[string]any{"line": line}, b.String())
}

func (t *Text) ClearChat(room model.RoomID) {
	t.emit("clearChat", map[string]any{"room": room}, fmt.Sprintf("--- %s ---", room))
}

func (t *Text) ScreenChanged(screen model.Screen) {
	if screen == model.ScreenTransition {
		return
	}
	t.emit("screen", map[string]any{"screen": screen}, fmt.Sprintf("== %s ==", screen))
}

func (t *Text) UsersChanged(room model.RoomID, names []string) {
	t.emit("users", map[string]any{"room": room, "users": names},
		fmt.Sprintf("%s: %d users online", room, len(names)))
}

func (t *Text) RaceUpdated(race *model.Race) {
	t.emit("race", map[string]any{"race": race},
		fmt.Sprintf("race #%d %q [%s] captain=%s racers=%s",
			race.ID, race.Name, race.Status, race.Captain, strings.Join(race.Racers, ",")))
}

func (t *Text) RaceRemoved(id model.RaceID) {
	t.emit("raceRemoved", map[string]any{"id": id}, fmt.Sprintf("race #%d removed", id))
}

func (t *Text) RacerUpdated(id model.RaceID, racer *model.Racer) {
	t.emit("racer", map[string]any{"id": id, "racer": racer},
		fmt.Sprintf("race #%d: %s %s floor=%d place=%d", id, racer.Name, racer.Status, racer.FloorNum, racer.PlaceMid))
}

func (t *Text) RaceFinished(race *model.Race) {
	t.emit("raceFinished", map[string]any{"id": race.ID}, fmt.Sprintf("race #%d: Race completed!", race.ID))
}

func (t *Text) Countdown(id model.RaceID, n int) {
	text := fmt.Sprintf("race #%d starts in %d", id, n)
	if n == 0 {
		text = fmt.Sprintf("race #%d: Go!", id)
	}
	t.emit("countdown", map[string]any{"id": id, "n": n}, text)
}

func (t *Text) Warning(message string) {
	t.emit("warning", map[string]any{"message": message}, "Warning: "+message)
}

func (t *Text) Error(message string) {
	t.emit("error", map[string]any{"message": message}, "Error: "+message)
}

func (t *Text) Sound(name string) {
	t.emit("sound", map[string]any{"name": name}, "*"+name+"*")
}
