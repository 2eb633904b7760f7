package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/mcoot/racesync/internal/api/response"
)

// Output handles formatting output based on the configured format
type Output struct {
	format string
	w      io.Writer
}

// NewOutput creates a new Output formatter writing to w
func NewOutput(format string, w io.Writer) *Output {
	return &Output{format: format, w: w}
}

// Print outputs data in the configured format
func (o *Output) Print(data any) {
	if o.format == "json" {
		o.printJSON(data)
	} else {
		o.printText(data)
	}
}

// PrintMessage outputs a simple message
func (o *Output) PrintMessage(msg string) {
	if o.format == "json" {
		data, _ := json.Marshal(map[string]string{"message": msg})
		_, _ = fmt.Fprintln(o.w, string(data))
	} else {
		_, _ = fmt.Fprintln(o.w, msg)
	}
}

func (o *Output) printJSON(data any) {
	enc := json.NewEncoder(o.w)
	enc.SetIndent("", "  ")
	_ = enc.Encode(data)
}

func (o *Output) printText(data any) {
	switch v := data.(type) {
	case response.Health:
		o.printf("Status: %s\n", v.Status)
		o.printf("Sessions: %d\n", v.Sessions)
	case response.Session:
		o.printSession(v)
	case response.RaceList:
		o.printRaceList(v)
	case response.Race:
		o.printRace(v)
	case ParsedCommand:
		o.printf("%s %s\n", v.Name, v.Payload)
	case ReplayResult:
		o.printReplay(v)
	default:
		// Fallback to JSON for unknown types
		o.printJSON(data)
	}
}

func (o *Output) printf(format string, args ...any) {
	_, _ = fmt.Fprintf(o.w, format, args...)
}

func (o *Output) printSession(s response.Session) {
	o.printf("Session: %s\n", s.ID)
	if s.Username != "" {
		o.printf("User: %s (%d)\n", s.Username, s.UserID)
	}
	o.printf("Screen: %s\n", s.Screen)
	if s.CurrentRaceID != nil {
		o.printf("Current Race: %d\n", *s.CurrentRaceID)
	}
	for _, r := range s.Rooms {
		o.printf("Room %s (%d): %s\n", r.Name, r.NumUsers, strings.Join(r.Users, ", "))
	}
	o.printf("Races: %d\n", s.RaceCount)
}

func (o *Output) printRaceList(l response.RaceList) {
	if len(l.Races) == 0 {
		o.printf("No races\n")
		return
	}
	for _, r := range l.Races {
		o.printRaceLine(r)
	}
}

func (o *Output) printRaceLine(r response.RaceSummary) {
	var tags []string
	if r.Solo {
		tags = append(tags, "solo")
	}
	if r.IsPasswordProtected {
		tags = append(tags, "password")
	}
	if r.Format != "" {
		tags = append(tags, r.Format)
	}
	tagStr := ""
	if len(tags) > 0 {
		tagStr = " [" + strings.Join(tags, ", ") + "]"
	}
	o.printf("#%d %s - %s, captain %s, %d racers%s\n",
		r.ID, r.Name, r.Status, r.Captain, len(r.Racers), tagStr)
}

func (o *Output) printRace(r response.Race) {
	o.printRaceLine(r.RaceSummary)
	if r.StartedAt != nil {
		o.printf("Started: %s\n", r.StartedAt.Format("2006-01-02 15:04:05"))
	}
	for _, racer := range r.Roster {
		place := ""
		if racer.Place > 0 {
			place = fmt.Sprintf(" place %d", racer.Place)
		}
		o.printf("  - %s: %s, floor %d, %d items%s\n",
			racer.Name, racer.Status, racer.FloorNum, len(racer.Items), place)
	}
}

func (o *Output) printReplay(r ReplayResult) {
	o.printSession(r.Session)
	for _, race := range r.Races {
		o.printRace(race)
	}
	if len(r.ModLines) > 0 {
		o.printf("Mod:\n")
		for _, line := range r.ModLines {
			o.printf("  %s\n", line)
		}
	}
}
