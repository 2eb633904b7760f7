package view

import (
	"sync"

	"github.com/mcoot/racesync/internal/model"
)

// Call is one recorded renderer invocation
type Call struct {
	Method string
	Args   []any
}

// Recorder keeps every call for inspection in tests
type Recorder struct {
	mu    sync.Mutex
	calls []Call
	lines []ChatLine
}

var _ Renderer = (*Recorder)(nil)

// NewRecorder creates an empty Recorder
func NewRecorder() *Recorder {
	return &Recorder{}
}

func (r *Recorder) record(method string, args ...any) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.calls = append(r.calls, Call{Method: method, Args: args})
}

// Calls returns a copy of every recorded call
func (r *Recorder) Calls() []Call {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]Call(nil), r.calls...)
}

// CallsTo returns the recorded calls to a single method
func (r *Recorder) CallsTo(method string) []Call {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []Call
	for _, c := range r.calls {
		if c.Method == method {
			out = append(out, c)
		}
	}
	return out
}

// Lines returns the chat lines drawn so far
func (r *Recorder) Lines() []ChatLine {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]ChatLine(nil), r.lines...)
}

// Messages returns just the text of every recorded warning and error
func (r *Recorder) Messages(method string) []string {
	var out []string
	for _, c := range r.CallsTo(method) {
		if len(c.Args) > 0 {
			if s, ok := c.Args[0].(string); ok {
				out = append(out, s)
			}
		}
	}
	return out
}

// Reset forgets everything recorded
func (r *Recorder) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.calls = nil
	r.lines = nil
}

func (r *Recorder) ChatLine(line ChatLine) {
	r.mu.Lock()
	r.lines = append(r.lines, line)
	r.mu.Unlock()
	r.record("ChatLine", line)
}

func (r *Recorder) ClearChat(room model.RoomID) { r.record("ClearChat", room) }

func (r *Recorder) ScreenChanged(screen model.Screen) { r.record("ScreenChanged", screen) }

func (r *Recorder) UsersChanged(room model.RoomID, names []string) {
	r.record("UsersChanged", room, names)
}

func (r *Recorder) RaceUpdated(race *model.Race) { r.record("RaceUpdated", race.ID) }

func (r *Recorder) RaceRemoved(id model.RaceID) { r.record("RaceRemoved", id) }

func (r *Recorder) RacerUpdated(id model.RaceID, racer *model.Racer) {
	r.record("RacerUpdated", id, racer.Name)
}

func (r *Recorder) RaceFinished(race *model.Race) { r.record("RaceFinished", race.ID) }

func (r *Recorder) Countdown(id model.RaceID, n int) { r.record("Countdown", id, n) }

func (r *Recorder) Warning(message string) { r.record("Warning", message) }

func (r *Recorder) Error(message string) { r.record("Error", message) }

func (r *Recorder) Sound(name string) { r.record("Sound", name) }
