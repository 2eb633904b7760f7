package gate

import (
	"log/slog"
	"time"

	"github.com/mcoot/racesync/internal/dependencies/clock"
	"github.com/mcoot/racesync/internal/model"
)

const (
	// FadeTime is how long a screen transition takes
	FadeTime = 300 * time.Millisecond
	// Leeway is added on top of FadeTime before re-checking the screen
	Leeway = 5 * time.Millisecond
)

type deferred struct {
	name string
	fn   func()
}

// Gate holds back presentation work while the screen is in transition.
// Deferred work runs in submission order once the transition ends.
type Gate struct {
	state     *model.SessionState
	scheduler clock.Scheduler
	logger    *slog.Logger

	pending []deferred
	armed   bool
}

// New creates a Gate watching the screen token in state
func New(state *model.SessionState, scheduler clock.Scheduler, logger *slog.Logger) *Gate {
	return &Gate{
		state:     state,
		scheduler: scheduler,
		logger:    logger.With(slog.String("component", "gate")),
	}
}

// Run invokes fn now, or once the current transition has finished.
// Work already waiting always runs first.
func (g *Gate) Run(name string, fn func()) {
	if !g.state.InTransition() && len(g.pending) == 0 {
		fn()
		return
	}

	g.pending = append(g.pending, deferred{name: name, fn: fn})
	if g.state.InTransition() {
		g.logger.Debug("deferring until transition ends",
			slog.String("handler", name),
			slog.Int("pending", len(g.pending)))
		g.arm()
		return
	}
	g.Flush()
}

// Flush runs waiting work if the screen is settled. A flushed callback that
// starts a new transition pauses the rest of the queue.
func (g *Gate) Flush() {
	for len(g.pending) > 0 {
		if g.state.InTransition() {
			g.arm()
			return
		}
		next := g.pending[0]
		g.pending = g.pending[1:]
		next.fn()
	}
}

// Pending returns the number of deferred callbacks
func (g *Gate) Pending() int {
	return len(g.pending)
}

func (g *Gate) arm() {
	if g.armed {
		return
	}
	g.armed = true
	g.scheduler.AfterFunc(FadeTime+Leeway, g.retry)
}

func (g *Gate) retry() {
	g.armed = false
	if g.state.InTransition() {
		g.arm()
		return
	}
	g.Flush()
}
