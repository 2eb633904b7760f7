package screen

import (
	"log/slog"
	"time"

	"github.com/mcoot/racesync/internal/dependencies/clock"
	"github.com/mcoot/racesync/internal/model"
	"github.com/mcoot/racesync/internal/services/gate"
	"github.com/mcoot/racesync/internal/view"
)

// Navigator changes screens. A change holds the screen token at
// model.ScreenTransition for gate.FadeTime so the gate defers presentation
// work until the new screen is up.
type Navigator struct {
	state     *model.SessionState
	scheduler clock.Scheduler
	gate      *gate.Gate
	renderer  view.Renderer
	logger    *slog.Logger
}

// New creates a Navigator
func New(
	state *model.SessionState,
	scheduler clock.Scheduler,
	g *gate.Gate,
	renderer view.Renderer,
	logger *slog.Logger,
) *Navigator {
	return &Navigator{
		state:     state,
		scheduler: scheduler,
		gate:      g,
		renderer:  renderer,
		logger:    logger.With(slog.String("component", "screen")),
	}
}

// Show fades to target once any transition in flight has finished. The
// error screen is final for the connection and is never left this way.
func (n *Navigator) Show(target model.Screen) {
	n.gate.Run("show "+string(target), func() {
		n.begin(target)
	})
}

// ShowAfter calls Show once d has elapsed
func (n *Navigator) ShowAfter(d time.Duration, target model.Screen) {
	n.scheduler.AfterFunc(d, func() { n.Show(target) })
}

func (n *Navigator) begin(target model.Screen) {
	from := n.state.Screen
	switch {
	case from == model.ScreenError:
		n.logger.Debug("staying on error screen", slog.String("target", string(target)))
		return
	case from == target:
		return
	}

	n.logger.Debug("screen transition",
		slog.String("from", string(from)),
		slog.String("to", string(target)))

	n.state.Screen = model.ScreenTransition
	n.scheduler.AfterFunc(gate.FadeTime, func() {
		if !n.state.InTransition() {
			// Something else (the error screen) took over mid-fade
			return
		}
		n.state.Screen = target
		n.renderer.ScreenChanged(target)
		n.gate.Flush()
	})
}

// Set switches screens immediately, without a fade
func (n *Navigator) Set(target model.Screen) {
	if n.state.Screen == target {
		return
	}
	n.state.Screen = target
	n.renderer.ScreenChanged(target)
	n.gate.Flush()
}

// ShowError puts the client on the error screen. The message is shown even
// when already there.
func (n *Navigator) ShowError(message string) {
	n.logger.Warn("showing error", slog.String("message", message))
	n.renderer.Error(message)
	n.Set(model.ScreenError)
}
