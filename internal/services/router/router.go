package router

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"sort"

	"github.com/mcoot/racesync/internal/model"
)

// HandlerFunc applies one inbound event
type HandlerFunc func(ctx context.Context, payload json.RawMessage) error

// Router dispatches inbound events by name. It does no synchronisation of
// its own; callers dispatch from a single goroutine.
type Router struct {
	handlers map[string]HandlerFunc
	logger   *slog.Logger
}

// New creates a Router with no handlers
func New(logger *slog.Logger) *Router {
	return &Router{
		handlers: make(map[string]HandlerFunc),
		logger:   logger.With(slog.String("component", "router")),
	}
}

// Handle registers the handler for an event name, replacing any previous one
func (r *Router) Handle(name string, h HandlerFunc) {
	r.handlers[name] = h
}

// Names returns every registered event name
func (r *Router) Names() []string {
	names := make([]string, 0, len(r.handlers))
	for name := range r.handlers {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Dispatch runs the handler for name. Events nobody handles are ignored so
// that newer servers can add events.
func (r *Router) Dispatch(ctx context.Context, name string, payload json.RawMessage) error {
	h, ok := r.handlers[name]
	if !ok {
		r.logger.Debug("ignoring unhandled event", slog.String("event", name))
		return nil
	}
	if err := h(ctx, payload); err != nil {
		return fmt.Errorf("%s: %w", name, err)
	}
	return nil
}

// On adapts a typed handler into a HandlerFunc. An empty payload decodes to
// the zero value.
func On[T any](fn func(ctx context.Context, p T) error) HandlerFunc {
	return func(ctx context.Context, payload json.RawMessage) error {
		var p T
		if len(payload) > 0 {
			if err := json.Unmarshal(payload, &p); err != nil {
				return fmt.Errorf("%w: %w", model.ErrMalformedEvent, err)
			}
		}
		return fn(ctx, p)
	}
}
