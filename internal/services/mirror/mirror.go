package mirror

import (
	"context"
	"log/slog"
	"time"

	"github.com/mcoot/racesync/internal/model"
	"github.com/mcoot/racesync/internal/storage"
)

const saveTimeout = 5 * time.Second

// Mirror copies session snapshots into storage in the background. Only the
// newest pending snapshot is kept; failures are logged and forgotten.
type Mirror struct {
	store   storage.Storage
	logger  *slog.Logger
	pending chan *model.SessionSnapshot
}

// New creates a Mirror writing to store
func New(store storage.Storage, logger *slog.Logger) *Mirror {
	return &Mirror{
		store:   store,
		logger:  logger.With(slog.String("component", "mirror")),
		pending: make(chan *model.SessionSnapshot, 1),
	}
}

// Publish hands over a snapshot without blocking, replacing one that has
// not been written yet. It must only be called from one goroutine.
func (m *Mirror) Publish(snap *model.SessionSnapshot) {
	select {
	case m.pending <- snap:
		return
	default:
	}
	select {
	case <-m.pending:
	default:
	}
	select {
	case m.pending <- snap:
	default:
		m.logger.Debug("snapshot dropped", slog.String("session", string(snap.SessionID)))
	}
}

// Run writes snapshots until ctx is cancelled. A snapshot still pending at
// that point is written before returning.
func (m *Mirror) Run(ctx context.Context) {
	for {
		select {
		case snap := <-m.pending:
			m.save(snap)
		case <-ctx.Done():
			select {
			case snap := <-m.pending:
				m.save(snap)
			default:
			}
			return
		}
	}
}

// Remove deletes a session's snapshot, at the end of the session
func (m *Mirror) Remove(ctx context.Context, id model.SessionID) {
	if err := m.store.DeleteSession(ctx, id); err != nil {
		m.logger.Warn("failed to remove snapshot",
			slog.String("session", string(id)),
			slog.Any("error", err))
	}
}

func (m *Mirror) save(snap *model.SessionSnapshot) {
	ctx, cancel := context.WithTimeout(context.Background(), saveTimeout)
	defer cancel()
	if err := m.store.SaveSnapshot(ctx, snap); err != nil {
		m.logger.Warn("failed to save snapshot",
			slog.String("session", string(snap.SessionID)),
			slog.Any("error", err))
		return
	}
	m.logger.Debug("snapshot saved",
		slog.String("session", string(snap.SessionID)),
		slog.Int("races", len(snap.Races)))
}
