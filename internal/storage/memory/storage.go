package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/mcoot/racesync/internal/model"
	"github.com/mcoot/racesync/internal/storage"
)

// Storage is an in-memory implementation of the storage interface
type Storage struct {
	mu sync.RWMutex

	sessions map[model.SessionID]*model.SessionSnapshot
}

// New creates a new in-memory storage instance
func New() *Storage {
	return &Storage{
		sessions: make(map[model.SessionID]*model.SessionSnapshot),
	}
}

// Ensure Storage implements the interface
var _ storage.Storage = (*Storage)(nil)

// Session operations

func (s *Storage) SaveSnapshot(ctx context.Context, snap *model.SessionSnapshot) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sessions[snap.SessionID] = snap.Clone()
	return nil
}

func (s *Storage) GetSession(ctx context.Context, id model.SessionID) (*model.SessionSnapshot, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	snap, ok := s.sessions[id]
	if !ok {
		return nil, model.ErrSessionNotFound
	}
	return snap.Clone(), nil
}

func (s *Storage) ListSessions(ctx context.Context) ([]model.SessionID, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	ids := make([]model.SessionID, 0, len(s.sessions))
	for id := range s.sessions {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids, nil
}

func (s *Storage) DeleteSession(ctx context.Context, id model.SessionID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.sessions, id)
	return nil
}

// Race operations

func (s *Storage) ListRaces(ctx context.Context, id model.SessionID) ([]*model.Race, error) {
	snap, err := s.GetSession(ctx, id)
	if err != nil {
		return nil, err
	}
	return snap.Races, nil
}

func (s *Storage) GetRace(ctx context.Context, id model.SessionID, raceID model.RaceID) (*model.Race, error) {
	snap, err := s.GetSession(ctx, id)
	if err != nil {
		return nil, err
	}
	race := snap.FindRace(raceID)
	if race == nil {
		return nil, model.ErrRaceNotFound
	}
	return race, nil
}
