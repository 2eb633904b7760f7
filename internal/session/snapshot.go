package session

import (
	"context"
	"sort"

	"github.com/mcoot/racesync/internal/model"
)

// Snapshot copies the current state. Call it on the session goroutine.
func (s *Session) Snapshot() *model.SessionSnapshot {
	snap := &model.SessionSnapshot{
		SessionID:     s.id,
		Username:      s.state.Username,
		UserID:        s.state.UserID,
		Screen:        s.state.Screen,
		CurrentRaceID: s.state.CurrentRaceID,
		DevMode:       s.state.DevMode,
		Rooms:         []model.RoomSummary{},
		Races:         []*model.Race{},
		TakenAt:       s.clock.Now().UTC(),
	}

	for _, id := range s.rooms.IDs() {
		r, _ := s.rooms.Get(id)
		users := r.UserNames()
		sort.Strings(users)
		snap.Rooms = append(snap.Rooms, model.RoomSummary{
			Room:     id,
			Users:    users,
			NumUsers: r.NumUsers,
		})
	}
	for _, r := range s.races.All() {
		snap.Races = append(snap.Races, r.Clone())
	}
	return snap
}

// ReadSnapshot takes a snapshot from any goroutine
func (s *Session) ReadSnapshot(ctx context.Context) (*model.SessionSnapshot, error) {
	var snap *model.SessionSnapshot
	err := s.Do(ctx, func() { snap = s.Snapshot() })
	return snap, err
}

func (s *Session) publish() {
	if s.publisher == nil {
		return
	}
	s.publisher.Publish(s.Snapshot())
}
