package room

import (
	"fmt"
	"log/slog"
	"sort"
	"strings"

	"github.com/mcoot/racesync/internal/model"
)

// Store owns every chat room the client knows about
type Store struct {
	rooms  map[model.RoomID]*model.Room
	logger *slog.Logger
}

// New creates an empty Store
func New(logger *slog.Logger) *Store {
	return &Store{
		rooms:  make(map[model.RoomID]*model.Room),
		logger: logger.With(slog.String("component", "rooms")),
	}
}

// SetRoom creates the room, replacing any previous room with the same ID
func (s *Store) SetRoom(id model.RoomID, users []model.User) *model.Room {
	room := model.NewRoom(id, users)
	s.rooms[id] = room
	s.logger.Debug("room list received",
		slog.String("room", id.String()),
		slog.Int("users", room.NumUsers))
	return room
}

// Get returns a room by ID
func (s *Store) Get(id model.RoomID) (*model.Room, bool) {
	room, ok := s.rooms[id]
	return room, ok
}

// Remove drops a room
func (s *Store) Remove(id model.RoomID) {
	delete(s.rooms, id)
}

// Reset drops every room
func (s *Store) Reset() {
	s.rooms = make(map[model.RoomID]*model.Room)
}

// IDs returns every known room, lobby first and races in ascending order
func (s *Store) IDs() []model.RoomID {
	ids := make([]model.RoomID, 0, len(s.rooms))
	for id := range s.rooms {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool {
		if ids[i].Kind != ids[j].Kind {
			return ids[i].Kind < ids[j].Kind
		}
		return ids[i].RaceID < ids[j].RaceID
	})
	return ids
}

func (s *Store) lookup(id model.RoomID) (*model.Room, error) {
	room, ok := s.rooms[id]
	if !ok {
		return nil, fmt.Errorf("%w: %s", model.ErrRoomNotFound, id)
	}
	return room, nil
}

// UserJoined records a new member. A user already present is refreshed
// without changing the count.
func (s *Store) UserJoined(id model.RoomID, user model.User) (*model.Room, error) {
	room, err := s.lookup(id)
	if err != nil {
		return nil, err
	}
	if _, exists := room.Users[user.Name]; !exists {
		room.NumUsers++
	}
	room.Users[user.Name] = user
	return room, nil
}

// UserLeft removes a member
func (s *Store) UserLeft(id model.RoomID, name string) (*model.Room, error) {
	room, err := s.lookup(id)
	if err != nil {
		return nil, err
	}
	if _, exists := room.Users[name]; exists {
		delete(room.Users, name)
		room.NumUsers--
	}
	return room, nil
}

// UserUpdated replaces a member's profile
func (s *Store) UserUpdated(id model.RoomID, user model.User) (*model.Room, error) {
	room, err := s.lookup(id)
	if err != nil {
		return nil, err
	}
	room.Users[user.Name] = user
	return room, nil
}

// FindUser matches name case-insensitively and returns the stored casing.
// An exact match wins over a case-folded one.
func (s *Store) FindUser(id model.RoomID, name string) (string, bool) {
	room, ok := s.rooms[id]
	if !ok {
		return "", false
	}
	if _, exact := room.Users[name]; exact {
		return name, true
	}

	var found []string
	for candidate := range room.Users {
		if strings.EqualFold(candidate, name) {
			found = append(found, candidate)
		}
	}
	if len(found) == 0 {
		return "", false
	}
	sort.Strings(found)
	return found[0], true
}

// RecordTyped pushes input onto the room's recall history
func (s *Store) RecordTyped(id model.RoomID, text string) error {
	room, err := s.lookup(id)
	if err != nil {
		return err
	}
	room.TypedHistory = append([]string{text}, room.TypedHistory...)
	room.HistoryIndex = -1
	return nil
}

// RecallOlder steps back through typed history (up arrow)
func (s *Store) RecallOlder(id model.RoomID) (string, bool) {
	room, ok := s.rooms[id]
	if !ok || room.HistoryIndex+1 >= len(room.TypedHistory) {
		return "", false
	}
	room.HistoryIndex++
	return room.TypedHistory[room.HistoryIndex], true
}

// RecallNewer steps forward through typed history (down arrow). Stepping past
// the newest entry returns an empty line and stops browsing.
func (s *Store) RecallNewer(id model.RoomID) (string, bool) {
	room, ok := s.rooms[id]
	if !ok || room.HistoryIndex < 0 {
		return "", false
	}
	room.HistoryIndex--
	if room.HistoryIndex < 0 {
		return "", true
	}
	return room.TypedHistory[room.HistoryIndex], true
}

// NextChatLine bumps and returns the room's line counter
func (s *Store) NextChatLine(id model.RoomID) (int, bool) {
	room, ok := s.rooms[id]
	if !ok {
		return 0, false
	}
	room.ChatLine++
	return room.ChatLine, true
}
