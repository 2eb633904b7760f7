package model

import "time"

// SessionID identifies one connection's snapshot in storage
type SessionID string

// RoomSummary is the stored view of a chat room
type RoomSummary struct {
	Room     RoomID   `json:"room"`
	Users    []string `json:"users"`
	NumUsers int      `json:"numUsers"`
}

// SessionSnapshot is a point-in-time copy of a session's state, published
// for readers outside the session goroutine
type SessionSnapshot struct {
	SessionID     SessionID     `json:"sessionID"`
	Username      string        `json:"username"`
	UserID        int           `json:"userID"`
	Screen        Screen        `json:"screen"`
	CurrentRaceID RaceID        `json:"currentRaceID"`
	DevMode       bool          `json:"devMode"`
	Rooms         []RoomSummary `json:"rooms"`
	Races         []*Race       `json:"races"`
	TakenAt       time.Time     `json:"takenAt"`
}

// FindRace returns the race with the given ID, or nil
func (s *SessionSnapshot) FindRace(id RaceID) *Race {
	for _, r := range s.Races {
		if r.ID == id {
			return r
		}
	}
	return nil
}

// Clone returns a deep copy of the snapshot
func (s *SessionSnapshot) Clone() *SessionSnapshot {
	c := *s
	c.Rooms = make([]RoomSummary, len(s.Rooms))
	for i, room := range s.Rooms {
		room.Users = append([]string(nil), room.Users...)
		c.Rooms[i] = room
	}
	c.Races = make([]*Race, len(s.Races))
	for i, r := range s.Races {
		c.Races[i] = r.Clone()
	}
	return &c
}
