package model

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
)

// RoomKind distinguishes the lobby from per-race chat rooms
type RoomKind int

const (
	RoomKindLobby RoomKind = iota
	RoomKindRace
)

const (
	lobbyRoomName  = "lobby"
	raceRoomPrefix = "_race_"
)

// RoomID identifies a chat room. The zero value is the lobby.
type RoomID struct {
	Kind   RoomKind
	RaceID RaceID
}

// LobbyRoom returns the identifier of the lobby
func LobbyRoom() RoomID {
	return RoomID{Kind: RoomKindLobby}
}

// RaceRoom returns the identifier of the chat room belonging to a race
func RaceRoom(id RaceID) RoomID {
	return RoomID{Kind: RoomKindRace, RaceID: id}
}

// IsLobby reports whether this is the lobby
func (r RoomID) IsLobby() bool {
	return r.Kind == RoomKindLobby
}

// IsRace reports whether this is a race room
func (r RoomID) IsRace() bool {
	return r.Kind == RoomKindRace
}

// String returns the wire name of the room ("lobby" or "_race_<id>")
func (r RoomID) String() string {
	if r.Kind == RoomKindRace {
		return raceRoomPrefix + strconv.Itoa(int(r.RaceID))
	}
	return lobbyRoomName
}

// ParseRoomID converts a wire room name into a RoomID
func ParseRoomID(s string) (RoomID, error) {
	if s == lobbyRoomName {
		return LobbyRoom(), nil
	}
	if !strings.HasPrefix(s, raceRoomPrefix) {
		return RoomID{}, fmt.Errorf("%w: %q", ErrMalformedRoomID, s)
	}
	id, err := strconv.Atoi(strings.TrimPrefix(s, raceRoomPrefix))
	if err != nil || id < 0 {
		return RoomID{}, fmt.Errorf("%w: %q", ErrMalformedRoomID, s)
	}
	return RaceRoom(RaceID(id)), nil
}

// MarshalText implements encoding.TextMarshaler
func (r RoomID) MarshalText() ([]byte, error) {
	return []byte(r.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler
func (r *RoomID) UnmarshalText(b []byte) error {
	parsed, err := ParseRoomID(string(b))
	if err != nil {
		return err
	}
	*r = parsed
	return nil
}

// User is a member of a chat room. Everything except the name is opaque.
type User struct {
	Name    string
	Profile map[string]json.RawMessage
}

// UnmarshalJSON keeps every field other than "name" as a raw profile value
func (u *User) UnmarshalJSON(b []byte) error {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(b, &fields); err != nil {
		return err
	}
	rawName, ok := fields["name"]
	if !ok {
		return fmt.Errorf("%w: user without a name", ErrMalformedEvent)
	}
	if err := json.Unmarshal(rawName, &u.Name); err != nil {
		return err
	}
	delete(fields, "name")
	u.Profile = fields
	return nil
}

// MarshalJSON flattens the profile back alongside the name
func (u User) MarshalJSON() ([]byte, error) {
	fields := make(map[string]json.RawMessage, len(u.Profile)+1)
	for k, v := range u.Profile {
		fields[k] = v
	}
	name, err := json.Marshal(u.Name)
	if err != nil {
		return nil, err
	}
	fields["name"] = name
	return json.Marshal(fields)
}

// Room tracks membership and input history for one chat room
type Room struct {
	ID           RoomID
	Users        map[string]User
	NumUsers     int
	TypedHistory []string // most recent first
	HistoryIndex int      // -1 when not browsing
	ChatLine     int
}

// NewRoom creates a room populated with the given users
func NewRoom(id RoomID, users []User) *Room {
	room := &Room{
		ID:           id,
		Users:        make(map[string]User, len(users)),
		TypedHistory: []string{},
		HistoryIndex: -1,
	}
	for _, u := range users {
		room.Users[u.Name] = u
	}
	room.NumUsers = len(users)
	return room
}

// UserNames returns the names of everyone in the room
func (r *Room) UserNames() []string {
	names := make([]string, 0, len(r.Users))
	for name := range r.Users {
		names = append(names, name)
	}
	return names
}
