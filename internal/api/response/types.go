package response

import (
	"time"

	"github.com/mcoot/racesync/internal/model"
)

// Room represents a chat room in API responses
type Room struct {
	Name     string   `json:"name"`
	Users    []string `json:"users"`
	NumUsers int      `json:"num_users"`
}

// RoomFromModel converts a model.RoomSummary
func RoomFromModel(r model.RoomSummary) Room {
	return Room{
		Name:     r.Room.String(),
		Users:    r.Users,
		NumUsers: r.NumUsers,
	}
}

// Item represents an item a racer picked up
type Item struct {
	ID       int `json:"id"`
	FloorNum int `json:"floor_num"`
}

// Racer represents a participant in API responses
type Racer struct {
	Name                     string `json:"name"`
	Status                   string `json:"status"`
	Place                    int    `json:"place"`
	PlaceMid                 int    `json:"place_mid"`
	RunTime                  int64  `json:"run_time,omitempty"`
	FloorNum                 int    `json:"floor_num"`
	StageType                int    `json:"stage_type"`
	MillisecondsBehindLeader int64  `json:"ms_behind_leader"`
	Items                    []Item `json:"items"`
	StartingItem             int    `json:"starting_item,omitempty"`
	CharacterNum             int    `json:"character_num"`
}

// RacerFromModel converts a model.Racer
func RacerFromModel(r *model.Racer) Racer {
	items := make([]Item, len(r.Items))
	for i, item := range r.Items {
		items[i] = Item{ID: item.ID, FloorNum: item.FloorNum}
	}
	return Racer{
		Name:                     r.Name,
		Status:                   string(r.Status),
		Place:                    r.Place,
		PlaceMid:                 r.PlaceMid,
		RunTime:                  r.RunTime,
		FloorNum:                 r.FloorNum,
		StageType:                r.StageType,
		MillisecondsBehindLeader: r.MillisecondsBehindLeader,
		Items:                    items,
		StartingItem:             r.StartingItem,
		CharacterNum:             r.CharacterNum,
	}
}

// RaceSummary represents a race in list responses
type RaceSummary struct {
	ID                  int      `json:"id"`
	Name                string   `json:"name"`
	Status              string   `json:"status"`
	Captain             string   `json:"captain"`
	Solo                bool     `json:"solo"`
	Format              string   `json:"format,omitempty"`
	Goal                string   `json:"goal,omitempty"`
	IsPasswordProtected bool     `json:"is_password_protected"`
	Racers              []string `json:"racers"`
}

// RaceSummaryFromModel converts a model.Race
func RaceSummaryFromModel(r *model.Race) RaceSummary {
	racers := r.Racers
	if racers == nil {
		racers = []string{}
	}
	return RaceSummary{
		ID:                  int(r.ID),
		Name:                r.Name,
		Status:              string(r.Status),
		Captain:             r.Captain,
		Solo:                r.Ruleset.Solo,
		Format:              r.Ruleset.Format,
		Goal:                r.Ruleset.Goal,
		IsPasswordProtected: r.IsPasswordProtected,
		Racers:              racers,
	}
}

// Race represents a race with its detailed roster
type Race struct {
	RaceSummary
	StartedAt *time.Time `json:"started_at"`
	Roster    []Racer    `json:"roster"`
}

// RaceFromModel converts a model.Race including the roster, if known
func RaceFromModel(r *model.Race) Race {
	roster := make([]Racer, len(r.RacerList))
	for i, racer := range r.RacerList {
		roster[i] = RacerFromModel(racer)
	}

	var started *time.Time
	if r.DatetimeStarted > 0 {
		t := time.UnixMilli(r.DatetimeStarted).UTC()
		started = &t
	}

	return Race{
		RaceSummary: RaceSummaryFromModel(r),
		StartedAt:   started,
		Roster:      roster,
	}
}

// Session represents the mirrored client session
type Session struct {
	ID            string    `json:"id"`
	Username      string    `json:"username"`
	UserID        int       `json:"user_id"`
	Screen        string    `json:"screen"`
	CurrentRaceID *int      `json:"current_race_id"`
	Rooms         []Room    `json:"rooms"`
	RaceCount     int       `json:"race_count"`
	UpdatedAt     time.Time `json:"updated_at"`
}

// SessionFromModel converts a model.SessionSnapshot
func SessionFromModel(s *model.SessionSnapshot) Session {
	rooms := make([]Room, len(s.Rooms))
	for i, r := range s.Rooms {
		rooms[i] = RoomFromModel(r)
	}

	var current *int
	if s.CurrentRaceID != model.NoRace {
		id := int(s.CurrentRaceID)
		current = &id
	}

	return Session{
		ID:            string(s.SessionID),
		Username:      s.Username,
		UserID:        s.UserID,
		Screen:        string(s.Screen),
		CurrentRaceID: current,
		Rooms:         rooms,
		RaceCount:     len(s.Races),
		UpdatedAt:     s.TakenAt,
	}
}

// RaceList wraps the race list response
type RaceList struct {
	Races []RaceSummary `json:"races"`
}

// Health is the health check response
type Health struct {
	Status   string `json:"status"`
	Sessions int    `json:"sessions"`
}
