package model

import "fmt"

// RaceID is the server-assigned race identifier
type RaceID int

// NoRace is the current race ID when the user is not in a race
const NoRace RaceID = -1

// RaceStatus is the lifecycle state of a race
type RaceStatus string

const (
	RaceStatusOpen       RaceStatus = "open"
	RaceStatusStarting   RaceStatus = "starting"
	RaceStatusInProgress RaceStatus = "in progress"
	RaceStatusFinished   RaceStatus = "finished"
)

// ParseRaceStatus validates a status received from the server
func ParseRaceStatus(s string) (RaceStatus, error) {
	switch status := RaceStatus(s); status {
	case RaceStatusOpen, RaceStatusStarting, RaceStatusInProgress, RaceStatusFinished:
		return status, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownRaceStatus, s)
	}
}

// Rank orders statuses along the lifecycle
func (s RaceStatus) Rank() int {
	switch s {
	case RaceStatusOpen:
		return 0
	case RaceStatusStarting:
		return 1
	case RaceStatusInProgress:
		return 2
	case RaceStatusFinished:
		return 3
	default:
		return -1
	}
}

// UnmarshalText rejects unknown statuses instead of guessing. An empty
// status is left unset.
func (s *RaceStatus) UnmarshalText(b []byte) error {
	if len(b) == 0 {
		*s = ""
		return nil
	}
	status, err := ParseRaceStatus(string(b))
	if err != nil {
		return err
	}
	*s = status
	return nil
}

// Ruleset describes how a race is played
type Ruleset struct {
	Solo          bool   `json:"solo"`
	Format        string `json:"format"`
	Character     string `json:"character"`
	Goal          string `json:"goal"`
	StartingBuild int    `json:"startingBuild"`
	Seed          string `json:"seed"`
}

// Race is the client mirror of a race known to the server
type Race struct {
	ID                  RaceID     `json:"id"`
	Name                string     `json:"name"`
	Status              RaceStatus `json:"status"`
	Ruleset             Ruleset    `json:"ruleset"`
	Captain             string     `json:"captain"`
	IsPasswordProtected bool       `json:"isPasswordProtected"`
	Racers              []string   `json:"racers"` // join order
	DatetimeCreated     int64      `json:"datetimeCreated"`
	DatetimeStarted     int64      `json:"datetimeStarted"`

	// Only populated for the active race
	RacerList []*Racer `json:"racerList,omitempty"`
}

// HasRacer reports whether name is signed up for the race
func (r *Race) HasRacer(name string) bool {
	for _, n := range r.Racers {
		if n == name {
			return true
		}
	}
	return false
}

// FindRacer returns the detailed record for name, or nil
func (r *Race) FindRacer(name string) *Racer {
	for _, racer := range r.RacerList {
		if racer.Name == name {
			return racer
		}
	}
	return nil
}

// NumReady counts racers that have readied up
func (r *Race) NumReady() int {
	n := 0
	for _, racer := range r.RacerList {
		if racer.Status == RacerStatusReady {
			n++
		}
	}
	return n
}

// Clone returns a deep copy safe to hand to another goroutine
func (r *Race) Clone() *Race {
	c := *r
	c.Racers = append([]string(nil), r.Racers...)
	if r.RacerList != nil {
		c.RacerList = make([]*Racer, len(r.RacerList))
		for i, racer := range r.RacerList {
			c.RacerList[i] = racer.Clone()
		}
	}
	return &c
}
