package storage

import (
	"context"

	"github.com/mcoot/racesync/internal/model"
)

// Storage holds published session snapshots for the status API
type Storage interface {
	// Session operations
	SaveSnapshot(ctx context.Context, snap *model.SessionSnapshot) error
	GetSession(ctx context.Context, id model.SessionID) (*model.SessionSnapshot, error)
	ListSessions(ctx context.Context) ([]model.SessionID, error)
	DeleteSession(ctx context.Context, id model.SessionID) error

	// Race operations
	ListRaces(ctx context.Context, id model.SessionID) ([]*model.Race, error)
	GetRace(ctx context.Context, id model.SessionID, raceID model.RaceID) (*model.Race, error)
}
