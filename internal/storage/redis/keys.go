package redis

import (
	"fmt"

	"github.com/mcoot/racesync/internal/model"
)

// Key prefix for all racesync data
const keyPrefix = "racesync"

// sessionKey returns the Redis key for a session snapshot (without its races)
func sessionKey(id model.SessionID) string {
	return fmt.Sprintf("%s:session:%s", keyPrefix, id)
}

// raceKey returns the Redis key for one race of a session
func raceKey(id model.SessionID, raceID model.RaceID) string {
	return fmt.Sprintf("%s:race:%s:%d", keyPrefix, id, raceID)
}

// racesForSessionIndexKey returns the Redis key for the SET of race keys of a session
func racesForSessionIndexKey(id model.SessionID) string {
	return fmt.Sprintf("%s:idx:races_for_session:%s", keyPrefix, id)
}

// sessionsIndexKey returns the Redis key for the SET of known session IDs
func sessionsIndexKey() string {
	return fmt.Sprintf("%s:idx:sessions", keyPrefix)
}
