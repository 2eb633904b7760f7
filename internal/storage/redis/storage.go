package redis

import (
	"context"
	"encoding/json"
	"errors"
	"sort"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/mcoot/racesync/internal/model"
	"github.com/mcoot/racesync/internal/storage"
)

// Storage is a Redis-backed implementation of the storage interface.
// A session is stored as its snapshot header plus one key per race, tied
// together by an index set.
type Storage struct {
	client *redis.Client
	cfg    Config
}

// New creates a new Redis storage instance
func New(cfg Config) (*Storage, error) {
	opts, err := redis.ParseURL(cfg.URL)
	if err != nil {
		return nil, err
	}

	opts.PoolSize = cfg.PoolSize
	opts.MinIdleConns = cfg.MinIdleConns

	client := redis.NewClient(opts)

	// Verify connection
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		return nil, err
	}

	return &Storage{
		client: client,
		cfg:    cfg,
	}, nil
}

// NewWithClient creates a Redis storage with an existing client (for testing)
func NewWithClient(client *redis.Client, cfg Config) *Storage {
	return &Storage{
		client: client,
		cfg:    cfg,
	}
}

// Close closes the Redis connection
func (s *Storage) Close() error {
	return s.client.Close()
}

// Ensure Storage implements the interface
var _ storage.Storage = (*Storage)(nil)

// Session operations

func (s *Storage) SaveSnapshot(ctx context.Context, snap *model.SessionSnapshot) error {
	header := *snap
	header.Races = nil
	data, err := json.Marshal(&header)
	if err != nil {
		return err
	}

	indexKey := racesForSessionIndexKey(snap.SessionID)
	stale, err := s.client.SMembers(ctx, indexKey).Result()
	if err != nil {
		return err
	}

	// Replace the header and every race in one transaction so readers never
	// see a mix of two snapshots
	pipe := s.client.TxPipeline()
	for _, key := range stale {
		pipe.Del(ctx, key)
	}
	pipe.Del(ctx, indexKey)
	pipe.Set(ctx, sessionKey(snap.SessionID), data, s.cfg.SnapshotTTL)
	for _, race := range snap.Races {
		raceData, err := json.Marshal(race)
		if err != nil {
			return err
		}
		key := raceKey(snap.SessionID, race.ID)
		pipe.Set(ctx, key, raceData, s.cfg.SnapshotTTL)
		pipe.SAdd(ctx, indexKey, key)
	}
	if len(snap.Races) > 0 {
		pipe.Expire(ctx, indexKey, s.cfg.SnapshotTTL) // Keep index TTL in sync
	}
	pipe.SAdd(ctx, sessionsIndexKey(), string(snap.SessionID))
	_, err = pipe.Exec(ctx)
	return err
}

func (s *Storage) GetSession(ctx context.Context, id model.SessionID) (*model.SessionSnapshot, error) {
	data, err := s.client.Get(ctx, sessionKey(id)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, model.ErrSessionNotFound
		}
		return nil, err
	}

	var snap model.SessionSnapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		return nil, err
	}

	snap.Races, err = s.racesForSession(ctx, id)
	if err != nil {
		return nil, err
	}
	return &snap, nil
}

func (s *Storage) ListSessions(ctx context.Context) ([]model.SessionID, error) {
	members, err := s.client.SMembers(ctx, sessionsIndexKey()).Result()
	if err != nil {
		return nil, err
	}

	ids := make([]model.SessionID, 0, len(members))
	var expired []interface{}
	for _, m := range members {
		n, err := s.client.Exists(ctx, sessionKey(model.SessionID(m))).Result()
		if err != nil {
			return nil, err
		}
		if n == 0 {
			expired = append(expired, m)
			continue
		}
		ids = append(ids, model.SessionID(m))
	}

	if len(expired) > 0 {
		// Sessions whose header expired are dropped from the index lazily
		if err := s.client.SRem(ctx, sessionsIndexKey(), expired...).Err(); err != nil {
			return nil, err
		}
	}

	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids, nil
}

func (s *Storage) DeleteSession(ctx context.Context, id model.SessionID) error {
	indexKey := racesForSessionIndexKey(id)

	raceKeys, err := s.client.SMembers(ctx, indexKey).Result()
	if err != nil {
		return err
	}

	// Delete all races, the index and the header in one pipeline
	pipe := s.client.Pipeline()
	for _, key := range raceKeys {
		pipe.Del(ctx, key)
	}
	pipe.Del(ctx, indexKey)
	pipe.Del(ctx, sessionKey(id))
	pipe.SRem(ctx, sessionsIndexKey(), string(id))
	_, err = pipe.Exec(ctx)
	return err
}

// Race operations

func (s *Storage) ListRaces(ctx context.Context, id model.SessionID) ([]*model.Race, error) {
	if err := s.requireSession(ctx, id); err != nil {
		return nil, err
	}
	return s.racesForSession(ctx, id)
}

func (s *Storage) GetRace(ctx context.Context, id model.SessionID, raceID model.RaceID) (*model.Race, error) {
	data, err := s.client.Get(ctx, raceKey(id, raceID)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			if err := s.requireSession(ctx, id); err != nil {
				return nil, err
			}
			return nil, model.ErrRaceNotFound
		}
		return nil, err
	}

	var race model.Race
	if err := json.Unmarshal(data, &race); err != nil {
		return nil, err
	}
	return &race, nil
}

func (s *Storage) requireSession(ctx context.Context, id model.SessionID) error {
	n, err := s.client.Exists(ctx, sessionKey(id)).Result()
	if err != nil {
		return err
	}
	if n == 0 {
		return model.ErrSessionNotFound
	}
	return nil
}

func (s *Storage) racesForSession(ctx context.Context, id model.SessionID) ([]*model.Race, error) {
	raceKeys, err := s.client.SMembers(ctx, racesForSessionIndexKey(id)).Result()
	if err != nil {
		return nil, err
	}

	if len(raceKeys) == 0 {
		return []*model.Race{}, nil
	}

	// Fetch all races at once using MGET
	values, err := s.client.MGet(ctx, raceKeys...).Result()
	if err != nil {
		return nil, err
	}

	races := make([]*model.Race, 0, len(values))
	for _, val := range values {
		if val == nil {
			continue // Race may have expired
		}
		var race model.Race
		if err := json.Unmarshal([]byte(val.(string)), &race); err != nil {
			continue // Skip invalid data
		}
		races = append(races, &race)
	}

	sort.Slice(races, func(i, j int) bool { return races[i].ID < races[j].ID })
	return races, nil
}
