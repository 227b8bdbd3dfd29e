package redisstore

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	goSession "github.com/MrEthical07/goSession"
	"github.com/MrEthical07/goSession/session"
)

// ErrRedisUnavailable is an exported constant or variable used by the session manager.
var ErrRedisUnavailable = errors.New("redis unavailable")

// ErrNotFound is returned by Fetch when the authoritative store has no
// record for the session id.
var ErrNotFound = errors.New("session not in backing store")

// Store is a Redis-backed [goSession.Database].
//
//	Performance: Fetch is 1 Redis GET; Cleanup is 1 Redis DEL.
type Store struct {
	redis  redis.UniversalClient
	prefix string
}

var _ goSession.Database = (*Store)(nil)

// New creates a [Store] backed by the given Redis client. prefix sets the
// key namespace.
func New(client redis.UniversalClient, prefix string) *Store {
	if prefix == "" {
		prefix = "gs"
	}
	return &Store{
		redis:  client,
		prefix: prefix,
	}
}

func (s *Store) key(sessionID string) string {
	return s.prefix + ":" + sessionID
}

// Save persists a record and its version with the given TTL. Hosts use it
// to seed or write through to the authoritative store; the manager itself
// only ever fetches and cleans up.
func (s *Store) Save(ctx context.Context, rec session.Record, version uint64, ttl time.Duration) error {
	data, err := session.EncodeEntry(rec, version)
	if err != nil {
		return err
	}

	if err := s.redis.Set(ctx, s.key(rec.SessionID), data, ttl).Err(); err != nil {
		return fmt.Errorf("%w: %v", ErrRedisUnavailable, err)
	}
	return nil
}

// Fetch retrieves the record and source version for a session id.
func (s *Store) Fetch(ctx context.Context, sessionID string) (goSession.FetchResult, error) {
	data, err := s.redis.Get(ctx, s.key(sessionID)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return goSession.FetchResult{}, ErrNotFound
		}
		return goSession.FetchResult{}, fmt.Errorf("%w: %v", ErrRedisUnavailable, err)
	}

	rec, version, err := session.DecodeEntry(data)
	if err != nil {
		return goSession.FetchResult{}, err
	}
	rec.SessionID = sessionID

	return goSession.FetchResult{Record: rec, Version: version}, nil
}

// Cleanup deletes the record. A key that is already gone is a success:
// cleanup must be idempotent so retried sweeps converge.
func (s *Store) Cleanup(ctx context.Context, sessionID string) error {
	if err := s.redis.Del(ctx, s.key(sessionID)).Err(); err != nil {
		return fmt.Errorf("%w: %v", ErrRedisUnavailable, err)
	}
	return nil
}

// Ping returns a point-in-time Redis availability check and latency.
func (s *Store) Ping(ctx context.Context) (time.Duration, error) {
	start := time.Now()
	if err := s.redis.Ping(ctx).Err(); err != nil {
		return time.Since(start), fmt.Errorf("%w: %v", ErrRedisUnavailable, err)
	}
	return time.Since(start), nil
}
