package session

import (
	"context"
	"strconv"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	// SessionPrefix is the Redis key prefix for session hashes.
	SessionPrefix = "chat:"

	// ActiveTTL is the time-to-live applied when an active session is
	// saved. Sessions outliving it are repaired from the engine on the
	// next save.
	ActiveTTL = 2 * time.Hour
)

// Store persists Session records. Implementations are treated as
// eventually consistent: a write failure after an in-memory commit is
// surfaced as a warning, never used to undo the match.
type Store interface {
	// Save writes a session record.
	Save(ctx context.Context, s *Session) error

	// Load retrieves a session record. Returns (nil, nil) if not found.
	Load(ctx context.Context, sessionID string) (*Session, error)

	// Expire schedules a session record for deletion after ttl.
	Expire(ctx context.Context, sessionID string, ttl time.Duration) error
}

// RedisStore persists sessions as Redis hashes with a TTL.
type RedisStore struct {
	rdb *redis.Client
}

// NewRedisStore creates a session store backed by the given Redis client.
func NewRedisStore(rdb *redis.Client) *RedisStore {
	return &RedisStore{rdb: rdb}
}

// Save writes the session hash and applies the active TTL.
func (s *RedisStore) Save(ctx context.Context, sess *Session) error {
	key := SessionPrefix + sess.ID

	pipe := s.rdb.Pipeline()
	pipe.HSet(ctx, key, map[string]interface{}{
		"participant_a": sess.ParticipantA,
		"participant_b": sess.ParticipantB,
		"interests":     strings.Join(sess.Interests, ","),
		"started_at":    sess.StartedAt,
		"ended_at":      sess.EndedAt,
		"status":        sess.Status,
	})
	pipe.Expire(ctx, key, ActiveTTL)
	_, err := pipe.Exec(ctx)
	return err
}

// Load retrieves a session. Returns nil if not found.
func (s *RedisStore) Load(ctx context.Context, sessionID string) (*Session, error) {
	key := SessionPrefix + sessionID
	result, err := s.rdb.HGetAll(ctx, key).Result()
	if err != nil {
		return nil, err
	}
	if len(result) == 0 {
		return nil, nil
	}

	startedAt, _ := strconv.ParseInt(result["started_at"], 10, 64)
	endedAt, _ := strconv.ParseInt(result["ended_at"], 10, 64)

	var interests []string
	if result["interests"] != "" {
		interests = strings.Split(result["interests"], ",")
	}

	return &Session{
		ID:           sessionID,
		ParticipantA: result["participant_a"],
		ParticipantB: result["participant_b"],
		Interests:    interests,
		StartedAt:    startedAt,
		EndedAt:      endedAt,
		Status:       result["status"],
	}, nil
}

// Expire shortens the session's TTL so it ages out of Redis.
func (s *RedisStore) Expire(ctx context.Context, sessionID string, ttl time.Duration) error {
	return s.rdb.Expire(ctx, SessionPrefix+sessionID, ttl).Err()
}
