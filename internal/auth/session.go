package auth

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	sessionKeyPrefix  = "session:"
	defaultSessionTTL = 24 * time.Hour
)

// Sessions is the session lifecycle used by the middleware and the auth
// handlers. The Redis-backed Store is the production implementation.
type Sessions interface {
	Create(ctx context.Context, userID int64) (string, error)
	GetUserID(ctx context.Context, id string) (int64, bool)
	Delete(ctx context.Context, id string) error
}

// Store manages sessions in Redis.
type Store struct {
	rdb *redis.Client
	ttl time.Duration
}

// NewStore returns a new session store.
func NewStore(rdb *redis.Client, ttl time.Duration) *Store {
	if ttl <= 0 {
		ttl = defaultSessionTTL
	}
	return &Store{rdb: rdb, ttl: ttl}
}

// Create stores a new session for userID and returns its ID.
func (s *Store) Create(ctx context.Context, userID int64) (string, error) {
	id, err := newSessionID()
	if err != nil {
		return "", err
	}
	key := sessionKeyPrefix + id
	if err := s.rdb.Set(ctx, key, strconv.FormatInt(userID, 10), s.ttl).Err(); err != nil {
		return "", err
	}
	return id, nil
}

// GetUserID returns the user ID behind a session, false if missing or expired.
func (s *Store) GetUserID(ctx context.Context, id string) (int64, bool) {
	v, err := s.rdb.Get(ctx, sessionKeyPrefix+id).Result()
	if err != nil {
		return 0, false
	}
	userID, err := strconv.ParseInt(v, 10, 64)
	if err != nil || userID <= 0 {
		return 0, false
	}
	return userID, true
}

// Delete removes a session by ID.
func (s *Store) Delete(ctx context.Context, id string) error {
	return s.rdb.Del(ctx, sessionKeyPrefix+id).Err()
}

func newSessionID() (string, error) {
	b := make([]byte, 16)
	if _, err := rand.Read(b); err != nil {
		return "", fmt.Errorf("rand: %w", err)
	}
	return hex.EncodeToString(b), nil
}
