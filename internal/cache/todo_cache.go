package cache

import (
	"context"
	"encoding/json"
	"strconv"
	"time"

	dom "todoapp/internal/domain"

	"github.com/redis/go-redis/v9"
)

const (
	keyCurrent   = "todo:current:"
	keyCompleted = "todo:completed:"
)

// TodoCache caches the per-user current and completed lists in Redis.
// Keys are partitioned by user ID; a write by one user never touches
// another user's entries.
type TodoCache struct {
	rdb *redis.Client
	ttl time.Duration
}

// NewTodoCache returns a new TodoCache.
func NewTodoCache(rdb *redis.Client, ttl time.Duration) *TodoCache {
	return &TodoCache{rdb: rdb, ttl: ttl}
}

// GetCurrent returns the cached current list or nil on miss.
func (c *TodoCache) GetCurrent(ctx context.Context, userID int64) ([]dom.Todo, error) {
	return c.get(ctx, keyCurrent+strconv.FormatInt(userID, 10))
}

// SetCurrent stores the current list.
func (c *TodoCache) SetCurrent(ctx context.Context, userID int64, list []dom.Todo) error {
	return c.set(ctx, keyCurrent+strconv.FormatInt(userID, 10), list)
}

// GetCompleted returns the cached completed list or nil on miss.
func (c *TodoCache) GetCompleted(ctx context.Context, userID int64) ([]dom.Todo, error) {
	return c.get(ctx, keyCompleted+strconv.FormatInt(userID, 10))
}

// SetCompleted stores the completed list.
func (c *TodoCache) SetCompleted(ctx context.Context, userID int64, list []dom.Todo) error {
	return c.set(ctx, keyCompleted+strconv.FormatInt(userID, 10), list)
}

// Invalidate drops both lists for one user (cache invalidation on write).
func (c *TodoCache) Invalidate(ctx context.Context, userID int64) error {
	uid := strconv.FormatInt(userID, 10)
	return c.rdb.Del(ctx, keyCurrent+uid, keyCompleted+uid).Err()
}

func (c *TodoCache) get(ctx context.Context, key string) ([]dom.Todo, error) {
	b, err := c.rdb.Get(ctx, key).Bytes()
	if err == redis.Nil {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	var list []dom.Todo
	if err := json.Unmarshal(b, &list); err != nil {
		return nil, err
	}
	return list, nil
}

func (c *TodoCache) set(ctx context.Context, key string, list []dom.Todo) error {
	b, err := json.Marshal(list)
	if err != nil {
		return err
	}
	return c.rdb.Set(ctx, key, b, c.ttl).Err()
}
