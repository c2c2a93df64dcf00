// Package views buffers catalog page views and flushes them to the
// owner's menu_views counter in batches.
package views

import (
	"context"
	"fmt"
	"sync"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// Counter accumulates per-business view counts until drained.
type Counter interface {
	Add(ctx context.Context, businessID uuid.UUID, n int64) error
	Drain(ctx context.Context) (map[uuid.UUID]int64, error)
}

type MemoryCounter struct {
	mu     sync.Mutex
	counts map[uuid.UUID]int64
}

func NewMemoryCounter() *MemoryCounter {
	return &MemoryCounter{counts: make(map[uuid.UUID]int64)}
}

func (c *MemoryCounter) Add(_ context.Context, businessID uuid.UUID, n int64) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.counts[businessID] += n
	return nil
}

func (c *MemoryCounter) Drain(_ context.Context) (map[uuid.UUID]int64, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := c.counts
	c.counts = make(map[uuid.UUID]int64)
	return out, nil
}

const pendingKey = "views:pending"

func countKey(id string) string { return "views:" + id }

// RedisCounter keeps one counter per business plus a set of businesses
// with unflushed views.
type RedisCounter struct {
	rdb *redis.Client
}

func NewRedisCounter(rdb *redis.Client) *RedisCounter {
	return &RedisCounter{rdb: rdb}
}

func (c *RedisCounter) Add(ctx context.Context, businessID uuid.UUID, n int64) error {
	id := businessID.String()
	pipe := c.rdb.TxPipeline()
	pipe.IncrBy(ctx, countKey(id), n)
	pipe.SAdd(ctx, pendingKey, id)
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("redis add views: %w", err)
	}
	return nil
}

func (c *RedisCounter) Drain(ctx context.Context) (map[uuid.UUID]int64, error) {
	ids, err := c.rdb.SMembers(ctx, pendingKey).Result()
	if err != nil {
		return nil, fmt.Errorf("redis list pending views: %w", err)
	}
	if len(ids) == 0 {
		return map[uuid.UUID]int64{}, nil
	}

	pipe := c.rdb.TxPipeline()
	cmds := make([]*redis.StringCmd, len(ids))
	for i, id := range ids {
		cmds[i] = pipe.GetDel(ctx, countKey(id))
	}
	members := make([]any, len(ids))
	for i, id := range ids {
		members[i] = id
	}
	pipe.SRem(ctx, pendingKey, members...)
	if _, err := pipe.Exec(ctx); err != nil && err != redis.Nil {
		return nil, fmt.Errorf("redis drain views: %w", err)
	}

	out := make(map[uuid.UUID]int64, len(ids))
	for i, id := range ids {
		n, err := cmds[i].Int64()
		if err != nil || n == 0 {
			continue
		}
		parsed, err := uuid.Parse(id)
		if err != nil {
			continue
		}
		out[parsed] = n
	}
	return out, nil
}
