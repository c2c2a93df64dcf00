package cart

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// DefaultTTL is how long an untouched cart survives.
const DefaultTTL = 24 * time.Hour

// maxUpdateAttempts bounds optimistic retries in RedisStore.Update.
const maxUpdateAttempts = 10

var (
	ErrNotFound = errors.New("cart not found")
	ErrConflict = errors.New("cart is being modified, try again")
)

// Store persists carts between requests.
type Store interface {
	Get(ctx context.Context, id uuid.UUID) (*Cart, error)
	Save(ctx context.Context, c *Cart) error
	Delete(ctx context.Context, id uuid.UUID) error
	// Update applies fn to the stored cart and saves the result as one
	// atomic step. An error from fn aborts without saving.
	Update(ctx context.Context, id uuid.UUID, fn func(*Cart) error) (*Cart, error)
}

// MemoryStore is a process-local Store used when Redis is not configured.
type MemoryStore struct {
	mu    sync.Mutex
	carts map[uuid.UUID]memoryEntry
	ttl   time.Duration
	now   func() time.Time
}

type memoryEntry struct {
	data      []byte
	expiresAt time.Time
}

func NewMemoryStore(ttl time.Duration) *MemoryStore {
	return &MemoryStore{
		carts: make(map[uuid.UUID]memoryEntry),
		ttl:   ttl,
		now:   time.Now,
	}
}

func (s *MemoryStore) Get(_ context.Context, id uuid.UUID) (*Cart, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.load(id)
}

// load must be called with mu held.
func (s *MemoryStore) load(id uuid.UUID) (*Cart, error) {
	e, ok := s.carts[id]
	if !ok {
		return nil, ErrNotFound
	}
	if s.now().After(e.expiresAt) {
		delete(s.carts, id)
		return nil, ErrNotFound
	}

	// Stored as JSON so callers never share slices with the store.
	var c Cart
	if err := json.Unmarshal(e.data, &c); err != nil {
		return nil, fmt.Errorf("decode cart: %w", err)
	}
	return &c, nil
}

func (s *MemoryStore) Save(_ context.Context, c *Cart) error {
	data, err := json.Marshal(c)
	if err != nil {
		return fmt.Errorf("encode cart: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.carts[c.ID] = memoryEntry{data: data, expiresAt: s.now().Add(s.ttl)}
	return nil
}

func (s *MemoryStore) Update(_ context.Context, id uuid.UUID, fn func(*Cart) error) (*Cart, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	c, err := s.load(id)
	if err != nil {
		return nil, err
	}
	if err := fn(c); err != nil {
		return nil, err
	}
	data, err := json.Marshal(c)
	if err != nil {
		return nil, fmt.Errorf("encode cart: %w", err)
	}
	s.carts[id] = memoryEntry{data: data, expiresAt: s.now().Add(s.ttl)}
	return c, nil
}

func (s *MemoryStore) Delete(_ context.Context, id uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.carts, id)
	return nil
}

// RedisStore keeps each cart as a JSON value under cart:{id}.
type RedisStore struct {
	rdb *redis.Client
	ttl time.Duration
}

func NewRedisStore(rdb *redis.Client, ttl time.Duration) *RedisStore {
	return &RedisStore{rdb: rdb, ttl: ttl}
}

func redisKey(id uuid.UUID) string {
	return "cart:" + id.String()
}

func (s *RedisStore) Get(ctx context.Context, id uuid.UUID) (*Cart, error) {
	return getCart(ctx, s.rdb, id)
}

// getter is the read side shared by *redis.Client and *redis.Tx.
type getter interface {
	Get(ctx context.Context, key string) *redis.StringCmd
}

func getCart(ctx context.Context, rdb getter, id uuid.UUID) (*Cart, error) {
	data, err := rdb.Get(ctx, redisKey(id)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("redis get cart: %w", err)
	}

	var c Cart
	if err := json.Unmarshal(data, &c); err != nil {
		return nil, fmt.Errorf("decode cart: %w", err)
	}
	return &c, nil
}

func (s *RedisStore) Save(ctx context.Context, c *Cart) error {
	data, err := json.Marshal(c)
	if err != nil {
		return fmt.Errorf("encode cart: %w", err)
	}
	if err := s.rdb.Set(ctx, redisKey(c.ID), data, s.ttl).Err(); err != nil {
		return fmt.Errorf("redis set cart: %w", err)
	}
	return nil
}

func (s *RedisStore) Delete(ctx context.Context, id uuid.UUID) error {
	if err := s.rdb.Del(ctx, redisKey(id)).Err(); err != nil {
		return fmt.Errorf("redis del cart: %w", err)
	}
	return nil
}

// Update runs fn under WATCH on the cart key and retries when another
// writer commits first. ErrConflict is returned once the retries run out.
func (s *RedisStore) Update(ctx context.Context, id uuid.UUID, fn func(*Cart) error) (*Cart, error) {
	key := redisKey(id)
	for attempt := 0; attempt < maxUpdateAttempts; attempt++ {
		var updated *Cart
		err := s.rdb.Watch(ctx, func(tx *redis.Tx) error {
			c, err := getCart(ctx, tx, id)
			if err != nil {
				return err
			}
			if err := fn(c); err != nil {
				return err
			}
			data, err := json.Marshal(c)
			if err != nil {
				return fmt.Errorf("encode cart: %w", err)
			}
			_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
				pipe.Set(ctx, key, data, s.ttl)
				return nil
			})
			if err == nil {
				updated = c
			}
			return err
		}, key)
		if errors.Is(err, redis.TxFailedErr) {
			continue
		}
		if err != nil {
			return nil, err
		}
		return updated, nil
	}
	return nil, ErrConflict
}
