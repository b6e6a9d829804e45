package redisclient

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

var (
	ErrLockNotAcquired = errors.New("slot lock not acquired")
)

// Locker guards slot occupancy critical sections. WithSlotLocks takes
// every slot touched by one logical operation; a reschedule passes
// both the old and the new slot so no other writer can interleave.
type Locker interface {
	WithSlotLocks(ctx context.Context, slotIDs []uuid.UUID, fn func(ctx context.Context) error) error
}

type redisSlotLocker struct {
	client *redis.Client
	ttl    time.Duration
}

// NewRedisSlotLocker creates a locker that uses a per slot Redis key.
func NewRedisSlotLocker(client *redis.Client, ttl time.Duration) Locker {
	return &redisSlotLocker{
		client: client,
		ttl:    ttl,
	}
}

// WithSlotLocks acquires one key per slot. Keys are always taken in
// ascending slot id order so two operations locking the same pair of
// slots cannot deadlock, then all are released when fn returns.
func (l *redisSlotLocker) WithSlotLocks(ctx context.Context, slotIDs []uuid.UUID, fn func(ctx context.Context) error) error {
	ids := dedupeSorted(slotIDs)
	token := uuid.NewString()

	var held []string
	releaseAll := func() {
		for i := len(held) - 1; i >= 0; i-- {
			_ = l.release(ctx, held[i], token)
		}
	}

	for _, id := range ids {
		key := fmt.Sprintf("lock:slot:%s", id.String())

		ok, err := l.client.SetNX(ctx, key, token, l.ttl).Result()
		if err != nil {
			releaseAll()
			return fmt.Errorf("acquire slot lock: %w", err)
		}
		if !ok {
			releaseAll()
			return ErrLockNotAcquired
		}
		held = append(held, key)
	}

	defer releaseAll()

	ctxWithTimeout, cancel := context.WithTimeout(ctx, l.ttl)
	defer cancel()

	return fn(ctxWithTimeout)
}

// LocalLocker serializes slot critical sections with a process-wide
// mutex. It stands in for the Redis locker in tests and single-process
// development runs.
type LocalLocker struct {
	mu sync.Mutex
}

func NewLocalLocker() *LocalLocker {
	return &LocalLocker{}
}

func (l *LocalLocker) WithSlotLocks(ctx context.Context, slotIDs []uuid.UUID, fn func(ctx context.Context) error) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	return fn(ctx)
}

func dedupeSorted(ids []uuid.UUID) []uuid.UUID {
	out := make([]uuid.UUID, 0, len(ids))
	seen := make(map[uuid.UUID]struct{}, len(ids))
	for _, id := range ids {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].String() < out[j].String()
	})
	return out
}

var unlockScript = redis.NewScript(`
local val = redis.call("GET", KEYS[1])
if val == ARGV[1] then
  return redis.call("DEL", KEYS[1])
else
  return 0
end
`)

func (l *redisSlotLocker) release(ctx context.Context, key, token string) error {
	_, err := unlockScript.Run(ctx, l.client, []string{key}, token).Result()
	if err != nil && !errors.Is(err, redis.Nil) {
		return fmt.Errorf("release slot lock: %w", err)
	}
	return nil
}
