package redis

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	redislib "github.com/redis/go-redis/v9"

	"github.com/commonfund/ledgerd/domain"
)

// activitySnapshot is the cached view of a member's standing.
type activitySnapshot struct {
	Handle       string    `json:"handle"`
	Active       bool      `json:"active"`
	PenaltyCents int64     `json:"penalty_cents"`
	CheckedAt    time.Time `json:"checked_at"`
}

// ErrActivityMiss signals the snapshot is absent or expired.
var ErrActivityMiss = domain.NewError(domain.ErrCodeNotFound, "activity snapshot not cached")

// ActivityCache is a short-TTL read-through cache for member activity.
// The registry invalidates it on every member mutation, so commitment
// checks that follow an accrual tick always hit the primary store.
type ActivityCache struct {
	client *redislib.Client
	prefix string
	ttl    time.Duration
}

// NewActivityCache creates a Redis-backed member activity cache.
func NewActivityCache(client *redislib.Client, ttl time.Duration) *ActivityCache {
	if ttl <= 0 {
		ttl = 30 * time.Second
	}
	return &ActivityCache{
		client: client,
		prefix: "activity:",
		ttl:    ttl,
	}
}

func (c *ActivityCache) Get(ctx context.Context, handle string) (bool, error) {
	result, err := c.client.Get(ctx, c.key(handle)).Result()
	if err != nil {
		if err == redislib.Nil {
			return false, ErrActivityMiss
		}
		return false, err
	}

	var snapshot activitySnapshot
	if err := json.Unmarshal([]byte(result), &snapshot); err != nil {
		return false, err
	}
	return snapshot.Active, nil
}

func (c *ActivityCache) Save(ctx context.Context, handle string, active bool, penaltyCents int64) error {
	if handle == "" {
		return domain.ErrInvalidPayload
	}
	payload, err := json.Marshal(activitySnapshot{
		Handle:       handle,
		Active:       active,
		PenaltyCents: penaltyCents,
		CheckedAt:    time.Now(),
	})
	if err != nil {
		return err
	}
	return c.client.Set(ctx, c.key(handle), payload, c.ttl).Err()
}

// Invalidate drops the snapshot so the next read goes to the primary store.
func (c *ActivityCache) Invalidate(ctx context.Context, handle string) error {
	return c.client.Del(ctx, c.key(handle)).Err()
}

func (c *ActivityCache) key(handle string) string {
	return fmt.Sprintf("%s%s", c.prefix, handle)
}
