package redis

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// NewRedisClient creates a Redis client
func NewRedisClient(addr string) *redis.Client {
	return redis.NewClient(&redis.Options{Addr: addr})
}

// CooldownLocker guards triggered-event insertion so that concurrent
// evaluation passes for the same owner cannot both fire inside one
// cooldown window. One lock per (owner, rule, device), expiring with the
// window itself.
type CooldownLocker struct {
	client *redis.Client
}

func NewCooldownLocker(client *redis.Client) *CooldownLocker {
	return &CooldownLocker{client: client}
}

// Acquire takes the pair's cooldown lock for ttl. It returns false when
// another pass already holds it.
func (l *CooldownLocker) Acquire(ctx context.Context, ownerID, ruleID, deviceID string, ttl time.Duration) (bool, error) {
	key := fmt.Sprintf("cooldown:%s:%s:%s", ownerID, ruleID, deviceID)
	return l.client.SetNX(ctx, key, 1, ttl).Result()
}
