package redis

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/wtppaul/course-marketplace/internal/config"
)

// NewClient connects and pings Redis.
func NewClient(ctx context.Context, cfg *config.Config) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddr(),
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
	})
	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to redis at %s: %w", cfg.RedisAddr(), err)
	}
	return client, nil
}

// releaseScript deletes the key only if we still own it.
var releaseScript = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0
`)

// WebhookLocker serializes concurrent deliveries of the same gateway order
// across service instances. The database upserts stay the source of truth;
// the lock only keeps two deliveries from racing each other.
type WebhookLocker struct {
	client *redis.Client
	prefix string
}

func NewWebhookLocker(client *redis.Client) *WebhookLocker {
	return &WebhookLocker{client: client, prefix: "webhook:lock:"}
}

// Acquire returns a release func when the lock was taken, nil when another
// holder has it.
func (l *WebhookLocker) Acquire(ctx context.Context, key string, ttl time.Duration) (func(context.Context) error, error) {
	token := uuid.NewString()
	fullKey := l.prefix + key

	ok, err := l.client.SetNX(ctx, fullKey, token, ttl).Result()
	if err != nil {
		return nil, fmt.Errorf("acquire %s: %w", fullKey, err)
	}
	if !ok {
		return nil, nil
	}

	release := func(ctx context.Context) error {
		return releaseScript.Run(ctx, l.client, []string{fullKey}, token).Err()
	}
	return release, nil
}
