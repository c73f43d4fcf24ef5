package locking

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	redis "github.com/redis/go-redis/v9"
)

const leaseReleaseScript = `
if redis.call("GET", KEYS[1]) == ARGV[1] then
  return redis.call("DEL", KEYS[1])
end
return 0
`

// Lease is a short-lived distributed lock for multi-instance deployments.
// A nil Lease is valid and always grants, so single-instance setups run
// without Redis.
type Lease struct {
	client *redis.Client
	script *redis.Script
}

func NewLease(client *redis.Client) *Lease {
	if client == nil {
		return nil
	}
	return &Lease{
		client: client,
		script: redis.NewScript(leaseReleaseScript),
	}
}

func (l *Lease) TryAcquire(ctx context.Context, key string, ttl time.Duration) (string, bool, error) {
	if l == nil || l.client == nil {
		return "", true, nil
	}
	if key == "" {
		return "", false, errors.New("lease key is empty")
	}
	if ttl <= 0 {
		return "", false, errors.New("lease ttl must be positive")
	}

	token := uuid.NewString()
	ok, err := l.client.SetNX(ctx, key, token, ttl).Result()
	if err != nil {
		return "", false, err
	}
	return token, ok, nil
}

func (l *Lease) Release(ctx context.Context, key, token string) error {
	if l == nil || l.client == nil {
		return nil
	}
	if key == "" || token == "" {
		return nil
	}
	return l.script.Run(ctx, l.client, []string{key}, token).Err()
}
