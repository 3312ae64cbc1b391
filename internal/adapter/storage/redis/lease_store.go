package redis

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	goredis "github.com/redis/go-redis/v9"
)

// releaseScript deletes the lease only while it still belongs to the caller.
var releaseScript = goredis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0
`)

// LeaseStore implements ports.LeaseStore with Redis SET NX. Each store instance has
// its own owner token, so an expired lease re-acquired elsewhere is never released here.
type LeaseStore struct {
	client goredis.UniversalClient
	prefix string
	owner  string
}

// NewLeaseStore creates a new Redis-backed lease store.
func NewLeaseStore(client goredis.UniversalClient) *LeaseStore {
	return &LeaseStore{
		client: client,
		prefix: "lease:",
		owner:  uuid.NewString(),
	}
}

// Acquire takes the lease for ttl. Returns false if someone else holds it.
func (s *LeaseStore) Acquire(ctx context.Context, key string, ttl time.Duration) (bool, error) {
	result, err := s.client.SetArgs(ctx, s.prefix+key, s.owner, goredis.SetArgs{
		Mode: "NX",
		TTL:  ttl,
	}).Result()
	if err != nil {
		if errors.Is(err, goredis.Nil) {
			return false, nil
		}
		return false, fmt.Errorf("redis lease acquire: %w", err)
	}
	return result == "OK", nil
}

// Release drops the lease if this store still owns it.
func (s *LeaseStore) Release(ctx context.Context, key string) error {
	if err := releaseScript.Run(ctx, s.client, []string{s.prefix + key}, s.owner).Err(); err != nil {
		return fmt.Errorf("redis lease release: %w", err)
	}
	return nil
}
