package ratelimiter

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// Scopes used as key prefixes.
const (
	ScopeLogin       = "login"
	ScopeCertificate = "certificate"
)

func key(scope, subject string) string {
	return fmt.Sprintf("rate_limit:%s:%s", scope, subject)
}

// TryLock sets a short-lived marker with SET NX. The returned release func
// removes it again. A nil client always grants the lock.
func TryLock(ctx context.Context, rdb *redis.Client, scope, subject string, ttl time.Duration) (func(), bool, error) {
	if rdb == nil {
		return func() {}, true, nil
	}

	k := key(scope, subject)
	wasSet, err := rdb.SetNX(ctx, k, "locked", ttl).Result()
	if err != nil {
		return nil, false, fmt.Errorf("failed to acquire lock in redis: %w", err)
	}
	if !wasSet {
		return nil, false, nil
	}

	release := func() {
		rdb.Del(context.Background(), k)
	}
	return release, true, nil
}

// Hit increments the attempt counter for subject and starts the window on the
// first attempt. It returns the number of attempts inside the current window.
func Hit(ctx context.Context, rdb *redis.Client, scope, subject string, window time.Duration) (int64, error) {
	if rdb == nil {
		return 0, nil
	}

	k := key(scope, subject)
	pipe := rdb.TxPipeline()
	incr := pipe.Incr(ctx, k)
	pipe.ExpireNX(ctx, k, window)
	if _, err := pipe.Exec(ctx); err != nil {
		return 0, fmt.Errorf("failed to count attempt in redis: %w", err)
	}
	return incr.Val(), nil
}

// Attempts returns the attempts recorded for subject in the current window.
func Attempts(ctx context.Context, rdb *redis.Client, scope, subject string) (int64, error) {
	if rdb == nil {
		return 0, nil
	}
	n, err := rdb.Get(ctx, key(scope, subject)).Int64()
	if err == redis.Nil {
		return 0, nil
	}
	return n, err
}

func TTL(ctx context.Context, rdb *redis.Client, scope, subject string) (time.Duration, error) {
	if rdb == nil {
		return 0, nil
	}
	return rdb.TTL(ctx, key(scope, subject)).Result()
}

func Clear(ctx context.Context, rdb *redis.Client, scope, subject string) error {
	if rdb == nil {
		return nil
	}
	return rdb.Del(ctx, key(scope, subject)).Err()
}
