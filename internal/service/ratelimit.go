package service

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	loginAttemptLimit  = 5
	loginAttemptWindow = 15 * time.Minute
)

func loginAttemptKey(username string) string {
	return fmt.Sprintf("rate_limit:login:%s", username)
}

// LoginLocked reports whether failed attempts for username have hit
// the ceiling. Without a redis client there is no throttling.
func LoginLocked(ctx context.Context, rdb *redis.Client, username string) (bool, error) {
	if rdb == nil {
		return false, nil
	}

	count, err := rdb.Get(ctx, loginAttemptKey(username)).Int()
	if err == redis.Nil {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("failed to check rate limit in redis: %w", err)
	}

	return count >= loginAttemptLimit, nil
}

// RegisterFailedLogin counts one failed attempt inside the sliding
// window.
func RegisterFailedLogin(ctx context.Context, rdb *redis.Client, username string) error {
	if rdb == nil {
		return nil
	}

	key := loginAttemptKey(username)
	pipe := rdb.TxPipeline()
	pipe.Incr(ctx, key)
	pipe.Expire(ctx, key, loginAttemptWindow)
	_, err := pipe.Exec(ctx)
	return err
}

// ClearFailedLogins resets the counter after a successful login.
func ClearFailedLogins(ctx context.Context, rdb *redis.Client, username string) error {
	if rdb == nil {
		return nil
	}
	_, err := rdb.Del(ctx, loginAttemptKey(username)).Result()
	return err
}
