package auth

import (
	"context"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
)

// LoginLockout tracks failed login attempts in Redis. Counters live
// under a per-email key with the lockout window as TTL; reaching the
// threshold locks the account until the key expires. Tracking is
// server-side on purpose, client-side lockout is not a security
// control.
type LoginLockout struct {
	client    *redis.Client
	threshold int
	window    time.Duration
}

// NewLoginLockout builds the tracker. A nil client disables lockout.
func NewLoginLockout(client *redis.Client, threshold int, window time.Duration) *LoginLockout {
	if threshold <= 0 {
		threshold = 5
	}
	if window <= 0 {
		window = 15 * time.Minute
	}
	return &LoginLockout{client: client, threshold: threshold, window: window}
}

func (l *LoginLockout) key(email string) string {
	return "login_attempts:" + strings.ToLower(strings.TrimSpace(email))
}

// IsLocked reports whether the account has hit the attempt threshold.
// Redis being unreachable fails open; login still requires the
// password.
func (l *LoginLockout) IsLocked(ctx context.Context, email string) bool {
	if l == nil || l.client == nil {
		return false
	}
	count, err := l.client.Get(ctx, l.key(email)).Int()
	if err != nil {
		return false
	}
	return count >= l.threshold
}

// RecordFailure bumps the counter and reports whether this failure
// tripped the lock.
func (l *LoginLockout) RecordFailure(ctx context.Context, email string) bool {
	if l == nil || l.client == nil {
		return false
	}
	key := l.key(email)
	count, err := l.client.Incr(ctx, key).Result()
	if err != nil {
		return false
	}
	if count == 1 {
		l.client.Expire(ctx, key, l.window)
	}
	return count >= int64(l.threshold)
}

// Reset clears the counter after a successful login.
func (l *LoginLockout) Reset(ctx context.Context, email string) {
	if l == nil || l.client == nil {
		return
	}
	l.client.Del(ctx, l.key(email))
}
