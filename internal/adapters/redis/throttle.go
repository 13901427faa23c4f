package redisad

import (
	"context"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"

	"travel_guide/internal/adapters/observability"
)

// Throttle counts failed logins per login name in fixed windows. The window
// starts at the first failure and is not extended by later ones.
type Throttle struct {
	c      *redis.Client
	max    int64
	window time.Duration
}

func New(addr, pass string, db int, maxAttempts int, window time.Duration) *Throttle {
	return NewWithClient(redis.NewClient(&redis.Options{Addr: addr, Password: pass, DB: db}), maxAttempts, window)
}

func NewWithClient(c *redis.Client, maxAttempts int, window time.Duration) *Throttle {
	if maxAttempts <= 0 {
		maxAttempts = 5
	}
	if window <= 0 {
		window = 15 * time.Minute
	}
	return &Throttle{c: c, max: int64(maxAttempts), window: window}
}

func key(login string) string { return "login_fail:" + strings.ToLower(login) }

func (t *Throttle) Blocked(ctx context.Context, login string) (bool, error) {
	n, err := t.c.Get(ctx, key(login)).Int64()
	if err == redis.Nil {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	if n >= t.max {
		observability.ObserveThrottle("block")
		return true, nil
	}
	return false, nil
}

// Failed records one failure and returns the count inside the current window.
func (t *Throttle) Failed(ctx context.Context, login string) (int64, error) {
	k := key(login)
	pipe := t.c.TxPipeline()
	pipe.SetNX(ctx, k, 0, t.window) // opens the window; INCR keeps the TTL
	incr := pipe.Incr(ctx, k)
	if _, err := pipe.Exec(ctx); err != nil {
		return 0, err
	}
	observability.ObserveThrottle("fail")
	return incr.Val(), nil
}

func (t *Throttle) Reset(ctx context.Context, login string) error {
	observability.ObserveThrottle("reset")
	return t.c.Del(ctx, key(login)).Err()
}

func (t *Throttle) Ping(ctx context.Context) error { return t.c.Ping(ctx).Err() }

func (t *Throttle) Close() error { return t.c.Close() }
