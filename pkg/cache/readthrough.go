package cache

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"
)

type FetchFunc[T any] func(ctx context.Context) (T, error)

const (
	defaultFetchTimeout = 15 * time.Second
	defaultSetTimeout   = 5 * time.Second

	maxJitter = 15 * time.Second
)

// addTTLJitter spreads expirations by up to ±15s, never below half the TTL.
func addTTLJitter(ttl time.Duration) time.Duration {
	if ttl <= 0 {
		return ttl
	}
	spread := min(maxJitter, ttl/2)
	if spread <= 0 {
		return ttl
	}
	return ttl + time.Duration(rand.Int63n(int64(2*spread)+1)) - spread
}

func store[T any](c Store, key string, value T, ttl time.Duration, logger *zap.Logger, reason string) {
	ctx, cancel := context.WithTimeout(context.Background(), defaultSetTimeout)
	defer cancel()

	ttl = addTTLJitter(ttl)
	if err := c.Set(ctx, key, value, ttl); err != nil {
		logger.Warn("failed to set cache", zap.String("key", key), zap.String("reason", reason), zap.Error(err))
		return
	}
	logger.Debug("cache populated", zap.String("key", key), zap.String("reason", reason), zap.Duration("ttl", ttl))
}

// refreshAhead recomputes a key that was just served from cache so the next
// reader sees fresh data without paying for the fetch.
func refreshAhead[T any](c Store, sf *singleflight.Group, key string, ttl time.Duration, logger *zap.Logger, fn FetchFunc[T]) {
	go func() {
		time.Sleep(time.Duration(rand.Intn(1000)) * time.Millisecond)

		_, _, _ = sf.Do(key+":refresh", func() (any, error) {
			ctx, cancel := context.WithTimeout(context.Background(), defaultFetchTimeout)
			defer cancel()

			value, err := fn(ctx)
			if err != nil {
				logger.Warn("background refresh failed", zap.String("key", key), zap.Error(err))
				return nil, err
			}
			store(c, key, value, ttl, logger, "refresh")
			return value, nil
		})
	}()
}

// FindAndCache implements read-through caching with singleflight and
// refresh-ahead. Cache errors other than ErrMiss are logged and treated as a
// miss; fetch errors are returned and never cached.
func FindAndCache[T any](
	ctx context.Context,
	c Store,
	sf *singleflight.Group,
	key string,
	ttl time.Duration,
	logger *zap.Logger,
	fn FetchFunc[T],
) (T, error) {
	var zero T
	if logger == nil {
		logger = zap.NewNop()
	}
	if c == nil {
		c = Nop{}
	}

	var cached T
	err := c.Get(ctx, key, &cached)
	switch {
	case err == nil:
		logger.Debug("cache hit", zap.String("key", key))
		refreshAhead(c, sf, key, ttl, logger, fn)
		return cached, nil
	case errors.Is(err, ErrMiss):
		logger.Debug("cache miss", zap.String("key", key))
	default:
		logger.Warn("cache get error (treating as miss)", zap.String("key", key), zap.Error(err))
	}

	v, err, shared := sf.Do(key, func() (any, error) {
		value, err := fn(ctx)
		if err != nil {
			return nil, err
		}
		go store(c, key, value, ttl, logger, "miss")
		return value, nil
	})
	if err != nil {
		logger.Error("fetch failed", zap.String("key", key), zap.Error(err))
		return zero, err
	}

	value, ok := v.(T)
	if !ok {
		logger.Error("singleflight type mismatch", zap.String("key", key))
		return zero, fmt.Errorf("type mismatch for key %q", key)
	}
	if shared {
		logger.Debug("singleflight shared result", zap.String("key", key))
	}
	return value, nil
}
