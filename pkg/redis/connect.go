package redis

import (
	"context"
	"errors"
	"strings"

	cbackoff "github.com/cenkalti/backoff/v5"
	"github.com/redis/go-redis/v9"

	"github.com/dmitrymomot/kickstart/pkg/backoff"
)

// Open creates a Redis client and verifies it with PING, retrying with
// exponential backoff. Supports both redis:// and rediss:// (TLS) URL schemes.
//
// Example:
//
//	client, err := redis.Open(ctx, "redis://localhost:6379/0",
//	    redis.WithPoolSize(20),
//	    redis.WithRetry(5, time.Second, 10*time.Second),
//	)
func Open(ctx context.Context, url string, opts ...Option) (redis.UniversalClient, error) {
	if url == "" {
		return nil, ErrEmptyConnectionURL
	}

	if !strings.HasPrefix(url, "redis://") && !strings.HasPrefix(url, "rediss://") {
		return nil, ErrFailedToParseURL
	}

	o := defaultOptions()
	for _, opt := range opts {
		opt(o)
	}

	redisOpts, err := redis.ParseURL(url)
	if err != nil {
		return nil, errors.Join(ErrFailedToParseURL, err)
	}

	redisOpts.PoolSize = o.poolSize
	redisOpts.MinIdleConns = o.minIdleConns
	redisOpts.ConnMaxIdleTime = o.maxIdleTime
	redisOpts.ConnMaxLifetime = o.maxActiveTime
	redisOpts.ReadTimeout = o.readTimeout
	redisOpts.WriteTimeout = o.writeTimeout
	redisOpts.DialTimeout = o.dialTimeout

	policy, err := backoff.New(o.retryInterval, max(o.retryMaxInterval, o.retryInterval))
	if err != nil {
		return nil, errors.Join(ErrInvalidRetry, err)
	}

	return connect(ctx, redisOpts, policy, o.retryAttempts)
}

func connect(ctx context.Context, opts *redis.Options, policy backoff.Policy, attempts int) (redis.UniversalClient, error) {
	client, err := cbackoff.Retry(ctx, func() (redis.UniversalClient, error) {
		client := redis.NewClient(opts)
		if err := client.Ping(ctx).Err(); err != nil {
			_ = client.Close()
			return nil, err
		}
		return client, nil
	},
		cbackoff.WithBackOff(policy.NewDelay()),
		cbackoff.WithMaxTries(uint(max(attempts, 1))),
	)
	if err != nil {
		return nil, errors.Join(ErrConnectionFailed, err)
	}
	return client, nil
}
