// Package redis opens go-redis clients with pooling defaults and startup retries.
//
// [Open] validates the URL, applies options, and pings the server until it
// answers or the retry budget is spent. Waits between attempts start at the
// configured interval and double up to a ceiling.
//
// Options:
//   - WithPoolSize(n) - maximum pooled connections (default: 10)
//   - WithMinIdleConns(n) - idle connections kept open (default: 2)
//   - WithConnLifetime(maxIdle, maxActive) - connection recycling (default: 10m, 30m)
//   - WithRetry(attempts, interval, maxInterval) - startup retries (default: 3, 1s, 30s)
//   - WithTimeouts(dial, read, write) - network timeouts (default: 5s, 3s, 3s)
//
// # Usage
//
//	client, err := redis.Open(ctx, os.Getenv("REDIS_URL"),
//		redis.WithPoolSize(20),
//	)
//	if err != nil {
//		return err
//	}
//
//	checks := health.Checks{"redis": redis.Healthcheck(client)}
//	coord := lifecycle.New(lifecycle.WithResource("redis", redis.Shutdown(client)))
//
// # Error Handling
//
//   - [ErrEmptyConnectionURL] - URL is empty
//   - [ErrFailedToParseURL] - scheme is not redis:// or rediss://, or the URL is malformed
//   - [ErrInvalidRetry] - retry interval is not positive
//   - [ErrConnectionFailed] - server unreachable after all attempts
//   - [ErrHealthcheckFailed] - PING failed
package redis
