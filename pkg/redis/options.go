package redis

import "time"

// Option configures a Redis connection.
type Option func(*options)

type options struct {
	poolSize         int
	minIdleConns     int
	retryAttempts    int
	maxIdleTime      time.Duration
	maxActiveTime    time.Duration
	retryInterval    time.Duration
	retryMaxInterval time.Duration
	readTimeout      time.Duration
	writeTimeout     time.Duration
	dialTimeout      time.Duration
}

func defaultOptions() *options {
	return &options{
		poolSize:         10,
		minIdleConns:     2,
		maxIdleTime:      10 * time.Minute,
		maxActiveTime:    30 * time.Minute,
		retryAttempts:    3,
		retryInterval:    time.Second,
		retryMaxInterval: 30 * time.Second,
		readTimeout:      3 * time.Second,
		writeTimeout:     3 * time.Second,
		dialTimeout:      5 * time.Second,
	}
}

// WithPoolSize sets the maximum number of connections in the pool.
// Default: 10
func WithPoolSize(n int) Option {
	return func(o *options) {
		o.poolSize = n
	}
}

// WithMinIdleConns sets the minimum number of idle connections kept open.
// Default: 2
func WithMinIdleConns(n int) Option {
	return func(o *options) {
		o.minIdleConns = n
	}
}

// WithConnLifetime sets how long a connection may stay idle and how long it may live.
// Default: 10 minutes idle, 30 minutes total
func WithConnLifetime(maxIdle, maxActive time.Duration) Option {
	return func(o *options) {
		o.maxIdleTime = maxIdle
		o.maxActiveTime = maxActive
	}
}

// WithRetry configures startup retries. The wait starts at interval and
// doubles per attempt up to maxInterval.
// Default: 3 attempts, 1s doubling up to 30s
func WithRetry(attempts int, interval, maxInterval time.Duration) Option {
	return func(o *options) {
		o.retryAttempts = attempts
		o.retryInterval = interval
		o.retryMaxInterval = maxInterval
	}
}

// WithTimeouts sets the dial, read and write timeouts.
// Default: 5s dial, 3s read and write
func WithTimeouts(dial, read, write time.Duration) Option {
	return func(o *options) {
		o.dialTimeout = dial
		o.readTimeout = read
		o.writeTimeout = write
	}
}
