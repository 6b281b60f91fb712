package events

import (
	"context"
	"encoding/json"
	"errors"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/dmitrymomot/kickstart/pkg/poller"
)

// ListClient is the subset of redis.Cmdable used as a FIFO queue.
type ListClient interface {
	LPopCount(ctx context.Context, key string, count int) *redis.StringSliceCmd
	RPush(ctx context.Context, key string, values ...any) *redis.IntCmd
}

// RedisSource reads events from a Redis list. Producers RPUSH, the source LPOPs.
type RedisSource struct {
	client ListClient
	queue  string
	batch  int
}

var _ poller.Fetcher = (*RedisSource)(nil)

// NewRedisSource creates a source popping up to batch events per fetch from queue.
func NewRedisSource(client ListClient, queue string, batch int) *RedisSource {
	return &RedisSource{client: client, queue: queue, batch: max(batch, 1)}
}

// Fetch pops the next batch. An empty or missing list yields an empty batch.
func (s *RedisSource) Fetch(ctx context.Context) ([]poller.Message, error) {
	values, err := s.client.LPopCount(ctx, s.queue, s.batch).Result()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, errors.Join(ErrFetchFailed, err)
	}

	msgs := make([]poller.Message, 0, len(values))
	for _, v := range values {
		msgs = append(msgs, poller.Message{
			ID:         uuid.NewString(),
			Body:       []byte(v),
			Attributes: map[string]string{"queue": s.queue},
		})
	}
	return msgs, nil
}

// Publish appends ev to the queue.
func (s *RedisSource) Publish(ctx context.Context, ev Event) error {
	body, err := json.Marshal(ev)
	if err != nil {
		return errors.Join(ErrPublishFailed, err)
	}
	if err := s.client.RPush(ctx, s.queue, body).Err(); err != nil {
		return errors.Join(ErrPublishFailed, err)
	}
	return nil
}

// NopSource never has events.
type NopSource struct{}

var _ poller.Fetcher = NopSource{}

func (NopSource) Fetch(context.Context) ([]poller.Message, error) {
	return nil, nil
}
