//go:build integration

package events_test

import (
	"context"
	"os"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/kickstart/internal/events"
	"github.com/dmitrymomot/kickstart/pkg/redis"
)

func TestRedisSource_Integration(t *testing.T) {
	url := os.Getenv("REDIS_URL")
	if url == "" {
		url = "redis://localhost:6379/0"
	}

	client, err := redis.Open(t.Context(), url)
	require.NoError(t, err, "failed to connect to Redis")

	queue := "test-sample-events-" + uuid.NewString()
	t.Cleanup(func() {
		_ = client.Del(context.Background(), queue).Err()
		_ = client.Close()
	})

	src := events.NewRedisSource(client, queue, 10)
	id := uuid.New()
	require.NoError(t, src.Publish(t.Context(), events.SampleDeactivated(id)))

	batch, err := src.Fetch(t.Context())
	require.NoError(t, err)
	require.Len(t, batch, 1)
	assert.Contains(t, string(batch[0].Body), id.String())

	batch, err = src.Fetch(t.Context())
	require.NoError(t, err)
	assert.Empty(t, batch)
}
