package app

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCleanup(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	log := slog.New(slog.NewJSONHandler(&buf, nil))

	var closed []string
	step := func(name string, err error) func(context.Context) error {
		return func(context.Context) error {
			closed = append(closed, name)
			return err
		}
	}

	var c cleanup
	c.add("telemetry", step("telemetry", nil))
	c.add("postgres", step("postgres", errors.New("pool busy")))
	c.add("redis", step("redis", nil))

	c.run(context.Background(), log)
	assert.Equal(t, []string{"redis", "postgres", "telemetry"}, closed, "every resource closes, newest first")
	assert.Contains(t, buf.String(), `"resource":"postgres"`)

	c.run(context.Background(), log)
	assert.Len(t, closed, 3, "a second run is a no-op")
}
