package middlewares_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/kickstart/internal"
	"github.com/dmitrymomot/kickstart/middlewares"
	"github.com/dmitrymomot/kickstart/pkg/logger"
)

func TestRequestID(t *testing.T) {
	t.Parallel()

	echo := func(r internal.Router) {
		r.GET("/", func(c internal.Context) error {
			return c.String(http.StatusOK, middlewares.GetRequestID(c)+"|"+middlewares.GetCorrelationID(c))
		})
	}

	t.Run("generates both ids when missing", func(t *testing.T) {
		t.Parallel()

		app := newApp(logger.NewNope(), []internal.Middleware{middlewares.RequestID()}, echo)
		w := do(app, httptest.NewRequest(http.MethodGet, "/", nil))

		reqID := w.Header().Get(middlewares.HeaderRequestID)
		corrID := w.Header().Get(middlewares.HeaderCorrelationID)
		require.NoError(t, uuid.Validate(reqID))
		require.NoError(t, uuid.Validate(corrID))
		assert.NotEqual(t, reqID, corrID)
		assert.Equal(t, reqID+"|"+corrID, w.Body.String())
	})

	t.Run("keeps incoming ids", func(t *testing.T) {
		t.Parallel()

		app := newApp(logger.NewNope(), []internal.Middleware{middlewares.RequestID()}, echo)
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set(middlewares.HeaderRequestID, "req-123")
		req.Header.Set(middlewares.HeaderCorrelationID, "corr-456")
		w := do(app, req)

		assert.Equal(t, "req-123", w.Header().Get(middlewares.HeaderRequestID))
		assert.Equal(t, "corr-456", w.Header().Get(middlewares.HeaderCorrelationID))
		assert.Equal(t, "req-123|corr-456", w.Body.String())
	})

	t.Run("only the missing id is generated", func(t *testing.T) {
		t.Parallel()

		app := newApp(logger.NewNope(), []internal.Middleware{
			middlewares.RequestID(middlewares.WithRequestIDGenerator(func() string { return "generated" })),
		}, echo)
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set(middlewares.HeaderCorrelationID, "corr-1")
		w := do(app, req)

		assert.Equal(t, "generated|corr-1", w.Body.String())
	})
}

func TestIDExtractors(t *testing.T) {
	t.Parallel()

	ctx := context.WithValue(context.Background(), internal.RequestIDKey{}, "req-1")

	attr, ok := middlewares.RequestIDExtractor()(ctx)
	require.True(t, ok)
	assert.Equal(t, "request_id", attr.Key)
	assert.Equal(t, "req-1", attr.Value.String())

	_, ok = middlewares.CorrelationIDExtractor()(ctx)
	assert.False(t, ok)

	_, ok = middlewares.RequestIDExtractor()(context.WithValue(context.Background(), internal.RequestIDKey{}, 42))
	assert.False(t, ok)
}

func TestRequestLogger(t *testing.T) {
	t.Parallel()

	log, buf := newLogger()
	app := newApp(log, []internal.Middleware{middlewares.RequestLogger()}, func(r internal.Router) {
		r.GET("/api/v1/hello-world", func(c internal.Context) error {
			return c.JSON(http.StatusOK, map[string]string{"message": "Hello World"})
		})
		r.GET("/missing", func(c internal.Context) error {
			return c.Error(http.StatusNotFound, "sample not found")
		})
	})

	req := httptest.NewRequest(http.MethodGet, "/api/v1/hello-world", nil)
	req.Header.Set("X-Forwarded-For", "203.0.113.7, 10.0.0.1")
	req.Header.Set(middlewares.HeaderRequestID, "req-log")
	w := do(app, req)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "req-log", w.Header().Get(middlewares.HeaderRequestID))
	assert.NotEmpty(t, w.Header().Get(middlewares.HeaderCorrelationID))

	out := buf.String()
	assert.Contains(t, out, `"msg":"incoming request"`)
	assert.Contains(t, out, `"msg":"outgoing response"`)
	assert.Contains(t, out, `"client_ip":"203.0.113.7"`)
	assert.Contains(t, out, `"request_id":"req-log"`)
	assert.Contains(t, out, `"status":200`)
	assert.Contains(t, out, `"duration_ms"`)

	w = do(app, httptest.NewRequest(http.MethodGet, "/missing", nil))
	require.Equal(t, http.StatusNotFound, w.Code)

	var outgoing map[string]any
	for _, line := range strings.Split(strings.TrimSpace(buf.String()), "\n") {
		var entry map[string]any
		require.NoError(t, json.Unmarshal([]byte(line), &entry))
		if entry["msg"] == "outgoing response" && entry["path"] == "/missing" {
			outgoing = entry
		}
	}
	require.NotNil(t, outgoing)
	assert.InDelta(t, float64(http.StatusNotFound), outgoing["status"], 0)
}
