package middlewares_test

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/kickstart/internal"
	"github.com/dmitrymomot/kickstart/middlewares"
	"github.com/dmitrymomot/kickstart/pkg/logger"
)

func decodeError(t *testing.T, w *httptest.ResponseRecorder) middlewares.ErrorBody {
	t.Helper()
	var resp middlewares.ErrorResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	return resp.Error
}

func failingRoutes(r internal.Router) {
	r.GET("/validation", func(c internal.Context) error {
		ve := internal.ValidationErrors{}
		ve.Add("limit", "must be between 1 and 1000")
		return fmt.Errorf("list samples: %w", ve)
	})
	r.GET("/http", func(c internal.Context) error {
		return c.Error(http.StatusConflict, "sample already exists", internal.WithDetail("duplicate id"))
	})
	r.GET("/internal", func(c internal.Context) error {
		return errors.New("pq: connection refused")
	})
	r.GET("/deadline", func(c internal.Context) error {
		return fmt.Errorf("query: %w", context.DeadlineExceeded)
	})
	r.GET("/panic", func(c internal.Context) error {
		panic("nil map write")
	})
}

func TestJSONErrorHandler(t *testing.T) {
	t.Parallel()

	mw := []internal.Middleware{middlewares.RequestID(middlewares.WithRequestIDGenerator(func() string { return "rid" })), middlewares.Recover()}
	app := newApp(logger.NewNope(), mw, failingRoutes)

	tests := []struct {
		name       string
		path       string
		wantStatus int
		want       middlewares.ErrorBody
	}{
		{
			name:       "validation errors",
			path:       "/validation",
			wantStatus: http.StatusUnprocessableEntity,
			want: middlewares.ErrorBody{
				Message:   "Validation failed",
				Fields:    map[string]string{"limit": "must be between 1 and 1000"},
				RequestID: "rid",
			},
		},
		{
			name:       "http error",
			path:       "/http",
			wantStatus: http.StatusConflict,
			want:       middlewares.ErrorBody{Message: "sample already exists", Detail: "duplicate id", RequestID: "rid"},
		},
		{
			name:       "internal error hides detail",
			path:       "/internal",
			wantStatus: http.StatusInternalServerError,
			want:       middlewares.ErrorBody{Message: "Internal server error", Detail: "An internal error occurred", RequestID: "rid"},
		},
		{
			name:       "deadline",
			path:       "/deadline",
			wantStatus: http.StatusGatewayTimeout,
			want:       middlewares.ErrorBody{Message: "Request timeout", RequestID: "rid"},
		},
		{
			name:       "panic",
			path:       "/panic",
			wantStatus: http.StatusInternalServerError,
			want:       middlewares.ErrorBody{Message: "Internal server error", Detail: "An internal error occurred", RequestID: "rid"},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			w := do(app, httptest.NewRequest(http.MethodGet, tt.path, nil))
			require.Equal(t, tt.wantStatus, w.Code)
			assert.Equal(t, tt.want, decodeError(t, w))
		})
	}
}

func TestJSONErrorHandler_ExposeDetail(t *testing.T) {
	t.Parallel()

	app := internal.New(
		internal.WithErrorHandler(middlewares.JSONErrorHandler(middlewares.WithErrorDetail(true))),
		internal.WithHandlers(routesFunc(failingRoutes)),
	)

	w := do(app, httptest.NewRequest(http.MethodGet, "/internal", nil))
	require.Equal(t, http.StatusInternalServerError, w.Code)
	body := decodeError(t, w)
	assert.Equal(t, "pq: connection refused", body.Detail)
	assert.Empty(t, body.RequestID)
}

func TestJSONErrorHandler_LogsPanicStack(t *testing.T) {
	t.Parallel()

	log, buf := newLogger()
	app := newApp(log, []internal.Middleware{middlewares.Recover()}, failingRoutes)

	w := do(app, httptest.NewRequest(http.MethodGet, "/panic", nil))
	require.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Contains(t, buf.String(), `"msg":"unhandled error"`)
	assert.Contains(t, buf.String(), `"stack":"goroutine`)
}

func TestNotFoundHandlers(t *testing.T) {
	t.Parallel()

	app := newApp(logger.NewNope(), nil, func(r internal.Router) {
		r.GET("/only-get", func(c internal.Context) error { return c.NoContent(http.StatusNoContent) })
	},
		internal.WithNotFoundHandler(middlewares.NotFound),
		internal.WithMethodNotAllowedHandler(middlewares.MethodNotAllowed),
	)

	w := do(app, httptest.NewRequest(http.MethodGet, "/nope", nil))
	require.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, "Not found", decodeError(t, w).Message)

	w = do(app, httptest.NewRequest(http.MethodPost, "/only-get", nil))
	require.Equal(t, http.StatusMethodNotAllowed, w.Code)
}

func TestTimeout(t *testing.T) {
	t.Parallel()

	app := newApp(logger.NewNope(), nil, func(r internal.Router) {
		r.GET("/slow", func(c internal.Context) error {
			select {
			case <-c.Done():
				return c.Err()
			case <-time.After(2 * time.Second):
				return c.NoContent(http.StatusNoContent)
			}
		})
		r.GET("/deadline", func(c internal.Context) error {
			_, ok := c.Deadline()
			if !ok {
				return errors.New("no deadline")
			}
			return c.NoContent(http.StatusNoContent)
		})
	}, internal.WithHTTPMiddleware(middlewares.Timeout(20*time.Millisecond)))

	start := time.Now()
	w := do(app, httptest.NewRequest(http.MethodGet, "/slow", nil))
	assert.Equal(t, http.StatusGatewayTimeout, w.Code)
	assert.Less(t, time.Since(start), time.Second)

	w = do(app, httptest.NewRequest(http.MethodGet, "/deadline", nil))
	assert.Equal(t, http.StatusNoContent, w.Code)
}
