package middlewares_test

import (
	"bytes"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"sync"

	"github.com/dmitrymomot/kickstart/internal"
	"github.com/dmitrymomot/kickstart/middlewares"
)

type routesFunc func(r internal.Router)

func (f routesFunc) Routes(r internal.Router) { f(r) }

// logBuffer is a concurrency-safe sink for a JSON slog handler.
type logBuffer struct {
	buf bytes.Buffer
	mu  sync.Mutex
}

func (b *logBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *logBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}

func newLogger() (*slog.Logger, *logBuffer) {
	buf := &logBuffer{}
	return slog.New(slog.NewJSONHandler(buf, &slog.HandlerOptions{Level: slog.LevelDebug})), buf
}

// newApp builds an App with the JSON error handler and a single route.
func newApp(log *slog.Logger, mw []internal.Middleware, routes func(r internal.Router), opts ...internal.Option) *internal.App {
	base := []internal.Option{
		internal.WithLogger(log),
		internal.WithMiddleware(mw...),
		internal.WithErrorHandler(middlewares.JSONErrorHandler()),
		internal.WithHandlers(routesFunc(routes)),
	}
	return internal.New(append(base, opts...)...)
}

func do(app *internal.App, req *http.Request) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	app.Router().ServeHTTP(w, req)
	return w
}
