package middlewares

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/dmitrymomot/kickstart/internal"
)

const (
	msgInternal       = "Internal server error"
	msgInternalDetail = "An internal error occurred"
	msgValidation     = "Validation failed"
	msgTimeout        = "Request timeout"
)

// ErrorBody is the "error" object of every JSON error response.
type ErrorBody struct {
	Fields    map[string]string `json:"fields,omitempty"`
	Message   string            `json:"message"`
	Detail    string            `json:"detail,omitempty"`
	Code      string            `json:"code,omitempty"`
	RequestID string            `json:"request_id,omitempty"`
}

// ErrorResponse wraps ErrorBody as {"error": {...}}.
type ErrorResponse struct {
	Error ErrorBody `json:"error"`
}

type errorHandlerConfig struct {
	exposeDetail bool
}

// ErrorHandlerOption configures JSONErrorHandler.
type ErrorHandlerOption func(*errorHandlerConfig)

// WithErrorDetail controls whether unexpected errors expose err.Error() as
// "detail". Enable it only for local development.
func WithErrorDetail(expose bool) ErrorHandlerOption {
	return func(cfg *errorHandlerConfig) {
		cfg.exposeDetail = expose
	}
}

// JSONErrorHandler returns an ErrorHandler that renders errors as JSON.
//
//   - ValidationErrors: 422 with a "fields" object
//   - HTTPError: its status code, message and detail
//   - context.DeadlineExceeded: 504
//   - anything else, including recovered panics: 500 with a generic message
//
// Every response carries the request id when one is set.
func JSONErrorHandler(opts ...ErrorHandlerOption) internal.ErrorHandler {
	cfg := &errorHandlerConfig{}
	for _, opt := range opts {
		opt(cfg)
	}

	return func(c internal.Context, err error) error {
		status, body := classify(err, cfg)
		body.RequestID = GetRequestID(c)

		attrs := []any{
			slog.Int("status", status),
			slog.String("path", c.Request().URL.Path),
			slog.String("request_id", body.RequestID),
			slog.String("correlation_id", GetCorrelationID(c)),
			slog.Any("error", err),
		}
		switch {
		case status >= http.StatusInternalServerError:
			if pe, ok := AsPanicError(err); ok && pe.Stack != nil {
				attrs = append(attrs, slog.String("stack", string(pe.Stack)))
			}
			c.LogError("unhandled error", attrs...)
		default:
			c.LogWarn("request failed", attrs...)
		}

		return c.JSON(status, ErrorResponse{Error: body})
	}
}

func classify(err error, cfg *errorHandlerConfig) (int, ErrorBody) {
	var ve internal.ValidationErrors
	if errors.As(err, &ve) {
		return http.StatusUnprocessableEntity, ErrorBody{Message: msgValidation, Fields: ve}
	}

	if he := internal.AsHTTPError(err); he != nil {
		code := he.Code
		if code == 0 {
			code = http.StatusInternalServerError
		}
		msg := he.Message
		if msg == "" {
			msg = http.StatusText(code)
		}
		return code, ErrorBody{Message: msg, Detail: he.Detail, Code: he.ErrorCode}
	}

	if errors.Is(err, context.DeadlineExceeded) {
		return http.StatusGatewayTimeout, ErrorBody{Message: msgTimeout}
	}

	detail := msgInternalDetail
	if cfg.exposeDetail {
		detail = err.Error()
	}
	return http.StatusInternalServerError, ErrorBody{Message: msgInternal, Detail: detail}
}

// NotFound is a HandlerFunc for unmatched routes, for use with WithNotFoundHandler.
func NotFound(c internal.Context) error {
	return c.Error(http.StatusNotFound, "Not found")
}

// MethodNotAllowed is a HandlerFunc for WithMethodNotAllowedHandler.
func MethodNotAllowed(c internal.Context) error {
	return c.Error(http.StatusMethodNotAllowed, "Method not allowed")
}
