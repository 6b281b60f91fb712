// Package middlewares provides HTTP middleware for kickstart applications.
//
// # Request IDs and Logging
//
// RequestID assigns a request id and a correlation id to each request,
// keeping incoming X-Request-ID and X-Correlation-ID headers and generating
// UUIDs for missing ones. Both are stored in the context and echoed as
// response headers. RequestLogger does the same and logs an "incoming
// request" and an "outgoing response" line per request.
//
// Pair them with the logger extractors so every log line carries the ids:
//
//	log, shutdown := logger.New(cfg.Log,
//	    middlewares.RequestIDExtractor(),
//	    middlewares.CorrelationIDExtractor(),
//	)
//
// # Errors
//
// JSONErrorHandler renders handler errors as
//
//	{"error": {"message": "...", "detail": "...", "request_id": "..."}}
//
// ValidationErrors map to 422 with a "fields" object, HTTPError keeps its
// status, deadline errors map to 504, and everything else is a 500 whose
// detail is hidden unless WithErrorDetail(true) is set.
//
// Recover turns panics into *PanicError values, which the error handler
// logs with their stack and renders as 500.
//
// # Timeout
//
// Timeout is net/http middleware that puts a deadline on the request
// context. Register it with WithHTTPMiddleware so it wraps everything.
//
// # CORS
//
// CORS handles preflight requests and adds CORS headers to responses.
//
//	middlewares.CORS(
//	    middlewares.WithAllowOrigins(cfg.CORSAllowedOrigins...),
//	    middlewares.WithAllowCredentials(),
//	)
//
// # Recommended Middleware Order
//
//	kickstart.WithHTTPMiddleware(middlewares.Timeout(30*time.Second)),
//	kickstart.WithMiddleware(
//	    middlewares.RequestLogger(), // ids first, so every later log line has them
//	    middlewares.CORS(),
//	    middlewares.Recover(),
//	),
//	kickstart.WithErrorHandler(middlewares.JSONErrorHandler()),
package middlewares
