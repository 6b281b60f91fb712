package internal

// Handler declares routes on a router.
//
// Example:
//
//	type SampleHandler struct {
//	    svc *sample.Service
//	}
//
//	func (h *SampleHandler) Routes(r kickstart.Router) {
//	    r.GET("/{id}", h.get)
//	    r.POST("/", h.create)
//	}
type Handler interface {
	Routes(r Router)
}

// HandlerFunc is the signature for route handlers.
// It receives a Context and returns an error.
// Returning a non-nil error triggers the error handling middleware.
type HandlerFunc func(c Context) error

// Middleware wraps a HandlerFunc to add cross-cutting concerns.
// Middleware can inspect/modify the request, short-circuit processing,
// or wrap the response.
//
// Example:
//
//	func RequireJSON(next kickstart.HandlerFunc) kickstart.HandlerFunc {
//	    return func(c kickstart.Context) error {
//	        if c.Header("Content-Type") != "application/json" {
//	            return c.Error(http.StatusUnsupportedMediaType, "expected JSON body")
//	        }
//	        return next(c)
//	    }
//	}
type Middleware func(next HandlerFunc) HandlerFunc

// ErrorHandler handles errors returned from handlers.
type ErrorHandler func(Context, error) error
