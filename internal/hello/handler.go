// Package hello serves the hello-world smoke endpoint.
package hello

import (
	"net/http"

	"github.com/dmitrymomot/kickstart"
)

// Handler answers GET /api/v1/hello-world.
type Handler struct{}

func NewHandler() *Handler {
	return &Handler{}
}

// Routes implements kickstart.Handler.
func (h *Handler) Routes(r kickstart.Router) {
	r.GET("/api/v1/hello-world", h.hello)
}

func (h *Handler) hello(c kickstart.Context) error {
	return c.JSON(http.StatusOK, map[string]string{"message": "Hello World"})
}
