package sample

import (
	"errors"
	"net/http"

	"github.com/google/uuid"

	"github.com/dmitrymomot/kickstart"
)

// BasePath is where the sample routes are mounted.
const BasePath = "/api/v1/samples"

// Handler serves the sample REST API.
type Handler struct {
	svc *Service
}

// NewHandler creates a sample handler.
func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

// Routes implements kickstart.Handler.
func (h *Handler) Routes(r kickstart.Router) {
	r.Route(BasePath, func(r kickstart.Router) {
		r.POST("/", h.create)
		r.GET("/", h.list)
		r.GET("/search/by-string", h.search)
		r.GET("/{id}", h.get)
		r.PUT("/{id}", h.update)
		r.PATCH("/{id}", h.update)
		r.DELETE("/{id}", h.delete)
	})
}

func (h *Handler) create(c kickstart.Context) error {
	var req CreateRequest
	if err := c.BindJSON(&req); err != nil {
		return err
	}
	s, err := h.svc.Create(c, req)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, s)
}

func (h *Handler) get(c kickstart.Context) error {
	id, err := parseID(c)
	if err != nil {
		return err
	}
	s, err := h.svc.Get(c, id)
	if err != nil {
		return mapError(c, id, err)
	}
	return c.JSON(http.StatusOK, s)
}

func (h *Handler) list(c kickstart.Context) error {
	p, err := pagination(c)
	if err != nil {
		return err
	}
	if p.IncludeInactive, err = kickstart.ParseQuery(c, "include_inactive", false); err != nil {
		return kickstart.ValidationErrors{"include_inactive": "must be a boolean"}
	}
	res, err := h.svc.List(c, p)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, res)
}

func (h *Handler) search(c kickstart.Context) error {
	q := c.Query("q")
	if q == "" {
		return kickstart.ValidationErrors{"q": "is required"}
	}
	p, err := pagination(c)
	if err != nil {
		return err
	}
	items, err := h.svc.Search(c, q, p.Skip, p.Limit)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, items)
}

func (h *Handler) update(c kickstart.Context) error {
	id, err := parseID(c)
	if err != nil {
		return err
	}
	var req UpdateRequest
	if err := c.BindJSON(&req); err != nil {
		return err
	}
	s, err := h.svc.Update(c, id, req)
	if err != nil {
		return mapError(c, id, err)
	}
	return c.JSON(http.StatusOK, s)
}

func (h *Handler) delete(c kickstart.Context) error {
	id, err := parseID(c)
	if err != nil {
		return err
	}
	hard, err := kickstart.ParseQuery(c, "hard_delete", false)
	if err != nil {
		return kickstart.ValidationErrors{"hard_delete": "must be a boolean"}
	}
	res, err := h.svc.Delete(c, id, hard)
	if err != nil {
		return mapError(c, id, err)
	}
	return c.JSON(http.StatusOK, res)
}

func parseID(c kickstart.Context) (uuid.UUID, error) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return uuid.Nil, kickstart.ValidationErrors{"id": "must be a valid UUID"}
	}
	return id, nil
}

func pagination(c kickstart.Context) (ListParams, error) {
	errs := kickstart.ValidationErrors{}
	skip, err := kickstart.ParseQuery(c, "skip", 0)
	if err != nil {
		errs.Add("skip", "must be an integer")
	}
	limit, err := kickstart.ParseQuery(c, "limit", DefaultLimit)
	if err != nil {
		errs.Add("limit", "must be an integer")
	}
	if err := errs.Err(); err != nil {
		return ListParams{}, err
	}
	return ListParams{Skip: skip, Limit: limit}, nil
}

func mapError(c kickstart.Context, id uuid.UUID, err error) error {
	switch {
	case errors.Is(err, ErrNotFound):
		return c.Error(http.StatusNotFound, "Sample entity with ID "+id.String()+" not found", kickstart.WithError(err))
	case errors.Is(err, ErrNoFieldsToUpdate):
		return c.Error(http.StatusBadRequest, "No fields provided for update", kickstart.WithError(err))
	}
	return err
}
