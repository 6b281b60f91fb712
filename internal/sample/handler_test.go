package sample_test

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/kickstart"
	"github.com/dmitrymomot/kickstart/internal/sample"
	"github.com/dmitrymomot/kickstart/middlewares"
)

const requiredUUID = "0b7e3c52-5a3b-4b1e-9d47-5f1c2a8e9d10"

type testServer struct {
	repo *memRepo
	app  *kickstart.App
}

func newServer(t *testing.T) *testServer {
	t.Helper()

	repo := newMemRepo()
	svc := sample.NewService(repo)
	app := kickstart.New(
		kickstart.WithMiddleware(middlewares.RequestID(), middlewares.Recover()),
		kickstart.WithErrorHandler(middlewares.JSONErrorHandler()),
		kickstart.WithHandlers(sample.NewHandler(svc)),
	)
	return &testServer{repo: repo, app: app}
}

func (s *testServer) do(method, target, body string) *httptest.ResponseRecorder {
	var r *http.Request
	if body == "" {
		r = httptest.NewRequest(method, target, nil)
	} else {
		r = httptest.NewRequest(method, target, strings.NewReader(body))
		r.Header.Set("Content-Type", "application/json")
	}
	w := httptest.NewRecorder()
	s.app.Router().ServeHTTP(w, r)
	return w
}

func (s *testServer) create(t *testing.T, name string) sample.Sample {
	t.Helper()

	body, err := json.Marshal(map[string]any{
		"required_uuid":  requiredUUID,
		"string_field":   name,
		"required_jsonb": map[string]any{"source": "test"},
	})
	require.NoError(t, err)
	w := s.do(http.MethodPost, sample.BasePath, string(body))
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	return decode[sample.Sample](t, w)
}

func decode[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.NewDecoder(bytes.NewReader(w.Body.Bytes())).Decode(&v))
	return v
}

func TestHandler_Create(t *testing.T) {
	t.Parallel()

	t.Run("applies defaults", func(t *testing.T) {
		t.Parallel()

		s := newServer(t)
		got := s.create(t, "first")
		assert.NotEqual(t, uuid.Nil, got.ID)
		assert.Equal(t, uuid.MustParse(requiredUUID), got.RequiredUUID)
		assert.Equal(t, int64(1), got.BigInt)
		assert.True(t, got.IsActive)
		assert.False(t, got.IsDeleted)
		assert.Nil(t, got.OptionalUUID)
		assert.Nil(t, got.OptionalJSONB)
		assert.Equal(t, map[string]any{"source": "test"}, got.RequiredJSONB)
		assert.False(t, got.CreatedOn.IsZero())
	})

	t.Run("validation failure", func(t *testing.T) {
		t.Parallel()

		s := newServer(t)
		w := s.do(http.MethodPost, sample.BasePath, `{"string_field":"","big_int":-1}`)
		require.Equal(t, http.StatusUnprocessableEntity, w.Code)

		body := decode[middlewares.ErrorResponse](t, w)
		assert.Equal(t, map[string]string{
			"required_uuid":  "is required",
			"string_field":   "is required",
			"required_jsonb": "is required",
			"big_int":        "must be greater than or equal to 0",
		}, body.Error.Fields)
		assert.NotEmpty(t, body.Error.RequestID)
	})

	t.Run("string field too long", func(t *testing.T) {
		t.Parallel()

		s := newServer(t)
		payload := `{"required_uuid":"` + requiredUUID + `","required_jsonb":{},"string_field":"` + strings.Repeat("я", 256) + `"}`
		w := s.do(http.MethodPost, sample.BasePath, payload)
		require.Equal(t, http.StatusUnprocessableEntity, w.Code)
		assert.Contains(t, w.Body.String(), "must be at most 255 characters")
	})

	t.Run("empty body", func(t *testing.T) {
		t.Parallel()

		w := newServer(t).do(http.MethodPost, sample.BasePath, "")
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("malformed uuid", func(t *testing.T) {
		t.Parallel()

		w := newServer(t).do(http.MethodPost, sample.BasePath, `{"required_uuid":"nope","string_field":"x","required_jsonb":{}}`)
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})
}

func TestHandler_Get(t *testing.T) {
	t.Parallel()

	s := newServer(t)
	created := s.create(t, "findable")

	w := s.do(http.MethodGet, sample.BasePath+"/"+created.ID.String(), "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, created.ID, decode[sample.Sample](t, w).ID)

	missing := uuid.New()
	w = s.do(http.MethodGet, sample.BasePath+"/"+missing.String(), "")
	require.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, "Sample entity with ID "+missing.String()+" not found", decode[middlewares.ErrorResponse](t, w).Error.Message)

	w = s.do(http.MethodGet, sample.BasePath+"/not-a-uuid", "")
	require.Equal(t, http.StatusUnprocessableEntity, w.Code)
	assert.Equal(t, "must be a valid UUID", decode[middlewares.ErrorResponse](t, w).Error.Fields["id"])
}

func TestHandler_List(t *testing.T) {
	t.Parallel()

	s := newServer(t)
	first := s.create(t, "one")
	s.create(t, "two")
	third := s.create(t, "three")

	inactive := false
	_, err := s.repo.Update(t.Context(), first.ID, sample.UpdateRequest{IsActive: &inactive})
	require.NoError(t, err)

	w := s.do(http.MethodGet, sample.BasePath, "")
	require.Equal(t, http.StatusOK, w.Code)
	res := decode[sample.ListResult](t, w)
	assert.Equal(t, int64(2), res.Total)
	assert.Equal(t, 0, res.Skip)
	assert.Equal(t, sample.DefaultLimit, res.Limit)
	require.Len(t, res.Items, 2)
	assert.Equal(t, third.ID, res.Items[0].ID, "newest first")

	w = s.do(http.MethodGet, sample.BasePath+"?include_inactive=true&skip=1&limit=1", "")
	require.Equal(t, http.StatusOK, w.Code)
	res = decode[sample.ListResult](t, w)
	assert.Equal(t, int64(3), res.Total)
	assert.Len(t, res.Items, 1)
	assert.Equal(t, 1, res.Skip)
	assert.Equal(t, 1, res.Limit)

	tests := []struct {
		query string
		field string
	}{
		{"?limit=0", "limit"},
		{"?limit=1001", "limit"},
		{"?limit=ten", "limit"},
		{"?skip=-1", "skip"},
		{"?include_inactive=maybe", "include_inactive"},
	}
	for _, tt := range tests {
		w := s.do(http.MethodGet, sample.BasePath+tt.query, "")
		require.Equal(t, http.StatusUnprocessableEntity, w.Code, tt.query)
		assert.Contains(t, decode[middlewares.ErrorResponse](t, w).Error.Fields, tt.field, tt.query)
	}
}

func TestHandler_Search(t *testing.T) {
	t.Parallel()

	s := newServer(t)
	s.create(t, "Blue Whale")
	s.create(t, "red fox")
	s.create(t, "blueberry")

	w := s.do(http.MethodGet, sample.BasePath+"/search/by-string?q=BLUE", "")
	require.Equal(t, http.StatusOK, w.Code)
	items := decode[[]sample.Sample](t, w)
	require.Len(t, items, 2)
	assert.Equal(t, "blueberry", items[0].StringField)

	w = s.do(http.MethodGet, sample.BasePath+"/search/by-string?q=blue&limit=1", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Len(t, decode[[]sample.Sample](t, w), 1)

	w = s.do(http.MethodGet, sample.BasePath+"/search/by-string", "")
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
}

func TestHandler_Update(t *testing.T) {
	t.Parallel()

	s := newServer(t)
	created := s.create(t, "before")
	path := sample.BasePath + "/" + created.ID.String()

	for _, method := range []string{http.MethodPut, http.MethodPatch} {
		w := s.do(method, path, `{"string_field":"after-`+method+`","big_int":42,"id":"`+uuid.NewString()+`"}`)
		require.Equal(t, http.StatusOK, w.Code, method)
		got := decode[sample.Sample](t, w)
		assert.Equal(t, created.ID, got.ID, "id is immutable")
		assert.Equal(t, "after-"+method, got.StringField)
		assert.Equal(t, int64(42), got.BigInt)
		assert.Equal(t, created.RequiredUUID, got.RequiredUUID)
		assert.True(t, got.ModifiedOn.After(created.ModifiedOn))
	}

	w := s.do(http.MethodPatch, path, `{}`)
	require.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "No fields provided for update", decode[middlewares.ErrorResponse](t, w).Error.Message)

	w = s.do(http.MethodPatch, path, `{"optional_text":null}`)
	assert.Equal(t, http.StatusBadRequest, w.Code, "null fields count as absent")

	w = s.do(http.MethodPatch, path, `{"big_int":-5}`)
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)

	w = s.do(http.MethodPatch, sample.BasePath+"/"+uuid.NewString(), `{"big_int":5}`)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestHandler_Delete(t *testing.T) {
	t.Parallel()

	s := newServer(t)

	soft := s.create(t, "soft")
	w := s.do(http.MethodDelete, sample.BasePath+"/"+soft.ID.String(), "")
	require.Equal(t, http.StatusOK, w.Code)
	res := decode[sample.DeleteResult](t, w)
	assert.True(t, res.Success)
	assert.Equal(t, soft.ID, res.ID)
	assert.Equal(t, "Sample entity soft deleted successfully", res.Message)

	row, ok := s.repo.row(soft.ID)
	require.True(t, ok, "soft delete keeps the row")
	assert.True(t, row.IsDeleted)
	assert.False(t, row.IsActive)

	w = s.do(http.MethodGet, sample.BasePath+"/"+soft.ID.String(), "")
	assert.Equal(t, http.StatusNotFound, w.Code)
	w = s.do(http.MethodDelete, sample.BasePath+"/"+soft.ID.String(), "")
	assert.Equal(t, http.StatusNotFound, w.Code)

	hard := s.create(t, "hard")
	w = s.do(http.MethodDelete, sample.BasePath+"/"+hard.ID.String()+"?hard_delete=true", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "Sample entity permanently deleted successfully", decode[sample.DeleteResult](t, w).Message)
	_, ok = s.repo.row(hard.ID)
	assert.False(t, ok)

	w = s.do(http.MethodDelete, sample.BasePath+"/"+uuid.NewString()+"?hard_delete=yes-please", "")
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
}
