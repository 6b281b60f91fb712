package sample_test

import (
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/kickstart"
	"github.com/dmitrymomot/kickstart/internal/sample"
)

func validCreate(name string) sample.CreateRequest {
	ru := uuid.MustParse(requiredUUID)
	return sample.CreateRequest{
		RequiredUUID:  &ru,
		StringField:   name,
		RequiredJSONB: map[string]any{},
	}
}

func TestService(t *testing.T) {
	t.Parallel()

	t.Run("create uses the id generator", func(t *testing.T) {
		t.Parallel()

		id := uuid.MustParse("11111111-2222-4333-8444-555555555555")
		svc := sample.NewService(newMemRepo(), sample.WithIDGenerator(func() uuid.UUID { return id }))

		big := int64(0)
		req := validCreate("zero")
		req.BigInt = &big
		got, err := svc.Create(t.Context(), req)
		require.NoError(t, err)
		assert.Equal(t, id, got.ID)
		assert.Equal(t, int64(0), got.BigInt, "explicit zero is kept")
	})

	t.Run("create rejects invalid input", func(t *testing.T) {
		t.Parallel()

		svc := sample.NewService(newMemRepo())
		_, err := svc.Create(t.Context(), sample.CreateRequest{})
		var ve kickstart.ValidationErrors
		require.ErrorAs(t, err, &ve)
		assert.True(t, ve.Has("required_uuid"))
	})

	t.Run("repository errors propagate", func(t *testing.T) {
		t.Parallel()

		repo := newMemRepo()
		repo.err = errors.New("connection reset")
		svc := sample.NewService(repo)
		_, err := svc.Create(t.Context(), validCreate("x"))
		require.ErrorIs(t, err, repo.err)
	})

	t.Run("deactivate and count active", func(t *testing.T) {
		t.Parallel()

		svc := sample.NewService(newMemRepo())
		a, err := svc.Create(t.Context(), validCreate("a"))
		require.NoError(t, err)
		_, err = svc.Create(t.Context(), validCreate("b"))
		require.NoError(t, err)

		n, err := svc.CountActive(t.Context())
		require.NoError(t, err)
		assert.Equal(t, int64(2), n)

		require.NoError(t, svc.Deactivate(t.Context(), a.ID))
		n, err = svc.CountActive(t.Context())
		require.NoError(t, err)
		assert.Equal(t, int64(1), n)

		_, err = svc.Get(t.Context(), a.ID)
		require.ErrorIs(t, err, sample.ErrNotFound)
		require.ErrorIs(t, svc.Deactivate(t.Context(), a.ID), sample.ErrNotFound)
	})

	t.Run("empty update", func(t *testing.T) {
		t.Parallel()

		svc := sample.NewService(newMemRepo())
		_, err := svc.Update(t.Context(), uuid.New(), sample.UpdateRequest{})
		require.ErrorIs(t, err, sample.ErrNoFieldsToUpdate)
	})
}
