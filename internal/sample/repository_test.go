package sample

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUpdateAssignments(t *testing.T) {
	t.Parallel()

	t.Run("empty request", func(t *testing.T) {
		t.Parallel()

		set, args := updateAssignments(UpdateRequest{})
		assert.Empty(t, set)
		assert.Empty(t, args)
	})

	t.Run("placeholders follow arg order", func(t *testing.T) {
		t.Parallel()

		ru := uuid.MustParse("7f3c1d7e-8a51-4c3e-9f0e-2b1a4d5c6e7f")
		name := "renamed"
		big := int64(0)
		active := false
		set, args := updateAssignments(UpdateRequest{
			RequiredUUID:  &ru,
			StringField:   &name,
			RequiredJSONB: map[string]any{"k": "v"},
			BigInt:        &big,
			IsActive:      &active,
		})

		assert.Equal(t, []string{
			"required_uuid = $1",
			"string_field = $2",
			"required_jsonb = $3",
			"big_int = $4",
			"is_active = $5",
		}, set)
		require.Len(t, args, 5)
		assert.Equal(t, ru, args[0])
		assert.Equal(t, "renamed", args[1])
		assert.Equal(t, int64(0), args[3])
		assert.Equal(t, false, args[4])
	})
}

func TestDecodeJSON(t *testing.T) {
	t.Parallel()

	m, err := decodeJSON(nil)
	require.NoError(t, err)
	assert.Nil(t, m)

	m, err = decodeJSON([]byte(`{"a":1}`))
	require.NoError(t, err)
	assert.Equal(t, map[string]any{"a": float64(1)}, m)

	_, err = decodeJSON([]byte(`[1,2]`))
	require.ErrorIs(t, err, ErrInvalidJSONColumn)
}

func TestEscapeLike(t *testing.T) {
	t.Parallel()

	assert.Equal(t, `50\% off\_now \\o/`, escapeLike(`50% off_now \o/`))
	assert.Equal(t, "plain", escapeLike("plain"))
	assert.Nil(t, jsonArg(nil))
	assert.NotNil(t, jsonArg(map[string]any{}))
}
