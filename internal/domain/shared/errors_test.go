package shared

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestErrorCodes(t *testing.T) {
	t.Run("validation covers invalid input and duplicates", func(t *testing.T) {
		assert.True(t, IsValidation(ErrInvalidInput("bad")))
		assert.True(t, IsValidation(ErrAlreadyExists("user id")))
		assert.False(t, IsValidation(ErrNotFound("user")))
	})

	t.Run("not-found is distinct from validation", func(t *testing.T) {
		err := ErrNotFoundf("no document with id %s", "u1")
		assert.True(t, IsNotFound(err))
		assert.False(t, IsValidation(err))
		assert.False(t, IsStoreError(err))
	})

	t.Run("store errors keep their cause", func(t *testing.T) {
		cause := errors.New("connection refused")
		err := WrapStoreError(cause, "users", "get_all")

		assert.True(t, IsStoreError(err))
		assert.ErrorIs(t, err, cause)
		assert.Contains(t, err.Error(), "users")
	})

	t.Run("plain errors carry no code", func(t *testing.T) {
		err := errors.New("plain")
		assert.False(t, IsValidation(err))
		assert.False(t, IsNotFound(err))
		assert.False(t, IsStoreError(err))
	})
}
