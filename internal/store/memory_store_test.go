package store

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/finbook-app/finbook/internal/domain/shared"
)

func TestMemoryStore_GetAll(t *testing.T) {
	ctx := context.Background()

	t.Run("should return empty slice for empty collection", func(t *testing.T) {
		s := NewMemoryStore()

		docs, err := s.GetAll(ctx, Users)

		require.NoError(t, err)
		assert.NotNil(t, docs)
		assert.Empty(t, docs)
	})

	t.Run("should return every inserted document", func(t *testing.T) {
		s := NewMemoryStore()

		_, err := s.Add(ctx, Users, Document{"id": "u1", "email": "a@x.com"})
		require.NoError(t, err)
		_, err = s.Add(ctx, Users, Document{"id": "u2", "email": "b@x.com"})
		require.NoError(t, err)

		docs, err := s.GetAll(ctx, Users)

		require.NoError(t, err)
		assert.Len(t, docs, 2)
	})

	t.Run("should reject unknown collection", func(t *testing.T) {
		s := NewMemoryStore()

		_, err := s.GetAll(ctx, Collection("accounts"))

		require.Error(t, err)
		assert.True(t, shared.IsValidation(err))
	})
}

func TestMemoryStore_AddAndGetByID(t *testing.T) {
	ctx := context.Background()

	t.Run("should round-trip an inserted document by its id field", func(t *testing.T) {
		s := NewMemoryStore()

		doc := Document{"id": "u1", "email": "a@x.com", "balance": float64(100)}
		result, err := s.Add(ctx, Users, doc)
		require.NoError(t, err)
		assert.NotEmpty(t, result.ID)
		// Store identity is not the application id.
		assert.NotEqual(t, "u1", result.ID)

		got, err := s.GetByID(ctx, Users, "u1")
		require.NoError(t, err)
		require.NotNil(t, got)
		assert.Equal(t, doc, got)
	})

	t.Run("should return nil for an absent id", func(t *testing.T) {
		s := NewMemoryStore()

		got, err := s.GetByID(ctx, Users, "missing")

		require.NoError(t, err)
		assert.Nil(t, got)
	})

	t.Run("should keep collections separate", func(t *testing.T) {
		s := NewMemoryStore()

		_, err := s.Add(ctx, Revenues, Document{"id": "r1", "user_id": "u1"})
		require.NoError(t, err)

		got, err := s.GetByID(ctx, Expenses, "r1")
		require.NoError(t, err)
		assert.Nil(t, got)
	})
}

func TestMemoryStore_Update(t *testing.T) {
	ctx := context.Background()

	t.Run("should merge patch fields and leave the rest untouched", func(t *testing.T) {
		s := NewMemoryStore()

		_, err := s.Add(ctx, Users, Document{"id": "u1", "email": "a@x.com", "balance": float64(100)})
		require.NoError(t, err)

		patch := Document{"balance": float64(250)}
		returned, err := s.Update(ctx, Users, "u1", patch)
		require.NoError(t, err)
		// Update returns the patch as supplied, not the merged document.
		assert.Equal(t, patch, returned)

		got, err := s.GetByID(ctx, Users, "u1")
		require.NoError(t, err)
		require.NotNil(t, got)
		assert.Equal(t, float64(250), got["balance"])
		assert.Equal(t, "a@x.com", got["email"])
	})

	t.Run("should be a no-op for an absent id", func(t *testing.T) {
		s := NewMemoryStore()

		patch := Document{"balance": float64(1)}
		returned, err := s.Update(ctx, Users, "missing", patch)

		require.NoError(t, err)
		assert.Equal(t, patch, returned)

		docs, err := s.GetAll(ctx, Users)
		require.NoError(t, err)
		assert.Empty(t, docs)
	})
}

func TestMemoryStore_Delete(t *testing.T) {
	ctx := context.Background()

	t.Run("should remove the document and return it", func(t *testing.T) {
		s := NewMemoryStore()

		doc := Document{"id": "u1", "email": "a@x.com"}
		_, err := s.Add(ctx, Users, doc)
		require.NoError(t, err)

		deleted, err := s.Delete(ctx, Users, "u1")
		require.NoError(t, err)
		assert.Equal(t, doc, deleted)

		got, err := s.GetByID(ctx, Users, "u1")
		require.NoError(t, err)
		assert.Nil(t, got)
	})

	t.Run("should fail with not-found for an absent id", func(t *testing.T) {
		s := NewMemoryStore()

		_, err := s.Delete(ctx, Users, "missing")

		require.Error(t, err)
		assert.True(t, shared.IsNotFound(err))
	})
}
