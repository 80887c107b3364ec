package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/finbook-app/finbook/internal/domain/shared"
	"github.com/finbook-app/finbook/internal/store"
)

func TestRevenueService(t *testing.T) {
	ctx := context.Background()

	t.Run("should list only the user's revenues", func(t *testing.T) {
		st := store.NewMemoryStore()
		svc := NewRevenueService(st, nil)

		_, err := svc.AddRevenue(ctx, store.Document{"id": "r1", "user_id": "u1", "amount": float64(10)})
		require.NoError(t, err)
		_, err = svc.AddRevenue(ctx, store.Document{"id": "r2", "user_id": "u2", "amount": float64(20)})
		require.NoError(t, err)

		owned, err := svc.GetRevenues(ctx, "u1")
		require.NoError(t, err)
		require.Len(t, owned, 1)
		assert.Equal(t, "r1", owned[0]["id"])
	})

	t.Run("should reject a duplicate revenue id", func(t *testing.T) {
		svc := NewRevenueService(store.NewMemoryStore(), nil)

		_, err := svc.AddRevenue(ctx, store.Document{"id": "r1", "user_id": "u1"})
		require.NoError(t, err)

		_, err = svc.AddRevenue(ctx, store.Document{"id": "r1", "user_id": "u1"})
		require.Error(t, err)
		assert.True(t, shared.IsValidation(err))
	})

	t.Run("should refuse to delete another user's revenue", func(t *testing.T) {
		st := store.NewMemoryStore()
		svc := NewRevenueService(st, nil)

		_, err := svc.AddRevenue(ctx, store.Document{"id": "r1", "user_id": "u1"})
		require.NoError(t, err)

		_, err = svc.DeleteRevenue(ctx, "r1", "u2")
		require.Error(t, err)
		assert.True(t, shared.IsNotFound(err))

		got, err := st.GetByID(ctx, store.Revenues, "r1")
		require.NoError(t, err)
		assert.NotNil(t, got)
	})

	t.Run("should delete an owned revenue", func(t *testing.T) {
		st := store.NewMemoryStore()
		svc := NewRevenueService(st, nil)

		_, err := svc.AddRevenue(ctx, store.Document{"id": "r1", "user_id": "u1"})
		require.NoError(t, err)

		deleted, err := svc.DeleteRevenue(ctx, "r1", "u1")
		require.NoError(t, err)
		assert.Equal(t, "r1", deleted["id"])

		got, err := st.GetByID(ctx, store.Revenues, "r1")
		require.NoError(t, err)
		assert.Nil(t, got)
	})
}

func TestExpenseService(t *testing.T) {
	ctx := context.Background()

	t.Run("should list only the user's expenses", func(t *testing.T) {
		st := store.NewMemoryStore()
		svc := NewExpenseService(st, nil)

		_, err := svc.AddExpense(ctx, store.Document{"id": "e1", "user_id": "u1", "amount": float64(5)})
		require.NoError(t, err)
		_, err = svc.AddExpense(ctx, store.Document{"id": "e2", "user_id": "u2", "amount": float64(7)})
		require.NoError(t, err)

		owned, err := svc.GetExpenses(ctx, "u1")
		require.NoError(t, err)
		require.Len(t, owned, 1)
		assert.Equal(t, "e1", owned[0]["id"])
	})

	t.Run("should fail to delete an absent expense with not-found", func(t *testing.T) {
		svc := NewExpenseService(store.NewMemoryStore(), nil)

		_, err := svc.DeleteExpense(ctx, "missing", "u1")

		require.Error(t, err)
		assert.True(t, shared.IsNotFound(err))
	})
}
