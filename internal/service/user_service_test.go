package service

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/finbook-app/finbook/internal/domain/shared"
	"github.com/finbook-app/finbook/internal/domain/user"
	"github.com/finbook-app/finbook/internal/store"
)

// newTestUserService wires a user service over an in-memory store with
// real revenue/expense services as cascade peers
func newTestUserService(st store.Store) *UserService {
	revenues := NewRevenueService(st, nil)
	expenses := NewExpenseService(st, nil)
	return NewUserService(st, revenues, expenses, nil, nil)
}

// recordingPeers counts peer calls and can be told to fail deletions
type recordingPeers struct {
	mu          sync.Mutex
	getCalls    int
	deleteCalls int
	docs        []store.Document
	deleteErr   error
}

func (p *recordingPeers) GetRevenues(ctx context.Context, userID string) ([]store.Document, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.getCalls++
	return p.docs, nil
}

func (p *recordingPeers) DeleteRevenue(ctx context.Context, id, userID string) (store.Document, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.deleteCalls++
	if p.deleteErr != nil {
		return nil, p.deleteErr
	}
	return store.Document{"id": id}, nil
}

func (p *recordingPeers) GetExpenses(ctx context.Context, userID string) ([]store.Document, error) {
	return p.GetRevenues(ctx, userID)
}

func (p *recordingPeers) DeleteExpense(ctx context.Context, id, userID string) (store.Document, error) {
	return p.DeleteRevenue(ctx, id, userID)
}

// failingStore errors on every operation
type failingStore struct{}

func (failingStore) GetAll(ctx context.Context, c store.Collection) ([]store.Document, error) {
	return nil, shared.WrapStoreError(errors.New("connection refused"), c.String(), "get_all")
}

func (failingStore) GetByID(ctx context.Context, c store.Collection, id string) (store.Document, error) {
	return nil, shared.WrapStoreError(errors.New("connection refused"), c.String(), "get_by_id")
}

func (failingStore) Add(ctx context.Context, c store.Collection, doc store.Document) (store.InsertResult, error) {
	return store.InsertResult{}, shared.WrapStoreError(errors.New("connection refused"), c.String(), "add")
}

func (failingStore) Update(ctx context.Context, c store.Collection, id string, patch store.Document) (store.Document, error) {
	return nil, shared.WrapStoreError(errors.New("connection refused"), c.String(), "update")
}

func (failingStore) Delete(ctx context.Context, c store.Collection, id string) (store.Document, error) {
	return nil, shared.WrapStoreError(errors.New("connection refused"), c.String(), "delete")
}

func TestUserService_AddUser(t *testing.T) {
	ctx := context.Background()

	t.Run("should insert a new user", func(t *testing.T) {
		st := store.NewMemoryStore()
		svc := newTestUserService(st)

		result, err := svc.AddUser(ctx, &user.User{ID: "u1", Email: "a@x.com", Password: "secret", Balance: 100})

		require.NoError(t, err)
		assert.NotEmpty(t, result.ID)

		got, err := st.GetByID(ctx, store.Users, "u1")
		require.NoError(t, err)
		require.NotNil(t, got)
		assert.Equal(t, "a@x.com", got["email"])
	})

	t.Run("should reject a nil user", func(t *testing.T) {
		svc := newTestUserService(store.NewMemoryStore())

		_, err := svc.AddUser(ctx, nil)

		require.Error(t, err)
		assert.True(t, shared.IsValidation(err))
	})

	t.Run("should reject a duplicate id without mutating the store", func(t *testing.T) {
		st := store.NewMemoryStore()
		svc := newTestUserService(st)

		_, err := svc.AddUser(ctx, &user.User{ID: "u1", Email: "a@x.com", Password: "secret"})
		require.NoError(t, err)

		_, err = svc.AddUser(ctx, &user.User{ID: "u1", Email: "other@x.com", Password: "other"})
		require.Error(t, err)
		assert.True(t, shared.IsValidation(err))

		docs, err := st.GetAll(ctx, store.Users)
		require.NoError(t, err)
		assert.Len(t, docs, 1)
		assert.Equal(t, "a@x.com", docs[0]["email"])
	})
}

func TestUserService_Login(t *testing.T) {
	ctx := context.Background()

	seed := func(t *testing.T) (*UserService, *store.MemoryStore) {
		st := store.NewMemoryStore()
		svc := newTestUserService(st)
		_, err := svc.AddUser(ctx, &user.User{ID: "u1", Email: "a@x.com", Password: "secret", Balance: 50})
		require.NoError(t, err)
		return svc, st
	}

	t.Run("should return the matching user on correct credentials", func(t *testing.T) {
		svc, _ := seed(t)

		got, err := svc.Login(ctx, "a@x.com", "secret")

		require.NoError(t, err)
		require.NotNil(t, got)
		assert.Equal(t, "a@x.com", got["email"])
	})

	t.Run("should reject an unknown email", func(t *testing.T) {
		svc, _ := seed(t)

		_, err := svc.Login(ctx, "nobody@x.com", "secret")

		require.Error(t, err)
		assert.True(t, shared.IsValidation(err))
	})

	t.Run("should reject a wrong password", func(t *testing.T) {
		svc, _ := seed(t)

		_, err := svc.Login(ctx, "a@x.com", "wrong")

		require.Error(t, err)
		assert.True(t, shared.IsValidation(err))
	})

	t.Run("should reject missing credentials without querying the store", func(t *testing.T) {
		svc := newTestUserService(failingStore{})

		_, err := svc.Login(ctx, "", "x")

		require.Error(t, err)
		assert.True(t, shared.IsValidation(err))
	})

	t.Run("should propagate store failures unchanged", func(t *testing.T) {
		svc := newTestUserService(failingStore{})

		_, err := svc.Login(ctx, "a@x.com", "secret")

		require.Error(t, err)
		assert.True(t, shared.IsStoreError(err))
		assert.False(t, shared.IsValidation(err))
	})
}

func TestUserService_UpdateUser(t *testing.T) {
	ctx := context.Background()

	t.Run("should merge fields into the stored user", func(t *testing.T) {
		st := store.NewMemoryStore()
		svc := newTestUserService(st)

		_, err := svc.AddUser(ctx, &user.User{ID: "u1", Email: "a@x.com", Password: "secret", Balance: 100})
		require.NoError(t, err)

		_, err = svc.UpdateUser(ctx, "u1", &user.User{ID: "u1", Email: "new@x.com", Password: "secret", Balance: 100})
		require.NoError(t, err)

		got, err := st.GetByID(ctx, store.Users, "u1")
		require.NoError(t, err)
		require.NotNil(t, got)
		assert.Equal(t, "new@x.com", got["email"])
	})

	t.Run("should not fail for an absent user", func(t *testing.T) {
		svc := newTestUserService(store.NewMemoryStore())

		_, err := svc.UpdateUser(ctx, "missing", &user.User{ID: "missing", Email: "x@x.com"})

		require.NoError(t, err)
	})
}

func TestUserService_DeleteUser(t *testing.T) {
	ctx := context.Background()

	t.Run("should cascade to revenues and expenses and preserve balance", func(t *testing.T) {
		st := store.NewMemoryStore()
		svc := newTestUserService(st)

		_, err := svc.AddUser(ctx, &user.User{ID: "u1", Email: "a@x.com", Password: "secret", Balance: 123.5})
		require.NoError(t, err)

		for _, doc := range []store.Document{
			{"id": "r1", "user_id": "u1", "amount": float64(10)},
			{"id": "r2", "user_id": "u1", "amount": float64(20)},
		} {
			_, err := st.Add(ctx, store.Revenues, doc)
			require.NoError(t, err)
		}
		_, err = st.Add(ctx, store.Expenses, store.Document{"id": "e1", "user_id": "u1", "amount": float64(5)})
		require.NoError(t, err)

		deleted, err := svc.DeleteUser(ctx, "u1")
		require.NoError(t, err)
		require.NotNil(t, deleted)
		assert.Equal(t, 123.5, deleted["balance"])

		for _, probe := range []struct {
			collection store.Collection
			id         string
		}{
			{store.Users, "u1"},
			{store.Revenues, "r1"},
			{store.Revenues, "r2"},
			{store.Expenses, "e1"},
		} {
			got, err := st.GetByID(ctx, probe.collection, probe.id)
			require.NoError(t, err)
			assert.Nil(t, got, "expected %s/%s to be gone", probe.collection, probe.id)
		}
	})

	t.Run("should not touch documents of other users", func(t *testing.T) {
		st := store.NewMemoryStore()
		svc := newTestUserService(st)

		_, err := svc.AddUser(ctx, &user.User{ID: "u1", Email: "a@x.com", Password: "secret"})
		require.NoError(t, err)
		_, err = st.Add(ctx, store.Revenues, store.Document{"id": "r1", "user_id": "u1"})
		require.NoError(t, err)
		_, err = st.Add(ctx, store.Revenues, store.Document{"id": "r9", "user_id": "other"})
		require.NoError(t, err)

		_, err = svc.DeleteUser(ctx, "u1")
		require.NoError(t, err)

		got, err := st.GetByID(ctx, store.Revenues, "r9")
		require.NoError(t, err)
		assert.NotNil(t, got)
	})

	t.Run("should fail with a validation error and skip the cascade for an absent user", func(t *testing.T) {
		st := store.NewMemoryStore()
		revenues := &recordingPeers{}
		expenses := &recordingPeers{}
		svc := NewUserService(st, revenues, expenses, nil, nil)

		_, err := svc.DeleteUser(ctx, "missing")

		require.Error(t, err)
		assert.True(t, shared.IsValidation(err))
		assert.Zero(t, revenues.getCalls)
		assert.Zero(t, revenues.deleteCalls)
		assert.Zero(t, expenses.getCalls)
		assert.Zero(t, expenses.deleteCalls)
	})

	t.Run("should keep the user when the expense cascade fails", func(t *testing.T) {
		st := store.NewMemoryStore()
		svc := newTestUserService(st)

		_, err := svc.AddUser(ctx, &user.User{ID: "u1", Email: "a@x.com", Password: "secret"})
		require.NoError(t, err)
		_, err = st.Add(ctx, store.Revenues, store.Document{"id": "r1", "user_id": "u1"})
		require.NoError(t, err)

		expenses := &recordingPeers{
			docs:      []store.Document{{"id": "e1", "user_id": "u1"}},
			deleteErr: shared.WrapStoreError(errors.New("connection refused"), "expenses", "delete"),
		}
		revenues := NewRevenueService(st, nil)
		failing := NewUserService(st, revenues, expenses, nil, nil)

		_, err = failing.DeleteUser(ctx, "u1")
		require.Error(t, err)

		// Cascade failed before the user document was touched.
		got, err := st.GetByID(ctx, store.Users, "u1")
		require.NoError(t, err)
		assert.NotNil(t, got)
	})
}
