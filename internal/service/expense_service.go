package service

import (
	"context"

	"go.uber.org/zap"

	"github.com/finbook-app/finbook/internal/domain/shared"
	"github.com/finbook-app/finbook/internal/store"
	"github.com/finbook-app/finbook/pkg/logger"
)

// ExpenseService implements CRUD over the expenses collection.
// Expenses reference their owning user through a user_id field.
type ExpenseService struct {
	store  store.Store
	logger *logger.Logger
}

// NewExpenseService creates an expense service
func NewExpenseService(st store.Store, log *logger.Logger) *ExpenseService {
	if log == nil {
		log = logger.GetGlobalLogger()
	}
	return &ExpenseService{
		store:  st,
		logger: log.WithComponent("expense-service"),
	}
}

// GetExpenses returns every expense owned by the given user
func (s *ExpenseService) GetExpenses(ctx context.Context, userID string) ([]store.Document, error) {
	s.logger.Debug("get_expenses called", zap.String("user_id", userID))

	all, err := s.store.GetAll(ctx, store.Expenses)
	if err != nil {
		s.logger.Error("get_expenses failed", zap.String("user_id", userID), zap.Error(err))
		return nil, err
	}

	owned := make([]store.Document, 0, len(all))
	for _, doc := range all {
		if owner, ok := doc["user_id"].(string); ok && owner == userID {
			owned = append(owned, doc)
		}
	}

	return owned, nil
}

// GetExpenseByID returns one expense by id, or nil when none matches
func (s *ExpenseService) GetExpenseByID(ctx context.Context, id string) (store.Document, error) {
	s.logger.Debug("get_expense_by_id called", zap.String("id", id))
	return s.store.GetByID(ctx, store.Expenses, id)
}

// AddExpense inserts a new expense document after checking for a
// duplicate id
func (s *ExpenseService) AddExpense(ctx context.Context, doc store.Document) (store.InsertResult, error) {
	if doc == nil {
		return store.InsertResult{}, shared.ErrInvalidInput("expense object is null")
	}

	id, ok := doc.ID()
	if !ok || id == "" {
		return store.InsertResult{}, shared.ErrInvalidInput("expense id is required")
	}

	s.logger.Debug("add_expense called", zap.String("id", id))

	existing, err := s.store.GetByID(ctx, store.Expenses, id)
	if err != nil {
		return store.InsertResult{}, err
	}
	if existing != nil {
		return store.InsertResult{}, shared.ErrAlreadyExists("expense id")
	}

	result, err := s.store.Add(ctx, store.Expenses, doc)
	if err != nil {
		s.logger.Error("add_expense failed", zap.String("id", id), zap.Error(err))
		return store.InsertResult{}, err
	}

	s.logger.Info("expense created", zap.String("id", id))
	return result, nil
}

// UpdateExpense merges the patch into the expense matching id,
// returning the patch as supplied
func (s *ExpenseService) UpdateExpense(ctx context.Context, id string, patch store.Document) (store.Document, error) {
	s.logger.Debug("update_expense called", zap.String("id", id))
	return s.store.Update(ctx, store.Expenses, id, patch)
}

// DeleteExpense removes the expense matching id, verifying it belongs
// to the given user, and returns the removed document
func (s *ExpenseService) DeleteExpense(ctx context.Context, id, userID string) (store.Document, error) {
	s.logger.Debug("delete_expense called", zap.String("id", id), zap.String("user_id", userID))

	existing, err := s.store.GetByID(ctx, store.Expenses, id)
	if err != nil {
		return nil, err
	}
	if existing == nil {
		return nil, shared.ErrNotFoundf("no expense with id %s", id)
	}
	if owner, ok := existing["user_id"].(string); ok && owner != userID {
		return nil, shared.ErrNotFoundf("no expense with id %s for user %s", id, userID)
	}

	deleted, err := s.store.Delete(ctx, store.Expenses, id)
	if err != nil {
		s.logger.Error("delete_expense failed", zap.String("id", id), zap.Error(err))
		return nil, err
	}

	s.logger.Info("expense deleted", zap.String("id", id), zap.String("user_id", userID))
	return deleted, nil
}
