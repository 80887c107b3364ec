package service

import (
	"context"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/finbook-app/finbook/internal/domain/shared"
	"github.com/finbook-app/finbook/internal/domain/user"
	"github.com/finbook-app/finbook/internal/events"
	"github.com/finbook-app/finbook/internal/store"
	"github.com/finbook-app/finbook/pkg/logger"
)

// RevenueProvider is the revenue-service surface the user service
// needs for cascade deletion
type RevenueProvider interface {
	GetRevenues(ctx context.Context, userID string) ([]store.Document, error)
	DeleteRevenue(ctx context.Context, id, userID string) (store.Document, error)
}

// ExpenseProvider is the expense-service surface the user service
// needs for cascade deletion
type ExpenseProvider interface {
	GetExpenses(ctx context.Context, userID string) ([]store.Document, error)
	DeleteExpense(ctx context.Context, id, userID string) (store.Document, error)
}

// UserService implements the user lifecycle: create, read,
// authenticate, update, and delete-with-cascade. It holds no state of
// its own; the store owns all documents.
type UserService struct {
	store     store.Store
	revenues  RevenueProvider
	expenses  ExpenseProvider
	publisher events.Publisher
	logger    *logger.Logger
}

// NewUserService creates a user service
func NewUserService(
	st store.Store,
	revenues RevenueProvider,
	expenses ExpenseProvider,
	publisher events.Publisher,
	log *logger.Logger,
) *UserService {
	if log == nil {
		log = logger.GetGlobalLogger()
	}
	if publisher == nil {
		publisher = events.NoopPublisher{}
	}
	return &UserService{
		store:     st,
		revenues:  revenues,
		expenses:  expenses,
		publisher: publisher,
		logger:    log.WithComponent("user-service"),
	}
}

// GetUsers returns all user documents
func (s *UserService) GetUsers(ctx context.Context) ([]store.Document, error) {
	s.logger.Debug("get_users called")

	users, err := s.store.GetAll(ctx, store.Users)
	if err != nil {
		s.logger.Error("get_users failed", zap.Error(err))
		return nil, err
	}

	s.logger.Debug("get_users succeeded", zap.Int("count", len(users)))
	return users, nil
}

// GetUserByID returns the user with the given id, or nil when no user
// matches
func (s *UserService) GetUserByID(ctx context.Context, id string) (store.Document, error) {
	s.logger.Debug("get_user_by_id called", zap.String("id", id))

	doc, err := s.store.GetByID(ctx, store.Users, id)
	if err != nil {
		s.logger.Error("get_user_by_id failed", zap.String("id", id), zap.Error(err))
		return nil, err
	}

	s.logger.Debug("get_user_by_id succeeded", zap.String("id", id), zap.Bool("found", doc != nil))
	return doc, nil
}

// AddUser inserts a new user after checking that no user with the same
// id exists. The existence check and the insert are separate store
// calls, so concurrent AddUser races with the same id can both pass
// the check.
func (s *UserService) AddUser(ctx context.Context, newUser *user.User) (store.InsertResult, error) {
	if newUser == nil {
		return store.InsertResult{}, shared.ErrInvalidInput("user object is null")
	}

	s.logger.Debug("add_user called", zap.String("id", newUser.ID), zap.String("email", newUser.Email))

	if err := newUser.Validate(); err != nil {
		return store.InsertResult{}, err
	}

	existing, err := s.GetUserByID(ctx, newUser.ID)
	if err != nil {
		return store.InsertResult{}, err
	}
	if existing != nil {
		return store.InsertResult{}, shared.ErrAlreadyExists("user id")
	}

	doc, err := newUser.Document()
	if err != nil {
		return store.InsertResult{}, shared.WrapStoreError(err, store.Users.String(), "add")
	}

	result, err := s.store.Add(ctx, store.Users, doc)
	if err != nil {
		s.logger.Error("add_user failed", zap.String("id", newUser.ID), zap.Error(err))
		return store.InsertResult{}, err
	}

	if err := s.publisher.Publish(ctx, events.UserCreated{UserID: newUser.ID, Email: newUser.Email}); err != nil {
		s.logger.Warn("failed to publish user created event", zap.String("id", newUser.ID), zap.Error(err))
	}

	s.logger.Info("user created", zap.String("id", newUser.ID))
	return result, nil
}

// Login authenticates a user by email and password and returns the
// matching user document. Missing credentials, an unknown email, or a
// wrong password are validation errors; store failures propagate
// unchanged so the caller can tell an outage from bad credentials.
func (s *UserService) Login(ctx context.Context, email, password string) (store.Document, error) {
	if email == "" || password == "" {
		return nil, shared.ErrInvalidInput("please enter all values")
	}

	s.logger.Debug("login called", zap.String("email", email))

	users, err := s.GetUsers(ctx)
	if err != nil {
		return nil, err
	}

	var match store.Document
	for _, u := range users {
		if e, ok := u["email"].(string); ok && e == email {
			match = u
			break
		}
	}
	if match == nil {
		return nil, shared.ErrInvalidInput("user not found")
	}

	// Clear-text comparison, matching how passwords are stored.
	stored, _ := match["password"].(string)
	if stored != password {
		return nil, shared.ErrInvalidInput("invalid password")
	}

	s.logger.Info("login succeeded", zap.String("email", email))
	return match, nil
}

// UpdateUser merges the supplied user's fields into the stored
// document. It does not verify the user exists (a missing user is a
// store-level no-op) and returns the patch as supplied, not the
// merged result.
func (s *UserService) UpdateUser(ctx context.Context, id string, updated *user.User) (store.Document, error) {
	if updated == nil {
		return nil, shared.ErrInvalidInput("user object is null")
	}

	s.logger.Debug("update_user called", zap.String("id", id))

	doc, err := updated.Document()
	if err != nil {
		return nil, shared.WrapStoreError(err, store.Users.String(), "update")
	}

	patch, err := s.store.Update(ctx, store.Users, id, doc)
	if err != nil {
		s.logger.Error("update_user failed", zap.String("id", id), zap.Error(err))
		return nil, err
	}

	s.logger.Info("user updated", zap.String("id", id))
	return patch, nil
}

// DeleteUser removes the user and cascades to every revenue and
// expense that references it. Revenues and expenses are fetched
// concurrently, then every cascade deletion runs concurrently, and
// only after the whole cascade set is gone is the user document
// removed. Both joins await all launched tasks before returning;
// the first failure wins. A failure partway through leaves the
// already-deleted revenues/expenses deleted: there is no rollback.
func (s *UserService) DeleteUser(ctx context.Context, id string) (store.Document, error) {
	s.logger.Debug("delete_user called", zap.String("id", id))

	existing, err := s.GetUserByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if existing == nil {
		return nil, shared.ErrInvalidInput("user not found")
	}

	var revenues, expenses []store.Document

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		revenues, err = s.revenues.GetRevenues(gctx, id)
		return err
	})
	g.Go(func() error {
		var err error
		expenses, err = s.expenses.GetExpenses(gctx, id)
		return err
	})
	if err := g.Wait(); err != nil {
		s.logger.Error("delete_user cascade fetch failed", zap.String("id", id), zap.Error(err))
		return nil, err
	}

	g, gctx = errgroup.WithContext(ctx)
	for _, rev := range revenues {
		revID, _ := rev.ID()
		g.Go(func() error {
			_, err := s.revenues.DeleteRevenue(gctx, revID, id)
			return err
		})
	}
	for _, exp := range expenses {
		expID, _ := exp.ID()
		g.Go(func() error {
			_, err := s.expenses.DeleteExpense(gctx, expID, id)
			return err
		})
	}
	if err := g.Wait(); err != nil {
		s.logger.Error("delete_user cascade delete failed", zap.String("id", id), zap.Error(err))
		return nil, err
	}

	deleted, err := s.store.Delete(ctx, store.Users, id)
	if err != nil {
		s.logger.Error("delete_user failed", zap.String("id", id), zap.Error(err))
		return nil, err
	}

	// The generic delete path does not reliably preserve balance, so
	// carry it over from the pre-deletion snapshot.
	deleted["balance"] = existing["balance"]

	if err := s.publisher.Publish(ctx, events.UserDeleted{UserID: id}); err != nil {
		s.logger.Warn("failed to publish user deleted event", zap.String("id", id), zap.Error(err))
	}

	s.logger.Info("user deleted",
		zap.String("id", id),
		zap.Int("revenues_removed", len(revenues)),
		zap.Int("expenses_removed", len(expenses)),
	)

	return deleted, nil
}
