package service

import (
	"context"

	"go.uber.org/zap"

	"github.com/finbook-app/finbook/internal/domain/shared"
	"github.com/finbook-app/finbook/internal/store"
	"github.com/finbook-app/finbook/pkg/logger"
)

// RevenueService implements CRUD over the revenues collection.
// Revenues reference their owning user through a user_id field.
type RevenueService struct {
	store  store.Store
	logger *logger.Logger
}

// NewRevenueService creates a revenue service
func NewRevenueService(st store.Store, log *logger.Logger) *RevenueService {
	if log == nil {
		log = logger.GetGlobalLogger()
	}
	return &RevenueService{
		store:  st,
		logger: log.WithComponent("revenue-service"),
	}
}

// GetRevenues returns every revenue owned by the given user
func (s *RevenueService) GetRevenues(ctx context.Context, userID string) ([]store.Document, error) {
	s.logger.Debug("get_revenues called", zap.String("user_id", userID))

	all, err := s.store.GetAll(ctx, store.Revenues)
	if err != nil {
		s.logger.Error("get_revenues failed", zap.String("user_id", userID), zap.Error(err))
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

// GetRevenueByID returns one revenue by id, or nil when none matches
func (s *RevenueService) GetRevenueByID(ctx context.Context, id string) (store.Document, error) {
	s.logger.Debug("get_revenue_by_id called", zap.String("id", id))
	return s.store.GetByID(ctx, store.Revenues, id)
}

// AddRevenue inserts a new revenue document after checking for a
// duplicate id
func (s *RevenueService) AddRevenue(ctx context.Context, doc store.Document) (store.InsertResult, error) {
	if doc == nil {
		return store.InsertResult{}, shared.ErrInvalidInput("revenue object is null")
	}

	id, ok := doc.ID()
	if !ok || id == "" {
		return store.InsertResult{}, shared.ErrInvalidInput("revenue id is required")
	}

	s.logger.Debug("add_revenue called", zap.String("id", id))

	existing, err := s.store.GetByID(ctx, store.Revenues, id)
	if err != nil {
		return store.InsertResult{}, err
	}
	if existing != nil {
		return store.InsertResult{}, shared.ErrAlreadyExists("revenue id")
	}

	result, err := s.store.Add(ctx, store.Revenues, doc)
	if err != nil {
		s.logger.Error("add_revenue failed", zap.String("id", id), zap.Error(err))
		return store.InsertResult{}, err
	}

	s.logger.Info("revenue created", zap.String("id", id))
	return result, nil
}

// UpdateRevenue merges the patch into the revenue matching id,
// returning the patch as supplied
func (s *RevenueService) UpdateRevenue(ctx context.Context, id string, patch store.Document) (store.Document, error) {
	s.logger.Debug("update_revenue called", zap.String("id", id))
	return s.store.Update(ctx, store.Revenues, id, patch)
}

// DeleteRevenue removes the revenue matching id, verifying it belongs
// to the given user, and returns the removed document
func (s *RevenueService) DeleteRevenue(ctx context.Context, id, userID string) (store.Document, error) {
	s.logger.Debug("delete_revenue called", zap.String("id", id), zap.String("user_id", userID))

	existing, err := s.store.GetByID(ctx, store.Revenues, id)
	if err != nil {
		return nil, err
	}
	if existing == nil {
		return nil, shared.ErrNotFoundf("no revenue with id %s", id)
	}
	if owner, ok := existing["user_id"].(string); ok && owner != userID {
		return nil, shared.ErrNotFoundf("no revenue with id %s for user %s", id, userID)
	}

	deleted, err := s.store.Delete(ctx, store.Revenues, id)
	if err != nil {
		s.logger.Error("delete_revenue failed", zap.String("id", id), zap.Error(err))
		return nil, err
	}

	s.logger.Info("revenue deleted", zap.String("id", id), zap.String("user_id", userID))
	return deleted, nil
}
