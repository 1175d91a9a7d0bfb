package item

import (
	"context"
	"fmt"
	"time"

	"aushadhi/internal/core/apperror"
	"aushadhi/internal/core/id"
	"aushadhi/internal/domain"
	"aushadhi/pkg/logger"
	"aushadhi/pkg/numerator"
)

// Service provides catalog operations for item definitions.
type Service struct {
	repo      Repository
	numerator *numerator.Service
}

// NewService creates an item catalog service.
func NewService(repo Repository, num *numerator.Service) *Service {
	return &Service{repo: repo, numerator: num}
}

// Create validates and stores a new item definition.
func (s *Service) Create(ctx context.Context, it *Item) error {
	if err := it.Validate(ctx); err != nil {
		return err
	}

	if it.Code == "" {
		code, err := s.numerator.NextNumber(ctx, numerator.DefaultConfig("ITM"), nil, time.Now())
		if err != nil {
			return fmt.Errorf("generate code: %w", err)
		}
		it.Code = code
	} else if existing, err := s.repo.GetByCode(ctx, it.Code); err == nil && existing != nil {
		return apperror.NewDuplicate("item", "code", it.Code)
	}

	if err := s.repo.Create(ctx, it); err != nil {
		return err
	}

	logger.Info(ctx, "item created", "id", it.ID, "code", it.Code, "kind", it.Kind)
	return nil
}

// Update validates and stores changes to an item definition.
// The unit factor of an item is immutable once set: existing batches and
// historical invoice lines were priced against it.
func (s *Service) Update(ctx context.Context, it *Item) error {
	if err := it.Validate(ctx); err != nil {
		return err
	}

	current, err := s.repo.GetByID(ctx, it.ID)
	if err != nil {
		return err
	}
	if current.SubUnitsPerUnit != it.SubUnitsPerUnit {
		return apperror.NewConflict("sub-units per unit cannot be changed after creation").
			WithDetail("field", "totalQuantityInAUnit")
	}

	return s.repo.Update(ctx, it)
}

// GetByID retrieves one item definition.
func (s *Service) GetByID(ctx context.Context, itemID id.ID) (*Item, error) {
	return s.repo.GetByID(ctx, itemID)
}

// List retrieves item definitions with filtering.
func (s *Service) List(ctx context.Context, filter domain.ListFilter) (domain.ListResult[*Item], error) {
	return s.repo.List(ctx, filter)
}

// Delete soft-deletes an item definition. Batches referencing it remain.
func (s *Service) Delete(ctx context.Context, itemID id.ID) error {
	return s.repo.SetDeletionMark(ctx, itemID, true)
}
