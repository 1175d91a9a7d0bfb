package item

import (
	"context"

	"aushadhi/internal/core/id"
	"aushadhi/internal/domain"
)

// Repository defines persistence for the item catalog.
type Repository interface {
	Create(ctx context.Context, it *Item) error

	GetByID(ctx context.Context, itemID id.ID) (*Item, error)

	GetByCode(ctx context.Context, code string) (*Item, error)

	// Update modifies an existing item with optimistic locking.
	Update(ctx context.Context, it *Item) error

	// SetDeletionMark soft-deletes or restores an item.
	SetDeletionMark(ctx context.Context, itemID id.ID, marked bool) error

	List(ctx context.Context, filter domain.ListFilter) (domain.ListResult[*Item], error)
}
