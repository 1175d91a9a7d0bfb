package purchases

import (
	"context"

	"aushadhi/internal/core/id"
	"aushadhi/internal/domain"
)

// Repository defines persistence for purchase entries.
type Repository interface {
	Create(ctx context.Context, e *Entry) error

	GetByID(ctx context.Context, entryID id.ID) (*Entry, error)

	List(ctx context.Context, filter domain.ListFilter) (domain.ListResult[*Entry], error)
}
