package adjustments

import (
	"context"

	"aushadhi/internal/core/id"
	"aushadhi/internal/domain"
)

// Repository defines persistence for the adjustment audit log.
// The log is append-only: there is no update or delete.
type Repository interface {
	Append(ctx context.Context, a *Adjustment) error

	ListByBatch(ctx context.Context, batchID id.ID) ([]*Adjustment, error)

	List(ctx context.Context, filter domain.ListFilter) (domain.ListResult[*Adjustment], error)
}
