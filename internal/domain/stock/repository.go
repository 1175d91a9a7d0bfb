package stock

import (
	"context"
	"time"

	"aushadhi/internal/core/id"
	"aushadhi/internal/core/types"
	"aushadhi/internal/domain"
)

// BatchFilter narrows batch list queries.
type BatchFilter struct {
	domain.ListFilter

	ItemID *id.ID

	// ExcludeEmpty skips batches with zero remaining quantity
	ExcludeEmpty bool

	// ExpiringBefore returns only batches expiring before the given time
	ExpiringBefore *time.Time
}

// Repository defines persistence for stock batches.
type Repository interface {
	Create(ctx context.Context, b *Batch) error

	GetByID(ctx context.Context, batchID id.ID) (*Batch, error)

	GetByBatchNumber(ctx context.Context, itemID id.ID, batchNumber string) (*Batch, error)

	// UpdateQuantity conditionally writes a new quantity: the write only
	// happens if the stored version still equals fromVersion, and the
	// version is incremented with it. Returns false when the row changed
	// underneath the caller (lost race), with no write performed.
	UpdateQuantity(ctx context.Context, batchID id.ID, fromVersion int, newQty types.Quantity) (bool, error)

	// UpdatePricing updates the selling price and MRP of a batch
	// (a purchase top-up may reprice the lot).
	UpdatePricing(ctx context.Context, batchID id.ID, sellingPrice, mrp types.Money) error

	List(ctx context.Context, filter BatchFilter) (domain.ListResult[*Batch], error)
}
