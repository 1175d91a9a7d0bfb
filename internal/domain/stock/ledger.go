package stock

import (
	"context"

	"aushadhi/internal/core/apperror"
	"aushadhi/internal/core/id"
	"aushadhi/internal/core/types"
	"aushadhi/pkg/logger"
)

// maxWriteAttempts bounds the read-compute-write retry loop. When the
// conditional update loses the race this many times in a row, the caller
// gets a CONCURRENT_MODIFICATION error and is expected to resubmit.
const maxWriteAttempts = 5

// Ledger mutates batch quantities safely under concurrent access.
//
// The engine does not assume single-writer access: each mutation reads the
// current quantity, computes the new value, and writes it conditionally on
// the version observed at read time. A lost race is retried with fresh
// state, so the quantity invariant (never below zero) holds regardless of
// the host's scheduling model. A deduction is always against exactly one
// batch; callers needing stock from several batches supply one line per
// batch.
type Ledger struct {
	batches Repository
}

// NewLedger creates a ledger over the given batch repository.
func NewLedger(batches Repository) *Ledger {
	return &Ledger{batches: batches}
}

// Remaining returns the current sub-unit quantity of a batch.
func (l *Ledger) Remaining(ctx context.Context, batchID id.ID) (types.Quantity, error) {
	b, err := l.batches.GetByID(ctx, batchID)
	if err != nil {
		return 0, err
	}
	return b.TotalQuantity, nil
}

// Deduct removes subUnits from a batch. Fails with INSUFFICIENT_STOCK when
// the request exceeds what remains at write time, with nothing written.
// Returns the remaining quantity after the deduction.
func (l *Ledger) Deduct(ctx context.Context, batchID id.ID, subUnits types.Quantity) (types.Quantity, error) {
	if subUnits.IsNegative() {
		return 0, apperror.NewValidation("deduction quantity must not be negative").
			WithDetail("quantity", subUnits.String())
	}

	for attempt := 0; attempt < maxWriteAttempts; attempt++ {
		b, err := l.batches.GetByID(ctx, batchID)
		if err != nil {
			return 0, err
		}

		if subUnits > b.TotalQuantity {
			return 0, apperror.NewInsufficientStock(
				batchID.String(), subUnits.Float64(), b.TotalQuantity.Float64(),
			)
		}

		newQty := b.TotalQuantity - subUnits
		ok, err := l.batches.UpdateQuantity(ctx, batchID, b.Version, newQty)
		if err != nil {
			return 0, err
		}
		if ok {
			return newQty, nil
		}

		logger.Debug(ctx, "batch quantity write lost race, retrying",
			"batch_id", batchID, "attempt", attempt+1)
	}

	return 0, apperror.NewConcurrencyConflict("stock_batch", batchID.String())
}

// Credit adds subUnits to a batch. There is no upper bound; credits are
// used by purchase top-ups, add-adjustments and sale reversal flows.
// Returns the remaining quantity after the credit.
func (l *Ledger) Credit(ctx context.Context, batchID id.ID, subUnits types.Quantity) (types.Quantity, error) {
	if subUnits.IsNegative() {
		return 0, apperror.NewValidation("credit quantity must not be negative").
			WithDetail("quantity", subUnits.String())
	}

	for attempt := 0; attempt < maxWriteAttempts; attempt++ {
		b, err := l.batches.GetByID(ctx, batchID)
		if err != nil {
			return 0, err
		}

		newQty := b.TotalQuantity + subUnits
		ok, err := l.batches.UpdateQuantity(ctx, batchID, b.Version, newQty)
		if err != nil {
			return 0, err
		}
		if ok {
			return newQty, nil
		}

		logger.Debug(ctx, "batch quantity write lost race, retrying",
			"batch_id", batchID, "attempt", attempt+1)
	}

	return 0, apperror.NewConcurrencyConflict("stock_batch", batchID.String())
}
