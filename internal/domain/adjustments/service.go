package adjustments

import (
	"context"
	"fmt"
	"time"

	"aushadhi/internal/core/id"
	"aushadhi/internal/core/tx"
	"aushadhi/internal/core/types"
	"aushadhi/internal/domain"
	"aushadhi/internal/domain/stock"
	"aushadhi/pkg/logger"
	"aushadhi/pkg/numerator"
)

// Result is the outcome of an applied adjustment.
type Result struct {
	// NewRemaining is the batch's sub-unit quantity after the adjustment
	NewRemaining types.Quantity `json:"newRemaining"`

	// Record is the audit record that was appended
	Record *Adjustment `json:"record"`
}

// Service applies manual stock adjustments.
type Service struct {
	batches   stock.Repository
	ledger    *stock.Ledger
	repo      Repository
	numerator *numerator.Service
	oplog     domain.OperationLogger
	txManager tx.Manager
}

// NewService creates a stock adjustment service.
func NewService(
	batches stock.Repository,
	ledger *stock.Ledger,
	repo Repository,
	num *numerator.Service,
	oplog domain.OperationLogger,
	txManager tx.Manager,
) *Service {
	return &Service{
		batches:   batches,
		ledger:    ledger,
		repo:      repo,
		numerator: num,
		oplog:     oplog,
		txManager: txManager,
	}
}

// Apply mutates a batch's quantity and appends the audit record, as one
// transaction. A reduce exceeding the remaining quantity fails with
// INSUFFICIENT_STOCK and nothing is written.
func (s *Service) Apply(ctx context.Context, batchID id.ID, subUnits types.Quantity, adjustType AdjustType, reason string) (*Result, error) {
	record := NewAdjustment(batchID, subUnits, adjustType, reason)
	if err := record.Validate(ctx); err != nil {
		return nil, err
	}

	batch, err := s.batches.GetByID(ctx, batchID)
	if err != nil {
		return nil, err
	}
	record.ItemID = batch.ItemID
	record.BatchNumber = batch.BatchNumber

	number, err := s.numerator.NextNumber(ctx, numerator.DefaultConfig("ADJ"),
		&numerator.Options{Strategy: numerator.StrategyCached}, time.Now())
	if err != nil {
		return nil, fmt.Errorf("generate number: %w", err)
	}
	record.Number = number

	var newRemaining types.Quantity
	err = s.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		var err error
		switch adjustType {
		case AdjustReduce:
			newRemaining, err = s.ledger.Deduct(ctx, batchID, subUnits)
		case AdjustAdd:
			newRemaining, err = s.ledger.Credit(ctx, batchID, subUnits)
		}
		if err != nil {
			return err
		}

		if err := s.repo.Append(ctx, record); err != nil {
			return fmt.Errorf("append adjustment: %w", err)
		}

		return s.oplog.LogOperation(ctx, "StockAdjustment", record.ID, domain.OpAdjust, record)
	})
	if err != nil {
		return nil, err
	}

	logger.Info(ctx, "stock adjustment applied",
		"number", record.Number,
		"batch_id", batchID,
		"type", adjustType,
		"quantity", subUnits.String(),
		"remaining", newRemaining.String(),
	)

	return &Result{NewRemaining: newRemaining, Record: record}, nil
}

// ListByBatch returns the audit history of one batch, oldest first.
func (s *Service) ListByBatch(ctx context.Context, batchID id.ID) ([]*Adjustment, error) {
	return s.repo.ListByBatch(ctx, batchID)
}

// List returns adjustment records with filtering.
func (s *Service) List(ctx context.Context, filter domain.ListFilter) (domain.ListResult[*Adjustment], error) {
	return s.repo.List(ctx, filter)
}
