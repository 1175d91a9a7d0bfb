package document_repo

import (
	"context"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/pgxscan"

	"aushadhi/internal/core/id"
	"aushadhi/internal/domain"
	"aushadhi/internal/domain/adjustments"
	"aushadhi/internal/infrastructure/storage/postgres"
)

const adjustmentTable = "stock_adjustments"

var adjustmentColumns = []string{
	"id", "deletion_mark", "version", "created_at", "updated_at",
	"number", "date", "comment",
	"item_id", "batch_id", "batch_number",
	"total_quantity", "adjust_type", "reason",
}

// Compile-time check that AdjustmentRepo implements adjustments.Repository.
var _ adjustments.Repository = (*AdjustmentRepo)(nil)

// AdjustmentRepo implements adjustments.Repository.
// The table is append-only; there is no update or delete.
type AdjustmentRepo struct {
	txManager *postgres.TxManager
	builder   squirrel.StatementBuilderType
}

// NewAdjustmentRepo creates a new stock adjustment repository.
func NewAdjustmentRepo(txManager *postgres.TxManager) *AdjustmentRepo {
	return &AdjustmentRepo{
		txManager: txManager,
		builder:   squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar),
	}
}

func (r *AdjustmentRepo) baseSelect() squirrel.SelectBuilder {
	return r.builder.Select(adjustmentColumns...).From(adjustmentTable)
}

// Append inserts a new adjustment record.
func (r *AdjustmentRepo) Append(ctx context.Context, a *adjustments.Adjustment) error {
	q := r.builder.Insert(adjustmentTable).
		Columns(adjustmentColumns...).
		Values(
			a.ID, a.DeletionMark, a.Version, a.CreatedAt, a.UpdatedAt,
			a.Number, a.Date, a.Comment,
			a.ItemID, a.BatchID, a.BatchNumber,
			a.TotalQuantity, a.AdjustType, a.Reason,
		)

	sql, args, err := q.ToSql()
	if err != nil {
		return fmt.Errorf("build insert: %w", err)
	}

	querier := r.txManager.GetQuerier(ctx)
	if _, err := querier.Exec(ctx, sql, args...); err != nil {
		return fmt.Errorf("insert %s: %w", adjustmentTable, err)
	}

	return nil
}

// ListByBatch retrieves all adjustments for a batch, oldest first.
func (r *AdjustmentRepo) ListByBatch(ctx context.Context, batchID id.ID) ([]*adjustments.Adjustment, error) {
	q := r.baseSelect().
		Where(squirrel.Eq{"batch_id": batchID}).
		OrderBy("created_at ASC")

	sql, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	var items []*adjustments.Adjustment
	querier := r.txManager.GetQuerier(ctx)
	if err := pgxscan.Select(ctx, querier, &items, sql, args...); err != nil {
		return nil, fmt.Errorf("list adjustments by batch: %w", err)
	}

	return items, nil
}

// List retrieves adjustments with filtering and pagination.
func (r *AdjustmentRepo) List(ctx context.Context, filter domain.ListFilter) (domain.ListResult[*adjustments.Adjustment], error) {
	result := domain.ListResult[*adjustments.Adjustment]{
		Limit:  filter.Limit,
		Offset: filter.Offset,
	}

	q := r.baseSelect()

	if filter.Search != "" {
		pattern := "%" + filter.Search + "%"
		q = q.Where(squirrel.Or{
			squirrel.ILike{"number": pattern},
			squirrel.ILike{"batch_number": pattern},
			squirrel.ILike{"reason": pattern},
		})
	}

	countQ := r.builder.Select("COUNT(*)").FromSelect(q, "sub")
	countSQL, countArgs, err := countQ.ToSql()
	if err != nil {
		return result, fmt.Errorf("build count query: %w", err)
	}

	querier := r.txManager.GetQuerier(ctx)
	if err := querier.QueryRow(ctx, countSQL, countArgs...).Scan(&result.TotalCount); err != nil {
		return result, fmt.Errorf("count: %w", err)
	}

	q = q.OrderBy("created_at DESC")

	if filter.Limit > 0 {
		q = q.Limit(uint64(filter.Limit))
	}
	if filter.Offset > 0 {
		q = q.Offset(uint64(filter.Offset))
	}

	sql, args, err := q.ToSql()
	if err != nil {
		return result, fmt.Errorf("build query: %w", err)
	}

	if err := pgxscan.Select(ctx, querier, &result.Items, sql, args...); err != nil {
		return result, fmt.Errorf("list adjustments: %w", err)
	}

	return result, nil
}
