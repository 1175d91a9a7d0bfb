// Package register_repo provides PostgreSQL implementations for stock registers.
package register_repo

import (
	"context"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/pgxscan"

	"aushadhi/internal/core/apperror"
	"aushadhi/internal/core/id"
	"aushadhi/internal/core/types"
	"aushadhi/internal/domain"
	"aushadhi/internal/domain/stock"
	"aushadhi/internal/infrastructure/storage/postgres"
)

const batchTable = "stock_batches"

var batchColumns = []string{
	"id", "deletion_mark", "version", "created_at", "updated_at",
	"item_id", "batch_number", "total_quantity",
	"selling_price", "mrp",
	"manufacturing_date", "expiry_date", "purchase_date",
}

// Compile-time check that BatchRepo implements stock.Repository.
var _ stock.Repository = (*BatchRepo)(nil)

// BatchRepo implements stock.Repository.
type BatchRepo struct {
	txManager *postgres.TxManager
	builder   squirrel.StatementBuilderType
}

// NewBatchRepo creates a new stock batch repository.
func NewBatchRepo(txManager *postgres.TxManager) *BatchRepo {
	return &BatchRepo{
		txManager: txManager,
		builder:   squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar),
	}
}

func (r *BatchRepo) baseSelect() squirrel.SelectBuilder {
	return r.builder.Select(batchColumns...).From(batchTable)
}

// Create inserts a new batch.
func (r *BatchRepo) Create(ctx context.Context, b *stock.Batch) error {
	q := r.builder.Insert(batchTable).
		Columns(batchColumns...).
		Values(
			b.ID, b.DeletionMark, b.Version, b.CreatedAt, b.UpdatedAt,
			b.ItemID, b.BatchNumber, b.TotalQuantity,
			b.SellingPrice, b.MRP,
			b.ManufacturingDate, b.ExpiryDate, b.PurchaseDate,
		)

	sql, args, err := q.ToSql()
	if err != nil {
		return fmt.Errorf("build insert: %w", err)
	}

	querier := r.txManager.GetQuerier(ctx)
	if _, err := querier.Exec(ctx, sql, args...); err != nil {
		return fmt.Errorf("insert %s: %w", batchTable, err)
	}

	return nil
}

// GetByID retrieves a batch by ID.
func (r *BatchRepo) GetByID(ctx context.Context, batchID id.ID) (*stock.Batch, error) {
	q := r.baseSelect().
		Where(squirrel.Eq{"id": batchID}).
		Limit(1)

	sql, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	var b stock.Batch
	querier := r.txManager.GetQuerier(ctx)
	if err := pgxscan.Get(ctx, querier, &b, sql, args...); err != nil {
		if pgxscan.NotFound(err) {
			return nil, apperror.NewNotFound("batch", batchID.String())
		}
		return nil, fmt.Errorf("get batch by id: %w", err)
	}

	return &b, nil
}

// GetByBatchNumber retrieves a batch by item and batch number.
func (r *BatchRepo) GetByBatchNumber(ctx context.Context, itemID id.ID, batchNumber string) (*stock.Batch, error) {
	q := r.baseSelect().
		Where(squirrel.Eq{"item_id": itemID}).
		Where(squirrel.Eq{"batch_number": batchNumber}).
		Where(squirrel.Eq{"deletion_mark": false}).
		Limit(1)

	sql, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	var b stock.Batch
	querier := r.txManager.GetQuerier(ctx)
	if err := pgxscan.Get(ctx, querier, &b, sql, args...); err != nil {
		if pgxscan.NotFound(err) {
			return nil, apperror.NewNotFound("batch", batchNumber)
		}
		return nil, fmt.Errorf("get batch by number: %w", err)
	}

	return &b, nil
}

// UpdateQuantity conditionally writes a new quantity. The write succeeds
// only when the stored version still equals fromVersion; the version is
// incremented with the write. Returns false on a lost race.
func (r *BatchRepo) UpdateQuantity(ctx context.Context, batchID id.ID, fromVersion int, newQty types.Quantity) (bool, error) {
	q := r.builder.Update(batchTable).
		Set("total_quantity", newQty).
		Set("version", squirrel.Expr("version + 1")).
		Set("updated_at", squirrel.Expr("now()")).
		Where(squirrel.Eq{"id": batchID}).
		Where(squirrel.Eq{"version": fromVersion})

	sql, args, err := q.ToSql()
	if err != nil {
		return false, fmt.Errorf("build update: %w", err)
	}

	querier := r.txManager.GetQuerier(ctx)
	result, err := querier.Exec(ctx, sql, args...)
	if err != nil {
		return false, fmt.Errorf("update quantity: %w", err)
	}

	return result.RowsAffected() == 1, nil
}

// UpdatePricing updates the selling price and MRP of a batch.
func (r *BatchRepo) UpdatePricing(ctx context.Context, batchID id.ID, sellingPrice, mrp types.Money) error {
	q := r.builder.Update(batchTable).
		Set("selling_price", sellingPrice).
		Set("mrp", mrp).
		Set("updated_at", squirrel.Expr("now()")).
		Where(squirrel.Eq{"id": batchID})

	sql, args, err := q.ToSql()
	if err != nil {
		return fmt.Errorf("build update: %w", err)
	}

	result, err := r.txManager.GetQuerier(ctx).Exec(ctx, sql, args...)
	if err != nil {
		return fmt.Errorf("update pricing: %w", err)
	}

	if result.RowsAffected() == 0 {
		return apperror.NewNotFound("batch", batchID.String())
	}

	return nil
}

// List retrieves batches with filtering and pagination.
func (r *BatchRepo) List(ctx context.Context, filter stock.BatchFilter) (domain.ListResult[*stock.Batch], error) {
	result := domain.ListResult[*stock.Batch]{
		Limit:  filter.Limit,
		Offset: filter.Offset,
	}

	q := r.baseSelect()

	if !filter.IncludeDeleted {
		q = q.Where(squirrel.Eq{"deletion_mark": false})
	}

	if filter.ItemID != nil {
		q = q.Where(squirrel.Eq{"item_id": *filter.ItemID})
	}

	if filter.ExcludeEmpty {
		q = q.Where(squirrel.Gt{"total_quantity": 0})
	}

	if filter.ExpiringBefore != nil {
		q = q.Where(squirrel.Lt{"expiry_date": *filter.ExpiringBefore})
	}

	if filter.Search != "" {
		pattern := "%" + filter.Search + "%"
		q = q.Where(squirrel.ILike{"batch_number": pattern})
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

	// Oldest expiry first so near-expiry lots surface at the top.
	q = q.OrderBy("expiry_date ASC", "created_at ASC")

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
		return result, fmt.Errorf("list batches: %w", err)
	}

	return result, nil
}
