package document_repo

import (
	"context"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/pgxscan"

	"aushadhi/internal/core/apperror"
	"aushadhi/internal/core/id"
	"aushadhi/internal/domain"
	"aushadhi/internal/domain/purchases"
	"aushadhi/internal/infrastructure/storage/postgres"
)

const purchaseTable = "doc_purchase_entries"

var purchaseColumns = []string{
	"id", "deletion_mark", "version", "created_at", "updated_at",
	"number", "date", "comment",
	"item_id", "batch_id", "batch_number",
	"total_purchased_unit", "total_sub_units",
	"price_per_unit", "mrp", "selling_price",
	"tax_type", "cgst", "sgst", "igst",
	"discount_percent",
	"total_price", "taxable_amount", "tax_amount", "grand_total",
	"manufacturing_date", "expiry_date",
}

// Compile-time check that PurchaseEntryRepo implements purchases.Repository.
var _ purchases.Repository = (*PurchaseEntryRepo)(nil)

// PurchaseEntryRepo implements purchases.Repository.
type PurchaseEntryRepo struct {
	txManager *postgres.TxManager
	builder   squirrel.StatementBuilderType
}

// NewPurchaseEntryRepo creates a new purchase entry repository.
func NewPurchaseEntryRepo(txManager *postgres.TxManager) *PurchaseEntryRepo {
	return &PurchaseEntryRepo{
		txManager: txManager,
		builder:   squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar),
	}
}

func (r *PurchaseEntryRepo) baseSelect() squirrel.SelectBuilder {
	return r.builder.Select(purchaseColumns...).From(purchaseTable)
}

// Create inserts a new purchase entry.
func (r *PurchaseEntryRepo) Create(ctx context.Context, e *purchases.Entry) error {
	q := r.builder.Insert(purchaseTable).
		Columns(purchaseColumns...).
		Values(
			e.ID, e.DeletionMark, e.Version, e.CreatedAt, e.UpdatedAt,
			e.Number, e.Date, e.Comment,
			e.ItemID, e.BatchID, e.BatchNumber,
			e.TotalPurchasedUnit, e.TotalSubUnits,
			e.PricePerUnit, e.MRP, e.SellingPrice,
			e.TaxType, e.CGST, e.SGST, e.IGST,
			e.DiscountPercent,
			e.TotalPrice, e.TaxableAmount, e.TaxAmount, e.GrandTotal,
			e.ManufacturingDate, e.ExpiryDate,
		)

	sql, args, err := q.ToSql()
	if err != nil {
		return fmt.Errorf("build insert: %w", err)
	}

	querier := r.txManager.GetQuerier(ctx)
	if _, err := querier.Exec(ctx, sql, args...); err != nil {
		return fmt.Errorf("insert %s: %w", purchaseTable, err)
	}

	return nil
}

// GetByID retrieves a purchase entry by ID.
func (r *PurchaseEntryRepo) GetByID(ctx context.Context, entryID id.ID) (*purchases.Entry, error) {
	q := r.baseSelect().
		Where(squirrel.Eq{"id": entryID}).
		Limit(1)

	sql, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	var e purchases.Entry
	querier := r.txManager.GetQuerier(ctx)
	if err := pgxscan.Get(ctx, querier, &e, sql, args...); err != nil {
		if pgxscan.NotFound(err) {
			return nil, apperror.NewNotFound("purchase entry", entryID.String())
		}
		return nil, fmt.Errorf("get purchase entry by id: %w", err)
	}

	return &e, nil
}

// List retrieves purchase entries with filtering and pagination.
func (r *PurchaseEntryRepo) List(ctx context.Context, filter domain.ListFilter) (domain.ListResult[*purchases.Entry], error) {
	result := domain.ListResult[*purchases.Entry]{
		Limit:  filter.Limit,
		Offset: filter.Offset,
	}

	q := r.baseSelect()

	if !filter.IncludeDeleted {
		q = q.Where(squirrel.Eq{"deletion_mark": false})
	}

	if filter.Search != "" {
		pattern := "%" + filter.Search + "%"
		q = q.Where(squirrel.Or{
			squirrel.ILike{"number": pattern},
			squirrel.ILike{"batch_number": pattern},
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

	q = q.OrderBy("date DESC", "number DESC")

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
		return result, fmt.Errorf("list purchase entries: %w", err)
	}

	return result, nil
}
