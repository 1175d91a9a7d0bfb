// Package document_repo provides PostgreSQL implementations for document repositories.
package document_repo

import (
	"context"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/pgxscan"

	"aushadhi/internal/core/apperror"
	"aushadhi/internal/core/id"
	"aushadhi/internal/domain"
	"aushadhi/internal/domain/sales"
	"aushadhi/internal/infrastructure/storage/postgres"
)

const (
	invoiceTable     = "doc_sale_invoices"
	invoiceLineTable = "doc_sale_invoice_lines"
)

var invoiceColumns = []string{
	"id", "deletion_mark", "version", "created_at", "updated_at",
	"number", "date", "comment",
	"patient_ref", "discount_percent",
	"sub_total", "discount_amount", "total_amount",
	"paid_amount", "remaining_amount",
	"status", "voided",
}

var invoiceLineColumns = []string{
	"line_id", "line_no", "batch_id", "item_id",
	"selling_unit_type", "total_unit", "sub_units_per_unit",
	"price", "total_sub_units", "total_price",
}

// Compile-time check that SaleInvoiceRepo implements sales.Repository.
var _ sales.Repository = (*SaleInvoiceRepo)(nil)

// SaleInvoiceRepo implements sales.Repository.
type SaleInvoiceRepo struct {
	txManager *postgres.TxManager
	builder   squirrel.StatementBuilderType
}

// NewSaleInvoiceRepo creates a new sale invoice repository.
func NewSaleInvoiceRepo(txManager *postgres.TxManager) *SaleInvoiceRepo {
	return &SaleInvoiceRepo{
		txManager: txManager,
		builder:   squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar),
	}
}

func (r *SaleInvoiceRepo) baseSelect() squirrel.SelectBuilder {
	return r.builder.Select(invoiceColumns...).From(invoiceTable)
}

// Create inserts the invoice header and its lines. Lines go through
// the COPY protocol when an active transaction carries the context.
func (r *SaleInvoiceRepo) Create(ctx context.Context, inv *sales.Invoice) error {
	q := r.builder.Insert(invoiceTable).
		Columns(invoiceColumns...).
		Values(
			inv.ID, inv.DeletionMark, inv.Version, inv.CreatedAt, inv.UpdatedAt,
			inv.Number, inv.Date, inv.Comment,
			inv.PatientRef, inv.DiscountPercent,
			inv.SubTotal, inv.DiscountAmount, inv.TotalAmount,
			inv.PaidAmount, inv.RemainingAmount,
			inv.Status, inv.Voided,
		)

	sql, args, err := q.ToSql()
	if err != nil {
		return fmt.Errorf("build insert: %w", err)
	}

	querier := r.txManager.GetQuerier(ctx)
	if _, err := querier.Exec(ctx, sql, args...); err != nil {
		return fmt.Errorf("insert %s: %w", invoiceTable, err)
	}

	return r.createLines(ctx, inv.ID, inv.Lines)
}

func (r *SaleInvoiceRepo) createLines(ctx context.Context, invoiceID id.ID, lines []sales.Line) error {
	if len(lines) == 0 {
		return nil
	}

	columns := append([]string{"invoice_id"}, invoiceLineColumns...)

	// Fast path: COPY when inside a transaction.
	if tx := r.txManager.GetTx(ctx); tx != nil {
		inserter := postgres.NewBatchInserter(r.txManager)
		rows := make([][]any, 0, len(lines))
		for _, l := range lines {
			rows = append(rows, []any{
				invoiceID,
				l.LineID, l.LineNo, l.BatchID, l.ItemID,
				l.SellingUnitType, l.TotalUnit, l.SubUnitsPerUnit,
				l.Price, l.TotalSubUnits, l.TotalPrice,
			})
		}
		if _, err := inserter.CopyFromSlice(ctx, invoiceLineTable, columns, rows); err != nil {
			return fmt.Errorf("copy invoice lines: %w", err)
		}
		return nil
	}

	q := r.builder.Insert(invoiceLineTable).Columns(columns...)
	for _, l := range lines {
		q = q.Values(
			invoiceID,
			l.LineID, l.LineNo, l.BatchID, l.ItemID,
			l.SellingUnitType, l.TotalUnit, l.SubUnitsPerUnit,
			l.Price, l.TotalSubUnits, l.TotalPrice,
		)
	}

	sql, args, err := q.ToSql()
	if err != nil {
		return fmt.Errorf("build lines insert: %w", err)
	}

	if _, err := r.txManager.GetQuerier(ctx).Exec(ctx, sql, args...); err != nil {
		return fmt.Errorf("insert invoice lines: %w", err)
	}

	return nil
}

// GetByID retrieves an invoice with its lines.
func (r *SaleInvoiceRepo) GetByID(ctx context.Context, invoiceID id.ID) (*sales.Invoice, error) {
	q := r.baseSelect().
		Where(squirrel.Eq{"id": invoiceID}).
		Limit(1)

	sql, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	var inv sales.Invoice
	querier := r.txManager.GetQuerier(ctx)
	if err := pgxscan.Get(ctx, querier, &inv, sql, args...); err != nil {
		if pgxscan.NotFound(err) {
			return nil, apperror.NewNotFound("invoice", invoiceID.String())
		}
		return nil, fmt.Errorf("get invoice by id: %w", err)
	}

	lines, err := r.GetLines(ctx, invoiceID)
	if err != nil {
		return nil, err
	}
	inv.Lines = lines

	return &inv, nil
}

// GetLines retrieves the lines of an invoice in line order.
func (r *SaleInvoiceRepo) GetLines(ctx context.Context, invoiceID id.ID) ([]sales.Line, error) {
	q := r.builder.Select(invoiceLineColumns...).
		From(invoiceLineTable).
		Where(squirrel.Eq{"invoice_id": invoiceID}).
		OrderBy("line_no ASC")

	sql, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	var lines []sales.Line
	querier := r.txManager.GetQuerier(ctx)
	if err := pgxscan.Select(ctx, querier, &lines, sql, args...); err != nil {
		return nil, fmt.Errorf("get invoice lines: %w", err)
	}

	return lines, nil
}

// MarkVoided flags a reversed invoice.
func (r *SaleInvoiceRepo) MarkVoided(ctx context.Context, invoiceID id.ID) error {
	q := r.builder.Update(invoiceTable).
		Set("voided", true).
		Set("version", squirrel.Expr("version + 1")).
		Set("updated_at", squirrel.Expr("now()")).
		Where(squirrel.Eq{"id": invoiceID}).
		Where(squirrel.Eq{"voided": false})

	sql, args, err := q.ToSql()
	if err != nil {
		return fmt.Errorf("build update: %w", err)
	}

	result, err := r.txManager.GetQuerier(ctx).Exec(ctx, sql, args...)
	if err != nil {
		return fmt.Errorf("mark voided: %w", err)
	}

	if result.RowsAffected() == 0 {
		return apperror.NewConflict("invoice not found or already voided").
			WithDetail("id", invoiceID.String())
	}

	return nil
}

// List retrieves invoices with filtering and pagination. Lines are not
// loaded; use GetByID for the full document.
func (r *SaleInvoiceRepo) List(ctx context.Context, filter sales.InvoiceFilter) (domain.ListResult[*sales.Invoice], error) {
	result := domain.ListResult[*sales.Invoice]{
		Limit:  filter.Limit,
		Offset: filter.Offset,
	}

	q := r.baseSelect()

	if !filter.IncludeDeleted {
		q = q.Where(squirrel.Eq{"deletion_mark": false})
	}

	if filter.Status != nil {
		q = q.Where(squirrel.Eq{"status": *filter.Status})
	}

	if filter.DateFrom != nil {
		q = q.Where(squirrel.GtOrEq{"date": *filter.DateFrom})
	}
	if filter.DateTo != nil {
		q = q.Where(squirrel.Lt{"date": *filter.DateTo})
	}

	if filter.Search != "" {
		pattern := "%" + filter.Search + "%"
		q = q.Where(squirrel.Or{
			squirrel.ILike{"number": pattern},
			squirrel.ILike{"patient_ref": pattern},
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
		return result, fmt.Errorf("list invoices: %w", err)
	}

	return result, nil
}
