package sales

import (
	"context"
	"fmt"
	"time"

	"aushadhi/internal/core/apperror"
	"aushadhi/internal/core/id"
	"aushadhi/internal/core/tx"
	"aushadhi/internal/core/types"
	"aushadhi/internal/domain"
	"aushadhi/internal/domain/catalogs/item"
	"aushadhi/internal/domain/pricing"
	"aushadhi/internal/domain/stock"
	"aushadhi/internal/domain/tax"
	"aushadhi/internal/domain/units"
	"aushadhi/pkg/logger"
	"aushadhi/pkg/numerator"
)

// ItemCatalog is the read-only catalog access the builder needs.
type ItemCatalog interface {
	GetByID(ctx context.Context, itemID id.ID) (*item.Item, error)
}

// LineInput is one requested sale line: a batch and a main-unit quantity.
// Price and unit factor are resolved from the batch and its item, not
// taken from the caller.
type LineInput struct {
	BatchID   id.ID
	TotalUnit types.Quantity
}

// BuildInput is a requested sale.
type BuildInput struct {
	Lines           []LineInput
	DiscountPercent types.Money
	PaidAmount      types.Money
	PatientRef      string
	Comment         string
}

// BuildResult is the committed sale.
type BuildResult struct {
	SubTotal        types.Money   `json:"subTotal"`
	DiscountAmount  types.Money   `json:"discountAmount"`
	GrandTotal      types.Money   `json:"grandTotal"`
	RemainingAmount types.Money   `json:"remainingAmount"`
	Status          InvoiceStatus `json:"status"`
	Invoice         *Invoice      `json:"invoice"`

	// ExpiredBatches lists referenced batches already past expiry.
	// Selling from an expired batch is allowed but reported.
	ExpiredBatches []string `json:"expiredBatches,omitempty"`
}

// Builder validates, prices and commits sale invoices.
type Builder struct {
	batches   stock.Repository
	ledger    *stock.Ledger
	items     ItemCatalog
	repo      Repository
	numerator *numerator.Service
	oplog     domain.OperationLogger
	txManager tx.Manager
}

// NewBuilder creates a sale invoice builder.
func NewBuilder(
	batches stock.Repository,
	ledger *stock.Ledger,
	items ItemCatalog,
	repo Repository,
	num *numerator.Service,
	oplog domain.OperationLogger,
	txManager tx.Manager,
) *Builder {
	return &Builder{
		batches:   batches,
		ledger:    ledger,
		items:     items,
		repo:      repo,
		numerator: num,
		oplog:     oplog,
		txManager: txManager,
	}
}

// Build validates and commits a multi-line sale.
//
// Every line is converted to sub-units and checked against its batch's
// remaining quantity before anything is written; all violating lines are
// collected and reported together. Deductions and persistence run in one
// transaction, so either every line's stock is deducted and the invoice
// exists, or nothing changed, including when a line loses the quantity
// race at commit time.
func (b *Builder) Build(ctx context.Context, input BuildInput) (*BuildResult, error) {
	inv := NewInvoice()
	inv.PatientRef = input.PatientRef
	inv.Comment = input.Comment
	inv.DiscountPercent = input.DiscountPercent
	inv.PaidAmount = input.PaidAmount

	lines, expired, err := b.resolveLines(ctx, input.Lines)
	if err != nil {
		return nil, err
	}
	inv.Lines = lines

	if err := inv.Validate(ctx); err != nil {
		return nil, err
	}

	if err := b.checkAvailability(ctx, lines); err != nil {
		return nil, err
	}

	lineTotals := make([]types.Money, len(lines))
	for i, line := range lines {
		lineTotals[i] = line.TotalPrice
	}

	// Sales are discount-only; the tax stage does not apply to them.
	totals, err := pricing.Calculate(lineTotals, input.DiscountPercent, tax.NoTax{})
	if err != nil {
		return nil, err
	}

	inv.SubTotal = totals.SubTotal
	inv.DiscountAmount = totals.DiscountAmount
	inv.TotalAmount = totals.GrandTotal
	inv.RemainingAmount = totals.GrandTotal.Sub(input.PaidAmount)
	if inv.RemainingAmount.IsPositive() {
		inv.Status = StatusPending
	} else {
		inv.Status = StatusPaid
	}

	number, err := b.numerator.NextNumber(ctx, numerator.DefaultConfig("INV"), nil, time.Now())
	if err != nil {
		return nil, fmt.Errorf("generate number: %w", err)
	}
	inv.Number = number

	err = b.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		for _, line := range inv.Lines {
			if _, err := b.ledger.Deduct(ctx, line.BatchID, line.TotalSubUnits); err != nil {
				return err
			}
		}

		if err := b.repo.Create(ctx, inv); err != nil {
			return fmt.Errorf("create invoice: %w", err)
		}

		return b.oplog.LogOperation(ctx, "SaleInvoice", inv.ID, domain.OpCommit, inv)
	})
	if err != nil {
		return nil, err
	}

	logger.Info(ctx, "sale invoice committed",
		"number", inv.Number,
		"lines", len(inv.Lines),
		"grand_total", inv.TotalAmount.String(),
		"status", inv.Status,
	)

	return &BuildResult{
		SubTotal:        inv.SubTotal,
		DiscountAmount:  inv.DiscountAmount,
		GrandTotal:      inv.TotalAmount,
		RemainingAmount: inv.RemainingAmount,
		Status:          inv.Status,
		Invoice:         inv,
		ExpiredBatches:  expired,
	}, nil
}

// resolveLines loads each line's batch and item, copies the unit factor
// and per-sub-unit price, and derives sub-units and line totals.
func (b *Builder) resolveLines(ctx context.Context, inputs []LineInput) ([]Line, []string, error) {
	lines := make([]Line, 0, len(inputs))
	var expired []string
	now := time.Now().UTC()

	for i, in := range inputs {
		batch, err := b.batches.GetByID(ctx, in.BatchID)
		if err != nil {
			return nil, nil, err
		}

		it, err := b.items.GetByID(ctx, batch.ItemID)
		if err != nil {
			return nil, nil, err
		}

		subUnits, err := units.ToSubUnits(in.TotalUnit, it.SubUnitsPerUnit)
		if err != nil {
			if appErr, ok := apperror.AsAppError(err); ok {
				return nil, nil, appErr.WithDetail("lineNo", i+1)
			}
			return nil, nil, err
		}

		if batch.IsExpired(now) {
			expired = append(expired, batch.BatchNumber)
		}

		lines = append(lines, Line{
			LineID:          id.New(),
			LineNo:          i + 1,
			BatchID:         batch.ID,
			ItemID:          it.ID,
			SellingUnitType: it.UnitType,
			TotalUnit:       in.TotalUnit,
			SubUnitsPerUnit: it.SubUnitsPerUnit,
			Price:           batch.SellingPrice,
			TotalSubUnits:   subUnits,
			TotalPrice:      pricing.LineTotal(batch.SellingPrice, subUnits),
		})
	}

	return lines, expired, nil
}

// checkAvailability verifies every line against remaining stock,
// aggregating requests that target the same batch, and reports all
// violations at once.
func (b *Builder) checkAvailability(ctx context.Context, lines []Line) error {
	requested := make(map[id.ID]types.Quantity)
	for _, line := range lines {
		requested[line.BatchID] += line.TotalSubUnits
	}

	var violations []map[string]any
	for _, line := range lines {
		available, err := b.ledger.Remaining(ctx, line.BatchID)
		if err != nil {
			return err
		}
		if requested[line.BatchID] > available {
			violations = append(violations, map[string]any{
				"lineNo":    line.LineNo,
				"batch_id":  line.BatchID.String(),
				"requested": requested[line.BatchID].Float64(),
				"available": available.Float64(),
			})
		}
	}

	if len(violations) > 0 {
		return apperror.NewInsufficientStockLines(violations)
	}
	return nil
}

// Void reverses a committed invoice: every line's sub-units are credited
// back to its batch and the invoice is flagged, atomically. External
// wave-off flows that merely forgive a pending balance do not touch stock
// and do not pass through here.
func (b *Builder) Void(ctx context.Context, invoiceID id.ID) (*Invoice, error) {
	inv, err := b.GetByID(ctx, invoiceID)
	if err != nil {
		return nil, err
	}
	if inv.Voided {
		return nil, apperror.NewConflict("invoice is already voided").
			WithDetail("invoice_id", invoiceID.String())
	}

	err = b.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		for _, line := range inv.Lines {
			if _, err := b.ledger.Credit(ctx, line.BatchID, line.TotalSubUnits); err != nil {
				return err
			}
		}

		if err := b.repo.MarkVoided(ctx, inv.ID); err != nil {
			return fmt.Errorf("mark voided: %w", err)
		}

		inv.Voided = true
		return b.oplog.LogOperation(ctx, "SaleInvoice", inv.ID, "void", inv)
	})
	if err != nil {
		return nil, err
	}

	logger.Info(ctx, "sale invoice voided", "number", inv.Number, "lines", len(inv.Lines))
	return inv, nil
}

// GetByID retrieves an invoice with its lines.
func (b *Builder) GetByID(ctx context.Context, invoiceID id.ID) (*Invoice, error) {
	inv, err := b.repo.GetByID(ctx, invoiceID)
	if err != nil {
		return nil, err
	}

	lines, err := b.repo.GetLines(ctx, invoiceID)
	if err != nil {
		return nil, fmt.Errorf("get lines: %w", err)
	}
	inv.Lines = lines

	return inv, nil
}

// List retrieves invoices with filtering.
func (b *Builder) List(ctx context.Context, filter InvoiceFilter) (domain.ListResult[*Invoice], error) {
	return b.repo.List(ctx, filter)
}
