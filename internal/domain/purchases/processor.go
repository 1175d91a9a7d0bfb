package purchases

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

// ItemCatalog is the read-only catalog access the processor needs.
type ItemCatalog interface {
	GetByID(ctx context.Context, itemID id.ID) (*item.Item, error)
}

// Input is a requested purchase line.
type Input struct {
	ItemID             id.ID
	BatchNumber        string
	TotalPurchasedUnit types.Quantity
	PricePerUnit       types.Money
	MRP                types.Money
	SellingPrice       types.Money
	TaxType            tax.Kind
	CGST               types.Money
	SGST               types.Money
	IGST               types.Money
	DiscountPercent    types.Money
	ManufacturingDate  time.Time
	ExpiryDate         time.Time
	Comment            string
}

// Result is the committed purchase.
type Result struct {
	TotalPrice    types.Money  `json:"totalPrice"`
	TaxableAmount types.Money  `json:"taxableAmount"`
	TaxAmount     types.Money  `json:"taxAmount"`
	GrandTotal    types.Money  `json:"grandTotal"`
	Entry         *Entry       `json:"entry"`
	Batch         *stock.Batch `json:"createdOrUpdatedBatch"`

	// BatchCreated is true when the purchase opened a new batch rather
	// than topping up an existing one
	BatchCreated bool `json:"batchCreated"`
}

// Processor validates, prices and commits purchase entries.
type Processor struct {
	items     ItemCatalog
	batches   stock.Repository
	ledger    *stock.Ledger
	repo      Repository
	numerator *numerator.Service
	oplog     domain.OperationLogger
	txManager tx.Manager
}

// NewProcessor creates a purchase entry processor.
func NewProcessor(
	items ItemCatalog,
	batches stock.Repository,
	ledger *stock.Ledger,
	repo Repository,
	num *numerator.Service,
	oplog domain.OperationLogger,
	txManager tx.Manager,
) *Processor {
	return &Processor{
		items:     items,
		batches:   batches,
		ledger:    ledger,
		repo:      repo,
		numerator: num,
		oplog:     oplog,
		txManager: txManager,
	}
}

// Process validates and commits a purchase: the entry is priced through
// the full discount-before-tax pipeline, and the referenced batch is
// created or topped up with the purchased sub-units, atomically.
func (p *Processor) Process(ctx context.Context, input Input) (*Result, error) {
	it, err := p.items.GetByID(ctx, input.ItemID)
	if err != nil {
		return nil, err
	}

	entry := NewEntry(input.ItemID, input.BatchNumber)
	entry.TotalPurchasedUnit = input.TotalPurchasedUnit
	entry.PricePerUnit = input.PricePerUnit
	entry.MRP = input.MRP
	entry.SellingPrice = input.SellingPrice
	entry.DiscountPercent = input.DiscountPercent
	entry.ManufacturingDate = input.ManufacturingDate
	entry.ExpiryDate = input.ExpiryDate
	entry.Comment = input.Comment

	regime, err := tax.FromFields(input.TaxType, input.CGST, input.SGST, input.IGST)
	if err != nil {
		return nil, err
	}
	entry.SetRegime(regime)

	if err := entry.Validate(ctx); err != nil {
		return nil, err
	}

	subUnits, err := units.ToSubUnits(input.TotalPurchasedUnit, it.SubUnitsPerUnit)
	if err != nil {
		return nil, err
	}
	entry.TotalSubUnits = subUnits

	// Purchase pricing works in main units: the supplier price is per
	// main unit, so the line total is price * purchased units.
	lineTotal := pricing.LineTotal(input.PricePerUnit, input.TotalPurchasedUnit)
	totals, err := pricing.Calculate([]types.Money{lineTotal}, input.DiscountPercent, regime)
	if err != nil {
		return nil, err
	}
	entry.TotalPrice = totals.SubTotal
	entry.TaxableAmount = totals.TaxableAmount
	entry.TaxAmount = totals.Tax
	entry.GrandTotal = totals.GrandTotal

	number, err := p.numerator.NextNumber(ctx, numerator.DefaultConfig("PUR"),
		&numerator.Options{Strategy: numerator.StrategyCached}, time.Now())
	if err != nil {
		return nil, fmt.Errorf("generate number: %w", err)
	}
	entry.Number = number

	var batch *stock.Batch
	var created bool
	err = p.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		batch, created, err = p.applyToBatch(ctx, it, entry, subUnits)
		if err != nil {
			return err
		}
		entry.BatchID = batch.ID

		if err := p.repo.Create(ctx, entry); err != nil {
			return fmt.Errorf("create purchase entry: %w", err)
		}

		return p.oplog.LogOperation(ctx, "PurchaseEntry", entry.ID, domain.OpCommit, entry)
	})
	if err != nil {
		return nil, err
	}

	logger.Info(ctx, "purchase entry committed",
		"number", entry.Number,
		"item_id", it.ID,
		"batch_number", entry.BatchNumber,
		"sub_units", subUnits.String(),
		"batch_created", created,
	)

	return &Result{
		TotalPrice:    entry.TotalPrice,
		TaxableAmount: entry.TaxableAmount,
		TaxAmount:     entry.TaxAmount,
		GrandTotal:    entry.GrandTotal,
		Entry:         entry,
		Batch:         batch,
		BatchCreated:  created,
	}, nil
}

// applyToBatch tops up an existing batch or opens a new one.
func (p *Processor) applyToBatch(ctx context.Context, it *item.Item, entry *Entry, subUnits types.Quantity) (*stock.Batch, bool, error) {
	existing, err := p.batches.GetByBatchNumber(ctx, it.ID, entry.BatchNumber)
	switch {
	case err == nil:
		newQty, err := p.ledger.Credit(ctx, existing.ID, subUnits)
		if err != nil {
			return nil, false, err
		}
		if err := p.batches.UpdatePricing(ctx, existing.ID, entry.SellingPrice, entry.MRP); err != nil {
			return nil, false, err
		}
		existing.TotalQuantity = newQty
		existing.SellingPrice = entry.SellingPrice
		existing.MRP = entry.MRP
		return existing, false, nil

	case apperror.IsNotFound(err):
		batch := stock.NewBatch(it.ID, entry.BatchNumber)
		batch.TotalQuantity = subUnits
		batch.SellingPrice = entry.SellingPrice
		batch.MRP = entry.MRP
		batch.ManufacturingDate = entry.ManufacturingDate
		batch.ExpiryDate = entry.ExpiryDate
		batch.PurchaseDate = entry.Date

		if err := batch.Validate(ctx); err != nil {
			return nil, false, err
		}
		if err := p.batches.Create(ctx, batch); err != nil {
			return nil, false, err
		}
		return batch, true, nil

	default:
		return nil, false, err
	}
}

// GetByID retrieves one purchase entry.
func (p *Processor) GetByID(ctx context.Context, entryID id.ID) (*Entry, error) {
	return p.repo.GetByID(ctx, entryID)
}

// List retrieves purchase entries with filtering.
func (p *Processor) List(ctx context.Context, filter domain.ListFilter) (domain.ListResult[*Entry], error) {
	return p.repo.List(ctx, filter)
}
