// Package stock provides stock batches and the ledger that mutates them.
//
// A batch is one purchased lot of an item, identified by item + batch
// number. Its quantity is held in sub-units and is never written below
// zero: every mutation goes through the ledger's conditional update.
package stock

import (
	"context"
	"time"

	"aushadhi/internal/core/apperror"
	"aushadhi/internal/core/entity"
	"aushadhi/internal/core/id"
	"aushadhi/internal/core/types"
)

// Batch is a stock lot. Batches are created by purchase entries, drawn
// down by sales and adjustments, and kept as historical records when
// empty; they are never deleted.
type Batch struct {
	entity.BaseDocument

	ItemID id.ID `db:"item_id" json:"itemId"`

	// BatchNumber is the manufacturer lot number, unique per item
	BatchNumber string `db:"batch_number" json:"batchNumber"`

	// TotalQuantity is the remaining quantity in sub-units, never negative
	TotalQuantity types.Quantity `db:"total_quantity" json:"totalQuantity"`

	// SellingPrice is the sale price per sub-unit
	SellingPrice types.Money `db:"selling_price" json:"sellingPrice"`

	// MRP is the maximum retail price per main unit
	MRP types.Money `db:"mrp" json:"mrp"`

	ManufacturingDate time.Time `db:"manufacturing_date" json:"manufacturingDate"`
	ExpiryDate        time.Time `db:"expiry_date" json:"expiryDate"`
	PurchaseDate      time.Time `db:"purchase_date" json:"purchaseDate"`
}

// NewBatch creates a batch for an item lot.
func NewBatch(itemID id.ID, batchNumber string) *Batch {
	b := &Batch{
		BaseDocument: entity.NewBaseDocument(),
		ItemID:       itemID,
		BatchNumber:  batchNumber,
		PurchaseDate: time.Now().UTC(),
	}
	return b
}

// Validate implements entity.Validatable.
func (b *Batch) Validate(ctx context.Context) error {
	if id.IsNil(b.ItemID) {
		return apperror.NewValidation("item is required").
			WithDetail("field", "itemId")
	}
	if b.BatchNumber == "" {
		return apperror.NewValidation("batch number is required").
			WithDetail("field", "batchNumber")
	}
	if b.TotalQuantity.IsNegative() {
		return apperror.NewValidation("quantity must not be negative").
			WithDetail("field", "totalQuantity")
	}
	if b.SellingPrice.IsNegative() {
		return apperror.NewValidation("selling price must not be negative").
			WithDetail("field", "sellingPrice")
	}
	if !b.ExpiryDate.IsZero() && !b.ManufacturingDate.IsZero() && b.ExpiryDate.Before(b.ManufacturingDate) {
		return apperror.NewValidation("expiry date must be after manufacturing date").
			WithDetail("field", "expiryDate")
	}
	return nil
}

// IsExpired reports whether the batch is past its expiry date at t.
// Batches without an expiry date never expire.
func (b *Batch) IsExpired(t time.Time) bool {
	return !b.ExpiryDate.IsZero() && b.ExpiryDate.Before(t)
}
