// Package purchases provides purchase entries: the documents that create
// or top up stock batches and record the supplier-side pricing.
package purchases

import (
	"context"
	"time"

	"aushadhi/internal/core/apperror"
	"aushadhi/internal/core/entity"
	"aushadhi/internal/core/id"
	"aushadhi/internal/core/types"
	"aushadhi/internal/domain/tax"
)

// Entry is a committed purchase of one item lot.
//
// The tax rate fields are stored flat for persistence and display, but
// they are always normalized through the tax regime first: exactly the
// rates owned by TaxType are non-zero, the others are forced to zero.
type Entry struct {
	entity.Document

	ItemID  id.ID `db:"item_id" json:"itemId"`
	BatchID id.ID `db:"batch_id" json:"batchId"`

	BatchNumber string `db:"batch_number" json:"batchNumber"`

	// TotalPurchasedUnit is the purchased quantity in main units
	TotalPurchasedUnit types.Quantity `db:"total_purchased_unit" json:"totalPurchasedUnit"`

	// TotalSubUnits is the derived quantity added to the batch
	TotalSubUnits types.Quantity `db:"total_sub_units" json:"totalSubUnits"`

	// PricePerUnit is the purchase price per main unit
	PricePerUnit types.Money `db:"price_per_unit" json:"pricePerUnit"`

	// MRP is the maximum retail price per main unit
	MRP types.Money `db:"mrp" json:"mrp"`

	// SellingPrice is the sale price per sub-unit set on the batch
	SellingPrice types.Money `db:"selling_price" json:"sellingPrice"`

	TaxType tax.Kind    `db:"tax_type" json:"taxType"`
	CGST    types.Money `db:"cgst" json:"cgst"`
	SGST    types.Money `db:"sgst" json:"sgst"`
	IGST    types.Money `db:"igst" json:"igst"`

	DiscountPercent types.Money `db:"discount_percent" json:"discount"`

	// Derived totals
	TotalPrice    types.Money `db:"total_price" json:"totalPrice"`
	TaxableAmount types.Money `db:"taxable_amount" json:"taxableAmount"`
	TaxAmount     types.Money `db:"tax_amount" json:"taxAmount"`
	GrandTotal    types.Money `db:"grand_total" json:"grandTotal"`

	ManufacturingDate time.Time `db:"manufacturing_date" json:"manufacturingDate"`
	ExpiryDate        time.Time `db:"expiry_date" json:"expiryDate"`
}

// NewEntry creates a purchase entry dated now.
func NewEntry(itemID id.ID, batchNumber string) *Entry {
	return &Entry{
		Document:    entity.NewDocument(),
		ItemID:      itemID,
		BatchNumber: batchNumber,
	}
}

// SetRegime normalizes the flat rate fields from a tax regime:
// unowned rates are zeroed, reproducing the taxType transition rule.
func (e *Entry) SetRegime(r tax.Regime) {
	e.TaxType = r.Kind()
	e.CGST, e.SGST, e.IGST = r.Rates()
}

// Validate implements entity.Validatable.
func (e *Entry) Validate(ctx context.Context) error {
	if err := e.Document.Validate(ctx); err != nil {
		return err
	}

	if id.IsNil(e.ItemID) {
		return apperror.NewValidation("item is required").
			WithDetail("field", "itemId")
	}

	if e.BatchNumber == "" {
		return apperror.NewValidation("batch number is required").
			WithDetail("field", "batchNumber")
	}

	if !e.TotalPurchasedUnit.IsPositive() {
		return apperror.NewValidation("purchased units must be positive").
			WithDetail("field", "totalPurchasedUnit").
			WithDetail("value", e.TotalPurchasedUnit.String())
	}

	if e.PricePerUnit.IsNegative() {
		return apperror.NewValidation("price per unit must not be negative").
			WithDetail("field", "pricePerUnit")
	}

	if e.SellingPrice.IsNegative() {
		return apperror.NewValidation("selling price must not be negative").
			WithDetail("field", "sellingPrice")
	}

	if !e.ExpiryDate.IsZero() && !e.ManufacturingDate.IsZero() && e.ExpiryDate.Before(e.ManufacturingDate) {
		return apperror.NewValidation("expiry date must be after manufacturing date").
			WithDetail("field", "expiryDate")
	}

	return nil
}
