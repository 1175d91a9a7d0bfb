// Package sales provides sale invoices and the builder that validates,
// prices and commits them against stock.
package sales

import (
	"context"

	"aushadhi/internal/core/apperror"
	"aushadhi/internal/core/entity"
	"aushadhi/internal/core/id"
	"aushadhi/internal/core/types"
)

// InvoiceStatus is derived from the paid amount at commit time.
type InvoiceStatus string

const (
	StatusPaid    InvoiceStatus = "paid"
	StatusPending InvoiceStatus = "pending"
)

// Line is one invoice line, drawn from exactly one batch. Stock from
// several batches needs one line per batch; lines are never split across
// batches automatically.
type Line struct {
	LineID id.ID `db:"line_id" json:"lineId"`
	LineNo int   `db:"line_no" json:"lineNo"`

	BatchID id.ID `db:"batch_id" json:"batchId"`
	ItemID  id.ID `db:"item_id" json:"itemId"`

	// SellingUnitType is the main-unit label, copied from the item
	SellingUnitType string `db:"selling_unit_type" json:"sellingUnitType"`

	// TotalUnit is the sold quantity in main units
	TotalUnit types.Quantity `db:"total_unit" json:"totalUnit"`

	// SubUnitsPerUnit is the item's unit factor, copied at line-creation
	// time so later catalog edits cannot change a committed line
	SubUnitsPerUnit int64 `db:"sub_units_per_unit" json:"totalQuantityInAUnit"`

	// Price is per sub-unit, copied from the batch
	Price types.Money `db:"price" json:"price"`

	// TotalSubUnits = TotalUnit * SubUnitsPerUnit, rounded to 2 places
	TotalSubUnits types.Quantity `db:"total_sub_units" json:"totalSubUnits"`

	// TotalPrice = Price * TotalSubUnits
	TotalPrice types.Money `db:"total_price" json:"totalPrice"`
}

// Invoice is a committed sale. Sales are discount-only: the tax stage of
// the pricing pipeline does not apply to them, so TotalAmount is the
// post-discount amount.
type Invoice struct {
	entity.Document

	// PatientRef is an opaque reference supplied by the patient-record
	// collaborator; the engine does not interpret it
	PatientRef string `db:"patient_ref" json:"patientRef,omitempty"`

	DiscountPercent types.Money `db:"discount_percent" json:"discount"`

	SubTotal       types.Money `db:"sub_total" json:"subTotal"`
	DiscountAmount types.Money `db:"discount_amount" json:"discountAmount"`
	TotalAmount    types.Money `db:"total_amount" json:"totalAmount"`

	PaidAmount      types.Money `db:"paid_amount" json:"paidAmount"`
	RemainingAmount types.Money `db:"remaining_amount" json:"remainingAmount"`

	Status InvoiceStatus `db:"status" json:"status"`

	// Voided marks a reversed invoice whose stock was credited back
	Voided bool `db:"voided" json:"voided"`

	Lines []Line `db:"-" json:"lines"`
}

// NewInvoice creates an empty invoice dated now.
func NewInvoice() *Invoice {
	return &Invoice{
		Document: entity.NewDocument(),
		Lines:    make([]Line, 0),
	}
}

// Validate implements entity.Validatable.
func (inv *Invoice) Validate(ctx context.Context) error {
	if err := inv.Document.Validate(ctx); err != nil {
		return err
	}

	if len(inv.Lines) == 0 {
		return apperror.NewValidation("at least one line is required").
			WithDetail("field", "lines")
	}

	if inv.PaidAmount.IsNegative() {
		return apperror.NewValidation("paid amount must not be negative").
			WithDetail("field", "paidAmount")
	}

	for _, line := range inv.Lines {
		if id.IsNil(line.BatchID) {
			return apperror.NewValidation("batch is required").
				WithDetail("field", "lines").
				WithDetail("lineNo", line.LineNo)
		}
		if line.TotalUnit.IsNegative() {
			return apperror.NewValidation("sold units must not be negative").
				WithDetail("field", "lines").
				WithDetail("lineNo", line.LineNo)
		}
	}

	return nil
}
