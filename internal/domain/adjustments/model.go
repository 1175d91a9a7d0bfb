// Package adjustments provides manual stock corrections: adding found
// stock or writing off damaged/expired stock against a batch. Every
// applied adjustment leaves an append-only audit record.
package adjustments

import (
	"context"
	"time"

	"aushadhi/internal/core/apperror"
	"aushadhi/internal/core/entity"
	"aushadhi/internal/core/id"
	"aushadhi/internal/core/types"
)

// AdjustType is the direction of a manual stock adjustment.
type AdjustType string

const (
	AdjustAdd    AdjustType = "add"
	AdjustReduce AdjustType = "reduce"
)

// Adjustment is the audit record of one applied stock correction.
// Records carry the literal quantity and type of the call that created
// them and are never mutated or deleted afterwards.
type Adjustment struct {
	entity.Document

	ItemID  id.ID `db:"item_id" json:"itemId"`
	BatchID id.ID `db:"batch_id" json:"batchId"`

	// BatchNumber is denormalized for audit readability
	BatchNumber string `db:"batch_number" json:"batchNumber"`

	// TotalQuantity is the adjusted amount in sub-units, always positive;
	// the direction lives in AdjustType
	TotalQuantity types.Quantity `db:"total_quantity" json:"totalQuantity"`

	AdjustType AdjustType `db:"adjust_type" json:"adjustType"`

	// Reason is optional free text ("damaged in transit", "stock count")
	Reason string `db:"reason" json:"reason,omitempty"`
}

// NewAdjustment creates an adjustment record dated now.
func NewAdjustment(batchID id.ID, subUnits types.Quantity, adjustType AdjustType, reason string) *Adjustment {
	a := &Adjustment{
		Document:      entity.NewDocument(),
		BatchID:       batchID,
		TotalQuantity: subUnits,
		AdjustType:    adjustType,
		Reason:        reason,
	}
	a.Date = time.Now().UTC()
	return a
}

// Validate implements entity.Validatable.
func (a *Adjustment) Validate(ctx context.Context) error {
	if err := a.Document.Validate(ctx); err != nil {
		return err
	}

	if id.IsNil(a.BatchID) {
		return apperror.NewValidation("batch is required").
			WithDetail("field", "batchId")
	}

	if !a.TotalQuantity.IsPositive() {
		return apperror.NewValidation("adjustment quantity must be positive").
			WithDetail("field", "totalQuantity").
			WithDetail("value", a.TotalQuantity.String())
	}

	switch a.AdjustType {
	case AdjustAdd, AdjustReduce:
	default:
		return apperror.NewValidation("invalid adjustment type").
			WithDetail("field", "adjustType").
			WithDetail("value", string(a.AdjustType))
	}

	return nil
}
