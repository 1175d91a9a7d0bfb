package dto

import (
	"time"

	"aushadhi/internal/core/types"
	"aushadhi/internal/domain/adjustments"
)

// CreateAdjustmentRequest for a manual stock correction.
type CreateAdjustmentRequest struct {
	BatchID       string         `json:"batchId" binding:"required,uuid"`
	TotalQuantity types.Quantity `json:"totalQuantity" binding:"required"`
	AdjustType    string         `json:"adjustType" binding:"required,oneof=add reduce"`
	Reason        string         `json:"reason"`
}

// AdjustmentResponse contains adjustment record fields.
type AdjustmentResponse struct {
	ID            string         `json:"id"`
	Number        string         `json:"number"`
	Date          time.Time      `json:"date"`
	ItemID        string         `json:"itemId"`
	BatchID       string         `json:"batchId"`
	BatchNumber   string         `json:"batchNumber"`
	TotalQuantity types.Quantity `json:"totalQuantity"`
	AdjustType    string         `json:"adjustType"`
	Reason        string         `json:"reason,omitempty"`
}

// FromAdjustment creates AdjustmentResponse from a record.
func FromAdjustment(a *adjustments.Adjustment) AdjustmentResponse {
	return AdjustmentResponse{
		ID:            a.ID.String(),
		Number:        a.Number,
		Date:          a.Date,
		ItemID:        a.ItemID.String(),
		BatchID:       a.BatchID.String(),
		BatchNumber:   a.BatchNumber,
		TotalQuantity: a.TotalQuantity,
		AdjustType:    string(a.AdjustType),
		Reason:        a.Reason,
	}
}

// FromAdjustments maps a slice of records.
func FromAdjustments(items []*adjustments.Adjustment) []AdjustmentResponse {
	out := make([]AdjustmentResponse, 0, len(items))
	for _, a := range items {
		out = append(out, FromAdjustment(a))
	}
	return out
}

// AdjustmentResultResponse is the apply result.
type AdjustmentResultResponse struct {
	Record       AdjustmentResponse `json:"record"`
	NewRemaining types.Quantity     `json:"newRemaining"`
}
