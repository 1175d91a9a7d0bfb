package dto

import (
	"time"

	"aushadhi/internal/core/types"
	"aushadhi/internal/domain/stock"
)

// BatchResponse contains stock batch fields.
type BatchResponse struct {
	ID                string         `json:"id"`
	ItemID            string         `json:"itemId"`
	BatchNumber       string         `json:"batchNumber"`
	TotalQuantity     types.Quantity `json:"totalQuantity"`
	SellingPrice      types.Money    `json:"sellingPrice"`
	MRP               types.Money    `json:"mrp"`
	ManufacturingDate time.Time      `json:"manufacturingDate"`
	ExpiryDate        time.Time      `json:"expiryDate"`
	PurchaseDate      time.Time      `json:"purchaseDate"`
	Expired           bool           `json:"expired"`
	Version           int            `json:"version"`
}

// FromBatch creates BatchResponse from a batch.
func FromBatch(b *stock.Batch) BatchResponse {
	return BatchResponse{
		ID:                b.ID.String(),
		ItemID:            b.ItemID.String(),
		BatchNumber:       b.BatchNumber,
		TotalQuantity:     b.TotalQuantity,
		SellingPrice:      b.SellingPrice,
		MRP:               b.MRP,
		ManufacturingDate: b.ManufacturingDate,
		ExpiryDate:        b.ExpiryDate,
		PurchaseDate:      b.PurchaseDate,
		Expired:           b.IsExpired(time.Now()),
		Version:           b.Version,
	}
}

// FromBatches maps a slice of batches.
func FromBatches(batches []*stock.Batch) []BatchResponse {
	out := make([]BatchResponse, 0, len(batches))
	for _, b := range batches {
		out = append(out, FromBatch(b))
	}
	return out
}

// ListBatchesRequest contains batch list query parameters.
type ListBatchesRequest struct {
	ListRequest

	ItemID         string     `form:"itemId" binding:"omitempty,uuid"`
	ExcludeEmpty   bool       `form:"excludeEmpty"`
	ExpiringBefore *time.Time `form:"expiringBefore" time_format:"2006-01-02"`
}
