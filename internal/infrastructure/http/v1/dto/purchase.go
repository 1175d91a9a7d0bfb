package dto

import (
	"time"

	"aushadhi/internal/core/id"
	"aushadhi/internal/core/types"
	"aushadhi/internal/domain/purchases"
	"aushadhi/internal/domain/tax"
)

// CreatePurchaseRequest for processing a purchase entry.
type CreatePurchaseRequest struct {
	ItemID             string         `json:"itemId" binding:"required,uuid"`
	BatchNumber        string         `json:"batchNumber" binding:"required"`
	TotalPurchasedUnit types.Quantity `json:"totalPurchasedUnit" binding:"required"`
	PricePerUnit       types.Money    `json:"pricePerUnit" binding:"required"`
	MRP                types.Money    `json:"mrp"`
	SellingPrice       types.Money    `json:"sellingPrice"`
	TaxType            string         `json:"taxType" binding:"required,oneof=noTax central state"`
	CGST               types.Money    `json:"cgst"`
	SGST               types.Money    `json:"sgst"`
	IGST               types.Money    `json:"igst"`
	Discount           types.Money    `json:"discount"`
	ManufacturingDate  time.Time      `json:"manufacturingDate"`
	ExpiryDate         time.Time      `json:"expiryDate"`
	Comment            string         `json:"comment"`
}

// ToInput converts the request to a processor input.
func (r CreatePurchaseRequest) ToInput() (purchases.Input, error) {
	itemID, err := id.Parse(r.ItemID)
	if err != nil {
		return purchases.Input{}, err
	}
	return purchases.Input{
		ItemID:             itemID,
		BatchNumber:        r.BatchNumber,
		TotalPurchasedUnit: r.TotalPurchasedUnit,
		PricePerUnit:       r.PricePerUnit,
		MRP:                r.MRP,
		SellingPrice:       r.SellingPrice,
		TaxType:            tax.Kind(r.TaxType),
		CGST:               r.CGST,
		SGST:               r.SGST,
		IGST:               r.IGST,
		DiscountPercent:    r.Discount,
		ManufacturingDate:  r.ManufacturingDate,
		ExpiryDate:         r.ExpiryDate,
		Comment:            r.Comment,
	}, nil
}

// PurchaseResponse contains purchase entry fields.
type PurchaseResponse struct {
	ID                 string         `json:"id"`
	Number             string         `json:"number"`
	Date               time.Time      `json:"date"`
	ItemID             string         `json:"itemId"`
	BatchID            string         `json:"batchId"`
	BatchNumber        string         `json:"batchNumber"`
	TotalPurchasedUnit types.Quantity `json:"totalPurchasedUnit"`
	TotalSubUnits      types.Quantity `json:"totalSubUnits"`
	PricePerUnit       types.Money    `json:"pricePerUnit"`
	MRP                types.Money    `json:"mrp"`
	SellingPrice       types.Money    `json:"sellingPrice"`
	TaxType            string         `json:"taxType"`
	CGST               types.Money    `json:"cgst"`
	SGST               types.Money    `json:"sgst"`
	IGST               types.Money    `json:"igst"`
	Discount           types.Money    `json:"discount"`
	TotalPrice         types.Money    `json:"totalPrice"`
	TaxableAmount      types.Money    `json:"taxableAmount"`
	TaxAmount          types.Money    `json:"taxAmount"`
	GrandTotal         types.Money    `json:"grandTotal"`
	ManufacturingDate  time.Time      `json:"manufacturingDate"`
	ExpiryDate         time.Time      `json:"expiryDate"`
	Comment            string         `json:"comment,omitempty"`
}

// FromPurchase creates PurchaseResponse from an entry.
func FromPurchase(e *purchases.Entry) PurchaseResponse {
	return PurchaseResponse{
		ID:                 e.ID.String(),
		Number:             e.Number,
		Date:               e.Date,
		ItemID:             e.ItemID.String(),
		BatchID:            e.BatchID.String(),
		BatchNumber:        e.BatchNumber,
		TotalPurchasedUnit: e.TotalPurchasedUnit,
		TotalSubUnits:      e.TotalSubUnits,
		PricePerUnit:       e.PricePerUnit,
		MRP:                e.MRP,
		SellingPrice:       e.SellingPrice,
		TaxType:            string(e.TaxType),
		CGST:               e.CGST,
		SGST:               e.SGST,
		IGST:               e.IGST,
		Discount:           e.DiscountPercent,
		TotalPrice:         e.TotalPrice,
		TaxableAmount:      e.TaxableAmount,
		TaxAmount:          e.TaxAmount,
		GrandTotal:         e.GrandTotal,
		ManufacturingDate:  e.ManufacturingDate,
		ExpiryDate:         e.ExpiryDate,
		Comment:            e.Comment,
	}
}

// FromPurchases maps a slice of entries.
func FromPurchases(entries []*purchases.Entry) []PurchaseResponse {
	out := make([]PurchaseResponse, 0, len(entries))
	for _, e := range entries {
		out = append(out, FromPurchase(e))
	}
	return out
}

// PurchaseResultResponse is the processing result.
type PurchaseResultResponse struct {
	Entry        PurchaseResponse `json:"entry"`
	Batch        BatchResponse    `json:"batch"`
	BatchCreated bool             `json:"batchCreated"`
}
