package dto

import (
	"time"

	"aushadhi/internal/core/id"
	"aushadhi/internal/core/types"
	"aushadhi/internal/domain/sales"
)

// SaleLineRequest is one requested sale line.
type SaleLineRequest struct {
	BatchID   string         `json:"batchId" binding:"required,uuid"`
	TotalUnit types.Quantity `json:"totalUnit" binding:"required"`
}

// CreateSaleRequest for committing a multi-line sale.
type CreateSaleRequest struct {
	Lines      []SaleLineRequest `json:"lines" binding:"required,min=1,dive"`
	Discount   types.Money       `json:"discount"`
	PaidAmount types.Money       `json:"paidAmount"`
	PatientRef string            `json:"patientRef"`
	Comment    string            `json:"comment"`
}

// ToInput converts the request to a builder input.
func (r CreateSaleRequest) ToInput() (sales.BuildInput, error) {
	input := sales.BuildInput{
		DiscountPercent: r.Discount,
		PaidAmount:      r.PaidAmount,
		PatientRef:      r.PatientRef,
		Comment:         r.Comment,
		Lines:           make([]sales.LineInput, 0, len(r.Lines)),
	}
	for _, l := range r.Lines {
		batchID, err := id.Parse(l.BatchID)
		if err != nil {
			return input, err
		}
		input.Lines = append(input.Lines, sales.LineInput{
			BatchID:   batchID,
			TotalUnit: l.TotalUnit,
		})
	}
	return input, nil
}

// SaleLineResponse is one committed invoice line.
type SaleLineResponse struct {
	LineID               string         `json:"lineId"`
	LineNo               int            `json:"lineNo"`
	BatchID              string         `json:"batchId"`
	ItemID               string         `json:"itemId"`
	SellingUnitType      string         `json:"sellingUnitType"`
	TotalUnit            types.Quantity `json:"totalUnit"`
	TotalQuantityInAUnit int64          `json:"totalQuantityInAUnit"`
	Price                types.Money    `json:"price"`
	TotalSubUnits        types.Quantity `json:"totalSubUnits"`
	TotalPrice           types.Money    `json:"totalPrice"`
}

// SaleResponse contains invoice fields.
type SaleResponse struct {
	ID              string             `json:"id"`
	Number          string             `json:"number"`
	Date            time.Time          `json:"date"`
	PatientRef      string             `json:"patientRef,omitempty"`
	Discount        types.Money        `json:"discount"`
	SubTotal        types.Money        `json:"subTotal"`
	DiscountAmount  types.Money        `json:"discountAmount"`
	TotalAmount     types.Money        `json:"totalAmount"`
	PaidAmount      types.Money        `json:"paidAmount"`
	RemainingAmount types.Money        `json:"remainingAmount"`
	Status          string             `json:"status"`
	Voided          bool               `json:"voided"`
	Comment         string             `json:"comment,omitempty"`
	Lines           []SaleLineResponse `json:"lines,omitempty"`
}

// FromInvoice creates SaleResponse from an invoice.
func FromInvoice(inv *sales.Invoice) SaleResponse {
	resp := SaleResponse{
		ID:              inv.ID.String(),
		Number:          inv.Number,
		Date:            inv.Date,
		PatientRef:      inv.PatientRef,
		Discount:        inv.DiscountPercent,
		SubTotal:        inv.SubTotal,
		DiscountAmount:  inv.DiscountAmount,
		TotalAmount:     inv.TotalAmount,
		PaidAmount:      inv.PaidAmount,
		RemainingAmount: inv.RemainingAmount,
		Status:          string(inv.Status),
		Voided:          inv.Voided,
		Comment:         inv.Comment,
	}
	for _, l := range inv.Lines {
		resp.Lines = append(resp.Lines, SaleLineResponse{
			LineID:               l.LineID.String(),
			LineNo:               l.LineNo,
			BatchID:              l.BatchID.String(),
			ItemID:               l.ItemID.String(),
			SellingUnitType:      l.SellingUnitType,
			TotalUnit:            l.TotalUnit,
			TotalQuantityInAUnit: l.SubUnitsPerUnit,
			Price:                l.Price,
			TotalSubUnits:        l.TotalSubUnits,
			TotalPrice:           l.TotalPrice,
		})
	}
	return resp
}

// FromInvoices maps a slice of invoices (headers only).
func FromInvoices(invoices []*sales.Invoice) []SaleResponse {
	out := make([]SaleResponse, 0, len(invoices))
	for _, inv := range invoices {
		out = append(out, FromInvoice(inv))
	}
	return out
}

// SaleResultResponse is the commit result with warnings.
type SaleResultResponse struct {
	Sale           SaleResponse `json:"sale"`
	ExpiredBatches []string     `json:"expiredBatches,omitempty"`
}

// ListSalesRequest contains sale list query parameters.
type ListSalesRequest struct {
	ListRequest

	Status   string     `form:"status" binding:"omitempty,oneof=paid pending"`
	DateFrom *time.Time `form:"dateFrom" time_format:"2006-01-02"`
	DateTo   *time.Time `form:"dateTo" time_format:"2006-01-02"`
}
