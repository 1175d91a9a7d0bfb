package handlers

import (
	"github.com/gin-gonic/gin"

	"aushadhi/internal/core/apperror"
	"aushadhi/internal/domain/sales"
	"aushadhi/internal/infrastructure/http/v1/dto"
)

// SaleHandler serves sale invoices.
type SaleHandler struct {
	*BaseHandler
	builder *sales.Builder
}

// NewSaleHandler creates a new sale handler.
func NewSaleHandler(base *BaseHandler, builder *sales.Builder) *SaleHandler {
	return &SaleHandler{BaseHandler: base, builder: builder}
}

// Create handles POST /sales: commits a multi-line sale.
func (h *SaleHandler) Create(c *gin.Context) {
	var req dto.CreateSaleRequest
	if !h.BindJSON(c, &req) {
		return
	}

	input, err := req.ToInput()
	if err != nil {
		h.Error(c, apperror.NewValidation("invalid batch id").WithCause(err))
		return
	}

	result, err := h.builder.Build(c.Request.Context(), input)
	if err != nil {
		h.Error(c, err)
		return
	}

	h.OK(c, dto.SaleResultResponse{
		Sale:           dto.FromInvoice(result.Invoice),
		ExpiredBatches: result.ExpiredBatches,
	})
}

// Get handles GET /sales/:id.
func (h *SaleHandler) Get(c *gin.Context) {
	invoiceID, ok := h.ParseID(c, "id")
	if !ok {
		return
	}

	inv, err := h.builder.GetByID(c.Request.Context(), invoiceID)
	if err != nil {
		h.Error(c, err)
		return
	}

	h.OK(c, dto.FromInvoice(inv))
}

// Void handles POST /sales/:id/void: reverses a committed sale,
// crediting stock back to every referenced batch.
func (h *SaleHandler) Void(c *gin.Context) {
	invoiceID, ok := h.ParseID(c, "id")
	if !ok {
		return
	}

	inv, err := h.builder.Void(c.Request.Context(), invoiceID)
	if err != nil {
		h.Error(c, err)
		return
	}

	h.OK(c, dto.FromInvoice(inv))
}

// List handles GET /sales.
func (h *SaleHandler) List(c *gin.Context) {
	var req dto.ListSalesRequest
	if !h.BindQuery(c, &req) {
		return
	}

	filter := sales.InvoiceFilter{
		ListFilter: req.ToFilter(),
		DateFrom:   req.DateFrom,
		DateTo:     req.DateTo,
	}
	if req.Status != "" {
		status := sales.InvoiceStatus(req.Status)
		filter.Status = &status
	}

	result, err := h.builder.List(c.Request.Context(), filter)
	if err != nil {
		h.Error(c, err)
		return
	}

	h.OK(c, dto.NewListResponse(result, dto.FromInvoices(result.Items)))
}
