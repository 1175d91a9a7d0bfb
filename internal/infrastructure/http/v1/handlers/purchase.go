package handlers

import (
	"github.com/gin-gonic/gin"

	"aushadhi/internal/core/apperror"
	"aushadhi/internal/domain/purchases"
	"aushadhi/internal/infrastructure/http/v1/dto"
)

// PurchaseHandler serves purchase entries.
type PurchaseHandler struct {
	*BaseHandler
	processor *purchases.Processor
}

// NewPurchaseHandler creates a new purchase handler.
func NewPurchaseHandler(base *BaseHandler, processor *purchases.Processor) *PurchaseHandler {
	return &PurchaseHandler{BaseHandler: base, processor: processor}
}

// Create handles POST /purchases: processes a purchase entry, creating
// or topping up the referenced batch.
func (h *PurchaseHandler) Create(c *gin.Context) {
	var req dto.CreatePurchaseRequest
	if !h.BindJSON(c, &req) {
		return
	}

	input, err := req.ToInput()
	if err != nil {
		h.Error(c, apperror.NewValidation("invalid item id").WithCause(err))
		return
	}

	result, err := h.processor.Process(c.Request.Context(), input)
	if err != nil {
		h.Error(c, err)
		return
	}

	h.OK(c, dto.PurchaseResultResponse{
		Entry:        dto.FromPurchase(result.Entry),
		Batch:        dto.FromBatch(result.Batch),
		BatchCreated: result.BatchCreated,
	})
}

// Get handles GET /purchases/:id.
func (h *PurchaseHandler) Get(c *gin.Context) {
	entryID, ok := h.ParseID(c, "id")
	if !ok {
		return
	}

	entry, err := h.processor.GetByID(c.Request.Context(), entryID)
	if err != nil {
		h.Error(c, err)
		return
	}

	h.OK(c, dto.FromPurchase(entry))
}

// List handles GET /purchases.
func (h *PurchaseHandler) List(c *gin.Context) {
	var req dto.ListRequest
	if !h.BindQuery(c, &req) {
		return
	}

	result, err := h.processor.List(c.Request.Context(), req.ToFilter())
	if err != nil {
		h.Error(c, err)
		return
	}

	h.OK(c, dto.NewListResponse(result, dto.FromPurchases(result.Items)))
}
