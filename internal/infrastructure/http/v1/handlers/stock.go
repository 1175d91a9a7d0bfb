package handlers

import (
	"github.com/gin-gonic/gin"

	"aushadhi/internal/core/id"
	"aushadhi/internal/domain/adjustments"
	"aushadhi/internal/domain/stock"
	"aushadhi/internal/infrastructure/http/v1/dto"
)

// StockHandler serves stock batches and their adjustment history.
type StockHandler struct {
	*BaseHandler
	batches     stock.Repository
	adjustments *adjustments.Service
}

// NewStockHandler creates a new stock handler.
func NewStockHandler(base *BaseHandler, batches stock.Repository, adj *adjustments.Service) *StockHandler {
	return &StockHandler{BaseHandler: base, batches: batches, adjustments: adj}
}

// Get handles GET /batches/:id.
func (h *StockHandler) Get(c *gin.Context) {
	batchID, ok := h.ParseID(c, "id")
	if !ok {
		return
	}

	b, err := h.batches.GetByID(c.Request.Context(), batchID)
	if err != nil {
		h.Error(c, err)
		return
	}

	h.OK(c, dto.FromBatch(b))
}

// List handles GET /batches.
func (h *StockHandler) List(c *gin.Context) {
	var req dto.ListBatchesRequest
	if !h.BindQuery(c, &req) {
		return
	}

	filter := stock.BatchFilter{
		ListFilter:     req.ToFilter(),
		ExcludeEmpty:   req.ExcludeEmpty,
		ExpiringBefore: req.ExpiringBefore,
	}
	if req.ItemID != "" {
		itemID, err := id.Parse(req.ItemID)
		if err != nil {
			h.Error(c, err)
			return
		}
		filter.ItemID = &itemID
	}

	result, err := h.batches.List(c.Request.Context(), filter)
	if err != nil {
		h.Error(c, err)
		return
	}

	h.OK(c, dto.NewListResponse(result, dto.FromBatches(result.Items)))
}

// Adjustments handles GET /batches/:id/adjustments.
// The full correction history of a batch, oldest first.
func (h *StockHandler) Adjustments(c *gin.Context) {
	batchID, ok := h.ParseID(c, "id")
	if !ok {
		return
	}

	records, err := h.adjustments.ListByBatch(c.Request.Context(), batchID)
	if err != nil {
		h.Error(c, err)
		return
	}

	h.OK(c, dto.FromAdjustments(records))
}
