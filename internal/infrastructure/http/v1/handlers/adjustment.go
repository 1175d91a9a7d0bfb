package handlers

import (
	"github.com/gin-gonic/gin"

	"aushadhi/internal/core/apperror"
	"aushadhi/internal/core/id"
	"aushadhi/internal/domain/adjustments"
	"aushadhi/internal/infrastructure/http/v1/dto"
)

// AdjustmentHandler serves manual stock corrections.
type AdjustmentHandler struct {
	*BaseHandler
	service *adjustments.Service
}

// NewAdjustmentHandler creates a new adjustment handler.
func NewAdjustmentHandler(base *BaseHandler, service *adjustments.Service) *AdjustmentHandler {
	return &AdjustmentHandler{BaseHandler: base, service: service}
}

// Create handles POST /adjustments: applies a correction to one batch
// and appends an audit record.
func (h *AdjustmentHandler) Create(c *gin.Context) {
	var req dto.CreateAdjustmentRequest
	if !h.BindJSON(c, &req) {
		return
	}

	batchID, err := id.Parse(req.BatchID)
	if err != nil {
		h.Error(c, apperror.NewValidation("invalid batch id").WithCause(err))
		return
	}

	result, err := h.service.Apply(c.Request.Context(), batchID,
		req.TotalQuantity, adjustments.AdjustType(req.AdjustType), req.Reason)
	if err != nil {
		h.Error(c, err)
		return
	}

	h.OK(c, dto.AdjustmentResultResponse{
		Record:       dto.FromAdjustment(result.Record),
		NewRemaining: result.NewRemaining,
	})
}

// List handles GET /adjustments.
func (h *AdjustmentHandler) List(c *gin.Context) {
	var req dto.ListRequest
	if !h.BindQuery(c, &req) {
		return
	}

	result, err := h.service.List(c.Request.Context(), req.ToFilter())
	if err != nil {
		h.Error(c, err)
		return
	}

	h.OK(c, dto.NewListResponse(result, dto.FromAdjustments(result.Items)))
}
