package handler

import (
	"github.com/gin-gonic/gin"

	"paygate/internal/adapter/http/dto"
	"paygate/internal/adapter/http/middleware"
	"paygate/internal/core/ports"
	"paygate/pkg/apperror"
	"paygate/pkg/response"
)

// RefundHandler handles refund endpoints.
type RefundHandler struct {
	refundSvc ports.RefundService
}

// NewRefundHandler creates a new RefundHandler.
func NewRefundHandler(refundSvc ports.RefundService) *RefundHandler {
	return &RefundHandler{refundSvc: refundSvc}
}

// Create handles POST /api/v1/payments/:id/refunds.
func (h *RefundHandler) Create(c *gin.Context) {
	var req dto.CreateRefundRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, apperror.BadRequest(err.Error()))
		return
	}

	refund, err := h.refundSvc.Create(c.Request.Context(), ports.CreateRefundInput{
		MerchantID: middleware.MerchantID(c),
		PaymentID:  c.Param("id"),
		Amount:     req.Amount,
		Reason:     req.Reason,
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Created(c, refund)
}

// ListByPayment handles GET /api/v1/payments/:id/refunds.
func (h *RefundHandler) ListByPayment(c *gin.Context) {
	limit, offset := pagination(c)
	refunds, total, err := h.refundSvc.ListByPayment(c.Request.Context(), middleware.MerchantID(c), c.Param("id"), limit, offset)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.List(c, refunds, total, limit, offset)
}

// Get handles GET /api/v1/refunds/:id.
func (h *RefundHandler) Get(c *gin.Context) {
	refund, err := h.refundSvc.Get(c.Request.Context(), middleware.MerchantID(c), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, refund)
}

// List handles GET /api/v1/refunds.
func (h *RefundHandler) List(c *gin.Context) {
	limit, offset := pagination(c)
	refunds, total, err := h.refundSvc.List(c.Request.Context(), middleware.MerchantID(c), limit, offset)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.List(c, refunds, total, limit, offset)
}
