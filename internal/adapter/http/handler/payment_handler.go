package handler

import (
	"github.com/gin-gonic/gin"

	"paygate/internal/adapter/http/dto"
	"paygate/internal/adapter/http/middleware"
	"paygate/internal/core/domain"
	"paygate/internal/core/ports"
	"paygate/pkg/apperror"
	"paygate/pkg/response"
)

// PaymentHandler handles payment endpoints.
type PaymentHandler struct {
	paymentSvc ports.PaymentService
}

// NewPaymentHandler creates a new PaymentHandler.
func NewPaymentHandler(paymentSvc ports.PaymentService) *PaymentHandler {
	return &PaymentHandler{paymentSvc: paymentSvc}
}

// Create handles POST /api/v1/payments. The response body comes back from
// the service as raw bytes so a replayed Idempotency-Key returns exactly
// what the first request returned.
func (h *PaymentHandler) Create(c *gin.Context) {
	var req dto.CreatePaymentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, apperror.BadRequest(err.Error()))
		return
	}

	_, body, err := h.paymentSvc.Create(c.Request.Context(), ports.CreatePaymentInput{
		MerchantID:     middleware.MerchantID(c),
		OrderID:        req.OrderID,
		Method:         domain.PaymentMethod(req.Method),
		VPA:            req.VPA,
		CardNumber:     req.CardNumber,
		CardExpiry:     req.CardExpiry,
		CardCVV:        req.CardCVV,
		IdempotencyKey: c.GetHeader("Idempotency-Key"),
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	response.CreatedRaw(c, body)
}

// Get handles GET /api/v1/payments/:id.
func (h *PaymentHandler) Get(c *gin.Context) {
	payment, err := h.paymentSvc.Get(c.Request.Context(), middleware.MerchantID(c), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, payment)
}

// List handles GET /api/v1/payments.
func (h *PaymentHandler) List(c *gin.Context) {
	limit, offset := pagination(c)
	payments, total, err := h.paymentSvc.List(c.Request.Context(), middleware.MerchantID(c), limit, offset)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.List(c, payments, total, limit, offset)
}

// Capture handles POST /api/v1/payments/:id/capture. The request body is
// optional; an amount, if present, is ignored because capture always covers
// the full payment.
func (h *PaymentHandler) Capture(c *gin.Context) {
	var req dto.CapturePaymentRequest
	_ = c.ShouldBindJSON(&req)

	payment, err := h.paymentSvc.Capture(c.Request.Context(), middleware.MerchantID(c), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, payment)
}
