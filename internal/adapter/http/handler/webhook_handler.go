package handler

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"paygate/internal/adapter/http/middleware"
	"paygate/internal/core/ports"
	"paygate/pkg/apperror"
	"paygate/pkg/response"
)

// WebhookHandler exposes the merchant's delivery log and manual redelivery.
type WebhookHandler struct {
	webhookSvc ports.WebhookService
}

// NewWebhookHandler creates a new WebhookHandler.
func NewWebhookHandler(webhookSvc ports.WebhookService) *WebhookHandler {
	return &WebhookHandler{webhookSvc: webhookSvc}
}

// List handles GET /api/v1/webhooks.
func (h *WebhookHandler) List(c *gin.Context) {
	limit, offset := pagination(c)
	logs, total, err := h.webhookSvc.List(c.Request.Context(), middleware.MerchantID(c), limit, offset)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.List(c, logs, total, limit, offset)
}

// Get handles GET /api/v1/webhooks/:id.
func (h *WebhookHandler) Get(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.Error(c, apperror.NotFound("Webhook log"))
		return
	}
	log, err := h.webhookSvc.Get(c.Request.Context(), middleware.MerchantID(c), id)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, log)
}

// Retry handles POST /api/v1/webhooks/:id/retry.
func (h *WebhookHandler) Retry(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.Error(c, apperror.NotFound("Webhook log"))
		return
	}
	log, err := h.webhookSvc.Retry(c.Request.Context(), middleware.MerchantID(c), id)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, log)
}
