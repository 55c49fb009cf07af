package handler

import (
	"time"

	"github.com/gin-gonic/gin"

	"paygate/internal/adapter/http/dto"
	"paygate/internal/adapter/http/middleware"
	"paygate/internal/core/domain"
	"paygate/internal/core/ports"
	"paygate/pkg/apperror"
	"paygate/pkg/response"
)

// MerchantHandler handles the authenticated merchant's account endpoints.
type MerchantHandler struct {
	merchantSvc ports.MerchantService
}

// NewMerchantHandler creates a new MerchantHandler.
func NewMerchantHandler(merchantSvc ports.MerchantService) *MerchantHandler {
	return &MerchantHandler{merchantSvc: merchantSvc}
}

// Profile handles GET /api/v1/merchants/profile.
func (h *MerchantHandler) Profile(c *gin.Context) {
	merchant, err := h.merchantSvc.Profile(c.Request.Context(), middleware.MerchantID(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, toProfileResponse(merchant))
}

// UpdateWebhook handles PUT /api/v1/merchants/webhook.
func (h *MerchantHandler) UpdateWebhook(c *gin.Context) {
	var req dto.UpdateWebhookRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, apperror.BadRequest(err.Error()))
		return
	}

	merchant, err := h.merchantSvc.UpdateWebhookURL(c.Request.Context(), middleware.MerchantID(c), req.WebhookURL)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, toProfileResponse(merchant))
}

// RegenerateSecret handles POST /api/v1/merchants/webhook/regenerate-secret.
func (h *MerchantHandler) RegenerateSecret(c *gin.Context) {
	merchant, err := h.merchantSvc.RegenerateWebhookSecret(c.Request.Context(), middleware.MerchantID(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, toProfileResponse(merchant))
}

// TestWebhook handles POST /api/v1/merchants/webhook/test.
func (h *MerchantHandler) TestWebhook(c *gin.Context) {
	log, err := h.merchantSvc.SendTestWebhook(c.Request.Context(), middleware.MerchantID(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, log)
}

func toProfileResponse(m *domain.Merchant) dto.MerchantProfileResponse {
	return dto.MerchantProfileResponse{
		ID:            m.ID.String(),
		Name:          m.Name,
		Email:         m.Email,
		APIKey:        m.APIKey,
		WebhookURL:    m.WebhookURL,
		WebhookSecret: m.WebhookSecret,
		CreatedAt:     m.CreatedAt.Format(time.RFC3339),
		UpdatedAt:     m.UpdatedAt.Format(time.RFC3339),
	}
}
