package handler

import (
	"github.com/gin-gonic/gin"

	"paygate/internal/adapter/http/dto"
	"paygate/internal/adapter/http/middleware"
	"paygate/internal/core/ports"
	"paygate/pkg/apperror"
	"paygate/pkg/response"
)

// OrderHandler handles order endpoints.
type OrderHandler struct {
	orderSvc ports.OrderService
}

// NewOrderHandler creates a new OrderHandler.
func NewOrderHandler(orderSvc ports.OrderService) *OrderHandler {
	return &OrderHandler{orderSvc: orderSvc}
}

// Create handles POST /api/v1/orders.
func (h *OrderHandler) Create(c *gin.Context) {
	var req dto.CreateOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, apperror.BadRequest(err.Error()))
		return
	}

	order, err := h.orderSvc.Create(c.Request.Context(), ports.CreateOrderInput{
		MerchantID: middleware.MerchantID(c),
		Amount:     req.Amount,
		Currency:   req.Currency,
		Receipt:    req.Receipt,
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Created(c, order)
}

// Get handles GET /api/v1/orders/:id.
func (h *OrderHandler) Get(c *gin.Context) {
	order, err := h.orderSvc.Get(c.Request.Context(), middleware.MerchantID(c), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, order)
}

// List handles GET /api/v1/orders.
func (h *OrderHandler) List(c *gin.Context) {
	limit, offset := pagination(c)
	orders, total, err := h.orderSvc.List(c.Request.Context(), middleware.MerchantID(c), limit, offset)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.List(c, orders, total, limit, offset)
}
