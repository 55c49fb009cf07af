package http

import (
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"paygate/internal/adapter/http/handler"
	"paygate/internal/adapter/http/middleware"
	"paygate/internal/core/ports"
)

// RouterDeps holds all dependencies needed to set up routes.
type RouterDeps struct {
	OrderSvc       ports.OrderService
	PaymentSvc     ports.PaymentService
	RefundSvc      ports.RefundService
	MerchantSvc    ports.MerchantService
	WebhookSvc     ports.WebhookService
	MerchantRepo   ports.MerchantRepository
	HashSvc        ports.HashService
	Queue          ports.JobQueue
	HealthCheckers []ports.HealthChecker
	Logger         zerolog.Logger
}

// SetupRouter initialises the Gin engine with all routes and middleware.
func SetupRouter(deps RouterDeps) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)
	r := gin.New()

	r.Use(middleware.Recovery(deps.Logger))
	r.Use(middleware.RequestLogger(deps.Logger))
	r.Use(middleware.CORS())

	// Deep health check: verifies PostgreSQL + Redis.
	r.GET("/health", handler.HealthCheck(deps.HealthCheckers...))

	v1 := r.Group("/api/v1")

	// Queue statistics for test harnesses. Unauthenticated: counts carry
	// no merchant data.
	jobsHandler := handler.NewJobsHandler(deps.Queue)
	v1.GET("/test/jobs/status", jobsHandler.Status)

	// Everything else requires the api_key + api_secret header pair.
	auth := middleware.APIKeyAuth(deps.MerchantRepo, deps.HashSvc)

	orderHandler := handler.NewOrderHandler(deps.OrderSvc)
	orders := v1.Group("/orders", auth)
	{
		orders.POST("", orderHandler.Create)
		orders.GET("", orderHandler.List)
		orders.GET("/:id", orderHandler.Get)
	}

	paymentHandler := handler.NewPaymentHandler(deps.PaymentSvc)
	refundHandler := handler.NewRefundHandler(deps.RefundSvc)
	payments := v1.Group("/payments", auth)
	{
		payments.POST("", paymentHandler.Create)
		payments.GET("", paymentHandler.List)
		payments.GET("/:id", paymentHandler.Get)
		payments.POST("/:id/capture", paymentHandler.Capture)
		payments.POST("/:id/refunds", refundHandler.Create)
		payments.GET("/:id/refunds", refundHandler.ListByPayment)
	}

	refunds := v1.Group("/refunds", auth)
	{
		refunds.GET("", refundHandler.List)
		refunds.GET("/:id", refundHandler.Get)
	}

	webhookHandler := handler.NewWebhookHandler(deps.WebhookSvc)
	webhooks := v1.Group("/webhooks", auth)
	{
		webhooks.GET("", webhookHandler.List)
		webhooks.GET("/:id", webhookHandler.Get)
		webhooks.POST("/:id/retry", webhookHandler.Retry)
	}

	merchantHandler := handler.NewMerchantHandler(deps.MerchantSvc)
	merchants := v1.Group("/merchants", auth)
	{
		merchants.GET("/profile", merchantHandler.Profile)
		merchants.PUT("/webhook", merchantHandler.UpdateWebhook)
		merchants.POST("/webhook/regenerate-secret", merchantHandler.RegenerateSecret)
		merchants.POST("/webhook/test", merchantHandler.TestWebhook)
	}

	return r
}
