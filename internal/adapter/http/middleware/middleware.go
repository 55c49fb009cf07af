package middleware

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"paygate/internal/core/ports"
	"paygate/pkg/apperror"
	"paygate/pkg/response"
)

// merchantIDKey is the gin context key holding the authenticated merchant.
const merchantIDKey = "merchantID"

// MerchantID returns the authenticated merchant's id. Handlers behind
// APIKeyAuth can rely on it being set.
func MerchantID(c *gin.Context) uuid.UUID {
	id, _ := c.Get(merchantIDKey)
	mid, _ := id.(uuid.UUID)
	return mid
}

// APIKeyAuth authenticates requests by the X-Api-Key and X-Api-Secret
// header pair. A missing key, unknown key, or mismatched secret all
// surface as the same 401.
func APIKeyAuth(merchants ports.MerchantRepository, hasher ports.HashService) gin.HandlerFunc {
	return func(c *gin.Context) {
		apiKey := c.GetHeader("X-Api-Key")
		apiSecret := c.GetHeader("X-Api-Secret")
		if apiKey == "" || apiSecret == "" {
			response.Error(c, apperror.Unauthorized())
			c.Abort()
			return
		}

		merchant, err := merchants.GetByAPIKey(c.Request.Context(), apiKey)
		if err != nil {
			response.Error(c, apperror.Internal(err))
			c.Abort()
			return
		}
		if merchant == nil {
			response.Error(c, apperror.Unauthorized())
			c.Abort()
			return
		}

		ok, err := hasher.Verify(apiSecret, merchant.APISecretHash)
		if err != nil {
			response.Error(c, apperror.Internal(err))
			c.Abort()
			return
		}
		if !ok {
			response.Error(c, apperror.Unauthorized())
			c.Abort()
			return
		}

		c.Set(merchantIDKey, merchant.ID)
		c.Next()
	}
}

// RequestLogger logs one line per request.
func RequestLogger(log zerolog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		log.Info().
			Str("method", c.Request.Method).
			Str("path", c.Request.URL.Path).
			Int("status", c.Writer.Status()).
			Dur("latency", time.Since(start)).
			Str("client_ip", c.ClientIP()).
			Msg("request")
	}
}

// Recovery converts panics into the standard 500 envelope.
func Recovery(log zerolog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			if r := recover(); r != nil {
				log.Error().Interface("panic", r).Str("path", c.Request.URL.Path).Msg("panic recovered")
				response.Error(c, apperror.New(apperror.CodeInternal, "Internal server error", http.StatusInternalServerError))
				c.Abort()
			}
		}()
		c.Next()
	}
}

// CORS is fully open; checkout pages embed the API from arbitrary origins.
func CORS() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Header("Access-Control-Allow-Origin", "*")
		c.Header("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		c.Header("Access-Control-Allow-Headers", "Content-Type, X-Api-Key, X-Api-Secret, Idempotency-Key")

		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}
		c.Next()
	}
}
