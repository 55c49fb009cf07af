package handler

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"paygate/internal/adapter/http/dto"
	"paygate/internal/core/domain"
	"paygate/internal/core/ports"
	"paygate/internal/core/ports/mocks"
	"paygate/pkg/apperror"
)

func init() {
	gin.SetMode(gin.TestMode)
}

// testContext builds a gin context with an authenticated merchant already
// set, the way APIKeyAuth leaves it.
func testContext(t *testing.T, merchantID uuid.UUID, method, target string, body any) (*gin.Context, *httptest.ResponseRecorder) {
	t.Helper()
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)

	var reader *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}
	c.Request = httptest.NewRequest(method, target, reader)
	c.Request.Header.Set("Content-Type", "application/json")
	c.Set("merchantID", merchantID)
	return c, w
}

// --- Order Handler ---

func TestOrderCreate_Success(t *testing.T) {
	ctrl := gomock.NewController(t)
	mockOrders := mocks.NewMockOrderService(ctrl)
	h := NewOrderHandler(mockOrders)

	merchantID := uuid.New()
	mockOrders.EXPECT().Create(gomock.Any(), ports.CreateOrderInput{
		MerchantID: merchantID,
		Amount:     50000,
		Currency:   "INR",
	}).Return(&domain.Order{
		ID: "order_abc", Amount: 50000, Currency: "INR",
		Status: domain.OrderStatusCreated, CreatedAt: time.Now(),
	}, nil)

	c, w := testContext(t, merchantID, http.MethodPost, "/api/v1/orders",
		dto.CreateOrderRequest{Amount: 50000, Currency: "INR"})
	h.Create(c)

	assert.Equal(t, http.StatusCreated, w.Code)
	var resp map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "order_abc", resp["id"])
	assert.Equal(t, "created", resp["status"])
}

func TestOrderCreate_MissingAmount(t *testing.T) {
	ctrl := gomock.NewController(t)
	h := NewOrderHandler(mocks.NewMockOrderService(ctrl))

	c, w := testContext(t, uuid.New(), http.MethodPost, "/api/v1/orders", map[string]any{})
	h.Create(c)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	var resp map[string]map[string]string
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, apperror.CodeBadRequest, resp["error"]["code"])
}

func TestOrderGet_NotFound(t *testing.T) {
	ctrl := gomock.NewController(t)
	mockOrders := mocks.NewMockOrderService(ctrl)
	h := NewOrderHandler(mockOrders)

	merchantID := uuid.New()
	mockOrders.EXPECT().Get(gomock.Any(), merchantID, "order_gone").
		Return(nil, apperror.NotFound("Order"))

	c, w := testContext(t, merchantID, http.MethodGet, "/api/v1/orders/order_gone", nil)
	c.Params = gin.Params{{Key: "id", Value: "order_gone"}}
	h.Get(c)

	assert.Equal(t, http.StatusNotFound, w.Code)
	var resp map[string]map[string]string
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, apperror.CodeNotFound, resp["error"]["code"])
	assert.Equal(t, "Order not found", resp["error"]["description"])
}

func TestOrderList_PaginationDefaults(t *testing.T) {
	ctrl := gomock.NewController(t)
	mockOrders := mocks.NewMockOrderService(ctrl)
	h := NewOrderHandler(mockOrders)

	merchantID := uuid.New()
	mockOrders.EXPECT().List(gomock.Any(), merchantID, 10, 0).
		Return([]domain.Order{{ID: "order_1"}}, int64(1), nil)

	// limit=abc and offset=-5 both fall back to defaults.
	c, w := testContext(t, merchantID, http.MethodGet, "/api/v1/orders?limit=abc&offset=-5", nil)
	h.List(c)

	assert.Equal(t, http.StatusOK, w.Code)
	var resp map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, float64(1), resp["total"])
	assert.Equal(t, float64(10), resp["limit"])
	assert.Equal(t, float64(0), resp["offset"])
}

func TestOrderList_LimitCapped(t *testing.T) {
	ctrl := gomock.NewController(t)
	mockOrders := mocks.NewMockOrderService(ctrl)
	h := NewOrderHandler(mockOrders)

	merchantID := uuid.New()
	mockOrders.EXPECT().List(gomock.Any(), merchantID, 100, 20).
		Return(nil, int64(0), nil)

	c, w := testContext(t, merchantID, http.MethodGet, "/api/v1/orders?limit=5000&offset=20", nil)
	h.List(c)

	assert.Equal(t, http.StatusOK, w.Code)
}

// --- Payment Handler ---

func TestPaymentCreate_ReturnsServiceBodyVerbatim(t *testing.T) {
	ctrl := gomock.NewController(t)
	mockPayments := mocks.NewMockPaymentService(ctrl)
	h := NewPaymentHandler(mockPayments)

	merchantID := uuid.New()
	body := []byte(`{"id":"pay_abc","order_id":"order_abc","status":"pending"}`)
	mockPayments.EXPECT().Create(gomock.Any(), ports.CreatePaymentInput{
		MerchantID:     merchantID,
		OrderID:        "order_abc",
		Method:         domain.MethodUPI,
		VPA:            "alice@bank",
		IdempotencyKey: "idem-1",
	}).Return(&domain.Payment{ID: "pay_abc"}, body, nil)

	c, w := testContext(t, merchantID, http.MethodPost, "/api/v1/payments",
		dto.CreatePaymentRequest{OrderID: "order_abc", Method: "upi", VPA: "alice@bank"})
	c.Request.Header.Set("Idempotency-Key", "idem-1")
	h.Create(c)

	assert.Equal(t, http.StatusCreated, w.Code)
	// Byte-for-byte: replays of the same Idempotency-Key depend on this.
	assert.Equal(t, body, w.Body.Bytes())
}

func TestPaymentCreate_NoIdempotencyHeader(t *testing.T) {
	ctrl := gomock.NewController(t)
	mockPayments := mocks.NewMockPaymentService(ctrl)
	h := NewPaymentHandler(mockPayments)

	merchantID := uuid.New()
	mockPayments.EXPECT().Create(gomock.Any(), gomock.Any()).DoAndReturn(
		func(_ any, in ports.CreatePaymentInput) (*domain.Payment, []byte, error) {
			assert.Empty(t, in.IdempotencyKey)
			return &domain.Payment{ID: "pay_abc"}, []byte(`{}`), nil
		})

	c, w := testContext(t, merchantID, http.MethodPost, "/api/v1/payments",
		dto.CreatePaymentRequest{OrderID: "order_abc", Method: "upi", VPA: "a@b"})
	h.Create(c)

	assert.Equal(t, http.StatusCreated, w.Code)
}

func TestPaymentCreate_ServiceError(t *testing.T) {
	ctrl := gomock.NewController(t)
	mockPayments := mocks.NewMockPaymentService(ctrl)
	h := NewPaymentHandler(mockPayments)

	mockPayments.EXPECT().Create(gomock.Any(), gomock.Any()).
		Return(nil, nil, apperror.BadRequest("vpa is required for upi payments"))

	c, w := testContext(t, uuid.New(), http.MethodPost, "/api/v1/payments",
		dto.CreatePaymentRequest{OrderID: "order_abc", Method: "upi"})
	h.Create(c)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestPaymentCapture_IgnoresBody(t *testing.T) {
	ctrl := gomock.NewController(t)
	mockPayments := mocks.NewMockPaymentService(ctrl)
	h := NewPaymentHandler(mockPayments)

	merchantID := uuid.New()
	mockPayments.EXPECT().Capture(gomock.Any(), merchantID, "pay_abc").
		Return(&domain.Payment{ID: "pay_abc", Captured: true}, nil)

	// No body at all: capture must still work.
	c, w := testContext(t, merchantID, http.MethodPost, "/api/v1/payments/pay_abc/capture", nil)
	c.Params = gin.Params{{Key: "id", Value: "pay_abc"}}
	h.Capture(c)

	assert.Equal(t, http.StatusOK, w.Code)
	var resp map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, true, resp["captured"])
}

// --- Refund Handler ---

func TestRefundCreate_UsesPaymentPathParam(t *testing.T) {
	ctrl := gomock.NewController(t)
	mockRefunds := mocks.NewMockRefundService(ctrl)
	h := NewRefundHandler(mockRefunds)

	merchantID := uuid.New()
	reason := "customer request"
	mockRefunds.EXPECT().Create(gomock.Any(), ports.CreateRefundInput{
		MerchantID: merchantID,
		PaymentID:  "pay_abc",
		Amount:     20000,
		Reason:     &reason,
	}).Return(&domain.Refund{ID: "rfnd_abc", PaymentID: "pay_abc", Amount: 20000}, nil)

	c, w := testContext(t, merchantID, http.MethodPost, "/api/v1/payments/pay_abc/refunds",
		dto.CreateRefundRequest{Amount: 20000, Reason: &reason})
	c.Params = gin.Params{{Key: "id", Value: "pay_abc"}}
	h.Create(c)

	assert.Equal(t, http.StatusCreated, w.Code)
	var resp map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "rfnd_abc", resp["id"])
}

func TestRefundCreate_ExceedsAvailable(t *testing.T) {
	ctrl := gomock.NewController(t)
	mockRefunds := mocks.NewMockRefundService(ctrl)
	h := NewRefundHandler(mockRefunds)

	mockRefunds.EXPECT().Create(gomock.Any(), gomock.Any()).
		Return(nil, apperror.BadRequest("refund amount exceeds refundable amount 30000"))

	c, w := testContext(t, uuid.New(), http.MethodPost, "/api/v1/payments/pay_abc/refunds",
		dto.CreateRefundRequest{Amount: 50000})
	c.Params = gin.Params{{Key: "id", Value: "pay_abc"}}
	h.Create(c)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

// --- Webhook Handler ---

func TestWebhookRetry_Success(t *testing.T) {
	ctrl := gomock.NewController(t)
	mockWebhooks := mocks.NewMockWebhookService(ctrl)
	h := NewWebhookHandler(mockWebhooks)

	merchantID := uuid.New()
	logID := uuid.New()
	mockWebhooks.EXPECT().Retry(gomock.Any(), merchantID, logID).
		Return(&domain.WebhookLog{ID: logID, Status: domain.WebhookStatusPending}, nil)

	c, w := testContext(t, merchantID, http.MethodPost, "/api/v1/webhooks/"+logID.String()+"/retry", nil)
	c.Params = gin.Params{{Key: "id", Value: logID.String()}}
	h.Retry(c)

	assert.Equal(t, http.StatusOK, w.Code)
}

func TestWebhookRetry_MalformedID(t *testing.T) {
	ctrl := gomock.NewController(t)
	h := NewWebhookHandler(mocks.NewMockWebhookService(ctrl))

	c, w := testContext(t, uuid.New(), http.MethodPost, "/api/v1/webhooks/not-a-uuid/retry", nil)
	c.Params = gin.Params{{Key: "id", Value: "not-a-uuid"}}
	h.Retry(c)

	assert.Equal(t, http.StatusNotFound, w.Code)
}

// --- Merchant Handler ---

func TestMerchantProfile_ExposesWebhookSecret(t *testing.T) {
	ctrl := gomock.NewController(t)
	mockMerchants := mocks.NewMockMerchantService(ctrl)
	h := NewMerchantHandler(mockMerchants)

	merchantID := uuid.New()
	url := "https://shop.example.com/hooks"
	mockMerchants.EXPECT().Profile(gomock.Any(), merchantID).Return(&domain.Merchant{
		ID: merchantID, Name: "Shop", Email: "shop@example.com",
		APIKey: "key_live_x", APISecretHash: "$argon2id$...",
		WebhookURL: &url, WebhookSecret: "whsec_abc",
	}, nil)

	c, w := testContext(t, merchantID, http.MethodGet, "/api/v1/merchants/profile", nil)
	h.Profile(c)

	assert.Equal(t, http.StatusOK, w.Code)
	var resp map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "whsec_abc", resp["webhook_secret"])
	assert.Equal(t, url, resp["webhook_url"])
	_, leaked := resp["api_secret_hash"]
	assert.False(t, leaked)
}

func TestMerchantUpdateWebhook_InvalidURL(t *testing.T) {
	ctrl := gomock.NewController(t)
	mockMerchants := mocks.NewMockMerchantService(ctrl)
	h := NewMerchantHandler(mockMerchants)

	mockMerchants.EXPECT().UpdateWebhookURL(gomock.Any(), gomock.Any(), "notaurl").
		Return(nil, apperror.BadRequest("webhook_url must be a valid http(s) URL"))

	c, w := testContext(t, uuid.New(), http.MethodPut, "/api/v1/merchants/webhook",
		dto.UpdateWebhookRequest{WebhookURL: "notaurl"})
	h.UpdateWebhook(c)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

// --- Jobs Handler ---

func TestJobsStatus(t *testing.T) {
	ctrl := gomock.NewController(t)
	mockQueue := mocks.NewMockJobQueue(ctrl)
	h := NewJobsHandler(mockQueue)

	mockQueue.EXPECT().Counts(gomock.Any()).Return(map[string]ports.QueueCounts{
		"payment-processing": {Waiting: 2, Active: 1, Completed: 40, Failed: 3},
	}, nil)

	c, w := testContext(t, uuid.Nil, http.MethodGet, "/api/v1/test/jobs/status", nil)
	h.Status(c)

	assert.Equal(t, http.StatusOK, w.Code)
	var resp map[string]ports.QueueCounts
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, 2, resp["payment-processing"].Waiting)
}
