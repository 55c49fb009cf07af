package integration

import (
	"context"
	"encoding/json"
	"net/http"
	"sync"
	"testing"

	"github.com/hibiken/asynq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"paygate/internal/adapter/queue"
	"paygate/internal/core/domain"
)

// Broker retries can run the same task concurrently. Settlement must stay
// exactly-once: one terminal transition, one webhook fan-out.

func TestConcurrency_DuplicatePaymentTasksSettleOnce(t *testing.T) {
	app := newTestApp(t)
	sink := newWebhookSink(t, http.StatusOK)
	tm := app.seedMerchant(t, "shop", &sink.server.URL)
	pw, _, _ := app.newWorkers(t)

	orderID := app.createOrder(t, tm, 50000)
	status, body := app.do(t, tm, http.MethodPost, "/api/v1/payments",
		map[string]any{"order_id": orderID, "method": "upi", "vpa": "alice@bank"}, nil)
	require.Equal(t, http.StatusCreated, status)
	var payment map[string]any
	require.NoError(t, json.Unmarshal(body, &payment))

	jobs := app.queue.drainPayments()
	require.Len(t, jobs, 1)
	payload, err := json.Marshal(jobs[0])
	require.NoError(t, err)

	const workers = 10
	var wg sync.WaitGroup
	wg.Add(workers)
	for i := 0; i < workers; i++ {
		go func() {
			defer wg.Done()
			_ = pw.ProcessTask(context.Background(), asynq.NewTask(queue.TypePaymentProcess, payload))
		}()
	}
	wg.Wait()

	p, err := app.payments.GetByIDAny(context.Background(), payment["id"].(string))
	require.NoError(t, err)
	require.NotNil(t, p)
	assert.Equal(t, domain.PaymentStatusSuccess, p.Status)

	// Only the run that won the terminal transition dispatched the event.
	assert.Len(t, app.queue.drainWebhooks(), 1)
}

func TestConcurrency_DuplicateRefundTasksProcessOnce(t *testing.T) {
	app := newTestApp(t)
	sink := newWebhookSink(t, http.StatusOK)
	tm := app.seedMerchant(t, "shop", &sink.server.URL)
	pw, rw, _ := app.newWorkers(t)

	orderID := app.createOrder(t, tm, 50000)
	status, body := app.do(t, tm, http.MethodPost, "/api/v1/payments",
		map[string]any{"order_id": orderID, "method": "upi", "vpa": "alice@bank"}, nil)
	require.Equal(t, http.StatusCreated, status)
	var payment map[string]any
	require.NoError(t, json.Unmarshal(body, &payment))

	app.runPaymentJobs(t, pw)
	app.queue.drainWebhooks()

	status, body = app.do(t, tm, http.MethodPost, "/api/v1/payments/"+payment["id"].(string)+"/refunds",
		map[string]any{"amount": 20000}, nil)
	require.Equal(t, http.StatusCreated, status)
	var refund map[string]any
	require.NoError(t, json.Unmarshal(body, &refund))

	jobs := app.queue.drainRefunds()
	require.Len(t, jobs, 1)
	payload, err := json.Marshal(jobs[0])
	require.NoError(t, err)

	const workers = 10
	var wg sync.WaitGroup
	wg.Add(workers)
	for i := 0; i < workers; i++ {
		go func() {
			defer wg.Done()
			_ = rw.ProcessTask(context.Background(), asynq.NewTask(queue.TypeRefundProcess, payload))
		}()
	}
	wg.Wait()

	r, err := app.refunds.GetByIDAny(context.Background(), refund["id"].(string))
	require.NoError(t, err)
	require.NotNil(t, r)
	assert.Equal(t, domain.RefundStatusProcessed, r.Status)
	assert.Len(t, app.queue.drainWebhooks(), 1)
}

func TestConcurrency_ParallelOrderCreation(t *testing.T) {
	app := newTestApp(t)
	tm := app.seedMerchant(t, "shop", nil)

	const n = 20
	var wg sync.WaitGroup
	wg.Add(n)
	for i := 0; i < n; i++ {
		go func() {
			defer wg.Done()
			status, _ := app.do(t, tm, http.MethodPost, "/api/v1/orders",
				map[string]any{"amount": 1000, "currency": "INR"}, nil)
			assert.Equal(t, http.StatusCreated, status)
		}()
	}
	wg.Wait()

	status, body := app.do(t, tm, http.MethodGet, "/api/v1/orders?limit=100", nil, nil)
	require.Equal(t, http.StatusOK, status)
	var list map[string]any
	require.NoError(t, json.Unmarshal(body, &list))
	assert.Equal(t, float64(n), list["total"])
}
