package queue

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/hibiken/asynq"

	"paygate/internal/core/ports"
)

// Task types routed through asynq.
const (
	TypePaymentProcess = "payment:process"
	TypeRefundProcess  = "refund:process"
	TypeWebhookDeliver = "webhook:deliver"
)

// Queue names. Payments and refunds share broker-level retry; webhook
// delivery manages its own retry schedule, so its tasks never retry at the
// broker.
const (
	QueuePayments = "payment-processing"
	QueueRefunds  = "refund-processing"
	QueueWebhooks = "webhook-delivery"
)

// MaxProcessRetries bounds broker retries for payment and refund tasks.
const MaxProcessRetries = 3

// AsynqQueue implements ports.JobQueue over an asynq client.
type AsynqQueue struct {
	client    *asynq.Client
	inspector *asynq.Inspector
}

func NewAsynqQueue(redisOpt asynq.RedisConnOpt) *AsynqQueue {
	return &AsynqQueue{
		client:    asynq.NewClient(redisOpt),
		inspector: asynq.NewInspector(redisOpt),
	}
}

func (q *AsynqQueue) Close() error {
	return q.client.Close()
}

func (q *AsynqQueue) EnqueuePayment(ctx context.Context, job ports.PaymentJob) error {
	payload, err := json.Marshal(job)
	if err != nil {
		return fmt.Errorf("marshal payment job: %w", err)
	}
	task := asynq.NewTask(TypePaymentProcess, payload)
	if _, err := q.client.EnqueueContext(ctx, task,
		asynq.Queue(QueuePayments),
		asynq.MaxRetry(MaxProcessRetries),
	); err != nil {
		return fmt.Errorf("enqueue payment job: %w", err)
	}
	return nil
}

func (q *AsynqQueue) EnqueueRefund(ctx context.Context, job ports.RefundJob) error {
	payload, err := json.Marshal(job)
	if err != nil {
		return fmt.Errorf("marshal refund job: %w", err)
	}
	task := asynq.NewTask(TypeRefundProcess, payload)
	if _, err := q.client.EnqueueContext(ctx, task,
		asynq.Queue(QueueRefunds),
		asynq.MaxRetry(MaxProcessRetries),
	); err != nil {
		return fmt.Errorf("enqueue refund job: %w", err)
	}
	return nil
}

// EnqueueWebhook schedules one delivery attempt. Retries are scheduled by
// the worker, so the broker itself never retries these tasks.
func (q *AsynqQueue) EnqueueWebhook(ctx context.Context, job ports.WebhookJob, delay time.Duration) error {
	payload, err := json.Marshal(job)
	if err != nil {
		return fmt.Errorf("marshal webhook job: %w", err)
	}
	task := asynq.NewTask(TypeWebhookDeliver, payload)
	opts := []asynq.Option{
		asynq.Queue(QueueWebhooks),
		asynq.MaxRetry(0),
	}
	if delay > 0 {
		opts = append(opts, asynq.ProcessIn(delay))
	}
	if _, err := q.client.EnqueueContext(ctx, task, opts...); err != nil {
		return fmt.Errorf("enqueue webhook job: %w", err)
	}
	return nil
}

// Counts snapshots the depth of every queue for the status endpoint.
func (q *AsynqQueue) Counts(ctx context.Context) (map[string]ports.QueueCounts, error) {
	out := make(map[string]ports.QueueCounts, 3)
	for _, name := range []string{QueuePayments, QueueRefunds, QueueWebhooks} {
		info, err := q.inspector.GetQueueInfo(name)
		if err != nil {
			// A queue that has never seen a task does not exist yet.
			out[name] = ports.QueueCounts{}
			continue
		}
		out[name] = ports.QueueCounts{
			Waiting:   info.Pending + info.Scheduled + info.Retry,
			Active:    info.Active,
			Completed: info.Completed,
			Failed:    info.Failed,
		}
	}
	return out, nil
}
