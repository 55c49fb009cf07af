package worker

import (
	"context"
	"time"

	"github.com/hibiken/asynq"
	"github.com/rs/zerolog"

	"paygate/internal/adapter/queue"
)

// NewServer builds the asynq server processing all three queues. The retry
// delay doubles from one second (1s, 2s, 4s); it only ever applies to
// payment and refund tasks, since webhook tasks carry MaxRetry 0.
func NewServer(redisOpt asynq.RedisConnOpt, concurrency int, log zerolog.Logger) *asynq.Server {
	return asynq.NewServer(redisOpt, asynq.Config{
		Concurrency: concurrency,
		Queues: map[string]int{
			queue.QueuePayments: 3,
			queue.QueueRefunds:  2,
			queue.QueueWebhooks: 2,
		},
		RetryDelayFunc: func(n int, _ error, _ *asynq.Task) time.Duration {
			if n < 1 {
				n = 1
			}
			return time.Duration(1<<(n-1)) * time.Second
		},
		ErrorHandler: asynq.ErrorHandlerFunc(func(_ context.Context, task *asynq.Task, err error) {
			log.Error().Err(err).Str("type", task.Type()).Msg("task failed")
		}),
		Logger: asynqLogger{log: log.With().Str("component", "asynq").Logger()},
	})
}

// NewMux routes task types to their workers.
func NewMux(payments *PaymentWorker, refunds *RefundWorker, webhooks *WebhookWorker) *asynq.ServeMux {
	mux := asynq.NewServeMux()
	mux.Handle(queue.TypePaymentProcess, payments)
	mux.Handle(queue.TypeRefundProcess, refunds)
	mux.Handle(queue.TypeWebhookDeliver, webhooks)
	return mux
}

// asynqLogger adapts zerolog to asynq's logger interface.
type asynqLogger struct {
	log zerolog.Logger
}

func (l asynqLogger) Debug(args ...any) { l.log.Debug().Msgf("%v", args) }
func (l asynqLogger) Info(args ...any)  { l.log.Info().Msgf("%v", args) }
func (l asynqLogger) Warn(args ...any)  { l.log.Warn().Msgf("%v", args) }
func (l asynqLogger) Error(args ...any) { l.log.Error().Msgf("%v", args) }
func (l asynqLogger) Fatal(args ...any) { l.log.Fatal().Msgf("%v", args) }
