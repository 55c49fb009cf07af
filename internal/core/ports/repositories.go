package ports

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"paygate/internal/core/domain"
)

//go:generate mockgen -source=repositories.go -destination=mocks/repositories_mock.go -package=mocks

// DBTransactor begins database transactions for multi-statement operations.
type DBTransactor interface {
	Begin(ctx context.Context) (pgx.Tx, error)
}

// MerchantRepository persists merchant accounts.
type MerchantRepository interface {
	Create(ctx context.Context, m *domain.Merchant) error
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Merchant, error)
	GetByAPIKey(ctx context.Context, apiKey string) (*domain.Merchant, error)
	Update(ctx context.Context, m *domain.Merchant) error
}

// OrderRepository persists orders. Reads are merchant-scoped; a miss under
// another merchant's scope is indistinguishable from absence.
type OrderRepository interface {
	Create(ctx context.Context, tx pgx.Tx, o *domain.Order) error
	GetByID(ctx context.Context, merchantID uuid.UUID, id string) (*domain.Order, error)
	// GetByIDForShare locks the order row inside tx so payment creation
	// reads a stable amount.
	GetByIDForShare(ctx context.Context, tx pgx.Tx, merchantID uuid.UUID, id string) (*domain.Order, error)
	List(ctx context.Context, merchantID uuid.UUID, limit, offset int) ([]domain.Order, int64, error)
}

// PaymentRepository persists payments.
type PaymentRepository interface {
	Create(ctx context.Context, tx pgx.Tx, p *domain.Payment) error
	GetByID(ctx context.Context, merchantID uuid.UUID, id string) (*domain.Payment, error)
	// GetByIDAny loads without merchant scope; workers look payments up by
	// job reference, not on behalf of a caller.
	GetByIDAny(ctx context.Context, id string) (*domain.Payment, error)
	// GetByIDForUpdate locks the payment row inside tx; refund creation
	// serializes on it.
	GetByIDForUpdate(ctx context.Context, tx pgx.Tx, merchantID uuid.UUID, id string) (*domain.Payment, error)
	List(ctx context.Context, merchantID uuid.UUID, limit, offset int) ([]domain.Payment, int64, error)
	// MarkTerminal moves pending -> success|failed. The guard is in SQL:
	// rows already terminal are not touched and ok is false.
	MarkTerminal(ctx context.Context, id string, status domain.PaymentStatus, errCode, errDesc *string) (bool, error)
	SetCaptured(ctx context.Context, merchantID uuid.UUID, id string) error
	// ListStuckPending returns pending payments older than cutoff for the
	// reconciliation sweep.
	ListStuckPending(ctx context.Context, cutoff time.Time, limit int) ([]domain.Payment, error)
}

// RefundRepository persists refunds.
type RefundRepository interface {
	Create(ctx context.Context, tx pgx.Tx, r *domain.Refund) error
	// SumAmounts totals existing refunds for a payment inside tx, while the
	// parent payment row is locked.
	SumAmounts(ctx context.Context, tx pgx.Tx, paymentID string) (int64, error)
	GetByID(ctx context.Context, merchantID uuid.UUID, id string) (*domain.Refund, error)
	GetByIDAny(ctx context.Context, id string) (*domain.Refund, error)
	List(ctx context.Context, merchantID uuid.UUID, limit, offset int) ([]domain.Refund, int64, error)
	ListByPayment(ctx context.Context, merchantID uuid.UUID, paymentID string, limit, offset int) ([]domain.Refund, int64, error)
	// MarkProcessed moves pending -> processed; ok is false if already done.
	MarkProcessed(ctx context.Context, id string, processedAt time.Time) (bool, error)
	// ListStuckPending returns pending refunds older than cutoff for the
	// reconciliation sweep.
	ListStuckPending(ctx context.Context, cutoff time.Time, limit int) ([]domain.Refund, error)
}

// WebhookLogRepository persists webhook delivery logs.
type WebhookLogRepository interface {
	Create(ctx context.Context, l *domain.WebhookLog) error
	GetByID(ctx context.Context, id uuid.UUID) (*domain.WebhookLog, error)
	GetByIDScoped(ctx context.Context, merchantID, id uuid.UUID) (*domain.WebhookLog, error)
	Update(ctx context.Context, l *domain.WebhookLog) error
	List(ctx context.Context, merchantID uuid.UUID, limit, offset int) ([]domain.WebhookLog, int64, error)
	// ListStuckPending returns pending logs whose next_retry_at passed
	// before cutoff, for the redelivery sweep.
	ListStuckPending(ctx context.Context, cutoff time.Time, limit int) ([]domain.WebhookLog, error)
}

// IdempotencyRepository persists cached create responses.
type IdempotencyRepository interface {
	Get(ctx context.Context, tx pgx.Tx, key string, merchantID uuid.UUID) (*domain.IdempotencyRecord, error)
	Delete(ctx context.Context, tx pgx.Tx, key string, merchantID uuid.UUID) error
	// Put inserts the record. On a concurrent duplicate it returns the
	// winner's stored body and conflict=true instead of an error.
	Put(ctx context.Context, tx pgx.Tx, rec *domain.IdempotencyRecord) (winnerBody []byte, conflict bool, err error)
}
