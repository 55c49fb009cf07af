package integration

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"paygate/internal/core/domain"
	"paygate/internal/core/ports"
)

// In-memory implementations of the storage and queue ports. They keep the
// same contracts as the postgres repos (nil on miss, guarded state moves)
// so the full service stack runs against them unchanged.

// --- In-Memory Merchant Repo ---

type inMemoryMerchantRepo struct {
	mu        sync.RWMutex
	merchants map[uuid.UUID]*domain.Merchant
}

func newInMemoryMerchantRepo() *inMemoryMerchantRepo {
	return &inMemoryMerchantRepo{merchants: make(map[uuid.UUID]*domain.Merchant)}
}

func (r *inMemoryMerchantRepo) Create(ctx context.Context, m *domain.Merchant) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, existing := range r.merchants {
		if existing.Email == m.Email {
			return fmt.Errorf("email already exists")
		}
	}
	now := time.Now()
	m.CreatedAt = now
	m.UpdatedAt = now
	cp := *m
	r.merchants[m.ID] = &cp
	return nil
}

func (r *inMemoryMerchantRepo) GetByID(ctx context.Context, id uuid.UUID) (*domain.Merchant, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	m, ok := r.merchants[id]
	if !ok {
		return nil, nil
	}
	cp := *m
	return &cp, nil
}

func (r *inMemoryMerchantRepo) GetByAPIKey(ctx context.Context, apiKey string) (*domain.Merchant, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, m := range r.merchants {
		if m.APIKey == apiKey {
			cp := *m
			return &cp, nil
		}
	}
	return nil, nil
}

func (r *inMemoryMerchantRepo) Update(ctx context.Context, m *domain.Merchant) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.merchants[m.ID]; !ok {
		return fmt.Errorf("merchant not found")
	}
	m.UpdatedAt = time.Now()
	cp := *m
	r.merchants[m.ID] = &cp
	return nil
}

// --- In-Memory Order Repo ---

type inMemoryOrderRepo struct {
	mu     sync.RWMutex
	orders map[string]*domain.Order
	ids    []string
}

func newInMemoryOrderRepo() *inMemoryOrderRepo {
	return &inMemoryOrderRepo{orders: make(map[string]*domain.Order)}
}

func (r *inMemoryOrderRepo) Create(ctx context.Context, tx pgx.Tx, o *domain.Order) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	o.CreatedAt = time.Now()
	cp := *o
	r.orders[o.ID] = &cp
	r.ids = append(r.ids, o.ID)
	return nil
}

func (r *inMemoryOrderRepo) GetByID(ctx context.Context, merchantID uuid.UUID, id string) (*domain.Order, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	o, ok := r.orders[id]
	if !ok || o.MerchantID != merchantID {
		return nil, nil
	}
	cp := *o
	return &cp, nil
}

func (r *inMemoryOrderRepo) GetByIDForShare(ctx context.Context, tx pgx.Tx, merchantID uuid.UUID, id string) (*domain.Order, error) {
	return r.GetByID(ctx, merchantID, id)
}

func (r *inMemoryOrderRepo) List(ctx context.Context, merchantID uuid.UUID, limit, offset int) ([]domain.Order, int64, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var result []domain.Order
	for i := len(r.ids) - 1; i >= 0; i-- {
		o := r.orders[r.ids[i]]
		if o.MerchantID == merchantID {
			result = append(result, *o)
		}
	}
	return paginate(result, limit, offset), int64(len(result)), nil
}

// --- In-Memory Payment Repo ---

type inMemoryPaymentRepo struct {
	mu       sync.RWMutex
	payments map[string]*domain.Payment
	ids      []string
}

func newInMemoryPaymentRepo() *inMemoryPaymentRepo {
	return &inMemoryPaymentRepo{payments: make(map[string]*domain.Payment)}
}

func (r *inMemoryPaymentRepo) Create(ctx context.Context, tx pgx.Tx, p *domain.Payment) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	now := time.Now()
	p.CreatedAt = now
	p.UpdatedAt = now
	cp := *p
	r.payments[p.ID] = &cp
	r.ids = append(r.ids, p.ID)
	return nil
}

func (r *inMemoryPaymentRepo) GetByID(ctx context.Context, merchantID uuid.UUID, id string) (*domain.Payment, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	p, ok := r.payments[id]
	if !ok || p.MerchantID != merchantID {
		return nil, nil
	}
	cp := *p
	return &cp, nil
}

func (r *inMemoryPaymentRepo) GetByIDAny(ctx context.Context, id string) (*domain.Payment, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	p, ok := r.payments[id]
	if !ok {
		return nil, nil
	}
	cp := *p
	return &cp, nil
}

func (r *inMemoryPaymentRepo) GetByIDForUpdate(ctx context.Context, tx pgx.Tx, merchantID uuid.UUID, id string) (*domain.Payment, error) {
	return r.GetByID(ctx, merchantID, id)
}

func (r *inMemoryPaymentRepo) List(ctx context.Context, merchantID uuid.UUID, limit, offset int) ([]domain.Payment, int64, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var result []domain.Payment
	for i := len(r.ids) - 1; i >= 0; i-- {
		p := r.payments[r.ids[i]]
		if p.MerchantID == merchantID {
			result = append(result, *p)
		}
	}
	return paginate(result, limit, offset), int64(len(result)), nil
}

func (r *inMemoryPaymentRepo) MarkTerminal(ctx context.Context, id string, status domain.PaymentStatus, errCode, errDesc *string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.payments[id]
	if !ok || p.Status != domain.PaymentStatusPending {
		return false, nil
	}
	p.Status = status
	p.ErrorCode = errCode
	p.ErrorDescription = errDesc
	p.UpdatedAt = time.Now()
	return true, nil
}

func (r *inMemoryPaymentRepo) SetCaptured(ctx context.Context, merchantID uuid.UUID, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.payments[id]
	if !ok || p.MerchantID != merchantID {
		return fmt.Errorf("payment not found")
	}
	p.Captured = true
	p.UpdatedAt = time.Now()
	return nil
}

func (r *inMemoryPaymentRepo) ListStuckPending(ctx context.Context, cutoff time.Time, limit int) ([]domain.Payment, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var result []domain.Payment
	for _, id := range r.ids {
		p := r.payments[id]
		if p.Status == domain.PaymentStatusPending && p.CreatedAt.Before(cutoff) {
			result = append(result, *p)
			if len(result) == limit {
				break
			}
		}
	}
	return result, nil
}

// --- In-Memory Refund Repo ---

type inMemoryRefundRepo struct {
	mu      sync.RWMutex
	refunds map[string]*domain.Refund
	ids     []string
}

func newInMemoryRefundRepo() *inMemoryRefundRepo {
	return &inMemoryRefundRepo{refunds: make(map[string]*domain.Refund)}
}

func (r *inMemoryRefundRepo) Create(ctx context.Context, tx pgx.Tx, rf *domain.Refund) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	rf.CreatedAt = time.Now()
	cp := *rf
	r.refunds[rf.ID] = &cp
	r.ids = append(r.ids, rf.ID)
	return nil
}

func (r *inMemoryRefundRepo) SumAmounts(ctx context.Context, tx pgx.Tx, paymentID string) (int64, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var sum int64
	for _, rf := range r.refunds {
		if rf.PaymentID == paymentID {
			sum += rf.Amount
		}
	}
	return sum, nil
}

func (r *inMemoryRefundRepo) GetByID(ctx context.Context, merchantID uuid.UUID, id string) (*domain.Refund, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	rf, ok := r.refunds[id]
	if !ok || rf.MerchantID != merchantID {
		return nil, nil
	}
	cp := *rf
	return &cp, nil
}

func (r *inMemoryRefundRepo) GetByIDAny(ctx context.Context, id string) (*domain.Refund, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	rf, ok := r.refunds[id]
	if !ok {
		return nil, nil
	}
	cp := *rf
	return &cp, nil
}

func (r *inMemoryRefundRepo) List(ctx context.Context, merchantID uuid.UUID, limit, offset int) ([]domain.Refund, int64, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var result []domain.Refund
	for i := len(r.ids) - 1; i >= 0; i-- {
		rf := r.refunds[r.ids[i]]
		if rf.MerchantID == merchantID {
			result = append(result, *rf)
		}
	}
	return paginate(result, limit, offset), int64(len(result)), nil
}

func (r *inMemoryRefundRepo) ListByPayment(ctx context.Context, merchantID uuid.UUID, paymentID string, limit, offset int) ([]domain.Refund, int64, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var result []domain.Refund
	for i := len(r.ids) - 1; i >= 0; i-- {
		rf := r.refunds[r.ids[i]]
		if rf.MerchantID == merchantID && rf.PaymentID == paymentID {
			result = append(result, *rf)
		}
	}
	return paginate(result, limit, offset), int64(len(result)), nil
}

func (r *inMemoryRefundRepo) MarkProcessed(ctx context.Context, id string, processedAt time.Time) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	rf, ok := r.refunds[id]
	if !ok || rf.Status != domain.RefundStatusPending {
		return false, nil
	}
	rf.Status = domain.RefundStatusProcessed
	rf.ProcessedAt = &processedAt
	return true, nil
}

func (r *inMemoryRefundRepo) ListStuckPending(ctx context.Context, cutoff time.Time, limit int) ([]domain.Refund, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var result []domain.Refund
	for _, id := range r.ids {
		rf := r.refunds[id]
		if rf.Status == domain.RefundStatusPending && rf.CreatedAt.Before(cutoff) {
			result = append(result, *rf)
			if len(result) == limit {
				break
			}
		}
	}
	return result, nil
}

// --- In-Memory Webhook Log Repo ---

type inMemoryWebhookLogRepo struct {
	mu   sync.RWMutex
	logs map[uuid.UUID]*domain.WebhookLog
	ids  []uuid.UUID
}

func newInMemoryWebhookLogRepo() *inMemoryWebhookLogRepo {
	return &inMemoryWebhookLogRepo{logs: make(map[uuid.UUID]*domain.WebhookLog)}
}

func (r *inMemoryWebhookLogRepo) Create(ctx context.Context, l *domain.WebhookLog) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	now := time.Now()
	l.CreatedAt = now
	l.UpdatedAt = now
	cp := *l
	r.logs[l.ID] = &cp
	r.ids = append(r.ids, l.ID)
	return nil
}

func (r *inMemoryWebhookLogRepo) GetByID(ctx context.Context, id uuid.UUID) (*domain.WebhookLog, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	l, ok := r.logs[id]
	if !ok {
		return nil, nil
	}
	cp := *l
	return &cp, nil
}

func (r *inMemoryWebhookLogRepo) GetByIDScoped(ctx context.Context, merchantID, id uuid.UUID) (*domain.WebhookLog, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	l, ok := r.logs[id]
	if !ok || l.MerchantID != merchantID {
		return nil, nil
	}
	cp := *l
	return &cp, nil
}

func (r *inMemoryWebhookLogRepo) Update(ctx context.Context, l *domain.WebhookLog) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.logs[l.ID]; !ok {
		return fmt.Errorf("webhook log not found")
	}
	l.UpdatedAt = time.Now()
	cp := *l
	r.logs[l.ID] = &cp
	return nil
}

func (r *inMemoryWebhookLogRepo) List(ctx context.Context, merchantID uuid.UUID, limit, offset int) ([]domain.WebhookLog, int64, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var result []domain.WebhookLog
	for i := len(r.ids) - 1; i >= 0; i-- {
		l := r.logs[r.ids[i]]
		if l.MerchantID == merchantID {
			result = append(result, *l)
		}
	}
	return paginate(result, limit, offset), int64(len(result)), nil
}

func (r *inMemoryWebhookLogRepo) ListStuckPending(ctx context.Context, cutoff time.Time, limit int) ([]domain.WebhookLog, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var result []domain.WebhookLog
	for _, id := range r.ids {
		l := r.logs[id]
		if l.Status == domain.WebhookStatusPending && l.NextRetryAt != nil && l.NextRetryAt.Before(cutoff) {
			result = append(result, *l)
			if len(result) == limit {
				break
			}
		}
	}
	return result, nil
}

// --- In-Memory Idempotency Repo ---

type inMemoryIdempotencyRepo struct {
	mu      sync.Mutex
	records map[string]*domain.IdempotencyRecord
}

func newInMemoryIdempotencyRepo() *inMemoryIdempotencyRepo {
	return &inMemoryIdempotencyRepo{records: make(map[string]*domain.IdempotencyRecord)}
}

func idemKey(key string, merchantID uuid.UUID) string {
	return key + "|" + merchantID.String()
}

func (r *inMemoryIdempotencyRepo) Get(ctx context.Context, tx pgx.Tx, key string, merchantID uuid.UUID) (*domain.IdempotencyRecord, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	rec, ok := r.records[idemKey(key, merchantID)]
	if !ok {
		return nil, nil
	}
	cp := *rec
	return &cp, nil
}

func (r *inMemoryIdempotencyRepo) Delete(ctx context.Context, tx pgx.Tx, key string, merchantID uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.records, idemKey(key, merchantID))
	return nil
}

func (r *inMemoryIdempotencyRepo) Put(ctx context.Context, tx pgx.Tx, rec *domain.IdempotencyRecord) ([]byte, bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	k := idemKey(rec.Key, rec.MerchantID)
	if winner, ok := r.records[k]; ok {
		return winner.ResponseBody, true, nil
	}
	rec.CreatedAt = time.Now()
	cp := *rec
	r.records[k] = &cp
	return nil, false, nil
}

// --- In-Memory Queue ---

// inMemoryQueue records enqueued jobs for assertions; a test drains them
// through the workers by hand.
type inMemoryQueue struct {
	mu          sync.Mutex
	paymentJobs []ports.PaymentJob
	refundJobs  []ports.RefundJob
	webhookJobs []ports.WebhookJob
}

func newInMemoryQueue() *inMemoryQueue {
	return &inMemoryQueue{}
}

func (q *inMemoryQueue) EnqueuePayment(ctx context.Context, job ports.PaymentJob) error {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.paymentJobs = append(q.paymentJobs, job)
	return nil
}

func (q *inMemoryQueue) EnqueueRefund(ctx context.Context, job ports.RefundJob) error {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.refundJobs = append(q.refundJobs, job)
	return nil
}

func (q *inMemoryQueue) EnqueueWebhook(ctx context.Context, job ports.WebhookJob, delay time.Duration) error {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.webhookJobs = append(q.webhookJobs, job)
	return nil
}

func (q *inMemoryQueue) Counts(ctx context.Context) (map[string]ports.QueueCounts, error) {
	q.mu.Lock()
	defer q.mu.Unlock()
	return map[string]ports.QueueCounts{
		"payment-processing": {Waiting: len(q.paymentJobs)},
		"refund-processing":  {Waiting: len(q.refundJobs)},
		"webhook-delivery":   {Waiting: len(q.webhookJobs)},
	}, nil
}

func (q *inMemoryQueue) drainPayments() []ports.PaymentJob {
	q.mu.Lock()
	defer q.mu.Unlock()
	jobs := q.paymentJobs
	q.paymentJobs = nil
	return jobs
}

func (q *inMemoryQueue) drainRefunds() []ports.RefundJob {
	q.mu.Lock()
	defer q.mu.Unlock()
	jobs := q.refundJobs
	q.refundJobs = nil
	return jobs
}

func (q *inMemoryQueue) drainWebhooks() []ports.WebhookJob {
	q.mu.Lock()
	defer q.mu.Unlock()
	jobs := q.webhookJobs
	q.webhookJobs = nil
	return jobs
}

// --- In-Memory Transactor (no-op tx) ---

type inMemoryTransactor struct{}

func newInMemoryTransactor() *inMemoryTransactor {
	return &inMemoryTransactor{}
}

func (t *inMemoryTransactor) Begin(ctx context.Context) (pgx.Tx, error) {
	return &noopTx{}, nil
}

// noopTx is a no-op pgx.Tx implementation for in-memory testing.
type noopTx struct{}

func (t *noopTx) Begin(ctx context.Context) (pgx.Tx, error) { return t, nil }
func (t *noopTx) Commit(ctx context.Context) error          { return nil }
func (t *noopTx) Rollback(ctx context.Context) error        { return nil }
func (t *noopTx) CopyFrom(ctx context.Context, tableName pgx.Identifier, columnNames []string, rowSrc pgx.CopyFromSource) (int64, error) {
	return 0, nil
}
func (t *noopTx) SendBatch(ctx context.Context, b *pgx.Batch) pgx.BatchResults { return nil }
func (t *noopTx) LargeObjects() pgx.LargeObjects                               { return pgx.LargeObjects{} }
func (t *noopTx) Prepare(ctx context.Context, name, sql string) (*pgconn.StatementDescription, error) {
	return nil, nil
}
func (t *noopTx) Exec(ctx context.Context, sql string, arguments ...any) (pgconn.CommandTag, error) {
	return pgconn.NewCommandTag(""), nil
}
func (t *noopTx) Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error) {
	return nil, nil
}
func (t *noopTx) QueryRow(ctx context.Context, sql string, args ...any) pgx.Row {
	return nil
}
func (t *noopTx) Conn() *pgx.Conn { return nil }

// paginate applies limit/offset the way the SQL repos do.
func paginate[T any](items []T, limit, offset int) []T {
	if offset >= len(items) {
		return []T{}
	}
	end := offset + limit
	if end > len(items) {
		end = len(items)
	}
	return items[offset:end]
}
