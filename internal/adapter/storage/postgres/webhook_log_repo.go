package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"paygate/internal/core/domain"
)

// WebhookLogRepository implements ports.WebhookLogRepository on Postgres.
type WebhookLogRepository struct {
	pool Pool
}

func NewWebhookLogRepository(pool Pool) *WebhookLogRepository {
	return &WebhookLogRepository{pool: pool}
}

const webhookLogColumns = `id, merchant_id, event, payload, status, attempts, last_attempt_at, next_retry_at, response_code, response_body, created_at, updated_at`

func (r *WebhookLogRepository) Create(ctx context.Context, l *domain.WebhookLog) error {
	query := `
		INSERT INTO webhook_logs (id, merchant_id, event, payload, status, attempts, next_retry_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING created_at, updated_at`

	err := r.pool.QueryRow(ctx, query,
		l.ID, l.MerchantID, l.Event, l.Payload, l.Status, l.Attempts, l.NextRetryAt,
	).Scan(&l.CreatedAt, &l.UpdatedAt)
	if err != nil {
		return fmt.Errorf("inserting webhook log: %w", err)
	}
	return nil
}

func (r *WebhookLogRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.WebhookLog, error) {
	query := `SELECT ` + webhookLogColumns + ` FROM webhook_logs WHERE id = $1`
	return scanWebhookLog(r.pool.QueryRow(ctx, query, id))
}

func (r *WebhookLogRepository) GetByIDScoped(ctx context.Context, merchantID, id uuid.UUID) (*domain.WebhookLog, error) {
	query := `SELECT ` + webhookLogColumns + ` FROM webhook_logs WHERE id = $1 AND merchant_id = $2`
	return scanWebhookLog(r.pool.QueryRow(ctx, query, id, merchantID))
}

func (r *WebhookLogRepository) Update(ctx context.Context, l *domain.WebhookLog) error {
	query := `
		UPDATE webhook_logs
		SET status = $2, attempts = $3, last_attempt_at = $4, next_retry_at = $5,
		    response_code = $6, response_body = $7, updated_at = NOW()
		WHERE id = $1
		RETURNING updated_at`

	err := r.pool.QueryRow(ctx, query,
		l.ID, l.Status, l.Attempts, l.LastAttemptAt, l.NextRetryAt,
		l.ResponseCode, l.ResponseBody,
	).Scan(&l.UpdatedAt)
	if err != nil {
		return fmt.Errorf("updating webhook log: %w", err)
	}
	return nil
}

func (r *WebhookLogRepository) List(ctx context.Context, merchantID uuid.UUID, limit, offset int) ([]domain.WebhookLog, int64, error) {
	var total int64
	if err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM webhook_logs WHERE merchant_id = $1`, merchantID).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("counting webhook logs: %w", err)
	}

	query := `SELECT ` + webhookLogColumns + `
		FROM webhook_logs
		WHERE merchant_id = $1
		ORDER BY created_at DESC
		LIMIT $2 OFFSET $3`

	rows, err := r.pool.Query(ctx, query, merchantID, limit, offset)
	if err != nil {
		return nil, 0, fmt.Errorf("listing webhook logs: %w", err)
	}
	defer rows.Close()

	logs := make([]domain.WebhookLog, 0, limit)
	for rows.Next() {
		l, err := scanWebhookLogRow(rows)
		if err != nil {
			return nil, 0, err
		}
		logs = append(logs, *l)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("iterating webhook logs: %w", err)
	}
	return logs, total, nil
}

func (r *WebhookLogRepository) ListStuckPending(ctx context.Context, cutoff time.Time, limit int) ([]domain.WebhookLog, error) {
	query := `SELECT ` + webhookLogColumns + `
		FROM webhook_logs
		WHERE status = 'pending' AND next_retry_at IS NOT NULL AND next_retry_at < $1
		ORDER BY next_retry_at
		LIMIT $2`

	rows, err := r.pool.Query(ctx, query, cutoff, limit)
	if err != nil {
		return nil, fmt.Errorf("listing stuck webhook logs: %w", err)
	}
	defer rows.Close()

	var logs []domain.WebhookLog
	for rows.Next() {
		l, err := scanWebhookLogRow(rows)
		if err != nil {
			return nil, err
		}
		logs = append(logs, *l)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating stuck webhook logs: %w", err)
	}
	return logs, nil
}

func scanWebhookLog(row pgx.Row) (*domain.WebhookLog, error) {
	l, err := scanWebhookLogRow(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return l, nil
}

func scanWebhookLogRow(row pgx.Row) (*domain.WebhookLog, error) {
	var l domain.WebhookLog
	err := row.Scan(
		&l.ID, &l.MerchantID, &l.Event, &l.Payload, &l.Status, &l.Attempts,
		&l.LastAttemptAt, &l.NextRetryAt, &l.ResponseCode, &l.ResponseBody,
		&l.CreatedAt, &l.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("scanning webhook log: %w", err)
	}
	return &l, nil
}
