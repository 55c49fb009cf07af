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

// PaymentRepository implements ports.PaymentRepository on Postgres.
type PaymentRepository struct {
	pool Pool
}

func NewPaymentRepository(pool Pool) *PaymentRepository {
	return &PaymentRepository{pool: pool}
}

const paymentColumns = `id, merchant_id, order_id, amount, currency, method, vpa, card_last4, card_network, status, captured, error_code, error_description, created_at, updated_at`

func (r *PaymentRepository) Create(ctx context.Context, tx pgx.Tx, p *domain.Payment) error {
	query := `
		INSERT INTO payments (id, merchant_id, order_id, amount, currency, method, vpa, card_last4, card_network, status)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		RETURNING created_at, updated_at`

	err := tx.QueryRow(ctx, query,
		p.ID, p.MerchantID, p.OrderID, p.Amount, p.Currency, p.Method,
		p.VPA, p.CardLast4, p.CardNetwork, p.Status,
	).Scan(&p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		return fmt.Errorf("inserting payment: %w", err)
	}
	return nil
}

func (r *PaymentRepository) GetByID(ctx context.Context, merchantID uuid.UUID, id string) (*domain.Payment, error) {
	query := `SELECT ` + paymentColumns + ` FROM payments WHERE id = $1 AND merchant_id = $2`
	return scanPayment(r.pool.QueryRow(ctx, query, id, merchantID))
}

func (r *PaymentRepository) GetByIDAny(ctx context.Context, id string) (*domain.Payment, error) {
	query := `SELECT ` + paymentColumns + ` FROM payments WHERE id = $1`
	return scanPayment(r.pool.QueryRow(ctx, query, id))
}

func (r *PaymentRepository) GetByIDForUpdate(ctx context.Context, tx pgx.Tx, merchantID uuid.UUID, id string) (*domain.Payment, error) {
	query := `SELECT ` + paymentColumns + ` FROM payments WHERE id = $1 AND merchant_id = $2 FOR UPDATE`
	return scanPayment(tx.QueryRow(ctx, query, id, merchantID))
}

func (r *PaymentRepository) List(ctx context.Context, merchantID uuid.UUID, limit, offset int) ([]domain.Payment, int64, error) {
	var total int64
	if err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM payments WHERE merchant_id = $1`, merchantID).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("counting payments: %w", err)
	}

	query := `SELECT ` + paymentColumns + `
		FROM payments
		WHERE merchant_id = $1
		ORDER BY created_at DESC
		LIMIT $2 OFFSET $3`

	rows, err := r.pool.Query(ctx, query, merchantID, limit, offset)
	if err != nil {
		return nil, 0, fmt.Errorf("listing payments: %w", err)
	}
	defer rows.Close()

	payments := make([]domain.Payment, 0, limit)
	for rows.Next() {
		p, err := scanPaymentRow(rows)
		if err != nil {
			return nil, 0, err
		}
		payments = append(payments, *p)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("iterating payments: %w", err)
	}
	return payments, total, nil
}

// MarkTerminal transitions pending -> status. The WHERE guard makes the
// write a no-op when another worker already finished the payment.
func (r *PaymentRepository) MarkTerminal(ctx context.Context, id string, status domain.PaymentStatus, errCode, errDesc *string) (bool, error) {
	query := `
		UPDATE payments
		SET status = $2, error_code = $3, error_description = $4, updated_at = NOW()
		WHERE id = $1 AND status = 'pending'`

	tag, err := r.pool.Exec(ctx, query, id, status, errCode, errDesc)
	if err != nil {
		return false, fmt.Errorf("marking payment terminal: %w", err)
	}
	return tag.RowsAffected() == 1, nil
}

func (r *PaymentRepository) SetCaptured(ctx context.Context, merchantID uuid.UUID, id string) error {
	query := `
		UPDATE payments
		SET captured = TRUE, updated_at = NOW()
		WHERE id = $1 AND merchant_id = $2`

	if _, err := r.pool.Exec(ctx, query, id, merchantID); err != nil {
		return fmt.Errorf("capturing payment: %w", err)
	}
	return nil
}

func (r *PaymentRepository) ListStuckPending(ctx context.Context, cutoff time.Time, limit int) ([]domain.Payment, error) {
	query := `SELECT ` + paymentColumns + `
		FROM payments
		WHERE status = 'pending' AND created_at < $1
		ORDER BY created_at
		LIMIT $2`

	rows, err := r.pool.Query(ctx, query, cutoff, limit)
	if err != nil {
		return nil, fmt.Errorf("listing stuck payments: %w", err)
	}
	defer rows.Close()

	var payments []domain.Payment
	for rows.Next() {
		p, err := scanPaymentRow(rows)
		if err != nil {
			return nil, err
		}
		payments = append(payments, *p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating stuck payments: %w", err)
	}
	return payments, nil
}

func scanPayment(row pgx.Row) (*domain.Payment, error) {
	p, err := scanPaymentRow(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return p, nil
}

func scanPaymentRow(row pgx.Row) (*domain.Payment, error) {
	var p domain.Payment
	err := row.Scan(
		&p.ID, &p.MerchantID, &p.OrderID, &p.Amount, &p.Currency, &p.Method,
		&p.VPA, &p.CardLast4, &p.CardNetwork, &p.Status, &p.Captured,
		&p.ErrorCode, &p.ErrorDescription, &p.CreatedAt, &p.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("scanning payment: %w", err)
	}
	return &p, nil
}
