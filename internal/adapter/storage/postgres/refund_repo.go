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

// RefundRepository implements ports.RefundRepository on Postgres.
type RefundRepository struct {
	pool Pool
}

func NewRefundRepository(pool Pool) *RefundRepository {
	return &RefundRepository{pool: pool}
}

const refundColumns = `id, payment_id, merchant_id, amount, reason, status, created_at, processed_at`

func (r *RefundRepository) Create(ctx context.Context, tx pgx.Tx, rf *domain.Refund) error {
	query := `
		INSERT INTO refunds (id, payment_id, merchant_id, amount, reason, status)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING created_at`

	err := tx.QueryRow(ctx, query,
		rf.ID, rf.PaymentID, rf.MerchantID, rf.Amount, rf.Reason, rf.Status,
	).Scan(&rf.CreatedAt)
	if err != nil {
		return fmt.Errorf("inserting refund: %w", err)
	}
	return nil
}

// SumAmounts runs inside the caller's transaction while the parent payment
// row is locked, so the over-refund check cannot race.
func (r *RefundRepository) SumAmounts(ctx context.Context, tx pgx.Tx, paymentID string) (int64, error) {
	var sum int64
	err := tx.QueryRow(ctx,
		`SELECT COALESCE(SUM(amount), 0) FROM refunds WHERE payment_id = $1`,
		paymentID,
	).Scan(&sum)
	if err != nil {
		return 0, fmt.Errorf("summing refunds: %w", err)
	}
	return sum, nil
}

func (r *RefundRepository) GetByID(ctx context.Context, merchantID uuid.UUID, id string) (*domain.Refund, error) {
	query := `SELECT ` + refundColumns + ` FROM refunds WHERE id = $1 AND merchant_id = $2`
	return scanRefund(r.pool.QueryRow(ctx, query, id, merchantID))
}

func (r *RefundRepository) GetByIDAny(ctx context.Context, id string) (*domain.Refund, error) {
	query := `SELECT ` + refundColumns + ` FROM refunds WHERE id = $1`
	return scanRefund(r.pool.QueryRow(ctx, query, id))
}

func (r *RefundRepository) List(ctx context.Context, merchantID uuid.UUID, limit, offset int) ([]domain.Refund, int64, error) {
	var total int64
	if err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM refunds WHERE merchant_id = $1`, merchantID).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("counting refunds: %w", err)
	}

	query := `SELECT ` + refundColumns + `
		FROM refunds
		WHERE merchant_id = $1
		ORDER BY created_at DESC
		LIMIT $2 OFFSET $3`

	rows, err := r.pool.Query(ctx, query, merchantID, limit, offset)
	if err != nil {
		return nil, 0, fmt.Errorf("listing refunds: %w", err)
	}
	defer rows.Close()

	refunds := make([]domain.Refund, 0, limit)
	for rows.Next() {
		var rf domain.Refund
		if err := rows.Scan(&rf.ID, &rf.PaymentID, &rf.MerchantID, &rf.Amount, &rf.Reason, &rf.Status, &rf.CreatedAt, &rf.ProcessedAt); err != nil {
			return nil, 0, fmt.Errorf("scanning refund: %w", err)
		}
		refunds = append(refunds, rf)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("iterating refunds: %w", err)
	}
	return refunds, total, nil
}

func (r *RefundRepository) ListByPayment(ctx context.Context, merchantID uuid.UUID, paymentID string, limit, offset int) ([]domain.Refund, int64, error) {
	var total int64
	if err := r.pool.QueryRow(ctx,
		`SELECT COUNT(*) FROM refunds WHERE merchant_id = $1 AND payment_id = $2`,
		merchantID, paymentID,
	).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("counting payment refunds: %w", err)
	}

	query := `SELECT ` + refundColumns + `
		FROM refunds
		WHERE merchant_id = $1 AND payment_id = $2
		ORDER BY created_at DESC
		LIMIT $3 OFFSET $4`

	rows, err := r.pool.Query(ctx, query, merchantID, paymentID, limit, offset)
	if err != nil {
		return nil, 0, fmt.Errorf("listing payment refunds: %w", err)
	}
	defer rows.Close()

	refunds := make([]domain.Refund, 0, limit)
	for rows.Next() {
		var rf domain.Refund
		if err := rows.Scan(&rf.ID, &rf.PaymentID, &rf.MerchantID, &rf.Amount, &rf.Reason, &rf.Status, &rf.CreatedAt, &rf.ProcessedAt); err != nil {
			return nil, 0, fmt.Errorf("scanning refund: %w", err)
		}
		refunds = append(refunds, rf)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("iterating payment refunds: %w", err)
	}
	return refunds, total, nil
}

func (r *RefundRepository) MarkProcessed(ctx context.Context, id string, processedAt time.Time) (bool, error) {
	query := `
		UPDATE refunds
		SET status = 'processed', processed_at = $2
		WHERE id = $1 AND status = 'pending'`

	tag, err := r.pool.Exec(ctx, query, id, processedAt)
	if err != nil {
		return false, fmt.Errorf("marking refund processed: %w", err)
	}
	return tag.RowsAffected() == 1, nil
}

func (r *RefundRepository) ListStuckPending(ctx context.Context, cutoff time.Time, limit int) ([]domain.Refund, error) {
	query := `SELECT ` + refundColumns + `
		FROM refunds
		WHERE status = 'pending' AND created_at < $1
		ORDER BY created_at
		LIMIT $2`

	rows, err := r.pool.Query(ctx, query, cutoff, limit)
	if err != nil {
		return nil, fmt.Errorf("listing stuck refunds: %w", err)
	}
	defer rows.Close()

	var refunds []domain.Refund
	for rows.Next() {
		var rf domain.Refund
		if err := rows.Scan(&rf.ID, &rf.PaymentID, &rf.MerchantID, &rf.Amount, &rf.Reason, &rf.Status, &rf.CreatedAt, &rf.ProcessedAt); err != nil {
			return nil, fmt.Errorf("scanning refund: %w", err)
		}
		refunds = append(refunds, rf)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating stuck refunds: %w", err)
	}
	return refunds, nil
}

func scanRefund(row pgx.Row) (*domain.Refund, error) {
	var rf domain.Refund
	err := row.Scan(&rf.ID, &rf.PaymentID, &rf.MerchantID, &rf.Amount, &rf.Reason, &rf.Status, &rf.CreatedAt, &rf.ProcessedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("scanning refund: %w", err)
	}
	return &rf, nil
}
