package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"paygate/internal/core/domain"
)

// IdempotencyRepository implements ports.IdempotencyRepository on Postgres.
// All methods run inside the caller's transaction so the cached response
// commits atomically with the resource it caches.
type IdempotencyRepository struct{}

func NewIdempotencyRepository() *IdempotencyRepository {
	return &IdempotencyRepository{}
}

func (r *IdempotencyRepository) Get(ctx context.Context, tx pgx.Tx, key string, merchantID uuid.UUID) (*domain.IdempotencyRecord, error) {
	query := `
		SELECT key, merchant_id, response_body, expires_at, created_at
		FROM idempotency_records
		WHERE key = $1 AND merchant_id = $2`

	var rec domain.IdempotencyRecord
	err := tx.QueryRow(ctx, query, key, merchantID).Scan(
		&rec.Key, &rec.MerchantID, &rec.ResponseBody, &rec.ExpiresAt, &rec.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("scanning idempotency record: %w", err)
	}
	return &rec, nil
}

func (r *IdempotencyRepository) Delete(ctx context.Context, tx pgx.Tx, key string, merchantID uuid.UUID) error {
	_, err := tx.Exec(ctx,
		`DELETE FROM idempotency_records WHERE key = $1 AND merchant_id = $2`,
		key, merchantID,
	)
	if err != nil {
		return fmt.Errorf("deleting idempotency record: %w", err)
	}
	return nil
}

// Put inserts the record. When a concurrent request already inserted the
// same (key, merchant) pair, the primary key arbitrates: this insert is a
// no-op and the winner's stored body is returned with conflict=true.
func (r *IdempotencyRepository) Put(ctx context.Context, tx pgx.Tx, rec *domain.IdempotencyRecord) ([]byte, bool, error) {
	tag, err := tx.Exec(ctx, `
		INSERT INTO idempotency_records (key, merchant_id, response_body, expires_at)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (key, merchant_id) DO NOTHING`,
		rec.Key, rec.MerchantID, rec.ResponseBody, rec.ExpiresAt,
	)
	if err != nil {
		return nil, false, fmt.Errorf("inserting idempotency record: %w", err)
	}
	if tag.RowsAffected() == 1 {
		return nil, false, nil
	}

	var winner []byte
	err = tx.QueryRow(ctx,
		`SELECT response_body FROM idempotency_records WHERE key = $1 AND merchant_id = $2`,
		rec.Key, rec.MerchantID,
	).Scan(&winner)
	if err != nil {
		return nil, false, fmt.Errorf("loading winning idempotency record: %w", err)
	}
	return winner, true, nil
}
