package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"paygate/internal/core/domain"
)

// OrderRepository implements ports.OrderRepository on Postgres.
type OrderRepository struct {
	pool Pool
}

func NewOrderRepository(pool Pool) *OrderRepository {
	return &OrderRepository{pool: pool}
}

const orderColumns = `id, merchant_id, amount, currency, receipt, status, created_at`

func (r *OrderRepository) Create(ctx context.Context, tx pgx.Tx, o *domain.Order) error {
	query := `
		INSERT INTO orders (id, merchant_id, amount, currency, receipt, status)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING created_at`

	err := tx.QueryRow(ctx, query,
		o.ID, o.MerchantID, o.Amount, o.Currency, o.Receipt, o.Status,
	).Scan(&o.CreatedAt)
	if err != nil {
		return fmt.Errorf("inserting order: %w", err)
	}
	return nil
}

func (r *OrderRepository) GetByID(ctx context.Context, merchantID uuid.UUID, id string) (*domain.Order, error) {
	query := `SELECT ` + orderColumns + ` FROM orders WHERE id = $1 AND merchant_id = $2`
	return scanOrder(r.pool.QueryRow(ctx, query, id, merchantID))
}

func (r *OrderRepository) GetByIDForShare(ctx context.Context, tx pgx.Tx, merchantID uuid.UUID, id string) (*domain.Order, error) {
	query := `SELECT ` + orderColumns + ` FROM orders WHERE id = $1 AND merchant_id = $2 FOR SHARE`
	return scanOrder(tx.QueryRow(ctx, query, id, merchantID))
}

func (r *OrderRepository) List(ctx context.Context, merchantID uuid.UUID, limit, offset int) ([]domain.Order, int64, error) {
	var total int64
	if err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM orders WHERE merchant_id = $1`, merchantID).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("counting orders: %w", err)
	}

	query := `SELECT ` + orderColumns + `
		FROM orders
		WHERE merchant_id = $1
		ORDER BY created_at DESC
		LIMIT $2 OFFSET $3`

	rows, err := r.pool.Query(ctx, query, merchantID, limit, offset)
	if err != nil {
		return nil, 0, fmt.Errorf("listing orders: %w", err)
	}
	defer rows.Close()

	orders := make([]domain.Order, 0, limit)
	for rows.Next() {
		var o domain.Order
		if err := rows.Scan(&o.ID, &o.MerchantID, &o.Amount, &o.Currency, &o.Receipt, &o.Status, &o.CreatedAt); err != nil {
			return nil, 0, fmt.Errorf("scanning order: %w", err)
		}
		orders = append(orders, o)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("iterating orders: %w", err)
	}
	return orders, total, nil
}

func scanOrder(row pgx.Row) (*domain.Order, error) {
	var o domain.Order
	err := row.Scan(&o.ID, &o.MerchantID, &o.Amount, &o.Currency, &o.Receipt, &o.Status, &o.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("scanning order: %w", err)
	}
	return &o, nil
}
