package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"paygate/internal/core/domain"
)

// MerchantRepository implements ports.MerchantRepository on Postgres.
type MerchantRepository struct {
	pool Pool
}

func NewMerchantRepository(pool Pool) *MerchantRepository {
	return &MerchantRepository{pool: pool}
}

const merchantColumns = `id, name, email, api_key, api_secret_hash, webhook_url, webhook_secret, created_at, updated_at`

func (r *MerchantRepository) Create(ctx context.Context, m *domain.Merchant) error {
	query := `
		INSERT INTO merchants (id, name, email, api_key, api_secret_hash, webhook_url, webhook_secret)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING created_at, updated_at`

	err := r.pool.QueryRow(ctx, query,
		m.ID, m.Name, m.Email, m.APIKey, m.APISecretHash, m.WebhookURL, m.WebhookSecret,
	).Scan(&m.CreatedAt, &m.UpdatedAt)
	if err != nil {
		return fmt.Errorf("inserting merchant: %w", err)
	}
	return nil
}

func (r *MerchantRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.Merchant, error) {
	query := `SELECT ` + merchantColumns + ` FROM merchants WHERE id = $1`
	return r.scanMerchant(r.pool.QueryRow(ctx, query, id))
}

func (r *MerchantRepository) GetByAPIKey(ctx context.Context, apiKey string) (*domain.Merchant, error) {
	query := `SELECT ` + merchantColumns + ` FROM merchants WHERE api_key = $1`
	return r.scanMerchant(r.pool.QueryRow(ctx, query, apiKey))
}

func (r *MerchantRepository) Update(ctx context.Context, m *domain.Merchant) error {
	query := `
		UPDATE merchants
		SET name = $2, email = $3, webhook_url = $4, webhook_secret = $5, updated_at = NOW()
		WHERE id = $1
		RETURNING updated_at`

	err := r.pool.QueryRow(ctx, query,
		m.ID, m.Name, m.Email, m.WebhookURL, m.WebhookSecret,
	).Scan(&m.UpdatedAt)
	if err != nil {
		return fmt.Errorf("updating merchant: %w", err)
	}
	return nil
}

func (r *MerchantRepository) scanMerchant(row pgx.Row) (*domain.Merchant, error) {
	var m domain.Merchant
	err := row.Scan(
		&m.ID, &m.Name, &m.Email, &m.APIKey, &m.APISecretHash,
		&m.WebhookURL, &m.WebhookSecret, &m.CreatedAt, &m.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("scanning merchant: %w", err)
	}
	return &m, nil
}
