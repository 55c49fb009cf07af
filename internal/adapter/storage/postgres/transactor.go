package postgres

import (
	"context"

	"github.com/jackc/pgx/v5"
)

// Transactor satisfies ports.DBTransactor over a Pool.
type Transactor struct {
	pool Pool
}

func NewTransactor(pool Pool) *Transactor {
	return &Transactor{pool: pool}
}

func (t *Transactor) Begin(ctx context.Context) (pgx.Tx, error) {
	return t.pool.Begin(ctx)
}
