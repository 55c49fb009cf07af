package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"paygate/internal/core/domain"
	"paygate/internal/core/ports"
	"paygate/pkg/apperror"
	"paygate/pkg/ident"
)

// OrderService implements ports.OrderService.
type OrderService struct {
	transactor ports.DBTransactor
	orders     ports.OrderRepository
	log        zerolog.Logger
}

func NewOrderService(transactor ports.DBTransactor, orders ports.OrderRepository, log zerolog.Logger) *OrderService {
	return &OrderService{
		transactor: transactor,
		orders:     orders,
		log:        log.With().Str("component", "order_service").Logger(),
	}
}

func (s *OrderService) Create(ctx context.Context, in ports.CreateOrderInput) (*domain.Order, error) {
	if in.Amount < 1 {
		return nil, apperror.BadRequest("amount must be at least 1")
	}
	currency := strings.ToUpper(in.Currency)
	if currency == "" {
		currency = "INR"
	}
	if len(currency) != 3 {
		return nil, apperror.BadRequest("currency must be a 3-letter code")
	}

	order := &domain.Order{
		ID:         ident.NewOrderID(),
		MerchantID: in.MerchantID,
		Amount:     in.Amount,
		Currency:   currency,
		Receipt:    in.Receipt,
		Status:     domain.OrderStatusCreated,
	}

	tx, err := s.transactor.Begin(ctx)
	if err != nil {
		return nil, apperror.Internal(fmt.Errorf("beginning transaction: %w", err))
	}
	defer tx.Rollback(ctx) //nolint:errcheck

	if err := s.orders.Create(ctx, tx, order); err != nil {
		return nil, apperror.Internal(err)
	}
	if err := tx.Commit(ctx); err != nil {
		return nil, apperror.Internal(fmt.Errorf("committing order: %w", err))
	}

	s.log.Info().Str("order_id", order.ID).Int64("amount", order.Amount).Msg("order created")
	return order, nil
}

func (s *OrderService) Get(ctx context.Context, merchantID uuid.UUID, id string) (*domain.Order, error) {
	order, err := s.orders.GetByID(ctx, merchantID, id)
	if err != nil {
		return nil, apperror.Internal(err)
	}
	if order == nil {
		return nil, apperror.NotFound("Order")
	}
	return order, nil
}

func (s *OrderService) List(ctx context.Context, merchantID uuid.UUID, limit, offset int) ([]domain.Order, int64, error) {
	orders, total, err := s.orders.List(ctx, merchantID, limit, offset)
	if err != nil {
		return nil, 0, apperror.Internal(err)
	}
	return orders, total, nil
}
