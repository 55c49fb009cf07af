package service

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"paygate/internal/core/domain"
	"paygate/internal/core/ports"
	"paygate/pkg/apperror"
	"paygate/pkg/ident"
)

// PaymentService implements ports.PaymentService.
type PaymentService struct {
	transactor  ports.DBTransactor
	orders      ports.OrderRepository
	payments    ports.PaymentRepository
	idempotency ports.IdempotencyRepository
	queue       ports.JobQueue
	log         zerolog.Logger
}

func NewPaymentService(
	transactor ports.DBTransactor,
	orders ports.OrderRepository,
	payments ports.PaymentRepository,
	idempotency ports.IdempotencyRepository,
	queue ports.JobQueue,
	log zerolog.Logger,
) *PaymentService {
	return &PaymentService{
		transactor:  transactor,
		orders:      orders,
		payments:    payments,
		idempotency: idempotency,
		queue:       queue,
		log:         log.With().Str("component", "payment_service").Logger(),
	}
}

// Create inserts a pending payment and enqueues its processing job. The
// whole creation, including the idempotency record, commits in one
// transaction; on an idempotency replay the cached body is returned
// verbatim and no new payment exists.
func (s *PaymentService) Create(ctx context.Context, in ports.CreatePaymentInput) (*domain.Payment, []byte, error) {
	payment, err := buildPayment(in)
	if err != nil {
		return nil, nil, err
	}

	tx, err := s.transactor.Begin(ctx)
	if err != nil {
		return nil, nil, apperror.Internal(fmt.Errorf("beginning transaction: %w", err))
	}
	defer tx.Rollback(ctx) //nolint:errcheck

	if in.IdempotencyKey != "" {
		rec, err := s.idempotency.Get(ctx, tx, in.IdempotencyKey, in.MerchantID)
		if err != nil {
			return nil, nil, apperror.Internal(err)
		}
		if rec != nil {
			if !rec.Expired(time.Now()) {
				return nil, rec.ResponseBody, nil
			}
			if err := s.idempotency.Delete(ctx, tx, in.IdempotencyKey, in.MerchantID); err != nil {
				return nil, nil, apperror.Internal(err)
			}
		}
	}

	order, err := s.orders.GetByIDForShare(ctx, tx, in.MerchantID, in.OrderID)
	if err != nil {
		return nil, nil, apperror.Internal(err)
	}
	if order == nil {
		return nil, nil, apperror.NotFound("Order")
	}

	payment.Amount = order.Amount
	payment.Currency = order.Currency

	if err := s.payments.Create(ctx, tx, payment); err != nil {
		return nil, nil, apperror.Internal(err)
	}

	body, err := json.Marshal(payment)
	if err != nil {
		return nil, nil, apperror.Internal(fmt.Errorf("marshaling payment: %w", err))
	}

	if in.IdempotencyKey != "" {
		rec := &domain.IdempotencyRecord{
			Key:          in.IdempotencyKey,
			MerchantID:   in.MerchantID,
			ResponseBody: body,
			ExpiresAt:    time.Now().Add(domain.IdempotencyTTL),
		}
		winner, conflict, err := s.idempotency.Put(ctx, tx, rec)
		if err != nil {
			return nil, nil, apperror.Internal(err)
		}
		if conflict {
			// A concurrent request with the same key won; our insert
			// rolls back and the caller sees the winning response.
			return nil, winner, nil
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, nil, apperror.Internal(fmt.Errorf("committing payment: %w", err))
	}

	if err := s.queue.EnqueuePayment(ctx, ports.PaymentJob{PaymentID: payment.ID}); err != nil {
		// The row is committed; the reconciliation sweep re-enqueues it.
		s.log.Error().Err(err).Str("payment_id", payment.ID).Msg("payment job enqueue failed")
	}

	s.log.Info().Str("payment_id", payment.ID).Str("order_id", payment.OrderID).Msg("payment created")
	return payment, body, nil
}

func (s *PaymentService) Get(ctx context.Context, merchantID uuid.UUID, id string) (*domain.Payment, error) {
	payment, err := s.payments.GetByID(ctx, merchantID, id)
	if err != nil {
		return nil, apperror.Internal(err)
	}
	if payment == nil {
		return nil, apperror.NotFound("Payment")
	}
	return payment, nil
}

func (s *PaymentService) List(ctx context.Context, merchantID uuid.UUID, limit, offset int) ([]domain.Payment, int64, error) {
	payments, total, err := s.payments.List(ctx, merchantID, limit, offset)
	if err != nil {
		return nil, 0, apperror.Internal(err)
	}
	return payments, total, nil
}

// Capture marks a successful payment as captured. The request-body amount
// is ignored; capture always covers the full payment amount.
func (s *PaymentService) Capture(ctx context.Context, merchantID uuid.UUID, id string) (*domain.Payment, error) {
	payment, err := s.payments.GetByID(ctx, merchantID, id)
	if err != nil {
		return nil, apperror.Internal(err)
	}
	if payment == nil {
		return nil, apperror.NotFound("Payment")
	}
	if payment.Captured {
		return nil, apperror.BadRequest("payment already captured")
	}
	if !payment.CanCapture() {
		return nil, apperror.BadRequest("only successful payments can be captured")
	}

	if err := s.payments.SetCaptured(ctx, merchantID, id); err != nil {
		return nil, apperror.Internal(err)
	}
	payment.Captured = true

	s.log.Info().Str("payment_id", id).Msg("payment captured")
	return payment, nil
}

func buildPayment(in ports.CreatePaymentInput) (*domain.Payment, error) {
	if in.OrderID == "" {
		return nil, apperror.BadRequest("order_id is required")
	}

	p := &domain.Payment{
		ID:         ident.NewPaymentID(),
		MerchantID: in.MerchantID,
		OrderID:    in.OrderID,
		Method:     in.Method,
		Status:     domain.PaymentStatusPending,
	}

	switch in.Method {
	case domain.MethodUPI:
		vpa := strings.TrimSpace(in.VPA)
		if vpa == "" {
			return nil, apperror.BadRequest("vpa is required for upi payments")
		}
		if !strings.Contains(vpa, "@") {
			return nil, apperror.BadRequest("vpa must be of the form name@bank")
		}
		p.VPA = &vpa
	case domain.MethodCard:
		if in.CardNumber == "" || in.CardExpiry == "" || in.CardCVV == "" {
			return nil, apperror.BadRequest("card_number, card_expiry and card_cvv are required for card payments")
		}
		if len(in.CardNumber) < 12 {
			return nil, apperror.BadRequest("card_number is invalid")
		}
		last4 := in.CardNumber[len(in.CardNumber)-4:]
		network := domain.DetectCardNetwork(in.CardNumber)
		p.CardLast4 = &last4
		p.CardNetwork = &network
	default:
		return nil, apperror.BadRequest("method must be upi or card")
	}

	return p, nil
}
