package service

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"paygate/internal/core/domain"
	"paygate/internal/core/ports"
	"paygate/pkg/apperror"
	"paygate/pkg/ident"
)

// RefundService implements ports.RefundService.
type RefundService struct {
	transactor ports.DBTransactor
	payments   ports.PaymentRepository
	refunds    ports.RefundRepository
	queue      ports.JobQueue
	log        zerolog.Logger
}

func NewRefundService(
	transactor ports.DBTransactor,
	payments ports.PaymentRepository,
	refunds ports.RefundRepository,
	queue ports.JobQueue,
	log zerolog.Logger,
) *RefundService {
	return &RefundService{
		transactor: transactor,
		payments:   payments,
		refunds:    refunds,
		queue:      queue,
		log:        log.With().Str("component", "refund_service").Logger(),
	}
}

// Create inserts a pending refund. The available-amount check runs in the
// same transaction as the insert, under a row lock on the parent payment,
// so concurrent refunds cannot jointly exceed the payment amount.
func (s *RefundService) Create(ctx context.Context, in ports.CreateRefundInput) (*domain.Refund, error) {
	if in.Amount < 1 {
		return nil, apperror.BadRequest("amount must be at least 1")
	}

	tx, err := s.transactor.Begin(ctx)
	if err != nil {
		return nil, apperror.Internal(fmt.Errorf("beginning transaction: %w", err))
	}
	defer tx.Rollback(ctx) //nolint:errcheck

	payment, err := s.payments.GetByIDForUpdate(ctx, tx, in.MerchantID, in.PaymentID)
	if err != nil {
		return nil, apperror.Internal(err)
	}
	if payment == nil {
		return nil, apperror.NotFound("Payment")
	}
	if !payment.CanRefund() {
		return nil, apperror.BadRequest("only successful payments can be refunded")
	}

	refunded, err := s.refunds.SumAmounts(ctx, tx, payment.ID)
	if err != nil {
		return nil, apperror.Internal(err)
	}
	available := payment.Amount - refunded
	if in.Amount > available {
		return nil, apperror.BadRequest(fmt.Sprintf("refund amount exceeds available amount %d", available))
	}

	refund := &domain.Refund{
		ID:         ident.NewRefundID(),
		PaymentID:  payment.ID,
		MerchantID: in.MerchantID,
		Amount:     in.Amount,
		Reason:     in.Reason,
		Status:     domain.RefundStatusPending,
	}
	if err := s.refunds.Create(ctx, tx, refund); err != nil {
		return nil, apperror.Internal(err)
	}
	if err := tx.Commit(ctx); err != nil {
		return nil, apperror.Internal(fmt.Errorf("committing refund: %w", err))
	}

	if err := s.queue.EnqueueRefund(ctx, ports.RefundJob{RefundID: refund.ID}); err != nil {
		// The row is committed; the reconciliation sweep re-enqueues it.
		s.log.Error().Err(err).Str("refund_id", refund.ID).Msg("refund job enqueue failed")
	}

	s.log.Info().Str("refund_id", refund.ID).Str("payment_id", payment.ID).Int64("amount", refund.Amount).Msg("refund created")
	return refund, nil
}

func (s *RefundService) Get(ctx context.Context, merchantID uuid.UUID, id string) (*domain.Refund, error) {
	refund, err := s.refunds.GetByID(ctx, merchantID, id)
	if err != nil {
		return nil, apperror.Internal(err)
	}
	if refund == nil {
		return nil, apperror.NotFound("Refund")
	}
	return refund, nil
}

func (s *RefundService) List(ctx context.Context, merchantID uuid.UUID, limit, offset int) ([]domain.Refund, int64, error) {
	refunds, total, err := s.refunds.List(ctx, merchantID, limit, offset)
	if err != nil {
		return nil, 0, apperror.Internal(err)
	}
	return refunds, total, nil
}

func (s *RefundService) ListByPayment(ctx context.Context, merchantID uuid.UUID, paymentID string, limit, offset int) ([]domain.Refund, int64, error) {
	payment, err := s.payments.GetByID(ctx, merchantID, paymentID)
	if err != nil {
		return nil, 0, apperror.Internal(err)
	}
	if payment == nil {
		return nil, 0, apperror.NotFound("Payment")
	}

	refunds, total, err := s.refunds.ListByPayment(ctx, merchantID, paymentID, limit, offset)
	if err != nil {
		return nil, 0, apperror.Internal(err)
	}
	return refunds, total, nil
}
