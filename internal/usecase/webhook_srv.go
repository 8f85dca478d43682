package usecase

import (
	"context"
	"fmt"
	"math"
	"time"

	"academy-booking/internal/data/entity"
	"academy-booking/internal/data/repository"
	"academy-booking/internal/gateway"
	"academy-booking/pkg/utils"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// WebhookService reconciles verified gateway events against booking and
// transaction state. Handlers are idempotent under at-least-once delivery:
// re-processing an event yields the same terminal state without duplicate
// transaction rows. Unexpected errors propagate so the ingress returns
// non-2xx and the gateway redelivers.
type WebhookService interface {
	HandleEvent(ctx context.Context, evt *gateway.WebhookEvent) error
}

type webhookService struct {
	repo   *repository.Repository
	payout PayoutService
	audit  AuditService
	config *utils.Config
	log    *zap.Logger
}

func NewWebhookService(repo *repository.Repository, payout PayoutService, audit AuditService, config *utils.Config, log *zap.Logger) WebhookService {
	return &webhookService{
		repo:   repo,
		payout: payout,
		audit:  audit,
		config: config,
		log:    log.With(zap.String("service", "webhook")),
	}
}

func (s *webhookService) HandleEvent(ctx context.Context, evt *gateway.WebhookEvent) error {
	switch evt.Type {
	case gateway.EventPaymentCaptured:
		return s.handlePaymentCaptured(ctx, evt)
	case gateway.EventPaymentFailed:
		return s.handlePaymentFailed(ctx, evt)
	case gateway.EventOrderPaid:
		return s.handleOrderPaid(ctx, evt)
	default:
		// Forward compatibility: new gateway events are logged and acked,
		// never hard-failed
		s.log.Info("Ignoring unhandled gateway event",
			zap.String("event", evt.RawType),
		)
		return nil
	}
}

func (s *webhookService) handlePaymentCaptured(ctx context.Context, evt *gateway.WebhookEvent) error {
	ev := evt.Captured

	booking, err := s.repo.Booking.FindByGatewayOrderID(ctx, ev.OrderID)
	if err != nil {
		return fmt.Errorf("handle payment.captured: %w", err)
	}
	if booking == nil {
		// Bisa jadi order milik flow/tenant lain; bukan error
		s.log.Warn("No booking for captured gateway order, skipping",
			zap.String("gateway_order_id", ev.OrderID),
			zap.String("gateway_payment_id", ev.PaymentID),
		)
		return nil
	}

	capturedAmount := float64(ev.Amount) / 100

	if booking.PaymentStatus == entity.PaymentStatusSuccess {
		// Redelivery, or the capture arriving after order.paid already
		// confirmed the booking. Refresh the transaction by its natural key;
		// the upsert COALESCEs the payment id into a row order.paid created
		// without one.
		tx := s.webhookTransaction(booking, ev.OrderID, &ev.PaymentID, entity.TransactionStatusSuccess, capturedAmount, ev.Currency, evt.Raw)
		tx.PaymentMethod = strPtr(ev.Method)
		txID, err := s.repo.Transaction.UpsertByOrderID(ctx, tx)
		if err != nil {
			return fmt.Errorf("handle duplicate payment.captured: %w", err)
		}

		if booking.GatewayPaymentID == nil {
			if err := s.repo.Booking.MarkPaymentSuccess(ctx, booking.ID, &ev.PaymentID, strPtr(ev.Method), time.Now()); err != nil {
				return fmt.Errorf("handle duplicate payment.captured: %w", err)
			}
		}

		// A payable booking with no payout underway means the earlier enqueue
		// never happened; Process is idempotent, so enqueueing again is safe
		if booking.PayoutStatus == entity.PayoutStatusNone {
			if err := s.payout.EnqueueForBooking(ctx, booking, txID); err != nil {
				return fmt.Errorf("handle duplicate payment.captured: %w", err)
			}
		}

		s.log.Info("Duplicate payment.captured reconciled",
			zap.String("booking_id", booking.ID.String()),
			zap.String("gateway_payment_id", ev.PaymentID),
		)
		return nil
	}

	if diff := math.Abs(capturedAmount - booking.Amount); diff > s.config.Payout.AmountTolerance {
		// Policy: trust the gateway capture, flag for manual reconciliation
		s.log.Warn("Captured amount differs from booking amount",
			zap.String("booking_id", booking.ID.String()),
			zap.String("gateway_order_id", ev.OrderID),
			zap.Float64("expected", booking.Amount),
			zap.Float64("captured", capturedAmount),
		)
	}

	now := time.Now()
	if err := s.repo.Booking.MarkPaymentSuccess(ctx, booking.ID, &ev.PaymentID, strPtr(ev.Method), now); err != nil {
		return fmt.Errorf("handle payment.captured: %w", err)
	}

	tx := s.webhookTransaction(booking, ev.OrderID, &ev.PaymentID, entity.TransactionStatusSuccess, capturedAmount, ev.Currency, evt.Raw)
	tx.PaymentMethod = strPtr(ev.Method)
	txID, err := s.repo.Transaction.UpsertByOrderID(ctx, tx)
	if err != nil {
		return fmt.Errorf("handle payment.captured: %w", err)
	}

	s.log.Info("Booking confirmed from payment.captured",
		zap.String("booking_id", booking.ID.String()),
		zap.String("booking_code", booking.BookingCode),
		zap.String("gateway_payment_id", ev.PaymentID),
		zap.Float64("amount", capturedAmount),
	)

	if err := s.audit.Record(ctx, AuditEntry{
		Action:     "payment_captured",
		Scale:      "booking",
		Label:      booking.BookingCode,
		EntityType: "booking",
		EntityID:   booking.ID.String(),
		Metadata: map[string]any{
			"gateway_order_id":   ev.OrderID,
			"gateway_payment_id": ev.PaymentID,
			"amount":             capturedAmount,
		},
	}); err != nil {
		s.log.Warn("Audit write failed", zap.Error(err))
	}

	if err := s.payout.EnqueueForBooking(ctx, booking, txID); err != nil {
		return fmt.Errorf("handle payment.captured: %w", err)
	}

	return nil
}

func (s *webhookService) handlePaymentFailed(ctx context.Context, evt *gateway.WebhookEvent) error {
	ev := evt.Failed

	booking, err := s.repo.Booking.FindByGatewayOrderID(ctx, ev.OrderID)
	if err != nil {
		return fmt.Errorf("handle payment.failed: %w", err)
	}
	if booking == nil {
		s.log.Warn("No booking for failed gateway order, skipping",
			zap.String("gateway_order_id", ev.OrderID),
		)
		return nil
	}

	if booking.PaymentStatus == entity.PaymentStatusSuccess {
		// Success is final; a stale failure event must not downgrade it
		s.log.Warn("Ignoring payment.failed after successful payment",
			zap.String("booking_id", booking.ID.String()),
			zap.String("gateway_order_id", ev.OrderID),
		)
		return nil
	}

	reason := ev.ErrorDescription
	if reason == "" {
		reason = ev.ErrorCode
	}
	if reason == "" {
		reason = "payment failed"
	}

	var paymentID *string
	if ev.PaymentID != "" {
		paymentID = &ev.PaymentID
	}

	if err := s.repo.Booking.MarkPaymentFailed(ctx, booking.ID, paymentID, reason); err != nil {
		return fmt.Errorf("handle payment.failed: %w", err)
	}

	tx := s.webhookTransaction(booking, ev.OrderID, paymentID, entity.TransactionStatusFailed, float64(ev.Amount)/100, booking.Currency, evt.Raw)
	tx.FailureReason = &reason
	if _, err := s.repo.Transaction.UpsertByOrderID(ctx, tx); err != nil {
		return fmt.Errorf("handle payment.failed: %w", err)
	}

	s.log.Info("Booking payment marked failed",
		zap.String("booking_id", booking.ID.String()),
		zap.String("gateway_order_id", ev.OrderID),
		zap.String("reason", reason),
	)

	if err := s.audit.Record(ctx, AuditEntry{
		Action:     "payment_failed",
		Scale:      "booking",
		Label:      booking.BookingCode,
		EntityType: "booking",
		EntityID:   booking.ID.String(),
		Metadata: map[string]any{
			"gateway_order_id": ev.OrderID,
			"reason":           reason,
		},
	}); err != nil {
		s.log.Warn("Audit write failed", zap.Error(err))
	}

	return nil
}

func (s *webhookService) handleOrderPaid(ctx context.Context, evt *gateway.WebhookEvent) error {
	ev := evt.OrderPaid

	booking, err := s.repo.Booking.FindByGatewayOrderID(ctx, ev.OrderID)
	if err != nil {
		return fmt.Errorf("handle order.paid: %w", err)
	}
	if booking == nil {
		s.log.Warn("No booking for paid gateway order, skipping",
			zap.String("gateway_order_id", ev.OrderID),
		)
		return nil
	}

	if booking.Status == entity.BookingStatusConfirmed {
		// Same recovery as the captured path: a confirmed booking with no
		// payout underway lost its enqueue, redo it from the stored transaction
		if booking.PayoutStatus == entity.PayoutStatusNone {
			tx, err := s.repo.Transaction.FindByBookingAndOrderID(ctx, booking.ID, ev.OrderID)
			if err != nil {
				return fmt.Errorf("handle order.paid: %w", err)
			}
			if tx != nil {
				if err := s.payout.EnqueueForBooking(ctx, booking, tx.ID); err != nil {
					return fmt.Errorf("handle order.paid: %w", err)
				}
			}
		}

		s.log.Info("Duplicate order.paid reconciled as no-op",
			zap.String("booking_id", booking.ID.String()),
			zap.String("gateway_order_id", ev.OrderID),
		)
		return nil
	}

	now := time.Now()
	if err := s.repo.Booking.MarkPaymentSuccess(ctx, booking.ID, nil, nil, now); err != nil {
		return fmt.Errorf("handle order.paid: %w", err)
	}

	tx := s.webhookTransaction(booking, ev.OrderID, nil, entity.TransactionStatusSuccess, float64(ev.Amount)/100, ev.Currency, evt.Raw)
	txID, err := s.repo.Transaction.UpsertByOrderID(ctx, tx)
	if err != nil {
		return fmt.Errorf("handle order.paid: %w", err)
	}

	s.log.Info("Booking confirmed from order.paid",
		zap.String("booking_id", booking.ID.String()),
		zap.String("booking_code", booking.BookingCode),
		zap.String("gateway_order_id", ev.OrderID),
	)

	if err := s.audit.Record(ctx, AuditEntry{
		Action:     "order_paid",
		Scale:      "booking",
		Label:      booking.BookingCode,
		EntityType: "booking",
		EntityID:   booking.ID.String(),
		Metadata: map[string]any{
			"gateway_order_id": ev.OrderID,
		},
	}); err != nil {
		s.log.Warn("Audit write failed", zap.Error(err))
	}

	if err := s.payout.EnqueueForBooking(ctx, booking, txID); err != nil {
		return fmt.Errorf("handle order.paid: %w", err)
	}

	return nil
}

func (s *webhookService) webhookTransaction(booking *entity.Booking, orderID string, paymentID *string, status entity.TransactionStatus, amount float64, currency string, raw []byte) *entity.Transaction {
	if currency == "" {
		currency = booking.Currency
	}
	now := time.Now()
	return &entity.Transaction{
		Base: entity.Base{
			ID:        uuid.New(),
			CreatedAt: now,
			UpdatedAt: now,
		},
		BookingID:        booking.ID,
		GatewayOrderID:   orderID,
		GatewayPaymentID: paymentID,
		Amount:           amount,
		Currency:         currency,
		Status:           status,
		Source:           entity.TransactionSourceWebhook,
		RawPayload:       raw,
	}
}

func strPtr(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
