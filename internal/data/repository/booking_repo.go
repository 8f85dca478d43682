package repository

import (
	"context"
	"fmt"
	"time"

	"academy-booking/internal/data/entity"
	"academy-booking/pkg/database"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"
)

type BookingRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*entity.Booking, error)
	FindByBookingCode(ctx context.Context, code string) (*entity.Booking, error)
	FindByGatewayOrderID(ctx context.Context, orderID string) (*entity.Booking, error)

	// Reconciler mutations
	MarkPaymentSuccess(ctx context.Context, id uuid.UUID, paymentID, method *string, paidAt time.Time) error
	MarkPaymentFailed(ctx context.Context, id uuid.UUID, paymentID *string, reason string) error

	// Payout worker mutation
	UpdatePayoutStatus(ctx context.Context, id uuid.UUID, status entity.PayoutStatus) error
}

type bookingRepository struct {
	db  database.PgxIface
	log *zap.Logger
}

func NewBookingRepository(db database.PgxIface, log *zap.Logger) BookingRepository {
	return &bookingRepository{
		db:  db,
		log: log.With(zap.String("repository", "booking")),
	}
}

const bookingColumns = `
	id, booking_code, user_id, academy_user_id, batch_id, amount, currency, status,
	payment_status, gateway_order_id, gateway_payment_id, payment_method, paid_at,
	failure_reason, payout_status, created_at, updated_at
`

func scanBooking(row pgx.Row) (*entity.Booking, error) {
	var b entity.Booking
	err := row.Scan(
		&b.ID,
		&b.BookingCode,
		&b.UserID,
		&b.AcademyUserID,
		&b.BatchID,
		&b.Amount,
		&b.Currency,
		&b.Status,
		&b.PaymentStatus,
		&b.GatewayOrderID,
		&b.GatewayPaymentID,
		&b.PaymentMethod,
		&b.PaidAt,
		&b.FailureReason,
		&b.PayoutStatus,
		&b.CreatedAt,
		&b.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &b, nil
}

func (r *bookingRepository) FindByID(ctx context.Context, id uuid.UUID) (*entity.Booking, error) {
	query := `SELECT ` + bookingColumns + ` FROM bookings WHERE id = $1`

	booking, err := scanBooking(r.db.QueryRow(ctx, query, id))
	if err == pgx.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		r.log.Error("Failed to find booking by ID",
			zap.Error(err),
			zap.String("booking_id", id.String()),
		)
		return nil, fmt.Errorf("find booking by ID %s: %w", id.String(), err)
	}

	return booking, nil
}

func (r *bookingRepository) FindByBookingCode(ctx context.Context, code string) (*entity.Booking, error) {
	query := `SELECT ` + bookingColumns + ` FROM bookings WHERE booking_code = $1`

	booking, err := scanBooking(r.db.QueryRow(ctx, query, code))
	if err == pgx.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		r.log.Error("Failed to find booking by code",
			zap.Error(err),
			zap.String("booking_code", code),
		)
		return nil, fmt.Errorf("find booking by code %s: %w", code, err)
	}

	return booking, nil
}

func (r *bookingRepository) FindByGatewayOrderID(ctx context.Context, orderID string) (*entity.Booking, error) {
	query := `SELECT ` + bookingColumns + ` FROM bookings WHERE gateway_order_id = $1`

	booking, err := scanBooking(r.db.QueryRow(ctx, query, orderID))
	if err == pgx.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		r.log.Error("Failed to find booking by gateway order ID",
			zap.Error(err),
			zap.String("gateway_order_id", orderID),
		)
		return nil, fmt.Errorf("find booking by gateway order ID %s: %w", orderID, err)
	}

	return booking, nil
}

func (r *bookingRepository) MarkPaymentSuccess(ctx context.Context, id uuid.UUID, paymentID, method *string, paidAt time.Time) error {
	query := `
		UPDATE bookings
		SET status = 'confirmed', payment_status = 'success',
		    gateway_payment_id = COALESCE($2, gateway_payment_id),
		    payment_method = COALESCE($3, payment_method),
		    paid_at = COALESCE(paid_at, $4), failure_reason = NULL, updated_at = NOW()
		WHERE id = $1
	`

	result, err := r.db.Exec(ctx, query, id, paymentID, method, paidAt)
	if err != nil {
		r.log.Error("Failed to mark booking payment success",
			zap.Error(err),
			zap.String("booking_id", id.String()),
		)
		return fmt.Errorf("mark booking %s payment success: %w", id.String(), err)
	}

	if result.RowsAffected() == 0 {
		return fmt.Errorf("booking %s not found", id.String())
	}

	return nil
}

func (r *bookingRepository) MarkPaymentFailed(ctx context.Context, id uuid.UUID, paymentID *string, reason string) error {
	query := `
		UPDATE bookings
		SET payment_status = 'failed',
		    gateway_payment_id = COALESCE($2, gateway_payment_id),
		    failure_reason = $3, updated_at = NOW()
		WHERE id = $1
	`

	result, err := r.db.Exec(ctx, query, id, paymentID, reason)
	if err != nil {
		r.log.Error("Failed to mark booking payment failed",
			zap.Error(err),
			zap.String("booking_id", id.String()),
		)
		return fmt.Errorf("mark booking %s payment failed: %w", id.String(), err)
	}

	if result.RowsAffected() == 0 {
		return fmt.Errorf("booking %s not found", id.String())
	}

	return nil
}

func (r *bookingRepository) UpdatePayoutStatus(ctx context.Context, id uuid.UUID, status entity.PayoutStatus) error {
	query := `UPDATE bookings SET payout_status = $2, updated_at = NOW() WHERE id = $1`

	result, err := r.db.Exec(ctx, query, id, status)
	if err != nil {
		r.log.Error("Failed to update booking payout status",
			zap.Error(err),
			zap.String("booking_id", id.String()),
			zap.String("payout_status", string(status)),
		)
		return fmt.Errorf("update booking %s payout status to %s: %w", id.String(), string(status), err)
	}

	if result.RowsAffected() == 0 {
		return fmt.Errorf("booking %s not found", id.String())
	}

	return nil
}
