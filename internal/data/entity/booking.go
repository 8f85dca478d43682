package entity

import (
	"time"

	"github.com/google/uuid"
)

type BookingStatus string

const (
	BookingStatusPending        BookingStatus = "pending"
	BookingStatusPaymentPending BookingStatus = "payment_pending"
	BookingStatusConfirmed      BookingStatus = "confirmed"
	BookingStatusCancelled      BookingStatus = "cancelled"
	BookingStatusExpired        BookingStatus = "expired"
)

type PaymentStatus string

const (
	PaymentStatusPending PaymentStatus = "pending"
	PaymentStatusSuccess PaymentStatus = "success"
	PaymentStatusFailed  PaymentStatus = "failed"
)

type PayoutStatus string

const (
	PayoutStatusNone        PayoutStatus = "none"
	PayoutStatusPending     PayoutStatus = "pending"
	PayoutStatusTransferred PayoutStatus = "transferred"
)

type Booking struct {
	Base
	BookingCode   string        `db:"booking_code"`
	UserID        uuid.UUID     `db:"user_id"`
	AcademyUserID uuid.UUID     `db:"academy_user_id"`
	BatchID       uuid.UUID     `db:"batch_id"`
	Amount        float64       `db:"amount"`
	Currency      string        `db:"currency"`
	Status        BookingStatus `db:"status"`

	// Payment detail, mutated by the webhook reconciler
	PaymentStatus    PaymentStatus `db:"payment_status"`
	GatewayOrderID   *string       `db:"gateway_order_id"`
	GatewayPaymentID *string       `db:"gateway_payment_id"`
	PaymentMethod    *string       `db:"payment_method"`
	PaidAt           *time.Time    `db:"paid_at"`
	FailureReason    *string       `db:"failure_reason"`

	// Independent dari payment status; owned by the payout worker
	PayoutStatus PayoutStatus `db:"payout_status"`
}
