package response

import (
	"time"

	"academy-booking/internal/data/entity"
)

// BookingPaymentResponse is the operator view of a booking's payment state,
// pipeline output included.
type BookingPaymentResponse struct {
	BookingID        string               `json:"booking_id"`
	BookingCode      string               `json:"booking_code"`
	Status           entity.BookingStatus `json:"status"`
	Amount           float64              `json:"amount"`
	Currency         string               `json:"currency"`
	PaymentStatus    entity.PaymentStatus `json:"payment_status"`
	GatewayOrderID   *string              `json:"gateway_order_id,omitempty"`
	GatewayPaymentID *string              `json:"gateway_payment_id,omitempty"`
	PaymentMethod    *string              `json:"payment_method,omitempty"`
	PaidAt           *time.Time           `json:"paid_at,omitempty"`
	FailureReason    *string              `json:"failure_reason,omitempty"`
	PayoutStatus     entity.PayoutStatus  `json:"payout_status"`
	Transaction      *TransactionResponse `json:"transaction,omitempty"`
}

type TransactionResponse struct {
	ID               string                   `json:"id"`
	GatewayOrderID   string                   `json:"gateway_order_id"`
	GatewayPaymentID *string                  `json:"gateway_payment_id,omitempty"`
	Amount           float64                  `json:"amount"`
	Status           entity.TransactionStatus `json:"status"`
	Source           string                   `json:"source"`
	CreatedAt        time.Time                `json:"created_at"`
}

func BookingPaymentToResponse(b *entity.Booking, tx *entity.Transaction) BookingPaymentResponse {
	resp := BookingPaymentResponse{
		BookingID:        b.ID.String(),
		BookingCode:      b.BookingCode,
		Status:           b.Status,
		Amount:           b.Amount,
		Currency:         b.Currency,
		PaymentStatus:    b.PaymentStatus,
		GatewayOrderID:   b.GatewayOrderID,
		GatewayPaymentID: b.GatewayPaymentID,
		PaymentMethod:    b.PaymentMethod,
		PaidAt:           b.PaidAt,
		FailureReason:    b.FailureReason,
		PayoutStatus:     b.PayoutStatus,
	}

	if tx != nil {
		resp.Transaction = &TransactionResponse{
			ID:               tx.ID.String(),
			GatewayOrderID:   tx.GatewayOrderID,
			GatewayPaymentID: tx.GatewayPaymentID,
			Amount:           tx.Amount,
			Status:           tx.Status,
			Source:           tx.Source,
			CreatedAt:        tx.CreatedAt,
		}
	}

	return resp
}
