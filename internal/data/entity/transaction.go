package entity

import (
	"github.com/google/uuid"
)

type TransactionStatus string

const (
	TransactionStatusPending TransactionStatus = "pending"
	TransactionStatusSuccess TransactionStatus = "success"
	TransactionStatusFailed  TransactionStatus = "failed"
)

// Provenance of a transaction row: asynchronous webhook reconciliation
// vs the synchronous client-confirmed payment flow.
const (
	TransactionSourceWebhook = "webhook"
	TransactionSourceClient  = "client"
)

// Transaction is one ledger entry per gateway payment attempt for a booking.
// Natural key is (booking_id, gateway_order_id); once the gateway payment id
// is known, (booking_id, gateway_payment_id) is unique as well.
type Transaction struct {
	Base
	BookingID        uuid.UUID         `db:"booking_id"`
	GatewayOrderID   string            `db:"gateway_order_id"`
	GatewayPaymentID *string           `db:"gateway_payment_id"`
	Amount           float64           `db:"amount"`
	Currency         string            `db:"currency"`
	Status           TransactionStatus `db:"status"`
	Source           string            `db:"source"`
	PaymentMethod    *string           `db:"payment_method"`
	FailureReason    *string           `db:"failure_reason"`

	// Raw gateway webhook payload, kept for forensic replay
	RawPayload []byte `db:"raw_payload"`
}
