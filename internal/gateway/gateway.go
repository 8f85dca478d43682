package gateway

import (
	"context"
)

// PaymentGateway is the surface of the payment provider this service depends
// on. Order creation and payment fetch belong to the synchronous booking
// flow; the webhook pipeline only uses the verify methods.
type PaymentGateway interface {
	CreateOrder(ctx context.Context, amount float64, currency, receipt string, notes map[string]interface{}) (string, error)
	FetchPayment(ctx context.Context, paymentID string) (map[string]interface{}, error)
	VerifyPaymentSignature(orderID, paymentID, signature string) bool

	// VerifyWebhookSignature checks the HMAC-SHA256 hex digest of the exact
	// raw request body against the signature header. Callers must pass the
	// untouched bytes: the gateway signs what it sent, not a re-encoding.
	VerifyWebhookSignature(rawBody []byte, signature string) bool
}
