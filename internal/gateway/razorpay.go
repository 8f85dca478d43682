package gateway

import (
	"context"
	"fmt"

	razorpay "github.com/razorpay/razorpay-go"
	"github.com/razorpay/razorpay-go/utils"
	"go.uber.org/zap"
)

// SignatureHeader is the header Razorpay puts the webhook HMAC into.
const SignatureHeader = "X-Razorpay-Signature"

type razorpayGateway struct {
	client        *razorpay.Client
	keySecret     string
	webhookSecret string
	log           *zap.Logger
}

func NewRazorpayGateway(keyID, keySecret, webhookSecret string, log *zap.Logger) PaymentGateway {
	return &razorpayGateway{
		client:        razorpay.NewClient(keyID, keySecret),
		keySecret:     keySecret,
		webhookSecret: webhookSecret,
		log:           log.With(zap.String("gateway", "razorpay")),
	}
}

func (g *razorpayGateway) CreateOrder(_ context.Context, amount float64, currency, receipt string, notes map[string]interface{}) (string, error) {
	data := map[string]interface{}{
		"amount":   int64(amount * 100), // smallest currency unit
		"currency": currency,
		"receipt":  receipt,
	}
	if len(notes) > 0 {
		data["notes"] = notes
	}

	order, err := g.client.Order.Create(data, nil)
	if err != nil {
		g.log.Error("Failed to create gateway order",
			zap.Error(err),
			zap.String("receipt", receipt),
			zap.Float64("amount", amount),
		)
		return "", fmt.Errorf("create gateway order for %s: %w", receipt, err)
	}

	orderID, ok := order["id"].(string)
	if !ok {
		return "", fmt.Errorf("gateway order response missing id for %s", receipt)
	}

	return orderID, nil
}

func (g *razorpayGateway) FetchPayment(_ context.Context, paymentID string) (map[string]interface{}, error) {
	payment, err := g.client.Payment.Fetch(paymentID, nil, nil)
	if err != nil {
		g.log.Error("Failed to fetch gateway payment",
			zap.Error(err),
			zap.String("gateway_payment_id", paymentID),
		)
		return nil, fmt.Errorf("fetch gateway payment %s: %w", paymentID, err)
	}

	return payment, nil
}

func (g *razorpayGateway) VerifyPaymentSignature(orderID, paymentID, signature string) bool {
	params := map[string]interface{}{
		"razorpay_order_id":   orderID,
		"razorpay_payment_id": paymentID,
	}
	return utils.VerifyPaymentSignature(params, signature, g.keySecret)
}

func (g *razorpayGateway) VerifyWebhookSignature(rawBody []byte, signature string) bool {
	if signature == "" {
		return false
	}
	return utils.VerifyWebhookSignature(string(rawBody), signature, g.webhookSecret)
}
