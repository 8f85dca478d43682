package gateway

import (
	"encoding/json"
	"fmt"
)

type EventType string

const (
	EventPaymentCaptured EventType = "payment.captured"
	EventPaymentFailed   EventType = "payment.failed"
	EventOrderPaid       EventType = "order.paid"
	EventUnknown         EventType = "unknown"
)

// WebhookEvent is the decoded form of a gateway webhook body. Exactly one of
// the variant pointers is set, matching Type; event names the service does
// not know about become EventUnknown with RawType preserved, so new gateway
// events never hard-fail the ingress.
type WebhookEvent struct {
	Type      EventType
	RawType   string
	Captured  *CapturedEvent
	Failed    *FailedEvent
	OrderPaid *OrderPaidEvent

	// Raw is the untouched webhook body, stored with the transaction row
	Raw []byte
}

type CapturedEvent struct {
	PaymentID string
	OrderID   string
	Amount    int64 // smallest currency unit
	Currency  string
	Method    string
}

type FailedEvent struct {
	PaymentID        string
	OrderID          string
	Amount           int64
	ErrorCode        string
	ErrorDescription string
}

type OrderPaidEvent struct {
	OrderID  string
	Amount   int64
	Currency string
}

// wire shapes of the razorpay webhook envelope
type webhookEnvelope struct {
	Event   string `json:"event"`
	Payload struct {
		Payment struct {
			Entity paymentEntity `json:"entity"`
		} `json:"payment"`
		Order struct {
			Entity orderEntity `json:"entity"`
		} `json:"order"`
	} `json:"payload"`
}

type paymentEntity struct {
	ID               string `json:"id"`
	OrderID          string `json:"order_id"`
	Amount           int64  `json:"amount"`
	Currency         string `json:"currency"`
	Method           string `json:"method"`
	ErrorCode        string `json:"error_code"`
	ErrorDescription string `json:"error_description"`
}

type orderEntity struct {
	ID         string `json:"id"`
	Amount     int64  `json:"amount"`
	AmountPaid int64  `json:"amount_paid"`
	Currency   string `json:"currency"`
}

// ParseWebhookEvent decodes a raw webhook body once, at the ingress boundary.
func ParseWebhookEvent(body []byte) (*WebhookEvent, error) {
	var env webhookEnvelope
	if err := json.Unmarshal(body, &env); err != nil {
		return nil, fmt.Errorf("decode webhook body: %w", err)
	}
	if env.Event == "" {
		return nil, fmt.Errorf("webhook body missing event type")
	}

	evt := &WebhookEvent{RawType: env.Event, Raw: body}

	switch EventType(env.Event) {
	case EventPaymentCaptured:
		p := env.Payload.Payment.Entity
		if p.ID == "" || p.OrderID == "" {
			return nil, fmt.Errorf("payment.captured payload missing payment or order id")
		}
		evt.Type = EventPaymentCaptured
		evt.Captured = &CapturedEvent{
			PaymentID: p.ID,
			OrderID:   p.OrderID,
			Amount:    p.Amount,
			Currency:  p.Currency,
			Method:    p.Method,
		}

	case EventPaymentFailed:
		p := env.Payload.Payment.Entity
		if p.OrderID == "" {
			return nil, fmt.Errorf("payment.failed payload missing order id")
		}
		evt.Type = EventPaymentFailed
		evt.Failed = &FailedEvent{
			PaymentID:        p.ID,
			OrderID:          p.OrderID,
			Amount:           p.Amount,
			ErrorCode:        p.ErrorCode,
			ErrorDescription: p.ErrorDescription,
		}

	case EventOrderPaid:
		o := env.Payload.Order.Entity
		if o.ID == "" {
			return nil, fmt.Errorf("order.paid payload missing order id")
		}
		amount := o.AmountPaid
		if amount == 0 {
			amount = o.Amount
		}
		evt.Type = EventOrderPaid
		evt.OrderPaid = &OrderPaidEvent{
			OrderID:  o.ID,
			Amount:   amount,
			Currency: o.Currency,
		}

	default:
		evt.Type = EventUnknown
	}

	return evt, nil
}
