package gateway

import (
	"testing"
)

func TestParseWebhookEventCaptured(t *testing.T) {
	body := []byte(`{
		"event": "payment.captured",
		"payload": {
			"payment": {
				"entity": {
					"id": "pay_P1",
					"order_id": "order_O1",
					"amount": 50000,
					"currency": "INR",
					"method": "upi"
				}
			}
		}
	}`)

	evt, err := ParseWebhookEvent(body)
	if err != nil {
		t.Fatalf("ParseWebhookEvent: %v", err)
	}
	if evt.Type != EventPaymentCaptured {
		t.Fatalf("type = %s, want payment.captured", evt.Type)
	}
	if evt.Captured == nil {
		t.Fatal("Captured variant not set")
	}
	if evt.Captured.PaymentID != "pay_P1" || evt.Captured.OrderID != "order_O1" {
		t.Errorf("ids = %s/%s", evt.Captured.PaymentID, evt.Captured.OrderID)
	}
	if evt.Captured.Amount != 50000 {
		t.Errorf("amount = %d, want 50000", evt.Captured.Amount)
	}
	if evt.Captured.Method != "upi" {
		t.Errorf("method = %s, want upi", evt.Captured.Method)
	}
	if string(evt.Raw) != string(body) {
		t.Error("raw body not preserved")
	}
}

func TestParseWebhookEventCapturedMissingIDs(t *testing.T) {
	body := []byte(`{"event":"payment.captured","payload":{"payment":{"entity":{"amount":50000}}}}`)
	if _, err := ParseWebhookEvent(body); err == nil {
		t.Fatal("expected error for capture without payment and order ids")
	}
}

func TestParseWebhookEventFailed(t *testing.T) {
	body := []byte(`{
		"event": "payment.failed",
		"payload": {
			"payment": {
				"entity": {
					"id": "pay_P1",
					"order_id": "order_O1",
					"amount": 50000,
					"error_code": "BAD_REQUEST_ERROR",
					"error_description": "Payment declined"
				}
			}
		}
	}`)

	evt, err := ParseWebhookEvent(body)
	if err != nil {
		t.Fatalf("ParseWebhookEvent: %v", err)
	}
	if evt.Type != EventPaymentFailed || evt.Failed == nil {
		t.Fatalf("type = %s, Failed = %v", evt.Type, evt.Failed)
	}
	if evt.Failed.ErrorDescription != "Payment declined" {
		t.Errorf("error description = %s", evt.Failed.ErrorDescription)
	}
}

func TestParseWebhookEventOrderPaid(t *testing.T) {
	body := []byte(`{
		"event": "order.paid",
		"payload": {
			"order": {
				"entity": {
					"id": "order_O1",
					"amount": 50000,
					"amount_paid": 48000,
					"currency": "INR"
				}
			}
		}
	}`)

	evt, err := ParseWebhookEvent(body)
	if err != nil {
		t.Fatalf("ParseWebhookEvent: %v", err)
	}
	if evt.Type != EventOrderPaid || evt.OrderPaid == nil {
		t.Fatalf("type = %s, OrderPaid = %v", evt.Type, evt.OrderPaid)
	}
	// amount_paid takes precedence over the order amount
	if evt.OrderPaid.Amount != 48000 {
		t.Errorf("amount = %d, want 48000", evt.OrderPaid.Amount)
	}
}

func TestParseWebhookEventOrderPaidAmountFallback(t *testing.T) {
	body := []byte(`{"event":"order.paid","payload":{"order":{"entity":{"id":"order_O1","amount":50000}}}}`)

	evt, err := ParseWebhookEvent(body)
	if err != nil {
		t.Fatalf("ParseWebhookEvent: %v", err)
	}
	if evt.OrderPaid.Amount != 50000 {
		t.Errorf("amount = %d, want fallback to order amount", evt.OrderPaid.Amount)
	}
}

func TestParseWebhookEventUnknown(t *testing.T) {
	body := []byte(`{"event":"refund.processed","payload":{}}`)

	evt, err := ParseWebhookEvent(body)
	if err != nil {
		t.Fatalf("unknown events must parse: %v", err)
	}
	if evt.Type != EventUnknown {
		t.Errorf("type = %s, want unknown", evt.Type)
	}
	if evt.RawType != "refund.processed" {
		t.Errorf("raw type = %s, want refund.processed", evt.RawType)
	}
}

func TestParseWebhookEventMalformed(t *testing.T) {
	if _, err := ParseWebhookEvent([]byte(`not json`)); err == nil {
		t.Error("expected error for malformed body")
	}
	if _, err := ParseWebhookEvent([]byte(`{"payload":{}}`)); err == nil {
		t.Error("expected error for body without event type")
	}
}
