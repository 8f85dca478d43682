package wire

import (
	"academy-booking/internal/adaptor"

	"github.com/go-chi/chi/v5"
)

func wireWebhook(r chi.Router, webhookHandler *adaptor.WebhookHandler) {
	// POST /api/webhooks/razorpay - gateway payment notifications.
	// Raw body is read inside the handler for signature verification, so no
	// body-parsing middleware may be mounted on this route.
	r.Post("/api/webhooks/razorpay", webhookHandler.HandleGatewayWebhook)
}
