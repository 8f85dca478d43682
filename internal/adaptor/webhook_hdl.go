package adaptor

import (
	"io"
	"net/http"

	"academy-booking/internal/gateway"
	"academy-booking/internal/usecase"
	"academy-booking/pkg/utils"

	"go.uber.org/zap"
)

// Webhook bodies are small JSON documents; anything bigger is not ours.
const maxWebhookBody = 1 << 20

type WebhookHandler struct {
	service usecase.WebhookService
	gateway gateway.PaymentGateway
	log     *zap.Logger
}

func NewWebhookHandler(service usecase.WebhookService, gw gateway.PaymentGateway, log *zap.Logger) *WebhookHandler {
	return &WebhookHandler{
		service: service,
		gateway: gw,
		log:     log.With(zap.String("handler", "webhook")),
	}
}

// HandleGatewayWebhook handles POST /api/webhooks/razorpay.
// The signature covers the literal bytes the gateway sent, so the body is
// read raw here before any JSON decoding; this route must never sit behind
// body-parsing middleware. Non-2xx responses make the gateway redeliver.
func (h *WebhookHandler) HandleGatewayWebhook(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxWebhookBody))
	if err != nil {
		h.log.Warn("Failed to read webhook body", zap.Error(err))
		utils.ResponseBadRequest(w, "Invalid request body", nil)
		return
	}

	signature := r.Header.Get(gateway.SignatureHeader)
	if signature == "" {
		h.log.Warn("Webhook without signature header rejected",
			zap.String("ip", r.RemoteAddr),
		)
		utils.ResponseUnauthorized(w, "Missing signature")
		return
	}

	if !h.gateway.VerifyWebhookSignature(body, signature) {
		h.log.Warn("Webhook signature mismatch rejected",
			zap.String("ip", r.RemoteAddr),
		)
		utils.ResponseUnauthorized(w, "Invalid signature")
		return
	}

	event, err := gateway.ParseWebhookEvent(body)
	if err != nil {
		h.log.Warn("Malformed webhook event rejected", zap.Error(err))
		utils.ResponseBadRequest(w, "Malformed event", nil)
		return
	}

	if err := h.service.HandleEvent(r.Context(), event); err != nil {
		h.log.Error("Failed to process webhook event",
			zap.Error(err),
			zap.String("event", event.RawType),
		)
		utils.ResponseInternalError(w, "Internal server error")
		return
	}

	utils.ResponseSuccess(w, "success", nil)
}
