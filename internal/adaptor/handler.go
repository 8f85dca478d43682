package adaptor

import (
	"academy-booking/internal/gateway"
	"academy-booking/internal/usecase"

	"go.uber.org/zap"
)

type Handler struct {
	Webhook *WebhookHandler
	Payout  *PayoutHandler
}

func NewHandler(service *usecase.Service, gw gateway.PaymentGateway, log *zap.Logger) *Handler {
	return &Handler{
		Webhook: NewWebhookHandler(service.Webhook, gw, log),
		Payout:  NewPayoutHandler(service.Payout, log),
	}
}
