package usecase

import (
	"academy-booking/internal/data/repository"
	"academy-booking/pkg/utils"

	"go.uber.org/zap"
)

type Service struct {
	Audit   AuditService
	Payout  PayoutService
	Webhook WebhookService
}

func NewService(repo *repository.Repository, publisher JobPublisher, config *utils.Config, log *zap.Logger) *Service {
	audit := NewAuditService(repo.AuditTrail, log)
	payout := NewPayoutService(repo, publisher, audit, config, log)
	webhook := NewWebhookService(repo, payout, audit, config, log)

	return &Service{
		Audit:   audit,
		Payout:  payout,
		Webhook: webhook,
	}
}
