package usecase

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"academy-booking/internal/data/entity"
	"academy-booking/internal/data/repository"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// AuditService appends audit trail facts for state-changing actions.
// Writes are best-effort: callers log the returned error and move on, an
// audit failure must never abort the operation that triggered it.
type AuditService interface {
	Record(ctx context.Context, entry AuditEntry) error
}

type AuditEntry struct {
	Action     string
	Scale      string
	Label      string
	EntityType string
	EntityID   string
	UserID     *uuid.UUID
	Metadata   map[string]any
}

type auditService struct {
	repo repository.AuditTrailRepository
	log  *zap.Logger
}

func NewAuditService(repo repository.AuditTrailRepository, log *zap.Logger) AuditService {
	return &auditService{
		repo: repo,
		log:  log.With(zap.String("service", "audit")),
	}
}

func (s *auditService) Record(ctx context.Context, entry AuditEntry) error {
	var metadata []byte
	if entry.Metadata != nil {
		b, err := json.Marshal(entry.Metadata)
		if err != nil {
			s.log.Warn("Failed to marshal audit metadata",
				zap.Error(err),
				zap.String("action", entry.Action),
			)
		} else {
			metadata = b
		}
	}

	trail := &entity.AuditTrail{
		ID:         uuid.New(),
		Action:     entry.Action,
		Scale:      entry.Scale,
		Label:      entry.Label,
		EntityType: entry.EntityType,
		EntityID:   entry.EntityID,
		UserID:     entry.UserID,
		Metadata:   metadata,
		CreatedAt:  time.Now(),
	}

	if err := s.repo.Create(ctx, trail); err != nil {
		return fmt.Errorf("record audit %s/%s: %w", entry.EntityType, entry.Action, err)
	}

	return nil
}
