package repository

import (
	"context"
	"fmt"

	"academy-booking/internal/data/entity"
	"academy-booking/pkg/database"

	"go.uber.org/zap"
)

type AuditTrailRepository interface {
	Create(ctx context.Context, trail *entity.AuditTrail) error
}

type auditTrailRepository struct {
	db  database.PgxIface
	log *zap.Logger
}

func NewAuditTrailRepository(db database.PgxIface, log *zap.Logger) AuditTrailRepository {
	return &auditTrailRepository{
		db:  db,
		log: log.With(zap.String("repository", "audit_trail")),
	}
}

func (r *auditTrailRepository) Create(ctx context.Context, trail *entity.AuditTrail) error {
	query := `
		INSERT INTO audit_trails (id, action, scale, label, entity_type, entity_id,
		                          user_id, metadata, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`

	_, err := r.db.Exec(ctx, query,
		trail.ID,
		trail.Action,
		trail.Scale,
		trail.Label,
		trail.EntityType,
		trail.EntityID,
		trail.UserID,
		trail.Metadata,
		trail.CreatedAt,
	)

	if err != nil {
		r.log.Error("Failed to create audit trail",
			zap.Error(err),
			zap.String("action", trail.Action),
			zap.String("entity_type", trail.EntityType),
			zap.String("entity_id", trail.EntityID),
		)
		return fmt.Errorf("create audit trail %s/%s: %w", trail.EntityType, trail.Action, err)
	}

	return nil
}
