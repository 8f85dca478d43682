package repository

import (
	"context"
	"fmt"

	"academy-booking/internal/data/entity"
	"academy-booking/pkg/database"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"
)

type PayoutAccountRepository interface {
	FindByUserID(ctx context.Context, userID uuid.UUID) (*entity.PayoutAccount, error)
}

type payoutAccountRepository struct {
	db  database.PgxIface
	log *zap.Logger
}

func NewPayoutAccountRepository(db database.PgxIface, log *zap.Logger) PayoutAccountRepository {
	return &payoutAccountRepository{
		db:  db,
		log: log.With(zap.String("repository", "payout_account")),
	}
}

func (r *payoutAccountRepository) FindByUserID(ctx context.Context, userID uuid.UUID) (*entity.PayoutAccount, error) {
	query := `
		SELECT id, user_id, gateway_account_id, bank_name, is_active, activation_status,
		       created_at, updated_at
		FROM payout_accounts
		WHERE user_id = $1
		ORDER BY created_at DESC
		LIMIT 1
	`

	var account entity.PayoutAccount
	err := r.db.QueryRow(ctx, query, userID).Scan(
		&account.ID,
		&account.UserID,
		&account.GatewayAccountID,
		&account.BankName,
		&account.IsActive,
		&account.ActivationStatus,
		&account.CreatedAt,
		&account.UpdatedAt,
	)

	if err == pgx.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		r.log.Error("Failed to find payout account by user ID",
			zap.Error(err),
			zap.String("user_id", userID.String()),
		)
		return nil, fmt.Errorf("find payout account by user ID %s: %w", userID.String(), err)
	}

	return &account, nil
}
