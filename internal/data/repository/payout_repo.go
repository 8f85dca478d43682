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

type PayoutRepository interface {
	// Create inserts the payout. When a payout for the same
	// (booking_id, transaction_id) pair already exists it returns false
	// without error; the unique constraint on the table is what makes
	// this safe under concurrent workers.
	Create(ctx context.Context, payout *entity.Payout) (bool, error)

	FindByID(ctx context.Context, id uuid.UUID) (*entity.Payout, error)
	FindByBookingAndTransaction(ctx context.Context, bookingID, transactionID uuid.UUID) (*entity.Payout, error)
}

type payoutRepository struct {
	db  database.PgxIface
	log *zap.Logger
}

func NewPayoutRepository(db database.PgxIface, log *zap.Logger) PayoutRepository {
	return &payoutRepository{
		db:  db,
		log: log.With(zap.String("repository", "payout")),
	}
}

const payoutColumns = `
	id, booking_id, transaction_id, academy_user_id, status, batch_amount,
	commission_rate, commission_amount, payout_amount, currency, account_ref,
	created_at, updated_at
`

func scanPayout(row pgx.Row) (*entity.Payout, error) {
	var p entity.Payout
	err := row.Scan(
		&p.ID,
		&p.BookingID,
		&p.TransactionID,
		&p.AcademyUserID,
		&p.Status,
		&p.BatchAmount,
		&p.CommissionRate,
		&p.CommissionAmount,
		&p.PayoutAmount,
		&p.Currency,
		&p.AccountRef,
		&p.CreatedAt,
		&p.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *payoutRepository) Create(ctx context.Context, payout *entity.Payout) (bool, error) {
	query := `
		INSERT INTO payouts (id, booking_id, transaction_id, academy_user_id, status,
		                     batch_amount, commission_rate, commission_amount, payout_amount,
		                     currency, account_ref, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
		ON CONFLICT (booking_id, transaction_id) DO NOTHING
	`

	result, err := r.db.Exec(ctx, query,
		payout.ID,
		payout.BookingID,
		payout.TransactionID,
		payout.AcademyUserID,
		payout.Status,
		payout.BatchAmount,
		payout.CommissionRate,
		payout.CommissionAmount,
		payout.PayoutAmount,
		payout.Currency,
		payout.AccountRef,
		payout.CreatedAt,
		payout.UpdatedAt,
	)

	if err != nil {
		r.log.Error("Failed to create payout",
			zap.Error(err),
			zap.String("booking_id", payout.BookingID.String()),
			zap.String("transaction_id", payout.TransactionID.String()),
		)
		return false, fmt.Errorf("create payout for booking %s transaction %s: %w",
			payout.BookingID.String(), payout.TransactionID.String(), err)
	}

	// RowsAffected 0 berarti pasangan (booking, transaction) sudah punya payout
	return result.RowsAffected() > 0, nil
}

func (r *payoutRepository) FindByID(ctx context.Context, id uuid.UUID) (*entity.Payout, error) {
	query := `SELECT ` + payoutColumns + ` FROM payouts WHERE id = $1`

	payout, err := scanPayout(r.db.QueryRow(ctx, query, id))
	if err == pgx.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		r.log.Error("Failed to find payout by ID",
			zap.Error(err),
			zap.String("payout_id", id.String()),
		)
		return nil, fmt.Errorf("find payout by ID %s: %w", id.String(), err)
	}

	return payout, nil
}

func (r *payoutRepository) FindByBookingAndTransaction(ctx context.Context, bookingID, transactionID uuid.UUID) (*entity.Payout, error) {
	query := `SELECT ` + payoutColumns + ` FROM payouts WHERE booking_id = $1 AND transaction_id = $2`

	payout, err := scanPayout(r.db.QueryRow(ctx, query, bookingID, transactionID))
	if err == pgx.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		r.log.Error("Failed to find payout by booking and transaction",
			zap.Error(err),
			zap.String("booking_id", bookingID.String()),
			zap.String("transaction_id", transactionID.String()),
		)
		return nil, fmt.Errorf("find payout for booking %s transaction %s: %w",
			bookingID.String(), transactionID.String(), err)
	}

	return payout, nil
}
