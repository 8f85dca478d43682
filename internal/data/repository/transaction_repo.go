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

type TransactionRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*entity.Transaction, error)
	FindByBookingAndOrderID(ctx context.Context, bookingID uuid.UUID, orderID string) (*entity.Transaction, error)

	// Upsert keyed by the (booking_id, gateway_order_id) natural key, never
	// insert-only. Re-processing a webhook event refreshes the existing row,
	// and a capture arriving after order.paid backfills gateway_payment_id
	// into the row order.paid created.
	UpsertByOrderID(ctx context.Context, tx *entity.Transaction) (uuid.UUID, error)
}

type transactionRepository struct {
	db  database.PgxIface
	log *zap.Logger
}

func NewTransactionRepository(db database.PgxIface, log *zap.Logger) TransactionRepository {
	return &transactionRepository{
		db:  db,
		log: log.With(zap.String("repository", "transaction")),
	}
}

const transactionColumns = `
	id, booking_id, gateway_order_id, gateway_payment_id, amount, currency, status,
	source, payment_method, failure_reason, raw_payload, created_at, updated_at
`

func scanTransaction(row pgx.Row) (*entity.Transaction, error) {
	var t entity.Transaction
	err := row.Scan(
		&t.ID,
		&t.BookingID,
		&t.GatewayOrderID,
		&t.GatewayPaymentID,
		&t.Amount,
		&t.Currency,
		&t.Status,
		&t.Source,
		&t.PaymentMethod,
		&t.FailureReason,
		&t.RawPayload,
		&t.CreatedAt,
		&t.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &t, nil
}

func (r *transactionRepository) FindByID(ctx context.Context, id uuid.UUID) (*entity.Transaction, error) {
	query := `SELECT ` + transactionColumns + ` FROM transactions WHERE id = $1`

	tx, err := scanTransaction(r.db.QueryRow(ctx, query, id))
	if err == pgx.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		r.log.Error("Failed to find transaction by ID",
			zap.Error(err),
			zap.String("transaction_id", id.String()),
		)
		return nil, fmt.Errorf("find transaction by ID %s: %w", id.String(), err)
	}

	return tx, nil
}

func (r *transactionRepository) FindByBookingAndOrderID(ctx context.Context, bookingID uuid.UUID, orderID string) (*entity.Transaction, error) {
	query := `SELECT ` + transactionColumns + ` FROM transactions WHERE booking_id = $1 AND gateway_order_id = $2`

	tx, err := scanTransaction(r.db.QueryRow(ctx, query, bookingID, orderID))
	if err == pgx.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		r.log.Error("Failed to find transaction by booking and order ID",
			zap.Error(err),
			zap.String("booking_id", bookingID.String()),
			zap.String("gateway_order_id", orderID),
		)
		return nil, fmt.Errorf("find transaction for booking %s order %s: %w", bookingID.String(), orderID, err)
	}

	return tx, nil
}

func (r *transactionRepository) UpsertByOrderID(ctx context.Context, tx *entity.Transaction) (uuid.UUID, error) {
	query := `
		INSERT INTO transactions (id, booking_id, gateway_order_id, gateway_payment_id, amount,
		                          currency, status, source, payment_method, failure_reason,
		                          raw_payload, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
		ON CONFLICT (booking_id, gateway_order_id) DO UPDATE
		SET gateway_payment_id = COALESCE(EXCLUDED.gateway_payment_id, transactions.gateway_payment_id),
		    amount = EXCLUDED.amount,
		    status = EXCLUDED.status,
		    source = EXCLUDED.source,
		    payment_method = COALESCE(EXCLUDED.payment_method, transactions.payment_method),
		    failure_reason = EXCLUDED.failure_reason,
		    raw_payload = EXCLUDED.raw_payload,
		    updated_at = NOW()
		RETURNING id
	`

	var id uuid.UUID
	err := r.db.QueryRow(ctx, query,
		tx.ID,
		tx.BookingID,
		tx.GatewayOrderID,
		tx.GatewayPaymentID,
		tx.Amount,
		tx.Currency,
		tx.Status,
		tx.Source,
		tx.PaymentMethod,
		tx.FailureReason,
		tx.RawPayload,
		tx.CreatedAt,
		tx.UpdatedAt,
	).Scan(&id)

	if err != nil {
		r.log.Error("Failed to upsert transaction by order ID",
			zap.Error(err),
			zap.String("booking_id", tx.BookingID.String()),
			zap.String("gateway_order_id", tx.GatewayOrderID),
		)
		return uuid.Nil, fmt.Errorf("upsert transaction for booking %s order %s: %w", tx.BookingID.String(), tx.GatewayOrderID, err)
	}

	return id, nil
}
