package repository

import (
	"academy-booking/pkg/database"

	"go.uber.org/zap"
)

type Repository struct {
	User          UserRepository
	Booking       BookingRepository
	Transaction   TransactionRepository
	Payout        PayoutRepository
	PayoutAccount PayoutAccountRepository
	AuditTrail    AuditTrailRepository
}

func NewRepository(db database.PgxIface, log *zap.Logger) *Repository {
	return &Repository{
		User:          NewUserRepository(db, log),
		Booking:       NewBookingRepository(db, log),
		Transaction:   NewTransactionRepository(db, log),
		Payout:        NewPayoutRepository(db, log),
		PayoutAccount: NewPayoutAccountRepository(db, log),
		AuditTrail:    NewAuditTrailRepository(db, log),
	}
}
