package entity

import (
	"github.com/google/uuid"
)

type PayoutState string

const (
	PayoutStatePending PayoutState = "pending"
)

// Payout is one payable record for an academy owner. At most one payout may
// exist per (booking_id, transaction_id) pair; the table enforces this with a
// unique constraint so concurrent workers cannot double-create.
type Payout struct {
	Base
	BookingID     uuid.UUID   `db:"booking_id"`
	TransactionID uuid.UUID   `db:"transaction_id"`
	AcademyUserID uuid.UUID   `db:"academy_user_id"`
	Status        PayoutState `db:"status"`

	BatchAmount      float64 `db:"batch_amount"`
	CommissionRate   float64 `db:"commission_rate"`
	CommissionAmount float64 `db:"commission_amount"`
	PayoutAmount     float64 `db:"payout_amount"`
	Currency         string  `db:"currency"`

	// Snapshot dari gateway account id milik payout account saat dibuat
	AccountRef string `db:"account_ref"`
}
