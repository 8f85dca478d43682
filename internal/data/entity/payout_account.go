package entity

import (
	"github.com/google/uuid"
)

const PayoutAccountActivated = "activated"

// PayoutAccount is the academy owner's payout destination. A payout can only
// be created against an account that is active and fully activated.
type PayoutAccount struct {
	Base
	UserID           uuid.UUID `db:"user_id"`
	GatewayAccountID string    `db:"gateway_account_id"`
	BankName         *string   `db:"bank_name"`
	IsActive         bool      `db:"is_active"`
	ActivationStatus string    `db:"activation_status"`
}

func (a *PayoutAccount) Ready() bool {
	return a.IsActive && a.ActivationStatus == PayoutAccountActivated
}
