package response

import (
	"time"

	"academy-booking/internal/data/entity"
)

type PayoutResponse struct {
	ID               string             `json:"id"`
	BookingID        string             `json:"booking_id"`
	TransactionID    string             `json:"transaction_id"`
	AcademyUserID    string             `json:"academy_user_id"`
	Status           entity.PayoutState `json:"status"`
	BatchAmount      float64            `json:"batch_amount"`
	CommissionRate   float64            `json:"commission_rate"`
	CommissionAmount float64            `json:"commission_amount"`
	PayoutAmount     float64            `json:"payout_amount"`
	Currency         string             `json:"currency"`
	AccountRef       string             `json:"account_ref"`
	CreatedAt        time.Time          `json:"created_at"`
}

func PayoutToResponse(p *entity.Payout) PayoutResponse {
	return PayoutResponse{
		ID:               p.ID.String(),
		BookingID:        p.BookingID.String(),
		TransactionID:    p.TransactionID.String(),
		AcademyUserID:    p.AcademyUserID.String(),
		Status:           p.Status,
		BatchAmount:      p.BatchAmount,
		CommissionRate:   p.CommissionRate,
		CommissionAmount: p.CommissionAmount,
		PayoutAmount:     p.PayoutAmount,
		Currency:         p.Currency,
		AccountRef:       p.AccountRef,
		CreatedAt:        p.CreatedAt,
	}
}
