package request

// PayoutJob is the queue payload handed from the producer to the payout
// worker. Monetary fields may legitimately be zero (a zero-value booking is
// still enqueued so the worker records the decision), so only the identifying
// fields carry validation tags.
type PayoutJob struct {
	BookingID     string `json:"booking_id" validate:"required,uuid"`
	TransactionID string `json:"transaction_id" validate:"required,uuid"`
	AcademyUserID string `json:"academy_user_id" validate:"required,uuid"`
	Currency      string `json:"currency" validate:"required"`

	Amount           float64 `json:"amount"`
	CommissionRate   float64 `json:"commission_rate"`
	CommissionAmount float64 `json:"commission_amount"`
	PayoutAmount     float64 `json:"payout_amount"`
	BatchAmount      float64 `json:"batch_amount"`
}
