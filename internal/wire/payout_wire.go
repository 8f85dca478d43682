package wire

import (
	"academy-booking/internal/adaptor"

	"github.com/go-chi/chi/v5"
)

func wirePayout(r chi.Router, payoutHandler *adaptor.PayoutHandler) {
	// Operator lookups for pipeline output. Authentication lives on the API
	// gateway in front of this service.
	r.Route("/api/admin", func(r chi.Router) {
		// GET /api/admin/payouts/{id} - inspect a payout record
		r.Get("/payouts/{id}", payoutHandler.GetPayout)

		// GET /api/admin/bookings/{code}/payment - payment state of a booking
		r.Get("/bookings/{code}/payment", payoutHandler.GetBookingPayment)
	})
}
