package adaptor

import (
	"net/http"
	"strings"

	"academy-booking/internal/usecase"
	"academy-booking/pkg/utils"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

type PayoutHandler struct {
	service usecase.PayoutService
	log     *zap.Logger
}

func NewPayoutHandler(service usecase.PayoutService, log *zap.Logger) *PayoutHandler {
	return &PayoutHandler{
		service: service,
		log:     log.With(zap.String("handler", "payout")),
	}
}

// GetPayout handles GET /api/admin/payouts/{id}
func (h *PayoutHandler) GetPayout(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	payout, err := h.service.GetPayout(r.Context(), id)
	if err != nil {
		h.handleServiceError(w, err, "get payout")
		return
	}

	utils.ResponseSuccess(w, "success", payout)
}

// GetBookingPayment handles GET /api/admin/bookings/{code}/payment
func (h *PayoutHandler) GetBookingPayment(w http.ResponseWriter, r *http.Request) {
	code := chi.URLParam(r, "code")

	payment, err := h.service.GetBookingPayment(r.Context(), code)
	if err != nil {
		h.handleServiceError(w, err, "get booking payment")
		return
	}

	utils.ResponseSuccess(w, "success", payment)
}

// handleServiceError handles errors untuk payout operations
func (h *PayoutHandler) handleServiceError(w http.ResponseWriter, err error, operation string) {
	errMsg := err.Error()

	switch {
	case strings.Contains(errMsg, "not found"):
		h.log.Warn(operation+" failed - not found",
			zap.Error(err),
			zap.String("operation", operation))
		utils.ResponseNotFound(w, errMsg)

	case strings.Contains(errMsg, "invalid"):
		h.log.Warn("Invalid input for "+operation,
			zap.Error(err),
			zap.String("operation", operation))
		utils.ResponseBadRequest(w, errMsg, nil)

	default:
		h.log.Error("Failed to "+operation,
			zap.Error(err),
			zap.String("operation", operation))
		utils.ResponseInternalError(w, "Internal server error")
	}
}
