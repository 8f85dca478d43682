// internal/wire/wire.go
package wire

import (
	"net/http"
	"time"

	"academy-booking/internal/adaptor"
	"academy-booking/internal/data/repository"
	"academy-booking/internal/gateway"
	"academy-booking/internal/usecase"
	"academy-booking/internal/worker"
	"academy-booking/pkg/middleware"
	"academy-booking/pkg/queue"
	"academy-booking/pkg/utils"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// App menyimpan semua dependencies
type App struct {
	Router *chi.Mux
	Worker *worker.PayoutWorker
}

// Wiring menginisialisasi semua dependencies. Gateway, queue, and services
// are constructed here and injected explicitly; nothing is process-global,
// so tests can swap in fakes.
func Wiring(
	repo *repository.Repository,
	publisher *queue.Publisher,
	consumer *queue.Consumer,
	config *utils.Config,
	logger *zap.Logger,
) *App {
	gw := gateway.NewRazorpayGateway(
		config.Razorpay.KeyID,
		config.Razorpay.KeySecret,
		config.Razorpay.WebhookSecret,
		logger,
	)

	service := usecase.NewService(repo, publisher, config, logger)
	handler := adaptor.NewHandler(service, gw, logger)

	payoutWorker := worker.NewPayoutWorker(
		consumer,
		publisher,
		service.Payout,
		config.Queue.Concurrency,
		config.Queue.MaxAttempts,
		time.Duration(config.Queue.RetryBackoffSec)*time.Second,
		logger,
	)

	router := setupRouter(handler, logger)

	return &App{
		Router: router,
		Worker: payoutWorker,
	}
}

// setupRouter konfigurasi Chi router
func setupRouter(handler *adaptor.Handler, logger *zap.Logger) *chi.Mux {
	r := chi.NewRouter()

	// Apply global middleware
	r.Use(middleware.Logger(logger))
	r.Use(middleware.Recover(logger))

	// Apply routes
	wireWebhook(r, handler.Webhook)
	wirePayout(r, handler.Payout)

	// Health check endpoint
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("OK"))
	})

	return r
}
