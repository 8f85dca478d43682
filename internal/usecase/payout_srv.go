package usecase

import (
	"context"
	"fmt"
	"math"
	"time"

	"academy-booking/internal/data/entity"
	"academy-booking/internal/data/repository"
	"academy-booking/internal/dto/request"
	"academy-booking/internal/dto/response"
	"academy-booking/pkg/utils"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Skip reasons returned by Process. A skip is a terminal business outcome,
// not an error: the job is acked and never redelivered.
const (
	SkipNonPositiveAmount = "non-positive amount"
	SkipAlreadyExists     = "already exists"
	SkipAccountNotReady   = "account not ready"
)

// JobPublisher hands payout jobs to the durable queue.
type JobPublisher interface {
	PublishJSON(ctx context.Context, key string, v any) error
}

type PayoutResult struct {
	Skipped      bool
	Reason       string
	PayoutID     string
	PayoutAmount float64
}

// PayoutService produces payout jobs when a booking becomes payable and
// converts a queued job into a durable payout record at most once per
// (booking, transaction) pair.
type PayoutService interface {
	EnqueueForBooking(ctx context.Context, booking *entity.Booking, transactionID uuid.UUID) error
	Enqueue(ctx context.Context, job *request.PayoutJob) error
	Process(ctx context.Context, job *request.PayoutJob) (*PayoutResult, error)

	// Operator lookups
	GetPayout(ctx context.Context, id string) (*response.PayoutResponse, error)
	GetBookingPayment(ctx context.Context, code string) (*response.BookingPaymentResponse, error)
}

type payoutService struct {
	repo      *repository.Repository
	publisher JobPublisher
	audit     AuditService
	config    *utils.Config
	log       *zap.Logger
}

func NewPayoutService(repo *repository.Repository, publisher JobPublisher, audit AuditService, config *utils.Config, log *zap.Logger) PayoutService {
	return &payoutService{
		repo:      repo,
		publisher: publisher,
		audit:     audit,
		config:    config,
		log:       log.With(zap.String("service", "payout")),
	}
}

// EnqueueForBooking computes commission for a booking that just became
// payable and hands the job to the queue.
func (s *payoutService) EnqueueForBooking(ctx context.Context, booking *entity.Booking, transactionID uuid.UUID) error {
	rate := s.config.Payout.CommissionRatePct
	commission := round2(booking.Amount * rate / 100)
	payoutAmount := round2(booking.Amount - commission)

	job := &request.PayoutJob{
		BookingID:        booking.ID.String(),
		TransactionID:    transactionID.String(),
		AcademyUserID:    booking.AcademyUserID.String(),
		Currency:         booking.Currency,
		Amount:           booking.Amount,
		CommissionRate:   rate,
		CommissionAmount: commission,
		PayoutAmount:     payoutAmount,
		BatchAmount:      booking.Amount,
	}

	return s.Enqueue(ctx, job)
}

func (s *payoutService) Enqueue(ctx context.Context, job *request.PayoutJob) error {
	// Zero payout amount masih di-enqueue: keputusannya dicatat di worker,
	// bukan disaring diam-diam di sini
	if errs := utils.ValidateStruct(job); len(errs) > 0 {
		return fmt.Errorf("validation failed: %s", utils.FormatValidationErrors(errs))
	}

	if err := s.publisher.PublishJSON(ctx, s.config.Queue.PayoutQueue, job); err != nil {
		s.log.Error("Failed to enqueue payout job",
			zap.Error(err),
			zap.String("booking_id", job.BookingID),
			zap.String("transaction_id", job.TransactionID),
		)
		return fmt.Errorf("enqueue payout job for booking %s: %w", job.BookingID, err)
	}

	s.log.Info("Payout job enqueued",
		zap.String("booking_id", job.BookingID),
		zap.String("transaction_id", job.TransactionID),
		zap.Float64("payout_amount", job.PayoutAmount),
	)

	return nil
}

// Process runs one payout job. Errors are retryable by the queue; a
// PayoutResult with Skipped set is terminal and must be acked.
// No side effect happens before the idempotency check, so a job abandoned
// mid-flight and redelivered elsewhere stays safe.
func (s *payoutService) Process(ctx context.Context, job *request.PayoutJob) (*PayoutResult, error) {
	// 1. Missing required fields point at an upstream bug; raise so the queue
	// retries and the failure eventually surfaces to an operator
	if errs := utils.ValidateStruct(job); len(errs) > 0 {
		return nil, fmt.Errorf("invalid payout job: %s", utils.FormatValidationErrors(errs))
	}

	// 2. Zero-value bookings are a valid business state; record and stop
	if job.PayoutAmount <= 0 {
		s.log.Info("Payout skipped for non-positive amount",
			zap.String("booking_id", job.BookingID),
			zap.Float64("payout_amount", job.PayoutAmount),
		)
		return &PayoutResult{Skipped: true, Reason: SkipNonPositiveAmount}, nil
	}

	bookingID, err := uuid.Parse(job.BookingID)
	if err != nil {
		return nil, fmt.Errorf("invalid booking ID format %s: %w", job.BookingID, err)
	}
	transactionID, err := uuid.Parse(job.TransactionID)
	if err != nil {
		return nil, fmt.Errorf("invalid transaction ID format %s: %w", job.TransactionID, err)
	}
	academyUserID, err := uuid.Parse(job.AcademyUserID)
	if err != nil {
		return nil, fmt.Errorf("invalid academy user ID format %s: %w", job.AcademyUserID, err)
	}

	// 3. Resolve referenced records; absence may be replication lag, so it
	// raises and the queue retries
	booking, err := s.repo.Booking.FindByID(ctx, bookingID)
	if err != nil {
		return nil, err
	}
	if booking == nil {
		return nil, fmt.Errorf("booking %s not found", job.BookingID)
	}

	transaction, err := s.repo.Transaction.FindByID(ctx, transactionID)
	if err != nil {
		return nil, err
	}
	if transaction == nil {
		return nil, fmt.Errorf("transaction %s not found", job.TransactionID)
	}

	academyUser, err := s.repo.User.FindByID(ctx, academyUserID)
	if err != nil {
		return nil, err
	}
	if academyUser == nil {
		return nil, fmt.Errorf("academy user %s not found", job.AcademyUserID)
	}

	// 4. Idempotency check: duplicate and concurrent deliveries short-circuit
	existing, err := s.repo.Payout.FindByBookingAndTransaction(ctx, bookingID, transactionID)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		s.log.Info("Payout already exists, skipping",
			zap.String("booking_id", job.BookingID),
			zap.String("payout_id", existing.ID.String()),
		)
		return &PayoutResult{Skipped: true, Reason: SkipAlreadyExists, PayoutID: existing.ID.String()}, nil
	}

	// 5. Account must be active and activated; retrying won't change account
	// state faster, so this outcome is terminal
	account, err := s.repo.PayoutAccount.FindByUserID(ctx, academyUserID)
	if err != nil {
		return nil, err
	}
	if account == nil || !account.Ready() {
		s.log.Warn("Payout account not ready, skipping",
			zap.String("booking_id", job.BookingID),
			zap.String("academy_user_id", job.AcademyUserID),
		)
		return &PayoutResult{Skipped: true, Reason: SkipAccountNotReady}, nil
	}

	// 6. Create the payout; the unique constraint on
	// (booking_id, transaction_id) closes the concurrent-duplicate race
	now := time.Now()
	payout := &entity.Payout{
		Base: entity.Base{
			ID:        uuid.New(),
			CreatedAt: now,
			UpdatedAt: now,
		},
		BookingID:        bookingID,
		TransactionID:    transactionID,
		AcademyUserID:    academyUserID,
		Status:           entity.PayoutStatePending,
		BatchAmount:      job.BatchAmount,
		CommissionRate:   job.CommissionRate,
		CommissionAmount: job.CommissionAmount,
		PayoutAmount:     job.PayoutAmount,
		Currency:         job.Currency,
		AccountRef:       account.GatewayAccountID,
	}

	created, err := s.repo.Payout.Create(ctx, payout)
	if err != nil {
		return nil, err
	}
	if !created {
		// A concurrent worker won the insert
		winner, err := s.repo.Payout.FindByBookingAndTransaction(ctx, bookingID, transactionID)
		if err != nil {
			return nil, err
		}
		result := &PayoutResult{Skipped: true, Reason: SkipAlreadyExists}
		if winner != nil {
			result.PayoutID = winner.ID.String()
		}
		s.log.Info("Concurrent payout creation lost, skipping",
			zap.String("booking_id", job.BookingID),
			zap.String("payout_id", result.PayoutID),
		)
		return result, nil
	}

	s.log.Info("Payout created",
		zap.String("payout_id", payout.ID.String()),
		zap.String("booking_id", job.BookingID),
		zap.String("transaction_id", job.TransactionID),
		zap.Float64("payout_amount", job.PayoutAmount),
	)

	// 7-8. Best-effort side effects after the payout row is durable; each one
	// is independently caught and logged, the payout record is the source of
	// truth either way
	sideEffects := []struct {
		name string
		fn   func() error
	}{
		{"update booking payout status", func() error {
			return s.repo.Booking.UpdatePayoutStatus(ctx, bookingID, entity.PayoutStatusPending)
		}},
		{"write audit trail", func() error {
			return s.audit.Record(ctx, AuditEntry{
				Action:     "payout_created",
				Scale:      "payout",
				Label:      booking.BookingCode,
				EntityType: "payout",
				EntityID:   payout.ID.String(),
				UserID:     &academyUserID,
				Metadata: map[string]any{
					"booking_id":     job.BookingID,
					"transaction_id": job.TransactionID,
					"payout_amount":  job.PayoutAmount,
					"account_ref":    account.GatewayAccountID,
				},
			})
		}},
	}
	for _, effect := range sideEffects {
		if err := effect.fn(); err != nil {
			s.log.Warn("Payout side effect failed",
				zap.Error(err),
				zap.String("side_effect", effect.name),
				zap.String("payout_id", payout.ID.String()),
			)
		}
	}

	return &PayoutResult{PayoutID: payout.ID.String(), PayoutAmount: payout.PayoutAmount}, nil
}

func (s *payoutService) GetPayout(ctx context.Context, id string) (*response.PayoutResponse, error) {
	payoutID, err := uuid.Parse(id)
	if err != nil {
		return nil, fmt.Errorf("invalid payout ID format %s: %w", id, err)
	}

	payout, err := s.repo.Payout.FindByID(ctx, payoutID)
	if err != nil {
		return nil, err
	}
	if payout == nil {
		return nil, fmt.Errorf("payout %s not found", id)
	}

	resp := response.PayoutToResponse(payout)
	return &resp, nil
}

func (s *payoutService) GetBookingPayment(ctx context.Context, code string) (*response.BookingPaymentResponse, error) {
	booking, err := s.repo.Booking.FindByBookingCode(ctx, code)
	if err != nil {
		return nil, err
	}
	if booking == nil {
		return nil, fmt.Errorf("booking %s not found", code)
	}

	var transaction *entity.Transaction
	if booking.GatewayOrderID != nil {
		transaction, err = s.repo.Transaction.FindByBookingAndOrderID(ctx, booking.ID, *booking.GatewayOrderID)
		if err != nil {
			return nil, err
		}
	}

	resp := response.BookingPaymentToResponse(booking, transaction)
	return &resp, nil
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
