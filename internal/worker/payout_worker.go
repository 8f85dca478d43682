package worker

import (
	"context"
	"encoding/json"
	"time"

	"academy-booking/internal/dto/request"
	"academy-booking/internal/usecase"
	"academy-booking/pkg/queue"

	amqp "github.com/rabbitmq/amqp091-go"
	"go.uber.org/zap"
)

const attemptsHeader = "x-attempts"

// DeliverySource is the consumer side of the work queue. *queue.Consumer
// satisfies it.
type DeliverySource interface {
	Deliveries(ctx context.Context) (<-chan amqp.Delivery, error)
	Queue() string
}

// RawPublisher republishes delivery bodies for the retry and dead-letter
// flows. *queue.Publisher satisfies it.
type RawPublisher interface {
	PublishRaw(ctx context.Context, key string, body []byte, headers amqp.Table, ttl time.Duration) error
}

// PayoutWorker drains the payout queue with a bounded pool of consumers.
// Jobs share no mutable state beyond the store; duplicate deliveries are
// safe because Process is idempotent per (booking, transaction).
type PayoutWorker struct {
	consumer    DeliverySource
	publisher   RawPublisher
	service     usecase.PayoutService
	log         *zap.Logger
	concurrency int
	maxAttempts int
	backoffBase time.Duration
}

func NewPayoutWorker(
	consumer DeliverySource,
	publisher RawPublisher,
	service usecase.PayoutService,
	concurrency, maxAttempts int,
	backoffBase time.Duration,
	log *zap.Logger,
) *PayoutWorker {
	if concurrency < 1 {
		concurrency = 1
	}
	if maxAttempts < 1 {
		maxAttempts = 1
	}
	return &PayoutWorker{
		consumer:    consumer,
		publisher:   publisher,
		service:     service,
		concurrency: concurrency,
		maxAttempts: maxAttempts,
		backoffBase: backoffBase,
		log:         log.With(zap.String("worker", "payout")),
	}
}

// Run starts the consumer pool. It returns once the deliveries channel is
// open; consumers exit when the channel closes or ctx is cancelled. A job
// abandoned on shutdown is redelivered by the broker.
func (w *PayoutWorker) Run(ctx context.Context) error {
	deliveries, err := w.consumer.Deliveries(ctx)
	if err != nil {
		return err
	}

	w.log.Info("Payout worker started",
		zap.String("queue", w.consumer.Queue()),
		zap.Int("concurrency", w.concurrency),
		zap.Int("max_attempts", w.maxAttempts),
	)

	for i := 0; i < w.concurrency; i++ {
		go w.consume(ctx, deliveries)
	}

	return nil
}

func (w *PayoutWorker) consume(ctx context.Context, deliveries <-chan amqp.Delivery) {
	for d := range deliveries {
		w.handle(ctx, d)
	}
}

func (w *PayoutWorker) handle(ctx context.Context, d amqp.Delivery) {
	var job request.PayoutJob
	if err := json.Unmarshal(d.Body, &job); err != nil {
		// Malformed payload will never parse on redelivery either
		w.log.Error("Malformed payout job moved to dead letter", zap.Error(err))
		w.deadLetter(ctx, d)
		return
	}

	result, err := w.service.Process(ctx, &job)
	if err != nil {
		w.retry(ctx, d, &job, err)
		return
	}

	if result.Skipped {
		w.log.Info("Payout job skipped",
			zap.String("booking_id", job.BookingID),
			zap.String("transaction_id", job.TransactionID),
			zap.String("reason", result.Reason),
		)
	} else {
		w.log.Info("Payout job completed",
			zap.String("booking_id", job.BookingID),
			zap.String("payout_id", result.PayoutID),
			zap.Float64("payout_amount", result.PayoutAmount),
		)
	}

	if err := d.Ack(false); err != nil {
		w.log.Warn("Failed to ack payout job", zap.Error(err))
	}
}

// retry parks the job on the retry queue with an exponential TTL; after the
// attempt budget is spent it goes to the dead-letter queue and is surfaced
// as permanently failed.
func (w *PayoutWorker) retry(ctx context.Context, d amqp.Delivery, job *request.PayoutJob, cause error) {
	attempts := attemptCount(d.Headers) + 1

	if attempts >= w.maxAttempts {
		w.log.Error("Payout job failed permanently",
			zap.Error(cause),
			zap.String("booking_id", job.BookingID),
			zap.String("transaction_id", job.TransactionID),
			zap.Int("attempts", attempts),
		)
		w.deadLetter(ctx, d)
		return
	}

	delay := backoffDelay(w.backoffBase, attempts)
	headers := amqp.Table{attemptsHeader: int32(attempts)}

	key := w.consumer.Queue() + queue.RetrySuffix
	if err := w.publisher.PublishRaw(ctx, key, d.Body, headers, delay); err != nil {
		w.log.Error("Failed to schedule payout job retry, requeueing",
			zap.Error(err),
			zap.String("booking_id", job.BookingID),
		)
		// Fallback ke broker redelivery
		if err := d.Nack(false, true); err != nil {
			w.log.Warn("Failed to nack payout job", zap.Error(err))
		}
		return
	}

	w.log.Warn("Payout job scheduled for retry",
		zap.Error(cause),
		zap.String("booking_id", job.BookingID),
		zap.Int("attempt", attempts),
		zap.Duration("delay", delay),
	)

	if err := d.Ack(false); err != nil {
		w.log.Warn("Failed to ack payout job", zap.Error(err))
	}
}

func (w *PayoutWorker) deadLetter(ctx context.Context, d amqp.Delivery) {
	key := w.consumer.Queue() + queue.DeadSuffix
	if err := w.publisher.PublishRaw(ctx, key, d.Body, d.Headers, 0); err != nil {
		w.log.Error("Failed to publish to dead letter queue", zap.Error(err))
		if err := d.Nack(false, true); err != nil {
			w.log.Warn("Failed to nack payout job", zap.Error(err))
		}
		return
	}
	if err := d.Ack(false); err != nil {
		w.log.Warn("Failed to ack payout job", zap.Error(err))
	}
}

func attemptCount(headers amqp.Table) int {
	if headers == nil {
		return 0
	}
	switch v := headers[attemptsHeader].(type) {
	case int32:
		return int(v)
	case int64:
		return int(v)
	case int:
		return v
	default:
		return 0
	}
}

func backoffDelay(base time.Duration, attempt int) time.Duration {
	if base <= 0 {
		base = 30 * time.Second
	}
	delay := base
	for i := 1; i < attempt; i++ {
		delay *= 2
	}
	return delay
}
