package worker

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"academy-booking/internal/data/entity"
	"academy-booking/internal/dto/request"
	"academy-booking/internal/dto/response"
	"academy-booking/internal/usecase"

	"github.com/google/uuid"
	amqp "github.com/rabbitmq/amqp091-go"
	"go.uber.org/zap"
)

type fakeAcknowledger struct {
	acks    int
	nacks   int
	requeue bool
}

func (f *fakeAcknowledger) Ack(tag uint64, multiple bool) error {
	f.acks++
	return nil
}

func (f *fakeAcknowledger) Nack(tag uint64, multiple, requeue bool) error {
	f.nacks++
	f.requeue = requeue
	return nil
}

func (f *fakeAcknowledger) Reject(tag uint64, requeue bool) error {
	f.nacks++
	f.requeue = requeue
	return nil
}

type publishedMsg struct {
	key     string
	body    []byte
	headers amqp.Table
	ttl     time.Duration
}

type fakeRawPublisher struct {
	msgs    []publishedMsg
	failErr error
}

func (f *fakeRawPublisher) PublishRaw(ctx context.Context, key string, body []byte, headers amqp.Table, ttl time.Duration) error {
	if f.failErr != nil {
		return f.failErr
	}
	f.msgs = append(f.msgs, publishedMsg{key: key, body: body, headers: headers, ttl: ttl})
	return nil
}

type fakeSource struct {
	queue string
	ch    chan amqp.Delivery
}

func (f *fakeSource) Deliveries(ctx context.Context) (<-chan amqp.Delivery, error) {
	return f.ch, nil
}

func (f *fakeSource) Queue() string {
	return f.queue
}

// fakeProcessor only implements Process meaningfully; the worker never calls
// the producer or lookup methods.
type fakeProcessor struct {
	result *usecase.PayoutResult
	err    error
	calls  int
}

func (f *fakeProcessor) Process(ctx context.Context, job *request.PayoutJob) (*usecase.PayoutResult, error) {
	f.calls++
	return f.result, f.err
}

func (f *fakeProcessor) EnqueueForBooking(ctx context.Context, booking *entity.Booking, transactionID uuid.UUID) error {
	return nil
}

func (f *fakeProcessor) Enqueue(ctx context.Context, job *request.PayoutJob) error {
	return nil
}

func (f *fakeProcessor) GetPayout(ctx context.Context, id string) (*response.PayoutResponse, error) {
	return nil, nil
}

func (f *fakeProcessor) GetBookingPayment(ctx context.Context, code string) (*response.BookingPaymentResponse, error) {
	return nil, nil
}

func testJobBody(t *testing.T) []byte {
	t.Helper()
	b, err := json.Marshal(request.PayoutJob{
		BookingID:     uuid.NewString(),
		TransactionID: uuid.NewString(),
		AcademyUserID: uuid.NewString(),
		Currency:      "INR",
		PayoutAmount:  450,
	})
	if err != nil {
		t.Fatalf("marshal job: %v", err)
	}
	return b
}

func testWorker(svc usecase.PayoutService, pub *fakeRawPublisher) *PayoutWorker {
	src := &fakeSource{queue: "payout.create", ch: make(chan amqp.Delivery)}
	return NewPayoutWorker(src, pub, svc, 1, 3, 30*time.Second, zap.NewNop())
}

func TestHandleAcksOnSuccess(t *testing.T) {
	svc := &fakeProcessor{result: &usecase.PayoutResult{PayoutID: uuid.NewString(), PayoutAmount: 450}}
	pub := &fakeRawPublisher{}
	w := testWorker(svc, pub)

	ack := &fakeAcknowledger{}
	w.handle(context.Background(), amqp.Delivery{Acknowledger: ack, Body: testJobBody(t)})

	if svc.calls != 1 {
		t.Errorf("process calls = %d, want 1", svc.calls)
	}
	if ack.acks != 1 {
		t.Errorf("acks = %d, want 1", ack.acks)
	}
	if len(pub.msgs) != 0 {
		t.Errorf("republished = %d, want 0", len(pub.msgs))
	}
}

func TestHandleAcksOnSkip(t *testing.T) {
	svc := &fakeProcessor{result: &usecase.PayoutResult{Skipped: true, Reason: usecase.SkipAccountNotReady}}
	pub := &fakeRawPublisher{}
	w := testWorker(svc, pub)

	ack := &fakeAcknowledger{}
	w.handle(context.Background(), amqp.Delivery{Acknowledger: ack, Body: testJobBody(t)})

	// A skip is terminal: acked, never retried
	if ack.acks != 1 {
		t.Errorf("acks = %d, want 1", ack.acks)
	}
	if len(pub.msgs) != 0 {
		t.Errorf("republished = %d, want 0", len(pub.msgs))
	}
}

func TestHandleSchedulesRetryOnError(t *testing.T) {
	svc := &fakeProcessor{err: errors.New("booking not found yet")}
	pub := &fakeRawPublisher{}
	w := testWorker(svc, pub)

	body := testJobBody(t)
	ack := &fakeAcknowledger{}
	w.handle(context.Background(), amqp.Delivery{Acknowledger: ack, Body: body})

	if len(pub.msgs) != 1 {
		t.Fatalf("republished = %d, want 1", len(pub.msgs))
	}
	msg := pub.msgs[0]
	if msg.key != "payout.create.retry" {
		t.Errorf("routing key = %s, want payout.create.retry", msg.key)
	}
	if got := msg.headers[attemptsHeader]; got != int32(1) {
		t.Errorf("x-attempts = %v, want 1", got)
	}
	if msg.ttl != 30*time.Second {
		t.Errorf("ttl = %v, want 30s", msg.ttl)
	}
	if string(msg.body) != string(body) {
		t.Error("body not carried to the retry queue verbatim")
	}
	if ack.acks != 1 {
		t.Errorf("acks = %d, want 1 after scheduling the retry", ack.acks)
	}
}

func TestHandleRetryBackoffGrows(t *testing.T) {
	svc := &fakeProcessor{err: errors.New("still failing")}
	pub := &fakeRawPublisher{}
	w := testWorker(svc, pub)

	ack := &fakeAcknowledger{}
	w.handle(context.Background(), amqp.Delivery{
		Acknowledger: ack,
		Body:         testJobBody(t),
		Headers:      amqp.Table{attemptsHeader: int32(1)},
	})

	if len(pub.msgs) != 1 {
		t.Fatalf("republished = %d, want 1", len(pub.msgs))
	}
	if got := pub.msgs[0].headers[attemptsHeader]; got != int32(2) {
		t.Errorf("x-attempts = %v, want 2", got)
	}
	if pub.msgs[0].ttl != 60*time.Second {
		t.Errorf("ttl = %v, want 60s", pub.msgs[0].ttl)
	}
}

func TestHandleDeadLettersAtAttemptBudget(t *testing.T) {
	svc := &fakeProcessor{err: errors.New("permanent trouble")}
	pub := &fakeRawPublisher{}
	w := testWorker(svc, pub) // maxAttempts 3

	ack := &fakeAcknowledger{}
	w.handle(context.Background(), amqp.Delivery{
		Acknowledger: ack,
		Body:         testJobBody(t),
		Headers:      amqp.Table{attemptsHeader: int32(2)},
	})

	if len(pub.msgs) != 1 {
		t.Fatalf("republished = %d, want 1", len(pub.msgs))
	}
	if pub.msgs[0].key != "payout.create.dead" {
		t.Errorf("routing key = %s, want payout.create.dead", pub.msgs[0].key)
	}
	if ack.acks != 1 {
		t.Errorf("acks = %d, want 1", ack.acks)
	}
}

func TestHandleDeadLettersMalformedBody(t *testing.T) {
	svc := &fakeProcessor{result: &usecase.PayoutResult{}}
	pub := &fakeRawPublisher{}
	w := testWorker(svc, pub)

	ack := &fakeAcknowledger{}
	w.handle(context.Background(), amqp.Delivery{Acknowledger: ack, Body: []byte(`not json`)})

	if svc.calls != 0 {
		t.Errorf("process calls = %d, want 0", svc.calls)
	}
	if len(pub.msgs) != 1 || pub.msgs[0].key != "payout.create.dead" {
		t.Fatalf("msgs = %+v, want one dead-letter publish", pub.msgs)
	}
	if ack.acks != 1 {
		t.Errorf("acks = %d, want 1", ack.acks)
	}
}

func TestHandleNacksWhenRetryPublishFails(t *testing.T) {
	svc := &fakeProcessor{err: errors.New("transient")}
	pub := &fakeRawPublisher{failErr: errors.New("broker gone")}
	w := testWorker(svc, pub)

	ack := &fakeAcknowledger{}
	w.handle(context.Background(), amqp.Delivery{Acknowledger: ack, Body: testJobBody(t)})

	// Broker redelivery is the fallback when the retry queue is unreachable
	if ack.nacks != 1 || !ack.requeue {
		t.Errorf("nacks = %d requeue = %v, want 1 requeued nack", ack.nacks, ack.requeue)
	}
	if ack.acks != 0 {
		t.Errorf("acks = %d, want 0", ack.acks)
	}
}

func TestAttemptCount(t *testing.T) {
	cases := []struct {
		name    string
		headers amqp.Table
		want    int
	}{
		{"nil headers", nil, 0},
		{"missing header", amqp.Table{}, 0},
		{"int32", amqp.Table{attemptsHeader: int32(3)}, 3},
		{"int64", amqp.Table{attemptsHeader: int64(5)}, 5},
		{"int", amqp.Table{attemptsHeader: 2}, 2},
		{"wrong type", amqp.Table{attemptsHeader: "3"}, 0},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := attemptCount(tc.headers); got != tc.want {
				t.Errorf("attemptCount = %d, want %d", got, tc.want)
			}
		})
	}
}

func TestBackoffDelay(t *testing.T) {
	base := 30 * time.Second

	cases := []struct {
		attempt int
		want    time.Duration
	}{
		{1, 30 * time.Second},
		{2, 60 * time.Second},
		{3, 120 * time.Second},
		{4, 240 * time.Second},
	}
	for _, tc := range cases {
		if got := backoffDelay(base, tc.attempt); got != tc.want {
			t.Errorf("backoffDelay(attempt=%d) = %v, want %v", tc.attempt, got, tc.want)
		}
	}

	// Zero base falls back to the default
	if got := backoffDelay(0, 1); got != 30*time.Second {
		t.Errorf("backoffDelay with zero base = %v, want 30s", got)
	}
}

func TestNewPayoutWorkerClampsLimits(t *testing.T) {
	w := NewPayoutWorker(nil, nil, nil, 0, 0, 0, zap.NewNop())
	if w.concurrency != 1 {
		t.Errorf("concurrency = %d, want clamped to 1", w.concurrency)
	}
	if w.maxAttempts != 1 {
		t.Errorf("maxAttempts = %d, want clamped to 1", w.maxAttempts)
	}
}
