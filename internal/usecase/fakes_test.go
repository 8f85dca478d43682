package usecase

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"time"

	"academy-booking/internal/data/entity"
	"academy-booking/internal/data/repository"
	"academy-booking/pkg/utils"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// In-memory fakes of the repository interfaces, enough to drive the
// reconciler and the payout worker without a database. The payout fake
// enforces the (booking, transaction) uniqueness the real table has.

type fakeBookingRepo struct {
	mu       sync.Mutex
	bookings map[uuid.UUID]*entity.Booking
	failMark error
	failPay  error
}

func newFakeBookingRepo() *fakeBookingRepo {
	return &fakeBookingRepo{bookings: make(map[uuid.UUID]*entity.Booking)}
}

func (f *fakeBookingRepo) add(b *entity.Booking) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.bookings[b.ID] = b
}

func (f *fakeBookingRepo) FindByID(ctx context.Context, id uuid.UUID) (*entity.Booking, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	b, ok := f.bookings[id]
	if !ok {
		return nil, nil
	}
	cp := *b
	return &cp, nil
}

func (f *fakeBookingRepo) FindByBookingCode(ctx context.Context, code string) (*entity.Booking, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, b := range f.bookings {
		if b.BookingCode == code {
			cp := *b
			return &cp, nil
		}
	}
	return nil, nil
}

func (f *fakeBookingRepo) FindByGatewayOrderID(ctx context.Context, orderID string) (*entity.Booking, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, b := range f.bookings {
		if b.GatewayOrderID != nil && *b.GatewayOrderID == orderID {
			cp := *b
			return &cp, nil
		}
	}
	return nil, nil
}

func (f *fakeBookingRepo) MarkPaymentSuccess(ctx context.Context, id uuid.UUID, paymentID, method *string, paidAt time.Time) error {
	if f.failMark != nil {
		return f.failMark
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	b, ok := f.bookings[id]
	if !ok {
		return errors.New("booking not found")
	}
	b.Status = entity.BookingStatusConfirmed
	b.PaymentStatus = entity.PaymentStatusSuccess
	if paymentID != nil {
		b.GatewayPaymentID = paymentID
	}
	if method != nil {
		b.PaymentMethod = method
	}
	if b.PaidAt == nil {
		b.PaidAt = &paidAt
	}
	b.FailureReason = nil
	return nil
}

func (f *fakeBookingRepo) MarkPaymentFailed(ctx context.Context, id uuid.UUID, paymentID *string, reason string) error {
	if f.failMark != nil {
		return f.failMark
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	b, ok := f.bookings[id]
	if !ok {
		return errors.New("booking not found")
	}
	b.PaymentStatus = entity.PaymentStatusFailed
	if paymentID != nil {
		b.GatewayPaymentID = paymentID
	}
	b.FailureReason = &reason
	return nil
}

func (f *fakeBookingRepo) UpdatePayoutStatus(ctx context.Context, id uuid.UUID, status entity.PayoutStatus) error {
	if f.failPay != nil {
		return f.failPay
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	b, ok := f.bookings[id]
	if !ok {
		return errors.New("booking not found")
	}
	b.PayoutStatus = status
	return nil
}

type fakeTransactionRepo struct {
	mu   sync.Mutex
	rows []*entity.Transaction
}

func (f *fakeTransactionRepo) FindByID(ctx context.Context, id uuid.UUID) (*entity.Transaction, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, t := range f.rows {
		if t.ID == id {
			cp := *t
			return &cp, nil
		}
	}
	return nil, nil
}

func (f *fakeTransactionRepo) FindByBookingAndOrderID(ctx context.Context, bookingID uuid.UUID, orderID string) (*entity.Transaction, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, t := range f.rows {
		if t.BookingID == bookingID && t.GatewayOrderID == orderID {
			cp := *t
			return &cp, nil
		}
	}
	return nil, nil
}

func (f *fakeTransactionRepo) UpsertByOrderID(ctx context.Context, tx *entity.Transaction) (uuid.UUID, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, t := range f.rows {
		if t.BookingID == tx.BookingID && t.GatewayOrderID == tx.GatewayOrderID {
			f.apply(t, tx)
			return t.ID, nil
		}
	}
	// Mirror the table constraints before inserting, the way Postgres would
	for _, t := range f.rows {
		if t.BookingID == tx.BookingID &&
			t.GatewayPaymentID != nil && tx.GatewayPaymentID != nil &&
			*t.GatewayPaymentID == *tx.GatewayPaymentID {
			return uuid.Nil, errors.New(`duplicate key value violates unique constraint "uq_transactions_booking_payment"`)
		}
	}
	cp := *tx
	f.rows = append(f.rows, &cp)
	return cp.ID, nil
}

func (f *fakeTransactionRepo) apply(dst, src *entity.Transaction) {
	dst.Status = src.Status
	dst.Amount = src.Amount
	dst.Source = src.Source
	dst.RawPayload = src.RawPayload
	dst.FailureReason = src.FailureReason
	if src.GatewayPaymentID != nil {
		dst.GatewayPaymentID = src.GatewayPaymentID
	}
	if src.PaymentMethod != nil {
		dst.PaymentMethod = src.PaymentMethod
	}
}

func (f *fakeTransactionRepo) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.rows)
}

type payoutKey struct {
	booking     uuid.UUID
	transaction uuid.UUID
}

type fakePayoutRepo struct {
	mu      sync.Mutex
	rows    map[payoutKey]*entity.Payout
	failErr error
}

func newFakePayoutRepo() *fakePayoutRepo {
	return &fakePayoutRepo{rows: make(map[payoutKey]*entity.Payout)}
}

func (f *fakePayoutRepo) Create(ctx context.Context, p *entity.Payout) (bool, error) {
	if f.failErr != nil {
		return false, f.failErr
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	key := payoutKey{p.BookingID, p.TransactionID}
	if _, exists := f.rows[key]; exists {
		return false, nil
	}
	cp := *p
	f.rows[key] = &cp
	return true, nil
}

func (f *fakePayoutRepo) FindByID(ctx context.Context, id uuid.UUID) (*entity.Payout, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, p := range f.rows {
		if p.ID == id {
			cp := *p
			return &cp, nil
		}
	}
	return nil, nil
}

func (f *fakePayoutRepo) FindByBookingAndTransaction(ctx context.Context, bookingID, transactionID uuid.UUID) (*entity.Payout, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	p, ok := f.rows[payoutKey{bookingID, transactionID}]
	if !ok {
		return nil, nil
	}
	cp := *p
	return &cp, nil
}

func (f *fakePayoutRepo) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.rows)
}

type fakePayoutAccountRepo struct {
	accounts map[uuid.UUID]*entity.PayoutAccount
}

func newFakePayoutAccountRepo() *fakePayoutAccountRepo {
	return &fakePayoutAccountRepo{accounts: make(map[uuid.UUID]*entity.PayoutAccount)}
}

func (f *fakePayoutAccountRepo) FindByUserID(ctx context.Context, userID uuid.UUID) (*entity.PayoutAccount, error) {
	a, ok := f.accounts[userID]
	if !ok {
		return nil, nil
	}
	cp := *a
	return &cp, nil
}

type fakeUserRepo struct {
	users map[uuid.UUID]*entity.User
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{users: make(map[uuid.UUID]*entity.User)}
}

func (f *fakeUserRepo) FindByID(ctx context.Context, id uuid.UUID) (*entity.User, error) {
	u, ok := f.users[id]
	if !ok {
		return nil, nil
	}
	cp := *u
	return &cp, nil
}

type fakeAuditRepo struct {
	mu      sync.Mutex
	trails  []*entity.AuditTrail
	failErr error
}

func (f *fakeAuditRepo) Create(ctx context.Context, trail *entity.AuditTrail) error {
	if f.failErr != nil {
		return f.failErr
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.trails = append(f.trails, trail)
	return nil
}

func (f *fakeAuditRepo) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.trails)
}

type fakePublisher struct {
	mu      sync.Mutex
	jobs    [][]byte
	failErr error
}

func (f *fakePublisher) PublishJSON(ctx context.Context, key string, v any) error {
	if f.failErr != nil {
		return f.failErr
	}
	b, err := json.Marshal(v)
	if err != nil {
		return err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.jobs = append(f.jobs, b)
	return nil
}

func (f *fakePublisher) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.jobs)
}

// testEnv bundles everything the service tests need.
type testEnv struct {
	bookings  *fakeBookingRepo
	txs       *fakeTransactionRepo
	payouts   *fakePayoutRepo
	accounts  *fakePayoutAccountRepo
	users     *fakeUserRepo
	audits    *fakeAuditRepo
	publisher *fakePublisher
	repo      *repository.Repository
	config    *utils.Config
	service   *Service
}

func newTestEnv() *testEnv {
	env := &testEnv{
		bookings:  newFakeBookingRepo(),
		txs:       &fakeTransactionRepo{},
		payouts:   newFakePayoutRepo(),
		accounts:  newFakePayoutAccountRepo(),
		users:     newFakeUserRepo(),
		audits:    &fakeAuditRepo{},
		publisher: &fakePublisher{},
	}
	env.repo = &repository.Repository{
		User:          env.users,
		Booking:       env.bookings,
		Transaction:   env.txs,
		Payout:        env.payouts,
		PayoutAccount: env.accounts,
		AuditTrail:    env.audits,
	}
	env.config = &utils.Config{
		Queue: utils.QueueConfig{
			PayoutQueue: "payout.create",
		},
		Payout: utils.PayoutConfig{
			CommissionRatePct: 10,
			AmountTolerance:   0.01,
		},
	}
	env.service = NewService(env.repo, env.publisher, env.config, zap.NewNop())
	return env
}
