package finalize_booking

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/m04kA/MTB-ReservationService/internal/domain"
	holdRepo "github.com/m04kA/MTB-ReservationService/internal/infra/storage/hold"
	slotRepo "github.com/m04kA/MTB-ReservationService/internal/infra/storage/timeslot"
	"github.com/m04kA/MTB-ReservationService/internal/integrations/notifier"
)

// mockHoldRepo implements HoldRepository for testing
type mockHoldRepo struct {
	hold         *domain.Hold
	getErr       error
	converted    []int64
	convertedErr error
}

func (m *mockHoldRepo) GetByID(_ context.Context, _ int64) (*domain.Hold, error) {
	return m.hold, m.getErr
}

func (m *mockHoldRepo) MarkConverted(_ context.Context, id int64) error {
	if m.convertedErr != nil {
		return m.convertedErr
	}
	m.converted = append(m.converted, id)
	return nil
}

// mockSlotRepo implements TimeSlotRepository for testing
type mockSlotRepo struct {
	incremented int
	err         error
}

func (m *mockSlotRepo) IncrementConfirmed(_ context.Context, _ int64, quantity int) error {
	if m.err != nil {
		return m.err
	}
	m.incremented += quantity
	return nil
}

// mockBookingRepo implements BookingRepository for testing
type mockBookingRepo struct {
	created *domain.Booking
	err     error
}

func (m *mockBookingRepo) Create(_ context.Context, b *domain.Booking) (*domain.Booking, error) {
	if m.err != nil {
		return nil, m.err
	}
	b.ID = 777
	b.CreatedAt = time.Now()
	m.created = b
	return b, nil
}

// mockPublisher implements NotificationPublisher for testing
type mockPublisher struct {
	events []*notifier.BookingConfirmedEvent
	err    error
}

func (m *mockPublisher) PublishBookingConfirmed(_ context.Context, e *notifier.BookingConfirmedEvent) error {
	if m.err != nil {
		return m.err
	}
	m.events = append(m.events, e)
	return nil
}

// mockTxManager runs the callback without a real transaction
type mockTxManager struct{}

func (m *mockTxManager) DoSerializable(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}

// fixedTimeProvider returns a fixed point in time
type fixedTimeProvider struct {
	now time.Time
}

func (p *fixedTimeProvider) Now() time.Time {
	return p.now
}

// nopLogger discards all log output
type nopLogger struct{}

func (nopLogger) Info(string, ...interface{})  {}
func (nopLogger) Warn(string, ...interface{})  {}
func (nopLogger) Error(string, ...interface{}) {}

var testNow = time.Date(2026, 9, 14, 9, 0, 0, 0, time.UTC)

func activeHold() *domain.Hold {
	return &domain.Hold{
		ID:         5,
		SessionID:  "sess-1",
		TimeSlotID: 1,
		Quantity:   3,
		Status:     domain.HoldStatusActive,
		CreatedAt:  testNow.Add(-5 * time.Minute),
		ExpiresAt:  testNow.Add(10 * time.Minute),
	}
}

func validRequest() *Request {
	return &Request{
		HoldID:    5,
		SessionID: "sess-1",
		Visitor: Visitor{
			Name:  "Anna Petrova",
			Email: "anna@example.com",
		},
		Payment: Payment{
			Confirmed: true,
			Amount:    1200,
			Currency:  "RUB",
		},
	}
}

func newTestUseCase(holds *mockHoldRepo, slots *mockSlotRepo, bookings *mockBookingRepo, pub NotificationPublisher) *UseCase {
	uc := NewUseCase(holds, slots, bookings, pub, &mockTxManager{}, nopLogger{})
	uc.timeProvider = &fixedTimeProvider{now: testNow}
	return uc
}

func TestExecute_Success(t *testing.T) {
	holds := &mockHoldRepo{hold: activeHold()}
	slots := &mockSlotRepo{}
	bookings := &mockBookingRepo{}
	pub := &mockPublisher{}
	uc := newTestUseCase(holds, slots, bookings, pub)

	resp, err := uc.Execute(context.Background(), validRequest())

	require.NoError(t, err)
	assert.Equal(t, int64(777), resp.BookingID)
	assert.True(t, strings.HasPrefix(resp.Reference, "MTB-"))
	assert.Len(t, resp.Reference, 12)
	assert.Equal(t, 3, resp.Quantity)
	assert.Equal(t, string(domain.PaymentStatusPaid), resp.PaymentStatus)
	assert.Equal(t, string(domain.StatusConfirmed), resp.Status)

	// confirmed capacity takes over exactly the hold quantity
	assert.Equal(t, 3, slots.incremented)
	assert.Equal(t, []int64{5}, holds.converted)

	// confirmation event published after commit
	require.Len(t, pub.events, 1)
	assert.Equal(t, resp.Reference, pub.events[0].Reference)
	assert.Equal(t, "anna@example.com", pub.events[0].VisitorEmail)
}

func TestExecute_FreeAdmission(t *testing.T) {
	holds := &mockHoldRepo{hold: activeHold()}
	uc := newTestUseCase(holds, &mockSlotRepo{}, &mockBookingRepo{}, nil)

	req := validRequest()
	req.Payment = Payment{Confirmed: true, Amount: 0}

	resp, err := uc.Execute(context.Background(), req)

	require.NoError(t, err)
	assert.Equal(t, string(domain.PaymentStatusFree), resp.PaymentStatus)
	assert.Equal(t, float64(0), resp.TotalAmount)
}

func TestExecute_RetryOnConvertingHold(t *testing.T) {
	// a finalize retry finds the hold already in converting state
	hold := activeHold()
	hold.Status = domain.HoldStatusConverting
	holds := &mockHoldRepo{hold: hold}
	uc := newTestUseCase(holds, &mockSlotRepo{}, &mockBookingRepo{}, nil)

	resp, err := uc.Execute(context.Background(), validRequest())

	require.NoError(t, err)
	assert.Equal(t, []int64{5}, holds.converted)
	assert.NotNil(t, resp)
}

func TestExecute_RetryWithIssuedTokenSucceeds(t *testing.T) {
	token := "tok-1"
	hold := activeHold()
	hold.Status = domain.HoldStatusConverting
	hold.ConversionToken = &token
	holds := &mockHoldRepo{hold: hold}
	uc := newTestUseCase(holds, &mockSlotRepo{}, &mockBookingRepo{}, nil)

	req := validRequest()
	req.ConversionToken = "tok-1"

	resp, err := uc.Execute(context.Background(), req)

	require.NoError(t, err)
	assert.Equal(t, []int64{5}, holds.converted)
	assert.NotNil(t, resp)
}

func TestExecute_TokenMismatchRejected(t *testing.T) {
	token := "tok-1"
	hold := activeHold()
	hold.Status = domain.HoldStatusConverting
	hold.ConversionToken = &token
	holds := &mockHoldRepo{hold: hold}
	uc := newTestUseCase(holds, &mockSlotRepo{}, &mockBookingRepo{}, nil)

	req := validRequest()
	req.ConversionToken = "tok-forged"

	_, err := uc.Execute(context.Background(), req)

	assert.ErrorIs(t, err, ErrInvalidHoldState)
	assert.Empty(t, holds.converted)
}

func TestExecute_TokenAgainstUnconvertedHoldRejected(t *testing.T) {
	// a token was presented but the hold never entered conversion
	holds := &mockHoldRepo{hold: activeHold()}
	uc := newTestUseCase(holds, &mockSlotRepo{}, &mockBookingRepo{}, nil)

	req := validRequest()
	req.ConversionToken = "tok-1"

	_, err := uc.Execute(context.Background(), req)

	assert.ErrorIs(t, err, ErrInvalidHoldState)
}

func TestExecute_HoldExpired(t *testing.T) {
	hold := activeHold()
	hold.ExpiresAt = testNow.Add(-time.Minute)
	uc := newTestUseCase(&mockHoldRepo{hold: hold}, &mockSlotRepo{}, &mockBookingRepo{}, nil)

	resp, err := uc.Execute(context.Background(), validRequest())

	assert.Nil(t, resp)
	assert.ErrorIs(t, err, ErrHoldExpired)
}

func TestExecute_HoldAlreadyConverted(t *testing.T) {
	hold := activeHold()
	hold.Status = domain.HoldStatusConverted
	uc := newTestUseCase(&mockHoldRepo{hold: hold}, &mockSlotRepo{}, &mockBookingRepo{}, nil)

	_, err := uc.Execute(context.Background(), validRequest())

	assert.ErrorIs(t, err, ErrHoldAlreadyConverted)
}

func TestExecute_HoldReleased(t *testing.T) {
	hold := activeHold()
	hold.Status = domain.HoldStatusReleased
	uc := newTestUseCase(&mockHoldRepo{hold: hold}, &mockSlotRepo{}, &mockBookingRepo{}, nil)

	_, err := uc.Execute(context.Background(), validRequest())

	assert.ErrorIs(t, err, ErrInvalidHoldState)
}

func TestExecute_ForeignSession(t *testing.T) {
	uc := newTestUseCase(&mockHoldRepo{hold: activeHold()}, &mockSlotRepo{}, &mockBookingRepo{}, nil)

	req := validRequest()
	req.SessionID = "sess-other"

	_, err := uc.Execute(context.Background(), req)

	// existence of a foreign hold is not revealed
	assert.ErrorIs(t, err, ErrHoldNotFound)
}

func TestExecute_HoldNotFound(t *testing.T) {
	uc := newTestUseCase(&mockHoldRepo{getErr: holdRepo.ErrHoldNotFound}, &mockSlotRepo{}, &mockBookingRepo{}, nil)

	_, err := uc.Execute(context.Background(), validRequest())

	assert.ErrorIs(t, err, ErrHoldNotFound)
}

func TestExecute_PaymentNotConfirmed(t *testing.T) {
	holds := &mockHoldRepo{hold: activeHold()}
	uc := newTestUseCase(holds, &mockSlotRepo{}, &mockBookingRepo{}, nil)

	req := validRequest()
	req.Payment.Confirmed = false

	_, err := uc.Execute(context.Background(), req)

	assert.ErrorIs(t, err, ErrPaymentNotConfirmed)
	assert.Empty(t, holds.converted)
}

func TestExecute_CapacityInvariantViolation(t *testing.T) {
	holds := &mockHoldRepo{hold: activeHold()}
	slots := &mockSlotRepo{err: slotRepo.ErrCapacityExceeded}
	uc := newTestUseCase(holds, slots, &mockBookingRepo{}, nil)

	resp, err := uc.Execute(context.Background(), validRequest())

	assert.Nil(t, resp)
	assert.ErrorIs(t, err, ErrCapacityInvariant)
	// transaction fails before the hold transition
	assert.Empty(t, holds.converted)
}

func TestExecute_BookingCreateFails(t *testing.T) {
	holds := &mockHoldRepo{hold: activeHold()}
	slots := &mockSlotRepo{}
	bookings := &mockBookingRepo{err: errors.New("connection refused")}
	uc := newTestUseCase(holds, slots, bookings, nil)

	_, err := uc.Execute(context.Background(), validRequest())

	assert.ErrorIs(t, err, ErrInternal)
	// nothing else in the transaction runs
	assert.Zero(t, slots.incremented)
	assert.Empty(t, holds.converted)
}

func TestExecute_PublisherFailureDoesNotFailBooking(t *testing.T) {
	holds := &mockHoldRepo{hold: activeHold()}
	pub := &mockPublisher{err: errors.New("broker unavailable")}
	uc := newTestUseCase(holds, &mockSlotRepo{}, &mockBookingRepo{}, pub)

	resp, err := uc.Execute(context.Background(), validRequest())

	require.NoError(t, err)
	assert.NotNil(t, resp)
}

func TestExecute_Validation(t *testing.T) {
	uc := newTestUseCase(&mockHoldRepo{}, &mockSlotRepo{}, &mockBookingRepo{}, nil)

	cases := []struct {
		name   string
		mutate func(*Request)
	}{
		{"zero hold id", func(r *Request) { r.HoldID = 0 }},
		{"empty session", func(r *Request) { r.SessionID = " " }},
		{"empty visitor name", func(r *Request) { r.Visitor.Name = "" }},
		{"visitor name too long", func(r *Request) { r.Visitor.Name = strings.Repeat("a", domain.MaxVisitorNameLength+1) }},
		{"invalid email", func(r *Request) { r.Visitor.Email = "not-an-email" }},
		{"negative amount", func(r *Request) { r.Payment.Amount = -1 }},
		{"missing currency", func(r *Request) { r.Payment.Currency = "" }},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			req := validRequest()
			tc.mutate(req)
			_, err := uc.Execute(context.Background(), req)
			assert.ErrorIs(t, err, ErrInvalidInput)
		})
	}
}
