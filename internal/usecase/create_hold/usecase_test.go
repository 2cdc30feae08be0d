package create_hold

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/m04kA/MTB-ReservationService/internal/domain"
	holdRepo "github.com/m04kA/MTB-ReservationService/internal/infra/storage/hold"
	slotRepo "github.com/m04kA/MTB-ReservationService/internal/infra/storage/timeslot"
	"github.com/m04kA/MTB-ReservationService/pkg/types"
)

// mockSlotRepo implements TimeSlotRepository for testing
type mockSlotRepo struct {
	slot *domain.TimeSlot
	err  error
}

func (m *mockSlotRepo) GetByID(_ context.Context, _ int64) (*domain.TimeSlot, error) {
	return m.slot, m.err
}

// mockHoldRepo implements HoldRepository for testing
type mockHoldRepo struct {
	held      int
	sumErr    error
	created   *domain.Hold
	createErr error
}

func (m *mockHoldRepo) Create(_ context.Context, hold *domain.Hold) (*domain.Hold, error) {
	if m.createErr != nil {
		return nil, m.createErr
	}
	hold.ID = 101
	hold.CreatedAt = time.Now()
	m.created = hold
	return hold, nil
}

func (m *mockHoldRepo) SumActiveQuantity(_ context.Context, _ int64, _ time.Time) (int, error) {
	return m.held, m.sumErr
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

func testSlot(capacity, buffer, confirmed int) *domain.TimeSlot {
	start, _ := types.NewTimeStringFromString("10:00")
	end, _ := types.NewTimeStringFromString("11:00")
	return &domain.TimeSlot{
		ID:             1,
		SlotDate:       time.Date(2026, 9, 14, 0, 0, 0, 0, time.UTC),
		StartTime:      start,
		EndTime:        end,
		TotalCapacity:  capacity,
		ConfirmedCount: confirmed,
		Buffer:         buffer,
		IsActive:       true,
	}
}

func newTestUseCase(slots *mockSlotRepo, holds *mockHoldRepo) *UseCase {
	uc := NewUseCase(slots, holds, &mockTxManager{}, 15*time.Minute, 10, nopLogger{})
	uc.timeProvider = &fixedTimeProvider{now: testNow}
	return uc
}

func TestExecute_Success(t *testing.T) {
	slots := &mockSlotRepo{slot: testSlot(50, 5, 40)}
	holds := &mockHoldRepo{held: 2}
	uc := newTestUseCase(slots, holds)

	resp, err := uc.Execute(context.Background(), &Request{
		TimeSlotID: 1,
		SessionID:  "sess-1",
		Quantity:   3,
	})

	require.NoError(t, err)
	assert.Equal(t, int64(101), resp.HoldID)
	assert.Equal(t, 3, resp.Quantity)
	assert.Equal(t, string(domain.HoldStatusActive), resp.Status)
	assert.Equal(t, testNow.Add(15*time.Minute), resp.ExpiresAt)
	assert.Equal(t, "sess-1", holds.created.SessionID)
}

func TestExecute_SlotFull(t *testing.T) {
	// capacity 50, buffer 5, confirmed 40, held 2 leaves 3 sellable tickets
	slots := &mockSlotRepo{slot: testSlot(50, 5, 40)}
	holds := &mockHoldRepo{held: 2}
	uc := newTestUseCase(slots, holds)

	resp, err := uc.Execute(context.Background(), &Request{
		TimeSlotID: 1,
		SessionID:  "sess-1",
		Quantity:   4,
	})

	assert.Nil(t, resp)
	require.ErrorIs(t, err, ErrSlotFull)

	var full *SlotFullError
	require.ErrorAs(t, err, &full)
	assert.Equal(t, 3, full.Remaining)
	assert.Equal(t, 4, full.Requested)
}

func TestExecute_ExactlyRemaining(t *testing.T) {
	// taking exactly the last sellable tickets must succeed
	slots := &mockSlotRepo{slot: testSlot(50, 5, 40)}
	holds := &mockHoldRepo{held: 2}
	uc := newTestUseCase(slots, holds)

	resp, err := uc.Execute(context.Background(), &Request{
		TimeSlotID: 1,
		SessionID:  "sess-1",
		Quantity:   3,
	})

	require.NoError(t, err)
	assert.Equal(t, 3, resp.Quantity)
}

func TestExecute_BufferNeverSold(t *testing.T) {
	// confirmed already at sellable capacity, buffer seats stay unsold
	slots := &mockSlotRepo{slot: testSlot(50, 5, 45)}
	holds := &mockHoldRepo{held: 0}
	uc := newTestUseCase(slots, holds)

	_, err := uc.Execute(context.Background(), &Request{
		TimeSlotID: 1,
		SessionID:  "sess-1",
		Quantity:   1,
	})

	require.ErrorIs(t, err, ErrSlotFull)

	var full *SlotFullError
	require.ErrorAs(t, err, &full)
	assert.Equal(t, 0, full.Remaining)
}

func TestExecute_SlotNotFound(t *testing.T) {
	slots := &mockSlotRepo{err: slotRepo.ErrSlotNotFound}
	uc := newTestUseCase(slots, &mockHoldRepo{})

	_, err := uc.Execute(context.Background(), &Request{
		TimeSlotID: 99,
		SessionID:  "sess-1",
		Quantity:   1,
	})

	assert.ErrorIs(t, err, ErrSlotNotFound)
}

func TestExecute_SlotInactive(t *testing.T) {
	slot := testSlot(50, 5, 0)
	slot.IsActive = false
	uc := newTestUseCase(&mockSlotRepo{slot: slot}, &mockHoldRepo{})

	_, err := uc.Execute(context.Background(), &Request{
		TimeSlotID: 1,
		SessionID:  "sess-1",
		Quantity:   1,
	})

	assert.ErrorIs(t, err, ErrSlotInactive)
}

func TestExecute_SlotInPast(t *testing.T) {
	slot := testSlot(50, 5, 0)
	slot.SlotDate = time.Date(2026, 9, 13, 0, 0, 0, 0, time.UTC)
	uc := newTestUseCase(&mockSlotRepo{slot: slot}, &mockHoldRepo{})

	_, err := uc.Execute(context.Background(), &Request{
		TimeSlotID: 1,
		SessionID:  "sess-1",
		Quantity:   1,
	})

	assert.ErrorIs(t, err, ErrSlotInPast)
}

func TestExecute_DuplicateHold(t *testing.T) {
	slots := &mockSlotRepo{slot: testSlot(50, 5, 0)}
	holds := &mockHoldRepo{createErr: holdRepo.ErrDuplicateHold}
	uc := newTestUseCase(slots, holds)

	_, err := uc.Execute(context.Background(), &Request{
		TimeSlotID: 1,
		SessionID:  "sess-1",
		Quantity:   1,
	})

	assert.ErrorIs(t, err, ErrDuplicateHold)
}

func TestExecute_Validation(t *testing.T) {
	uc := newTestUseCase(&mockSlotRepo{}, &mockHoldRepo{})

	cases := []struct {
		name string
		req  Request
	}{
		{"zero slot id", Request{TimeSlotID: 0, SessionID: "s", Quantity: 1}},
		{"empty session", Request{TimeSlotID: 1, SessionID: "  ", Quantity: 1}},
		{"zero quantity", Request{TimeSlotID: 1, SessionID: "s", Quantity: 0}},
		{"negative quantity", Request{TimeSlotID: 1, SessionID: "s", Quantity: -2}},
		{"over per-hold limit", Request{TimeSlotID: 1, SessionID: "s", Quantity: 11}},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := uc.Execute(context.Background(), &tc.req)
			assert.ErrorIs(t, err, ErrInvalidInput)
		})
	}
}

func TestExecute_RepositoryError(t *testing.T) {
	slots := &mockSlotRepo{slot: testSlot(50, 5, 0)}
	holds := &mockHoldRepo{sumErr: errors.New("connection refused")}
	uc := newTestUseCase(slots, holds)

	_, err := uc.Execute(context.Background(), &Request{
		TimeSlotID: 1,
		SessionID:  "sess-1",
		Quantity:   1,
	})

	assert.ErrorIs(t, err, ErrInternal)
}

// serializedTxManager serializes callbacks the way serializable
// transactions over one slot row do
type serializedTxManager struct {
	mu sync.Mutex
}

func (m *serializedTxManager) DoSerializable(ctx context.Context, fn func(ctx context.Context) error) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return fn(ctx)
}

// sharedHoldStore accumulates held quantity across concurrent requests
type sharedHoldStore struct {
	mu     sync.Mutex
	held   int
	nextID int64
}

func (s *sharedHoldStore) Create(_ context.Context, hold *domain.Hold) (*domain.Hold, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.nextID++
	hold.ID = s.nextID
	hold.CreatedAt = testNow
	s.held += hold.Quantity
	return hold, nil
}

func (s *sharedHoldStore) SumActiveQuantity(_ context.Context, _ int64, _ time.Time) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.held, nil
}

func TestExecute_ConcurrentRequestsNeverOversell(t *testing.T) {
	// 50 total - 5 buffer - 40 confirmed = 5 sellable units left
	slots := &mockSlotRepo{slot: testSlot(50, 5, 40)}
	store := &sharedHoldStore{}
	uc := NewUseCase(slots, store, &serializedTxManager{}, 15*time.Minute, 10, nopLogger{})
	uc.timeProvider = &fixedTimeProvider{now: testNow}

	const n = 20
	errs := make([]error, n)
	var wg sync.WaitGroup

	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = uc.Execute(context.Background(), &Request{
				TimeSlotID: 1,
				SessionID:  fmt.Sprintf("sess-%d", i),
				Quantity:   1,
			})
		}(i)
	}
	wg.Wait()

	succeeded, slotFull := 0, 0
	for _, err := range errs {
		switch {
		case err == nil:
			succeeded++
		case errors.Is(err, ErrSlotFull):
			slotFull++
		default:
			t.Fatalf("unexpected error: %v", err)
		}
	}

	// exactly the remaining capacity is sold, the rest are rejected
	assert.Equal(t, 5, succeeded)
	assert.Equal(t, 15, slotFull)
	assert.Equal(t, 5, store.held)
}
