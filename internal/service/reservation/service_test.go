package reservation

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/m04kA/MTB-ReservationService/internal/domain"
	holdStorage "github.com/m04kA/MTB-ReservationService/internal/infra/storage/hold"
	slotStorage "github.com/m04kA/MTB-ReservationService/internal/infra/storage/timeslot"
	"github.com/m04kA/MTB-ReservationService/pkg/types"
)

// mockSlotRepo implements TimeSlotRepository for testing
type mockSlotRepo struct {
	slot          *domain.TimeSlot
	slotErr       error
	capacity      int
	deactivateErr error
	deactivated   []int64
}

func (m *mockSlotRepo) GetByID(_ context.Context, _ int64) (*domain.TimeSlot, error) {
	return m.slot, m.slotErr
}

func (m *mockSlotRepo) GetAvailableCapacity(_ context.Context, _ int64) (int, error) {
	return m.capacity, nil
}

func (m *mockSlotRepo) ListByDate(_ context.Context, _ domain.SlotListFilter) ([]*domain.SlotAvailability, error) {
	return nil, nil
}

func (m *mockSlotRepo) Deactivate(_ context.Context, id int64) error {
	if m.deactivateErr != nil {
		return m.deactivateErr
	}
	m.deactivated = append(m.deactivated, id)
	return nil
}

// mockHoldRepo implements HoldRepository for testing
type mockHoldRepo struct {
	hold          *domain.Hold
	holdErr       error
	slotHolds     []*domain.Hold
	convertingErr error
	releasedErr   error
	expiredErr    error
	converting    []string
	released      []int64
	expired       []int64
}

func (m *mockHoldRepo) GetByID(_ context.Context, _ int64) (*domain.Hold, error) {
	return m.hold, m.holdErr
}

func (m *mockHoldRepo) FindActiveByTimeSlot(_ context.Context, _ int64) ([]*domain.Hold, error) {
	return m.slotHolds, nil
}

func (m *mockHoldRepo) FindActiveBySession(_ context.Context, _ string) ([]*domain.Hold, error) {
	return m.slotHolds, nil
}

func (m *mockHoldRepo) SumActiveQuantity(_ context.Context, _ int64, _ time.Time) (int, error) {
	return 0, nil
}

func (m *mockHoldRepo) MarkConverting(_ context.Context, _ int64, token string, _ time.Time) error {
	if m.convertingErr != nil {
		return m.convertingErr
	}
	m.converting = append(m.converting, token)
	return nil
}

func (m *mockHoldRepo) MarkReleased(_ context.Context, id int64) error {
	if m.releasedErr != nil {
		return m.releasedErr
	}
	m.released = append(m.released, id)
	return nil
}

func (m *mockHoldRepo) MarkExpired(_ context.Context, id int64, _ time.Time, _ time.Duration) error {
	if m.expiredErr != nil {
		return m.expiredErr
	}
	m.expired = append(m.expired, id)
	return nil
}

// mockTxManager runs callbacks without a real transaction
type mockTxManager struct{}

func (m *mockTxManager) Do(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}

func (m *mockTxManager) DoReadOnly(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}

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

func activeHold(id int64, session string) *domain.Hold {
	return &domain.Hold{
		ID:         id,
		SessionID:  session,
		TimeSlotID: 1,
		Quantity:   2,
		Status:     domain.HoldStatusActive,
		ExpiresAt:  testNow.Add(10 * time.Minute),
	}
}

func newTestService(slots *mockSlotRepo, holds *mockHoldRepo) *Service {
	svc := NewService(slots, holds, &mockTxManager{}, 5*time.Minute, nopLogger{})
	svc.timeProvider = &fixedTimeProvider{now: testNow}
	return svc
}

func TestCheckAvailability_ReturnsComputedCapacity(t *testing.T) {
	start, _ := types.NewTimeStringFromString("10:00")
	end, _ := types.NewTimeStringFromString("11:00")
	slots := &mockSlotRepo{
		slot: &domain.TimeSlot{
			ID:        1,
			SlotDate:  time.Date(2026, 9, 14, 0, 0, 0, 0, time.UTC),
			StartTime: start,
			EndTime:   end,
			IsActive:  true,
		},
		capacity: 7,
	}
	svc := newTestService(slots, &mockHoldRepo{})

	resp, err := svc.CheckAvailability(context.Background(), 1)

	require.NoError(t, err)
	assert.Equal(t, 7, resp.AvailableCapacity)
	assert.Equal(t, "10:00", resp.StartTime)
	assert.True(t, resp.IsActive)
}

func TestCheckAvailability_SlotNotFound(t *testing.T) {
	slots := &mockSlotRepo{slotErr: slotStorage.ErrSlotNotFound}
	svc := newTestService(slots, &mockHoldRepo{})

	_, err := svc.CheckAvailability(context.Background(), 404)

	assert.ErrorIs(t, err, ErrSlotNotFound)
}

func TestReleaseHold_ReleasesActiveHold(t *testing.T) {
	holds := &mockHoldRepo{hold: activeHold(10, "sess-1")}
	svc := newTestService(&mockSlotRepo{}, holds)

	err := svc.ReleaseHold(context.Background(), 10, "sess-1")

	require.NoError(t, err)
	assert.Equal(t, []int64{10}, holds.released)
}

func TestReleaseHold_NonActiveHoldIsNoOp(t *testing.T) {
	h := activeHold(10, "sess-1")
	h.Status = domain.HoldStatusReleased
	holds := &mockHoldRepo{hold: h}
	svc := newTestService(&mockSlotRepo{}, holds)

	err := svc.ReleaseHold(context.Background(), 10, "sess-1")

	require.NoError(t, err)
	assert.Empty(t, holds.released)
}

func TestReleaseHold_ForeignSessionLooksLikeNotFound(t *testing.T) {
	holds := &mockHoldRepo{hold: activeHold(10, "sess-1")}
	svc := newTestService(&mockSlotRepo{}, holds)

	err := svc.ReleaseHold(context.Background(), 10, "sess-2")

	assert.ErrorIs(t, err, ErrHoldNotFound)
	assert.Empty(t, holds.released)
}

func TestReleaseHold_LostRaceToSweeperIsNoOp(t *testing.T) {
	holds := &mockHoldRepo{
		hold:        activeHold(10, "sess-1"),
		releasedErr: holdStorage.ErrInvalidHoldState,
	}
	svc := newTestService(&mockSlotRepo{}, holds)

	err := svc.ReleaseHold(context.Background(), 10, "sess-1")

	assert.NoError(t, err)
}

func TestConvertHold_IssuesToken(t *testing.T) {
	holds := &mockHoldRepo{hold: activeHold(10, "sess-1")}
	svc := newTestService(&mockSlotRepo{}, holds)

	resp, err := svc.ConvertHold(context.Background(), 10, "sess-1")

	require.NoError(t, err)
	assert.Equal(t, int64(10), resp.HoldID)
	assert.NotEmpty(t, resp.ConversionToken)
	require.Len(t, holds.converting, 1)
	assert.Equal(t, holds.converting[0], resp.ConversionToken)
}

func TestConvertHold_RepeatReturnsExistingToken(t *testing.T) {
	token := "tok-1"
	h := activeHold(10, "sess-1")
	h.Status = domain.HoldStatusConverting
	h.ConversionToken = &token
	holds := &mockHoldRepo{hold: h}
	svc := newTestService(&mockSlotRepo{}, holds)

	resp, err := svc.ConvertHold(context.Background(), 10, "sess-1")

	require.NoError(t, err)
	assert.Equal(t, "tok-1", resp.ConversionToken)
	assert.Empty(t, holds.converting)
}

func TestConvertHold_ExpiredHold(t *testing.T) {
	h := activeHold(10, "sess-1")
	h.ExpiresAt = testNow.Add(-time.Minute)
	holds := &mockHoldRepo{hold: h}
	svc := newTestService(&mockSlotRepo{}, holds)

	_, err := svc.ConvertHold(context.Background(), 10, "sess-1")

	assert.ErrorIs(t, err, ErrHoldExpired)
}

func TestConvertHold_ExpiryRaceMapsToExpired(t *testing.T) {
	holds := &mockHoldRepo{
		hold:          activeHold(10, "sess-1"),
		convertingErr: holdStorage.ErrInvalidHoldState,
	}
	svc := newTestService(&mockSlotRepo{}, holds)

	_, err := svc.ConvertHold(context.Background(), 10, "sess-1")

	assert.ErrorIs(t, err, ErrHoldExpired)
}

func TestConvertHold_ReleasedHold(t *testing.T) {
	h := activeHold(10, "sess-1")
	h.Status = domain.HoldStatusReleased
	holds := &mockHoldRepo{hold: h}
	svc := newTestService(&mockSlotRepo{}, holds)

	_, err := svc.ConvertHold(context.Background(), 10, "sess-1")

	assert.ErrorIs(t, err, ErrInvalidHoldState)
}

func TestExpireHold_Expires(t *testing.T) {
	holds := &mockHoldRepo{}
	svc := newTestService(&mockSlotRepo{}, holds)

	err := svc.ExpireHold(context.Background(), 10)

	require.NoError(t, err)
	assert.Equal(t, []int64{10}, holds.expired)
}

func TestExpireHold_AlreadyHandledIsNoOp(t *testing.T) {
	holds := &mockHoldRepo{expiredErr: holdStorage.ErrInvalidHoldState}
	svc := newTestService(&mockSlotRepo{}, holds)

	err := svc.ExpireHold(context.Background(), 10)

	assert.NoError(t, err)
}

func TestDeactivateSlot_ReleasesActiveHolds(t *testing.T) {
	slots := &mockSlotRepo{}
	holds := &mockHoldRepo{
		slotHolds: []*domain.Hold{activeHold(10, "sess-1"), activeHold(11, "sess-2")},
	}
	svc := newTestService(slots, holds)

	released, err := svc.DeactivateSlot(context.Background(), 1)

	require.NoError(t, err)
	assert.Equal(t, 2, released)
	assert.Equal(t, []int64{1}, slots.deactivated)
	assert.Equal(t, []int64{10, 11}, holds.released)
}

func TestDeactivateSlot_SlotNotFound(t *testing.T) {
	slots := &mockSlotRepo{deactivateErr: slotStorage.ErrSlotNotFound}
	svc := newTestService(slots, &mockHoldRepo{})

	_, err := svc.DeactivateSlot(context.Background(), 404)

	assert.ErrorIs(t, err, ErrSlotNotFound)
}

// serializedTxManager serializes callbacks the way serializable
// transactions over one hold row do
type serializedTxManager struct {
	mu sync.Mutex
}

func (m *serializedTxManager) Do(ctx context.Context, fn func(ctx context.Context) error) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return fn(ctx)
}

func (m *serializedTxManager) DoReadOnly(ctx context.Context, fn func(ctx context.Context) error) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return fn(ctx)
}

func (m *serializedTxManager) DoSerializable(ctx context.Context, fn func(ctx context.Context) error) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return fn(ctx)
}

// statefulHoldStore keeps one hold with a real status transition,
// like the conditional UPDATE in the repository
type statefulHoldStore struct {
	mockHoldRepo
	mu       sync.Mutex
	status   domain.HoldStatus
	releases int
}

func (s *statefulHoldStore) GetByID(_ context.Context, _ int64) (*domain.Hold, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	h := *activeHold(10, "sess-1")
	h.Status = s.status
	return &h, nil
}

func (s *statefulHoldStore) MarkReleased(_ context.Context, _ int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.status != domain.HoldStatusActive {
		return holdStorage.ErrInvalidHoldState
	}
	s.status = domain.HoldStatusReleased
	s.releases++
	return nil
}

func TestReleaseHold_ConcurrentReleasesChangeStateOnce(t *testing.T) {
	store := &statefulHoldStore{status: domain.HoldStatusActive}
	svc := NewService(&mockSlotRepo{}, store, &serializedTxManager{}, 5*time.Minute, nopLogger{})
	svc.timeProvider = &fixedTimeProvider{now: testNow}

	const n = 2
	errs := make([]error, n)
	var wg sync.WaitGroup

	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			errs[i] = svc.ReleaseHold(context.Background(), 10, "sess-1")
		}(i)
	}
	wg.Wait()

	// both callers see success, the state changes exactly once
	for _, err := range errs {
		assert.NoError(t, err)
	}
	assert.Equal(t, 1, store.releases)
	assert.Equal(t, domain.HoldStatusReleased, store.status)
}
