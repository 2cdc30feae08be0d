package generate_slots

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/m04kA/MTB-ReservationService/internal/domain"
	"github.com/m04kA/MTB-ReservationService/pkg/types"
)

// mockSlotRepo implements TimeSlotRepository for testing
type mockSlotRepo struct {
	batch    []*domain.TimeSlot
	inserted int
	err      error
}

func (m *mockSlotRepo) CreateBatch(_ context.Context, slots []*domain.TimeSlot) (int, error) {
	if m.err != nil {
		return 0, m.err
	}
	m.batch = slots
	if m.inserted == 0 {
		return len(slots), nil
	}
	return m.inserted, nil
}

// mockTxManager runs the callback without a real transaction
type mockTxManager struct{}

func (m *mockTxManager) Do(ctx context.Context, fn func(ctx context.Context) error) error {
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

func newTestUseCase(repo *mockSlotRepo) *UseCase {
	uc := NewUseCase(repo, &mockTxManager{}, nopLogger{})
	uc.timeProvider = &fixedTimeProvider{now: testNow}
	return uc
}

func mustTime(t *testing.T, s string) types.TimeString {
	ts, err := types.NewTimeStringFromString(s)
	require.NoError(t, err)
	return ts
}

func validRequest(t *testing.T) *Request {
	return &Request{
		StartDate:           time.Date(2026, 10, 1, 0, 0, 0, 0, time.UTC),
		EndDate:             time.Date(2026, 10, 2, 0, 0, 0, 0, time.UTC),
		OpenTime:            mustTime(t, "10:00"),
		CloseTime:           mustTime(t, "13:00"),
		SlotDurationMinutes: 60,
		TotalCapacity:       50,
		Buffer:              5,
	}
}

func TestExecute_GeneratesGrid(t *testing.T) {
	repo := &mockSlotRepo{}
	uc := newTestUseCase(repo)

	resp, err := uc.Execute(context.Background(), validRequest(t))

	require.NoError(t, err)
	// 3 hourly slots per day over 2 days
	assert.Equal(t, 6, resp.SlotsCreated)
	assert.Equal(t, 0, resp.SlotsSkipped)
	require.Len(t, repo.batch, 6)

	first := repo.batch[0]
	assert.Equal(t, "10:00", first.StartTime.String())
	assert.Equal(t, "11:00", first.EndTime.String())
	assert.Equal(t, 50, first.TotalCapacity)
	assert.Equal(t, 5, first.Buffer)
	assert.True(t, first.IsActive)

	last := repo.batch[5]
	assert.Equal(t, "12:00", last.StartTime.String())
	assert.Equal(t, time.Date(2026, 10, 2, 0, 0, 0, 0, time.UTC), last.SlotDate)
}

func TestExecute_PartialSlotNotCreated(t *testing.T) {
	repo := &mockSlotRepo{}
	uc := newTestUseCase(repo)

	req := validRequest(t)
	req.EndDate = req.StartDate
	req.CloseTime = mustTime(t, "12:30")

	resp, err := uc.Execute(context.Background(), req)

	require.NoError(t, err)
	// 10:00-11:00 and 11:00-12:00 fit, 12:00-13:00 does not
	assert.Equal(t, 2, resp.SlotsCreated)
}

func TestExecute_IdempotentRerun(t *testing.T) {
	// repository reports fewer insertions than the batch size
	repo := &mockSlotRepo{inserted: 2}
	uc := newTestUseCase(repo)

	resp, err := uc.Execute(context.Background(), validRequest(t))

	require.NoError(t, err)
	assert.Equal(t, 2, resp.SlotsCreated)
	assert.Equal(t, 4, resp.SlotsSkipped)
}

func TestExecute_PastRangeRejected(t *testing.T) {
	repo := &mockSlotRepo{}
	uc := newTestUseCase(repo)

	req := validRequest(t)
	req.StartDate = testNow.AddDate(0, 0, -10)
	req.EndDate = testNow.AddDate(0, 0, -3)

	_, err := uc.Execute(context.Background(), req)

	assert.ErrorIs(t, err, ErrInvalidDateRange)
	assert.Nil(t, repo.batch)
}

func TestExecute_RangeEndingTodayIsAllowed(t *testing.T) {
	repo := &mockSlotRepo{}
	uc := newTestUseCase(repo)

	req := validRequest(t)
	req.StartDate = time.Date(2026, 9, 13, 0, 0, 0, 0, time.UTC)
	req.EndDate = time.Date(2026, 9, 14, 0, 0, 0, 0, time.UTC)

	resp, err := uc.Execute(context.Background(), req)

	require.NoError(t, err)
	assert.Equal(t, 6, resp.SlotsCreated)
}

func TestExecute_Validation(t *testing.T) {
	uc := newTestUseCase(&mockSlotRepo{})

	cases := []struct {
		name    string
		mutate  func(*Request)
		wantErr error
	}{
		{"end before start", func(r *Request) { r.EndDate = r.StartDate.AddDate(0, 0, -1) }, ErrInvalidDateRange},
		{"range too large", func(r *Request) { r.EndDate = r.StartDate.AddDate(0, 0, 100) }, ErrRangeTooLarge},
		{"open after close", func(r *Request) { r.OpenTime, r.CloseTime = r.CloseTime, r.OpenTime }, ErrInvalidSchedule},
		{"duration too short", func(r *Request) { r.SlotDurationMinutes = 5 }, ErrInvalidSchedule},
		{"duration too long", func(r *Request) { r.SlotDurationMinutes = 600 }, ErrInvalidSchedule},
		{"zero capacity", func(r *Request) { r.TotalCapacity = 0 }, ErrInvalidInput},
		{"buffer equals capacity", func(r *Request) { r.Buffer = r.TotalCapacity }, ErrInvalidInput},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			req := validRequest(t)
			tc.mutate(req)
			_, err := uc.Execute(context.Background(), req)
			assert.ErrorIs(t, err, tc.wantErr)
		})
	}
}
