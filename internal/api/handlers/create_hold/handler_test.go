package create_hold

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/m04kA/MTB-ReservationService/internal/api/middleware"
	createHold "github.com/m04kA/MTB-ReservationService/internal/usecase/create_hold"
)

// mockUseCase implements CreateHoldUseCase for testing
type mockUseCase struct {
	gotReq *createHold.Request
	resp   *createHold.Response
	err    error
}

func (m *mockUseCase) Execute(_ context.Context, req *createHold.Request) (*createHold.Response, error) {
	m.gotReq = req
	return m.resp, m.err
}

// nopLogger discards all log output
type nopLogger struct{}

func (nopLogger) Info(string, ...interface{})  {}
func (nopLogger) Warn(string, ...interface{})  {}
func (nopLogger) Error(string, ...interface{}) {}

func doRequest(t *testing.T, uc CreateHoldUseCase, body string) *httptest.ResponseRecorder {
	h := NewHandler(uc, nopLogger{})

	router := middleware.SessionMiddleware(http.HandlerFunc(h.Handle))

	req := httptest.NewRequest(http.MethodPost, "/api/v1/holds", strings.NewReader(body))
	req.Header.Set(middleware.HeaderSessionID, "sess-1")

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func TestHandle_Created(t *testing.T) {
	expires := time.Date(2026, 9, 14, 9, 15, 0, 0, time.UTC)
	uc := &mockUseCase{resp: &createHold.Response{
		HoldID:     101,
		TimeSlotID: 1,
		Quantity:   2,
		Status:     "active",
		ExpiresAt:  expires,
		CreatedAt:  expires.Add(-15 * time.Minute),
	}}

	rec := doRequest(t, uc, `{"timeSlotId":1,"quantity":2}`)

	assert.Equal(t, http.StatusCreated, rec.Code)

	// session comes from the header, not the body
	require.NotNil(t, uc.gotReq)
	assert.Equal(t, "sess-1", uc.gotReq.SessionID)

	var resp HoldResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, int64(101), resp.HoldID)
	assert.Equal(t, "2026-09-14T09:15:00Z", resp.ExpiresAt)
}

func TestHandle_SlotFull(t *testing.T) {
	uc := &mockUseCase{err: &createHold.SlotFullError{Requested: 4, Remaining: 3}}

	rec := doRequest(t, uc, `{"timeSlotId":1,"quantity":4}`)

	assert.Equal(t, http.StatusConflict, rec.Code)

	var body struct {
		Code      string `json:"code"`
		Remaining *int   `json:"remaining"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "SLOT_FULL", body.Code)
	require.NotNil(t, body.Remaining)
	assert.Equal(t, 3, *body.Remaining)
}

func TestHandle_DuplicateHold(t *testing.T) {
	uc := &mockUseCase{err: createHold.ErrDuplicateHold}

	rec := doRequest(t, uc, `{"timeSlotId":1,"quantity":1}`)

	assert.Equal(t, http.StatusConflict, rec.Code)
	assert.Contains(t, rec.Body.String(), "DUPLICATE_HOLD")
}

func TestHandle_SlotInactive(t *testing.T) {
	uc := &mockUseCase{err: createHold.ErrSlotInactive}

	rec := doRequest(t, uc, `{"timeSlotId":1,"quantity":1}`)

	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	assert.Contains(t, rec.Body.String(), "SLOT_INACTIVE")
}

func TestHandle_SlotNotFound(t *testing.T) {
	uc := &mockUseCase{err: createHold.ErrSlotNotFound}

	rec := doRequest(t, uc, `{"timeSlotId":99,"quantity":1}`)

	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestHandle_InvalidBody(t *testing.T) {
	rec := doRequest(t, &mockUseCase{}, `{"timeSlotId":`)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestHandle_MissingSession(t *testing.T) {
	h := NewHandler(&mockUseCase{}, nopLogger{})
	router := middleware.SessionMiddleware(http.HandlerFunc(h.Handle))

	req := httptest.NewRequest(http.MethodPost, "/api/v1/holds", strings.NewReader(`{"timeSlotId":1,"quantity":1}`))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}
