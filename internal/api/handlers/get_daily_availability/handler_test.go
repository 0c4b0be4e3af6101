package get_daily_availability

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/m04kA/SMC-AvailabilityService/internal/service/availability"
	"github.com/m04kA/SMC-AvailabilityService/internal/service/availability/models"
)

type testLogger struct{}

func (testLogger) Info(string, ...interface{})  {}
func (testLogger) Warn(string, ...interface{})  {}
func (testLogger) Error(string, ...interface{}) {}

type fakeService struct {
	resp *models.DayResponse
	err  error

	calls      int
	gotDate    string
	gotRefresh bool
}

func (s *fakeService) GetDaily(_ context.Context, date string, forceRefresh bool) (*models.DayResponse, error) {
	s.calls++
	s.gotDate = date
	s.gotRefresh = forceRefresh
	return s.resp, s.err
}

func TestHandle_Success(t *testing.T) {
	svc := &fakeService{resp: &models.DayResponse{
		Date:         "2025-03-05",
		SourceStatus: "fresh",
		Rooms: []models.RoomResponse{{
			RoomName: "Room 101",
			Slots:    []models.SlotResponse{{StartTime: "09:00", EndTime: "10:00"}},
		}},
	}}
	h := NewHandler(svc, testLogger{})

	rec := httptest.NewRecorder()
	h.Handle(rec, httptest.NewRequest(http.MethodGet, "/api/v1/availability/daily?date=2025-03-05&refresh=true", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "2025-03-05", svc.gotDate)
	assert.True(t, svc.gotRefresh)

	var body models.DayResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "2025-03-05", body.Date)
	require.Len(t, body.Rooms, 1)
	assert.Equal(t, "09:00", body.Rooms[0].Slots[0].StartTime)
}

func TestHandle_BadInput(t *testing.T) {
	tests := []struct {
		name string
		url  string
	}{
		{name: "missing date", url: "/api/v1/availability/daily"},
		{name: "invalid refresh", url: "/api/v1/availability/daily?date=2025-03-05&refresh=maybe"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := &fakeService{}
			h := NewHandler(svc, testLogger{})

			rec := httptest.NewRecorder()
			h.Handle(rec, httptest.NewRequest(http.MethodGet, tt.url, nil))

			assert.Equal(t, http.StatusBadRequest, rec.Code)
			assert.Equal(t, 0, svc.calls)
		})
	}
}

func TestHandle_ErrorMapping(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
		wantMsg    string
	}{
		{name: "invalid date", err: fmt.Errorf("%w: \"x\"", availability.ErrInvalidDate), wantStatus: http.StatusBadRequest, wantMsg: msgInvalidDate},
		{name: "auth", err: fmt.Errorf("%w: 401", availability.ErrUpstreamAuth), wantStatus: http.StatusBadGateway, wantMsg: msgUpstreamAuth},
		{name: "total failure", err: fmt.Errorf("%w: timeout", availability.ErrTotalFailure), wantStatus: http.StatusBadGateway, wantMsg: msgNoData},
		{name: "cancelled", err: context.Canceled, wantStatus: http.StatusServiceUnavailable, wantMsg: msgCancelled},
		{name: "internal", err: availability.ErrInternal, wantStatus: http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := NewHandler(&fakeService{err: tt.err}, testLogger{})

			rec := httptest.NewRecorder()
			h.Handle(rec, httptest.NewRequest(http.MethodGet, "/api/v1/availability/daily?date=2025-03-05", nil))

			assert.Equal(t, tt.wantStatus, rec.Code)
			if tt.wantMsg != "" {
				assert.Contains(t, rec.Body.String(), tt.wantMsg)
			}
		})
	}
}
