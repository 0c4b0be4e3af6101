package get_weekly_availability

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/m04kA/SMC-AvailabilityService/internal/api/handlers"
	"github.com/m04kA/SMC-AvailabilityService/internal/service/availability"
	"github.com/m04kA/SMC-AvailabilityService/internal/service/availability/models"
)

type testLogger struct{}

func (testLogger) Info(string, ...interface{})  {}
func (testLogger) Warn(string, ...interface{})  {}
func (testLogger) Error(string, ...interface{}) {}

type fakeService struct {
	resp *models.WeekResponse
	err  error
}

func (s *fakeService) GetWeekly(context.Context, string) (*models.WeekResponse, error) {
	return s.resp, s.err
}

func week(failed ...string) *models.WeekResponse {
	days := make([]models.DayResponse, 7)
	for i := range days {
		days[i] = models.DayResponse{
			Date:         time.Date(2025, 3, 3+i, 0, 0, 0, 0, time.UTC).Format("2006-01-02"),
			SourceStatus: "fresh",
			Rooms:        []models.RoomResponse{},
		}
	}
	return &models.WeekResponse{
		WeekStart:  "2025-03-03",
		WeekEnd:    "2025-03-09",
		Days:       days,
		Partial:    len(failed) > 0,
		FailedDays: failed,
	}
}

func TestHandle_Success(t *testing.T) {
	h := NewHandler(&fakeService{resp: week()}, testLogger{})

	rec := httptest.NewRecorder()
	h.Handle(rec, httptest.NewRequest(http.MethodGet, "/api/v1/availability/weekly?date=2025-03-05", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Empty(t, rec.Header().Get(handlers.PartialFailureHeader))

	var body models.WeekResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "2025-03-03", body.WeekStart)
	assert.Len(t, body.Days, 7)
	assert.False(t, body.Partial)
}

func TestHandle_PartialFailure(t *testing.T) {
	failedDay := time.Date(2025, 3, 6, 0, 0, 0, 0, time.UTC)
	h := NewHandler(&fakeService{
		resp: week("2025-03-06"),
		err:  &availability.PartialFailureError{Days: []time.Time{failedDay}},
	}, testLogger{})

	rec := httptest.NewRecorder()
	h.Handle(rec, httptest.NewRequest(http.MethodGet, "/api/v1/availability/weekly?date=2025-03-05", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "true", rec.Header().Get(handlers.PartialFailureHeader))

	var body models.WeekResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.True(t, body.Partial)
	assert.Equal(t, []string{"2025-03-06"}, body.FailedDays)
}

func TestHandle_ErrorMapping(t *testing.T) {
	tests := []struct {
		name       string
		url        string
		err        error
		wantStatus int
	}{
		{name: "missing date", url: "/api/v1/availability/weekly", wantStatus: http.StatusBadRequest},
		{name: "invalid date", url: "/api/v1/availability/weekly?date=x", err: fmt.Errorf("%w: x", availability.ErrInvalidDate), wantStatus: http.StatusBadRequest},
		{name: "auth", url: "/api/v1/availability/weekly?date=2025-03-05", err: availability.ErrUpstreamAuth, wantStatus: http.StatusBadGateway},
		{name: "total failure", url: "/api/v1/availability/weekly?date=2025-03-05", err: availability.ErrTotalFailure, wantStatus: http.StatusBadGateway},
		{name: "internal", url: "/api/v1/availability/weekly?date=2025-03-05", err: availability.ErrInternal, wantStatus: http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := NewHandler(&fakeService{err: tt.err}, testLogger{})

			rec := httptest.NewRecorder()
			h.Handle(rec, httptest.NewRequest(http.MethodGet, tt.url, nil))

			assert.Equal(t, tt.wantStatus, rec.Code)
			assert.Empty(t, rec.Header().Get(handlers.PartialFailureHeader))
		})
	}
}
