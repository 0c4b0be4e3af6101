package emsservice

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/m04kA/SMC-AvailabilityService/internal/domain"
)

type testLogger struct{}

func (testLogger) Info(string, ...interface{})  {}
func (testLogger) Warn(string, ...interface{})  {}
func (testLogger) Error(string, ...interface{}) {}

type recordedCall struct {
	outcome string
}

type fakeMetrics struct {
	mu    sync.Mutex
	calls []recordedCall
}

func (m *fakeMetrics) RecordUpstreamCall(outcome string, _ time.Duration) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls = append(m.calls, recordedCall{outcome: outcome})
}

func mustDate(t *testing.T, s string) time.Time {
	t.Helper()
	d, err := domain.ParseDate(s)
	require.NoError(t, err)
	return d
}

func newTestClient(t *testing.T, handler http.HandlerFunc) (*Client, *fakeMetrics) {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	m := &fakeMetrics{}
	client := NewClient(srv.URL+"/", "secret-token", time.Second, testLogger{}).WithMetrics(m)
	return client, m
}

func TestClient_FetchDay_Success(t *testing.T) {
	client, m := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/availability/daily", r.URL.Path)
		assert.Equal(t, "2025-03-05", r.URL.Query().Get("date"))
		assert.Equal(t, "Bearer secret-token", r.Header.Get("Authorization"))

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{
			"success": true,
			"data": {
				"date": "2025-03-05",
				"rooms": [
					{"roomName": "B-2", "roomType": "lab", "buildingName": "Science",
					 "slots": [{"startTime": "13:00", "endTime": "14:00"}, {"startTime": "09:00", "endTime": "10:00"}]},
					{"roomName": "A-1", "roomType": "lecture", "buildingName": "Humanities",
					 "slots": [{"startTime": "08:00", "endTime": "09:00"}, {"startTime": "08:30", "endTime": "10:00"}, {"startTime": "10:00", "endTime": "11:00"}]}
				]
			}
		}`))
	})

	day, err := client.FetchDay(context.Background(), mustDate(t, "2025-03-05"))
	require.NoError(t, err)

	assert.Equal(t, "2025-03-05", domain.FormatDate(day.Date))
	assert.Equal(t, domain.SourceFresh, day.SourceStatus)
	require.Len(t, day.Rooms, 2)

	// помещения отсортированы по зданию
	assert.Equal(t, "Humanities", day.Rooms[0].BuildingName)
	// пересекающиеся и смежные слоты склеены
	require.Len(t, day.Rooms[0].Slots, 1)
	assert.Equal(t, "08:00", day.Rooms[0].Slots[0].StartTime.String())
	assert.Equal(t, "11:00", day.Rooms[0].Slots[0].EndTime.String())
	// слоты отсортированы по времени начала
	require.Len(t, day.Rooms[1].Slots, 2)
	assert.Equal(t, "09:00", day.Rooms[1].Slots[0].StartTime.String())

	require.Len(t, m.calls, 1)
	assert.Equal(t, outcomeOK, m.calls[0].outcome)
}

func TestClient_FetchDay_ErrorClassification(t *testing.T) {
	tests := []struct {
		name    string
		status  int
		body    string
		wantErr error
	}{
		{name: "unauthorized", status: http.StatusUnauthorized, body: `{"message":"bad token"}`, wantErr: ErrAuth},
		{name: "forbidden", status: http.StatusForbidden, wantErr: ErrAuth},
		{name: "server error", status: http.StatusBadGateway, body: "gateway", wantErr: ErrUnavailable},
		{name: "throttled", status: http.StatusTooManyRequests, wantErr: ErrUnavailable},
		{name: "not found", status: http.StatusNotFound, body: "no such endpoint", wantErr: ErrBadResponse},
		{name: "success false", status: http.StatusOK, body: `{"success":false,"message":"EMS maintenance"}`, wantErr: ErrBadResponse},
		{name: "malformed json", status: http.StatusOK, body: `{"success":tru`, wantErr: ErrBadResponse},
		{name: "inverted slot", status: http.StatusOK,
			body:    `{"success":true,"data":{"date":"2025-03-05","rooms":[{"roomName":"A","slots":[{"startTime":"10:00","endTime":"09:00"}]}]}}`,
			wantErr: ErrBadResponse},
		{name: "date mismatch", status: http.StatusOK,
			body:    `{"success":true,"data":{"date":"2025-03-06","rooms":[]}}`,
			wantErr: ErrBadResponse},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				_, _ = w.Write([]byte(tt.body))
			})

			_, err := client.FetchDay(context.Background(), mustDate(t, "2025-03-05"))
			require.Error(t, err)
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestClient_FetchDay_CapturesDiagnostics(t *testing.T) {
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTeapot)
		_, _ = w.Write([]byte("short and stout"))
	})

	_, err := client.FetchDay(context.Background(), mustDate(t, "2025-03-05"))

	var respErr *ResponseError
	require.True(t, errors.As(err, &respErr))
	assert.Equal(t, http.StatusTeapot, respErr.StatusCode)
	assert.Equal(t, "short and stout", respErr.Body)
	assert.Contains(t, err.Error(), "status=418")
}

func TestClient_FetchDay_Timeout(t *testing.T) {
	release := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-release:
		case <-r.Context().Done():
		}
	}))
	defer srv.Close()
	defer close(release)

	client := NewClient(srv.URL, "t", 50*time.Millisecond, testLogger{})

	_, err := client.FetchDay(context.Background(), mustDate(t, "2025-03-05"))
	assert.ErrorIs(t, err, ErrTimeout)
}

func TestClient_FetchDay_Unreachable(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	client := NewClient(url, "t", time.Second, testLogger{})

	_, err := client.FetchDay(context.Background(), mustDate(t, "2025-03-05"))
	assert.ErrorIs(t, err, ErrUnavailable)
}

func TestClient_FetchDay_Canceled(t *testing.T) {
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"success":true,"data":{"rooms":[]}}`))
	})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := client.FetchDay(ctx, mustDate(t, "2025-03-05"))
	assert.ErrorIs(t, err, ErrCanceled)
}

func TestClient_WithRateLimit(t *testing.T) {
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"success":true,"data":{"rooms":[]}}`))
	})
	client.WithRateLimit(1, 1)

	_, err := client.FetchDay(context.Background(), mustDate(t, "2025-03-05"))
	require.NoError(t, err)

	// второй запрос не укладывается в лимит до дедлайна
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()

	_, err = client.FetchDay(ctx, mustDate(t, "2025-03-06"))
	assert.ErrorIs(t, err, ErrTimeout)

	client.WithRateLimit(0, 0)
	assert.Nil(t, client.limiter)
}
