package health

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	cacheAvailability "github.com/m04kA/SMC-AvailabilityService/internal/infra/cache/availability"
)

type testLogger struct{}

func (testLogger) Info(string, ...interface{})  {}
func (testLogger) Warn(string, ...interface{})  {}
func (testLogger) Error(string, ...interface{}) {}

type fakeStats struct{}

func (fakeStats) Stats() cacheAvailability.Stats {
	return cacheAvailability.Stats{Entries: 12, InFlight: 2}
}

type fakePinger struct{ err error }

func (p fakePinger) PingContext(context.Context) error { return p.err }

func TestHandle(t *testing.T) {
	tests := []struct {
		name       string
		db         Pinger
		wantStatus string
		wantDB     string
	}{
		{name: "no database", db: nil, wantStatus: statusOK},
		{name: "database ok", db: fakePinger{}, wantStatus: statusOK, wantDB: statusOK},
		{name: "database down", db: fakePinger{err: errors.New("connection refused")}, wantStatus: statusDegraded, wantDB: "unavailable"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := NewHandler(fakeStats{}, tt.db, testLogger{})

			rec := httptest.NewRecorder()
			h.Handle(rec, httptest.NewRequest(http.MethodGet, "/api/v1/health", nil))

			require.Equal(t, http.StatusOK, rec.Code)

			var body Response
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
			assert.Equal(t, tt.wantStatus, body.Status)
			assert.Equal(t, tt.wantDB, body.Database)
			assert.Equal(t, 12, body.CacheEntries)
			assert.Equal(t, 2, body.InFlightFetches)
		})
	}
}
