package health

import (
	"context"
	"net/http"
	"time"

	"github.com/m04kA/SMC-AvailabilityService/internal/api/handlers"
)

const (
	statusOK       = "ok"
	statusDegraded = "degraded"

	pingTimeout = 2 * time.Second
)

type Handler struct {
	cache  CacheStats
	db     Pinger
	logger Logger
}

// NewHandler db может быть nil, если хранилище снимков выключено
func NewHandler(cache CacheStats, db Pinger, logger Logger) *Handler {
	return &Handler{
		cache:  cache,
		db:     db,
		logger: logger,
	}
}

// Handle GET /api/v1/health
// EMS не опрашивается: сервис может отвечать из кэша, пока EMS недоступен
func (h *Handler) Handle(w http.ResponseWriter, r *http.Request) {
	stats := h.cache.Stats()

	resp := Response{
		Status:          statusOK,
		CacheEntries:    stats.Entries,
		InFlightFetches: stats.InFlight,
	}

	if h.db != nil {
		ctx, cancel := context.WithTimeout(r.Context(), pingTimeout)
		defer cancel()

		if err := h.db.PingContext(ctx); err != nil {
			h.logger.Warn("GET /health - Snapshot database unreachable: %v", err)
			resp.Status = statusDegraded
			resp.Database = "unavailable"
		} else {
			resp.Database = statusOK
		}
	}

	handlers.RespondJSON(w, http.StatusOK, resp)
}
