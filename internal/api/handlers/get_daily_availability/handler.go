package get_daily_availability

import (
	"context"
	"errors"
	"net/http"
	"strconv"

	"github.com/m04kA/SMC-AvailabilityService/internal/api/handlers"
	"github.com/m04kA/SMC-AvailabilityService/internal/service/availability"
)

const (
	msgMissingDate    = "дата обязательна"
	msgInvalidDate    = "некорректный формат даты, ожидается YYYY-MM-DD"
	msgInvalidRefresh = "некорректное значение refresh, ожидается true или false"
	msgUpstreamAuth   = "сервис бронирования площадок отклонил учетные данные"
	msgNoData         = "не удалось получить данные о доступности"
	msgCancelled      = "запрос отменен"
)

type Handler struct {
	service AvailabilityService
	logger  Logger
}

func NewHandler(service AvailabilityService, logger Logger) *Handler {
	return &Handler{
		service: service,
		logger:  logger,
	}
}

// Handle GET /api/v1/availability/daily
// Query params: date (required, YYYY-MM-DD), refresh (optional, bool)
func (h *Handler) Handle(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()

	// Извлекаем date из query параметров
	date := query.Get("date")
	if date == "" {
		h.logger.Warn("GET /availability/daily - Missing date")
		handlers.RespondBadRequest(w, msgMissingDate)
		return
	}

	// refresh=true заставляет перечитать день из EMS
	forceRefresh := false
	if raw := query.Get("refresh"); raw != "" {
		v, err := strconv.ParseBool(raw)
		if err != nil {
			h.logger.Warn("GET /availability/daily - Invalid refresh=%q: %v", raw, err)
			handlers.RespondBadRequest(w, msgInvalidRefresh)
			return
		}
		forceRefresh = v
	}

	day, err := h.service.GetDaily(r.Context(), date, forceRefresh)
	if err != nil {
		switch {
		case errors.Is(err, availability.ErrInvalidDate):
			h.logger.Warn("GET /availability/daily - Invalid date: %v", err)
			handlers.RespondBadRequest(w, msgInvalidDate)

		case errors.Is(err, availability.ErrUpstreamAuth):
			h.logger.Error("GET /availability/daily - EMS auth failure: date=%s, error=%v", date, err)
			handlers.RespondBadGateway(w, msgUpstreamAuth)

		case errors.Is(err, availability.ErrTotalFailure):
			h.logger.Error("GET /availability/daily - No data: date=%s, error=%v", date, err)
			handlers.RespondBadGateway(w, msgNoData)

		case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
			h.logger.Warn("GET /availability/daily - Request cancelled: date=%s", date)
			handlers.RespondServiceUnavailable(w, msgCancelled)

		default:
			h.logger.Error("GET /availability/daily - Failed to get availability: date=%s, error=%v", date, err)
			handlers.RespondInternalError(w)
		}
		return
	}

	h.logger.Info("GET /availability/daily - Availability retrieved: date=%s, rooms=%d, source=%s",
		date, len(day.Rooms), day.SourceStatus)
	handlers.RespondJSON(w, http.StatusOK, day)
}
