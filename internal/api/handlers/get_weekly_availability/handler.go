package get_weekly_availability

import (
	"context"
	"errors"
	"net/http"

	"github.com/m04kA/SMC-AvailabilityService/internal/api/handlers"
	"github.com/m04kA/SMC-AvailabilityService/internal/service/availability"
)

const (
	msgMissingDate  = "дата обязательна"
	msgInvalidDate  = "некорректный формат даты, ожидается YYYY-MM-DD"
	msgUpstreamAuth = "сервис бронирования площадок отклонил учетные данные"
	msgNoData       = "не удалось получить данные ни за один день недели"
	msgCancelled    = "запрос отменен"
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

// Handle GET /api/v1/availability/weekly
// Query params: date (required, YYYY-MM-DD), любой день нужной недели
func (h *Handler) Handle(w http.ResponseWriter, r *http.Request) {
	date := r.URL.Query().Get("date")
	if date == "" {
		h.logger.Warn("GET /availability/weekly - Missing date")
		handlers.RespondBadRequest(w, msgMissingDate)
		return
	}

	week, err := h.service.GetWeekly(r.Context(), date)
	if err != nil {
		switch {
		// Частичный отказ: отдаем то, что есть, и помечаем ответ
		case errors.Is(err, availability.ErrPartialFailure) && week != nil:
			h.logger.Warn("GET /availability/weekly - Partial result: week_start=%s, failed_days=%v",
				week.WeekStart, week.FailedDays)
			w.Header().Set(handlers.PartialFailureHeader, "true")
			handlers.RespondJSON(w, http.StatusOK, week)

		case errors.Is(err, availability.ErrInvalidDate):
			h.logger.Warn("GET /availability/weekly - Invalid date: %v", err)
			handlers.RespondBadRequest(w, msgInvalidDate)

		case errors.Is(err, availability.ErrUpstreamAuth):
			h.logger.Error("GET /availability/weekly - EMS auth failure: date=%s, error=%v", date, err)
			handlers.RespondBadGateway(w, msgUpstreamAuth)

		case errors.Is(err, availability.ErrTotalFailure):
			h.logger.Error("GET /availability/weekly - No data: date=%s, error=%v", date, err)
			handlers.RespondBadGateway(w, msgNoData)

		case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
			h.logger.Warn("GET /availability/weekly - Request cancelled: date=%s", date)
			handlers.RespondServiceUnavailable(w, msgCancelled)

		default:
			h.logger.Error("GET /availability/weekly - Failed to get availability: date=%s, error=%v", date, err)
			handlers.RespondInternalError(w)
		}
		return
	}

	h.logger.Info("GET /availability/weekly - Availability retrieved: week_start=%s", week.WeekStart)
	handlers.RespondJSON(w, http.StatusOK, week)
}
