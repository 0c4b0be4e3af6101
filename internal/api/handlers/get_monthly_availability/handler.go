package get_monthly_availability

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
	msgNoData       = "не удалось получить данные ни за один день месяца"
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

// Handle GET /api/v1/availability/monthly
// Query params: date (required, YYYY-MM-DD), любой день нужного месяца
func (h *Handler) Handle(w http.ResponseWriter, r *http.Request) {
	date := r.URL.Query().Get("date")
	if date == "" {
		h.logger.Warn("GET /availability/monthly - Missing date")
		handlers.RespondBadRequest(w, msgMissingDate)
		return
	}

	month, err := h.service.GetMonthly(r.Context(), date)
	if err != nil {
		switch {
		case errors.Is(err, availability.ErrPartialFailure) && month != nil:
			h.logger.Warn("GET /availability/monthly - Partial result: month=%d-%02d, failed_days=%v",
				month.Year, month.Month, month.FailedDays)
			w.Header().Set(handlers.PartialFailureHeader, "true")
			handlers.RespondJSON(w, http.StatusOK, month)

		case errors.Is(err, availability.ErrInvalidDate):
			h.logger.Warn("GET /availability/monthly - Invalid date: %v", err)
			handlers.RespondBadRequest(w, msgInvalidDate)

		case errors.Is(err, availability.ErrUpstreamAuth):
			h.logger.Error("GET /availability/monthly - EMS auth failure: date=%s, error=%v", date, err)
			handlers.RespondBadGateway(w, msgUpstreamAuth)

		case errors.Is(err, availability.ErrTotalFailure):
			h.logger.Error("GET /availability/monthly - No data: date=%s, error=%v", date, err)
			handlers.RespondBadGateway(w, msgNoData)

		case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
			h.logger.Warn("GET /availability/monthly - Request cancelled: date=%s", date)
			handlers.RespondServiceUnavailable(w, msgCancelled)

		default:
			h.logger.Error("GET /availability/monthly - Failed to get availability: date=%s, error=%v", date, err)
			handlers.RespondInternalError(w)
		}
		return
	}

	h.logger.Info("GET /availability/monthly - Availability retrieved: month=%d-%02d, days=%d",
		month.Year, month.Month, len(month.Days))
	handlers.RespondJSON(w, http.StatusOK, month)
}
