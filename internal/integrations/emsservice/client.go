package emsservice

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"strings"
	"time"

	"golang.org/x/oauth2"
	"golang.org/x/time/rate"

	"github.com/m04kA/SMC-AvailabilityService/internal/domain"
)

const (
	dailyAvailabilityPath = "/api/availability/daily"

	// maxResponseBody защита от неограниченного ответа EMS
	maxResponseBody = 10 << 20
)

// Исходы вызова для метрик
const (
	outcomeOK          = "ok"
	outcomeTimeout     = "timeout"
	outcomeUnavailable = "unavailable"
	outcomeBadResponse = "bad_response"
	outcomeAuth        = "auth_error"
	outcomeCanceled    = "canceled"
)

// Client клиент для работы с API доступности площадок EMS.
// Клиент не делает повторных попыток: политика повторов живет в кэше,
// чтобы все ожидающие одной даты делили один бюджет повторов.
type Client struct {
	baseURL    string
	httpClient *http.Client
	limiter    *rate.Limiter
	log        Logger
	metrics    MetricsRecorder
	now        func() time.Time
}

// NewClient создает новый экземпляр клиента EMS.
// Токен передается в заголовке Authorization: Bearer <token>
func NewClient(baseURL, token string, timeout time.Duration, log Logger) *Client {
	source := oauth2.StaticTokenSource(&oauth2.Token{AccessToken: token, TokenType: "Bearer"})

	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{
			Timeout: timeout,
			Transport: &oauth2.Transport{
				Source: source,
				Base:   http.DefaultTransport,
			},
		},
		log:     log,
		metrics: noopMetrics{},
		now:     time.Now,
	}
}

// WithRateLimit ограничивает частоту запросов к EMS. rps <= 0 отключает ограничение
func (c *Client) WithRateLimit(rps float64, burst int) *Client {
	if rps <= 0 {
		c.limiter = nil
		return c
	}
	if burst <= 0 {
		burst = 1
	}
	c.limiter = rate.NewLimiter(rate.Limit(rps), burst)
	return c
}

// WithMetrics подключает учет вызовов
func (c *Client) WithMetrics(m MetricsRecorder) *Client {
	if m != nil {
		c.metrics = m
	}
	return c
}

// FetchDay получает доступность всех помещений на указанную дату
func (c *Client) FetchDay(ctx context.Context, date time.Time) (*domain.DayAvailability, error) {
	dateStr := domain.FormatDate(date)
	started := c.now()

	day, outcome, err := c.fetchDay(ctx, date)
	c.metrics.RecordUpstreamCall(outcome, c.now().Sub(started))

	if err != nil {
		c.log.Warn("EMS FetchDay: date=%s outcome=%s: %v", dateStr, outcome, err)
		return nil, err
	}

	c.log.Info("EMS FetchDay: date=%s rooms=%d took=%s", dateStr, len(day.Rooms), c.now().Sub(started))
	return day, nil
}

func (c *Client) fetchDay(ctx context.Context, date time.Time) (*domain.DayAvailability, string, error) {
	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return c.contextFailure(ctx, err)
		}
	}

	query := url.Values{}
	query.Set("date", domain.FormatDate(date))
	endpoint := fmt.Sprintf("%s%s?%s", c.baseURL, dailyAvailabilityPath, query.Encode())

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, outcomeBadResponse, fmt.Errorf("%w: failed to create request: %v", ErrInternal, err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return c.transportFailure(ctx, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBody))
	if err != nil {
		return c.transportFailure(ctx, err)
	}

	// Обработка статус-кодов
	switch {
	case resp.StatusCode >= 200 && resp.StatusCode < 300:
		// Продолжаем обработку
	case resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden:
		return nil, outcomeAuth, newResponseError(ErrAuth, resp.StatusCode, body, "")
	case resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= 500:
		return nil, outcomeUnavailable, newResponseError(ErrUnavailable, resp.StatusCode, body, "")
	default:
		return nil, outcomeBadResponse, newResponseError(ErrBadResponse, resp.StatusCode, body, "unexpected status code")
	}

	// Парсим ответ
	var payload DailyResponse
	if err := json.Unmarshal(body, &payload); err != nil {
		return nil, outcomeBadResponse, newResponseError(ErrBadResponse, resp.StatusCode, body,
			fmt.Sprintf("failed to decode response: %v", err))
	}

	if !payload.Success || payload.Data == nil {
		reason := "success=false"
		if payload.Message != "" {
			reason += ": " + payload.Message
		}
		return nil, outcomeBadResponse, newResponseError(ErrBadResponse, resp.StatusCode, body, reason)
	}

	day, err := toDomainDay(date, payload.Data, c.now())
	if err != nil {
		return nil, outcomeBadResponse, newResponseError(ErrBadResponse, resp.StatusCode, nil, err.Error())
	}

	return day, outcomeOK, nil
}

// transportFailure классифицирует ошибку http.Client.Do
func (c *Client) transportFailure(ctx context.Context, err error) (*domain.DayAvailability, string, error) {
	if ctx.Err() != nil {
		return c.contextFailure(ctx, err)
	}

	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return nil, outcomeTimeout, fmt.Errorf("%w: %v", ErrTimeout, err)
	}

	return nil, outcomeUnavailable, fmt.Errorf("%w: %v", ErrUnavailable, err)
}

func (c *Client) contextFailure(ctx context.Context, err error) (*domain.DayAvailability, string, error) {
	if errors.Is(ctx.Err(), context.Canceled) {
		return nil, outcomeCanceled, fmt.Errorf("%w: %v", ErrCanceled, err)
	}
	// DeadlineExceeded или limiter.Wait не успевает до дедлайна
	return nil, outcomeTimeout, fmt.Errorf("%w: %v", ErrTimeout, err)
}
