package warmup

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
)

// Scheduler запускает задачи обслуживания по cron-расписанию
type Scheduler struct {
	cron    *cron.Cron
	service *Service
	timeout time.Duration
	logger  Logger
}

// NewScheduler создает планировщик. timeout ограничивает один запуск задачи
func NewScheduler(service *Service, timeout time.Duration, logger Logger) *Scheduler {
	return &Scheduler{
		// задача не стартует, пока не завершился ее предыдущий запуск
		cron:    cron.New(cron.WithChain(cron.SkipIfStillRunning(cron.DiscardLogger))),
		service: service,
		timeout: timeout,
		logger:  logger,
	}
}

// Schedule регистрирует прогрев и очистку. Пустое расписание отключает задачу
func (s *Scheduler) Schedule(warmupSpec, purgeSpec string) error {
	if warmupSpec != "" {
		if _, err := s.cron.AddFunc(warmupSpec, s.runWarmup); err != nil {
			return fmt.Errorf("invalid warmup schedule %q: %w", warmupSpec, err)
		}
		s.logger.Info("Scheduler: warmup scheduled at %q", warmupSpec)
	}

	if purgeSpec != "" {
		if _, err := s.cron.AddFunc(purgeSpec, s.runPurge); err != nil {
			return fmt.Errorf("invalid purge schedule %q: %w", purgeSpec, err)
		}
		s.logger.Info("Scheduler: purge scheduled at %q", purgeSpec)
	}

	return nil
}

// Start запускает планировщик в фоне
func (s *Scheduler) Start() {
	s.cron.Start()
}

// Stop останавливает планировщик и ждет завершения запущенных задач
func (s *Scheduler) Stop(ctx context.Context) error {
	select {
	case <-s.cron.Stop().Done():
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (s *Scheduler) runWarmup() {
	ctx, cancel := context.WithTimeout(context.Background(), s.timeout)
	defer cancel()

	if _, err := s.service.WarmUp(ctx); err != nil {
		s.logger.Error("Scheduler: warmup failed: %v", err)
	}
}

func (s *Scheduler) runPurge() {
	ctx, cancel := context.WithTimeout(context.Background(), s.timeout)
	defer cancel()

	if err := s.service.Purge(ctx); err != nil {
		s.logger.Error("Scheduler: purge failed: %v", err)
	}
}
