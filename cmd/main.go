package main

import (
	"context"
	"database/sql"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	gorillaHandlers "github.com/gorilla/handlers"
	"github.com/gorilla/mux"
	_ "github.com/lib/pq"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/m04kA/SMC-AvailabilityService/internal/api/handlers"
	getDailyHandler "github.com/m04kA/SMC-AvailabilityService/internal/api/handlers/get_daily_availability"
	getMonthlyHandler "github.com/m04kA/SMC-AvailabilityService/internal/api/handlers/get_monthly_availability"
	getWeeklyHandler "github.com/m04kA/SMC-AvailabilityService/internal/api/handlers/get_weekly_availability"
	healthHandler "github.com/m04kA/SMC-AvailabilityService/internal/api/handlers/health"
	"github.com/m04kA/SMC-AvailabilityService/internal/api/middleware"
	"github.com/m04kA/SMC-AvailabilityService/internal/config"
	availabilityCache "github.com/m04kA/SMC-AvailabilityService/internal/infra/cache/availability"
	snapshotRepo "github.com/m04kA/SMC-AvailabilityService/internal/infra/storage/snapshot"
	emsServiceClient "github.com/m04kA/SMC-AvailabilityService/internal/integrations/emsservice"
	aggregationService "github.com/m04kA/SMC-AvailabilityService/internal/service/aggregation"
	availabilityService "github.com/m04kA/SMC-AvailabilityService/internal/service/availability"
	warmupService "github.com/m04kA/SMC-AvailabilityService/internal/service/warmup"
	"github.com/m04kA/SMC-AvailabilityService/pkg/logger"
	"github.com/m04kA/SMC-AvailabilityService/pkg/metrics"
)

func main() {
	// Загружаем конфигурацию
	cfg, err := config.Load("config.toml")
	if err != nil {
		fmt.Printf("Failed to load config: %v\n", err)
		os.Exit(1)
	}

	// Инициализируем логгер
	log, err := logger.New(cfg.Logs.File, cfg.Logs.Level)
	if err != nil {
		fmt.Printf("Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer log.Close()

	log.Info("Starting SMC-AvailabilityService...")
	log.Info("Configuration loaded from config.toml")

	// Инициализируем метрики (если включены).
	// Методы *metrics.Metrics безопасны для nil
	var metricsCollector *metrics.Metrics
	if cfg.Metrics.Enabled {
		metricsCollector = metrics.New(cfg.Metrics.ServiceName)
		log.Info("Metrics enabled at %s", cfg.Metrics.Path)
	}

	// Клиент EMS
	emsClient := emsServiceClient.NewClient(
		cfg.EMS.BaseURL,
		cfg.EMS.Token,
		cfg.EMS.TimeoutDuration(),
		log,
	).
		WithRateLimit(cfg.EMS.RequestsPerSecond, cfg.EMS.Burst).
		WithMetrics(metricsCollector)
	log.Info("EMS client initialized (url=%s, timeout=%ds, rps=%.1f)",
		cfg.EMS.BaseURL, cfg.EMS.Timeout, cfg.EMS.RequestsPerSecond)

	// Кэш доступности
	cache := availabilityCache.NewCache(emsClient, availabilityCache.Config{
		Capacity: cfg.Cache.Capacity,
		TTL: availabilityCache.TTLPolicy{
			NearTerm:     cfg.Cache.NearTermTTLDuration(),
			FarFuture:    cfg.Cache.FarFutureTTLDuration(),
			NearTermDays: cfg.Cache.NearTermDays,
		},
		Retry: availabilityCache.RetryPolicy{
			MaxRetries:     cfg.Retry.MaxRetries,
			InitialBackoff: cfg.Retry.InitialBackoff(),
			MaxBackoff:     cfg.Retry.MaxBackoff(),
		},
		SnapshotTimeout: cfg.Cache.SnapshotTimeout(),
	}, log).WithMetrics(metricsCollector)

	// Хранилище снимков (опционально): данные переживают перезапуск
	var (
		db        *sql.DB
		snapshots *snapshotRepo.Repository
		dbPinger  healthHandler.Pinger
	)
	if cfg.Database.Enabled {
		db, err = sql.Open("postgres", cfg.Database.DSN())
		if err != nil {
			log.Fatal("Failed to connect to database: %v", err)
		}
		defer db.Close()

		// Настраиваем connection pool
		db.SetMaxOpenConns(cfg.Database.MaxOpenConns)
		db.SetMaxIdleConns(cfg.Database.MaxIdleConns)
		db.SetConnMaxLifetime(time.Duration(cfg.Database.ConnMaxLifetime) * time.Second)

		// Проверяем соединение
		if err := db.Ping(); err != nil {
			log.Fatal("Failed to ping database: %v", err)
		}
		log.Info("Successfully connected to database (host=%s, port=%d, db=%s)",
			cfg.Database.Host, cfg.Database.Port, cfg.Database.DBName)

		snapshots = snapshotRepo.NewRepository(db)
		cache.WithSnapshots(snapshots)
		dbPinger = db
	}

	// Инициализируем сервисы
	aggregationSvc := aggregationService.NewService(
		cache,
		cfg.Aggregation.MaxConcurrentFetches,
		log,
	).WithMetrics(metricsCollector)
	availabilitySvc := availabilityService.NewService(cache, aggregationSvc, log)

	// Фоновые задачи: прогрев ближайших дней и очистка устаревших записей
	var scheduler *warmupService.Scheduler
	if cfg.Jobs.Enabled {
		jobsSvc := warmupService.NewService(cache, warmupService.Options{
			WarmupDays:        cfg.Jobs.WarmupDays,
			WarmupConcurrency: cfg.Jobs.WarmupConcurrency,
			MaxStaleAge:       cfg.Cache.MaxStaleAgeDuration(),
		}, log).WithMetrics(metricsCollector)
		if snapshots != nil {
			jobsSvc.WithSnapshots(snapshots)
		}

		scheduler = warmupService.NewScheduler(jobsSvc, cfg.Jobs.TimeoutDuration(), log)
		if err := scheduler.Schedule(cfg.Jobs.WarmupSchedule, cfg.Jobs.PurgeSchedule); err != nil {
			log.Fatal("Failed to schedule jobs: %v", err)
		}
		scheduler.Start()
		log.Info("Background jobs started")
	}

	// Инициализируем handlers
	getDaily := getDailyHandler.NewHandler(availabilitySvc, log)
	getWeekly := getWeeklyHandler.NewHandler(availabilitySvc, log)
	getMonthly := getMonthlyHandler.NewHandler(availabilitySvc, log)
	health := healthHandler.NewHandler(cache, dbPinger, log)

	// Настраиваем роутер
	r := mux.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.AccessLog(log))

	// Добавляем metrics middleware (если метрики включены)
	if cfg.Metrics.Enabled {
		r.Use(middleware.MetricsMiddleware(metricsCollector, cfg.Metrics.ServiceName))
		log.Info("HTTP metrics middleware enabled")

		r.Handle(cfg.Metrics.Path, promhttp.Handler()).Methods(http.MethodGet)
		log.Info("Prometheus metrics endpoint exposed at %s", cfg.Metrics.Path)
	}

	// API prefix
	api := r.PathPrefix("/api/v1").Subrouter()

	api.HandleFunc("/health", health.Handle).Methods(http.MethodGet)

	// Доступность комнат
	api.HandleFunc("/availability/daily", getDaily.Handle).Methods(http.MethodGet)
	api.HandleFunc("/availability/weekly", getWeekly.Handle).Methods(http.MethodGet)
	api.HandleFunc("/availability/monthly", getMonthly.Handle).Methods(http.MethodGet)

	// CORS для веб-интерфейса
	cors := gorillaHandlers.CORS(
		gorillaHandlers.AllowedOrigins(cfg.CORS.AllowedOrigins),
		gorillaHandlers.AllowedMethods([]string{http.MethodGet, http.MethodOptions}),
		gorillaHandlers.AllowedHeaders([]string{"Content-Type", middleware.RequestIDHeader}),
		gorillaHandlers.ExposedHeaders([]string{middleware.RequestIDHeader, handlers.PartialFailureHeader}),
	)

	// Создаем HTTP сервер
	addr := fmt.Sprintf(":%d", cfg.Server.HTTPPort)
	srv := &http.Server{
		Addr:         addr,
		Handler:      cors(r),
		ReadTimeout:  time.Duration(cfg.Server.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.Server.WriteTimeout) * time.Second,
		IdleTimeout:  time.Duration(cfg.Server.IdleTimeout) * time.Second,
	}

	// Graceful shutdown
	go func() {
		log.Info("Starting server on %s", addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("Server failed to start: %v", err)
		}
	}()

	// Ожидаем сигнал завершения
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(
		context.Background(),
		time.Duration(cfg.Server.ShutdownTimeout)*time.Second,
	)
	defer cancel()

	if scheduler != nil {
		if err := scheduler.Stop(shutdownCtx); err != nil {
			log.Warn("Background jobs did not stop in time: %v", err)
		} else {
			log.Info("Background jobs stopped")
		}
	}

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("Server forced to shutdown: %v", err)
	}

	stats := cache.Stats()
	log.Info("Server stopped gracefully (cache entries=%d)", stats.Entries)
}
