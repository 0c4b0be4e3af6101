package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/joho/godotenv"

	"github.com/m04kA/SMC-AvailabilityService/internal/domain"
)

// ErrInvalidConfig возвращается, если конфигурация не прошла валидацию
var ErrInvalidConfig = errors.New("config: invalid configuration")

// Config конфигурация сервиса
type Config struct {
	Server      ServerConfig      `toml:"server"`
	Logs        LogsConfig        `toml:"logs"`
	Metrics     MetricsConfig     `toml:"metrics"`
	EMS         EMSConfig         `toml:"ems"`
	Cache       CacheConfig       `toml:"cache"`
	Retry       RetryConfig       `toml:"retry"`
	Aggregation AggregationConfig `toml:"aggregation"`
	Jobs        JobsConfig        `toml:"jobs"`
	CORS        CORSConfig        `toml:"cors"`
	Database    DatabaseConfig    `toml:"database"`
}

type ServerConfig struct {
	HTTPPort        int `toml:"http_port"`
	ReadTimeout     int `toml:"read_timeout"`     // секунды
	WriteTimeout    int `toml:"write_timeout"`    // секунды
	IdleTimeout     int `toml:"idle_timeout"`     // секунды
	ShutdownTimeout int `toml:"shutdown_timeout"` // секунды
}

type LogsConfig struct {
	File  string `toml:"file"`
	Level string `toml:"level"`
}

type MetricsConfig struct {
	Enabled     bool   `toml:"enabled"`
	Path        string `toml:"path"`
	ServiceName string `toml:"service_name"`
}

// EMSConfig настройки внешнего API бронирования площадок
type EMSConfig struct {
	BaseURL           string  `toml:"base_url"`
	Token             string  `toml:"token"`   // лучше задавать через EMS_TOKEN
	Timeout           int     `toml:"timeout"` // секунды
	RequestsPerSecond float64 `toml:"requests_per_second"`
	Burst             int     `toml:"burst"`
}

type CacheConfig struct {
	Capacity     int `toml:"capacity"`       // максимум дней в кэше
	NearTermTTL  int `toml:"near_term_ttl"`  // секунды
	FarFutureTTL int `toml:"far_future_ttl"` // секунды
	NearTermDays int `toml:"near_term_days"`
	MaxStaleAge  int `toml:"max_stale_age"` // секунды, 0 - не чистить по возрасту, только вытеснение

	SnapshotTimeoutMs int `toml:"snapshot_timeout_ms"` // лимит на одно обращение к хранилищу снимков
}

type RetryConfig struct {
	MaxRetries       int `toml:"max_retries"`
	InitialBackoffMs int `toml:"initial_backoff_ms"`
	MaxBackoffMs     int `toml:"max_backoff_ms"`
}

type AggregationConfig struct {
	MaxConcurrentFetches int `toml:"max_concurrent_fetches"`
}

type JobsConfig struct {
	Enabled           bool   `toml:"enabled"`
	WarmupSchedule    string `toml:"warmup_schedule"`
	WarmupDays        int    `toml:"warmup_days"`
	WarmupConcurrency int    `toml:"warmup_concurrency"`
	PurgeSchedule     string `toml:"purge_schedule"`
	Timeout           int    `toml:"timeout"` // секунды на один запуск задачи
}

type CORSConfig struct {
	AllowedOrigins []string `toml:"allowed_origins"`
}

// DatabaseConfig хранилище снимков доступности (опционально)
type DatabaseConfig struct {
	Enabled         bool   `toml:"enabled"`
	Host            string `toml:"host"`
	Port            int    `toml:"port"`
	User            string `toml:"user"`
	Password        string `toml:"password"`
	DBName          string `toml:"dbname"`
	SSLMode         string `toml:"sslmode"`
	MaxOpenConns    int    `toml:"max_open_conns"`
	MaxIdleConns    int    `toml:"max_idle_conns"`
	ConnMaxLifetime int    `toml:"conn_max_lifetime"` // секунды
}

// DSN строка подключения для lib/pq
func (c DatabaseConfig) DSN() string {
	return fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Password, c.DBName, c.SSLMode)
}

// Load загружает конфигурацию из TOML-файла.
// Секреты можно переопределить переменными окружения (в том числе из .env)
func Load(path string) (*Config, error) {
	// .env не обязателен
	_ = godotenv.Load()

	cfg := Default()
	if _, err := toml.DecodeFile(path, cfg); err != nil {
		return nil, fmt.Errorf("failed to decode config file %s: %w", path, err)
	}

	applyEnv(cfg)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Default конфигурация со значениями по умолчанию
func Default() *Config {
	return &Config{
		Server: ServerConfig{
			HTTPPort:        8080,
			ReadTimeout:     15,
			WriteTimeout:    60,
			IdleTimeout:     60,
			ShutdownTimeout: 10,
		},
		Logs: LogsConfig{Level: "info"},
		Metrics: MetricsConfig{
			Enabled:     true,
			Path:        "/metrics",
			ServiceName: "smc-availability-service",
		},
		EMS: EMSConfig{
			Timeout:           int(domain.DefaultUpstreamTimeout / time.Second),
			RequestsPerSecond: 20,
			Burst:             10,
		},
		Cache: CacheConfig{
			Capacity:     domain.DefaultCacheCapacity,
			NearTermTTL:  int(domain.DefaultNearTermTTL / time.Second),
			FarFutureTTL: int(domain.DefaultFarFutureTTL / time.Second),
			NearTermDays: domain.DefaultNearTermDays,
			MaxStaleAge:  int(domain.DefaultMaxStaleAge / time.Second),

			SnapshotTimeoutMs: int(domain.DefaultSnapshotTimeout / time.Millisecond),
		},
		Retry: RetryConfig{
			MaxRetries:       domain.DefaultMaxRetries,
			InitialBackoffMs: int(domain.DefaultInitialBackoff / time.Millisecond),
			MaxBackoffMs:     int(domain.DefaultMaxBackoff / time.Millisecond),
		},
		Aggregation: AggregationConfig{
			MaxConcurrentFetches: domain.DefaultMaxConcurrentFetches,
		},
		Jobs: JobsConfig{
			Enabled:           true,
			WarmupSchedule:    "*/5 * * * *",
			WarmupDays:        domain.DefaultNearTermDays,
			WarmupConcurrency: 2,
			PurgeSchedule:     "0 * * * *",
			Timeout:           120,
		},
		Database: DatabaseConfig{
			Port:            5432,
			SSLMode:         "disable",
			MaxOpenConns:    10,
			MaxIdleConns:    5,
			ConnMaxLifetime: 300,
		},
	}
}

func applyEnv(cfg *Config) {
	if v := os.Getenv("EMS_BASE_URL"); v != "" {
		cfg.EMS.BaseURL = v
	}
	if v := os.Getenv("EMS_TOKEN"); v != "" {
		cfg.EMS.Token = v
	}
	if v := os.Getenv("DB_PASSWORD"); v != "" {
		cfg.Database.Password = v
	}
	if v := os.Getenv("HTTP_PORT"); v != "" {
		if port, err := strconv.Atoi(v); err == nil {
			cfg.Server.HTTPPort = port
		}
	}
}

// Validate проверяет обязательные поля и диапазоны значений
func (c *Config) Validate() error {
	switch {
	case c.EMS.BaseURL == "":
		return fmt.Errorf("%w: ems.base_url is required", ErrInvalidConfig)
	case c.EMS.Token == "":
		return fmt.Errorf("%w: ems.token (or EMS_TOKEN) is required", ErrInvalidConfig)
	case c.EMS.Timeout <= 0:
		return fmt.Errorf("%w: ems.timeout must be positive", ErrInvalidConfig)
	case c.EMS.RequestsPerSecond < 0:
		return fmt.Errorf("%w: ems.requests_per_second must not be negative", ErrInvalidConfig)
	case c.Cache.Capacity <= 0:
		return fmt.Errorf("%w: cache.capacity must be positive", ErrInvalidConfig)
	case c.Cache.NearTermTTL <= 0 || c.Cache.FarFutureTTL <= 0:
		return fmt.Errorf("%w: cache TTLs must be positive", ErrInvalidConfig)
	case c.Cache.NearTermDays < 0:
		return fmt.Errorf("%w: cache.near_term_days must not be negative", ErrInvalidConfig)
	case c.Cache.MaxStaleAge < 0:
		return fmt.Errorf("%w: cache.max_stale_age must not be negative", ErrInvalidConfig)
	case c.Cache.SnapshotTimeoutMs <= 0:
		return fmt.Errorf("%w: cache.snapshot_timeout_ms must be positive", ErrInvalidConfig)
	case c.Retry.MaxRetries < 0:
		return fmt.Errorf("%w: retry.max_retries must not be negative", ErrInvalidConfig)
	case c.Retry.InitialBackoffMs <= 0 || c.Retry.MaxBackoffMs < c.Retry.InitialBackoffMs:
		return fmt.Errorf("%w: retry backoff must satisfy 0 < initial <= max", ErrInvalidConfig)
	case c.Aggregation.MaxConcurrentFetches <= 0:
		return fmt.Errorf("%w: aggregation.max_concurrent_fetches must be positive", ErrInvalidConfig)
	case c.Jobs.Enabled && c.Jobs.Timeout <= 0:
		return fmt.Errorf("%w: jobs.timeout must be positive", ErrInvalidConfig)
	case c.Server.HTTPPort <= 0:
		return fmt.Errorf("%w: server.http_port must be positive", ErrInvalidConfig)
	}
	return nil
}

// Вспомогательные методы для перевода в time.Duration

func (c EMSConfig) TimeoutDuration() time.Duration {
	return time.Duration(c.Timeout) * time.Second
}

func (c CacheConfig) NearTermTTLDuration() time.Duration {
	return time.Duration(c.NearTermTTL) * time.Second
}

func (c CacheConfig) FarFutureTTLDuration() time.Duration {
	return time.Duration(c.FarFutureTTL) * time.Second
}

func (c CacheConfig) MaxStaleAgeDuration() time.Duration {
	return time.Duration(c.MaxStaleAge) * time.Second
}

func (c CacheConfig) SnapshotTimeout() time.Duration {
	return time.Duration(c.SnapshotTimeoutMs) * time.Millisecond
}

func (c JobsConfig) TimeoutDuration() time.Duration {
	return time.Duration(c.Timeout) * time.Second
}

func (c RetryConfig) InitialBackoff() time.Duration {
	return time.Duration(c.InitialBackoffMs) * time.Millisecond
}

func (c RetryConfig) MaxBackoff() time.Duration {
	return time.Duration(c.MaxBackoffMs) * time.Millisecond
}
