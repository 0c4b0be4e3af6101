package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/urfave/cli/v2"

	"github.com/m04kA/SMC-AvailabilityService/internal/config"
	"github.com/m04kA/SMC-AvailabilityService/internal/domain"
	availabilityCache "github.com/m04kA/SMC-AvailabilityService/internal/infra/cache/availability"
	emsServiceClient "github.com/m04kA/SMC-AvailabilityService/internal/integrations/emsservice"
	aggregationService "github.com/m04kA/SMC-AvailabilityService/internal/service/aggregation"
	availabilityService "github.com/m04kA/SMC-AvailabilityService/internal/service/availability"
	warmupService "github.com/m04kA/SMC-AvailabilityService/internal/service/warmup"
	"github.com/m04kA/SMC-AvailabilityService/pkg/logger"
)

// Коды выхода
const (
	exitPartial = 3
	exitFailure = 1
)

func main() {
	app := &cli.App{
		Name:  "emsctl",
		Usage: "Query EMS room availability through the service cache stack.",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "config", Value: "config.toml", Usage: "path to config file"},
			&cli.StringFlag{Name: "log-level", Value: "warn", Usage: "debug, info, warn, error"},
		},
		Commands: []*cli.Command{
			dailyCommand(),
			weeklyCommand(),
			monthlyCommand(),
			warmupCommand(),
		},
	}

	// cli.Exit ошибки завершают процесс сами, сюда попадают остальные
	if err := app.Run(os.Args); err != nil {
		fmt.Fprintf(os.Stderr, "emsctl: %v\n", err)
		os.Exit(exitFailure)
	}
}

func dateFlag() cli.Flag {
	return &cli.StringFlag{
		Name:  "date",
		Value: domain.FormatDate(time.Now()),
		Usage: "date in YYYY-MM-DD format",
	}
}

func dailyCommand() *cli.Command {
	return &cli.Command{
		Name:  "daily",
		Usage: "Print availability of all rooms for a date.",
		Flags: []cli.Flag{
			dateFlag(),
			&cli.BoolFlag{Name: "refresh", Usage: "bypass cache freshness check"},
		},
		Action: func(c *cli.Context) error {
			s, err := newStack(c)
			if err != nil {
				return err
			}

			day, err := s.availability.GetDaily(c.Context, c.String("date"), c.Bool("refresh"))
			if err != nil {
				return err
			}
			return printJSON(c.App.Writer, day)
		},
	}
}

func weeklyCommand() *cli.Command {
	return &cli.Command{
		Name:  "weekly",
		Usage: "Print availability for the Monday-Sunday week containing a date.",
		Flags: []cli.Flag{dateFlag()},
		Action: func(c *cli.Context) error {
			s, err := newStack(c)
			if err != nil {
				return err
			}

			week, err := s.availability.GetWeekly(c.Context, c.String("date"))
			return printAggregate(c.App.Writer, week, err)
		},
	}
}

func monthlyCommand() *cli.Command {
	return &cli.Command{
		Name:  "monthly",
		Usage: "Print availability for every day of the month containing a date.",
		Flags: []cli.Flag{dateFlag()},
		Action: func(c *cli.Context) error {
			s, err := newStack(c)
			if err != nil {
				return err
			}

			month, err := s.availability.GetMonthly(c.Context, c.String("date"))
			return printAggregate(c.App.Writer, month, err)
		},
	}
}

func warmupCommand() *cli.Command {
	return &cli.Command{
		Name:  "warmup",
		Usage: "Fetch the next N days from EMS once and report how many succeeded.",
		Flags: []cli.Flag{
			&cli.IntFlag{Name: "days", Value: domain.DefaultNearTermDays, Usage: "number of days starting today"},
		},
		Action: func(c *cli.Context) error {
			s, err := newStack(c)
			if err != nil {
				return err
			}

			jobs := warmupService.NewService(s.cache, warmupService.Options{
				WarmupDays:        c.Int("days"),
				WarmupConcurrency: s.cfg.Jobs.WarmupConcurrency,
				MaxStaleAge:       s.cfg.Cache.MaxStaleAgeDuration(),
			}, s.log)

			result, err := jobs.WarmUp(c.Context)
			if err != nil {
				return err
			}
			if err := printJSON(c.App.Writer, result); err != nil {
				return err
			}
			if result.Failed > 0 {
				return cli.Exit(fmt.Sprintf("%d days failed", result.Failed), exitPartial)
			}
			return nil
		},
	}
}

// printAggregate печатает частичный результат и завершает с кодом exitPartial
func printAggregate(w io.Writer, resp interface{}, err error) error {
	if err != nil && !errors.Is(err, availabilityService.ErrPartialFailure) {
		return err
	}
	if printErr := printJSON(w, resp); printErr != nil {
		return printErr
	}
	if err != nil {
		return cli.Exit(err.Error(), exitPartial)
	}
	return nil
}

func printJSON(w io.Writer, v interface{}) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

type stack struct {
	cfg          *config.Config
	log          *logger.Logger
	cache        *availabilityCache.Cache
	availability *availabilityService.Service
}

// newStack собирает клиент EMS, кэш и сервисы так же, как сервер, но без БД и HTTP
func newStack(c *cli.Context) (*stack, error) {
	cfg, err := config.Load(c.String("config"))
	if err != nil {
		return nil, err
	}

	// stdout занят JSON-ответом
	log := logger.NewWithWriter(os.Stderr, c.String("log-level"))

	client := emsServiceClient.NewClient(cfg.EMS.BaseURL, cfg.EMS.Token, cfg.EMS.TimeoutDuration(), log).
		WithRateLimit(cfg.EMS.RequestsPerSecond, cfg.EMS.Burst)

	cache := availabilityCache.NewCache(client, availabilityCache.Config{
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
	}, log)

	aggregation := aggregationService.NewService(cache, cfg.Aggregation.MaxConcurrentFetches, log)

	return &stack{
		cfg:          cfg,
		log:          log,
		cache:        cache,
		availability: availabilityService.NewService(cache, aggregation, log),
	}, nil
}
