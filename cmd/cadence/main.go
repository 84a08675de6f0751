package main

import (
	"context"
	"database/sql"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/alexanderramin/cadence/internal/cli"
	"github.com/alexanderramin/cadence/internal/config"
	"github.com/alexanderramin/cadence/internal/db"
	"github.com/alexanderramin/cadence/internal/domain"
	"github.com/alexanderramin/cadence/internal/repository"
	"github.com/alexanderramin/cadence/internal/scheduler"
	"github.com/alexanderramin/cadence/internal/service"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/afero"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	var (
		database    *sql.DB
		metricsFile string
		registry    = prometheus.NewRegistry()
	)
	defer func() {
		if database != nil {
			database.Close()
		}
	}()

	app := &cli.App{
		IsInteractive: cli.StdinIsTerminal,
		Prompt:        cli.HuhPrompt,
	}

	// Services are wired once flags are parsed so --config can pick the
	// database and logging settings.
	app.Bootstrap = func(ctx context.Context, app *cli.App, opts cli.GlobalOptions) error {
		cfg, err := config.Load(afero.NewOsFs(), opts.ConfigPath)
		if err != nil {
			return err
		}
		metricsFile = cfg.MetricsFile
		if opts.MetricsFile != "" {
			metricsFile = opts.MetricsFile
		}

		logger := newLogger(cfg, os.Stderr)
		slog.SetDefault(logger)

		database, err = db.OpenDB(cfg.DBPath)
		if err != nil {
			return fmt.Errorf("opening database: %w", err)
		}
		logger.Debug("database opened", "path", cfg.DBPath)

		uow := db.NewSQLiteUnitOfWork(database)
		observers := []service.UseCaseObserver{
			service.NewSlogUseCaseObserver(logger),
			service.NewMetricsUseCaseObserver(registry),
		}
		schedOpts := []scheduler.ScheduleOption{scheduler.WithNamePattern(cfg.NameRegexp())}

		app.Schedules = service.NewScheduleService(repository.NewSQLiteScheduleRepo(database), uow, schedOpts, observers...)
		app.Items = service.NewItemService(uow, observers...)
		app.Import = service.NewImportService(afero.NewOsFs(), uow, schedOpts, observers...)
		app.DefaultSchedule = cfg.Schedule
		app.CycleDefault = domain.Cycle{
			SlotCount:          cfg.Cycle.SlotCount,
			SlotsPerSecond:     cfg.Cycle.SlotsPerSecond,
			TotalCapacityBytes: cfg.Cycle.TotalCapacityBytes,
		}
		return nil
	}

	rootCmd := cli.NewRootCmd(app)
	runErr := rootCmd.Execute()

	if metricsFile != "" {
		if err := prometheus.WriteToTextfile(metricsFile, registry); err != nil && runErr == nil {
			return fmt.Errorf("writing metrics: %w", err)
		}
	}
	return runErr
}

// newLogger returns a slog.Logger per the config. An empty level disables
// logging.
func newLogger(cfg config.Config, w io.Writer) *slog.Logger {
	if cfg.LogLevel == "" {
		return slog.New(slog.DiscardHandler)
	}
	var level slog.Level
	_ = level.UnmarshalText([]byte(cfg.LogLevel))
	hopts := &slog.HandlerOptions{Level: level}
	if cfg.LogFormat == "json" {
		return slog.New(slog.NewJSONHandler(w, hopts))
	}
	return slog.New(slog.NewTextHandler(w, hopts))
}
