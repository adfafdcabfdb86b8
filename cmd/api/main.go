package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/cmlabs-hris/hris-attendance-payroll/internal/config"
	"github.com/cmlabs-hris/hris-attendance-payroll/internal/domain/attendance"
	"github.com/cmlabs-hris/hris-attendance-payroll/internal/domain/employee"
	"github.com/cmlabs-hris/hris-attendance-payroll/internal/domain/outbox"
	"github.com/cmlabs-hris/hris-attendance-payroll/internal/domain/payroll"
	appHTTP "github.com/cmlabs-hris/hris-attendance-payroll/internal/handler/http"
	"github.com/cmlabs-hris/hris-attendance-payroll/internal/pkg/clock"
	"github.com/cmlabs-hris/hris-attendance-payroll/internal/pkg/cron"
	"github.com/cmlabs-hris/hris-attendance-payroll/internal/pkg/database"
	"github.com/cmlabs-hris/hris-attendance-payroll/internal/pkg/jwt"
	"github.com/cmlabs-hris/hris-attendance-payroll/internal/pkg/kafka"
	"github.com/cmlabs-hris/hris-attendance-payroll/internal/repository/cache"
	"github.com/cmlabs-hris/hris-attendance-payroll/internal/repository/memory"
	"github.com/cmlabs-hris/hris-attendance-payroll/internal/repository/postgresql"
	attendanceService "github.com/cmlabs-hris/hris-attendance-payroll/internal/service/attendance"
	payrollService "github.com/cmlabs-hris/hris-attendance-payroll/internal/service/payroll"
)

type repositories struct {
	transactor database.Transactor
	attendance attendance.AttendanceRepository
	employees  employee.EmployeeRepository
	payroll    payroll.PayrollRepository
	outbox     outbox.Repository
	close      func()
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Println("Error loading config:", err)
		os.Exit(1)
	}

	logger := newLogger(cfg.App.LogLevel).With("app", "hris-attendance-payroll", "version", cfg.App.Version)
	slog.SetDefault(logger)

	if err := run(cfg, logger); err != nil {
		logger.Error("server stopped with error", "error", err)
		os.Exit(1)
	}
}

func run(cfg *config.Config, logger *slog.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	clk := clock.System()

	repos, err := openRepositories(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer repos.close()

	summaryCache, closeCache := openSummaryCache(ctx, cfg, clk, logger)
	defer closeCache()

	policy, err := cfg.Attendance.WindowPolicy()
	if err != nil {
		return err
	}
	loc, err := time.LoadLocation(cfg.Attendance.Timezone)
	if err != nil {
		return err
	}

	attendanceSvc := attendanceService.NewAttendanceService(
		repos.transactor,
		repos.attendance,
		repos.employees,
		repos.outbox,
		summaryCache,
		clk,
		attendanceService.Options{
			Policy: policy,
			Rules: attendance.HoursRules{
				ScheduledStart: policy.ScheduledStart(),
				StandardDaily:  cfg.Attendance.StandardDaily(),
				Location:       loc,
			},
			MaxClockSkew: cfg.Attendance.MaxClockSkew,
		},
		logger,
	)
	payrollSvc := payrollService.NewPayrollService(
		repos.transactor,
		repos.payroll,
		repos.employees,
		repos.outbox,
		attendanceSvc,
		payroll.Settings{
			OvertimeMultiplier: cfg.Payroll.OvertimeMultiplier,
			StandardDailyHours: cfg.Payroll.StandardDailyHours,
			WorkingWeekdays:    cfg.Payroll.WorkingWeekdays,
			CurrencyScale:      cfg.Payroll.CurrencyScale,
		},
		clk,
		logger,
	)

	JWTService := jwt.NewJWTService(cfg.JWT.Secret, cfg.JWT.AccessExpiration)
	attendanceHandler := appHTTP.NewAttendanceHandler(attendanceSvc, clk)
	payrollHandler := appHTTP.NewPayrollHandler(payrollSvc)

	router := appHTTP.NewRouter(
		appHTTP.RouterConfig{
			Logger:             logger,
			AllowedOrigins:     cfg.App.AllowedOrigins,
			KioskRatePerMinute: cfg.Attendance.KioskRatePerMinute,
			KioskBurst:         cfg.Attendance.KioskBurst,
			OvertimeToLeave:    cfg.Features.OvertimeToLeave,
		},
		JWTService,
		attendanceHandler,
		payrollHandler,
	)

	scheduler := cron.NewScheduler(logger)
	if len(cfg.Kafka.Brokers) > 0 {
		writer := kafka.NewWriter(cfg.Kafka.Brokers)
		publisher := kafka.NewPublisher(writer, cfg.Kafka.TopicPrefix)
		defer publisher.Close()

		relay := kafka.NewRelay(repos.outbox, publisher, clk, cfg.Kafka.BatchSize, logger)
		scheduler.AddJob(cron.Job{
			Name:     "outbox_relay",
			Interval: cfg.Kafka.RelayInterval,
			Fn: func(ctx context.Context) error {
				_, err := relay.Flush(ctx)
				return err
			},
		})
	} else {
		logger.Warn("KAFKA_BROKERS not set, outbox events stay pending")
	}
	scheduler.Start(ctx)
	defer scheduler.Stop()

	server := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.App.Port),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("server running", "addr", server.Addr, "env", cfg.App.Env, "storage", cfg.App.Storage)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	return server.Shutdown(shutdownCtx)
}

func openRepositories(ctx context.Context, cfg *config.Config, logger *slog.Logger) (repositories, error) {
	if cfg.App.Storage == "memory" {
		logger.Warn("using in-memory storage, data is lost on restart")
		store := memory.NewStore()
		return repositories{
			transactor: store,
			attendance: store.Attendance(),
			employees:  store.Employees(),
			payroll:    store.Payroll(),
			outbox:     store.Outbox(),
			close:      func() {},
		}, nil
	}

	db, err := database.NewPostgreSQLDB(ctx, cfg.DatabaseURL(), database.PoolOptions{
		MaxConns:        cfg.Database.MaxConns,
		MinConns:        cfg.Database.MinConns,
		MaxConnLifetime: time.Hour,
	})
	if err != nil {
		return repositories{}, fmt.Errorf("connect database: %w", err)
	}
	if err := postgresql.Migrate(ctx, db); err != nil {
		db.Close()
		return repositories{}, fmt.Errorf("migrate database: %w", err)
	}

	return repositories{
		transactor: postgresql.NewTransactor(db),
		attendance: postgresql.NewAttendanceRepository(db),
		employees:  postgresql.NewEmployeeRepository(db),
		payroll:    postgresql.NewPayrollRepository(db),
		outbox:     postgresql.NewOutboxRepository(db),
		close:      db.Close,
	}, nil
}

// openSummaryCache prefers Redis and falls back to the in-process cache when
// Redis is not configured or unreachable.
func openSummaryCache(ctx context.Context, cfg *config.Config, clk clock.Clock, logger *slog.Logger) (attendance.SummaryCache, func()) {
	if cfg.Redis.Addr == "" {
		return cache.NewMemorySummaryCache(cfg.Redis.SummaryTTL, clk), func() {}
	}

	rdb, err := database.ConnectRedisWithRetry(ctx, database.RedisOptions{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	}, 5, 2*time.Second, logger)
	if err != nil {
		logger.Warn("redis unavailable, using in-process summary cache", "error", err)
		return cache.NewMemorySummaryCache(cfg.Redis.SummaryTTL, clk), func() {}
	}
	return cache.NewRedisSummaryCache(rdb, cfg.Redis.SummaryTTL), func() { rdb.Close() }
}

func newLogger(level string) *slog.Logger {
	var lvl slog.Level
	if err := lvl.UnmarshalText([]byte(level)); err != nil {
		lvl = slog.LevelInfo
	}
	return slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: lvl}))
}
