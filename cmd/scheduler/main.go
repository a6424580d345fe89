package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/joho/godotenv"
	_ "github.com/lib/pq"
	"github.com/redis/go-redis/v9"
	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"github.com/rentease/rent-ledger/internal/config"
	"github.com/rentease/rent-ledger/internal/logger"
	"github.com/rentease/rent-ledger/internal/notifier"
	"github.com/rentease/rent-ledger/internal/repository"
	"github.com/rentease/rent-ledger/internal/service"
	"github.com/rentease/rent-ledger/pkg/clock"
)

const (
	sweepLockTTL = 10 * time.Minute
	jobTimeout   = 5 * time.Minute
)

// The scheduler runs the same sweeps the /cron endpoints expose, for
// deployments that prefer an in-cluster process over a hosted cron service.
// Both paths share the redis sweep locks, so running both is harmless.
func main() {
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	zlog, err := logger.New(cfg.Logging.Level, cfg.Logging.Format)
	if err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer zlog.Sync()

	db, err := sqlx.Connect("postgres", cfg.Database.DSN())
	if err != nil {
		zlog.Fatal("failed to connect to database", zap.Error(err))
	}
	defer db.Close()
	db.SetMaxOpenConns(cfg.Database.MaxOpenConns)
	db.SetMaxIdleConns(cfg.Database.MaxIdleConns)
	db.SetConnMaxLifetime(cfg.Database.ConnMaxLifetime)

	redisClient := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Addr(),
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	defer redisClient.Close()

	ctx := context.Background()
	emailSender, err := notifier.NewSESSender(ctx, cfg.Notifications.AWSRegion, cfg.Notifications.FromEmail)
	if err != nil {
		zlog.Fatal("failed to initialize email sender", zap.Error(err))
	}
	smsSender, err := notifier.NewSNSSender(ctx, cfg.Notifications.AWSRegion)
	if err != nil {
		zlog.Fatal("failed to initialize sms sender", zap.Error(err))
	}

	ledgerRepo := repository.NewLedgerRepository(db)
	leaseRepo := repository.NewLeaseRepository(db)
	notifRepo := repository.NewNotificationRepository(db)

	clk := clock.New()
	locker := service.NewSweepLocker(redisClient, sweepLockTTL)
	assessor := service.NewLateFeeAssessor(ledgerRepo, locker, clk, zlog)
	dispatcher := service.NewNotificationDispatcher(
		ledgerRepo, leaseRepo, notifRepo,
		emailSender, smsSender,
		locker, clk,
		service.DispatcherConfig{
			ReminderLeadDays: cfg.Business.ReminderLeadDays,
			ExpiryLeadDays:   cfg.Business.ExpiryLeadDays,
			AppBaseURL:       cfg.Notifications.AppBaseURL,
		},
		zlog,
	)

	loc, err := time.LoadLocation(cfg.Cron.Timezone)
	if err != nil {
		zlog.Fatal("invalid cron timezone", zap.Error(err))
	}

	c := cron.New(cron.WithSeconds(), cron.WithLocation(loc))

	if _, err := c.AddFunc(cfg.Cron.LateFeeSchedule, func() {
		jobCtx, cancel := context.WithTimeout(context.Background(), jobTimeout)
		defer cancel()

		applied, err := assessor.Run(jobCtx)
		if err != nil {
			zlog.Error("late fee sweep failed", zap.Error(err))
			return
		}
		zlog.Info("late fee sweep finished", zap.Int("applied", applied))
	}); err != nil {
		zlog.Fatal("failed to schedule late fee sweep", zap.Error(err))
	}

	if _, err := c.AddFunc(cfg.Cron.NotificationSchedule, func() {
		jobCtx, cancel := context.WithTimeout(context.Background(), jobTimeout)
		defer cancel()

		stats, err := dispatcher.Run(jobCtx)
		if err != nil {
			zlog.Error("notification sweep failed", zap.Error(err))
			return
		}
		zlog.Info("notification sweep finished",
			zap.Int("rent_reminders", stats.RentReminders),
			zap.Int("overdue_alerts", stats.OverdueAlerts),
			zap.Int("lease_expiry", stats.LeaseExpiry),
			zap.Int("sms", stats.SMS),
		)
	}); err != nil {
		zlog.Fatal("failed to schedule notification sweep", zap.Error(err))
	}

	c.Start()
	zlog.Info("scheduler started",
		zap.String("late_fee_schedule", cfg.Cron.LateFeeSchedule),
		zap.String("notification_schedule", cfg.Cron.NotificationSchedule),
		zap.String("timezone", cfg.Cron.Timezone),
	)

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	zlog.Info("shutting down scheduler")
	stopCtx := c.Stop()
	<-stopCtx.Done()
	zlog.Info("scheduler stopped")
}
