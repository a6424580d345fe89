package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gorilla/mux"
	"github.com/jmoiron/sqlx"
	"github.com/joho/godotenv"
	_ "github.com/lib/pq"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/rentease/rent-ledger/internal/config"
	"github.com/rentease/rent-ledger/internal/gateway"
	"github.com/rentease/rent-ledger/internal/handler"
	"github.com/rentease/rent-ledger/internal/logger"
	"github.com/rentease/rent-ledger/internal/notifier"
	"github.com/rentease/rent-ledger/internal/repository"
	"github.com/rentease/rent-ledger/internal/service"
	"github.com/rentease/rent-ledger/pkg/clock"
	"github.com/rentease/rent-ledger/pkg/response"
)

const sweepLockTTL = 10 * time.Minute

func main() {
	// Optional local overrides; production injects real env vars.
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

	db, err := initDB(cfg)
	if err != nil {
		zlog.Fatal("failed to initialize database", zap.Error(err))
	}
	defer db.Close()

	redisClient := initRedis(cfg)
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

	// Repositories
	leaseRepo := repository.NewLeaseRepository(db)
	landlordRepo := repository.NewLandlordRepository(db)
	ledgerRepo := repository.NewLedgerRepository(db)
	paymentRepo := repository.NewPaymentRepository(db)
	notifRepo := repository.NewNotificationRepository(db)

	// Services
	clk := clock.New()
	locker := service.NewSweepLocker(redisClient, sweepLockTTL)
	generator := service.NewScheduleGenerator(ledgerRepo, clk, zlog)
	leaseService := service.NewLeaseService(leaseRepo, ledgerRepo, generator, service.LeaseDefaults{
		GracePeriodDays: cfg.Business.DefaultGraceDays,
		RentDueDay:      cfg.Business.DefaultRentDueDay,
	}, clk, zlog)
	applier := service.NewPaymentApplier(ledgerRepo, paymentRepo, leaseRepo, clk, zlog)
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

	// Payment gateway
	bridge := gateway.NewBridge(applier, paymentRepo, landlordRepo, redisClient, cfg.Stripe.WebhookSecret, clk, zlog)
	intents := gateway.NewIntentService(cfg.Stripe.SecretKey, ledgerRepo, leaseRepo, landlordRepo, zlog)

	// Handlers
	leaseHandler := handler.NewLeaseHandler(leaseService)
	paymentHandler := handler.NewPaymentHandler(applier, intents)
	webhookHandler := handler.NewWebhookHandler(bridge, zlog)
	cronHandler := handler.NewCronHandler(assessor, dispatcher, cfg.Cron.Secret, zlog)
	healthHandler := handler.NewHealthHandler(db, redisClient, cfg.Health.Timeout)

	router := setupRoutes(leaseHandler, paymentHandler, webhookHandler, cronHandler, healthHandler, zlog)

	server := &http.Server{
		Addr:         cfg.Server.Host + ":" + cfg.Server.Port,
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	go func() {
		zlog.Info("server starting", zap.String("addr", server.Addr))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			zlog.Fatal("server failed to start", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	zlog.Info("shutting down server")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		zlog.Fatal("server forced to shutdown", zap.Error(err))
	}

	zlog.Info("server exited")
}

func initDB(cfg *config.Config) (*sqlx.DB, error) {
	db, err := sqlx.Connect("postgres", cfg.Database.DSN())
	if err != nil {
		return nil, err
	}

	db.SetMaxOpenConns(cfg.Database.MaxOpenConns)
	db.SetMaxIdleConns(cfg.Database.MaxIdleConns)
	db.SetConnMaxLifetime(cfg.Database.ConnMaxLifetime)

	return db, nil
}

func initRedis(cfg *config.Config) *redis.Client {
	return redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Addr(),
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
}

func setupRoutes(
	leaseHandler *handler.LeaseHandler,
	paymentHandler *handler.PaymentHandler,
	webhookHandler *handler.WebhookHandler,
	cronHandler *handler.CronHandler,
	healthHandler *handler.HealthHandler,
	zlog *zap.Logger,
) *mux.Router {
	router := mux.NewRouter()
	router.Use(response.LoggingMiddleware(zlog))
	router.Use(response.CORSMiddleware)

	// Health and metrics
	router.HandleFunc("/health", healthHandler.Live).Methods("GET")
	router.HandleFunc("/health/ready", healthHandler.Ready).Methods("GET")
	router.Handle("/metrics", promhttp.Handler()).Methods("GET")

	// API routes
	api := router.PathPrefix("/api/v1").Subrouter()

	api.HandleFunc("/leases", leaseHandler.CreateLease).Methods("POST")
	api.HandleFunc("/leases/{leaseId}", leaseHandler.UpdateLease).Methods("PATCH")
	api.HandleFunc("/leases/{leaseId}/ledger", leaseHandler.GetLedger).Methods("GET")

	api.HandleFunc("/payments", paymentHandler.RecordPayment).Methods("POST")
	api.HandleFunc("/payments/unmatched", paymentHandler.ListUnmatched).Methods("GET")
	api.HandleFunc("/payment-intents", paymentHandler.CreateIntent).Methods("POST")

	// Processor webhooks bypass the /api prefix, mirroring the public URL
	// registered with the processor.
	router.HandleFunc("/webhooks/stripe", webhookHandler.Stripe).Methods("POST")

	// Sweep triggers for an external scheduler
	router.HandleFunc("/cron/late-fees", cronHandler.LateFees).Methods("GET")
	router.HandleFunc("/cron/notifications", cronHandler.Notifications).Methods("GET")

	return router
}
