package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/redis/go-redis/v9"
	"go.opentelemetry.io/otel/metric"
	"go.uber.org/zap"

	cashierapp "github.com/erp/retail/internal/application/cashier"
	catalogapp "github.com/erp/retail/internal/application/catalog"
	eventapp "github.com/erp/retail/internal/application/event"
	financeapp "github.com/erp/retail/internal/application/finance"
	inventoryapp "github.com/erp/retail/internal/application/inventory"
	partnerapp "github.com/erp/retail/internal/application/partner"
	reportapp "github.com/erp/retail/internal/application/report"
	servicedeskapp "github.com/erp/retail/internal/application/servicedesk"
	tradeapp "github.com/erp/retail/internal/application/trade"
	"github.com/erp/retail/internal/infrastructure/auth"
	"github.com/erp/retail/internal/infrastructure/cache"
	"github.com/erp/retail/internal/infrastructure/config"
	"github.com/erp/retail/internal/infrastructure/event"
	"github.com/erp/retail/internal/infrastructure/logger"
	"github.com/erp/retail/internal/infrastructure/persistence"
	"github.com/erp/retail/internal/infrastructure/scheduler"
	"github.com/erp/retail/internal/infrastructure/telemetry"
	"github.com/erp/retail/internal/interfaces/http/handler"
	"github.com/erp/retail/internal/interfaces/http/middleware"
	"github.com/erp/retail/internal/interfaces/http/router"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("Failed to load configuration: " + err.Error())
	}

	baseLog, err := logger.New(logger.Config{
		Level:  cfg.Log.Level,
		Format: cfg.Log.Format,
		Output: cfg.Log.Output,
	})
	if err != nil {
		panic("Failed to initialize logger: " + err.Error())
	}

	ctx := context.Background()

	logProvider, err := telemetry.NewLoggerProvider(ctx, cfg.Telemetry, cfg.App.Env, baseLog)
	if err != nil {
		baseLog.Fatal("Failed to initialize log exporter", zap.Error(err))
	}
	log := logProvider.Bridge(baseLog, cfg.Telemetry.ServiceName)
	defer func() { _ = log.Sync() }()

	log.Info("Starting retail backend",
		zap.String("app", cfg.App.Name),
		zap.String("env", cfg.App.Env),
		zap.String("port", cfg.App.Port),
		zap.String("database", cfg.Database.Driver),
	)

	tracerProvider, err := telemetry.NewTracerProvider(ctx, cfg.Telemetry, cfg.App.Env, log)
	if err != nil {
		log.Fatal("Failed to initialize tracer provider", zap.Error(err))
	}
	meterProvider, err := telemetry.NewMeterProvider(ctx, cfg.Telemetry, cfg.App.Env, log)
	if err != nil {
		log.Fatal("Failed to initialize meter provider", zap.Error(err))
	}
	profiler, err := telemetry.StartProfiler(cfg.Telemetry, cfg.App.Env, log)
	if err != nil {
		log.Warn("Continuous profiling unavailable", zap.Error(err))
	}

	gormLog := logger.NewGormLogger(log, logger.MapGormLogLevel(cfg.Log.Level), cfg.Telemetry.SlowQueryThresh)
	db, err := persistence.NewDatabaseWithLogger(&cfg.Database, gormLog)
	if err != nil {
		log.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer func() {
		if err := db.Close(); err != nil {
			log.Error("Error closing database", zap.Error(err))
		}
	}()
	log.Info("Database connected", zap.String("driver", db.Driver))

	if cfg.Telemetry.Enabled && cfg.Telemetry.DBTraceEnabled {
		if err := telemetry.NewDBTracing(cfg.Telemetry.SlowQueryThresh, log).Register(db.DB, db.Driver); err != nil {
			log.Warn("Database tracing unavailable", zap.Error(err))
		}
	}

	// postgres schemas come from cmd/migrate; sqlite is created in place
	if db.Driver == config.DriverSQLite {
		if err := persistence.AutoMigrate(db.DB); err != nil {
			log.Fatal("Failed to migrate sqlite schema", zap.Error(err))
		}
	}

	categoryRepo := persistence.NewGormDRECategoryRepository(db.DB)
	categories := financeapp.NewDRECategoryService(categoryRepo)
	if err := categories.Seed(ctx); err != nil {
		log.Fatal("Failed to seed DRE categories", zap.Error(err))
	}

	redisClient, err := cache.Connect(cfg.Redis, cfg.App.Env != "production", log)
	if err != nil {
		log.Fatal("Failed to connect to Redis", zap.Error(err))
	}
	if redisClient != nil {
		defer func() { _ = redisClient.Close() }()
	}

	scope := persistence.NewGormTransactionScope(db.DB)
	var (
		locker   cashierapp.Locker = cashierapp.NopLocker{}
		notifier eventapp.Notifier = eventapp.NewLoggingNotifier(log)
	)
	if redisClient != nil {
		scope = scope.WithNumberer(cache.NewRedisDocumentNumberer(redisClient, persistence.NewGormDocumentNumberer(db.DB)))
		locker = cache.NewRedisLocker(redisClient)
		notifier = cache.NewStreamNotifier(redisClient, cfg.Business.NotificationStream, cfg.Business.NotificationStreamLen)
	}

	// Event bus: notifications and business metrics
	bus := event.NewInMemoryEventBus(log)
	bus.Subscribe(eventapp.NewNotificationHandler(notifier, event.NewEventSerializer(), log))
	meter := meterProvider.Meter("github.com/erp/retail")
	if businessMetrics, err := telemetry.NewBusinessMetrics(meter); err != nil {
		log.Warn("Business metrics unavailable", zap.Error(err))
	} else {
		bus.Subscribe(businessMetrics)
	}
	if err := bus.Start(ctx); err != nil {
		log.Fatal("Failed to start event bus", zap.Error(err))
	}

	ledger := inventoryapp.NewLedger(bus, log)
	ledger.SetLowStockEvents(cfg.Business.LowStockEvents)

	tradeOpts := tradeapp.Options{
		WalkInName:             cfg.Business.WalkInCustomerName,
		ReceivableTermDays:     cfg.Business.ReceivableTermDays,
		CreatePayableOnReceipt: cfg.Business.CreatePayableOnReceipt,
		PayableTermDays:        cfg.Business.PayableTermDays,
	}

	productRepo := persistence.NewGormProductRepository(db.DB)
	receivables := financeapp.NewReceivableService(scope, persistence.NewGormReceivableRepository(db.DB), bus, log)
	payables := financeapp.NewPayableService(scope, persistence.NewGormPayableRepository(db.DB), log)

	stock := inventoryapp.NewStockService(scope, ledger, productRepo,
		persistence.NewGormMovementRepository(db.DB),
		persistence.NewGormBatchRepository(db.DB), log)

	handlers := router.Handlers{
		Catalog: handler.NewCatalogHandler(
			catalogapp.NewProductService(productRepo, log),
			catalogapp.NewServiceItemService(persistence.NewGormServiceItemRepository(db.DB)),
		),
		Partner: handler.NewPartnerHandler(
			partnerapp.NewCustomerService(persistence.NewGormCustomerRepository(db.DB), cfg.Business.WalkInCustomerName),
			partnerapp.NewSupplierService(persistence.NewGormSupplierRepository(db.DB)),
		),
		Inventory: handler.NewInventoryHandler(
			stock,
			inventoryapp.NewCountSessionService(scope, ledger, persistence.NewGormCountSessionRepository(db.DB), log),
		),
		Drawer: handler.NewDrawerHandler(
			cashierapp.NewDrawerService(scope, persistence.NewGormDrawerRepository(db.DB), locker, log),
		),
		Sale: handler.NewSaleHandler(
			tradeapp.NewSaleService(scope, ledger, persistence.NewGormSaleRepository(db.DB), tradeOpts, log),
			tradeapp.NewCheckoutService(scope, ledger, tradeOpts, log),
		),
		Purchase: handler.NewPurchaseHandler(
			tradeapp.NewPurchaseService(scope, ledger, persistence.NewGormPurchaseOrderRepository(db.DB), tradeOpts, log),
		),
		ServiceOrder: handler.NewServiceOrderHandler(
			servicedeskapp.NewServiceOrderService(scope, ledger, persistence.NewGormServiceOrderRepository(db.DB),
				servicedeskapp.Options{
					WalkInName:   cfg.Business.WalkInCustomerName,
					WarrantyDays: cfg.Business.WarrantyDays,
				}, log),
		),
		Finance: handler.NewFinanceHandler(
			receivables,
			payables,
			financeapp.NewPaymentMethodService(persistence.NewGormPaymentMethodRepository(db.DB), log),
			categories,
		),
		Report: handler.NewReportHandler(reportapp.NewDREService(scope, log)),
	}

	sweep, err := scheduler.NewDailyScheduler(dailyConfig(cfg.Scheduler, cfg.Scheduler.Schedule),
		persistence.NewGormOpenEntryTenants(db.DB), map[string]scheduler.TaskFunc{
			"receivables.overdue": receivables.RefreshOverdueForTenant,
			"payables.overdue":    payables.RefreshOverdueForTenant,
		}, log.Named("overdue"))
	if err != nil {
		log.Fatal("Invalid scheduler configuration", zap.Error(err))
	}
	reconciler, err := scheduler.NewDailyScheduler(dailyConfig(cfg.Scheduler, cfg.Scheduler.ReconcileSchedule),
		persistence.NewGormStockedTenants(db.DB), map[string]scheduler.TaskFunc{
			"inventory.reconcile": stock.ReconcileForTenant,
		}, log.Named("reconcile"))
	if err != nil {
		log.Fatal("Invalid scheduler configuration", zap.Error(err))
	}
	for _, s := range []*scheduler.DailyScheduler{sweep, reconciler} {
		if err := s.Start(ctx); err != nil {
			log.Fatal("Failed to start scheduler", zap.Error(err))
		}
	}

	checks := map[string]handler.HealthCheck{
		"database": func(context.Context) error { return db.Ping() },
	}
	if redisClient != nil {
		checks["redis"] = redisPing(redisClient)
	}

	cors := middleware.DefaultCORSConfig()
	engine, err := router.NewEngine(router.EngineConfig{
		Mode:           ginMode(cfg.App.Env),
		ServiceName:    cfg.Telemetry.ServiceName,
		MaxBodySize:    cfg.HTTP.MaxBodySize,
		TrustedProxies: cfg.HTTP.TrustedProxies,
		CORS:           cors,
		Tracing:        cfg.Telemetry.Enabled,
		Profiling:      cfg.Telemetry.ProfilingEnabled,
		Meter:          metricsMeter(cfg, meterProvider),
	}, log, handler.NewHealthHandler(checks))
	if err != nil {
		log.Fatal("Failed to build HTTP engine", zap.Error(err))
	}

	jwtService := auth.NewJWTService(cfg.JWT)
	router.NewRouter(engine, router.WithMiddleware(middleware.Auth(jwtService))).
		Register(handlers.Groups()...).
		Setup()

	srv := &http.Server{
		Addr:         ":" + cfg.App.Port,
		Handler:      engine,
		ReadTimeout:  cfg.HTTP.ReadTimeout,
		WriteTimeout: cfg.HTTP.WriteTimeout,
		IdleTimeout:  cfg.HTTP.IdleTimeout,
	}

	go func() {
		log.Info("Server starting", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal("Failed to start server", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.HTTP.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("Server forced to shutdown", zap.Error(err))
	}
	for _, s := range []*scheduler.DailyScheduler{sweep, reconciler} {
		if err := s.Stop(shutdownCtx); err != nil {
			log.Warn("Scheduler stop failed", zap.Error(err))
		}
	}
	if err := bus.Stop(shutdownCtx); err != nil {
		log.Warn("Event bus stop failed", zap.Error(err))
	}
	if profiler != nil {
		if err := profiler.Stop(); err != nil {
			log.Warn("Profiler stop failed", zap.Error(err))
		}
	}
	if err := meterProvider.Shutdown(shutdownCtx); err != nil {
		log.Warn("Meter provider shutdown failed", zap.Error(err))
	}
	if err := tracerProvider.Shutdown(shutdownCtx); err != nil {
		log.Warn("Tracer provider shutdown failed", zap.Error(err))
	}
	if err := logProvider.Shutdown(shutdownCtx); err != nil {
		log.Warn("Log provider shutdown failed", zap.Error(err))
	}

	log.Info("Server exited gracefully")
}

func ginMode(env string) string {
	if env == "production" {
		return "release"
	}
	return "debug"
}

func dailyConfig(cfg config.SchedulerConfig, schedule string) scheduler.DailyConfig {
	return scheduler.DailyConfig{
		Enabled:  cfg.Enabled,
		Schedule: schedule,
		Pool: scheduler.SchedulerConfig{
			MaxConcurrentJobs: cfg.Workers,
			JobTimeout:        cfg.JobTimeout,
			RetryAttempts:     cfg.Retries,
			RetryDelay:        cfg.RetryDelay,
		},
	}
}

// metricsMeter returns the meter for HTTP metrics, or nil when metrics are off
func metricsMeter(cfg *config.Config, mp *telemetry.MeterProvider) metric.Meter {
	if !cfg.Telemetry.Enabled || !cfg.Telemetry.MetricsEnabled {
		return nil
	}
	return mp.Meter("github.com/erp/retail/http")
}

func redisPing(client *redis.Client) handler.HealthCheck {
	return func(ctx context.Context) error {
		return client.Ping(ctx).Err()
	}
}
