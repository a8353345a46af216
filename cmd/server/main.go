package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/mamadbah2/shiftdesk/internal/config"
	"github.com/mamadbah2/shiftdesk/internal/repository"
	"github.com/mamadbah2/shiftdesk/internal/repository/cached"
	"github.com/mamadbah2/shiftdesk/internal/repository/memory"
	"github.com/mamadbah2/shiftdesk/internal/repository/mongodb"
	rediscache "github.com/mamadbah2/shiftdesk/internal/repository/redis"
	"github.com/mamadbah2/shiftdesk/internal/repository/sheets"
	"github.com/mamadbah2/shiftdesk/internal/scheduler"
	"github.com/mamadbah2/shiftdesk/internal/server/handlers"
	"github.com/mamadbah2/shiftdesk/internal/server/middleware"
	"github.com/mamadbah2/shiftdesk/internal/server/router"
	notifysvc "github.com/mamadbah2/shiftdesk/internal/service/notify"
	"github.com/mamadbah2/shiftdesk/internal/service/orders"
	reportingsvc "github.com/mamadbah2/shiftdesk/internal/service/reporting"
	"github.com/mamadbah2/shiftdesk/internal/service/shifts"
	"github.com/mamadbah2/shiftdesk/pkg/clients/posapi"
	whatsappclient "github.com/mamadbah2/shiftdesk/pkg/clients/whatsapp"
	"github.com/mamadbah2/shiftdesk/pkg/logger"
)

func main() {
	cfg, err := config.Load("")
	if err != nil {
		panic(err)
	}

	baseLogger := logger.Must(logger.New())
	defer func() { _ = baseLogger.Sync() }()

	zap.ReplaceGlobals(baseLogger)

	loc := cfg.Reporting.Location()
	posClient := posapi.NewClient(cfg.POSAPI, loc)

	var store repository.ShiftRepository
	switch cfg.Store.Driver {
	case config.StoreMongo:
		mongoRepo, err := mongodb.NewMongoDBRepository(context.Background(), cfg.MongoDB.URI, cfg.MongoDB.DBName)
		if err != nil {
			baseLogger.Fatal("failed to init mongodb repository", zap.Error(err))
		}
		defer func() {
			if err := mongoRepo.Close(context.Background()); err != nil {
				baseLogger.Error("failed to close mongodb connection", zap.Error(err))
			}
		}()
		store = mongoRepo
	case config.StoreRemote:
		store = posClient
	default:
		baseLogger.Warn("using in-memory shift store, shifts are lost on restart")
		store = memory.NewRepository()
	}
	baseLogger.Info("shift store selected", zap.String("driver", cfg.Store.Driver))

	if cfg.Redis.Enabled() {
		cache, err := rediscache.NewShiftCache(context.Background(), cfg.Redis)
		if err != nil {
			baseLogger.Fatal("failed to init redis cache", zap.Error(err))
		}
		defer func() { _ = cache.Close() }()
		store = cached.New(store, cache, baseLogger.Named("repo.cache"))
		baseLogger.Info("current shift cache enabled", zap.Duration("ttl", cfg.Redis.TTL))
	}

	aggregator := orders.NewAggregator(posClient, cfg.POSAPI.Timeout, baseLogger.Named("svc.orders"))

	var opts []shifts.Option
	var reporter scheduler.DailyReporter
	if cfg.Sheets.Enabled() {
		sheetsRepo, err := sheets.NewGoogleSheetRepository(context.Background(), cfg.Sheets, baseLogger.Named("repo.sheets"))
		if err != nil {
			baseLogger.Fatal("failed to init sheets repository", zap.Error(err))
		}
		opts = append(opts, shifts.WithLedger(sheets.NewLedger(sheetsRepo, loc, baseLogger.Named("repo.ledger"))))
		reporter = reportingsvc.NewService(sheetsRepo, baseLogger.Named("svc.reporting"))
	} else {
		baseLogger.Warn("google sheets ledger disabled")
	}

	var notifier *notifysvc.Service
	if cfg.WhatsApp.Enabled() {
		whatsClient := whatsappclient.NewClient(cfg.WhatsApp)
		notifier = notifysvc.NewService(cfg.WhatsApp, whatsClient, loc, baseLogger.Named("svc.notify"))
		opts = append(opts, shifts.WithNotifier(notifier))
	} else {
		baseLogger.Warn("whatsapp token missing, manager notifications disabled")
	}

	shiftSvc := shifts.NewService(store, aggregator, cfg.Cash.Denominations, baseLogger.Named("svc.shifts"), opts...)

	// Scheduled messages all go to the manager, so they need WhatsApp.
	if notifier != nil {
		sched := scheduler.NewScheduler(cfg.Reporting, reporter, shiftSvc, notifier, baseLogger.Named("scheduler"))
		if err := sched.Start(); err != nil {
			baseLogger.Fatal("failed to start scheduler", zap.Error(err))
		}
		defer sched.Stop()
	}

	shiftHandler := handlers.NewShiftHandler(shiftSvc, baseLogger.Named("handlers.shifts"))
	jwtManager := middleware.NewJWTManager(cfg.Auth.JWTSecret)
	engine := router.New(shiftHandler, jwtManager, baseLogger.Named("router"))

	srv := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      engine,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	go func() {
		baseLogger.Info("server starting", zap.String("port", cfg.Server.Port))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			baseLogger.Fatal("http server crashed", zap.Error(err))
		}
	}()

	<-ctx.Done()
	baseLogger.Info("shutdown signal received")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		baseLogger.Error("graceful shutdown failed", zap.Error(err))
	}
}
