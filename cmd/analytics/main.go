package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"lifesync/config"
	"lifesync/internal/analytics"
	"lifesync/internal/handler"
	"lifesync/internal/httpserver"
	"lifesync/internal/mqhandler"
	"lifesync/internal/repository"
	"lifesync/pkg/circuitbreaker"
	"lifesync/pkg/db"
	"lifesync/pkg/logger"
	"lifesync/pkg/metrics"
	"lifesync/pkg/mq"
	"lifesync/pkg/otel"
	pkgredis "lifesync/pkg/redis"
	"lifesync/pkg/util"
)

const (
	serviceName     = "analytics-service"
	reportQueue     = "report.requested.q"
	reportDedupTTL  = 24 * time.Hour
	reportRetryTTL  = time.Hour
	shutdownTimeout = 30 * time.Second
)

func main() {
	log := logger.NewLogger(serviceName)
	defer log.Sync()

	cfg, err := config.Load()
	if err != nil {
		log.Fatal("Failed to load config", zap.Error(err))
	}

	log.Info("Starting analytics-service...",
		zap.String("db_host", cfg.DB.Host),
		zap.Int("db_port", cfg.DB.Port),
		zap.Bool("mq_enabled", cfg.MQ.Enabled),
		zap.String("timezone", cfg.Analytics.Timezone),
	)

	shutdownOtel, err := otel.Init(otel.Config{
		ServiceName:    serviceName,
		ServiceVersion: "1.0.0",
		Endpoint:       cfg.Otel.Endpoint,
		Enabled:        cfg.Otel.Enabled,
		SampleRatio:    cfg.Otel.SampleRatio,
	}, log)
	if err != nil {
		log.Fatal("Failed to init OpenTelemetry", zap.Error(err))
	}
	defer shutdownOtel()

	// DB
	dbConn, err := db.NewConnection(cfg.DB, log)
	if err != nil {
		log.Fatal("Failed to init DB", zap.Error(err))
	}
	defer dbConn.Close()

	if err := repository.EnsureSchema(context.Background(), dbConn); err != nil {
		log.Fatal("Failed to ensure schema", zap.Error(err))
	}

	breaker := circuitbreaker.New(circuitbreaker.Config{
		OnStateChange: func(from, to circuitbreaker.State) {
			metrics.SetCircuitBreakerState("store", int(to))
			log.Warn("Store circuit breaker state changed",
				zap.String("from", from.String()),
				zap.String("to", to.String()),
			)
		},
	})

	svc := analytics.NewService(repository.NewStore(dbConn, breaker), analytics.Options{
		Location:        cfg.Location(),
		LookbackDays:    cfg.Analytics.LookbackDays,
		CorrelationDays: cfg.Analytics.CorrelationDays,
		MinOverlapDays:  cfg.Analytics.MinOverlapDays,
		TopCorrelations: cfg.Analytics.TopCorrelations,
	}, log)

	// MQ（可选）
	var (
		eventPublisher handler.EventPublisher
		consumer       *mq.Consumer
	)
	if cfg.MQ.Enabled {
		publisher, err := mq.NewPublisher(cfg.MQ.URL)
		if err != nil {
			log.Fatal("Failed to init MQ publisher", zap.Error(err))
		}
		defer publisher.Close()
		eventPublisher = publisher

		rdb, err := pkgredis.NewRedisClient(cfg.Redis)
		if err != nil {
			log.Fatal("Failed to init Redis", zap.Error(err))
		}
		defer rdb.Close()

		reportHandler := mqhandler.NewReportRequestedHandler(
			svc,
			publisher,
			util.NewDeduper(rdb, reportDedupTTL, log),
			util.NewRetryCounter(rdb, reportRetryTTL),
			log,
		)

		log.Info("Initializing MQ consumer for report.requested...",
			zap.String("queue", reportQueue),
			zap.String("routing_key", mq.RoutingReportRequested),
		)
		consumer, err = mq.NewConsumer(cfg.MQ.URL, reportQueue, mq.RoutingReportRequested, log)
		if err != nil {
			log.Fatal("Failed to init consumer", zap.Error(err))
		}
		defer consumer.Close()
		consumer.SetHandler(reportHandler.HandleReportRequested)
		if err := consumer.SetDeadLetter(publisher); err != nil {
			log.Fatal("Failed to declare dead letter queue", zap.Error(err))
		}

		go func() {
			if err := consumer.StartConsuming(); err != nil {
				log.Fatal("Report consumer failed", zap.Error(err))
			}
		}()
	}

	// HTTP Server
	deps := httpserver.Deps{
		Analytics: handler.NewAnalyticsHandler(svc, cfg.RequestTimeout(), log),
		HabitLogs: handler.NewHabitLogHandler(repository.NewHabitRepository(dbConn), svc.Today, eventPublisher, log),
		JWTSecret: cfg.JWT.Secret,
		DB:        dbConn,
		Logger:    log,
	}
	if consumer != nil {
		deps.MQReady = consumer.IsConnected
	}

	srv := &http.Server{
		Addr:              cfg.Server.Port,
		Handler:           httpserver.NewRouter(deps),
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		log.Info("HTTP server starting", zap.String("addr", cfg.Server.Port))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("HTTP server failed", zap.Error(err))
		}
	}()

	log.Info("analytics-service is fully initialized and running")

	// 优雅退出处理
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("Shutting down analytics-service gracefully...")

	if consumer != nil {
		log.Info("Stopping MQ consumer...")
		consumer.Stop()
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("HTTP server shutdown error", zap.Error(err))
	} else {
		log.Info("HTTP server stopped")
	}

	log.Info("analytics-service shutdown complete")
}
