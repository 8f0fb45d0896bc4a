package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/IBM/sarama"
	"github.com/joho/godotenv"
	_ "github.com/lib/pq"
	"go.opentelemetry.io/otel"

	"github.com/duetapp/notify/internal/config"
	"github.com/duetapp/notify/internal/delivery"
	"github.com/duetapp/notify/internal/handler"
	"github.com/duetapp/notify/internal/kafka"
	"github.com/duetapp/notify/internal/logger"
	"github.com/duetapp/notify/internal/metrics"
	"github.com/duetapp/notify/internal/model"
	"github.com/duetapp/notify/internal/recurrence"
	"github.com/duetapp/notify/internal/router"
	"github.com/duetapp/notify/internal/service"
	"github.com/duetapp/notify/internal/store"
	"github.com/duetapp/notify/pkg/tracing"
)

func main() {
	// .env is optional; real deployments set the environment directly.
	_ = godotenv.Load()

	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logr := logger.NewLogger()
	metrics.Init()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	shutdownTracing, err := tracing.SetupTracing(ctx)
	if err != nil {
		logr.Warn("tracing disabled", "error", err)
		shutdownTracing = func(context.Context) error { return nil }
	}
	tracer := tracing.NewTracer(otel.Tracer(cfg.App.ServiceName))

	// --- Dependency injection setup ---

	db, err := store.ConnectPostgres(cfg.DB)
	if err != nil {
		logr.Error("failed to connect to postgres", "error", err)
		os.Exit(1)
	}
	defer db.Close()

	dbStore := store.NewPostgresStorage(db)

	saramaCfg := sarama.NewConfig()
	saramaCfg.Version = sarama.V2_1_0_0
	saramaCfg.Producer.Return.Successes = true
	saramaCfg.Producer.Return.Errors = true
	saramaCfg.Consumer.Return.Errors = true

	asyncProducer, err := sarama.NewAsyncProducer(cfg.Kafka.Brokers, saramaCfg)
	if err != nil {
		logr.Error("failed to create Kafka producer", "error", err)
		os.Exit(1)
	}

	var producerWG sync.WaitGroup
	broadcaster := kafka.NewProducer(asyncProducer, cfg.Kafka.BroadcastTopic, logr, &producerWG, tracer)
	broadcaster.Start(ctx)

	gateway := delivery.NewGateway(broadcaster, logr)
	prefs := service.NewAllowAllPrefs()
	alerts := service.NewLogAlertSink(logr)

	retry := service.NewRetryCoordinator(dbStore, gateway, alerts, cfg.Retry.Interval, cfg.WorkerLimit, logr)
	dispatcher := service.NewDispatcher(dbStore, gateway, prefs, retry, logr)
	detector := service.NewDetector(dbStore, dispatcher, broadcaster, logr)
	scheduler := service.NewScheduler(
		dbStore,
		dispatcher,
		&recurrence.Calculator{},
		cfg.Scheduler.HalfWindow,
		cfg.Scheduler.Interval,
		cfg.WorkerLimit,
		logr,
	)

	processor := service.NewEventProcessor(
		dispatcher,
		detector,
		model.DefaultRuleGroups,
		model.DefaultComboRules,
		logr,
	)

	consumerGroup, err := sarama.NewConsumerGroup(cfg.Kafka.Brokers, cfg.Kafka.ConsumerGroup, saramaCfg)
	if err != nil {
		logr.Error("failed to create Kafka consumer group", "error", err)
		os.Exit(1)
	}
	consumer := kafka.NewConsumer(cfg.Kafka.EventsTopic, consumerGroup, processor, tracer, logr)

	healthSvc := service.NewHealthService(dbStore)
	hHandler := handler.NewHealthHandler(healthSvc)
	eHandler := handler.NewEventHandler(processor)

	hServer := &http.Server{
		Addr:    ":" + cfg.App.Port,
		Handler: router.NewRouter(eHandler, hHandler),
	}

	var wg sync.WaitGroup

	wg.Add(1)
	go func() {
		defer wg.Done()
		if err := scheduler.Start(ctx); err != nil && !errors.Is(err, context.Canceled) {
			logr.Error("scheduler stopped with error", "error", err)
		}
	}()

	wg.Add(1)
	go func() {
		defer wg.Done()
		if err := retry.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
			logr.Error("retry worker stopped with error", "error", err)
		}
	}()

	wg.Add(1)
	go func() {
		defer wg.Done()
		if err := consumer.Start(ctx); err != nil && !errors.Is(err, context.Canceled) {
			logr.Error("event consumer stopped with error", "error", err)
		}
	}()

	wg.Add(1)
	go func() {
		defer wg.Done()
		logr.Info("Starting HTTP server", "addr", hServer.Addr)
		if err := hServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logr.Error("HTTP server failed", "error", err)
		}
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	<-sigCh
	logr.Info("Shutdown signal received")

	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()
	hServer.Shutdown(shutdownCtx)
	broadcaster.Close(shutdownCtx)
	if err := shutdownTracing(shutdownCtx); err != nil {
		logr.Warn("tracing shutdown failed", "error", err)
	}

	wg.Wait()
	logr.Info("Service shut down gracefully")
}
