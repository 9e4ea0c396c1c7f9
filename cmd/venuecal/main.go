package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/google/uuid"
	"github.com/joho/godotenv"

	"venuecal/internal/app/commands"
	"venuecal/internal/app/handlers/support"
	"venuecal/internal/app/middleware"
	appoutbox "venuecal/internal/app/outbox"
	"venuecal/internal/app/validation"
	"venuecal/internal/app/wiring"
	"venuecal/internal/domain/availability"
	"venuecal/internal/domain/pricing"
	"venuecal/internal/domain/shared/money"
	"venuecal/internal/infra/broker/kafka"
	"venuecal/internal/infra/config"
	mongodb "venuecal/internal/infra/db/mongo"
	ginserver "venuecal/internal/infra/http/gin"
	"venuecal/internal/infra/obs"
	outboxinfra "venuecal/internal/infra/outbox"
	"venuecal/internal/infra/storage/memory"
	"venuecal/internal/infra/storage/s3"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// A missing .env is fine; the process environment still applies.
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		logger := obs.NewLogger("dev", "info")
		logger.Error("config load failed", "error", err)
		os.Exit(1)
	}
	logger := obs.NewLogger(cfg.Env, cfg.LogLevel)

	app, err := buildApplication(ctx, cfg, logger)
	if err != nil {
		logger.Error("application init failed", "error", err)
		os.Exit(1)
	}
	defer app.close(logger)

	if err := loadVenueFixtures(ctx, app.commands, getenv("VENUE_FIXTURES", defaultFixturesPath()), logger); err != nil {
		logger.Warn("venue fixtures load failed", "error", err)
	}

	server := ginserver.NewServer(cfg, obs.Middleware{Logger: logger}, obs.HealthHandlers{Checks: app.checks}, app.handlers)

	var wg sync.WaitGroup
	for name, run := range app.background {
		name, run := name, run
		wg.Add(1)
		go func() {
			defer wg.Done()
			logger.Info("background worker starting", "worker", name)
			if err := run(ctx); err != nil && !errors.Is(err, context.Canceled) {
				logger.Error("background worker stopped", "worker", name, "error", err)
			}
		}()
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			logger.Error("http shutdown failed", "error", err)
		}
	}()

	logger.Info("HTTP server starting", "addr", cfg.HTTPAddr, "storage", cfg.StorageMode, "broker", cfg.BrokerEnabled())
	if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Error("http server failed", "error", err)
		stop()
	}
	wg.Wait()
	logger.Info("HTTP server stopped")
}

type application struct {
	handlers   ginserver.Handlers
	commands   commands.Bus
	checks     map[string]obs.Check
	background map[string]func(context.Context) error
	closers    []func(context.Context) error
}

func (a *application) close(logger *slog.Logger) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i](ctx); err != nil {
			logger.Warn("close failed", "error", err)
		}
	}
}

func buildApplication(ctx context.Context, cfg config.Config, logger *slog.Logger) (*application, error) {
	app := &application{
		checks:     map[string]obs.Check{},
		background: map[string]func(context.Context) error{},
	}
	deps := wiring.Deps{
		Sessions:  memory.NewSessionRepository(),
		Validator: validation.New(),
		Defaults: availability.Settings{
			MinNights:    cfg.MinNights,
			AllowPast:    cfg.AllowPast,
			NightlyPrice: money.Money{Currency: cfg.Currency},
		},
		Terms: pricing.Terms{
			CleaningFee: money.Money{Amount: cfg.CleaningFeeCents, Currency: cfg.Currency},
			TaxRate:     cfg.TaxRate,
		},
		Clock:       support.Clock{Location: cfg.Timezone},
		Logger:      logger,
		IDGenerator: uuid.NewString,
	}

	var queue *outboxinfra.Store
	switch cfg.StorageMode {
	case config.StorageMongo:
		client, err := mongodb.New(cfg.MongoURI, cfg.MongoDB)
		if err != nil {
			return nil, fmt.Errorf("mongo connect: %w", err)
		}
		app.closers = append(app.closers, client.Close)
		app.checks["mongo"] = client.Ping
		queue = outboxinfra.NewStore(client.DB)
		deps.Calendars = mongodb.NewCalendarRepository(client.DB, cfg.Timezone)
		deps.Idempotency = mongodb.NewIdempotencyStore(client.DB, cfg.IdempotencyTTL)
		deps.Outbox = queue
	default:
		deps.Calendars = memory.NewCalendarRepository()
		deps.Idempotency = memory.NewIdempotencyStore(cfg.IdempotencyTTL)
		deps.Outbox = memory.NewOutbox(1024)
	}

	if cfg.SnapshotsEnabled() {
		store, err := newSnapshotStore(ctx, cfg, logger)
		if err != nil {
			return nil, err
		}
		app.checks["snapshots"] = store.Ping
		deps.Snapshots = store
	}

	buses := wiring.Build(deps)
	app.commands = buses.Commands
	logger.Debug("handlers registered", "commands", buses.CommandKeys, "queries", buses.QueryKeys)
	app.handlers = ginserver.Handlers{
		Calendar:  ginserver.CalendarHandler{Commands: buses.Commands, Queries: buses.Queries},
		Booking:   ginserver.BookingHandler{Commands: buses.Commands, Queries: buses.Queries},
		Selection: ginserver.SelectionHandler{Commands: buses.Commands, Queries: buses.Queries},
		Quote:     ginserver.QuoteHandler{Queries: buses.Queries},
	}

	if cfg.BrokerEnabled() {
		if err := attachBroker(app, cfg, queue, buses.Commands, logger); err != nil {
			return nil, err
		}
	}
	return app, nil
}

func newSnapshotStore(ctx context.Context, cfg config.Config, logger *slog.Logger) (*s3.SnapshotStore, error) {
	store, err := s3.NewSnapshotStore(s3.Options{
		Endpoint:  cfg.S3Endpoint,
		UseSSL:    cfg.S3UseSSL,
		AccessKey: cfg.S3AccessKey,
		SecretKey: cfg.S3SecretKey,
		Bucket:    cfg.S3Bucket,
	}, logger)
	if err != nil {
		return nil, fmt.Errorf("snapshot store: %w", err)
	}
	pingCtx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	if err := store.Ping(pingCtx); err != nil {
		logger.Warn("snapshot store unreachable, exports will fail until it recovers", "error", err)
	}
	return store, nil
}

// attachBroker starts the booking consumer and the outbox relay. Both need the
// durable outbox, so BrokerEnabled only holds in mongo mode.
func attachBroker(app *application, cfg config.Config, queue *outboxinfra.Store, bus commands.Bus, logger *slog.Logger) error {
	producer, err := kafka.NewProducer(cfg.KafkaBrokers, nil)
	if err != nil {
		return fmt.Errorf("kafka producer: %w", err)
	}
	app.closers = append(app.closers, func(context.Context) error { return producer.Close() })

	consumer, err := kafka.NewConsumer(cfg.KafkaBrokers, cfg.KafkaGroupID, nil,
		&kafka.BookingEventHandler{Bus: bus, Logger: logger}, logger)
	if err != nil {
		return fmt.Errorf("kafka consumer: %w", err)
	}
	app.closers = append(app.closers, func(context.Context) error { return consumer.Close() })
	topic := cfg.KafkaTopicPrefix + cfg.BookingTopic
	app.background["booking-consumer"] = func(ctx context.Context) error {
		return consumer.Run(ctx, []string{topic})
	}

	hostname, _ := os.Hostname()
	worker := &outboxinfra.Worker{
		Store:       queue,
		Producer:    producer,
		Interval:    cfg.OutboxPollInterval,
		TopicPrefix: cfg.KafkaTopicPrefix,
		ID:          hostname + "-" + uuid.NewString()[:8],
		Backoff:     cfg.RetryBackoff,
		Logger:      logger,
	}
	app.background["outbox-relay"] = worker.Run
	return nil
}

func getenv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

var (
	_ appoutbox.Outbox            = (*outboxinfra.Store)(nil)
	_ middleware.IdempotencyStore = (*mongodb.IdempotencyStore)(nil)
)
