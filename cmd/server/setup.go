package main

import (
	"context"
	"fmt"
	"time"

	invoicingapp "github.com/erp/pos/internal/application/invoicing"
	"github.com/erp/pos/internal/domain/catalog"
	"github.com/erp/pos/internal/domain/invoicing"
	"github.com/erp/pos/internal/domain/partner"
	"github.com/erp/pos/internal/domain/shared"
	"github.com/erp/pos/internal/infrastructure/cache"
	"github.com/erp/pos/internal/infrastructure/config"
	"github.com/erp/pos/internal/infrastructure/event"
	"github.com/erp/pos/internal/infrastructure/logger"
	"github.com/erp/pos/internal/infrastructure/persistence"
	"github.com/erp/pos/internal/infrastructure/persistence/memory"
	"github.com/erp/pos/internal/infrastructure/scheduler"
	"github.com/erp/pos/internal/infrastructure/storage"
	"github.com/erp/pos/internal/infrastructure/telemetry"
	"go.opentelemetry.io/otel/metric"
	"go.uber.org/zap"
)

const logTimeFormat = "2006-01-02T15:04:05.000Z07:00"

// setupLogger builds the process logger. With the OTLP logs bridge enabled
// the logger is rebuilt so every entry is exported as well.
func setupLogger(ctx context.Context, cfg *config.Config, cleanup *shutdownStack) (*zap.Logger, error) {
	logCfg := &logger.Config{
		Level:      cfg.Log.Level,
		Format:     cfg.Log.Format,
		Output:     cfg.Log.Output,
		TimeFormat: logTimeFormat,
	}
	log, err := logger.New(logCfg)
	if err != nil {
		return nil, fmt.Errorf("initialize logger: %w", err)
	}
	cleanup.log = log
	cleanup.push("logger", func(context.Context) error {
		_ = log.Sync()
		return nil
	})

	if !cfg.Telemetry.Enabled || !cfg.Telemetry.LogsEnabled {
		return log, nil
	}

	lp, err := telemetry.NewLoggerProvider(ctx, telemetry.LogsConfig{
		Enabled:           true,
		CollectorEndpoint: cfg.Telemetry.CollectorEndpoint,
		ServiceName:       cfg.Telemetry.ServiceName,
		Insecure:          cfg.Telemetry.Insecure,
	}, log)
	if err != nil {
		return nil, fmt.Errorf("logs bridge: %w", err)
	}
	cleanup.push("logger provider", lp.Shutdown)

	bridged, err := logger.New(logCfg, lp.ZapCore(logger.ParseLevel(cfg.Log.Level)))
	if err != nil {
		return nil, fmt.Errorf("initialize logger: %w", err)
	}
	cleanup.log = bridged
	cleanup.push("bridged logger", func(context.Context) error {
		_ = bridged.Sync()
		return nil
	})
	return bridged, nil
}

// setupTelemetry starts tracing, metrics and profiling. The returned meter
// is nil when metrics are disabled.
func setupTelemetry(ctx context.Context, cfg *config.Config, log *zap.Logger, cleanup *shutdownStack) (metric.Meter, error) {
	tc := cfg.Telemetry
	tp, err := telemetry.NewTracerProvider(ctx, telemetry.Config{
		Enabled:           tc.Enabled,
		CollectorEndpoint: tc.CollectorEndpoint,
		SamplingRatio:     tc.SamplingRatio,
		ServiceName:       tc.ServiceName,
		Insecure:          tc.Insecure,
	}, log)
	if err != nil {
		return nil, fmt.Errorf("tracer provider: %w", err)
	}
	cleanup.push("tracer provider", tp.Shutdown)

	mp, err := telemetry.NewMeterProvider(ctx, telemetry.MetricsConfig{
		Enabled:           tc.Enabled && tc.MetricsEnabled,
		CollectorEndpoint: tc.CollectorEndpoint,
		ExportInterval:    tc.MetricsInterval,
		ServiceName:       tc.ServiceName,
		Insecure:          tc.Insecure,
	}, log)
	if err != nil {
		return nil, fmt.Errorf("meter provider: %w", err)
	}
	cleanup.push("meter provider", mp.Shutdown)

	profiler, err := telemetry.NewProfiler(telemetry.ProfilerConfig{
		Enabled:         tc.ProfilingEnabled,
		ServerAddress:   tc.PyroscopeAddress,
		ApplicationName: tc.ServiceName,
	}, log)
	if err != nil {
		return nil, fmt.Errorf("profiler: %w", err)
	}
	cleanup.push("profiler", func(context.Context) error { return profiler.Stop() })
	if profiler.IsEnabled() && tp.IsEnabled() {
		if err := tp.EnableSpanProfiles(); err != nil {
			log.Warn("Span profiles unavailable", zap.Error(err))
		}
	}

	return meterOrNil(mp), nil
}

// storageBackend is the set of repositories selected by storage.driver
type storageBackend struct {
	scope     invoicingapp.TransactionScope
	products  catalog.ProductRepository
	customers partner.CustomerRepository
	invoices  invoicing.InvoiceRepository
	ids       shared.IDGenerator
	ping      func(context.Context) error
}

func openStorage(ctx context.Context, cfg *config.Config, log *zap.Logger, cleanup *shutdownStack) (*storageBackend, error) {
	if cfg.Storage.Driver == "memory" {
		log.Warn("Using in-memory storage, data is lost on restart")
		store := memory.NewStore()
		return &storageBackend{
			scope:     invoicingapp.NewNoOpTransactionScope(store.Products, store.Customers, store.Invoices),
			products:  store.Products,
			customers: store.Customers,
			invoices:  store.Invoices,
			ids:       store.Sequences,
		}, nil
	}

	db, err := persistence.NewDatabase(cfg, log)
	if err != nil {
		return nil, err
	}
	cleanup.push("database", func(context.Context) error { return db.Close() })
	log.Info("Database connected", zap.String("driver", db.Driver))

	if cfg.Telemetry.Enabled && cfg.Telemetry.DBTraceEnabled {
		dbSystem := "postgresql"
		if db.Driver == "sqlite" {
			dbSystem = "sqlite"
		}
		plugin := telemetry.NewDBTracingPlugin(telemetry.DBTracingConfig{
			Enabled:         true,
			LogFullSQL:      cfg.Telemetry.DBLogFullSQL,
			SlowQueryThresh: cfg.Telemetry.DBSlowQueryThresh,
			DBSystem:        dbSystem,
		}, log)
		if err := plugin.Register(db.DB); err != nil {
			return nil, fmt.Errorf("database tracing: %w", err)
		}
	}

	if cfg.Storage.AutoMigrate {
		if err := db.AutoMigrate(ctx); err != nil {
			return nil, err
		}
		log.Info("Database schema migrated")
	}

	return &storageBackend{
		scope:     persistence.NewGormTransactionScope(db.DB),
		products:  persistence.NewGormProductRepository(db.DB),
		customers: persistence.NewGormCustomerRepository(db.DB),
		invoices:  persistence.NewGormInvoiceRepository(db.DB),
		ids:       persistence.NewGormSequence(db.DB),
		ping:      db.Ping,
	}, nil
}

// setupIDGenerator honours invoicing.id_generator. "redis" replaces the
// storage sequence with INCR counters shared by every instance.
func setupIDGenerator(ctx context.Context, cfg *config.Config, store *storageBackend, log *zap.Logger, cleanup *shutdownStack) (shared.IDGenerator, func(context.Context) error, error) {
	if cfg.Invoicing.IDGenerator != "redis" {
		return store.ids, nil, nil
	}
	client, err := cache.Connect(ctx, cache.OptionsFromConfig(cfg.Redis))
	if err != nil {
		return nil, nil, fmt.Errorf("redis id generator: %w", err)
	}
	cleanup.push("redis", func(context.Context) error { return client.Close() })
	log.Info("Using Redis sequences", zap.String("addr", cfg.Redis.Addr()))
	return cache.NewRedisIDGenerator(client, ""), func(ctx context.Context) error {
		return client.Ping(ctx).Err()
	}, nil
}

// setupEventBus starts the in-process bus with the audit log and, when
// enabled, the Kafka forwarder.
func setupEventBus(ctx context.Context, cfg *config.Config, log *zap.Logger, cleanup *shutdownStack) (*event.InMemoryEventBus, error) {
	bus := event.NewInMemoryEventBus(log.Named("events"))
	bus.Subscribe(event.NewAuditLogHandler(log.Named("audit")))

	if cfg.Kafka.Enabled {
		serializer := event.NewEventSerializer()
		event.RegisterAllEvents(serializer)
		writer := event.NewKafkaWriter(event.KafkaConfig{
			Brokers:      cfg.Kafka.Brokers,
			Topic:        cfg.Kafka.Topic,
			BatchTimeout: cfg.Kafka.BatchTimeout,
		})
		forwarder := event.NewKafkaForwarder(writer, serializer, log.Named("kafka"))
		bus.Subscribe(forwarder)
		cleanup.push("kafka forwarder", func(context.Context) error { return forwarder.Close() })
		log.Info("Forwarding domain events to Kafka",
			zap.Strings("brokers", cfg.Kafka.Brokers),
			zap.String("topic", cfg.Kafka.Topic),
		)
	}

	if err := bus.Start(ctx); err != nil {
		return nil, fmt.Errorf("start event bus: %w", err)
	}
	cleanup.push("event bus", bus.Stop)
	return bus, nil
}

func setupReportArchive(ctx context.Context, cfg *config.Config, log *zap.Logger) (invoicingapp.ReportArchive, error) {
	if !cfg.S3.Enabled {
		log.Info("S3 disabled, sales reports are archived in memory")
		return storage.NewMemoryReportArchive(), nil
	}
	archive, err := storage.NewS3ReportArchive(ctx, &cfg.S3, storage.WithLogger(log.Named("s3")))
	if err != nil {
		return nil, err
	}
	if err := archive.EnsureBucket(ctx); err != nil {
		log.Warn("Could not verify report bucket", zap.String("bucket", archive.Bucket()), zap.Error(err))
	}
	return archive, nil
}

// setupArchiveScheduler archives the previous day's sales report every night
// when scheduler.enabled is set.
func setupArchiveScheduler(ctx context.Context, cfg *config.Config, invoices *invoicingapp.InvoiceService, log *zap.Logger, cleanup *shutdownStack) error {
	if !cfg.Scheduler.Enabled {
		return nil
	}
	archiver := scheduler.SalesArchiverFunc(func(ctx context.Context, from, to time.Time) (string, error) {
		archived, err := invoices.ArchiveSalesReport(ctx, from, to)
		if err != nil {
			return "", err
		}
		return archived.Location, nil
	})
	daily, err := scheduler.NewDailyArchiveScheduler(scheduler.DailyArchiveConfig{
		Schedule:      cfg.Scheduler.DailySchedule,
		JobTimeout:    cfg.Scheduler.JobTimeout,
		RetryAttempts: cfg.Scheduler.RetryAttempts,
		RetryDelay:    cfg.Scheduler.RetryDelay,
	}, archiver, log.Named("scheduler"))
	if err != nil {
		return fmt.Errorf("scheduler.daily_schedule: %w", err)
	}
	if err := daily.Start(ctx); err != nil {
		return err
	}
	cleanup.push("archive scheduler", daily.Stop)
	return nil
}
