package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	catalogapp "github.com/erp/pos/internal/application/catalog"
	"github.com/erp/pos/internal/application/concurrency"
	invoicingapp "github.com/erp/pos/internal/application/invoicing"
	partnerapp "github.com/erp/pos/internal/application/partner"
	"github.com/erp/pos/internal/infrastructure/auth"
	"github.com/erp/pos/internal/infrastructure/cache"
	"github.com/erp/pos/internal/infrastructure/config"
	"github.com/erp/pos/internal/infrastructure/telemetry"
	"github.com/erp/pos/internal/interfaces/http/handler"
	"github.com/erp/pos/internal/interfaces/http/router"
	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/otel/metric"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// version is set at build time with -ldflags "-X main.version=..."
var version = "dev"

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg); err != nil {
		fmt.Fprintf(os.Stderr, "%s: %v\n", cfg.App.Name, err)
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg *config.Config) error {
	var cleanup shutdownStack
	defer cleanup.run(cfg.HTTP.ShutdownTimeout)

	log, err := setupLogger(ctx, cfg, &cleanup)
	if err != nil {
		return err
	}
	log.Info("Starting point-of-sale invoicing service",
		zap.String("app", cfg.App.Name),
		zap.String("env", cfg.App.Env),
		zap.String("version", version),
		zap.String("storage", cfg.Storage.Driver),
	)

	meter, err := setupTelemetry(ctx, cfg, log, &cleanup)
	if err != nil {
		return err
	}

	system := handler.NewSystemHandler(cfg.App.Name, version)

	store, err := openStorage(ctx, cfg, log, &cleanup)
	if err != nil {
		return err
	}
	if store.ping != nil {
		system.AddCheck("database", store.ping)
	}

	ids, redisPing, err := setupIDGenerator(ctx, cfg, store, log, &cleanup)
	if err != nil {
		return err
	}
	if redisPing != nil {
		system.AddCheck("redis", redisPing)
	}

	idempotency, err := cache.NewIdempotencyStoreFactory(cfg.Redis, cache.WithLogger(log)).CreateStore(ctx)
	if err != nil {
		return err
	}
	cleanup.push("idempotency store", func(context.Context) error { return idempotency.Close() })

	bus, err := setupEventBus(ctx, cfg, log, &cleanup)
	if err != nil {
		return err
	}

	archive, err := setupReportArchive(ctx, cfg, log)
	if err != nil {
		return err
	}

	rateValues, err := cfg.Invoicing.Rates()
	if err != nil {
		return err
	}
	rates, err := invoicingapp.NewCurrencyTable(rateValues)
	if err != nil {
		return fmt.Errorf("exchange rates: %w", err)
	}
	policy := concurrency.Policy{
		MaxAttempts: cfg.Invoicing.ReservationMaxAttempts,
		BaseDelay:   cfg.Invoicing.ReservationBaseDelay,
		MaxDelay:    cfg.Invoicing.ReservationMaxDelay,
	}

	productService := catalogapp.NewProductService(store.products, ids, policy, log.Named("catalog"))
	productService.SetEventPublisher(bus)
	customerService := partnerapp.NewCustomerService(store.customers, store.invoices, ids, policy, log.Named("partner"))
	customerService.SetEventPublisher(bus)

	invoiceService := invoicingapp.NewInvoiceService(store.scope, ids, rates, policy, log.Named("invoicing"))
	invoiceService.SetEventPublisher(bus)
	invoiceService.SetIdempotencyStore(idempotency, cfg.Invoicing.IdempotencyTTL)
	invoiceService.SetReportArchive(archive)
	if meter != nil {
		businessMetrics, err := telemetry.NewBusinessMetrics(meter)
		if err != nil {
			return fmt.Errorf("business metrics: %w", err)
		}
		invoiceService.SetBusinessMetrics(businessMetrics)
	}

	if err := setupArchiveScheduler(ctx, cfg, invoiceService, log, &cleanup); err != nil {
		return err
	}

	if cfg.App.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	var jwtService *auth.JWTService
	if cfg.JWT.Enabled {
		jwtService = auth.NewJWTService(cfg.JWT)
	} else {
		log.Warn("JWT disabled, cashiers are identified by the X-Cashier-ID header and supervisor routes are open")
	}

	engine := router.NewEngine(router.Options{
		HTTP:           cfg.HTTP,
		ServiceName:    cfg.Telemetry.ServiceName,
		TracingEnabled: cfg.Telemetry.Enabled,
		JWTService:     jwtService,
		Meter:          meter,
		Logger:         log,
	}, router.Handlers{
		Products:  handler.NewProductHandler(productService),
		Customers: handler.NewCustomerHandler(customerService),
		Invoices:  handler.NewInvoiceHandler(invoiceService),
		Reports:   handler.NewReportHandler(invoiceService),
		System:    system,
	})

	srv := &http.Server{
		Addr:           ":" + cfg.App.Port,
		Handler:        engine,
		ReadTimeout:    cfg.HTTP.ReadTimeout,
		WriteTimeout:   cfg.HTTP.WriteTimeout,
		IdleTimeout:    cfg.HTTP.IdleTimeout,
		MaxHeaderBytes: cfg.HTTP.MaxHeaderBytes,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		log.Info("HTTP server listening", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		log.Info("Shutting down HTTP server")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.HTTP.ShutdownTimeout)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		log.Error("Server stopped with error", zap.Error(err))
		return err
	}
	log.Info("Server exited")
	return nil
}

// shutdownStack releases resources in reverse order of acquisition
type shutdownStack struct {
	log   *zap.Logger
	steps []shutdownStep
}

type shutdownStep struct {
	name string
	fn   func(context.Context) error
}

func (s *shutdownStack) push(name string, fn func(context.Context) error) {
	s.steps = append(s.steps, shutdownStep{name: name, fn: fn})
}

func (s *shutdownStack) run(timeout time.Duration) {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	for i := len(s.steps) - 1; i >= 0; i-- {
		step := s.steps[i]
		if err := step.fn(ctx); err != nil && s.log != nil {
			s.log.Error("Shutdown step failed", zap.String("step", step.name), zap.Error(err))
		}
	}
}

// meterOrNil keeps HTTP and business metrics off when the meter provider is disabled
func meterOrNil(mp *telemetry.MeterProvider) metric.Meter {
	if mp == nil || !mp.IsEnabled() {
		return nil
	}
	return mp.Meter(telemetry.TracerName)
}
