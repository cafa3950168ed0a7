package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/PtahaWebDez/Flower-crm/internal/application/allocation"
	appInventory "github.com/PtahaWebDez/Flower-crm/internal/application/inventory"
	"github.com/PtahaWebDez/Flower-crm/internal/config"
	dominv "github.com/PtahaWebDez/Flower-crm/internal/domain/inventory"
	"github.com/PtahaWebDez/Flower-crm/internal/infrastructure/backup"
	"github.com/PtahaWebDez/Flower-crm/internal/infrastructure/id"
	"github.com/PtahaWebDez/Flower-crm/internal/infrastructure/memory"
	infraobs "github.com/PtahaWebDez/Flower-crm/internal/infrastructure/observability"
	"github.com/PtahaWebDez/Flower-crm/internal/infrastructure/observability/oteltrace"
	"github.com/PtahaWebDez/Flower-crm/internal/infrastructure/observability/prometrics"
	"github.com/PtahaWebDez/Flower-crm/internal/infrastructure/observability/zaplogger"
	"github.com/PtahaWebDez/Flower-crm/internal/infrastructure/outbox"
	"github.com/PtahaWebDez/Flower-crm/internal/infrastructure/spreadsheet"
	"github.com/PtahaWebDez/Flower-crm/internal/infrastructure/sqlstore"
	"github.com/PtahaWebDez/Flower-crm/internal/observability"
	"github.com/PtahaWebDez/Flower-crm/internal/pkg/logging"
	httppresentation "github.com/PtahaWebDez/Flower-crm/internal/presentation/http"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}

	baseLogger := logging.MustNewLogger(logging.Options{
		Service: cfg.ServiceName,
		Env:     cfg.Env,
		File:    cfg.LogFile,
		Level:   cfg.LogLevel,
	})
	defer func() { _ = baseLogger.Sync() }()
	zap.ReplaceGlobals(baseLogger)

	systemLogger := logging.WithTrace(baseLogger, logging.SystemTraceID, logging.SystemSpanID)
	appLogger := zaplogger.Wrap(baseLogger)
	tel := newTelemetry(cfg.ServiceName, appLogger)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	sink, err := openBackup(ctx, cfg)
	if err != nil {
		systemLogger.Fatal("backup_init_failed", zap.Error(err))
	}
	store, closeStore, err := openStore(ctx, cfg, sink, appLogger)
	if err != nil {
		systemLogger.Fatal("store_init_failed", zap.String("driver", cfg.StoreDriver), zap.Error(err))
	}
	defer func() { _ = closeStore.Close() }()

	// In-process event bus; stock changes fan out to the monitor worker.
	bus := outbox.NewBus(appLogger)
	bus.Start(context.Background())

	svc := allocation.New(allocation.Config{
		Store:     store,
		Ledger:    memory.NewOrderLedger(),
		IDs:       id.NewUUIDGenerator(),
		Publisher: bus,
		Telemetry: tel,
	})

	monitor := appInventory.NewMonitorStockUseCase(cfg.LowStockThreshold, tel)
	appInventory.NewWorker(bus, monitor, tel, appLogger).Start()

	// Seed the stock gauges before the first booking moves anything.
	if _, err := monitor.Execute(ctx, dominv.NewStockChangedEvent(svc.Snapshot(ctx).Stock, "startup")); err != nil {
		systemLogger.Warn("initial_stock_report_failed", zap.Error(err))
	}

	handler := httppresentation.NewHandler(svc, appLogger, tel, httppresentation.WithCORS(cfg.CORSOrigins...))
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	mux.Handle("/", handler.Router())

	server := &http.Server{
		Addr:    cfg.HTTPAddr,
		Handler: mux,
	}

	go func() {
		systemLogger.Info("http_server_start",
			zap.String("addr", server.Addr),
			zap.String("store", cfg.StoreDriver),
			zap.String("backup", cfg.BackupDriver),
		)
		err := server.ListenAndServe()
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			systemLogger.Error("http_server_error",
				zap.Error(err),
			)
			stop()
		}
	}()

	<-ctx.Done()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		systemLogger.Error("http_server_shutdown_error",
			zap.Error(err),
		)
	} else {
		systemLogger.Info("http_server_stopped")
	}
	bus.Stop(shutdownCtx)
}

func newTelemetry(service string, logger observability.Logger) observability.Observability {
	reg := prometrics.New(nil, "", "")
	return infraobs.New(oteltrace.New(service), logger, infraobs.Instruments{
		Counters: map[observability.MetricKey]observability.Counter{
			observability.MUsecaseRequests: reg.Counter(string(observability.MUsecaseRequests),
				"Total number of use case invocations.", "use_case", "outcome"),
			observability.MExternalRequests: reg.Counter(string(observability.MExternalRequests),
				"Total number of calls to stores and the event bus.", "peer", "endpoint", "outcome"),
			observability.MHTTPRequests: reg.Counter(string(observability.MHTTPRequests),
				"Total number of HTTP requests.", "method", "route", "status"),
		},
		Histograms: map[observability.MetricKey]observability.Histogram{
			observability.MUsecaseDuration: reg.Histogram(string(observability.MUsecaseDuration),
				"Duration of use case execution in seconds.", nil, "use_case"),
			observability.MExternalRequestDuration: reg.Histogram(string(observability.MExternalRequestDuration),
				"Duration of calls to stores and the event bus in seconds.", nil, "peer", "endpoint"),
			observability.MHTTPRequestDuration: reg.Histogram(string(observability.MHTTPRequestDuration),
				"Duration of HTTP requests in seconds.", nil, "method", "route", "status"),
		},
		Gauges: map[observability.MetricKey]observability.Gauge{
			observability.MStockAvailable: reg.Gauge(string(observability.MStockAvailable),
				"Free quantity per component.", "component"),
		},
	})
}

func openBackup(ctx context.Context, cfg config.Config) (backup.Sink, error) {
	switch cfg.BackupDriver {
	case config.BackupFS:
		sink, err := backup.NewFSSink(cfg.BackupDir)
		if err != nil {
			return nil, err
		}
		return sink, nil
	case config.BackupS3:
		sink, err := backup.NewS3SinkFromConfig(ctx, backup.S3Config{
			Bucket:          cfg.BackupS3Bucket,
			Region:          cfg.BackupS3Region,
			Endpoint:        cfg.BackupS3Endpoint,
			PathStyle:       cfg.BackupS3PathStyle,
			AccessKeyID:     cfg.BackupS3AccessKey,
			SecretAccessKey: cfg.BackupS3SecretKey,
		})
		if err != nil {
			return nil, err
		}
		return sink, nil
	default:
		return nil, nil
	}
}

type nopCloser struct{}

func (nopCloser) Close() error { return nil }

func openStore(ctx context.Context, cfg config.Config, sink backup.Sink, logger observability.Logger) (allocation.Store, io.Closer, error) {
	switch cfg.StoreDriver {
	case config.StoreSQLite:
		s, err := sqlstore.OpenSQLite(ctx, cfg.SQLitePath)
		if err != nil {
			return nil, nil, err
		}
		return s, s, nil
	case config.StorePostgres:
		s, err := sqlstore.OpenPostgres(ctx, cfg.PostgresDSN)
		if err != nil {
			return nil, nil, err
		}
		return s, s, nil
	case config.StoreMemory:
		return memory.NewStore(nil), nopCloser{}, nil
	default:
		return spreadsheet.New(spreadsheet.Config{
			Path:     cfg.XLSXPath,
			Sheet:    cfg.XLSXSheet,
			StockRow: cfg.StockRowLabel,
			Backup:   sink,
			Logger:   logger,
		}), nopCloser{}, nil
	}
}
