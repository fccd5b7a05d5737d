package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/adhassan/salescast/internal/bootstrap"
	"github.com/adhassan/salescast/internal/config"
	"github.com/adhassan/salescast/internal/observability/logging"
	"github.com/adhassan/salescast/internal/observability/metrics"
)

const retrainTimeout = 5 * time.Minute

func main() {
	cfg := config.Load()
	logger := logging.NewJSONLogger("worker", cfg.LogLevel)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	app, err := bootstrap.New(ctx, cfg)
	if err != nil {
		logger.Error("bootstrap failed", "error", err)
		os.Exit(1)
	}
	defer app.Close()

	workerMetrics := metrics.NewWorkerMetrics("worker")
	metricsMux := http.NewServeMux()
	metricsMux.Handle("/metrics", workerMetrics.Handler())
	metricsServer := &http.Server{
		Addr:    ":" + cfg.WorkerMetricsPort,
		Handler: metricsMux,
	}
	go func() {
		if err := metricsServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("metrics server failed", "error", err)
		}
	}()
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = metricsServer.Shutdown(shutdownCtx)
	}()

	logger.Info("worker subscribed", "subject", cfg.NATSSubject)
	err = app.Queue.SubscribeRetrainRequested(ctx, func(handlerCtx context.Context, datasetID string) error {
		trainCtx, cancel := context.WithTimeout(handlerCtx, retrainTimeout)
		defer cancel()

		if ds, err := app.Datasets.GetByID(trainCtx, datasetID); err == nil {
			workerMetrics.ObserveQueueLag("worker", time.Since(ds.UpdatedAt))
		}

		workerMetrics.StartRetrain()
		start := time.Now()
		summary, err := app.TrainUC.TrainByID(trainCtx, datasetID)
		workerMetrics.FinishRetrain("worker", time.Since(start), err)

		if err != nil {
			logger.Error("retrain failed", "dataset_id", datasetID, "error", err)
			return err
		}
		logger.Info("retrain finished", "dataset_id", datasetID, "rows_used", summary.RowsUsed)
		return nil
	})
	if err != nil {
		logger.Error("worker subscribe failed", "error", err)
		os.Exit(1)
	}
}
