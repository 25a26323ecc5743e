// cmd/worker-manager/main.go
package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"tile-intent-workers/internal/catalog"
	"tile-intent-workers/internal/classifier"
	awsclient "tile-intent-workers/internal/common/aws"
	"tile-intent-workers/internal/common/camunda"
	"tile-intent-workers/internal/common/config"
	"tile-intent-workers/internal/common/database"
	"tile-intent-workers/internal/common/logger"
	"tile-intent-workers/internal/common/observability"
	"tile-intent-workers/internal/fallback"
	"tile-intent-workers/internal/review"

	cu "tile-intent-workers/internal/workers/nlu/classify-utterance"
	fi "tile-intent-workers/internal/workers/nlu/fallback-interpret"
)

// retryWithBackoff attempts to execute a function with exponential backoff
func retryWithBackoff(operation func() error, maxRetries int, initialDelay time.Duration, log logger.Logger, operationName string) error {
	var err error
	delay := initialDelay

	for i := 0; i < maxRetries; i++ {
		err = operation()
		if err == nil {
			return nil
		}

		if i < maxRetries-1 {
			log.Warn(fmt.Sprintf("%s failed, retrying...", operationName), map[string]interface{}{
				"error":       err.Error(),
				"attempt":     i + 1,
				"maxRetries":  maxRetries,
				"nextRetryIn": delay.String(),
			})
			time.Sleep(delay)
			delay *= 2
		}
	}

	return fmt.Errorf("%s failed after %d attempts: %w", operationName, maxRetries, err)
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		bootLog := logger.New("info", "console", "stderr")
		bootLog.Fatal("config load failed", zap.Error(err))
	}

	zapLog := logger.New(cfg.Logging.Level, cfg.Logging.Format, cfg.Logging.Output)
	defer zapLog.Sync()
	log := logger.NewZapAdapter(zapLog).WithFields(map[string]interface{}{
		"app":     cfg.App.Name,
		"version": cfg.App.Version,
	})

	log.Info("Starting worker manager...", map[string]interface{}{
		"environment":    cfg.App.Environment,
		"catalogSources": cfg.Catalog.Sources,
	})

	obs := observability.New(cfg.Metrics.ServiceName)
	defer obs.Shutdown()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// --- Zeebe ---
	zeebe, err := camunda.NewClientWithConfig(ctx, camunda.ConfigFromApp(cfg.Camunda))
	if err != nil {
		zapLog.Fatal("zeebe client failed after retries", zap.Error(err))
	}
	defer zeebe.Close()
	log.Info("Zeebe client connected successfully", nil)

	// --- Data stores, only the ones the configuration asks for ---
	deps := catalog.SourceDeps{
		Config:       cfg.Catalog,
		ProductIndex: cfg.Database.Elasticsearch.ProductIndex,
	}

	if cfg.Database.Redis.Address != "" {
		err = retryWithBackoff(func() error {
			var err error
			deps.Redis, err = database.NewRedis(cfg.Database.Redis)
			if err != nil {
				return err
			}
			return deps.Redis.Ping(ctx)
		}, 10, 2*time.Second, log, "Redis connection")
		if err != nil {
			zapLog.Fatal("redis failed after retries", zap.Error(err))
		}
		defer deps.Redis.Close()
		log.Info("Redis connected successfully", nil)
	}

	if usesSource(cfg, "postgres") {
		err = retryWithBackoff(func() error {
			var err error
			deps.Postgres, err = database.NewPostgres(cfg.Database.Postgres)
			if err != nil {
				return err
			}
			return deps.Postgres.Ping(ctx)
		}, 15, 2*time.Second, log, "PostgreSQL connection")
		if err != nil {
			zapLog.Fatal("postgres failed after retries", zap.Error(err))
		}
		defer deps.Postgres.Close()
		log.Info("PostgreSQL connected successfully", nil)
	}

	if usesSource(cfg, "elasticsearch") {
		err = retryWithBackoff(func() error {
			var err error
			deps.Elasticsearch, err = database.NewElasticsearch(cfg.Database.Elasticsearch)
			if err != nil {
				return err
			}
			return deps.Elasticsearch.Ping(ctx)
		}, 15, 2*time.Second, log, "Elasticsearch connection")
		if err != nil {
			zapLog.Fatal("elasticsearch failed after retries", zap.Error(err))
		}
		log.Info("Elasticsearch connected successfully", nil)
	}

	// --- Catalog ---
	store := catalog.NewStore()
	source, err := catalog.NewSourceChain(cfg.Catalog.Sources, deps)
	if err != nil {
		zapLog.Fatal("catalog source setup failed", zap.Error(err))
	}
	refresher := catalog.NewRefresher(
		source,
		store,
		config.GetDuration(cfg.Catalog.RefreshInterval),
		config.GetDuration(cfg.Catalog.LoadTimeout),
		log,
	)

	// --- Classifier and collaborators ---
	intentClassifier, err := classifier.New(classifier.ConfigFromApp(cfg.Classifier))
	if err != nil {
		zapLog.Fatal("classifier config rejected", zap.Error(err))
	}

	var snsService awsclient.SNSService
	if cfg.Review.Enabled {
		snsClient, err := awsclient.NewSNSClient(ctx, cfg.Review.Region)
		if err != nil {
			log.WithError(err).Warn("SNS client unavailable, review publishing disabled", nil)
		} else {
			snsService = snsClient
		}
	}
	reviewPublisher := review.NewPublisher(cfg.Review, snsService, log)

	interpreter := fallback.NewInterpreter(fallback.ConfigFromApp(cfg.Fallback), deps.Redis, log)

	log.Info("Collaborators initialized", map[string]interface{}{
		"reviewEnabled":   reviewPublisher.Enabled(),
		"fallbackEnabled": interpreter.Enabled(),
	})

	// --- Workers ---
	client := zeebe.GetClient()
	var workers []*camunda.CamundaWorker
	if config.IsWorkerEnabled(cfg, cu.TaskType) {
		workers = append(workers, camunda.NewWorker(client, cu.TaskType, config.GetWorkerConfig(cfg, cu.TaskType),
			cu.NewHandler(cu.LoadConfig(cfg), intentClassifier, store, reviewPublisher, obs, log), log))
	}
	if config.IsWorkerEnabled(cfg, fi.TaskType) {
		workers = append(workers, camunda.NewWorker(client, fi.TaskType, config.GetWorkerConfig(cfg, fi.TaskType),
			fi.NewHandler(fi.LoadConfig(cfg), interpreter, store, obs, log), log))
	}
	log.Info("Workers registered successfully", map[string]interface{}{"count": len(workers)})

	// --- Health & Metrics Server ---
	mux := http.NewServeMux()
	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		writeStatus(w, http.StatusOK, map[string]string{
			"status": "healthy",
			"time":   time.Now().Format(time.RFC3339),
		})
	})
	mux.HandleFunc("/ready", func(w http.ResponseWriter, r *http.Request) {
		snap := store.Current()
		if snap == nil {
			writeStatus(w, http.StatusServiceUnavailable, map[string]string{
				"status": "catalog not loaded",
				"time":   time.Now().Format(time.RFC3339),
			})
			return
		}
		writeStatus(w, http.StatusOK, map[string]string{
			"status":         "ready",
			"catalogVersion": snap.Version(),
			"time":           time.Now().Format(time.RFC3339),
		})
	})
	mux.Handle("/metrics", promhttp.Handler())
	srv := &http.Server{Addr: cfg.Metrics.Address, Handler: mux, ReadHeaderTimeout: 5 * time.Second}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		refresher.Run(gctx)
		return nil
	})
	g.Go(func() error {
		log.Info("Health/Metrics server listening", map[string]interface{}{"address": cfg.Metrics.Address})
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("health/metrics server: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	// --- Graceful Shutdown ---
	<-gctx.Done()
	log.Info("Shutdown signal received, stopping workers...", nil)
	for _, w := range workers {
		w.Stop()
	}
	stop()

	if err := g.Wait(); err != nil {
		log.WithError(err).Error("Worker manager stopped with error", nil)
	}
	log.Info("Worker manager stopped", nil)
}

func usesSource(cfg *config.Config, name string) bool {
	for _, s := range cfg.Catalog.Sources {
		if s == name {
			return true
		}
	}
	return false
}

func writeStatus(w http.ResponseWriter, code int, body map[string]string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(body)
}
