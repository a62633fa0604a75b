// File: cmd/worker/main.go
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"smart-support-router/internal/config"
	"smart-support-router/internal/domain/ports/adapter"
	"smart-support-router/internal/infra/adapters/ml"
	"smart-support-router/internal/infra/adapters/notify"
	"smart-support-router/internal/infra/logging"
	"smart-support-router/internal/infra/metrics"
	red "smart-support-router/internal/infra/redis"
	"smart-support-router/internal/infra/worker"
)

func main() {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// ---- CLI flags ----
	cfgPath := flag.String("config", "config.yaml", "path to YAML config file")
	devMode := flag.Bool("dev", false, "enable developer mode (console logs)")
	flag.Parse()

	cfg, err := config.LoadConfig(*cfgPath, *devMode)
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	logger := logging.New(cfg.Log, cfg.Runtime.Dev)
	metrics.MustRegister()

	// ---- Redis ----
	redisClient, err := red.NewClient(ctx, &cfg.Redis)
	if err != nil {
		logger.Fatal().Err(err).Msg("redis")
	}
	defer redisClient.Close()

	locker := red.NewLocker(redisClient)
	store := red.NewTicketStore(redisClient, &cfg.Redis)
	keys := store.Keys()

	// ---- Classification (primary optional, fallback always) ----
	var primary adapter.Classifier
	if cfg.ML.APIKey != "" {
		primary, err = ml.NewZeroShotClassifier(&cfg.ML)
		if err != nil {
			logger.Fatal().Err(err).Msg("zero-shot classifier")
		}
		logger.Info().Str("base_url", cfg.ML.BaseURL).Str("model", cfg.ML.Model).Msg("primary classifier configured")
	} else {
		logger.Info().Msg("no ml.api_key set, keyword fallback only")
	}
	classifier := ml.NewFailoverClassifier(primary, ml.NewKeywordClassifier(), cfg.ML.Timeout, logger)

	// ---- Notification ----
	var notifier adapter.Notifier
	if cfg.Notify.SlackWebhookURL != "" {
		notifier, err = notify.NewSlackNotifier(&cfg.Notify)
		if err != nil {
			logger.Fatal().Err(err).Msg("slack notifier")
		}
		logger.Info().Msg("slack webhook configured")
	} else {
		notifier = notify.NewNoopNotifier(logger)
	}

	pool := worker.NewPool(cfg.Notify.PoolWorkers, logger)
	pool.Start(ctx)

	// ---- Processor instances ----
	opts := worker.Options{
		DequeueTimeout:    cfg.Worker.DequeueTimeout,
		LockTTL:           cfg.Worker.ProcessingLockTTL,
		AlertThreshold:    cfg.Notify.Threshold,
		NotifyTimeout:     cfg.Notify.Timeout,
		ProcessingLockKey: keys.ProcessingLock,
	}
	var wg sync.WaitGroup
	for i := 0; i < cfg.Worker.Instances; i++ {
		proc := worker.NewProcessor(store, locker, classifier, notifier, pool, opts, logger)
		wg.Add(1)
		go func() {
			defer wg.Done()
			_ = proc.Run(ctx)
		}()
	}
	logger.Info().Int("instances", cfg.Worker.Instances).Msg("worker started")

	// ---- Health/metrics endpoint ----
	mux := http.NewServeMux()
	mux.HandleFunc("/health", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("OK"))
	})
	mux.Handle("/metrics", promhttp.Handler())
	metricsServer := &http.Server{Addr: fmt.Sprintf(":%d", cfg.Worker.MetricsPort), Handler: mux}
	go func() {
		if err := metricsServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error().Err(err).Msg("metrics server error")
		}
	}()

	// ---- Graceful shutdown ----
	sigc := make(chan os.Signal, 1)
	signal.Notify(sigc, syscall.SIGINT, syscall.SIGTERM)
	<-sigc
	logger.Info().Msg("shutdown requested")
	cancel()
	wg.Wait()
	pool.Stop()
	_ = metricsServer.Close()
}
