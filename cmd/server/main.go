package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"golang.org/x/net/http2"
	"golang.org/x/net/http2/h2c"

	gen "wellbeing/internal/adapters/generator"
	httpadapter "wellbeing/internal/adapters/http"
	"wellbeing/internal/adapters/local"
	pg "wellbeing/internal/adapters/postgres"
	"wellbeing/internal/config"
	"wellbeing/internal/logging"
	"wellbeing/internal/metrics"
	"wellbeing/internal/ports"
	"wellbeing/internal/recommend"
	"wellbeing/internal/scoring"
	"wellbeing/internal/services/assessments"
	"wellbeing/internal/workers/scorerunner"
)

func main() {
	cfg, cfgErr := config.Load()
	logger := logging.New(cfg.LogLevel, cfg.LogFormat, os.Stdout)
	slog.SetDefault(logger)
	if cfgErr != nil {
		logger.Error("invalid configuration", "error", cfgErr)
		os.Exit(1)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	store, err := openStore(ctx, cfg, logger)
	if err != nil {
		logger.Error("storage init failed", "engine", cfg.StorageEngine, "error", err)
		os.Exit(1)
	}
	defer store.Close()

	m := metrics.Default()
	var remote ports.RecommendationGenerator
	if cfg.GeneratorURL != "" {
		client, err := gen.NewClient(gen.Config{URL: cfg.GeneratorURL, APIKey: cfg.GeneratorAPIKey, Timeout: cfg.GeneratorTimeout})
		if err != nil {
			logger.Error("generator client", "error", err)
			os.Exit(1)
		}
		remote = client
	} else {
		logger.Info("GENERATOR_URL not set, serving local recommendations only")
	}

	engine, err := scoring.NewEngine(scoring.DefaultWeights(), logger)
	if err != nil {
		logger.Error("weight table", "error", err)
		os.Exit(1)
	}
	svc := assessments.New(assessments.Deps{
		Store:       store,
		Engine:      engine,
		Generator:   recommend.NewGenerator(remote, recommend.Options{Timeout: cfg.GeneratorTimeout, Logger: logger, Metrics: m}),
		Metrics:     m,
		Logger:      logger,
		AutoEnqueue: cfg.ScoreWorkers > 0,
	})

	srv := httpadapter.New(svc, httpadapter.Options{Logger: logger, RequestTimeout: cfg.GeneratorTimeout + 20*time.Second})
	r := chi.NewRouter()
	r.Mount("/", srv.Routes())

	var handler http.Handler = r
	if cfg.EnableH2C {
		handler = h2c.NewHandler(r, &http2.Server{})
	}

	workerCtx, stopWorkers := context.WithCancel(ctx)
	defer stopWorkers()
	workers := scorerunner.Run(workerCtx, store, svc, scorerunner.Options{
		Concurrency:  cfg.ScoreWorkers,
		PollInterval: 500 * time.Millisecond,
		Logger:       logger,
		Metrics:      m,
	})
	if cfg.ScoreWorkers > 0 {
		logger.Info("score workers started", "count", cfg.ScoreWorkers)
	}

	httpSrv := &http.Server{Addr: cfg.ListenAddr, Handler: handler, ReadHeaderTimeout: 10 * time.Second}
	errCh := make(chan error, 1)
	go func() { errCh <- httpSrv.ListenAndServe() }()
	logger.Info("listening", "addr", cfg.ListenAddr, "engine", cfg.StorageEngine, "h2c", cfg.EnableH2C)

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	select {
	case sig := <-sigCh:
		logger.Info("shutting down", "signal", sig.String())
	case err := <-errCh:
		if !errors.Is(err, http.ErrServerClosed) {
			logger.Error("server error", "error", err)
		}
	}

	shutdownCtx, done := context.WithTimeout(context.Background(), 10*time.Second)
	defer done()
	if err := httpSrv.Shutdown(shutdownCtx); err != nil {
		logger.Warn("http shutdown", "error", err)
	}
	stopWorkers()
	workers.Wait()
}

func openStore(ctx context.Context, cfg config.Config, logger *slog.Logger) (ports.Store, error) {
	if cfg.StorageEngine != config.EnginePostgres {
		logger.Info("using local store", "path", cfg.LocalStorePath)
		return local.Open(cfg.LocalStorePath)
	}
	db, err := pg.Connect(ctx, cfg.DatabaseURL)
	if err != nil {
		return nil, err
	}
	if cfg.MigrateOnStart {
		if err := db.Migrate(ctx); err != nil {
			db.Close()
			return nil, err
		}
	}
	return db, nil
}
