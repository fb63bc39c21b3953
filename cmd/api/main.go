package main

import (
	"context"
	"flag"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/dvloznov/spendwise/internal/advice"
	"github.com/dvloznov/spendwise/internal/api"
	"github.com/dvloznov/spendwise/internal/categorizer"
	"github.com/dvloznov/spendwise/internal/config"
	"github.com/dvloznov/spendwise/internal/gcs"
	"github.com/dvloznov/spendwise/internal/jobs/inmemory"
	"github.com/dvloznov/spendwise/internal/logger"
	"github.com/dvloznov/spendwise/internal/pipeline"
	"github.com/rs/zerolog"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log := logger.New()
		log.Fatal().Err(err).Msg("Failed to load configuration")
	}

	// Parse command-line flags
	port := flag.String("port", cfg.Port, "HTTP server port (or set PORT env)")
	flag.Parse()
	cfg.Port = *port

	log := logger.NewWithConfig(logger.Config{Level: cfg.LogLevel, Pretty: cfg.LogPretty})

	if err := cfg.Validate(); err != nil {
		log.Fatal().Err(err).Msg("Invalid configuration")
	}

	ctx := logger.WithContext(context.Background(), log)

	// The strategy is decided once; a classifier that fails here is not retried.
	strategy := categorizer.NewStrategy(ctx, categorizer.StrategyConfig{
		Mode:    cfg.ClassifierMode,
		APIKey:  cfg.GeminiAPIKey,
		Model:   cfg.ClassifierModel,
		Timeout: cfg.ClassifierTimeout,
	}, log)

	analyzer := pipeline.New(pipeline.Deps{
		Categorizer: categorizer.New(strategy, cfg.ClassifierWorkers, log),
		Advisor:     newAdvisor(ctx, cfg, log),
		Fetcher:     gcs.NewClient(cfg.GCSCredentialsFile, cfg.MaxUploadBytes),
	})

	// Initialize job infrastructure
	jobStore := inmemory.NewStore()
	jobQueue := inmemory.NewQueue(inmemory.Config{
		BufferSize: cfg.JobQueueSize,
		Workers:    cfg.JobWorkers,
		MaxRetries: cfg.JobMaxRetries,
	}, jobStore)

	workerCtx, cancelWorker := context.WithCancel(ctx)
	defer cancelWorker()

	if err := jobQueue.Start(workerCtx, pipeline.NewJobHandler(analyzer)); err != nil {
		log.Fatal().Err(err).Msg("Failed to start job workers")
	}

	router := api.NewRouter(api.RouterConfig{
		Analyzer:       analyzer,
		Strategy:       strategy,
		Store:          jobStore,
		Publisher:      jobQueue,
		MaxUploadBytes: cfg.MaxUploadBytes,
		Log:            log,
	})

	server := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      router,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 5 * time.Minute,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Info().Str("port", cfg.Port).Str("classifier", strategy.Name()).Msg("Starting API server")
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("Failed to start server")
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("Server forced to shutdown")
	}

	// Stop job queue and wait for in-flight jobs
	if err := jobQueue.Stop(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("Error stopping job queue")
	}
	cancelWorker()

	log.Info().Msg("Server exited")
}

// newAdvisor returns the configured advice generator. A Gemini client that
// cannot be created turns into advice.Unavailable so every run still
// completes with the failure text.
func newAdvisor(ctx context.Context, cfg *config.Config, log zerolog.Logger) advice.Generator {
	if !cfg.AdviceEnabled {
		log.Info().Msg("Advice generation disabled")
		return advice.Disabled{}
	}

	gen, err := advice.NewGeminiGenerator(ctx, cfg.GeminiAPIKey, cfg.AdviceModel)
	if err != nil {
		log.Error().Err(err).Msg("Failed to initialize advice generator")
		return advice.Unavailable{Reason: err}
	}
	return gen
}
