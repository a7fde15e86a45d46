package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chi_middleware "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"golang.org/x/sync/errgroup"

	"github.com/talentwire/interview-gateway/internal/platform/config"
	"github.com/talentwire/interview-gateway/internal/platform/database"
	"github.com/talentwire/interview-gateway/internal/platform/logger"
	"github.com/talentwire/interview-gateway/internal/platform/messagebroker"

	"github.com/talentwire/interview-gateway/internal/interview_service/adapters/gemini"
	"github.com/talentwire/interview-gateway/internal/interview_service/app"
	"github.com/talentwire/interview-gateway/internal/interview_service/repository/postgres"
	transport "github.com/talentwire/interview-gateway/internal/interview_service/transport/http"
)

const (
	serviceName       = "interview_service"
	scoringQueueGroup = "scoring_workers"
	shutdownTimeout   = 10 * time.Second
)

func main() {
	mainCtx, mainCancel := context.WithCancel(context.Background())
	defer mainCancel()

	cfg, err := config.Load(serviceName)
	if err != nil {
		slog.Error("Failed to load configuration", "service", serviceName, "error", err)
		os.Exit(1)
	}

	appLogger := logger.New(cfg.LogLevel)
	appLogger = appLogger.With("service", serviceName)
	appLogger.Info("Starting service...")

	appLogger.Info("Configuration loaded",
		"log_level", cfg.LogLevel,
		"nats_url", cfg.NATSURL,
		"postgres_dsn_present", cfg.PostgresDSN != "",
		"gemini_configured", cfg.GeminiAPIKey != "",
		"http_port", cfg.HTTPPort,
		"metrics_port", cfg.MetricsPort,
	)

	dbPool, err := database.NewDBPool(mainCtx, cfg.PostgresDSN)
	if err != nil {
		appLogger.Error("Failed to initialize database connection pool", "error", err)
		os.Exit(1)
	}
	defer dbPool.Close()
	appLogger.Info("Database connection pool initialized")

	nc, err := messagebroker.NewNATSClient(cfg.NATSURL, appLogger, serviceName)
	if err != nil {
		appLogger.Error("Failed to connect to NATS", "error", err)
		os.Exit(1)
	}
	defer nc.Close()
	appLogger.Info("NATS connection initialized")

	candidateRepo := postgres.NewPgCandidateRepository(dbPool, appLogger)
	jobRepo := postgres.NewPgJobRepository(dbPool, appLogger)
	interviewRepo := postgres.NewPgInterviewRepository(dbPool, appLogger)
	questionRepo := postgres.NewPgQuestionRepository(dbPool, appLogger)
	messageRepo := postgres.NewPgMessageRepository(dbPool, appLogger)

	// The Gemini-backed scorer and classifier are optional: without an API
	// key the classifier runs heuristic-only and completed interviews stay
	// unscored until one is configured.
	var scorer app.Scorer
	var externalClassifier *gemini.WeakAnswerClassifier
	if cfg.GeminiAPIKey != "" {
		generator, err := gemini.NewGenerator(mainCtx, cfg.GeminiAPIKey, cfg.GeminiModel)
		if err != nil {
			appLogger.Error("Failed to initialize Gemini client", "error", err)
			os.Exit(1)
		}
		scorer = gemini.NewScorer(generator, appLogger.With("component", "scorer"))
		externalClassifier = gemini.NewWeakAnswerClassifier(generator, appLogger.With("component", "classifier"))
		appLogger.Info("Gemini client initialized", "model", generator.Model())
	} else {
		appLogger.Warn("GEMINI_API_KEY not set; scoring disabled, classifier heuristic-only")
	}

	classifier := app.NewAnswerClassifier(classifierOrNil(externalClassifier), cfg.ClassifierTimeout, appLogger.With("component", "classifier"))
	rescheduleEvaluator := app.NewRescheduleEvaluator(messageRepo, classifier, appLogger.With("component", "reschedule"))
	completionPublisher := app.NewCompletionPublisher(nc, cfg.ScoringQueueSubject, appLogger.With("component", "completion_publisher"))

	conversation := app.NewConversationService(
		candidateRepo, interviewRepo, questionRepo, messageRepo,
		rescheduleEvaluator, completionPublisher,
		appLogger.With("component", "conversation"),
	)

	pipeline := app.NewScoringPipeline(
		interviewRepo, candidateRepo, jobRepo, questionRepo, messageRepo,
		scorer, cfg.ScoringTimeout,
		appLogger.With("component", "scoring_pipeline"),
	)

	completedEventsChan := make(chan app.InterviewCompletedEvent, 100)
	scoringConsumer := app.NewScoringConsumer(nc, appLogger.With("component", "scoring_consumer"), completedEventsChan)
	workerPool := app.NewScoringWorkerPool(pipeline, completedEventsChan, cfg.ScoringWorkerCount, appLogger.With("component", "scoring_worker"))

	webhookHandler := transport.NewWebhookHandler(conversation, cfg.WebhookHandleTimeout, appLogger)

	router := chi.NewRouter()
	router.Use(chi_middleware.RequestID)
	router.Use(chi_middleware.RealIP)
	router.Use(chi_middleware.Recoverer)
	router.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	webhookHandler.RegisterRoutes(router)

	httpServer := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.HTTPPort),
		Handler:      router,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 20 * time.Second,
	}

	metricsMux := http.NewServeMux()
	metricsMux.Handle("/metrics", promhttp.Handler())
	metricsServer := &http.Server{
		Addr:    fmt.Sprintf(":%d", cfg.MetricsPort),
		Handler: metricsMux,
	}

	g, groupCtx := errgroup.WithContext(mainCtx)

	g.Go(func() error {
		appLogger.Info("Starting webhook HTTP server", "addr", httpServer.Addr)
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("webhook server: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		appLogger.Info("Starting metrics server", "addr", metricsServer.Addr)
		if err := metricsServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("metrics server: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		return scoringConsumer.StartConsuming(groupCtx, cfg.ScoringQueueSubject, scoringQueueGroup)
	})

	g.Go(func() error {
		appLogger.Info("Starting scoring worker pool", "workers", cfg.ScoringWorkerCount)
		return workerPool.Run(groupCtx)
	})

	g.Go(func() error {
		<-groupCtx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		_ = metricsServer.Shutdown(shutdownCtx)
		return httpServer.Shutdown(shutdownCtx)
	})

	appLogger.Info("Service components initialized. Service is ready.")

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	var groupErr error
	select {
	case sig := <-sigCh:
		appLogger.Info("Received termination signal", "signal", sig.String())
	case groupErr = <-watchGroup(g):
		appLogger.Error("A critical component failed, initiating shutdown", "error", groupErr)
	}

	appLogger.Info("Attempting graceful shutdown...")
	mainCancel()

	if err := g.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		appLogger.Error("Error during graceful shutdown of components", "error", err)
	}

	appLogger.Info("Service shutdown complete.")
}

// classifierOrNil avoids handing the app layer a typed-nil interface value.
func classifierOrNil(c *gemini.WeakAnswerClassifier) app.ExternalClassifier {
	if c == nil {
		return nil
	}
	return c
}

// watchGroup monitors an errgroup for early exit.
func watchGroup(g *errgroup.Group) <-chan error {
	errCh := make(chan error, 1)
	go func() {
		errCh <- g.Wait()
	}()
	return errCh
}
