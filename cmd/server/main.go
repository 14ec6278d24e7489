package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"github.com/rammohanpatel/AI-Interviewer/internal/config"
	"github.com/rammohanpatel/AI-Interviewer/internal/feedback"
	"github.com/rammohanpatel/AI-Interviewer/internal/handlers"
	"github.com/rammohanpatel/AI-Interviewer/internal/interviews"
	"github.com/rammohanpatel/AI-Interviewer/internal/jobs"
	"github.com/rammohanpatel/AI-Interviewer/internal/llm"
	_ "github.com/rammohanpatel/AI-Interviewer/internal/llm/gemini"
	"github.com/rammohanpatel/AI-Interviewer/internal/metrics"
	"github.com/rammohanpatel/AI-Interviewer/internal/prompts"
	"github.com/rammohanpatel/AI-Interviewer/internal/questions"
	"github.com/rammohanpatel/AI-Interviewer/internal/repositories"
	"github.com/rammohanpatel/AI-Interviewer/internal/repositories/memory"
	mongorepo "github.com/rammohanpatel/AI-Interviewer/internal/repositories/mongo"
	"github.com/rammohanpatel/AI-Interviewer/internal/routers"
)

type repoSet struct {
	feedback        repositories.FeedbackRepository
	codingFeedback  repositories.CodingFeedbackRepository
	interviews      repositories.InterviewRepository
	codingInterview repositories.CodingInterviewRepository
}

// initRepositories connects to Mongo when MONGO_URI is set, otherwise falls
// back to in-memory repositories so the service still runs (useful for local
// development without a database; nothing survives a restart).
func initRepositories(ctx context.Context, cfg *config.Config, logger *zap.Logger) (*repoSet, func(), error) {
	if cfg.MongoURI == "" {
		logger.Warn("MONGO_URI not set, using in-memory repositories")
		return &repoSet{
			feedback:        memory.NewFeedbackRepo(),
			codingFeedback:  memory.NewCodingFeedbackRepo(),
			interviews:      memory.NewInterviewRepo(),
			codingInterview: memory.NewCodingInterviewRepo(),
		}, func() {}, nil
	}

	client, err := mongorepo.NewClient(ctx)
	if err != nil {
		return nil, nil, err
	}

	feedbackRepo, err := mongorepo.NewFeedbackRepo(client)
	if err != nil {
		return nil, nil, err
	}
	codingFeedbackRepo, err := mongorepo.NewCodingFeedbackRepo(client)
	if err != nil {
		return nil, nil, err
	}
	interviewRepo, err := mongorepo.NewInterviewRepo(client)
	if err != nil {
		return nil, nil, err
	}
	codingInterviewRepo, err := mongorepo.NewCodingInterviewRepo(client)
	if err != nil {
		return nil, nil, err
	}

	cleanup := func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := client.Disconnect(shutdownCtx); err != nil {
			logger.Error("failed to disconnect mongo client", zap.Error(err))
		}
	}

	return &repoSet{
		feedback:        feedbackRepo,
		codingFeedback:  codingFeedbackRepo,
		interviews:      interviewRepo,
		codingInterview: codingInterviewRepo,
	}, cleanup, nil
}

func registerRoutes(
	router *chi.Mux,
	interviewHandler *handlers.InterviewHandler,
	feedbackHandler *handlers.FeedbackHandler,
	codingHandler *handlers.CodingHandler,
	liveHandler *handlers.LiveHandler,
	healthHandler *handlers.HealthHandler,
) {
	routers.HealthRoutes(router, healthHandler)
	routers.InterviewRoutes(router, interviewHandler, feedbackHandler, liveHandler)
	routers.CodingRoutes(router, codingHandler, liveHandler)
	router.Handle("/metrics", metrics.Handler())
}

func main() {
	_ = godotenv.Load()

	logger, _ := zap.NewProduction()
	defer logger.Sync()

	cfg, err := config.LoadConfig()
	if err != nil {
		logger.Fatal("Failed to load configuration", zap.Error(err))
	}

	logger.Info("Configuration loaded",
		zap.String("provider", cfg.Provider),
		zap.Duration("feedback_wait_bound", cfg.FeedbackWaitBound))

	// prompt manager
	promptManager, err := prompts.NewPromptManager()
	if err != nil {
		logger.Fatal("Failed to initialize prompt manager", zap.Error(err))
	}

	// AI provider based on configuration
	aiProvider, err := llm.NewProvider(cfg.Provider)
	if err != nil {
		logger.Fatal("Failed to initialize AI provider", zap.Error(err))
	}
	oracle := llm.NewScoringClient(aiProvider)

	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	repos, cleanup, err := initRepositories(ctx, cfg, logger)
	cancel()
	if err != nil {
		logger.Fatal("Failed to initialize repositories", zap.Error(err))
	}
	defer cleanup()

	questionBank, err := questions.NewBank()
	if err != nil {
		logger.Fatal("Failed to load question bank", zap.Error(err))
	}

	generator := feedback.NewGenerator(oracle, promptManager, repos.feedback, repos.codingFeedback, logger)
	query := feedback.NewQuery(repos.interviews, repos.feedback)
	interviewService := interviews.NewService(aiProvider, promptManager, repos.interviews, logger)

	interviewHandler := handlers.NewInterviewHandler(interviewService, repos.interviews, logger)
	feedbackHandler := handlers.NewFeedbackHandler(generator, query, repos.feedback, cfg.FeedbackWaitBound, logger)
	codingHandler := handlers.NewCodingHandler(repos.codingInterview, repos.codingFeedback, generator, questionBank, cfg.FeedbackWaitBound, logger)
	liveHandler := handlers.NewLiveHandler(generator, repos.codingInterview, logger)
	healthHandler := handlers.NewHealthHandler(aiProvider, promptManager, cfg)

	// reconciler sweeps completed interviews that still lack feedback
	reconciler := jobs.NewFeedbackReconcilerJob(repos.codingInterview, repos.codingFeedback, generator, &jobs.ReconcilerConfig{
		Schedule:   cfg.ReconcilerSchedule,
		Enabled:    cfg.ReconcilerEnabled,
		MaxRetries: cfg.ReconcilerRetries,
		RunTimeout: 5 * time.Minute,
	}, logger)
	if cfg.ReconcilerEnabled {
		if err := reconciler.Start(); err != nil {
			logger.Error("Failed to start feedback reconciler job", zap.Error(err))
		} else {
			logger.Info("Feedback reconciler job started", zap.String("schedule", cfg.ReconcilerSchedule))
		}
	}

	router := chi.NewRouter()

	// cors middleware
	router.Use(cors.Handler(cors.Options{
		AllowedOrigins:   cfg.AllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Content-Type", "Authorization"},
		AllowCredentials: true,
	}))

	router.Use(middleware.RequestID, middleware.RealIP, middleware.Logger, middleware.Recoverer, middleware.Timeout(60*time.Second))

	registerRoutes(router, interviewHandler, feedbackHandler, codingHandler, liveHandler, healthHandler)

	serverAddr := ":" + cfg.Port

	// http server with timeouts
	server := &http.Server{
		Addr:         serverAddr,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// starting server in a goroutine
	go func() {
		logger.Info("Interview service starting", zap.String("addr", serverAddr))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("failed to start server", zap.Error(err))
		}
	}()

	// wait for interrupt signal to gracefully shutdown the server
	shutdownChan := make(chan os.Signal, 1)
	signal.Notify(shutdownChan, syscall.SIGINT, syscall.SIGTERM)
	<-shutdownChan

	logger.Info("Interview service shutting down...")

	if cfg.ReconcilerEnabled {
		reconciler.Stop()
		logger.Info("Feedback reconciler job stopped")
	}

	// graceful shutdown with timeout
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Fatal("server forced to shutdown", zap.Error(err))
	}

	logger.Info("Interview service exited")
}
