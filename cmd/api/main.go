package main

import (
	"context"
	"crypto/tls"
	"database/sql"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	openai "github.com/sashabaranov/go-openai"

	"github.com/jdhruv555/aura-assist/internal/api/handlers"
	"github.com/jdhruv555/aura-assist/internal/api/router"
	"github.com/jdhruv555/aura-assist/internal/asr"
	appconfig "github.com/jdhruv555/aura-assist/internal/config"
	"github.com/jdhruv555/aura-assist/internal/dashboard"
	"github.com/jdhruv555/aura-assist/internal/nlu"
	"github.com/jdhruv555/aura-assist/internal/observability/metrics"
	"github.com/jdhruv555/aura-assist/internal/persona"
	"github.com/jdhruv555/aura-assist/internal/pipeline"
	"github.com/jdhruv555/aura-assist/internal/planner"
	"github.com/jdhruv555/aura-assist/internal/profile"
	"github.com/jdhruv555/aura-assist/internal/ranker"
	"github.com/jdhruv555/aura-assist/internal/stream"
	"github.com/jdhruv555/aura-assist/pkg/logging"
)

func main() {
	_ = godotenv.Load()

	// Load configuration
	cfg := appconfig.Load()

	// Initialize logger
	logger := logging.New(cfg.LogLevel)
	logger.Info("starting aura-assist API server",
		"env", cfg.Env,
		"port", cfg.Port,
	)

	if cfg.DatabaseURL == "" {
		logger.Error("DATABASE_URL is required")
		os.Exit(1)
	}

	db, err := sql.Open("pgx", cfg.DatabaseURL)
	if err != nil {
		logger.Error("failed to open database", "error", err)
		os.Exit(1)
	}
	defer func() { _ = db.Close() }()

	pingCtx, cancelPing := context.WithTimeout(context.Background(), 10*time.Second)
	if err := db.PingContext(pingCtx); err != nil {
		cancelPing()
		logger.Error("failed to ping database", "error", err)
		os.Exit(1)
	}
	cancelPing()

	redisOpts := &redis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
	}
	if cfg.RedisTLS {
		redisOpts.TLSConfig = &tls.Config{MinVersion: tls.VersionTLS12}
	}
	redisClient := redis.NewClient(redisOpts)
	defer func() { _ = redisClient.Close() }()

	// Metrics registry
	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector())
	registry.MustRegister(collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	pipelineMetrics := metrics.NewPipelineMetrics(registry)

	// Storage
	profileStore := profile.NewCachedStore(profile.NewPostgresStore(db), redisClient, cfg.ProfileCacheTTL, logger)
	historyStore := profile.NewPostgresHistoryStore(db)
	personaStore := persona.NewPostgresStore(db)

	selector := persona.NewSelector(personaStore, logger,
		persona.WithScoreThreshold(cfg.PersonaScoreThreshold),
		persona.WithHistoryBonus(cfg.PersonaHistoryBonus),
	)
	loadCtx, cancelLoad := context.WithTimeout(context.Background(), 10*time.Second)
	if err := selector.Load(loadCtx); err != nil {
		logger.Warn("failed to warm persona performance table, starting cold", "error", err)
	}
	cancelLoad()

	// Language understanding and dialogue planning: OpenAI-backed when a
	// key is configured, rule/template fallbacks otherwise.
	var (
		interpreter *nlu.Interpreter
		generator   planner.OptionGenerator
		predictor   planner.ReactionPredictor
	)
	if cfg.OpenAIAPIKey != "" {
		client := openai.NewClient(cfg.OpenAIAPIKey)
		extractor := nlu.NewOpenAIExtractor(client, cfg.OpenAIModel)
		interpreter = nlu.NewInterpreter(extractor, extractor, extractor, logger)
		generator = planner.NewOpenAIGenerator(client, cfg.OpenAIModel, persona.Description)
		predictor = planner.NewOpenAIPredictor(client, cfg.OpenAIModel)
		logger.Info("using OpenAI-backed understanding and planning", "model", cfg.OpenAIModel)
	} else {
		interpreter = nlu.NewInterpreter(nlu.RuleIntentClassifier{}, nlu.RuleSentimentAnalyzer{}, nlu.RuleEntityExtractor{}, logger)
		generator = planner.TemplateGenerator{}
		predictor = planner.HeuristicPredictor{}
		logger.Warn("OPENAI_API_KEY not set, using rule-based understanding and template planning")
	}

	dialoguePlanner := planner.NewPlanner(generator, predictor, logger)
	responseRanker := ranker.NewRanker(logger)
	hub := dashboard.NewHub(logger)

	orchestrator := pipeline.NewOrchestrator(pipeline.Deps{
		Interpreter: interpreter,
		Selector:    selector,
		Planner:     dialoguePlanner,
		Ranker:      responseRanker,
		Profiles:    profileStore,
		History:     historyStore,
		Emitter:     hub,
		Metrics:     pipelineMetrics,
		Logger:      logger,
	}, pipeline.Config{
		MaxTurnLatency: cfg.MaxTurnLatency,
		TopResponses:   cfg.TopResponses,
	})

	// Initialize handlers
	callsHandler := handlers.NewCallsHandler(orchestrator, logger)
	streamHandler := stream.NewHandler(orchestrator, asr.PassthroughTranscriber{}, cfg.SilenceEnergy, cfg.SilenceHold, logger)

	// Setup router
	routerCfg := &router.Config{
		Logger:             logger,
		CallsHandler:       callsHandler,
		StreamHandler:      streamHandler,
		DashboardHub:       hub,
		MetricsHandler:     promhttp.HandlerFor(registry, promhttp.HandlerOpts{}),
		CORSAllowedOrigins: cfg.CORSAllowOrigins,
	}
	r := router.New(routerCfg)

	// Create HTTP server
	srv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      r,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Start server in a goroutine
	go func() {
		logger.Info("server listening", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	// Wait for interrupt signal to gracefully shutdown the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("shutting down server...")

	// Graceful shutdown with timeout
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.Error("server forced to shutdown", "error", err)
		os.Exit(1)
	}

	logger.Info("server stopped")
	fmt.Println("Server exited gracefully")
}
