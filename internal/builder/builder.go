package builder

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/futig/interview-backend/internal/api"
	adminapi "github.com/futig/interview-backend/internal/api/admin"
	reportapi "github.com/futig/interview-backend/internal/api/report"
	sessionapi "github.com/futig/interview-backend/internal/api/session"
	"github.com/futig/interview-backend/internal/compactor"
	"github.com/futig/interview-backend/internal/config"
	"github.com/futig/interview-backend/internal/integration/callback"
	"github.com/futig/interview-backend/internal/integration/llm"
	"github.com/futig/interview-backend/internal/integration/search"
	"github.com/futig/interview-backend/internal/integration/vision"
	domain "github.com/futig/interview-backend/internal/interview"
	"github.com/futig/interview-backend/internal/metrics"
	"github.com/futig/interview-backend/internal/pkg/formatter"
	"github.com/futig/interview-backend/internal/pkg/validator"
	"github.com/futig/interview-backend/internal/prefetch"
	"github.com/futig/interview-backend/internal/repository"
	"github.com/futig/interview-backend/internal/scenario"
	"github.com/futig/interview-backend/internal/status"
	"github.com/futig/interview-backend/internal/usecase/interview"
	"go.uber.org/zap"
)

func Build() (*App, error) {
	ctx := context.Background()

	cfg, err := config.LoadConfig()
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}

	logger, err := setupLogger(cfg.LogLevel)
	if err != nil {
		return nil, fmt.Errorf("setup logger: %w", err)
	}

	logger.Info("Building application",
		zap.String("environment", cfg.Environment),
		zap.String("server_addr", cfg.ServerAddr),
	)

	// Setup database connection
	db, err := setupDatabase(ctx, cfg, logger)
	if err != nil {
		return nil, fmt.Errorf("setup database: %w", err)
	}

	// Run database migrations
	logger.Info("Running database migrations")
	if err := repository.RunMigrations(cfg.DatabaseURL); err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}
	logger.Info("Database migrations completed successfully")

	// Initialize repositories
	sessionRepo := repository.NewSessionPostgres(db)
	reportRepo := repository.NewReportPostgres(db)
	summaryRepo := repository.NewSummaryPostgres(db)
	logger.Info("Repositories initialized")

	// Load scenarios
	scenarios, err := scenario.NewLoader(ctx, cfg.ScenariosDir)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("load scenarios: %w", err)
	}
	logger.Info("Scenarios loaded", zap.Int("count", len(scenarios.List())))

	// Initialize connectors
	callbackConnector := callback.NewConnector(cfg.CallbackConnectorCfg, logger)
	collector := metrics.NewCollector(metrics.DefaultCapacity)

	// Capabilities left nil stay disabled
	var llmConnector interview.LLMConnector
	var visionConnector interview.VisionConnector
	var searchConnector compactor.Searcher

	if cfg.EnableMocks {
		logger.Info("Using mock connectors for external services")
		llmConnector = llm.NewMockConnector(logger)
		visionConnector = vision.NewMockConnector(logger)
		searchConnector = search.NewMockConnector(logger)
	} else {
		logger.Info("Using real connectors for external services")
		if cfg.LLMConnectorCfg.Configured() {
			llmConnector = llm.NewConnector(cfg.LLMConnectorCfg, collector, logger)
		} else {
			logger.Warn("LLM API key is not configured, question generation is disabled")
		}
		if cfg.VisionConnectorCfg.Enabled {
			visionConnector = vision.NewConnector(cfg.VisionConnectorCfg, logger)
		}
		searchConnector = search.NewConnector(cfg.SearchConnectorCfg, logger)
	}

	// Initialize domain services
	engine := domain.NewEngine(domain.DefaultRules())
	contexts := compactor.New(
		cfg.InterviewCfg,
		cfg.LLMConnectorCfg.MaxTokensSummary,
		llmConnector,
		searchConnector,
		summaryRepo,
		engine,
	)
	prefetchCache := prefetch.NewCache(cfg.InterviewCfg.PrefetchTTL)
	statusTracker := status.NewTracker(cfg.InterviewCfg.StatusTTL)

	// Initialize validators
	requestValidator := validator.NewValidator(cfg.InterviewCfg, cfg.DocumentCfg)
	logger.Info("Validators initialized")

	// Initialize use cases
	interviewUC := interview.NewUsecase(
		interview.Config{
			Interview:         cfg.InterviewCfg,
			Documents:         cfg.DocumentCfg,
			MaxTokensQuestion: cfg.LLMConnectorCfg.MaxTokensQuestion,
			MaxTokensReport:   cfg.LLMConnectorCfg.MaxTokensReport,
			ReportTimeout:     cfg.LLMConnectorCfg.ReportTimeout,
		},
		sessionRepo,
		reportRepo,
		summaryRepo,
		scenarios,
		engine,
		contexts,
		prefetchCache,
		statusTracker,
		collector,
		requestValidator,
		llmConnector,
		visionConnector,
	)
	logger.Info("Use cases initialized")

	// Setup API handlers
	handlers := api.Handlers{
		Session: sessionapi.NewHandler(interviewUC, cfg.DocumentCfg),
		Report:  reportapi.NewHandler(interviewUC, callbackConnector, formatter.NewFactory(cfg.ReportFontPath)),
		Admin:   adminapi.NewHandler(interviewUC),
	}
	logger.Info("API handlers initialized")

	// Setup router
	router := api.SetupRouter(handlers, api.RouterOptions{
		RequestTimeout: cfg.RequestTimeout,
		AllowedOrigins: cfg.CORSAllowedOrigins,
	}, logger)
	logger.Info("HTTP router configured")

	// Create HTTP server; report generation bounds the write timeout
	server := &http.Server{
		Addr:         cfg.ServerAddr,
		Handler:      router,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: cfg.RequestTimeout + 10*time.Second,
		IdleTimeout:  60 * time.Second,
	}

	logger.Info("Application built successfully",
		zap.String("environment", cfg.Environment),
		zap.Bool("llm_enabled", llmConnector != nil),
		zap.Bool("vision_enabled", visionConnector != nil),
		zap.Bool("search_enabled", searchConnector.Enabled()),
	)

	return &App{
		server:     server,
		db:         db,
		background: interviewUC,
		logger:     logger,
	}, nil
}
