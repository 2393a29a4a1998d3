package config

import (
	"flag"
	"fmt"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	pkgRetry "github.com/futig/interview-backend/internal/pkg/retry"
	"github.com/joho/godotenv"
)

// Config holds the application configuration
type Config struct {
	// Server configuration
	ServerAddr string `env:"SERVER_ADDR,notEmpty"`
	// RequestTimeout bounds synchronous handlers; report generation is the slowest
	RequestTimeout     time.Duration `env:"SERVER_REQUEST_TIMEOUT" envDefault:"300s"`
	CORSAllowedOrigins string        `env:"CORS_ALLOWED_ORIGINS" envDefault:"*"`

	// Database configuration
	DatabaseURL         string        `env:"DATABASE_URL,notEmpty"`
	DBMaxConns          int           `env:"DB_MAX_CONNS" envDefault:"25"`
	DBMinConns          int           `env:"DB_MIN_CONNS" envDefault:"5"`
	DBMaxConnLifetime   time.Duration `env:"DB_MAX_CONN_LIFETIME" envDefault:"1h"`
	DBMaxConnIdleTime   time.Duration `env:"DB_MAX_CONN_IDLE_TIME" envDefault:"30m"`
	DBHealthCheckPeriod time.Duration `env:"DB_HEALTH_CHECK_PERIOD" envDefault:"1m"`

	// External service configurations
	LLMConnectorCfg      LLMConnectorConfig      `envPrefix:"LLM_"`
	SearchConnectorCfg   SearchConnectorConfig   `envPrefix:"SEARCH_"`
	VisionConnectorCfg   VisionConnectorConfig   `envPrefix:"VISION_"`
	CallbackConnectorCfg CallbackConnectorConfig `envPrefix:"CALLBACK_"`

	// Interview flow tuning
	InterviewCfg InterviewConfig `envPrefix:"INTERVIEW_"`

	// Document upload limits
	DocumentCfg DocumentConfig `envPrefix:"DOCUMENT_"`

	// TTF font with CJK glyphs used by the PDF export
	ReportFontPath string `env:"REPORT_FONT_PATH" envDefault:"fonts/NotoSansSC-Regular.ttf"`

	// Directory with builtin/ and custom/ scenario files
	ScenariosDir string `env:"SCENARIOS_DIR" envDefault:"scenarios"`

	// Logging configuration
	LogLevel string `env:"LOG_LEVEL,notEmpty"`

	// Mock configuration
	EnableMocks bool `env:"ENABLE_MOCKS" envDefault:"false"`

	// Environment (set from flag, not from env var)
	Environment string
}

type LLMConnectorConfig struct {
	APIKey            string        `env:"API_KEY"`
	BaseURL           string        `env:"BASE_URL"`
	Model             string        `env:"MODEL" envDefault:"claude-sonnet-4-20250514"`
	Timeout           time.Duration `env:"TIMEOUT" envDefault:"90s"`
	MaxTokensDefault  int           `env:"MAX_TOKENS_DEFAULT" envDefault:"2000"`
	MaxTokensQuestion int           `env:"MAX_TOKENS_QUESTION" envDefault:"800"`
	MaxTokensReport   int           `env:"MAX_TOKENS_REPORT" envDefault:"4000"`
	MaxTokensSummary  int           `env:"MAX_TOKENS_SUMMARY" envDefault:"500"`
	ReportTimeout     time.Duration `env:"REPORT_TIMEOUT" envDefault:"180s"`
	// ShrinkRetryMinLen is the prompt length (in runes) above which a timed out call is retried once with a shorter prompt
	ShrinkRetryMinLen int     `env:"SHRINK_RETRY_MIN_LEN" envDefault:"5000"`
	ShrinkRatio       float64 `env:"SHRINK_RATIO" envDefault:"0.7"`
	// RequestsPerSecond throttles outgoing calls, 0 disables the limiter
	RequestsPerSecond float64 `env:"REQUESTS_PER_SECOND" envDefault:"0"`
	Burst             int     `env:"BURST" envDefault:"2"`
}

// Configured reports whether a real model is available
func (c LLMConnectorConfig) Configured() bool {
	return c.APIKey != "" && !strings.HasPrefix(c.APIKey, "your-")
}

type SearchConnectorConfig struct {
	HTTPClientConfig
	Enabled    bool                 `env:"ENABLED" envDefault:"false"`
	Endpoint   string               `env:"ENDPOINT" envDefault:"/search"`
	MaxResults int                  `env:"MAX_RESULTS" envDefault:"3"`
	Retry      pkgRetry.RetryConfig `envPrefix:"RETRY_"`
}

type VisionConnectorConfig struct {
	HTTPClientConfig
	Enabled        bool                 `env:"ENABLED" envDefault:"false"`
	Endpoint       string               `env:"ENDPOINT" envDefault:"/chat/completions"`
	Model          string               `env:"MODEL" envDefault:"glm-4v-flash"`
	MaxImageSizeMB float64              `env:"MAX_IMAGE_SIZE_MB" envDefault:"10"`
	MaxTokens      int                  `env:"MAX_TOKENS" envDefault:"1000"`
	Retry          pkgRetry.RetryConfig `envPrefix:"RETRY_"`
}

type CallbackConnectorConfig struct {
	HTTPClientConfig
	Retry pkgRetry.RetryConfig `envPrefix:"RETRY_"`
}

type HTTPClientConfig struct {
	RequestTimeout        time.Duration `env:"TIMEOUT" envDefault:"60s"`
	ConnTimeout           time.Duration `env:"CONN_TIMEOUT" envDefault:"10s"`
	KeepAlive             time.Duration `env:"KEEP_ALIVE" envDefault:"90s"`
	IdleConnTimeout       time.Duration `env:"IDLE_CONN_TIMEOUT" envDefault:"90s"`
	ResponseHeaderTimeout time.Duration `env:"RESPONSE_HEADER_TIMEOUT" envDefault:"30s"`
	Token                 string        `env:"TOKEN"`
	Url                   string        `env:"SERVICE_URL"`
}

// InterviewConfig holds the context and caching knobs of the interview flow
type InterviewConfig struct {
	ContextWindowSize     int           `env:"CONTEXT_WINDOW_SIZE" envDefault:"5"`
	SummaryThreshold      int           `env:"SUMMARY_THRESHOLD" envDefault:"8"`
	MaxDocLength          int           `env:"MAX_DOC_LENGTH" envDefault:"2000"`
	MaxTotalDocs          int           `env:"MAX_TOTAL_DOCS" envDefault:"5000"`
	SmartSummary          bool          `env:"SMART_SUMMARY" envDefault:"true"`
	SmartSummaryThreshold int           `env:"SMART_SUMMARY_THRESHOLD" envDefault:"1500"`
	SmartSummaryTarget    int           `env:"SMART_SUMMARY_TARGET" envDefault:"800"`
	SummaryCacheEnabled   bool          `env:"SUMMARY_CACHE_ENABLED" envDefault:"true"`
	PrefetchEnabled       bool          `env:"PREFETCH_ENABLED" envDefault:"true"`
	PrefetchTTL           time.Duration `env:"PREFETCH_TTL" envDefault:"300s"`
	StatusTTL             time.Duration `env:"STATUS_TTL" envDefault:"30m"`
	FallbackQuestions     bool          `env:"FALLBACK_QUESTIONS" envDefault:"false"`
	MaxAnswerLength       int           `env:"MAX_ANSWER_LENGTH" envDefault:"5000"`
	MinCompletionCoverage int           `env:"MIN_COMPLETION_COVERAGE" envDefault:"50"`
}

// DocumentConfig holds upload limits for reference materials
type DocumentConfig struct {
	MaxFileSize      int64 `env:"MAX_FILE_SIZE" envDefault:"10485760"` // 10 MiB
	MaxContentLength int   `env:"MAX_CONTENT_LENGTH" envDefault:"10000"`
	MaxUploadSize    int64 `env:"MAX_UPLOAD_SIZE" envDefault:"11534336"` // 11 MiB
}

func LoadConfig() (*Config, error) {
	envFlag := flag.String("env", "local", "Environment to run (local, prod, or custom)")
	flag.Parse()

	envFile := getEnvFile(*envFlag)
	// Try to load env file, but don't fail if it's missing.
	// In containerized/prod environments variables are usually set externally.
	if err := godotenv.Load(envFile); err != nil {
		fmt.Printf("Warning: could not load %s file (this is ok if env vars are set externally): %v\n", envFile, err)
	}

	cfg, err := Parse()
	if err != nil {
		return nil, err
	}
	cfg.Environment = *envFlag

	return cfg, nil
}

// Parse reads and validates the configuration from the process environment
func Parse() (*Config, error) {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, err
	}

	if err := validateConfig(cfg); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return cfg, nil
}

func validateConfig(cfg *Config) error {
	var errors []string

	if cfg.RequestTimeout <= 0 {
		errors = append(errors, fmt.Sprintf("SERVER_REQUEST_TIMEOUT must be positive, got %s", cfg.RequestTimeout))
	}

	if cfg.LLMConnectorCfg.ReportTimeout >= cfg.RequestTimeout {
		errors = append(errors, fmt.Sprintf("LLM_REPORT_TIMEOUT must be shorter than SERVER_REQUEST_TIMEOUT(%s), got %s", cfg.RequestTimeout, cfg.LLMConnectorCfg.ReportTimeout))
	}

	// Validate Database configuration
	if cfg.DBMaxConns < 1 || cfg.DBMaxConns > 200 {
		errors = append(errors, fmt.Sprintf("DB_MAX_CONNS must be between 1 and 200, got %d", cfg.DBMaxConns))
	}

	if cfg.DBMinConns < 0 || cfg.DBMinConns > cfg.DBMaxConns {
		errors = append(errors, fmt.Sprintf("DB_MIN_CONNS must be between 0 and DB_MAX_CONNS(%d), got %d", cfg.DBMaxConns, cfg.DBMinConns))
	}

	// Validate interview configuration
	ic := cfg.InterviewCfg
	if ic.ContextWindowSize < 1 || ic.ContextWindowSize > 50 {
		errors = append(errors, fmt.Sprintf("INTERVIEW_CONTEXT_WINDOW_SIZE must be between 1 and 50, got %d", ic.ContextWindowSize))
	}

	if ic.SummaryThreshold <= ic.ContextWindowSize {
		errors = append(errors, fmt.Sprintf("INTERVIEW_SUMMARY_THRESHOLD must be greater than INTERVIEW_CONTEXT_WINDOW_SIZE(%d), got %d", ic.ContextWindowSize, ic.SummaryThreshold))
	}

	if ic.MaxDocLength < 1 || ic.MaxDocLength > ic.MaxTotalDocs {
		errors = append(errors, fmt.Sprintf("INTERVIEW_MAX_DOC_LENGTH must be between 1 and INTERVIEW_MAX_TOTAL_DOCS(%d), got %d", ic.MaxTotalDocs, ic.MaxDocLength))
	}

	if ic.SmartSummaryTarget < 1 || ic.SmartSummaryTarget > ic.SmartSummaryThreshold {
		errors = append(errors, fmt.Sprintf("INTERVIEW_SMART_SUMMARY_TARGET must be between 1 and INTERVIEW_SMART_SUMMARY_THRESHOLD(%d), got %d", ic.SmartSummaryThreshold, ic.SmartSummaryTarget))
	}

	if ic.MinCompletionCoverage < 0 || ic.MinCompletionCoverage > 100 {
		errors = append(errors, fmt.Sprintf("INTERVIEW_MIN_COMPLETION_COVERAGE must be between 0 and 100, got %d", ic.MinCompletionCoverage))
	}

	if cfg.LLMConnectorCfg.ShrinkRatio <= 0 || cfg.LLMConnectorCfg.ShrinkRatio >= 1 {
		errors = append(errors, fmt.Sprintf("LLM_SHRINK_RATIO must be between 0 and 1 exclusive, got %g", cfg.LLMConnectorCfg.ShrinkRatio))
	}

	if cfg.SearchConnectorCfg.Enabled && cfg.SearchConnectorCfg.Url == "" && !cfg.EnableMocks {
		errors = append(errors, "SEARCH_SERVICE_URL is required when SEARCH_ENABLED is set")
	}

	if cfg.VisionConnectorCfg.Enabled && cfg.VisionConnectorCfg.Url == "" && !cfg.EnableMocks {
		errors = append(errors, "VISION_SERVICE_URL is required when VISION_ENABLED is set")
	}

	if len(errors) > 0 {
		return fmt.Errorf("configuration validation errors:\n  - %s", strings.Join(errors, "\n  - "))
	}

	return nil
}

func getEnvFile(environment string) string {
	switch environment {
	case "prod", "production":
		return ".env.prod"
	case "local", "dev", "development":
		return ".env.local"
	default:
		return fmt.Sprintf(".env.%s", environment)
	}
}
