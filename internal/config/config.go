package config

import (
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

const (
	BackendGemini = "gemini"
	BackendVertex = "vertex"

	// Classifier failure policies
	ClassifierPolicyFail       = "fail"
	ClassifierPolicyNotPremium = "not_premium"
)

type Config struct {
	App      AppConfig
	Database DatabaseConfig
	Gemini   GeminiConfig
	Search   SearchConfig
	Premium  PremiumConfig
	Infra    InfraConfig
	Tracing  TracingConfig
}

type AppConfig struct {
	Port               string        `envconfig:"APP_PORT" default:"8080"`
	Environment        string        `envconfig:"GO_ENV" default:"development"`
	LogFilePath        string        `envconfig:"LOG_FILE_PATH" default:"logs/app.log"`
	ChannelLogFilePath string        `envconfig:"CHANNEL_LOG_FILE_PATH" default:"logs/channel.log"`
	CorsAllowedOrigins string        `envconfig:"CORS_ALLOWED_ORIGINS" default:"*"`
	StaticDir          string        `envconfig:"STATIC_DIR" default:"./static"`
	ShutdownGrace      time.Duration `envconfig:"SHUTDOWN_GRACE" default:"15s"`
}

type DatabaseConfig struct {
	Connection         string `envconfig:"DB_CONNECTION_STRING" required:"true"`
	EmbeddingDimension int    `envconfig:"EMBEDDING_DIMENSION" default:"768"`
}

type GeminiConfig struct {
	Backend           string        `envconfig:"GEMINI_BACKEND" default:"vertex"`
	APIKey            string        `envconfig:"GEMINI_API_KEY"`
	Project           string        `envconfig:"GCP_PROJECT"`
	Location          string        `envconfig:"GCP_LOCATION" default:"us-central1"`
	Model             string        `envconfig:"GCP_MODEL" default:"gemini-2.0-flash-001"`
	Temperature       float32       `envconfig:"MODEL_TEMPERATURE" default:"0.5"`
	TopP              float32       `envconfig:"MODEL_TOP_P" default:"0.8"`
	MaxOutputTokens   int32         `envconfig:"MODEL_MAX_OUTPUT_TOKENS" default:"1024"`
	SystemInstruction string        `envconfig:"SYSTEM_INSTRUCTION"`
	EmbeddingModel    string        `envconfig:"EMBEDDING_MODEL" default:"text-embedding-005"`
	EmbeddingCacheTTL time.Duration `envconfig:"EMBEDDING_CACHE_TTL" default:"1h"`
	Timeout           time.Duration `envconfig:"GENERATION_TIMEOUT" default:"30s"`
	ClassifierPolicy  string        `envconfig:"CLASSIFIER_FAILURE_POLICY" default:"fail"`
}

type SearchConfig struct {
	ProjectNumber string        `envconfig:"GCP_PROJECT_NUMBER"`
	EngineID      string        `envconfig:"VERTEXAI_SEARCH_ENGINE_ID"`
	Location      string        `envconfig:"SEARCH_ENGINE_LOCATION" default:"global"`
	PageSize      int32         `envconfig:"SEARCH_PAGE_SIZE" default:"5"`
	Timeout       time.Duration `envconfig:"SEARCH_TIMEOUT" default:"20s"`
	CacheTTL      time.Duration `envconfig:"SEARCH_CACHE_TTL" default:"10m"`
	// Optional service account key for the search engine only.
	CredentialsFile string `envconfig:"SEARCH_CREDENTIALS_FILE"`
}

type PremiumConfig struct {
	TopK                 int           `envconfig:"VIDEO_TOP_K" default:"5"`
	RetrievalTimeout     time.Duration `envconfig:"RETRIEVAL_TIMEOUT" default:"20s"`
	TaskTimeout          time.Duration `envconfig:"PREMIUM_TASK_TIMEOUT" default:"2m"`
	SynthesisTemperature float32       `envconfig:"SYNTHESIS_TEMPERATURE" default:"0.3"`
}

type InfraConfig struct {
	NatsURL         string `envconfig:"NATS_URL" default:"nats://localhost:4222"`
	RedisURL        string `envconfig:"REDIS_URL" default:"redis://localhost:6379"`
	IngestTopicName string `envconfig:"INGEST_TOPIC_NAME" default:"INGEST_VIDEO_TRANSCRIPT"`
}

type TracingConfig struct {
	Enabled     bool   `envconfig:"OTEL_ENABLED" default:"false"`
	Endpoint    string `envconfig:"OTEL_EXPORTER_OTLP_ENDPOINT" default:"localhost:4318"`
	ServiceName string `envconfig:"OTEL_SERVICE_NAME" default:"datasense-backend"`
}

func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil {
		log.Println("Note: .env file not found, using system environment")
	}

	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("failed to process environment config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks cross-field constraints envconfig cannot express.
func (c *Config) Validate() error {
	var errs []error

	switch c.Gemini.Backend {
	case BackendGemini:
		if c.Gemini.APIKey == "" {
			errs = append(errs, errors.New("GEMINI_API_KEY is required for the gemini backend"))
		}
	case BackendVertex:
		if c.Gemini.Project == "" {
			errs = append(errs, errors.New("GCP_PROJECT is required for the vertex backend"))
		}
	default:
		errs = append(errs, fmt.Errorf("unsupported GEMINI_BACKEND %q", c.Gemini.Backend))
	}

	if c.Gemini.Temperature < 0 || c.Gemini.Temperature > 2 {
		errs = append(errs, fmt.Errorf("MODEL_TEMPERATURE must be within [0, 2], got %v", c.Gemini.Temperature))
	}
	if c.Gemini.TopP < 0 || c.Gemini.TopP > 1 {
		errs = append(errs, fmt.Errorf("MODEL_TOP_P must be within [0, 1], got %v", c.Gemini.TopP))
	}
	if c.Gemini.ClassifierPolicy != ClassifierPolicyFail && c.Gemini.ClassifierPolicy != ClassifierPolicyNotPremium {
		errs = append(errs, fmt.Errorf("unsupported CLASSIFIER_FAILURE_POLICY %q", c.Gemini.ClassifierPolicy))
	}

	if c.Search.ProjectNumber == "" {
		errs = append(errs, errors.New("GCP_PROJECT_NUMBER is required"))
	}
	if c.Search.EngineID == "" {
		errs = append(errs, errors.New("VERTEXAI_SEARCH_ENGINE_ID is required"))
	}
	if c.Search.PageSize <= 0 {
		errs = append(errs, errors.New("SEARCH_PAGE_SIZE must be positive"))
	}

	if c.Premium.TopK <= 0 {
		errs = append(errs, errors.New("VIDEO_TOP_K must be positive"))
	}
	if c.Database.EmbeddingDimension <= 0 {
		errs = append(errs, errors.New("EMBEDDING_DIMENSION must be positive"))
	}

	return errors.Join(errs...)
}

func (c *Config) IsProduction() bool {
	return c.App.Environment == "production"
}
