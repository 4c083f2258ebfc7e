package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

const (
	AuthLevelAnonymous = "anonymous"
	AuthLevelFunction  = "function"
)

// App holds every setting the server and indexer read from the environment.
type App struct {
	Port     string
	LogLevel string

	GCPProject  string
	GCPLocation string
	GenAIAPIKey string

	EmbeddingModel      string
	EmbeddingDimensions int
	CompletionModel     string

	SearchTopK     int
	MaxPromptChars int

	ProjectCacheTTL time.Duration
	GenerationTTL   time.Duration

	FunctionAuthLevel string

	CatalogSource         string
	IndexWorkers          int
	IndexScheduleInterval time.Duration

	SpeechEnabled bool
}

// LoadApp reads the environment. Call godotenv.Load before it when a .env
// file should be honoured.
func LoadApp() (*App, error) {
	cfg := &App{
		Port:              envOr("PORT", "8080"),
		LogLevel:          envOr("LOG_LEVEL", "info"),
		GCPProject:        os.Getenv("GCP_PROJECT"),
		GCPLocation:       envOr("GCP_LOCATION", "us-central1"),
		GenAIAPIKey:       os.Getenv("GENAI_API_KEY"),
		EmbeddingModel:    envOr("EMBEDDING_MODEL", "text-embedding-005"),
		CompletionModel:   envOr("COMPLETION_MODEL", "gemini-1.5-flash"),
		FunctionAuthLevel: strings.ToLower(envOr("FUNCTION_AUTH_LEVEL", AuthLevelFunction)),
		CatalogSource:     os.Getenv("CATALOG_SOURCE"),
	}

	var err error
	if cfg.EmbeddingDimensions, err = envInt("EMBEDDING_DIMENSIONS", 768); err != nil {
		return nil, err
	}
	if cfg.SearchTopK, err = envInt("SEARCH_TOP_K", 3); err != nil {
		return nil, err
	}
	if cfg.MaxPromptChars, err = envInt("MAX_PROMPT_CHARS", 2000); err != nil {
		return nil, err
	}
	if cfg.IndexWorkers, err = envInt("INDEX_WORKERS", 1); err != nil {
		return nil, err
	}
	if cfg.ProjectCacheTTL, err = envDuration("PROJECT_CACHE_TTL", 10*time.Minute); err != nil {
		return nil, err
	}
	if cfg.GenerationTTL, err = envDuration("GENERATION_TTL", 30*24*time.Hour); err != nil {
		return nil, err
	}
	if cfg.IndexScheduleInterval, err = envDuration("INDEX_SCHEDULE_INTERVAL", 0); err != nil {
		return nil, err
	}
	cfg.SpeechEnabled = os.Getenv("SPEECH_ENABLED") == "true"

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *App) Validate() error {
	// completions always go through Vertex AI, embeddings may use an API key
	if c.GCPProject == "" {
		return errors.New("GCP_PROJECT environment variable is not set")
	}
	if c.EmbeddingDimensions <= 0 {
		return errors.New("EMBEDDING_DIMENSIONS must be > 0")
	}
	if c.SearchTopK <= 0 {
		return errors.New("SEARCH_TOP_K must be > 0")
	}
	if c.MaxPromptChars <= 0 {
		return errors.New("MAX_PROMPT_CHARS must be > 0")
	}
	switch c.FunctionAuthLevel {
	case AuthLevelAnonymous, AuthLevelFunction:
	default:
		return fmt.Errorf("FUNCTION_AUTH_LEVEL must be %q or %q, got %q", AuthLevelAnonymous, AuthLevelFunction, c.FunctionAuthLevel)
	}
	return nil
}

func envOr(key, def string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return def
}

func envInt(key string, def int) (int, error) {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return def, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", key, err)
	}
	return n, nil
}

func envDuration(key string, def time.Duration) (time.Duration, error) {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return def, nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", key, err)
	}
	return d, nil
}
