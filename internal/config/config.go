package config

import (
	"errors"
	"fmt"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

var ErrMissingRequired = errors.New("missing required configuration")

type Config struct {
	ServiceName string `envconfig:"MS_NAME" default:"Mining Microservice"`

	WeaviateHost   string `envconfig:"WEAVIATE_HOST" default:"localhost:8080"`
	WeaviateScheme string `envconfig:"WEAVIATE_SCHEME" default:"http"`

	NSQLookupd string `envconfig:"NSQ_LOOKUPD" default:"nsqlookupd:4161"`
	NSQDHost   string `envconfig:"NSQD_HOST" default:"nsqd:4150"`
	NSQDHTTP   string `envconfig:"NSQD_HTTP" default:"nsqd:4151"`

	GeminiAPIKey    string `envconfig:"GEMINI_API_KEY"`
	EmbeddingModel  string `envconfig:"EMBEDDING_MODEL" default:"gemini-embedding-001"`
	GenerationModel string `envconfig:"GENERATION_MODEL" default:"gemini-2.5-flash"`

	// Document conversion service used for formats that need text extraction
	// (pdf, docx, xlsx). Plaintext objects are decoded locally.
	ConvertURL string `envconfig:"DOCSTORE_CONVERT_URL" default:"http://docling:8000"`

	ClarisaHost     string `envconfig:"CLARISA_HOST"`
	ClarisaLogin    string `envconfig:"CLARISA_LOGIN"`
	ClarisaPassword string `envconfig:"CLARISA_PASSWORD"`
	ClarisaMis      string `envconfig:"CLARISA_MIS"`
	ClarisaMisEnv   string `envconfig:"CLARISA_MIS_ENV"`

	SlackWebhookURL string `envconfig:"SLACK_WEBHOOK_URL"`

	// Baseline reference documents loaded once into the reference collection.
	ReferenceBucket       string `envconfig:"REFERENCE_BUCKET" default:"mining-reference"`
	ReferenceRegionsKey   string `envconfig:"REFERENCE_REGIONS_KEY" default:"clarisa_regions.xlsx"`
	ReferenceCountriesKey string `envconfig:"REFERENCE_COUNTRIES_KEY" default:"clarisa_countries.xlsx"`

	ChunkSize    int `envconfig:"CHUNK_SIZE" default:"8000"`
	ChunkOverlap int `envconfig:"CHUNK_OVERLAP" default:"1500"`
	SearchTopK   int `envconfig:"SEARCH_TOP_K" default:"5"`

	// Resilience
	BootstrapRetryAttempts     int `envconfig:"BOOTSTRAP_RETRY_ATTEMPTS" default:"10"`
	BootstrapRetryDelaySeconds int `envconfig:"BOOTSTRAP_RETRY_DELAY_SECONDS" default:"2"`
}

func Load() (*Config, error) {
	// Ignore errors, env vars might be set in the shell.
	_ = godotenv.Load(".env")

	var cfg Config
	err := envconfig.Process("", &cfg)
	if err != nil {
		return nil, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

func (c *Config) Validate() error {
	if c.GeminiAPIKey == "" {
		return fmt.Errorf("%w: GEMINI_API_KEY", ErrMissingRequired)
	}
	if c.ClarisaHost == "" {
		return fmt.Errorf("%w: CLARISA_HOST", ErrMissingRequired)
	}
	if c.ChunkOverlap >= c.ChunkSize {
		return fmt.Errorf("%w: CHUNK_OVERLAP must be smaller than CHUNK_SIZE", ErrMissingRequired)
	}
	return nil
}
