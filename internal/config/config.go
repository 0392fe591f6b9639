package config

import (
	"fmt"
	"log"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

type Config struct {
	Port  string `envconfig:"PORT" default:"8080"`
	Debug bool   `envconfig:"DEBUG" default:"false"`

	DatabaseURL string `envconfig:"DATABASE_URL" required:"true"`
	DBMaxConns  int32  `envconfig:"DB_MAX_CONNS" default:"16"`
	DBMinConns  int32  `envconfig:"DB_MIN_CONNS" default:"2"`

	OpenAIAPIKey        string `envconfig:"OPENAI_API_KEY"`
	EmbeddingModel      string `envconfig:"EMBEDDING_MODEL" default:"text-embedding-3-small"`
	EmbeddingDimensions int    `envconfig:"EMBEDDING_DIMENSIONS" default:"1536"`
	EmbedConcurrency    int    `envconfig:"EMBED_CONCURRENCY" default:"4"`
	EmbedMaxRetries     int    `envconfig:"EMBED_MAX_RETRIES" default:"3"`

	ChunkSize    int `envconfig:"CHUNK_SIZE" default:"500"`
	ChunkOverlap int `envconfig:"CHUNK_OVERLAP" default:"50"`
	MinChunkSize int `envconfig:"MIN_CHUNK_SIZE" default:"80"`

	DuplicatePolicy string `envconfig:"DUPLICATE_POLICY" default:"reject"`

	VectorWeight    float64       `envconfig:"VECTOR_WEIGHT" default:"0.6"`
	LexicalWeight   float64       `envconfig:"LEXICAL_WEIGHT" default:"0.4"`
	MinSimilarity   float64       `envconfig:"MIN_SIMILARITY" default:"0"`
	DefaultTopK     int           `envconfig:"DEFAULT_TOP_K" default:"10"`
	MaxTopK         int           `envconfig:"MAX_TOP_K" default:"100"`
	SubQueryTimeout time.Duration `envconfig:"SUB_QUERY_TIMEOUT" default:"5s"`

	MaintenanceInterval time.Duration `envconfig:"MAINTENANCE_INTERVAL" default:"1h"`

	S3Endpoint  string `envconfig:"S3_ENDPOINT"`
	S3AccessKey string `envconfig:"S3_ACCESS_KEY_ID"`
	S3SecretKey string `envconfig:"S3_SECRET_ACCESS_KEY"`
	S3Bucket    string `envconfig:"S3_BUCKET" default:"caseline-archive"`
	S3Region    string `envconfig:"S3_REGION" default:"us-east-1"`

	SentryDSN string `envconfig:"SENTRY_DSN"`
}

func Load() (*Config, error) {
	_ = godotenv.Load()

	var cfg Config
	if err := envconfig.Process("CASELINE", &cfg); err != nil {
		return nil, fmt.Errorf("failed to process config: %w", err)
	}

	return &cfg, nil
}

func MustLoad() *Config {
	cfg, err := Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}
	return cfg
}

func (c *Config) HasS3() bool {
	return c.S3Endpoint != "" && c.S3AccessKey != "" && c.S3SecretKey != ""
}

func (c *Config) HasOpenAI() bool {
	return c.OpenAIAPIKey != ""
}
