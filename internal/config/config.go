package config

import (
	"fmt"
	"strings"

	"github.com/kelseyhightower/envconfig"
)

const (
	StoreMemory    = "memory"
	StorePostgres  = "postgres"
	StoreSurrealDB = "surrealdb"
	StoreMongoDB   = "mongodb"
)

type Config struct {
	// Server
	Port               string `envconfig:"PORT" default:"8080"`
	Environment        string `envconfig:"ENV" default:"development"`
	LogLevel           string `envconfig:"LOG_LEVEL"`
	APIBaseURL         string `envconfig:"API_BASE_URL" default:"http://localhost:8080/v1"`
	CORSAllowedOrigins string `envconfig:"CORS_ALLOWED_ORIGINS" default:"*"`

	// Course store
	StoreBackend       string `envconfig:"STORE_BACKEND" default:"memory"`
	DBConnectionString string `envconfig:"DB_CONNECTION_STRING"`
	SurrealDBURL       string `envconfig:"SURREALDB_URL"`
	SurrealDBNamespace string `envconfig:"SURREALDB_NAMESPACE" default:"coursegpt"`
	SurrealDBDatabase  string `envconfig:"SURREALDB_DATABASE" default:"coursegpt"`
	SurrealDBUser      string `envconfig:"SURREALDB_USER"`
	SurrealDBPass      string `envconfig:"SURREALDB_PASS"`
	MongoDBURI         string `envconfig:"MONGODB_URI"`
	MongoDBDatabase    string `envconfig:"MONGODB_DATABASE" default:"coursegpt"`

	// Generation
	GeminiAPIKey         string `envconfig:"GEMINI_API_KEY"`
	GeminiAPIKeySecret   string `envconfig:"GEMINI_API_KEY_SECRET"`
	GeminiModel          string `envconfig:"GEMINI_MODEL" default:"gemini-2.0-flash-001"`
	GeminiEndpoint       string `envconfig:"GEMINI_ENDPOINT"`
	GenerationTimeoutSec int    `envconfig:"GENERATION_TIMEOUT_SEC" default:"120"`

	// GCP
	GCPProjectID            string `envconfig:"GCP_PROJECT_ID"`
	PubSubEmulatorHost      string `envconfig:"PUBSUB_EMULATOR_HOST"`
	PubSubCourseEventsTopic string `envconfig:"PUBSUB_COURSE_EVENTS_TOPIC"`

	// Course event outbox in Postgres, drained by the relay
	PGMQCourseEventsQueue  string `envconfig:"PGMQ_COURSE_EVENTS_QUEUE"`
	RelayDeadLetterQueue   string `envconfig:"RELAY_DEAD_LETTER_QUEUE" default:"course_events_dlq"`
	RelayVisibilitySec     int    `envconfig:"RELAY_VISIBILITY_SEC" default:"30"`
	RelayPollTimeoutSec    int    `envconfig:"RELAY_POLL_TIMEOUT_SEC" default:"5"`
	RelayPollMaxMsg        int    `envconfig:"RELAY_POLL_MAX_MSG" default:"10"`
	RelayMaxRetries        int    `envconfig:"RELAY_MAX_RETRIES" default:"3"`
	RelayBackoffInitialSec int    `envconfig:"RELAY_BACKOFF_INITIAL_SEC" default:"1"`
	RelayBackoffMaxSec     int    `envconfig:"RELAY_BACKOFF_MAX_SEC" default:"10"`

	// Auth is enabled only when a secret is set
	JWTSecret string `envconfig:"JWT_SECRET"`
}

func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks the settings the selected backends depend on
func (c *Config) Validate() error {
	switch c.StoreBackend {
	case StoreMemory:
	case StorePostgres:
		if c.DBConnectionString == "" {
			return fmt.Errorf("DB_CONNECTION_STRING is required for the %s store", c.StoreBackend)
		}
	case StoreSurrealDB:
		if c.SurrealDBURL == "" {
			return fmt.Errorf("SURREALDB_URL is required for the %s store", c.StoreBackend)
		}
	case StoreMongoDB:
		if c.MongoDBURI == "" {
			return fmt.Errorf("MONGODB_URI is required for the %s store", c.StoreBackend)
		}
	default:
		return fmt.Errorf("unknown STORE_BACKEND %q", c.StoreBackend)
	}

	if c.GeminiAPIKeySecret != "" && c.GCPProjectID == "" {
		return fmt.Errorf("GCP_PROJECT_ID is required to read GEMINI_API_KEY_SECRET")
	}
	if c.PubSubCourseEventsTopic != "" && c.GCPProjectID == "" {
		return fmt.Errorf("GCP_PROJECT_ID is required to publish to PUBSUB_COURSE_EVENTS_TOPIC")
	}
	if c.PGMQCourseEventsQueue != "" && c.DBConnectionString == "" {
		return fmt.Errorf("DB_CONNECTION_STRING is required for PGMQ_COURSE_EVENTS_QUEUE")
	}
	if c.GenerationTimeoutSec <= 0 {
		return fmt.Errorf("GENERATION_TIMEOUT_SEC must be positive")
	}
	return nil
}

// AllowedOrigins splits CORS_ALLOWED_ORIGINS on commas
func (c *Config) AllowedOrigins() []string {
	var origins []string
	for _, o := range strings.Split(c.CORSAllowedOrigins, ",") {
		if o = strings.TrimSpace(o); o != "" {
			origins = append(origins, o)
		}
	}
	return origins
}

func (c *Config) IsDevelopment() bool {
	return c.Environment == "development"
}
