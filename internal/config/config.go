package config

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
)

// Store drivers accepted by DECK_STORE.
const (
	StoreMemory   = "memory"
	StoreSQLite   = "sqlite"
	StorePostgres = "postgres"
	StoreRedis    = "redis"
)

type Config struct {
	Port           string        `env:"PORT" envDefault:"8080"`
	Mode           string        `env:"APP_MODE" envDefault:"dev"`
	CatalogURL     string        `env:"CATALOG_URL"`
	PageSize       int           `env:"CATALOG_PAGE_SIZE" envDefault:"27"`
	CatalogTimeout time.Duration `env:"CATALOG_TIMEOUT" envDefault:"12s"`
	SearchDebounce time.Duration `env:"SEARCH_DEBOUNCE" envDefault:"300ms"`
	SessionIdleTTL time.Duration `env:"SESSION_IDLE_TTL" envDefault:"30m"`
	DeckStore      string        `env:"DECK_STORE" envDefault:"memory"`
	DatabaseDSN    string        `env:"DATABASE_DSN" envDefault:"decks.db"`
	RedisAddr      string        `env:"REDIS_ADDR" envDefault:"localhost:6379"`
	DataDir        string        `env:"DATA_DIR" envDefault:"data"`
	Locale         string        `env:"LOCALE" envDefault:"pt-BR"`
	CORSOrigins    []string      `env:"CORS_ORIGINS" envSeparator:"," envDefault:"http://localhost:3000,http://127.0.0.1:3000"`

	OTel OTelConfig
}

// OTelConfig controls request tracing. Without an OTLP endpoint spans go to
// stdout.
type OTelConfig struct {
	Enabled     bool              `env:"OTEL_ENABLED"`
	ServiceName string            `env:"OTEL_SERVICE_NAME" envDefault:"pokedeck"`
	Endpoint    string            `env:"OTEL_EXPORTER_OTLP_ENDPOINT"`
	Insecure    bool              `env:"OTEL_EXPORTER_OTLP_INSECURE"`
	Headers     map[string]string `env:"OTEL_EXPORTER_OTLP_HEADERS" envKeyValSeparator:"="`
	SampleRatio float64           `env:"OTEL_SAMPLER_RATIO" envDefault:"0.1"`
}

// Load parses Config from the environment and checks the values that have no
// sensible fallback.
func Load() (Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("parse env: %w", err)
	}
	if err := cfg.validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c Config) validate() error {
	if c.PageSize <= 0 {
		return fmt.Errorf("CATALOG_PAGE_SIZE must be positive, got %d", c.PageSize)
	}
	if c.SessionIdleTTL < 0 {
		return fmt.Errorf("SESSION_IDLE_TTL must not be negative, got %s", c.SessionIdleTTL)
	}
	if c.SearchDebounce < 0 {
		return fmt.Errorf("SEARCH_DEBOUNCE must not be negative, got %s", c.SearchDebounce)
	}
	if c.OTel.SampleRatio < 0 || c.OTel.SampleRatio > 1 {
		return fmt.Errorf("OTEL_SAMPLER_RATIO must be within [0, 1], got %g", c.OTel.SampleRatio)
	}
	switch c.DeckStore {
	case StoreMemory, StoreSQLite, StorePostgres, StoreRedis:
	default:
		return fmt.Errorf("unknown DECK_STORE %q", c.DeckStore)
	}
	return nil
}

// CatalogBaseURL is where the catalog client sends requests. Without an
// explicit CATALOG_URL the server talks to its own /cards endpoint.
func (c Config) CatalogBaseURL() string {
	if c.CatalogURL != "" {
		return c.CatalogURL
	}
	return "http://localhost:" + c.Port
}
