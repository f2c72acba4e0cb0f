package config

import (
	"os"
	"strings"
	"time"
)

// Server captures process-level configuration sourced from the environment so
// main stays lean.
type Server struct {
	Addr          string
	JWTSigningKey string
	TokenTTL      time.Duration

	// Storage
	DBDriver string // "sqlite" or "postgres"
	DBDSN    string

	// Ledger
	LedgerPath       string
	AllowLedgerReset bool

	// Artifact storage
	OutputDir string

	// Optional collaborators
	RedisURL     string
	KafkaBrokers []string
	KafkaTopic   string
}

// VerifyCacheTTL bounds how long a cert-id lookup stays cached.
var VerifyCacheTTL = 10 * time.Minute

// FromEnv builds a Server config from environment variables.
func FromEnv() Server {
	cfg := Server{
		Addr:             envOr("VERIDOC_ADDR", ":8080"),
		JWTSigningKey:    envOr("JWT_SIGNING_KEY", "dev-secret-key-change-in-production"),
		TokenTTL:         7 * 24 * time.Hour,
		DBDriver:         envOr("VERIDOC_DB_DRIVER", "sqlite"),
		DBDSN:            envOr("VERIDOC_DB_DSN", "veridoc.db"),
		LedgerPath:       envOr("VERIDOC_LEDGER_PATH", "ledger.json"),
		AllowLedgerReset: os.Getenv("ALLOW_LEDGER_RESET") == "true",
		OutputDir:        envOr("VERIDOC_OUTPUT_DIR", "certificates"),
		RedisURL:         os.Getenv("VERIDOC_REDIS_URL"),
		KafkaTopic:       envOr("VERIDOC_KAFKA_TOPIC", "veridoc.ledger.events"),
	}
	if brokers := os.Getenv("VERIDOC_KAFKA_BROKERS"); brokers != "" {
		cfg.KafkaBrokers = strings.Split(brokers, ",")
	}
	if ttl := os.Getenv("VERIDOC_TOKEN_TTL"); ttl != "" {
		if d, err := time.ParseDuration(ttl); err == nil {
			cfg.TokenTTL = d
		}
	}
	return cfg
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
