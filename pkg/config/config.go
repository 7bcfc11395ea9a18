package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"go.yaml.in/yaml/v4"
)

const (
	BackendMemory   = "memory"
	BackendPostgres = "postgres"

	EventsNone  = "none"
	EventsAMQP  = "amqp"
	EventsKafka = "kafka"

	minSecretLength = 32
)

// Config is read once at startup and passed by value to constructors.
type Config struct {
	Port            string        `yaml:"port"`
	DataBackend     string        `yaml:"data_backend"`
	DatabaseURL     string        `yaml:"database_url"`
	DBMaxConns      int32         `yaml:"db_max_conns"`
	RedisURL        string        `yaml:"redis_url"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout"`

	JWTSecret   string        `yaml:"jwt_secret"`
	JWTIssuer   string        `yaml:"jwt_issuer"`
	JWTAudience string        `yaml:"jwt_audience"`
	RefreshTTL  time.Duration `yaml:"refresh_ttl"`
	BcryptCost  int           `yaml:"bcrypt_cost"`

	EventsBackend string   `yaml:"events_backend"`
	AMQPURL       string   `yaml:"amqp_url"`
	AMQPExchange  string   `yaml:"amqp_exchange"`
	KafkaBrokers  []string `yaml:"kafka_brokers"`
	KafkaTopic    string   `yaml:"kafka_topic"`

	// AuthRateLimit is requests per second per client IP on /auth; zero disables it.
	AuthRateLimit float64 `yaml:"auth_rate_limit"`
	AuthRateBurst int     `yaml:"auth_rate_burst"`

	// CORSOrigins lists browser origins allowed to call the API; empty turns CORS off.
	CORSOrigins []string `yaml:"cors_origins"`

	LogLevel string `yaml:"log_level"`

	problems []string
}

func defaults() Config {
	return Config{
		Port:            "8080",
		DataBackend:     BackendMemory,
		ShutdownTimeout: 10 * time.Second,
		JWTIssuer:       "finance-api",
		JWTAudience:     "finance-clients",
		RefreshTTL:      30 * 24 * time.Hour,
		EventsBackend:   EventsNone,
		AMQPExchange:    "ledger",
		KafkaTopic:      "ledger-events",
		AuthRateLimit:   1,
		AuthRateBurst:   10,
		CORSOrigins:     []string{"*"},
		LogLevel:        "info",
	}
}

// Load reads environment variables, optionally from a .env file if present. When
// CONFIG_FILE names a YAML file its values replace the defaults and environment
// variables override both.
func Load() (Config, error) {
	// Try to load .env if it exists; ignore error if file not found
	_ = godotenv.Load()

	cfg := defaults()
	if path := os.Getenv("CONFIG_FILE"); path != "" {
		if err := cfg.loadFile(path); err != nil {
			return Config{}, err
		}
	}
	cfg.applyEnv()
	return cfg, nil
}

func (c *Config) loadFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config file: %w", err)
	}
	if err := yaml.Unmarshal(data, c); err != nil {
		return fmt.Errorf("parse config file %s: %w", path, err)
	}
	return nil
}

func (c *Config) applyEnv() {
	c.Port = getEnv("PORT", c.Port)
	c.DataBackend = strings.ToLower(getEnv("DATA_BACKEND", c.DataBackend))
	c.DatabaseURL = getEnv("DATABASE_URL", c.DatabaseURL)
	c.DBMaxConns = int32(c.getEnvInt("DB_MAX_CONNS", int(c.DBMaxConns)))
	c.RedisURL = getEnv("REDIS_URL", c.RedisURL)
	c.ShutdownTimeout = c.getEnvDuration("SHUTDOWN_TIMEOUT", c.ShutdownTimeout)

	c.JWTSecret = getEnv("JWT_SECRET", c.JWTSecret)
	c.JWTIssuer = getEnv("JWT_ISSUER", c.JWTIssuer)
	c.JWTAudience = getEnv("JWT_AUDIENCE", c.JWTAudience)
	c.RefreshTTL = c.getEnvDuration("REFRESH_TTL", c.RefreshTTL)
	c.BcryptCost = c.getEnvInt("BCRYPT_COST", c.BcryptCost)

	c.EventsBackend = strings.ToLower(getEnv("EVENTS_BACKEND", c.EventsBackend))
	c.AMQPURL = getEnv("AMQP_URL", c.AMQPURL)
	c.AMQPExchange = getEnv("AMQP_EXCHANGE", c.AMQPExchange)
	if v := os.Getenv("KAFKA_BROKERS"); v != "" {
		c.KafkaBrokers = splitList(v)
	}
	c.KafkaTopic = getEnv("KAFKA_TOPIC", c.KafkaTopic)

	c.AuthRateLimit = c.getEnvFloat("AUTH_RATE_LIMIT", c.AuthRateLimit)
	c.AuthRateBurst = c.getEnvInt("AUTH_RATE_BURST", c.AuthRateBurst)
	if v, ok := os.LookupEnv("CORS_ORIGINS"); ok {
		c.CORSOrigins = splitList(v)
	}
	c.LogLevel = getEnv("LOG_LEVEL", c.LogLevel)
}

// Validate reports every configuration problem at once.
func (c Config) Validate() error {
	problems := append([]string(nil), c.problems...)

	if port, err := strconv.Atoi(c.Port); err != nil {
		problems = append(problems, fmt.Sprintf("invalid port '%s': must be a number", c.Port))
	} else if port < 1 || port > 65535 {
		problems = append(problems, fmt.Sprintf("invalid port %d: must be between 1 and 65535", port))
	}

	switch c.DataBackend {
	case BackendMemory:
	case BackendPostgres:
		if c.DatabaseURL == "" {
			problems = append(problems, "DATABASE_URL is required when using the postgres backend")
		}
	default:
		problems = append(problems, fmt.Sprintf("invalid data backend '%s': must be one of [memory postgres]", c.DataBackend))
	}
	if c.RedisURL != "" {
		if err := checkURL(c.RedisURL, "redis", "rediss"); err != nil {
			problems = append(problems, fmt.Sprintf("invalid REDIS_URL: %v", err))
		}
	}

	if len(c.JWTSecret) < minSecretLength {
		problems = append(problems, fmt.Sprintf("JWT_SECRET must be at least %d bytes", minSecretLength))
	}
	if c.JWTIssuer == "" || c.JWTAudience == "" {
		problems = append(problems, "JWT_ISSUER and JWT_AUDIENCE cannot be empty")
	}
	if c.RefreshTTL <= 0 {
		problems = append(problems, "REFRESH_TTL must be positive")
	}
	if c.BcryptCost != 0 && (c.BcryptCost < 4 || c.BcryptCost > 31) {
		problems = append(problems, fmt.Sprintf("invalid BCRYPT_COST %d: must be between 4 and 31", c.BcryptCost))
	}

	switch c.EventsBackend {
	case EventsNone:
	case EventsAMQP:
		if err := checkURL(c.AMQPURL, "amqp", "amqps"); err != nil {
			problems = append(problems, fmt.Sprintf("invalid AMQP_URL: %v", err))
		}
		if c.AMQPExchange == "" {
			problems = append(problems, "AMQP_EXCHANGE cannot be empty when using the amqp events backend")
		}
	case EventsKafka:
		if len(c.KafkaBrokers) == 0 {
			problems = append(problems, "KAFKA_BROKERS is required when using the kafka events backend")
		}
		if c.KafkaTopic == "" {
			problems = append(problems, "KAFKA_TOPIC cannot be empty when using the kafka events backend")
		}
	default:
		problems = append(problems, fmt.Sprintf("invalid events backend '%s': must be one of [none amqp kafka]", c.EventsBackend))
	}

	if c.AuthRateLimit < 0 || c.AuthRateBurst < 0 {
		problems = append(problems, "AUTH_RATE_LIMIT and AUTH_RATE_BURST cannot be negative")
	}

	if len(problems) > 0 {
		return errors.New("configuration validation failed:\n  - " + strings.Join(problems, "\n  - "))
	}
	return nil
}

func checkURL(raw string, schemes ...string) error {
	u, err := url.Parse(raw)
	if err != nil {
		return err
	}
	for _, s := range schemes {
		if u.Scheme == s {
			return nil
		}
	}
	return fmt.Errorf("scheme '%s' must be one of %v", u.Scheme, schemes)
}

func getEnv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func (c *Config) getEnvInt(key string, def int) int {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		c.problems = append(c.problems, fmt.Sprintf("invalid %s '%s': must be an integer", key, v))
		return def
	}
	return n
}

func (c *Config) getEnvFloat(key string, def float64) float64 {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		c.problems = append(c.problems, fmt.Sprintf("invalid %s '%s': must be a number", key, v))
		return def
	}
	return f
}

func (c *Config) getEnvDuration(key string, def time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		c.problems = append(c.problems, fmt.Sprintf("invalid %s '%s': must be a duration like 720h", key, v))
		return def
	}
	return d
}

func splitList(v string) []string {
	var out []string
	for _, p := range strings.Split(v, ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
