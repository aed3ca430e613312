package config

import (
	"fmt"
	"time"

	"github.com/kelseyhightower/envconfig"
)

const (
	StoreMemory   = "memory"
	StorePostgres = "postgres"
)

type Config struct {
	Port     string `envconfig:"PORT" default:"3000"`
	AppEnv   string `envconfig:"APP_ENV" default:"development"`
	LogLevel string `envconfig:"LOG_LEVEL" default:"info"`

	StoreDriver string `envconfig:"STORE_DRIVER" default:"postgres"` // postgres | memory
	DatabaseURL string `envconfig:"DATABASE_URL"`
	DBHost      string `envconfig:"DB_HOST" default:"localhost"`
	DBPort      string `envconfig:"DB_PORT" default:"5432"`
	DBUser      string `envconfig:"DB_USER" default:"postgres"`
	DBPassword  string `envconfig:"DB_PASSWORD"`
	DBName      string `envconfig:"DB_NAME" default:"inventory"`
	DBTimeZone  string `envconfig:"DB_TIMEZONE" default:"UTC"`

	JWTSecret string        `envconfig:"JWT_SECRET" default:"your-super-secret-key-change-in-production"`
	JWTTTL    time.Duration `envconfig:"JWT_TTL" default:"24h"`

	AllowNegativeStock bool   `envconfig:"ALLOW_NEGATIVE_STOCK" default:"true"`
	RateLimit          string `envconfig:"RATE_LIMIT" default:"120-M"`

	KafkaBrokers     []string `envconfig:"KAFKA_BROKERS"`
	KafkaEventTopic  string   `envconfig:"KAFKA_EVENT_TOPIC" default:"inventory.events"`
	KafkaIntakeTopic string   `envconfig:"KAFKA_INTAKE_TOPIC"`
	KafkaGroupID     string   `envconfig:"KAFKA_GROUP_ID" default:"inventory-ledger"`

	RedisAddr     string `envconfig:"REDIS_ADDR"`
	RedisPassword string `envconfig:"REDIS_PASSWORD"`
	RedisDB       int    `envconfig:"REDIS_DB" default:"0"`
	RedisChannel  string `envconfig:"REDIS_CHANNEL" default:"inventory.events"`
}

func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, err
	}
	if cfg.StoreDriver != StoreMemory && cfg.StoreDriver != StorePostgres {
		return nil, fmt.Errorf("unsupported STORE_DRIVER %q", cfg.StoreDriver)
	}
	return &cfg, nil
}

// DSN returns DATABASE_URL or one assembled from the DB_* parts.
func (c *Config) DSN() string {
	if c.DatabaseURL != "" {
		return c.DatabaseURL
	}
	return fmt.Sprintf(
		"host=%s user=%s password=%s dbname=%s port=%s sslmode=disable TimeZone=%s",
		c.DBHost, c.DBUser, c.DBPassword, c.DBName, c.DBPort, c.DBTimeZone,
	)
}

func (c *Config) IsDevelopment() bool {
	return c.AppEnv == "development"
}
