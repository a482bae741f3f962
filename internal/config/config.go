package config

import (
	"fmt"
	"strings"

	"github.com/caarlos0/env/v10"
)

const (
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
)

// Config centraliza la configuración del servicio.
type Config struct {
	HTTPPort  string `env:"PORT" envDefault:"3000"`
	StaticDir string `env:"STATIC_DIR" envDefault:"public"`

	LLMAPIKey          string  `env:"OPENAI_API_KEY"`
	LLMModel           string  `env:"OPENAI_MODEL" envDefault:"gpt-4.1-mini"`
	LLMBaseURL         string  `env:"API_BASE_URL" envDefault:"https://api.openai.com"`
	DefaultTemperature float64 `env:"DEFAULT_TEMPERATURE" envDefault:"0.7"`

	GroupsStartingID int `env:"GROUPS_STARTING_ID" envDefault:"1"`

	DatabaseDriver string `env:"DATABASE_DRIVER" envDefault:"sqlite"`
	DatabaseFile   string `env:"DATABASE_FILE" envDefault:"chat_history_ex5.db"`
	DatabaseURL    string `env:"DATABASE_URL"`

	MockFile        string `env:"MOCK_FILE" envDefault:"mock_responses.txt"`
	MockSampleRange int    `env:"MOCK_SAMPLE_RANGE" envDefault:"0"`
	MockPoolSize    int    `env:"MOCK_POOL_SIZE" envDefault:"0"`
	MockTrackSeen   bool   `env:"MOCK_TRACK_SEEN" envDefault:"false"`

	// ChatRateLimit en 0 desactiva el limite de turnos por (grupo, miembro).
	ChatRateLimit         int `env:"CHAT_RATE_LIMIT" envDefault:"0"`
	ChatRateWindowSeconds int `env:"CHAT_RATE_WINDOW_SECONDS" envDefault:"60"`

	RedisAddr     string `env:"REDIS_ADDR"`
	RedisPassword string `env:"REDIS_PASSWORD"`
	RedisDB       int    `env:"REDIS_DB" envDefault:"0"`
}

// LoadConfig carga la configuración desde variables de entorno.
func LoadConfig() (*Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return nil, err
	}
	if err := cfg.normalize(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) normalize() error {
	// Un valor 0 (o negativo) se trata como "sin configurar".
	if c.GroupsStartingID <= 0 {
		c.GroupsStartingID = 1
	}
	c.DatabaseDriver = strings.ToLower(strings.TrimSpace(c.DatabaseDriver))
	switch c.DatabaseDriver {
	case "sqlite3":
		c.DatabaseDriver = DriverSQLite
	case DriverSQLite:
	case "postgresql", "pgx":
		c.DatabaseDriver = DriverPostgres
	case DriverPostgres:
	default:
		return fmt.Errorf("unsupported DATABASE_DRIVER %q", c.DatabaseDriver)
	}
	if c.DatabaseDriver == DriverPostgres && strings.TrimSpace(c.DatabaseURL) == "" {
		return fmt.Errorf("DATABASE_URL is required when DATABASE_DRIVER=%s", DriverPostgres)
	}
	if c.MockSampleRange < 0 {
		c.MockSampleRange = 0
	}
	if c.MockPoolSize < 0 {
		c.MockPoolSize = 0
	}
	if c.ChatRateLimit < 0 {
		c.ChatRateLimit = 0
	}
	if c.ChatRateWindowSeconds <= 0 {
		c.ChatRateWindowSeconds = 60
	}
	return nil
}
