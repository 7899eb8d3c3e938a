package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/MikeSquared-Agency/Ftopsis/internal/ftopsis"
)

type Config struct {
	Server   ServerConfig   `yaml:"server"`
	Database DatabaseConfig `yaml:"database"`
	Hermes   HermesConfig   `yaml:"hermes"`
	Broker   BrokerConfig   `yaml:"broker"`
	Engine   EngineConfig   `yaml:"engine"`
	Report   ReportConfig   `yaml:"report"`
	Logging  LoggingConfig  `yaml:"logging"`
}

type ServerConfig struct {
	Port        int    `yaml:"port"`
	MetricsPort int    `yaml:"metrics_port"`
	AdminToken  string `yaml:"admin_token"`

	// RateLimit is requests per second per client; 0 disables limiting.
	RateLimit  float64 `yaml:"rate_limit"`
	RateBurst  int     `yaml:"rate_burst"`
	MaxBodyKiB int     `yaml:"max_body_kib"`
}

// DatabaseConfig selects the run store. Driver is "postgres", "sqlite" or "memory".
type DatabaseConfig struct {
	Driver string `yaml:"driver"`
	URL    string `yaml:"url"`
	Path   string `yaml:"path"`
}

type HermesConfig struct {
	URL string `yaml:"url"`
}

type BrokerConfig struct {
	TickIntervalMs int `yaml:"tick_interval_ms"`
	MaxConcurrent  int `yaml:"max_concurrent"`
	BatchSize      int `yaml:"batch_size"`
}

type EngineConfig struct {
	// Precision is the number of decimals weighted cells are rounded to; -1 disables rounding.
	TriangularPrecision  int    `yaml:"triangular_precision"`
	TrapezoidalPrecision int    `yaml:"trapezoidal_precision"`
	RoundRanking         bool   `yaml:"round_ranking"`
	NegativeIdeal        string `yaml:"negative_ideal"`
}

type ReportConfig struct {
	RankingDecimals        int `yaml:"ranking_decimals"`
	ClassificationDecimals int `yaml:"classification_decimals"`
}

type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

func (c *Config) TickInterval() time.Duration {
	return time.Duration(c.Broker.TickIntervalMs) * time.Millisecond
}

func Default() *Config {
	return &Config{
		Server: ServerConfig{
			Port:        8700,
			MetricsPort: 8701,
			RateLimit:   20,
			RateBurst:   40,
			MaxBodyKiB:  1024,
		},
		Database: DatabaseConfig{
			Driver: "memory",
			Path:   "ftopsis.db",
		},
		Hermes: HermesConfig{
			URL: "nats://localhost:4222",
		},
		Broker: BrokerConfig{
			TickIntervalMs: 2000,
			MaxConcurrent:  4,
			BatchSize:      32,
		},
		Engine: EngineConfig{
			TriangularPrecision:  4,
			TrapezoidalPrecision: ftopsis.NoRounding,
			RoundRanking:         false,
			NegativeIdeal:        string(ftopsis.NegativeAdjacent),
		},
		Report: ReportConfig{
			RankingDecimals:        2,
			ClassificationDecimals: 5,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
		},
	}
}

func Load(path string) (*Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read config: %w", err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config: %w", err)
		}
	}

	applyEnv(cfg)
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

// Validate reports every out-of-range setting at once.
func (c *Config) Validate() error {
	var errs []error
	checkPrecision := func(name string, p int) {
		if p < ftopsis.NoRounding || p > 15 {
			errs = append(errs, fmt.Errorf("%s must be between -1 and 15, got %d", name, p))
		}
	}
	checkPrecision("engine.triangular_precision", c.Engine.TriangularPrecision)
	checkPrecision("engine.trapezoidal_precision", c.Engine.TrapezoidalPrecision)
	if _, err := ftopsis.ParseNegativeStrategy(c.Engine.NegativeIdeal); err != nil {
		errs = append(errs, fmt.Errorf("engine.negative_ideal: %w", err))
	}

	if c.Report.RankingDecimals < 0 || c.Report.RankingDecimals > 15 {
		errs = append(errs, fmt.Errorf("report.ranking_decimals must be between 0 and 15, got %d", c.Report.RankingDecimals))
	}
	if c.Report.ClassificationDecimals < 0 || c.Report.ClassificationDecimals > 15 {
		errs = append(errs, fmt.Errorf("report.classification_decimals must be between 0 and 15, got %d", c.Report.ClassificationDecimals))
	}

	switch c.Database.Driver {
	case "memory":
	case "postgres":
		if c.Database.URL == "" {
			errs = append(errs, errors.New("database.url is required for the postgres driver"))
		}
	case "sqlite":
		if c.Database.Path == "" {
			errs = append(errs, errors.New("database.path is required for the sqlite driver"))
		}
	default:
		errs = append(errs, fmt.Errorf("database.driver %q is not one of postgres, sqlite, memory", c.Database.Driver))
	}

	if c.Broker.MaxConcurrent < 1 {
		errs = append(errs, fmt.Errorf("broker.max_concurrent must be positive, got %d", c.Broker.MaxConcurrent))
	}
	if c.Broker.TickIntervalMs <= 0 {
		errs = append(errs, fmt.Errorf("broker.tick_interval_ms must be positive, got %d", c.Broker.TickIntervalMs))
	}
	if c.Server.RateLimit < 0 {
		errs = append(errs, fmt.Errorf("server.rate_limit must not be negative"))
	}
	return errors.Join(errs...)
}

func applyEnv(cfg *Config) {
	if v := os.Getenv("FTOPSIS_PORT"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.Server.Port = n
		}
	}
	if v := os.Getenv("FTOPSIS_METRICS_PORT"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.Server.MetricsPort = n
		}
	}
	if v := os.Getenv("FTOPSIS_ADMIN_TOKEN"); v != "" {
		cfg.Server.AdminToken = v
	}
	if v := os.Getenv("FTOPSIS_DATABASE_DRIVER"); v != "" {
		cfg.Database.Driver = v
	}
	if v := os.Getenv("FTOPSIS_DATABASE_URL"); v != "" {
		cfg.Database.URL = v
		if os.Getenv("FTOPSIS_DATABASE_DRIVER") == "" {
			cfg.Database.Driver = "postgres"
		}
	}
	if v := os.Getenv("FTOPSIS_SQLITE_PATH"); v != "" {
		cfg.Database.Path = v
	}
	if v := os.Getenv("FTOPSIS_HERMES_URL"); v != "" {
		cfg.Hermes.URL = v
	}
	if v := os.Getenv("FTOPSIS_TICK_INTERVAL_MS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.Broker.TickIntervalMs = n
		}
	}
	if v := os.Getenv("FTOPSIS_MAX_CONCURRENT"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.Broker.MaxConcurrent = n
		}
	}
	if v := os.Getenv("FTOPSIS_TRIANGULAR_PRECISION"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.Engine.TriangularPrecision = n
		}
	}
	if v := os.Getenv("FTOPSIS_TRAPEZOIDAL_PRECISION"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.Engine.TrapezoidalPrecision = n
		}
	}
	if v := os.Getenv("FTOPSIS_ROUND_RANKING"); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			cfg.Engine.RoundRanking = b
		}
	}
	if v := os.Getenv("FTOPSIS_NEGATIVE_IDEAL"); v != "" {
		cfg.Engine.NegativeIdeal = v
	}
	if v := os.Getenv("FTOPSIS_LOG_LEVEL"); v != "" {
		cfg.Logging.Level = v
	}
}
