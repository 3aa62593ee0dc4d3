package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/uodit05/algo-trade-test-1/internal/core"
)

type Config struct {
	Server     ServerConfig              `mapstructure:"server"`
	Simulation SimulationConfig          `mapstructure:"simulation"`
	Strategies map[string]StrategyConfig `mapstructure:"strategies"`
	Archive    ArchiveConfig             `mapstructure:"archive"`
	Metrics    MetricsConfig             `mapstructure:"metrics"`
	Log        LogConfig                 `mapstructure:"log"`
}

type ServerConfig struct {
	Host   string `mapstructure:"host"`
	Port   int    `mapstructure:"port"`
	APIKey string `mapstructure:"api_key"`
}

// SimulationConfig holds the default parameters for runs started
// without explicit overrides.
type SimulationConfig struct {
	Universe       []string      `mapstructure:"universe"`
	Interval       string        `mapstructure:"interval"`
	Period         string        `mapstructure:"period"`
	InitialCash    float64       `mapstructure:"initial_cash"`
	CommissionRate float64       `mapstructure:"commission_rate"`
	TickDelay      time.Duration `mapstructure:"tick_delay"`
	SignalLogSize  int           `mapstructure:"signal_log_size"`
}

type StrategyConfig struct {
	Enabled bool           `mapstructure:"enabled"`
	Params  map[string]any `mapstructure:"params"`
}

// ArchiveConfig selects where finished runs are stored.
type ArchiveConfig struct {
	Enabled bool     `mapstructure:"enabled"`
	Type    string   `mapstructure:"type"` // "localfs" or "s3"
	Path    string   `mapstructure:"path"` // For localfs
	S3      S3Config `mapstructure:"s3"`   // For S3
}

type S3Config struct {
	Bucket    string `mapstructure:"bucket"`
	Endpoint  string `mapstructure:"endpoint"`
	Region    string `mapstructure:"region"`
	AccessKey string `mapstructure:"access_key"`
	SecretKey string `mapstructure:"secret_key"`
	Prefix    string `mapstructure:"prefix"`
}

// MetricsConfig holds metrics configuration.
type MetricsConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	Path    string `mapstructure:"path"`
}

// LogConfig holds logger configuration.
type LogConfig struct {
	Level string `mapstructure:"level"`
	Mode  string `mapstructure:"mode"` // "development" or "production"
}

// Load reads configuration from file
func Load(path string) (*Config, error) {
	v := viper.New()
	v.SetConfigFile(path)

	// Support environment variable overrides
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("reading config: %w", err)
	}

	// Expand environment variables in string values
	for _, key := range v.AllKeys() {
		val := v.GetString(key)
		if strings.HasPrefix(val, "${") && strings.HasSuffix(val, "}") {
			envKey := strings.TrimSuffix(strings.TrimPrefix(val, "${"), "}")
			v.Set(key, os.Getenv(envKey))
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshaling config: %w", err)
	}

	return &cfg, nil
}

// Defaults returns a config with sensible defaults
func Defaults() *Config {
	return &Config{
		Server: ServerConfig{
			Host: "0.0.0.0",
			Port: 8080,
		},
		Simulation: SimulationConfig{
			Universe:       []string{"AAPL", "MSFT", "GOOG"},
			Interval:       "1d",
			Period:         "1y",
			InitialCash:    100000,
			CommissionRate: 0.001,
			TickDelay:      100 * time.Millisecond,
			SignalLogSize:  10000,
		},
		Archive: ArchiveConfig{
			Enabled: true,
			Type:    "localfs",
			Path:    "data/runs",
		},
		Metrics: MetricsConfig{
			Enabled: true,
			Path:    "/metrics",
		},
		Log: LogConfig{
			Level: "info",
			Mode:  "production",
		},
	}
}

// Validate checks the configuration for errors.
func (c *Config) Validate() error {
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return core.WrapError(core.ErrConfigInvalid,
			fmt.Errorf("port must be between 1 and 65535, got %d", c.Server.Port))
	}

	if len(c.Simulation.Universe) == 0 {
		return core.WrapError(core.ErrConfigMissing,
			fmt.Errorf("simulation universe must name at least one ticker"))
	}
	if c.Simulation.InitialCash <= 0 {
		return core.WrapError(core.ErrConfigInvalid,
			fmt.Errorf("initial_cash must be positive, got %f", c.Simulation.InitialCash))
	}
	if c.Simulation.CommissionRate < 0 {
		return core.WrapError(core.ErrConfigInvalid,
			fmt.Errorf("commission_rate cannot be negative, got %f", c.Simulation.CommissionRate))
	}
	if c.Simulation.TickDelay < 0 {
		return core.WrapError(core.ErrConfigInvalid,
			fmt.Errorf("tick_delay cannot be negative, got %s", c.Simulation.TickDelay))
	}

	if c.Archive.Enabled {
		switch c.Archive.Type {
		case "localfs":
			if c.Archive.Path == "" {
				return core.WrapError(core.ErrConfigMissing,
					fmt.Errorf("archive path required for localfs"))
			}
		case "s3":
			if c.Archive.S3.Bucket == "" {
				return core.WrapError(core.ErrConfigMissing,
					fmt.Errorf("s3 bucket required when archive type is s3"))
			}
		default:
			return core.WrapError(core.ErrConfigInvalid,
				fmt.Errorf("unknown archive type %q", c.Archive.Type))
		}
	}

	return nil
}
