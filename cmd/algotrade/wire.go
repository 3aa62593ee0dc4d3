package main

import (
	"fmt"

	"github.com/uodit05/algo-trade-test-1/internal/config"
	"github.com/uodit05/algo-trade-test-1/internal/storage/archive"
	"github.com/uodit05/algo-trade-test-1/internal/strategy"
	"github.com/uodit05/algo-trade-test-1/internal/strategy/meanrev"
	"github.com/uodit05/algo-trade-test-1/internal/strategy/trend"
	"go.uber.org/zap"
)

// loadConfig loads the config file if one was given, falling back to
// defaults, and validates the result.
func loadConfig(log *zap.Logger) (*config.Config, error) {
	var cfg *config.Config
	var err error

	if cfgFile != "" {
		cfg, err = config.Load(cfgFile)
		if err != nil {
			return nil, fmt.Errorf("loading config: %w", err)
		}
	} else {
		cfg = config.Defaults()
		log.Warn("no config file specified, using defaults")
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}
	return cfg, nil
}

// buildRegistry registers all enabled strategies with their configured
// parameters. A strategy absent from the config is registered with
// defaults; it must be listed with enabled=false to be excluded.
func buildRegistry(cfg *config.Config) (*strategy.Registry, error) {
	registry := strategy.NewRegistry()

	if sc, ok := cfg.Strategies["trend_following"]; !ok || sc.Enabled {
		tc := trend.DefaultConfig()
		if ok {
			tc.ShortWindow = intParam(sc.Params, "short_window", tc.ShortWindow)
			tc.LongWindow = intParam(sc.Params, "long_window", tc.LongWindow)
			tc.RSIWindow = intParam(sc.Params, "rsi_window", tc.RSIWindow)
			tc.ATRWindow = intParam(sc.Params, "atr_window", tc.ATRWindow)
			tc.StopLossATRMult = floatParam(sc.Params, "stop_loss_atr_mult", tc.StopLossATRMult)
		}
		// Validate the parameters once up front; the factory rebuilds
		// with the same config, so it cannot fail afterwards.
		if _, err := trend.New(tc); err != nil {
			return nil, fmt.Errorf("building trend_following: %w", err)
		}
		registry.Register(func() strategy.Strategy {
			s, _ := trend.New(tc)
			return s
		})
	}

	if sc, ok := cfg.Strategies["mean_reversion"]; !ok || sc.Enabled {
		mc := meanrev.DefaultConfig()
		if ok {
			mc.RSIWindow = intParam(sc.Params, "rsi_window", mc.RSIWindow)
			mc.BBWindow = intParam(sc.Params, "bb_window", mc.BBWindow)
			mc.BBStdDev = floatParam(sc.Params, "bb_std_dev", mc.BBStdDev)
		}
		if _, err := meanrev.New(mc); err != nil {
			return nil, fmt.Errorf("building mean_reversion: %w", err)
		}
		registry.Register(func() strategy.Strategy {
			s, _ := meanrev.New(mc)
			return s
		})
	}

	if len(registry.Names()) == 0 {
		return nil, fmt.Errorf("no strategies enabled")
	}
	return registry, nil
}

// buildArchive creates the archive backend named in the config, or nil
// when archival is disabled.
func buildArchive(cfg *config.Config) (*archive.Archive, error) {
	if !cfg.Archive.Enabled {
		return nil, nil
	}
	var storage archive.Storage
	var err error
	switch cfg.Archive.Type {
	case "s3":
		storage, err = archive.NewS3(archive.S3Config{
			Bucket:    cfg.Archive.S3.Bucket,
			Endpoint:  cfg.Archive.S3.Endpoint,
			Region:    cfg.Archive.S3.Region,
			AccessKey: cfg.Archive.S3.AccessKey,
			SecretKey: cfg.Archive.S3.SecretKey,
			Prefix:    cfg.Archive.S3.Prefix,
		})
	default:
		storage, err = archive.NewLocalFS(cfg.Archive.Path)
	}
	if err != nil {
		return nil, fmt.Errorf("creating archive storage: %w", err)
	}
	return archive.New(storage), nil
}

// intParam reads an integer parameter, tolerating the numeric types
// viper produces when unmarshaling into map[string]any.
func intParam(params map[string]any, key string, def int) int {
	v, ok := params[key]
	if !ok {
		return def
	}
	switch n := v.(type) {
	case int:
		return n
	case int64:
		return int(n)
	case float64:
		return int(n)
	}
	return def
}

func floatParam(params map[string]any, key string, def float64) float64 {
	v, ok := params[key]
	if !ok {
		return def
	}
	switch n := v.(type) {
	case float64:
		return n
	case int:
		return float64(n)
	case int64:
		return float64(n)
	}
	return def
}
