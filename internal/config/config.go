// Package config loads the simulator's configuration file via viper,
// grounded in the teacher's config.Load/LoggingConfig split
// (cmd/server/main.go's initLogger keys off cfg.Logging the same way).
package config

import (
	"fmt"
	"time"

	"github.com/spf13/viper"
)

// LoggingConfig controls zap construction (§6.2's ambient stack: structured
// logging everywhere the engine narrates a decision).
type LoggingConfig struct {
	Level  string `mapstructure:"level"`  // debug | info | warn | error
	Format string `mapstructure:"format"` // json | console
}

// EngineConfig controls battle-engine-wide defaults.
type EngineConfig struct {
	// Seed seeds the PRNG when a caller doesn't supply one explicitly
	// (§6.4). The battlesim driver replaces a zero seed with 1.
	Seed int64 `mapstructure:"seed"`
	// RequestTimeout is loaded with the rest of the config (default 5s),
	// but nothing in the module reads it: Battle.Step is synchronous and
	// never times out (§6.1).
	RequestTimeout time.Duration `mapstructure:"request_timeout"`
}

// DataConfig points at the on-disk data directory loaded at startup (§6.2).
type DataConfig struct {
	Root string `mapstructure:"root"`
}

// Config is the simulator's full configuration tree.
type Config struct {
	Logging LoggingConfig `mapstructure:"logging"`
	Engine  EngineConfig  `mapstructure:"engine"`
	Data    DataConfig    `mapstructure:"data"`
}

func defaults(v *viper.Viper) {
	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "console")
	v.SetDefault("engine.seed", 0)
	v.SetDefault("engine.request_timeout", 5*time.Second)
	v.SetDefault("data.root", "testdata")
}

// Load reads configPath (YAML) into a Config, applying defaults for any
// field the file omits and allowing BATTLESIM_-prefixed environment
// variables to override individual keys.
func Load(configPath string) (*Config, error) {
	v := viper.New()
	defaults(v)

	v.SetEnvPrefix("battlesim")
	v.AutomaticEnv()

	if configPath != "" {
		v.SetConfigFile(configPath)
		if err := v.ReadInConfig(); err != nil {
			if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
				return nil, fmt.Errorf("config: reading %s: %w", configPath, err)
			}
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("config: unmarshaling: %w", err)
	}
	return &cfg, nil
}
