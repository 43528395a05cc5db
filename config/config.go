// Package config contains treesync configuration definitions.
package config

import (
	"fmt"

	"github.com/mitchellh/mapstructure"
	"github.com/spf13/viper"

	"github.com/spacemeshos/go-treesync/lst"
	"github.com/spacemeshos/go-treesync/treesync/peer"
)

// Config defines the top level configuration of the treesync tool.
type Config struct {
	ConfigFile string        `mapstructure:"config"`
	Sync       peer.Config   `mapstructure:"sync"`
	Logging    LoggerConfig  `mapstructure:"logging"`
	LST        LSTConfig     `mapstructure:"lst"`
	Metrics    MetricsConfig `mapstructure:"metrics"`
}

// LSTConfig configures loading of sample trees.
type LSTConfig struct {
	// ShareCacheSize is the number of distinct subtrees remembered while restoring
	// structural sharing between loaded trees.
	ShareCacheSize int `mapstructure:"share-cache-size"`
}

// MetricsConfig configures pushing metrics to a Prometheus push gateway.
type MetricsConfig struct {
	// Push is the push gateway url. Metrics are not pushed when it's empty.
	Push string `mapstructure:"push"`
	Job  string `mapstructure:"job"`
}

// DefaultConfig returns the default configuration.
func DefaultConfig() Config {
	return Config{
		Sync:    peer.DefaultConfig(),
		Logging: defaultLoggingConfig(),
		LST: LSTConfig{
			ShareCacheSize: lst.DefaultShareCacheSize,
		},
		Metrics: MetricsConfig{
			Job: "treesync",
		},
	}
}

// LoadConfig reads the config file into vip. An empty location leaves vip untouched.
// The file is read from the filesystem set on vip.
func LoadConfig(fileLocation string, vip *viper.Viper) error {
	if fileLocation == "" {
		return nil
	}
	vip.SetConfigFile(fileLocation)
	if err := vip.ReadInConfig(); err != nil {
		return fmt.Errorf("failed to read config file %s: %w", fileLocation, err)
	}
	return nil
}

// Decode returns the default configuration overridden by the values set in vip.
func Decode(vip *viper.Viper) (*Config, error) {
	conf := DefaultConfig()
	hook := mapstructure.ComposeDecodeHookFunc(
		mapstructure.StringToTimeDurationHookFunc(),
		mapstructure.TextUnmarshallerHookFunc(),
	)
	if err := vip.Unmarshal(&conf, viper.DecodeHook(hook)); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	if err := conf.Validate(); err != nil {
		return nil, err
	}
	return &conf, nil
}

// Validate checks the configuration values.
func (cfg *Config) Validate() error {
	switch {
	case cfg.Sync.BatchSize <= 0:
		return fmt.Errorf("invalid batch size %d", cfg.Sync.BatchSize)
	case cfg.Sync.MaxBatchMessages <= 0:
		return fmt.Errorf("invalid max batch messages %d", cfg.Sync.MaxBatchMessages)
	case cfg.Sync.MaxValueSize <= 0:
		return fmt.Errorf("invalid max value size %d", cfg.Sync.MaxValueSize)
	case cfg.LST.ShareCacheSize <= 0:
		return fmt.Errorf("invalid share cache size %d", cfg.LST.ShareCacheSize)
	}
	return cfg.Logging.Validate()
}
