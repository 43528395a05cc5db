package peer

import (
	"time"

	"github.com/spacemeshos/go-treesync/treesync"
	"github.com/spacemeshos/go-treesync/treesync/wire"
)

// Config configures a sync session.
type Config struct {
	BatchSize        int           `mapstructure:"batch-size"`
	Trace            bool          `mapstructure:"trace"`
	MaxValueSize     int           `mapstructure:"max-value-size"`
	MaxBatchMessages int           `mapstructure:"max-batch-messages"`
	Timeout          time.Duration `mapstructure:"timeout"`
}

// DefaultConfig returns the default session configuration.
func DefaultConfig() Config {
	limits := wire.DefaultLimits()
	return Config{
		BatchSize:        treesync.DefaultBatchSize,
		MaxValueSize:     limits.MaxValueSize,
		MaxBatchMessages: limits.MaxMessages,
		Timeout:          time.Minute,
	}
}

// Limits returns the wire limits for conduits used by the session.
func (c Config) Limits() wire.Limits {
	return wire.Limits{
		MaxMessages:  c.MaxBatchMessages,
		MaxValueSize: c.MaxValueSize,
	}
}
