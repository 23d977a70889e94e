package cleanup

import (
	"time"

	"github.com/turbokuzmich/yourcosmetics/pkg/config"
)

// Config holds cleanup worker configuration, sourced from the central config package.
type Config struct {
	CleanupInterval  time.Duration
	VerboseReporting bool
}

// NewConfig creates a new cleanup configuration by reading values
// from the already-initialized variables in the centralized /pkg/config package.
func NewConfig() *Config {
	return &Config{
		CleanupInterval:  config.StoreSweepInterval,
		VerboseReporting: config.LogLevel == "debug",
	}
}
