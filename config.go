package lockstep

import (
	"fmt"
	"log/slog"

	"github.com/oliverbestmann/lockstep/internal/config"
)

const (
	DefaultTicksPerSecond = 16

	// DefaultHistoryTicks keeps 16 seconds of history at the default tick rate.
	DefaultHistoryTicks = DefaultTicksPerSecond * 16
)

// Config configures a Simulation.
type Config struct {
	TicksPerSecond int `env:"LOCKSTEP_TICKS_PER_SECOND" envDefault:"16"`

	// HistoryTicks is the capacity of every history and of the command window.
	// Must be a power of two.
	HistoryTicks int `env:"LOCKSTEP_HISTORY_TICKS" envDefault:"256"`

	LogLevel slog.Level `env:"LOCKSTEP_LOG_LEVEL" envDefault:"info"`
}

func DefaultConfig() Config {
	return Config{
		TicksPerSecond: DefaultTicksPerSecond,
		HistoryTicks:   DefaultHistoryTicks,
		LogLevel:       slog.LevelInfo,
	}
}

// LoadConfig reads the configuration from the environment.
func LoadConfig() (Config, error) {
	var cfg Config
	if err := config.ParseEnv(&cfg); err != nil {
		return Config{}, err
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}

	return cfg, nil
}

func (c Config) Validate() error {
	if c.TicksPerSecond <= 0 {
		return fmt.Errorf("ticks per second must be positive, got %d", c.TicksPerSecond)
	}

	if c.HistoryTicks < 2 || c.HistoryTicks&(c.HistoryTicks-1) != 0 {
		return fmt.Errorf("history ticks must be a power of two of at least 2, got %d", c.HistoryTicks)
	}

	return nil
}
