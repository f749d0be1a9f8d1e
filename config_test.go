package lockstep

import (
	"log/slog"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestLoadConfig_Defaults(t *testing.T) {
	cfg, err := LoadConfig()
	require.NoError(t, err)
	require.Equal(t, DefaultConfig(), cfg)
}

func TestLoadConfig_Environment(t *testing.T) {
	t.Setenv("LOCKSTEP_TICKS_PER_SECOND", "30")
	t.Setenv("LOCKSTEP_HISTORY_TICKS", "64")
	t.Setenv("LOCKSTEP_LOG_LEVEL", "debug")

	cfg, err := LoadConfig()
	require.NoError(t, err)
	require.Equal(t, Config{TicksPerSecond: 30, HistoryTicks: 64, LogLevel: slog.LevelDebug}, cfg)
}

func TestLoadConfig_Invalid(t *testing.T) {
	t.Setenv("LOCKSTEP_HISTORY_TICKS", "100")

	_, err := LoadConfig()
	require.ErrorContains(t, err, "power of two")
}

func TestConfig_Validate(t *testing.T) {
	require.NoError(t, DefaultConfig().Validate())
	require.Error(t, Config{TicksPerSecond: 0, HistoryTicks: 256}.Validate())
	require.Error(t, Config{TicksPerSecond: 16, HistoryTicks: 1}.Validate())
}

func TestNewSimulation_InvalidConfig(t *testing.T) {
	require.Panics(t, func() {
		NewSimulation(Config{TicksPerSecond: 16, HistoryTicks: 3}, nil)
	})
}
