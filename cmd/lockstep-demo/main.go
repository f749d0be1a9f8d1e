package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/oliverbestmann/lockstep"
	"github.com/oliverbestmann/lockstep/internal/config"
	"github.com/pkg/profile"
)

type Config struct {
	Lockstep lockstep.Config

	Clients  int    `env:"LOCKSTEP_DEMO_CLIENTS" envDefault:"4"`
	Ticks    int    `env:"LOCKSTEP_DEMO_TICKS" envDefault:"1024"`
	MaxDelay int    `env:"LOCKSTEP_DEMO_MAX_DELAY" envDefault:"6"`
	Seed     uint64 `env:"LOCKSTEP_DEMO_SEED" envDefault:"1"`

	// Profile enables profiling, either "cpu" or "mem".
	Profile string `env:"LOCKSTEP_PROFILE"`
}

func main() {
	os.Exit(mainWithExitCode())
}

func mainWithExitCode() int {
	var cfg Config
	if err := config.ParseEnv(&cfg); err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 2
	}

	if err := cfg.validate(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 2
	}

	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: cfg.Lockstep.LogLevel,
	})))

	switch cfg.Profile {
	case "cpu":
		defer profile.Start(profile.CPUProfile).Stop()
	case "mem":
		defer profile.Start(profile.MemProfile).Stop()
	}

	result, err := run(cfg)
	if err != nil {
		slog.Error("Run failed", slog.String("err", err.Error()))
		return 1
	}

	for idx, peer := range result.Peers {
		slog.Info(
			"Peer finished",
			slog.Int("peer", idx),
			slog.Any("tick", peer.Tick),
			slog.String("checksum", fmt.Sprintf("%016x", peer.Checksum)),
			slog.Int("rollbacks", peer.Stats.Rollback.Count),
			slog.Int("resimulatedTicks", peer.Stats.ResimulatedTicks),
			slog.Duration("avgStep", peer.Stats.Step.MovingAverage),
		)
	}

	if !result.InSync() {
		slog.Error("Peers desynchronized")
		return 1
	}

	slog.Info("Peers in sync")
	return 0
}

func (c Config) validate() error {
	if err := c.Lockstep.Validate(); err != nil {
		return err
	}

	if c.Clients <= 0 {
		return fmt.Errorf("number of clients must be positive, got %d", c.Clients)
	}

	if c.Ticks <= 0 {
		return fmt.Errorf("number of ticks must be positive, got %d", c.Ticks)
	}

	if c.Lockstep.HistoryTicks/2 <= inputDelay {
		return fmt.Errorf("history of %d ticks is too short for an input delay of %d", c.Lockstep.HistoryTicks, inputDelay)
	}

	// a command must arrive while its tick is still within the history window
	if c.MaxDelay < 0 || c.MaxDelay >= c.Lockstep.HistoryTicks/2 {
		return fmt.Errorf("max delay must be within [0, %d), got %d", c.Lockstep.HistoryTicks/2, c.MaxDelay)
	}

	switch c.Profile {
	case "", "cpu", "mem":
	default:
		return fmt.Errorf("unknown profile %q", c.Profile)
	}

	return nil
}
