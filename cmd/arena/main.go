// Command arena plays local matches between engine-driven snakes, either in a
// terminal UI or headless.
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/groundedlens/BUAASE2025-PairProgramming/arena"
	"github.com/groundedlens/BUAASE2025-PairProgramming/config"
	"github.com/groundedlens/BUAASE2025-PairProgramming/logging"
	"github.com/groundedlens/BUAASE2025-PairProgramming/planner"
)

func parsePolicies(list string) ([]planner.Policy, error) {
	var out []planner.Policy
	for _, name := range strings.Split(list, ",") {
		if strings.TrimSpace(name) == "" {
			continue
		}
		p, err := planner.ParsePolicy(name)
		if err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, nil
}

func main() {
	size := flag.Int("size", config.EnvInt("ARENA_SIZE", 8), "Board size")
	policies := flag.String("snakes", config.EnvOrDefault("ARENA_SNAKES", "reachability,astar"), "Comma separated policy per snake")
	maxTurns := flag.Int("max-turns", config.EnvInt("ARENA_MAX_TURNS", 200), "Turn limit per match")
	seed := flag.Int64("seed", 1, "Seed of the first match")
	interval := flag.Duration("interval", config.EnvDuration("ARENA_INTERVAL", 150*time.Millisecond), "Delay between turns in the UI")
	headless := flag.Int("headless", 0, "Play this many matches without the UI and log the results")
	logLevel := flag.String("log-level", config.EnvOrDefault("LOG_LEVEL", "info"), "Log level")
	flag.Parse()

	level, err := logging.ParseLevel(*logLevel)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}
	logger := logging.New(os.Stderr, level, false)

	cfg := arena.DefaultConfig()
	cfg.Size = int32(*size)
	cfg.MaxTurns = *maxTurns
	cfg.Seed = *seed
	if cfg.Engine, err = config.EngineFromEnv(); err != nil {
		logger.Error("engine config", "err", err)
		os.Exit(2)
	}
	if cfg.Policies, err = parsePolicies(*policies); err != nil {
		logger.Error("snakes", "err", err)
		os.Exit(2)
	}

	if *headless > 0 {
		if err := runHeadless(cfg, *headless, logger); err != nil {
			logger.Error("arena stopped", "err", err)
			os.Exit(1)
		}
		return
	}

	p := tea.NewProgram(initialModel(cfg, *interval), tea.WithAltScreen())
	if _, err := p.Run(); err != nil {
		logger.Error("ui", "err", err)
		os.Exit(1)
	}
}

func runHeadless(cfg arena.Config, matches int, logger *slog.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	wins := make(map[string]int)
	for i := 0; i < matches; i++ {
		m, err := arena.NewMatch(cfg, logger)
		if err != nil {
			return err
		}
		res, err := m.Run(ctx)
		if err != nil {
			return err
		}
		winner := res.Winner
		if winner == "" {
			winner = "draw"
		}
		wins[winner]++
		logger.Info("match finished", "seed", cfg.Seed, "turns", res.Turns, "winner", winner, "scores", res.Scores)
		cfg.Seed++
	}
	logger.Info("arena complete", "matches", matches, "wins", wins)
	return nil
}
