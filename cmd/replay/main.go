// Command replay downloads recorded Battlesnake games, re-runs the planner for
// every living snake on every turn and writes the decisions as parquet.
package main

import (
	"context"
	"flag"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/groundedlens/BUAASE2025-PairProgramming/config"
	"github.com/groundedlens/BUAASE2025-PairProgramming/ingest"
	"github.com/groundedlens/BUAASE2025-PairProgramming/logging"
	"github.com/groundedlens/BUAASE2025-PairProgramming/planner"
	"github.com/groundedlens/BUAASE2025-PairProgramming/store"
)

func main() {
	outDir := flag.String("out-dir", config.EnvOrDefault("OUT_DIR", "data/decisions"), "Directory for batch .parquet files")
	logPath := flag.String("log-path", config.EnvOrDefault("WRITTEN_LOG", "data/written_games.log"), "Append-only log of replayed game IDs")
	games := flag.String("games", "", "Comma separated game IDs; empty crawls the leaderboards")
	flushGames := flag.Int("flush-games", config.EnvInt("FLUSH_GAMES", 200), "Flush after this many games")
	flushEvery := flag.Duration("flush-every", config.EnvDuration("FLUSH_EVERY", 10*time.Minute), "Flush at this interval regardless of count")
	maxPlayers := flag.Int("max-players", config.EnvInt("MAX_PLAYERS", 50), "Players checked per leaderboard")
	delay := flag.Duration("delay", config.EnvDuration("DELAY", 500*time.Millisecond), "Delay between leaderboard requests")
	workers := flag.Int("workers", config.EnvInt("WORKERS", 4), "Concurrent game downloads")
	policy := flag.String("policy", config.EnvOrDefault("SNAKE_POLICY", "reachability"), "Decision policy")
	hazards := flag.Bool("hazards-as-barriers", config.EnvBool("HAZARDS_AS_BARRIERS", true), "Treat hazard cells as walls")
	pretty := flag.Bool("pretty-logs", config.EnvBool("PRETTY_LOGS", false), "Indented JSON logs")
	flag.Parse()

	logger := logging.New(os.Stderr, slog.LevelInfo, *pretty)
	slog.SetDefault(logger)

	cfg, err := config.EngineFromEnv()
	if err == nil {
		cfg.Policy, err = planner.ParsePolicy(*policy)
	}
	if err != nil {
		logger.Error("engine config", "err", err)
		os.Exit(2)
	}
	engine := planner.New(cfg, logger)

	written, err := store.OpenWrittenLog(*logPath)
	if err != nil {
		logger.Error("open written log", "err", err)
		os.Exit(1)
	}
	defer written.Close()

	logger.Info("starting replay",
		"out_dir", *outDir, "written_log", *logPath, "already_written", written.Count(),
		"policy", cfg.Policy.String(), "workers", *workers)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	ids := make(chan string, 1000)
	go func() {
		defer close(ids)
		if *games != "" {
			for _, id := range strings.Split(*games, ",") {
				if id = strings.TrimSpace(id); id != "" && !written.Has(id) {
					ids <- id
				}
			}
			return
		}
		dc := ingest.DefaultDiscoveryConfig()
		dc.MaxPlayers = *maxPlayers
		dc.RequestDelay = *delay
		if _, err := ingest.NewDiscovery(dc, written.Has, logger).Discover(ctx, ids); err != nil {
			logger.Warn("discovery stopped", "err", err)
		}
	}()

	results := make(chan replayed, 64)
	dlCfg := ingest.DefaultDownloaderConfig()
	dlCfg.Workers = *workers
	dl := ingest.NewDownloader(dlCfg, logger)
	opts := ingest.ConvertOptions{HazardsAsBarriers: *hazards}
	go func() {
		defer close(results)
		dl.Run(ctx, ids, func(g *ingest.Game) error {
			rows, err := ingest.Replay(g, engine, opts, "replay")
			if err != nil {
				return err
			}
			results <- replayed{gameID: g.ID, rows: rows}
			return nil
		})
	}()

	c := &collector{outDir: *outDir, written: written, flushGames: max(*flushGames, 1), logger: logger}
	if *flushEvery <= 0 {
		*flushEvery = 10 * time.Minute
	}
	ticker := time.NewTicker(*flushEvery)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			c.flush("ticker")
		case r, ok := <-results:
			if !ok {
				c.flush("final")
				st := dl.Stats()
				logger.Info("replay complete",
					"downloaded", st.Downloaded, "failed", st.Failed, "frames", st.Frames,
					"batches", c.batches, "rows", c.rowsWritten)
				return
			}
			c.add(r)
		}
	}
}
