// Command battlesnake serves the Battlesnake API, answering every /move with
// the planner's decision.
package main

import (
	"context"
	"errors"
	"flag"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/groundedlens/BUAASE2025-PairProgramming/config"
	"github.com/groundedlens/BUAASE2025-PairProgramming/ingest"
	"github.com/groundedlens/BUAASE2025-PairProgramming/logging"
	"github.com/groundedlens/BUAASE2025-PairProgramming/planner"
)

func main() {
	fs := flag.NewFlagSet(os.Args[0], flag.ExitOnError)
	listen := fs.String("listen", config.EnvOrDefault("LISTEN", ":8080"), "HTTP listen address")
	policy := fs.String("policy", config.EnvOrDefault("SNAKE_POLICY", "astar"), "Decision policy: reachability, astar or greedy")
	lookahead := fs.Int("lookahead", config.EnvInt("SNAKE_LOOKAHEAD", 50), "Lookahead horizon for the reachability policy")
	hazards := fs.Bool("hazards-as-barriers", config.EnvBool("HAZARDS_AS_BARRIERS", true), "Treat hazard cells as walls")
	recordDir := fs.String("record-dir", config.EnvOrDefault("RECORD_DIR", ""), "Write decisions as parquet into this directory (empty disables)")
	logLevel := fs.String("log-level", config.EnvOrDefault("LOG_LEVEL", "info"), "Log level")
	pretty := fs.Bool("pretty-logs", config.EnvBool("PRETTY_LOGS", false), "Indented JSON logs")
	_ = fs.Parse(os.Args[1:])

	level, err := logging.ParseLevel(*logLevel)
	if err != nil {
		slog.Error("bad log level", "err", err)
		os.Exit(2)
	}
	logger := logging.New(os.Stderr, level, *pretty)
	slog.SetDefault(logger)

	cfg, err := config.EngineFromEnv()
	if err != nil {
		logger.Error("engine config", "err", err)
		os.Exit(2)
	}
	if cfg.Policy, err = planner.ParsePolicy(*policy); err != nil {
		logger.Error("engine config", "err", err)
		os.Exit(2)
	}
	cfg.LookaheadHorizon = *lookahead

	server := NewServer(planner.New(cfg, logger), ingest.ConvertOptions{HazardsAsBarriers: *hazards}, *recordDir, logger)
	srv := &http.Server{
		Addr:              *listen,
		Handler:           server.routes(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()

	logger.Info("battlesnake server listening", "addr", *listen, "policy", cfg.Policy.String(), "record_dir", *recordDir)
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Error("server stopped", "err", err)
		os.Exit(1)
	}
	server.Close()
}
