// Command viewer serves a read-only JSON API over recorded decision batches.
package main

import (
	"context"
	"errors"
	"flag"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/groundedlens/BUAASE2025-PairProgramming/config"
	"github.com/groundedlens/BUAASE2025-PairProgramming/logging"
)

func main() {
	fs := flag.NewFlagSet(os.Args[0], flag.ExitOnError)
	listen := fs.String("listen", config.EnvOrDefault("LISTEN", ":8090"), "HTTP listen address")
	dataDirs := fs.String("data-dirs", config.EnvOrDefault("DATA_DIRS", "data/decisions"), "Comma separated directories holding batch_*.parquet")
	refresh := fs.Duration("refresh", config.EnvDuration("REFRESH", 30*time.Second), "Reopen the parquet view after this long")
	pretty := fs.Bool("pretty-logs", config.EnvBool("PRETTY_LOGS", false), "Indented JSON logs")
	_ = fs.Parse(os.Args[1:])

	logger := logging.New(os.Stderr, slog.LevelInfo, *pretty)
	slog.SetDefault(logger)

	roots := parseDataRoots(*dataDirs)
	logger.Info("viewer starting", "listen", *listen, "roots", strings.Join(roots, ","))

	server := NewServer(roots, *refresh, logger)
	defer server.Close()
	mux := http.NewServeMux()
	server.RegisterRoutes(mux)

	srv := &http.Server{Addr: *listen, Handler: mux, ReadHeaderTimeout: 5 * time.Second}
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()

	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Error("viewer stopped", "err", err)
		os.Exit(1)
	}
}
