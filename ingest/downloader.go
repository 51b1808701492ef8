package ingest

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gorilla/websocket"
)

// DownloaderConfig holds websocket download settings.
type DownloaderConfig struct {
	Workers int
	// EngineURL is a format string taking the game ID.
	EngineURL      string
	ConnectTimeout time.Duration
	ReadTimeout    time.Duration
}

func DefaultDownloaderConfig() DownloaderConfig {
	return DownloaderConfig{
		Workers:        4,
		EngineURL:      "wss://engine.battlesnake.com/games/%s/events",
		ConnectTimeout: 10 * time.Second,
		ReadTimeout:    30 * time.Second,
	}
}

// Event is one message of the engine event stream.
type Event struct {
	Type string          `json:"type"`
	Data json.RawMessage `json:"data"`
}

type gameInfo struct {
	Game struct {
		ID     string `json:"id"`
		Width  int    `json:"width"`
		Height int    `json:"height"`
	} `json:"game"`
	Ruleset struct {
		Name string `json:"name"`
	} `json:"ruleset"`
}

// Game is a downloaded game with every frame in turn order.
type Game struct {
	ID      string
	Ruleset string
	Width   int
	Height  int
	Frames  []Frame
}

// Stats counts downloader outcomes.
type Stats struct {
	Downloaded int64
	Failed     int64
	Frames     int64
}

// Downloader streams games from the engine websocket.
type Downloader struct {
	cfg    DownloaderConfig
	logger *slog.Logger
	stats  Stats
}

func NewDownloader(cfg DownloaderConfig, logger *slog.Logger) *Downloader {
	if cfg.Workers <= 0 {
		cfg.Workers = 1
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Downloader{cfg: cfg, logger: logger.With("component", "downloader")}
}

func (d *Downloader) Stats() Stats {
	return Stats{
		Downloaded: atomic.LoadInt64(&d.stats.Downloaded),
		Failed:     atomic.LoadInt64(&d.stats.Failed),
		Frames:     atomic.LoadInt64(&d.stats.Frames),
	}
}

// Run downloads every ID received on ids with a pool of workers and passes
// each game to handle. It returns when ids is closed and all workers are done.
func (d *Downloader) Run(ctx context.Context, ids <-chan string, handle func(*Game) error) {
	var wg sync.WaitGroup
	for i := 0; i < d.cfg.Workers; i++ {
		wg.Add(1)
		go func(worker int) {
			defer wg.Done()
			for id := range ids {
				if ctx.Err() != nil {
					continue
				}
				g, err := d.Download(ctx, id)
				if err == nil {
					err = handle(g)
				}
				if err != nil {
					atomic.AddInt64(&d.stats.Failed, 1)
					d.logger.Warn("game failed", "worker", worker, "game", id, "err", err)
					continue
				}
				atomic.AddInt64(&d.stats.Downloaded, 1)
				atomic.AddInt64(&d.stats.Frames, int64(len(g.Frames)))
				d.logger.Info("game downloaded", "worker", worker, "game", id, "frames", len(g.Frames))
			}
		}(i)
	}
	wg.Wait()
}

// Download reads the event stream of one game until game_end or close.
// A stream that breaks after at least one frame still yields a game.
func (d *Downloader) Download(ctx context.Context, gameID string) (*Game, error) {
	dialer := websocket.Dialer{HandshakeTimeout: d.cfg.ConnectTimeout}
	conn, _, err := dialer.DialContext(ctx, fmt.Sprintf(d.cfg.EngineURL, gameID), nil)
	if err != nil {
		return nil, fmt.Errorf("connect: %w", err)
	}
	defer conn.Close()

	g := &Game{ID: gameID}
	for {
		if d.cfg.ReadTimeout > 0 {
			_ = conn.SetReadDeadline(time.Now().Add(d.cfg.ReadTimeout))
		}
		var ev Event
		if err := conn.ReadJSON(&ev); err != nil {
			var syntaxErr *json.SyntaxError
			if errors.As(err, &syntaxErr) {
				d.logger.Debug("skipping malformed event", "game", gameID, "err", err)
				continue
			}
			if websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) || len(g.Frames) > 0 {
				break
			}
			return nil, fmt.Errorf("read: %w", err)
		}

		switch ev.Type {
		case "game_info":
			var info gameInfo
			if err := json.Unmarshal(ev.Data, &info); err != nil {
				return nil, fmt.Errorf("game_info: %w", err)
			}
			g.Ruleset = info.Ruleset.Name
			g.Width, g.Height = info.Game.Width, info.Game.Height
		case "frame":
			var f Frame
			if err := json.Unmarshal(ev.Data, &f); err != nil {
				d.logger.Debug("skipping malformed frame", "game", gameID, "err", err)
				continue
			}
			g.Frames = append(g.Frames, f)
		case "game_end":
			return g, nil
		}
	}
	if len(g.Frames) == 0 {
		return nil, fmt.Errorf("game %s: no frames", gameID)
	}
	return g, nil
}
