package ingest

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"regexp"
	"time"

	"github.com/PuerkitoBio/goquery"
)

// DiscoveryConfig holds leaderboard crawl settings.
type DiscoveryConfig struct {
	// BaseURL resolves the relative player links found on leaderboard pages.
	BaseURL         string
	LeaderboardURLs []string
	RequestDelay    time.Duration
	// MaxPlayers caps players checked per leaderboard; 0 means no cap.
	MaxPlayers int
	UserAgent  string
}

func DefaultDiscoveryConfig() DiscoveryConfig {
	return DiscoveryConfig{
		BaseURL: "https://play.battlesnake.com",
		LeaderboardURLs: []string{
			"https://play.battlesnake.com/leaderboard/standard",
			"https://play.battlesnake.com/leaderboard/standard-duels",
		},
		RequestDelay: 500 * time.Millisecond,
		MaxPlayers:   100,
		UserAgent:    "snake-replay/1.0",
	}
}

var (
	gameLinkRe   = regexp.MustCompile(`/game/([a-f0-9-]+)`)
	playerLinkRe = regexp.MustCompile(`/leaderboard/[^/]+/([^/]+)/stats`)
)

// Discovery crawls leaderboards for recent game IDs.
type Discovery struct {
	cfg    DiscoveryConfig
	client *http.Client
	known  func(gameID string) bool
	logger *slog.Logger
}

// NewDiscovery returns a crawler. known filters out IDs that were already
// processed; it may be nil.
func NewDiscovery(cfg DiscoveryConfig, known func(string) bool, logger *slog.Logger) *Discovery {
	if known == nil {
		known = func(string) bool { return false }
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Discovery{
		cfg:    cfg,
		client: &http.Client{Timeout: 30 * time.Second},
		known:  known,
		logger: logger.With("component", "discovery"),
	}
}

type player struct {
	name     string
	statsURL string
}

// Discover sends every new game ID to out and returns how many were sent.
// A failing leaderboard or player page is logged and skipped.
func (d *Discovery) Discover(ctx context.Context, out chan<- string) (int, error) {
	seen := make(map[string]bool)
	sent := 0
	for _, board := range d.cfg.LeaderboardURLs {
		players, err := d.players(ctx, board)
		if err != nil {
			if ctx.Err() != nil {
				return sent, ctx.Err()
			}
			d.logger.Warn("leaderboard failed", "url", board, "err", err)
			continue
		}
		if d.cfg.MaxPlayers > 0 && len(players) > d.cfg.MaxPlayers {
			players = players[:d.cfg.MaxPlayers]
		}
		d.logger.Info("leaderboard scraped", "url", board, "players", len(players))

		for i, p := range players {
			ids, err := d.games(ctx, p.statsURL)
			if err != nil {
				if ctx.Err() != nil {
					return sent, ctx.Err()
				}
				d.logger.Warn("player page failed", "player", p.name, "err", err)
				continue
			}
			for _, id := range ids {
				if seen[id] || d.known(id) {
					continue
				}
				seen[id] = true
				select {
				case out <- id:
					sent++
				case <-ctx.Done():
					return sent, ctx.Err()
				}
			}
			if i < len(players)-1 && d.cfg.RequestDelay > 0 {
				select {
				case <-time.After(d.cfg.RequestDelay):
				case <-ctx.Done():
					return sent, ctx.Err()
				}
			}
		}
	}
	d.logger.Info("discovery complete", "new_games", sent)
	return sent, nil
}

func (d *Discovery) fetch(ctx context.Context, pageURL string) (*goquery.Document, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, pageURL, nil)
	if err != nil {
		return nil, err
	}
	if d.cfg.UserAgent != "" {
		req.Header.Set("User-Agent", d.cfg.UserAgent)
	}
	resp, err := d.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("GET %s: status %d", pageURL, resp.StatusCode)
	}
	return goquery.NewDocumentFromReader(resp.Body)
}

func (d *Discovery) players(ctx context.Context, board string) ([]player, error) {
	doc, err := d.fetch(ctx, board)
	if err != nil {
		return nil, err
	}
	base, err := url.Parse(d.cfg.BaseURL)
	if err != nil {
		return nil, fmt.Errorf("base url: %w", err)
	}

	var out []player
	seen := make(map[string]bool)
	doc.Find("a[href*='/leaderboard/']").Each(func(_ int, s *goquery.Selection) {
		href, ok := s.Attr("href")
		if !ok {
			return
		}
		m := playerLinkRe.FindStringSubmatch(href)
		if m == nil || seen[m[1]] {
			return
		}
		ref, err := url.Parse(href)
		if err != nil {
			return
		}
		seen[m[1]] = true
		out = append(out, player{name: m[1], statsURL: base.ResolveReference(ref).String()})
	})
	return out, nil
}

func (d *Discovery) games(ctx context.Context, statsURL string) ([]string, error) {
	doc, err := d.fetch(ctx, statsURL)
	if err != nil {
		return nil, err
	}
	var ids []string
	seen := make(map[string]bool)
	doc.Find("a[href*='/game/']").Each(func(_ int, s *goquery.Selection) {
		href, _ := s.Attr("href")
		if m := gameLinkRe.FindStringSubmatch(href); m != nil && !seen[m[1]] {
			seen[m[1]] = true
			ids = append(ids, m[1])
		}
	})
	return ids, nil
}
