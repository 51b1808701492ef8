package main

import (
	"context"
	"database/sql"
	"log/slog"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	_ "github.com/duckdb/duckdb-go/v2"

	"github.com/groundedlens/BUAASE2025-PairProgramming/game"
	"github.com/groundedlens/BUAASE2025-PairProgramming/store"
)

// DBCache keeps one in-memory DuckDB connection with a view over every
// decision batch under the roots, reopened when it gets older than refreshRate.
type DBCache struct {
	roots       []string
	refreshRate time.Duration
	logger      *slog.Logger

	mu          sync.RWMutex
	db          *sql.DB
	lastRefresh time.Time

	// Rebuilt lazily after each refresh.
	gamesIndex []GameSummary
}

func NewDBCache(roots []string, refreshRate time.Duration, logger *slog.Logger) *DBCache {
	return &DBCache{roots: roots, refreshRate: refreshRate, logger: logger}
}

// Get returns the cached connection, refreshing it if it is stale.
func (c *DBCache) Get() (*sql.DB, error) {
	c.mu.RLock()
	if c.db != nil && time.Since(c.lastRefresh) < c.refreshRate {
		db := c.db
		c.mu.RUnlock()
		return db, nil
	}
	c.mu.RUnlock()

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.db != nil && time.Since(c.lastRefresh) < c.refreshRate {
		return c.db, nil
	}
	return c.refreshLocked()
}

// Refresh reopens the view so newly flushed batches become visible.
func (c *DBCache) Refresh() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	_, err := c.refreshLocked()
	return err
}

func (c *DBCache) refreshLocked() (*sql.DB, error) {
	start := time.Now()
	files, err := batchFiles(c.roots)
	if err != nil {
		return nil, err
	}
	newDB, err := openDuckDB(files)
	if err != nil {
		return nil, err
	}
	if c.db != nil {
		_ = c.db.Close()
	}
	c.db = newDB
	c.lastRefresh = time.Now()
	c.gamesIndex = nil
	c.logger.Debug("db refreshed", "files", len(files), "took", time.Since(start))
	return c.db, nil
}

// GamesIndex returns the per-game summaries, building them on first use
// after a refresh.
func (c *DBCache) GamesIndex(ctx context.Context) ([]GameSummary, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.gamesIndex != nil && c.db != nil {
		return c.gamesIndex, nil
	}
	if c.db == nil {
		if _, err := c.refreshLocked(); err != nil {
			return nil, err
		}
	}
	games, err := queryAllGames(ctx, c.db, c.roots)
	if err != nil {
		return nil, err
	}
	c.gamesIndex = games
	return games, nil
}

func (c *DBCache) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.db == nil {
		return nil
	}
	err := c.db.Close()
	c.db = nil
	return err
}

func batchFiles(roots []string) ([]string, error) {
	var files []string
	for _, root := range roots {
		batches, err := store.ListBatches(root)
		if err != nil {
			return nil, err
		}
		files = append(files, batches...)
	}
	return files, nil
}

// openDuckDB creates the decisions view. read_parquet fails on an empty file
// list, so no files means an empty typed view.
func openDuckDB(files []string) (*sql.DB, error) {
	db, err := sql.Open("duckdb", ":memory:")
	if err != nil {
		return nil, err
	}
	_, _ = db.Exec("PRAGMA threads=4")

	sqlText := `CREATE OR REPLACE VIEW decisions AS
		SELECT * FROM (
			SELECT
				NULL::VARCHAR AS game_id,
				NULL::INTEGER AS turn,
				NULL::VARCHAR AS snake_id,
				NULL::INTEGER AS board_size,
				NULL::VARCHAR AS policy,
				NULL::INTEGER AS move,
				NULL::VARCHAR AS reason,
				NULL::INTEGER AS simulated,
				NULL::BLOB AS state_json,
				NULL::VARCHAR AS source,
				NULL::VARCHAR AS filename
		) WHERE 1=0`
	if len(files) > 0 {
		quoted := make([]string, len(files))
		for i, f := range files {
			quoted[i] = "'" + escapeSQLString(f) + "'"
		}
		sqlText = `CREATE OR REPLACE VIEW decisions AS
			SELECT * FROM read_parquet([` + strings.Join(quoted, ",") + `], filename=true, union_by_name=true)`
	}
	if _, err := db.Exec(sqlText); err != nil {
		_ = db.Close()
		return nil, err
	}
	return db, nil
}

func escapeSQLString(s string) string {
	return strings.ReplaceAll(s, "'", "''")
}

func makeRelativeToRoots(filename string, roots []string) string {
	best := filename
	for _, root := range roots {
		rel, err := filepath.Rel(root, filename)
		if err != nil || strings.HasPrefix(rel, "..") {
			continue
		}
		cand := filepath.ToSlash(filepath.Join(root, rel))
		if len(cand) < len(best) {
			best = cand
		}
	}
	return best
}

func queryAllGames(ctx context.Context, db *sql.DB, roots []string) ([]GameSummary, error) {
	rows, err := db.QueryContext(ctx, `SELECT
			game_id,
			MIN(turn)::INTEGER,
			MAX(turn)::INTEGER,
			COUNT(*)::BIGINT,
			COUNT(DISTINCT snake_id)::BIGINT,
			MIN(board_size)::INTEGER,
			MIN(policy)::VARCHAR,
			MIN(source)::VARCHAR,
			SUM(CASE WHEN move = -1 THEN 1 ELSE 0 END)::BIGINT,
			MIN(filename)::VARCHAR
		FROM decisions
		GROUP BY game_id
		ORDER BY game_id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]GameSummary, 0, 1024)
	for rows.Next() {
		var g GameSummary
		var file string
		if err := rows.Scan(&g.GameID, &g.MinTurn, &g.MaxTurn, &g.Decisions, &g.Snakes,
			&g.BoardSize, &g.Policy, &g.Source, &g.NoMoves, &file); err != nil {
			return nil, err
		}
		g.SourceFile = makeRelativeToRoots(file, roots)
		out = append(out, g)
	}
	return out, rows.Err()
}

func normalizeSort(sortKey, sortDir string) (string, string) {
	sk := strings.ToLower(strings.TrimSpace(sortKey))
	sd := strings.ToLower(strings.TrimSpace(sortDir))
	if sd != "asc" && sd != "desc" {
		sd = "asc"
	}
	switch sk {
	case "id", "game", "game_id":
		sk = "game_id"
	case "turns", "max_turn":
		sk = "max_turn"
	case "decisions":
		sk = "decisions"
	case "no_moves", "nomoves":
		sk = "no_moves"
	case "source":
		sk = "source"
	case "file", "filename":
		sk = "file"
	default:
		sk, sd = "game_id", "asc"
	}
	return sk, sd
}

// paginateGames sorts a copy of the index and returns one page of it.
func paginateGames(games []GameSummary, limit, offset int, sortKey, sortDir string) []GameSummary {
	sk, sd := normalizeSort(sortKey, sortDir)
	sorted := make([]GameSummary, len(games))
	copy(sorted, games)

	sort.SliceStable(sorted, func(i, j int) bool {
		a, b := sorted[i], sorted[j]
		if sd == "desc" {
			a, b = b, a
		}
		switch sk {
		case "max_turn":
			return a.MaxTurn < b.MaxTurn
		case "decisions":
			return a.Decisions < b.Decisions
		case "no_moves":
			return a.NoMoves < b.NoMoves
		case "source":
			return a.Source < b.Source
		case "file":
			return a.SourceFile < b.SourceFile
		default:
			return a.GameID < b.GameID
		}
	})

	if offset >= len(sorted) {
		return []GameSummary{}
	}
	return sorted[offset:min(offset+limit, len(sorted))]
}

func queryDecisions(ctx context.Context, db *sql.DB, gameID, snakeID string, withState bool) ([]Decision, error) {
	rows, err := db.QueryContext(ctx, `SELECT turn::INTEGER, snake_id, policy, move::INTEGER, reason, simulated::INTEGER, state_json
		FROM decisions
		WHERE game_id = ? AND (?::VARCHAR = '' OR snake_id = ?)
		ORDER BY turn ASC, snake_id ASC`, gameID, snakeID, snakeID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]Decision, 0, 256)
	for rows.Next() {
		var d Decision
		var state []byte
		if err := rows.Scan(&d.Turn, &d.SnakeID, &d.Policy, &d.Move, &d.Reason, &d.Simulated, &state); err != nil {
			return nil, err
		}
		d.MoveName = "none"
		if d.Move != game.NoMove {
			d.MoveName = game.MoveName(int(d.Move))
		}
		if withState {
			d.State = state
		}
		out = append(out, d)
	}
	return out, rows.Err()
}

func queryStats(ctx context.Context, db *sql.DB) (StatsResponse, error) {
	var resp StatsResponse
	if err := db.QueryRowContext(ctx, `SELECT
			COUNT(*)::BIGINT,
			COALESCE(SUM(CASE WHEN move = -1 THEN 1 ELSE 0 END), 0)::BIGINT
		FROM decisions`).Scan(&resp.Total, &resp.NoMoves); err != nil {
		return resp, err
	}

	rows, err := db.QueryContext(ctx, `SELECT
			policy,
			reason,
			COUNT(*)::BIGINT,
			COUNT(DISTINCT game_id)::BIGINT,
			AVG(simulated)::DOUBLE
		FROM decisions
		GROUP BY policy, reason
		ORDER BY policy, reason`)
	if err != nil {
		return resp, err
	}
	defer rows.Close()
	resp.Reasons = []ReasonStats{}
	for rows.Next() {
		var s ReasonStats
		if err := rows.Scan(&s.Policy, &s.Reason, &s.Count, &s.Games, &s.AvgSimulated); err != nil {
			return resp, err
		}
		resp.Reasons = append(resp.Reasons, s)
	}
	return resp, rows.Err()
}
