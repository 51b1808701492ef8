package main

import (
	"log/slog"

	"github.com/groundedlens/BUAASE2025-PairProgramming/store"
)

// replayed is one game's worth of decision rows.
type replayed struct {
	gameID string
	rows   []store.DecisionRow
}

// collector buffers replayed games and writes them as one parquet batch.
// Game IDs reach the written log only after their batch is on disk.
type collector struct {
	outDir     string
	written    *store.WrittenLog
	flushGames int
	logger     *slog.Logger

	rows  []store.DecisionRow
	games []string

	batches     int
	rowsWritten int
}

func (c *collector) add(r replayed) {
	c.rows = append(c.rows, r.rows...)
	c.games = append(c.games, r.gameID)
	if len(c.games) >= c.flushGames {
		c.flush("count")
	}
}

func (c *collector) flush(reason string) {
	if len(c.games) == 0 {
		return
	}
	path, err := store.WriteBatchParquetAtomic(c.outDir, c.rows)
	if err != nil {
		c.logger.Error("flush failed", "reason", reason, "err", err)
		return
	}
	if err := c.written.Add(c.games...); err != nil {
		// The batch is on disk; at worst these games get replayed again.
		c.logger.Warn("written log append failed", "reason", reason, "err", err)
	}
	c.batches++
	c.rowsWritten += len(c.rows)
	c.logger.Info("batch flushed", "reason", reason, "games", len(c.games), "rows", len(c.rows), "path", path)
	c.rows = c.rows[:0]
	c.games = c.games[:0]
}
