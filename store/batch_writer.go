package store

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/parquet-go/parquet-go"
)

// ErrClosed is returned by writes after Finalize.
var ErrClosed = errors.New("batch writer is closed")

// BatchWriter streams decision rows into a single batch file under outDir/tmp
// and moves it into outDir on Finalize. It is safe for concurrent use.
type BatchWriter struct {
	mu      sync.Mutex
	tmpPath string
	outPath string

	file   *os.File
	writer *parquet.GenericWriter[DecisionRow]

	rows  int
	games int
}

func NewBatchWriter(outDir string) (*BatchWriter, error) {
	if outDir == "" {
		return nil, errors.New("outDir is required")
	}
	if abs, err := filepath.Abs(outDir); err == nil {
		outDir = abs
	}
	tmpDir := filepath.Join(outDir, "tmp")
	if err := os.MkdirAll(tmpDir, 0o755); err != nil {
		return nil, fmt.Errorf("create tmp dir: %w", err)
	}

	name := batchName()
	tmpPath := filepath.Join(tmpDir, name)
	f, err := os.OpenFile(tmpPath, os.O_CREATE|os.O_TRUNC|os.O_WRONLY, 0o644)
	if err != nil {
		return nil, fmt.Errorf("open tmp parquet: %w", err)
	}

	return &BatchWriter{
		tmpPath: tmpPath,
		outPath: filepath.Join(outDir, name),
		file:    f,
		writer:  parquet.NewGenericWriter[DecisionRow](f, writerOptions()...),
	}, nil
}

func (b *BatchWriter) OutPath() string { return b.outPath }

// Rows returns the number of rows written so far.
func (b *BatchWriter) Rows() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.rows
}

func (b *BatchWriter) Write(rows ...DecisionRow) error {
	if len(rows) == 0 {
		return nil
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.writer == nil {
		return ErrClosed
	}
	if _, err := b.writer.Write(rows); err != nil {
		return fmt.Errorf("write rows: %w", err)
	}
	b.rows += len(rows)
	return nil
}

// GameDone counts one finished game in the batch.
func (b *BatchWriter) GameDone() {
	b.mu.Lock()
	b.games++
	b.mu.Unlock()
}

// Finalize closes the file and renames it into place. An empty batch is
// removed and reported with an empty path.
func (b *BatchWriter) Finalize() (path string, rows, games int, err error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.writer == nil {
		return "", 0, 0, nil
	}

	closeErr := b.writer.Close()
	b.writer = nil
	_ = b.file.Sync()
	fileErr := b.file.Close()
	b.file = nil
	if closeErr != nil {
		return "", 0, 0, fmt.Errorf("close parquet writer: %w", closeErr)
	}
	if fileErr != nil {
		return "", 0, 0, fmt.Errorf("close parquet file: %w", fileErr)
	}

	if b.rows == 0 {
		_ = os.Remove(b.tmpPath)
		return "", 0, 0, nil
	}
	if err := os.Rename(b.tmpPath, b.outPath); err != nil {
		return "", 0, 0, fmt.Errorf("rename parquet: %w", err)
	}
	return b.outPath, b.rows, b.games, nil
}
