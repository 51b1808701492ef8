package store

import (
	"errors"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/groundedlens/BUAASE2025-PairProgramming/game"
	"github.com/groundedlens/BUAASE2025-PairProgramming/planner"
)

func sampleState() *game.State {
	return &game.State{
		Board: game.DefaultBoard,
		Turn:  7,
		You:   game.Snake{ID: "me", Alive: true, Body: []game.Point{{X: 1, Y: 1}, {X: 2, Y: 1}}},
		Rivals: []game.Snake{
			{ID: "r1", Alive: true, Body: []game.Point{{X: 5, Y: 5}}},
			{ID: "r2"},
		},
		Food:     []game.Point{{X: 1, Y: 2}},
		Barriers: []game.Point{{X: 4, Y: 4}},
	}
}

func sampleRows(t *testing.T, n int) []DecisionRow {
	t.Helper()
	e := planner.New(planner.DefaultConfig(), nil)
	rows := make([]DecisionRow, 0, n)
	for i := 0; i < n; i++ {
		s := sampleState()
		s.Turn = int32(i)
		row, err := NewDecisionRow("g1", "test", s, e.Decide(s))
		if err != nil {
			t.Fatalf("NewDecisionRow: %v", err)
		}
		rows = append(rows, row)
	}
	return rows
}

func TestEncodeDecodeState(t *testing.T) {
	s := sampleState()
	raw, err := EncodeState(s)
	if err != nil {
		t.Fatalf("EncodeState: %v", err)
	}
	got, err := DecodeState(raw)
	if err != nil {
		t.Fatalf("DecodeState: %v", err)
	}
	if got.Board != s.Board || got.Turn != s.Turn || len(got.Rivals) != 2 || got.Rivals[1].Alive {
		t.Fatalf("decoded=%+v", got)
	}
	if got.You.Body[1] != s.You.Body[1] || got.Barriers[0] != s.Barriers[0] {
		t.Fatalf("decoded cells differ: %+v", got)
	}

	if _, err := EncodeState(&game.State{}); err == nil {
		t.Fatalf("expected error for empty board")
	}
}

func TestWriteBatchParquetAtomic_RoundTrip(t *testing.T) {
	dir := t.TempDir()
	rows := sampleRows(t, 5)

	path, err := WriteBatchParquetAtomic(dir, rows)
	if err != nil {
		t.Fatalf("write: %v", err)
	}
	if filepath.Dir(path) != dir {
		t.Fatalf("batch written to %s, want %s", path, dir)
	}
	leftovers, _ := os.ReadDir(filepath.Join(dir, "tmp"))
	if len(leftovers) != 0 {
		t.Fatalf("tmp dir not empty: %v", leftovers)
	}

	got, err := ReadDecisions(path)
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if len(got) != len(rows) {
		t.Fatalf("rows=%d want %d", len(got), len(rows))
	}
	for i := range rows {
		if got[i].Turn != rows[i].Turn || got[i].Move != rows[i].Move || got[i].Reason != rows[i].Reason {
			t.Fatalf("row %d: got %+v want %+v", i, got[i], rows[i])
		}
		if got[i].Policy != "reachability" || got[i].Move != game.MoveUp {
			t.Fatalf("row %d: policy=%s move=%d", i, got[i].Policy, got[i].Move)
		}
	}
	s, err := DecodeState(got[0].State)
	if err != nil || s.You.ID != "me" {
		t.Fatalf("state column: %+v %v", s, err)
	}

	batches, err := ListBatches(dir)
	if err != nil || len(batches) != 1 || batches[0] != path {
		t.Fatalf("ListBatches=%v,%v", batches, err)
	}
}

func TestBatchWriter(t *testing.T) {
	dir := t.TempDir()
	w, err := NewBatchWriter(dir)
	if err != nil {
		t.Fatalf("NewBatchWriter: %v", err)
	}
	rows := sampleRows(t, 8)

	var wg sync.WaitGroup
	for _, r := range rows {
		wg.Add(1)
		go func(r DecisionRow) {
			defer wg.Done()
			if err := w.Write(r); err != nil {
				t.Errorf("write: %v", err)
			}
		}(r)
	}
	wg.Wait()
	w.GameDone()

	if _, err := os.Stat(w.OutPath()); !os.IsNotExist(err) {
		t.Fatalf("batch visible before Finalize: %v", err)
	}
	path, n, games, err := w.Finalize()
	if err != nil {
		t.Fatalf("Finalize: %v", err)
	}
	if n != 8 || games != 1 || path != w.OutPath() {
		t.Fatalf("finalize=%s,%d,%d", path, n, games)
	}
	got, err := ReadDecisions(path)
	if err != nil || len(got) != 8 {
		t.Fatalf("read back %d rows, err=%v", len(got), err)
	}
	if err := w.Write(rows[0]); !errors.Is(err, ErrClosed) {
		t.Fatalf("write after finalize err=%v", err)
	}
}

func TestBatchWriter_EmptyBatchIsRemoved(t *testing.T) {
	dir := t.TempDir()
	w, err := NewBatchWriter(dir)
	if err != nil {
		t.Fatalf("NewBatchWriter: %v", err)
	}
	path, n, _, err := w.Finalize()
	if err != nil || path != "" || n != 0 {
		t.Fatalf("finalize=%q,%d,%v", path, n, err)
	}
	entries, _ := os.ReadDir(filepath.Join(dir, "tmp"))
	if len(entries) != 0 {
		t.Fatalf("tmp file left behind: %v", entries)
	}
}

func TestWrittenLog(t *testing.T) {
	path := filepath.Join(t.TempDir(), "logs", "written.log")
	l, err := OpenWrittenLog(path)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	if err := l.Add("a", "", "b", "a"); err != nil {
		t.Fatalf("add: %v", err)
	}
	if !l.Has("a") || !l.Has("b") || l.Has("c") || l.Count() != 2 {
		t.Fatalf("log contents wrong: count=%d", l.Count())
	}
	if err := l.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}
	if err := l.Add("c"); err == nil {
		t.Fatalf("expected error after close")
	}

	// A torn last line does not break the next open.
	f, _ := os.OpenFile(path, os.O_APPEND|os.O_WRONLY, 0o644)
	_, _ = f.WriteString("  \nc")
	_ = f.Close()

	l2, err := OpenWrittenLog(path)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	defer l2.Close()
	if l2.Count() != 3 || !l2.Has("c") {
		t.Fatalf("reopened count=%d", l2.Count())
	}
}
