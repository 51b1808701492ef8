package main

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"

	"github.com/groundedlens/BUAASE2025-PairProgramming/ingest"
	"github.com/groundedlens/BUAASE2025-PairProgramming/planner"
	"github.com/groundedlens/BUAASE2025-PairProgramming/store"
)

func newTestServer(t *testing.T, opts ingest.ConvertOptions, recordDir string) (*Server, *httptest.Server) {
	t.Helper()
	logger := slog.New(slog.DiscardHandler)
	s := NewServer(planner.New(planner.DefaultConfig(), nil), opts, recordDir, logger)
	ts := httptest.NewServer(s.routes())
	t.Cleanup(ts.Close)
	return s, ts
}

func moveRequest(gameID string, turn int, hazards []ingest.Coord) GameRequest {
	you := Battlesnake{ID: "me", Name: "me", Health: 90, Body: []ingest.Coord{{X: 0, Y: 0}, {X: 1, Y: 0}, {X: 2, Y: 0}}}
	rival := Battlesnake{ID: "rival", Name: "rival", Health: 90, Body: []ingest.Coord{{X: 8, Y: 8}, {X: 8, Y: 7}, {X: 8, Y: 6}}}
	return GameRequest{
		Game: Game{ID: gameID, Ruleset: Ruleset{Name: "standard"}},
		Turn: turn,
		Board: Board{
			Width: 11, Height: 11,
			Food:    []ingest.Coord{{X: 0, Y: 1}},
			Hazards: hazards,
			Snakes:  []Battlesnake{you, rival},
		},
		You: you,
	}
}

func post(t *testing.T, url string, body any) *http.Response {
	t.Helper()
	raw, err := json.Marshal(body)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	resp, err := http.Post(url, "application/json", bytes.NewReader(raw))
	if err != nil {
		t.Fatalf("POST %s: %v", url, err)
	}
	return resp
}

func postMove(t *testing.T, ts *httptest.Server, req GameRequest) MoveResponse {
	t.Helper()
	resp := post(t, ts.URL+"/move", req)
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status=%d", resp.StatusCode)
	}
	var mr MoveResponse
	if err := json.NewDecoder(resp.Body).Decode(&mr); err != nil {
		t.Fatalf("decode: %v", err)
	}
	return mr
}

func TestIndex(t *testing.T) {
	_, ts := newTestServer(t, ingest.ConvertOptions{}, "")
	resp, err := http.Get(ts.URL + "/")
	if err != nil {
		t.Fatalf("GET: %v", err)
	}
	defer resp.Body.Close()
	var info InfoResponse
	if err := json.NewDecoder(resp.Body).Decode(&info); err != nil || info.APIVersion != "1" {
		t.Fatalf("info=%+v err=%v", info, err)
	}

	resp2, err := http.Get(ts.URL + "/nope")
	if err != nil {
		t.Fatalf("GET: %v", err)
	}
	resp2.Body.Close()
	if resp2.StatusCode != http.StatusNotFound {
		t.Fatalf("status=%d want 404", resp2.StatusCode)
	}
}

func TestMove_TowardFood(t *testing.T) {
	_, ts := newTestServer(t, ingest.ConvertOptions{}, "")
	if got := postMove(t, ts, moveRequest("g1", 1, nil)); got.Move != "up" {
		t.Fatalf("move=%q want up", got.Move)
	}
}

func TestMove_HazardWallsFallBackToUp(t *testing.T) {
	// The hazard over the food leaves no legal move; the API still gets an answer.
	s, ts := newTestServer(t, ingest.ConvertOptions{HazardsAsBarriers: true}, "")
	events := s.hub.subscribe()
	defer s.hub.unsubscribe(events)

	got := postMove(t, ts, moveRequest("g1", 1, []ingest.Coord{{X: 0, Y: 1}}))
	if got.Move != "up" || got.Shout != planner.ReasonNoCandidates {
		t.Fatalf("response=%+v", got)
	}
	select {
	case ev := <-events:
		if ev.Code != -1 || ev.Move != "up" {
			t.Fatalf("event=%+v want code -1", ev)
		}
	case <-time.After(time.Second):
		t.Fatalf("no event published")
	}
}

func TestMove_BadRequest(t *testing.T) {
	_, ts := newTestServer(t, ingest.ConvertOptions{}, "")
	resp, err := http.Post(ts.URL+"/move", "application/json", strings.NewReader("{"))
	if err != nil {
		t.Fatalf("POST: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("status=%d want 400", resp.StatusCode)
	}
}

func TestRecordingFlushedOnEnd(t *testing.T) {
	dir := t.TempDir()
	_, ts := newTestServer(t, ingest.ConvertOptions{}, dir)

	post(t, ts.URL+"/start", moveRequest("g1", 0, nil)).Body.Close()
	postMove(t, ts, moveRequest("g1", 1, nil))
	postMove(t, ts, moveRequest("g1", 2, nil))

	if batches, _ := store.ListBatches(dir); len(batches) != 0 {
		t.Fatalf("batch visible before /end: %v", batches)
	}
	post(t, ts.URL+"/end", moveRequest("g1", 3, nil)).Body.Close()

	batches, err := store.ListBatches(dir)
	if err != nil || len(batches) != 1 {
		t.Fatalf("batches=%v err=%v", batches, err)
	}
	rows, err := store.ReadDecisions(batches[0])
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if len(rows) != 2 || rows[0].GameID != "g1" || rows[0].BoardSize != 11 || rows[0].Source != "battlesnake" {
		t.Fatalf("rows=%+v", rows)
	}
}

func TestWatchStreamsDecisions(t *testing.T) {
	s, ts := newTestServer(t, ingest.ConvertOptions{}, "")

	conn, _, err := websocket.DefaultDialer.Dial("ws"+strings.TrimPrefix(ts.URL, "http")+"/watch", nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	defer conn.Close()

	deadline := time.Now().Add(2 * time.Second)
	for s.hub.count() == 0 {
		if time.Now().After(deadline) {
			t.Fatalf("watcher never subscribed")
		}
		time.Sleep(5 * time.Millisecond)
	}

	postMove(t, ts, moveRequest("g7", 4, nil))

	_ = conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	var ev WatchEvent
	if err := conn.ReadJSON(&ev); err != nil {
		t.Fatalf("read: %v", err)
	}
	if ev.GameID != "g7" || ev.Turn != 4 || ev.Move != "up" || ev.Code != 0 || ev.Policy != "reachability" {
		t.Fatalf("event=%+v", ev)
	}
}

func TestHubDropsSlowWatcher(t *testing.T) {
	h := newHub(slog.New(slog.DiscardHandler))
	ch := h.subscribe()
	for i := 0; i <= watchBuffer; i++ {
		h.publish(WatchEvent{Turn: i})
	}
	if h.count() != 0 {
		t.Fatalf("slow watcher kept")
	}
	n := 0
	for range ch {
		n++
	}
	if n != watchBuffer {
		t.Fatalf("buffered=%d want %d", n, watchBuffer)
	}
	h.unsubscribe(ch)
}
