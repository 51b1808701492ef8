package ingest

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gorilla/websocket"

	"github.com/groundedlens/BUAASE2025-PairProgramming/game"
	"github.com/groundedlens/BUAASE2025-PairProgramming/planner"
)

func sampleFrame() Frame {
	return Frame{
		Turn: 3,
		Snakes: []SnakeData{
			{ID: "me", Health: 90, Body: []Coord{{0, 0}, {1, 0}, {2, 0}}},
			{ID: "rival", Health: 80, Body: []Coord{{5, 5}, {5, 4}, {5, 3}}},
			{ID: "dead", Health: 0, Body: []Coord{{9, 9}}, Death: &Death{Cause: "wall-collision", Turn: 2}},
		},
		Food:    []Coord{{0, 1}},
		Hazards: []Coord{{3, 3}},
	}
}

func TestFrameToState_ShiftsToOneIndexed(t *testing.T) {
	s, err := FrameToState(sampleFrame(), 11, 11, "me", ConvertOptions{})
	if err != nil {
		t.Fatalf("FrameToState: %v", err)
	}
	if s.Board.Size != 11 || s.Turn != 3 {
		t.Fatalf("board=%d turn=%d", s.Board.Size, s.Turn)
	}
	if head, _ := s.You.Head(); head != (game.Point{X: 1, Y: 1}) {
		t.Fatalf("head=%v want (1,1)", head)
	}
	if s.Food[0] != (game.Point{X: 1, Y: 2}) {
		t.Fatalf("food=%v", s.Food)
	}
	if len(s.Rivals) != 2 || !s.Rivals[0].Alive || s.Rivals[1].Alive {
		t.Fatalf("rivals=%+v", s.Rivals)
	}
	if len(s.Barriers) != 0 {
		t.Fatalf("square board without hazards has barriers: %v", s.Barriers)
	}

	if got := planner.New(planner.DefaultConfig(), nil).Move(s); got != game.MoveUp {
		t.Fatalf("move=%d want up toward food", got)
	}
}

func TestFrameToState_PadsAndHazards(t *testing.T) {
	s, err := FrameToState(sampleFrame(), 7, 5, "me", ConvertOptions{HazardsAsBarriers: true})
	if err != nil {
		t.Fatalf("FrameToState: %v", err)
	}
	if s.Board.Size != 7 {
		t.Fatalf("size=%d want 7", s.Board.Size)
	}
	// Rows 6 and 7 pad a 7x5 board, plus one hazard.
	if len(s.Barriers) != 2*7+1 {
		t.Fatalf("barriers=%d want 15", len(s.Barriers))
	}
	hasHazard := false
	for _, b := range s.Barriers {
		if b.Y <= 5 && b != (game.Point{X: 4, Y: 4}) {
			t.Fatalf("unexpected barrier %v inside the real board", b)
		}
		hasHazard = hasHazard || b == (game.Point{X: 4, Y: 4})
	}
	if !hasHazard {
		t.Fatalf("hazard missing")
	}

	tall, err := FrameToState(sampleFrame(), 5, 7, "me", ConvertOptions{})
	if err != nil || len(tall.Barriers) != 2*7 {
		t.Fatalf("tall board barriers=%d err=%v", len(tall.Barriers), err)
	}
}

func TestFrameToState_Errors(t *testing.T) {
	if _, err := FrameToState(sampleFrame(), 11, 11, "ghost", ConvertOptions{}); !errors.Is(err, ErrSnakeNotFound) {
		t.Fatalf("err=%v want ErrSnakeNotFound", err)
	}
	if _, err := FrameToState(sampleFrame(), 0, 11, "me", ConvertOptions{}); err == nil {
		t.Fatalf("expected error for empty board")
	}
}

func TestReplay(t *testing.T) {
	g := &Game{ID: "g1", Frames: []Frame{sampleFrame(), sampleFrame()}}
	rows, err := Replay(g, planner.New(planner.DefaultConfig(), nil), ConvertOptions{}, "test")
	if err != nil {
		t.Fatalf("Replay: %v", err)
	}
	// Two living snakes on two frames.
	if len(rows) != 4 {
		t.Fatalf("rows=%d want 4", len(rows))
	}
	if rows[0].SnakeID != "me" || rows[0].BoardSize != StandardBoard || rows[0].Move != game.MoveUp {
		t.Fatalf("first row=%+v", rows[0])
	}
}

func TestDiscovery(t *testing.T) {
	var (
		mu   sync.Mutex
		hits = map[string]int{}
	)
	mux := http.NewServeMux()
	mux.HandleFunc("/leaderboard/standard", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `<html><body>
			<a href="/leaderboard/standard/alice/stats">alice</a>
			<a href="/leaderboard/standard/alice/stats">alice again</a>
			<a href="/leaderboard/standard/bob/stats">bob</a>
			<a href="/leaderboard/standard/carol/stats">carol</a>
			<a href="/about">about</a>
		</body></html>`)
	})
	mux.HandleFunc("/leaderboard/standard/", func(w http.ResponseWriter, r *http.Request) {
		mu.Lock()
		hits[r.URL.Path]++
		mu.Unlock()
		switch {
		case strings.Contains(r.URL.Path, "alice"):
			fmt.Fprint(w, `<a href="/game/aaa-111">g</a><a href="/game/bbb-222">g</a><a href="/game/aaa-111">dup</a>`)
		case strings.Contains(r.URL.Path, "bob"):
			fmt.Fprint(w, `<a href="/game/bbb-222">g</a><a href="/game/ccc-333">g</a>`)
		default:
			http.Error(w, "nope", http.StatusInternalServerError)
		}
	})
	mux.HandleFunc("/leaderboard/broken", func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "down", http.StatusBadGateway)
	})
	srv := httptest.NewServer(mux)
	defer srv.Close()

	cfg := DiscoveryConfig{
		BaseURL:         srv.URL,
		LeaderboardURLs: []string{srv.URL + "/leaderboard/broken", srv.URL + "/leaderboard/standard"},
		MaxPlayers:      2,
	}
	known := func(id string) bool { return id == "ccc-333" }
	d := NewDiscovery(cfg, known, nil)

	out := make(chan string, 10)
	n, err := d.Discover(context.Background(), out)
	close(out)
	if err != nil {
		t.Fatalf("Discover: %v", err)
	}
	var got []string
	for id := range out {
		got = append(got, id)
	}
	if n != 2 || strings.Join(got, ",") != "aaa-111,bbb-222" {
		t.Fatalf("sent %d ids: %v", n, got)
	}
	mu.Lock()
	defer mu.Unlock()
	if hits["/leaderboard/standard/carol/stats"] != 0 {
		t.Fatalf("MaxPlayers not applied")
	}
}

func TestDiscovery_ContextCancelled(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `<a href="/leaderboard/standard/alice/stats">a</a><a href="/game/aaa-111">g</a>`)
	}))
	defer srv.Close()

	cfg := DiscoveryConfig{BaseURL: srv.URL, LeaderboardURLs: []string{srv.URL + "/leaderboard/standard"}}
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := NewDiscovery(cfg, nil, nil).Discover(ctx, make(chan string)); !errors.Is(err, context.Canceled) {
		t.Fatalf("err=%v want context.Canceled", err)
	}
}

// engineServer streams the given events for any game and then closes.
func engineServer(t *testing.T, events []string, closeNormally bool) *httptest.Server {
	t.Helper()
	upgrader := websocket.Upgrader{}
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			t.Errorf("upgrade: %v", err)
			return
		}
		defer conn.Close()
		for _, ev := range events {
			if err := conn.WriteMessage(websocket.TextMessage, []byte(ev)); err != nil {
				return
			}
		}
		if closeNormally {
			_ = conn.WriteMessage(websocket.CloseMessage,
				websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
		}
	}))
}

func wsURL(srv *httptest.Server) string {
	return "ws" + strings.TrimPrefix(srv.URL, "http") + "/games/%s/events"
}

const (
	infoEvent  = `{"type":"game_info","data":{"game":{"id":"g1","width":7,"height":7},"ruleset":{"name":"standard"}}}`
	frameEvent = `{"type":"frame","data":{"turn":%d,"snakes":[{"id":"me","health":100,"body":[{"x":0,"y":0},{"x":1,"y":0}]}],"food":[{"x":0,"y":3}]}}`
)

func TestDownloader_Download(t *testing.T) {
	events := []string{
		infoEvent,
		`not json`,
		fmt.Sprintf(frameEvent, 0),
		fmt.Sprintf(frameEvent, 1),
		`{"type":"game_end","data":{}}`,
		fmt.Sprintf(frameEvent, 2),
	}
	srv := engineServer(t, events, false)
	defer srv.Close()

	d := NewDownloader(DownloaderConfig{EngineURL: wsURL(srv), ConnectTimeout: time.Second, ReadTimeout: time.Second}, nil)
	g, err := d.Download(context.Background(), "g1")
	if err != nil {
		t.Fatalf("Download: %v", err)
	}
	if g.Ruleset != "standard" || g.Width != 7 || len(g.Frames) != 2 || g.Frames[1].Turn != 1 {
		t.Fatalf("game=%+v", g)
	}
}

func TestDownloader_NoFrames(t *testing.T) {
	srv := engineServer(t, []string{infoEvent}, true)
	defer srv.Close()

	d := NewDownloader(DownloaderConfig{EngineURL: wsURL(srv), ConnectTimeout: time.Second, ReadTimeout: time.Second}, nil)
	if _, err := d.Download(context.Background(), "g1"); err == nil {
		t.Fatalf("expected error for a game without frames")
	}
}

func TestDownloader_Run(t *testing.T) {
	srv := engineServer(t, []string{infoEvent, fmt.Sprintf(frameEvent, 0)}, true)
	defer srv.Close()

	d := NewDownloader(DownloaderConfig{Workers: 2, EngineURL: wsURL(srv), ConnectTimeout: time.Second, ReadTimeout: time.Second}, nil)
	ids := make(chan string, 3)
	ids <- "a"
	ids <- "b"
	ids <- "c"
	close(ids)

	var mu sync.Mutex
	var seen []string
	d.Run(context.Background(), ids, func(g *Game) error {
		mu.Lock()
		defer mu.Unlock()
		seen = append(seen, g.ID)
		if g.ID == "c" {
			return errors.New("handler failed")
		}
		return nil
	})
	st := d.Stats()
	if len(seen) != 3 || st.Downloaded != 2 || st.Failed != 1 || st.Frames != 2 {
		t.Fatalf("seen=%v stats=%+v", seen, st)
	}
}
