package main

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/groundedlens/BUAASE2025-PairProgramming/game"
	"github.com/groundedlens/BUAASE2025-PairProgramming/ingest"
	"github.com/groundedlens/BUAASE2025-PairProgramming/planner"
	"github.com/groundedlens/BUAASE2025-PairProgramming/store"
)

// Server answers the Battlesnake API with engine decisions.
type Server struct {
	engine *planner.Engine
	opts   ingest.ConvertOptions
	logger *slog.Logger
	hub    *hub

	// recordDir is empty when recording is off.
	recordDir string
	mu        sync.Mutex
	games     map[string]*store.BatchWriter
}

func NewServer(engine *planner.Engine, opts ingest.ConvertOptions, recordDir string, logger *slog.Logger) *Server {
	return &Server{
		engine:    engine,
		opts:      opts,
		logger:    logger,
		hub:       newHub(logger),
		recordDir: recordDir,
		games:     make(map[string]*store.BatchWriter),
	}
}

func (s *Server) routes() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/", s.handleIndex)
	mux.HandleFunc("/start", s.handleStart)
	mux.HandleFunc("/move", s.handleMove)
	mux.HandleFunc("/end", s.handleEnd)
	mux.HandleFunc("/watch", s.handleWatch)
	return mux
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(v)
}

func decodeRequest(w http.ResponseWriter, r *http.Request) (*GameRequest, bool) {
	var req GameRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return nil, false
	}
	return &req, true
}

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		http.NotFound(w, r)
		return
	}
	writeJSON(w, InfoResponse{
		APIVersion: "1",
		Author:     "pairprog",
		Color:      "#3b82f6",
		Head:       "default",
		Tail:       "default",
		Version:    "1.0.0",
	})
}

func (s *Server) handleStart(w http.ResponseWriter, r *http.Request) {
	req, ok := decodeRequest(w, r)
	if !ok {
		return
	}
	s.logger.Info("game started", "game", req.Game.ID, "ruleset", req.Game.Ruleset.Name,
		"width", req.Board.Width, "height", req.Board.Height)
	w.WriteHeader(http.StatusOK)
}

func (s *Server) handleMove(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	req, ok := decodeRequest(w, r)
	if !ok {
		return
	}

	state, err := ingest.FrameToState(req.frame(), req.Board.Width, req.Board.Height, req.You.ID, s.opts)
	if err != nil {
		// The API needs an answer either way.
		s.logger.Warn("bad move request", "game", req.Game.ID, "turn", req.Turn, "err", err)
		writeJSON(w, MoveResponse{Move: game.MoveName(game.MoveUp)})
		return
	}

	d := s.engine.Decide(state)
	move := d.Move
	if move == game.NoMove {
		move = game.MoveUp
	}
	elapsed := time.Since(start)
	s.logger.Info("move", "game", req.Game.ID, "turn", req.Turn, "move", game.MoveName(move),
		"reason", d.Reason, "elapsed", elapsed)

	s.record(req.Game.ID, state, d)
	s.hub.publish(WatchEvent{
		GameID:    req.Game.ID,
		Turn:      req.Turn,
		SnakeID:   req.You.ID,
		Move:      game.MoveName(move),
		Code:      d.Move,
		Policy:    d.Policy.String(),
		Reason:    d.Reason,
		Simulated: d.Simulated,
		ElapsedUS: elapsed.Microseconds(),
	})
	writeJSON(w, MoveResponse{Move: game.MoveName(move), Shout: d.Reason})
}

func (s *Server) handleEnd(w http.ResponseWriter, r *http.Request) {
	req, ok := decodeRequest(w, r)
	if !ok {
		return
	}

	result := "lost"
	for _, snake := range req.Board.Snakes {
		if snake.ID == req.You.ID {
			result = "won"
			break
		}
	}
	if result == "lost" && len(req.Board.Snakes) == 0 {
		result = "draw"
	}
	s.logger.Info("game ended", "game", req.Game.ID, "turn", req.Turn, "result", result)
	s.flush(req.Game.ID)
	w.WriteHeader(http.StatusOK)
}

func (s *Server) record(gameID string, state *game.State, d planner.Decision) {
	if s.recordDir == "" {
		return
	}
	row, err := store.NewDecisionRow(gameID, "battlesnake", state, d)
	if err != nil {
		s.logger.Warn("record decision", "game", gameID, "err", err)
		return
	}

	s.mu.Lock()
	bw, ok := s.games[gameID]
	if !ok {
		bw, err = store.NewBatchWriter(s.recordDir)
		if err != nil {
			s.mu.Unlock()
			s.logger.Warn("open batch", "game", gameID, "err", err)
			return
		}
		s.games[gameID] = bw
	}
	s.mu.Unlock()

	if err := bw.Write(row); err != nil {
		s.logger.Warn("write decision", "game", gameID, "err", err)
	}
}

func (s *Server) flush(gameID string) {
	s.mu.Lock()
	bw, ok := s.games[gameID]
	delete(s.games, gameID)
	s.mu.Unlock()
	if !ok {
		return
	}
	bw.GameDone()
	path, rows, _, err := bw.Finalize()
	if err != nil {
		s.logger.Error("finalize batch", "game", gameID, "err", err)
		return
	}
	s.logger.Info("decisions saved", "game", gameID, "path", path, "rows", rows)
}

// Close finalizes every game still being recorded.
func (s *Server) Close() {
	s.mu.Lock()
	ids := make([]string, 0, len(s.games))
	for id := range s.games {
		ids = append(ids, id)
	}
	s.mu.Unlock()
	for _, id := range ids {
		s.flush(id)
	}
}
