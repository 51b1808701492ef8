package main

import (
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// Server answers the viewer API from the decision batches.
type Server struct {
	dbCache *DBCache
	logger  *slog.Logger
}

func NewServer(roots []string, refresh time.Duration, logger *slog.Logger) *Server {
	return &Server{dbCache: NewDBCache(roots, refresh, logger), logger: logger}
}

func (s *Server) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("/api/games", s.handleGames)
	mux.HandleFunc("/api/games/", s.handleGameDecisions)
	mux.HandleFunc("/api/stats", s.handleStats)
}

func (s *Server) Close() error { return s.dbCache.Close() }

// allowGet writes CORS headers and reports whether the handler should go on.
func allowGet(w http.ResponseWriter, r *http.Request) bool {
	withCORS(w)
	if r.Method == http.MethodOptions {
		return false
	}
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return false
	}
	return true
}

func (s *Server) handleGames(w http.ResponseWriter, r *http.Request) {
	if !allowGet(w, r) {
		return
	}
	// The list is the entry point, so it always picks up freshly flushed batches.
	if err := s.dbCache.Refresh(); err != nil {
		s.serverError(w, r, err)
		return
	}
	index, err := s.dbCache.GamesIndex(r.Context())
	if err != nil {
		s.serverError(w, r, err)
		return
	}

	q := r.URL.Query()
	limit := parseIntQuery(r, "limit", 1000)
	offset := parseIntQuery(r, "offset", 0)
	games := paginateGames(index, limit, offset, q.Get("sort"), q.Get("dir"))
	writeJSON(w, GamesResponse{Total: int64(len(index)), Games: games})
}

// handleGameDecisions serves /api/games/{id}/decisions[?snake=ID&state=1].
func (s *Server) handleGameDecisions(w http.ResponseWriter, r *http.Request) {
	if !allowGet(w, r) {
		return
	}
	rest := strings.TrimPrefix(r.URL.Path, "/api/games/")
	parts := strings.Split(rest, "/")
	if len(parts) != 2 || parts[0] == "" || parts[1] != "decisions" {
		http.NotFound(w, r)
		return
	}
	gameID, err := url.PathUnescape(parts[0])
	if err != nil {
		http.Error(w, "bad game id", http.StatusBadRequest)
		return
	}

	db, err := s.dbCache.Get()
	if err != nil {
		s.serverError(w, r, err)
		return
	}
	q := r.URL.Query()
	decisions, err := queryDecisions(r.Context(), db, gameID, q.Get("snake"), q.Get("state") == "1")
	if err != nil {
		s.serverError(w, r, err)
		return
	}
	if len(decisions) == 0 {
		http.NotFound(w, r)
		return
	}
	writeJSON(w, decisions)
}

func (s *Server) handleStats(w http.ResponseWriter, r *http.Request) {
	if !allowGet(w, r) {
		return
	}
	db, err := s.dbCache.Get()
	if err != nil {
		s.serverError(w, r, err)
		return
	}
	stats, err := queryStats(r.Context(), db)
	if err != nil {
		s.serverError(w, r, err)
		return
	}
	writeJSON(w, stats)
}

func (s *Server) serverError(w http.ResponseWriter, r *http.Request, err error) {
	s.logger.Error("viewer query failed", "path", r.URL.Path, "err", err)
	http.Error(w, err.Error(), http.StatusInternalServerError)
}
