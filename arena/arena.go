// Package arena runs local matches between engine-driven snakes.
package arena

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math/rand"
	"sync"

	"github.com/groundedlens/BUAASE2025-PairProgramming/game"
	"github.com/groundedlens/BUAASE2025-PairProgramming/planner"
	"github.com/groundedlens/BUAASE2025-PairProgramming/rules"
)

// Config describes one match.
type Config struct {
	Size     int32
	MaxTurns int
	Seed     int64
	Food     game.FoodSettings
	// MaxLength caps body length after eating; 0 lets snakes grow.
	MaxLength int
	Barriers  []game.Point
	// Policies assigns one engine per snake; the snake count is len(Policies).
	Policies []planner.Policy
	Engine   planner.Config
}

func DefaultConfig() Config {
	return Config{
		Size:      8,
		MaxTurns:  200,
		Seed:      1,
		Food:      game.DefaultFoodSettings,
		MaxLength: game.WindowLen,
		Policies:  []planner.Policy{planner.PolicyReachability, planner.PolicyAStar},
		Engine:    planner.DefaultConfig(),
	}
}

// Match holds the evolving game. It is not safe for concurrent use.
type Match struct {
	cfg      Config
	board    game.Board
	rng      *rand.Rand
	engines  []*planner.Engine
	snakes   []game.Snake
	food     []game.Point
	turn     int
	scores   map[string]int
	last     map[string]planner.Decision
	deaths   map[string]int
	multiple bool
	logger   *slog.Logger
}

// NewMatch places each snake in its own column, head up, tail on row 1.
func NewMatch(cfg Config, logger *slog.Logger) (*Match, error) {
	n := len(cfg.Policies)
	if n == 0 {
		return nil, errors.New("at least one snake is required")
	}
	if cfg.Size < game.WindowLen+1 {
		return nil, fmt.Errorf("board size %d too small", cfg.Size)
	}
	if int32(n) > cfg.Size/2 {
		return nil, fmt.Errorf("%d snakes do not fit on a %dx%d board", n, cfg.Size, cfg.Size)
	}
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}

	m := &Match{
		cfg:      cfg,
		board:    game.Board{Size: cfg.Size},
		rng:      rand.New(rand.NewSource(cfg.Seed)),
		scores:   make(map[string]int),
		last:     make(map[string]planner.Decision),
		deaths:   make(map[string]int),
		multiple: n > 1,
		logger:   logger,
	}
	blocked := make(map[game.Point]bool, len(cfg.Barriers))
	for _, b := range cfg.Barriers {
		blocked[b] = true
	}
	for i, p := range cfg.Policies {
		ec := cfg.Engine
		ec.Policy = p
		m.engines = append(m.engines, planner.New(ec, logger))

		col := int32(1 + (i+1)*int(cfg.Size)/(n+1))
		s := game.Snake{ID: fmt.Sprintf("%s-%d", p, i), Alive: true}
		for y := int32(game.WindowLen); y >= 1; y-- {
			cell := game.Point{X: col, Y: y}
			if blocked[cell] {
				return nil, fmt.Errorf("barrier %v overlaps the start of %s", cell, s.ID)
			}
			s.Body = append(s.Body, cell)
		}
		m.snakes = append(m.snakes, s)
	}
	m.spawnFood()
	return m, nil
}

func (m *Match) allSnakesState() *game.State {
	return &game.State{Board: m.board, Rivals: m.snakes, Food: m.food, Barriers: m.cfg.Barriers, Turn: int32(m.turn)}
}

func (m *Match) spawnFood() {
	s := m.allSnakesState()
	game.SpawnFood(s, m.rng, m.cfg.Food)
	m.food = s.Food
}

// StateFor returns the decision input for snake i.
func (m *Match) StateFor(i int) *game.State {
	s := &game.State{
		Board:    m.board,
		You:      m.snakes[i],
		Food:     m.food,
		Barriers: m.cfg.Barriers,
		Turn:     int32(m.turn),
	}
	for j, r := range m.snakes {
		if j != i {
			s.Rivals = append(s.Rivals, r)
		}
	}
	return s.Clone()
}

// Done reports whether the match is over.
func (m *Match) Done() bool {
	living := rules.Living(m.snakes)
	if living == 0 || m.turn >= m.cfg.MaxTurns {
		return true
	}
	return m.multiple && living == 1
}

// Step plays one turn. Decisions for all living snakes are computed in
// parallel against the same position.
func (m *Match) Step() {
	if m.Done() {
		return
	}
	decisions := make([]planner.Decision, len(m.snakes))
	var wg sync.WaitGroup
	for i := range m.snakes {
		if !m.snakes[i].Alive {
			continue
		}
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			decisions[i] = m.engines[i].Decide(m.StateFor(i))
		}(i)
	}
	wg.Wait()

	moves := make(map[string]int, len(m.snakes))
	for i, s := range m.snakes {
		if !s.Alive {
			continue
		}
		d := decisions[i]
		m.last[s.ID] = d
		mv := d.Move
		if mv == game.NoMove {
			mv = game.MoveUp
		}
		moves[s.ID] = mv
	}

	before := make(map[game.Point]bool, len(m.food))
	for _, f := range m.food {
		before[f] = true
	}
	sim := rules.Sim{Board: m.board, Barriers: m.cfg.Barriers, MaxLength: m.cfg.MaxLength}
	next, food := rules.NextStateSimultaneous(sim, m.snakes, m.food, moves)
	m.turn++
	for i := range next {
		s := &next[i]
		if m.snakes[i].Alive && !s.Alive {
			m.deaths[s.ID] = m.turn
			m.logger.Debug("snake died", "snake", s.ID, "turn", m.turn, "reason", m.last[s.ID].Reason)
		}
		if !s.Alive {
			continue
		}
		if before[s.Body[0]] {
			m.scores[s.ID]++
		}
	}
	m.snakes = next
	m.food = food
	m.spawnFood()
}

// Result summarizes a finished match.
type Result struct {
	Turns  int
	Winner string
	Scores map[string]int
	Deaths map[string]int
}

// Run steps until the match is over or ctx is done.
func (m *Match) Run(ctx context.Context) (Result, error) {
	for !m.Done() {
		if err := ctx.Err(); err != nil {
			return m.Result(), err
		}
		m.Step()
	}
	return m.Result(), nil
}

// Result reports the current standings. Winner is set only when exactly one
// snake is alive.
func (m *Match) Result() Result {
	r := Result{Turns: m.turn, Scores: make(map[string]int), Deaths: make(map[string]int)}
	alive := 0
	for _, s := range m.snakes {
		r.Scores[s.ID] = m.scores[s.ID]
		if d, ok := m.deaths[s.ID]; ok {
			r.Deaths[s.ID] = d
		}
		if s.Alive {
			alive++
			r.Winner = s.ID
		}
	}
	if alive != 1 {
		r.Winner = ""
	}
	return r
}

func (m *Match) Turn() int            { return m.turn }
func (m *Match) Snakes() []game.Snake { return m.snakes }
func (m *Match) Food() []game.Point   { return m.food }
func (m *Match) Board() game.Board    { return m.board }
func (m *Match) Score(id string) int  { return m.scores[id] }

func (m *Match) LastDecision(id string) (planner.Decision, bool) {
	d, ok := m.last[id]
	return d, ok
}
