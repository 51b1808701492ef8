// Package planner decides the next move for a grid snake.
//
// One call to Engine.Decide is a pure computation over a game.State: obstacles,
// candidate moves, searches and the optional lookahead are all built fresh and
// dropped when the call returns. An Engine holds configuration only and is safe
// for concurrent use.
package planner

import (
	"fmt"
	"log/slog"
	"strings"

	"github.com/groundedlens/BUAASE2025-PairProgramming/game"
	"github.com/groundedlens/BUAASE2025-PairProgramming/rules"
)

// Policy selects how the engine picks among legal moves.
type Policy int

const (
	// PolicyReachability ranks candidates by BFS distance to the target and,
	// when none can reach it, by free space validated with a lookahead rollout.
	PolicyReachability Policy = iota
	// PolicyAStar runs a cost-guided search to one selected target and falls
	// back to the largest free region.
	PolicyAStar
	// PolicyGreedy steps to the candidate closest to the target in straight-line distance.
	PolicyGreedy
)

func (p Policy) String() string {
	switch p {
	case PolicyReachability:
		return "reachability"
	case PolicyAStar:
		return "astar"
	case PolicyGreedy:
		return "greedy"
	default:
		return fmt.Sprintf("policy(%d)", int(p))
	}
}

// ParsePolicy converts a policy name to a Policy.
func ParsePolicy(name string) (Policy, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "reachability", "bfs":
		return PolicyReachability, nil
	case "astar", "a*":
		return PolicyAStar, nil
	case "greedy":
		return PolicyGreedy, nil
	}
	return 0, fmt.Errorf("unknown policy %q", name)
}

// Config holds engine configuration.
type Config struct {
	Policy Policy
	// LookaheadHorizon bounds the survival rollout (reachability policy only).
	LookaheadHorizon int
	AStar            AStarParams
}

// DefaultConfig returns the reachability policy with a 50 step lookahead,
// a danger penalty of 50 and a two-route anti-trap guard.
func DefaultConfig() Config {
	return Config{
		Policy:           PolicyReachability,
		LookaheadHorizon: 50,
		AStar: AStarParams{
			DangerPenalty:   50,
			MinEscapeRoutes: 2,
		},
	}
}

// Phase is a step of one decision.
type Phase int

const (
	PhaseIdle Phase = iota
	PhaseObstaclesBuilt
	PhaseCandidatesGenerated
	PhasePathSearch
	PhaseSimulating
	PhaseDecided
)

var phaseNames = [...]string{"idle", "obstacles", "candidates", "search", "simulating", "decided"}

func (p Phase) String() string {
	if int(p) < len(phaseNames) {
		return phaseNames[p]
	}
	return fmt.Sprintf("phase(%d)", int(p))
}

// Reasons reported in Decision.Reason.
const (
	ReasonInactive     = "inactive"
	ReasonNoCandidates = "no legal move"
	ReasonShortestPath = "shortest path to food"
	ReasonLookahead    = "food reachable after lookahead"
	ReasonOptimistic   = "most space, lookahead exhausted"
	ReasonAStar        = "astar path"
	ReasonDefensive    = "most space"
	ReasonLastResort   = "last resort"
	ReasonGreedy       = "closest to food"
)

// Decision is the result of one call together with a trace of how it was reached.
type Decision struct {
	Move      int
	Policy    Policy
	Target    game.Point
	HasTarget bool
	Phases    []Phase
	Reason    string
	// Simulated is the number of lookahead steps taken, if any.
	Simulated int
}

func (d *Decision) enter(p Phase) { d.Phases = append(d.Phases, p) }

func (d *Decision) decide(move int, reason string) Decision {
	d.Move = move
	d.Reason = reason
	d.enter(PhaseDecided)
	return *d
}

// Engine applies one Config to many independent decisions.
type Engine struct {
	cfg    Config
	logger *slog.Logger
}

// New returns an engine. A nil logger discards output.
func New(cfg Config, logger *slog.Logger) *Engine {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	if cfg.LookaheadHorizon <= 0 {
		cfg.LookaheadHorizon = DefaultConfig().LookaheadHorizon
	}
	if cfg.LookaheadHorizon > MaxHorizon {
		cfg.LookaheadHorizon = MaxHorizon
	}
	return &Engine{cfg: cfg, logger: logger}
}

// Config returns the engine configuration.
func (e *Engine) Config() Config { return e.cfg }

// Move is Decide without the trace.
func (e *Engine) Move(state *game.State) int {
	return e.Decide(state).Move
}

// Decide computes the move for state.You.
func (e *Engine) Decide(state *game.State) Decision {
	d := e.decide(state)
	e.logger.Debug("decision",
		"turn", state.Turn,
		"snake", state.You.ID,
		"policy", d.Policy.String(),
		"move", d.Move,
		"reason", d.Reason,
		"simulated", d.Simulated,
		"phases", phaseList(d.Phases),
	)
	return d
}

func (e *Engine) decide(state *game.State) Decision {
	d := Decision{Move: game.NoMove, Policy: e.cfg.Policy}
	d.enter(PhaseIdle)

	if !state.You.Alive {
		return d.decide(game.MoveUp, ReasonInactive)
	}

	obs := rules.BuildObstacles(state)
	d.enter(PhaseObstaclesBuilt)

	window := state.You.Window()
	cands := rules.Candidates(window, obs)
	d.enter(PhaseCandidatesGenerated)

	// Cells the snake still covers after any first move: head plus all but the
	// oldest window cell.
	occupied := window
	if len(occupied) == game.WindowLen {
		occupied = occupied[:game.WindowLen-1]
	}
	if len(window) > 0 {
		d.Target, d.HasTarget = SelectTarget(window[0], state.Food, obs.With(occupied...))
	}

	if len(cands) == 0 {
		if e.cfg.Policy == PolicyAStar {
			if mv, ok := DefensiveMove(window, obs); ok {
				return d.decide(mv, ReasonLastResort)
			}
		}
		return d.decide(game.NoMove, ReasonNoCandidates)
	}

	d.enter(PhasePathSearch)
	switch e.cfg.Policy {
	case PolicyAStar:
		return e.decideAStar(&d, window, occupied, obs)
	case PolicyGreedy:
		return e.decideGreedy(&d, window, cands, obs)
	default:
		return e.decideReachability(&d, cands, obs)
	}
}

func (e *Engine) decideReachability(d *Decision, cands []rules.Candidate, obs *rules.Obstacles) Decision {
	reachable, unreachable := split(cands, d.Target, d.HasTarget, obs)
	if len(reachable) > 0 {
		return d.decide(reachable[0].cand.Move, ReasonShortestPath)
	}

	provisional := unreachable[0].cand
	if !d.HasTarget {
		return d.decide(provisional.Move, ReasonDefensive)
	}

	d.enter(PhaseSimulating)
	found, steps := Lookahead(provisional, d.Target, obs, e.cfg.LookaheadHorizon)
	d.Simulated = steps
	if found {
		return d.decide(provisional.Move, ReasonLookahead)
	}
	// Keep options open rather than give up early.
	return d.decide(provisional.Move, ReasonOptimistic)
}

func (e *Engine) decideAStar(d *Decision, window, occupied []game.Point, obs *rules.Obstacles) Decision {
	if d.HasTarget {
		var neck []game.Point
		if len(window) > 1 {
			neck = window[1:2]
		}
		if mv, ok := AStar(window[0], d.Target, neck, obs.With(occupied...), e.cfg.AStar); ok {
			return d.decide(mv, ReasonAStar)
		}
	}
	mv, ok := DefensiveMove(window, obs)
	if !ok {
		return d.decide(game.NoMove, ReasonNoCandidates)
	}
	return d.decide(mv, ReasonDefensive)
}

func (e *Engine) decideGreedy(d *Decision, window []game.Point, cands []rules.Candidate, obs *rules.Obstacles) Decision {
	if !d.HasTarget {
		mv, _ := DefensiveMove(window, obs)
		return d.decide(mv, ReasonDefensive)
	}
	best := cands[0]
	bestDist := game.SquaredDistance(best.Head, d.Target)
	for _, c := range cands[1:] {
		if dist := game.SquaredDistance(c.Head, d.Target); dist < bestDist {
			best, bestDist = c, dist
		}
	}
	return d.decide(best.Move, ReasonGreedy)
}

func phaseList(ps []Phase) string {
	names := make([]string, len(ps))
	for i, p := range ps {
		names[i] = p.String()
	}
	return strings.Join(names, ">")
}
