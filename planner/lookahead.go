package planner

import (
	"github.com/groundedlens/BUAASE2025-PairProgramming/game"
	"github.com/groundedlens/BUAASE2025-PairProgramming/rules"
)

// MaxHorizon caps any configured lookahead horizon.
const MaxHorizon = 500

// split ranks candidates into those with a path to target (shortest first) and
// those without (most free space first). Both orders break ties by code.
func split(cands []rules.Candidate, target game.Point, hasTarget bool, obs *rules.Obstacles) (reachable, unreachable []scored) {
	for _, c := range cands {
		withBody := obs.With(c.Body...)
		if hasTarget {
			if d, ok := Distance(c.Head, target, withBody); ok {
				reachable = append(reachable, scored{cand: c, value: d})
				continue
			}
		}
		unreachable = append(unreachable, scored{cand: c, value: FloodFill(c.Head, withBody)})
	}
	sortByDistance(reachable)
	sortBySpace(unreachable)
	return reachable, unreachable
}

// Lookahead rolls the snake forward from start by repeatedly taking its best
// survival move, and reports whether target becomes reachable within horizon
// steps. steps is the number of simulated moves made.
//
// Only the snake's own window moves; obs stays fixed for the whole rollout.
func Lookahead(start rules.Candidate, target game.Point, obs *rules.Obstacles, horizon int) (found bool, steps int) {
	if horizon > MaxHorizon {
		horizon = MaxHorizon
	}
	window := start.Body
	for steps < horizon {
		cands := rules.Candidates(window, obs)
		if len(cands) == 0 {
			return false, steps
		}
		reachable, unreachable := split(cands, target, true, obs)
		if len(reachable) > 0 {
			return true, steps
		}
		next := unreachable[0].cand
		window = next.Body
		steps++
		if Reachable(next.Head, target, obs.With(next.Body...)) {
			return true, steps
		}
	}
	return false, steps
}
