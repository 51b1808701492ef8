package planner

import (
	"sort"

	"github.com/groundedlens/BUAASE2025-PairProgramming/game"
	"github.com/groundedlens/BUAASE2025-PairProgramming/rules"
)

// FloodFill counts the cells in the connected free region around start,
// start included.
func FloodFill(start game.Point, obs *rules.Obstacles) int {
	board := obs.Board()
	visited := make(map[game.Point]bool, board.Cells())
	stack := make([]game.Point, 0, board.Cells())
	visited[start] = true
	stack = append(stack, start)
	for len(stack) > 0 {
		cur := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		for _, m := range game.Moves {
			n := cur.Add(game.Offset(m))
			if visited[n] || !obs.Free(n) {
				continue
			}
			visited[n] = true
			stack = append(stack, n)
		}
	}
	return len(visited)
}

type scored struct {
	cand  rules.Candidate
	value int
}

// rankBySpace scores each candidate by the free region left around its head
// once its own shifted body is placed. Largest region first, ties by code.
func rankBySpace(cands []rules.Candidate, obs *rules.Obstacles) []scored {
	out := make([]scored, 0, len(cands))
	for _, c := range cands {
		out = append(out, scored{cand: c, value: FloodFill(c.Head, obs.With(c.Body...))})
	}
	sortBySpace(out)
	return out
}

func sortBySpace(s []scored) {
	sort.SliceStable(s, func(i, j int) bool {
		if s[i].value != s[j].value {
			return s[i].value > s[j].value
		}
		return s[i].cand.Move < s[j].cand.Move
	})
}

func sortByDistance(s []scored) {
	sort.SliceStable(s, func(i, j int) bool {
		if s[i].value != s[j].value {
			return s[i].value < s[j].value
		}
		return s[i].cand.Move < s[j].cand.Move
	})
}

// DefensiveMove picks the legal move with the most free space. With no legal
// move it falls back to LastResort. ok is false only when nothing is possible.
func DefensiveMove(window []game.Point, obs *rules.Obstacles) (move int, ok bool) {
	ranked := rankBySpace(rules.Candidates(window, obs), obs)
	if len(ranked) > 0 {
		return ranked[0].cand.Move, true
	}
	move = LastResort(window, obs)
	return move, move != game.NoMove
}

// LastResort returns the first direction whose cell is on the board, not an
// obstacle and not a cell the snake keeps occupying after the move. For an
// on-board head this is the same test rules.Candidates applies, so it only
// backstops DefensiveMove. An off-board head has no move.
func LastResort(window []game.Point, obs *rules.Obstacles) int {
	if len(window) == 0 || !obs.Board().Contains(window[0]) {
		return game.NoMove
	}
	self := window
	if len(self) == game.WindowLen {
		self = self[:game.WindowLen-1]
	}
	for _, m := range game.Moves {
		n := window[0].Add(game.Offset(m))
		if !obs.Free(n) {
			continue
		}
		hit := false
		for _, p := range self {
			if p == n {
				hit = true
				break
			}
		}
		if !hit {
			return m
		}
	}
	return game.NoMove
}
