package rules

import (
	"github.com/groundedlens/BUAASE2025-PairProgramming/game"
)

// Candidate is a direction whose resulting move is legal this tick.
// Body is the shifted window: new head, old head, then the old window minus its last cell.
type Candidate struct {
	Move int
	Head game.Point
	Body []game.Point
}

// Shift returns the window after moving the head to newHead.
func Shift(newHead game.Point, window []game.Point) []game.Point {
	n := len(window) + 1
	if n > game.WindowLen {
		n = game.WindowLen
	}
	out := make([]game.Point, 0, n)
	out = append(out, newHead)
	for _, p := range window {
		if len(out) == n {
			break
		}
		out = append(out, p)
	}
	return out
}

// Candidates returns the legal moves for a snake whose leading cells are window
// (head first), in ascending direction order.
//
// A move is rejected when the new head is off board, blocked, or lands on a
// cell the shifted body still occupies. The oldest window cell vacates and is
// therefore enterable. A head outside the board yields no candidates.
func Candidates(window []game.Point, obs *Obstacles) []Candidate {
	if len(window) == 0 || !obs.Board().Contains(window[0]) {
		return nil
	}
	head := window[0]
	out := make([]Candidate, 0, 4)
	for _, m := range game.Moves {
		nh := head.Add(game.Offset(m))
		if !obs.Free(nh) {
			continue
		}
		body := Shift(nh, window)
		if containsPoint(body[1:], nh) {
			continue
		}
		out = append(out, Candidate{Move: m, Head: nh, Body: body})
	}
	return out
}

// Find returns the candidate for move, if present.
func Find(cands []Candidate, move int) (Candidate, bool) {
	for _, c := range cands {
		if c.Move == move {
			return c, true
		}
	}
	return Candidate{}, false
}

// IsLegal reports whether move is among the candidates for window.
func IsLegal(window []game.Point, obs *Obstacles, move int) bool {
	_, ok := Find(Candidates(window, obs), move)
	return ok
}

// LegalMoves returns the direction codes the ego snake may take in state.
func LegalMoves(state *game.State) []int {
	if !state.You.Alive {
		return []int{}
	}
	cands := Candidates(state.You.Window(), BuildObstacles(state))
	moves := make([]int, 0, len(cands))
	for _, c := range cands {
		moves = append(moves, c.Move)
	}
	return moves
}

func containsPoint(ps []game.Point, p game.Point) bool {
	for _, q := range ps {
		if q == p {
			return true
		}
	}
	return false
}
