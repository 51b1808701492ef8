package rules

import (
	"github.com/groundedlens/BUAASE2025-PairProgramming/game"
)

// RivalPrefix is how many leading segments of a rival block movement.
// The rival's remaining cells vacate before our head can arrive.
const RivalPrefix = 3

// Obstacles is the set of cells that cannot be entered this tick.
//
// A set is populated once (Add / Predict) and then treated as read-only.
// Searches that need to add a hypothetical body call With, which returns an
// extended copy, so one candidate's speculative body is never visible to another.
type Obstacles struct {
	board     game.Board
	blocked   map[game.Point]struct{}
	predicted map[game.Point]struct{}
}

// NewObstacles returns a set on board containing cells.
func NewObstacles(board game.Board, cells ...game.Point) *Obstacles {
	o := &Obstacles{
		board:     board,
		blocked:   make(map[game.Point]struct{}, len(cells)+16),
		predicted: make(map[game.Point]struct{}),
	}
	for _, c := range cells {
		o.Add(c)
	}
	return o
}

// BuildObstacles collects barriers, alive rival prefixes and every in-board
// cell a rival head could step into next tick.
// The ego snake's own body is not included; it is accounted for per candidate.
func BuildObstacles(state *game.State) *Obstacles {
	o := NewObstacles(state.Board, state.Barriers...)
	for i := range state.Rivals {
		r := &state.Rivals[i]
		if !r.Alive || len(r.Body) == 0 {
			continue
		}
		for j, p := range r.Body {
			if j >= RivalPrefix {
				break
			}
			o.Add(p)
		}
		head := r.Body[0]
		for _, m := range game.Moves {
			o.Predict(head.Add(game.Offset(m)))
		}
	}
	return o
}

// Add blocks p. Off-board cells are ignored: the board edge already blocks them.
func (o *Obstacles) Add(p game.Point) {
	if !o.board.Contains(p) {
		return
	}
	o.blocked[p] = struct{}{}
}

// Predict blocks p and flags it as a predicted rival head cell.
func (o *Obstacles) Predict(p game.Point) {
	if !o.board.Contains(p) {
		return
	}
	o.blocked[p] = struct{}{}
	o.predicted[p] = struct{}{}
}

// With returns a copy of o that additionally blocks cells.
func (o *Obstacles) With(cells ...game.Point) *Obstacles {
	out := &Obstacles{
		board:     o.board,
		blocked:   make(map[game.Point]struct{}, len(o.blocked)+len(cells)),
		predicted: o.predicted,
	}
	for p := range o.blocked {
		out.blocked[p] = struct{}{}
	}
	for _, c := range cells {
		out.Add(c)
	}
	return out
}

func (o *Obstacles) Board() game.Board { return o.board }
func (o *Obstacles) Len() int          { return len(o.blocked) }

// Blocked reports whether p is an obstacle cell.
func (o *Obstacles) Blocked(p game.Point) bool {
	_, ok := o.blocked[p]
	return ok
}

// Free reports whether p is on the board and not blocked.
func (o *Obstacles) Free(p game.Point) bool {
	return o.board.Contains(p) && !o.Blocked(p)
}

// IsPredicted reports whether p is a cell some rival head may move into.
func (o *Obstacles) IsPredicted(p game.Point) bool {
	_, ok := o.predicted[p]
	return ok
}

// IsDanger reports whether p is a free cell touching a predicted rival cell.
func (o *Obstacles) IsDanger(p game.Point) bool {
	if len(o.predicted) == 0 || !o.Free(p) {
		return false
	}
	for _, m := range game.Moves {
		if o.IsPredicted(p.Add(game.Offset(m))) {
			return true
		}
	}
	return false
}

// EscapeRoutes counts the free 4-neighbours of p.
func (o *Obstacles) EscapeRoutes(p game.Point) int {
	n := 0
	for _, m := range game.Moves {
		if o.Free(p.Add(game.Offset(m))) {
			n++
		}
	}
	return n
}
