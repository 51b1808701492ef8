package rules

import (
	"github.com/groundedlens/BUAASE2025-PairProgramming/game"
)

// Advance returns a new body after moving the head one step in move.
// When grow is set the tail is kept, so the snake gets one cell longer.
func Advance(body []game.Point, move int, grow bool) []game.Point {
	if len(body) == 0 {
		return nil
	}
	newHead := body[0].Add(game.Offset(move))
	newBody := make([]game.Point, 0, len(body)+1)
	newBody = append(newBody, newHead)
	newBody = append(newBody, body...)
	if !grow {
		newBody = newBody[:len(newBody)-1]
	}
	return newBody
}

// Sim holds the parts of a simulated game that do not change between turns.
type Sim struct {
	Board    game.Board
	Barriers []game.Point
	// MaxLength caps a snake after it eats; 0 lets it grow.
	MaxLength int
}

// NextStateSimultaneous advances every alive snake by its move, removes eaten
// food and marks dead snakes. Snakes without a move die in place.
//
// Collision rules: leaving the board, entering a barrier, or entering any body
// cell other than a head kills the mover. Equal heads kill the shorter snake,
// or both when they are the same length.
func NextStateSimultaneous(sim Sim, snakes []game.Snake, food []game.Point, moves map[string]int) ([]game.Snake, []game.Point) {
	next := make([]game.Snake, len(snakes))
	for i := range snakes {
		next[i] = game.Snake{ID: snakes[i].ID, Alive: snakes[i].Alive}
		next[i].Body = append([]game.Point(nil), snakes[i].Body...)
	}

	// 1. Work out who eats
	ate := make(map[string]bool)
	eaten := make(map[game.Point]bool)
	for i := range next {
		s := &next[i]
		if !s.Alive || len(s.Body) == 0 {
			continue
		}
		move, ok := moves[s.ID]
		if !ok {
			s.Alive = false
			continue
		}
		nh := s.Body[0].Add(game.Offset(move))
		for _, f := range food {
			if f == nh {
				ate[s.ID] = true
				eaten[f] = true
			}
		}
		s.Body = Advance(s.Body, move, ate[s.ID])
		if sim.MaxLength > 0 && len(s.Body) > sim.MaxLength {
			s.Body = s.Body[:sim.MaxLength]
		}
	}

	remaining := make([]game.Point, 0, len(food))
	for _, f := range food {
		if !eaten[f] {
			remaining = append(remaining, f)
		}
	}

	walls := make(map[game.Point]bool, len(sim.Barriers))
	for _, b := range sim.Barriers {
		walls[b] = true
	}

	// 2. Wall and body collisions
	dead := make(map[string]bool)
	for _, s := range next {
		if !s.Alive {
			continue
		}
		head := s.Body[0]
		if !sim.Board.Contains(head) || walls[head] {
			dead[s.ID] = true
			continue
		}
		for _, other := range next {
			if !other.Alive {
				continue
			}
			for i, p := range other.Body {
				if i == 0 {
					continue
				}
				if p == head {
					dead[s.ID] = true
				}
			}
		}
	}

	// 3. Head-to-head
	for i := 0; i < len(next); i++ {
		s1 := next[i]
		if !s1.Alive || dead[s1.ID] {
			continue
		}
		for j := i + 1; j < len(next); j++ {
			s2 := next[j]
			if !s2.Alive || dead[s2.ID] {
				continue
			}
			if s1.Body[0] != s2.Body[0] {
				continue
			}
			switch {
			case len(s1.Body) > len(s2.Body):
				dead[s2.ID] = true
			case len(s2.Body) > len(s1.Body):
				dead[s1.ID] = true
			default:
				dead[s1.ID] = true
				dead[s2.ID] = true
			}
		}
	}

	for i := range next {
		if dead[next[i].ID] {
			next[i].Alive = false
		}
	}
	return next, remaining
}

// Living counts alive snakes.
func Living(snakes []game.Snake) int {
	n := 0
	for _, s := range snakes {
		if s.Alive {
			n++
		}
	}
	return n
}
