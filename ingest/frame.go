// Package ingest collects recorded Battlesnake games and turns their frames
// into engine states.
package ingest

import (
	"errors"
	"fmt"

	"github.com/groundedlens/BUAASE2025-PairProgramming/game"
)

// ErrSnakeNotFound is returned when a frame has no snake with the requested ID.
var ErrSnakeNotFound = errors.New("snake not found in frame")

// Coord is a 0-indexed Battlesnake coordinate, (0,0) at the bottom left.
type Coord struct {
	X int `json:"x"`
	Y int `json:"y"`
}

type Death struct {
	Cause string `json:"cause"`
	Turn  int    `json:"turn"`
}

type SnakeData struct {
	ID     string  `json:"id"`
	Name   string  `json:"name"`
	Health int     `json:"health"`
	Body   []Coord `json:"body"`
	Death  *Death  `json:"death,omitempty"`
}

// Alive reports whether the snake is still on the board.
func (s SnakeData) Alive() bool {
	return s.Death == nil && s.Health > 0 && len(s.Body) > 0
}

// Frame is one turn of a game as streamed by the engine.
type Frame struct {
	Turn    int         `json:"turn"`
	Snakes  []SnakeData `json:"snakes"`
	Food    []Coord     `json:"food"`
	Hazards []Coord     `json:"hazards"`
}

// ConvertOptions controls FrameToState.
type ConvertOptions struct {
	// HazardsAsBarriers turns hazard cells into static barriers.
	HazardsAsBarriers bool
}

func toPoint(c Coord) game.Point {
	return game.Point{X: int32(c.X) + 1, Y: int32(c.Y) + 1}
}

func toPoints(cs []Coord) []game.Point {
	out := make([]game.Point, len(cs))
	for i, c := range cs {
		out[i] = toPoint(c)
	}
	return out
}

// FrameToState builds the state seen by snake youID. The engine grid is square
// and 1-indexed, so coordinates shift by one and a rectangular board is padded
// to its longer side with barrier cells.
func FrameToState(f Frame, width, height int, youID string, opts ConvertOptions) (*game.State, error) {
	if width <= 0 || height <= 0 {
		return nil, fmt.Errorf("invalid board %dx%d", width, height)
	}
	size := int32(max(width, height))
	state := &game.State{
		Board: game.Board{Size: size},
		Turn:  int32(f.Turn),
		Food:  toPoints(f.Food),
	}

	found := false
	for _, s := range f.Snakes {
		snake := game.Snake{ID: s.ID, Alive: s.Alive(), Body: toPoints(s.Body)}
		if s.ID == youID {
			state.You = snake
			found = true
			continue
		}
		state.Rivals = append(state.Rivals, snake)
	}
	if !found {
		return nil, fmt.Errorf("%s at turn %d: %w", youID, f.Turn, ErrSnakeNotFound)
	}

	for x := int32(width) + 1; x <= size; x++ {
		for y := int32(1); y <= size; y++ {
			state.Barriers = append(state.Barriers, game.Point{X: x, Y: y})
		}
	}
	for y := int32(height) + 1; y <= size; y++ {
		for x := int32(1); x <= int32(width); x++ {
			state.Barriers = append(state.Barriers, game.Point{X: x, Y: y})
		}
	}
	if opts.HazardsAsBarriers {
		state.Barriers = append(state.Barriers, toPoints(f.Hazards)...)
	}
	return state, nil
}
