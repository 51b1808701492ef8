package main

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/groundedlens/BUAASE2025-PairProgramming/flat"
)

// request is one move query in the flat array layout.
type request struct {
	size     int32
	snake    []int32
	food     []int32
	barriers []int32
	rivals   []int32
	round    int32
}

// parseInts reads a comma separated list; blanks around values are ignored.
func parseInts(name, s string) ([]int32, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, nil
	}
	parts := strings.Split(s, ",")
	out := make([]int32, 0, len(parts))
	for _, p := range parts {
		v, err := strconv.ParseInt(strings.TrimSpace(p), 10, 32)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", name, err)
		}
		out = append(out, int32(v))
	}
	return out, nil
}

// classic reports whether the request fits one of the 8x8 shapes.
func (r request) classic() bool {
	return r.size == 0 && len(r.rivals) == 0
}

func (r request) decide(m *flat.Mover) int32 {
	switch {
	case r.classic() && len(r.barriers) == 0:
		return m.GreedySnakeMove(r.snake, r.food)
	case r.classic():
		return m.GreedySnakeMoveBarriers(r.snake, r.food, r.barriers)
	}
	size := r.size
	if size == 0 {
		size = flat.ClassicBoardSize
	}
	return m.GreedySnakeStep(size, r.snake, int32(len(r.rivals)/flat.RivalBlockLen), r.rivals,
		int32(len(r.food)/2), r.food, r.round)
}
