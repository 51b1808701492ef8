package ingest

import (
	"fmt"

	"github.com/groundedlens/BUAASE2025-PairProgramming/planner"
	"github.com/groundedlens/BUAASE2025-PairProgramming/store"
)

// StandardBoard is assumed when a game carries no dimensions.
const StandardBoard = 11

// Replay re-runs the engine for every living snake on every frame of g.
func Replay(g *Game, e *planner.Engine, opts ConvertOptions, source string) ([]store.DecisionRow, error) {
	width, height := g.Width, g.Height
	if width <= 0 || height <= 0 {
		width, height = StandardBoard, StandardBoard
	}

	var rows []store.DecisionRow
	for _, f := range g.Frames {
		for _, s := range f.Snakes {
			if !s.Alive() {
				continue
			}
			state, err := FrameToState(f, width, height, s.ID, opts)
			if err != nil {
				return nil, err
			}
			row, err := store.NewDecisionRow(g.ID, source, state, e.Decide(state))
			if err != nil {
				return nil, fmt.Errorf("game %s turn %d: %w", g.ID, f.Turn, err)
			}
			rows = append(rows, row)
		}
	}
	return rows, nil
}
