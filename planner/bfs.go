package planner

import (
	"github.com/groundedlens/BUAASE2025-PairProgramming/game"
	"github.com/groundedlens/BUAASE2025-PairProgramming/rules"
)

// Distance returns the number of moves on the shortest path from start to end
// over free cells. The start cell itself may be blocked (it is usually the
// candidate head, which sits inside its own body window).
func Distance(start, end game.Point, obs *rules.Obstacles) (int, bool) {
	if start == end {
		return 0, true
	}
	board := obs.Board()
	visited := make(map[game.Point]bool, board.Cells())
	queue := make([]game.Point, 0, board.Cells())
	steps := make([]int, 0, board.Cells())
	visited[start] = true
	queue = append(queue, start)
	steps = append(steps, 0)

	// Cells are marked before they are enqueued, so the queue never holds more
	// than one entry per cell.
	for i := 0; i < len(queue); i++ {
		cur := queue[i]
		for _, m := range game.Moves {
			n := cur.Add(game.Offset(m))
			if visited[n] || !obs.Free(n) {
				continue
			}
			if n == end {
				return steps[i] + 1, true
			}
			visited[n] = true
			queue = append(queue, n)
			steps = append(steps, steps[i]+1)
		}
	}
	return 0, false
}

// Reachable reports whether end can be reached from start.
func Reachable(start, end game.Point, obs *rules.Obstacles) bool {
	_, ok := Distance(start, end, obs)
	return ok
}
