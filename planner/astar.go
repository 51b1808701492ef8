package planner

import (
	"container/heap"

	"github.com/groundedlens/BUAASE2025-PairProgramming/game"
	"github.com/groundedlens/BUAASE2025-PairProgramming/rules"
)

// --- A* pathfinding ---

type searchNode struct {
	p     game.Point
	g, h  int
	first int // direction of the first step from the start; -1 on the start node
	seq   int // insertion order, the final tie-break
	index int // heap index
}

// openList orders by g+h, then by ascending first move, then FIFO.
type openList []*searchNode

func (ol openList) Len() int { return len(ol) }
func (ol openList) Less(i, j int) bool {
	fi, fj := ol[i].g+ol[i].h, ol[j].g+ol[j].h
	if fi != fj {
		return fi < fj
	}
	if ol[i].first != ol[j].first {
		return ol[i].first < ol[j].first
	}
	return ol[i].seq < ol[j].seq
}
func (ol openList) Swap(i, j int)       { ol[i], ol[j] = ol[j], ol[i]; ol[i].index = i; ol[j].index = j }
func (ol *openList) Push(x interface{}) { n := x.(*searchNode); n.index = len(*ol); *ol = append(*ol, n) }
func (ol *openList) Pop() interface{} {
	old := *ol
	n := old[len(old)-1]
	old[len(old)-1] = nil
	*ol = old[:len(old)-1]
	return n
}

// AStarParams tunes the cost-guided search.
type AStarParams struct {
	// DangerPenalty is added to the heuristic of free cells next to a predicted
	// rival head cell. The predicted cells themselves are blocked, so the
	// penalty deliberately lands on the ring around them.
	DangerPenalty int
	// MinEscapeRoutes is the number of free neighbours a cell must keep to be expanded.
	MinEscapeRoutes int
}

// AStar searches from start to goal and returns the first move of the best path.
//
// A neighbour is expanded only when it is free in obs, is not neck (the cell
// right behind the head), and keeps at least MinEscapeRoutes free neighbours.
// ok is false when the queue drains without reaching goal, or when start is
// already the goal (there is no first move to report).
func AStar(start, goal game.Point, neck []game.Point, obs *rules.Obstacles, params AStarParams) (move int, ok bool) {
	if start == goal {
		return game.NoMove, false
	}

	heuristic := func(p game.Point) int {
		h := game.Manhattan(p, goal)
		if obs.IsDanger(p) {
			h += params.DangerPenalty
		}
		return h
	}
	isNeck := func(p game.Point) bool {
		for _, n := range neck {
			if n == p {
				return true
			}
		}
		return false
	}

	seq := 0
	root := &searchNode{p: start, h: heuristic(start), first: -1}
	ol := &openList{root}
	heap.Init(ol)

	best := map[game.Point]int{start: 0}
	closed := make(map[game.Point]bool, obs.Board().Cells())

	for ol.Len() > 0 {
		cur := heap.Pop(ol).(*searchNode)
		if cur.p == goal {
			return cur.first, true
		}
		if closed[cur.p] {
			continue
		}
		closed[cur.p] = true

		for _, m := range game.Moves {
			n := cur.p.Add(game.Offset(m))
			if !obs.Free(n) || isNeck(n) || closed[n] {
				continue
			}
			if obs.EscapeRoutes(n) < params.MinEscapeRoutes {
				continue
			}
			g := cur.g + 1
			if prev, seen := best[n]; seen && prev <= g {
				continue
			}
			best[n] = g
			first := cur.first
			if first == -1 {
				first = m
			}
			seq++
			heap.Push(ol, &searchNode{p: n, g: g, h: heuristic(n), first: first, seq: seq})
		}
	}
	return game.NoMove, false
}
