package planner

import (
	"github.com/groundedlens/BUAASE2025-PairProgramming/game"
	"github.com/groundedlens/BUAASE2025-PairProgramming/rules"
)

// SelectTarget picks the food to steer toward: the reachable food closest to
// head by Manhattan distance, earliest in input order on ties. When no food is
// reachable the first food is returned as an anchor. ok is false with no food.
func SelectTarget(head game.Point, foods []game.Point, obs *rules.Obstacles) (target game.Point, ok bool) {
	if len(foods) == 0 {
		return game.Point{}, false
	}
	best := -1
	bestDist := 0
	for i, f := range foods {
		if !Reachable(head, f, obs) {
			continue
		}
		d := game.Manhattan(head, f)
		if best == -1 || d < bestDist {
			best = i
			bestDist = d
		}
	}
	if best == -1 {
		return foods[0], true
	}
	return foods[best], true
}
