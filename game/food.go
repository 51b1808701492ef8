package game

import "math/rand"

// FoodSettings controls how food is topped up between turns.
type FoodSettings struct {
	MinimumFood     int // food kept on the board after every spawn pass
	FoodSpawnChance int // percent chance of one extra food per pass
}

// DefaultFoodSettings keeps one food on the board with a 15% chance of an extra one.
var DefaultFoodSettings = FoodSettings{MinimumFood: 1, FoodSpawnChance: 15}

// SpawnFood places food on unoccupied cells of s and returns the cells it added.
// A nil rng draws from a hash of the turn, so the same state spawns the same food.
func SpawnFood(s *State, rng *rand.Rand, settings FoodSettings) []Point {
	if s == nil || s.Board.Size <= 0 {
		return nil
	}
	free := freeCells(s)
	draw := drawer(rng, uint64(s.Turn))

	var added []Point
	take := func() bool {
		if len(free) == 0 {
			return false
		}
		i := draw(len(free))
		added = append(added, free[i])
		free[i] = free[len(free)-1]
		free = free[:len(free)-1]
		return true
	}
	for len(s.Food)+len(added) < settings.MinimumFood && take() {
	}
	if settings.FoodSpawnChance > 0 && draw(100) < settings.FoodSpawnChance {
		take()
	}
	s.Food = append(s.Food, added...)
	return added
}

// freeCells lists board cells in row order that hold no snake, barrier or food.
func freeCells(s *State) []Point {
	taken := make(map[Point]bool, len(s.Food)+len(s.Barriers)+WindowLen*(len(s.Rivals)+1))
	for _, p := range s.You.Body {
		taken[p] = true
	}
	for _, r := range s.Rivals {
		for _, p := range r.Body {
			taken[p] = true
		}
	}
	for _, p := range s.Barriers {
		taken[p] = true
	}
	for _, p := range s.Food {
		taken[p] = true
	}

	out := make([]Point, 0, max(s.Board.Cells()-len(taken), 0))
	for y := int32(1); y <= s.Board.Size; y++ {
		for x := int32(1); x <= s.Board.Size; x++ {
			if p := (Point{X: x, Y: y}); !taken[p] {
				out = append(out, p)
			}
		}
	}
	return out
}

// drawer returns a source of ints in [0, n). Without an rng each call hashes
// the turn with a call counter.
func drawer(rng *rand.Rand, turn uint64) func(n int) int {
	if rng != nil {
		return rng.Intn
	}
	var calls uint64
	return func(n int) int {
		calls++
		return int(splitmix64(turn*0x9e3779b97f4a7c15+calls) % uint64(n))
	}
}

func splitmix64(x uint64) uint64 {
	x = (x ^ (x >> 30)) * 0xbf58476d1ce4e5b9
	x = (x ^ (x >> 27)) * 0x94d049bb133111eb
	return x ^ (x >> 31)
}
