// Package game defines the core state types for the snake move engine.
//
// These types represent the minimal state needed for one decision: the board,
// the ego snake, rivals, food and static barriers. Everything is built fresh per
// call and is cheap to clone for speculative search.
package game

// Point is a board coordinate.
// Coordinates are 1-indexed: (1,1) is bottom-left and (Size,Size) is top-right.
type Point struct {
	X int32
	Y int32
}

// Add returns p shifted by d.
func (p Point) Add(d Point) Point {
	return Point{X: p.X + d.X, Y: p.Y + d.Y}
}

// Manhattan returns the L1 distance between p and q.
func Manhattan(p, q Point) int {
	return int(abs32(p.X-q.X) + abs32(p.Y-q.Y))
}

// SquaredDistance returns the squared Euclidean distance between p and q.
func SquaredDistance(p, q Point) int {
	dx := int(p.X - q.X)
	dy := int(p.Y - q.Y)
	return dx*dx + dy*dy
}

func abs32(v int32) int32 {
	if v < 0 {
		return -v
	}
	return v
}

// WindowLen is the number of leading body cells the engine looks at.
// Cells past the window never block movement.
const WindowLen = 4

type Snake struct {
	ID    string
	Body  []Point
	Alive bool
}

// Head returns the first body cell. ok is false for an empty body.
func (s *Snake) Head() (p Point, ok bool) {
	if len(s.Body) == 0 {
		return Point{}, false
	}
	return s.Body[0], true
}

// Window returns the head followed by at most WindowLen-1 trailing cells.
func (s *Snake) Window() []Point {
	if len(s.Body) > WindowLen {
		return s.Body[:WindowLen]
	}
	return s.Body
}

// State is the complete input for one decision.
type State struct {
	Board    Board
	You      Snake
	Rivals   []Snake
	Food     []Point
	Barriers []Point
	Turn     int32
}

// Clone performs a deep copy of the state.
func (s *State) Clone() *State {
	if s == nil {
		return nil
	}

	out := &State{
		Board: s.Board,
		You:   cloneSnake(s.You),
		Turn:  s.Turn,
	}

	if len(s.Food) > 0 {
		out.Food = make([]Point, len(s.Food))
		copy(out.Food, s.Food)
	}
	if len(s.Barriers) > 0 {
		out.Barriers = make([]Point, len(s.Barriers))
		copy(out.Barriers, s.Barriers)
	}

	if len(s.Rivals) > 0 {
		out.Rivals = make([]Snake, len(s.Rivals))
		for i := range s.Rivals {
			out.Rivals[i] = cloneSnake(s.Rivals[i])
		}
	}

	return out
}

func cloneSnake(s Snake) Snake {
	out := Snake{ID: s.ID, Alive: s.Alive}
	if len(s.Body) > 0 {
		out.Body = make([]Point, len(s.Body))
		copy(out.Body, s.Body)
	}
	return out
}
