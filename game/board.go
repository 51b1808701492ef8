package game

// Direction codes. The order is part of the public contract: it is the
// encoding returned to callers and the tie-break order (lower code wins).
const (
	MoveUp    = 0
	MoveLeft  = 1
	MoveDown  = 2
	MoveRight = 3

	// NoMove is returned when no direction is safe.
	NoMove = -1
)

// Moves lists every direction in ascending code order.
var Moves = [4]int{MoveUp, MoveLeft, MoveDown, MoveRight}

var offsets = [4]Point{
	MoveUp:    {X: 0, Y: 1},
	MoveLeft:  {X: -1, Y: 0},
	MoveDown:  {X: 0, Y: -1},
	MoveRight: {X: 1, Y: 0},
}

var moveNames = [4]string{"up", "left", "down", "right"}

// Offset returns the unit delta for a direction code.
func Offset(move int) Point {
	return offsets[move]
}

// MoveName converts a direction code to its API name. Unknown codes map to "up".
func MoveName(move int) string {
	if move < 0 || move >= len(moveNames) {
		return moveNames[MoveUp]
	}
	return moveNames[move]
}

// ParseMove is the inverse of MoveName.
func ParseMove(name string) (int, bool) {
	for i, n := range moveNames {
		if n == name {
			return i, true
		}
	}
	return NoMove, false
}

// Board is an axis-aligned square grid of unit cells.
type Board struct {
	Size int32
}

// DefaultBoard is the fixed board used by the 8x8 call shapes.
var DefaultBoard = Board{Size: 8}

// Contains reports whether p lies on the board (1..Size inclusive on both axes).
func (b Board) Contains(p Point) bool {
	return p.X >= 1 && p.X <= b.Size && p.Y >= 1 && p.Y <= b.Size
}

// Cells returns the number of cells on the board.
func (b Board) Cells() int {
	if b.Size <= 0 {
		return 0
	}
	return int(b.Size) * int(b.Size)
}

// Neighbors returns the on-board 4-neighbours of p in direction order.
func (b Board) Neighbors(p Point) []Point {
	out := make([]Point, 0, 4)
	for _, m := range Moves {
		n := p.Add(offsets[m])
		if b.Contains(n) {
			out = append(out, n)
		}
	}
	return out
}
