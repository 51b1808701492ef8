// Package flat exposes the engine through flat int32 arrays, the shape used by
// the WebAssembly and FFI callers. Coordinates are consecutive (x, y) pairs.
package flat

import (
	"errors"
	"fmt"
	"log/slog"

	"github.com/groundedlens/BUAASE2025-PairProgramming/game"
	"github.com/groundedlens/BUAASE2025-PairProgramming/planner"
)

// ErrInvalidInput is wrapped by every parse error.
var ErrInvalidInput = errors.New("invalid input")

const (
	// ClassicBoardSize is the board used by the two fixed-size call shapes.
	ClassicBoardSize = 8
	// RivalBlockLen is the number of ints describing one rival (four cells).
	RivalBlockLen = 2 * game.WindowLen
	// Inactive marks an eliminated snake in its first coordinate.
	Inactive = -1
)

// Mover binds engine configurations to the call shapes.
type Mover struct {
	classic *planner.Engine
	step    *planner.Engine
	logger  *slog.Logger
}

// NewMover uses classic for the two 8x8 shapes and step for GreedySnakeStep.
func NewMover(classic, step planner.Config, logger *slog.Logger) *Mover {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Mover{
		classic: planner.New(classic, logger),
		step:    planner.New(step, logger),
		logger:  logger,
	}
}

// DefaultConfigs returns the reachability policy for the classic shapes and
// the A* policy for the multi-snake shape.
func DefaultConfigs() (classic, step planner.Config) {
	classic = planner.DefaultConfig()
	step = planner.DefaultConfig()
	step.Policy = planner.PolicyAStar
	return classic, step
}

var defaultMover = func() *Mover {
	classic, step := DefaultConfigs()
	return NewMover(classic, step, slog.Default())
}()

// GreedySnakeMove decides on an empty 8x8 board with the default Mover.
func GreedySnakeMove(snake, food []int32) int32 {
	return defaultMover.GreedySnakeMove(snake, food)
}

// GreedySnakeMoveBarriers decides on an 8x8 board with barriers with the default Mover.
func GreedySnakeMoveBarriers(snake, food, barriers []int32) int32 {
	return defaultMover.GreedySnakeMoveBarriers(snake, food, barriers)
}

// GreedySnakeStep decides on a shared board with the default Mover.
func GreedySnakeStep(boardSize int32, snake []int32, snakeNum int32, otherSnakes []int32, foodNum int32, foods []int32, round int32) int32 {
	return defaultMover.GreedySnakeStep(boardSize, snake, snakeNum, otherSnakes, foodNum, foods, round)
}

// GreedySnakeMove decides on an empty 8x8 board.
func (m *Mover) GreedySnakeMove(snake, food []int32) int32 {
	return m.GreedySnakeMoveBarriers(snake, food, nil)
}

// GreedySnakeMoveBarriers decides on an 8x8 board with static barriers.
// Malformed input yields -1.
func (m *Mover) GreedySnakeMoveBarriers(snake, food, barriers []int32) int32 {
	state, err := ParseClassic(snake, food, barriers)
	if err != nil {
		m.logger.Warn("rejecting move request", "shape", "classic", "err", err)
		return game.NoMove
	}
	return int32(m.classic.Move(state))
}

// GreedySnakeStep decides on a boardSize board shared with snakeNum rivals.
// It returns 0 when the own snake is inactive and -1 on malformed input.
func (m *Mover) GreedySnakeStep(boardSize int32, snake []int32, snakeNum int32, otherSnakes []int32, foodNum int32, foods []int32, round int32) int32 {
	state, err := ParseStep(boardSize, snake, snakeNum, otherSnakes, foodNum, foods, round)
	if err != nil {
		m.logger.Warn("rejecting move request", "shape", "step", "round", round, "err", err)
		return game.NoMove
	}
	return int32(m.step.Move(state))
}

// ParseClassic builds the state for the 8x8 shapes.
func ParseClassic(snake, food, barriers []int32) (*game.State, error) {
	body, err := parseBody("snake", snake)
	if err != nil {
		return nil, err
	}
	if len(food) != 2 {
		return nil, fmt.Errorf("food has %d ints, want 2: %w", len(food), ErrInvalidInput)
	}
	bars, err := parsePoints("barriers", barriers)
	if err != nil {
		return nil, err
	}
	return &game.State{
		Board:    game.Board{Size: ClassicBoardSize},
		You:      game.Snake{ID: "you", Body: body, Alive: true},
		Food:     []game.Point{{X: food[0], Y: food[1]}},
		Barriers: bars,
	}, nil
}

// ParseStep builds the state for the multi-snake shape. Each rival occupies a
// RivalBlockLen block in otherSnakes; a block starting with Inactive is kept
// as a dead snake.
func ParseStep(boardSize int32, snake []int32, snakeNum int32, otherSnakes []int32, foodNum int32, foods []int32, round int32) (*game.State, error) {
	if boardSize < 1 {
		return nil, fmt.Errorf("board size %d: %w", boardSize, ErrInvalidInput)
	}
	state := &game.State{Board: game.Board{Size: boardSize}, Turn: round}

	if len(snake) > 0 && snake[0] == Inactive {
		state.You = game.Snake{ID: "you"}
	} else {
		body, err := parseBody("snake", snake)
		if err != nil {
			return nil, err
		}
		state.You = game.Snake{ID: "you", Body: body, Alive: true}
	}

	if snakeNum < 0 || int(snakeNum)*RivalBlockLen != len(otherSnakes) {
		return nil, fmt.Errorf("%d rivals need %d ints, got %d: %w",
			snakeNum, int(snakeNum)*RivalBlockLen, len(otherSnakes), ErrInvalidInput)
	}
	for i := 0; i < int(snakeNum); i++ {
		block := otherSnakes[i*RivalBlockLen : (i+1)*RivalBlockLen]
		rival := game.Snake{ID: fmt.Sprintf("rival-%d", i)}
		if block[0] != Inactive {
			body, err := parsePoints(fmt.Sprintf("rival %d", i), block)
			if err != nil {
				return nil, err
			}
			rival.Alive = true
			rival.Body = body
		}
		state.Rivals = append(state.Rivals, rival)
	}

	if foodNum < 0 || int(foodNum)*2 != len(foods) {
		return nil, fmt.Errorf("%d foods need %d ints, got %d: %w",
			foodNum, int(foodNum)*2, len(foods), ErrInvalidInput)
	}
	food, err := parsePoints("foods", foods)
	if err != nil {
		return nil, err
	}
	state.Food = food
	return state, nil
}

func parseBody(name string, xs []int32) ([]game.Point, error) {
	if len(xs) < 2 {
		return nil, fmt.Errorf("%s has %d ints, want at least one cell: %w", name, len(xs), ErrInvalidInput)
	}
	return parsePoints(name, xs)
}

func parsePoints(name string, xs []int32) ([]game.Point, error) {
	if len(xs)%2 != 0 {
		return nil, fmt.Errorf("%s has odd length %d: %w", name, len(xs), ErrInvalidInput)
	}
	out := make([]game.Point, 0, len(xs)/2)
	for i := 0; i < len(xs); i += 2 {
		out = append(out, game.Point{X: xs[i], Y: xs[i+1]})
	}
	return out, nil
}
