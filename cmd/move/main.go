// Command move answers a single move query given as flat coordinate lists and
// prints the direction code (0 up, 1 left, 2 down, 3 right, -1 none).
package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/groundedlens/BUAASE2025-PairProgramming/config"
	"github.com/groundedlens/BUAASE2025-PairProgramming/flat"
	"github.com/groundedlens/BUAASE2025-PairProgramming/game"
	"github.com/groundedlens/BUAASE2025-PairProgramming/logging"
	"github.com/groundedlens/BUAASE2025-PairProgramming/planner"
)

func main() {
	size := flag.Int("size", 0, "Board size; 0 uses the fixed 8x8 shapes unless rivals are given")
	snake := flag.String("snake", "", "Own snake as x,y pairs, head first")
	food := flag.String("food", "", "Food cells as x,y pairs")
	barriers := flag.String("barriers", "", "Barrier cells as x,y pairs (8x8 only)")
	rivals := flag.String("rivals", "", "Rival snakes, 8 ints each; -1 marks an eliminated rival")
	round := flag.Int("round", 1, "Round number")
	policy := flag.String("policy", config.EnvOrDefault("SNAKE_POLICY", ""), "Override the policy for every shape")
	names := flag.Bool("names", false, "Print the move name instead of the code")
	logLevel := flag.String("log-level", config.EnvOrDefault("LOG_LEVEL", "warn"), "Log level")
	flag.Parse()

	level, err := logging.ParseLevel(*logLevel)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}
	logger := logging.New(os.Stderr, level, true)

	req := request{size: int32(*size), round: int32(*round)}
	for _, f := range []struct {
		name string
		raw  string
		dst  *[]int32
	}{
		{"snake", *snake, &req.snake},
		{"food", *food, &req.food},
		{"barriers", *barriers, &req.barriers},
		{"rivals", *rivals, &req.rivals},
	} {
		if *f.dst, err = parseInts(f.name, f.raw); err != nil {
			logger.Error("bad argument", "err", err)
			os.Exit(2)
		}
	}

	classic, step := flat.DefaultConfigs()
	if *policy != "" {
		p, err := planner.ParsePolicy(*policy)
		if err != nil {
			logger.Error("bad argument", "err", err)
			os.Exit(2)
		}
		classic.Policy, step.Policy = p, p
	}
	move := req.decide(flat.NewMover(classic, step, logger))

	switch {
	case *names && move == game.NoMove:
		fmt.Println("none")
	case *names:
		fmt.Println(game.MoveName(int(move)))
	default:
		fmt.Println(move)
	}
}
