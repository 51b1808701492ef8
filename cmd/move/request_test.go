package main

import (
	"testing"

	"github.com/groundedlens/BUAASE2025-PairProgramming/flat"
	"github.com/groundedlens/BUAASE2025-PairProgramming/game"
)

func TestParseInts(t *testing.T) {
	got, err := parseInts("snake", " 1, 2,-1 ,4")
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	want := []int32{1, 2, -1, 4}
	if len(got) != len(want) {
		t.Fatalf("got %v want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("got %v want %v", got, want)
		}
	}

	if got, err := parseInts("food", "  "); err != nil || got != nil {
		t.Fatalf("empty list got %v err %v", got, err)
	}
	if _, err := parseInts("food", "1,x"); err == nil {
		t.Fatalf("expected error for non-numeric value")
	}
}

func TestRequestDecide(t *testing.T) {
	classic, step := flat.DefaultConfigs()
	m := flat.NewMover(classic, step, nil)

	cases := []struct {
		name string
		req  request
		want int32
	}{
		{"classic", request{snake: []int32{1, 1, 2, 1, 3, 1, 4, 1}, food: []int32{1, 2}}, game.MoveUp},
		{"classic boxed", request{
			snake:    []int32{4, 4, 4, 3, 4, 2, 4, 1},
			food:     []int32{1, 1},
			barriers: []int32{4, 5, 3, 4, 5, 4},
		}, game.NoMove},
		{"step", request{size: 5, snake: []int32{1, 1, 1, 2, 1, 3, 1, 4}, food: []int32{5, 1}, round: 1}, game.MoveRight},
		{"step with rival on default size", request{
			snake:  []int32{4, 4, 4, 3, 4, 2, 4, 1},
			food:   []int32{2, 6, 6, 6},
			rivals: []int32{3, 6, 3, 7, 3, 8, 2, 8},
			round:  1,
		}, game.MoveRight},
		{"step inactive", request{size: 8, snake: []int32{-1, -1, -1, -1, -1, -1, -1, -1}, food: []int32{1, 1}}, 0},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := tc.req.decide(m); got != tc.want {
				t.Fatalf("move=%d want %d", got, tc.want)
			}
		})
	}
}
