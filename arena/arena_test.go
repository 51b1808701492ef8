package arena

import (
	"context"
	"testing"

	"github.com/groundedlens/BUAASE2025-PairProgramming/game"
	"github.com/groundedlens/BUAASE2025-PairProgramming/planner"
)

func soloConfig() Config {
	cfg := DefaultConfig()
	cfg.Policies = []planner.Policy{planner.PolicyReachability}
	cfg.MaxTurns = 100
	return cfg
}

func TestNewMatch_Placement(t *testing.T) {
	m, err := NewMatch(DefaultConfig(), nil)
	if err != nil {
		t.Fatalf("NewMatch: %v", err)
	}
	snakes := m.Snakes()
	if len(snakes) != 2 {
		t.Fatalf("snakes=%d", len(snakes))
	}
	for _, s := range snakes {
		if len(s.Body) != game.WindowLen || s.Body[0].Y != game.WindowLen || s.Body[3].Y != 1 {
			t.Fatalf("bad start body %v", s.Body)
		}
	}
	if snakes[0].Body[0].X == snakes[1].Body[0].X {
		t.Fatalf("snakes share a column")
	}
	if len(m.Food()) < game.DefaultFoodSettings.MinimumFood {
		t.Fatalf("no initial food")
	}
	t.Logf("\n%s", m.Render())
}

func TestNewMatch_Errors(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Policies = nil
	if _, err := NewMatch(cfg, nil); err == nil {
		t.Fatalf("expected error without snakes")
	}

	cfg = DefaultConfig()
	cfg.Policies = make([]planner.Policy, 5)
	if _, err := NewMatch(cfg, nil); err == nil {
		t.Fatalf("expected error for too many snakes")
	}

	cfg = soloConfig()
	cfg.Barriers = []game.Point{{X: 5, Y: 2}}
	if _, err := NewMatch(cfg, nil); err == nil {
		t.Fatalf("expected error for barrier on a start cell")
	}
}

func TestSoloSnakeSurvivesAndEats(t *testing.T) {
	m, err := NewMatch(soloConfig(), nil)
	if err != nil {
		t.Fatalf("NewMatch: %v", err)
	}
	res, err := m.Run(context.Background())
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	id := m.Snakes()[0].ID
	if res.Turns != 100 || res.Winner != id {
		t.Fatalf("result=%+v\n%s", res, m.Render())
	}
	if res.Scores[id] == 0 {
		t.Fatalf("snake never ate in 100 turns\n%s", m.Render())
	}
	if got := len(m.Snakes()[0].Body); got != game.WindowLen {
		t.Fatalf("body length %d, want capped at %d", got, game.WindowLen)
	}
}

func TestBoxedSnakeDies(t *testing.T) {
	cfg := soloConfig()
	cfg.Size = 5
	// Start column is 3: head (3,4) with walls on every free side.
	cfg.Barriers = []game.Point{{X: 3, Y: 5}, {X: 2, Y: 4}, {X: 4, Y: 4}}
	m, err := NewMatch(cfg, nil)
	if err != nil {
		t.Fatalf("NewMatch: %v", err)
	}
	m.Step()
	if !m.Done() {
		t.Fatalf("match should be over\n%s", m.Render())
	}
	id := m.Snakes()[0].ID
	d, ok := m.LastDecision(id)
	if !ok || d.Move != game.NoMove || d.Reason != planner.ReasonNoCandidates {
		t.Fatalf("decision=%+v", d)
	}
	res := m.Result()
	if res.Winner != "" || res.Deaths[id] != 1 {
		t.Fatalf("result=%+v", res)
	}
	// Stepping a finished match is a no-op.
	m.Step()
	if m.Turn() != 1 {
		t.Fatalf("turn=%d after finished step", m.Turn())
	}
}

func TestMatchIsDeterministic(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Seed = 99
	cfg.MaxTurns = 40
	a, err := NewMatch(cfg, nil)
	if err != nil {
		t.Fatalf("NewMatch: %v", err)
	}
	b, _ := NewMatch(cfg, nil)
	for !a.Done() {
		a.Step()
		b.Step()
		if a.Render() != b.Render() {
			t.Fatalf("turn %d diverged\n%s\n%s", a.Turn(), a.Render(), b.Render())
		}
	}
	ra, rb := a.Result(), b.Result()
	if ra.Turns != rb.Turns || ra.Winner != rb.Winner {
		t.Fatalf("results differ: %+v vs %+v", ra, rb)
	}
	if ra.Turns > cfg.MaxTurns {
		t.Fatalf("ran %d turns past max %d", ra.Turns, cfg.MaxTurns)
	}
}

func TestRunStopsOnCancel(t *testing.T) {
	m, _ := NewMatch(soloConfig(), nil)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := m.Run(ctx); err == nil {
		t.Fatalf("expected context error")
	}
	if m.Turn() != 0 {
		t.Fatalf("turn=%d want 0", m.Turn())
	}
}

func TestRender(t *testing.T) {
	cfg := soloConfig()
	cfg.Size = 5
	cfg.Food = game.FoodSettings{}
	cfg.Barriers = []game.Point{{X: 1, Y: 5}}
	m, err := NewMatch(cfg, nil)
	if err != nil {
		t.Fatalf("NewMatch: %v", err)
	}
	want := "#....\n" +
		"..A..\n" +
		"..a..\n" +
		"..a..\n" +
		"..a..\n"
	if got := m.Render(); got != want {
		t.Fatalf("render:\n%s\nwant:\n%s", got, want)
	}
}
