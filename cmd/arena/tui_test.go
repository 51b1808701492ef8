package main

import (
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/groundedlens/BUAASE2025-PairProgramming/arena"
	"github.com/groundedlens/BUAASE2025-PairProgramming/planner"
)

func key(s string) tea.KeyMsg {
	if s == " " {
		return tea.KeyMsg{Type: tea.KeySpace, Runes: []rune{' '}}
	}
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func TestModelTicksAndRestarts(t *testing.T) {
	cfg := arena.DefaultConfig()
	cfg.MaxTurns = 3
	var m tea.Model = initialModel(cfg, time.Millisecond)

	for i := 0; i < 4; i++ {
		var cmd tea.Cmd
		m, cmd = m.Update(TickMsg(time.Now()))
		if cmd == nil {
			t.Fatalf("tick %d did not schedule the next tick", i)
		}
	}
	mm := m.(model)
	if mm.played != 1 || mm.match.Turn() != 0 || mm.cfg.Seed != cfg.Seed+1 {
		t.Fatalf("played=%d turn=%d seed=%d", mm.played, mm.match.Turn(), mm.cfg.Seed)
	}
	if !strings.Contains(mm.View(), "Matches: 1") {
		t.Fatalf("view missing match count:\n%s", mm.View())
	}
}

func TestModelPauseAndStep(t *testing.T) {
	var m tea.Model = initialModel(arena.DefaultConfig(), time.Millisecond)
	m, _ = m.Update(key(" "))
	m, _ = m.Update(TickMsg(time.Now()))
	if got := m.(model).match.Turn(); got != 0 {
		t.Fatalf("paused model advanced to turn %d", got)
	}
	m, _ = m.Update(key("s"))
	if got := m.(model).match.Turn(); got != 1 {
		t.Fatalf("step left turn at %d", got)
	}
	if !strings.Contains(m.View(), "[paused]") {
		t.Fatalf("view does not show pause")
	}
	if _, cmd := m.Update(key("q")); cmd == nil {
		t.Fatalf("q should quit")
	}
}

func TestParsePolicies(t *testing.T) {
	got, err := parsePolicies("astar, greedy,,reachability")
	if err != nil || len(got) != 3 || got[0] != planner.PolicyAStar || got[1] != planner.PolicyGreedy {
		t.Fatalf("parsePolicies=%v,%v", got, err)
	}
	if _, err := parsePolicies("astar,minimax"); err == nil {
		t.Fatalf("expected error")
	}
}
