package main

import (
	"fmt"
	"sort"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/groundedlens/BUAASE2025-PairProgramming/arena"
	"github.com/groundedlens/BUAASE2025-PairProgramming/game"
)

type TickMsg time.Time

type model struct {
	cfg      arena.Config
	match    *arena.Match
	interval time.Duration
	paused   bool
	played   int
	wins     map[string]int
	history  []string
	err      error
}

func initialModel(cfg arena.Config, interval time.Duration) model {
	m := model{cfg: cfg, interval: interval, wins: make(map[string]int)}
	m.match, m.err = arena.NewMatch(cfg, nil)
	return m
}

func tickCmd(d time.Duration) tea.Cmd {
	return tea.Tick(d, func(t time.Time) tea.Msg {
		return TickMsg(t)
	})
}

func (m model) Init() tea.Cmd {
	return tickCmd(m.interval)
}

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c":
			return m, tea.Quit
		case " ":
			m.paused = !m.paused
		case "n":
			m.restart()
		case "+":
			if m.interval > 20*time.Millisecond {
				m.interval /= 2
			}
		case "-":
			if m.interval < 2*time.Second {
				m.interval *= 2
			}
		case "s":
			if m.paused && m.match != nil {
				m.advance()
			}
		}
	case TickMsg:
		if !m.paused && m.match != nil {
			m.advance()
		}
		return m, tickCmd(m.interval)
	}
	return m, nil
}

// advance plays one turn, or records the result and starts the next match.
func (m *model) advance() {
	if !m.match.Done() {
		m.match.Step()
		return
	}
	res := m.match.Result()
	m.played++
	winner := res.Winner
	if winner == "" {
		winner = "draw"
	}
	m.wins[winner]++
	m.history = append([]string{fmt.Sprintf("seed %d: %s after %d turns", m.cfg.Seed, winner, res.Turns)}, m.history...)
	if len(m.history) > 8 {
		m.history = m.history[:8]
	}
	m.restart()
}

func (m *model) restart() {
	m.cfg.Seed++
	m.match, m.err = arena.NewMatch(m.cfg, nil)
}

func (m model) View() string {
	if m.err != nil {
		return fmt.Sprintf("error: %v\n\nPress q to quit.\n", m.err)
	}
	var b strings.Builder
	fmt.Fprintf(&b, "Seed %d  Turn %d/%d  Tick %s", m.cfg.Seed, m.match.Turn(), m.cfg.MaxTurns, m.interval)
	if m.paused {
		b.WriteString("  [paused]")
	}
	b.WriteString("\n\n")
	b.WriteString(m.match.Render())
	b.WriteString("\n")

	for i, s := range m.match.Snakes() {
		status := "alive"
		if !s.Alive {
			status = "dead"
		}
		line := fmt.Sprintf("%c %-16s %-5s food %-3d", 'A'+i, s.ID, status, m.match.Score(s.ID))
		if d, ok := m.match.LastDecision(s.ID); ok {
			name := game.MoveName(d.Move)
			if d.Move == game.NoMove {
				name = "none"
			}
			line += fmt.Sprintf(" %-5s %s", name, d.Reason)
		}
		b.WriteString(line + "\n")
	}

	if m.played > 0 {
		fmt.Fprintf(&b, "\nMatches: %d\n", m.played)
		names := make([]string, 0, len(m.wins))
		for name := range m.wins {
			names = append(names, name)
		}
		sort.Strings(names)
		for _, name := range names {
			fmt.Fprintf(&b, "  %-16s %d\n", name, m.wins[name])
		}
		for _, h := range m.history {
			b.WriteString("  " + h + "\n")
		}
	}

	b.WriteString("\nspace pause  s step  n next  +/- speed  q quit\n")
	return b.String()
}
