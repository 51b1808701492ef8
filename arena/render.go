package arena

import (
	"strings"

	"github.com/groundedlens/BUAASE2025-PairProgramming/game"
)

// Glyphs used by Render. Snake i is drawn with the i-th letter, upper case
// for the head.
const (
	glyphEmpty   = '.'
	glyphFood    = '*'
	glyphBarrier = '#'
)

// Render draws the board with row Size on top.
func (m *Match) Render() string {
	size := m.board.Size
	grid := make([][]byte, size)
	for i := range grid {
		grid[i] = []byte(strings.Repeat(string(glyphEmpty), int(size)))
	}
	put := func(p game.Point, c byte) {
		if m.board.Contains(p) {
			grid[size-p.Y][p.X-1] = c
		}
	}
	for _, b := range m.cfg.Barriers {
		put(b, glyphBarrier)
	}
	for _, f := range m.food {
		put(f, glyphFood)
	}
	for i, s := range m.snakes {
		if !s.Alive {
			continue
		}
		letter := byte('a' + i%26)
		for j := len(s.Body) - 1; j >= 0; j-- {
			c := letter
			if j == 0 {
				c = letter - 'a' + 'A'
			}
			put(s.Body[j], c)
		}
	}

	var b strings.Builder
	for _, row := range grid {
		b.Write(row)
		b.WriteByte('\n')
	}
	return b.String()
}
