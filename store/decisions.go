// Package store persists engine decisions as zstd-compressed Parquet batches.
package store

import (
	"encoding/json"
	"fmt"

	"github.com/groundedlens/BUAASE2025-PairProgramming/game"
	"github.com/groundedlens/BUAASE2025-PairProgramming/planner"
)

// SchemaName is written into the key/value metadata of every batch file.
const SchemaName = "decision_row_v1"

// DecisionRow is one engine decision for one snake on one turn.
//
// State holds the JSON snapshot the engine saw (see Snapshot), so a row can be
// replayed without the source game. Move uses the engine codes: 0=up, 1=left,
// 2=down, 3=right, -1=no safe move.
type DecisionRow struct {
	GameID    string `parquet:"game_id,dict"`
	Turn      int32  `parquet:"turn"`
	SnakeID   string `parquet:"snake_id,dict"`
	BoardSize int32  `parquet:"board_size"`
	Policy    string `parquet:"policy,dict"`
	Move      int32  `parquet:"move"`
	Reason    string `parquet:"reason,dict"`
	Simulated int32  `parquet:"simulated"`
	State     []byte `parquet:"state_json,zstd"`
	Source    string `parquet:"source,dict"`
}

// Snapshot is the JSON form of a game.State stored in DecisionRow.State.
type Snapshot struct {
	Size     int32        `json:"size"`
	Turn     int32        `json:"turn"`
	You      SnakeJSON    `json:"you"`
	Rivals   []SnakeJSON  `json:"rivals,omitempty"`
	Food     []game.Point `json:"food"`
	Barriers []game.Point `json:"barriers,omitempty"`
}

type SnakeJSON struct {
	ID    string       `json:"id"`
	Alive bool         `json:"alive"`
	Body  []game.Point `json:"body"`
}

func EncodeState(s *game.State) ([]byte, error) {
	if s.Board.Size <= 0 {
		return nil, fmt.Errorf("invalid board size %d", s.Board.Size)
	}
	snap := Snapshot{
		Size:     s.Board.Size,
		Turn:     s.Turn,
		You:      SnakeJSON{ID: s.You.ID, Alive: s.You.Alive, Body: s.You.Body},
		Food:     s.Food,
		Barriers: s.Barriers,
	}
	for _, r := range s.Rivals {
		snap.Rivals = append(snap.Rivals, SnakeJSON{ID: r.ID, Alive: r.Alive, Body: r.Body})
	}
	return json.Marshal(snap)
}

// DecodeState is the inverse of EncodeState.
func DecodeState(b []byte) (*game.State, error) {
	var snap Snapshot
	if err := json.Unmarshal(b, &snap); err != nil {
		return nil, fmt.Errorf("decode state: %w", err)
	}
	s := &game.State{
		Board:    game.Board{Size: snap.Size},
		Turn:     snap.Turn,
		You:      game.Snake{ID: snap.You.ID, Alive: snap.You.Alive, Body: snap.You.Body},
		Food:     snap.Food,
		Barriers: snap.Barriers,
	}
	for _, r := range snap.Rivals {
		s.Rivals = append(s.Rivals, game.Snake{ID: r.ID, Alive: r.Alive, Body: r.Body})
	}
	return s, nil
}

// NewDecisionRow records decision d taken in state s.
func NewDecisionRow(gameID, source string, s *game.State, d planner.Decision) (DecisionRow, error) {
	raw, err := EncodeState(s)
	if err != nil {
		return DecisionRow{}, err
	}
	return DecisionRow{
		GameID:    gameID,
		Turn:      s.Turn,
		SnakeID:   s.You.ID,
		BoardSize: s.Board.Size,
		Policy:    d.Policy.String(),
		Move:      int32(d.Move),
		Reason:    d.Reason,
		Simulated: int32(d.Simulated),
		State:     raw,
		Source:    source,
	}, nil
}
