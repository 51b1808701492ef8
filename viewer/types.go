package main

import "encoding/json"

// GameSummary is one row of the games list.
type GameSummary struct {
	GameID     string `json:"game_id"`
	MinTurn    int32  `json:"min_turn"`
	MaxTurn    int32  `json:"max_turn"`
	Decisions  int64  `json:"decisions"`
	Snakes     int64  `json:"snakes"`
	BoardSize  int32  `json:"board_size"`
	Policy     string `json:"policy"`
	Source     string `json:"source"`
	NoMoves    int64  `json:"no_moves"`
	SourceFile string `json:"file"`
}

// GamesResponse is the paginated response for /api/games.
type GamesResponse struct {
	Total int64         `json:"total"`
	Games []GameSummary `json:"games"`
}

// Decision is one recorded engine decision.
type Decision struct {
	Turn      int32           `json:"turn"`
	SnakeID   string          `json:"snake_id"`
	Policy    string          `json:"policy"`
	Move      int32           `json:"move"`
	MoveName  string          `json:"move_name"`
	Reason    string          `json:"reason"`
	Simulated int32           `json:"simulated"`
	State     json.RawMessage `json:"state,omitempty"`
}

// ReasonStats aggregates decisions by policy and reason.
type ReasonStats struct {
	Policy       string  `json:"policy"`
	Reason       string  `json:"reason"`
	Count        int64   `json:"count"`
	Games        int64   `json:"games"`
	AvgSimulated float64 `json:"avg_simulated"`
}

// StatsResponse is the response for /api/stats.
type StatsResponse struct {
	Total   int64         `json:"total"`
	NoMoves int64         `json:"no_moves"`
	Reasons []ReasonStats `json:"reasons"`
}
