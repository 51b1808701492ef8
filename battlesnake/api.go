package main

import "github.com/groundedlens/BUAASE2025-PairProgramming/ingest"

// Battlesnake API request/response types

type InfoResponse struct {
	APIVersion string `json:"apiversion"`
	Author     string `json:"author"`
	Color      string `json:"color"`
	Head       string `json:"head"`
	Tail       string `json:"tail"`
	Version    string `json:"version"`
}

type GameRequest struct {
	Game  Game        `json:"game"`
	Turn  int         `json:"turn"`
	Board Board       `json:"board"`
	You   Battlesnake `json:"you"`
}

type Game struct {
	ID      string  `json:"id"`
	Ruleset Ruleset `json:"ruleset"`
	Map     string  `json:"map"`
	Timeout int     `json:"timeout"`
	Source  string  `json:"source"`
}

type Ruleset struct {
	Name    string `json:"name"`
	Version string `json:"version"`
}

type Board struct {
	Height  int            `json:"height"`
	Width   int            `json:"width"`
	Food    []ingest.Coord `json:"food"`
	Hazards []ingest.Coord `json:"hazards"`
	Snakes  []Battlesnake  `json:"snakes"`
}

type Battlesnake struct {
	ID      string         `json:"id"`
	Name    string         `json:"name"`
	Health  int            `json:"health"`
	Body    []ingest.Coord `json:"body"`
	Head    ingest.Coord   `json:"head"`
	Length  int            `json:"length"`
	Latency string         `json:"latency"`
	Shout   string         `json:"shout"`
}

type MoveResponse struct {
	Move  string `json:"move"`
	Shout string `json:"shout,omitempty"`
}

// frame maps a request onto the engine event frame shape so both paths share
// one conversion.
func (req *GameRequest) frame() ingest.Frame {
	f := ingest.Frame{Turn: req.Turn, Food: req.Board.Food, Hazards: req.Board.Hazards}
	youListed := false
	for _, s := range req.Board.Snakes {
		youListed = youListed || s.ID == req.You.ID
		f.Snakes = append(f.Snakes, snakeData(s))
	}
	if !youListed {
		f.Snakes = append(f.Snakes, snakeData(req.You))
	}
	return f
}

func snakeData(s Battlesnake) ingest.SnakeData {
	return ingest.SnakeData{ID: s.ID, Name: s.Name, Health: s.Health, Body: s.Body}
}
