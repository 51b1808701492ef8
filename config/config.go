// Package config reads command defaults from the environment. Flags stay the
// primary interface; these helpers only provide their default values.
package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/groundedlens/BUAASE2025-PairProgramming/planner"
)

// EnvOrDefault returns the value of key, or def when unset or empty.
func EnvOrDefault(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

// EnvInt returns key parsed as an int, or def when unset or malformed.
func EnvInt(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		if i, err := strconv.Atoi(strings.TrimSpace(v)); err == nil {
			return i
		}
	}
	return def
}

func EnvDuration(key string, def time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return def
}

func EnvBool(key string, def bool) bool {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	switch strings.ToLower(v) {
	case "1", "true", "yes", "on":
		return true
	}
	return false
}

// EngineFromEnv starts from planner.DefaultConfig and applies SNAKE_POLICY,
// SNAKE_LOOKAHEAD, SNAKE_DANGER_PENALTY and SNAKE_MIN_ESCAPE.
func EngineFromEnv() (planner.Config, error) {
	cfg := planner.DefaultConfig()
	if name := os.Getenv("SNAKE_POLICY"); name != "" {
		p, err := planner.ParsePolicy(name)
		if err != nil {
			return cfg, err
		}
		cfg.Policy = p
	}
	cfg.LookaheadHorizon = EnvInt("SNAKE_LOOKAHEAD", cfg.LookaheadHorizon)
	cfg.AStar.DangerPenalty = EnvInt("SNAKE_DANGER_PENALTY", cfg.AStar.DangerPenalty)
	cfg.AStar.MinEscapeRoutes = EnvInt("SNAKE_MIN_ESCAPE", cfg.AStar.MinEscapeRoutes)
	return cfg, nil
}
