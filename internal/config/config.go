// internal/config/config.go
package config

import (
	"os"
	"strconv"
	"time"
)

// Config holds the game tuning parameters. All values are overridable via
// environment variables; defaults match the reference ruleset.
type Config struct {
	InitialPFH           int           // starting resource for both players
	SacrificeCost        int           // fixed PFH cost of a sacrifice draw
	WinningPFH           int           // reaching this PFH wins immediately
	MaxTurns             int           // session length cap
	MaxConsecutiveLosses int           // zero-gain streak that loses the session
	InviteTTL            time.Duration // how long a match invitation stays reserved
	MatchRequireAccept   bool          // pair via invitation handshake instead of immediately
}

// Load reads the game configuration from the environment.
func Load() Config {
	return Config{
		InitialPFH:           getEnvInt("INITIAL_PFH", 100),
		SacrificeCost:        getEnvInt("SACRIFICE_COST", 14),
		WinningPFH:           getEnvInt("WINNING_PFH", 280),
		MaxTurns:             getEnvInt("MAX_GAME_TURNS", 20),
		MaxConsecutiveLosses: getEnvInt("MAX_CONSECUTIVE_LOSSES", 3),
		InviteTTL:            time.Duration(getEnvInt("MATCH_INVITE_TTL_SEC", 30)) * time.Second,
		MatchRequireAccept:   getEnvBool("MATCH_REQUIRE_ACCEPT", false),
	}
}

func getEnvBool(key string, def bool) bool {
	s := os.Getenv(key)
	if s == "" {
		return def
	}
	v, err := strconv.ParseBool(s)
	if err != nil {
		return def
	}
	return v
}

// getEnvInt parses an environment variable as an integer, else a default value.
func getEnvInt(key string, def int) int {
	s := os.Getenv(key)
	if s == "" {
		return def
	}
	v, err := strconv.Atoi(s)
	if err != nil {
		return def
	}
	return v
}
