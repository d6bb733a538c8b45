package config

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

// Config holds all configuration for the client
type Config struct {
	Arena   ArenaConfig
	Redis   RedisConfig
	Discord DiscordConfig
	Timing  TimingConfig
	Combat  CombatConfig
}

// ArenaConfig holds combat server connection settings
type ArenaConfig struct {
	BaseURL   string
	StreamURL string // websocket endpoint for state deltas; empty disables the stream
}

// RedisConfig holds Redis-specific configuration. An empty Addr disables
// combat log persistence and the client keeps logs in memory only.
type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

// DiscordConfig holds the optional combat relay settings
type DiscordConfig struct {
	Token     string // empty disables the relay
	ChannelID string
}

// TimingConfig names every animation delay the pipeline uses
type TimingConfig struct {
	// MoveCellDuration is the animation time per path cell
	MoveCellDuration time.Duration

	// ReactionPause is the fixed delay between resolved reactions
	ReactionPause time.Duration

	// DiceFrameInterval is the delay between dice tumble frames
	DiceFrameInterval time.Duration

	// DiceTumbleDuration is the total length of one tumble
	DiceTumbleDuration time.Duration

	// RollAutoHide keeps a settled roll visible before hiding it
	RollAutoHide time.Duration

	// GatewayTimeout bounds each server round trip
	GatewayTimeout time.Duration
}

// CombatConfig holds per-session combat settings
type CombatConfig struct {
	// CombatID is the session to join
	CombatID string

	// LocalCombatantID identifies which combatant this client controls
	LocalCombatantID string

	// ClickToRoll gates dice animations on an explicit player click
	ClickToRoll bool
}

// Load loads configuration from environment variables
func Load() (*Config, error) {
	cfg := &Config{
		Arena: ArenaConfig{
			BaseURL:   getEnvOrDefault("ARENA_API_URL", "http://localhost:8080"),
			StreamURL: os.Getenv("ARENA_STREAM_URL"),
		},
		Redis: RedisConfig{
			Addr:     os.Getenv("REDIS_ADDR"),
			Password: os.Getenv("REDIS_PASSWORD"),
			DB:       getEnvAsIntOrDefault("REDIS_DB", 0),
		},
		Discord: DiscordConfig{
			Token:     os.Getenv("DISCORD_TOKEN"),
			ChannelID: os.Getenv("DISCORD_CHANNEL_ID"),
		},
		Timing: TimingConfig{
			MoveCellDuration:   getEnvAsMillisOrDefault("MOVE_CELL_ANIMATION_MS", 200),
			ReactionPause:      getEnvAsMillisOrDefault("REACTION_PAUSE_MS", 600),
			DiceFrameInterval:  getEnvAsMillisOrDefault("DICE_FRAME_INTERVAL_MS", 80),
			DiceTumbleDuration: getEnvAsMillisOrDefault("DICE_TUMBLE_DURATION_MS", 800),
			RollAutoHide:       getEnvAsMillisOrDefault("ROLL_AUTOHIDE_MS", 1500),
			GatewayTimeout:     getEnvAsMillisOrDefault("GATEWAY_TIMEOUT_MS", 15000),
		},
		Combat: CombatConfig{
			CombatID:         getEnvOrDefault("COMBAT_ID", "demo"),
			LocalCombatantID: getEnvOrDefault("COMBATANT_ID", "hero-1"),
			ClickToRoll:      getEnvAsBoolOrDefault("CLICK_TO_ROLL", false),
		},
	}

	if cfg.Arena.BaseURL == "" {
		return nil, fmt.Errorf("ARENA_API_URL is required")
	}
	if cfg.Discord.Token != "" && cfg.Discord.ChannelID == "" {
		return nil, fmt.Errorf("DISCORD_CHANNEL_ID is required when DISCORD_TOKEN is set")
	}

	return cfg, nil
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsIntOrDefault(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getEnvAsMillisOrDefault(key string, defaultMillis int) time.Duration {
	return time.Duration(getEnvAsIntOrDefault(key, defaultMillis)) * time.Millisecond
}

func getEnvAsBoolOrDefault(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolValue, err := strconv.ParseBool(value); err == nil {
			return boolValue
		}
	}
	return defaultValue
}
