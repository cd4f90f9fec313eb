package bot

import (
	"time"
)

// BotConfig represents the configuration for the bot
type BotConfig struct {
	// Number of cards fetched per /review session
	ReviewBatch int
	// Number of questions per deck quiz
	QuizQuestions int
	// Long-polling timeout in seconds
	UpdateTimeout int
	// Unfinished conversations (quiz, mentor question) are dropped after this
	StateTTL time.Duration
}

// DefaultConfig returns the default bot configuration
func DefaultConfig() *BotConfig {
	return &BotConfig{
		ReviewBatch:   5,
		QuizQuestions: 5,
		UpdateTimeout: 60,
		StateTTL:      time.Minute * 30,
	}
}
