package config

import (
	"errors"
	"fmt"
	"strings"
)

// Validate ensures the configuration is usable. The Telegram token is only
// checked by RequireTelegram because offline commands do not need it.
func (c *Config) Validate() error {
	if err := c.validateQuiz(); err != nil {
		return err
	}
	if err := c.validateLeaderboard(); err != nil {
		return err
	}
	if err := c.validateVoice(); err != nil {
		return err
	}
	return c.validateLogging()
}

// RequireTelegram reports a helpful error when no bot token is configured.
func (c *Config) RequireTelegram() error {
	if c.Telegram.Token != "" {
		return nil
	}
	defaultPath, err := DefaultConfigPath()
	if err != nil {
		defaultPath = defaultConfigPath
	}
	return fmt.Errorf("telegram.token is required. Set TELEGRAM_BOT_TOKEN env var or edit %s (create with 'tabibot config init')", defaultPath)
}

func (c *Config) validateQuiz() error {
	if c.Quiz.RandomCount < 1 {
		return errors.New("quiz.random_count must be positive")
	}
	if c.Quiz.TimeAttackSeconds < 1 {
		return errors.New("quiz.time_attack_seconds must be positive")
	}
	return nil
}

func (c *Config) validateLeaderboard() error {
	switch c.Leaderboard.Backend {
	case BackendMemory, BackendSQLite:
	case BackendRedis:
		if c.Leaderboard.RedisDB < 0 {
			return errors.New("leaderboard.redis_db must be non-negative")
		}
	default:
		return fmt.Errorf("leaderboard.backend %q is not one of memory, sqlite, redis", c.Leaderboard.Backend)
	}
	return nil
}

func (c *Config) validateVoice() error {
	if c.Voice.CharsPerSecond <= 0 {
		return errors.New("voice.chars_per_second must be positive")
	}
	for name, p := range c.Voice.Speakers {
		if strings.TrimSpace(name) == "" {
			return errors.New("voice.speakers: empty speaker name")
		}
		if p.Pitch <= 0 || p.Rate <= 0 {
			return fmt.Errorf("voice.speakers.%s: pitch and rate must be positive", name)
		}
	}
	return nil
}

func (c *Config) validateLogging() error {
	switch c.Logging.Level {
	case "debug", "info", "warn", "warning", "error":
		return nil
	default:
		return fmt.Errorf("logging.level %q is not one of debug, info, warn, error", c.Logging.Level)
	}
}
