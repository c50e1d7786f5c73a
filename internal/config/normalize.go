package config

import (
	"fmt"
	"os"
	"strings"
)

func (c *Config) normalize() error {
	c.normalizeTelegram()
	if err := c.normalizeContent(); err != nil {
		return err
	}
	c.normalizeQuiz()
	if err := c.normalizeLeaderboard(); err != nil {
		return err
	}
	c.normalizeVoice()
	if err := c.normalizeLogging(); err != nil {
		return err
	}
	return c.normalizePaths()
}

func (c *Config) normalizeTelegram() {
	c.Telegram.Token = strings.TrimSpace(c.Telegram.Token)
	if c.Telegram.Token == "" {
		if value, ok := os.LookupEnv("TELEGRAM_BOT_TOKEN"); ok {
			c.Telegram.Token = strings.TrimSpace(value)
		}
	}
}

func (c *Config) normalizeContent() error {
	c.Content.Path = strings.TrimSpace(c.Content.Path)
	if c.Content.Path == "" {
		if value, ok := os.LookupEnv("TABIBOT_CONTENT_PATH"); ok {
			c.Content.Path = strings.TrimSpace(value)
		}
	}
	var err error
	if c.Content.Path, err = expandPath(c.Content.Path); err != nil {
		return fmt.Errorf("content.path: %w", err)
	}
	return nil
}

func (c *Config) normalizeQuiz() {
	if c.Quiz.RandomCount == 0 {
		c.Quiz.RandomCount = defaultRandomCount
	}
}

func (c *Config) normalizeLeaderboard() error {
	c.Leaderboard.Backend = strings.ToLower(strings.TrimSpace(c.Leaderboard.Backend))
	if c.Leaderboard.Backend == "" {
		c.Leaderboard.Backend = defaultBackend
	}
	if strings.TrimSpace(c.Leaderboard.SQLitePath) == "" {
		c.Leaderboard.SQLitePath = defaultSQLitePath
	}
	var err error
	if c.Leaderboard.SQLitePath, err = expandPath(c.Leaderboard.SQLitePath); err != nil {
		return fmt.Errorf("leaderboard.sqlite_path: %w", err)
	}
	c.Leaderboard.RedisAddr = strings.TrimSpace(c.Leaderboard.RedisAddr)
	if c.Leaderboard.RedisAddr == "" {
		c.Leaderboard.RedisAddr = defaultRedisAddr
	}
	if c.Leaderboard.RedisPassword == "" {
		if value, ok := os.LookupEnv("TABIBOT_REDIS_PASSWORD"); ok {
			c.Leaderboard.RedisPassword = value
		}
	}
	c.Leaderboard.RedisKey = strings.TrimSpace(c.Leaderboard.RedisKey)
	if c.Leaderboard.RedisKey == "" {
		c.Leaderboard.RedisKey = defaultRedisKey
	}
	return nil
}

func (c *Config) normalizeVoice() {
	c.Voice.Language = strings.TrimSpace(c.Voice.Language)
	if c.Voice.Language == "" {
		c.Voice.Language = defaultLanguage
	}
	if c.Voice.CharsPerSecond == 0 {
		c.Voice.CharsPerSecond = defaultCharsPerSecond
	}
	if c.Voice.MinPauseMS < 0 {
		c.Voice.MinPauseMS = 0
	}
}

func (c *Config) normalizeLogging() error {
	c.Logging.Format = strings.ToLower(strings.TrimSpace(c.Logging.Format))
	switch c.Logging.Format {
	case "", "console":
		c.Logging.Format = "console"
	case "json":
	default:
		c.Logging.Format = "console"
	}
	c.Logging.Level = strings.ToLower(strings.TrimSpace(c.Logging.Level))
	if c.Logging.Level == "" {
		c.Logging.Level = defaultLogLevel
	}
	var err error
	if c.Logging.Dir, err = expandPath(strings.TrimSpace(c.Logging.Dir)); err != nil {
		return fmt.Errorf("logging.dir: %w", err)
	}
	return nil
}

func (c *Config) normalizePaths() error {
	if strings.TrimSpace(c.Paths.LockFile) == "" {
		c.Paths.LockFile = defaultLockFile
	}
	var err error
	if c.Paths.LockFile, err = expandPath(c.Paths.LockFile); err != nil {
		return fmt.Errorf("paths.lock_file: %w", err)
	}
	return nil
}
