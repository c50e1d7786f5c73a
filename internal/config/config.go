package config

import (
	_ "embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/pelletier/go-toml/v2"
)

//go:embed sample_config.toml
var sampleConfig string

// Telegram contains bot credentials.
type Telegram struct {
	Token string `toml:"token"`
	Debug bool   `toml:"debug"`
}

// Content points at the course file. Empty means the embedded course.
type Content struct {
	Path string `toml:"path"`
}

// Quiz contains session engine settings.
type Quiz struct {
	RandomCount       int `toml:"random_count"`
	TimeAttackSeconds int `toml:"time_attack_seconds"`
}

// Leaderboard selects and configures the leaderboard backend.
type Leaderboard struct {
	Backend       string `toml:"backend"`
	SQLitePath    string `toml:"sqlite_path"`
	RedisAddr     string `toml:"redis_addr"`
	RedisPassword string `toml:"redis_password"`
	RedisDB       int    `toml:"redis_db"`
	RedisKey      string `toml:"redis_key"`
}

// SpeakerProsody overrides pitch and rate for one speaker.
type SpeakerProsody struct {
	Pitch float64 `toml:"pitch"`
	Rate  float64 `toml:"rate"`
}

// Voice contains narration settings.
type Voice struct {
	Language       string                    `toml:"language"`
	CharsPerSecond float64                   `toml:"chars_per_second"`
	MinPauseMS     int                       `toml:"min_pause_ms"`
	Speakers       map[string]SpeakerProsody `toml:"speakers"`
}

// Logging contains configuration for log output.
type Logging struct {
	Format string `toml:"format"`
	Level  string `toml:"level"`
	Dir    string `toml:"dir"`
}

// Paths contains runtime file locations.
type Paths struct {
	LockFile string `toml:"lock_file"`
}

// Config encapsulates all configuration values for tabibot.
type Config struct {
	Telegram    Telegram    `toml:"telegram"`
	Content     Content     `toml:"content"`
	Quiz        Quiz        `toml:"quiz"`
	Leaderboard Leaderboard `toml:"leaderboard"`
	Voice       Voice       `toml:"voice"`
	Logging     Logging     `toml:"logging"`
	Paths       Paths       `toml:"paths"`
}

// DefaultConfigPath returns the absolute path to the default configuration file location.
func DefaultConfigPath() (string, error) {
	return expandPath(defaultConfigPath)
}

// Load locates, parses, and validates a configuration file. A .env file in
// the working directory is loaded first so its variables act as environment
// fallbacks. The returned config has all path fields expanded.
func Load(path string) (*Config, string, bool, error) {
	cfg := Default()

	if err := loadDotEnv(); err != nil {
		return nil, "", false, err
	}

	resolvedPath, exists, err := resolveConfigPath(path)
	if err != nil {
		return nil, "", false, err
	}

	if exists {
		file, err := os.Open(resolvedPath)
		if err != nil {
			return nil, "", false, fmt.Errorf("open config: %w", err)
		}
		defer file.Close()

		decoder := toml.NewDecoder(file)
		if err := decoder.Decode(&cfg); err != nil {
			return nil, "", false, fmt.Errorf("parse config: %w", err)
		}
	}

	if err := cfg.normalize(); err != nil {
		return nil, "", false, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, "", false, err
	}

	return &cfg, resolvedPath, exists, nil
}

// loadDotEnv never overrides variables already set in the environment.
func loadDotEnv() error {
	err := godotenv.Load()
	if err == nil || errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	return fmt.Errorf("load .env: %w", err)
}

func resolveConfigPath(path string) (string, bool, error) {
	if path != "" {
		expanded, err := expandPath(path)
		if err != nil {
			return "", false, err
		}
		_, err = os.Stat(expanded)
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				return expanded, false, nil
			}
			return "", false, fmt.Errorf("stat config: %w", err)
		}
		return expanded, true, nil
	}

	defaultPath, err := expandPath(defaultConfigPath)
	if err != nil {
		return "", false, err
	}

	projectPath, err := filepath.Abs(defaultProjectConfig)
	if err != nil {
		return "", false, err
	}

	if info, err := os.Stat(defaultPath); err == nil && !info.IsDir() {
		return defaultPath, true, nil
	}
	if info, err := os.Stat(projectPath); err == nil && !info.IsDir() {
		return projectPath, true, nil
	}

	return defaultPath, false, nil
}

// TimeAttack returns the per-question countdown duration.
func (c *Config) TimeAttack() time.Duration {
	return time.Duration(c.Quiz.TimeAttackSeconds) * time.Second
}

// MinPause returns the narration pause appended after each line.
func (c *Config) MinPause() time.Duration {
	return time.Duration(c.Voice.MinPauseMS) * time.Millisecond
}

// EnsureDirectories creates the parent directories of files the bot writes.
func (c *Config) EnsureDirectories() error {
	dirs := []string{filepath.Dir(c.Paths.LockFile)}
	if c.Leaderboard.Backend == BackendSQLite {
		dirs = append(dirs, filepath.Dir(c.Leaderboard.SQLitePath))
	}
	if c.Logging.Dir != "" {
		dirs = append(dirs, c.Logging.Dir)
	}
	for _, dir := range dirs {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create directory %q: %w", dir, err)
		}
	}
	return nil
}

func expandPath(pathValue string) (string, error) {
	if pathValue == "" {
		return pathValue, nil
	}
	if strings.HasPrefix(pathValue, "~") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home directory: %w", err)
		}
		if pathValue == "~" {
			pathValue = home
		} else if len(pathValue) > 1 && (pathValue[1] == '/' || pathValue[1] == '\\') {
			pathValue = filepath.Join(home, pathValue[2:])
		}
	}
	absolute, err := filepath.Abs(filepath.Clean(pathValue))
	if err != nil {
		return "", fmt.Errorf("resolve absolute path for %q: %w", pathValue, err)
	}
	return absolute, nil
}

// ExpandPath exposes the path expansion rules for other packages.
func ExpandPath(pathValue string) (string, error) {
	return expandPath(pathValue)
}

// CreateSample writes a sample configuration file to the specified location.
func CreateSample(path string) error {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create config directory: %w", err)
		}
	}
	if err := os.WriteFile(path, []byte(sampleConfig), 0o644); err != nil {
		return fmt.Errorf("write sample config: %w", err)
	}
	return nil
}
