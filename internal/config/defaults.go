package config

const (
	defaultConfigPath        = "~/.config/tabibot/config.toml"
	defaultProjectConfig     = "tabibot.toml"
	defaultRandomCount       = 10
	defaultTimeAttackSeconds = 15
	defaultBackend           = BackendMemory
	defaultSQLitePath        = "~/.local/share/tabibot/leaderboard.db"
	defaultRedisAddr         = "127.0.0.1:6379"
	defaultRedisKey          = "tabibot:leaderboard"
	defaultLanguage          = "ja-JP"
	defaultCharsPerSecond    = 7.0
	defaultMinPauseMS        = 400
	defaultLogFormat         = "console"
	defaultLogLevel          = "info"
	defaultLockFile          = "~/.local/share/tabibot/tabibot.lock"
)

// Leaderboard backends.
const (
	BackendMemory = "memory"
	BackendSQLite = "sqlite"
	BackendRedis  = "redis"
)

// Default returns a Config populated with defaults.
func Default() Config {
	return Config{
		Quiz: Quiz{
			RandomCount:       defaultRandomCount,
			TimeAttackSeconds: defaultTimeAttackSeconds,
		},
		Leaderboard: Leaderboard{
			Backend:    defaultBackend,
			SQLitePath: defaultSQLitePath,
			RedisAddr:  defaultRedisAddr,
			RedisKey:   defaultRedisKey,
		},
		Voice: Voice{
			Language:       defaultLanguage,
			CharsPerSecond: defaultCharsPerSecond,
			MinPauseMS:     defaultMinPauseMS,
		},
		Logging: Logging{
			Format: defaultLogFormat,
			Level:  defaultLogLevel,
		},
		Paths: Paths{
			LockFile: defaultLockFile,
		},
	}
}
