// Package leaderboard keeps the best quiz result of every player.
//
// Each user has at most one entry. A new result replaces it only when the
// percentage is higher, or equal with a higher score. Ranking is percentage
// descending, then score descending, then the earlier result first.
package leaderboard

import (
	"cmp"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/PoluyanbIch/tabibot/internal/config"
	"github.com/PoluyanbIch/tabibot/internal/logging"
)

// ErrUnknownBackend is returned by Open for an unsupported backend name.
var ErrUnknownBackend = errors.New("unknown leaderboard backend")

// Entry is one player's best result.
type Entry struct {
	UserID     int64     `json:"user_id"`
	Username   string    `json:"username"`
	FirstName  string    `json:"first_name"`
	Mode       string    `json:"mode"`
	Score      int       `json:"score"`
	Total      int       `json:"total"`
	Percentage int       `json:"percentage"`
	RecordedAt time.Time `json:"recorded_at"`
}

// DisplayName prefers the username, then the first name.
func (e Entry) DisplayName() string {
	switch {
	case e.Username != "":
		return "@" + e.Username
	case e.FirstName != "":
		return e.FirstName
	default:
		return fmt.Sprintf("user %d", e.UserID)
	}
}

// Store persists leaderboard entries. Implementations are safe for
// concurrent use.
type Store interface {
	// Add records a result and reports whether it became the user's entry.
	Add(ctx context.Context, entry Entry) (bool, error)
	// Top returns up to limit entries in rank order; limit <= 0 means all.
	Top(ctx context.Context, limit int) ([]Entry, error)
	// Position returns the 1-based rank of userID, or -1 and nil when absent.
	Position(ctx context.Context, userID int64) (int, *Entry, error)
	Close() error
}

// Open builds the store selected by cfg.Backend.
func Open(ctx context.Context, cfg config.Leaderboard, logger *slog.Logger) (Store, error) {
	logger = logging.OrNop(logger).With("component", "leaderboard")
	switch cfg.Backend {
	case "", config.BackendMemory:
		logger.Debug("using in-memory leaderboard")
		return NewMemory(), nil
	case config.BackendSQLite:
		logger.Debug("opening sqlite leaderboard", "path", cfg.SQLitePath)
		store, err := OpenSQLite(ctx, cfg.SQLitePath)
		if err != nil {
			return nil, err
		}
		return store, nil
	case config.BackendRedis:
		logger.Debug("connecting redis leaderboard", "addr", cfg.RedisAddr, "db", cfg.RedisDB)
		store, err := OpenRedis(ctx, RedisOptions{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
			Key:      cfg.RedisKey,
		})
		if err != nil {
			return nil, err
		}
		return store, nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownBackend, cfg.Backend)
	}
}

// prepare fills derived fields of an incoming entry.
func prepare(entry Entry, now func() time.Time) Entry {
	entry.Percentage = percentage(entry.Score, entry.Total)
	if entry.RecordedAt.IsZero() {
		entry.RecordedAt = now()
	}
	entry.RecordedAt = entry.RecordedAt.UTC()
	return entry
}

func percentage(score, total int) int {
	if total <= 0 {
		return 0
	}
	return score * 100 / total
}

// better reports whether candidate should replace current.
func better(candidate, current Entry) bool {
	if candidate.Percentage != current.Percentage {
		return candidate.Percentage > current.Percentage
	}
	return candidate.Score > current.Score
}

func compareEntries(a, b Entry) int {
	return cmp.Or(
		cmp.Compare(b.Percentage, a.Percentage),
		cmp.Compare(b.Score, a.Score),
		a.RecordedAt.Compare(b.RecordedAt),
		cmp.Compare(a.UserID, b.UserID),
	)
}
