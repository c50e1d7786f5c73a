// Package quiz builds and runs quiz sessions over a content.Course.
//
// An Engine draws question sets (random sample, full course, one chapter, or
// a retry of earlier mistakes) and hands out Sessions. A Session is not safe
// for concurrent use: callers serialize Submit, HandleTimeout and Advance,
// typically on a single event loop. Time-attack countdowns fire on their own
// goroutine and only report the question index they were started for.
package quiz

import (
	"fmt"
	"log/slog"
	"math/rand/v2"
	"sync"

	"github.com/PoluyanbIch/tabibot/internal/content"
)

// DefaultRandomCount is the size of a random-mode question set.
const DefaultRandomCount = 10

// EngineOptions configures an Engine.
type EngineOptions struct {
	RandomCount int
	Rand        *rand.Rand
	Logger      *slog.Logger
}

// Engine creates quiz sessions from a course.
type Engine struct {
	course      *content.Course
	randomCount int
	logger      *slog.Logger

	mu  sync.Mutex
	rng *rand.Rand
}

// NewEngine returns an engine reading from course.
func NewEngine(course *content.Course, opts EngineOptions) *Engine {
	count := opts.RandomCount
	if count <= 0 {
		count = DefaultRandomCount
	}
	rng := opts.Rand
	if rng == nil {
		rng = rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Engine{
		course:      course,
		randomCount: count,
		logger:      logger.With("component", "quiz"),
		rng:         rng,
	}
}

// Course returns the course the engine draws from.
func (e *Engine) Course() *content.Course {
	return e.course
}

// Start builds a new session. chapterID is only consulted for ModeChapter.
// When the selection is empty ErrEmptyQuestionSet is returned and no session
// is created.
func (e *Engine) Start(mode Mode, chapterID int, ta *TimeAttack) (*Session, error) {
	var selected []Question
	switch mode {
	case ModeRandom:
		selected = e.sample(e.pool(), e.randomCount)
	case ModeFull:
		selected = e.pool()
	case ModeChapter:
		ch, ok := e.course.Chapter(chapterID)
		if !ok {
			return nil, fmt.Errorf("chapter %d not found: %w", chapterID, ErrEmptyQuestionSet)
		}
		selected = chapterQuestions(ch)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownMode, mode)
	}

	if len(selected) == 0 {
		return nil, fmt.Errorf("start %s session: %w", mode, ErrEmptyQuestionSet)
	}

	session := newSession(mode, e.shuffleAll(selected), ta)
	e.logger.Debug("session started",
		"session", session.ID,
		"mode", string(mode),
		"questions", len(session.questions),
		"time_attack", session.TimeAttack(),
	)
	return session, nil
}

// Retry builds a session from the wrong answers of a finished session. Each
// question gets a fresh permutation of its current options.
func (e *Engine) Retry(wrong []Question, ta *TimeAttack) (*Session, error) {
	if len(wrong) == 0 {
		return nil, fmt.Errorf("start %s session: %w", ModeRetry, ErrEmptyQuestionSet)
	}
	session := newSession(ModeRetry, e.shuffleAll(wrong), ta)
	e.logger.Debug("retry session started", "session", session.ID, "questions", len(session.questions))
	return session, nil
}

// pool flattens every exercise of the course in chapter order.
func (e *Engine) pool() []Question {
	if e.course == nil {
		return nil
	}
	pool := make([]Question, 0, e.course.ExerciseCount())
	for i := range e.course.Chapters {
		pool = append(pool, chapterQuestions(&e.course.Chapters[i])...)
	}
	return pool
}

func chapterQuestions(ch *content.Chapter) []Question {
	out := make([]Question, 0, len(ch.Exercises))
	for _, ex := range ch.Exercises {
		out = append(out, Question{
			Question:     ex.Question,
			Options:      append([]string(nil), ex.Options...),
			Answer:       ex.Answer,
			Explanation:  ex.Explanation,
			ChapterID:    ch.ID,
			ChapterTitle: ch.Title,
		})
	}
	return out
}

// sample shuffles a copy of questions and keeps the first limit entries.
func (e *Engine) sample(questions []Question, limit int) []Question {
	e.mu.Lock()
	defer e.mu.Unlock()

	shuffled := make([]Question, len(questions))
	copy(shuffled, questions)

	// Fisher-Yates
	for i := len(shuffled) - 1; i > 0; i-- {
		j := e.rng.IntN(i + 1)
		shuffled[i], shuffled[j] = shuffled[j], shuffled[i]
	}

	if limit <= 0 || limit > len(shuffled) {
		limit = len(shuffled)
	}
	return shuffled[:limit]
}

func (e *Engine) shuffleAll(questions []Question) []Question {
	e.mu.Lock()
	defer e.mu.Unlock()

	out := make([]Question, len(questions))
	for i, q := range questions {
		out[i] = Shuffle(q, e.rng)
	}
	return out
}
