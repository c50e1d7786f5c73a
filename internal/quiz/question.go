package quiz

import (
	"errors"
	"fmt"
	"math/rand/v2"
	"strings"
)

var (
	// ErrEmptyQuestionSet is returned when a selection yields no questions.
	ErrEmptyQuestionSet = errors.New("empty question set")
	// ErrUnknownMode is returned for a selection mode Start does not handle.
	ErrUnknownMode = errors.New("unknown quiz mode")
)

// Mode selects how a session's questions are drawn from the course.
type Mode string

const (
	ModeRandom  Mode = "random"
	ModeFull    Mode = "full"
	ModeChapter Mode = "chapter"
	ModeRetry   Mode = "retry"
)

// ParseMode converts user input into a Mode that Start accepts.
func ParseMode(value string) (Mode, error) {
	switch Mode(strings.ToLower(strings.TrimSpace(value))) {
	case ModeRandom, "":
		return ModeRandom, nil
	case ModeFull:
		return ModeFull, nil
	case ModeChapter:
		return ModeChapter, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownMode, value)
	}
}

// Selection sentinels for Session.Selected.
const (
	Unanswered = -1
	Timeout    = -2
)

// Question is an exercise after its options have been shuffled.
type Question struct {
	Question     string
	Options      []string
	Answer       int
	Explanation  string
	ChapterID    int
	ChapterTitle string
}

// IsCorrect reports whether option points at the correct answer. Sentinel
// selections are never correct.
func (q Question) IsCorrect(option int) bool {
	return option >= 0 && option == q.Answer
}

// CorrectText returns the text of the correct option.
func (q Question) CorrectText() string {
	if q.Answer < 0 || q.Answer >= len(q.Options) {
		return ""
	}
	return q.Options[q.Answer]
}

// Shuffle returns a copy of q with its options permuted. The answer index is
// carried through the permutation rather than looked up by text, so options
// with identical text keep pointing at the right position.
func Shuffle(q Question, r *rand.Rand) Question {
	perm := r.Perm(len(q.Options))
	options := make([]string, len(perm))
	answer := -1
	for newPos, oldPos := range perm {
		options[newPos] = q.Options[oldPos]
		if oldPos == q.Answer {
			answer = newPos
		}
	}

	out := q
	out.Options = options
	out.Answer = answer
	return out
}
