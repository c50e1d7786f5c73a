package quiz

import (
	"time"

	"github.com/google/uuid"
)

// TimeAttack enables a per-question countdown. OnExpire receives the index of
// the question whose countdown ran out; the caller hands it back to
// Session.HandleTimeout from its own event loop.
type TimeAttack struct {
	Duration time.Duration
	OnExpire func(index int)
}

// Result summarizes a session.
type Result struct {
	SessionID string
	Mode      Mode
	Score     int
	Total     int
	Wrong     []Question
}

// Session is one play-through of a fixed, ordered question set.
type Session struct {
	ID        string
	Mode      Mode
	StartedAt time.Time

	questions []Question
	index     int
	score     int
	wrong     []Question
	selected  int
	answered  bool
	complete  bool
	abandoned bool
	countdown *Countdown
}

func newSession(mode Mode, questions []Question, ta *TimeAttack) *Session {
	s := &Session{
		ID:        uuid.NewString(),
		Mode:      mode,
		StartedAt: time.Now(),
		questions: questions,
		selected:  Unanswered,
	}
	if ta != nil && ta.Duration > 0 {
		s.countdown = NewCountdown(ta.Duration, ta.OnExpire)
		s.countdown.Start(0)
	}
	return s
}

// ShortID returns the first eight characters of the session id.
func (s *Session) ShortID() string {
	if len(s.ID) <= 8 {
		return s.ID
	}
	return s.ID[:8]
}

// Len returns the number of questions in the session.
func (s *Session) Len() int { return len(s.questions) }

// CurrentIndex returns the zero-based index of the question being played.
func (s *Session) CurrentIndex() int { return s.index }

// Current returns the question being played. ok is false once the session is
// complete.
func (s *Session) Current() (Question, bool) {
	return s.questions[s.index], !s.complete
}

// Question returns the question at index i.
func (s *Session) Question(i int) (Question, bool) {
	if i < 0 || i >= len(s.questions) {
		return Question{}, false
	}
	return s.questions[i], true
}

// Score returns the number of correct answers so far.
func (s *Session) Score() int { return s.score }

// Wrong returns the incorrectly answered or timed-out questions in the order
// they were encountered.
func (s *Session) Wrong() []Question {
	out := make([]Question, len(s.wrong))
	copy(out, s.wrong)
	return out
}

// Selected returns the selection for the current question: an option index,
// Timeout, or Unanswered.
func (s *Session) Selected() int { return s.selected }

// Answered reports whether the current question has been answered.
func (s *Session) Answered() bool { return s.answered }

// Complete reports whether the session advanced past its last question.
func (s *Session) Complete() bool { return s.complete }

// Abandoned reports whether Abandon was called.
func (s *Session) Abandoned() bool { return s.abandoned }

// TimeAttack reports whether the session runs a per-question countdown.
func (s *Session) TimeAttack() bool { return s.countdown != nil }

// Remaining returns the time left on the current question's countdown.
func (s *Session) Remaining() time.Duration {
	if s.countdown == nil {
		return 0
	}
	return s.countdown.Remaining()
}

// CountdownDuration returns the full per-question countdown, or zero when the
// session has no time attack.
func (s *Session) CountdownDuration() time.Duration {
	if s.countdown == nil {
		return 0
	}
	return s.countdown.Duration()
}

// Submit records an answer for the current question. It returns false and
// leaves the session unchanged when the question is already answered or the
// session is over, so duplicate events never double count.
func (s *Session) Submit(option int) bool {
	if s.answered || s.complete || s.abandoned {
		return false
	}
	if s.countdown != nil {
		s.countdown.Cancel()
	}
	s.record(option)
	return true
}

// HandleTimeout fails the question at index when its countdown has expired.
// Expiries for another question, for an answered question, or from a
// superseded countdown are ignored.
func (s *Session) HandleTimeout(index int) bool {
	if s.countdown == nil || s.answered || s.complete || s.abandoned {
		return false
	}
	if index != s.index || s.countdown.Tag() != index || s.countdown.State() != CountdownExpired {
		return false
	}
	s.record(Timeout)
	return true
}

func (s *Session) record(selection int) {
	s.selected = selection
	s.answered = true
	q := s.questions[s.index]
	if q.IsCorrect(selection) {
		s.score++
		return
	}
	s.wrong = append(s.wrong, q)
}

// Advance moves to the next question, or completes the session after the
// last one. It returns false when the current question is unanswered or the
// session is already over.
func (s *Session) Advance() bool {
	if !s.answered || s.complete || s.abandoned {
		return false
	}
	if s.index < len(s.questions)-1 {
		s.index++
		s.answered = false
		s.selected = Unanswered
		if s.countdown != nil {
			s.countdown.Start(s.index)
		}
		return true
	}
	s.complete = true
	if s.countdown != nil {
		s.countdown.Cancel()
	}
	return true
}

// Abandon stops the session and its countdown. Later calls to Submit,
// HandleTimeout and Advance are no-ops.
func (s *Session) Abandon() {
	if s.abandoned {
		return
	}
	s.abandoned = true
	if s.countdown != nil {
		s.countdown.Cancel()
	}
}

// Result returns the session summary.
func (s *Session) Result() Result {
	return Result{
		SessionID: s.ID,
		Mode:      s.Mode,
		Score:     s.score,
		Total:     len(s.questions),
		Wrong:     s.Wrong(),
	}
}
